// Package marshaler converts Go values into a GunnyScript tree.
package marshaler

import (
	"encoding"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/KimNorgaard/go-gunnyscript/ast"
	"github.com/KimNorgaard/go-gunnyscript/datetime"
	"github.com/KimNorgaard/go-gunnyscript/internal/lexer"
	"github.com/KimNorgaard/go-gunnyscript/internal/mapper"
	"github.com/KimNorgaard/go-gunnyscript/internal/parser"
	"github.com/KimNorgaard/go-gunnyscript/number"
)

// maxDepth bounds recursion so that cyclic values fail instead of
// overflowing the stack.
const maxDepth = 1000

// Marshaler is implemented by types that encode themselves. The output must
// be a single GunnyScript value; an empty output stands for null.
type Marshaler interface {
	MarshalGunny() ([]byte, error)
}

// A MarshalerError represents an error from calling a MarshalGunny or
// MarshalText method.
type MarshalerError struct {
	Type reflect.Type
	Err  error
}

func (e *MarshalerError) Error() string {
	return "gunnyscript: error calling marshaler for type " + e.Type.String() + ": " + e.Err.Error()
}

func (e *MarshalerError) Unwrap() error { return e.Err }

var (
	timeType     = reflect.TypeOf(time.Time{})
	dateType     = reflect.TypeOf(datetime.Date{})
	dateTimeType = reflect.TypeOf(datetime.DateTime{})
	numberType   = reflect.TypeOf(number.Number{})
	fixedType    = reflect.TypeOf(number.Fixed{})
	documentType = reflect.TypeOf(ast.Document{})
)

// Marshal converts a Go value into a document. A *ast.Document is returned
// as is and an ast.Value becomes the root of a new document.
func Marshal(v any) (*ast.Document, error) {
	if doc, ok := v.(*ast.Document); ok && doc != nil {
		return doc, nil
	}
	m := &marshaler{}
	node, err := m.marshal(reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	return &ast.Document{Root: &ast.DocValue{Value: node}}, nil
}

type marshaler struct {
	depth int
}

// isEmptyValue reports whether the value v is empty.
// It is equivalent to the `encoding/json` definition of empty:
// false, 0, a nil pointer, a nil interface value, and any empty array,
// slice, map, or string.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}

// docFromTag turns a doc:"..." tag into doc comment text. Every line gets a
// leading space and a trailing newline.
func docFromTag(tag string) string {
	if tag == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(tag, "\n") {
		b.WriteString(" " + line + "\n")
	}
	return b.String()
}

func (m *marshaler) marshal(v reflect.Value) (ast.Value, error) { //nolint:gocyclo
	m.depth++
	defer func() { m.depth-- }()
	if m.depth > maxDepth {
		return nil, fmt.Errorf("gunnyscript: exceeded max depth of %d while marshaling %s (cyclic value?)", maxDepth, v.Type())
	}

	// Handle nil interfaces explicitly to avoid panics.
	if !v.IsValid() || (v.Kind() == reflect.Interface && v.IsNil()) {
		return &ast.Null{}, nil
	}

	if node, ok := asNode(v); ok {
		return node, nil
	}
	if node, ok, err := m.marshalCustom(v); ok || err != nil {
		return node, err
	}

	// Follow pointers and interfaces to find the concrete value.
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return &ast.Null{}, nil
		}
		v = v.Elem()
		if node, ok := asNode(v); ok {
			return node, nil
		}
		if node, ok, err := m.marshalCustom(v); ok || err != nil {
			return node, err
		}
	}

	if node, ok, err := marshalKnownType(v); ok || err != nil {
		return node, err
	}

	switch v.Kind() {
	case reflect.String:
		return &ast.String{Value: v.String()}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &ast.Number{Value: number.Int(v.Int())}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return &ast.Number{Value: number.Uint(v.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		f, err := number.FixedFromFloat64(v.Float())
		if err != nil {
			return nil, fmt.Errorf("gunnyscript: cannot marshal %s %v: %w", v.Type(), v.Float(), err)
		}
		return &ast.Number{Value: number.FromFixed(f)}, nil
	case reflect.Bool:
		return &ast.Boolean{Value: v.Bool()}, nil
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return &ast.Null{}, nil
		}
		arr := &ast.Array{Elements: make([]ast.Value, v.Len())}
		for i := 0; i < v.Len(); i++ {
			el, err := m.marshal(v.Index(i))
			if err != nil {
				return nil, err
			}
			arr.Elements[i] = el
		}
		return arr, nil
	case reflect.Map:
		return m.marshalMap(v)
	case reflect.Struct:
		return m.marshalStruct(v)
	}
	return nil, fmt.Errorf("gunnyscript: unsupported type for marshaling: %s", v.Type())
}

func (m *marshaler) marshalMap(v reflect.Value) (ast.Value, error) {
	if v.IsNil() {
		return &ast.Null{}, nil
	}
	if v.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("gunnyscript: map key type must be a string, got %s", v.Type().Key())
	}

	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	obj := ast.NewObject()
	for _, key := range keys {
		val, err := m.marshal(v.MapIndex(key))
		if err != nil {
			return nil, err
		}
		if err := obj.Add(key.String(), val); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func (m *marshaler) marshalStruct(v reflect.Value) (ast.Value, error) {
	obj := ast.NewObject()
	for _, f := range mapper.Fields(v.Type()) {
		fv, err := v.FieldByIndexErr(f.Index)
		if err != nil {
			// Promoted through a nil embedded pointer.
			continue
		}
		if f.OmitEmpty && isEmptyValue(fv) {
			continue
		}
		val, err := m.marshal(fv)
		if err != nil {
			return nil, err
		}
		p := &ast.Property{Name: f.Name, DocValue: ast.DocValue{Doc: docFromTag(f.Doc), Value: val}}
		if err := obj.Set(p); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// asNode returns v itself when it already is a tree node.
func asNode(v reflect.Value) (ast.Value, bool) {
	if !v.CanInterface() {
		return nil, false
	}
	switch n := v.Interface().(type) {
	case ast.Value:
		if reflect.ValueOf(n).Kind() == reflect.Pointer && reflect.ValueOf(n).IsNil() {
			return &ast.Null{}, true
		}
		return n, true
	case *ast.Document:
		if n == nil || n.Root == nil || n.Root.Value == nil {
			return &ast.Null{}, true
		}
		return n.Root.Value, true
	}
	return nil, false
}

func marshalKnownType(v reflect.Value) (ast.Value, bool, error) {
	switch v.Type() {
	case timeType:
		return &ast.DateTime{Value: datetime.FromTime(v.Interface().(time.Time))}, true, nil
	case dateType:
		d := v.Interface().(datetime.Date)
		if !d.IsValid() {
			return nil, true, fmt.Errorf("gunnyscript: cannot marshal invalid date %s", d)
		}
		return &ast.Date{Value: d}, true, nil
	case dateTimeType:
		return &ast.DateTime{Value: v.Interface().(datetime.DateTime)}, true, nil
	case numberType:
		return &ast.Number{Value: v.Interface().(number.Number)}, true, nil
	case fixedType:
		return &ast.Number{Value: number.FromFixed(v.Interface().(number.Fixed))}, true, nil
	case documentType:
		doc := v.Interface().(ast.Document)
		n, _ := asNode(reflect.ValueOf(&doc))
		return n, true, nil
	}
	return nil, false, nil
}

// marshalCustom uses a Marshaler or an encoding.TextMarshaler implemented by
// v or by a pointer to v.
func (m *marshaler) marshalCustom(v reflect.Value) (ast.Value, bool, error) {
	if isKnownType(v.Type()) {
		return nil, false, nil
	}
	candidates := []reflect.Value{v}
	if v.Kind() != reflect.Pointer {
		var pv reflect.Value
		if v.CanAddr() {
			pv = v.Addr()
		} else {
			// For non-addressable values (like struct literals),
			// create a pointer to a copy to check for the interface.
			pv = reflect.New(v.Type())
			pv.Elem().Set(v)
		}
		candidates = append(candidates, pv)
	}

	for _, c := range candidates {
		if c.Kind() == reflect.Pointer && c.IsNil() || !c.CanInterface() {
			continue
		}
		switch u := c.Interface().(type) {
		case Marshaler:
			node, err := fromMarshaler(c.Type(), u)
			return node, true, err
		case encoding.TextMarshaler:
			b, err := u.MarshalText()
			if err != nil {
				return nil, true, &MarshalerError{Type: c.Type(), Err: err}
			}
			return &ast.String{Value: string(b)}, true, nil
		}
	}
	return nil, false, nil
}

func isKnownType(t reflect.Type) bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t {
	case timeType, dateType, dateTimeType, numberType, fixedType:
		return true
	}
	return false
}

// fromMarshaler parses the output of a MarshalGunny method back into a node.
func fromMarshaler(t reflect.Type, u Marshaler) (ast.Value, error) {
	b, err := u.MarshalGunny()
	if err != nil {
		return nil, &MarshalerError{Type: t, Err: err}
	}
	doc, err := parser.New(lexer.NewBytes(b)).Parse()
	if err != nil {
		return nil, &MarshalerError{Type: t, Err: fmt.Errorf("invalid GunnyScript output: %w", err)}
	}
	if doc.Root == nil {
		// An empty document from a custom marshaler is treated as a null value.
		return &ast.Null{}, nil
	}
	return doc.Root.Value, nil
}
