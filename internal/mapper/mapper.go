// Package mapper stores a GunnyScript tree into Go values.
package mapper

import (
	"bytes"
	"encoding"
	"fmt"
	"reflect"
	"time"

	"github.com/KimNorgaard/go-gunnyscript/ast"
	"github.com/KimNorgaard/go-gunnyscript/datetime"
	"github.com/KimNorgaard/go-gunnyscript/internal/formatter"
	"github.com/KimNorgaard/go-gunnyscript/number"
	"github.com/KimNorgaard/go-gunnyscript/token"
)

// DefaultMaxDepth is the recursion limit used when none is given.
const DefaultMaxDepth = 1000

// Unmarshaler is implemented by types that decode their own GunnyScript
// representation. The input is the compact rendering of a single value.
type Unmarshaler interface {
	UnmarshalGunny([]byte) error
}

// An UnmarshalTypeError describes a value that cannot be stored in a Go
// value of a specific type.
type UnmarshalTypeError struct {
	Value string // description of the value, e.g. "number 300"
	Type  reflect.Type
	Pos   token.Position
}

func (e *UnmarshalTypeError) Error() string {
	msg := "gunnyscript: cannot unmarshal " + e.Value + " into Go value of type " + e.Type.String()
	if e.Pos.Line > 0 {
		msg += fmt.Sprintf(" at line %d, column %d", e.Pos.Line, e.Pos.Column)
	}
	return msg
}

// An UnmarshalerError represents an error from an UnmarshalGunny or
// UnmarshalText method.
type UnmarshalerError struct {
	Type reflect.Type
	Err  error
}

func (e *UnmarshalerError) Error() string {
	return "gunnyscript: error calling unmarshaler for type " + e.Type.String() + ": " + e.Err.Error()
}

func (e *UnmarshalerError) Unwrap() error { return e.Err }

var (
	timeType     = reflect.TypeOf(time.Time{})
	dateType     = reflect.TypeOf(datetime.Date{})
	dateTimeType = reflect.TypeOf(datetime.DateTime{})
	numberType   = reflect.TypeOf(number.Number{})
	fixedType    = reflect.TypeOf(number.Fixed{})
	valueType    = reflect.TypeOf((*ast.Value)(nil)).Elem()
	documentType = reflect.TypeOf(ast.Document{})
)

// Map walks the document and populates the Go value pointed to by v. An
// empty document leaves v untouched. A *ast.Document target receives the
// document itself.
func Map(doc *ast.Document, v any, maxDepth int) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("gunnyscript: Unmarshal(non-pointer %T or nil)", v)
	}
	if rv.Elem().Type() == documentType {
		rv.Elem().Set(reflect.ValueOf(doc).Elem())
		return nil
	}
	if doc.Root == nil || doc.Root.Value == nil {
		return nil
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	m := &mapper{depth: maxDepth}
	return m.mapValue(doc.Root.Value, rv.Elem())
}

type mapper struct {
	depth int
}

func (m *mapper) mapValue(node ast.Value, rv reflect.Value) error { //nolint:gocyclo
	m.depth--
	if m.depth <= 0 {
		return fmt.Errorf("gunnyscript: reached max recursion depth")
	}
	defer func() { m.depth++ }()

	if _, isNull := node.(*ast.Null); isNull {
		switch rv.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice:
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		}
	}

	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		rv = rv.Elem()
	}
	if !rv.CanSet() {
		return fmt.Errorf("gunnyscript: cannot set value of type %s", rv.Type())
	}

	handled, err := m.mapKnownType(node, rv)
	if handled || err != nil {
		return err
	}
	handled, err = m.tryCustomUnmarshal(node, rv)
	if handled || err != nil {
		return err
	}

	if rv.Kind() == reflect.Interface {
		return m.mapInterface(node, rv)
	}

	switch n := node.(type) {
	case *ast.Null:
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	case *ast.Boolean:
		if rv.Kind() != reflect.Bool {
			return typeError(node, rv)
		}
		rv.SetBool(n.Value)
		return nil
	case *ast.String:
		if rv.Kind() != reflect.String {
			return typeError(node, rv)
		}
		rv.SetString(n.Value)
		return nil
	case *ast.Number:
		return m.mapNumber(n, rv)
	case *ast.Date, *ast.DateTime:
		if rv.Kind() == reflect.String {
			rv.SetString(n.String())
			return nil
		}
	case *ast.Array:
		switch rv.Kind() {
		case reflect.Slice:
			return m.mapSlice(n, rv)
		case reflect.Array:
			return m.mapArray(n, rv)
		}
	case *ast.Object:
		switch rv.Kind() {
		case reflect.Struct:
			return m.mapStruct(n, rv)
		case reflect.Map:
			return m.mapMap(n, rv)
		}
	}
	return typeError(node, rv)
}

// mapKnownType handles the value types of this module and of package time.
func (m *mapper) mapKnownType(node ast.Value, rv reflect.Value) (bool, error) {
	if _, isNull := node.(*ast.Null); isNull {
		return false, nil
	}
	switch rv.Type() {
	case valueType:
		rv.Set(reflect.ValueOf(node))
		return true, nil
	case numberType:
		n, ok := node.(*ast.Number)
		if !ok {
			return true, typeError(node, rv)
		}
		rv.Set(reflect.ValueOf(n.Value))
		return true, nil
	case fixedType:
		n, ok := node.(*ast.Number)
		if !ok {
			return true, typeError(node, rv)
		}
		if u, isUint := n.Value.AsUint64(); isUint && n.Value.Kind() == number.KindUnsigned {
			if _, err := number.FixedFromUint64(u); err != nil {
				return true, typeError(node, rv)
			}
		}
		rv.Set(reflect.ValueOf(n.Value.AsFixed()))
		return true, nil
	case dateType:
		// Strings fall through to UnmarshalText.
		if d, ok := node.(*ast.Date); ok {
			rv.Set(reflect.ValueOf(d.Value))
			return true, nil
		}
	case dateTimeType:
		if dt, ok := node.(*ast.DateTime); ok {
			rv.Set(reflect.ValueOf(dt.Value))
			return true, nil
		}
	case timeType:
		switch n := node.(type) {
		case *ast.DateTime:
			rv.Set(reflect.ValueOf(n.Value.Time()))
			return true, nil
		case *ast.Date:
			rv.Set(reflect.ValueOf(n.Value.Time()))
			return true, nil
		}
	}
	return false, nil
}

// tryCustomUnmarshal attempts to use an Unmarshaler or an
// encoding.TextUnmarshaler. It reports whether one was found and used.
func (m *mapper) tryCustomUnmarshal(node ast.Value, rv reflect.Value) (bool, error) {
	if !rv.CanAddr() {
		return false, nil
	}
	pv := rv.Addr()
	if !pv.CanInterface() {
		return false, nil
	}

	if u, ok := pv.Interface().(Unmarshaler); ok {
		var buf bytes.Buffer
		compact := 0
		if err := formatter.New(&buf, &compact).Format(node); err != nil {
			return true, fmt.Errorf("gunnyscript: failed to re-marshal node for custom unmarshaler: %w", err)
		}
		if err := u.UnmarshalGunny(buf.Bytes()); err != nil {
			return true, &UnmarshalerError{Type: pv.Type(), Err: err}
		}
		return true, nil
	}

	if u, ok := pv.Interface().(encoding.TextUnmarshaler); ok {
		s, isString := node.(*ast.String)
		if !isString {
			// TextUnmarshaler can only be used on string values.
			return false, nil
		}
		if err := u.UnmarshalText([]byte(s.Value)); err != nil {
			return true, &UnmarshalerError{Type: pv.Type(), Err: err}
		}
		return true, nil
	}

	return false, nil
}

func (m *mapper) mapNumber(n *ast.Number, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := n.Value.AsInt64()
		if !ok || rv.OverflowInt(i) {
			return typeError(n, rv)
		}
		rv.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, ok := n.Value.AsUint64()
		if !ok || rv.OverflowUint(u) {
			return typeError(n, rv)
		}
		rv.SetUint(u)
		return nil
	case reflect.Float32, reflect.Float64:
		f := n.Value.Float64()
		if rv.OverflowFloat(f) {
			return typeError(n, rv)
		}
		rv.SetFloat(f)
		return nil
	}
	return typeError(n, rv)
}

func (m *mapper) mapSlice(a *ast.Array, rv reflect.Value) error {
	slice := reflect.MakeSlice(rv.Type(), len(a.Elements), len(a.Elements))
	for i, el := range a.Elements {
		if err := m.mapValue(el, slice.Index(i)); err != nil {
			return err
		}
	}
	rv.Set(slice)
	return nil
}

func (m *mapper) mapArray(a *ast.Array, rv reflect.Value) error {
	if len(a.Elements) != rv.Len() {
		return fmt.Errorf("gunnyscript: cannot unmarshal array of length %d into Go array of length %d", len(a.Elements), rv.Len())
	}
	for i, el := range a.Elements {
		if err := m.mapValue(el, rv.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

func (m *mapper) mapMap(obj *ast.Object, rv reflect.Value) error {
	t := rv.Type()
	if t.Key().Kind() != reflect.String {
		return fmt.Errorf("gunnyscript: cannot unmarshal object into map with non-string key type %s", t.Key())
	}
	if rv.IsNil() {
		rv.Set(reflect.MakeMapWithSize(t, obj.Len()))
	} else {
		rv.Clear()
	}
	for _, p := range obj.Properties() {
		elem := reflect.New(t.Elem()).Elem()
		if err := m.mapValue(p.Value, elem); err != nil {
			return err
		}
		rv.SetMapIndex(reflect.ValueOf(p.Name).Convert(t.Key()), elem)
	}
	return nil
}

func (m *mapper) mapStruct(obj *ast.Object, rv reflect.Value) error {
	for _, p := range obj.Properties() {
		f, ok := lookup(rv.Type(), p.Name)
		if !ok {
			continue
		}
		if err := m.mapValue(p.Value, rv.FieldByIndex(f.Index)); err != nil {
			return err
		}
	}
	return nil
}

func (m *mapper) mapInterface(node ast.Value, rv reflect.Value) error {
	if rv.NumMethod() != 0 {
		return typeError(node, rv)
	}
	v := ToAny(node)
	if v == nil {
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	}
	rv.Set(reflect.ValueOf(v))
	return nil
}

// ToAny converts a tree into plain Go values: nil, bool, uint64, int64,
// float64, string, datetime.Date, time.Time, []any and map[string]any.
func ToAny(node ast.Value) any {
	switch n := node.(type) {
	case *ast.Boolean:
		return n.Value
	case *ast.Number:
		switch n.Value.Kind() {
		case number.KindUnsigned:
			u, _ := n.Value.AsUint64()
			return u
		case number.KindSigned:
			i, _ := n.Value.AsInt64()
			return i
		default:
			return n.Value.Float64()
		}
	case *ast.String:
		return n.Value
	case *ast.Date:
		return n.Value
	case *ast.DateTime:
		return n.Value.Time()
	case *ast.Array:
		out := make([]any, len(n.Elements))
		for i, el := range n.Elements {
			out[i] = ToAny(el)
		}
		return out
	case *ast.Object:
		out := make(map[string]any, n.Len())
		for _, p := range n.Properties() {
			out[p.Name] = ToAny(p.Value)
		}
		return out
	}
	return nil
}

func typeError(node ast.Value, rv reflect.Value) error {
	return &UnmarshalTypeError{Value: describe(node), Type: rv.Type(), Pos: node.Pos()}
}

func describe(node ast.Value) string {
	switch n := node.(type) {
	case *ast.Null:
		return "null"
	case *ast.Boolean:
		return "boolean"
	case *ast.Number:
		return "number " + n.Value.String()
	case *ast.String:
		return "string"
	case *ast.Date:
		return "date " + n.Value.String()
	case *ast.DateTime:
		return "date-time " + n.Value.String()
	case *ast.Array:
		return "array"
	case *ast.Object:
		return "object"
	}
	return fmt.Sprintf("%T", node)
}
