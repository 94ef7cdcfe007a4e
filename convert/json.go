package convert

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/KimNorgaard/go-gunnyscript/ast"
	"github.com/KimNorgaard/go-gunnyscript/number"
)

type jsonWriter struct {
	buf    bytes.Buffer
	indent string
}

// newline starts a new line at the given depth. It is a no-op in compact
// output.
func (w *jsonWriter) newline(depth int) {
	if w.indent == "" {
		return
	}
	w.buf.WriteByte('\n')
	for i := 0; i < depth; i++ {
		w.buf.WriteString(w.indent)
	}
}

func (w *jsonWriter) writeString(s string) error {
	b, err := json.MarshalNoEscape(s)
	if err != nil {
		return err
	}
	w.buf.Write(b)
	return nil
}

func (w *jsonWriter) writeValue(v ast.Value, depth int) error {
	switch n := v.(type) {
	case nil, *ast.Null:
		w.buf.WriteString("null")
	case *ast.Boolean:
		w.buf.WriteString(strconv.FormatBool(n.Value))
	case *ast.Number:
		w.buf.WriteString(n.Value.String())
	case *ast.String:
		return w.writeString(n.Value)
	case *ast.Date, *ast.DateTime:
		return w.writeString(n.String())
	case *ast.Array:
		if len(n.Elements) == 0 {
			w.buf.WriteString("[]")
			return nil
		}
		w.buf.WriteByte('[')
		for i, el := range n.Elements {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			w.newline(depth + 1)
			if err := w.writeValue(el, depth+1); err != nil {
				return err
			}
		}
		w.newline(depth)
		w.buf.WriteByte(']')
	case *ast.Object:
		props := n.Properties()
		if len(props) == 0 {
			w.buf.WriteString("{}")
			return nil
		}
		w.buf.WriteByte('{')
		for i, p := range props {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			w.newline(depth + 1)
			if err := w.writeString(p.Name); err != nil {
				return err
			}
			w.buf.WriteByte(':')
			if w.indent != "" {
				w.buf.WriteByte(' ')
			}
			if err := w.writeValue(p.Value, depth+1); err != nil {
				return err
			}
		}
		w.newline(depth)
		w.buf.WriteByte('}')
	default:
		return fmt.Errorf("unexpected value of type %T", v)
	}
	return nil
}

// ToJSON renders doc as JSON. Properties keep their order, numbers keep their
// exact digits and dates become RFC 3339 strings. Doc comments are dropped.
// A positive indent spreads the output over several lines. HTML characters
// are written as is.
func ToJSON(doc *ast.Document, indent int) ([]byte, error) {
	var root ast.Value
	if doc != nil && doc.Root != nil {
		root = doc.Root.Value
	}

	w := &jsonWriter{}
	if indent > 0 {
		w.indent = strings.Repeat(" ", indent)
	}
	if err := w.writeValue(root, 0); err != nil {
		return nil, fmt.Errorf("convert: encoding JSON: %w", err)
	}
	return w.buf.Bytes(), nil
}

// FromJSON parses a JSON document. Integers become unsigned or signed
// numbers and numbers with a fraction or exponent fixed-point numbers.
// JSON objects are unordered, so properties are sorted by name.
func FromJSON(data []byte) (*ast.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if err == io.EOF {
			return &ast.Document{}, nil
		}
		return nil, fmt.Errorf("convert: parsing JSON: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return nil, fmt.Errorf("convert: parsing JSON: unexpected data after the top-level value")
	}

	root, err := fromJSONValue(v, 0)
	if err != nil {
		return nil, err
	}
	return &ast.Document{Root: &ast.DocValue{Value: root}}, nil
}

func fromJSONValue(v any, depth int) (ast.Value, error) {
	if depth > maxDepth {
		return nil, depthError()
	}
	switch x := v.(type) {
	case nil:
		return &ast.Null{}, nil
	case bool:
		return &ast.Boolean{Value: x}, nil
	case string:
		return &ast.String{Value: x}, nil
	case json.Number:
		n, err := jsonNumber(string(x))
		if err != nil {
			return nil, err
		}
		return &ast.Number{Value: n}, nil
	case []any:
		arr := &ast.Array{Elements: make([]ast.Value, len(x))}
		for i, el := range x {
			node, err := fromJSONValue(el, depth+1)
			if err != nil {
				return nil, err
			}
			arr.Elements[i] = node
		}
		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := ast.NewObject()
		for _, k := range keys {
			node, err := fromJSONValue(x[k], depth+1)
			if err != nil {
				return nil, err
			}
			if err := obj.Add(k, node); err != nil {
				return nil, err
			}
		}
		return obj, nil
	}
	return nil, fmt.Errorf("convert: unexpected JSON value of type %T", v)
}

func jsonNumber(s string) (number.Number, error) {
	if !strings.ContainsAny(s, "eE") {
		if n, err := number.Parse(s); err == nil {
			return n, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return number.Number{}, fmt.Errorf("convert: invalid JSON number %s: %w", s, err)
	}
	fx, err := number.FixedFromFloat64(f)
	if err != nil {
		return number.Number{}, fmt.Errorf("convert: JSON number %s out of range: %w", s, err)
	}
	return number.FromFixed(fx), nil
}
