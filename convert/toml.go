package convert

import (
	"bytes"
	"fmt"
	"math"

	"github.com/pelletier/go-toml/v2"

	"github.com/KimNorgaard/go-gunnyscript/ast"
	"github.com/KimNorgaard/go-gunnyscript/number"
)

// ToTOML renders doc as a TOML document. The root must be an object. TOML
// has no null, so null values are an error, and its integers are signed 64
// bit. Dates become local dates, fixed-point numbers floats, and tables are
// written with their keys sorted. Doc comments are dropped.
func ToTOML(doc *ast.Document) ([]byte, error) {
	if doc == nil || doc.Root == nil {
		return nil, nil
	}
	obj, ok := doc.Root.Value.(*ast.Object)
	if !ok {
		return nil, fmt.Errorf("convert: TOML documents must be objects, not %s", kindOf(doc.Root.Value))
	}
	table, err := tomlValue(obj, "", 0)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(table); err != nil {
		return nil, fmt.Errorf("convert: encoding TOML: %w", err)
	}
	return buf.Bytes(), nil
}

func tomlValue(v ast.Value, path string, depth int) (any, error) {
	if depth > maxDepth {
		return nil, depthError()
	}
	switch n := v.(type) {
	case *ast.Boolean:
		return n.Value, nil
	case *ast.String:
		return n.Value, nil
	case *ast.Number:
		switch n.Value.Kind() {
		case number.KindUnsigned:
			u, _ := n.Value.AsUint64()
			if u > math.MaxInt64 {
				return nil, fmt.Errorf("convert: %s: %d does not fit a TOML integer", describePath(path), u)
			}
			return int64(u), nil
		case number.KindSigned:
			i, _ := n.Value.AsInt64()
			return i, nil
		}
		return n.Value.Float64(), nil
	case *ast.Date:
		return toml.LocalDate{Year: n.Value.Year, Month: int(n.Value.Month), Day: n.Value.Day}, nil
	case *ast.DateTime:
		return n.Value.Time(), nil
	case *ast.Array:
		out := make([]any, len(n.Elements))
		for i, el := range n.Elements {
			x, err := tomlValue(el, fmt.Sprintf("%s[%d]", path, i), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	case *ast.Object:
		out := make(map[string]any, n.Len())
		for _, p := range n.Properties() {
			key := p.Name
			if path != "" {
				key = path + "." + p.Name
			}
			x, err := tomlValue(p.Value, key, depth+1)
			if err != nil {
				return nil, err
			}
			out[p.Name] = x
		}
		return out, nil
	}
	return nil, fmt.Errorf("convert: %s: TOML has no null value", describePath(path))
}

func describePath(path string) string {
	if path == "" {
		return "root"
	}
	return path
}

func kindOf(v ast.Value) string {
	switch v.(type) {
	case *ast.Null:
		return "null"
	case *ast.Boolean:
		return "a boolean"
	case *ast.Number:
		return "a number"
	case *ast.String:
		return "a string"
	case *ast.Date:
		return "a date"
	case *ast.DateTime:
		return "a date-time"
	case *ast.Array:
		return "an array"
	}
	return fmt.Sprintf("%T", v)
}
