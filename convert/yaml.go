package convert

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/KimNorgaard/go-gunnyscript/ast"
	"github.com/KimNorgaard/go-gunnyscript/datetime"
	"github.com/KimNorgaard/go-gunnyscript/number"
)

// ToYAML renders doc as a YAML document. Properties keep their order and doc
// comments become comments above the key they document. Multi-line strings
// are written in literal block style.
func ToYAML(doc *ast.Document) ([]byte, error) {
	if doc == nil || doc.Root == nil || doc.Root.Value == nil {
		return nil, nil
	}
	root := &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: yamlComment(doc.Root.Doc),
		Content:     []*yaml.Node{toYAMLNode(doc.Root.Value)},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("convert: encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("convert: encoding YAML: %w", err)
	}
	return buf.Bytes(), nil
}

func yamlComment(doc string) string {
	lines := ast.DocLines(doc)
	for i, line := range lines {
		lines[i] = "#" + line
	}
	return strings.Join(lines, "\n")
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func toYAMLNode(v ast.Value) *yaml.Node {
	switch n := v.(type) {
	case *ast.Boolean:
		return scalar("!!bool", n.String())
	case *ast.Number:
		if n.Value.Kind() == number.KindFixed {
			return scalar("!!float", n.String())
		}
		return scalar("!!int", n.String())
	case *ast.String:
		node := scalar("!!str", n.Value)
		if strings.Contains(n.Value, "\n") {
			node.Style = yaml.LiteralStyle
		}
		return node
	case *ast.Date, *ast.DateTime:
		return scalar("!!timestamp", n.String())
	case *ast.Array:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, el := range n.Elements {
			node.Content = append(node.Content, toYAMLNode(el))
		}
		return node
	case *ast.Object:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, p := range n.Properties() {
			key := scalar("!!str", p.Name)
			key.HeadComment = yamlComment(p.Doc)
			node.Content = append(node.Content, key, toYAMLNode(p.Value))
		}
		return node
	}
	return scalar("!!null", "null")
}

// FromYAML parses a YAML document. Mapping order is kept and comments above
// a key or at the top of the document become doc comments. Aliases are
// resolved; timestamps become dates or date-times. Merge keys and binary
// values are not supported.
func FromYAML(data []byte) (*ast.Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("convert: parsing YAML: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return &ast.Document{}, nil
	}

	content := root.Content[0]
	v, err := fromYAMLNode(content, 0)
	if err != nil {
		return nil, err
	}
	doc := commentLines(root.HeadComment)
	if content.Kind != yaml.MappingNode {
		doc = append(doc, commentLines(content.HeadComment)...)
	}
	return &ast.Document{Root: &ast.DocValue{Doc: docText(doc), Value: v}}, nil
}

// commentLines strips the comment markers from a YAML comment. Blank
// separator lines are dropped.
func commentLines(comment string) []string {
	if comment == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(comment, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, strings.TrimPrefix(line, "#"))
	}
	return lines
}

func fromYAMLNode(node *yaml.Node, depth int) (ast.Value, error) {
	if depth > maxDepth {
		return nil, depthError()
	}
	switch node.Kind {
	case yaml.AliasNode:
		return fromYAMLNode(node.Alias, depth+1)
	case yaml.SequenceNode:
		arr := &ast.Array{Elements: make([]ast.Value, 0, len(node.Content))}
		for _, el := range node.Content {
			v, err := fromYAMLNode(el, depth+1)
			if err != nil {
				return nil, err
			}
			arr.Elements = append(arr.Elements, v)
		}
		return arr, nil
	case yaml.MappingNode:
		obj := ast.NewObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("convert: line %d: mapping keys must be scalars", key.Line)
			}
			if key.ShortTag() == "!!merge" {
				return nil, fmt.Errorf("convert: line %d: merge keys are not supported", key.Line)
			}
			v, err := fromYAMLNode(val, depth+1)
			if err != nil {
				return nil, err
			}
			p := &ast.Property{Name: key.Value, DocValue: ast.DocValue{Doc: docText(commentLines(key.HeadComment)), Value: v}}
			if err := obj.Set(p); err != nil {
				return nil, fmt.Errorf("convert: line %d: %w", key.Line, err)
			}
		}
		return obj, nil
	case yaml.ScalarNode:
		return fromYAMLScalar(node)
	}
	return nil, fmt.Errorf("convert: line %d: unexpected YAML node", node.Line)
}

func fromYAMLScalar(node *yaml.Node) (ast.Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return &ast.Null{}, nil
	case "!!str":
		return &ast.String{Value: node.Value}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, err
		}
		return &ast.Boolean{Value: b}, nil
	case "!!int":
		var u uint64
		if err := node.Decode(&u); err == nil {
			return &ast.Number{Value: number.Uint(u)}, nil
		}
		var i int64
		if err := node.Decode(&i); err != nil {
			return nil, fmt.Errorf("convert: line %d: integer %s out of range", node.Line, node.Value)
		}
		return &ast.Number{Value: number.Int(i)}, nil
	case "!!float":
		if f, err := number.ParseFixed(node.Value); err == nil {
			return &ast.Number{Value: number.FromFixed(f)}, nil
		}
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("convert: line %d: %s has no fixed-point representation", node.Line, node.Value)
		}
		fx, err := number.FixedFromFloat64(f)
		if err != nil {
			return nil, fmt.Errorf("convert: line %d: %s out of range: %w", node.Line, node.Value, err)
		}
		return &ast.Number{Value: number.FromFixed(fx)}, nil
	case "!!timestamp":
		if !strings.ContainsAny(node.Value, "Tt ") {
			d, err := datetime.ParseDate(node.Value)
			if err != nil {
				return nil, err
			}
			return &ast.Date{Value: d}, nil
		}
		var t time.Time
		if err := node.Decode(&t); err != nil {
			return nil, err
		}
		return &ast.DateTime{Value: datetime.FromTime(t)}, nil
	}
	return nil, fmt.Errorf("convert: line %d: unsupported YAML tag %s", node.Line, node.ShortTag())
}
