// Package formatter renders a GunnyScript tree as text.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/KimNorgaard/go-gunnyscript/ast"
	"github.com/KimNorgaard/go-gunnyscript/internal/lexer"
)

// DefaultIndent is the number of spaces per nesting level when no indent is given.
const DefaultIndent = 2

// Formatter writes a GunnyScript tree to an output stream.
//
// With a positive indent, collections are spread over several lines, doc
// comments are written as /// lines and multi-line strings become literal
// strings. An indent of zero gives a single-line rendering without doc
// comments.
type Formatter struct {
	w      io.Writer
	indent string
	depth  int
	err    error
}

// New returns a new formatter that writes to w. A nil indentSpaces selects
// DefaultIndent.
func New(w io.Writer, indentSpaces *int) *Formatter {
	spaces := DefaultIndent
	if indentSpaces != nil {
		spaces = *indentSpaces
	}
	var indentStr string
	if spaces > 0 {
		indentStr = strings.Repeat(" ", spaces)
	}
	return &Formatter{w: w, indent: indentStr}
}

// Format writes node, a *ast.Document or an ast.Value. No trailing newline
// is written.
func (f *Formatter) Format(node ast.Node) error {
	switch n := node.(type) {
	case *ast.Document:
		if n.Root == nil || n.Root.Value == nil {
			return nil
		}
		f.writeDoc(n.Root.Doc)
		f.writeValue(n.Root.Value)
	case ast.Value:
		f.writeValue(n)
	default:
		return fmt.Errorf("gunnyscript: unsupported node type for formatting: %T", node)
	}
	return f.err
}

func (f *Formatter) pretty() bool { return f.indent != "" }

func (f *Formatter) write(s string) {
	if f.err != nil {
		return
	}
	_, f.err = io.WriteString(f.w, s)
}

func (f *Formatter) writeIndent() {
	for i := 0; i < f.depth; i++ {
		f.write(f.indent)
	}
}

func (f *Formatter) writeDoc(doc string) {
	if !f.pretty() {
		return
	}
	for _, line := range ast.DocLines(doc) {
		f.write("///" + line + "\n")
		f.writeIndent()
	}
}

func (f *Formatter) writeValue(v ast.Value) {
	switch n := v.(type) {
	case *ast.Object:
		f.writeObject(n)
	case *ast.Array:
		f.writeArray(n)
	case *ast.String:
		f.writeString(n)
	case nil:
		f.write("null")
	default:
		f.write(n.String())
	}
}

func (f *Formatter) writeObject(obj *ast.Object) {
	f.write("{")
	props := obj.Properties()
	if len(props) == 0 {
		f.write("}")
		return
	}
	for _, p := range props {
		if !lexer.IsIdentifier(p.Name) {
			f.fail(fmt.Errorf("gunnyscript: %q is not a valid property name", p.Name))
			return
		}
	}

	if !f.pretty() {
		for i, p := range props {
			if i > 0 {
				f.write(",")
			}
			f.write(" " + p.Name + " ")
			f.writeValue(p.Value)
		}
		f.write(" }")
		return
	}

	f.depth++
	for _, p := range props {
		f.write("\n")
		f.writeIndent()
		f.writeDoc(p.Doc)
		f.write(p.Name + " ")
		f.writeValue(p.Value)
	}
	f.depth--
	f.write("\n")
	f.writeIndent()
	f.write("}")
}

func (f *Formatter) writeArray(arr *ast.Array) {
	f.write("[")
	if len(arr.Elements) == 0 {
		f.write("]")
		return
	}
	if !f.pretty() {
		for i, el := range arr.Elements {
			if i > 0 {
				f.write(", ")
			}
			f.writeValue(el)
		}
		f.write("]")
		return
	}

	f.depth++
	for i, el := range arr.Elements {
		f.write("\n")
		f.writeIndent()
		f.writeValue(el)
		if i < len(arr.Elements)-1 {
			f.write(",")
		}
	}
	f.depth--
	f.write("\n")
	f.writeIndent()
	f.write("]")
}

// writeString prefers a literal string for multi-line text in pretty mode
// and for single-line strings that were written as literals.
func (f *Formatter) writeString(s *ast.String) {
	multiline := strings.Contains(s.Value, "\n")
	useLiteral := !strings.Contains(s.Value, "\r") &&
		(s.Style.IsLiteral() && !multiline || f.pretty() && (multiline || s.Style.IsLiteral()))
	if useLiteral {
		if fence, ok := Fence(s.Value); ok {
			f.write(fence + `"` + s.Value + `"` + fence)
			return
		}
	}
	f.write(ast.Quote(s.Value))
}

func (f *Formatter) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

// Fence returns the shortest run of '#' that can delimit s as a literal
// string. ok is false when no fence within the allowed length works.
func Fence(s string) (fence string, ok bool) {
	for n := 1; n <= lexer.MaxFence; n++ {
		fence = strings.Repeat("#", n)
		if !strings.Contains(s, `"`+fence) {
			return fence, true
		}
	}
	return "", false
}
