// Package ast defines the document tree built from GunnyScript events.
package ast

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/KimNorgaard/go-gunnyscript/datetime"
	"github.com/KimNorgaard/go-gunnyscript/number"
	"github.com/KimNorgaard/go-gunnyscript/token"
)

// Node is the base interface for all tree nodes.
type Node interface {
	// Pos returns the position of the node's first character, or the zero
	// Position for nodes that were not parsed from source.
	Pos() token.Position
	// String returns a compact GunnyScript rendering of the node.
	String() string
}

// Value is a node that can appear as an array element, a property value or
// the document root.
type Value interface {
	Node
	valueNode()
}

// Document is the root of a parsed GunnyScript document.
type Document struct {
	// Root is nil for a document without a value.
	Root *DocValue
}

// String returns a compact rendering of the root value, without doc comments.
func (d *Document) String() string {
	if d.Root == nil || d.Root.Value == nil {
		return ""
	}
	return d.Root.Value.String()
}

// Pos returns the position of the root value, or the zero Position for an
// empty document.
func (d *Document) Pos() token.Position {
	if d.Root == nil || d.Root.Value == nil {
		return token.Position{}
	}
	return d.Root.Value.Pos()
}

// DocValue pairs a value with the doc comment written before it. Doc is the
// concatenation of the /// lines without their slashes, each keeping its
// newline.
type DocValue struct {
	Doc   string
	Value Value
}

// Null represents null.
type Null struct {
	Token token.Token
}

func (n *Null) valueNode()          {}
func (n *Null) Pos() token.Position { return n.Token.Pos() }
func (n *Null) String() string      { return "null" }

// Boolean represents true or false.
type Boolean struct {
	Token token.Token
	Value bool
}

func (b *Boolean) valueNode()          {}
func (b *Boolean) Pos() token.Position { return b.Token.Pos() }
func (b *Boolean) String() string      { return strconv.FormatBool(b.Value) }

// Number represents an unsigned, signed or fixed-point number.
type Number struct {
	Token token.Token
	Value number.Number
}

func (n *Number) valueNode()          {}
func (n *Number) Pos() token.Position { return n.Token.Pos() }
func (n *Number) String() string      { return n.Value.String() }

// String represents a string. Style is Regular or Literal: dedent strings
// are stored already dedented, under the style of their undedented form.
type String struct {
	Token token.Token
	Value string
	Style token.StringStyle
}

func (s *String) valueNode()          {}
func (s *String) Pos() token.Position { return s.Token.Pos() }
func (s *String) String() string      { return Quote(s.Value) }

// Date represents a calendar date.
type Date struct {
	Token token.Token
	Value datetime.Date
}

func (d *Date) valueNode()          {}
func (d *Date) Pos() token.Position { return d.Token.Pos() }
func (d *Date) String() string      { return d.Value.String() }

// DateTime represents a timestamp with a UTC offset.
type DateTime struct {
	Token token.Token
	Value datetime.DateTime
}

func (dt *DateTime) valueNode()          {}
func (dt *DateTime) Pos() token.Position { return dt.Token.Pos() }
func (dt *DateTime) String() string      { return dt.Value.String() }

// Array represents an ordered list of values.
type Array struct {
	Token    token.Token // the START token
	Elements []Value
}

func (a *Array) valueNode()          {}
func (a *Array) Pos() token.Position { return a.Token.Pos() }
func (a *Array) String() string {
	var out bytes.Buffer
	elements := []string{}
	for _, el := range a.Elements {
		elements = append(elements, el.String())
	}
	out.WriteString("[")
	out.WriteString(strings.Join(elements, ", "))
	out.WriteString("]")
	return out.String()
}

// Property is a named, documented member of an object.
type Property struct {
	Token token.Token // the PROPERTY token
	Name  string
	DocValue
}

func (p *Property) Pos() token.Position { return p.Token.Pos() }
func (p *Property) String() string {
	return p.Name + " " + p.Value.String()
}

// Object represents an ordered set of uniquely named properties.
type Object struct {
	Token token.Token // the START token
	props []*Property
	index map[string]int
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{index: map[string]int{}}
}

func (o *Object) valueNode()          {}
func (o *Object) Pos() token.Position { return o.Token.Pos() }
func (o *Object) String() string {
	var out bytes.Buffer
	pairs := []string{}
	for _, p := range o.props {
		pairs = append(pairs, p.String())
	}
	out.WriteString("{")
	out.WriteString(strings.Join(pairs, ", "))
	out.WriteString("}")
	return out.String()
}

// DuplicatePropertyError is returned by Object.Set for a name the object
// already holds.
type DuplicatePropertyError struct {
	Name string
}

func (e *DuplicatePropertyError) Error() string {
	return fmt.Sprintf("duplicate property name %q", e.Name)
}

// Set appends p to the object. Properties are never overwritten: a name that
// is already present is an error.
func (o *Object) Set(p *Property) error {
	if o.index == nil {
		o.index = map[string]int{}
	}
	if _, ok := o.index[p.Name]; ok {
		return &DuplicatePropertyError{Name: p.Name}
	}
	o.index[p.Name] = len(o.props)
	o.props = append(o.props, p)
	return nil
}

// Add is a shorthand for setting an undocumented property.
func (o *Object) Add(name string, v Value) error {
	return o.Set(&Property{Name: name, DocValue: DocValue{Value: v}})
}

// Get returns the property with the given name.
func (o *Object) Get(name string) (*Property, bool) {
	i, ok := o.index[name]
	if !ok {
		return nil, false
	}
	return o.props[i], true
}

// Has reports whether the object holds a property with the given name.
func (o *Object) Has(name string) bool {
	_, ok := o.index[name]
	return ok
}

// Len returns the number of properties.
func (o *Object) Len() int { return len(o.props) }

// Keys returns the property names in source order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.props))
	for i, p := range o.props {
		keys[i] = p.Name
	}
	return keys
}

// Properties returns the properties in source order. The slice must not be
// modified.
func (o *Object) Properties() []*Property { return o.props }

// Quote renders s as a quoted GunnyScript string, escaping only what the
// quoted form requires.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
