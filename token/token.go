// Package token defines the events produced by the GunnyScript lexer.
package token

import (
	"fmt"
	"strconv"

	"github.com/KimNorgaard/go-gunnyscript/datetime"
	"github.com/KimNorgaard/go-gunnyscript/number"
)

// Type is the type of a token.
type Type string

const (
	LINESPACE   Type = "LINESPACE"   // a fully blank line
	DOC_COMMENT Type = "DOC_COMMENT" // one /// line, newline included
	VALUE       Type = "VALUE"       // null, boolean, number, string, date or date-time
	START       Type = "START"       // { or [
	END         Type = "END"         // } or ]
	PROPERTY    Type = "PROPERTY"    // an object property name
)

// Complex is the kind of a collection opened by START or closed by END.
type Complex string

const (
	ARRAY  Complex = "ARRAY"
	OBJECT Complex = "OBJECT"
)

// Kind is the type of a simple value.
type Kind string

const (
	NULL     Kind = "NULL"
	BOOLEAN  Kind = "BOOLEAN"
	NUMBER   Kind = "NUMBER"
	STRING   Kind = "STRING"
	DATE     Kind = "DATE"
	DATETIME Kind = "DATETIME"
)

// StringStyle records how a string was written in the source.
type StringStyle uint8

const (
	Regular       StringStyle = iota // "..."
	Literal                          // #"..."#
	Dedent                           // d"..."
	DedentLiteral                    // d#"..."#
)

func (s StringStyle) String() string {
	switch s {
	case Literal:
		return "literal"
	case Dedent:
		return "dedent"
	case DedentLiteral:
		return "dedent-literal"
	default:
		return "regular"
	}
}

// IsDedent reports whether the string's common indentation is to be stripped.
func (s StringStyle) IsDedent() bool { return s == Dedent || s == DedentLiteral }

// IsLiteral reports whether the string was written between '#' fences.
func (s StringStyle) IsLiteral() bool { return s == Literal || s == DedentLiteral }

// Value is a simple value carried by a VALUE token. Only the field matching
// Kind is meaningful.
type Value struct {
	Kind     Kind
	Bool     bool
	Number   number.Number
	Str      string
	Style    StringStyle
	Date     datetime.Date
	DateTime datetime.DateTime
}

func (v Value) String() string {
	switch v.Kind {
	case NULL:
		return "null"
	case BOOLEAN:
		return strconv.FormatBool(v.Bool)
	case NUMBER:
		return v.Number.String()
	case STRING:
		return strconv.Quote(v.Str)
	case DATE:
		return v.Date.String()
	case DATETIME:
		return v.DateTime.String()
	}
	return "<invalid>"
}

// Position is a location in the source. Line and Column are 1-based; Column
// counts characters, not bytes.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical event.
type Token struct {
	Type    Type
	Complex Complex // START and END
	Text    string  // PROPERTY name or DOC_COMMENT line
	Value   Value   // VALUE
	Line    int
	Column  int
	Offset  int
}

// Pos returns the position of the token's first character.
func (t Token) Pos() Position {
	return Position{Offset: t.Offset, Line: t.Line, Column: t.Column}
}

// String returns a one-line description of the token, such as
// `3:5 PROPERTY "name"`.
func (t Token) String() string {
	prefix := fmt.Sprintf("%d:%d %s", t.Line, t.Column, t.Type)
	switch t.Type {
	case START, END:
		return prefix + " " + string(t.Complex)
	case PROPERTY, DOC_COMMENT:
		return prefix + " " + strconv.Quote(t.Text)
	case VALUE:
		return prefix + " " + string(t.Value.Kind) + " " + t.Value.String()
	}
	return prefix
}

// Equal reports whether t and o describe the same event, ignoring positions.
func (t Token) Equal(o Token) bool {
	return t.Type == o.Type && t.Complex == o.Complex && t.Text == o.Text && t.Value == o.Value
}

// Strip returns t without position information.
func (t Token) Strip() Token {
	t.Line, t.Column, t.Offset = 0, 0, 0
	return t
}
