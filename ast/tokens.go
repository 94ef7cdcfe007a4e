package ast

import (
	"strings"

	"github.com/KimNorgaard/go-gunnyscript/token"
)

// Tokens flattens the document into the event sequence that builds it.
// Positions are not reproduced.
func (d *Document) Tokens() []token.Token {
	if d.Root == nil || d.Root.Value == nil {
		return nil
	}
	var toks []token.Token
	toks = appendDoc(toks, d.Root.Doc)
	return appendValue(toks, d.Root.Value)
}

// DocLines splits a doc comment into its /// lines, without newlines.
func DocLines(doc string) []string {
	if doc == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(doc, "\n"), "\n")
}

func appendDoc(toks []token.Token, doc string) []token.Token {
	lines := DocLines(doc)
	for i, line := range lines {
		if i < len(lines)-1 || strings.HasSuffix(doc, "\n") {
			line += "\n"
		}
		toks = append(toks, token.Token{Type: token.DOC_COMMENT, Text: line})
	}
	return toks
}

func appendValue(toks []token.Token, v Value) []token.Token {
	switch v := v.(type) {
	case *Array:
		toks = append(toks, token.Token{Type: token.START, Complex: token.ARRAY})
		for _, el := range v.Elements {
			toks = appendValue(toks, el)
		}
		return append(toks, token.Token{Type: token.END, Complex: token.ARRAY})
	case *Object:
		toks = append(toks, token.Token{Type: token.START, Complex: token.OBJECT})
		for _, p := range v.Properties() {
			toks = appendDoc(toks, p.Doc)
			toks = append(toks, token.Token{Type: token.PROPERTY, Text: p.Name})
			toks = appendValue(toks, p.Value)
		}
		return append(toks, token.Token{Type: token.END, Complex: token.OBJECT})
	}
	return append(toks, token.Token{Type: token.VALUE, Value: SimpleValue(v)})
}

// SimpleValue returns the token value of a non-collection node.
func SimpleValue(v Value) token.Value {
	switch v := v.(type) {
	case *Boolean:
		return token.Value{Kind: token.BOOLEAN, Bool: v.Value}
	case *Number:
		return token.Value{Kind: token.NUMBER, Number: v.Value}
	case *String:
		return token.Value{Kind: token.STRING, Str: v.Value, Style: v.Style}
	case *Date:
		return token.Value{Kind: token.DATE, Date: v.Value}
	case *DateTime:
		return token.Value{Kind: token.DATETIME, DateTime: v.Value}
	}
	return token.Value{Kind: token.NULL}
}

// FromSimpleValue returns the node for a VALUE token.
func FromSimpleValue(tok token.Token) Value {
	v := tok.Value
	switch v.Kind {
	case token.BOOLEAN:
		return &Boolean{Token: tok, Value: v.Bool}
	case token.NUMBER:
		return &Number{Token: tok, Value: v.Number}
	case token.STRING:
		return &String{Token: tok, Value: v.Str, Style: v.Style}
	case token.DATE:
		return &Date{Token: tok, Value: v.Date}
	case token.DATETIME:
		return &DateTime{Token: tok, Value: v.DateTime}
	}
	return &Null{Token: tok}
}
