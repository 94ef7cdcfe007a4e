package gunnyscript

import (
	"bytes"
	"io"

	"github.com/KimNorgaard/go-gunnyscript/ast"
	"github.com/KimNorgaard/go-gunnyscript/internal/lexer"
	"github.com/KimNorgaard/go-gunnyscript/internal/mapper"
	"github.com/KimNorgaard/go-gunnyscript/internal/parser"
	"github.com/KimNorgaard/go-gunnyscript/token"
)

// Marshaler is the interface implemented by types that
// can marshal themselves into a single GunnyScript value.
type Marshaler interface {
	MarshalGunny() ([]byte, error)
}

// Unmarshaler is the interface implemented by types that can unmarshal a
// GunnyScript value of themselves. The input is the compact rendering of
// the value.
type Unmarshaler interface {
	UnmarshalGunny([]byte) error
}

// Marshal returns the GunnyScript encoding of v.
func Marshal(v any, opts ...Option) ([]byte, error) {
	var buf bytes.Buffer
	e := NewEncoder(&buf, opts...)
	if err := e.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal parses the GunnyScript-encoded data and stores the result
// in the value pointed to by v.
func Unmarshal(data []byte, v any, opts ...Option) error {
	o, err := newOptions(opts)
	if err != nil {
		return err
	}
	doc, err := parse(data, o)
	if err != nil {
		return err
	}
	return mapper.Map(doc, v, o.maxDepth)
}

// Parse parses a complete document into a tree that keeps doc comments.
func Parse(data []byte, opts ...Option) (*ast.Document, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return parse(data, o)
}

func parse(data []byte, o *options) (*ast.Document, error) {
	return parser.New(lexer.NewBytes(data, lexer.MaxDepth(o.maxDepth))).Parse()
}

// Tokenize returns the complete event sequence of a document.
func Tokenize(data []byte, opts ...Option) ([]token.Token, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	l := lexer.NewBytes(data, lexer.MaxDepth(o.maxDepth))
	var toks []token.Token
	for {
		tok, err := l.Next()
		if err == io.EOF {
			return toks, nil
		}
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
	}
}

// Build assembles an event sequence, such as one returned by Tokenize or
// ast.Document.Tokens, into a document.
func Build(toks []token.Token) (*ast.Document, error) {
	return parser.Build(toks)
}
