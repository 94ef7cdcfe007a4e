package gunnyscript

import (
	"bytes"

	"github.com/KimNorgaard/go-gunnyscript/internal/formatter"
)

// Format parses data and writes it back in canonical form: one property or
// element per line, indented by Indent spaces (two by default), with doc
// comments kept and multi-line strings written as literal strings. Comments
// other than doc comments and blank lines are not kept.
func Format(data []byte, opts ...Option) ([]byte, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	doc, err := parse(data, o)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := formatter.New(&buf, o.indent).Format(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
