package gunnyscript

import (
	"io"

	"github.com/KimNorgaard/go-gunnyscript/internal/formatter"
	"github.com/KimNorgaard/go-gunnyscript/internal/marshaler"
)

// Encoder writes GunnyScript values to an output stream.
type Encoder struct {
	w    io.Writer
	opts []Option
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode writes the GunnyScript encoding of v to the stream, without a
// trailing newline.
//
// Structs become objects whose properties follow the field order; a field's
// `gunny:"name,omitempty"` tag renames or omits it and a `doc:"..."` tag is
// written as its doc comment. Map keys are sorted. Floats are encoded as
// fixed-point numbers, time.Time as a date-time and a *ast.Document as is,
// doc comments included.
func (e *Encoder) Encode(v any) error {
	o, err := newOptions(e.opts)
	if err != nil {
		return err
	}
	doc, err := marshaler.Marshal(v)
	if err != nil {
		return err
	}
	return formatter.New(e.w, o.indent).Format(doc)
}
