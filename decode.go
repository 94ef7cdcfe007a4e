package gunnyscript

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/KimNorgaard/go-gunnyscript/ast"
	"github.com/KimNorgaard/go-gunnyscript/errors"
	"github.com/KimNorgaard/go-gunnyscript/internal/mapper"
	"github.com/KimNorgaard/go-gunnyscript/internal/parser"
	"github.com/KimNorgaard/go-gunnyscript/token"
)

// Decoder reads and decodes a GunnyScript document from an input stream.
//
// The input is read in chunks of ChunkSize bytes and fed to a Scanner, so
// events become available as soon as the bytes making them up have been
// read. Reads and incomplete retries are traced to the logger set with
// WithLogger.
type Decoder struct {
	r       io.Reader
	opts    *options
	err     error
	s       *Scanner
	buf     []byte
	offset  int64
	retries int
	log     zerolog.Logger
	done    bool
}

// NewDecoder returns a new decoder that reads from r.
//
// The decoder may buffer data from r as necessary. It is the caller's
// responsibility to call Close on r if required.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	d := &Decoder{r: r}
	d.opts, d.err = newOptions(opts)
	if d.err != nil {
		return d
	}
	d.s, d.err = NewScanner(opts...)
	d.buf = make([]byte, d.opts.chunkSize)
	d.log = d.opts.logger.With().Str("component", "decoder").Logger()
	return d
}

// Token returns the next event of the document. It returns io.EOF after the
// last event. Parse errors are located *ParseError values.
func (d *Decoder) Token() (token.Token, error) {
	if d.err != nil {
		return token.Token{}, d.err
	}
	if d.r == nil {
		return token.Token{}, fmt.Errorf("gunnyscript: Decode(nil reader)")
	}
	for {
		tok, err := d.s.Next()
		if err != errors.ErrIncomplete {
			if err != nil && err != io.EOF {
				d.log.Debug().Err(err).Int64("offset", d.offset).Msg("parse error")
			}
			return tok, err
		}
		d.retries++
		d.log.Trace().Int("buffered", d.s.Buffered()).Int("retries", d.retries).Msg("incomplete event, reading more input")
		if err := d.fill(); err != nil {
			d.err = err
			return token.Token{}, err
		}
	}
}

// fill reads the next chunk into the scanner, closing it at the end of the
// input.
func (d *Decoder) fill() error {
	n, err := d.r.Read(d.buf)
	if n > 0 {
		d.offset += int64(n)
		d.log.Trace().Int("bytes", n).Int64("offset", d.offset).Msg("read chunk")
		if ferr := d.s.Feed(d.buf[:n]); ferr != nil {
			return ferr
		}
	}
	switch {
	case err == io.EOF:
		d.log.Trace().Int64("offset", d.offset).Msg("end of input")
		d.s.Close()
		return nil
	case err != nil:
		return fmt.Errorf("gunnyscript: reading input: %w", err)
	}
	return nil
}

// Document reads the rest of the input and returns the document tree. It
// returns io.EOF when called again after the document was returned.
func (d *Decoder) Document() (*ast.Document, error) {
	if d.done {
		return nil, io.EOF
	}
	b := parser.NewBuilder()
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := b.Add(tok); err != nil {
			d.log.Debug().Err(err).Msg("invalid document")
			return nil, err
		}
	}
	d.done = true
	return b.Document()
}

// Decode reads the document from its input and stores it in the value
// pointed to by v.
//
// See the documentation for Unmarshal for details about the conversion of
// GunnyScript into a Go value.
func (d *Decoder) Decode(v any) error {
	doc, err := d.Document()
	if err != nil {
		return err
	}
	return mapper.Map(doc, v, d.opts.maxDepth)
}
