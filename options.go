package gunnyscript

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/KimNorgaard/go-gunnyscript/internal/lexer"
)

const defaultChunkSize = 4096

// Option configures parsing, decoding, encoding and formatting.
type Option func(*options) error

type options struct {
	indent    *int
	maxDepth  int
	chunkSize int
	logger    zerolog.Logger
}

func newOptions(opts []Option) (*options, error) {
	o := &options{
		maxDepth:  lexer.DefaultMaxDepth,
		chunkSize: defaultChunkSize,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Indent sets the number of spaces used per nesting level when encoding or
// formatting. Zero selects the compact single-line form.
func Indent(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("gunnyscript: indent must be non-negative")
		}
		o.indent = &n
		return nil
	}
}

// MaxDepth limits how deeply arrays and objects may nest. Deeper input
// fails with errors.NestingTooDeep.
//
// The depth n must be a positive integer.
func MaxDepth(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("gunnyscript: max depth must be a positive integer")
		}
		o.maxDepth = n
		return nil
	}
}

// ChunkSize sets how many bytes a Decoder reads from its reader at a time.
func ChunkSize(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("gunnyscript: chunk size must be a positive integer")
		}
		o.chunkSize = n
		return nil
	}
}

// WithLogger sets the logger a Decoder traces its reads to. The default
// discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = l
		return nil
	}
}
