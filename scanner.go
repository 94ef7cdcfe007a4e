package gunnyscript

import (
	"fmt"

	"github.com/KimNorgaard/go-gunnyscript/internal/lexer"
	"github.com/KimNorgaard/go-gunnyscript/token"
)

// Scanner is a push-style incremental parser. Input is supplied in chunks of
// any size, including chunks that split a UTF-8 sequence, and events are
// pulled with Next:
//
//	s, _ := gunnyscript.NewScanner()
//	for chunk := range chunks {
//		s.Feed(chunk)
//		for {
//			tok, err := s.Next()
//			if errors.Is(err, gunnyscript.ErrIncomplete) {
//				break // wait for the next chunk
//			}
//			...
//		}
//	}
//	s.Close()
//	// drain the remaining events until io.EOF
//
// The events of a document are the same however its input is split.
type Scanner struct {
	l      *lexer.Lexer
	closed bool
}

// NewScanner returns a scanner without input. Only the MaxDepth option
// applies.
func NewScanner(opts ...Option) (*Scanner, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Scanner{l: lexer.New(lexer.MaxDepth(o.maxDepth))}, nil
}

// Feed appends p to the input. p is copied and may be reused by the caller.
func (s *Scanner) Feed(p []byte) error {
	if s.closed {
		return fmt.Errorf("gunnyscript: Feed after Close")
	}
	s.l.Feed(p)
	return nil
}

// Close marks the end of the input.
func (s *Scanner) Close() {
	s.closed = true
	s.l.CloseInput()
}

// Next returns the next event. It returns ErrIncomplete while the buffered
// input ends inside an event and the scanner is not closed, io.EOF after
// the last event, and a *ParseError on malformed input. A ParseError is
// returned again by every later call.
func (s *Scanner) Next() (token.Token, error) {
	return s.l.Next()
}

// Pos returns the position of the first character not yet consumed by an
// event.
func (s *Scanner) Pos() token.Position { return s.l.Pos() }

// Depth returns the number of currently open arrays and objects.
func (s *Scanner) Depth() int { return s.l.Depth() }

// Buffered returns the number of fed bytes that no event has consumed yet.
func (s *Scanner) Buffered() int { return s.l.Buffered() }
