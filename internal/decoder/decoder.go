// Package decoder decodes UTF-8 one character at a time from a byte buffer
// that may end in the middle of a character.
package decoder

import (
	"unicode/utf8"

	"github.com/KimNorgaard/go-gunnyscript/errors"
	"github.com/KimNorgaard/go-gunnyscript/token"
)

// widths maps a lead byte to the length of its UTF-8 sequence. Zero marks
// bytes that cannot start a sequence: continuation bytes, the overlong
// leads 0xC0 and 0xC1, and 0xF5 and above.
var widths = [256]uint8{
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x00
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x10
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x20
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x30
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x40
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x50
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x60
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, // 0x70
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0x80
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0x90
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0xA0
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0xB0
	0, 0, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, // 0xC0
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, // 0xD0
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, // 0xE0
	4, 4, 4, 4, 4, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 0xF0
}

// Width returns the sequence length implied by lead byte b, or 0 if b cannot
// start a sequence.
func Width(b byte) int { return int(widths[b]) }

// DecodeRune decodes the first character of p and returns it with its width
// in bytes. It returns errors.ErrIncomplete when p holds a valid but
// truncated prefix of a character, and an InvalidUTF8 error for a bad lead
// byte, bad continuation byte, overlong encoding or surrogate.
func DecodeRune(p []byte) (rune, int, error) {
	if len(p) == 0 {
		return 0, 0, errors.ErrIncomplete
	}
	b0 := p[0]
	w := int(widths[b0])
	switch w {
	case 0:
		return 0, 0, errors.Newf(errors.InvalidUTF8, "invalid lead byte 0x%02X", b0)
	case 1:
		return rune(b0), 1, nil
	}

	// The second byte has a narrower range for leads whose shortest
	// sequences would be overlong, surrogates, or above U+10FFFF.
	lo, hi := byte(0x80), byte(0xBF)
	switch b0 {
	case 0xE0:
		lo = 0xA0
	case 0xED:
		hi = 0x9F
	case 0xF0:
		lo = 0x90
	case 0xF4:
		hi = 0x8F
	}
	for i := 1; i < w; i++ {
		if i >= len(p) {
			return 0, 0, errors.ErrIncomplete
		}
		b := p[i]
		if b < lo || b > hi {
			return 0, 0, errors.Newf(errors.InvalidUTF8, "invalid continuation byte 0x%02X", b)
		}
		lo, hi = 0x80, 0xBF
	}
	r, _ := utf8.DecodeRune(p[:w])
	return r, w, nil
}

// Cursor tracks the position of the next character to be decoded.
type Cursor struct {
	token.Position
}

// NewCursor returns a cursor at the start of the input.
func NewCursor() Cursor {
	return Cursor{token.Position{Line: 1, Column: 1}}
}

// Advance moves past a decoded character of the given width. Only call it
// once a decode has succeeded.
func (c *Cursor) Advance(r rune, size int) {
	c.Offset += size
	if r == '\n' {
		c.Line++
		c.Column = 1
		return
	}
	c.Column++
}
