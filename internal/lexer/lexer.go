// Package lexer turns GunnyScript source into a flat stream of events. The
// lexer is incremental: input may be fed in chunks of any size and Next
// reports errors.ErrIncomplete until enough bytes have arrived to finish the
// next event.
package lexer

import (
	"bytes"
	"io"
	"strings"

	"github.com/KimNorgaard/go-gunnyscript/datetime"
	"github.com/KimNorgaard/go-gunnyscript/errors"
	"github.com/KimNorgaard/go-gunnyscript/internal/decoder"
	"github.com/KimNorgaard/go-gunnyscript/number"
	"github.com/KimNorgaard/go-gunnyscript/token"
)

const (
	// DefaultMaxDepth is the default limit on nested arrays and objects.
	DefaultMaxDepth = 1000
	// MaxFence is the longest run of '#' accepted around a literal string.
	MaxFence = 20

	eof rune = -1
)

type mode uint8

const (
	expectingValue mode = iota
	expectingPropertyName
)

// char is a decoded character and the position it was read from.
type char struct {
	r    rune
	size int
	pos  token.Position
}

// state is everything Next may change before it knows whether the input is
// complete. It is copied on entry and restored on errors.ErrIncomplete. The
// nesting stack is left out: it only changes right before an event is
// returned.
type state struct {
	off        int // bytes of in consumed by the current attempt
	cur        decoder.Cursor
	mode       mode
	newlines   int
	pending    char
	hasPending bool
	rootDone   bool
}

// Lexer holds the state for tokenizing GunnyScript source.
type Lexer struct {
	in       []byte
	closed   bool
	st       state
	stack    []token.Complex
	maxDepth int
	buf      bytes.Buffer
	err      error
}

// Option configures a Lexer.
type Option func(*Lexer)

// MaxDepth limits how deeply arrays and objects may nest.
func MaxDepth(n int) Option {
	return func(l *Lexer) {
		if n > 0 {
			l.maxDepth = n
		}
	}
}

// New creates a Lexer with no input. Call Feed to supply bytes and
// CloseInput once there are no more.
func New(opts ...Option) *Lexer {
	l := &Lexer{
		st:       state{cur: decoder.NewCursor()},
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewBytes creates a Lexer over a complete document.
func NewBytes(src []byte, opts ...Option) *Lexer {
	l := New(opts...)
	l.Feed(src)
	l.CloseInput()
	return l
}

// Feed appends p to the unconsumed input. p is copied.
func (l *Lexer) Feed(p []byte) {
	l.in = append(l.in, p...)
}

// CloseInput marks the end of the input. From then on a truncated event is
// an error instead of errors.ErrIncomplete.
func (l *Lexer) CloseInput() {
	l.closed = true
}

// Depth returns the number of currently open arrays and objects.
func (l *Lexer) Depth() int { return len(l.stack) }

// Pos returns the position of the first unconsumed character.
func (l *Lexer) Pos() token.Position {
	if l.st.hasPending {
		return l.st.pending.pos
	}
	return l.st.cur.Position
}

// Buffered returns the number of fed bytes not yet consumed by an event.
func (l *Lexer) Buffered() int { return len(l.in) }

// Next returns the next event. It returns io.EOF after the root value (or an
// empty document) once the input is closed, errors.ErrIncomplete when more
// input is needed, and a located *errors.ParseError otherwise. Parse errors
// are sticky.
func (l *Lexer) Next() (token.Token, error) {
	if l.err != nil {
		return token.Token{}, l.err
	}
	saved := l.st
	tok, err := l.next()
	if err != nil {
		if err == errors.ErrIncomplete {
			l.st = saved
			return token.Token{}, err
		}
		l.err = err
		return token.Token{}, err
	}
	l.in = l.in[l.st.off:]
	l.st.off = 0
	return tok, nil
}

func (l *Lexer) next() (token.Token, error) {
	for {
		c, err := l.read()
		if err != nil {
			return token.Token{}, err
		}
		switch c.r {
		case ' ', '\t', '\r':
			continue
		case '\n':
			l.st.newlines++
			if l.st.newlines >= 2 {
				// Each further newline closes another blank line.
				l.st.newlines = 1
				return l.token(token.LINESPACE, c), nil
			}
			continue
		case eof:
			if len(l.stack) > 0 {
				return token.Token{}, l.errorAt(c, errors.New(errors.UnexpectedEOF, "unclosed "+string(l.stack[len(l.stack)-1])))
			}
			return token.Token{}, io.EOF
		case '/':
			tok, ok, err := l.readComment(c)
			if err != nil || ok {
				return tok, err
			}
			continue
		}

		if l.st.rootDone {
			return token.Token{}, l.unexpected(c)
		}
		if l.st.mode == expectingPropertyName {
			tok, ok, err := l.lexPropertyName(c)
			if err != nil || ok {
				return tok, err
			}
			continue
		}
		tok, ok, err := l.lexValue(c)
		if err != nil || ok {
			return tok, err
		}
	}
}

// lexValue handles c in the value state. ok is false when c produced no
// event (an array separator).
func (l *Lexer) lexValue(c char) (tok token.Token, ok bool, err error) {
	switch {
	case c.r == '{':
		return l.open(c, token.OBJECT)
	case c.r == '[':
		return l.open(c, token.ARRAY)
	case c.r == ']':
		if l.top() != token.ARRAY {
			return tok, false, l.unexpected(c)
		}
		return l.close(c, token.ARRAY), true, nil
	case c.r == ',':
		if l.top() != token.ARRAY {
			return tok, false, l.unexpected(c)
		}
		l.st.newlines = 0
		return tok, false, nil
	case c.r == '"':
		tok, err = l.readString(c, token.Regular)
		return tok, err == nil, err
	case c.r == '#':
		tok, err = l.readLiteralString(c, c, token.Literal)
		return tok, err == nil, err
	case c.r == 'd':
		return l.readDedentString(c)
	case c.r == 't' || c.r == 'f' || c.r == 'n':
		tok, err = l.readKeyword(c)
		return tok, err == nil, err
	case isDigit(c.r) || c.r == '-' || c.r == '+':
		tok, err = l.readNumberOrDate(c)
		return tok, err == nil, err
	}
	return tok, false, l.unexpected(c)
}

// lexPropertyName handles c in the property-name state.
func (l *Lexer) lexPropertyName(c char) (tok token.Token, ok bool, err error) {
	switch {
	case c.r == '}':
		return l.close(c, token.OBJECT), true, nil
	case c.r == ',':
		l.st.newlines = 0
		return tok, false, nil
	case isIdentStart(c.r):
		tok, err = l.readIdentifier(c)
		return tok, err == nil, err
	}
	return tok, false, l.errorAt(c, errors.Newf(errors.InvalidPropertyNameChar, "%q", c.r))
}

func (l *Lexer) open(c char, kind token.Complex) (token.Token, bool, error) {
	if len(l.stack) >= l.maxDepth {
		return token.Token{}, false, l.errorAt(c, errors.Newf(errors.NestingTooDeep, "exceeded max depth of %d", l.maxDepth))
	}
	l.stack = append(l.stack, kind)
	if kind == token.OBJECT {
		l.st.mode = expectingPropertyName
	} else {
		l.st.mode = expectingValue
	}
	tok := l.token(token.START, c)
	tok.Complex = kind
	return tok, true, nil
}

func (l *Lexer) close(c char, kind token.Complex) token.Token {
	l.stack = l.stack[:len(l.stack)-1]
	tok := l.token(token.END, c)
	tok.Complex = kind
	l.afterValue()
	return tok
}

// afterValue picks the state following a complete value.
func (l *Lexer) afterValue() {
	switch l.top() {
	case "":
		l.st.rootDone = true
		l.st.mode = expectingValue
	case token.OBJECT:
		l.st.mode = expectingPropertyName
	default:
		l.st.mode = expectingValue
	}
}

func (l *Lexer) top() token.Complex {
	if len(l.stack) == 0 {
		return ""
	}
	return l.stack[len(l.stack)-1]
}

func (l *Lexer) token(typ token.Type, c char) token.Token {
	if typ != token.LINESPACE {
		l.st.newlines = 0
	}
	return token.Token{Type: typ, Line: c.pos.Line, Column: c.pos.Column, Offset: c.pos.Offset}
}

func (l *Lexer) value(c char, v token.Value) token.Token {
	tok := l.token(token.VALUE, c)
	tok.Value = v
	l.afterValue()
	return tok
}

// read returns the next character, the pushed-back one first. Past the end
// of closed input it returns eof.
func (l *Lexer) read() (char, error) {
	if l.st.hasPending {
		l.st.hasPending = false
		return l.st.pending, nil
	}
	pos := l.st.cur.Position
	if l.st.off >= len(l.in) {
		if l.closed {
			return char{r: eof, pos: pos}, nil
		}
		return char{}, errors.ErrIncomplete
	}
	r, size, err := decoder.DecodeRune(l.in[l.st.off:])
	if err != nil {
		if err == errors.ErrIncomplete && l.closed {
			err = errors.New(errors.InvalidUTF8, "truncated sequence at end of input")
		}
		return char{}, errors.At(err, pos.Line, pos.Column)
	}
	l.st.off += size
	l.st.cur.Advance(r, size)
	return char{r: r, size: size, pos: pos}, nil
}

// unread pushes c back so the next read returns it again.
func (l *Lexer) unread(c char) {
	l.st.pending = c
	l.st.hasPending = true
}

func (l *Lexer) errorAt(c char, err error) error {
	return errors.At(err, c.pos.Line, c.pos.Column)
}

func (l *Lexer) unexpected(c char) error {
	if c.r == eof {
		return l.errorAt(c, errors.New(errors.UnexpectedEOF, ""))
	}
	return l.errorAt(c, errors.Newf(errors.UnexpectedChar, "%q", c.r))
}

// readComment consumes a comment starting at the '/' in c. ok is true when
// the comment is a doc comment and tok holds it.
func (l *Lexer) readComment(c char) (tok token.Token, ok bool, err error) {
	second, err := l.read()
	if err != nil {
		return tok, false, err
	}
	switch second.r {
	case '*':
		return tok, false, l.skipBlockComment(c)
	case '/':
	default:
		return tok, false, l.errorAt(second, errors.Newf(errors.InvalidCommentDelimiter, "expected '/' or '*' after '/', got %s", describe(second.r)))
	}

	third, err := l.read()
	if err != nil {
		return tok, false, err
	}
	if third.r != '/' {
		l.unread(third)
		l.st.newlines = 0
		return tok, false, l.skipLineComment()
	}

	switch {
	case l.st.rootDone:
		return tok, false, l.errorAt(c, errors.New(errors.DanglingDocComment, "doc comment after the root value"))
	case l.st.mode == expectingValue && len(l.stack) > 0:
		return tok, false, l.errorAt(c, errors.New(errors.UnexpectedDocComment, "doc comments may only precede the root value or an object property"))
	}

	l.buf.Reset()
	for {
		ch, err := l.read()
		if err != nil {
			return tok, false, err
		}
		if ch.r == eof {
			l.unread(ch)
			break
		}
		l.buf.WriteRune(ch.r)
		if ch.r == '\n' {
			break
		}
	}
	tok = l.token(token.DOC_COMMENT, c)
	tok.Text = l.buf.String()
	// The doc comment consumed the newline ending its line.
	l.st.newlines = 1
	return tok, true, nil
}

// skipLineComment consumes up to, but not including, the end of the line.
func (l *Lexer) skipLineComment() error {
	for {
		ch, err := l.read()
		if err != nil {
			return err
		}
		if ch.r == '\n' || ch.r == eof {
			l.unread(ch)
			return nil
		}
	}
}

func (l *Lexer) skipBlockComment(start char) error {
	star := false
	for {
		ch, err := l.read()
		if err != nil {
			return err
		}
		switch {
		case ch.r == eof:
			return l.errorAt(start, errors.New(errors.MissingTerminator, "unterminated block comment"))
		case star && ch.r == '/':
			l.st.newlines = 0
			return nil
		}
		star = ch.r == '*'
	}
}

// readIdentifier reads a property name. The name must be followed by a
// space or tab, which is consumed.
func (l *Lexer) readIdentifier(start char) (token.Token, error) {
	l.buf.Reset()
	l.buf.WriteRune(start.r)
	for {
		ch, err := l.read()
		if err != nil {
			return token.Token{}, err
		}
		switch {
		case isIdentChar(ch.r):
			l.buf.WriteRune(ch.r)
			continue
		case ch.r == ' ' || ch.r == '\t':
		case ch.r == eof:
			return token.Token{}, l.errorAt(ch, errors.Newf(errors.UnexpectedEOF, "after property name %q", l.buf.String()))
		default:
			return token.Token{}, l.errorAt(ch, errors.Newf(errors.InvalidPropertyNameChar, "%s in property name %q", describe(ch.r), l.buf.String()))
		}
		break
	}
	tok := l.token(token.PROPERTY, start)
	tok.Text = l.buf.String()
	l.st.mode = expectingValue
	return tok, nil
}

// readScalar reads the run of characters making up a number, date or
// keyword. The terminating character is pushed back.
func (l *Lexer) readScalar(start char) (string, error) {
	l.buf.Reset()
	l.buf.WriteRune(start.r)
	for {
		ch, err := l.read()
		if err != nil {
			return "", err
		}
		switch {
		case isScalarChar(ch.r):
			l.buf.WriteRune(ch.r)
		case isTerminator(ch.r):
			l.unread(ch)
			return l.buf.String(), nil
		default:
			return "", l.errorAt(ch, errors.Newf(errors.UnexpectedChar, "%s after %q", describe(ch.r), l.buf.String()))
		}
	}
}

func (l *Lexer) readKeyword(start char) (token.Token, error) {
	text, err := l.readScalar(start)
	if err != nil {
		return token.Token{}, err
	}
	switch text {
	case "true":
		return l.value(start, token.Value{Kind: token.BOOLEAN, Bool: true}), nil
	case "false":
		return l.value(start, token.Value{Kind: token.BOOLEAN}), nil
	case "null":
		return l.value(start, token.Value{Kind: token.NULL}), nil
	}
	return token.Token{}, l.errorAt(start, errors.Newf(errors.InvalidIdentifier, "%q", text))
}

// readNumberOrDate classifies a scalar by its characters: a ':' makes a
// date-time, a '-' anywhere but the first position a date, anything else a
// number.
func (l *Lexer) readNumberOrDate(start char) (token.Token, error) {
	text, err := l.readScalar(start)
	if err != nil {
		return token.Token{}, err
	}
	var v token.Value
	switch {
	case strings.IndexByte(text, ':') >= 0:
		dt, err := datetime.ParseDateTime(text)
		if err != nil {
			return token.Token{}, l.errorAt(start, err)
		}
		v = token.Value{Kind: token.DATETIME, DateTime: dt}
	case strings.IndexByte(text[1:], '-') >= 0:
		d, err := datetime.ParseDate(text)
		if err != nil {
			return token.Token{}, l.errorAt(start, err)
		}
		v = token.Value{Kind: token.DATE, Date: d}
	default:
		n, err := number.Parse(text)
		if err != nil {
			return token.Token{}, l.errorAt(start, err)
		}
		v = token.Value{Kind: token.NUMBER, Number: n}
	}
	return l.value(start, v), nil
}

// readDedentString reads d"..." or d#"..."#.
func (l *Lexer) readDedentString(start char) (token.Token, bool, error) {
	ch, err := l.read()
	if err != nil {
		return token.Token{}, false, err
	}
	var tok token.Token
	switch ch.r {
	case '"':
		tok, err = l.readString(start, token.Dedent)
	case '#':
		tok, err = l.readLiteralString(start, ch, token.DedentLiteral)
	default:
		if isScalarChar(ch.r) {
			l.unread(ch)
			text, err := l.readScalar(start)
			if err != nil {
				return token.Token{}, false, err
			}
			return token.Token{}, false, l.errorAt(start, errors.Newf(errors.InvalidIdentifier, "%q", text))
		}
		if ch.r == eof {
			return token.Token{}, false, l.unexpected(ch)
		}
		return token.Token{}, false, l.errorAt(ch, errors.Newf(errors.UnexpectedChar, "%s after 'd', expected '\"' or '#'", describe(ch.r)))
	}
	return tok, err == nil, err
}

// readString reads a quoted string whose opening '"' has been consumed.
// Raw newlines are allowed.
func (l *Lexer) readString(start char, style token.StringStyle) (token.Token, error) {
	l.buf.Reset()
	for {
		ch, err := l.read()
		if err != nil {
			return token.Token{}, err
		}
		switch ch.r {
		case eof:
			return token.Token{}, l.errorAt(start, errors.New(errors.MissingTerminator, "unterminated string"))
		case '"':
			return l.value(start, token.Value{Kind: token.STRING, Str: l.buf.String(), Style: style}), nil
		case '\\':
			r, err := l.readEscapeSequence(ch)
			if err != nil {
				return token.Token{}, err
			}
			l.buf.WriteRune(r)
		default:
			l.buf.WriteRune(ch.r)
		}
	}
}

func (l *Lexer) readEscapeSequence(backslash char) (rune, error) {
	ch, err := l.read()
	if err != nil {
		return 0, err
	}
	switch ch.r {
	case '"', '\'', '\\':
		return ch.r, nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case '0':
		return 0, nil
	case eof:
		return 0, l.errorAt(backslash, errors.New(errors.MissingTerminator, "unterminated string"))
	}
	return 0, l.errorAt(backslash, errors.Newf(errors.InvalidEscapeSequence, "\\%c", ch.r))
}

// readLiteralString reads a fenced string. hash is the first '#' of the
// opening fence; start is where the token begins (the 'd' for dedent
// strings). The string ends at a '"' followed by as many '#' as opened it;
// a '"' followed by fewer is content.
func (l *Lexer) readLiteralString(start, hash char, style token.StringStyle) (token.Token, error) {
	fence := 1
	for {
		ch, err := l.read()
		if err != nil {
			return token.Token{}, err
		}
		if ch.r == '"' {
			break
		}
		if ch.r != '#' {
			if ch.r == eof {
				return token.Token{}, l.errorAt(ch, errors.New(errors.UnexpectedEOF, "in literal string delimiter"))
			}
			return token.Token{}, l.errorAt(ch, errors.Newf(errors.InvalidLiteralStringChar, "%s, expected '#' or '\"'", describe(ch.r)))
		}
		fence++
		if fence > MaxFence {
			return token.Token{}, l.errorAt(hash, errors.Newf(errors.LiteralStringDelimiterTooLong, "more than %d '#'", MaxFence))
		}
	}

	l.buf.Reset()
	for {
		ch, err := l.read()
		if err != nil {
			return token.Token{}, err
		}
		switch ch.r {
		case eof:
			return token.Token{}, l.errorAt(start, errors.New(errors.MissingTerminator, "unterminated literal string"))
		case '"':
			closed, err := l.readClosingFence(fence)
			if err != nil {
				return token.Token{}, err
			}
			if closed {
				return l.value(start, token.Value{Kind: token.STRING, Str: l.buf.String(), Style: style}), nil
			}
		default:
			l.buf.WriteRune(ch.r)
		}
	}
}

// readClosingFence reads up to fence '#' after a '"'. If the fence is
// incomplete, the '"' and the '#' seen are content and the character that
// broke the fence is pushed back.
func (l *Lexer) readClosingFence(fence int) (bool, error) {
	n := 0
	for n < fence {
		ch, err := l.read()
		if err != nil {
			return false, err
		}
		if ch.r != '#' {
			l.unread(ch)
			break
		}
		n++
	}
	if n == fence {
		return true, nil
	}
	l.buf.WriteByte('"')
	for i := 0; i < n; i++ {
		l.buf.WriteByte('#')
	}
	return false, nil
}

func describe(r rune) string {
	if r == eof {
		return "end of input"
	}
	return "'" + string(r) + "'"
}

// IsIdentifier reports whether s can be written as a property name.
func IsIdentifier(s string) bool {
	for i, r := range s {
		if i == 0 && !isIdentStart(r) || !isIdentChar(r) {
			return false
		}
	}
	return s != ""
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

func isLetter(r rune) bool { return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' }

func isIdentStart(r rune) bool { return isLetter(r) || r == '_' }

func isIdentChar(r rune) bool { return isLetter(r) || isDigit(r) || r == '_' || r == '-' }

func isScalarChar(r rune) bool {
	return isLetter(r) || isDigit(r) || r == '.' || r == ':' || r == '+' || r == '-'
}

func isTerminator(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n', ',', ']', '}', '/', eof:
		return true
	}
	return false
}
