package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrIncomplete is returned when the input ends in the middle of a token and
// more bytes are needed. It is not a failure: feed more input and retry.
var ErrIncomplete = stderrors.New("gunnyscript: incomplete input")

// Code identifies the kind of a parse failure.
type Code int

const (
	InvalidUTF8 Code = iota + 1
	UnexpectedChar
	InvalidIdentifier
	InvalidPropertyNameChar
	InvalidEscapeSequence
	InvalidLiteralStringChar
	LiteralStringDelimiterTooLong
	InvalidHexNumber
	InvalidSignedNumber
	InvalidUnsignedNumber
	InvalidFixedPointNumber
	InvalidOctalNumber
	InvalidCommentDelimiter
	UnexpectedDocComment
	DanglingDocComment
	InvalidDateTime
	MissingYearInDate
	MissingMonthInDate
	MissingDayInDate
	InvalidDateYear
	InvalidDateMonth
	InvalidDateDay
	InvalidDate
	DuplicatePropertyName
	UnexpectedEOF
	MissingTerminator
	UnexpectedItem
	NestingTooDeep
)

var codeNames = map[Code]string{
	InvalidUTF8:                   "invalid utf-8",
	UnexpectedChar:                "unexpected character",
	InvalidIdentifier:             "invalid identifier",
	InvalidPropertyNameChar:       "invalid character in property name",
	InvalidEscapeSequence:         "invalid escape sequence",
	InvalidLiteralStringChar:      "invalid character in literal string delimiter",
	LiteralStringDelimiterTooLong: "literal string delimiter too long",
	InvalidHexNumber:              "invalid hexadecimal number",
	InvalidSignedNumber:           "invalid signed number",
	InvalidUnsignedNumber:         "invalid unsigned number",
	InvalidFixedPointNumber:       "invalid fixed-point number",
	InvalidOctalNumber:            "invalid octal number",
	InvalidCommentDelimiter:       "invalid comment delimiter",
	UnexpectedDocComment:          "unexpected doc comment",
	DanglingDocComment:            "dangling doc comment",
	InvalidDateTime:               "invalid date-time",
	MissingYearInDate:             "missing year in date",
	MissingMonthInDate:            "missing month in date",
	MissingDayInDate:              "missing day in date",
	InvalidDateYear:               "invalid year in date",
	InvalidDateMonth:              "invalid month in date",
	InvalidDateDay:                "invalid day in date",
	InvalidDate:                   "invalid date",
	DuplicatePropertyName:         "duplicate property name",
	UnexpectedEOF:                 "unexpected end of input",
	MissingTerminator:             "missing terminator",
	UnexpectedItem:                "unexpected item",
	NestingTooDeep:                "nesting too deep",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Category groups error codes into the two top-level failure classes.
type Category int

const (
	// Parse covers syntax violations.
	Parse Category = iota
	// Encoding covers malformed UTF-8 input.
	Encoding
)

func (c Category) String() string {
	if c == Encoding {
		return "encoding"
	}
	return "parse"
}

// Category returns the category the code belongs to.
func (c Code) Category() Category {
	if c == InvalidUTF8 {
		return Encoding
	}
	return Parse
}

// ParseError represents a single error that occurred during parsing.
// It includes the position of the error when known (Line > 0).
type ParseError struct {
	Code    Code
	Message string
	Line    int
	Column  int
	Err     error
}

// New returns an unlocated error with the given code and message.
func New(code Code, msg string) *ParseError {
	return &ParseError{Code: code, Message: msg}
}

// Newf is like New but formats the message.
func Newf(code Code, format string, args ...any) *ParseError {
	return &ParseError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an unlocated error with the given code caused by err.
func Wrap(code Code, msg string, err error) *ParseError {
	return &ParseError{Code: code, Message: msg, Err: err}
}

// At returns a copy of err located at line and column. Errors that are not
// a *ParseError, or that already carry a location, are returned unchanged.
func At(err error, line, column int) error {
	var pe *ParseError
	if !stderrors.As(err, &pe) || pe.Line > 0 {
		return err
	}
	located := *pe
	located.Line = line
	located.Column = column
	return &located
}

func (e *ParseError) Error() string {
	msg := e.Code.String()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Line <= 0 {
		return "gunnyscript: parsing error: " + msg
	}
	return fmt.Sprintf("gunnyscript: parsing error at line %d, column %d: %s", e.Line, e.Column, msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is a *ParseError with the same code.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	return ok && t.Code == e.Code
}

// Category returns the category of the error's code.
func (e *ParseError) Category() Category { return e.Code.Category() }

// CodeOf returns the code of the first *ParseError in err's chain, or 0.
func CodeOf(err error) Code {
	var pe *ParseError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return 0
}
