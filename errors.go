package gunnyscript

import (
	"github.com/KimNorgaard/go-gunnyscript/errors"
	"github.com/KimNorgaard/go-gunnyscript/internal/mapper"
	"github.com/KimNorgaard/go-gunnyscript/internal/marshaler"
)

// A ParseError is a syntax error located at a line and column of the input.
type ParseError = errors.ParseError

// ErrIncomplete is returned by Scanner.Next when more input is needed.
var ErrIncomplete = errors.ErrIncomplete

// A MarshalerError represents an error from calling a MarshalGunny or
// MarshalText method.
type MarshalerError = marshaler.MarshalerError

// An UnmarshalerError represents an error from calling an UnmarshalGunny or
// UnmarshalText method.
type UnmarshalerError = mapper.UnmarshalerError

// An UnmarshalTypeError describes a value that cannot be stored in a Go
// value of a specific type.
type UnmarshalTypeError = mapper.UnmarshalTypeError
