package gid

import (
	"errors"
	"fmt"
)

// ErrMalformedIdentifier is returned for any identifier that does not parse.
var ErrMalformedIdentifier = errors.New("gid: malformed identifier")

// Construction errors.
var (
	ErrInvalidNamespace = errors.New("gid: invalid namespace")
	ErrInvalidType      = errors.New("gid: invalid type tag")
	ErrOutOfRange       = errors.New("gid: value out of range")
)

// ParseError describes why an input failed to parse.
// It unwraps to ErrMalformedIdentifier.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gid: malformed identifier %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformedIdentifier
}

func malformed(input, reason string) error {
	return &ParseError{Input: input, Reason: reason}
}
