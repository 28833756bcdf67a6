package games

import (
	"errors"
	"fmt"
)

var (
	// ErrReadLine is matched by every *InputReadError.
	ErrReadLine = errors.New("Failed to read line")
	// ErrNotANumber is matched by every *ParseError.
	ErrNotANumber = errors.New("not a number")
	// ErrWriteOutput means a line could not be written to the player.
	ErrWriteOutput = errors.New("failed printing to stdout")

	errInvalidUTF8 = errors.New("stream did not contain valid UTF-8")
)

// InputReadError means the next guess could not be read. It ends the session.
type InputReadError struct {
	Err error
}

func (e *InputReadError) Error() string {
	return fmt.Sprintf("%v: %v", ErrReadLine, e.Err)
}

func (e *InputReadError) Unwrap() []error { return []error{ErrReadLine, e.Err} }

// ParseError means a guess line was not an unsigned 32-bit integer. It ends
// the session.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %q: %v", ErrNotANumber, e.Input, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrNotANumber, e.Err} }
