package wire

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors standing in for the closed result code this codec was
// ported from (ok/general_error/out_of_space/invalid_position/
// out_of_memory/invalid_input). Go has no closed-enum return convention,
// so callers distinguish failures with errors.Is instead of a switch.
// out_of_memory has no Go counterpart (allocator failure panics rather
// than returning an error), so it folds into ErrGeneralError.
var (
	ErrGeneralError    = errors.New("wire: general error")
	ErrOutOfSpace      = errors.New("wire: out of space")
	ErrInvalidPosition = errors.New("wire: invalid position")
	ErrInvalidInput    = errors.New("wire: invalid input")
)

// FieldError annotates an encoding/decoding error with the dotted field
// path that produced it, outermost field first: each enclosing message
// prepends its own field name while unwinding back out through nested
// messages.
type FieldError struct {
	FieldPath []string
	Err       error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if len(e.FieldPath) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("error at proto path %s: %v", strings.Join(e.FieldPath, "."), e.Err)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error { return e.Err }

// Is implements errors.Is for compatibility.
func (e *FieldError) Is(target error) bool {
	_, ok := target.(*FieldError)
	return ok
}

// WrapField prefixes err with fieldName, building up a dotted path as
// generated Decode methods unwind back through nested messages. err==nil
// is a no-op, so call sites can wrap unconditionally.
func WrapField(err error, fieldName string) error {
	if err == nil {
		return nil
	}
	if fe, ok := err.(*FieldError); ok {
		return &FieldError{FieldPath: append([]string{fieldName}, fe.FieldPath...), Err: fe.Err}
	}
	return &FieldError{FieldPath: []string{fieldName}, Err: err}
}
