package service

import (
	"errors"
	"fmt"
)

// StartupError reports a failure while bringing the service to Ready:
// missing or corrupt artifacts, an unavailable embedder, inconsistent
// configuration. It is terminal.
type StartupError struct {
	Op  string
	Err error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup.%s: %v", e.Op, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// RequestValidationError reports a client mistake; its message is returned
// to the caller.
type RequestValidationError struct {
	Field string
	Msg   string
}

func (e *RequestValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

// InternalComputationError reports an unexpected failure while embedding,
// searching or assembling a response. Details are logged, never returned.
type InternalComputationError struct {
	Op  string
	Err error
}

func (e *InternalComputationError) Error() string {
	return fmt.Sprintf("internal.%s: %v", e.Op, e.Err)
}

func (e *InternalComputationError) Unwrap() error {
	return e.Err
}

func invalid(field, format string, args ...any) error {
	return &RequestValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

func internal(op string, err error) error {
	if err == nil {
		return nil
	}
	return &InternalComputationError{Op: op, Err: err}
}

// IsValidation reports whether err is a RequestValidationError.
func IsValidation(err error) bool {
	var v *RequestValidationError
	return errors.As(err, &v)
}
