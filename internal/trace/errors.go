package trace

import (
	"errors"
	"fmt"
	"reflect"
)

// TraceError represents a fault detected by the tracer.
//
// Trace errors include:
//   - Unsupported type: a value with no registry entry was boxed
//   - Not implemented: a node construction path has no provider override
//   - Scope mismatch: trace scopes were closed out of order
//   - Shape mismatch: traced input and root factories differ in shape
//
// Unsupported type and shape mismatch are returned as errors. The others are
// configuration faults and are raised with panic.
type TraceError struct {
	// Code identifies the error category.
	Code TraceErrorCode

	// Message is a human-readable description.
	Message string

	// Type is the offending runtime type, if any.
	Type reflect.Type

	// Level is the trace level involved, if any.
	Level Level
}

// TraceErrorCode categorizes trace errors.
type TraceErrorCode string

const (
	// ErrCodeUnsupportedType indicates a value type has no registered box.
	ErrCodeUnsupportedType TraceErrorCode = "UNSUPPORTED_TYPE"

	// ErrCodeNotImplemented indicates a Node construction path was not
	// overridden by the gradient-rule provider.
	ErrCodeNotImplemented TraceErrorCode = "NOT_IMPLEMENTED"

	// ErrCodeScopeMismatch indicates a scope exited out of stack order.
	ErrCodeScopeMismatch TraceErrorCode = "SCOPE_MISMATCH"

	// ErrCodeShapeMismatch indicates roots and input do not share a shape.
	ErrCodeShapeMismatch TraceErrorCode = "SHAPE_MISMATCH"

	// ErrCodeNotARootFactory indicates a roots leaf is not a RootFactory.
	ErrCodeNotARootFactory TraceErrorCode = "NOT_A_ROOT_FACTORY"

	// ErrCodeRegistrySealed indicates registration after tracing began.
	ErrCodeRegistrySealed TraceErrorCode = "REGISTRY_SEALED"
)

// Error implements the error interface.
func (e *TraceError) Error() string {
	if e.Type != nil {
		return fmt.Sprintf("%s: %s (type=%s)", e.Code, e.Message, e.Type)
	}
	if e.Level != NoLevel {
		return fmt.Sprintf("%s: %s (level=%d)", e.Code, e.Message, e.Level)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func hasCode(err error, code TraceErrorCode) bool {
	var te *TraceError
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}

// IsUnsupportedType returns true if the error is an unsupported type error.
// Uses errors.As to handle wrapped errors.
func IsUnsupportedType(err error) bool {
	return hasCode(err, ErrCodeUnsupportedType)
}

// IsNotImplemented returns true if the error is a not-implemented fault.
func IsNotImplemented(err error) bool {
	return hasCode(err, ErrCodeNotImplemented)
}

// IsScopeMismatch returns true if the error is a scope mismatch fault.
func IsScopeMismatch(err error) bool {
	return hasCode(err, ErrCodeScopeMismatch)
}

// IsShapeMismatch returns true if the error is a shape mismatch error.
func IsShapeMismatch(err error) bool {
	return hasCode(err, ErrCodeShapeMismatch)
}

// NewUnsupportedTypeError creates a TraceError for a value that cannot be boxed.
func NewUnsupportedTypeError(t reflect.Type) *TraceError {
	return &TraceError{
		Code:    ErrCodeUnsupportedType,
		Message: "can't differentiate with respect to this type",
		Type:    t,
	}
}

// NewNotImplementedError creates a TraceError for a missing provider override.
func NewNotImplementedError(method string) *TraceError {
	return &TraceError{
		Code:    ErrCodeNotImplemented,
		Message: fmt.Sprintf("Node.%s must be implemented by the gradient-rule provider", method),
	}
}

// NewScopeMismatchError creates a TraceError for out-of-order scope exit.
func NewScopeMismatchError(got, top Level) *TraceError {
	return &TraceError{
		Code:    ErrCodeScopeMismatch,
		Message: fmt.Sprintf("exiting level %d while level %d is innermost", got, top),
		Level:   got,
	}
}
