package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/symcore/internal/ir"
)

// ComputeError is the error returned by Engine operations.
//
// Errors from the ir package are classified into a Code so callers can
// branch on the category without matching sentinel values. The underlying
// error stays reachable through Unwrap.
type ComputeError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Details contains additional context, such as the operator.
	Details map[string]string

	err error
}

// ErrorCode categorizes compute errors.
type ErrorCode string

const (
	// ErrCodeDivisionByZero indicates division or modulo by an exact zero.
	ErrCodeDivisionByZero ErrorCode = "DIVISION_BY_ZERO"

	// ErrCodeDomain indicates an argument outside an operator's domain, or
	// a malformed expression.
	ErrCodeDomain ErrorCode = "DOMAIN_ERROR"

	// ErrCodeUnsupported indicates an operation with no meaning for its
	// operands, such as ordering complex numbers.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED_OPERATION"

	// ErrCodeInternal indicates a failure inside the engine itself.
	ErrCodeInternal ErrorCode = "INTERNAL"

	// ErrCodeUndefinedVariable indicates a variable with no binding.
	ErrCodeUndefinedVariable ErrorCode = "UNDEFINED_VARIABLE"
)

// Error implements the error interface.
func (e *ComputeError) Error() string {
	if op, ok := e.Details["op"]; ok {
		return fmt.Sprintf("%s: %s (op=%s)", e.Code, e.Message, op)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the classified error, if any.
func (e *ComputeError) Unwrap() error {
	return e.err
}

func hasCode(err error, code ErrorCode) bool {
	var ce *ComputeError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// IsDivisionByZero returns true if err is a division by zero.
// Uses errors.As to handle wrapped errors.
func IsDivisionByZero(err error) bool { return hasCode(err, ErrCodeDivisionByZero) }

// IsDomainError returns true if err is a domain error.
func IsDomainError(err error) bool { return hasCode(err, ErrCodeDomain) }

// IsUnsupported returns true if err is an unsupported operation.
func IsUnsupported(err error) bool { return hasCode(err, ErrCodeUnsupported) }

// IsInternal returns true if err is an internal engine failure.
func IsInternal(err error) bool { return hasCode(err, ErrCodeInternal) }

// IsUndefinedVariable returns true if err names an unbound variable.
func IsUndefinedVariable(err error) bool { return hasCode(err, ErrCodeUndefinedVariable) }

// NewDivisionByZeroError creates a ComputeError for op with a zero divisor.
func NewDivisionByZeroError(op string) *ComputeError {
	return &ComputeError{
		Code:    ErrCodeDivisionByZero,
		Message: "division by zero",
		Details: map[string]string{"op": op},
		err:     ir.ErrDivisionByZero,
	}
}

// NewInternalError creates a ComputeError for an engine failure.
func NewInternalError(msg string, cause error) *ComputeError {
	return &ComputeError{Code: ErrCodeInternal, Message: msg, err: cause}
}

// classify maps err onto a ComputeError. Context errors and errors that
// are already classified pass through unchanged.
func classify(err error, op string) error {
	if err == nil {
		return nil
	}
	var ce *ComputeError
	if errors.As(err, &ce) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	code := ErrCodeInternal
	switch {
	case errors.Is(err, ir.ErrDivisionByZero):
		code = ErrCodeDivisionByZero
	case errors.Is(err, ir.ErrUndefinedVariable):
		code = ErrCodeUndefinedVariable
	case errors.Is(err, ir.ErrUnsupported):
		code = ErrCodeUnsupported
	case errors.Is(err, ir.ErrDomain),
		errors.Is(err, ir.ErrEmptyMatrix),
		errors.Is(err, ir.ErrEmptyRow),
		errors.Is(err, ir.ErrRaggedMatrix),
		errors.Is(err, ir.ErrEmptyVector),
		errors.Is(err, ir.ErrNotSquare),
		errors.Is(err, ir.ErrNotMatrix),
		errors.Is(err, ir.ErrDimension),
		errors.Is(err, ir.ErrFactorialType):
		code = ErrCodeDomain
	}

	ce = &ComputeError{Code: code, Message: err.Error(), err: err}
	if op != "" {
		ce.Details = map[string]string{"op": op}
	}
	return ce
}
