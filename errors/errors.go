// Package errors provides typed error handling for the pintos-go
// scheduling kernel.
//
// This package defines domain-specific error types that enable better error
// classification, debugging, and user feedback. All errors support the
// standard errors.Is() and errors.As() functions for error inspection.
//
// Unlike a general-purpose program, a kernel has only two kinds of caller-
// visible error: allocation failure, which is recoverable and surfaces as a
// dedicated value (kernel.ErrorTID), and precondition violation, which is
// fatal — the scheduler cannot repair its own invariants, so it asserts and
// halts rather than propagating an error value. A third kind, ErrInternal,
// marks a bug in the kernel itself. All are represented here so callers and
// tests can use errors.Is/errors.As uniformly; the fatal kinds are
// additionally the payload of a panic raised by Assert (ErrPrecondition)
// or Fatalf (ErrInternal), the idiomatic Go rendering of "assert and halt".
package errors

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrAllocation indicates a resource (currently: a page) could not be
	// granted. This is the only error kind the kernel recovers from
	// locally.
	ErrAllocation ErrorKind = iota
	// ErrPrecondition indicates a caller violated a documented precondition
	// (wrong interrupt level, wrong thread status, nil function, an
	// out-of-range priority/nice value, or a corrupted magic sentinel).
	// Fatal: the kernel cannot recover its own invariants once this is
	// detected.
	ErrPrecondition
	// ErrInternal indicates a bug in the kernel itself, not a caller
	// precondition violation — e.g. an unreachable scheduling state.
	ErrInternal
)

// String returns a human-readable name for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrAllocation:
		return "allocation failure"
	case ErrPrecondition:
		return "precondition violation"
	case ErrInternal:
		return "internal error"
	default:
		return "unknown error"
	}
}

// KernelError represents an error that occurred during a kernel operation.
type KernelError struct {
	// Op is the operation that failed (e.g., "thread_create", "schedule").
	Op string
	// Err is the underlying error.
	Err error
	// Kind is the error classification.
	Kind ErrorKind
	// Detail provides additional context about the error.
	Detail string
}

// Error returns the error message.
func (e *KernelError) Error() string {
	if e == nil {
		return "<nil>"
	}

	var msg string
	if e.Op != "" {
		msg += fmt.Sprintf("%s: ", e.Op)
	}
	if e.Detail != "" {
		msg += e.Detail
	} else {
		msg += e.Kind.String()
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *KernelError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether the error matches the target.
// It matches if the target is a *KernelError with the same Kind.
func (e *KernelError) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if t, ok := target.(*KernelError); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates a new KernelError with the given kind.
func New(kind ErrorKind, op string, detail string) *KernelError {
	return &KernelError{
		Op:     op,
		Kind:   kind,
		Detail: detail,
	}
}

// Newf is New with a formatted detail message.
func Newf(kind ErrorKind, op string, format string, args ...any) *KernelError {
	return &KernelError{
		Op:     op,
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with kernel context.
func Wrap(err error, kind ErrorKind, op string) *KernelError {
	return &KernelError{
		Op:   op,
		Err:  err,
		Kind: kind,
	}
}

// IsKind checks if an error is of a specific kind.
func IsKind(err error, kind ErrorKind) bool {
	var ke *KernelError
	if errors.As(err, &ke) {
		return ke.Kind == kind
	}
	return false
}

// GetKind returns the error kind if the error is a KernelError.
func GetKind(err error) (ErrorKind, bool) {
	var ke *KernelError
	if errors.As(err, &ke) {
		return ke.Kind, true
	}
	return 0, false
}

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// Assert panics with a *KernelError of kind ErrPrecondition if cond is
// false. This is the kernel's "assert and halt": a violated precondition
// is not something the scheduler can recover from without losing its own
// invariants, so unlike ErrAllocation it is never returned as a value.
func Assert(cond bool, op, format string, args ...any) {
	if cond {
		return
	}
	panic(Newf(ErrPrecondition, op, format, args...))
}

// Fatalf unconditionally panics with a *KernelError of kind ErrInternal.
func Fatalf(op, format string, args ...any) {
	panic(Newf(ErrInternal, op, format, args...))
}
