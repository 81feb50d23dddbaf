package error

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorCategory classifies errors by how a caller is expected to react.
type ErrorCategory int

const (
	// ErrCategoryUser covers malformed input such as an unparsable lock mode
	// or a request with no transaction.
	ErrCategoryUser ErrorCategory = iota

	// ErrCategoryTransient covers conditions that may clear on retry.
	ErrCategoryTransient

	// ErrCategorySystem covers programming-contract violations and bad
	// configuration.
	ErrCategorySystem

	// ErrCategoryData covers malformed lock state, e.g. a key slot that does
	// not cover its partitions.
	ErrCategoryData

	// ErrCategoryConcurrency covers lock conflicts. The usual response is to
	// abort the transaction and retry it.
	ErrCategoryConcurrency
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryUser:
		return "user"
	case ErrCategoryTransient:
		return "transient"
	case ErrCategorySystem:
		return "system"
	case ErrCategoryData:
		return "data"
	case ErrCategoryConcurrency:
		return "concurrency"
	default:
		return "unknown"
	}
}

// Error codes used across shorekits.
const (
	CodeInvalidLockMode      = "INVALID_LOCK_MODE"
	CodeInvalidPartition     = "INVALID_PARTITION"
	CodeInvariantViolation   = "INVARIANT_VIOLATION"
	CodeLockConflict         = "LOCK_CONFLICT"
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeTransactionNotFound  = "TRANSACTION_NOT_FOUND"
	CodeTransactionNotActive = "TRANSACTION_NOT_ACTIVE"
	CodeInvalidConfig        = "INVALID_CONFIG"
	CodeInternal             = "INTERNAL"
)

// DBError is a structured error carrying a stable code and the place it was
// raised.
type DBError struct {
	// Code is a stable identifier such as LOCK_CONFLICT.
	Code string

	Category ErrorCategory

	// Message is a human-readable description of what went wrong.
	Message string

	// Detail describes this particular instance, e.g. the offending key.
	Detail string

	// Hint suggests how to fix or work around the error.
	Hint string

	// Operation is the call that failed, e.g. "Lock" or "ParseLockMode".
	Operation string

	// Component is the subsystem that raised the error, e.g. "LockManager".
	Component string

	Cause error

	// Stack is captured by New and Wrap.
	Stack []uintptr
}

// New creates a DBError with the given category, code and message.
func New(category ErrorCategory, code, message string) *DBError {
	return &DBError{
		Code:     code,
		Category: category,
		Message:  message,
		Stack:    captureStack(),
	}
}

// Wrap attaches operation and component context to err. A DBError is
// enriched in place (only empty fields are filled); any other error becomes
// the Cause of a new system-category DBError.
func Wrap(err error, code, operation, component string) *DBError {
	if err == nil {
		return nil
	}

	var dbErr *DBError
	if errors.As(err, &dbErr) {
		if dbErr.Operation == "" {
			dbErr.Operation = operation
		}
		if dbErr.Component == "" {
			dbErr.Component = component
		}
		return dbErr
	}

	return &DBError{
		Code:      code,
		Category:  ErrCategorySystem,
		Message:   err.Error(),
		Operation: operation,
		Component: component,
		Cause:     err,
		Stack:     captureStack(),
	}
}

// HasCode reports whether err or anything it wraps is a DBError with code.
func HasCode(err error, code string) bool {
	var dbErr *DBError
	if errors.As(err, &dbErr) {
		return dbErr.Code == code
	}
	return false
}

// captureStack skips runtime.Callers, captureStack and New/Wrap.
func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[0:n]
}

// Error formats as
// [CODE] Message: Detail (operation: Operation, component: Component) caused by: cause
func (e *DBError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Detail != "" {
		b.WriteString(fmt.Sprintf(": %s", e.Detail))
	}

	if e.Operation != "" {
		b.WriteString(fmt.Sprintf(" (operation: %s", e.Operation))
		if e.Component != "" {
			b.WriteString(fmt.Sprintf(", component: %s", e.Component))
		}
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(" caused by: %v", e.Cause))
	}

	return b.String()
}

func (e *DBError) Unwrap() error {
	return e.Cause
}

// FormatStack returns the captured stack in a readable form.
func (e *DBError) FormatStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(e.Stack)

	b.WriteString("Stack trace:\n")
	for {
		f, more := frames.Next()
		b.WriteString(fmt.Sprintf("  %s\n    %s:%d\n",
			f.Function, f.File, f.Line))
		if !more {
			break
		}
	}

	return b.String()
}
