package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that render user messages.
type Kind string

const (
	KindUnknown           Kind = "unknown"
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindDependencyTimeout Kind = "dependency_timeout"
)

// ValidationError reports malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return "validation: " + e.Message }

// NotFoundError reports a missing technician, level, branch or record.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return "not found: " + e.Message }

// ConflictError reports an invariant violation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return "conflict: " + e.Message }

// DependencyTimeoutError reports an unavailable external dependency.
// Callers may retry.
type DependencyTimeoutError struct {
	Dependency string
	Err        error
}

func (e *DependencyTimeoutError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("service temporarily unavailable: %s", e.Dependency)
	}
	return fmt.Sprintf("service temporarily unavailable: %s: %v", e.Dependency, e.Err)
}

func (e *DependencyTimeoutError) Unwrap() error { return e.Err }

func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func DependencyTimeout(dependency string, cause error) error {
	return &DependencyTimeoutError{Dependency: dependency, Err: cause}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsDependencyTimeout(err error) bool {
	var target *DependencyTimeoutError
	return errors.As(err, &target)
}

// Retryable reports whether the caller may retry the same request unchanged.
func Retryable(err error) bool {
	return IsDependencyTimeout(err)
}

func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case IsValidation(err):
		return KindValidation
	case IsNotFound(err):
		return KindNotFound
	case IsConflict(err):
		return KindConflict
	case IsDependencyTimeout(err):
		return KindDependencyTimeout
	default:
		return KindUnknown
	}
}
