// Package apperr defines the error kinds shared by every domain package.
// Domain code wraps one of these sentinels with context; callers classify
// failures with errors.Is and map them to user-facing responses.
package apperr

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrForbidden         = errors.New("forbidden")
	ErrValidation        = errors.New("validation error")
	ErrPlanningClosed    = errors.New("planning closed")
	ErrNotFound          = errors.New("not found")
)

// InvalidTransition wraps ErrInvalidTransition with a formatted message.
func InvalidTransition(format string, args ...any) error {
	return wrap(ErrInvalidTransition, format, args...)
}

// Forbidden wraps ErrForbidden with a formatted message.
func Forbidden(format string, args ...any) error {
	return wrap(ErrForbidden, format, args...)
}

// Validation wraps ErrValidation with a formatted message.
func Validation(format string, args ...any) error {
	return wrap(ErrValidation, format, args...)
}

// PlanningClosed wraps ErrPlanningClosed with a formatted message.
func PlanningClosed(format string, args ...any) error {
	return wrap(ErrPlanningClosed, format, args...)
}

// NotFound wraps ErrNotFound with a formatted message.
func NotFound(format string, args ...any) error {
	return wrap(ErrNotFound, format, args...)
}

// Kind returns the sentinel an error wraps, or nil if it wraps none of them.
func Kind(err error) error {
	for _, k := range []error{ErrInvalidTransition, ErrForbidden, ErrValidation, ErrPlanningClosed, ErrNotFound} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
