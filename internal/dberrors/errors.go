// Package dberrors defines the domain error-kind taxonomy shared across the
// telemetry core. Every store and service returns errors wrapping one of
// these sentinels so a single translation layer (internal/api/middleware)
// can map them to transport status codes.
package dberrors

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the referenced record does not exist for this principal.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRequest indicates input failed validation (range, shape, enum).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidState indicates a lifecycle violation (e.g. starting an already-started trip).
	ErrInvalidState = errors.New("invalid state")

	// ErrPermissionDenied indicates an authorization or ownership check failed.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrConstraintViolation indicates a cross-entity constraint was broken.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrTransientFailure indicates an outbound dependency was temporarily unavailable.
	ErrTransientFailure = errors.New("transient failure")

	// ErrDependencyGone indicates a push subscription (or similar external
	// handle) was invalidated by the remote side.
	ErrDependencyGone = errors.New("dependency gone")
)

// WrapNotFound converts sql.ErrNoRows into ErrNotFound, preserving other errors untouched.
func WrapNotFound(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w", ErrNotFound)
	}
	return err
}

// IsNotFound reports whether err represents a not-found condition.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidRequest reports whether err represents a validation failure.
func IsInvalidRequest(err error) bool { return errors.Is(err, ErrInvalidRequest) }

// IsInvalidState reports whether err represents a lifecycle violation.
func IsInvalidState(err error) bool { return errors.Is(err, ErrInvalidState) }

// IsPermissionDenied reports whether err represents an authorization failure.
func IsPermissionDenied(err error) bool { return errors.Is(err, ErrPermissionDenied) }

// IsConstraintViolation reports whether err represents a cross-entity constraint break.
func IsConstraintViolation(err error) bool { return errors.Is(err, ErrConstraintViolation) }

// IsTransientFailure reports whether err represents a temporarily unavailable dependency.
func IsTransientFailure(err error) bool { return errors.Is(err, ErrTransientFailure) }

// IsDependencyGone reports whether err represents an invalidated external handle.
func IsDependencyGone(err error) bool { return errors.Is(err, ErrDependencyGone) }

// InvalidState builds an ErrInvalidState with context, e.g. InvalidState("trip %s already started", id).
func InvalidState(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidState}, args...)...)
}

// ConstraintViolation builds an ErrConstraintViolation with context.
func ConstraintViolation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrConstraintViolation}, args...)...)
}

// InvalidRequest builds an ErrInvalidRequest with context.
func InvalidRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidRequest}, args...)...)
}

// NotFound builds an ErrNotFound with context.
func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, args...)...)
}

// PermissionDenied builds an ErrPermissionDenied with context.
func PermissionDenied(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrPermissionDenied}, args...)...)
}

// TransientFailure builds an ErrTransientFailure with context.
func TransientFailure(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrTransientFailure}, args...)...)
}

// DependencyGone builds an ErrDependencyGone with context.
func DependencyGone(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrDependencyGone}, args...)...)
}
