// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and can be mapped to HTTP or UI messages by adapters.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrValidation indicates a payload is missing required data.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable indicates a required dependency is unavailable.
	ErrUnavailable = errors.New("unavailable")

	// ErrCorrupted indicates persisted data could not be decoded.
	ErrCorrupted = errors.New("corrupted data")
)

// ValidationError provides context for validation errors.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UnavailableError provides context for unavailable errors.
type UnavailableError struct {
	Service string
	Reason  string
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NewUnavailableError creates an unavailable error with context.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// CorruptedError describes a stored value that failed to decode.
type CorruptedError struct {
	Key   string
	Cause error
}

// Error implements the error interface.
func (e *CorruptedError) Error() string {
	return fmt.Sprintf("stored value %q is corrupted: %v", e.Key, e.Cause)
}

// Is reports ErrCorrupted so callers can match with errors.Is().
func (e *CorruptedError) Is(target error) bool {
	return target == ErrCorrupted
}

// Unwrap returns the decode error.
func (e *CorruptedError) Unwrap() error {
	return e.Cause
}

// NewCorruptedError creates a corrupted data error for the given key.
func NewCorruptedError(key string, cause error) error {
	return &CorruptedError{Key: key, Cause: cause}
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsCorrupted checks if an error is a corrupted data error.
func IsCorrupted(err error) bool {
	return errors.Is(err, ErrCorrupted)
}
