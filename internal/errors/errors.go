// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	// ErrNoQualifyingSymbols signals that a detector ran successfully but
	// found nothing to report. Callers must not confuse it with a fetch
	// failure.
	ErrNoQualifyingSymbols = errors.New("no qualifying symbols")
	// ErrSourceUnavailable signals an I/O failure in the data loader.
	ErrSourceUnavailable = errors.New("data source unavailable")
	// ErrStatePersistence signals a failed state read or write. The run
	// continues; the next run may re-detect symbols as new.
	ErrStatePersistence = errors.New("state persistence failed")
	// ErrConfigInvalid marks a configuration value rejected by validation.
	ErrConfigInvalid = errors.New("invalid configuration")
	ErrDataNotFound  = errors.New("data not found")
	ErrDatabaseError = errors.New("database error")
)

// DetectionError represents an error from a signal detector.
type DetectionError struct {
	Detector string
	Op       string
	Err      error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("detection error [%s] %s: %v", e.Detector, e.Op, e.Err)
}

func (e *DetectionError) Unwrap() error {
	return e.Err
}

// NewDetectionError creates a new DetectionError.
func NewDetectionError(detector, op string, err error) *DetectionError {
	return &DetectionError{
		Detector: detector,
		Op:       op,
		Err:      err,
	}
}

// LoadError represents an error from a data source.
type LoadError struct {
	Source  string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load error [%s]: %s: %v", e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("load error [%s]: %s", e.Source, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError creates a new LoadError.
func NewLoadError(source, message string, err error) *LoadError {
	return &LoadError{
		Source:  source,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error on a loaded row or a
// configuration value.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// StateError represents a state store failure.
type StateError struct {
	Op   string
	Path string
	Err  error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state error [%s] %s: %v", e.Op, e.Path, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// Is matches ErrStatePersistence so callers can test for the sentinel
// without knowing the concrete type.
func (e *StateError) Is(target error) bool {
	return target == ErrStatePersistence
}

// NewStateError creates a new StateError.
func NewStateError(op, path string, err error) *StateError {
	return &StateError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
