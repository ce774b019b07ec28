package util

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rshetty/sharedexec"
)

// Common error types for the sharedexec CLI
var (
	// ErrInvalidConfig indicates a configuration error
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrProfileNotFound indicates a named run profile was not found
	ErrProfileNotFound = errors.New("profile not found")

	// ErrNoCommands indicates a run was requested with no commands
	ErrNoCommands = errors.New("no commands to run")

	// ErrCancelled indicates an operation was cancelled
	ErrCancelled = errors.New("operation cancelled")
)

// CommandError wraps an error with the command that caused it
type CommandError struct {
	Command string
	Err     error
}

// Error implements the error interface
func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q: %v", e.Command, e.Err)
}

// Unwrap returns the wrapped error for errors.Is/As compatibility
func (e *CommandError) Unwrap() error {
	return e.Err
}

// WrapCommandError wraps an error with command context
func WrapCommandError(command string, err error) error {
	if err == nil {
		return nil
	}
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// MultiError aggregates multiple errors
type MultiError struct {
	Errors []error
}

// Error implements the error interface
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:", len(m.Errors)))
	for i, err := range m.Errors {
		if i < 10 { // Limit to first 10 errors in the message
			sb.WriteString(fmt.Sprintf("\n  %d. %v", i+1, err))
		} else if i == 10 {
			sb.WriteString(fmt.Sprintf("\n  ... and %d more errors", len(m.Errors)-10))
			break
		}
	}
	return sb.String()
}

// Unwrap returns the errors for errors.Is/As compatibility
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Add adds an error to the multi-error
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// ErrorOrNil returns nil if no errors were added, otherwise returns the MultiError
func (m *MultiError) ErrorOrNil() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

// NewMultiError creates a new MultiError from a slice of errors
// It filters out nil errors
func NewMultiError(errors []error) *MultiError {
	m := &MultiError{
		Errors: make([]error, 0, len(errors)),
	}
	for _, err := range errors {
		if err != nil {
			m.Errors = append(m.Errors, err)
		}
	}
	return m
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	if v.Value != nil {
		return fmt.Sprintf("validation failed for field %q (value: %v): %s", v.Field, v.Value, v.Message)
	}
	return fmt.Sprintf("validation failed for field %q: %s", v.Field, v.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// IsTimeout checks if an error is a result-consumption timeout
func IsTimeout(err error) bool {
	return errors.Is(err, sharedexec.ErrTimeout)
}

// IsCancelled checks if an error is a cancellation error
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// FriendlyError converts technical errors to user-friendly messages
func FriendlyError(err error) string {
	if err == nil {
		return ""
	}

	// Check for known error types
	switch {
	case errors.Is(err, sharedexec.ErrPoolClosed):
		return "The shared executor has been shut down. Tasks submitted after shutdown are rejected."
	case IsTimeout(err):
		return "Timed out waiting for results. Please try again or increase the timeout value with --timeout flag."
	case IsCancelled(err):
		return "Operation was cancelled."
	case errors.Is(err, context.DeadlineExceeded):
		return "Operation deadline exceeded."
	case errors.Is(err, ErrProfileNotFound):
		return "Profile not found. Use 'sharedexec profile list' to see configured profiles."
	case errors.Is(err, ErrNoCommands):
		return "No commands to run. Pass commands as arguments, via --file, or on stdin."
	case errors.Is(err, ErrInvalidConfig):
		return "Invalid configuration. Please check your config file and command-line flags."
	default:
		// Return the original error message for unknown errors
		return err.Error()
	}
}

// CombineErrors combines multiple errors into a single error
// Returns nil if all errors are nil
func CombineErrors(errors ...error) error {
	m := NewMultiError(errors)
	return m.ErrorOrNil()
}

// WrapErrorf wraps an error with a formatted message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
