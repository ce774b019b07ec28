package sharedexec

import (
	"errors"
	"fmt"
	"runtime/debug"
)

var (
	// ErrPoolClosed is returned by Submit and Map once the executor has been
	// shut down. A closed executor stays closed for the rest of the process.
	ErrPoolClosed = errors.New("sharedexec: pool is closed")

	// ErrTimeout is returned through Results.Err when a mapped result was not
	// ready within the deadline given at Map time. The underlying task is not
	// cancelled and keeps running.
	ErrTimeout = errors.New("sharedexec: timed out waiting for result")
)

// PanicError wraps a panic recovered from a task. The panic does not kill
// the worker; it is delivered through the task's Handle (or Results slot)
// like any other failure.
type PanicError struct {
	// Value is the value the task panicked with
	Value any

	// Stack is the goroutine stack captured at recovery
	Stack []byte
}

func newPanicError(v any) *PanicError {
	return &PanicError{Value: v, Stack: debug.Stack()}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("sharedexec: task panicked: %v", e.Value)
}
