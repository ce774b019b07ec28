package sharedexec

import "context"

// Handle is a write-once future for a single submitted task. The executing
// worker records either the task's value or its error, exactly once; the
// submitter observes the outcome by polling Ready, selecting on Done, or
// blocking in Result.
type Handle struct {
	done  chan struct{}
	value any
	err   error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// set records the outcome. Called exactly once, by the worker that ran the
// task; closing done publishes value and err to observers.
func (h *Handle) set(value any, err error) {
	h.value = value
	h.err = err
	close(h.done)
}

// Done returns a channel that is closed once the task's outcome has been
// recorded. It can be used in select statements alongside other events.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Ready reports whether the outcome is available, without blocking.
func (h *Handle) Ready() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Result blocks until the task has finished or ctx is done, whichever comes
// first. It returns the task's value or the task's own error; if ctx wins it
// returns ctx.Err() and the task keeps running. Once the outcome is recorded,
// every call returns the same value and error.
func (h *Handle) Result(ctx context.Context) (any, error) {
	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
