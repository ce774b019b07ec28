package sharedexec

import (
	"context"
	"sync"
	"sync/atomic"
)

// The process-wide executor. The pointer is the lock-free fast path; the
// mutex serializes construction so concurrent first callers cannot build two
// pools. sync.Once would cache a failed construction forever, so the
// double-checked pair is deliberate: only a successful New publishes.
var (
	defaultMu   sync.Mutex
	defaultPool atomic.Pointer[Executor]
)

// Default returns the process-wide shared executor, constructing it on the
// first call. The options of the first successful call fix the pool's
// configuration for the process lifetime; options passed on later calls are
// ignored and the existing instance is returned, whatever they were.
//
// Construction failure (for example a negative worker count) is returned
// synchronously to the caller that triggered it and is not cached: a later
// call with valid options can still construct the pool.
//
// Shutting the returned executor down does not unpublish it. Default keeps
// returning the same closed instance, whose submissions fail with
// ErrPoolClosed, for the remainder of the process.
func Default(opts ...Option) (*Executor, error) {
	if e := defaultPool.Load(); e != nil {
		return e, nil
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()

	// Re-check under the lock: another goroutine may have won the race
	// between our load above and acquiring the mutex.
	if e := defaultPool.Load(); e != nil {
		return e, nil
	}

	e, err := New(opts...)
	if err != nil {
		return nil, err
	}
	defaultPool.Store(e)
	return e, nil
}

// Submit enqueues fn on the shared executor, constructing it with default
// options if this is the first use. See Executor.Submit.
func Submit(ctx context.Context, fn Task) (*Handle, error) {
	e, err := Default()
	if err != nil {
		return nil, err
	}
	return e.Submit(ctx, fn)
}

// Map runs fn over the element-wise zip of the iterables on the shared
// executor. See Executor.Map.
func Map(ctx context.Context, fn MapFunc, iterables ...[]any) (*Results, error) {
	e, err := Default()
	if err != nil {
		return nil, err
	}
	return e.Map(ctx, fn, iterables...)
}

// MapWithOptions is Map with explicit timeout and chunking options.
// See Executor.MapWithOptions.
func MapWithOptions(ctx context.Context, opts MapOptions, fn MapFunc, iterables ...[]any) (*Results, error) {
	e, err := Default()
	if err != nil {
		return nil, err
	}
	return e.MapWithOptions(ctx, opts, fn, iterables...)
}

// Shutdown closes the shared executor if it has been constructed; otherwise
// it is a no-op (it does not construct a pool just to close it). See
// Executor.Shutdown for the wait semantics.
func Shutdown(wait bool) {
	if e := defaultPool.Load(); e != nil {
		e.Shutdown(wait)
	}
}
