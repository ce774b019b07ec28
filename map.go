package sharedexec

import (
	"context"
	"fmt"
	"time"
)

// MapFunc is the element-wise function applied by Map. It receives one
// element from each iterable, in the order the iterables were passed to Map.
type MapFunc func(ctx context.Context, args ...any) (any, error)

// MapOptions tune a bulk mapping call.
type MapOptions struct {
	// Timeout bounds how long consuming the mapped results may take, measured
	// from the moment Map was called. Zero means no deadline. When it expires
	// iteration fails with ErrTimeout; tasks already dispatched are not
	// cancelled and keep running.
	Timeout time.Duration

	// ChunkSize is the number of consecutive ready results drained per
	// advance. Zero means 1; a negative value is rejected. Larger chunks
	// reduce synchronization rounds for a consumer that keeps up; ordering,
	// laziness and error behavior are the same for every value.
	ChunkSize int
}

// Map submits fn over the element-wise zip of the iterables, stopping at the
// shortest one, and returns a lazy iterator over the results in input order.
// Equivalent to MapWithOptions with zero options.
func (e *Executor) Map(ctx context.Context, fn MapFunc, iterables ...[]any) (*Results, error) {
	return e.MapWithOptions(ctx, MapOptions{}, fn, iterables...)
}

// MapWithOptions submits one task per zipped element tuple, all upfront and
// in input order, then returns a Results iterator that yields outcomes in
// that same order regardless of completion order.
//
// The ctx is passed through to each task invocation; the deadline in opts
// applies only to result consumption, never to the tasks themselves.
//
// A closed executor fails the whole call with ErrPoolClosed.
func (e *Executor) MapWithOptions(ctx context.Context, opts MapOptions, fn MapFunc, iterables ...[]any) (*Results, error) {
	if fn == nil {
		return nil, fmt.Errorf("map function must not be nil")
	}
	if len(iterables) == 0 {
		return nil, fmt.Errorf("map requires at least one iterable")
	}
	if opts.ChunkSize < 0 {
		return nil, fmt.Errorf("invalid chunk size %d: must be at least 1", opts.ChunkSize)
	}
	chunk := opts.ChunkSize
	if chunk == 0 {
		chunk = 1
	}

	// Element count is the length of the shortest iterable.
	n := len(iterables[0])
	for _, it := range iterables[1:] {
		if len(it) < n {
			n = len(it)
		}
	}

	// The deadline is absolute from this point, shared by every element.
	var deadline time.Time
	if opts.Timeout > 0 {
		deadline = time.Now().Add(opts.Timeout)
	}

	handles := make([]*Handle, 0, n)
	for i := 0; i < n; i++ {
		args := make([]any, len(iterables))
		for j, it := range iterables {
			args[j] = it[i]
		}
		h, err := e.Submit(ctx, func(ctx context.Context) (any, error) {
			return fn(ctx, args...)
		})
		if err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}

	return &Results{
		ctx:      ctx,
		handles:  handles,
		deadline: deadline,
		chunk:    chunk,
	}, nil
}

// Results is a lazy, single-pass iterator over the outcomes of one Map call.
// Results are yielded strictly in input order even when execution completes
// out of order. The usual pattern:
//
//	res, err := pool.Map(ctx, fn, items)
//	if err != nil {
//		return err
//	}
//	for res.Next() {
//		use(res.Value())
//	}
//	if err := res.Err(); err != nil {
//		return err
//	}
//
// Iteration ends early when a task failed (Err returns that task's own
// error), when the Map deadline expired (Err satisfies errors.Is with
// ErrTimeout), or when ctx was canceled. Results is not safe for concurrent
// use by multiple goroutines.
type Results struct {
	ctx      context.Context
	handles  []*Handle
	deadline time.Time
	chunk    int

	// buf holds prefetched values consumed before waiting on more handles
	buf  []any
	next int
	cur  any
	err  error
	done bool
}

// Next advances to the next in-order result, blocking until it is ready.
// It returns false when the sequence is exhausted or iteration failed;
// the two cases are told apart through Err.
func (r *Results) Next() bool {
	if r.done {
		return false
	}

	if len(r.buf) > 0 {
		r.cur = r.buf[0]
		r.buf[0] = nil
		r.buf = r.buf[1:]
		return true
	}

	if r.next >= len(r.handles) {
		r.done = true
		r.cur = nil
		return false
	}

	value, err := r.wait(r.handles[r.next])
	if err != nil {
		r.done = true
		r.cur = nil
		r.err = err
		return false
	}

	r.next++
	r.cur = value
	r.prefetch()
	return true
}

// wait blocks for one handle, honoring the Map deadline and the iteration
// context. A finished task is consumed even if the deadline has already
// passed by the time we look.
func (r *Results) wait(h *Handle) (any, error) {
	select {
	case <-h.done:
		return h.value, h.err
	default:
	}

	var timeoutC <-chan time.Time
	if !r.deadline.IsZero() {
		t := time.NewTimer(time.Until(r.deadline))
		defer t.Stop()
		timeoutC = t.C
	}

	select {
	case <-h.done:
		return h.value, h.err
	case <-r.ctx.Done():
		return nil, r.ctx.Err()
	case <-timeoutC:
		return nil, ErrTimeout
	}
}

// prefetch drains up to chunk-1 already-finished consecutive successes so a
// chunked consumer advances without a synchronization round per element.
// It stops at the first pending or failed handle; failures surface at their
// ordered position on a later Next.
func (r *Results) prefetch() {
	for len(r.buf) < r.chunk-1 && r.next < len(r.handles) {
		h := r.handles[r.next]
		if !h.Ready() || h.err != nil {
			return
		}
		r.buf = append(r.buf, h.value)
		r.next++
	}
}

// Value returns the element produced by the most recent successful Next.
func (r *Results) Value() any {
	return r.cur
}

// Err returns the error that terminated iteration: the failing task's own
// error, ErrTimeout, or the iteration context's error. It returns nil while
// iteration is in progress and after a complete traversal.
func (r *Results) Err() error {
	return r.err
}

// Len returns the total number of mapped elements, consumed or not.
func (r *Results) Len() int {
	return len(r.handles)
}
