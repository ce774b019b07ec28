// Package sharedexec provides a single, process-wide pool of worker
// goroutines for running short-lived asynchronous tasks, so callers share
// one execution resource instead of each creating, sizing, and tearing down
// their own.
//
// The shared pool is lazily constructed, thread-safe, and guaranteed unique:
// no matter how many goroutines request it concurrently, exactly one
// underlying pool exists for the lifetime of the process.
//
// # Shared Instance
//
// Default returns the process-wide executor, constructing it on first use.
// The first successful call fixes the worker count; later calls return the
// same instance and ignore their options:
//
//	pool, err := sharedexec.Default(sharedexec.WithWorkers(8))
//	if err != nil {
//		return err
//	}
//
// Package-level Submit, Map, and Shutdown operate on the same instance for
// callers that never need the handle itself.
//
// # Task Submission
//
// Submit enqueues a task and returns a write-once Handle immediately:
//
//	h, err := pool.Submit(ctx, func(ctx context.Context) (any, error) {
//		return fetch(ctx, url)
//	})
//	if err != nil {
//		return err
//	}
//	value, err := h.Result(ctx)
//
// The Handle holds either the task's value or its error, set exactly once,
// observable by polling (Ready), selecting (Done), or blocking (Result).
//
// # Bulk Mapping
//
// Map applies a function to the element-wise zip of one or more iterables
// and yields results lazily, in input order, even when execution completes
// out of order:
//
//	res, err := pool.Map(ctx, func(ctx context.Context, args ...any) (any, error) {
//		return strconv.Itoa(args[0].(int)), nil
//	}, []any{3, 1, 2})
//	if err != nil {
//		return err
//	}
//	for res.Next() {
//		fmt.Println(res.Value())
//	}
//	if err := res.Err(); err != nil {
//		return err
//	}
//
// MapWithOptions adds a consumption deadline (which never cancels the
// underlying tasks) and a chunked prefetch size.
//
// # Shutdown
//
// Shutdown closes the pool: later submissions fail with ErrPoolClosed, while
// everything already queued or in flight runs to completion. With wait true
// the call blocks until the queue has drained. Shutdown is idempotent and
// irreversible; a closed shared executor stays closed (and keeps rejecting
// work) for the remainder of the process.
//
// # Error Handling
//
// The pool never retries, never suppresses, and never logs a task's error;
// failures are delivered verbatim at the point of consumption. A task panic
// is recovered into *PanicError and delivered the same way. ErrPoolClosed
// and ErrTimeout are sentinel values suitable for errors.Is.
//
// # Concurrency Guarantees
//
//   - At most one shared pool per process, under any construction race
//   - Bounded concurrency: at most the configured number of workers
//   - Submission never blocks beyond queue insertion
//   - Mapped output order always equals input order
//   - Workers exit after shutdown and drain; no goroutine leaks
package sharedexec
