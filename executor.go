package sharedexec

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Task represents a unit of work submitted to the executor.
// It is a self-contained closure: anything the work needs is captured by the
// function value, and the outcome is a single result value or an error.
// The context passed in is the one supplied at submission time; the executor
// itself never cancels it.
type Task func(ctx context.Context) (any, error)

// Queue sizing: small bursts stay within the initial allocation, and a queue
// whose backing array grew far beyond its live contents is reallocated so a
// drained burst does not pin memory.
const (
	initialQueueCap    = 16
	compactMinCap      = 64
	compactShrinkRatio = 4
)

// queued pairs a task with its handle and submission context while it waits
// for a worker.
type queued struct {
	ctx context.Context
	fn  Task
	h   *Handle
	seq uint64
}

// Executor is a bounded pool of worker goroutines pulling tasks from a shared
// FIFO queue. Workers are spawned lazily as submissions arrive, up to the
// configured cap, and exit only after Shutdown once the queue has drained.
//
// Most programs use the process-wide instance via Default rather than
// constructing their own; see the package documentation.
type Executor struct {
	// name labels log records and metrics for this pool
	name string

	// workers is the maximum number of concurrent worker goroutines
	workers int

	// logger for structured lifecycle logging; task errors are never logged
	logger *slog.Logger

	// metrics receives execution telemetry
	metrics Metrics

	// mu guards the queue and the counters below; cond signals waiting workers
	mu   sync.Mutex
	cond *sync.Cond

	// queue holds submitted tasks not yet picked up by a worker
	queue []queued

	// closed marks the pool as shut down; irreversible
	closed bool

	// started, idle and active track worker goroutines and in-flight tasks
	started int
	idle    int
	active  int

	// wg tracks live workers so Shutdown(wait) can block until drain
	wg sync.WaitGroup

	seq       atomic.Uint64
	submitted atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
}

// New creates an executor with the given options.
// An unset or zero worker count resolves to runtime.NumCPU; a negative count
// is a construction error. No worker goroutines are started until the first
// submission.
func New(opts ...Option) (*Executor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.workers < 0 {
		return nil, fmt.Errorf("invalid worker count %d: must not be negative", o.workers)
	}

	workers := o.workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	e := &Executor{
		name:    o.name,
		workers: workers,
		logger:  o.logger,
		metrics: o.metrics,
		queue:   make([]queued, 0, initialQueueCap),
	}
	e.cond = sync.NewCond(&e.mu)

	e.logger.Debug("executor created", "pool", e.name, "workers", workers)

	return e, nil
}

// Submit enqueues fn for execution by one of the pool's workers and returns
// a Handle holding its eventual outcome. The call never blocks beyond queue
// insertion: the queue is unbounded, and an idle worker is woken (or a new
// one spawned, below the cap) to pick the task up.
//
// The ctx is handed to fn when it runs. Canceling it is between the caller
// and the task; the executor does not act on it.
//
// After Shutdown, Submit fails with ErrPoolClosed.
func (e *Executor) Submit(ctx context.Context, fn Task) (*Handle, error) {
	if fn == nil {
		return nil, fmt.Errorf("task function must not be nil")
	}

	h := newHandle()
	seq := e.seq.Add(1)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.metrics.RecordTaskRejected(e.name, "closed")
		return nil, ErrPoolClosed
	}

	e.queue = append(e.queue, queued{ctx: ctx, fn: fn, h: h, seq: seq})
	depth := len(e.queue)

	// Prefer waking an existing idle worker over growing the pool.
	if e.idle > 0 {
		e.cond.Signal()
	} else if e.started < e.workers {
		e.started++
		e.wg.Add(1)
		go e.worker(e.started)
	}
	e.mu.Unlock()

	e.submitted.Add(1)
	e.metrics.RecordQueueDepth(e.name, depth)
	e.logger.Debug("task submitted", "pool", e.name, "seq", seq, "queued", depth)

	return h, nil
}

// worker is the worker goroutine loop: wait for work, run it, repeat.
// It exits once the pool is closed and the queue has drained.
func (e *Executor) worker(id int) {
	defer e.wg.Done()

	e.logger.Debug("worker started", "pool", e.name, "worker_id", id)

	for {
		e.mu.Lock()
		for len(e.queue) == 0 && !e.closed {
			e.idle++
			e.cond.Wait()
			e.idle--
		}

		if len(e.queue) == 0 {
			// Closed and drained.
			e.mu.Unlock()
			e.logger.Debug("worker exiting", "pool", e.name, "worker_id", id)
			return
		}

		item := e.queue[0]
		e.queue[0] = queued{} // release references held by the popped slot
		e.queue = e.queue[1:]
		e.maybeCompactLocked()
		e.active++
		e.mu.Unlock()

		e.run(item)

		e.mu.Lock()
		e.active--
		e.mu.Unlock()
	}
}

// maybeCompactLocked reallocates the queue once the backing array has grown
// well past the live contents. Callers must hold mu.
func (e *Executor) maybeCompactLocked() {
	if cap(e.queue) < compactMinCap || len(e.queue)*compactShrinkRatio > cap(e.queue) {
		return
	}
	q := make([]queued, len(e.queue), max(initialQueueCap, len(e.queue)*2))
	copy(q, e.queue)
	e.queue = q
}

// run executes one task and records its outcome into the handle.
// Task errors belong to whoever holds the Handle; only lifecycle data is
// logged here.
func (e *Executor) run(item queued) {
	start := time.Now()
	value, err := invoke(item.ctx, item.fn)
	elapsed := time.Since(start)

	e.completed.Add(1)
	if err != nil {
		e.failed.Add(1)
		e.metrics.RecordTaskFailure(e.name)
	}
	e.metrics.RecordTaskDuration(e.name, elapsed)

	item.h.set(value, err)

	e.logger.Debug("task finished",
		"pool", e.name,
		"seq", item.seq,
		"ok", err == nil,
		"duration", elapsed)
}

// invoke runs fn, converting a panic into a *PanicError so a misbehaving
// task cannot take down its worker.
func invoke(ctx context.Context, fn Task) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = newPanicError(r)
		}
	}()
	return fn(ctx)
}

// Shutdown marks the pool closed. Submissions made after this point fail
// with ErrPoolClosed; tasks already queued or in flight always run to
// completion.
//
// With wait true the call blocks until every worker has exited, i.e. until
// the queue has fully drained. With wait false it returns immediately while
// the drain proceeds in the background.
//
// Shutdown is idempotent and irreversible: repeated calls are no-ops (they
// still honor wait), and a closed pool can never be reopened.
func (e *Executor) Shutdown(wait bool) {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		e.cond.Broadcast()
		e.logger.Info("executor closing",
			"pool", e.name,
			"queued", len(e.queue),
			"active", e.active)
	}
	e.mu.Unlock()

	if wait {
		e.wg.Wait()
	}
}

// Closed reports whether Shutdown has been called.
func (e *Executor) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// Name returns the pool's label used in logs and metrics.
func (e *Executor) Name() string {
	return e.name
}

// Stats is a point-in-time snapshot of executor state.
type Stats struct {
	// Workers is the configured worker cap
	Workers int

	// Started is the number of worker goroutines spawned so far
	Started int

	// Idle is the number of workers currently waiting for work
	Idle int

	// Queued is the number of submitted tasks not yet picked up
	Queued int

	// Active is the number of tasks currently executing
	Active int

	// Submitted, Completed and Failed are lifetime task counters
	Submitted uint64
	Completed uint64
	Failed    uint64

	// Closed reports whether the pool has been shut down
	Closed bool
}

// Stats returns a consistent snapshot of the executor's counters.
func (e *Executor) Stats() Stats {
	e.mu.Lock()
	s := Stats{
		Workers: e.workers,
		Started: e.started,
		Idle:    e.idle,
		Queued:  len(e.queue),
		Active:  e.active,
		Closed:  e.closed,
	}
	e.mu.Unlock()

	s.Submitted = e.submitted.Load()
	s.Completed = e.completed.Load()
	s.Failed = e.failed.Load()
	return s
}
