package sharedexec

import "time"

// Metrics receives execution telemetry from an Executor. Implementations
// must be safe for concurrent use; the hooks run inline on submitter and
// worker goroutines and should be cheap.
//
// The observability/prometheus package provides an implementation backed by
// Prometheus collectors.
type Metrics interface {
	// RecordTaskDuration records how long a task ran, successful or not.
	RecordTaskDuration(pool string, d time.Duration)

	// RecordTaskFailure records a task that returned an error or panicked.
	RecordTaskFailure(pool string)

	// RecordTaskRejected records a submission refused by the pool.
	RecordTaskRejected(pool string, reason string)

	// RecordQueueDepth records the queue depth observed after a submission.
	RecordQueueDepth(pool string, depth int)
}

// NilMetrics is the default Metrics implementation. It does nothing.
type NilMetrics struct{}

// RecordTaskDuration does nothing.
func (NilMetrics) RecordTaskDuration(pool string, d time.Duration) {}

// RecordTaskFailure does nothing.
func (NilMetrics) RecordTaskFailure(pool string) {}

// RecordTaskRejected does nothing.
func (NilMetrics) RecordTaskRejected(pool string, reason string) {}

// RecordQueueDepth does nothing.
func (NilMetrics) RecordQueueDepth(pool string, depth int) {}
