// Package prometheus exports executor telemetry as Prometheus metrics.
//
// Exporter implements sharedexec.Metrics for event-driven series (task
// durations, failures, rejections, queue depth). SnapshotPoller mirrors
// periodic Stats() snapshots into gauges for registered pools. Handler
// serves a registry in the Prometheus exposition format for the CLI's
// --metrics-listen flag.
package prometheus

import (
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/rshetty/sharedexec"
)

const namespace = "sharedexec"

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// Exporter adapts sharedexec.Metrics to Prometheus collectors.
type Exporter struct {
	taskDurationSeconds *prom.HistogramVec
	taskFailuresTotal   *prom.CounterVec
	taskRejectedTotal   *prom.CounterVec
	queueDepth          *prom.GaugeVec
}

var _ sharedexec.Metrics = (*Exporter)(nil)

// NewExporter creates and registers Prometheus collectors for executor
// telemetry. Registering against a registry that already carries the
// collectors reuses the existing ones, so exporters can be constructed
// repeatedly over one registry.
func NewExporter(reg prom.Registerer, opts ExporterOptions) (*Exporter, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"pool"})
	failuresVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_failures_total",
		Help:      "Total number of tasks that returned an error or panicked.",
	}, []string{"pool"})
	rejectedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_rejected_total",
		Help:      "Total number of submissions refused by the pool.",
	}, []string{"pool", "reason"})
	queueDepthVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Queue depth observed after the most recent submission.",
	}, []string{"pool"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if failuresVec, err = registerCollector(reg, failuresVec); err != nil {
		return nil, err
	}
	if rejectedVec, err = registerCollector(reg, rejectedVec); err != nil {
		return nil, err
	}
	if queueDepthVec, err = registerCollector(reg, queueDepthVec); err != nil {
		return nil, err
	}

	return &Exporter{
		taskDurationSeconds: durationVec,
		taskFailuresTotal:   failuresVec,
		taskRejectedTotal:   rejectedVec,
		queueDepth:          queueDepthVec,
	}, nil
}

// RecordTaskDuration records task execution duration.
func (e *Exporter) RecordTaskDuration(pool string, d time.Duration) {
	if e == nil {
		return
	}
	e.taskDurationSeconds.WithLabelValues(normalizeLabel(pool, "unknown")).Observe(d.Seconds())
}

// RecordTaskFailure records a task that returned an error or panicked.
func (e *Exporter) RecordTaskFailure(pool string) {
	if e == nil {
		return
	}
	e.taskFailuresTotal.WithLabelValues(normalizeLabel(pool, "unknown")).Inc()
}

// RecordTaskRejected records a submission refused by the pool.
func (e *Exporter) RecordTaskRejected(pool string, reason string) {
	if e == nil {
		return
	}
	e.taskRejectedTotal.WithLabelValues(normalizeLabel(pool, "unknown"), normalizeLabel(reason, "unknown")).Inc()
}

// RecordQueueDepth records the queue depth observed after a submission.
func (e *Exporter) RecordQueueDepth(pool string, depth int) {
	if e == nil {
		return
	}
	e.queueDepth.WithLabelValues(normalizeLabel(pool, "unknown")).Set(float64(depth))
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
