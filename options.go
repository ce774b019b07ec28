package sharedexec

import "log/slog"

type options struct {
	name    string
	workers int
	logger  *slog.Logger
	metrics Metrics
}

func defaultOptions() options {
	return options{
		name:    "shared",
		workers: 0,
		logger:  slog.Default(),
		metrics: NilMetrics{},
	}
}

// Option configures an Executor at construction time.
type Option func(*options)

// WithWorkers sets the maximum number of concurrent worker goroutines.
// Zero (the default) resolves to runtime.NumCPU; a negative value makes
// construction fail.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithName sets the label used for this pool in logs and metrics.
// Empty names are ignored.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger sets the structured logger used for lifecycle events.
// A nil logger is ignored; the default is slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the telemetry sink for this pool. A nil sink is ignored;
// the default discards everything.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}
