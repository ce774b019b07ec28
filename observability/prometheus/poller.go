package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/rshetty/sharedexec"
)

// StatsProvider provides point-in-time executor snapshots.
type StatsProvider interface {
	Stats() sharedexec.Stats
}

// SnapshotPoller periodically exports executor Stats() snapshots into
// Prometheus gauges for the pools it has been told about.
type SnapshotPoller struct {
	interval time.Duration

	poolsMu sync.RWMutex
	pools   map[string]StatsProvider

	poolWorkers        *prom.GaugeVec
	poolStarted        *prom.GaugeVec
	poolIdle           *prom.GaugeVec
	poolQueued         *prom.GaugeVec
	poolActive         *prom.GaugeVec
	poolSubmittedTotal *prom.GaugeVec
	poolCompletedTotal *prom.GaugeVec
	poolFailedTotal    *prom.GaugeVec
	poolClosed         *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	poolWorkers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_workers",
		Help:      "Configured worker cap per pool.",
	}, []string{"pool"})
	poolStarted := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_started",
		Help:      "Worker goroutines spawned so far per pool.",
	}, []string{"pool"})
	poolIdle := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_idle",
		Help:      "Workers currently waiting for work per pool.",
	}, []string{"pool"})
	poolQueued := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_queued",
		Help:      "Submitted tasks not yet picked up per pool.",
	}, []string{"pool"})
	poolActive := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_active",
		Help:      "Tasks currently executing per pool.",
	}, []string{"pool"})
	poolSubmittedTotal := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_submitted_total",
		Help:      "Lifetime submitted task count snapshot.",
	}, []string{"pool"})
	poolCompletedTotal := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_completed_total",
		Help:      "Lifetime completed task count snapshot.",
	}, []string{"pool"})
	poolFailedTotal := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_failed_total",
		Help:      "Lifetime failed task count snapshot.",
	}, []string{"pool"})
	poolClosed := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_closed",
		Help:      "Pool closed state (1=closed, 0=open).",
	}, []string{"pool"})

	var err error
	if poolWorkers, err = registerCollector(reg, poolWorkers); err != nil {
		return nil, err
	}
	if poolStarted, err = registerCollector(reg, poolStarted); err != nil {
		return nil, err
	}
	if poolIdle, err = registerCollector(reg, poolIdle); err != nil {
		return nil, err
	}
	if poolQueued, err = registerCollector(reg, poolQueued); err != nil {
		return nil, err
	}
	if poolActive, err = registerCollector(reg, poolActive); err != nil {
		return nil, err
	}
	if poolSubmittedTotal, err = registerCollector(reg, poolSubmittedTotal); err != nil {
		return nil, err
	}
	if poolCompletedTotal, err = registerCollector(reg, poolCompletedTotal); err != nil {
		return nil, err
	}
	if poolFailedTotal, err = registerCollector(reg, poolFailedTotal); err != nil {
		return nil, err
	}
	if poolClosed, err = registerCollector(reg, poolClosed); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:           interval,
		pools:              make(map[string]StatsProvider),
		poolWorkers:        poolWorkers,
		poolStarted:        poolStarted,
		poolIdle:           poolIdle,
		poolQueued:         poolQueued,
		poolActive:         poolActive,
		poolSubmittedTotal: poolSubmittedTotal,
		poolCompletedTotal: poolCompletedTotal,
		poolFailedTotal:    poolFailedTotal,
		poolClosed:         poolClosed,
	}, nil
}

// AddPool adds or replaces a pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider StatsProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// RemovePool removes a pool snapshot provider by name.
func (p *SnapshotPoller) RemovePool(name string) {
	if p == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	delete(p.pools, name)
	p.poolsMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	done := p.done
	p.stateMu.Unlock()

	go p.loop(pollCtx, done)
}

// Stop stops periodic polling and waits for the loop to exit; repeated
// calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.poolsMu.RLock()
	for name, provider := range p.pools {
		stats := provider.Stats()
		p.poolWorkers.WithLabelValues(name).Set(float64(stats.Workers))
		p.poolStarted.WithLabelValues(name).Set(float64(stats.Started))
		p.poolIdle.WithLabelValues(name).Set(float64(stats.Idle))
		p.poolQueued.WithLabelValues(name).Set(float64(stats.Queued))
		p.poolActive.WithLabelValues(name).Set(float64(stats.Active))
		p.poolSubmittedTotal.WithLabelValues(name).Set(float64(stats.Submitted))
		p.poolCompletedTotal.WithLabelValues(name).Set(float64(stats.Completed))
		p.poolFailedTotal.WithLabelValues(name).Set(float64(stats.Failed))
		if stats.Closed {
			p.poolClosed.WithLabelValues(name).Set(1)
		} else {
			p.poolClosed.WithLabelValues(name).Set(0)
		}
	}
	p.poolsMu.RUnlock()
}
