package chart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"energy-calculator/internal/models"
	"energy-calculator/pkg/metrics"
)

var (
	// ErrUnknownHandle is returned for handles that were never created, have
	// been destroyed or have expired.
	ErrUnknownHandle = errors.New("unknown chart handle")

	// ErrRegistryFull is returned by Create when the live chart limit is reached.
	ErrRegistryFull = errors.New("too many live charts")
)

// Handle identifies a live chart owned by a caller.
type Handle string

type entry struct {
	chart      Chart
	lastAccess time.Time
}

// Registry owns live charts. Callers hold the Handle returned by Create and
// pass it back to Replace or Destroy; there is no implicit current chart.
// Charts not touched for longer than the sweep's max idle are released.
type Registry struct {
	mu      sync.RWMutex
	charts  map[Handle]*entry
	limit   int
	metrics *metrics.Collector
	now     func() time.Time
}

// NewRegistry creates an empty registry holding at most limit live charts.
// A limit of zero or less means no limit.
func NewRegistry(limit int, metricsCollector *metrics.Collector) *Registry {
	return &Registry{
		charts:  make(map[Handle]*entry),
		limit:   limit,
		metrics: metricsCollector,
		now:     time.Now,
	}
}

// Create builds a chart for res and returns its handle.
func (r *Registry) Create(res models.ProjectionResult) (Handle, Chart, error) {
	c := Build(res)
	h := Handle(uuid.Must(uuid.NewV7()).String())

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.limit > 0 && len(r.charts) >= r.limit {
		if r.metrics != nil {
			r.metrics.ChartsRejectedTotal.Inc()
		}
		return "", Chart{}, ErrRegistryFull
	}
	r.charts[h] = &entry{chart: c, lastAccess: r.now()}
	r.updateGauge()

	return h, c, nil
}

// Replace destroys h and creates a new chart for res in one step.
func (r *Registry) Replace(h Handle, res models.ProjectionResult) (Handle, Chart, error) {
	c := Build(res)
	next := Handle(uuid.Must(uuid.NewV7()).String())

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.charts[h]; !ok {
		return "", Chart{}, ErrUnknownHandle
	}
	delete(r.charts, h)
	r.charts[next] = &entry{chart: c, lastAccess: r.now()}
	r.updateGauge()

	return next, c, nil
}

// Get returns the chart behind h and marks it as recently used.
func (r *Registry) Get(h Handle) (Chart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.charts[h]
	if !ok {
		return Chart{}, ErrUnknownHandle
	}
	e.lastAccess = r.now()
	return e.chart, nil
}

// Destroy releases h.
func (r *Registry) Destroy(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.charts[h]; !ok {
		return ErrUnknownHandle
	}
	delete(r.charts, h)
	r.updateGauge()
	return nil
}

// SweepIdle releases charts not accessed within maxIdle and returns how many
// were released.
func (r *Registry) SweepIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()

	expired := 0
	for h, e := range r.charts {
		if e.lastAccess.Before(cutoff) {
			delete(r.charts, h)
			expired++
		}
	}
	if expired > 0 {
		r.updateGauge()
		if r.metrics != nil {
			r.metrics.ChartsExpiredTotal.Add(float64(expired))
		}
	}
	return expired
}

// RunSweeper calls SweepIdle every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.SweepIdle(maxIdle)
		}
	}
}

// Len returns the number of live charts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.charts)
}

// updateGauge must be called with mu held.
func (r *Registry) updateGauge() {
	if r.metrics != nil {
		r.metrics.ChartsActive.Set(float64(len(r.charts)))
	}
}
