package session

import (
	"context"
	"expvar"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/runic/mailman/pkg/config"
	"github.com/runic/mailman/pkg/metric"
)

var (
	reapCompleted   = time.Now()
	reapCompletedMu sync.RWMutex

	expSessionsCreated *metric.Counter
	expSessionsReaped  *metric.Counter
	expSessionsEvicted *metric.Counter
	expSessionsCurrent = new(expvar.Int)
	expMaxIdle         = new(expvar.Int)
)

func init() {
	m := expvar.NewMap("sessions")
	m.Set("SecondsSinceReapCompleted", expvar.Func(secondsSinceReapCompleted))
	m.Set("MaxIdle", expMaxIdle)
	m.Set("Current", expSessionsCurrent)
	expSessionsCreated = metric.NewCounter(m, "Created")
	expSessionsReaped = metric.NewCounter(m, "Reaped")
	expSessionsEvicted = metric.NewCounter(m, "Evicted")
}

// Reaper periodically discards sessions that have been idle longer than the configured limit.
type Reaper struct {
	registry *Registry
	maxIdle  time.Duration
	interval time.Duration
	shutdown chan struct{} // Closed after the reaper has shut down.
}

// NewReaper configures a new Reaper.
func NewReaper(cfg config.Session, registry *Registry) *Reaper {
	expMaxIdle.Set(int64(cfg.MaxIdle / time.Second))
	return &Reaper{
		registry: registry,
		maxIdle:  cfg.MaxIdle,
		interval: cfg.ReapInterval,
		shutdown: make(chan struct{}),
	}
}

// Start the reaper if the idle limit is > 0.  It runs until ctx is canceled.
func (r *Reaper) Start(ctx context.Context) {
	logger := log.With().Str("module", "session").Str("phase", "startup").Logger()
	if r.maxIdle <= 0 || r.interval <= 0 {
		logger.Info().Msg("Session reaper disabled")
		close(r.shutdown)
		return
	}
	logger.Info().Dur("maxIdle", r.maxIdle).Msg("Session reaper configured")
	go r.run(ctx)
}

// run loops to kick off the reaper on the configured schedule.
func (r *Reaper) run(ctx context.Context) {
	logger := log.With().Str("module", "session").Logger()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Debug().Str("phase", "shutdown").Msg("Session reaper shut down")
			close(r.shutdown)
			return
		case <-ticker.C:
			r.DoScan()
		}
	}
}

// DoScan does a single pass over all sessions, discarding idle ones.  Returns the number removed.
func (r *Reaper) DoScan() int {
	cutoff := r.registry.now().Add(-r.maxIdle)
	n := r.registry.removeIdle(cutoff)
	if n > 0 {
		log.Debug().Str("module", "session").Int("count", n).Msg("Reaped idle sessions")
	}
	expSessionsReaped.Add(int64(n))
	expSessionsCurrent.Set(int64(r.registry.Len()))
	setReapCompleted(time.Now())
	return n
}

// Join does not return until the reaper has shut down.
func (r *Reaper) Join() {
	<-r.shutdown
}

func setReapCompleted(t time.Time) {
	reapCompletedMu.Lock()
	defer reapCompletedMu.Unlock()
	reapCompleted = t
}

func getReapCompleted() time.Time {
	reapCompletedMu.RLock()
	defer reapCompletedMu.RUnlock()
	return reapCompleted
}

func secondsSinceReapCompleted() any {
	return time.Since(getReapCompleted()) / time.Second
}
