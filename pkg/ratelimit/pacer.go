// Package ratelimit paces requests to the EPC open data API. The service
// asks clients not to hammer it; the pacer enforces a minimum interval
// between requests, shared via Redis across processes that use the same API
// key. Without Redis it degrades to a per-process pacer.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for request pacing.
var (
	epcPacerWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "epc_pacer_waits_total",
		Help: "Total requests that had to wait for the pacing interval",
	})

	epcPacerWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "epc_pacer_wait_seconds",
		Help:    "Time spent waiting for the pacing interval",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2},
	})
)

// redisKeyLastRequest stores the unix-millisecond timestamp of the most
// recent request across all processes sharing the Redis instance.
const redisKeyLastRequest = "epc:pacer:last_request"

// DefaultInterval is the minimum gap between successive API requests.
const DefaultInterval = 500 * time.Millisecond

// Pacer enforces a minimum interval between requests.
type Pacer struct {
	redis    *redis.Client
	interval time.Duration
	logger   zerolog.Logger

	mu   sync.Mutex
	last time.Time
}

// NewPacer creates a pacer. redisClient may be nil, in which case pacing is
// local to the process. A non-positive interval falls back to the default.
func NewPacer(redisClient *redis.Client, interval time.Duration, logger zerolog.Logger) *Pacer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Pacer{
		redis:    redisClient,
		interval: interval,
		logger:   logger,
	}
}

// Wait blocks until the pacing interval since the last request has elapsed,
// then records the current time as the new last-request timestamp. The wait
// is cancellable via the context.
func (p *Pacer) Wait(ctx context.Context) error {
	now := time.Now()
	wait := p.interval - now.Sub(p.lastRequest(ctx, now))

	if wait > 0 {
		epcPacerWaitsTotal.Inc()
		epcPacerWaitSeconds.Observe(wait.Seconds())
		p.logger.Debug().Dur("wait", wait).Msg("Pacing request")

		select {
		case <-ctx.Done():
			return fmt.Errorf("pacer wait cancelled: %w", ctx.Err())
		case <-time.After(wait):
		}
	}

	p.recordRequest(ctx, time.Now())
	return nil
}

// lastRequest returns the most recent request time seen, preferring the
// shared Redis state. Redis errors fall back to the local timestamp so an
// unavailable Redis never blocks requests.
func (p *Pacer) lastRequest(ctx context.Context, now time.Time) time.Time {
	p.mu.Lock()
	local := p.last
	p.mu.Unlock()

	if p.redis == nil {
		return local
	}

	millis, err := p.redis.Get(ctx, redisKeyLastRequest).Int64()
	if err != nil {
		if err != redis.Nil {
			p.logger.Warn().Err(err).Msg("Pacer falling back to local state")
		}
		return local
	}

	shared := time.UnixMilli(millis)
	if shared.After(now) {
		// Clock skew between processes; treat as "just now".
		return now
	}
	if shared.After(local) {
		return shared
	}
	return local
}

// recordRequest stores the request timestamp locally and, when available,
// in the shared Redis state.
func (p *Pacer) recordRequest(ctx context.Context, at time.Time) {
	p.mu.Lock()
	p.last = at
	p.mu.Unlock()

	if p.redis == nil {
		return
	}
	if err := p.redis.Set(ctx, redisKeyLastRequest, at.UnixMilli(), 2*p.interval).Err(); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to update shared pacer state")
	}
}
