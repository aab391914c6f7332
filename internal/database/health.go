package database

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Health tracks whether the backing store is currently reachable. Connection monitors
// flip it; request handling only reads it.
type Health struct {
	connected atomic.Bool
	logger    zerolog.Logger

	readyInit  sync.Once
	readyClose sync.Once
	ready      chan struct{}
}

// NewHealth returns a tracker that starts out disconnected.
func NewHealth(logger zerolog.Logger) *Health {
	return &Health{logger: logger.With().Str("component", "store_health").Logger()}
}

// Connected reports the last observed connectivity.
func (h *Health) Connected() bool {
	return h.connected.Load()
}

// Ready is closed the first time the store is marked up and stays closed afterwards.
func (h *Health) Ready() <-chan struct{} {
	return h.readyChan()
}

func (h *Health) readyChan() chan struct{} {
	h.readyInit.Do(func() {
		h.ready = make(chan struct{})
	})
	return h.ready
}

// MarkUp records a successful contact with the store.
func (h *Health) MarkUp() {
	if !h.connected.Swap(true) {
		h.logger.Info().Msg("store connected")
	}
	h.readyClose.Do(func() {
		close(h.readyChan())
	})
}

// MarkDown records a failed contact with the store.
func (h *Health) MarkDown(err error) {
	if h.connected.Swap(false) {
		h.logger.Error().Err(err).Msg("store disconnected")
	}
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// WatchPing pings the store every interval until ctx is cancelled and records the result
// on h. The first ping runs immediately.
func WatchPing(ctx context.Context, pinger Pinger, interval, timeout time.Duration, h *Health) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if timeout <= 0 {
		timeout = interval
	}

	probe := func() {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := pinger.PingContext(pingCtx); err != nil {
			h.MarkDown(err)
			return
		}
		h.MarkUp()
	}

	probe()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}
