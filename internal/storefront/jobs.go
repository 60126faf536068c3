package storefront

import (
	"context"
	"time"

	"neontix/pkg/logger"
)

const DefaultSweepInterval = time.Minute

// Sweeper periodically closes idle shopper sessions
type Sweeper struct {
	registry *Registry
	interval time.Duration
	log      *logger.Logger
	done     chan struct{}
}

func NewSweeper(registry *Registry, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		registry: registry,
		interval: interval,
		log:      logger.GetDefault(),
		done:     make(chan struct{}),
	}
}

// Start runs the sweep loop in the background
func (sw *Sweeper) Start(ctx context.Context) {
	go sw.run(ctx)
	sw.log.Info("Shopper session sweeper started", "interval", sw.interval.String())
}

// Stop ends the sweep loop
func (sw *Sweeper) Stop() {
	close(sw.done)
	sw.log.Info("Shopper session sweeper stopped")
}

func (sw *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sw.sweep()
		case <-sw.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (sw *Sweeper) sweep() {
	if n := sw.registry.Sweep(); n > 0 {
		sw.log.Info("Closed idle shopper sessions", "count", n, "remaining", sw.registry.Len())
	}
}
