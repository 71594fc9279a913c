package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/toolshelf/internal/logger"
)

// Loader refreshes local state from the remote store.
type Loader interface {
	Load(ctx context.Context) error
}

// StoreReloader re-reads the store into the catalog on demand and,
// when an interval is set, periodically.
type StoreReloader struct {
	loader        Loader
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	started       atomic.Bool
	manualTrigger chan struct{}
	done          chan struct{}
}

// NewStoreReloader creates a reloader. interval <= 0 disables the ticker.
// manualTrigger may be shared with the HTTP layer; sends on it must not block.
func NewStoreReloader(
	loader Loader,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *StoreReloader {
	return &StoreReloader{
		loader:        loader,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
		done:          make(chan struct{}),
	}
}

// Start runs the reload loop in the background. The initial load is the
// caller's business.
func (sr *StoreReloader) Start(ctx context.Context) {
	if !sr.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(sr.done)

		var tick <-chan time.Time
		if sr.interval > 0 {
			ticker := time.NewTicker(sr.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				sr.reload(ctx, "interval")
			case <-sr.manualTrigger:
				sr.logger.Info("manual store reload triggered")
				sr.reload(ctx, "manual")
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the loop and waits for a reload in progress.
func (sr *StoreReloader) Stop() {
	sr.stopOnce.Do(func() { close(sr.stopCh) })
	if sr.started.Load() {
		<-sr.done
	}
}

// Trigger asks for a reload without waiting. It reports false when one is
// already queued.
func (sr *StoreReloader) Trigger() bool {
	select {
	case sr.manualTrigger <- struct{}{}:
		return true
	default:
		return false
	}
}

func (sr *StoreReloader) reload(ctx context.Context, reason string) {
	start := time.Now()
	if err := sr.loader.Load(ctx); err != nil {
		// the catalog already notified the user; keep serving what we have
		sr.logger.Error("failed to reload tools from store",
			logger.String("reason", reason),
			logger.Error(err))
		return
	}
	sr.logger.Debug("tools reloaded from store",
		logger.String("reason", reason),
		logger.Duration("took", time.Since(start)))
}
