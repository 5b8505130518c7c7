package cart

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically re-checks the cart for lines whose backing product
// went away and silently cleans them up. This is a resilience behavior,
// not a correctness requirement; failures are logged and the next tick
// tries again. Run it with the session context so it stops at logout.
type Sweeper struct {
	manager  *Manager
	interval time.Duration
	logger   *zap.Logger
}

// NewSweeper creates a sweeper over the given manager.
func NewSweeper(manager *Manager, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{manager: manager, interval: interval, logger: logger}
}

// Run blocks until ctx is done, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if s.manager.State() != StateReady {
		return
	}
	if err := s.manager.Fetch(ctx); err != nil {
		s.logger.Warn("background cart sweep fetch failed", zap.Error(err))
		return
	}
	if !s.manager.HasInvalidItems() {
		return
	}

	s.logger.Info("background sweep found invalid cart lines, cleaning up")
	if err := s.manager.CleanupInvalidItems(ctx); err != nil {
		s.logger.Warn("background cart cleanup failed", zap.Error(err))
	}
}
