package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/boxlabs/storagebox/internal/auth/store"
)

// HousekeepingService periodically prunes revocation entries whose tokens
// have expired on their own. Pruning is hygiene only; verification re-checks
// the exp claim regardless, so a missed run never weakens anything.
type HousekeepingService struct {
	Revocations store.RevokedTokens
	Logger      *slog.Logger
	Interval    time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the pruning worker. A zero or negative
// interval defaults to 1 hour.
func NewHousekeepingService(
	revocations store.RevokedTokens,
	logger *slog.Logger,
	interval time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Revocations: revocations,
		Logger:      logger,
		Interval:    interval,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start launches the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started", "interval", s.Interval)
}

// Stop shuts the worker down and blocks until any in-progress prune
// finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.prune()

	for {
		select {
		case <-ticker.C:
			s.prune()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) prune() {
	ctx := context.Background()
	if err := s.Revocations.DeleteExpired(ctx); err != nil {
		s.Logger.Error("failed to prune expired revocations", "error", err)
		return
	}
	s.Logger.Debug("pruned expired revocations")
}
