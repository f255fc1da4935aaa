package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/capacity"
	"github.com/shorebytelabs/nailsbyabri/internal/config"
	"github.com/shorebytelabs/nailsbyabri/internal/repository"
)

const windowEnsureInterval = time.Hour

var capacityWindowMu sync.Mutex

// EnsureCapacityWindowsOnce makes sure counter rows exist for the current and
// the next production week. Existing rows keep their used counts and any
// manually adjusted capacity.
func EnsureCapacityWindowsOnce(ctx context.Context, cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) {
	week := capacity.WeekStart(time.Now())
	for _, start := range []time.Time{week, week.AddDate(0, 0, 7)} {
		if err := repos.Capacity.EnsureWindow(ctx, start, cfg.Capacity.WeeklyLimit); err != nil {
			logger.Error("Failed to ensure capacity window",
				zap.Time("week_start", start),
				zap.Error(err))
		}
	}
}

// RunCapacityWindowLoop runs the ensure once, then every windowEnsureInterval.
// Call from a goroutine.
func RunCapacityWindowLoop(ctx context.Context, cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) {
	capacityWindowMu.Lock()
	EnsureCapacityWindowsOnce(ctx, cfg, repos, logger)
	capacityWindowMu.Unlock()

	ticker := time.NewTicker(windowEnsureInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			capacityWindowMu.Lock()
			EnsureCapacityWindowsOnce(ctx, cfg, repos, logger)
			capacityWindowMu.Unlock()
		}
	}
}
