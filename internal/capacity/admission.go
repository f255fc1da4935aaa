package capacity

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/internal/repository"
)

// AdmissionControl decides whether a submission is admitted against the
// weekly capacity window. It is a soft gate: every legitimate submission
// attempt produces a persisted order, differing only in status and in
// whether it consumed capacity.
type AdmissionControl struct {
	repo   repository.CapacityRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewAdmissionControl creates the admission gate.
func NewAdmissionControl(repo repository.CapacityRepository, logger *zap.Logger) *AdmissionControl {
	return &AdmissionControl{repo: repo, logger: logger, now: time.Now}
}

// Decide runs the admission procedure for a final submission:
//  1. read the current window (a read failure fails open: assume not full),
//  2. full window: Awaiting Submission, counter untouched,
//  3. otherwise atomically increment; an increment failure under contention
//     is logged, not surfaced, and the order is still Submitted.
func (a *AdmissionControl) Decide(ctx context.Context) (domain.OrderStatus, *domain.CapacityWindow) {
	window, err := a.repo.CurrentWindow(ctx, a.now())
	if err != nil {
		a.logger.Warn("Capacity window read failed, assuming not full", zap.Error(err))
		return domain.OrderStatusSubmitted, nil
	}

	if window.IsFull {
		return domain.OrderStatusAwaitingSubmission, window
	}

	if err := a.repo.Increment(ctx, window.WeekStart); err != nil {
		// Fail open: the submission stands even when the counter could not
		// be consumed. Logged for audit since it can let weekly capacity be
		// exceeded under contention.
		a.logger.Error("Capacity counter increment failed, submitting anyway",
			zap.Time("week_start", window.WeekStart),
			zap.Error(err),
		)
		return domain.OrderStatusSubmitted, window
	}

	window.Remaining--
	if window.Remaining <= 0 {
		window.IsFull = true
	}
	return domain.OrderStatusSubmitted, window
}

// Peek reads the window for informational display on the review step. It
// never mutates capacity and tolerates failure: callers must not block
// navigation on a nil window.
func (a *AdmissionControl) Peek(ctx context.Context) *domain.CapacityWindow {
	window, err := a.repo.CurrentWindow(ctx, a.now())
	if err != nil {
		a.logger.Debug("Capacity peek failed", zap.Error(err))
		return nil
	}
	return window
}

// WeekStart truncates t to the Monday of its week, the capacity-window key.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}
