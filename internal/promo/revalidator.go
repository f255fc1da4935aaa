package promo

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/pkg/errors"
)

const defaultDebounce = 300 * time.Millisecond

// Outcome is delivered to the Revalidator's apply callback once a validation
// settles. Cleared is set when the promo must be silently removed from the
// draft; Notice carries the non-blocking message shown to the user.
type Outcome struct {
	Version     uint64
	Application *domain.PromoApplication
	Cleared     bool
	Notice      string
}

// Revalidator owns automatic promo revalidation. Every order mutation bumps a
// monotonically increasing snapshot version and (debounced) schedules a
// validation; only the result matching the latest version is applied, so
// racing validations can never apply a stale result. Revalidation never
// blocks the user: failure degrades to clearing the promo plus a notice.
type Revalidator struct {
	validator Validator
	logger    *zap.Logger
	apply     func(Outcome)
	debounce  time.Duration

	mu      sync.Mutex
	version uint64
	timer   *time.Timer
	pending func()
}

// NewRevalidator creates a revalidator. apply is invoked (on the validation
// goroutine) with the winning outcome; stale outcomes are discarded before
// apply is ever called.
func NewRevalidator(validator Validator, logger *zap.Logger, apply func(Outcome)) *Revalidator {
	return &Revalidator{
		validator: validator,
		logger:    logger,
		apply:     apply,
		debounce:  defaultDebounce,
	}
}

// SetDebounce overrides the coalescing window. Zero disables debouncing.
func (r *Revalidator) SetDebounce(d time.Duration) {
	r.mu.Lock()
	r.debounce = d
	r.mu.Unlock()
}

// NoteChange records that the order snapshot changed while a promo is
// applied. Rapid successive edits coalesce into one validation. Returns the
// new snapshot version.
func (r *Revalidator) NoteChange(ctx context.Context, code string, snap domain.OrderSnapshot, userID string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.version++
	version := r.version

	run := func() {
		go r.run(ctx, version, code, snap, userID)
	}

	if r.timer != nil {
		r.timer.Stop()
	}
	if r.debounce <= 0 {
		run()
		return version
	}
	r.pending = run
	r.timer = time.AfterFunc(r.debounce, func() {
		r.mu.Lock()
		pending := r.pending
		r.pending = nil
		r.mu.Unlock()
		if pending != nil {
			pending()
		}
	})
	return version
}

// Cancel drops any scheduled validation and invalidates in-flight results.
// Called when the promo is cleared or submission starts.
func (r *Revalidator) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.version++
	r.pending = nil
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// Version returns the current snapshot version.
func (r *Revalidator) Version() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version
}

func (r *Revalidator) run(ctx context.Context, version uint64, code string, snap domain.OrderSnapshot, userID string) {
	app, err := r.validator.Validate(ctx, code, snap, userID)

	r.mu.Lock()
	stale := version != r.version
	r.mu.Unlock()
	if stale {
		r.logger.Debug("Discarding stale promo revalidation",
			zap.Uint64("version", version),
			zap.String("code", code),
		)
		return
	}

	out := Outcome{Version: version}
	switch {
	case err == nil:
		out.Application = app
	default:
		// Invalid or unreachable: clear silently and inform, never block.
		out.Cleared = true
		if inv, ok := err.(*errors.ErrInvalidPromo); ok {
			out.Notice = "Promo code " + inv.Code + " no longer applies and was removed."
		} else {
			out.Notice = "Promo code " + code + " could not be re-checked and was removed."
			r.logger.Warn("Promo revalidation service failure", zap.String("code", code), zap.Error(err))
		}
	}
	r.apply(out)
}
