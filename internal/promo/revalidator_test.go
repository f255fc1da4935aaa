package promo

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/pkg/errors"
)

type stubValidator struct {
	mu    sync.Mutex
	app   *domain.PromoApplication
	err   error
	calls int
	gate  chan struct{} // when set, Validate blocks until the channel closes
}

func (s *stubValidator) Validate(_ context.Context, code string, _ domain.OrderSnapshot, _ string) (*domain.PromoApplication, error) {
	s.mu.Lock()
	s.calls++
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.app != nil {
		return s.app, nil
	}
	return &domain.PromoApplication{Code: code, Valid: true, DiscountAmount: decimal.NewFromInt(5)}, nil
}

func (s *stubValidator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func collectOutcomes() (func(Outcome), chan Outcome) {
	ch := make(chan Outcome, 8)
	return func(o Outcome) { ch <- o }, ch
}

func TestRevalidatorAppliesLatestResult(t *testing.T) {
	apply, outcomes := collectOutcomes()
	r := NewRevalidator(&stubValidator{}, zap.NewNop(), apply)
	r.SetDebounce(time.Millisecond)

	version := r.NoteChange(context.Background(), "WELCOME5", testSnapshot(1), "user-1")

	select {
	case out := <-outcomes:
		assert.Equal(t, version, out.Version)
		require.NotNil(t, out.Application)
		assert.Equal(t, "WELCOME5", out.Application.Code)
		assert.False(t, out.Cleared)
	case <-time.After(time.Second):
		t.Fatal("revalidation outcome never arrived")
	}
}

func TestRevalidatorDebouncesRapidEdits(t *testing.T) {
	v := &stubValidator{}
	apply, outcomes := collectOutcomes()
	r := NewRevalidator(v, zap.NewNop(), apply)
	r.SetDebounce(20 * time.Millisecond)

	for i := 0; i < 5; i++ {
		r.NoteChange(context.Background(), "WELCOME5", testSnapshot(i+1), "user-1")
	}

	select {
	case out := <-outcomes:
		assert.Equal(t, r.Version(), out.Version)
	case <-time.After(time.Second):
		t.Fatal("revalidation outcome never arrived")
	}
	assert.Equal(t, 1, v.callCount())
}

func TestRevalidatorDiscardsStaleResult(t *testing.T) {
	gate := make(chan struct{})
	v := &stubValidator{gate: gate}
	apply, outcomes := collectOutcomes()
	r := NewRevalidator(v, zap.NewNop(), apply)
	r.SetDebounce(0)

	r.NoteChange(context.Background(), "WELCOME5", testSnapshot(1), "user-1")
	// Wait for the in-flight validation, then invalidate it.
	require.Eventually(t, func() bool { return v.callCount() == 1 }, time.Second, time.Millisecond)
	r.Cancel()
	close(gate)

	select {
	case out := <-outcomes:
		t.Fatalf("stale outcome applied: %+v", out)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRevalidatorCancelDropsScheduledRun(t *testing.T) {
	v := &stubValidator{}
	apply, outcomes := collectOutcomes()
	r := NewRevalidator(v, zap.NewNop(), apply)
	r.SetDebounce(50 * time.Millisecond)

	r.NoteChange(context.Background(), "WELCOME5", testSnapshot(1), "user-1")
	r.Cancel()

	select {
	case out := <-outcomes:
		t.Fatalf("cancelled outcome applied: %+v", out)
	case <-time.After(150 * time.Millisecond):
	}
	assert.Equal(t, 0, v.callCount())
}

func TestRevalidatorClearsOnInvalidCode(t *testing.T) {
	v := &stubValidator{err: &errors.ErrInvalidPromo{Code: "WELCOME5", Reason: "expired"}}
	apply, outcomes := collectOutcomes()
	r := NewRevalidator(v, zap.NewNop(), apply)
	r.SetDebounce(0)

	r.NoteChange(context.Background(), "WELCOME5", testSnapshot(1), "user-1")

	select {
	case out := <-outcomes:
		assert.True(t, out.Cleared)
		assert.Nil(t, out.Application)
		assert.Equal(t, "Promo code WELCOME5 no longer applies and was removed.", out.Notice)
	case <-time.After(time.Second):
		t.Fatal("revalidation outcome never arrived")
	}
}

func TestRevalidatorClearsOnServiceFailure(t *testing.T) {
	v := &stubValidator{err: fmt.Errorf("promo store down")}
	apply, outcomes := collectOutcomes()
	r := NewRevalidator(v, zap.NewNop(), apply)
	r.SetDebounce(0)

	r.NoteChange(context.Background(), "WELCOME5", testSnapshot(1), "user-1")

	select {
	case out := <-outcomes:
		assert.True(t, out.Cleared)
		assert.Equal(t, "Promo code WELCOME5 could not be re-checked and was removed.", out.Notice)
	case <-time.After(time.Second):
		t.Fatal("revalidation outcome never arrived")
	}
}
