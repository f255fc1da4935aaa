package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/internal/pricing"
	"github.com/shorebytelabs/nailsbyabri/internal/promo"
	"github.com/shorebytelabs/nailsbyabri/internal/repository"
	"github.com/shorebytelabs/nailsbyabri/internal/storage"
	"github.com/shorebytelabs/nailsbyabri/internal/wizard"
	"github.com/shorebytelabs/nailsbyabri/pkg/errors"
)

// DraftService holds one in-flight order composition per user. All wizard
// mutations go through Apply, which runs the pure transition and then the
// side effects it implies: pricing the saved set, autosaving, and scheduling
// promo revalidation when the promo-relevant snapshot changed.
type DraftService struct {
	repos     *repository.Repositories
	orders    *OrderService
	validator promo.Validator
	store     *storage.Client
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*draftSession
}

type draftSession struct {
	mu          sync.Mutex
	state       wizard.State
	reval       *promo.Revalidator
	fingerprint string
}

// NewDraftService creates a new draft service
func NewDraftService(repos *repository.Repositories, orders *OrderService, validator promo.Validator, store *storage.Client, logger *zap.Logger) *DraftService {
	return &DraftService{
		repos:     repos,
		orders:    orders,
		validator: validator,
		store:     store,
		logger:    logger,
		sessions:  make(map[string]*draftSession),
	}
}

// State returns the user's current wizard state, starting a fresh draft when
// none exists.
func (s *DraftService) State(ctx context.Context, userID string) (wizard.State, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return wizard.State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state, nil
}

// Apply runs one wizard action and its follow-on effects, returning the
// resulting state.
func (s *DraftService) Apply(ctx context.Context, userID string, action wizard.Action) (wizard.State, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return wizard.State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state.Submitting {
		return sess.state, &errors.ErrConflict{Message: "submission already in progress"}
	}
	sess.state = wizard.Apply(sess.state, action)

	if _, saved := action.(wizard.SaveSet); saved && sess.state.Step == domain.StepSummary {
		s.priceSets(ctx, sess)
	}
	s.noteSnapshot(ctx, sess)
	s.autosave(ctx, sess)
	return sess.state, nil
}

// SelectProfile picks one of the user's saved size profiles for the current
// set. The profile must be in the eligible list the session was started with.
func (s *DraftService) SelectProfile(ctx context.Context, userID, profileID string) (wizard.State, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return wizard.State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	for _, p := range sess.state.Profiles {
		if p.ID == profileID {
			sess.state = wizard.Apply(sess.state, wizard.SelectProfile{Profile: p})
			return sess.state, nil
		}
	}
	return sess.state, &errors.ErrNotFound{Resource: "size profile", ID: profileID}
}

// Preview computes the current pricing breakdown over the committed sets.
// Network-bound on the catalog; the client calls it when the summary or
// review step renders, never mid-keystroke.
func (s *DraftService) Preview(ctx context.Context, userID string) (*pricing.Breakdown, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	engine, err := s.engine(ctx)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return engine.Compute(pricing.Input{
		Sets:     sess.state.Draft.Sets,
		Delivery: sess.state.Draft.Delivery,
		Promo:    sess.state.Draft.Promo,
	})
}

// ApplyPromo validates a code against the current snapshot and attaches it.
// Unlike background revalidation, an explicit apply surfaces the rejection.
func (s *DraftService) ApplyPromo(ctx context.Context, userID, code string) (wizard.State, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return wizard.State{}, err
	}
	sess.mu.Lock()
	snap := sess.state.Draft.Snapshot()
	sess.mu.Unlock()

	app, err := s.validator.Validate(ctx, code, snap, userID)
	if err != nil {
		return wizard.State{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.state = wizard.Apply(sess.state, wizard.PromoApplied{App: *app})
	sess.fingerprint = snap.Fingerprint()
	s.autosave(ctx, sess)
	return sess.state, nil
}

// ClearPromo removes the applied promo at the user's request.
func (s *DraftService) ClearPromo(ctx context.Context, userID string) (wizard.State, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return wizard.State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.reval.Cancel()
	sess.state = wizard.Apply(sess.state, wizard.PromoCleared{})
	s.autosave(ctx, sess)
	return sess.state, nil
}

// Autosave persists the draft immediately (the client calls it on app
// backgrounding). No-op once submission has started.
func (s *DraftService) Autosave(ctx context.Context, userID string) (wizard.State, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return wizard.State{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.autosave(ctx, sess)
	return sess.state, nil
}

// Upload attaches an image to the set currently being edited and uploads it
// in the background. Each upload succeeds or fails on its own; a failed one
// never blocks the others or the draft itself.
func (s *DraftService) Upload(ctx context.Context, userID string, kind domain.UploadKind, fileName string, data []byte) (wizard.State, error) {
	if s.store == nil {
		return wizard.State{}, &errors.ErrServiceUnavailable{Service: "storage"}
	}
	sess, err := s.session(ctx, userID)
	if err != nil {
		return wizard.State{}, err
	}

	sess.mu.Lock()
	if sess.state.Submitting {
		sess.mu.Unlock()
		return sess.state, &errors.ErrConflict{Message: "submission already in progress"}
	}
	// Uploads attach to an order row, so one is created eagerly if this
	// draft has never been persisted.
	if sess.state.Draft.ID == uuid.Nil {
		draft := sess.state.Draft
		id, err := s.orders.EnsureOrder(ctx, &draft)
		if err != nil {
			sess.mu.Unlock()
			return sess.state, err
		}
		sess.state = wizard.Apply(sess.state, wizard.OrderPersisted{ID: id})
	}
	ref := domain.UploadReference{
		ID:       uuid.New(),
		FileName: fileName,
		State:    domain.UploadStatePending,
	}
	orderID := sess.state.Draft.ID
	sess.state = wizard.Apply(sess.state, wizard.AttachUpload{Kind: kind, Ref: ref})
	state := sess.state
	sess.mu.Unlock()

	go s.runUpload(userID, orderID, ref, kind, data, sess)
	return state, nil
}

// Submit finalizes the user's draft and retires the session.
func (s *DraftService) Submit(ctx context.Context, userID string) (*SubmitResult, error) {
	sess, err := s.session(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := wizard.CanSubmit(sess.state); err != nil {
		return nil, err
	}
	sess.state = wizard.Apply(sess.state, wizard.SubmissionStarted{})
	sess.reval.Cancel()

	result, err := s.orders.Submit(ctx, sess.state)
	if err != nil {
		// Unblock the wizard so the user can retry.
		sess.state = wizard.Apply(sess.state, wizard.SubmissionFinished{})
		return nil, err
	}
	sess.state = wizard.Apply(sess.state, wizard.OrderPersisted{ID: result.Order.ID})
	sess.state = wizard.Apply(sess.state, wizard.SubmissionFinished{Status: result.Order.Status})

	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
	return result, nil
}

func (s *DraftService) session(ctx context.Context, userID string) (*draftSession, error) {
	if userID == "" {
		return nil, &errors.ErrUnauthorized{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess, nil
	}

	profiles, err := s.repos.SizeProfile.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to load size profiles for draft", zap.Error(err), zap.String("user_id", userID))
		profiles = nil
	}
	sess := &draftSession{state: s.initialState(ctx, userID, profiles)}
	sess.reval = promo.NewRevalidator(s.validator, s.logger, func(out promo.Outcome) {
		s.applyRevalidation(sess, out)
	})
	s.sessions[userID] = sess
	return sess, nil
}

// initialState resumes the user's autosaved draft when one exists, so a
// server restart never strands a persisted draft or forks a second order row.
// Otherwise it starts fresh, prefilling the delivery address the customer
// asked to keep on their most recent order.
func (s *DraftService) initialState(ctx context.Context, userID string, profiles []domain.SizeProfile) wizard.State {
	rec, err := s.repos.Order.LatestByUserAndStatus(ctx, userID, domain.OrderStatusDraft)
	if err == nil {
		return wizard.Resume(rec, profiles)
	}
	if _, ok := err.(*errors.ErrNotFound); !ok {
		s.logger.Warn("Failed to look up autosaved draft", zap.Error(err), zap.String("user_id", userID))
	}

	state := wizard.NewState(userID, profiles)
	if prev, perr := s.repos.Order.LatestSavedAddress(ctx, userID); perr == nil && prev.Delivery.Addr.Complete() {
		addr := *prev.Delivery.Addr
		state.Draft.Delivery.Addr = &addr
		state.Draft.SaveAddress = true
	}
	return state
}

// applyRevalidation lands a settled background validation on the session,
// unless submission started while it was in flight.
func (s *DraftService) applyRevalidation(sess *draftSession, out promo.Outcome) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state.Submitting {
		return
	}
	if out.Cleared {
		sess.state = wizard.Apply(sess.state, wizard.PromoCleared{Notice: out.Notice})
	} else if out.Application != nil {
		sess.state = wizard.Apply(sess.state, wizard.PromoApplied{App: *out.Application})
	}
}

// noteSnapshot schedules a debounced revalidation when a promo is applied and
// the promo-relevant view of the draft has changed. Callers hold sess.mu.
func (s *DraftService) noteSnapshot(ctx context.Context, sess *draftSession) {
	if sess.state.Draft.Promo == nil {
		return
	}
	snap := sess.state.Draft.Snapshot()
	fp := snap.Fingerprint()
	if fp == sess.fingerprint {
		return
	}
	sess.fingerprint = fp
	sess.reval.NoteChange(ctx, sess.state.Draft.Promo.Code, snap, sess.state.Draft.UserID)
}

// autosave persists the committed sets when the draft already has a row.
// Best-effort: a failed autosave is logged, never surfaced. Callers hold
// sess.mu.
func (s *DraftService) autosave(ctx context.Context, sess *draftSession) {
	if sess.state.Submitting || sess.state.Draft.ID == uuid.Nil {
		return
	}
	draft := sess.state.Draft
	if _, err := s.orders.Autosave(ctx, &draft); err != nil {
		s.logger.Warn("Autosave failed", zap.Error(err), zap.String("order_id", draft.ID.String()))
	}
}

// priceSets refreshes line pricing on every committed set after a save.
// Catalog unavailability is tolerated; Preview recomputes later. Callers
// hold sess.mu.
func (s *DraftService) priceSets(ctx context.Context, sess *draftSession) {
	engine, err := s.engine(ctx)
	if err != nil {
		s.logger.Warn("Skipping set pricing, catalog unavailable", zap.Error(err))
		return
	}
	for _, set := range sess.state.Draft.Sets {
		unit, err := engine.UnitPrice(set.ShapeID)
		if err != nil {
			s.logger.Warn("No price for shape", zap.String("shape_id", set.ShapeID), zap.Error(err))
			continue
		}
		sess.state = wizard.Apply(sess.state, wizard.PriceSet{
			ID:        set.ID,
			UnitPrice: unit,
			Price:     unit.Mul(decimal.NewFromInt(int64(set.Quantity))),
		})
	}
}

func (s *DraftService) engine(ctx context.Context) (*pricing.Engine, error) {
	shapes, err := s.repos.Shape.ListVisible(ctx)
	if err != nil {
		return nil, &errors.ErrServiceUnavailable{Service: "catalog", Err: err}
	}
	methods, err := s.repos.DeliveryMethod.List(ctx)
	if err != nil {
		return nil, &errors.ErrServiceUnavailable{Service: "catalog", Err: err}
	}
	return pricing.NewEngine(shapes, methods), nil
}

func (s *DraftService) runUpload(userID string, orderID uuid.UUID, ref domain.UploadReference, kind domain.UploadKind, data []byte, sess *draftSession) {
	url, err := s.store.UploadImage(userID, orderID, ref.ID, kind, ref.FileName, data)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err != nil {
		uerr := &errors.ErrUpload{FileName: ref.FileName, Reason: err.Error()}
		s.logger.Warn("Upload failed",
			zap.String("order_id", orderID.String()),
			zap.Error(uerr))
		sess.state = wizard.Apply(sess.state, wizard.FailUpload{ID: ref.ID, Reason: uerr.Reason})
		return
	}
	sess.state = wizard.Apply(sess.state, wizard.ResolveUpload{ID: ref.ID, URL: url})
}
