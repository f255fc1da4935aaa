package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/capacity"
	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/internal/repository"
	"github.com/shorebytelabs/nailsbyabri/internal/sizing"
	"github.com/shorebytelabs/nailsbyabri/internal/wizard"
	"github.com/shorebytelabs/nailsbyabri/pkg/errors"
)

// SubmitResult is what the customer sees after pressing submit: the stored
// order, the capacity window the decision was made against (nil when the
// read failed and we failed open), and any notices about uploads that were
// dropped from the payload.
type SubmitResult struct {
	Order   *domain.OrderRecord
	Window  *domain.CapacityWindow
	Notices []string
}

type OrderService struct {
	repos     *repository.Repositories
	admission *capacity.AdmissionControl
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repos *repository.Repositories, admission *capacity.AdmissionControl, logger *zap.Logger) *OrderService {
	return &OrderService{
		repos:     repos,
		admission: admission,
		logger:    logger,
	}
}

// EnsureOrder creates the draft row eagerly the first time an upload needs an
// order id to attach to. Sets may be empty at this point; the row is upserted
// again on every autosave and at submission.
func (s *OrderService) EnsureOrder(ctx context.Context, draft *domain.OrderDraft) (uuid.UUID, error) {
	if draft.ID != uuid.Nil {
		return draft.ID, nil
	}
	return s.Autosave(ctx, draft)
}

// Autosave persists the draft as-is under the Draft status. Unsaved work in
// the step currently being edited is not included; only committed sets are.
func (s *OrderService) Autosave(ctx context.Context, draft *domain.OrderDraft) (uuid.UUID, error) {
	if draft.UserID == "" {
		return uuid.Nil, &errors.ErrUnauthorized{}
	}
	rec := s.buildRecord(draft, nil)
	rec.Status = domain.OrderStatusDraft
	saved, err := s.repos.Order.Upsert(ctx, rec)
	if err != nil {
		s.logger.Error("Failed to autosave draft", zap.Error(err), zap.String("user_id", draft.UserID))
		return uuid.Nil, err
	}
	return saved.ID, nil
}

// Submit finalizes the draft: unresolved uploads are stripped from the
// payload (with a notice per dropped file), saved sizing profiles are
// resolved into concrete finger values, the capacity gate decides between
// Submitted and Awaiting Submission, and the order is upserted one last time.
func (s *OrderService) Submit(ctx context.Context, st wizard.State) (*SubmitResult, error) {
	if err := wizard.CanSubmit(st); err != nil {
		return nil, err
	}
	draft := st.Draft

	resolver := sizing.NewResolver(st.Profiles)
	notices := make([]string, 0)
	rec := s.buildRecord(&draft, func(set *domain.NailSetDraft) {
		// A saved profile is a reference; the stored payload carries the
		// values it resolved to at submission time.
		if set.SelectedSizingOption == domain.SizingOptionSaved {
			set.Sizes = resolver.Resolve(set, draft.CustomerSizes)
		}
		set.DesignUploads = stripUnresolved(set.DesignUploads, &notices)
		set.SizingUploads = stripUnresolved(set.SizingUploads, &notices)
	})

	status, window := s.admission.Decide(ctx)
	rec.Status = status

	rec, err := s.repos.Order.Upsert(ctx, rec)
	if err != nil {
		s.logger.Error("Failed to persist submitted order", zap.Error(err), zap.String("user_id", draft.UserID))
		return nil, err
	}

	s.recordEvent(ctx, rec.ID, "order_submitted", map[string]interface{}{
		"status":     string(status),
		"set_count":  len(rec.NailSets),
		"promo_code": rec.PromoCode,
	})
	s.logger.Info("Order submitted",
		zap.String("order_id", rec.ID.String()),
		zap.String("user_id", rec.UserID),
		zap.String("status", string(status)))

	return &SubmitResult{Order: rec, Window: window, Notices: notices}, nil
}

// Resubmit retries the capacity gate for an order parked in Awaiting
// Submission, typically after the week rolls over.
func (s *OrderService) Resubmit(ctx context.Context, orderID uuid.UUID, userID string) (*SubmitResult, error) {
	rec, err := s.repos.Order.GetByIDAndUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if rec.Status != domain.OrderStatusAwaitingSubmission {
		return nil, &errors.ErrInvalidStateTransition{From: rec.Status, To: domain.OrderStatusSubmitted}
	}

	status, window := s.admission.Decide(ctx)
	if status == domain.OrderStatusAwaitingSubmission {
		// Still full; nothing changes.
		return &SubmitResult{Order: rec, Window: window}, nil
	}
	if err := s.repos.Order.UpdateStatus(ctx, rec.ID, status); err != nil {
		return nil, err
	}
	rec.Status = status
	s.recordEvent(ctx, rec.ID, "order_resubmitted", map[string]interface{}{
		"status": string(status),
	})
	return &SubmitResult{Order: rec, Window: window}, nil
}

// GetOrder returns one of the caller's orders.
func (s *OrderService) GetOrder(ctx context.Context, orderID uuid.UUID, userID string) (*domain.OrderRecord, error) {
	return s.repos.Order.GetByIDAndUser(ctx, orderID, userID)
}

// ListOrders returns a page of the caller's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string, limit, offset int) ([]*domain.OrderRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repos.Order.ListByUser(ctx, userID, limit, offset)
}

func (s *OrderService) buildRecord(draft *domain.OrderDraft, mutate func(*domain.NailSetDraft)) *domain.OrderRecord {
	sets := make([]domain.NailSetDraft, 0, len(draft.Sets))
	for _, set := range draft.Sets {
		c := set.Clone()
		if mutate != nil {
			mutate(&c)
		}
		sets = append(sets, c)
	}

	promoCode := ""
	if draft.Promo != nil && draft.Promo.Valid {
		promoCode = draft.Promo.Code
	}

	delivery := draft.Delivery
	delivery.SaveAddress = draft.SaveAddress
	if !delivery.Method.RequiresAddress() {
		delivery.Addr = nil
		delivery.SaveAddress = false
	}

	return &domain.OrderRecord{
		ID:            draft.ID,
		UserID:        draft.UserID,
		NailSets:      sets,
		CustomerSizes: draft.CustomerSizes,
		Delivery:      delivery,
		PromoCode:     promoCode,
	}
}

func (s *OrderService) recordEvent(ctx context.Context, orderID uuid.UUID, eventType string, data map[string]interface{}) {
	event := &domain.OrderEvent{
		OrderID:   orderID,
		EventType: eventType,
		EventData: data,
	}
	if err := s.repos.OrderEvent.Create(ctx, event); err != nil {
		// Events are an audit trail; losing one never fails the operation.
		s.logger.Warn("Failed to record order event", zap.Error(err), zap.String("event_type", eventType))
	}
}

func stripUnresolved(uploads []domain.UploadReference, notices *[]string) []domain.UploadReference {
	kept := uploads[:0:0]
	for _, u := range uploads {
		if u.Resolved() {
			kept = append(kept, u)
			continue
		}
		switch u.State {
		case domain.UploadStateFailed:
			*notices = append(*notices, fmt.Sprintf("%s failed to upload and was not included.", u.FileName))
		default:
			*notices = append(*notices, fmt.Sprintf("%s had not finished uploading and was not included.", u.FileName))
		}
	}
	return kept
}
