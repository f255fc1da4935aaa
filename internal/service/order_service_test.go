package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/capacity"
	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/internal/repository"
	"github.com/shorebytelabs/nailsbyabri/internal/wizard"
	"github.com/shorebytelabs/nailsbyabri/pkg/errors"
)

type fakeOrderRepo struct {
	records map[uuid.UUID]*domain.OrderRecord
	upserts int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{records: map[uuid.UUID]*domain.OrderRecord{}}
}

func (f *fakeOrderRepo) Upsert(_ context.Context, rec *domain.OrderRecord) (*domain.OrderRecord, error) {
	f.upserts++
	saved := *rec
	if saved.ID == uuid.Nil {
		saved.ID = uuid.New()
	}
	saved.UpdatedAt = time.Now()
	f.records[saved.ID] = &saved
	return &saved, nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.OrderRecord, error) {
	if rec, ok := f.records[id]; ok {
		return rec, nil
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
}

func (f *fakeOrderRepo) GetByIDAndUser(_ context.Context, id uuid.UUID, userID string) (*domain.OrderRecord, error) {
	rec, ok := f.records[id]
	if !ok || rec.UserID != userID {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	return rec, nil
}

func (f *fakeOrderRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]*domain.OrderRecord, error) {
	var out []*domain.OrderRecord
	for _, rec := range f.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) ListByStatus(_ context.Context, status domain.OrderStatus, limit, offset int) ([]*domain.OrderRecord, error) {
	return nil, nil
}

func (f *fakeOrderRepo) LatestByUserAndStatus(_ context.Context, userID string, status domain.OrderStatus) (*domain.OrderRecord, error) {
	var latest *domain.OrderRecord
	for _, rec := range f.records {
		if rec.UserID != userID || rec.Status != status {
			continue
		}
		if latest == nil || rec.UpdatedAt.After(latest.UpdatedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, &errors.ErrNotFound{Resource: "order", ID: userID}
	}
	return latest, nil
}

func (f *fakeOrderRepo) LatestSavedAddress(_ context.Context, userID string) (*domain.OrderRecord, error) {
	var latest *domain.OrderRecord
	for _, rec := range f.records {
		if rec.UserID != userID || !rec.Delivery.SaveAddress {
			continue
		}
		if latest == nil || rec.UpdatedAt.After(latest.UpdatedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, &errors.ErrNotFound{Resource: "order", ID: userID}
	}
	return latest, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) error {
	rec, ok := f.records[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	rec.Status = status
	return nil
}

type fakeEventRepo struct{ events []*domain.OrderEvent }

func (f *fakeEventRepo) Create(_ context.Context, event *domain.OrderEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventRepo) GetByOrderID(context.Context, uuid.UUID) ([]*domain.OrderEvent, error) {
	return nil, nil
}

type stubCapacityRepo struct{ window domain.CapacityWindow }

func (s *stubCapacityRepo) CurrentWindow(context.Context, time.Time) (*domain.CapacityWindow, error) {
	w := s.window
	return &w, nil
}

func (s *stubCapacityRepo) Increment(context.Context, time.Time) error { return nil }

func (s *stubCapacityRepo) EnsureWindow(context.Context, time.Time, int) error { return nil }

func (s *stubCapacityRepo) SetCapacity(context.Context, time.Time, int) error { return nil }

func newOrderFixture(remaining int) (*OrderService, *fakeOrderRepo, *fakeEventRepo) {
	orders := newFakeOrderRepo()
	events := &fakeEventRepo{}
	repos := &repository.Repositories{Order: orders, OrderEvent: events}
	admission := capacity.NewAdmissionControl(&stubCapacityRepo{
		window: domain.CapacityWindow{Remaining: remaining, IsFull: remaining <= 0},
	}, zap.NewNop())
	return NewOrderService(repos, admission, zap.NewNop()), orders, events
}

func submittableState(userID string) wizard.State {
	s := wizard.NewState(userID, nil)
	s = wizard.Apply(s, wizard.SetShape{ShapeID: "square"})
	s = wizard.Apply(s, wizard.GoNext{})
	s = wizard.Apply(s, wizard.SetDescription{Text: "matte black"})
	s = wizard.Apply(s, wizard.GoNext{})
	for _, f := range domain.Fingers {
		s = wizard.Apply(s, wizard.SetFingerSize{Finger: f, Value: "5"})
	}
	s = wizard.Apply(s, wizard.SaveSet{})
	s = wizard.Apply(s, wizard.GoNext{})
	s = wizard.Apply(s, wizard.SetDeliveryMethod{Method: domain.DeliveryMethodPickup, Speed: domain.DeliverySpeedStandard})
	s = wizard.Apply(s, wizard.GoNext{})
	return s
}

func TestAutosaveAssignsID(t *testing.T) {
	svc, orders, _ := newOrderFixture(5)
	st := submittableState("user-1")

	id, err := svc.Autosave(context.Background(), &st.Draft)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	rec := orders.records[id]
	require.NotNil(t, rec)
	assert.Equal(t, domain.OrderStatusDraft, rec.Status)
	assert.Len(t, rec.NailSets, 1)
}

func TestAutosaveRequiresUser(t *testing.T) {
	svc, _, _ := newOrderFixture(5)
	draft := domain.OrderDraft{}

	_, err := svc.Autosave(context.Background(), &draft)
	var unauthorized *errors.ErrUnauthorized
	require.ErrorAs(t, err, &unauthorized)
}

func TestEnsureOrderReusesExistingID(t *testing.T) {
	svc, orders, _ := newOrderFixture(5)
	st := submittableState("user-1")

	first, err := svc.EnsureOrder(context.Background(), &st.Draft)
	require.NoError(t, err)
	st.Draft.ID = first

	second, err := svc.EnsureOrder(context.Background(), &st.Draft)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, orders.upserts)
}

func TestSubmitAdmitted(t *testing.T) {
	svc, _, events := newOrderFixture(5)
	st := submittableState("user-1")

	res, err := svc.Submit(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusSubmitted, res.Order.Status)
	require.NotNil(t, res.Window)
	assert.Equal(t, 4, res.Window.Remaining)
	require.Len(t, events.events, 1)
	assert.Equal(t, "order_submitted", events.events[0].EventType)
}

func TestSubmitFullWeekParksOrder(t *testing.T) {
	svc, _, _ := newOrderFixture(0)
	st := submittableState("user-1")

	res, err := svc.Submit(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAwaitingSubmission, res.Order.Status)
}

func TestSubmitStripsUnresolvedUploads(t *testing.T) {
	svc, _, _ := newOrderFixture(5)
	st := submittableState("user-1")
	st.Draft.Sets[0].DesignUploads = []domain.UploadReference{
		{ID: uuid.New(), FileName: "ok.jpg", State: domain.UploadStateUploaded, RemoteURL: "https://cdn/ok.jpg"},
		{ID: uuid.New(), FileName: "stuck.jpg", State: domain.UploadStatePending, PendingLocalURI: "file:///stuck.jpg"},
		{ID: uuid.New(), FileName: "broken.jpg", State: domain.UploadStateFailed, ErrorReason: "network"},
	}

	res, err := svc.Submit(context.Background(), st)
	require.NoError(t, err)

	require.Len(t, res.Order.NailSets[0].DesignUploads, 1)
	assert.Equal(t, "ok.jpg", res.Order.NailSets[0].DesignUploads[0].FileName)
	assert.Contains(t, res.Notices, "stuck.jpg had not finished uploading and was not included.")
	assert.Contains(t, res.Notices, "broken.jpg failed to upload and was not included.")
}

func TestSubmitResolvesSavedProfileIntoValues(t *testing.T) {
	svc, _, _ := newOrderFixture(5)
	profile := domain.SizeProfile{ID: "p1", Name: "Mine", Values: domain.FingerSizes{
		domain.FingerThumb:  "3",
		domain.FingerIndex:  "5",
		domain.FingerMiddle: "4",
		domain.FingerRing:   "5",
		domain.FingerPinky:  "7",
	}}

	st := wizard.NewState("user-1", []domain.SizeProfile{profile})
	st = wizard.Apply(st, wizard.SetShape{ShapeID: "square"})
	st = wizard.Apply(st, wizard.GoNext{})
	st = wizard.Apply(st, wizard.SetDescription{Text: "minimal"})
	st = wizard.Apply(st, wizard.GoNext{})
	st = wizard.Apply(st, wizard.SelectProfile{Profile: profile})
	st = wizard.Apply(st, wizard.SaveSet{})
	st = wizard.Apply(st, wizard.GoNext{})
	st = wizard.Apply(st, wizard.SetDeliveryMethod{Method: domain.DeliveryMethodPickup, Speed: domain.DeliverySpeedStandard})
	st = wizard.Apply(st, wizard.GoNext{})

	res, err := svc.Submit(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, profile.Values, res.Order.NailSets[0].Sizes)
}

func TestSubmitOmitsAddressForPickup(t *testing.T) {
	svc, _, _ := newOrderFixture(5)
	st := submittableState("user-1")
	st.Draft.Delivery.Addr = &domain.Address{Name: "A", Line1: "1 Main", City: "Austin", State: "TX", PostalCode: "78701"}

	res, err := svc.Submit(context.Background(), st)
	require.NoError(t, err)
	assert.Nil(t, res.Order.Delivery.Addr)
}

func TestSubmitPersistsSaveAddressFlag(t *testing.T) {
	svc, _, _ := newOrderFixture(5)
	st := submittableState("user-1")
	st.Draft.Delivery.Method = domain.DeliveryMethodShipping
	st.Draft.Delivery.Addr = &domain.Address{Name: "A", Line1: "1 Main", City: "Austin", State: "TX", PostalCode: "78701"}
	st = wizard.Apply(st, wizard.SetSaveAddress{On: true})

	res, err := svc.Submit(context.Background(), st)
	require.NoError(t, err)
	require.NotNil(t, res.Order.Delivery.Addr)
	assert.True(t, res.Order.Delivery.SaveAddress)
}

func TestSubmitDropsSaveAddressForPickup(t *testing.T) {
	svc, _, _ := newOrderFixture(5)
	st := submittableState("user-1")
	st = wizard.Apply(st, wizard.SetSaveAddress{On: true})

	res, err := svc.Submit(context.Background(), st)
	require.NoError(t, err)
	assert.Nil(t, res.Order.Delivery.Addr)
	assert.False(t, res.Order.Delivery.SaveAddress)
}

func TestSubmitOmitsInvalidPromoCode(t *testing.T) {
	svc, _, _ := newOrderFixture(5)
	st := submittableState("user-1")
	st.Draft.PromoCode = "STALE"
	st.Draft.Promo = &domain.PromoApplication{Code: "STALE", Valid: false}

	res, err := svc.Submit(context.Background(), st)
	require.NoError(t, err)
	assert.Empty(t, res.Order.PromoCode)
}

func TestSubmitKeepsValidPromoCode(t *testing.T) {
	svc, _, _ := newOrderFixture(5)
	st := submittableState("user-1")
	st.Draft.Promo = &domain.PromoApplication{Code: "WELCOME5", Valid: true, DiscountAmount: decimal.NewFromInt(5)}

	res, err := svc.Submit(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, "WELCOME5", res.Order.PromoCode)
}

func TestSubmitRejectedWhileSubmitting(t *testing.T) {
	svc, orders, _ := newOrderFixture(5)
	st := submittableState("user-1")
	st = wizard.Apply(st, wizard.SubmissionStarted{})

	_, err := svc.Submit(context.Background(), st)
	var conflict *errors.ErrConflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 0, orders.upserts)
}

func TestResubmitAdmitsParkedOrder(t *testing.T) {
	svc, orders, events := newOrderFixture(5)
	rec := &domain.OrderRecord{UserID: "user-1", Status: domain.OrderStatusAwaitingSubmission}
	saved, err := orders.Upsert(context.Background(), rec)
	require.NoError(t, err)

	res, err := svc.Resubmit(context.Background(), saved.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusSubmitted, res.Order.Status)
	assert.Equal(t, domain.OrderStatusSubmitted, orders.records[saved.ID].Status)
	require.Len(t, events.events, 1)
	assert.Equal(t, "order_resubmitted", events.events[0].EventType)
}

func TestResubmitStillFullKeepsAwaiting(t *testing.T) {
	svc, orders, _ := newOrderFixture(0)
	rec := &domain.OrderRecord{UserID: "user-1", Status: domain.OrderStatusAwaitingSubmission}
	saved, err := orders.Upsert(context.Background(), rec)
	require.NoError(t, err)

	res, err := svc.Resubmit(context.Background(), saved.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAwaitingSubmission, res.Order.Status)
}

func TestResubmitRejectsWrongStatus(t *testing.T) {
	svc, orders, _ := newOrderFixture(5)
	rec := &domain.OrderRecord{UserID: "user-1", Status: domain.OrderStatusSubmitted}
	saved, err := orders.Upsert(context.Background(), rec)
	require.NoError(t, err)

	_, err = svc.Resubmit(context.Background(), saved.ID, "user-1")
	var transition *errors.ErrInvalidStateTransition
	require.ErrorAs(t, err, &transition)
}
