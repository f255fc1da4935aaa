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

type fakeProfileRepo struct{ profiles []domain.SizeProfile }

func (f *fakeProfileRepo) ListByUser(context.Context, string) ([]domain.SizeProfile, error) {
	return f.profiles, nil
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id string) (*domain.SizeProfile, error) {
	for i := range f.profiles {
		if f.profiles[i].ID == id {
			return &f.profiles[i], nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "size profile", ID: id}
}

func (f *fakeProfileRepo) Upsert(context.Context, *domain.SizeProfile) error { return nil }

type fakeShapeCatalog struct{ shapes []domain.Shape }

func (f *fakeShapeCatalog) ListVisible(context.Context) ([]domain.Shape, error) {
	return f.shapes, nil
}

func (f *fakeShapeCatalog) List(context.Context) ([]domain.Shape, error) { return f.shapes, nil }

func (f *fakeShapeCatalog) GetByID(_ context.Context, id string) (*domain.Shape, error) {
	for i := range f.shapes {
		if f.shapes[i].ID == id {
			return &f.shapes[i], nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "shape", ID: id}
}

func (f *fakeShapeCatalog) Upsert(context.Context, *domain.Shape) error { return nil }

type fakeMethodRepo struct{ methods []domain.DeliveryMethodConfig }

func (f *fakeMethodRepo) List(context.Context) ([]domain.DeliveryMethodConfig, error) {
	return f.methods, nil
}

func (f *fakeMethodRepo) Upsert(context.Context, *domain.DeliveryMethodConfig) error { return nil }

type scriptedValidator struct {
	app *domain.PromoApplication
	err error
}

func (v *scriptedValidator) Validate(_ context.Context, code string, _ domain.OrderSnapshot, _ string) (*domain.PromoApplication, error) {
	if v.err != nil {
		return nil, v.err
	}
	if v.app != nil {
		return v.app, nil
	}
	return &domain.PromoApplication{Code: code, Valid: true, DiscountAmount: decimal.NewFromInt(5)}, nil
}

func newDraftFixture(t *testing.T, validator *scriptedValidator, profiles []domain.SizeProfile) (*DraftService, *fakeOrderRepo) {
	t.Helper()
	orders := newFakeOrderRepo()
	repos := &repository.Repositories{
		Order:          orders,
		Shape:          &fakeShapeCatalog{shapes: []domain.Shape{{ID: "square", Name: "Square", BasePrice: decimal.NewFromInt(35), IsVisible: true}}},
		DeliveryMethod: &fakeMethodRepo{methods: []domain.DeliveryMethodConfig{{ID: domain.DeliveryMethodPickup}}},
		SizeProfile:    &fakeProfileRepo{profiles: profiles},
		OrderEvent:     &fakeEventRepo{},
	}
	admission := capacity.NewAdmissionControl(&stubCapacityRepo{window: domain.CapacityWindow{Remaining: 5}}, zap.NewNop())
	orderSvc := NewOrderService(repos, admission, zap.NewNop())
	return NewDraftService(repos, orderSvc, validator, nil, zap.NewNop()), orders
}

func buildSubmittableDraft(t *testing.T, svc *DraftService, userID string) wizard.State {
	t.Helper()
	ctx := context.Background()
	actions := []wizard.Action{
		wizard.SetShape{ShapeID: "square"},
		wizard.GoNext{},
		wizard.SetDescription{Text: "matte black"},
		wizard.GoNext{},
	}
	for _, f := range domain.Fingers {
		actions = append(actions, wizard.SetFingerSize{Finger: f, Value: "5"})
	}
	actions = append(actions,
		wizard.SaveSet{},
		wizard.GoNext{},
		wizard.SetDeliveryMethod{Method: domain.DeliveryMethodPickup, Speed: domain.DeliverySpeedStandard},
		wizard.GoNext{},
	)
	var st wizard.State
	var err error
	for _, a := range actions {
		st, err = svc.Apply(ctx, userID, a)
		require.NoError(t, err)
	}
	return st
}

func TestStateStartsFreshSessionWithProfiles(t *testing.T) {
	profiles := []domain.SizeProfile{{ID: "p1", Name: "Mine", Values: domain.FingerSizes{domain.FingerThumb: "4"}}}
	svc, _ := newDraftFixture(t, &scriptedValidator{}, profiles)

	st, err := svc.State(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepShape, st.Step)
	require.Len(t, st.Profiles, 1)
	assert.Equal(t, "p1", st.Profiles[0].ID)
}

func TestStateRequiresUser(t *testing.T) {
	svc, _ := newDraftFixture(t, &scriptedValidator{}, nil)

	_, err := svc.State(context.Background(), "")
	var unauthorized *errors.ErrUnauthorized
	require.ErrorAs(t, err, &unauthorized)
}

func TestStateResumesAutosavedDraft(t *testing.T) {
	svc, orders := newDraftFixture(t, &scriptedValidator{}, nil)
	ctx := context.Background()

	draftID := uuid.New()
	orders.records[draftID] = &domain.OrderRecord{
		ID:        draftID,
		UserID:    "user-1",
		Status:    domain.OrderStatusDraft,
		NailSets:  []domain.NailSetDraft{{ID: uuid.New(), ShapeID: "square", Quantity: 1}},
		UpdatedAt: time.Now(),
	}

	st, err := svc.State(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, draftID, st.Draft.ID)
	assert.Equal(t, domain.StepSummary, st.Step)
	require.Len(t, st.Draft.Sets, 1)

	// Later autosaves keep updating the resumed row instead of forking a
	// second one under a fresh id.
	_, err = svc.Apply(ctx, "user-1", wizard.SetNotes{Text: "ring a bit loose"})
	require.NoError(t, err)
	assert.Len(t, orders.records, 1)
	assert.Equal(t, "ring a bit loose", orders.records[draftID].Delivery.Notes)
}

func TestStatePrefillsSavedAddress(t *testing.T) {
	svc, orders := newDraftFixture(t, &scriptedValidator{}, nil)

	prevID := uuid.New()
	orders.records[prevID] = &domain.OrderRecord{
		ID:     prevID,
		UserID: "user-1",
		Status: domain.OrderStatusSubmitted,
		Delivery: domain.DeliveryDetails{
			Method:      domain.DeliveryMethodShipping,
			Speed:       domain.DeliverySpeedStandard,
			Addr:        &domain.Address{Name: "Abri", Line1: "1 Main St", City: "Austin", State: "TX", PostalCode: "78701"},
			SaveAddress: true,
		},
		UpdatedAt: time.Now(),
	}

	st, err := svc.State(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepShape, st.Step)
	assert.Equal(t, uuid.Nil, st.Draft.ID)
	require.NotNil(t, st.Draft.Delivery.Addr)
	assert.Equal(t, "Austin", st.Draft.Delivery.Addr.City)
	assert.True(t, st.Draft.SaveAddress)
}

func TestSaveSetPricesCommittedSets(t *testing.T) {
	svc, _ := newDraftFixture(t, &scriptedValidator{}, nil)
	st := buildSubmittableDraft(t, svc, "user-1")

	require.Len(t, st.Draft.Sets, 1)
	set := st.Draft.Sets[0]
	assert.True(t, set.UnitPrice.Equal(decimal.NewFromInt(35)), "got %s", set.UnitPrice)
	assert.True(t, set.Price.Equal(decimal.NewFromInt(35)), "got %s", set.Price)
}

func TestSelectProfileUnknown(t *testing.T) {
	svc, _ := newDraftFixture(t, &scriptedValidator{}, nil)

	_, err := svc.SelectProfile(context.Background(), "user-1", "ghost")
	var notFound *errors.ErrNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestApplyPromoAttachesApplication(t *testing.T) {
	svc, _ := newDraftFixture(t, &scriptedValidator{}, nil)
	buildSubmittableDraft(t, svc, "user-1")

	st, err := svc.ApplyPromo(context.Background(), "user-1", "WELCOME5")
	require.NoError(t, err)
	require.NotNil(t, st.Draft.Promo)
	assert.Equal(t, "WELCOME5", st.Draft.PromoCode)
}

func TestApplyPromoSurfacesRejection(t *testing.T) {
	svc, _ := newDraftFixture(t, &scriptedValidator{err: &errors.ErrInvalidPromo{Code: "NOPE", Reason: "unknown code"}}, nil)
	buildSubmittableDraft(t, svc, "user-1")

	_, err := svc.ApplyPromo(context.Background(), "user-1", "NOPE")
	var invalid *errors.ErrInvalidPromo
	require.ErrorAs(t, err, &invalid)
}

func TestClearPromo(t *testing.T) {
	svc, _ := newDraftFixture(t, &scriptedValidator{}, nil)
	buildSubmittableDraft(t, svc, "user-1")
	_, err := svc.ApplyPromo(context.Background(), "user-1", "WELCOME5")
	require.NoError(t, err)

	st, err := svc.ClearPromo(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, st.Draft.Promo)
	assert.Empty(t, st.Draft.PromoCode)
}

func TestSnapshotChangeRevalidatesPromo(t *testing.T) {
	validator := &scriptedValidator{}
	svc, _ := newDraftFixture(t, validator, nil)
	buildSubmittableDraft(t, svc, "user-1")
	_, err := svc.ApplyPromo(context.Background(), "user-1", "WELCOME5")
	require.NoError(t, err)

	// The promo now fails validation; a promo-relevant change must
	// eventually clear it and leave a notice.
	validator.err = &errors.ErrInvalidPromo{Code: "WELCOME5", Reason: "expired"}
	_, err = svc.Apply(context.Background(), "user-1", wizard.SetDeliveryMethod{
		Method: domain.DeliveryMethodPickup, Speed: domain.DeliverySpeedRush,
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		st, err := svc.State(context.Background(), "user-1")
		if err != nil {
			return false
		}
		return st.Draft.Promo == nil && len(st.Notices) > 0
	}, 3*time.Second, 10*time.Millisecond)
}

func TestPreviewBreakdown(t *testing.T) {
	svc, _ := newDraftFixture(t, &scriptedValidator{}, nil)
	buildSubmittableDraft(t, svc, "user-1")

	bd, err := svc.Preview(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, bd.Total.Equal(decimal.NewFromInt(35)), "got %s", bd.Total)
}

func TestUploadWithoutStorage(t *testing.T) {
	svc, _ := newDraftFixture(t, &scriptedValidator{}, nil)

	_, err := svc.Upload(context.Background(), "user-1", domain.UploadKindDesign, "a.jpg", []byte("img"))
	var unavailable *errors.ErrServiceUnavailable
	require.ErrorAs(t, err, &unavailable)
}

func TestSubmitRetiresSession(t *testing.T) {
	svc, orders := newDraftFixture(t, &scriptedValidator{}, nil)
	buildSubmittableDraft(t, svc, "user-1")

	res, err := svc.Submit(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusSubmitted, res.Order.Status)
	assert.Len(t, orders.records, 1)

	// The next state is a brand-new draft.
	st, err := svc.State(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StepShape, st.Step)
	assert.Empty(t, st.Draft.Sets)
}

func TestSubmitWithoutSets(t *testing.T) {
	svc, _ := newDraftFixture(t, &scriptedValidator{}, nil)

	_, err := svc.Submit(context.Background(), "user-1")
	var validation *errors.ErrValidation
	require.ErrorAs(t, err, &validation)
}
