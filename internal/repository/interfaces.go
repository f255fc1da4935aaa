package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shorebytelabs/nailsbyabri/internal/domain"
)

// OrderRepository is the draft-persistence gateway. Upsert is idempotent: a
// record with a set id updates that exact record (no duplicate creation); an
// unset id creates one, and the returned id must be reused for every
// subsequent autosave/submit in the session.
type OrderRepository interface {
	Upsert(ctx context.Context, rec *domain.OrderRecord) (*domain.OrderRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.OrderRecord, error)
	GetByIDAndUser(ctx context.Context, id uuid.UUID, userID string) (*domain.OrderRecord, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.OrderRecord, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]*domain.OrderRecord, error)
	// LatestByUserAndStatus returns the newest of the user's orders in the
	// given status, by last update. Draft resumption reads it on session start.
	LatestByUserAndStatus(ctx context.Context, userID string, status domain.OrderStatus) (*domain.OrderRecord, error)
	// LatestSavedAddress returns the most recent order whose fulfillment kept
	// the save-address flag, used to prefill a fresh draft's address.
	LatestSavedAddress(ctx context.Context, userID string) (*domain.OrderRecord, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error
}

// ShapeRepository defines shape catalog data access
type ShapeRepository interface {
	ListVisible(ctx context.Context) ([]domain.Shape, error)
	List(ctx context.Context) ([]domain.Shape, error)
	GetByID(ctx context.Context, id string) (*domain.Shape, error)
	Upsert(ctx context.Context, shape *domain.Shape) error
}

// DeliveryMethodRepository defines delivery-method table data access
type DeliveryMethodRepository interface {
	List(ctx context.Context) ([]domain.DeliveryMethodConfig, error)
	Upsert(ctx context.Context, cfg *domain.DeliveryMethodConfig) error
}

// SizeProfileRepository defines saved size profile data access
type SizeProfileRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.SizeProfile, error)
	GetByID(ctx context.Context, id string) (*domain.SizeProfile, error)
	Upsert(ctx context.Context, profile *domain.SizeProfile) error
}

// PromoCodeRepository defines promo code data access
type PromoCodeRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.PromoCode, error)
	Create(ctx context.Context, promo *domain.PromoCode) error
	SetActive(ctx context.Context, code string, active bool) error
}

// CapacityRepository defines weekly capacity-window data access. Increment
// must be atomic with respect to concurrent submissions.
type CapacityRepository interface {
	CurrentWindow(ctx context.Context, now time.Time) (*domain.CapacityWindow, error)
	Increment(ctx context.Context, weekStart time.Time) error
	EnsureWindow(ctx context.Context, weekStart time.Time, capacity int) error
	SetCapacity(ctx context.Context, weekStart time.Time, capacity int) error
}

// OrderEventRepository defines order audit event data access
type OrderEventRepository interface {
	Create(ctx context.Context, event *domain.OrderEvent) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error)
}

// IdempotencyKeyRepository defines idempotency key data access
type IdempotencyKeyRepository interface {
	GetByKey(ctx context.Context, key, userID string) (*domain.IdempotencyKey, error)
	Create(ctx context.Context, key *domain.IdempotencyKey) error
}

// Repositories aggregates all repositories
type Repositories struct {
	Order          OrderRepository
	Shape          ShapeRepository
	DeliveryMethod DeliveryMethodRepository
	SizeProfile    SizeProfileRepository
	PromoCode      PromoCodeRepository
	Capacity       CapacityRepository
	OrderEvent     OrderEventRepository
	IdempotencyKey IdempotencyKeyRepository
}
