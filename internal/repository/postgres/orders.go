package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert implements the draft-persistence contract: a record with an id
// updates that exact row; one without is created with a fresh id the caller
// must capture and reuse. Safe to call for autosave and final submission.
func (r *orderRepository) Upsert(ctx context.Context, rec *domain.OrderRecord) (*domain.OrderRecord, error) {
	query := `
		INSERT INTO orders (
			id, user_id, nail_sets, customer_sizes, fulfillment,
			promo_code, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			nail_sets      = EXCLUDED.nail_sets,
			customer_sizes = EXCLUDED.customer_sizes,
			fulfillment    = EXCLUDED.fulfillment,
			promo_code     = EXCLUDED.promo_code,
			status         = EXCLUDED.status,
			updated_at     = EXCLUDED.updated_at
	`

	now := time.Now()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
		rec.CreatedAt = now
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = domain.OrderStatusDraft
	}

	nailSetsJSON, err := json.Marshal(rec.NailSets)
	if err != nil {
		return nil, err
	}
	customerSizesJSON, err := json.Marshal(rec.CustomerSizes)
	if err != nil {
		return nil, err
	}
	fulfillmentJSON, err := json.Marshal(rec.Delivery)
	if err != nil {
		return nil, err
	}

	_, err = r.db.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		nailSetsJSON,
		customerSizesJSON,
		fulfillmentJSON,
		rec.PromoCode,
		rec.Status,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert order", zap.Error(err))
		return nil, &errors.ErrPersistence{Op: "order upsert", Err: err}
	}

	return rec, nil
}

const orderColumns = `
	id, user_id, nail_sets, customer_sizes, fulfillment,
	promo_code, status, created_at, updated_at
`

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.OrderRecord, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id.String())
}

func (r *orderRepository) GetByIDAndUser(ctx context.Context, id uuid.UUID, userID string) (*domain.OrderRecord, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id, userID), id.String())
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.OrderRecord, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, userID, limit, offset)
}

func (r *orderRepository) ListByStatus(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]*domain.OrderRecord, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(ctx, query, status, limit, offset)
}

func (r *orderRepository) LatestByUserAndStatus(ctx context.Context, userID string, status domain.OrderStatus) (*domain.OrderRecord, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 AND status = $2
		ORDER BY updated_at DESC LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, status), userID)
}

func (r *orderRepository) LatestSavedAddress(ctx context.Context, userID string) (*domain.OrderRecord, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 AND (fulfillment ->> 'save_address')::boolean
		ORDER BY updated_at DESC LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID), userID)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) error {
	query := `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		r.logger.Error("Failed to update order status", zap.Error(err))
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *orderRepository) scanOne(row rowScanner, id string) (*domain.OrderRecord, error) {
	rec, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id}
	}
	if err != nil {
		r.logger.Error("Failed to get order", zap.Error(err))
		return nil, err
	}
	return rec, nil
}

func (r *orderRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.OrderRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.OrderRecord
	for rows.Next() {
		rec, err := scanOrder(rows)
		if err != nil {
			r.logger.Error("Failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, rec)
	}
	return orders, rows.Err()
}

func scanOrder(row rowScanner) (*domain.OrderRecord, error) {
	var rec domain.OrderRecord
	var nailSetsJSON, customerSizesJSON, fulfillmentJSON []byte
	var promoCode sql.NullString

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&nailSetsJSON,
		&customerSizesJSON,
		&fulfillmentJSON,
		&promoCode,
		&rec.Status,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(nailSetsJSON) > 0 {
		if err := json.Unmarshal(nailSetsJSON, &rec.NailSets); err != nil {
			return nil, err
		}
	}
	if len(customerSizesJSON) > 0 && string(customerSizesJSON) != "null" {
		if err := json.Unmarshal(customerSizesJSON, &rec.CustomerSizes); err != nil {
			return nil, err
		}
	}
	if len(fulfillmentJSON) > 0 {
		if err := json.Unmarshal(fulfillmentJSON, &rec.Delivery); err != nil {
			return nil, err
		}
	}
	if promoCode.Valid {
		rec.PromoCode = promoCode.String
	}

	// Single normalization boundary for legacy persisted shapes.
	domain.NormalizeRecord(&rec)
	return &rec, nil
}
