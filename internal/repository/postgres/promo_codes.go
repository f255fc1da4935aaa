package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/pkg/errors"
)

type promoCodeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPromoCodeRepository creates a new promo code repository
func NewPromoCodeRepository(db *sql.DB, logger *zap.Logger) *promoCodeRepository {
	return &promoCodeRepository{
		db:     db,
		logger: logger,
	}
}

func (r *promoCodeRepository) GetByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	query := `
		SELECT id, code, kind, amount, description, min_subtotal, is_active,
		       starts_at, expires_at, created_at, updated_at
		FROM promo_codes
		WHERE code = $1
	`

	code = strings.ToUpper(strings.TrimSpace(code))

	var p domain.PromoCode
	var startsAt, expiresAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&p.ID, &p.Code, &p.Kind, &p.Amount, &p.Description, &p.MinSubtotal, &p.IsActive,
		&startsAt, &expiresAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "promo code", ID: code}
	}
	if err != nil {
		r.logger.Error("Failed to get promo code", zap.Error(err))
		return nil, err
	}

	if startsAt.Valid {
		p.StartsAt = &startsAt.Time
	}
	if expiresAt.Valid {
		p.ExpiresAt = &expiresAt.Time
	}
	return &p, nil
}

func (r *promoCodeRepository) Create(ctx context.Context, promo *domain.PromoCode) error {
	query := `
		INSERT INTO promo_codes (id, code, kind, amount, description, min_subtotal,
		                         is_active, starts_at, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	now := time.Now()
	if promo.ID == uuid.Nil {
		promo.ID = uuid.New()
	}
	if promo.CreatedAt.IsZero() {
		promo.CreatedAt = now
	}
	promo.UpdatedAt = now
	promo.Code = strings.ToUpper(strings.TrimSpace(promo.Code))

	_, err := r.db.ExecContext(ctx, query,
		promo.ID, promo.Code, promo.Kind, promo.Amount, promo.Description, promo.MinSubtotal,
		promo.IsActive, promo.StartsAt, promo.ExpiresAt, promo.CreatedAt, promo.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create promo code", zap.Error(err))
		return err
	}
	return nil
}

func (r *promoCodeRepository) SetActive(ctx context.Context, code string, active bool) error {
	query := `UPDATE promo_codes SET is_active = $2, updated_at = $3 WHERE code = $1`

	result, err := r.db.ExecContext(ctx, query, strings.ToUpper(strings.TrimSpace(code)), active, time.Now())
	if err != nil {
		r.logger.Error("Failed to update promo code", zap.Error(err))
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &errors.ErrNotFound{Resource: "promo code", ID: code}
	}
	return nil
}
