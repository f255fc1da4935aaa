package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/pkg/errors"
)

type shapeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewShapeRepository creates a new shape catalog repository
func NewShapeRepository(db *sql.DB, logger *zap.Logger) *shapeRepository {
	return &shapeRepository{
		db:     db,
		logger: logger,
	}
}

const shapeColumns = `id, name, base_price, price_adjustment, is_visible, created_at, updated_at`

func (r *shapeRepository) ListVisible(ctx context.Context) ([]domain.Shape, error) {
	query := `SELECT ` + shapeColumns + ` FROM shapes WHERE is_visible = true ORDER BY name`
	return r.list(ctx, query)
}

func (r *shapeRepository) List(ctx context.Context) ([]domain.Shape, error) {
	query := `SELECT ` + shapeColumns + ` FROM shapes ORDER BY name`
	return r.list(ctx, query)
}

func (r *shapeRepository) list(ctx context.Context, query string) ([]domain.Shape, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list shapes", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var shapes []domain.Shape
	for rows.Next() {
		var s domain.Shape
		if err := rows.Scan(&s.ID, &s.Name, &s.BasePrice, &s.PriceAdjustment, &s.IsVisible, &s.CreatedAt, &s.UpdatedAt); err != nil {
			r.logger.Error("Failed to scan shape row", zap.Error(err))
			return nil, err
		}
		shapes = append(shapes, s)
	}
	return shapes, rows.Err()
}

func (r *shapeRepository) GetByID(ctx context.Context, id string) (*domain.Shape, error) {
	query := `SELECT ` + shapeColumns + ` FROM shapes WHERE id = $1`

	var s domain.Shape
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.BasePrice, &s.PriceAdjustment, &s.IsVisible, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "shape", ID: id}
	}
	if err != nil {
		r.logger.Error("Failed to get shape", zap.Error(err))
		return nil, err
	}
	return &s, nil
}

func (r *shapeRepository) Upsert(ctx context.Context, shape *domain.Shape) error {
	query := `
		INSERT INTO shapes (id, name, base_price, price_adjustment, is_visible, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name             = EXCLUDED.name,
			base_price       = EXCLUDED.base_price,
			price_adjustment = EXCLUDED.price_adjustment,
			is_visible       = EXCLUDED.is_visible,
			updated_at       = EXCLUDED.updated_at
	`

	now := time.Now()
	if shape.CreatedAt.IsZero() {
		shape.CreatedAt = now
	}
	shape.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		shape.ID, shape.Name, shape.BasePrice, shape.PriceAdjustment, shape.IsVisible,
		shape.CreatedAt, shape.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert shape", zap.Error(err))
		return err
	}
	return nil
}
