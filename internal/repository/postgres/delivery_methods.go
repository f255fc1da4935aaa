package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/domain"
)

type deliveryMethodRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDeliveryMethodRepository creates a new delivery-method table repository
func NewDeliveryMethodRepository(db *sql.DB, logger *zap.Logger) *deliveryMethodRepository {
	return &deliveryMethodRepository{
		db:     db,
		logger: logger,
	}
}

func (r *deliveryMethodRepository) List(ctx context.Context) ([]domain.DeliveryMethodConfig, error) {
	query := `
		SELECT id, label, default_speed, speed_options
		FROM delivery_methods
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list delivery methods", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var methods []domain.DeliveryMethodConfig
	for rows.Next() {
		var m domain.DeliveryMethodConfig
		var speedOptionsJSON []byte
		if err := rows.Scan(&m.ID, &m.Label, &m.DefaultSpeed, &speedOptionsJSON); err != nil {
			r.logger.Error("Failed to scan delivery method row", zap.Error(err))
			return nil, err
		}
		if len(speedOptionsJSON) > 0 {
			if err := json.Unmarshal(speedOptionsJSON, &m.SpeedOptions); err != nil {
				return nil, err
			}
		}
		methods = append(methods, m)
	}
	return methods, rows.Err()
}

func (r *deliveryMethodRepository) Upsert(ctx context.Context, cfg *domain.DeliveryMethodConfig) error {
	query := `
		INSERT INTO delivery_methods (id, label, default_speed, speed_options, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			label         = EXCLUDED.label,
			default_speed = EXCLUDED.default_speed,
			speed_options = EXCLUDED.speed_options,
			updated_at    = EXCLUDED.updated_at
	`

	speedOptionsJSON, err := json.Marshal(cfg.SpeedOptions)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query, cfg.ID, cfg.Label, cfg.DefaultSpeed, speedOptionsJSON, time.Now())
	if err != nil {
		r.logger.Error("Failed to upsert delivery method", zap.Error(err))
		return err
	}
	return nil
}
