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

type sizeProfileRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSizeProfileRepository creates a new saved size profile repository
func NewSizeProfileRepository(db *sql.DB, logger *zap.Logger) *sizeProfileRepository {
	return &sizeProfileRepository{
		db:     db,
		logger: logger,
	}
}

func (r *sizeProfileRepository) ListByUser(ctx context.Context, userID string) ([]domain.SizeProfile, error) {
	query := `
		SELECT id, user_id, name, finger_values, created_at, updated_at
		FROM size_profiles
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list size profiles", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.SizeProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			r.logger.Error("Failed to scan size profile row", zap.Error(err))
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (r *sizeProfileRepository) GetByID(ctx context.Context, id string) (*domain.SizeProfile, error) {
	query := `
		SELECT id, user_id, name, finger_values, created_at, updated_at
		FROM size_profiles
		WHERE id = $1
	`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "size profile", ID: id}
	}
	if err != nil {
		r.logger.Error("Failed to get size profile", zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *sizeProfileRepository) Upsert(ctx context.Context, profile *domain.SizeProfile) error {
	query := `
		INSERT INTO size_profiles (id, user_id, name, finger_values, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name          = EXCLUDED.name,
			finger_values = EXCLUDED.finger_values,
			updated_at    = EXCLUDED.updated_at
	`

	now := time.Now()
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	valuesJSON, err := json.Marshal(profile.Values)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		profile.ID, profile.UserID, profile.Name, valuesJSON, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert size profile", zap.Error(err))
		return err
	}
	return nil
}

func scanProfile(row rowScanner) (*domain.SizeProfile, error) {
	var p domain.SizeProfile
	var valuesJSON []byte
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &valuesJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if len(valuesJSON) > 0 {
		if err := json.Unmarshal(valuesJSON, &p.Values); err != nil {
			return nil, err
		}
	}
	if p.Values == nil {
		p.Values = domain.FingerSizes{}
	}
	return &p, nil
}
