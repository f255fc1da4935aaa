package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/capacity"
	"github.com/shorebytelabs/nailsbyabri/internal/domain"
)

type capacityRepository struct {
	db           *sql.DB
	logger       *zap.Logger
	almostFullAt int
}

// NewCapacityRepository creates a new weekly capacity-window repository.
// almostFullAt is the remaining-slot count at or below which a window reads
// as almost full.
func NewCapacityRepository(db *sql.DB, logger *zap.Logger, almostFullAt int) *capacityRepository {
	return &capacityRepository{
		db:           db,
		logger:       logger,
		almostFullAt: almostFullAt,
	}
}

// CurrentWindow reads this week's counter. The read never mutates capacity,
// so it is safe for informational display on the review step.
func (r *capacityRepository) CurrentWindow(ctx context.Context, now time.Time) (*domain.CapacityWindow, error) {
	weekStart := capacity.WeekStart(now)

	query := `SELECT capacity, used FROM capacity_windows WHERE week_start = $1`

	var capacityLimit, used int
	err := r.db.QueryRowContext(ctx, query, weekStart).Scan(&capacityLimit, &used)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no capacity window for week of %s", weekStart.Format("2006-01-02"))
	}
	if err != nil {
		r.logger.Error("Failed to read capacity window", zap.Error(err))
		return nil, err
	}

	remaining := capacityLimit - used
	if remaining < 0 {
		remaining = 0
	}
	return &domain.CapacityWindow{
		WeekStart:     weekStart,
		Remaining:     remaining,
		IsAlmostFull:  remaining > 0 && remaining <= r.almostFullAt,
		IsFull:        remaining == 0,
		NextWeekStart: weekStart.AddDate(0, 0, 7),
	}, nil
}

// Increment atomically consumes one slot. The guard in the WHERE clause makes
// concurrent submissions race safely: the loser gets zero rows affected.
func (r *capacityRepository) Increment(ctx context.Context, weekStart time.Time) error {
	query := `
		UPDATE capacity_windows
		SET used = used + 1, updated_at = $2
		WHERE week_start = $1 AND used < capacity
	`

	result, err := r.db.ExecContext(ctx, query, weekStart, time.Now())
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("capacity window for week of %s is exhausted", weekStart.Format("2006-01-02"))
	}
	return nil
}

// EnsureWindow seeds the week's row if it does not exist yet.
func (r *capacityRepository) EnsureWindow(ctx context.Context, weekStart time.Time, capacityLimit int) error {
	query := `
		INSERT INTO capacity_windows (week_start, capacity, used, created_at, updated_at)
		VALUES ($1, $2, 0, $3, $3)
		ON CONFLICT (week_start) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query, weekStart, capacityLimit, time.Now())
	if err != nil {
		r.logger.Error("Failed to ensure capacity window", zap.Error(err))
		return err
	}
	return nil
}

// SetCapacity overrides a week's capacity, creating the row when missing.
// The used count is never touched.
func (r *capacityRepository) SetCapacity(ctx context.Context, weekStart time.Time, capacityLimit int) error {
	query := `
		INSERT INTO capacity_windows (week_start, capacity, used, created_at, updated_at)
		VALUES ($1, $2, 0, $3, $3)
		ON CONFLICT (week_start) DO UPDATE SET capacity = EXCLUDED.capacity, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, weekStart, capacityLimit, time.Now())
	if err != nil {
		r.logger.Error("Failed to set capacity", zap.Error(err))
		return err
	}
	return nil
}
