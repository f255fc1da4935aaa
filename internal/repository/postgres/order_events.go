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

// orderEventRepository is the append-only audit trail behind submissions and
// resubmissions. Rows are never updated or deleted.
type orderEventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderEventRepository creates a new order event repository
func NewOrderEventRepository(db *sql.DB, logger *zap.Logger) *orderEventRepository {
	return &orderEventRepository{db: db, logger: logger}
}

func (r *orderEventRepository) Create(ctx context.Context, event *domain.OrderEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var payload []byte
	if event.EventData != nil {
		b, err := json.Marshal(event.EventData)
		if err != nil {
			return &errors.ErrPersistence{Op: "marshal order event", Err: err}
		}
		payload = b
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO order_events (id, order_id, event_type, event_data, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		event.ID, event.OrderID, event.EventType, payload, event.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create order event",
			zap.String("order_id", event.OrderID.String()),
			zap.String("event_type", event.EventType),
			zap.Error(err))
		return &errors.ErrPersistence{Op: "create order event", Err: err}
	}
	return nil
}

func (r *orderEventRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, event_type, event_data, created_at
		FROM order_events
		WHERE order_id = $1
		ORDER BY created_at ASC`,
		orderID,
	)
	if err != nil {
		return nil, &errors.ErrPersistence{Op: "list order events", Err: err}
	}
	defer rows.Close()

	var events []*domain.OrderEvent
	for rows.Next() {
		var event domain.OrderEvent
		var payload []byte
		if err := rows.Scan(&event.ID, &event.OrderID, &event.EventType, &payload, &event.CreatedAt); err != nil {
			return nil, &errors.ErrPersistence{Op: "scan order event", Err: err}
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &event.EventData); err != nil {
				return nil, &errors.ErrPersistence{Op: "unmarshal order event", Err: err}
			}
		}
		events = append(events, &event)
	}
	return events, rows.Err()
}
