package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/config"
	"github.com/shorebytelabs/nailsbyabri/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, cfg *config.Config, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Order:          NewOrderRepository(db, logger),
		Shape:          NewShapeRepository(db, logger),
		DeliveryMethod: NewDeliveryMethodRepository(db, logger),
		SizeProfile:    NewSizeProfileRepository(db, logger),
		PromoCode:      NewPromoCodeRepository(db, logger),
		Capacity:       NewCapacityRepository(db, logger, cfg.Capacity.AlmostFullAt),
		OrderEvent:     NewOrderEventRepository(db, logger),
		IdempotencyKey: NewIdempotencyKeyRepository(db, logger),
	}
}
