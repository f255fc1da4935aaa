package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/repository"
)

// ShapeResponse is one catalog entry with its effective per-set price.
type ShapeResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// HandleListShapes handles GET /v1/catalog/shapes. Hidden shapes never leave
// the studio.
func HandleListShapes(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		shapes, err := repos.Shape.ListVisible(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		out := make([]ShapeResponse, 0, len(shapes))
		for _, s := range shapes {
			out = append(out, ShapeResponse{
				ID:        s.ID,
				Name:      s.Name,
				UnitPrice: s.UnitPrice(),
			})
		}
		c.JSON(http.StatusOK, gin.H{"shapes": out})
	}
}
