package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/capacity"
	"github.com/shorebytelabs/nailsbyabri/internal/repository"
)

// HandleListDeliveryMethods handles GET /v1/delivery-methods. The table is
// externally managed; the wizard renders whatever it returns.
func HandleListDeliveryMethods(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		methods, err := repos.DeliveryMethod.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"delivery_methods": methods})
	}
}

// HandleCapacityPeek handles GET /v1/capacity. Best-effort, read-only view of
// this week's window for the review step; the submit-time decision is made
// fresh and may differ.
func HandleCapacityPeek(admission *capacity.AdmissionControl, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		window := admission.Peek(c.Request.Context())
		if window == nil {
			c.JSON(http.StatusOK, gin.H{"available": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"available": !window.IsFull,
			"window":    window,
		})
	}
}
