package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/api/handlers"
	"github.com/shorebytelabs/nailsbyabri/internal/api/middleware"
	"github.com/shorebytelabs/nailsbyabri/internal/capacity"
	"github.com/shorebytelabs/nailsbyabri/internal/config"
	"github.com/shorebytelabs/nailsbyabri/internal/repository"
	"github.com/shorebytelabs/nailsbyabri/internal/service"
)

// Services bundles the service layer for route wiring.
type Services struct {
	Drafts    *service.DraftService
	Orders    *service.OrderService
	Admission *capacity.AdmissionControl
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, repos *repository.Repositories, svcs *Services, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Nails by Abri Order API",
			"endpoints": []string{
				"GET /health",
				"GET /v1/catalog/shapes",
				"GET /v1/delivery-methods",
				"GET /v1/capacity",
				"GET /v1/draft",
				"POST /v1/draft/actions",
				"GET /v1/draft/pricing",
				"POST /v1/orders",
				"GET /v1/orders/:id",
				"GET /v1/admin/orders",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// Customer routes (require authentication)
		customerRoutes := v1.Group("")
		customerRoutes.Use(middleware.AuthMiddleware(cfg, logger))
		{
			customerRoutes.GET("/catalog/shapes", handlers.HandleListShapes(repos, logger))
			customerRoutes.GET("/delivery-methods", handlers.HandleListDeliveryMethods(repos, logger))
			customerRoutes.GET("/capacity", handlers.HandleCapacityPeek(svcs.Admission, logger))

			customerRoutes.GET("/draft", handlers.HandleGetDraftState(svcs.Drafts, logger))
			customerRoutes.POST("/draft/actions", handlers.HandleApplyAction(svcs.Drafts, logger))
			customerRoutes.GET("/draft/pricing", handlers.HandlePricingPreview(svcs.Drafts, logger))
			customerRoutes.POST("/draft/promo", handlers.HandleApplyPromo(svcs.Drafts, logger))
			customerRoutes.DELETE("/draft/promo", handlers.HandleClearPromo(svcs.Drafts, logger))
			customerRoutes.POST("/draft/autosave", handlers.HandleAutosave(svcs.Drafts, logger))
			customerRoutes.POST("/draft/uploads", handlers.HandleUpload(svcs.Drafts, logger))

			customerRoutes.GET("/profiles", handlers.HandleListProfiles(repos, logger))
			customerRoutes.PUT("/profiles", handlers.HandleUpsertProfile(repos, logger))

			customerRoutes.GET("/orders", handlers.HandleListOrders(svcs.Orders, logger))
			customerRoutes.GET("/orders/:id", handlers.HandleGetOrder(svcs.Orders, logger))
			customerRoutes.POST("/orders/:id/resubmit", handlers.HandleResubmitOrder(svcs.Orders, logger))

			// Submission alone carries idempotency semantics
			submitRoutes := customerRoutes.Group("")
			submitRoutes.Use(middleware.IdempotencyMiddleware(repos, logger))
			{
				submitRoutes.POST("/orders", handlers.HandleSubmitOrder(svcs.Drafts, svcs.Orders, repos, logger))
			}
		}

		// Studio-side routes
		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.AdminAuthMiddleware(cfg, logger))
		{
			adminRoutes.GET("/orders", handlers.HandleAdminListOrders(repos, logger))
			adminRoutes.GET("/orders/:id/events", handlers.HandleAdminGetOrderEvents(repos, logger))
			adminRoutes.PUT("/capacity", handlers.HandleAdminSetCapacity(repos, logger))
			adminRoutes.POST("/promo-codes", handlers.HandleAdminCreatePromo(repos, logger))
			adminRoutes.PATCH("/promo-codes/:code", handlers.HandleAdminSetPromoActive(repos, logger))
			adminRoutes.PUT("/shapes", handlers.HandleAdminUpsertShape(repos, logger))
		}
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
