package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/capacity"
	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/internal/repository"
	"github.com/shorebytelabs/nailsbyabri/internal/service"
)

// HandleAdminListOrders handles GET /v1/admin/orders?status=Submitted
func HandleAdminListOrders(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := domain.OrderStatus(c.DefaultQuery("status", string(domain.OrderStatusSubmitted)))
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if limit <= 0 || limit > 200 {
			limit = 50
		}
		if offset < 0 {
			offset = 0
		}

		recs, err := repos.Order.ListByStatus(c.Request.Context(), status, limit, offset)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": service.NewOrderResponses(recs), "count": len(recs)})
	}
}

// HandleAdminGetOrderEvents handles GET /v1/admin/orders/:id/events
func HandleAdminGetOrderEvents(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}
		events, err := repos.OrderEvent.GetByOrderID(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}

// HandleAdminSetCapacity handles PUT /v1/admin/capacity. Overrides the
// capacity of the given week without touching its used count.
func HandleAdminSetCapacity(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			WeekStart string `json:"week_start" binding:"required"`
			Capacity  int    `json:"capacity" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}
		day, err := time.Parse("2006-01-02", req.WeekStart)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "week_start must be YYYY-MM-DD"})
			return
		}
		weekStart := capacity.WeekStart(day)

		if err := repos.Capacity.SetCapacity(c.Request.Context(), weekStart, req.Capacity); err != nil {
			respondError(c, logger, err)
			return
		}
		logger.Info("Capacity updated",
			zap.Time("week_start", weekStart),
			zap.Int("capacity", req.Capacity))
		c.JSON(http.StatusOK, gin.H{"week_start": weekStart.Format("2006-01-02"), "capacity": req.Capacity})
	}
}

// HandleAdminCreatePromo handles POST /v1/admin/promo-codes
func HandleAdminCreatePromo(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Code        string     `json:"code" binding:"required"`
			Kind        string     `json:"kind" binding:"required,oneof=percent fixed"`
			Amount      string     `json:"amount" binding:"required"`
			Description string     `json:"description"`
			MinSubtotal string     `json:"min_subtotal"`
			StartsAt    *time.Time `json:"starts_at"`
			ExpiresAt   *time.Time `json:"expires_at"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}

		amount, err := decimal.NewFromString(req.Amount)
		if err != nil || amount.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a non-negative decimal"})
			return
		}
		minSubtotal := decimal.Zero
		if req.MinSubtotal != "" {
			minSubtotal, err = decimal.NewFromString(req.MinSubtotal)
			if err != nil || minSubtotal.IsNegative() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "min_subtotal must be a non-negative decimal"})
				return
			}
		}

		promoCode := &domain.PromoCode{
			Code:        req.Code,
			Kind:        req.Kind,
			Amount:      amount,
			Description: req.Description,
			MinSubtotal: minSubtotal,
			IsActive:    true,
			StartsAt:    req.StartsAt,
			ExpiresAt:   req.ExpiresAt,
		}
		if err := repos.PromoCode.Create(c.Request.Context(), promoCode); err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"code": promoCode.Code})
	}
}

// HandleAdminSetPromoActive handles PATCH /v1/admin/promo-codes/:code
func HandleAdminSetPromoActive(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Active *bool `json:"active" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "active required"})
			return
		}
		code := c.Param("code")
		if err := repos.PromoCode.SetActive(c.Request.Context(), code, *req.Active); err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": code, "active": *req.Active})
	}
}

// HandleAdminUpsertShape handles PUT /v1/admin/shapes
func HandleAdminUpsertShape(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ID              string `json:"id" binding:"required"`
			Name            string `json:"name" binding:"required"`
			BasePrice       string `json:"base_price" binding:"required"`
			PriceAdjustment string `json:"price_adjustment"`
			IsVisible       *bool  `json:"is_visible"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}
		basePrice, err := decimal.NewFromString(req.BasePrice)
		if err != nil || basePrice.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "base_price must be a non-negative decimal"})
			return
		}
		adjustment := decimal.Zero
		if req.PriceAdjustment != "" {
			adjustment, err = decimal.NewFromString(req.PriceAdjustment)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "price_adjustment must be a decimal"})
				return
			}
		}
		visible := true
		if req.IsVisible != nil {
			visible = *req.IsVisible
		}

		shape := &domain.Shape{
			ID:              req.ID,
			Name:            req.Name,
			BasePrice:       basePrice,
			PriceAdjustment: adjustment,
			IsVisible:       visible,
		}
		if err := repos.Shape.Upsert(c.Request.Context(), shape); err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": shape.ID})
	}
}
