package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/api/middleware"
	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/internal/repository"
	"github.com/shorebytelabs/nailsbyabri/internal/service"
)

// HandleSubmitOrder handles POST /v1/orders. Submission is idempotent when
// the client sends an Idempotency-Key: a retry with the same key and payload
// returns the order created by the first attempt.
func HandleSubmitOrder(drafts *service.DraftService, orders *service.OrderService, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		key, requestHash, existingOrderID, isExisting := middleware.GetIdempotencyInfo(c)
		if isExisting {
			orderID, err := uuid.Parse(existingOrderID)
			if err == nil {
				if rec, err := orders.GetOrder(c.Request.Context(), orderID, userID); err == nil {
					c.JSON(http.StatusOK, service.SubmitResponse{Order: service.NewOrderResponse(rec)})
					return
				}
			}
			logger.Warn("Idempotency key pointed at missing order", zap.String("order_id", existingOrderID))
		}

		result, err := drafts.Submit(c.Request.Context(), userID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		if key != "" {
			ik := &domain.IdempotencyKey{
				Key:         key,
				UserID:      userID,
				OrderID:     result.Order.ID,
				RequestHash: requestHash,
			}
			if err := repos.IdempotencyKey.Create(c.Request.Context(), ik); err != nil {
				logger.Warn("Failed to store idempotency key", zap.Error(err))
			}
		}

		c.JSON(http.StatusCreated, service.SubmitResponse{
			Order:    service.NewOrderResponse(result.Order),
			Capacity: result.Window,
			Notices:  result.Notices,
		})
	}
}

// HandleGetOrder handles GET /v1/orders/:id
func HandleGetOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}
		rec, err := orders.GetOrder(c.Request.Context(), orderID, userID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, service.NewOrderResponse(rec))
	}
}

// HandleListOrders handles GET /v1/orders
func HandleListOrders(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		recs, err := orders.ListOrders(c.Request.Context(), userID, limit, offset)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": service.NewOrderResponses(recs), "count": len(recs)})
	}
}

// HandleResubmitOrder handles POST /v1/orders/:id/resubmit, retrying the
// capacity gate for an order parked in Awaiting Submission.
func HandleResubmitOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
			return
		}
		result, err := orders.Resubmit(c.Request.Context(), orderID, userID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, service.SubmitResponse{
			Order:    service.NewOrderResponse(result.Order),
			Capacity: result.Window,
		})
	}
}
