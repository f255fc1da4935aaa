package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/pkg/errors"
)

// respondError maps domain errors onto HTTP statuses. Validation errors carry
// the step and field details so the client can render them in place.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch e := err.(type) {
	case *errors.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": e.Error()})
	case *errors.ErrUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"error": e.Error()})
	case *errors.ErrConflict:
		c.JSON(http.StatusConflict, gin.H{"error": e.Error()})
	case *errors.ErrValidation:
		body := gin.H{"error": e.Error()}
		if e.Step != "" {
			body["step"] = e.Step
		}
		if len(e.Fields) > 0 {
			body["fields"] = e.Fields
		}
		c.JSON(http.StatusUnprocessableEntity, body)
	case *errors.ErrInvalidPromo:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": e.Error(), "code": e.Code})
	case *errors.ErrInvalidStateTransition:
		c.JSON(http.StatusConflict, gin.H{"error": e.Error()})
	case *errors.ErrServiceUnavailable:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": e.Error()})
	default:
		logger.Error("Unhandled error", zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
