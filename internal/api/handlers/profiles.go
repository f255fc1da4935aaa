package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shorebytelabs/nailsbyabri/internal/api/middleware"
	"github.com/shorebytelabs/nailsbyabri/internal/domain"
	"github.com/shorebytelabs/nailsbyabri/internal/repository"
	"github.com/shorebytelabs/nailsbyabri/internal/service"
)

// HandleListProfiles handles GET /v1/profiles. Only profiles with at least
// one filled value are selectable in the wizard; the full list is returned
// here so the client can let the user finish incomplete ones.
func HandleListProfiles(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		profiles, err := repos.SizeProfile.ListByUser(c.Request.Context(), userID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"profiles": service.NewProfileResponses(profiles)})
	}
}

// HandleUpsertProfile handles PUT /v1/profiles
func HandleUpsertProfile(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req struct {
			ID     string             `json:"id"`
			Name   string             `json:"name" binding:"required"`
			Values domain.FingerSizes `json:"values" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
			return
		}

		profile := &domain.SizeProfile{
			ID:     req.ID,
			UserID: userID,
			Name:   req.Name,
			Values: req.Values,
		}
		if err := repos.SizeProfile.Upsert(c.Request.Context(), profile); err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, service.ProfileResponse{ID: profile.ID, Name: profile.Name, Values: profile.Values})
	}
}
