package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/shorebytelabs/nailsbyabri/internal/config"
)

const UserContextKey = "user_id"

// AuthMiddleware authenticates customer requests using a bearer JWT. The
// subject claim is the user id every repository scopes by.
func AuthMiddleware(cfg *config.Config, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(strings.TrimSpace(parts[1]), func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.Auth.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			logger.Warn("Failed to authenticate user", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		userID, err := token.Claims.GetSubject()
		if err != nil || userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token missing subject"})
			c.Abort()
			return
		}

		c.Set(UserContextKey, userID)
		c.Next()
	}
}

// GetUserFromContext retrieves the authenticated user id from the Gin context
func GetUserFromContext(c *gin.Context) (string, bool) {
	v, exists := c.Get(UserContextKey)
	if !exists {
		return "", false
	}
	userID, ok := v.(string)
	return userID, ok && userID != ""
}

// AdminAuthMiddleware guards studio-side routes with a shared admin key,
// verified against the bcrypt hash in config.
func AdminAuthMiddleware(cfg *config.Config, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Auth.AdminKeyHash == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin access not configured"})
			c.Abort()
			return
		}
		key := strings.TrimSpace(c.GetHeader("X-Admin-Key"))
		if key == "" || bcrypt.CompareHashAndPassword([]byte(cfg.Auth.AdminKeyHash), []byte(key)) != nil {
			logger.Warn("Rejected admin request", zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
			c.Abort()
			return
		}
		c.Next()
	}
}
