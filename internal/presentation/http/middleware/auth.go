package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/star-temple/starprint/internal/presentation/http/dto/response"
	"github.com/star-temple/starprint/pkg/utils"
)

// Context keys set by AuthMiddleware
const (
	StationKey = "station"
	RoleKey    = "role"
)

// AuthMiddleware creates a JWT authentication middleware for counter stations
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateStationToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(StationKey, claims.Station)
		c.Set(RoleKey, claims.Role)

		c.Next()
	}
}

// RequireRole creates a middleware that requires one of the given station roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(RoleKey)
		if role == "" {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}

		for _, required := range roles {
			if role == required {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "Insufficient role privileges")
		c.Abort()
	}
}

// GetStation returns the authenticated station, or "" when unauthenticated.
func GetStation(c *gin.Context) string {
	return c.GetString(StationKey)
}
