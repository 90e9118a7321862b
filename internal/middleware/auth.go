package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"kiosk-service/pkg/jwtutil"
	"kiosk-service/pkg/logger"
)

// AuthMiddleware validates the JWT token and extracts the store identity
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		if claims.StoreID == "" {
			log.Warn("JWT token does not contain store_id")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "store_id is required in the token"})
		}

		// Store identity in context for the handlers
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("store_id", claims.StoreID)

		return next(c)
	}
}

// StoreIDFromContext retrieves the authenticated store ID from the context.
// Returns "", false when the request was not authenticated.
func StoreIDFromContext(c echo.Context) (string, bool) {
	storeID, ok := c.Get("store_id").(string)
	return storeID, ok
}
