package middleware

import (
	"net/http"
	"strings"

	"github.com/DeiVid1337/Boss-Pods-Api/internal/model"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/database"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/jwtutil"
	"github.com/DeiVid1337/Boss-Pods-Api/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the JWT token and loads the authenticated user so
// handlers can branch on role and store membership.
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

		// Load the user so role/store changes take effect without reissue
		var user model.User
		if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
			log.Warn("Token user no longer exists", zap.Uint("user_id", claims.UserID))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		if !user.IsActive {
			log.Warn("Inactive user attempted access", zap.Uint("user_id", user.ID))
			return c.JSON(http.StatusForbidden, echo.Map{"error": "account is disabled"})
		}

		c.Set("user", &user)
		c.Set("user_id", user.ID)

		return next(c)
	}
}

// CurrentUser retrieves the authenticated user from the context
func CurrentUser(c echo.Context) *model.User {
	user, ok := c.Get("user").(*model.User)
	if !ok {
		return nil
	}
	return user
}
