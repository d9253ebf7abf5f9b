package middleware

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// StoreAccessMiddleware guards /stores/:store routes: admins may access any
// store, managers and sellers only the store they belong to.
func StoreAccessMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
		}

		if user.IsAdmin() {
			return next(c)
		}

		storeID, err := strconv.ParseUint(c.Param("store"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid store ID"})
		}

		if !user.BelongsToStore(uint(storeID)) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "you do not have access to this store"})
		}

		return next(c)
	}
}
