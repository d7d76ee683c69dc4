package handlers

import (
	"github.com/arixen/socialite/internal/models"
	"github.com/labstack/echo/v4"
)

// getUserIDFromContext returns the authenticated caller's user ID, or 0 when
// the request carries no verified claims.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}

func getClaimsFromContext(c echo.Context) *models.JwtCustomClaims {
	claims, _ := c.Get("user").(*models.JwtCustomClaims)
	return claims
}
