package handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/stackdeck/backend/internal/models"
)

// currentUserID extracts the authenticated user's id from the JWT claims
// placed in context by the auth middleware. Returns 0 when unauthenticated.
func currentUserID(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return 0
	}
	return claims.UserID
}

// deviceIDArg formats a device id as a task-queue argument
func deviceIDArg(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// parseUintParam parses a numeric route parameter
func parseUintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
