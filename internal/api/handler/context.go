package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cheatvault/gta-cheats-api/internal/api/middleware"
	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
)

// currentUser returns the authenticated user id, or "" for anonymous
// requests that passed OptionalAuth.
func currentUser(c echo.Context) string {
	id, _ := c.Get(middleware.UserIDKey).(string)
	return id
}

// requireUser fails fast with ErrUnauthenticated before any service call
// when the request carries no identity.
func requireUser(c echo.Context) (string, error) {
	id := currentUser(c)
	if id == "" {
		return "", domain.ErrUnauthenticated
	}
	return id, nil
}

// cheatIDParam parses the :id path segment.
func cheatIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid cheat id")
	}
	return id, nil
}
