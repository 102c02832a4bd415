package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

type BadgeHandler struct {
	service ports.BadgeService
}

func NewBadgeHandler(service ports.BadgeService) *BadgeHandler {
	return &BadgeHandler{service: service}
}

// Mine handles GET /v1/me/badges.
//
// @Summary      Unlocked badges
// @Tags         badges
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   badgeResponse
// @Failure      401  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/me/badges [get]
func (h *BadgeHandler) Mine(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	badges, err := h.service.UserBadges(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUnlockedBadges(badges))
}

// Catalog handles GET /v1/badges. Anonymous callers see every badge locked.
//
// @Summary      Badge catalog
// @Tags         badges
// @Produce      json
// @Success      200  {array}   badgeResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/badges [get]
func (h *BadgeHandler) Catalog(c echo.Context) error {
	views, err := h.service.Catalog(c.Request().Context(), currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBadgeViews(views))
}
