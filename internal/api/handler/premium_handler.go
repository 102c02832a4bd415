package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

type PremiumHandler struct {
	service   ports.PremiumService
	freeLimit int64
}

func NewPremiumHandler(service ports.PremiumService, freeLimit int64) *PremiumHandler {
	if freeLimit <= 0 {
		freeLimit = domain.DefaultFreeLikeLimit
	}
	return &PremiumHandler{service: service, freeLimit: freeLimit}
}

// Me handles GET /v1/me/premium.
//
// @Summary      Premium status
// @Tags         premium
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  premiumResponse
// @Failure      401  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/me/premium [get]
func (h *PremiumHandler) Me(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	premium, err := h.service.IsPremium(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, premiumResponse{
		UserID:        userID,
		IsPremium:     premium,
		FreeLikeLimit: h.freeLimit,
	})
}
