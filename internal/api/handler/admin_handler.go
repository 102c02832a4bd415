package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

// AdminHandler carries the operator endpoints. Routes are guarded by RBAC.
type AdminHandler struct {
	premium ports.PremiumService
	auditor ports.QuotaAuditor
}

func NewAdminHandler(premium ports.PremiumService, auditor ports.QuotaAuditor) *AdminHandler {
	return &AdminHandler{premium: premium, auditor: auditor}
}

// SetSubscription handles PUT /v1/admin/subscriptions/:user_id.
//
// @Summary      Grant or revoke premium
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      string                  true  "User id"
// @Param        body     body      setSubscriptionRequest  true  "Entitlement"
// @Success      200      {object}  subscriptionResponse
// @Failure      400      {object}  errorResponse
// @Failure      403      {object}  errorResponse
// @Failure      503      {object}  errorResponse
// @Router       /v1/admin/subscriptions/{user_id} [put]
func (h *AdminHandler) SetSubscription(c echo.Context) error {
	userID := strings.TrimSpace(c.Param("user_id"))
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	var req setSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sub, err := h.premium.SetPremium(c.Request().Context(), userID, *req.IsPremium, req.PremiumUntil)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, subscriptionResponse{
		UserID:       sub.UserID,
		IsPremium:    sub.IsPremium,
		PremiumUntil: sub.PremiumUntil,
		UpdatedAt:    sub.UpdatedAt,
	})
}

// QuotaAudit handles POST /v1/admin/quota-audit.
//
// @Summary      Run the free-tier quota audit now
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  quotaReportResponse
// @Failure      403  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/admin/quota-audit [post]
func (h *AdminHandler) QuotaAudit(c echo.Context) error {
	report, err := h.auditor.Audit(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toQuotaReportResponse(report))
}
