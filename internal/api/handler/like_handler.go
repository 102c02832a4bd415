package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cheatvault/gta-cheats-api/internal/api/metrics"
	"github.com/cheatvault/gta-cheats-api/internal/core/domain"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

// LikeHandler exposes the like toggle.
type LikeHandler struct {
	service   ports.LikeService
	freeLimit int64
}

func NewLikeHandler(service ports.LikeService, freeLimit int64) *LikeHandler {
	if freeLimit <= 0 {
		freeLimit = domain.DefaultFreeLikeLimit
	}
	return &LikeHandler{service: service, freeLimit: freeLimit}
}

// Status handles GET /v1/cheats/:id/like.
//
// @Summary      Like status of a cheat
// @Description  Anonymous callers always see is_liked=false.
// @Tags         likes
// @Produce      json
// @Param        id   path      int  true  "Cheat id"
// @Success      200  {object}  likeStatusResponse
// @Failure      404  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/cheats/{id}/like [get]
func (h *LikeHandler) Status(c echo.Context) error {
	id, err := cheatIDParam(c)
	if err != nil {
		return err
	}

	st, err := h.service.LikeStatus(c.Request().Context(), currentUser(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, likeStatusResponse{
		CheatID:    st.CheatID,
		IsLiked:    st.IsLiked,
		LikesCount: st.LikesCount,
	})
}

// Toggle handles POST /v1/cheats/:id/like.
//
// @Summary      Toggle like
// @Description  Likes the cheat if not liked, unlikes it otherwise. Free users are limited to `limit` likes.
// @Tags         likes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Cheat id"
// @Success      200  {object}  toggleLikeResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse  "quota_exceeded"
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/cheats/{id}/like [post]
func (h *LikeHandler) Toggle(c echo.Context) error {
	id, err := cheatIDParam(c)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := h.service.ToggleLike(c.Request().Context(), currentUser(c), id)
	metrics.LikeToggleDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LikeTogglesTotal.WithLabelValues(toggleErrorLabel(err)).Inc()
		return err
	}

	result := "unliked"
	if res.IsLiked {
		result = "liked"
	}
	metrics.LikeTogglesTotal.WithLabelValues(result).Inc()
	for _, b := range res.NewBadges {
		metrics.BadgesAwardedTotal.WithLabelValues(string(b.Trigger)).Inc()
	}

	return c.JSON(http.StatusOK, toggleLikeResponse{
		CheatID:    res.CheatID,
		IsLiked:    res.IsLiked,
		LikesCount: res.LikesCount,
		UserLikes:  res.UserLikes,
		Limit:      h.freeLimit,
		NewBadges:  toUnlockedBadges(res.NewBadges),
	})
}

func toggleErrorLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrBusy):
		return "busy"
	case errors.Is(err, domain.ErrCheatNotFound):
		return "not_found"
	case !errors.Is(err, domain.ErrRemoteFailure) &&
		(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		return "canceled"
	default:
		return "error"
	}
}
