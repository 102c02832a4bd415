package handler

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cheatvault/gta-cheats-api/internal/api/metrics"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
	"github.com/cheatvault/gta-cheats-api/internal/core/service"
)

// LikeStatusStream is a live like counter owned by one connection.
type LikeStatusStream interface {
	Start(ctx context.Context) error
	Stop()
	Updates() <-chan service.LikeStatusSnapshot
}

// LikeStatusStreamFactory builds the live counter of cheatID for a viewer.
// userID is empty for anonymous viewers.
type LikeStatusStreamFactory func(userID string, cheatID int64) LikeStatusStream

// LikeStreamHandler pushes a cheat's like counter as it changes.
type LikeStreamHandler struct {
	cheats         ports.CheatService
	newStream      LikeStatusStreamFactory
	base           context.Context
	originPatterns []string
	logger         zerolog.Logger
}

func NewLikeStreamHandler(
	base context.Context,
	cheats ports.CheatService,
	newStream LikeStatusStreamFactory,
	originPatterns []string,
	logger zerolog.Logger,
) *LikeStreamHandler {
	return &LikeStreamHandler{
		cheats:         cheats,
		newStream:      newStream,
		base:           base,
		originPatterns: originPatterns,
		logger:         logger,
	}
}

// Stream handles GET /v1/cheats/:id/like/stream. A like_status message is
// sent on open and after every like or unlike of the cheat by anyone.
//
// @Summary      Like counter live stream (websocket)
// @Description  Anonymous viewers always see is_liked=false.
// @Tags         likes
// @Param        id            path   int     true   "Cheat id"
// @Param        access_token  query  string  false  "JWT for clients that cannot set headers"
// @Success      101
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/cheats/{id}/like/stream [get]
func (h *LikeStreamHandler) Stream(c echo.Context) error {
	id, err := cheatIDParam(c)
	if err != nil {
		return err
	}
	if _, err := h.cheats.Get(c.Request().Context(), id); err != nil {
		return err
	}

	userID := currentUser(c)
	return serveStream[service.LikeStatusSnapshot, likeStatusMessage](c, streamConn{
		base:           h.base,
		originPatterns: h.originPatterns,
		open:           metrics.LikeStatusStreams,
		log:            h.logger.With().Str("stream", "like_status").Int64("cheat_id", id).Str("user_id", userID).Logger(),
	}, h.newStream(userID, id), toLikeStatusMessage)
}
