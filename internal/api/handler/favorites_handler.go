package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cheatvault/gta-cheats-api/internal/api/metrics"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
	"github.com/cheatvault/gta-cheats-api/internal/core/service"
)

// FavoritesStream is a live favorites aggregation owned by one connection.
type FavoritesStream interface {
	Start(ctx context.Context) error
	Stop()
	Updates() <-chan service.FavoritesSnapshot
}

// StreamFactory builds the live view for a user.
type StreamFactory func(userID string) FavoritesStream

// FavoritesHandler serves the favorites screen, as a one-shot summary or as
// a websocket stream of snapshots.
type FavoritesHandler struct {
	service   ports.FavoritesService
	newStream StreamFactory
	// base is cancelled on server shutdown; hijacked websocket connections
	// are not tracked by the HTTP server.
	base           context.Context
	originPatterns []string
	logger         zerolog.Logger
}

func NewFavoritesHandler(
	base context.Context,
	service ports.FavoritesService,
	newStream StreamFactory,
	originPatterns []string,
	logger zerolog.Logger,
) *FavoritesHandler {
	return &FavoritesHandler{
		service:        service,
		newStream:      newStream,
		base:           base,
		originPatterns: originPatterns,
		logger:         logger,
	}
}

// Summary handles GET /v1/me/favorites.
//
// @Summary      Favorites summary
// @Description  Anonymous callers receive an empty list.
// @Tags         favorites
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  favoritesResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/me/favorites [get]
func (h *FavoritesHandler) Summary(c echo.Context) error {
	sum, err := h.service.Summary(c.Request().Context(), currentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, favoritesResponse{
		Data:       toCheatResponses(sum.Cheats),
		Count:      sum.Count,
		Limit:      sum.Limit,
		IsPremium:  sum.IsPremium,
		Categories: sum.Categories,
	})
}

// Stream handles GET /v1/me/favorites/stream. The connection receives a
// snapshot message on open and after every change to the user's likes.
// Browser clients pass the token as ?access_token=.
//
// @Summary      Favorites live stream (websocket)
// @Tags         favorites
// @Security     BearerAuth
// @Param        access_token  query  string  false  "JWT for clients that cannot set headers"
// @Success      101
// @Failure      401  {object}  errorResponse
// @Router       /v1/me/favorites/stream [get]
func (h *FavoritesHandler) Stream(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	return serveStream[service.FavoritesSnapshot, streamMessage](c, streamConn{
		base:           h.base,
		originPatterns: h.originPatterns,
		open:           metrics.FavoritesStreams,
		log:            h.logger.With().Str("stream", "favorites").Str("user_id", userID).Logger(),
	}, h.newStream(userID), toStreamMessage)
}
