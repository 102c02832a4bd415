package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

// CheatHandler serves the read-only cheat catalog.
type CheatHandler struct {
	service ports.CheatService
}

func NewCheatHandler(service ports.CheatService) *CheatHandler {
	return &CheatHandler{service: service}
}

// List handles GET /v1/cheats.
//
// @Summary      List cheats
// @Description  Categories are those available for the game/platform pair, before the category filter applies.
// @Tags         cheats
// @Produce      json
// @Param        game      query     string  false  "Game slug (e.g. gta-sa)"
// @Param        platform  query     string  false  "Platform (pc, ps2, xbox)"
// @Param        category  query     string  false  "Category filter"
// @Success      200       {object}  listCheatsResponse
// @Failure      503       {object}  errorResponse
// @Router       /v1/cheats [get]
func (h *CheatHandler) List(c echo.Context) error {
	var q listCheatsQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}

	res, err := h.service.List(c.Request().Context(), ports.ListCheatsInput{
		Game:     q.Game,
		Platform: q.Platform,
		Category: q.Category,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listCheatsResponse{
		Data:       toCheatResponses(res.Cheats),
		Categories: res.Categories,
	})
}

// Get handles GET /v1/cheats/:id.
//
// @Summary      Get a cheat
// @Tags         cheats
// @Produce      json
// @Param        id   path      int  true  "Cheat id"
// @Success      200  {object}  cheatResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/cheats/{id} [get]
func (h *CheatHandler) Get(c echo.Context) error {
	id, err := cheatIDParam(c)
	if err != nil {
		return err
	}

	cheat, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCheatResponse(*cheat))
}
