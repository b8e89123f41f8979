// Package handler provides HTTP request handlers for the trailcast API.
package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/trailcast/trailcast/internal/api/response"
	"github.com/trailcast/trailcast/internal/tiles"
)

// TilesHandler serves condition overlay tiles.
type TilesHandler struct {
	tiles *tiles.Service
}

// NewTilesHandler creates a new tiles handler.
func NewTilesHandler(svc *tiles.Service) *TilesHandler {
	return &TilesHandler{tiles: svc}
}

// GetConditionTile handles GET /api/tiles/conditions/{z}/{x}/{y}.png.
// Out-of-range zoom is not an error; the service returns a transparent
// tile so map clients keep panning smoothly.
func (h *TilesHandler) GetConditionTile(w http.ResponseWriter, r *http.Request) {
	z, err := strconv.Atoi(chi.URLParam(r, "z"))
	if err != nil {
		response.BadRequest(w, r, "invalid zoom")
		return
	}
	x, err := strconv.Atoi(chi.URLParam(r, "x"))
	if err != nil {
		response.BadRequest(w, r, "invalid tile x")
		return
	}
	y, err := strconv.Atoi(chi.URLParam(r, "y"))
	if err != nil {
		response.BadRequest(w, r, "invalid tile y")
		return
	}

	data, err := h.tiles.Tile(r.Context(), z, x, y)
	if err != nil {
		response.InternalError(w, r, "tile rendering failed")
		return
	}

	response.PNG(w, r, h.tiles.MaxAge(), data)
}
