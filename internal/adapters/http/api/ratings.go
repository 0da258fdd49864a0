package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RatingDependencies defines the interface for single-player reads.
type RatingDependencies interface {
	Rating(ctx context.Context, playerID string) (Entry, error)
}

// RatingHandler handles rating requests.
type RatingHandler struct {
	deps RatingDependencies
}

// NewRatingHandler creates a new rating handler.
func NewRatingHandler(deps RatingDependencies) *RatingHandler {
	return &RatingHandler{deps: deps}
}

// HandleGetRating handles GET /ratings/{playerID} requests. Unknown players
// are reported with the default rating and rank 0.
func (h *RatingHandler) HandleGetRating(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rating"
	entry, err := h.deps.Rating(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
