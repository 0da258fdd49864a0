package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/osmelo/internal/domain/model"
	"github.com/okian/osmelo/internal/domain/types"
)

// MatchDependencies defines the interface for recording matches.
type MatchDependencies interface {
	ComputeNewRatings(ctx context.Context, m model.Match) (types.MatchResult, error)
}

// MatchesHandler handles match submissions.
type MatchesHandler struct {
	deps MatchDependencies
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps MatchDependencies) *MatchesHandler {
	return &MatchesHandler{deps: deps}
}

// matchRequest is the body of POST /matches. Scores are pointers so that a
// missing score is told apart from a zero.
type matchRequest struct {
	MatchID string `json:"match_id"`
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
	Score1  *int   `json:"score1"`
	Score2  *int   `json:"score2"`
}

func (req matchRequest) toMatch() (model.Match, error) {
	if req.Score1 == nil {
		return model.Match{}, &model.InvalidInputError{Field: model.FieldScore1, Reason: "is required"}
	}
	if req.Score2 == nil {
		return model.Match{}, &model.InvalidInputError{Field: model.FieldScore2, Reason: "is required"}
	}
	return model.Match{
		ID:      req.MatchID,
		Player1: req.Player1,
		Player2: req.Player2,
		Score1:  *req.Score1,
		Score2:  *req.Score2,
	}, nil
}

// HandlePostMatch handles POST /matches requests.
func (h *MatchesHandler) HandlePostMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_match"
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	m, err := req.toMatch()
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	res, err := h.deps.ComputeNewRatings(r.Context(), m)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
