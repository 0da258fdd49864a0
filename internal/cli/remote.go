package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	repository "github.com/okian/osmelo/internal/adapters/repository"
	service "github.com/okian/osmelo/internal/app"
	"github.com/okian/osmelo/internal/domain/model"
	"github.com/okian/osmelo/internal/domain/types"
)

// RemoteRecorder posts matches to a running server.
type RemoteRecorder struct {
	client  *http.Client
	baseURL string
}

// NewRemoteRecorder creates a recorder for the server at baseURL.
func NewRemoteRecorder(baseURL string, timeout time.Duration) *RemoteRecorder {
	return &RemoteRecorder{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type matchRequest struct {
	MatchID string `json:"match_id,omitempty"`
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
	Score1  int    `json:"score1"`
	Score2  int    `json:"score2"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

// RemoteError is an error response from the server. It unwraps to the
// sentinel matching its code so callers can use errors.Is as with a local
// service.
type RemoteError struct {
	Status  int
	Code    string
	Message string
	Field   string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("server returned %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *RemoteError) Unwrap() error {
	switch e.Code {
	case "invalid_input", "bad_request":
		return model.ErrInvalidInput
	case "duplicate":
		return service.ErrDuplicateMatch
	case "storage_unavailable":
		return repository.ErrStorageUnavailable
	default:
		return nil
	}
}

// ComputeNewRatings posts m to /matches.
func (r *RemoteRecorder) ComputeNewRatings(ctx context.Context, m model.Match) (types.MatchResult, error) {
	body, err := json.Marshal(matchRequest{
		MatchID: m.ID,
		Player1: m.Player1,
		Player2: m.Player2,
		Score1:  m.Score1,
		Score2:  m.Score2,
	})
	if err != nil {
		return types.MatchResult{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/matches", bytes.NewReader(body))
	if err != nil {
		return types.MatchResult{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return types.MatchResult{}, fmt.Errorf("failed to post match: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.MatchResult{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var er errorResponse
		if err := json.Unmarshal(data, &er); err != nil || er.Code == "" {
			er = errorResponse{Code: "unknown", Message: strings.TrimSpace(string(data))}
		}
		return types.MatchResult{}, &RemoteError{Status: resp.StatusCode, Code: er.Code, Message: er.Message, Field: er.Field}
	}

	var res types.MatchResult
	if err := json.Unmarshal(data, &res); err != nil {
		return types.MatchResult{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return res, nil
}
