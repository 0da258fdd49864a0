package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/okian/osmelo/internal/adapters/http/api"
	repository "github.com/okian/osmelo/internal/adapters/repository"
	service "github.com/okian/osmelo/internal/app"
	"github.com/okian/osmelo/internal/domain/model"
	"github.com/okian/osmelo/internal/domain/types"
	"github.com/okian/osmelo/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// Mock implementations for testing
type mockDependencies struct {
	lastMatch  model.Match
	result     types.MatchResult
	computeErr error

	rating    types.Entry
	ratingErr error
	ratingID  string

	topN    []types.Entry
	topNErr error
	lastN   int

	stats map[string]interface{}
}

func (m *mockDependencies) ComputeNewRatings(_ context.Context, match model.Match) (types.MatchResult, error) {
	m.lastMatch = match
	if m.computeErr != nil {
		return types.MatchResult{}, m.computeErr
	}
	return m.result, nil
}

func (m *mockDependencies) Rating(_ context.Context, playerID string) (types.Entry, error) {
	m.ratingID = playerID
	if m.ratingErr != nil {
		return types.Entry{}, m.ratingErr
	}
	return m.rating, nil
}

func (m *mockDependencies) Leaderboard(_ context.Context, n int) ([]types.Entry, error) {
	m.lastN = n
	if m.topNErr != nil {
		return nil, m.topNErr
	}
	if n > len(m.topN) {
		return m.topN, nil
	}
	return m.topN[:n], nil
}

func (m *mockDependencies) GetStats() map[string]interface{} {
	return m.stats
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

func decodeError(w *httptest.ResponseRecorder) errorResponse {
	var resp errorResponse
	So(json.NewDecoder(w.Body).Decode(&resp), ShouldBeNil)
	return resp
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{
			stats: map[string]interface{}{"matchesProcessed": 0},
			topN:  []types.Entry{{Rank: 1, PlayerID: "Alice", Rating: 1033}},
		}
		server := api.NewServer(deps, 100)
		r := chi.NewRouter()

		Convey("When registering routes", func() {
			server.Register(r)

			Convey("Then health endpoint should be accessible", func() {
				w := serve(r, "GET", "/healthz", "")
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And stats endpoint should be accessible", func() {
				w := serve(r, "GET", "/stats", "")
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And matches endpoint should be accessible", func() {
				w := serve(r, "POST", "/matches", `{}`)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("And leaderboard endpoint should be accessible", func() {
				w := serve(r, "GET", "/leaderboard?limit=10", "")
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And ratings endpoint should pass the path parameter", func() {
				w := serve(r, "GET", "/ratings/Alice", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.ratingID, ShouldEqual, "Alice")
			})

			Convey("And unknown methods are rejected", func() {
				w := serve(r, "GET", "/matches", "")
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestMatchesHandler_HandlePostMatch(t *testing.T) {
	Convey("Given a matches handler", t, func() {
		deps := &mockDependencies{
			result: types.MatchResult{
				MatchID:         "m-1",
				Outcome:         "player1_win",
				ScoreDifference: 2,
				Player1:         types.PlayerChange{ID: "Alice", OldRating: 1000, NewRating: 1033},
				Player2:         types.PlayerChange{ID: "Bob", OldRating: 1000, NewRating: 966},
			},
		}
		handler := api.NewMatchesHandler(deps)
		post := func(body string) *httptest.ResponseRecorder {
			return serve(http.HandlerFunc(handler.HandlePostMatch), "POST", "/matches", body)
		}

		Convey("When a valid match is posted", func() {
			w := post(`{"match_id":"m-1","player1":"Alice","player2":"Bob","score1":3,"score2":1}`)

			Convey("Then the result is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastMatch, ShouldResemble, model.Match{ID: "m-1", Player1: "Alice", Player2: "Bob", Score1: 3, Score2: 1})

				var res types.MatchResult
				So(json.NewDecoder(w.Body).Decode(&res), ShouldBeNil)
				So(res.Player1.NewRating, ShouldEqual, 1033)
				So(res.Player2.NewRating, ShouldEqual, 966)
				So(res.Outcome, ShouldEqual, "player1_win")
			})
		})

		Convey("When a zero score is posted", func() {
			w := post(`{"player1":"Alice","player2":"Bob","score1":0,"score2":0}`)

			Convey("Then it is accepted as a score", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastMatch.Score1, ShouldEqual, 0)
			})
		})

		Convey("When the body is not JSON", func() {
			w := post(`not-json`)

			Convey("Then it should return bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w).Code, ShouldEqual, "bad_request")
			})
		})

		Convey("When a score is missing", func() {
			w := post(`{"player1":"Alice","player2":"Bob","score1":1}`)

			Convey("Then the missing field is named", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				resp := decodeError(w)
				So(resp.Code, ShouldEqual, "invalid_input")
				So(resp.Field, ShouldEqual, "score2")
			})
		})

		Convey("When the service rejects the input", func() {
			deps.computeErr = &model.InvalidInputError{Field: model.FieldPlayer2, Reason: "must differ from player1"}
			w := post(`{"player1":"Alice","player2":"Alice","score1":1,"score2":0}`)

			Convey("Then it should return invalid_input with the field", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				resp := decodeError(w)
				So(resp.Code, ShouldEqual, "invalid_input")
				So(resp.Field, ShouldEqual, "player2")
			})
		})

		Convey("When the match was already recorded", func() {
			deps.computeErr = fmt.Errorf("%w: m-1", service.ErrDuplicateMatch)
			w := post(`{"match_id":"m-1","player1":"Alice","player2":"Bob","score1":1,"score2":0}`)

			Convey("Then it should return conflict", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decodeError(w).Code, ShouldEqual, "duplicate")
			})
		})

		Convey("When the store is unavailable", func() {
			deps.computeErr = &repository.StorageUnavailableError{Op: "write", Path: "elo_data.csv", Err: errors.New("read-only file system")}
			w := post(`{"player1":"Alice","player2":"Bob","score1":1,"score2":0}`)

			Convey("Then it should return service unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(decodeError(w).Code, ShouldEqual, "storage_unavailable")
			})
		})

		Convey("When an unexpected error occurs", func() {
			deps.computeErr = errors.New("boom")
			w := post(`{"player1":"Alice","player2":"Bob","score1":1,"score2":0}`)

			Convey("Then it should return internal error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeError(w).Code, ShouldEqual, "internal_error")
			})
		})
	})
}

func TestLeaderboardHandler_HandleGetLeaderboard(t *testing.T) {
	Convey("Given a leaderboard handler", t, func() {
		deps := &mockDependencies{
			topN: []types.Entry{
				{Rank: 1, PlayerID: "Alice", Rating: 1080},
				{Rank: 2, PlayerID: "Bob", Rating: 1040},
				{Rank: 3, PlayerID: "Carol", Rating: 990},
			},
		}
		handler := http.HandlerFunc(api.NewLeaderboardHandler(deps, 10).HandleGetLeaderboard)

		Convey("When requesting with a valid limit", func() {
			w := serve(handler, "GET", "/leaderboard?limit=2", "")

			Convey("Then it should return the top entries", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var entries []types.Entry
				So(json.NewDecoder(w.Body).Decode(&entries), ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
				So(entries[0].PlayerID, ShouldEqual, "Alice")
			})
		})

		Convey("When requesting without a limit", func() {
			w := serve(handler, "GET", "/leaderboard", "")

			Convey("Then the maximum limit is used", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastN, ShouldEqual, 10)
			})
		})

		Convey("When requesting with an invalid limit", func() {
			w := serve(handler, "GET", "/leaderboard?limit=abc", "")

			Convey("Then it should return bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When requesting with a zero limit", func() {
			w := serve(handler, "GET", "/leaderboard?limit=0", "")

			Convey("Then it should return bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When requesting above the maximum", func() {
			w := serve(handler, "GET", "/leaderboard?limit=11", "")

			Convey("Then it should return bad request naming the maximum", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w).Message, ShouldContainSubstring, "10")
			})
		})

		Convey("When the store is unavailable", func() {
			deps.topNErr = &repository.StorageUnavailableError{Op: "read", Path: "elo_data.csv", Err: os.ErrPermission}
			w := serve(handler, "GET", "/leaderboard?limit=2", "")

			Convey("Then it should return service unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})
	})
}

func TestRatingHandler_HandleGetRating(t *testing.T) {
	Convey("Given a rating handler behind a router", t, func() {
		deps := &mockDependencies{rating: types.Entry{Rank: 2, PlayerID: "Bob", Rating: 1040}}
		r := chi.NewRouter()
		r.Get("/ratings/{playerID}", api.NewRatingHandler(deps).HandleGetRating)

		Convey("When requesting a player", func() {
			w := serve(r, "GET", "/ratings/Bob", "")

			Convey("Then the entry is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var e types.Entry
				So(json.NewDecoder(w.Body).Decode(&e), ShouldBeNil)
				So(e, ShouldResemble, types.Entry{Rank: 2, PlayerID: "Bob", Rating: 1040})
			})
		})

		Convey("When the id is rejected", func() {
			deps.ratingErr = &model.InvalidInputError{Field: "player_id", Reason: "must not be empty"}
			w := serve(r, "GET", "/ratings/%20", "")

			Convey("Then it should return invalid_input", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w).Field, ShouldEqual, "player_id")
			})
		})
	})
}

func TestHealthHandler_HandleHealth(t *testing.T) {
	Convey("Given a health handler", t, func() {
		handler := api.NewHealthHandler()

		Convey("When handling health request", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()
			handler.HandleHealth(w, req)

			Convey("Then it should return metrics", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "osmelo_system_goroutine_count")
			})
		})
	})
}

func TestStatsHandler_HandleStats(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		handler := api.NewStatsHandler(&mockDependencies{
			stats: map[string]interface{}{"matchesProcessed": 12, "storePath": "elo_data.csv"},
		})

		Convey("When handling stats request", func() {
			w := serve(http.HandlerFunc(handler.HandleStats), "GET", "/stats", "")

			Convey("Then it should return stats", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var response map[string]interface{}
				So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
				So(response["matchesProcessed"], ShouldEqual, 12)
				So(response["storePath"], ShouldEqual, "elo_data.csv")
			})
		})
	})
}

func TestServer_EndToEnd(t *testing.T) {
	Convey("Given the API over a real service and an empty table", t, func() {
		path := filepath.Join(t.TempDir(), "elo_data.csv")
		svc := service.New(service.WithStorePath(path))
		h := api.NewServer(svc, 100).Handler()

		Convey("When Alice beats Bob 3-1", func() {
			w := serve(h, "POST", "/matches", `{"match_id":"e2e-1","player1":"Alice","player2":"Bob","score1":3,"score2":1}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			Convey("Then the table holds the truncated ratings", func() {
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, "Alice,1033,\nBob,966,\n")
			})

			Convey("Then the leaderboard reflects the match", func() {
				w := serve(h, "GET", "/leaderboard?limit=5", "")
				var entries []types.Entry
				So(json.NewDecoder(w.Body).Decode(&entries), ShouldBeNil)
				So(entries, ShouldResemble, []types.Entry{
					{Rank: 1, PlayerID: "Alice", Rating: 1033},
					{Rank: 2, PlayerID: "Bob", Rating: 966},
				})
			})

			Convey("Then resubmitting is a conflict", func() {
				w := serve(h, "POST", "/matches", `{"match_id":"e2e-1","player1":"Alice","player2":"Bob","score1":3,"score2":1}`)
				So(w.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When a player plays themselves", func() {
			w := serve(h, "POST", "/matches", `{"player1":"Alice","player2":"Alice","score1":3,"score2":1}`)

			Convey("Then player2 is named as invalid", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w).Field, ShouldEqual, "player2")
			})
		})
	})
}
