// Package service provides the rating service behind the HTTP API and the
// command-line recorder: it reads both players' ratings from the store, runs
// the rating engine and writes both new ratings back.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	repository "github.com/okian/osmelo/internal/adapters/repository"
	"github.com/okian/osmelo/internal/domain/dedupe"
	"github.com/okian/osmelo/internal/domain/model"
	"github.com/okian/osmelo/internal/domain/rating"
	"github.com/okian/osmelo/internal/domain/types"
	"github.com/okian/osmelo/pkg/logger"
	"github.com/okian/osmelo/pkg/metrics"
)

// Service implements the rating boundary.
type Service struct {
	// mu serializes read-modify-write cycles on the store. It does not
	// protect against other processes writing the same file.
	mu sync.Mutex

	store   repository.Store
	engine  *rating.Engine
	deduper dedupe.Deduper

	// Configuration
	storePath     string
	defaultRating float64
	truncate      bool
	dedupeSize    int
	engineOpts    []rating.Option

	matchesProcessed atomic.Int64

	logger logger.Logger
}

// New constructs a Service. Without WithStore, a FileStore is opened at the
// configured path (elo_data.csv by default).
func New(opts ...Option) *Service {
	s := &Service{
		storePath:     "elo_data.csv",
		defaultRating: rating.DefaultRating,
		truncate:      true,
		dedupeSize:    10_000,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewFileStore(s.storePath, repository.WithDefaultRating(s.defaultRating))
	}
	s.engine = rating.NewEngine(s.engineOpts...)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// ComputeNewRatings records one match: it looks up both players, computes
// their new ratings and writes them back, returning old and new values.
//
// A non-empty m.ID makes the call idempotent: a second call with the same id
// fails with ErrDuplicateMatch and leaves the store alone. Without an id a
// random one is assigned and returned.
func (s *Service) ComputeNewRatings(ctx context.Context, m model.Match) (types.MatchResult, error) {
	m = m.Normalize()
	if err := m.Validate(); err != nil {
		var inv *model.InvalidInputError
		if errors.As(err, &inv) {
			metrics.RecordMatchRejected(inv.Field)
		}
		s.logger.Debug(ctx, "match rejected", logger.Error(err))
		return types.MatchResult{}, err
	}

	supplied := m.ID != ""
	if !supplied {
		m.ID = uuid.NewString()
	} else if s.deduper.SeenAndRecord(ctx, m.ID) {
		metrics.RecordMatchDuplicate()
		s.logger.Info(ctx, "duplicate match skipped", logger.String("matchID", m.ID))
		return types.MatchResult{}, fmt.Errorf("%w: %s", ErrDuplicateMatch, m.ID)
	}

	res, err := s.apply(ctx, m)
	if err != nil {
		if supplied {
			s.deduper.Unrecord(ctx, m.ID)
		}
		s.logger.Error(ctx, "failed to record match",
			logger.String("matchID", m.ID),
			logger.String("player1", m.Player1),
			logger.String("player2", m.Player2),
			logger.Error(err),
		)
		return types.MatchResult{}, err
	}

	s.matchesProcessed.Add(1)
	metrics.RecordMatchProcessed(res.Outcome)
	metrics.ObserveRatingDelta(res.Player1.Delta())
	metrics.ObserveRatingDelta(res.Player2.Delta())
	s.logger.Info(ctx, "match recorded",
		logger.String("matchID", res.MatchID),
		logger.String("outcome", res.Outcome),
		logger.String("player1", res.Player1.ID),
		logger.Float64("player1Old", res.Player1.OldRating),
		logger.Float64("player1New", res.Player1.NewRating),
		logger.String("player2", res.Player2.ID),
		logger.Float64("player2Old", res.Player2.OldRating),
		logger.Float64("player2New", res.Player2.NewRating),
	)
	return res, nil
}

func (s *Service) apply(ctx context.Context, m model.Match) (types.MatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old1, err := s.store.Lookup(ctx, m.Player1)
	if err != nil {
		return types.MatchResult{}, err
	}
	old2, err := s.store.Lookup(ctx, m.Player2)
	if err != nil {
		return types.MatchResult{}, err
	}

	new1, new2 := s.engine.Update(old1, old2, m.Outcome(), m.ScoreDifference())
	if s.truncate {
		new1, new2 = math.Trunc(new1), math.Trunc(new2)
	}

	if err := s.store.Upsert(ctx, m.Player1, new1); err != nil {
		return types.MatchResult{}, err
	}
	if err := s.store.Upsert(ctx, m.Player2, new2); err != nil {
		// Put player 1 back so that a retry of the same match starts clean.
		if rbErr := s.store.Upsert(context.WithoutCancel(ctx), m.Player1, old1); rbErr != nil {
			s.logger.Error(ctx, "rollback of player1 failed; table is half-updated",
				logger.String("player1", m.Player1),
				logger.Float64("rating", new1),
				logger.Error(rbErr),
			)
		}
		return types.MatchResult{}, err
	}

	return types.MatchResult{
		MatchID:         m.ID,
		Outcome:         m.Outcome().String(),
		ScoreDifference: m.ScoreDifference(),
		Player1:         types.PlayerChange{ID: m.Player1, OldRating: old1, NewRating: new1},
		Player2:         types.PlayerChange{ID: m.Player2, OldRating: old2, NewRating: new2},
	}, nil
}

// Rating returns a player's current rating and rank. Unknown players get the
// default rating and rank 0.
func (s *Service) Rating(ctx context.Context, playerID string) (types.Entry, error) {
	playerID = strings.TrimSpace(playerID)
	if err := model.ValidatePlayerID("player_id", playerID); err != nil {
		return types.Entry{}, err
	}

	ranked, err := s.ranked(ctx)
	if err != nil {
		return types.Entry{}, err
	}
	for _, e := range ranked {
		if e.PlayerID == playerID {
			return e, nil
		}
	}

	r, err := s.store.Lookup(ctx, playerID)
	if err != nil {
		return types.Entry{}, err
	}
	return types.Entry{PlayerID: playerID, Rating: r}, nil
}

// Leaderboard returns the top n players by rating, ties broken by id.
func (s *Service) Leaderboard(ctx context.Context, n int) ([]types.Entry, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	ranked, err := s.ranked(ctx)
	if err != nil {
		return nil, err
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

func (s *Service) ranked(ctx context.Context) ([]types.Entry, error) {
	entries, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Rating != entries[j].Rating {
			return entries[i].Rating > entries[j].Rating
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})

	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		out[i] = types.Entry{Rank: i + 1, PlayerID: e.PlayerID, Rating: e.Rating}
	}
	return out, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	p := s.engine.Params()
	stats := map[string]interface{}{
		"matchesProcessed": s.matchesProcessed.Load(),
		"rememberedIDs":    s.deduper.Size(),
		"dedupeSize":       s.dedupeSize,
		"truncateRatings":  s.truncate,
		"kFactor":          p.K,
		"goalDiffWeight":   p.GoalDiffWeight,
		"sensitivity":      p.Sensitivity,
	}
	if ps, ok := s.store.(interface{ Path() string }); ok {
		stats["storePath"] = ps.Path()
	}
	return stats
}
