package service

import (
	repository "github.com/okian/osmelo/internal/adapters/repository"
	"github.com/okian/osmelo/internal/config"
	"github.com/okian/osmelo/internal/domain/rating"
	"github.com/okian/osmelo/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore injects the rating store. It takes precedence over WithStorePath.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithStorePath sets the file used by the default FileStore.
func WithStorePath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.storePath = path
		}
	}
}

// WithDefaultRating sets the rating of players with no stored record.
// Only used by the default FileStore.
func WithDefaultRating(r float64) Option {
	return func(s *Service) {
		s.defaultRating = r
	}
}

// WithRatingOptions passes options to the rating engine.
func WithRatingOptions(opts ...rating.Option) Option {
	return func(s *Service) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// WithTruncateRatings controls whether new ratings are stored as whole points.
func WithTruncateRatings(truncate bool) Option {
	return func(s *Service) {
		s.truncate = truncate
	}
}

// WithDedupeSize sets how many match ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithConfig applies every service-related setting from cfg.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg == nil {
			return
		}
		WithStorePath(cfg.StorePath)(s)
		WithDefaultRating(cfg.DefaultRating)(s)
		WithTruncateRatings(cfg.TruncateRatings)(s)
		WithDedupeSize(cfg.DedupeSize)(s)
		WithRatingOptions(
			rating.WithK(cfg.KFactor),
			rating.WithGoalDiffWeight(cfg.GoalDiffWeight),
			rating.WithSensitivity(cfg.Sensitivity),
		)(s)
	}
}
