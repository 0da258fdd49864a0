// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and environment variables on top.
// - Validation errors wrap ErrInvalidConfig, loader failures wrap ErrLoadConfig.
package config

import "github.com/okian/osmelo/internal/domain/rating"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StorePath is the rating table file.
	StorePath string `koanf:"store_path"`

	// DefaultRating is reported for players without a stored rating.
	DefaultRating float64 `koanf:"default_rating"`

	// KFactor caps the rating change of a single match.
	KFactor float64 `koanf:"k_factor"`

	// GoalDiffWeight scales the margin-of-victory multiplier.
	GoalDiffWeight float64 `koanf:"goal_diff_weight"`

	// Sensitivity multiplies the surprise term of the update.
	Sensitivity float64 `koanf:"sensitivity"`

	// TruncateRatings stores new ratings truncated toward zero to whole points.
	TruncateRatings bool `koanf:"truncate_ratings"`

	// DedupeSize bounds the number of remembered match ids.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		StorePath:           "elo_data.csv",
		DefaultRating:       rating.DefaultRating,
		KFactor:             rating.DefaultK,
		GoalDiffWeight:      rating.DefaultGoalDiffWeight,
		Sensitivity:         rating.DefaultSensitivity,
		TruncateRatings:     true,
		DedupeSize:          10_000,
		MaxLeaderboardLimit: 100,
	}
}
