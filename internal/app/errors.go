package service

import "errors"

// Sentinel error kinds returned by the service.
var (
	ErrDuplicateMatch = errors.New("match already recorded")
	ErrInvalidLimit   = errors.New("invalid leaderboard limit")
)
