// Package types contains common types used across the application
package types

// Entry represents a leaderboard entry
type Entry struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"player_id"`
	Rating   float64 `json:"rating"`
}

// PlayerChange is one side of a processed match.
type PlayerChange struct {
	ID        string  `json:"id"`
	OldRating float64 `json:"old_rating"`
	NewRating float64 `json:"new_rating"`
}

// Delta returns NewRating - OldRating.
func (c PlayerChange) Delta() float64 {
	return c.NewRating - c.OldRating
}

// MatchResult is what a caller receives after a match has been recorded.
type MatchResult struct {
	MatchID         string       `json:"match_id"`
	Outcome         string       `json:"outcome"`
	ScoreDifference int          `json:"score_difference"`
	Player1         PlayerChange `json:"player1"`
	Player2         PlayerChange `json:"player2"`
}
