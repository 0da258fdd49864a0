// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"strings"

	"github.com/okian/osmelo/internal/domain/rating"
)

// Field names reported by InvalidInputError.
const (
	FieldPlayer1 = "player1"
	FieldPlayer2 = "player2"
	FieldScore1  = "score1"
	FieldScore2  = "score2"
)

// Match is a single observed head-to-head result. It is never persisted.
type Match struct {
	ID      string // optional idempotency key
	Player1 string
	Player2 string
	Score1  int
	Score2  int
}

// Normalize trims surrounding whitespace from the identifiers.
func (m Match) Normalize() Match {
	m.ID = strings.TrimSpace(m.ID)
	m.Player1 = strings.TrimSpace(m.Player1)
	m.Player2 = strings.TrimSpace(m.Player2)
	return m
}

// Validate checks the caller-supplied fields of a normalized match.
func (m Match) Validate() error {
	if err := ValidatePlayerID(FieldPlayer1, m.Player1); err != nil {
		return err
	}
	if err := ValidatePlayerID(FieldPlayer2, m.Player2); err != nil {
		return err
	}
	switch {
	case m.Player1 == m.Player2:
		return invalid(FieldPlayer2, "must differ from player1")
	case m.Score1 < 0:
		return invalid(FieldScore1, "must be a non-negative integer")
	case m.Score2 < 0:
		return invalid(FieldScore2, "must be a non-negative integer")
	}
	return nil
}

// ScoreDifference returns |Score1 - Score2|.
func (m Match) ScoreDifference() int {
	if m.Score1 > m.Score2 {
		return m.Score1 - m.Score2
	}
	return m.Score2 - m.Score1
}

// Outcome returns the result from player 1's point of view.
func (m Match) Outcome() rating.Outcome {
	return rating.OutcomeFromScores(m.Score1, m.Score2)
}

// ParseScore parses a score typed by a person or passed on a command line.
func ParseScore(field, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, invalid(field, "must be a non-negative integer, got "+strconv.Quote(raw))
	}
	if n < 0 {
		return 0, invalid(field, "must be a non-negative integer")
	}
	return n, nil
}

// ValidatePlayerID checks a single trimmed player identifier. Commas and line
// breaks are refused because the rating table separates fields and rows with
// them.
func ValidatePlayerID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid(field, "must not be empty")
	}
	if strings.ContainsAny(id, ",\r\n") {
		return invalid(field, "must not contain commas or line breaks")
	}
	return nil
}
