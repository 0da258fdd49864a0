// Package repository persists player ratings.
package repository

import "context"

// Entry is a player and their current rating.
type Entry struct {
	PlayerID string
	Rating   float64
}

// Store provides read/write access to the rating table.
type Store interface {
	// Lookup returns the player's current rating, or the default rating when
	// the player has no row or the row carries no numeric field.
	Lookup(ctx context.Context, playerID string) (float64, error)

	// Upsert replaces the player's current rating in place, or appends a new
	// row on first sight. Other rows are left byte-identical.
	Upsert(ctx context.Context, playerID string, rating float64) error

	// All returns one entry per distinct player in table order.
	All(ctx context.Context) ([]Entry, error)
}
