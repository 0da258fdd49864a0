package repository

import "os"

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithDefaultRating sets the rating returned for unknown players.
func WithDefaultRating(rating float64) Option {
	return func(s *FileStore) {
		s.defaultRating = rating
	}
}

// WithFileMode sets the permissions used when the table file is created.
func WithFileMode(mode os.FileMode) Option {
	return func(s *FileStore) {
		if mode != 0 {
			s.fileMode = mode
		}
	}
}
