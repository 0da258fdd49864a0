package repository

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable is the sentinel kind behind every StorageUnavailableError.
var ErrStorageUnavailable = errors.New("storage unavailable")

// StorageUnavailableError reports an I/O failure on the rating table.
// It is never retried by the store.
type StorageUnavailableError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrStorageUnavailable, e.Op, e.Path, e.Err)
}

// Unwrap exposes both the sentinel kind and the underlying I/O error.
func (e *StorageUnavailableError) Unwrap() []error {
	return []error{ErrStorageUnavailable, e.Err}
}
