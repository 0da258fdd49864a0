package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/osmelo/pkg/metrics"
)

const (
	defaultRating   = 1000.0
	defaultFileMode = 0o644
)

// FileStore is a Store backed by a single text file. The file is the only
// source of truth: every call reads it in full, and every Upsert rewrites it
// in full through a temporary file that is renamed over the original.
//
// FileStore holds no lock. Two processes writing the same file can lose an
// update; callers in one process must serialize Upsert themselves.
type FileStore struct {
	path          string
	defaultRating float64
	fileMode      os.FileMode
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store for the file at path. The file does not need
// to exist yet.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{
		path:          path,
		defaultRating: defaultRating,
		fileMode:      defaultFileMode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// DefaultRating returns the rating reported for unknown players.
func (s *FileStore) DefaultRating() float64 {
	return s.defaultRating
}

// Lookup returns the player's current rating or the default rating.
func (s *FileStore) Lookup(ctx context.Context, playerID string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	t, err := s.load()
	if err != nil {
		return 0, err
	}
	if r, ok := t.Lookup(strings.TrimSpace(playerID)); ok {
		return r, nil
	}
	return s.defaultRating, nil
}

// Upsert sets the player's current rating, creating the file if needed.
func (s *FileStore) Upsert(ctx context.Context, playerID string, rating float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	t, err := s.load()
	if err != nil {
		return err
	}
	t.Upsert(strings.TrimSpace(playerID), rating)
	if err := s.write(t.Bytes()); err != nil {
		metrics.RecordStoreError("write")
		return &StorageUnavailableError{Op: "write", Path: s.path, Err: err}
	}

	metrics.RecordStoreWriteLatency(float64(time.Since(start).Microseconds()) / 1000)
	return nil
}

// All returns one entry per distinct player in file order. Rows without a
// numeric field report the default rating.
func (s *FileStore) All(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := s.load()
	if err != nil {
		return nil, err
	}
	recs := t.Records()
	entries := make([]Entry, len(recs))
	for i, rec := range recs {
		entries[i] = Entry{PlayerID: rec.ID, Rating: s.defaultRating}
		if rec.HasRating {
			entries[i].Rating = rec.Rating
		}
	}
	metrics.UpdateTotalPlayers(len(entries))
	return entries, nil
}

// load reads and parses the whole file. A missing file is an empty table.
func (s *FileStore) load() (*Table, error) {
	start := time.Now()
	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		metrics.RecordStoreError("read")
		return nil, &StorageUnavailableError{Op: "read", Path: s.path, Err: err}
	}
	t := ParseTable(data)
	metrics.RecordStoreReadLatency(float64(time.Since(start).Microseconds()) / 1000)
	return t, nil
}

// write replaces the file contents atomically: temp file in the same
// directory, fsync, rename.
func (s *FileStore) write(data []byte) (err error) {
	mode := s.fileMode
	if fi, statErr := os.Stat(s.path); statErr == nil {
		mode = fi.Mode().Perm()
	}

	dir, base := filepath.Split(s.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), mode); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
