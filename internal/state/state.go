// Package state persists git-trim's one piece of external mutable state:
// the time of the last successful pruning remote update.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Store reads and writes the last-update timestamp from a single file
// under the repository's Git directory. Unlike the teacher's git-object-
// backed branch database, a single epoch-seconds value doesn't warrant a
// commit history of its own, so it lives as a plain file.
type Store struct {
	path string
}

// New returns a Store that persists to "trim/last-update" under gitDir.
func New(gitDir string) *Store {
	return &Store{path: filepath.Join(gitDir, "trim", "last-update")}
}

// LastUpdate reports the last recorded update time, and whether any
// update has ever been recorded.
func (s *Store) LastUpdate() (time.Time, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("read %s: %w", s.path, err)
	}

	secs, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse %s: %w", s.path, err)
	}

	return time.Unix(secs, 0), true, nil
}

// SetLastUpdate records t as the last successful update time, replacing
// any previous value.
func (s *Store) SetLastUpdate(t time.Time) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp := s.path + ".tmp"
	data := []byte(strconv.FormatInt(t.Unix(), 10) + "\n")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmp, s.path, err)
	}
	return nil
}
