// Package cache persists optimizer state snapshots as one YAML file
// per optimizer, so a search can resume after a process restart
// without regenerating or reanalyzing batches.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/emtune/tuner-core/internal/search"
)

// Store is a file-backed search.StateStore. Concurrent processes must
// not operate on the same optimizer's cache.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory must be set")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the cache directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, fmt.Sprintf("OPT_%s.yml", name))
}

// Save writes the snapshot for state.Name, replacing any previous one.
// The write goes through a temp file and rename so a crash cannot
// leave a half-written snapshot.
func (s *Store) Save(state search.State) error {
	if state.Name == "" {
		return fmt.Errorf("cannot save state without an optimizer name")
	}
	data, err := yaml.Marshal(&state)
	if err != nil {
		return fmt.Errorf("marshaling state for %s: %w", state.Name, err)
	}

	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf("OPT_%s.*.tmp", state.Name))
	if err != nil {
		return fmt.Errorf("writing state for %s: %w", state.Name, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing state for %s: %w", state.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing state for %s: %w", state.Name, err)
	}
	if err := os.Rename(tmpName, s.path(state.Name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing state for %s: %w", state.Name, err)
	}
	return nil
}

// Load reads the snapshot for name. A missing snapshot surfaces as
// search.ErrStateNotFound.
func (s *Store) Load(name string) (search.State, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return search.State{}, fmt.Errorf("optimizer %s: %w", name, search.ErrStateNotFound)
	}
	if err != nil {
		return search.State{}, fmt.Errorf("reading state for %s: %w", name, err)
	}

	var state search.State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return search.State{}, fmt.Errorf("parsing state for %s: %w", name, err)
	}
	if state.Name == "" {
		state.Name = name
	}
	return state, nil
}

// Delete removes the snapshot for name if present.
func (s *Store) Delete(name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting state for %s: %w", name, err)
	}
	return nil
}
