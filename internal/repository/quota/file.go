package quota

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/kailas-cloud/kidprint/internal/domain/usage"
)

// FileStore keeps the quota state as a JSON document on a filesystem.
// Writes go to a sibling temp file that is renamed over the target.
type FileStore struct {
	fs   afero.Fs
	path string
}

// NewFileStore creates a file-backed store. fs is usually afero.NewOsFs().
func NewFileStore(fsys afero.Fs, path string) *FileStore {
	return &FileStore{fs: fsys, path: filepath.Clean(path)}
}

// Path returns the state file location.
func (s *FileStore) Path() string { return s.path }

// Load reads the state. A missing file yields an empty state.
func (s *FileStore) Load(_ context.Context) (usage.State, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return usage.NewState(), nil
		}
		return usage.State{}, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return usage.NewState(), nil
	}
	return decodeState(data)
}

// Save writes the whole state.
func (s *FileStore) Save(_ context.Context, state usage.State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// Ping checks that the state directory exists or can be created.
func (s *FileStore) Ping(_ context.Context) error {
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("state dir %s: %w", filepath.Dir(s.path), err)
	}
	return nil
}
