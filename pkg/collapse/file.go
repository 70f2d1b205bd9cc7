package collapse

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/errors"
)

// FileStore is a file-based collapse store for CLI use.
// Each tree's state is a JSON file named after the tree id.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a file store rooted at baseDir.
// If baseDir is empty, defaults to ~/.config/ancestral-scribe/collapsed/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "ancestral-scribe", "collapsed")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create collapse dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Dir returns the directory holding the state files.
func (s *FileStore) Dir() string { return s.baseDir }

func (s *FileStore) statePath(treeID string) (string, error) {
	if err := errors.ValidateTreeID(treeID); err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, treeID+".json"), nil
}

func (s *FileStore) Get(ctx context.Context, treeID string) ([]string, error) {
	path, err := s.statePath(treeID)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read collapse file: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse collapse file: %w", err)
	}
	return Normalize(st.Collapsed), nil
}

func (s *FileStore) Set(ctx context.Context, treeID string, ids []string) error {
	path, err := s.statePath(treeID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(State{
		TreeID:    treeID,
		Collapsed: Normalize(ids),
		UpdatedAt: time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collapse state: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write collapse file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write collapse file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, treeID string) error {
	path, err := s.statePath(treeID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove collapse file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
