package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/hylla/tavla/internal/engine"
)

type prefsFile struct {
	Columns []columnPrefEntry `toml:"columns"`
}

type columnPrefEntry struct {
	BoardID   string `toml:"board_id"`
	ColumnID  string `toml:"column_id"`
	Collapsed bool   `toml:"collapsed"`
}

// FilePreferenceStore persists per-column view preferences to a TOML file
// next to the config. Writes are whole-file; the store is safe for use from
// multiple goroutines.
type FilePreferenceStore struct {
	mu    sync.Mutex
	path  string
	prefs map[string]engine.ColumnPrefs
}

// OpenPreferenceStore loads the preference file at path, creating the
// parent directory on first save. A missing file is an empty store.
func OpenPreferenceStore(path string) (*FilePreferenceStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preference path is required")
	}
	store := &FilePreferenceStore{
		path:  path,
		prefs: map[string]engine.ColumnPrefs{},
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	var file prefsFile
	if err := toml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	for _, entry := range file.Columns {
		store.prefs[prefKey(entry.BoardID, entry.ColumnID)] = engine.ColumnPrefs{Collapsed: entry.Collapsed}
	}
	return store, nil
}

// Get returns the stored preferences for one column.
func (s *FilePreferenceStore) Get(boardID, columnID string) (engine.ColumnPrefs, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs, ok := s.prefs[prefKey(boardID, columnID)]
	return prefs, ok
}

// Set stores preferences for one column and flushes the file.
func (s *FilePreferenceStore) Set(boardID, columnID string, prefs engine.ColumnPrefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[prefKey(boardID, columnID)] = prefs
	return s.flushLocked()
}

func (s *FilePreferenceStore) flushLocked() error {
	var file prefsFile
	for key, prefs := range s.prefs {
		boardID, columnID, ok := strings.Cut(key, "\x00")
		if !ok {
			continue
		}
		file.Columns = append(file.Columns, columnPrefEntry{
			BoardID:   boardID,
			ColumnID:  columnID,
			Collapsed: prefs.Collapsed,
		})
	}
	content, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create preference dir: %w", err)
	}
	return os.WriteFile(s.path, content, 0o644)
}

func prefKey(boardID, columnID string) string {
	return boardID + "\x00" + columnID
}
