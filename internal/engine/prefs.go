package engine

// ColumnPrefs are per-column display preferences. They influence rendering
// only; reordering logic must never consult them.
type ColumnPrefs struct {
	Collapsed bool
}

// PreferenceStore persists column display preferences keyed by board and
// column id.
type PreferenceStore interface {
	Get(boardID, columnID string) (ColumnPrefs, bool)
	Set(boardID, columnID string, prefs ColumnPrefs) error
}

// MemoryPreferenceStore is an in-memory PreferenceStore for tests and for
// running without a config file.
type MemoryPreferenceStore struct {
	prefs map[string]ColumnPrefs
}

// NewMemoryPreferenceStore constructs memory preference store.
func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{prefs: map[string]ColumnPrefs{}}
}

// Get handles get.
func (s *MemoryPreferenceStore) Get(boardID, columnID string) (ColumnPrefs, bool) {
	p, ok := s.prefs[boardID+"/"+columnID]
	return p, ok
}

// Set handles set.
func (s *MemoryPreferenceStore) Set(boardID, columnID string, prefs ColumnPrefs) error {
	s.prefs[boardID+"/"+columnID] = prefs
	return nil
}
