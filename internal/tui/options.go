package tui

import (
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/config"
	"github.com/hylla/tavla/internal/engine"
)

// TaskFieldConfig controls which secondary task fields the board shows.
type TaskFieldConfig struct {
	ShowPriority    bool
	ShowDueDate     bool
	ShowAssignee    bool
	ShowPoints      bool
	ShowDescription bool
}

type Option func(*Model)

func DefaultTaskFieldConfig() TaskFieldConfig {
	return TaskFieldConfig{
		ShowPriority:    true,
		ShowDueDate:     true,
		ShowAssignee:    true,
		ShowPoints:      false,
		ShowDescription: false,
	}
}

func WithTaskFieldConfig(cfg TaskFieldConfig) Option {
	return func(m *Model) {
		m.taskFields = cfg
	}
}

func WithDefaultDeleteMode(mode app.DeleteMode) Option {
	return func(m *Model) {
		switch mode {
		case app.DeleteModeArchive, app.DeleteModeHard:
			m.defaultDeleteMode = mode
		}
	}
}

func WithKeyConfig(cfg config.KeyConfig) Option {
	return func(m *Model) {
		m.keys = newKeyMap(cfg)
	}
}

func WithPreferenceStore(store engine.PreferenceStore) Option {
	return func(m *Model) {
		if store != nil {
			m.prefs = store
		}
	}
}

func WithMouseDrag(enabled bool) Option {
	return func(m *Model) {
		m.mouseDrag = enabled
	}
}

func WithWIPWarnings(enabled bool) Option {
	return func(m *Model) {
		m.showWIPWarnings = enabled
	}
}
