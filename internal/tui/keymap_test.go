package tui

import (
	"testing"

	"github.com/hylla/tavla/internal/config"
)

// TestConfiguredKey verifies override handling for configured drag keys.
func TestConfiguredKey(t *testing.T) {
	t.Run("blank uses fallback", func(t *testing.T) {
		if got := configuredKey("", "x"); got != "x" {
			t.Fatalf("configuredKey = %q, want %q", got, "x")
		}
	})

	t.Run("whitespace padding uses fallback", func(t *testing.T) {
		if got := configuredKey("  ", "x"); got != "x" {
			t.Fatalf("configuredKey = %q, want %q", got, "x")
		}
	})

	t.Run("single space is a valid binding", func(t *testing.T) {
		if got := configuredKey(" ", "x"); got != " " {
			t.Fatalf("configuredKey = %q, want space", got)
		}
	})

	t.Run("configured key wins", func(t *testing.T) {
		if got := configuredKey("g", "x"); got != "g" {
			t.Fatalf("configuredKey = %q, want %q", got, "g")
		}
	})
}

// TestNewKeyMapOverrides verifies configured bindings replace the defaults.
func TestNewKeyMapOverrides(t *testing.T) {
	keys := newKeyMap(config.KeyConfig{
		LiftTask:    "g",
		MultiSelect: "x",
		Search:      "f",
	})
	if got := keys.liftTask.Keys(); len(got) != 1 || got[0] != "g" {
		t.Fatalf("liftTask keys = %#v, want [g]", got)
	}
	if got := keys.multiSelect.Keys(); len(got) != 1 || got[0] != "x" {
		t.Fatalf("multiSelect keys = %#v, want [x]", got)
	}
	if got := keys.search.Keys(); len(got) != 1 || got[0] != "f" {
		t.Fatalf("search keys = %#v, want [f]", got)
	}
	if got := keys.liftColumn.Keys(); len(got) != 1 || got[0] != "C" {
		t.Fatalf("liftColumn keys = %#v, want default [C]", got)
	}
}

// TestNewKeyMapSpaceHelpLabel verifies the lift help label for the space key.
func TestNewKeyMapSpaceHelpLabel(t *testing.T) {
	keys := newKeyMap(config.KeyConfig{})
	if got := keys.liftTask.Help().Key; got != "space" {
		t.Fatalf("liftTask help key = %q, want %q", got, "space")
	}
	if got := keys.liftTask.Keys(); len(got) != 1 || got[0] != " " {
		t.Fatalf("liftTask keys = %#v, want [\" \"]", got)
	}
}

// TestHelpLayouts verifies the help surfaces stay populated.
func TestHelpLayouts(t *testing.T) {
	keys := newKeyMap(config.KeyConfig{})
	if got := len(keys.ShortHelp()); got != 6 {
		t.Fatalf("ShortHelp length = %d, want 6", got)
	}
	rows := keys.FullHelp()
	if len(rows) != 4 {
		t.Fatalf("FullHelp rows = %d, want 4", len(rows))
	}
	for i, row := range rows {
		if len(row) == 0 {
			t.Fatalf("FullHelp row %d is empty", i)
		}
	}
}
