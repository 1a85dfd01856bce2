package tui

import (
	"strings"

	"charm.land/bubbles/v2/key"

	"github.com/hylla/tavla/internal/config"
)

// keyMap represents key map data used by this package.
type keyMap struct {
	quit        key.Binding
	reload      key.Binding
	toggleHelp  key.Binding
	moveLeft    key.Binding
	moveRight   key.Binding
	moveUp      key.Binding
	moveDown    key.Binding
	nextBoard   key.Binding
	liftTask    key.Binding
	liftColumn  key.Binding
	dropTask    key.Binding
	cancelDrag  key.Binding
	addTask     key.Binding
	taskInfo    key.Binding
	deleteTask  key.Binding
	restoreTask key.Binding
	yankTask    key.Binding
	multiSelect key.Binding
	batchMove   key.Binding
	collapse    key.Binding
	search      key.Binding
}

// newKeyMap constructs key map. Configured drag keys override the defaults;
// blank entries keep them.
func newKeyMap(cfg config.KeyConfig) keyMap {
	lift := configuredKey(cfg.LiftTask, " ")
	liftHelp := lift
	if lift == " " {
		liftHelp = "space"
	}
	liftColumn := configuredKey(cfg.LiftColumn, "C")
	drop := configuredKey(cfg.DropTask, "enter")
	cancel := configuredKey(cfg.CancelDrag, "esc")
	multi := configuredKey(cfg.MultiSelect, "v")
	collapse := configuredKey(cfg.Collapse, "-")
	search := configuredKey(cfg.Search, "/")

	return keyMap{
		quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:    key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		nextBoard:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next board")),
		liftTask:    key.NewBinding(key.WithKeys(lift), key.WithHelp(liftHelp, "lift task")),
		liftColumn:  key.NewBinding(key.WithKeys(liftColumn), key.WithHelp(liftColumn, "lift column")),
		dropTask:    key.NewBinding(key.WithKeys(drop), key.WithHelp(drop, "drop")),
		cancelDrag:  key.NewBinding(key.WithKeys(cancel), key.WithHelp(cancel, "cancel")),
		addTask:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		taskInfo:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "task info")),
		deleteTask:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		restoreTask: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "restore last")),
		yankTask:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy task")),
		multiSelect: key.NewBinding(key.WithKeys(multi), key.WithHelp(multi, "select")),
		batchMove:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move selected here")),
		collapse:    key.NewBinding(key.WithKeys(collapse), key.WithHelp(collapse, "collapse column")),
		search:      key.NewBinding(key.WithKeys(search), key.WithHelp(search, "search")),
	}
}

// configuredKey trims one configured key and falls back when it is blank.
// A single space is a valid binding and survives the trim check.
func configuredKey(configured, fallback string) string {
	if configured == " " {
		return configured
	}
	if strings.TrimSpace(configured) == "" {
		return fallback
	}
	return configured
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.liftTask, k.dropTask, k.addTask, k.taskInfo, k.search, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown, k.nextBoard},
		{k.liftTask, k.liftColumn, k.dropTask, k.cancelDrag, k.collapse},
		{k.addTask, k.taskInfo, k.deleteTask, k.restoreTask, k.yankTask},
		{k.multiSelect, k.batchMove, k.search, k.reload, k.toggleHelp, k.quit},
	}
}
