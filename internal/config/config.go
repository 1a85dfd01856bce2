package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type DeleteMode string

const (
	DeleteModeArchive DeleteMode = "archive"
	DeleteModeHard    DeleteMode = "hard"
)

type Config struct {
	Database   DatabaseConfig   `toml:"database"`
	Delete     DeleteConfig     `toml:"delete"`
	TaskFields TaskFieldsConfig `toml:"task_fields"`
	Board      BoardConfig      `toml:"board"`
	Server     ServerConfig     `toml:"server"`
	Keys       KeyConfig        `toml:"keys"`
	Logging    LoggingConfig    `toml:"logging"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type DeleteConfig struct {
	DefaultMode DeleteMode `toml:"default_mode"`
}

type TaskFieldsConfig struct {
	ShowPriority    bool `toml:"show_priority"`
	ShowDueDate     bool `toml:"show_due_date"`
	ShowAssignee    bool `toml:"show_assignee"`
	ShowPoints      bool `toml:"show_points"`
	ShowDescription bool `toml:"show_description"`
}

type BoardConfig struct {
	Columns         []ColumnConfig `toml:"columns"`
	ShowWIPWarnings bool           `toml:"show_wip_warnings"`
	MouseDrag       bool           `toml:"mouse_drag"`
}

type ColumnConfig struct {
	Status   string `toml:"status"`
	Name     string `toml:"name"`
	WIPLimit int    `toml:"wip_limit"`
	Position int    `toml:"position"`
}

type ServerConfig struct {
	HTTPAddr  string `toml:"http_addr"`
	EnableMCP bool   `toml:"enable_mcp"`
}

type KeyConfig struct {
	LiftTask    string `toml:"lift_task"`
	LiftColumn  string `toml:"lift_column"`
	DropTask    string `toml:"drop_task"`
	CancelDrag  string `toml:"cancel_drag"`
	MultiSelect string `toml:"multi_select"`
	Collapse    string `toml:"collapse"`
	Search      string `toml:"search"`
}

func defaultColumns() []ColumnConfig {
	return []ColumnConfig{
		{Status: "todo", Name: "To Do", WIPLimit: 0, Position: 1},
		{Status: "progress", Name: "In Progress", WIPLimit: 0, Position: 2},
		{Status: "done", Name: "Done", WIPLimit: 0, Position: 3},
	}
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Delete: DeleteConfig{
			DefaultMode: DeleteModeArchive,
		},
		TaskFields: TaskFieldsConfig{
			ShowPriority:    true,
			ShowDueDate:     true,
			ShowAssignee:    true,
			ShowPoints:      false,
			ShowDescription: false,
		},
		Board: BoardConfig{
			Columns:         defaultColumns(),
			ShowWIPWarnings: true,
			MouseDrag:       true,
		},
		Server: ServerConfig{
			HTTPAddr:  "127.0.0.1:8129",
			EnableMCP: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     "",
			},
		},
		Keys: KeyConfig{
			LiftTask:    " ",
			LiftColumn:  "C",
			DropTask:    "enter",
			CancelDrag:  "esc",
			MultiSelect: "v",
			Collapse:    "-",
			Search:      "/",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	switch c.Delete.DefaultMode {
	case DeleteModeArchive, DeleteModeHard:
	default:
		return fmt.Errorf("invalid delete.default_mode: %q", c.Delete.DefaultMode)
	}

	if len(c.Board.Columns) == 0 {
		return errors.New("board.columns must include at least one column")
	}
	seenStatus := map[string]struct{}{}
	for idx := range c.Board.Columns {
		column := c.Board.Columns[idx]
		column.Status = strings.TrimSpace(strings.ToLower(column.Status))
		column.Name = strings.TrimSpace(column.Name)
		if column.Status == "" {
			return fmt.Errorf("board.columns[%d].status is required", idx)
		}
		if column.Name == "" {
			return fmt.Errorf("board.columns[%d].name is required", idx)
		}
		if column.WIPLimit < 0 {
			return fmt.Errorf("board.columns[%d].wip_limit must be >= 0", idx)
		}
		if column.Position < 0 {
			return fmt.Errorf("board.columns[%d].position must be >= 0", idx)
		}
		if _, ok := seenStatus[column.Status]; ok {
			return fmt.Errorf("board.columns[%d].status is duplicated: %s", idx, column.Status)
		}
		seenStatus[column.Status] = struct{}{}
		c.Board.Columns[idx] = column
	}

	if strings.TrimSpace(c.Server.HTTPAddr) == "" {
		return errors.New("server.http_addr is required")
	}

	if strings.TrimSpace(c.Logging.Level) == "" {
		return errors.New("logging.level is required")
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
