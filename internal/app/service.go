package app

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hylla/tavla/internal/board"
	"github.com/hylla/tavla/internal/domain"
)

// DeleteMode represents a selectable mode.
type DeleteMode string

// DeleteModeArchive and related constants define package defaults.
const (
	DeleteModeArchive DeleteMode = "archive"
	DeleteModeHard    DeleteMode = "hard"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	DefaultDeleteMode      DeleteMode
	ColumnTemplates        []ColumnTemplate
	AutoCreateBoardColumns bool
}

// ColumnTemplate represents column template data used by this package.
type ColumnTemplate struct {
	Status   string
	Name     string
	WIPLimit int
	Position int
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Service represents service data used by this package.
type Service struct {
	repo              Repository
	idGen             IDGenerator
	clock             Clock
	defaultDeleteMode DeleteMode
	columnTemplates   []ColumnTemplate
	autoBoardCols     bool
}

// NewService constructs a new value for this package.
func NewService(repo Repository, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.DefaultDeleteMode == "" {
		cfg.DefaultDeleteMode = DeleteModeArchive
	}
	templates := sanitizeColumnTemplates(cfg.ColumnTemplates)
	if len(templates) == 0 {
		templates = defaultColumnTemplates()
	}

	return &Service{
		repo:              repo,
		idGen:             idGen,
		clock:             clock,
		defaultDeleteMode: cfg.DefaultDeleteMode,
		columnTemplates:   templates,
		autoBoardCols:     cfg.AutoCreateBoardColumns,
	}
}

// EnsureDefaultBoard ensures default board.
func (s *Service) EnsureDefaultBoard(ctx context.Context) (domain.Board, error) {
	boards, err := s.repo.ListBoards(ctx, false)
	if err != nil {
		return domain.Board{}, err
	}
	if len(boards) > 0 {
		return boards[0], nil
	}

	now := s.clock()
	b, err := domain.NewBoard(s.idGen(), "Inbox", "Default board", now)
	if err != nil {
		return domain.Board{}, err
	}
	if err := s.repo.CreateBoard(ctx, b); err != nil {
		return domain.Board{}, err
	}
	if err := s.createDefaultColumns(ctx, b.ID, now); err != nil {
		return domain.Board{}, err
	}
	return b, nil
}

// CreateBoard creates board.
func (s *Service) CreateBoard(ctx context.Context, name, description string) (domain.Board, error) {
	b, err := domain.NewBoard(s.idGen(), name, description, s.clock())
	if err != nil {
		return domain.Board{}, err
	}
	if err := s.repo.CreateBoard(ctx, b); err != nil {
		return domain.Board{}, err
	}
	if s.autoBoardCols {
		if err := s.createDefaultColumns(ctx, b.ID, b.CreatedAt); err != nil {
			return domain.Board{}, err
		}
	}
	return b, nil
}

// RenameBoard renames board.
func (s *Service) RenameBoard(ctx context.Context, boardID, name string) (domain.Board, error) {
	b, err := s.repo.GetBoard(ctx, boardID)
	if err != nil {
		return domain.Board{}, err
	}
	if err := b.Rename(name, s.clock()); err != nil {
		return domain.Board{}, err
	}
	if err := s.repo.UpdateBoard(ctx, b); err != nil {
		return domain.Board{}, err
	}
	return b, nil
}

// ArchiveBoard archives board.
func (s *Service) ArchiveBoard(ctx context.Context, boardID string) error {
	b, err := s.repo.GetBoard(ctx, boardID)
	if err != nil {
		return err
	}
	b.Archive(s.clock())
	return s.repo.UpdateBoard(ctx, b)
}

// ListBoards lists boards.
func (s *Service) ListBoards(ctx context.Context, includeArchived bool) ([]domain.Board, error) {
	boards, err := s.repo.ListBoards(ctx, includeArchived)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(boards, func(a, b domain.Board) int {
		return strings.Compare(a.Name, b.Name)
	})
	return boards, nil
}

// BoardView loads one board with its columns and tasks as a consistent,
// densely renumbered view. Every client reload goes through here; its
// ordering is the authoritative one.
func (s *Service) BoardView(ctx context.Context, boardID string) (board.Snapshot, error) {
	b, err := s.repo.GetBoard(ctx, boardID)
	if err != nil {
		return board.Snapshot{}, err
	}
	columns, err := s.repo.ListColumns(ctx, boardID, false)
	if err != nil {
		return board.Snapshot{}, err
	}
	tasks, err := s.repo.ListTasks(ctx, boardID, false)
	if err != nil {
		return board.Snapshot{}, err
	}
	return board.BuildSnapshot(b, columns, tasks), nil
}

// CreateColumn creates column at the end of the board.
func (s *Service) CreateColumn(ctx context.Context, boardID, name string, wipLimit int) (domain.Column, error) {
	columns, err := s.repo.ListColumns(ctx, boardID, false)
	if err != nil {
		return domain.Column{}, err
	}
	status := domain.NormalizeStatus(name)
	for _, existing := range columns {
		if existing.Status == status {
			return domain.Column{}, fmt.Errorf("%w: %q", ErrStatusInUse, status)
		}
	}
	column, err := domain.NewColumn(s.idGen(), boardID, name, status, len(columns)+1, wipLimit, s.clock())
	if err != nil {
		return domain.Column{}, err
	}
	if err := s.repo.CreateColumn(ctx, column); err != nil {
		return domain.Column{}, err
	}
	return column, nil
}

// RenameColumn renames column. The column's status tag is stable; renaming
// never re-derives it, so tasks keep their bucket.
func (s *Service) RenameColumn(ctx context.Context, boardID, columnID, name string) (domain.Column, error) {
	column, err := s.findColumn(ctx, boardID, columnID)
	if err != nil {
		return domain.Column{}, err
	}
	if err := column.Rename(name, s.clock()); err != nil {
		return domain.Column{}, err
	}
	if err := s.repo.UpdateColumn(ctx, column); err != nil {
		return domain.Column{}, err
	}
	return column, nil
}

// SetColumnWIPLimit sets column WIP limit. Tightening a limit below the
// current task count is legal; existing tasks stay, new entries are refused.
func (s *Service) SetColumnWIPLimit(ctx context.Context, boardID, columnID string, limit int) (domain.Column, error) {
	column, err := s.findColumn(ctx, boardID, columnID)
	if err != nil {
		return domain.Column{}, err
	}
	if err := column.SetWIPLimit(limit, s.clock()); err != nil {
		return domain.Column{}, err
	}
	if err := s.repo.UpdateColumn(ctx, column); err != nil {
		return domain.Column{}, err
	}
	return column, nil
}

// ReorderColumns persists a full column permutation for one board. Partial
// orders are refused so a stale client cannot silently drop a column.
func (s *Service) ReorderColumns(ctx context.Context, boardID string, orderedIDs []string) error {
	columns, err := s.repo.ListColumns(ctx, boardID, false)
	if err != nil {
		return err
	}
	if len(orderedIDs) != len(columns) {
		return ErrBadColumnOrder
	}
	byID := make(map[string]domain.Column, len(columns))
	for _, column := range columns {
		byID[column.ID] = column
	}
	now := s.clock()
	seen := make(map[string]struct{}, len(orderedIDs))
	for idx, columnID := range orderedIDs {
		column, ok := byID[columnID]
		if !ok {
			return fmt.Errorf("%w: unknown column %s", ErrBadColumnOrder, columnID)
		}
		if _, dup := seen[columnID]; dup {
			return fmt.Errorf("%w: duplicate column %s", ErrBadColumnOrder, columnID)
		}
		seen[columnID] = struct{}{}
		if column.Position == idx+1 {
			continue
		}
		if err := column.SetPosition(idx+1, now); err != nil {
			return err
		}
		if err := s.repo.UpdateColumn(ctx, column); err != nil {
			return err
		}
	}
	return nil
}

// DeleteColumn deletes column. A column still holding tasks is refused;
// the remaining columns are renumbered to close the gap.
func (s *Service) DeleteColumn(ctx context.Context, boardID, columnID string) error {
	snap, err := s.BoardView(ctx, boardID)
	if err != nil {
		return err
	}
	if verdict := board.ValidateColumnDelete(snap, columnID); !verdict.Valid {
		if _, ok := snap.ColumnIndexByID(columnID); !ok {
			return fmt.Errorf("%w: column %s", ErrNotFound, columnID)
		}
		return fmt.Errorf("%w: %s", domain.ErrColumnNotEmpty, verdict.Reason)
	}
	if err := s.repo.DeleteColumn(ctx, columnID); err != nil {
		return err
	}

	now := s.clock()
	position := 0
	for _, col := range snap.Columns {
		if col.Column.ID == columnID {
			continue
		}
		position++
		if col.Column.Position == position {
			continue
		}
		column := col.Column
		if err := column.SetPosition(position, now); err != nil {
			return err
		}
		if err := s.repo.UpdateColumn(ctx, column); err != nil {
			return err
		}
	}
	return nil
}

// ListColumns lists columns.
func (s *Service) ListColumns(ctx context.Context, boardID string, includeArchived bool) ([]domain.Column, error) {
	columns, err := s.repo.ListColumns(ctx, boardID, includeArchived)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(columns, func(a, b domain.Column) int {
		if a.Position == b.Position {
			return strings.Compare(a.ID, b.ID)
		}
		return a.Position - b.Position
	})
	return columns, nil
}

// CreateTaskInput holds input values for create task operations.
type CreateTaskInput struct {
	BoardID     string
	Status      domain.Status
	Title       string
	Description string
	Priority    domain.Priority
	DueAt       *time.Time
	Assignee    string
	Points      int
}

// CreateTask creates task at the end of its column.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (domain.Task, error) {
	snap, err := s.BoardView(ctx, in.BoardID)
	if err != nil {
		return domain.Task{}, err
	}
	colIdx, ok := snap.ColumnIndexByStatus(in.Status)
	if !ok {
		return domain.Task{}, fmt.Errorf("%w: no column accepts status %q", ErrNotFound, in.Status)
	}
	target := snap.Columns[colIdx]
	if !target.Column.HasCapacity(len(target.Tasks)) {
		return domain.Task{}, fmt.Errorf("%w: %s (%d)", domain.ErrWIPLimitReached, target.Column.Name, target.Column.WIPLimit)
	}

	task, err := domain.NewTask(domain.TaskInput{
		ID:            s.idGen(),
		BoardID:       in.BoardID,
		Status:        in.Status,
		BoardPosition: len(target.Tasks) + 1,
		Title:         in.Title,
		Description:   in.Description,
		Priority:      in.Priority,
		DueAt:         in.DueAt,
		Assignee:      in.Assignee,
		Points:        in.Points,
	}, s.clock())
	if err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// MoveTask moves task to a 1-based position inside the column tagged
// toStatus, renumbering both affected columns densely. The target position
// is clamped to the column's bounds. Cross-column moves respect the
// target's WIP limit; reorders within the task's own column do not.
func (s *Service) MoveTask(ctx context.Context, taskID string, toStatus domain.Status, position int) (domain.Task, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	snap, err := s.BoardView(ctx, task.BoardID)
	if err != nil {
		return domain.Task{}, err
	}
	colIdx, ok := snap.ColumnIndexByStatus(toStatus)
	if !ok {
		return domain.Task{}, fmt.Errorf("%w: no column accepts status %q", ErrNotFound, toStatus)
	}
	if task.Status != toStatus {
		target := snap.Columns[colIdx]
		if !target.Column.HasCapacity(len(target.Tasks)) {
			return domain.Task{}, fmt.Errorf("%w: %s (%d)", domain.ErrWIPLimitReached, target.Column.Name, target.Column.WIPLimit)
		}
	}

	before := tasksByID(snap)
	if err := snap.MoveTask(taskID, toStatus, position-1, s.clock()); err != nil {
		return domain.Task{}, err
	}
	if err := s.persistTaskDiff(ctx, before, snap); err != nil {
		return domain.Task{}, err
	}
	moved, _ := snap.TaskByID(taskID)
	return moved, nil
}

// UpdateTaskInput holds input values for update task operations.
type UpdateTaskInput struct {
	TaskID      string
	Title       string
	Description string
	Priority    domain.Priority
	DueAt       *time.Time
	Assignee    string
	Points      int
}

// UpdateTask updates state for the requested operation.
func (s *Service) UpdateTask(ctx context.Context, in UpdateTaskInput) (domain.Task, error) {
	task, err := s.repo.GetTask(ctx, in.TaskID)
	if err != nil {
		return domain.Task{}, err
	}
	if err := task.UpdateDetails(in.Title, in.Description, in.Priority, in.DueAt, in.Assignee, in.Points, s.clock()); err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// DeleteTask deletes task and closes the position gap it leaves behind.
func (s *Service) DeleteTask(ctx context.Context, taskID string, mode DeleteMode) error {
	if mode == "" {
		mode = s.defaultDeleteMode
	}

	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	now := s.clock()
	switch mode {
	case DeleteModeArchive:
		task.Archive(now)
		if err := s.repo.UpdateTask(ctx, task); err != nil {
			return err
		}
	case DeleteModeHard:
		if err := s.repo.DeleteTask(ctx, taskID); err != nil {
			return err
		}
	default:
		return ErrInvalidDeleteMode
	}
	return s.renumberBoard(ctx, task.BoardID)
}

// RestoreTask restores task at the end of its column.
func (s *Service) RestoreTask(ctx context.Context, taskID string) (domain.Task, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	snap, err := s.BoardView(ctx, task.BoardID)
	if err != nil {
		return domain.Task{}, err
	}
	now := s.clock()
	task.Restore(now)
	position := 1
	if idx, ok := snap.ColumnIndexByStatus(task.Status); ok {
		position = len(snap.Columns[idx].Tasks) + 1
	}
	if err := task.Move(task.Status, position, now); err != nil {
		return domain.Task{}, err
	}
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// ListTasks lists tasks.
func (s *Service) ListTasks(ctx context.Context, boardID string, includeArchived bool) ([]domain.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, boardID, includeArchived)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(tasks, func(a, b domain.Task) int {
		if a.Status == b.Status {
			if a.BoardPosition == b.BoardPosition {
				return strings.Compare(a.ID, b.ID)
			}
			return a.BoardPosition - b.BoardPosition
		}
		return strings.Compare(string(a.Status), string(b.Status))
	})
	return tasks, nil
}

// SearchTasks finds tasks whose title, description, or assignee contains
// the query, case-insensitively.
func (s *Service) SearchTasks(ctx context.Context, boardID, query string) ([]domain.Task, error) {
	tasks, err := s.ListTasks(ctx, boardID, false)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return tasks, nil
	}
	out := make([]domain.Task, 0)
	for _, task := range tasks {
		if strings.Contains(strings.ToLower(task.Title), query) ||
			strings.Contains(strings.ToLower(task.Description), query) ||
			strings.Contains(strings.ToLower(task.Assignee), query) {
			out = append(out, task)
		}
	}
	return out, nil
}

// findColumn resolves one column on a board.
func (s *Service) findColumn(ctx context.Context, boardID, columnID string) (domain.Column, error) {
	columns, err := s.repo.ListColumns(ctx, boardID, true)
	if err != nil {
		return domain.Column{}, err
	}
	for _, column := range columns {
		if column.ID == columnID {
			return column, nil
		}
	}
	return domain.Column{}, fmt.Errorf("%w: column %s", ErrNotFound, columnID)
}

// renumberBoard rebuilds the board view and persists any task whose dense
// position or status changed in the rebuild.
func (s *Service) renumberBoard(ctx context.Context, boardID string) error {
	tasks, err := s.repo.ListTasks(ctx, boardID, false)
	if err != nil {
		return err
	}
	before := make(map[string]domain.Task, len(tasks))
	for _, task := range tasks {
		before[task.ID] = task
	}
	snap, err := s.BoardView(ctx, boardID)
	if err != nil {
		return err
	}
	return s.persistTaskDiff(ctx, before, snap)
}

// persistTaskDiff writes every task whose status or position differs from
// the before set.
func (s *Service) persistTaskDiff(ctx context.Context, before map[string]domain.Task, snap board.Snapshot) error {
	for _, col := range snap.Columns {
		for _, task := range col.Tasks {
			prev, ok := before[task.ID]
			if ok && prev.Status == task.Status && prev.BoardPosition == task.BoardPosition {
				continue
			}
			if err := s.repo.UpdateTask(ctx, task); err != nil {
				return err
			}
		}
	}
	return nil
}

// tasksByID flattens a snapshot into a task lookup.
func tasksByID(snap board.Snapshot) map[string]domain.Task {
	out := make(map[string]domain.Task, snap.TaskCount())
	for _, col := range snap.Columns {
		for _, task := range col.Tasks {
			out[task.ID] = task
		}
	}
	return out
}

// createDefaultColumns creates default columns.
func (s *Service) createDefaultColumns(ctx context.Context, boardID string, now time.Time) error {
	for idx, tmpl := range s.columnTemplates {
		position := tmpl.Position
		if position < 1 {
			position = idx + 1
		}
		column, err := domain.NewColumn(s.idGen(), boardID, tmpl.Name, domain.Status(tmpl.Status), position, tmpl.WIPLimit, now)
		if err != nil {
			return fmt.Errorf("create default column %q: %w", tmpl.Name, err)
		}
		if err := s.repo.CreateColumn(ctx, column); err != nil {
			return fmt.Errorf("persist default column %q: %w", tmpl.Name, err)
		}
	}
	return nil
}

// defaultColumnTemplates returns default column templates.
func defaultColumnTemplates() []ColumnTemplate {
	return []ColumnTemplate{
		{Status: "todo", Name: "To Do", WIPLimit: 0, Position: 1},
		{Status: "progress", Name: "In Progress", WIPLimit: 0, Position: 2},
		{Status: "done", Name: "Done", WIPLimit: 0, Position: 3},
	}
}

// sanitizeColumnTemplates handles sanitize column templates.
func sanitizeColumnTemplates(in []ColumnTemplate) []ColumnTemplate {
	if len(in) == 0 {
		return nil
	}
	out := make([]ColumnTemplate, 0, len(in))
	seen := map[string]struct{}{}
	for idx, tmpl := range in {
		tmpl.Name = strings.TrimSpace(tmpl.Name)
		tmpl.Status = strings.TrimSpace(strings.ToLower(tmpl.Status))
		if tmpl.Name == "" {
			continue
		}
		if tmpl.Status == "" {
			tmpl.Status = string(domain.NormalizeStatus(tmpl.Name))
		}
		if _, ok := seen[tmpl.Status]; ok {
			continue
		}
		seen[tmpl.Status] = struct{}{}
		if tmpl.Position < 1 {
			tmpl.Position = idx + 1
		}
		if tmpl.WIPLimit < 0 {
			tmpl.WIPLimit = 0
		}
		out = append(out, tmpl)
	}
	slices.SortFunc(out, func(a, b ColumnTemplate) int {
		if a.Position == b.Position {
			return strings.Compare(a.Status, b.Status)
		}
		return a.Position - b.Position
	})
	return out
}
