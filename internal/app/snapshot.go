package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hylla/tavla/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "tavla.snapshot.v1"

// Snapshot represents snapshot data used by this package.
type Snapshot struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Boards     []SnapshotBoard  `json:"boards"`
	Columns    []SnapshotColumn `json:"columns"`
	Tasks      []SnapshotTask   `json:"tasks"`
}

// SnapshotBoard represents snapshot board data used by this package.
type SnapshotBoard struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
}

// SnapshotColumn represents snapshot column data used by this package.
type SnapshotColumn struct {
	ID         string     `json:"id"`
	BoardID    string     `json:"board_id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	WIPLimit   int        `json:"wip_limit"`
	Position   int        `json:"position"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
}

// SnapshotTask represents snapshot task data used by this package.
type SnapshotTask struct {
	ID            string     `json:"id"`
	BoardID       string     `json:"board_id"`
	Status        string     `json:"status"`
	BoardPosition int        `json:"board_position"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Priority      string     `json:"priority"`
	DueAt         *time.Time `json:"due_at,omitempty"`
	Assignee      string     `json:"assignee,omitempty"`
	Points        int        `json:"points,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ArchivedAt    *time.Time `json:"archived_at,omitempty"`
}

// ExportSnapshot exports every board with its columns and tasks.
func (s *Service) ExportSnapshot(ctx context.Context, includeArchived bool) (Snapshot, error) {
	boards, err := s.repo.ListBoards(ctx, includeArchived)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Boards:     make([]SnapshotBoard, 0, len(boards)),
		Columns:    make([]SnapshotColumn, 0),
		Tasks:      make([]SnapshotTask, 0),
	}
	for _, b := range boards {
		snap.Boards = append(snap.Boards, snapshotBoardFromDomain(b))

		columns, listErr := s.repo.ListColumns(ctx, b.ID, includeArchived)
		if listErr != nil {
			return Snapshot{}, listErr
		}
		for _, column := range columns {
			snap.Columns = append(snap.Columns, snapshotColumnFromDomain(column))
		}

		tasks, listErr := s.repo.ListTasks(ctx, b.ID, includeArchived)
		if listErr != nil {
			return Snapshot{}, listErr
		}
		for _, task := range tasks {
			snap.Tasks = append(snap.Tasks, snapshotTaskFromDomain(task))
		}
	}

	snap.sort()
	return snap, nil
}

// ImportSnapshot handles import snapshot. Existing rows with matching IDs
// are updated in place; everything else is created.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	snap.sort()

	for _, b := range snap.Boards {
		db := b.toDomain()
		if _, err := s.repo.GetBoard(ctx, db.ID); err == nil {
			if err := s.repo.UpdateBoard(ctx, db); err != nil {
				return err
			}
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := s.repo.CreateBoard(ctx, db); err != nil {
			return err
		}
	}

	existingColumnsByBoard := map[string]map[string]struct{}{}
	for _, b := range snap.Boards {
		columns, err := s.repo.ListColumns(ctx, b.ID, true)
		if err != nil {
			return err
		}
		byID := map[string]struct{}{}
		for _, column := range columns {
			byID[column.ID] = struct{}{}
		}
		existingColumnsByBoard[b.ID] = byID
	}

	for _, column := range snap.Columns {
		dc := column.toDomain()
		if _, ok := existingColumnsByBoard[dc.BoardID][dc.ID]; ok {
			if err := s.repo.UpdateColumn(ctx, dc); err != nil {
				return err
			}
			continue
		}
		if err := s.repo.CreateColumn(ctx, dc); err != nil {
			return err
		}
		if existingColumnsByBoard[dc.BoardID] == nil {
			existingColumnsByBoard[dc.BoardID] = map[string]struct{}{}
		}
		existingColumnsByBoard[dc.BoardID][dc.ID] = struct{}{}
	}

	for _, task := range snap.Tasks {
		dt := task.toDomain()
		if _, err := s.repo.GetTask(ctx, dt.ID); err == nil {
			if err := s.repo.UpdateTask(ctx, dt); err != nil {
				return err
			}
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := s.repo.CreateTask(ctx, dt); err != nil {
			return err
		}
	}

	return nil
}

// Validate validates the requested operation.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %q", s.Version)
	}

	boardIDs := map[string]struct{}{}
	for i, b := range s.Boards {
		if strings.TrimSpace(b.ID) == "" {
			return fmt.Errorf("board %d: missing id", i)
		}
		if strings.TrimSpace(b.Name) == "" {
			return fmt.Errorf("board %s: missing name", b.ID)
		}
		if _, ok := boardIDs[b.ID]; ok {
			return fmt.Errorf("board %s: duplicate id", b.ID)
		}
		boardIDs[b.ID] = struct{}{}
	}

	columnIDs := map[string]struct{}{}
	for i, c := range s.Columns {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("column %d: missing id", i)
		}
		if _, ok := boardIDs[c.BoardID]; !ok {
			return fmt.Errorf("column %s: unknown board %q", c.ID, c.BoardID)
		}
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("column %s: missing name", c.ID)
		}
		if _, ok := columnIDs[c.ID]; ok {
			return fmt.Errorf("column %s: duplicate id", c.ID)
		}
		columnIDs[c.ID] = struct{}{}
	}

	taskIDs := map[string]struct{}{}
	for i, t := range s.Tasks {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("task %d: missing id", i)
		}
		if _, ok := boardIDs[t.BoardID]; !ok {
			return fmt.Errorf("task %s: unknown board %q", t.ID, t.BoardID)
		}
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("task %s: missing title", t.ID)
		}
		if _, ok := taskIDs[t.ID]; ok {
			return fmt.Errorf("task %s: duplicate id", t.ID)
		}
		taskIDs[t.ID] = struct{}{}
	}

	return nil
}

// sort orders snapshot rows deterministically so exports diff cleanly.
func (s *Snapshot) sort() {
	slices.SortFunc(s.Boards, func(a, b SnapshotBoard) int {
		return strings.Compare(a.ID, b.ID)
	})
	slices.SortFunc(s.Columns, func(a, b SnapshotColumn) int {
		if a.BoardID == b.BoardID {
			if a.Position == b.Position {
				return strings.Compare(a.ID, b.ID)
			}
			return a.Position - b.Position
		}
		return strings.Compare(a.BoardID, b.BoardID)
	})
	slices.SortFunc(s.Tasks, func(a, b SnapshotTask) int {
		if a.BoardID == b.BoardID {
			if a.Status == b.Status {
				if a.BoardPosition == b.BoardPosition {
					return strings.Compare(a.ID, b.ID)
				}
				return a.BoardPosition - b.BoardPosition
			}
			return strings.Compare(a.Status, b.Status)
		}
		return strings.Compare(a.BoardID, b.BoardID)
	})
}

func snapshotBoardFromDomain(b domain.Board) SnapshotBoard {
	return SnapshotBoard{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		ArchivedAt:  copyTimePtr(b.ArchivedAt),
	}
}

func snapshotColumnFromDomain(c domain.Column) SnapshotColumn {
	return SnapshotColumn{
		ID:         c.ID,
		BoardID:    c.BoardID,
		Name:       c.Name,
		Status:     string(c.Status),
		WIPLimit:   c.WIPLimit,
		Position:   c.Position,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		ArchivedAt: copyTimePtr(c.ArchivedAt),
	}
}

func snapshotTaskFromDomain(t domain.Task) SnapshotTask {
	return SnapshotTask{
		ID:            t.ID,
		BoardID:       t.BoardID,
		Status:        string(t.Status),
		BoardPosition: t.BoardPosition,
		Title:         t.Title,
		Description:   t.Description,
		Priority:      string(t.Priority),
		DueAt:         copyTimePtr(t.DueAt),
		Assignee:      t.Assignee,
		Points:        t.Points,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		ArchivedAt:    copyTimePtr(t.ArchivedAt),
	}
}

func (b SnapshotBoard) toDomain() domain.Board {
	return domain.Board{
		ID:          strings.TrimSpace(b.ID),
		Name:        strings.TrimSpace(b.Name),
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		ArchivedAt:  copyTimePtr(b.ArchivedAt),
	}
}

func (c SnapshotColumn) toDomain() domain.Column {
	status := domain.Status(strings.TrimSpace(strings.ToLower(c.Status)))
	if status == "" {
		status = domain.NormalizeStatus(c.Name)
	}
	return domain.Column{
		ID:         strings.TrimSpace(c.ID),
		BoardID:    strings.TrimSpace(c.BoardID),
		Name:       strings.TrimSpace(c.Name),
		Status:     status,
		WIPLimit:   max(c.WIPLimit, 0),
		Position:   max(c.Position, 1),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		ArchivedAt: copyTimePtr(c.ArchivedAt),
	}
}

func (t SnapshotTask) toDomain() domain.Task {
	priority := domain.Priority(strings.TrimSpace(strings.ToLower(t.Priority)))
	if priority == "" {
		priority = domain.PriorityMedium
	}
	return domain.Task{
		ID:            strings.TrimSpace(t.ID),
		BoardID:       strings.TrimSpace(t.BoardID),
		Status:        domain.Status(strings.TrimSpace(strings.ToLower(t.Status))),
		BoardPosition: max(t.BoardPosition, 1),
		Title:         strings.TrimSpace(t.Title),
		Description:   t.Description,
		Priority:      priority,
		DueAt:         copyTimePtr(t.DueAt),
		Assignee:      strings.TrimSpace(t.Assignee),
		Points:        max(t.Points, 0),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		ArchivedAt:    copyTimePtr(t.ArchivedAt),
	}
}

func copyTimePtr(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	out := *in
	return &out
}
