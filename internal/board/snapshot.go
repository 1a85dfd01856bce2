// Package board holds the in-memory view model of one kanban board and the
// pure reordering logic applied to it: position assignment, move validation,
// and optimistic update with rollback.
package board

import (
	"slices"
	"strings"

	"github.com/hylla/tavla/internal/domain"
)

// ColumnView is one column plus its tasks ordered by BoardPosition.
type ColumnView struct {
	Column domain.Column
	Tasks  []domain.Task
}

// Snapshot is the full view model for one board. Columns are ordered by
// Position; every task lives in exactly one column and task positions are
// dense from 1 within each column.
type Snapshot struct {
	Board   domain.Board
	Columns []ColumnView
}

// BuildSnapshot assembles a normalized view model from persisted rows.
// Stored data may carry duplicate or missing positions (legacy rows,
// concurrent writers); ordering is re-derived with the stable tie-break
// position-then-id and renumbered densely from 1. Tasks whose status matches
// no column are folded into the first column so the snapshot always
// partitions the board's task set; the next reload from the server remains
// authoritative.
func BuildSnapshot(b domain.Board, columns []domain.Column, tasks []domain.Task) Snapshot {
	cols := append([]domain.Column(nil), columns...)
	slices.SortFunc(cols, func(a, b domain.Column) int {
		if a.Position == b.Position {
			return strings.Compare(a.ID, b.ID)
		}
		return a.Position - b.Position
	})

	snapshot := Snapshot{Board: b, Columns: make([]ColumnView, 0, len(cols))}
	byStatus := make(map[domain.Status]int, len(cols))
	for idx := range cols {
		cols[idx].Position = idx + 1
		snapshot.Columns = append(snapshot.Columns, ColumnView{Column: cols[idx]})
		if _, ok := byStatus[cols[idx].Status]; !ok {
			byStatus[cols[idx].Status] = idx
		}
	}

	sorted := append([]domain.Task(nil), tasks...)
	slices.SortFunc(sorted, func(a, b domain.Task) int {
		if a.BoardPosition == b.BoardPosition {
			return strings.Compare(a.ID, b.ID)
		}
		return a.BoardPosition - b.BoardPosition
	})
	for _, task := range sorted {
		idx, ok := byStatus[task.Status]
		if !ok {
			if len(snapshot.Columns) == 0 {
				continue
			}
			idx = 0
			task.Status = snapshot.Columns[0].Column.Status
		}
		snapshot.Columns[idx].Tasks = append(snapshot.Columns[idx].Tasks, task)
	}
	for idx := range snapshot.Columns {
		renumberTasks(&snapshot.Columns[idx])
	}
	return snapshot
}

// Clone deep-copies the snapshot so optimistic mutation never aliases the
// rollback copy.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Board: s.Board, Columns: make([]ColumnView, len(s.Columns))}
	for idx, col := range s.Columns {
		out.Columns[idx] = ColumnView{
			Column: col.Column,
			Tasks:  append([]domain.Task(nil), col.Tasks...),
		}
	}
	return out
}

// ColumnIndexByStatus reports the column holding the given status.
func (s Snapshot) ColumnIndexByStatus(status domain.Status) (int, bool) {
	for idx, col := range s.Columns {
		if col.Column.Status == status {
			return idx, true
		}
	}
	return 0, false
}

// ColumnIndexByID reports the column with the given id.
func (s Snapshot) ColumnIndexByID(columnID string) (int, bool) {
	for idx, col := range s.Columns {
		if col.Column.ID == columnID {
			return idx, true
		}
	}
	return 0, false
}

// TaskLocation reports the column and task indexes for a task id.
func (s Snapshot) TaskLocation(taskID string) (colIdx, taskIdx int, ok bool) {
	for ci, col := range s.Columns {
		for ti, task := range col.Tasks {
			if task.ID == taskID {
				return ci, ti, true
			}
		}
	}
	return 0, 0, false
}

// TaskByID returns the task with the given id.
func (s Snapshot) TaskByID(taskID string) (domain.Task, bool) {
	ci, ti, ok := s.TaskLocation(taskID)
	if !ok {
		return domain.Task{}, false
	}
	return s.Columns[ci].Tasks[ti], true
}

// TaskCount reports the total number of tasks across all columns.
func (s Snapshot) TaskCount() int {
	total := 0
	for _, col := range s.Columns {
		total += len(col.Tasks)
	}
	return total
}
