package board

import (
	"errors"
	"slices"
	"time"

	"github.com/hylla/tavla/internal/domain"
)

// ErrUnknownTask and related errors describe reorder failures.
var (
	ErrUnknownTask   = errors.New("unknown task")
	ErrUnknownColumn = errors.New("unknown column")
)

// MoveTask relocates a task to toIndex (0-based insertion slot) in the
// column tagged toStatus, then renumbers the affected columns densely from 1.
// Array move semantics: the subject is removed from its slot and reinserted,
// never swapped. A same-column move only touches that column; a cross-column
// move closes the origin gap and opens the target gap.
func (s *Snapshot) MoveTask(taskID string, toStatus domain.Status, toIndex int, now time.Time) error {
	fromCol, fromIdx, ok := s.TaskLocation(taskID)
	if !ok {
		return ErrUnknownTask
	}
	toCol, ok := s.ColumnIndexByStatus(toStatus)
	if !ok {
		return ErrUnknownColumn
	}

	task := s.Columns[fromCol].Tasks[fromIdx]
	if fromCol == toCol {
		tasks := s.Columns[fromCol].Tasks
		toIndex = clampIndex(toIndex, len(tasks)-1)
		if toIndex == fromIdx {
			return nil
		}
		tasks = slices.Delete(tasks, fromIdx, fromIdx+1)
		tasks = slices.Insert(tasks, toIndex, task)
		s.Columns[fromCol].Tasks = tasks
		renumberTasksAt(&s.Columns[fromCol], now)
		return nil
	}

	if err := task.Move(toStatus, 1, now); err != nil {
		return err
	}
	s.Columns[fromCol].Tasks = slices.Delete(s.Columns[fromCol].Tasks, fromIdx, fromIdx+1)
	toIndex = clampIndex(toIndex, len(s.Columns[toCol].Tasks))
	s.Columns[toCol].Tasks = slices.Insert(s.Columns[toCol].Tasks, toIndex, task)
	renumberTasksAt(&s.Columns[fromCol], now)
	renumberTasksAt(&s.Columns[toCol], now)
	return nil
}

// MoveColumn relocates a column to toIndex (0-based) and renumbers column
// positions densely from 1.
func (s *Snapshot) MoveColumn(columnID string, toIndex int, now time.Time) error {
	fromIdx, ok := s.ColumnIndexByID(columnID)
	if !ok {
		return ErrUnknownColumn
	}
	toIndex = clampIndex(toIndex, len(s.Columns)-1)
	if toIndex == fromIdx {
		return nil
	}
	col := s.Columns[fromIdx]
	s.Columns = slices.Delete(s.Columns, fromIdx, fromIdx+1)
	s.Columns = slices.Insert(s.Columns, toIndex, col)
	for idx := range s.Columns {
		if s.Columns[idx].Column.Position != idx+1 {
			s.Columns[idx].Column.Position = idx + 1
			s.Columns[idx].Column.UpdatedAt = now.UTC()
		}
	}
	return nil
}

// RemoveTask drops a task from the snapshot and closes the position gap.
func (s *Snapshot) RemoveTask(taskID string, now time.Time) error {
	fromCol, fromIdx, ok := s.TaskLocation(taskID)
	if !ok {
		return ErrUnknownTask
	}
	s.Columns[fromCol].Tasks = slices.Delete(s.Columns[fromCol].Tasks, fromIdx, fromIdx+1)
	renumberTasksAt(&s.Columns[fromCol], now)
	return nil
}

// IsNoopTaskMove reports whether dropping the task at the given slot would
// leave the board unchanged. Callers skip both renumbering and the network
// call for no-op drops.
func (s Snapshot) IsNoopTaskMove(taskID string, toStatus domain.Status, toIndex int) bool {
	fromCol, fromIdx, ok := s.TaskLocation(taskID)
	if !ok {
		return false
	}
	toCol, ok := s.ColumnIndexByStatus(toStatus)
	if !ok || fromCol != toCol {
		return false
	}
	return clampIndex(toIndex, len(s.Columns[fromCol].Tasks)-1) == fromIdx
}

// renumberTasks reassigns BoardPosition = index+1 without touching UpdatedAt.
func renumberTasks(col *ColumnView) {
	for idx := range col.Tasks {
		col.Tasks[idx].BoardPosition = idx + 1
	}
}

// renumberTasksAt reassigns BoardPosition = index+1, stamping tasks whose
// position actually changed.
func renumberTasksAt(col *ColumnView, now time.Time) {
	for idx := range col.Tasks {
		want := idx + 1
		if col.Tasks[idx].BoardPosition != want {
			col.Tasks[idx].BoardPosition = want
			col.Tasks[idx].UpdatedAt = now.UTC()
		}
	}
}

func clampIndex(idx, max int) int {
	if max < 0 {
		max = 0
	}
	if idx < 0 {
		return 0
	}
	if idx > max {
		return max
	}
	return idx
}
