package board

import (
	"fmt"

	"github.com/hylla/tavla/internal/domain"
)

// Verdict is the structured outcome of a move check. Invalid verdicts carry
// a user-facing reason and must never reach the optimistic updater.
type Verdict struct {
	Valid  bool
	Reason string
}

func valid() Verdict {
	return Verdict{Valid: true}
}

func invalid(format string, args ...any) Verdict {
	return Verdict{Reason: fmt.Sprintf(format, args...)}
}

// ValidateTaskMove checks whether a task may be dropped into the column
// tagged toStatus. A reorder within the task's own column is always legal;
// a cross-column move is refused when the target's WIP limit is already met.
func ValidateTaskMove(s Snapshot, taskID string, toStatus domain.Status) Verdict {
	_, _, ok := s.TaskLocation(taskID)
	if !ok {
		return invalid("task %s is not on this board", taskID)
	}
	toCol, ok := s.ColumnIndexByStatus(toStatus)
	if !ok {
		return invalid("no column accepts status %q", toStatus)
	}
	task, _ := s.TaskByID(taskID)
	if task.Status == toStatus {
		return valid()
	}
	target := s.Columns[toCol]
	if !target.Column.HasCapacity(len(target.Tasks)) {
		return invalid("%s is at its WIP limit (%d)", target.Column.Name, target.Column.WIPLimit)
	}
	return valid()
}

// ValidateColumnMove checks a column reorder. Any slot among the existing
// columns is legal; there is no capacity constraint on column moves.
func ValidateColumnMove(s Snapshot, columnID string, toIndex int) Verdict {
	if _, ok := s.ColumnIndexByID(columnID); !ok {
		return invalid("column %s is not on this board", columnID)
	}
	if toIndex < 0 || toIndex >= len(s.Columns) {
		return invalid("column slot %d is out of range", toIndex)
	}
	return valid()
}

// ValidateColumnDelete refuses deleting a column that still holds tasks.
func ValidateColumnDelete(s Snapshot, columnID string) Verdict {
	idx, ok := s.ColumnIndexByID(columnID)
	if !ok {
		return invalid("column %s is not on this board", columnID)
	}
	if count := len(s.Columns[idx].Tasks); count > 0 {
		return invalid("%s still holds %d tasks; empty it first", s.Columns[idx].Column.Name, count)
	}
	return valid()
}
