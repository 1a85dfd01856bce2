package board

import (
	"fmt"

	"github.com/hylla/tavla/internal/domain"
)

// CheckInvariants verifies the structural guarantees every completed
// operation must preserve: dense 1..count task positions per column, dense
// 1..N column order, task status agreeing with the holding column, unique
// status per column, and no task appearing twice.
func CheckInvariants(s Snapshot) error {
	seenStatus := map[domain.Status]string{}
	seenTask := map[string]string{}
	for idx, col := range s.Columns {
		if col.Column.Position != idx+1 {
			return fmt.Errorf("column %s has order %d at slot %d", col.Column.ID, col.Column.Position, idx+1)
		}
		if prev, ok := seenStatus[col.Column.Status]; ok {
			return fmt.Errorf("status %q claimed by both %s and %s", col.Column.Status, prev, col.Column.ID)
		}
		seenStatus[col.Column.Status] = col.Column.ID

		for ti, task := range col.Tasks {
			if task.BoardPosition != ti+1 {
				return fmt.Errorf("task %s has position %d at slot %d in %s", task.ID, task.BoardPosition, ti+1, col.Column.Name)
			}
			if task.Status != col.Column.Status {
				return fmt.Errorf("task %s has status %q inside column %q", task.ID, task.Status, col.Column.Status)
			}
			if prev, ok := seenTask[task.ID]; ok {
				return fmt.Errorf("task %s appears in both %s and %s", task.ID, prev, col.Column.ID)
			}
			seenTask[task.ID] = col.Column.ID
		}
	}
	return nil
}
