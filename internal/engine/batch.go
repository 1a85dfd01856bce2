package engine

import (
	"context"
	"fmt"

	"github.com/hylla/tavla/internal/domain"
)

// BatchError records one failed call within a batch.
type BatchError struct {
	TaskID string
	Err    error
}

// BatchResult summarizes a sequential batch operation. The batch is neither
// parallel nor transactional: when call k fails, calls 1..k-1 have already
// taken effect and calls k+1..n are still attempted. Callers must reload
// afterwards; partial effect is the documented behavior.
type BatchResult struct {
	Attempted int
	Succeeded int
	Errors    []BatchError
}

// Failed reports whether any call in the batch failed.
func (r BatchResult) Failed() bool {
	return len(r.Errors) > 0
}

// Summary renders a one-line outcome for notifications.
func (r BatchResult) Summary(verb string) string {
	if !r.Failed() {
		return fmt.Sprintf("%s %d tasks", verb, r.Succeeded)
	}
	return fmt.Sprintf("%s %d of %d tasks (%d failed)", verb, r.Succeeded, r.Attempted, len(r.Errors))
}

// BatchMoveTasks moves every task to the target status with one sequential
// persistence call per task. Tasks are appended to the end of the target
// column; the post-batch reload re-derives exact positions.
func BatchMoveTasks(ctx context.Context, mover Mover, taskIDs []string, toStatus domain.Status, startPosition int) BatchResult {
	result := BatchResult{Attempted: len(taskIDs)}
	position := startPosition
	if position < 1 {
		position = 1
	}
	for _, taskID := range taskIDs {
		if _, err := mover.MoveTask(ctx, taskID, toStatus, position); err != nil {
			result.Errors = append(result.Errors, BatchError{TaskID: taskID, Err: err})
			continue
		}
		result.Succeeded++
		position++
	}
	return result
}

// BatchDeleteTasks deletes tasks one call at a time with the same
// keep-going failure semantics as BatchMoveTasks.
func BatchDeleteTasks(ctx context.Context, mover Mover, taskIDs []string) BatchResult {
	result := BatchResult{Attempted: len(taskIDs)}
	for _, taskID := range taskIDs {
		if err := mover.DeleteTask(ctx, taskID); err != nil {
			result.Errors = append(result.Errors, BatchError{TaskID: taskID, Err: err})
			continue
		}
		result.Succeeded++
	}
	return result
}
