// Package engine coordinates one drag gesture against the persistence
// collaborator: it applies validated moves to the view model optimistically,
// executes the mutating call, and reconciles the outcome by confirming,
// rolling back, and always requesting a full reload.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hylla/tavla/internal/board"
	"github.com/hylla/tavla/internal/domain"
	"github.com/hylla/tavla/internal/drag"
)

// ColumnOrder is one entry of a column reorder call.
type ColumnOrder struct {
	ColumnID string
	Position int
}

// Mover is the slice of the persistence collaborator the engine mutates
// through. Calls may fail with network or validation errors; the board is
// reconciled by reload afterwards either way.
type Mover interface {
	MoveTask(ctx context.Context, taskID string, toStatus domain.Status, position int) (domain.Task, error)
	ReorderColumns(ctx context.Context, boardID string, orders []ColumnOrder) error
	DeleteTask(ctx context.Context, taskID string) error
}

// Clock returns the current time.
type Clock func() time.Time

// Engine owns the drag lifecycle for one board view. All methods are meant
// to run on the UI event loop; only the persistence calls themselves
// (ExecuteTaskMove, ExecuteColumnReorder, the batch helpers) are safe to run
// from a background command.
type Engine struct {
	sessions *drag.Manager
	updater  *board.Updater
	notifier NotificationSink
	clock    Clock

	// pending holds task ids with an in-flight mutation; they cannot be
	// picked up again until the mutation settles.
	pending map[string]struct{}
}

// New constructs an engine over an initial snapshot. A nil sink discards
// notifications; a nil clock falls back to time.Now.
func New(snapshot board.Snapshot, notifier NotificationSink, clock Clock) *Engine {
	if notifier == nil {
		notifier = discardSink{}
	}
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		sessions: drag.NewManager(clock),
		updater:  board.NewUpdater(snapshot),
		notifier: notifier,
		clock:    clock,
		pending:  map[string]struct{}{},
	}
}

// Snapshot returns the current view-model snapshot.
func (e *Engine) Snapshot() board.Snapshot {
	return e.updater.Snapshot()
}

// Phase reports the drag session phase.
func (e *Engine) Phase() drag.Phase {
	return e.sessions.Phase()
}

// Session returns the live drag session, if any.
func (e *Engine) Session() (*drag.Session, bool) {
	return e.sessions.Session()
}

// Replace installs a freshly reloaded snapshot. The reloaded server state
// always wins over any optimistic divergence.
func (e *Engine) Replace(s board.Snapshot) {
	e.updater.Replace(s)
}

// BeginTaskDrag starts a drag session for a task. Refused while a previous
// session is unsettled or while the task has an in-flight mutation.
func (e *Engine) BeginTaskDrag(taskID string) error {
	if _, busy := e.pending[taskID]; busy {
		return fmt.Errorf("task %s has a move in flight", taskID)
	}
	snapshot := e.updater.Snapshot()
	colIdx, taskIdx, ok := snapshot.TaskLocation(taskID)
	if !ok {
		return board.ErrUnknownTask
	}
	subject := drag.Subject{
		Kind: drag.SubjectTask,
		ID:   taskID,
		Origin: drag.Slot{
			Column: string(snapshot.Columns[colIdx].Column.Status),
			Index:  taskIdx,
		},
	}
	_, err := e.sessions.Start(subject)
	return err
}

// BeginColumnDrag starts a drag session for a column reorder.
func (e *Engine) BeginColumnDrag(columnID string) error {
	snapshot := e.updater.Snapshot()
	idx, ok := snapshot.ColumnIndexByID(columnID)
	if !ok {
		return board.ErrUnknownColumn
	}
	subject := drag.Subject{
		Kind:   drag.SubjectColumn,
		ID:     columnID,
		Origin: drag.Slot{Index: idx},
	}
	_, err := e.sessions.Start(subject)
	return err
}

// HoverSlot records the hovered drop slot, validating it so the presenter
// can render live feedback. Board state is untouched.
func (e *Engine) HoverSlot(slot drag.Slot) error {
	session, ok := e.sessions.Session()
	if !ok {
		return drag.ErrNoSession
	}
	snapshot := e.updater.Snapshot()
	var verdict board.Verdict
	switch session.Subject.Kind {
	case drag.SubjectColumn:
		verdict = board.ValidateColumnMove(snapshot, session.Subject.ID, slot.Index)
	default:
		verdict = board.ValidateTaskMove(snapshot, session.Subject.ID, domain.Status(slot.Column))
	}
	return e.sessions.Hover(drag.Target{Slot: slot, Valid: verdict.Valid, Reason: verdict.Reason})
}

// ClearHover drops the hovered target.
func (e *Engine) ClearHover() error {
	return e.sessions.ClearHover()
}

// CancelDrag abandons the gesture with no network effect.
func (e *Engine) CancelDrag() error {
	return e.sessions.Cancel()
}

// TaskDropPlan describes a settled task drop: the optimistic snapshot to
// render immediately and the persistence call still to execute.
type TaskDropPlan struct {
	TaskID   string
	ToStatus domain.Status
	Position int
	NoOp     bool
	Snapshot board.Snapshot
}

// DropTask ends a task gesture. With no resolved target it is a silent
// no-op cancellation. An invalid target is surfaced as a warning and never
// reaches the optimistic updater. A valid drop applies the move locally and
// returns the plan for the persistence call; a drop onto the task's own
// unchanged slot short-circuits with NoOp set and no pending state.
func (e *Engine) DropTask() (TaskDropPlan, bool, error) {
	session, dropped, err := e.sessions.Drop()
	if err != nil {
		return TaskDropPlan{}, false, err
	}
	if !dropped {
		if session.Target != nil && !session.Target.Valid {
			e.notifier.Notify(Notification{Kind: NoticeWarning, Message: session.Target.Reason})
		}
		return TaskDropPlan{}, false, nil
	}

	taskID := session.Subject.ID
	toStatus := domain.Status(session.Target.Slot.Column)
	toIndex := session.Target.Slot.Index
	snapshot := e.updater.Snapshot()

	if snapshot.IsNoopTaskMove(taskID, toStatus, toIndex) {
		if err := e.sessions.Settle(); err != nil {
			return TaskDropPlan{}, false, err
		}
		return TaskDropPlan{TaskID: taskID, NoOp: true, Snapshot: snapshot}, true, nil
	}

	next, err := e.updater.ApplyTaskMove(taskID, toStatus, toIndex, e.clock())
	if err != nil {
		_ = e.sessions.Settle()
		return TaskDropPlan{}, false, err
	}
	moved, _ := next.TaskByID(taskID)
	e.pending[taskID] = struct{}{}
	return TaskDropPlan{
		TaskID:   taskID,
		ToStatus: toStatus,
		Position: moved.BoardPosition,
		Snapshot: next,
	}, true, nil
}

// ExecuteTaskMove issues the persistence call for a planned drop. It holds
// no engine state and may run on a background command. No-op plans make no
// network call at all.
func ExecuteTaskMove(ctx context.Context, mover Mover, plan TaskDropPlan) error {
	if plan.NoOp {
		return nil
	}
	_, err := mover.MoveTask(ctx, plan.TaskID, plan.ToStatus, plan.Position)
	return err
}

// ResolveTaskDrop settles a task drop with the persistence outcome. On
// success the optimistic snapshot is confirmed; on failure it is rolled
// back and the failure surfaced once, with no retry. Either way the caller must
// trigger a full reload so the view converges on server truth.
func (e *Engine) ResolveTaskDrop(plan TaskDropPlan, execErr error) board.Snapshot {
	delete(e.pending, plan.TaskID)
	if plan.NoOp {
		return e.updater.Snapshot()
	}
	if execErr != nil {
		snapshot, _ := e.updater.Rollback()
		_ = e.sessions.Fail()
		e.notifier.Notify(Notification{
			Kind:    NoticeError,
			Message: fmt.Sprintf("move failed, change reverted: %v", execErr),
		})
		return snapshot
	}
	e.updater.Confirm()
	_ = e.sessions.Settle()
	e.notifier.Notify(Notification{Kind: NoticeSuccess, Message: "task moved"})
	return e.updater.Snapshot()
}

// ColumnDropPlan describes a settled column drop.
type ColumnDropPlan struct {
	BoardID  string
	Orders   []ColumnOrder
	NoOp     bool
	Snapshot board.Snapshot
}

// DropColumn ends a column gesture, mirroring DropTask.
func (e *Engine) DropColumn() (ColumnDropPlan, bool, error) {
	session, dropped, err := e.sessions.Drop()
	if err != nil {
		return ColumnDropPlan{}, false, err
	}
	if !dropped {
		if session.Target != nil && !session.Target.Valid {
			e.notifier.Notify(Notification{Kind: NoticeWarning, Message: session.Target.Reason})
		}
		return ColumnDropPlan{}, false, nil
	}

	columnID := session.Subject.ID
	toIndex := session.Target.Slot.Index
	snapshot := e.updater.Snapshot()
	if idx, ok := snapshot.ColumnIndexByID(columnID); ok && idx == toIndex {
		if err := e.sessions.Settle(); err != nil {
			return ColumnDropPlan{}, false, err
		}
		return ColumnDropPlan{NoOp: true, Snapshot: snapshot}, true, nil
	}

	next, err := e.updater.ApplyColumnMove(columnID, toIndex, e.clock())
	if err != nil {
		_ = e.sessions.Settle()
		return ColumnDropPlan{}, false, err
	}
	orders := make([]ColumnOrder, 0, len(next.Columns))
	for _, col := range next.Columns {
		orders = append(orders, ColumnOrder{ColumnID: col.Column.ID, Position: col.Column.Position})
	}
	return ColumnDropPlan{
		BoardID:  next.Board.ID,
		Orders:   orders,
		Snapshot: next,
	}, true, nil
}

// ExecuteColumnReorder persists a planned column drop.
func ExecuteColumnReorder(ctx context.Context, mover Mover, plan ColumnDropPlan) error {
	if plan.NoOp {
		return nil
	}
	return mover.ReorderColumns(ctx, plan.BoardID, plan.Orders)
}

// ResolveColumnDrop settles a column drop with the persistence outcome.
func (e *Engine) ResolveColumnDrop(plan ColumnDropPlan, execErr error) board.Snapshot {
	if plan.NoOp {
		return e.updater.Snapshot()
	}
	if execErr != nil {
		snapshot, _ := e.updater.Rollback()
		_ = e.sessions.Fail()
		e.notifier.Notify(Notification{
			Kind:    NoticeError,
			Message: fmt.Sprintf("reorder failed, change reverted: %v", execErr),
		})
		return snapshot
	}
	e.updater.Confirm()
	_ = e.sessions.Settle()
	e.notifier.Notify(Notification{Kind: NoticeSuccess, Message: "columns reordered"})
	return e.updater.Snapshot()
}
