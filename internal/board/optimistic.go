package board

import (
	"time"

	"github.com/hylla/tavla/internal/domain"
)

// Updater owns the live view-model snapshot and applies validated moves to
// it synchronously, before any server confirmation. The pre-move snapshot is
// retained until the in-flight mutation settles: Confirm discards it,
// Rollback restores it. Either way the caller is expected to trigger a full
// reload afterwards; the freshly loaded server snapshot always wins over the
// optimistic one.
type Updater struct {
	current Snapshot
	prev    *Snapshot
}

// NewUpdater constructs an updater over an initial snapshot.
func NewUpdater(s Snapshot) *Updater {
	return &Updater{current: s}
}

// Snapshot returns the current view-model snapshot.
func (u *Updater) Snapshot() Snapshot {
	return u.current
}

// Pending reports whether an optimistic change awaits settlement.
func (u *Updater) Pending() bool {
	return u.prev != nil
}

// ApplyTaskMove optimistically applies a task move and returns the new
// snapshot. The previous snapshot is kept for rollback.
func (u *Updater) ApplyTaskMove(taskID string, toStatus domain.Status, toIndex int, now time.Time) (Snapshot, error) {
	next := u.current.Clone()
	if err := next.MoveTask(taskID, toStatus, toIndex, now); err != nil {
		return Snapshot{}, err
	}
	prev := u.current
	u.prev = &prev
	u.current = next
	return next, nil
}

// ApplyColumnMove optimistically applies a column reorder.
func (u *Updater) ApplyColumnMove(columnID string, toIndex int, now time.Time) (Snapshot, error) {
	next := u.current.Clone()
	if err := next.MoveColumn(columnID, toIndex, now); err != nil {
		return Snapshot{}, err
	}
	prev := u.current
	u.prev = &prev
	u.current = next
	return next, nil
}

// ApplyTaskRemoval optimistically drops a task (delete flows).
func (u *Updater) ApplyTaskRemoval(taskID string, now time.Time) (Snapshot, error) {
	next := u.current.Clone()
	if err := next.RemoveTask(taskID, now); err != nil {
		return Snapshot{}, err
	}
	prev := u.current
	u.prev = &prev
	u.current = next
	return next, nil
}

// Confirm settles the in-flight optimistic change as provisionally correct.
func (u *Updater) Confirm() {
	u.prev = nil
}

// Rollback restores the pre-move snapshot after a failed persistence call.
// It reports false when nothing was pending.
func (u *Updater) Rollback() (Snapshot, bool) {
	if u.prev == nil {
		return u.current, false
	}
	u.current = *u.prev
	u.prev = nil
	return u.current, true
}

// Replace installs a freshly reloaded server snapshot, discarding any
// optimistic state. This is the convergence point after success or failure.
func (u *Updater) Replace(s Snapshot) {
	u.current = s
	u.prev = nil
}
