package board

import (
	"testing"
	"time"

	"github.com/hylla/tavla/internal/domain"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func testColumn(t *testing.T, id, name string, position, wipLimit int) domain.Column {
	t.Helper()
	col, err := domain.NewColumn(id, "b1", name, "", position, wipLimit, testNow)
	if err != nil {
		t.Fatalf("NewColumn(%s) error = %v", id, err)
	}
	return col
}

func testTask(t *testing.T, id string, status domain.Status, position int) domain.Task {
	t.Helper()
	task, err := domain.NewTask(domain.TaskInput{
		ID:            id,
		BoardID:       "b1",
		Status:        status,
		BoardPosition: position,
		Title:         "task " + id,
	}, testNow)
	if err != nil {
		t.Fatalf("NewTask(%s) error = %v", id, err)
	}
	return task
}

func testSnapshot(t *testing.T) Snapshot {
	t.Helper()
	b, err := domain.NewBoard("b1", "Sprint", "", testNow)
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	columns := []domain.Column{
		testColumn(t, "c1", "To Do", 1, 0),
		testColumn(t, "c2", "Doing", 2, 2),
		testColumn(t, "c3", "Done", 3, 0),
	}
	tasks := []domain.Task{
		testTask(t, "t1", domain.StatusTodo, 1),
		testTask(t, "t2", domain.StatusTodo, 2),
		testTask(t, "t3", domain.StatusTodo, 3),
		testTask(t, "t4", domain.StatusProgress, 1),
		testTask(t, "t5", domain.StatusProgress, 2),
	}
	s := BuildSnapshot(b, columns, tasks)
	if err := CheckInvariants(s); err != nil {
		t.Fatalf("fixture violates invariants: %v", err)
	}
	return s
}

func columnTaskIDs(s Snapshot, colIdx int) []string {
	out := make([]string, 0, len(s.Columns[colIdx].Tasks))
	for _, task := range s.Columns[colIdx].Tasks {
		out = append(out, task.ID)
	}
	return out
}

func assertOrder(t *testing.T, s Snapshot, colIdx int, want ...string) {
	t.Helper()
	got := columnTaskIDs(s, colIdx)
	if len(got) != len(want) {
		t.Fatalf("column %d has tasks %v, want %v", colIdx, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("column %d has tasks %v, want %v", colIdx, got, want)
		}
	}
	for i, task := range s.Columns[colIdx].Tasks {
		if task.BoardPosition != i+1 {
			t.Fatalf("task %s has position %d at slot %d", task.ID, task.BoardPosition, i+1)
		}
	}
}

func TestBuildSnapshotRederivesOrderFromDirtyPositions(t *testing.T) {
	b, _ := domain.NewBoard("b1", "Sprint", "", testNow)
	columns := []domain.Column{
		testColumn(t, "c2", "Done", 7, 0),
		testColumn(t, "c1", "To Do", 3, 0),
	}
	// Duplicate and gapped positions, as legacy or concurrently written rows
	// can carry. Tie-break is position then id.
	tasks := []domain.Task{
		testTask(t, "t2", domain.StatusTodo, 5),
		testTask(t, "t3", domain.StatusTodo, 5),
		testTask(t, "t1", domain.StatusTodo, 1),
	}
	s := BuildSnapshot(b, columns, tasks)

	if s.Columns[0].Column.ID != "c1" || s.Columns[0].Column.Position != 1 {
		t.Fatalf("expected c1 renumbered to order 1, got %s order %d", s.Columns[0].Column.ID, s.Columns[0].Column.Position)
	}
	if s.Columns[1].Column.Position != 2 {
		t.Fatalf("expected dense column order, got %d", s.Columns[1].Column.Position)
	}
	assertOrder(t, s, 0, "t1", "t2", "t3")
	if err := CheckInvariants(s); err != nil {
		t.Fatalf("CheckInvariants() error = %v", err)
	}
}

func TestBuildSnapshotFoldsOrphanedTasksIntoFirstColumn(t *testing.T) {
	b, _ := domain.NewBoard("b1", "Sprint", "", testNow)
	columns := []domain.Column{testColumn(t, "c1", "To Do", 1, 0)}
	tasks := []domain.Task{testTask(t, "t1", domain.Status("ghost"), 1)}
	s := BuildSnapshot(b, columns, tasks)
	if s.TaskCount() != 1 {
		t.Fatalf("expected orphan retained, count = %d", s.TaskCount())
	}
	if err := CheckInvariants(s); err != nil {
		t.Fatalf("CheckInvariants() error = %v", err)
	}
}

func TestMoveTaskWithinColumn(t *testing.T) {
	s := testSnapshot(t)
	// Scenario: [t1, t2, t3], drag t3 to slot 0.
	if err := s.MoveTask("t3", domain.StatusTodo, 0, testNow); err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	assertOrder(t, s, 0, "t3", "t1", "t2")
	if err := CheckInvariants(s); err != nil {
		t.Fatalf("CheckInvariants() error = %v", err)
	}
}

func TestMoveTaskAcrossColumns(t *testing.T) {
	s := testSnapshot(t)
	if err := s.MoveTask("t2", domain.StatusDone, 0, testNow); err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	assertOrder(t, s, 0, "t1", "t3")
	assertOrder(t, s, 2, "t2")
	moved, _ := s.TaskByID("t2")
	if moved.Status != domain.StatusDone {
		t.Fatalf("expected t2 retagged done, got %q", moved.Status)
	}
	if err := CheckInvariants(s); err != nil {
		t.Fatalf("CheckInvariants() error = %v", err)
	}
}

func TestMoveTaskRoundTripRestoresOriginalSequence(t *testing.T) {
	s := testSnapshot(t)
	original := columnTaskIDs(s, 0)
	if err := s.MoveTask("t2", domain.StatusDone, 0, testNow); err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	if err := s.MoveTask("t2", domain.StatusTodo, 1, testNow); err != nil {
		t.Fatalf("MoveTask() back error = %v", err)
	}
	assertOrder(t, s, 0, original...)
	assertOrder(t, s, 2)
}

func TestMoveTaskClampsOutOfRangeIndex(t *testing.T) {
	s := testSnapshot(t)
	if err := s.MoveTask("t1", domain.StatusDone, 99, testNow); err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	assertOrder(t, s, 2, "t1")
}

func TestMoveTaskUnknownSubjects(t *testing.T) {
	s := testSnapshot(t)
	if err := s.MoveTask("nope", domain.StatusTodo, 0, testNow); err != ErrUnknownTask {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}
	if err := s.MoveTask("t1", domain.Status("ghost"), 0, testNow); err != ErrUnknownColumn {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestIsNoopTaskMove(t *testing.T) {
	s := testSnapshot(t)
	if !s.IsNoopTaskMove("t2", domain.StatusTodo, 1) {
		t.Fatal("drop at own slot must be a no-op")
	}
	if s.IsNoopTaskMove("t2", domain.StatusTodo, 0) {
		t.Fatal("drop at a different slot is not a no-op")
	}
	if s.IsNoopTaskMove("t2", domain.StatusDone, 1) {
		t.Fatal("cross-column drop is not a no-op")
	}
}

func TestMoveColumn(t *testing.T) {
	s := testSnapshot(t)
	// Scenario: columns [To Do:1, Doing:2, Done:3]; drag Done to slot 0.
	if err := s.MoveColumn("c3", 0, testNow); err != nil {
		t.Fatalf("MoveColumn() error = %v", err)
	}
	wantIDs := []string{"c3", "c1", "c2"}
	for idx, want := range wantIDs {
		if s.Columns[idx].Column.ID != want {
			t.Fatalf("slot %d holds %s, want %s", idx, s.Columns[idx].Column.ID, want)
		}
		if s.Columns[idx].Column.Position != idx+1 {
			t.Fatalf("column %s has order %d", want, s.Columns[idx].Column.Position)
		}
	}
	if err := CheckInvariants(s); err != nil {
		t.Fatalf("CheckInvariants() error = %v", err)
	}
}

func TestRemoveTaskClosesGap(t *testing.T) {
	s := testSnapshot(t)
	if err := s.RemoveTask("t2", testNow); err != nil {
		t.Fatalf("RemoveTask() error = %v", err)
	}
	assertOrder(t, s, 0, "t1", "t3")
}

func TestValidateTaskMoveWIPLimit(t *testing.T) {
	s := testSnapshot(t)
	// Doing holds 2 tasks with limit 2.
	verdict := ValidateTaskMove(s, "t1", domain.StatusProgress)
	if verdict.Valid {
		t.Fatal("expected move into full column to be invalid")
	}
	if verdict.Reason == "" {
		t.Fatal("invalid verdict must carry a reason")
	}
	// Reorder within the full column stays legal.
	if v := ValidateTaskMove(s, "t4", domain.StatusProgress); !v.Valid {
		t.Fatalf("same-column reorder should be valid, got %q", v.Reason)
	}
	if v := ValidateTaskMove(s, "t1", domain.StatusDone); !v.Valid {
		t.Fatalf("move into unlimited column should be valid, got %q", v.Reason)
	}
}

func TestValidateColumnMove(t *testing.T) {
	s := testSnapshot(t)
	if v := ValidateColumnMove(s, "c3", 0); !v.Valid {
		t.Fatalf("column reorder should be valid, got %q", v.Reason)
	}
	if v := ValidateColumnMove(s, "c3", 3); v.Valid {
		t.Fatal("out-of-range slot must be invalid")
	}
	if v := ValidateColumnMove(s, "ghost", 0); v.Valid {
		t.Fatal("unknown column must be invalid")
	}
}

func TestValidateColumnDelete(t *testing.T) {
	s := testSnapshot(t)
	if v := ValidateColumnDelete(s, "c1"); v.Valid {
		t.Fatal("deleting a non-empty column must be invalid")
	}
	if v := ValidateColumnDelete(s, "c3"); !v.Valid {
		t.Fatalf("deleting an empty column should be valid, got %q", v.Reason)
	}
}

func TestSnapshotPartitionAfterMoves(t *testing.T) {
	s := testSnapshot(t)
	before := s.TaskCount()
	moves := []struct {
		id     string
		status domain.Status
		idx    int
	}{
		{"t1", domain.StatusDone, 0},
		{"t5", domain.StatusTodo, 0},
		{"t3", domain.StatusTodo, 0},
		{"t1", domain.StatusTodo, 2},
	}
	for _, mv := range moves {
		if err := s.MoveTask(mv.id, mv.status, mv.idx, testNow); err != nil {
			t.Fatalf("MoveTask(%s) error = %v", mv.id, err)
		}
		if err := CheckInvariants(s); err != nil {
			t.Fatalf("invariants broken after moving %s: %v", mv.id, err)
		}
	}
	if s.TaskCount() != before {
		t.Fatalf("task count changed: %d -> %d", before, s.TaskCount())
	}
}
