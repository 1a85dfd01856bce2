package tui

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/board"
	"github.com/hylla/tavla/internal/config"
	"github.com/hylla/tavla/internal/domain"
	"github.com/hylla/tavla/internal/drag"
	"github.com/hylla/tavla/internal/engine"
)

type fakeService struct {
	boards  []domain.Board
	columns map[string][]domain.Column
	tasks   map[string][]domain.Task

	err       error
	moveErr   map[string]error
	deleteErr error

	reorderedIDs []string
	deleteModes  []app.DeleteMode
}

func newFakeService(boards []domain.Board, columns []domain.Column, tasks []domain.Task) *fakeService {
	colsByBoard := map[string][]domain.Column{}
	for _, c := range columns {
		colsByBoard[c.BoardID] = append(colsByBoard[c.BoardID], c)
	}
	tasksByBoard := map[string][]domain.Task{}
	for _, task := range tasks {
		tasksByBoard[task.BoardID] = append(tasksByBoard[task.BoardID], task)
	}
	return &fakeService{
		boards:  boards,
		columns: colsByBoard,
		tasks:   tasksByBoard,
		moveErr: map[string]error{},
	}
}

func (f *fakeService) ListBoards(context.Context, bool) ([]domain.Board, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.Board, len(f.boards))
	copy(out, f.boards)
	return out, nil
}

func (f *fakeService) BoardView(_ context.Context, boardID string) (board.Snapshot, error) {
	if f.err != nil {
		return board.Snapshot{}, f.err
	}
	for _, b := range f.boards {
		if b.ID == boardID {
			live := make([]domain.Task, 0, len(f.tasks[boardID]))
			for _, task := range f.tasks[boardID] {
				if task.ArchivedAt == nil {
					live = append(live, task)
				}
			}
			return board.BuildSnapshot(b, f.columns[boardID], live), nil
		}
	}
	return board.Snapshot{}, app.ErrNotFound
}

func (f *fakeService) CreateTask(_ context.Context, in app.CreateTaskInput) (domain.Task, error) {
	pos := 1
	for _, t := range f.tasks[in.BoardID] {
		if t.Status == in.Status && t.BoardPosition >= pos {
			pos = t.BoardPosition + 1
		}
	}
	task, err := domain.NewTask(domain.TaskInput{
		ID:            "t-new",
		BoardID:       in.BoardID,
		Status:        in.Status,
		BoardPosition: pos,
		Title:         in.Title,
		Description:   in.Description,
		Priority:      in.Priority,
	}, time.Now().UTC())
	if err != nil {
		return domain.Task{}, err
	}
	f.tasks[in.BoardID] = append(f.tasks[in.BoardID], task)
	return task, nil
}

func (f *fakeService) MoveTask(_ context.Context, taskID string, toStatus domain.Status, position int) (domain.Task, error) {
	if err := f.moveErr[taskID]; err != nil {
		return domain.Task{}, err
	}
	for boardID, tasks := range f.tasks {
		for idx, task := range tasks {
			if task.ID != taskID {
				continue
			}
			task.Status = toStatus
			task.BoardPosition = position
			f.tasks[boardID][idx] = task
			return task, nil
		}
	}
	return domain.Task{}, app.ErrNotFound
}

func (f *fakeService) DeleteTask(_ context.Context, taskID string, mode app.DeleteMode) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleteModes = append(f.deleteModes, mode)
	now := time.Now().UTC()
	for boardID, tasks := range f.tasks {
		for idx, task := range tasks {
			if task.ID != taskID {
				continue
			}
			if mode == app.DeleteModeHard {
				f.tasks[boardID] = append(tasks[:idx:idx], tasks[idx+1:]...)
			} else {
				task.ArchivedAt = &now
				f.tasks[boardID][idx] = task
			}
			return nil
		}
	}
	return app.ErrNotFound
}

func (f *fakeService) RestoreTask(_ context.Context, taskID string) (domain.Task, error) {
	for boardID, tasks := range f.tasks {
		for idx, task := range tasks {
			if task.ID == taskID {
				task.ArchivedAt = nil
				f.tasks[boardID][idx] = task
				return task, nil
			}
		}
	}
	return domain.Task{}, app.ErrNotFound
}

func (f *fakeService) ReorderColumns(_ context.Context, boardID string, orderedIDs []string) error {
	f.reorderedIDs = slices.Clone(orderedIDs)
	cols := f.columns[boardID]
	for pos, id := range orderedIDs {
		for idx, col := range cols {
			if col.ID == id {
				cols[idx].Position = pos + 1
			}
		}
	}
	return nil
}

func (f *fakeService) SearchTasks(_ context.Context, boardID, query string) ([]domain.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Task, 0)
	for _, task := range f.tasks[boardID] {
		if task.ArchivedAt != nil {
			continue
		}
		if strings.Contains(strings.ToLower(task.Title), query) ||
			strings.Contains(strings.ToLower(task.Description), query) ||
			strings.Contains(strings.ToLower(task.Assignee), query) {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeService) taskByID(t *testing.T, taskID string) domain.Task {
	t.Helper()
	for _, tasks := range f.tasks {
		for _, task := range tasks {
			if task.ID == taskID {
				return task
			}
		}
	}
	t.Fatalf("task %q not found in fake service", taskID)
	return domain.Task{}
}

func seedBoard(t *testing.T) (*fakeService, domain.Board) {
	t.Helper()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	b, err := domain.NewBoard("b1", "Inbox", "", now)
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	c1, _ := domain.NewColumn("c1", b.ID, "To Do", domain.StatusTodo, 1, 0, now)
	c2, _ := domain.NewColumn("c2", b.ID, "Doing", domain.StatusProgress, 2, 3, now)
	c3, _ := domain.NewColumn("c3", b.ID, "Done", domain.StatusDone, 3, 0, now)
	t1, _ := domain.NewTask(domain.TaskInput{
		ID: "t1", BoardID: b.ID, Status: domain.StatusTodo, BoardPosition: 1,
		Title: "Write docs", Assignee: "sam",
	}, now)
	t2, _ := domain.NewTask(domain.TaskInput{
		ID: "t2", BoardID: b.ID, Status: domain.StatusTodo, BoardPosition: 2,
		Title: "Fix login bug", Priority: domain.PriorityHigh,
	}, now)
	t3, _ := domain.NewTask(domain.TaskInput{
		ID: "t3", BoardID: b.ID, Status: domain.StatusProgress, BoardPosition: 1,
		Title: "Review release",
	}, now)
	return newFakeService(
		[]domain.Board{b},
		[]domain.Column{c1, c2, c3},
		[]domain.Task{t1, t2, t3},
	), b
}

func loadReadyModel(t *testing.T, m Model) Model {
	t.Helper()
	return applyMsg(t, applyCmd(t, m, m.Init()), tea.WindowSizeMsg{Width: 120, Height: 40})
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return applyCmd(t, out, cmd)
}

func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	out := m
	queue := []tea.Cmd{cmd}
	for i := 0; i < 8 && len(queue) > 0; i++ {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		updated, nextCmd := out.Update(msg)
		casted, ok := updated.(Model)
		if !ok {
			t.Fatalf("expected Model, got %T", updated)
		}
		out = casted
		if _, tick := msg.(toastTickMsg); !tick {
			queue = append(queue, nextCmd)
		}
	}
	return out
}

func keyRune(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestModelLoadAndNavigation(t *testing.T) {
	svc, _ := seedBoard(t)
	m := loadReadyModel(t, NewModel(svc))

	if len(m.boards) != 1 || len(m.snapshot.Columns) != 3 {
		t.Fatalf("unexpected loaded model: %d boards, %d columns", len(m.boards), len(m.snapshot.Columns))
	}
	m = applyMsg(t, m, keyRune('l'))
	if m.selectedColumn != 1 {
		t.Fatalf("selectedColumn = %d, want 1", m.selectedColumn)
	}
	m = applyMsg(t, m, keyRune('h'))
	if m.selectedColumn != 0 {
		t.Fatalf("selectedColumn = %d, want 0", m.selectedColumn)
	}
	m = applyMsg(t, m, keyRune('j'))
	if m.selectedTask != 1 {
		t.Fatalf("selectedTask = %d, want 1", m.selectedTask)
	}
	m = applyMsg(t, m, keyRune('k'))
	if m.selectedTask != 0 {
		t.Fatalf("selectedTask = %d, want 0", m.selectedTask)
	}
}

func TestModelKeyboardTaskDrag(t *testing.T) {
	svc, _ := seedBoard(t)
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	if m.eng.Phase() != drag.PhaseDragging {
		t.Fatalf("phase = %v, want dragging", m.eng.Phase())
	}

	m = applyMsg(t, m, keyRune('l'))
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if m.eng.Phase() != drag.PhaseIdle {
		t.Fatalf("phase after drop = %v, want idle", m.eng.Phase())
	}
	moved := svc.taskByID(t, "t1")
	if moved.Status != domain.StatusProgress {
		t.Fatalf("t1 status = %q, want %q", moved.Status, domain.StatusProgress)
	}
	if moved.BoardPosition != 2 {
		t.Fatalf("t1 position = %d, want 2", moved.BoardPosition)
	}
}

func TestModelDragCancelKeepsBoard(t *testing.T) {
	svc, _ := seedBoard(t)
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	m = applyMsg(t, m, keyRune('l'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})

	if m.eng.Phase() != drag.PhaseIdle {
		t.Fatalf("phase after cancel = %v, want idle", m.eng.Phase())
	}
	if got := svc.taskByID(t, "t1").Status; got != domain.StatusTodo {
		t.Fatalf("t1 status = %q, want unchanged %q", got, domain.StatusTodo)
	}
}

func TestModelDragRollbackOnPersistFailure(t *testing.T) {
	svc, _ := seedBoard(t)
	svc.moveErr["t1"] = errors.New("disk full")
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	m = applyMsg(t, m, keyRune('l'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if m.eng.Phase() != drag.PhaseError {
		t.Fatalf("phase after failed drop = %v, want transient error", m.eng.Phase())
	}
	if got := svc.taskByID(t, "t1").Status; got != domain.StatusTodo {
		t.Fatalf("t1 status = %q, want rolled back %q", got, domain.StatusTodo)
	}
	if m.statusKind != engine.NoticeError {
		t.Fatalf("statusKind = %q, want error notice", m.statusKind)
	}
	if !strings.Contains(m.status, "reverted") {
		t.Fatalf("status = %q, want revert message", m.status)
	}
}

func TestToastStackRaisesAndExpires(t *testing.T) {
	svc, _ := seedBoard(t)
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	m = applyMsg(t, m, keyRune('l'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if len(m.toasts) == 0 {
		t.Fatal("expected a toast after a settled drop")
	}
	stack := m.renderToasts()
	if !strings.Contains(stack, "task moved") {
		t.Fatalf("renderToasts() = %q, want the move notice", stack)
	}

	m = applyMsg(t, m, toastTickMsg(time.Now().Add(time.Minute)))
	if len(m.toasts) != 0 {
		t.Fatalf("toasts after expiry = %d, want 0", len(m.toasts))
	}
	if got := m.renderToasts(); got != "" {
		t.Fatalf("renderToasts() after expiry = %q, want empty", got)
	}
}

func TestModelColumnDrag(t *testing.T) {
	svc, _ := seedBoard(t)
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('C'))
	if m.eng.Phase() != drag.PhaseDragging {
		t.Fatalf("phase = %v, want dragging", m.eng.Phase())
	}
	m = applyMsg(t, m, keyRune('l'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	want := []string{"c2", "c1", "c3"}
	if !slices.Equal(svc.reorderedIDs, want) {
		t.Fatalf("reordered ids = %v, want %v", svc.reorderedIDs, want)
	}
}

func TestModelQuickAddTask(t *testing.T) {
	svc, b := seedBoard(t)
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('n'))
	if m.mode != modeAddTask {
		t.Fatalf("mode = %v, want modeAddTask", m.mode)
	}
	for _, r := range "Ship" {
		m = applyMsg(t, m, keyRune(r))
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if m.mode != modeNone {
		t.Fatalf("mode = %v, want modeNone", m.mode)
	}
	created := svc.taskByID(t, "t-new")
	if created.Title != "Ship" || created.Status != domain.StatusTodo {
		t.Fatalf("created task = %+v, want Ship in todo", created)
	}
	if created.BoardID != b.ID {
		t.Fatalf("created task board = %q, want %q", created.BoardID, b.ID)
	}
}

func TestModelSearchDimsAndClears(t *testing.T) {
	svc, _ := seedBoard(t)
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('/'))
	if m.mode != modeSearch {
		t.Fatalf("mode = %v, want modeSearch", m.mode)
	}
	for _, r := range "login" {
		m = applyMsg(t, m, keyRune(r))
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if !m.searchApplied {
		t.Fatal("expected search to be applied")
	}
	if len(m.searchMatches) != 1 || !m.taskMatchesSearch("t2") {
		t.Fatalf("searchMatches = %v, want {t2}", m.searchMatches)
	}
	if !strings.Contains(m.status, "1 matches") {
		t.Fatalf("status = %q, want match count", m.status)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.searchApplied {
		t.Fatal("expected esc to clear the search filter")
	}
}

func TestModelMultiSelectAndBatchMove(t *testing.T) {
	svc, _ := seedBoard(t)
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('v'))
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('v'))
	if len(m.selectedTaskIDs) != 2 {
		t.Fatalf("selected %d tasks, want 2", len(m.selectedTaskIDs))
	}

	m = applyMsg(t, m, keyRune('l'))
	m = applyMsg(t, m, keyRune('m'))

	if len(m.selectedTaskIDs) != 0 {
		t.Fatalf("selection not cleared after batch move: %v", m.selectedTaskIDs)
	}
	for _, id := range []string{"t1", "t2"} {
		if got := svc.taskByID(t, id).Status; got != domain.StatusProgress {
			t.Fatalf("%s status = %q, want %q", id, got, domain.StatusProgress)
		}
	}
	if !strings.Contains(m.status, "moved") {
		t.Fatalf("status = %q, want batch summary", m.status)
	}
}

func TestModelDeleteConfirmAndRestore(t *testing.T) {
	svc, _ := seedBoard(t)
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('d'))
	if m.mode != modeConfirmDelete {
		t.Fatalf("mode = %v, want modeConfirmDelete", m.mode)
	}
	m = applyMsg(t, m, keyRune('n'))
	if got := svc.taskByID(t, "t1").ArchivedAt; got != nil {
		t.Fatal("expected decline to keep the task")
	}

	m = applyMsg(t, m, keyRune('d'))
	m = applyMsg(t, m, keyRune('y'))
	if got := svc.taskByID(t, "t1").ArchivedAt; got == nil {
		t.Fatal("expected confirm to archive the task")
	}
	if len(svc.deleteModes) != 1 || svc.deleteModes[0] != app.DeleteModeArchive {
		t.Fatalf("delete modes = %v, want one archive", svc.deleteModes)
	}

	m = applyMsg(t, m, keyRune('u'))
	if got := svc.taskByID(t, "t1").ArchivedAt; got != nil {
		t.Fatal("expected restore to unarchive the task")
	}
	_ = m
}

func TestModelBatchDeleteUsesConfiguredMode(t *testing.T) {
	svc, _ := seedBoard(t)
	m := loadReadyModel(t, NewModel(svc, WithDefaultDeleteMode("hard")))

	m = applyMsg(t, m, keyRune('v'))
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('v'))
	m = applyMsg(t, m, keyRune('d'))
	m = applyMsg(t, m, keyRune('y'))

	if len(svc.tasks["b1"]) != 1 {
		t.Fatalf("expected hard batch delete to leave 1 task, got %d", len(svc.tasks["b1"]))
	}
	for _, mode := range svc.deleteModes {
		if mode != app.DeleteModeHard {
			t.Fatalf("delete mode = %q, want hard", mode)
		}
	}
}

func TestModelCollapsePersistsPreference(t *testing.T) {
	svc, b := seedBoard(t)
	prefs := engine.NewMemoryPreferenceStore()
	m := loadReadyModel(t, NewModel(svc, WithPreferenceStore(prefs)))

	m = applyMsg(t, m, keyRune('-'))
	if !m.collapsed["c1"] {
		t.Fatal("expected c1 collapsed")
	}
	if p, ok := prefs.Get(b.ID, "c1"); !ok || !p.Collapsed {
		t.Fatalf("stored prefs = %+v (ok=%v), want collapsed", p, ok)
	}

	m = applyMsg(t, m, keyRune('r'))
	if !m.collapsed["c1"] {
		t.Fatal("expected collapse to survive reload")
	}
}

func TestModelMouseWheelAndClickDrag(t *testing.T) {
	svc, _ := seedBoard(t)
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, tea.MouseWheelMsg{Button: tea.MouseWheelDown})
	if m.selectedTask != 1 {
		t.Fatalf("selectedTask = %d, want 1 after wheel down", m.selectedTask)
	}
	m = applyMsg(t, m, tea.MouseWheelMsg{Button: tea.MouseWheelUp})
	if m.selectedTask != 0 {
		t.Fatalf("selectedTask = %d, want 0 after wheel up", m.selectedTask)
	}

	clickX := 2
	clickY := boardTop + 2
	m = applyMsg(t, m, tea.MouseClickMsg{X: clickX, Y: clickY, Button: tea.MouseLeft})
	if m.eng.Phase() != drag.PhaseDragging {
		t.Fatalf("phase = %v, want dragging after click", m.eng.Phase())
	}

	secondColX := m.columnWidth() + columnOverhead + 2
	m = applyMsg(t, m, tea.MouseMotionMsg{X: secondColX, Y: clickY})
	m = applyMsg(t, m, tea.MouseReleaseMsg{X: secondColX, Y: clickY, Button: tea.MouseLeft})

	if m.eng.Phase() != drag.PhaseIdle {
		t.Fatalf("phase = %v, want idle after release", m.eng.Phase())
	}
	if got := svc.taskByID(t, "t1").Status; got != domain.StatusProgress {
		t.Fatalf("t1 status = %q, want %q after mouse drop", got, domain.StatusProgress)
	}
}

func TestModelMouseDragDisabled(t *testing.T) {
	svc, _ := seedBoard(t)
	m := loadReadyModel(t, NewModel(svc, WithMouseDrag(false)))

	m = applyMsg(t, m, tea.MouseClickMsg{X: 2, Y: boardTop + 2, Button: tea.MouseLeft})
	if m.eng.Phase() != drag.PhaseIdle {
		t.Fatalf("phase = %v, want idle when mouse drag disabled", m.eng.Phase())
	}
	if m.selectedColumn != 0 {
		t.Fatalf("selectedColumn = %d, want click to still select", m.selectedColumn)
	}
}

func TestColumnRegionsResolvePointerHits(t *testing.T) {
	svc, _ := seedBoard(t)
	m := loadReadyModel(t, NewModel(svc))

	regions := m.columnRegions()
	if len(regions) != 3 {
		t.Fatalf("regions = %d, want 3", len(regions))
	}
	for i, r := range regions {
		if r.Rect.Width <= 0 || r.Rect.Height <= 0 {
			t.Fatalf("region %d has empty extent %+v", i, r.Rect)
		}
	}
	for want, r := range regions {
		x := r.Rect.X + 1
		idx, ok := m.columnAtPointer(x, boardTop+1)
		if !ok || idx != want {
			t.Fatalf("columnAtPointer(%d) = %d, %v; want %d, true", x, idx, ok, want)
		}
	}
}

func TestModelViewStates(t *testing.T) {
	svc, _ := seedBoard(t)
	m := loadReadyModel(t, NewModel(svc))

	if v := m.View(); v.Content == nil || v.MouseMode != tea.MouseModeCellMotion {
		t.Fatal("expected board view with mouse enabled")
	}
	body := m.renderColumns(lipgloss.Color("62"), lipgloss.Color("241"), lipgloss.Color("239"))
	for _, want := range []string{"To Do", "Doing (1/3)", "Write docs", "@sam"} {
		if !strings.Contains(body, want) {
			t.Fatalf("board body missing %q:\n%s", want, body)
		}
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})
	if !strings.Contains(m.status, "moving") {
		t.Fatalf("status = %q, want lift feedback", m.status)
	}

	svc.err = errors.New("db gone")
	failing := applyCmd(t, NewModel(svc), NewModel(svc).Init())
	if failing.err == nil || !strings.Contains(failing.err.Error(), "db gone") {
		t.Fatalf("err = %v, want load failure surfaced", failing.err)
	}
	if v := failing.View(); v.Content == nil {
		t.Fatal("expected error view content")
	}
}

func TestModelTaskInfoOverlay(t *testing.T) {
	svc, _ := seedBoard(t)
	m := loadReadyModel(t, NewModel(svc))

	m = applyMsg(t, m, keyRune('i'))
	if m.mode != modeTaskInfo {
		t.Fatalf("mode = %v, want modeTaskInfo", m.mode)
	}
	overlay := m.renderOverlay(lipgloss.Color("62"), lipgloss.Color("241"), lipgloss.Color("239"))
	if !strings.Contains(overlay, "Write docs") {
		t.Fatalf("info overlay missing title:\n%s", overlay)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.mode != modeNone {
		t.Fatalf("mode = %v, want modeNone after esc", m.mode)
	}
}

func TestModelCustomKeyConfig(t *testing.T) {
	svc, _ := seedBoard(t)
	cfg := config.KeyConfig{LiftTask: "g"}
	m := loadReadyModel(t, NewModel(svc, WithKeyConfig(cfg)))

	m = applyMsg(t, m, keyRune('g'))
	if m.eng.Phase() != drag.PhaseDragging {
		t.Fatalf("phase = %v, want dragging via remapped lift key", m.eng.Phase())
	}
}

func TestTaskFieldConfigAffectsSecondaryLine(t *testing.T) {
	svc, _ := seedBoard(t)
	m := loadReadyModel(t, NewModel(svc, WithTaskFieldConfig(TaskFieldConfig{ShowPriority: true})))

	task := svc.taskByID(t, "t2")
	if got := m.taskSecondary(task); got != "high" {
		t.Fatalf("taskSecondary = %q, want %q", got, "high")
	}
	hidden := loadReadyModel(t, NewModel(svc, WithTaskFieldConfig(TaskFieldConfig{})))
	if got := hidden.taskSecondary(task); got != "" {
		t.Fatalf("taskSecondary = %q, want empty with all fields off", got)
	}
}

func TestServiceMoverReorderOrdersByPosition(t *testing.T) {
	svc, b := seedBoard(t)
	mover := serviceMover{svc: svc}
	err := mover.ReorderColumns(context.Background(), b.ID, []engine.ColumnOrder{
		{ColumnID: "c3", Position: 1},
		{ColumnID: "c1", Position: 3},
		{ColumnID: "c2", Position: 2},
	})
	if err != nil {
		t.Fatalf("ReorderColumns: %v", err)
	}
	want := []string{"c3", "c2", "c1"}
	if !slices.Equal(svc.reorderedIDs, want) {
		t.Fatalf("reordered ids = %v, want %v", svc.reorderedIDs, want)
	}
}

func TestHelpersCoverage(t *testing.T) {
	if got := clamp(5, 0, 3); got != 3 {
		t.Fatalf("clamp(5,0,3) = %d, want 3", got)
	}
	if got := clamp(-1, 0, 3); got != 0 {
		t.Fatalf("clamp(-1,0,3) = %d, want 0", got)
	}
	if got := truncate("hello world", 5); got != "hell…" {
		t.Fatalf("truncate = %q, want %q", got, "hell…")
	}
	if got := truncate("hi", 5); got != "hi" {
		t.Fatalf("truncate = %q, want %q", got, "hi")
	}
	if got := fitLines("a\nb\nc", 2); got != "a\n…" {
		t.Fatalf("fitLines = %q, want %q", got, "a\n…")
	}
	if got := fitLines("a", 3); got != "a\n\n" {
		t.Fatalf("fitLines = %q, want %q", got, "a\n\n")
	}
}
