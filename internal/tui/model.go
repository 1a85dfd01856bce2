package tui

import (
	"context"
	"fmt"
	"image/color"
	"slices"
	"strings"
	"sync"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"

	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/board"
	"github.com/hylla/tavla/internal/config"
	"github.com/hylla/tavla/internal/domain"
	"github.com/hylla/tavla/internal/drag"
	"github.com/hylla/tavla/internal/engine"
)

// Service represents service data used by this package.
type Service interface {
	ListBoards(context.Context, bool) ([]domain.Board, error)
	BoardView(context.Context, string) (board.Snapshot, error)
	CreateTask(context.Context, app.CreateTaskInput) (domain.Task, error)
	MoveTask(context.Context, string, domain.Status, int) (domain.Task, error)
	DeleteTask(context.Context, string, app.DeleteMode) error
	RestoreTask(context.Context, string) (domain.Task, error)
	ReorderColumns(context.Context, string, []string) error
	SearchTasks(context.Context, string, string) ([]domain.Task, error)
}

// serviceMover adapts the service to the drag engine's persistence port.
type serviceMover struct {
	svc        Service
	deleteMode app.DeleteMode
}

// MoveTask issues one task move through the service.
func (m serviceMover) MoveTask(ctx context.Context, taskID string, toStatus domain.Status, position int) (domain.Task, error) {
	return m.svc.MoveTask(ctx, taskID, toStatus, position)
}

// ReorderColumns translates position-tagged orders into the service's
// ordered-ID form.
func (m serviceMover) ReorderColumns(ctx context.Context, boardID string, orders []engine.ColumnOrder) error {
	sorted := slices.Clone(orders)
	slices.SortFunc(sorted, func(a, b engine.ColumnOrder) int {
		return a.Position - b.Position
	})
	ids := make([]string, 0, len(sorted))
	for _, order := range sorted {
		ids = append(ids, order.ColumnID)
	}
	return m.svc.ReorderColumns(ctx, boardID, ids)
}

// DeleteTask deletes one task with the configured default mode.
func (m serviceMover) DeleteTask(ctx context.Context, taskID string) error {
	mode := m.deleteMode
	if mode == "" {
		mode = app.DeleteModeArchive
	}
	return m.svc.DeleteTask(ctx, taskID, mode)
}

// noticeBuffer collects engine notifications so the update loop can drain
// them after each engine call. The engine emits synchronously on the UI
// goroutine; the mutex only guards against draining mid-resolve.
type noticeBuffer struct {
	mu    sync.Mutex
	items []engine.Notification
}

// Notify implements engine.NotificationSink.
func (b *noticeBuffer) Notify(n engine.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, n)
}

// drain returns and clears all buffered notifications.
func (b *noticeBuffer) drain() []engine.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	return out
}

// inputMode represents a selectable mode.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeAddTask
	modeSearch
	modeTaskInfo
	modeConfirmDelete
)

// confirmTarget describes the pending delete a confirm overlay refers to.
type confirmTarget struct {
	taskIDs []string
	batch   bool
}

type Model struct {
	svc     Service
	eng     *engine.Engine
	notices *noticeBuffer

	ready  bool
	width  int
	height int
	err    error

	status     string
	statusKind engine.NotificationKind
	toasts     []toast

	help help.Model
	keys keyMap
	md   markdownRenderer

	taskFields        TaskFieldConfig
	defaultDeleteMode app.DeleteMode
	mouseDrag         bool
	showWIPWarnings   bool
	prefs             engine.PreferenceStore

	boards        []domain.Board
	selectedBoard int
	snapshot      board.Snapshot

	selectedColumn int
	selectedTask   int

	// hoverColumn and hoverIndex track the keyboard-driven drop slot while a
	// drag session is active.
	hoverColumn int
	hoverIndex  int

	mode        inputMode
	titleInput  textinput.Model
	searchInput textinput.Model

	searchQuery   string
	searchMatches map[string]struct{}
	searchApplied bool

	selectedTaskIDs map[string]struct{}
	collapsed       map[string]bool

	lastDeletedTaskID string
	infoTaskID        string
	pendingConfirm    confirmTarget
}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	boards        []domain.Board
	selectedBoard int
	snapshot      board.Snapshot
	err           error
}

// actionMsg carries message data through update handling.
type actionMsg struct {
	err           error
	status        string
	reload        bool
	deletedTaskID string
}

// taskDropMsg carries one settled task-move persistence outcome.
type taskDropMsg struct {
	plan engine.TaskDropPlan
	err  error
}

// columnDropMsg carries one settled column-reorder persistence outcome.
type columnDropMsg struct {
	plan engine.ColumnDropPlan
	err  error
}

// batchDoneMsg carries one finished batch operation.
type batchDoneMsg struct {
	result engine.BatchResult
	verb   string
}

// searchResultsMsg carries message data through update handling.
type searchResultsMsg struct {
	query   string
	matches []domain.Task
	err     error
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	titleInput := textinput.New()
	titleInput.Prompt = "title: "
	titleInput.Placeholder = "task title"
	titleInput.CharLimit = 120
	searchInput := textinput.New()
	searchInput.Prompt = "/"
	searchInput.Placeholder = "title, description, assignee"
	searchInput.CharLimit = 120

	notices := &noticeBuffer{}
	m := Model{
		svc:               svc,
		eng:               engine.New(board.Snapshot{}, notices, time.Now),
		notices:           notices,
		status:            "loading...",
		help:              h,
		keys:              newKeyMap(config.KeyConfig{}),
		taskFields:        DefaultTaskFieldConfig(),
		defaultDeleteMode: app.DeleteModeArchive,
		mouseDrag:         true,
		showWIPWarnings:   true,
		prefs:             engine.NewMemoryPreferenceStore(),
		titleInput:        titleInput,
		searchInput:       searchInput,
		searchMatches:     map[string]struct{}{},
		selectedTaskIDs:   map[string]struct{}{},
		collapsed:         map[string]bool{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// mover returns the engine-facing persistence adapter.
func (m Model) mover() engine.Mover {
	return serviceMover{svc: m.svc, deleteMode: m.defaultDeleteMode}
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.boards = msg.boards
		m.selectedBoard = msg.selectedBoard
		m.snapshot = msg.snapshot
		m.eng.Replace(msg.snapshot)
		m.loadColumnPrefs()
		m.clampSelections()
		m.retainSelectionForLoadedTasks()
		if m.status == "" || m.status == "loading..." || m.status == "reloading..." {
			m.setStatus(engine.NoticeInfo, "ready")
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.setStatus(engine.NoticeError, msg.err.Error())
			return m, nil
		}
		if msg.status != "" {
			m.setStatus(engine.NoticeInfo, msg.status)
		}
		if msg.deletedTaskID != "" {
			m.lastDeletedTaskID = msg.deletedTaskID
		}
		if msg.reload {
			return m, m.loadData
		}
		return m, nil

	case taskDropMsg:
		m.snapshot = m.eng.ResolveTaskDrop(msg.plan, msg.err)
		toastCmd := m.drainNotices()
		m.clampSelections()
		return m, tea.Batch(m.loadData, toastCmd)

	case columnDropMsg:
		m.snapshot = m.eng.ResolveColumnDrop(msg.plan, msg.err)
		toastCmd := m.drainNotices()
		m.clampSelections()
		return m, tea.Batch(m.loadData, toastCmd)

	case batchDoneMsg:
		kind := engine.NoticeSuccess
		if msg.result.Failed() {
			kind = engine.NoticeWarning
		}
		m.setStatus(kind, msg.result.Summary(msg.verb))
		m.pushToast(kind, msg.result.Summary(msg.verb))
		m.selectedTaskIDs = map[string]struct{}{}
		return m, tea.Batch(m.loadData, toastTick())

	case toastTickMsg:
		m.expireToasts(time.Time(msg))
		if len(m.toasts) > 0 {
			return m, toastTick()
		}
		return m, nil

	case searchResultsMsg:
		if msg.err != nil {
			m.setStatus(engine.NoticeError, msg.err.Error())
			return m, nil
		}
		m.searchQuery = msg.query
		m.searchApplied = true
		m.searchMatches = map[string]struct{}{}
		for _, task := range msg.matches {
			m.searchMatches[task.ID] = struct{}{}
		}
		m.setStatus(engine.NoticeInfo, fmt.Sprintf("%d matches", len(msg.matches)))
		return m, nil

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	case tea.MouseWheelMsg:
		return m.handleMouseWheel(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	default:
		return m, nil
	}
}

// loadData loads required data for the current operation.
func (m Model) loadData() tea.Msg {
	ctx := context.Background()
	boards, err := m.svc.ListBoards(ctx, false)
	if err != nil {
		return loadedMsg{err: err}
	}
	if len(boards) == 0 {
		return loadedMsg{err: fmt.Errorf("no boards available")}
	}
	idx := clamp(m.selectedBoard, 0, len(boards)-1)
	snapshot, err := m.svc.BoardView(ctx, boards[idx].ID)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{boards: boards, selectedBoard: idx, snapshot: snapshot}
}

// loadColumnPrefs refreshes collapsed flags from the preference store.
func (m *Model) loadColumnPrefs() {
	m.collapsed = map[string]bool{}
	for _, col := range m.snapshot.Columns {
		if p, ok := m.prefs.Get(m.snapshot.Board.ID, col.Column.ID); ok {
			m.collapsed[col.Column.ID] = p.Collapsed
		}
	}
}

// setStatus records one status line entry with its severity.
func (m *Model) setStatus(kind engine.NotificationKind, message string) {
	m.status = message
	m.statusKind = kind
}

// drainNotices folds buffered engine notifications into the status line and
// the toast stack. The most recent notice wins the status slot. The returned
// command drives toast expiry and is nil when nothing was drained.
func (m *Model) drainNotices() tea.Cmd {
	drained := m.notices.drain()
	for _, n := range drained {
		m.setStatus(n.Kind, n.Message)
		m.pushToast(n.Kind, n.Message)
	}
	if len(drained) == 0 {
		return nil
	}
	return toastTick()
}

// handleNormalModeKey handles normal mode key.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	dragging := m.eng.Phase() == drag.PhaseDragging

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.cancelDrag):
		if dragging {
			_ = m.eng.CancelDrag()
			m.setStatus(engine.NoticeInfo, "drag canceled")
			return m, nil
		}
		if m.help.ShowAll {
			m.help.ShowAll = false
			return m, nil
		}
		if m.searchApplied {
			m.searchApplied = false
			m.searchQuery = ""
			m.searchMatches = map[string]struct{}{}
			m.setStatus(engine.NoticeInfo, "search cleared")
			return m, nil
		}
		if len(m.selectedTaskIDs) > 0 {
			m.setStatus(engine.NoticeInfo, fmt.Sprintf("cleared %d selected tasks", len(m.selectedTaskIDs)))
			m.selectedTaskIDs = map[string]struct{}{}
			return m, nil
		}
		return m, nil

	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData

	case key.Matches(msg, m.keys.moveLeft):
		if dragging {
			return m.moveHover(-1, 0)
		}
		if m.selectedColumn > 0 {
			m.selectedColumn--
			m.selectedTask = 0
		}
		return m, nil

	case key.Matches(msg, m.keys.moveRight):
		if dragging {
			return m.moveHover(1, 0)
		}
		if m.selectedColumn < len(m.snapshot.Columns)-1 {
			m.selectedColumn++
			m.selectedTask = 0
		}
		return m, nil

	case key.Matches(msg, m.keys.moveDown):
		if dragging {
			return m.moveHover(0, 1)
		}
		if tasks := m.currentColumnTasks(); len(tasks) > 0 && m.selectedTask < len(tasks)-1 {
			m.selectedTask++
		}
		return m, nil

	case key.Matches(msg, m.keys.moveUp):
		if dragging {
			return m.moveHover(0, -1)
		}
		if m.selectedTask > 0 {
			m.selectedTask--
		}
		return m, nil

	case key.Matches(msg, m.keys.nextBoard):
		if len(m.boards) > 1 && !dragging {
			m.selectedBoard = (m.selectedBoard + 1) % len(m.boards)
			m.status = "loading..."
			return m, m.loadData
		}
		return m, nil

	case key.Matches(msg, m.keys.dropTask):
		if dragging {
			return m.settleDrop()
		}
		return m, nil

	case key.Matches(msg, m.keys.liftTask):
		if dragging {
			return m.settleDrop()
		}
		return m.liftSelectedTask()

	case key.Matches(msg, m.keys.liftColumn):
		if dragging {
			return m, nil
		}
		return m.liftSelectedColumn()

	case key.Matches(msg, m.keys.multiSelect):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.setStatus(engine.NoticeInfo, "no task selected")
			return m, nil
		}
		if _, selected := m.selectedTaskIDs[task.ID]; selected {
			delete(m.selectedTaskIDs, task.ID)
			m.setStatus(engine.NoticeInfo, fmt.Sprintf("unselected %q (%d total)", truncate(task.Title, 28), len(m.selectedTaskIDs)))
		} else {
			m.selectedTaskIDs[task.ID] = struct{}{}
			m.setStatus(engine.NoticeInfo, fmt.Sprintf("selected %q (%d total)", truncate(task.Title, 28), len(m.selectedTaskIDs)))
		}
		return m, nil

	case key.Matches(msg, m.keys.batchMove):
		return m.batchMoveSelection()

	case key.Matches(msg, m.keys.addTask):
		if len(m.snapshot.Columns) == 0 {
			m.setStatus(engine.NoticeWarning, "no column to add into")
			return m, nil
		}
		m.help.ShowAll = false
		m.mode = modeAddTask
		m.titleInput.SetValue("")
		return m, m.titleInput.Focus()

	case key.Matches(msg, m.keys.taskInfo):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.setStatus(engine.NoticeInfo, "no task selected")
			return m, nil
		}
		m.help.ShowAll = false
		m.mode = modeTaskInfo
		m.infoTaskID = task.ID
		return m, nil

	case key.Matches(msg, m.keys.deleteTask):
		return m.startDeleteConfirm()

	case key.Matches(msg, m.keys.restoreTask):
		if m.lastDeletedTaskID == "" {
			m.setStatus(engine.NoticeInfo, "nothing to restore")
			return m, nil
		}
		taskID := m.lastDeletedTaskID
		m.lastDeletedTaskID = ""
		return m, func() tea.Msg {
			if _, err := m.svc.RestoreTask(context.Background(), taskID); err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{status: "task restored", reload: true}
		}

	case key.Matches(msg, m.keys.yankTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.setStatus(engine.NoticeInfo, "no task selected")
			return m, nil
		}
		text := task.Title
		if strings.TrimSpace(task.Description) != "" {
			text += "\n\n" + task.Description
		}
		if err := clipboard.WriteAll(text); err != nil {
			m.setStatus(engine.NoticeError, "copy failed: "+err.Error())
		} else {
			m.setStatus(engine.NoticeSuccess, "task copied to clipboard")
		}
		return m, nil

	case key.Matches(msg, m.keys.collapse):
		col, ok := m.currentColumn()
		if !ok {
			return m, nil
		}
		collapsed := !m.collapsed[col.Column.ID]
		m.collapsed[col.Column.ID] = collapsed
		if err := m.prefs.Set(m.snapshot.Board.ID, col.Column.ID, engine.ColumnPrefs{Collapsed: collapsed}); err != nil {
			m.setStatus(engine.NoticeWarning, "save preference failed: "+err.Error())
		}
		return m, nil

	case key.Matches(msg, m.keys.search):
		m.mode = modeSearch
		m.searchInput.SetValue(m.searchQuery)
		m.searchInput.CursorEnd()
		return m, m.searchInput.Focus()

	default:
		return m, nil
	}
}

// handleInputModeKey handles input mode key.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeAddTask:
		switch msg.String() {
		case "esc":
			m.mode = modeNone
			m.titleInput.Blur()
			return m, nil
		case "enter":
			title := strings.TrimSpace(m.titleInput.Value())
			if title == "" {
				m.setStatus(engine.NoticeWarning, "title is required")
				return m, nil
			}
			col, ok := m.currentColumn()
			if !ok {
				m.mode = modeNone
				return m, nil
			}
			m.mode = modeNone
			m.titleInput.Blur()
			boardID := m.snapshot.Board.ID
			status := col.Column.Status
			return m, func() tea.Msg {
				_, err := m.svc.CreateTask(context.Background(), app.CreateTaskInput{
					BoardID: boardID,
					Status:  status,
					Title:   title,
				})
				if err != nil {
					return actionMsg{err: err}
				}
				return actionMsg{status: "task created", reload: true}
			}
		default:
			var cmd tea.Cmd
			m.titleInput, cmd = m.titleInput.Update(msg)
			return m, cmd
		}

	case modeSearch:
		switch msg.String() {
		case "esc":
			m.mode = modeNone
			m.searchInput.Blur()
			return m, nil
		case "enter":
			query := strings.TrimSpace(m.searchInput.Value())
			m.mode = modeNone
			m.searchInput.Blur()
			if query == "" {
				m.searchApplied = false
				m.searchQuery = ""
				m.searchMatches = map[string]struct{}{}
				m.setStatus(engine.NoticeInfo, "search cleared")
				return m, nil
			}
			boardID := m.snapshot.Board.ID
			return m, func() tea.Msg {
				matches, err := m.svc.SearchTasks(context.Background(), boardID, query)
				return searchResultsMsg{query: query, matches: matches, err: err}
			}
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}

	case modeTaskInfo:
		switch msg.String() {
		case "esc", "q", "i", "enter":
			m.mode = modeNone
			m.infoTaskID = ""
		}
		return m, nil

	case modeConfirmDelete:
		switch msg.String() {
		case "y", "Y", "enter":
			target := m.pendingConfirm
			m.mode = modeNone
			m.pendingConfirm = confirmTarget{}
			return m.executeDelete(target)
		case "n", "N", "esc":
			m.mode = modeNone
			m.pendingConfirm = confirmTarget{}
			m.setStatus(engine.NoticeInfo, "delete canceled")
		}
		return m, nil

	default:
		m.mode = modeNone
		return m, nil
	}
}

// liftSelectedTask begins a keyboard drag for the cursor task.
func (m Model) liftSelectedTask() (tea.Model, tea.Cmd) {
	task, ok := m.selectedTaskInCurrentColumn()
	if !ok {
		m.setStatus(engine.NoticeInfo, "no task to lift")
		return m, nil
	}
	if err := m.eng.BeginTaskDrag(task.ID); err != nil {
		m.setStatus(engine.NoticeWarning, err.Error())
		return m, nil
	}
	m.hoverColumn = m.selectedColumn
	m.hoverIndex = m.selectedTask
	m.applyHover()
	m.setStatus(engine.NoticeInfo, fmt.Sprintf("moving %q", truncate(task.Title, 32)))
	return m, nil
}

// liftSelectedColumn begins a keyboard drag for the cursor column.
func (m Model) liftSelectedColumn() (tea.Model, tea.Cmd) {
	col, ok := m.currentColumn()
	if !ok {
		return m, nil
	}
	if err := m.eng.BeginColumnDrag(col.Column.ID); err != nil {
		m.setStatus(engine.NoticeWarning, err.Error())
		return m, nil
	}
	m.hoverColumn = m.selectedColumn
	m.hoverIndex = m.selectedColumn
	m.applyHover()
	m.setStatus(engine.NoticeInfo, fmt.Sprintf("moving column %q", col.Column.Name))
	return m, nil
}

// moveHover shifts the keyboard drop slot and refreshes hover validation.
func (m Model) moveHover(dx, dy int) (tea.Model, tea.Cmd) {
	session, ok := m.eng.Session()
	if !ok {
		return m, nil
	}
	if session.Subject.Kind == drag.SubjectColumn {
		m.hoverIndex = clamp(m.hoverIndex+dx+dy, 0, len(m.snapshot.Columns)-1)
		m.applyHover()
		return m, nil
	}

	if dx != 0 {
		m.hoverColumn = clamp(m.hoverColumn+dx, 0, len(m.snapshot.Columns)-1)
		m.hoverIndex = clamp(m.hoverIndex, 0, m.slotCeiling(m.hoverColumn, session.Subject.ID))
	}
	if dy != 0 {
		m.hoverIndex = clamp(m.hoverIndex+dy, 0, m.slotCeiling(m.hoverColumn, session.Subject.ID))
	}
	m.applyHover()
	return m, nil
}

// slotCeiling returns the maximum insertion index for a column, treating the
// dragged task's own column as one slot shorter since the task leaves it.
func (m Model) slotCeiling(colIdx int, draggedTaskID string) int {
	if colIdx < 0 || colIdx >= len(m.snapshot.Columns) {
		return 0
	}
	tasks := m.snapshot.Columns[colIdx].Tasks
	ceiling := len(tasks)
	for _, task := range tasks {
		if task.ID == draggedTaskID {
			ceiling--
			break
		}
	}
	return max(ceiling, 0)
}

// applyHover pushes the tracked hover slot into the engine session.
func (m *Model) applyHover() {
	session, ok := m.eng.Session()
	if !ok {
		return
	}
	if session.Subject.Kind == drag.SubjectColumn {
		_ = m.eng.HoverSlot(drag.Slot{Index: m.hoverIndex})
		return
	}
	if m.hoverColumn < 0 || m.hoverColumn >= len(m.snapshot.Columns) {
		return
	}
	_ = m.eng.HoverSlot(drag.Slot{
		Column: string(m.snapshot.Columns[m.hoverColumn].Column.Status),
		Index:  m.hoverIndex,
	})
}

// settleDrop ends the active gesture and dispatches the persistence call.
func (m Model) settleDrop() (tea.Model, tea.Cmd) {
	session, ok := m.eng.Session()
	if !ok {
		return m, nil
	}
	if session.Subject.Kind == drag.SubjectColumn {
		plan, dropped, err := m.eng.DropColumn()
		toastCmd := m.drainNotices()
		if err != nil {
			m.setStatus(engine.NoticeError, err.Error())
			return m, toastCmd
		}
		if !dropped {
			return m, toastCmd
		}
		m.snapshot = plan.Snapshot
		m.clampSelections()
		mover := m.mover()
		return m, tea.Batch(func() tea.Msg {
			return columnDropMsg{plan: plan, err: engine.ExecuteColumnReorder(context.Background(), mover, plan)}
		}, toastCmd)
	}

	plan, dropped, err := m.eng.DropTask()
	toastCmd := m.drainNotices()
	if err != nil {
		m.setStatus(engine.NoticeError, err.Error())
		return m, toastCmd
	}
	if !dropped {
		return m, toastCmd
	}
	m.snapshot = plan.Snapshot
	m.followDroppedTask(plan.TaskID)
	mover := m.mover()
	return m, tea.Batch(func() tea.Msg {
		return taskDropMsg{plan: plan, err: engine.ExecuteTaskMove(context.Background(), mover, plan)}
	}, toastCmd)
}

// followDroppedTask moves the cursor to the task's post-drop location.
func (m *Model) followDroppedTask(taskID string) {
	if colIdx, taskIdx, ok := m.snapshot.TaskLocation(taskID); ok {
		m.selectedColumn = colIdx
		m.selectedTask = taskIdx
	}
	m.clampSelections()
}

// batchMoveSelection moves every multi-selected task to the cursor column.
func (m Model) batchMoveSelection() (tea.Model, tea.Cmd) {
	if len(m.selectedTaskIDs) == 0 {
		m.setStatus(engine.NoticeInfo, "no tasks selected")
		return m, nil
	}
	col, ok := m.currentColumn()
	if !ok {
		return m, nil
	}
	taskIDs := make([]string, 0, len(m.selectedTaskIDs))
	for _, colView := range m.snapshot.Columns {
		for _, task := range colView.Tasks {
			if _, selected := m.selectedTaskIDs[task.ID]; selected {
				taskIDs = append(taskIDs, task.ID)
			}
		}
	}
	toStatus := col.Column.Status
	startPosition := len(col.Tasks) + 1
	mover := m.mover()
	m.setStatus(engine.NoticeInfo, fmt.Sprintf("moving %d tasks...", len(taskIDs)))
	return m, func() tea.Msg {
		result := engine.BatchMoveTasks(context.Background(), mover, taskIDs, toStatus, startPosition)
		return batchDoneMsg{result: result, verb: "moved"}
	}
}

// startDeleteConfirm opens the confirm overlay for the cursor task or the
// multi-selection.
func (m Model) startDeleteConfirm() (tea.Model, tea.Cmd) {
	if len(m.selectedTaskIDs) > 0 {
		taskIDs := make([]string, 0, len(m.selectedTaskIDs))
		for taskID := range m.selectedTaskIDs {
			taskIDs = append(taskIDs, taskID)
		}
		slices.Sort(taskIDs)
		m.mode = modeConfirmDelete
		m.pendingConfirm = confirmTarget{taskIDs: taskIDs, batch: true}
		return m, nil
	}
	task, ok := m.selectedTaskInCurrentColumn()
	if !ok {
		m.setStatus(engine.NoticeInfo, "no task selected")
		return m, nil
	}
	m.mode = modeConfirmDelete
	m.pendingConfirm = confirmTarget{taskIDs: []string{task.ID}}
	return m, nil
}

// executeDelete runs the confirmed delete as a background command.
func (m Model) executeDelete(target confirmTarget) (tea.Model, tea.Cmd) {
	if len(target.taskIDs) == 0 {
		return m, nil
	}
	if target.batch {
		mover := m.mover()
		taskIDs := target.taskIDs
		m.setStatus(engine.NoticeInfo, fmt.Sprintf("deleting %d tasks...", len(taskIDs)))
		return m, func() tea.Msg {
			result := engine.BatchDeleteTasks(context.Background(), mover, taskIDs)
			return batchDoneMsg{result: result, verb: "deleted"}
		}
	}
	taskID := target.taskIDs[0]
	mode := m.defaultDeleteMode
	return m, func() tea.Msg {
		if err := m.svc.DeleteTask(context.Background(), taskID, mode); err != nil {
			return actionMsg{err: err}
		}
		status := "task deleted"
		deletedID := ""
		if mode == app.DeleteModeArchive {
			status = "task archived (u restores)"
			deletedID = taskID
		}
		return actionMsg{status: status, reload: true, deletedTaskID: deletedID}
	}
}

// handleMouseWheel handles mouse wheel.
func (m Model) handleMouseWheel(msg tea.MouseWheelMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone || m.help.ShowAll {
		return m, nil
	}
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseWheelUp:
		if m.selectedTask > 0 {
			m.selectedTask--
		}
	case tea.MouseWheelDown:
		if m.selectedTask < len(tasks)-1 {
			m.selectedTask++
		}
	}
	return m, nil
}

// handleMouseClick selects the pressed cell and, when mouse drag is enabled,
// lifts the task under the pointer.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNone || m.help.ShowAll {
		return m, nil
	}
	if msg.Button != tea.MouseLeft {
		return m, nil
	}
	colIdx, ok := m.columnAtPointer(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	m.selectedColumn = colIdx
	tasks := m.snapshot.Columns[colIdx].Tasks
	if len(tasks) == 0 {
		m.selectedTask = 0
		return m, nil
	}
	row := msg.Y - boardTop - 2
	if row < 0 {
		return m, nil
	}
	m.selectedTask = clamp(m.taskIndexAtRow(tasks, row), 0, len(tasks)-1)
	if !m.mouseDrag || m.eng.Phase() != drag.PhaseIdle {
		return m, nil
	}
	return m.liftSelectedTask()
}

// handleMouseMotion re-targets the active drag session to the hovered slot.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if !m.mouseDrag || m.eng.Phase() != drag.PhaseDragging {
		return m, nil
	}
	colIdx, ok := m.columnAtPointer(msg.X, msg.Y)
	if !ok {
		_ = m.eng.ClearHover()
		return m, nil
	}
	session, hasSession := m.eng.Session()
	if !hasSession {
		return m, nil
	}
	m.hoverColumn = colIdx
	row := max(msg.Y-boardTop-2, 0)
	idx := m.taskIndexAtRow(m.snapshot.Columns[colIdx].Tasks, row)
	m.hoverIndex = clamp(idx, 0, m.slotCeiling(colIdx, session.Subject.ID))
	m.applyHover()
	return m, nil
}

// handleMouseRelease drops the dragged item on the last hovered slot.
func (m Model) handleMouseRelease(msg tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.mouseDrag || m.eng.Phase() != drag.PhaseDragging {
		return m, nil
	}
	if msg.Button != tea.MouseLeft && msg.Button != tea.MouseNone {
		return m, nil
	}
	return m.settleDrop()
}

// columnAtPointer hit-tests the pointer against the rendered column strips.
func (m Model) columnAtPointer(x, y int) (int, bool) {
	regions := m.columnRegions()
	if len(regions) == 0 {
		return 0, false
	}
	pointer := drag.Point{X: x, Y: y}
	// A cell-sized rectangle keeps ResolveTarget's overlap and proximity
	// tiers meaningful for pointer-only input.
	hit, ok := drag.ResolveTarget(pointer, drag.Rect{X: x, Y: y, Width: 1, Height: 1}, regions)
	if !ok {
		return 0, false
	}
	for idx, col := range m.snapshot.Columns {
		if col.Column.ID == hit.ID {
			return idx, true
		}
	}
	return 0, false
}

// columnRegions derives per-column screen rectangles matching the renderer's
// layout arithmetic.
func (m Model) columnRegions() []drag.Region {
	regions := make([]drag.Region, 0, len(m.snapshot.Columns))
	x := 0
	height := m.columnHeight()
	for _, col := range m.snapshot.Columns {
		width := m.renderedColumnWidth(col.Column.ID) + columnOverhead
		regions = append(regions, drag.Region{
			ID:   col.Column.ID,
			Rect: drag.Rect{X: x, Y: boardTop, Width: width, Height: height},
		})
		x += width
	}
	return regions
}

// taskIndexAtRow maps a row offset inside a column body to a task index,
// mirroring the renderer's one-or-two-line rows with blank separators.
func (m Model) taskIndexAtRow(tasks []domain.Task, row int) int {
	line := 0
	for idx, task := range tasks {
		rows := 1
		if m.taskSecondary(task) != "" {
			rows++
		}
		if row < line+rows+1 {
			return idx
		}
		line += rows + 1
	}
	return max(len(tasks)-1, 0)
}

// clampSelections clamps selections.
func (m *Model) clampSelections() {
	if len(m.snapshot.Columns) == 0 {
		m.selectedColumn = 0
		m.selectedTask = 0
		return
	}
	m.selectedColumn = clamp(m.selectedColumn, 0, len(m.snapshot.Columns)-1)
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		m.selectedTask = 0
		return
	}
	m.selectedTask = clamp(m.selectedTask, 0, len(tasks)-1)
}

// retainSelectionForLoadedTasks drops selected task ids no longer loaded.
func (m *Model) retainSelectionForLoadedTasks() {
	if len(m.selectedTaskIDs) == 0 {
		return
	}
	known := map[string]struct{}{}
	for _, col := range m.snapshot.Columns {
		for _, task := range col.Tasks {
			known[task.ID] = struct{}{}
		}
	}
	for taskID := range m.selectedTaskIDs {
		if _, ok := known[taskID]; !ok {
			delete(m.selectedTaskIDs, taskID)
		}
	}
}

// currentColumn returns the cursor column view.
func (m Model) currentColumn() (board.ColumnView, bool) {
	if m.selectedColumn < 0 || m.selectedColumn >= len(m.snapshot.Columns) {
		return board.ColumnView{}, false
	}
	return m.snapshot.Columns[m.selectedColumn], true
}

// currentColumnTasks returns current column tasks.
func (m Model) currentColumnTasks() []domain.Task {
	col, ok := m.currentColumn()
	if !ok {
		return nil
	}
	return col.Tasks
}

// selectedTaskInCurrentColumn returns the cursor task.
func (m Model) selectedTaskInCurrentColumn() (domain.Task, bool) {
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 || m.selectedTask < 0 || m.selectedTask >= len(tasks) {
		return domain.Task{}, false
	}
	return tasks[m.selectedTask], true
}

// taskSecondary builds the dimmed second line for a task card.
func (m Model) taskSecondary(task domain.Task) string {
	parts := make([]string, 0, 4)
	if m.taskFields.ShowPriority && task.Priority != domain.PriorityMedium {
		parts = append(parts, string(task.Priority))
	}
	if m.taskFields.ShowDueDate && task.DueAt != nil {
		parts = append(parts, "due "+task.DueAt.Format("Jan 2"))
	}
	if m.taskFields.ShowAssignee && task.Assignee != "" {
		parts = append(parts, "@"+task.Assignee)
	}
	if m.taskFields.ShowPoints && task.Points > 0 {
		parts = append(parts, fmt.Sprintf("%dpt", task.Points))
	}
	if m.taskFields.ShowDescription && strings.TrimSpace(task.Description) != "" {
		parts = append(parts, truncate(strings.TrimSpace(task.Description), 24))
	}
	return strings.Join(parts, " · ")
}

// Layout constants shared by the renderer and the mouse hit-testing math.
// boardTop is the row where column borders start: header, status context
// line, spacer. columnOverhead is border (2), padding (2), margin (1).
const (
	boardTop           = 3
	columnOverhead     = 5
	collapsedColumnW   = 3
	minColumnWidth     = 22
	maxColumnWidth     = 40
	fallbackColumnW    = 26
	minColumnHeight    = 12
	headerFooterRows = 7
)

// renderedColumnWidth returns the content width for one column.
func (m Model) renderedColumnWidth(columnID string) int {
	if m.collapsed[columnID] {
		return collapsedColumnW
	}
	return m.columnWidth()
}

// columnWidth returns the shared expanded-column content width.
func (m Model) columnWidth() int {
	expanded := 0
	for _, col := range m.snapshot.Columns {
		if !m.collapsed[col.Column.ID] {
			expanded++
		}
	}
	if expanded == 0 {
		return fallbackColumnW
	}
	w := fallbackColumnW
	if m.width > 0 {
		usable := m.width - len(m.snapshot.Columns)*columnOverhead - (len(m.snapshot.Columns)-expanded)*collapsedColumnW
		if candidate := usable / expanded; candidate > 0 {
			w = candidate
		}
	}
	return clamp(w, minColumnWidth, maxColumnWidth)
}

// columnHeight returns the column body height.
func (m Model) columnHeight() int {
	h := m.height - headerFooterRows
	return max(h, minColumnHeight)
}

// View handles view.
func (m Model) View() tea.View {
	if m.err != nil {
		v := tea.NewView("error: " + m.err.Error() + "\n\npress r to retry • q quit\n")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}
	if !m.ready || m.snapshot.Board.ID == "" {
		v := tea.NewView("loading...")
		v.MouseMode = tea.MouseModeCellMotion
		v.AltScreen = true
		return v
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	header := titleStyle.Render("tavla") + "  " + m.snapshot.Board.Name
	if len(m.boards) > 1 {
		header += statusStyle.Render(fmt.Sprintf("  [%d/%d]", m.selectedBoard+1, len(m.boards)))
	}
	if session, ok := m.eng.Session(); ok {
		if title, found := m.subjectLabel(session); found {
			header += statusStyle.Render("  moving: " + truncate(title, 32))
		}
	}
	if m.searchApplied && m.searchQuery != "" {
		header += statusStyle.Render("  search: " + m.searchQuery)
	}
	if count := len(m.selectedTaskIDs); count > 0 {
		header += statusStyle.Render(fmt.Sprintf("  selected: %d", count))
	}

	body := m.renderColumns(accent, muted, dim)

	sections := []string{header, "", body}
	if line := m.statusLine(); line != "" {
		sections = append(sections, line)
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(m.width-2, 0))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(m.width, 0)).
		Render(helpBubble.View(m.keys))

	contentHeight := lipgloss.Height(content)
	if m.height > 0 {
		contentHeight = max(m.height-lipgloss.Height(helpLine), 0)
		content = fitLines(content, contentHeight)
	}
	fullContent := content + "\n" + helpLine

	if overlay := m.renderOverlay(accent, muted, dim); overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(m.width, 1), max(overlayHeight, 1))
	}

	if stack := m.renderToasts(); stack != "" {
		stackHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			stackHeight = m.height
		}
		fullContent = overlayBottomRight(fullContent, stack, max(m.width, 1), max(stackHeight, 1))
	}

	v := tea.NewView(fullContent)
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// subjectLabel resolves the dragged subject to a display title.
func (m Model) subjectLabel(session *drag.Session) (string, bool) {
	if session.Subject.Kind == drag.SubjectColumn {
		for _, col := range m.snapshot.Columns {
			if col.Column.ID == session.Subject.ID {
				return col.Column.Name, true
			}
		}
		return "", false
	}
	task, ok := m.snapshot.TaskByID(session.Subject.ID)
	if !ok {
		return "", false
	}
	return task.Title, true
}

// renderColumns renders the board strip.
func (m Model) renderColumns(accent, muted, dim color.Color) string {
	session, dragging := m.eng.Session()
	hoverValid := false
	if dragging && session.Target != nil {
		hoverValid = session.Target.Valid
	}

	colWidth := m.columnWidth()
	colHeight := m.columnHeight()
	baseColStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		MarginRight(1).
		Width(colWidth)
	colTitle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle := lipgloss.NewStyle().Foreground(muted)
	warnStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	multiStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("237"))
	liftedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	markerStyle := lipgloss.NewStyle().Foreground(accent)
	invalidMarker := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	views := make([]string, 0, len(m.snapshot.Columns))
	for colIdx, col := range m.snapshot.Columns {
		if m.collapsed[col.Column.ID] {
			label := fmt.Sprintf("▸ %s", truncate(col.Column.Name, 1))
			collapsedStyle := baseColStyle.Width(collapsedColumnW)
			if colIdx == m.selectedColumn {
				collapsedStyle = collapsedStyle.BorderForeground(accent)
			}
			views = append(views, collapsedStyle.Render(fitLines(label, max(colHeight-2, 1))))
			continue
		}

		headerText := fmt.Sprintf("%s (%d)", col.Column.Name, len(col.Tasks))
		if col.Column.WIPLimit > 0 {
			headerText = fmt.Sprintf("%s (%d/%d)", col.Column.Name, len(col.Tasks), col.Column.WIPLimit)
		}
		lines := []string{colTitle.Render(truncate(headerText, colWidth)), ""}
		if m.showWIPWarnings && col.Column.WIPLimit > 0 && len(col.Tasks) > col.Column.WIPLimit {
			lines[1] = warnStyle.Render(fmt.Sprintf("over limit %d/%d", len(col.Tasks), col.Column.WIPLimit))
		}

		hovered := dragging && session.Subject.Kind == drag.SubjectTask && colIdx == m.hoverColumn
		marker := markerStyle.Render(strings.Repeat("─", max(colWidth-2, 1)))
		if !hoverValid {
			marker = invalidMarker.Render(strings.Repeat("┄", max(colWidth-2, 1)))
		}

		if len(col.Tasks) == 0 {
			if hovered {
				lines = append(lines, marker)
			} else {
				lines = append(lines, dimStyle.Render("(empty)"))
			}
		}

		slot := 0
		for taskIdx, task := range col.Tasks {
			lifted := dragging && session.Subject.Kind == drag.SubjectTask && session.Subject.ID == task.ID
			if hovered && !lifted && slot == m.hoverIndex {
				lines = append(lines, marker)
			}
			if !lifted {
				slot++
			}

			selected := colIdx == m.selectedColumn && taskIdx == m.selectedTask && !dragging
			_, multi := m.selectedTaskIDs[task.ID]
			dimmed := m.searchApplied && len(m.searchMatches) > 0 && !m.taskMatchesSearch(task.ID)

			prefix := "  "
			switch {
			case lifted:
				prefix = "▲ "
			case selected:
				prefix = "│ "
			case multi:
				prefix = "* "
			}
			title := prefix + truncate(task.Title, max(colWidth-4, 1))
			switch {
			case lifted:
				title = liftedStyle.Render(title)
			case dimmed:
				title = dimStyle.Render(title)
			case selected:
				title = selectedStyle.Render(title)
			case multi:
				title = multiStyle.Render(title)
			}
			lines = append(lines, title)
			if sub := m.taskSecondary(task); sub != "" {
				lines = append(lines, dimStyle.Render(prefix+truncate(sub, max(colWidth-4, 1))))
			}
			if taskIdx < len(col.Tasks)-1 {
				lines = append(lines, "")
			}
		}
		if hovered && m.hoverIndex >= slot && len(col.Tasks) > 0 {
			lines = append(lines, marker)
		}

		style := baseColStyle
		switch {
		case hovered && hoverValid:
			style = style.BorderForeground(accent)
		case hovered && !hoverValid:
			style = style.BorderForeground(lipgloss.Color("203"))
		case dragging && session.Subject.Kind == drag.SubjectColumn && colIdx == m.hoverIndex:
			style = style.BorderForeground(accent)
		case colIdx == m.selectedColumn && !dragging:
			style = style.BorderForeground(accent)
		}
		views = append(views, style.Render(fitLines(strings.Join(lines, "\n"), max(colHeight-2, 1))))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// taskMatchesSearch reports whether a task is in the applied search result.
func (m Model) taskMatchesSearch(taskID string) bool {
	_, ok := m.searchMatches[taskID]
	return ok
}

// statusLine renders the severity-colored status row.
func (m Model) statusLine() string {
	if strings.TrimSpace(m.status) == "" || m.status == "ready" {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	switch m.statusKind {
	case engine.NoticeSuccess:
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	case engine.NoticeWarning:
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	case engine.NoticeError:
		style = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	}
	return style.Render(m.status)
}

// renderOverlay renders the active modal, if any.
func (m Model) renderOverlay(accent, muted, dim color.Color) string {
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(1, 2)
	hintStyle := lipgloss.NewStyle().Foreground(muted)

	switch m.mode {
	case modeAddTask:
		col, _ := m.currentColumn()
		lines := []string{
			"New task in " + col.Column.Name,
			"",
			m.titleInput.View(),
			"",
			hintStyle.Render("enter save • esc cancel"),
		}
		return frame.Render(strings.Join(lines, "\n"))

	case modeSearch:
		lines := []string{
			"Search tasks",
			"",
			m.searchInput.View(),
			"",
			hintStyle.Render("enter search • esc cancel"),
		}
		return frame.Render(strings.Join(lines, "\n"))

	case modeTaskInfo:
		task, ok := m.snapshot.TaskByID(m.infoTaskID)
		if !ok {
			return ""
		}
		width := clamp(m.width-16, 32, 72)
		titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
		lines := []string{titleStyle.Render(truncate(task.Title, width)), ""}
		meta := []string{string(task.Status), "priority " + string(task.Priority), fmt.Sprintf("position %d", task.BoardPosition)}
		if task.DueAt != nil {
			meta = append(meta, "due "+task.DueAt.Format("2006-01-02"))
		}
		if task.Assignee != "" {
			meta = append(meta, "@"+task.Assignee)
		}
		if task.Points > 0 {
			meta = append(meta, fmt.Sprintf("%d points", task.Points))
		}
		lines = append(lines, hintStyle.Render(strings.Join(meta, " • ")))
		if desc := m.md.render(task.Description, width); desc != "" {
			lines = append(lines, "", desc)
		}
		lines = append(lines, "", hintStyle.Render("esc close"))
		return frame.Width(width + 4).Render(strings.Join(lines, "\n"))

	case modeConfirmDelete:
		label := "Delete this task?"
		if m.pendingConfirm.batch {
			label = fmt.Sprintf("Delete %d selected tasks?", len(m.pendingConfirm.taskIDs))
		}
		if m.defaultDeleteMode == app.DeleteModeArchive && !m.pendingConfirm.batch {
			label = "Archive this task?"
		}
		lines := []string{
			label,
			"",
			hintStyle.Render("y confirm • n cancel"),
		}
		return frame.Render(strings.Join(lines, "\n"))
	}

	if m.help.ShowAll {
		helpBubble := m.help
		helpBubble.ShowAll = true
		helpBubble.SetWidth(clamp(m.width-12, 40, 96))
		return frame.Render("Keys\n\n" + helpBubble.View(m.keys))
	}
	return ""
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate truncates the requested operation.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	if limit <= 1 {
		return string(rs[:limit])
	}
	return string(rs[:limit-1]) + "…"
}
