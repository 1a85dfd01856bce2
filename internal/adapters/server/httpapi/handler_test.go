package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/board"
	"github.com/hylla/tavla/internal/domain"
)

// stubBoardService provides deterministic service responses for handler tests.
type stubBoardService struct {
	boards   []domain.Board
	snapshot board.Snapshot
	task     domain.Task

	viewErr    error
	createErr  error
	updateErr  error
	moveErr    map[string]error
	deleteErr  error
	reorderErr error
	columnErr  error

	lastCreate       app.CreateTaskInput
	lastUpdate       app.UpdateTaskInput
	lastMoveTaskID   string
	lastMoveStatus   domain.Status
	lastMovePosition int
	moveCalls        []string
	lastDeleteMode   app.DeleteMode
	lastReorderIDs   []string
	deletedColumnID  string
}

func (s *stubBoardService) ListBoards(_ context.Context, _ bool) ([]domain.Board, error) {
	return append([]domain.Board(nil), s.boards...), nil
}

func (s *stubBoardService) BoardView(_ context.Context, _ string) (board.Snapshot, error) {
	if s.viewErr != nil {
		return board.Snapshot{}, s.viewErr
	}
	return s.snapshot, nil
}

func (s *stubBoardService) CreateTask(_ context.Context, in app.CreateTaskInput) (domain.Task, error) {
	s.lastCreate = in
	if s.createErr != nil {
		return domain.Task{}, s.createErr
	}
	return s.task, nil
}

func (s *stubBoardService) UpdateTask(_ context.Context, in app.UpdateTaskInput) (domain.Task, error) {
	s.lastUpdate = in
	if s.updateErr != nil {
		return domain.Task{}, s.updateErr
	}
	return s.task, nil
}

func (s *stubBoardService) MoveTask(_ context.Context, taskID string, toStatus domain.Status, position int) (domain.Task, error) {
	s.lastMoveTaskID = taskID
	s.lastMoveStatus = toStatus
	s.lastMovePosition = position
	s.moveCalls = append(s.moveCalls, taskID)
	if err := s.moveErr[taskID]; err != nil {
		return domain.Task{}, err
	}
	return s.task, nil
}

func (s *stubBoardService) DeleteTask(_ context.Context, _ string, mode app.DeleteMode) error {
	s.lastDeleteMode = mode
	return s.deleteErr
}

func (s *stubBoardService) ReorderColumns(_ context.Context, _ string, orderedIDs []string) error {
	s.lastReorderIDs = append([]string(nil), orderedIDs...)
	return s.reorderErr
}

func (s *stubBoardService) DeleteColumn(_ context.Context, _, columnID string) error {
	s.deletedColumnID = columnID
	return s.columnErr
}

func newStubService(t *testing.T) *stubBoardService {
	t.Helper()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	b, err := domain.NewBoard("b1", "Inbox", "Default board", now)
	if err != nil {
		t.Fatalf("NewBoard() error = %v", err)
	}
	todo, err := domain.NewColumn("c1", "b1", "To Do", domain.StatusTodo, 1, 0, now)
	if err != nil {
		t.Fatalf("NewColumn() error = %v", err)
	}
	doing, err := domain.NewColumn("c2", "b1", "Doing", domain.StatusProgress, 2, 2, now)
	if err != nil {
		t.Fatalf("NewColumn() error = %v", err)
	}
	task, err := domain.NewTask(domain.TaskInput{
		ID:            "t1",
		BoardID:       "b1",
		Status:        domain.StatusTodo,
		BoardPosition: 1,
		Title:         "Task One",
	}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	return &stubBoardService{
		boards:   []domain.Board{b},
		snapshot: board.BuildSnapshot(b, []domain.Column{todo, doing}, []domain.Task{task}),
		task:     task,
	}
}

func doJSON(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()
	var envelope ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return envelope
}

// TestHandlerGetBoardViewShape verifies the board view wire format.
func TestHandlerGetBoardViewShape(t *testing.T) {
	service := newStubService(t)
	handler := NewHandler(service)

	rec := doJSON(t, handler, http.MethodGet, "/boards/b1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var view boardViewResponse
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if view.Board.ID != "b1" || view.Board.Name != "Inbox" {
		t.Fatalf("board = %#v, want b1/Inbox", view.Board)
	}
	if len(view.Columns) != 2 {
		t.Fatalf("columns = %d, want 2", len(view.Columns))
	}
	first := view.Columns[0]
	if first.Status != "todo" || first.Position != 1 {
		t.Fatalf("first column = %#v, want todo at position 1", first)
	}
	if len(first.Tasks) != 1 || first.Tasks[0].ID != "t1" || first.Tasks[0].BoardPosition != 1 {
		t.Fatalf("first column tasks = %#v, want t1 at position 1", first.Tasks)
	}
	if second := view.Columns[1]; second.WIPLimit != 2 || len(second.Tasks) != 0 {
		t.Fatalf("second column = %#v, want empty with wip limit 2", second)
	}
}

// TestHandlerListBoards verifies board list envelope and archived filter plumb-through.
func TestHandlerListBoards(t *testing.T) {
	service := newStubService(t)
	handler := NewHandler(service)

	rec := doJSON(t, handler, http.MethodGet, "/boards", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var payload struct {
		Boards []boardPayload `json:"boards"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(payload.Boards) != 1 || payload.Boards[0].ID != "b1" {
		t.Fatalf("boards = %#v, want single b1", payload.Boards)
	}
}

// TestHandlerMoveTaskSuccess verifies move request plumbing and response mapping.
func TestHandlerMoveTaskSuccess(t *testing.T) {
	service := newStubService(t)
	handler := NewHandler(service)

	rec := doJSON(t, handler, http.MethodPost, "/tasks/t1/move", `{"to_status":"progress","position":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var task taskPayload
	if err := json.NewDecoder(rec.Body).Decode(&task); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if task.ID != "t1" {
		t.Fatalf("task id = %q, want t1", task.ID)
	}
	if service.lastMoveTaskID != "t1" || service.lastMoveStatus != domain.StatusProgress || service.lastMovePosition != 2 {
		t.Fatalf("move call = (%q, %q, %d), want (t1, progress, 2)",
			service.lastMoveTaskID, service.lastMoveStatus, service.lastMovePosition)
	}
}

// TestHandlerMoveTaskErrorMapping verifies structured status mapping for move errors.
func TestHandlerMoveTaskErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "wip limit conflict",
			err:        errors.Join(domain.ErrWIPLimitReached, errors.New("column full")),
			wantStatus: http.StatusConflict,
			wantCode:   "wip_limit_reached",
		},
		{
			name:       "missing task",
			err:        errors.Join(app.ErrNotFound, errors.New("task missing")),
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "internal failure",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			service := newStubService(t)
			service.moveErr = map[string]error{"t1": tt.err}
			handler := NewHandler(service)

			rec := doJSON(t, handler, http.MethodPost, "/tasks/t1/move", `{"to_status":"done","position":1}`)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if envelope := decodeEnvelope(t, rec); envelope.Error.Code != tt.wantCode {
				t.Fatalf("code = %q, want %q", envelope.Error.Code, tt.wantCode)
			}
		})
	}
}

// TestHandlerMoveTaskRequiresStatus verifies missing to_status fails closed.
func TestHandlerMoveTaskRequiresStatus(t *testing.T) {
	handler := NewHandler(newStubService(t))

	rec := doJSON(t, handler, http.MethodPost, "/tasks/t1/move", `{"position":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if envelope := decodeEnvelope(t, rec); envelope.Error.Code != "invalid_request" {
		t.Fatalf("code = %q, want invalid_request", envelope.Error.Code)
	}
}

// TestHandlerCreateTask verifies creation status code and input mapping.
func TestHandlerCreateTask(t *testing.T) {
	service := newStubService(t)
	handler := NewHandler(service)

	rec := doJSON(t, handler, http.MethodPost, "/tasks",
		`{"board_id":"b1","status":"todo","title":"Task One","priority":"high","assignee":"sam"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if service.lastCreate.BoardID != "b1" || service.lastCreate.Status != domain.StatusTodo {
		t.Fatalf("create input = %#v, want board b1 status todo", service.lastCreate)
	}
	if service.lastCreate.Priority != domain.PriorityHigh || service.lastCreate.Assignee != "sam" {
		t.Fatalf("create input = %#v, want high priority for sam", service.lastCreate)
	}
}

// TestHandlerUpdateTask verifies PATCH plumbing.
func TestHandlerUpdateTask(t *testing.T) {
	service := newStubService(t)
	handler := NewHandler(service)

	rec := doJSON(t, handler, http.MethodPatch, "/tasks/t1", `{"title":"Task One Updated","points":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if service.lastUpdate.TaskID != "t1" || service.lastUpdate.Title != "Task One Updated" {
		t.Fatalf("update input = %#v, want t1 titled Task One Updated", service.lastUpdate)
	}
	if service.lastUpdate.Points != 3 {
		t.Fatalf("points = %d, want 3", service.lastUpdate.Points)
	}
}

// TestHandlerDeleteTaskPassesMode verifies the mode query parameter reaches the service.
func TestHandlerDeleteTaskPassesMode(t *testing.T) {
	service := newStubService(t)
	handler := NewHandler(service)

	rec := doJSON(t, handler, http.MethodDelete, "/tasks/t1?mode=hard", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if service.lastDeleteMode != app.DeleteModeHard {
		t.Fatalf("mode = %q, want hard", service.lastDeleteMode)
	}
}

// TestHandlerReorderColumnsReturnsRefreshedView verifies the reorder round trip.
func TestHandlerReorderColumnsReturnsRefreshedView(t *testing.T) {
	service := newStubService(t)
	handler := NewHandler(service)

	rec := doJSON(t, handler, http.MethodPost, "/boards/b1/columns/reorder", `{"column_ids":["c2","c1"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := service.lastReorderIDs; !slices.Equal(got, []string{"c2", "c1"}) {
		t.Fatalf("ordered ids = %#v, want [c2 c1]", got)
	}
	var view boardViewResponse
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if view.Board.ID != "b1" {
		t.Fatalf("board id = %q, want b1", view.Board.ID)
	}
}

// TestHandlerReorderColumnsRejectsPartialOrder verifies the full-permutation rule maps to 400.
func TestHandlerReorderColumnsRejectsPartialOrder(t *testing.T) {
	service := newStubService(t)
	service.reorderErr = errors.Join(app.ErrBadColumnOrder, errors.New("order names 1 of 2 columns"))
	handler := NewHandler(service)

	rec := doJSON(t, handler, http.MethodPost, "/boards/b1/columns/reorder", `{"column_ids":["c1"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if envelope := decodeEnvelope(t, rec); envelope.Error.Code != "invalid_request" {
		t.Fatalf("code = %q, want invalid_request", envelope.Error.Code)
	}
}

// TestHandlerDeleteColumnConflictForNonEmpty verifies occupied columns refuse deletion.
func TestHandlerDeleteColumnConflictForNonEmpty(t *testing.T) {
	service := newStubService(t)
	service.columnErr = errors.Join(domain.ErrColumnNotEmpty, errors.New("column holds 3 tasks"))
	handler := NewHandler(service)

	rec := doJSON(t, handler, http.MethodDelete, "/boards/b1/columns/c1", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error.Code != "column_not_empty" {
		t.Fatalf("code = %q, want column_not_empty", envelope.Error.Code)
	}
	if envelope.Error.Hint == "" {
		t.Fatalf("hint is empty, want remediation hint")
	}
}

// TestHandlerBatchMovePartialFailure verifies non-atomic batch semantics over HTTP.
func TestHandlerBatchMovePartialFailure(t *testing.T) {
	service := newStubService(t)
	service.moveErr = map[string]error{"t2": errors.New("boom")}
	handler := NewHandler(service)

	rec := doJSON(t, handler, http.MethodPost, "/tasks/batch_move",
		`{"task_ids":["t1","t2","t3"],"to_status":"done","position":1}`)
	if rec.Code != http.StatusMultiStatus {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMultiStatus)
	}
	var resp batchMoveResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if resp.Attempted != 3 || resp.Succeeded != 2 {
		t.Fatalf("result = %d/%d, want 2 of 3 succeeded", resp.Succeeded, resp.Attempted)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].TaskID != "t2" {
		t.Fatalf("errors = %#v, want single t2 entry", resp.Errors)
	}
	if got := service.moveCalls; !slices.Equal(got, []string{"t1", "t2", "t3"}) {
		t.Fatalf("move calls = %#v, want all three attempted", got)
	}
}

// TestHandlerBatchMoveAllSucceed verifies the happy path returns 200.
func TestHandlerBatchMoveAllSucceed(t *testing.T) {
	service := newStubService(t)
	handler := NewHandler(service)

	rec := doJSON(t, handler, http.MethodPost, "/tasks/batch_move",
		`{"task_ids":["t1","t3"],"to_status":"done","position":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp batchMoveResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if resp.Attempted != 2 || resp.Succeeded != 2 || len(resp.Errors) != 0 {
		t.Fatalf("result = %#v, want clean 2 of 2", resp)
	}
}

// TestHandlerRejectsBadJSON verifies strict body decoding fails closed.
func TestHandlerRejectsBadJSON(t *testing.T) {
	handler := NewHandler(newStubService(t))

	cases := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{"to_status":`},
		{name: "unknown field", body: `{"to_status":"done","bogus":true}`},
		{name: "trailing content", body: `{"to_status":"done"}{"again":true}`},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPost, "/tasks/t1/move", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if envelope := decodeEnvelope(t, rec); envelope.Error.Code != "invalid_request" {
				t.Fatalf("code = %q, want invalid_request", envelope.Error.Code)
			}
		})
	}
}

// TestHandlerMethodNotAllowed verifies unsupported verbs return 405 with Allow headers.
func TestHandlerMethodNotAllowed(t *testing.T) {
	handler := NewHandler(newStubService(t))

	rec := doJSON(t, handler, http.MethodDelete, "/boards", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if got := rec.Header().Get("Allow"); got != http.MethodGet {
		t.Fatalf("Allow = %q, want %q", got, http.MethodGet)
	}
}

// TestHandlerUnknownRouteReturnsNotFound verifies the fallback route.
func TestHandlerUnknownRouteReturnsNotFound(t *testing.T) {
	handler := NewHandler(newStubService(t))

	rec := doJSON(t, handler, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if envelope := decodeEnvelope(t, rec); envelope.Error.Code != "not_found" {
		t.Fatalf("code = %q, want not_found", envelope.Error.Code)
	}
}
