// Package httpapi provides the REST HTTP adapter for the server surfaces.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hylla/tavla/internal/adapters/server/common"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/board"
	"github.com/hylla/tavla/internal/domain"
	"github.com/hylla/tavla/internal/engine"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// errInvalidRequest tags malformed payloads for status mapping.
var errInvalidRequest = errors.New("invalid request")

// Handler serves the versioned API subrouter mounted under `/api/v1`.
type Handler struct {
	svc common.BoardService
}

// APIError represents one structured API failure response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// ErrorEnvelope wraps one structured API error.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewHandler constructs one HTTP API adapter over the board service.
func NewHandler(svc common.BoardService) *Handler {
	return &Handler{svc: svc}
}

// ServeHTTP routes one versioned API request to the matching handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := normalizePath(r.URL.Path)
	parts := strings.Split(path, "/")
	switch {
	case path == "boards":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleListBoards(w, r)
	case len(parts) == 2 && parts[0] == "boards":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleGetBoard(w, r, parts[1])
	case len(parts) == 4 && parts[0] == "boards" && parts[2] == "columns" && parts[3] == "reorder":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleReorderColumns(w, r, parts[1])
	case len(parts) == 4 && parts[0] == "boards" && parts[2] == "columns":
		if r.Method != http.MethodDelete {
			writeMethodNotAllowed(w, http.MethodDelete)
			return
		}
		h.handleDeleteColumn(w, r, parts[1], parts[3])
	case path == "tasks":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleCreateTask(w, r)
	case path == "tasks/batch_move":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleBatchMove(w, r)
	case len(parts) == 3 && parts[0] == "tasks" && parts[2] == "move":
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w, http.MethodPost)
			return
		}
		h.handleMoveTask(w, r, parts[1])
	case len(parts) == 2 && parts[0] == "tasks":
		switch r.Method {
		case http.MethodPatch:
			h.handleUpdateTask(w, r, parts[1])
		case http.MethodDelete:
			h.handleDeleteTask(w, r, parts[1])
		default:
			writeMethodNotAllowed(w, http.MethodPatch, http.MethodDelete)
		}
	default:
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: "endpoint not found",
		})
	}
}

// boardViewResponse is the wire form of one board view.
type boardViewResponse struct {
	Board   boardPayload        `json:"board"`
	Columns []columnViewPayload `json:"columns"`
}

type boardPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type columnViewPayload struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	WIPLimit int           `json:"wip_limit"`
	Position int           `json:"position"`
	Tasks    []taskPayload `json:"tasks"`
}

type taskPayload struct {
	ID            string     `json:"id"`
	BoardID       string     `json:"board_id"`
	Status        string     `json:"status"`
	BoardPosition int        `json:"board_position"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Priority      string     `json:"priority"`
	DueAt         *time.Time `json:"due_at,omitempty"`
	Assignee      string     `json:"assignee,omitempty"`
	Points        int        `json:"points,omitempty"`
}

func boardViewFromSnapshot(snap board.Snapshot) boardViewResponse {
	out := boardViewResponse{
		Board: boardPayload{
			ID:          snap.Board.ID,
			Name:        snap.Board.Name,
			Description: snap.Board.Description,
		},
		Columns: make([]columnViewPayload, 0, len(snap.Columns)),
	}
	for _, col := range snap.Columns {
		view := columnViewPayload{
			ID:       col.Column.ID,
			Name:     col.Column.Name,
			Status:   string(col.Column.Status),
			WIPLimit: col.Column.WIPLimit,
			Position: col.Column.Position,
			Tasks:    make([]taskPayload, 0, len(col.Tasks)),
		}
		for _, task := range col.Tasks {
			view.Tasks = append(view.Tasks, taskFromDomain(task))
		}
		out.Columns = append(out.Columns, view)
	}
	return out
}

func taskFromDomain(t domain.Task) taskPayload {
	return taskPayload{
		ID:            t.ID,
		BoardID:       t.BoardID,
		Status:        string(t.Status),
		BoardPosition: t.BoardPosition,
		Title:         t.Title,
		Description:   t.Description,
		Priority:      string(t.Priority),
		DueAt:         t.DueAt,
		Assignee:      t.Assignee,
		Points:        t.Points,
	}
}

// handleListBoards serves GET `/boards`.
func (h *Handler) handleListBoards(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("include_archived") == "true"
	boards, err := h.svc.ListBoards(r.Context(), includeArchived)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	payload := make([]boardPayload, 0, len(boards))
	for _, b := range boards {
		payload = append(payload, boardPayload{ID: b.ID, Name: b.Name, Description: b.Description})
	}
	writeJSON(w, http.StatusOK, map[string]any{"boards": payload})
}

// handleGetBoard serves GET `/boards/{id}`.
func (h *Handler) handleGetBoard(w http.ResponseWriter, r *http.Request, boardID string) {
	snap, err := h.svc.BoardView(r.Context(), boardID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boardViewFromSnapshot(snap))
}

// moveTaskRequest is the wire form of one task move.
type moveTaskRequest struct {
	ToStatus string `json:"to_status"`
	Position int    `json:"position"`
}

// handleMoveTask serves POST `/tasks/{id}/move`.
func (h *Handler) handleMoveTask(w http.ResponseWriter, r *http.Request, taskID string) {
	var req moveTaskRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if strings.TrimSpace(req.ToStatus) == "" {
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: "to_status is required",
		})
		return
	}
	task, err := h.svc.MoveTask(r.Context(), taskID, domain.Status(req.ToStatus), req.Position)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskFromDomain(task))
}

// createTaskRequest is the wire form of one task creation.
type createTaskRequest struct {
	BoardID     string     `json:"board_id"`
	Status      string     `json:"status"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueAt       *time.Time `json:"due_at"`
	Assignee    string     `json:"assignee"`
	Points      int        `json:"points"`
}

// handleCreateTask serves POST `/tasks`.
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	task, err := h.svc.CreateTask(r.Context(), app.CreateTaskInput{
		BoardID:     req.BoardID,
		Status:      domain.Status(req.Status),
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
		DueAt:       req.DueAt,
		Assignee:    req.Assignee,
		Points:      req.Points,
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, taskFromDomain(task))
}

// updateTaskRequest is the wire form of one task update.
type updateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueAt       *time.Time `json:"due_at"`
	Assignee    string     `json:"assignee"`
	Points      int        `json:"points"`
}

// handleUpdateTask serves PATCH `/tasks/{id}`.
func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request, taskID string) {
	var req updateTaskRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	task, err := h.svc.UpdateTask(r.Context(), app.UpdateTaskInput{
		TaskID:      taskID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
		DueAt:       req.DueAt,
		Assignee:    req.Assignee,
		Points:      req.Points,
	})
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, taskFromDomain(task))
}

// handleDeleteTask serves DELETE `/tasks/{id}`.
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request, taskID string) {
	mode := app.DeleteMode(strings.TrimSpace(r.URL.Query().Get("mode")))
	if err := h.svc.DeleteTask(r.Context(), taskID, mode); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reorderColumnsRequest is the wire form of one column reorder.
type reorderColumnsRequest struct {
	ColumnIDs []string `json:"column_ids"`
}

// handleReorderColumns serves POST `/boards/{id}/columns/reorder`.
func (h *Handler) handleReorderColumns(w http.ResponseWriter, r *http.Request, boardID string) {
	var req reorderColumnsRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if err := h.svc.ReorderColumns(r.Context(), boardID, req.ColumnIDs); err != nil {
		writeErrorFrom(w, err)
		return
	}
	snap, err := h.svc.BoardView(r.Context(), boardID)
	if err != nil {
		writeErrorFrom(w, err)
		return
	}
	writeJSON(w, http.StatusOK, boardViewFromSnapshot(snap))
}

// handleDeleteColumn serves DELETE `/boards/{id}/columns/{cid}`.
func (h *Handler) handleDeleteColumn(w http.ResponseWriter, r *http.Request, boardID, columnID string) {
	if err := h.svc.DeleteColumn(r.Context(), boardID, columnID); err != nil {
		writeErrorFrom(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// batchMoveRequest is the wire form of one batch move.
type batchMoveRequest struct {
	TaskIDs  []string `json:"task_ids"`
	ToStatus string   `json:"to_status"`
	Position int      `json:"position"`
}

// batchMoveResponse reports per-call outcomes of one batch move. The batch
// is sequential and non-atomic: tasks that succeeded stay moved even when
// later calls fail.
type batchMoveResponse struct {
	Attempted int               `json:"attempted"`
	Succeeded int               `json:"succeeded"`
	Errors    []batchErrorEntry `json:"errors,omitempty"`
}

type batchErrorEntry struct {
	TaskID string `json:"task_id"`
	Error  string `json:"error"`
}

// handleBatchMove serves POST `/tasks/batch_move`.
func (h *Handler) handleBatchMove(w http.ResponseWriter, r *http.Request) {
	var req batchMoveRequest
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeErrorFrom(w, err)
		return
	}
	if len(req.TaskIDs) == 0 || strings.TrimSpace(req.ToStatus) == "" {
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: "task_ids and to_status are required",
		})
		return
	}
	result := engine.BatchMoveTasks(r.Context(), common.ServiceMover{Service: h.svc}, req.TaskIDs, domain.Status(req.ToStatus), req.Position)
	resp := batchMoveResponse{
		Attempted: result.Attempted,
		Succeeded: result.Succeeded,
	}
	for _, batchErr := range result.Errors {
		resp.Errors = append(resp.Errors, batchErrorEntry{TaskID: batchErr.TaskID, Error: batchErr.Err.Error()})
	}
	status := http.StatusOK
	if result.Failed() {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, resp)
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// writeErrorFrom maps service errors into structured HTTP responses.
func writeErrorFrom(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: "unknown error",
		})
	case errors.Is(err, domain.ErrWIPLimitReached):
		writeJSONError(w, http.StatusConflict, APIError{
			Code:    "wip_limit_reached",
			Message: err.Error(),
			Hint:    "Raise the column's WIP limit or move another task out first.",
		})
	case errors.Is(err, domain.ErrColumnNotEmpty):
		writeJSONError(w, http.StatusConflict, APIError{
			Code:    "column_not_empty",
			Message: err.Error(),
			Hint:    "Move or delete the column's tasks first.",
		})
	case errors.Is(err, app.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, APIError{
			Code:    "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, app.ErrBadColumnOrder),
		errors.Is(err, app.ErrInvalidDeleteMode),
		errors.Is(err, app.ErrStatusInUse),
		errors.Is(err, errInvalidRequest):
		writeJSONError(w, http.StatusBadRequest, APIError{
			Code:    "invalid_request",
			Message: err.Error(),
		})
	default:
		writeJSONError(w, http.StatusInternalServerError, APIError{
			Code:    "internal_error",
			Message: err.Error(),
		})
	}
}

// writeMethodNotAllowed writes a structured 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSONError(w, http.StatusMethodNotAllowed, APIError{
		Code:    "method_not_allowed",
		Message: "method not allowed",
	})
}

// writeJSONError writes one structured error envelope.
func writeJSONError(w http.ResponseWriter, statusCode int, apiErr APIError) {
	writeJSON(w, statusCode, ErrorEnvelope{Error: apiErr})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":{"code":"encode_error","message":"%s"}}`, err.Error()), http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(errInvalidRequest, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", errInvalidRequest)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
