// Package common defines the app-facing service surface shared by the
// server transports.
package common

import (
	"context"
	"slices"

	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/board"
	"github.com/hylla/tavla/internal/domain"
	"github.com/hylla/tavla/internal/engine"
)

// BoardService is the slice of the application service the transports
// expose remotely.
type BoardService interface {
	ListBoards(ctx context.Context, includeArchived bool) ([]domain.Board, error)
	BoardView(ctx context.Context, boardID string) (board.Snapshot, error)
	CreateTask(ctx context.Context, in app.CreateTaskInput) (domain.Task, error)
	UpdateTask(ctx context.Context, in app.UpdateTaskInput) (domain.Task, error)
	MoveTask(ctx context.Context, taskID string, toStatus domain.Status, position int) (domain.Task, error)
	DeleteTask(ctx context.Context, taskID string, mode app.DeleteMode) error
	ReorderColumns(ctx context.Context, boardID string, orderedIDs []string) error
	DeleteColumn(ctx context.Context, boardID, columnID string) error
}

var _ BoardService = (*app.Service)(nil)

// ServiceMover adapts a BoardService to the batch executor's Mover port.
type ServiceMover struct {
	Service BoardService
}

var _ engine.Mover = ServiceMover{}

// MoveTask issues one task move through the service.
func (m ServiceMover) MoveTask(ctx context.Context, taskID string, toStatus domain.Status, position int) (domain.Task, error) {
	return m.Service.MoveTask(ctx, taskID, toStatus, position)
}

// ReorderColumns translates position-tagged orders into the service's
// ordered-ID form.
func (m ServiceMover) ReorderColumns(ctx context.Context, boardID string, orders []engine.ColumnOrder) error {
	sorted := slices.Clone(orders)
	slices.SortFunc(sorted, func(a, b engine.ColumnOrder) int {
		return a.Position - b.Position
	})
	ids := make([]string, 0, len(sorted))
	for _, order := range sorted {
		ids = append(ids, order.ColumnID)
	}
	return m.Service.ReorderColumns(ctx, boardID, ids)
}

// DeleteTask hard-deletes one task through the service.
func (m ServiceMover) DeleteTask(ctx context.Context, taskID string) error {
	return m.Service.DeleteTask(ctx, taskID, app.DeleteModeHard)
}
