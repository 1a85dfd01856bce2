// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hylla/tavla/internal/adapters/server/common"
	"github.com/hylla/tavla/internal/app"
	"github.com/hylla/tavla/internal/domain"
	"github.com/hylla/tavla/internal/engine"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the board tools.
func NewHandler(cfg Config, svc common.BoardService) (*Handler, error) {
	if svc == nil {
		return nil, fmt.Errorf("board service is required")
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	registerBoardTools(mcpSrv, svc)
	registerTaskTools(mcpSrv, svc)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "tavla"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

// registerBoardTools registers the board-level tools.
func registerBoardTools(srv *mcpserver.MCPServer, svc common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"tavla.list_boards",
			mcp.WithDescription("List boards."),
			mcp.WithBoolean("include_archived", mcp.Description("Include archived boards")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			boards, err := svc.ListBoards(ctx, req.GetBool("include_archived", false))
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(map[string]any{"boards": boards})
			if err != nil {
				return nil, fmt.Errorf("encode list_boards result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.get_board",
			mcp.WithDescription("Return one board with its columns and ordered tasks."),
			mcp.WithString("board_id", mcp.Required(), mcp.Description("Board identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			boardID, err := req.RequireString("board_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			snap, err := svc.BoardView(ctx, boardID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(snap)
			if err != nil {
				return nil, fmt.Errorf("encode get_board result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.reorder_columns",
			mcp.WithDescription("Persist a full column order for one board. The list must name every active column exactly once."),
			mcp.WithString("board_id", mcp.Required(), mcp.Description("Board identifier")),
			mcp.WithArray("column_ids", mcp.Required(), mcp.Description("Column ids in the desired left-to-right order"), mcp.WithStringItems()),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			boardID, err := req.RequireString("board_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			columnIDs := req.GetStringSlice("column_ids", nil)
			if err := svc.ReorderColumns(ctx, boardID, columnIDs); err != nil {
				return toolResultFromError(err), nil
			}
			snap, err := svc.BoardView(ctx, boardID)
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(snap)
			if err != nil {
				return nil, fmt.Errorf("encode reorder_columns result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.delete_column",
			mcp.WithDescription("Delete one empty column and close the order gap it leaves."),
			mcp.WithString("board_id", mcp.Required(), mcp.Description("Board identifier")),
			mcp.WithString("column_id", mcp.Required(), mcp.Description("Column identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			boardID, err := req.RequireString("board_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			columnID, err := req.RequireString("column_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := svc.DeleteColumn(ctx, boardID, columnID); err != nil {
				return toolResultFromError(err), nil
			}
			return mcp.NewToolResultText("deleted"), nil
		},
	)
}

// registerTaskTools registers the task-level tools.
func registerTaskTools(srv *mcpserver.MCPServer, svc common.BoardService) {
	srv.AddTool(
		mcp.NewTool(
			"tavla.create_task",
			mcp.WithDescription("Create one task at the end of a column."),
			mcp.WithString("board_id", mcp.Required(), mcp.Description("Board identifier")),
			mcp.WithString("status", mcp.Required(), mcp.Description("Target column status tag")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
			mcp.WithString("description", mcp.Description("Task description")),
			mcp.WithString("priority", mcp.Description("low, medium, or high"), mcp.Enum("low", "medium", "high")),
			mcp.WithString("assignee", mcp.Description("Assignee name")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			boardID, err := req.RequireString("board_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			status, err := req.RequireString("status")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			task, err := svc.CreateTask(ctx, app.CreateTaskInput{
				BoardID:     boardID,
				Status:      domain.Status(status),
				Title:       title,
				Description: req.GetString("description", ""),
				Priority:    domain.Priority(req.GetString("priority", "")),
				Assignee:    req.GetString("assignee", ""),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(task)
			if err != nil {
				return nil, fmt.Errorf("encode create_task result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.update_task",
			mcp.WithDescription("Replace the editable detail fields of one task. Column and position are unchanged."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
			mcp.WithString("description", mcp.Description("Task description")),
			mcp.WithString("priority", mcp.Description("low, medium, or high"), mcp.Enum("low", "medium", "high")),
			mcp.WithString("due_at", mcp.Description("RFC3339 due timestamp; empty clears it")),
			mcp.WithString("assignee", mcp.Description("Assignee name")),
			mcp.WithNumber("points", mcp.Description("Estimate points")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			var dueAt *time.Time
			if raw := strings.TrimSpace(req.GetString("due_at", "")); raw != "" {
				parsed, err := time.Parse(time.RFC3339, raw)
				if err != nil {
					return mcp.NewToolResultError("invalid due_at: " + err.Error()), nil
				}
				dueAt = &parsed
			}
			task, err := svc.UpdateTask(ctx, app.UpdateTaskInput{
				TaskID:      taskID,
				Title:       title,
				Description: req.GetString("description", ""),
				Priority:    domain.Priority(req.GetString("priority", "")),
				DueAt:       dueAt,
				Assignee:    req.GetString("assignee", ""),
				Points:      req.GetInt("points", 0),
			})
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(task)
			if err != nil {
				return nil, fmt.Errorf("encode update_task result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.move_task",
			mcp.WithDescription("Move one task to a 1-based position inside the column tagged with the given status."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("to_status", mcp.Required(), mcp.Description("Target column status tag")),
			mcp.WithNumber("position", mcp.Description("1-based target position; out-of-range values clamp")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			toStatus, err := req.RequireString("to_status")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			task, err := svc.MoveTask(ctx, taskID, domain.Status(toStatus), req.GetInt("position", 1))
			if err != nil {
				return toolResultFromError(err), nil
			}
			result, err := mcp.NewToolResultJSON(task)
			if err != nil {
				return nil, fmt.Errorf("encode move_task result: %w", err)
			}
			return result, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.batch_move",
			mcp.WithDescription("Move several tasks to one column with sequential, non-atomic calls. Earlier successes stay applied when a later call fails."),
			mcp.WithArray("task_ids", mcp.Required(), mcp.Description("Task ids to move, in order"), mcp.WithStringItems()),
			mcp.WithString("to_status", mcp.Required(), mcp.Description("Target column status tag")),
			mcp.WithNumber("position", mcp.Description("1-based position of the first moved task")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			toStatus, err := req.RequireString("to_status")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			taskIDs := req.GetStringSlice("task_ids", nil)
			if len(taskIDs) == 0 {
				return mcp.NewToolResultError("task_ids is required"), nil
			}
			result := engine.BatchMoveTasks(ctx, common.ServiceMover{Service: svc}, taskIDs, domain.Status(toStatus), req.GetInt("position", 1))
			payload := map[string]any{
				"attempted": result.Attempted,
				"succeeded": result.Succeeded,
			}
			if result.Failed() {
				failures := make([]map[string]string, 0, len(result.Errors))
				for _, batchErr := range result.Errors {
					failures = append(failures, map[string]string{
						"task_id": batchErr.TaskID,
						"error":   batchErr.Err.Error(),
					})
				}
				payload["errors"] = failures
			}
			out, err := mcp.NewToolResultJSON(payload)
			if err != nil {
				return nil, fmt.Errorf("encode batch_move result: %w", err)
			}
			return out, nil
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"tavla.delete_task",
			mcp.WithDescription("Archive or hard-delete one task."),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("Task identifier")),
			mcp.WithString("mode", mcp.Description("archive or hard"), mcp.Enum("archive", "hard")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireString("task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := svc.DeleteTask(ctx, taskID, app.DeleteMode(req.GetString("mode", ""))); err != nil {
				return toolResultFromError(err), nil
			}
			return mcp.NewToolResultText("deleted"), nil
		},
	)
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func toolResultFromError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, domain.ErrWIPLimitReached):
		return mcp.NewToolResultError("wip_limit_reached: " + err.Error())
	case errors.Is(err, domain.ErrColumnNotEmpty):
		return mcp.NewToolResultError("column_not_empty: " + err.Error())
	case errors.Is(err, app.ErrNotFound):
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, app.ErrBadColumnOrder), errors.Is(err, app.ErrInvalidDeleteMode):
		return mcp.NewToolResultError("invalid_request: " + err.Error())
	default:
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}
