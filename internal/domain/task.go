package domain

import (
	"slices"
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Task is one card on the board. BoardPosition is 1-based and dense within
// the column whose status matches Status.
type Task struct {
	ID            string
	BoardID       string
	Status        Status
	BoardPosition int
	Title         string
	Description   string
	Priority      Priority
	DueAt         *time.Time
	Assignee      string
	Points        int
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ArchivedAt    *time.Time
}

type TaskInput struct {
	ID            string
	BoardID       string
	Status        Status
	BoardPosition int
	Title         string
	Description   string
	Priority      Priority
	DueAt         *time.Time
	Assignee      string
	Points        int
}

func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.BoardID = strings.TrimSpace(in.BoardID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Assignee = strings.TrimSpace(in.Assignee)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.BoardID == "" {
		return Task{}, ErrInvalidBoardID
	}
	if in.Status == "" {
		return Task{}, ErrInvalidStatus
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	if in.BoardPosition < 1 {
		return Task{}, ErrInvalidPosition
	}
	if in.Points < 0 {
		return Task{}, ErrInvalidPoints
	}

	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !slices.Contains(validPriorities, in.Priority) {
		return Task{}, ErrInvalidPriority
	}

	return Task{
		ID:            in.ID,
		BoardID:       in.BoardID,
		Status:        in.Status,
		BoardPosition: in.BoardPosition,
		Title:         in.Title,
		Description:   in.Description,
		Priority:      in.Priority,
		DueAt:         normalizeDueAt(in.DueAt),
		Assignee:      in.Assignee,
		Points:        in.Points,
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}, nil
}

// Move retags the task's status and position. Density bookkeeping for the
// surrounding column sequences belongs to the caller.
func (t *Task) Move(status Status, position int, now time.Time) error {
	if status == "" {
		return ErrInvalidStatus
	}
	if position < 1 {
		return ErrInvalidPosition
	}
	t.Status = status
	t.BoardPosition = position
	t.UpdatedAt = now.UTC()
	return nil
}

func (t *Task) UpdateDetails(title, description string, priority Priority, dueAt *time.Time, assignee string, points int, now time.Time) error {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return ErrInvalidTitle
	}
	if !slices.Contains(validPriorities, priority) {
		return ErrInvalidPriority
	}
	if points < 0 {
		return ErrInvalidPosition
	}
	t.Title = title
	t.Description = description
	t.Priority = priority
	t.DueAt = normalizeDueAt(dueAt)
	t.Assignee = strings.TrimSpace(assignee)
	t.Points = points
	t.UpdatedAt = now.UTC()
	return nil
}

func (t *Task) Archive(now time.Time) {
	ts := now.UTC()
	t.ArchivedAt = &ts
	t.UpdatedAt = ts
}

func (t *Task) Restore(now time.Time) {
	t.ArchivedAt = nil
	t.UpdatedAt = now.UTC()
}

func normalizeDueAt(dueAt *time.Time) *time.Time {
	if dueAt == nil {
		return nil
	}
	ts := dueAt.UTC().Truncate(time.Second)
	return &ts
}
