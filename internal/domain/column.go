package domain

import (
	"strings"
	"time"
)

// Column is one workflow lane on a board. Position is 1-based and dense
// across the board's columns; WIPLimit of zero means unlimited.
type Column struct {
	ID         string
	BoardID    string
	Name       string
	Status     Status
	WIPLimit   int
	Position   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ArchivedAt *time.Time
}

// NewColumn constructs a new value for this package.
func NewColumn(id, boardID, name string, status Status, position, wipLimit int, now time.Time) (Column, error) {
	id = strings.TrimSpace(id)
	boardID = strings.TrimSpace(boardID)
	name = strings.TrimSpace(name)
	if id == "" {
		return Column{}, ErrInvalidID
	}
	if boardID == "" {
		return Column{}, ErrInvalidBoardID
	}
	if name == "" {
		return Column{}, ErrInvalidName
	}
	if status == "" {
		status = NormalizeStatus(name)
	}
	if status == "" {
		return Column{}, ErrInvalidStatus
	}
	if position < 1 {
		return Column{}, ErrInvalidPosition
	}
	if wipLimit < 0 {
		return Column{}, ErrInvalidWIPLimit
	}

	return Column{
		ID:        id,
		BoardID:   boardID,
		Name:      name,
		Status:    status,
		WIPLimit:  wipLimit,
		Position:  position,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

// Rename renames the requested operation.
func (c *Column) Rename(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	c.Name = name
	c.UpdatedAt = now.UTC()
	return nil
}

// SetPosition handles set position.
func (c *Column) SetPosition(position int, now time.Time) error {
	if position < 1 {
		return ErrInvalidPosition
	}
	c.Position = position
	c.UpdatedAt = now.UTC()
	return nil
}

// SetWIPLimit handles set wip limit.
func (c *Column) SetWIPLimit(limit int, now time.Time) error {
	if limit < 0 {
		return ErrInvalidWIPLimit
	}
	c.WIPLimit = limit
	c.UpdatedAt = now.UTC()
	return nil
}

// HasCapacity reports whether count more tasks fit under the WIP limit.
func (c Column) HasCapacity(current int) bool {
	if c.WIPLimit <= 0 {
		return true
	}
	return current < c.WIPLimit
}

// Archive archives the requested operation.
func (c *Column) Archive(now time.Time) {
	ts := now.UTC()
	c.ArchivedAt = &ts
	c.UpdatedAt = ts
}

// Restore restores the requested operation.
func (c *Column) Restore(now time.Time) {
	c.ArchivedAt = nil
	c.UpdatedAt = now.UTC()
}
