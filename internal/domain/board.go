package domain

import (
	"strings"
	"time"
)

// Board groups columns and their tasks under one workflow.
type Board struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ArchivedAt  *time.Time
}

// NewBoard constructs a new value for this package.
func NewBoard(id, name, description string, now time.Time) (Board, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if id == "" {
		return Board{}, ErrInvalidID
	}
	if name == "" {
		return Board{}, ErrInvalidName
	}
	return Board{
		ID:          id,
		Name:        name,
		Description: description,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

// Rename renames the requested operation.
func (b *Board) Rename(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	b.Name = name
	b.UpdatedAt = now.UTC()
	return nil
}

// Archive archives the requested operation.
func (b *Board) Archive(now time.Time) {
	ts := now.UTC()
	b.ArchivedAt = &ts
	b.UpdatedAt = ts
}

// Restore restores the requested operation.
func (b *Board) Restore(now time.Time) {
	b.ArchivedAt = nil
	b.UpdatedAt = now.UTC()
}
