package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidDeleteMode = errors.New("invalid delete mode")
	ErrStatusInUse       = errors.New("column status already in use")
	ErrBadColumnOrder    = errors.New("column order must list every column exactly once")
)
