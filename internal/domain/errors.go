package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidPoints   = errors.New("invalid points")
	ErrInvalidWIPLimit = errors.New("invalid wip limit")
	ErrInvalidBoardID  = errors.New("invalid board id")
	ErrColumnNotEmpty  = errors.New("column still contains tasks")
	ErrWIPLimitReached = errors.New("wip limit reached")
)
