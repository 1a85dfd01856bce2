package domain

import "strings"

// Status identifies the workflow state a column represents. Exactly one
// column on a board carries each status value.
type Status string

const (
	StatusTodo     Status = "todo"
	StatusProgress Status = "progress"
	StatusDone     Status = "done"
)

// NormalizeStatus canonicalizes free-form column names into status ids.
func NormalizeStatus(name string) Status {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return ""
	}
	var b strings.Builder
	lastDash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			lastDash = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	normalized := strings.Trim(b.String(), "-")
	switch normalized {
	case "to-do", "todo":
		return StatusTodo
	case "in-progress", "progress", "doing":
		return StatusProgress
	case "done", "complete", "completed":
		return StatusDone
	default:
		return Status(normalized)
	}
}
