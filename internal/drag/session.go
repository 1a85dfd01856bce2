package drag

import (
	"errors"
	"time"
)

// Phase is the lifecycle state of a drag session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDragging
	PhaseDropping
	PhaseError
)

// String handles string.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseDropping:
		return "dropping"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// SubjectKind distinguishes what is being dragged.
type SubjectKind int

const (
	SubjectTask SubjectKind = iota
	SubjectColumn
)

// Slot addresses one drop position: a column (by id or status tag) plus a
// 0-based insertion index inside it. Column subjects only use Index.
type Slot struct {
	Column string
	Index  int
}

// Subject is the dragged item and where it started.
type Subject struct {
	Kind   SubjectKind
	ID     string
	Origin Slot
}

// Target is the volatile hovered drop slot, refreshed on every gesture-move
// event. Board state is never mutated while hovering.
type Target struct {
	Slot   Slot
	Valid  bool
	Reason string
}

// Session is the ephemeral record of one gesture, created on pick-up and
// discarded when the gesture settles.
type Session struct {
	Subject   Subject
	Target    *Target
	StartedAt time.Time
}

// ErrSessionActive and related errors describe illegal session transitions.
var (
	ErrSessionActive = errors.New("a drag session is already active")
	ErrNoSession     = errors.New("no active drag session")
	ErrNotDragging   = errors.New("session is not in the dragging phase")
	ErrSettling      = errors.New("a drop is still settling")
)

// errorResetDelay bounds how long the transient error phase may be observed
// before the manager presents itself as idle again.
const errorResetDelay = 3 * time.Second

// Manager enforces the single-session lifecycle
// idle → dragging → dropping → {idle, error}. At most one session exists;
// starting a gesture while a drop is settling is refused rather than raced.
// The error phase auto-recovers to idle after a short delay.
type Manager struct {
	phase      Phase
	session    *Session
	errorUntil time.Time
	clock      func() time.Time
}

// NewManager constructs a session manager. A nil clock falls back to
// time.Now.
func NewManager(clock func() time.Time) *Manager {
	if clock == nil {
		clock = time.Now
	}
	return &Manager{clock: clock}
}

// Phase reports the current lifecycle phase, resolving the timed error
// reset.
func (m *Manager) Phase() Phase {
	if m.phase == PhaseError && !m.clock().Before(m.errorUntil) {
		m.phase = PhaseIdle
	}
	return m.phase
}

// Session returns the live session, if any.
func (m *Manager) Session() (*Session, bool) {
	if m.session == nil {
		return nil, false
	}
	return m.session, true
}

// Start begins a session for the subject. Refused while a prior session is
// unsettled.
func (m *Manager) Start(subject Subject) (*Session, error) {
	switch m.Phase() {
	case PhaseIdle:
	case PhaseDropping:
		return nil, ErrSettling
	default:
		return nil, ErrSessionActive
	}
	m.session = &Session{Subject: subject, StartedAt: m.clock().UTC()}
	m.phase = PhaseDragging
	return m.session, nil
}

// Hover updates the volatile target while dragging. It never touches board
// state.
func (m *Manager) Hover(target Target) error {
	if m.Phase() != PhaseDragging {
		return ErrNotDragging
	}
	t := target
	m.session.Target = &t
	return nil
}

// ClearHover drops the current target (pointer left every droppable zone).
func (m *Manager) ClearHover() error {
	if m.Phase() != PhaseDragging {
		return ErrNotDragging
	}
	m.session.Target = nil
	return nil
}

// Drop ends the gesture. With a resolved valid target the session moves to
// dropping and is returned for execution. Without one the gesture is a
// no-op cancellation back to idle, not an error.
func (m *Manager) Drop() (Session, bool, error) {
	if m.Phase() != PhaseDragging {
		return Session{}, false, ErrNotDragging
	}
	session := *m.session
	if session.Target == nil || !session.Target.Valid {
		m.reset()
		return session, false, nil
	}
	m.phase = PhaseDropping
	return session, true, nil
}

// Cancel abandons the gesture before drop (ESC or out-of-bounds release).
func (m *Manager) Cancel() error {
	if m.Phase() != PhaseDragging {
		return ErrNotDragging
	}
	m.reset()
	return nil
}

// Settle completes a drop after the mutation finished, successfully or via
// handled rollback.
func (m *Manager) Settle() error {
	if m.Phase() != PhaseDropping {
		return ErrNoSession
	}
	m.reset()
	return nil
}

// Fail marks the drop as errored. The phase is transient: after
// errorResetDelay the manager reports idle again so a stuck gesture cannot
// wedge the board.
func (m *Manager) Fail() error {
	if m.Phase() != PhaseDropping {
		return ErrNoSession
	}
	m.session = nil
	m.phase = PhaseError
	m.errorUntil = m.clock().Add(errorResetDelay)
	return nil
}

func (m *Manager) reset() {
	m.session = nil
	m.phase = PhaseIdle
}
