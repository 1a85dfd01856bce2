package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/hylla/tavla/internal/engine"
)

const (
	toastTTL          = 4 * time.Second
	toastTickInterval = 500 * time.Millisecond
	maxToastWidth     = 40
)

// toast is one transient notification in the corner stack.
type toast struct {
	kind    engine.NotificationKind
	message string
	expires time.Time
}

// toastTickMsg carries message data through update handling.
type toastTickMsg time.Time

func toastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// pushToast appends one notification to the stack.
func (m *Model) pushToast(kind engine.NotificationKind, message string) {
	m.toasts = append(m.toasts, toast{
		kind:    kind,
		message: message,
		expires: time.Now().Add(toastTTL),
	})
}

// expireToasts drops entries whose deadline has passed.
func (m *Model) expireToasts(now time.Time) {
	kept := m.toasts[:0]
	for _, item := range m.toasts {
		if item.expires.After(now) {
			kept = append(kept, item)
		}
	}
	m.toasts = kept
}

// renderToasts stacks the live notifications right-aligned, oldest first.
func (m Model) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	width := m.width / 3
	if width <= 0 || width > maxToastWidth {
		width = maxToastWidth
	}
	rendered := make([]string, 0, len(m.toasts))
	for _, item := range m.toasts {
		rendered = append(rendered, toastStyle(item.kind).Width(width).Render(item.message))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

func toastStyle(kind engine.NotificationKind) lipgloss.Style {
	tone := lipgloss.Color("239")
	switch kind {
	case engine.NoticeSuccess:
		tone = lipgloss.Color("78")
	case engine.NoticeWarning:
		tone = lipgloss.Color("214")
	case engine.NoticeError:
		tone = lipgloss.Color("203")
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(tone).
		Foreground(tone).
		Padding(0, 1)
}

// overlayBottomRight pins overlay to the lower-right corner of base.
func overlayBottomRight(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 || overlay == "" {
		return base
	}
	base = fitLines(base, height)
	x := max(width-lipgloss.Width(overlay)-1, 0)
	y := max(height-lipgloss.Height(overlay)-1, 0)
	canvas := lipgloss.NewCanvas(width, height)
	canvas.Compose(lipgloss.NewLayer(base).X(0).Y(0).Z(0))
	canvas.Compose(lipgloss.NewLayer(overlay).X(x).Y(y).Z(20))
	return canvas.Render()
}
