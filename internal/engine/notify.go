package engine

// NotificationKind labels one user-facing notice.
type NotificationKind string

const (
	NoticeInfo    NotificationKind = "info"
	NoticeSuccess NotificationKind = "success"
	NoticeWarning NotificationKind = "warning"
	NoticeError   NotificationKind = "error"
)

// Notification is one message for the presentation layer. The engine emits
// these on validation failures, successful moves, and rollbacks; how they
// are displayed (toast, status line) is the presenter's business.
type Notification struct {
	Kind    NotificationKind
	Message string
}

// NotificationSink receives engine notifications.
type NotificationSink interface {
	Notify(Notification)
}

// NotificationSinkFunc adapts a function to the NotificationSink interface.
type NotificationSinkFunc func(Notification)

// Notify handles notify.
func (f NotificationSinkFunc) Notify(n Notification) {
	f(n)
}

// discardSink drops notifications when no sink is configured.
type discardSink struct{}

func (discardSink) Notify(Notification) {}
