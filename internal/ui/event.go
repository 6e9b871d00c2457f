// Package ui holds what the tray and terminal surfaces share: user events,
// color levels and their thresholds, the palette, tooltip text and the
// generated tray icons.
package ui

// EventKind is a user gesture or host signal reported by a surface.
type EventKind int

const (
	// EventOpenPopup is primary activation: show the cached result.
	EventOpenPopup EventKind = iota + 1
	// EventDismissPopup is focus loss or escape on the popup.
	EventDismissPopup
	// EventRefresh is the "Refresh Now" menu command.
	EventRefresh
	EventOpenConfig
	EventExit
	// EventShellRestart means the host shell came back and the icon must be
	// registered again.
	EventShellRestart
)

func (k EventKind) String() string {
	switch k {
	case EventOpenPopup:
		return "open_popup"
	case EventDismissPopup:
		return "dismiss_popup"
	case EventRefresh:
		return "refresh"
	case EventOpenConfig:
		return "open_config"
	case EventExit:
		return "exit"
	case EventShellRestart:
		return "shell_restart"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind EventKind
}

// Emit sends without blocking; a gesture arriving while the previous one is
// still queued is dropped.
func Emit(ch chan<- Event, kind EventKind) bool {
	select {
	case ch <- Event{Kind: kind}:
		return true
	default:
		return false
	}
}
