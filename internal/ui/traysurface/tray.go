// Package traysurface presents usage in the system tray. The popup content
// is shown as a read-only "Usage details" submenu.
package traysurface

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"fyne.io/systray"

	"github.com/zsprackett/usagetray/internal/timeutil"
	"github.com/zsprackett/usagetray/internal/ui"
	"github.com/zsprackett/usagetray/internal/ui/popup"
)

// detailSlots bounds the submenu; systray items cannot be removed, only
// hidden.
const detailSlots = 16

const barCells = 12

type Surface struct {
	logger *slog.Logger
	events chan ui.Event

	mu      sync.Mutex
	ready   bool
	level   ui.Level
	tooltip string
	details []*systray.MenuItem
}

func New(logger *slog.Logger) *Surface {
	return &Surface{
		logger:  logger,
		events:  make(chan ui.Event, 8),
		level:   ui.LevelMuted,
		tooltip: ui.TooltipLoading,
	}
}

func (s *Surface) Events() <-chan ui.Event { return s.events }

// Run blocks on the tray loop until ctx is done or the tray quits. onReady
// runs once the icon is registered.
func (s *Surface) Run(ctx context.Context, onReady func()) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	go func() {
		for {
			select {
			case <-ctx.Done():
				systray.Quit()
				return
			case <-hup:
				ui.Emit(s.events, ui.EventShellRestart)
			}
		}
	}()

	systray.Run(func() {
		s.setup()
		// The details submenu is always reachable, so it is always kept
		// current.
		ui.Emit(s.events, ui.EventOpenPopup)
		onReady()
	}, func() {
		s.logger.Info("tray exited")
	})
	return nil
}

func (s *Surface) setup() {
	mDetails := systray.AddMenuItem("Usage details", "Last fetched usage")
	details := make([]*systray.MenuItem, detailSlots)
	for i := range details {
		details[i] = mDetails.AddSubMenuItem("", "")
		details[i].Disable()
		details[i].Hide()
	}
	systray.AddSeparator()
	mRefresh := systray.AddMenuItem("Refresh Now", "Fetch usage now")
	mConfig := systray.AddMenuItem("Open Config", "Edit the config file")
	systray.AddSeparator()
	mExit := systray.AddMenuItem("Exit", "Quit")

	s.mu.Lock()
	s.details = details
	s.ready = true
	s.applyLocked()
	s.mu.Unlock()

	go func() {
		for {
			select {
			case <-mDetails.ClickedCh:
				ui.Emit(s.events, ui.EventOpenPopup)
			case <-mRefresh.ClickedCh:
				ui.Emit(s.events, ui.EventRefresh)
			case <-mConfig.ClickedCh:
				ui.Emit(s.events, ui.EventOpenConfig)
			case <-mExit.ClickedCh:
				// Exit must not be dropped behind a queued gesture.
				s.events <- ui.Event{Kind: ui.EventExit}
				return
			}
		}
	}()
}

func (s *Surface) applyLocked() {
	if !s.ready {
		return
	}
	systray.SetIcon(ui.Icon(s.level))
	systray.SetTooltip(timeutil.TruncateUTF16(s.tooltip, ui.TooltipMaxUnits))
}

func (s *Surface) SetIcon(l ui.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.level == l && s.ready {
		return
	}
	s.level = l
	if s.ready {
		systray.SetIcon(ui.Icon(l))
	}
}

func (s *Surface) SetTooltip(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tooltip = text
	if s.ready {
		systray.SetTooltip(timeutil.TruncateUTF16(text, ui.TooltipMaxUnits))
	}
}

// ShowPopup fills the details submenu from the view's text lines.
func (s *Surface) ShowPopup(v popup.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return
	}
	titles := menuLines(v)
	for i, item := range s.details {
		if i < len(titles) {
			item.SetTitle(titles[i])
			item.Show()
		} else {
			item.Hide()
		}
	}
}

// HidePopup is a no-op: the menu closes itself.
func (s *Surface) HidePopup() {}

// Reregister pushes the current icon and tooltip to the shell again.
func (s *Surface) Reregister() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Info("re-registering tray icon")
	s.applyLocked()
}

// menuLines flattens the view for menu items: the title is already the
// tray's own, separators are dropped and each bar is joined with its
// percentage.
func menuLines(v popup.View) []string {
	var out []string
	for i, l := range v.Lines {
		switch {
		case i == 0, l.Separator:
			continue
		case l.Bar != nil:
			out = append(out, l.Bar.Text(barCells)+"  "+l.Text)
		default:
			out = append(out, l.Text)
		}
	}
	if len(out) > detailSlots {
		out = out[:detailSlots]
	}
	return out
}
