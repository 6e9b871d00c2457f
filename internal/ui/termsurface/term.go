// Package termsurface presents usage in the terminal for hosts without a
// system tray: a one-line status, standing in for the icon and tooltip, and
// a details page standing in for the popup.
package termsurface

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/zsprackett/usagetray/internal/ui"
	"github.com/zsprackett/usagetray/internal/ui/popup"
)

const (
	barCells = 30
	// Terminal cells are roughly 8x16 pixels.
	cellWidth  = 8
	cellHeight = 16
)

type Surface struct {
	tapp   *tview.Application
	pages  *tview.Pages
	status *tview.TextView
	detail *tview.TextView
	events chan ui.Event
	logger *slog.Logger

	mu      sync.Mutex
	level   ui.Level
	tooltip string
}

func New(logger *slog.Logger) *Surface {
	s := &Surface{
		tapp:    tview.NewApplication(),
		pages:   tview.NewPages(),
		status:  tview.NewTextView(),
		detail:  tview.NewTextView(),
		events:  make(chan ui.Event, 8),
		logger:  logger,
		level:   ui.LevelMuted,
		tooltip: ui.TooltipLoading,
	}

	s.status.SetDynamicColors(true)
	s.status.SetBorder(true).SetTitle(" Claude Usage ").SetTitleAlign(tview.AlignLeft)
	s.status.SetBackgroundColor(tcell.ColorDefault)

	s.detail.SetDynamicColors(true)
	s.detail.SetBorder(true)
	s.detail.SetBackgroundColor(tcell.ColorDefault)
	s.detail.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyEscape:
			ui.Emit(s.events, ui.EventDismissPopup)
			return nil
		case event.Rune() == 'r', event.Rune() == 'R':
			ui.Emit(s.events, ui.EventRefresh)
			return nil
		}
		return event
	})

	home := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.status, 3, 0, true).
		AddItem(tview.NewTextView().SetDynamicColors(true).SetText(
			" [green]Enter[-] details  [green]R[-] refresh  [green]C[-] config  [green]Q[-] quit"), 1, 0, false).
		AddItem(nil, 0, 1, false)
	s.pages.AddPage("home", home, true, true)

	s.tapp.SetRoot(s.pages, true).EnableMouse(false)
	s.tapp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyCtrlC, event.Rune() == 'q', event.Rune() == 'Q':
			s.events <- ui.Event{Kind: ui.EventExit}
			return nil
		case event.Key() == tcell.KeyCtrlL:
			ui.Emit(s.events, ui.EventShellRestart)
			return nil
		case event.Rune() == 'c', event.Rune() == 'C':
			ui.Emit(s.events, ui.EventOpenConfig)
			return nil
		}
		if name, _ := s.pages.GetFrontPage(); name != "home" {
			return event
		}
		switch {
		case event.Key() == tcell.KeyEnter:
			ui.Emit(s.events, ui.EventOpenPopup)
			return nil
		case event.Rune() == 'r', event.Rune() == 'R':
			ui.Emit(s.events, ui.EventRefresh)
			return nil
		}
		return event
	})

	s.renderStatusLocked()
	return s
}

func (s *Surface) Events() <-chan ui.Event { return s.events }

// Run blocks until ctx is done or the terminal application stops.
func (s *Surface) Run(ctx context.Context, onReady func()) error {
	go func() {
		<-ctx.Done()
		s.tapp.Stop()
	}()
	onReady()
	return s.tapp.Run()
}

func (s *Surface) renderStatusLocked() {
	dot := ui.Tag(ui.LevelColor(s.level)) + "●[-]"
	s.status.SetText(" " + dot + " " + tview.Escape(s.tooltip))
}

func (s *Surface) SetIcon(l ui.Level) {
	s.tapp.QueueUpdateDraw(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.level = l
		s.renderStatusLocked()
	})
}

func (s *Surface) SetTooltip(text string) {
	s.tapp.QueueUpdateDraw(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.tooltip = text
		s.renderStatusLocked()
	})
}

func (s *Surface) ShowPopup(v popup.View) {
	text, title := detailText(v)
	w, h := dialogSize(v)
	s.tapp.QueueUpdateDraw(func() {
		s.detail.SetTitle(" " + title + " ").SetTitleAlign(tview.AlignLeft)
		s.detail.SetText(text)
		if !s.pages.HasPage("popup") {
			modal := tview.NewFlex().SetDirection(tview.FlexRow).
				AddItem(nil, 0, 1, false).
				AddItem(tview.NewFlex().SetDirection(tview.FlexColumn).
					AddItem(nil, 0, 1, false).
					AddItem(s.detail, w, 0, true).
					AddItem(nil, 0, 1, false), h, 0, true).
				AddItem(nil, 0, 1, false)
			s.pages.AddPage("popup", modal, true, true)
		}
		s.pages.ShowPage("popup")
		s.tapp.SetFocus(s.detail)
	})
}

func (s *Surface) HidePopup() {
	s.tapp.QueueUpdateDraw(func() {
		if s.pages.HasPage("popup") {
			s.pages.RemovePage("popup")
		}
		s.tapp.SetFocus(s.status)
	})
}

// Reregister forces a full repaint, the terminal's equivalent of putting
// the icon back.
func (s *Surface) Reregister() {
	s.logger.Info("redrawing terminal surface")
	s.tapp.Sync()
}

// dialogSize converts the popup's pixel size to terminal cells, leaving
// room for the border and at least one row per line.
func dialogSize(v popup.View) (w, h int) {
	w = max(v.Width/cellWidth, barCells+12) + 2
	h = max(v.Height/cellHeight, len(v.Lines)) + 2
	return w, h
}

// detailText renders the view's lines with tview color tags. The first line
// is the title and moves into the border.
func detailText(v popup.View) (text, title string) {
	var sb strings.Builder
	for i, l := range v.Lines {
		if i == 0 {
			title = l.Text
			continue
		}
		switch {
		case l.Separator:
			if i == 1 {
				continue
			}
			sb.WriteString(ui.Tag(l.Color) + strings.Repeat("─", barCells+8) + "[-]\n")
		case l.Bar != nil:
			fmt.Fprintf(&sb, " %s%s[-]  %s%s[-]\n",
				ui.Tag(l.Bar.Color), l.Bar.Text(barCells), ui.Tag(l.Color), tview.Escape(l.Text))
		case l.Font == popup.FontBold:
			fmt.Fprintf(&sb, " %s[::b]%s[::-][-]\n", ui.Tag(l.Color), tview.Escape(l.Text))
		default:
			fmt.Fprintf(&sb, " %s%s[-]\n", ui.Tag(l.Color), tview.Escape(l.Text))
		}
	}
	sb.WriteString("\n [green]R[-] refresh  [green]Esc[-] close")
	return sb.String(), title
}
