// Package popup lays out the usage detail view. Render is a pure function of
// the cached result and a display scale; surfaces turn the returned View
// into pixels or terminal text.
package popup

import (
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/zsprackett/usagetray/internal/claudeusage"
	"github.com/zsprackett/usagetray/internal/credentials"
	"github.com/zsprackett/usagetray/internal/timeutil"
	"github.com/zsprackett/usagetray/internal/ui"
)

// Unscaled geometry.
const (
	BaseWidth  = 310
	BaseHeight = 280

	marginX   = 16
	barWidth  = 200
	barHeight = 14
	pctOffset = barWidth + 10
	footerGap = 30
)

const sparkChars = "▁▂▃▄▅▆▇█"

type Font int

const (
	FontNormal Font = iota
	FontBold
	FontTitle
)

// Font heights in unscaled pixels.
func (f Font) Size() int {
	switch f {
	case FontTitle:
		return 18
	case FontBold:
		return 14
	default:
		return 13
	}
}

type OpKind int

const (
	OpFill OpKind = iota + 1
	OpLine
	OpText
)

// Op is one drawing primitive in scaled pixels. For OpText, Rect.Min is the
// text origin; OpLine is a one pixel horizontal rule from Rect.Min.X to
// Rect.Max.X.
type Op struct {
	Kind  OpKind
	Rect  image.Rectangle
	Color colorful.Color
	Text  string
	Font  Font
}

// Bar is a progress bar in a text line. Fill is the filled fraction in
// [0, 1]; Absent bars have no fill.
type Bar struct {
	Fill   float64
	Absent bool
	Color  colorful.Color
}

// Line is the text rendition of the layout, in reading order.
type Line struct {
	Text      string
	Color     colorful.Color
	Font      Font
	Bar       *Bar
	Separator bool
}

type View struct {
	Width  int
	Height int
	Ops    []Op
	Lines  []Line
}

// Input is everything Render reads.
type Input struct {
	Result     claudeusage.Result
	Thresholds ui.Thresholds
	// Tier is the raw subscription type; it titles the popup even when the
	// last fetch failed.
	Tier  string
	Scale float64
	// UpdatedAt is when Result was fetched; Now drives the countdowns.
	UpdatedAt time.Time
	Now       time.Time
	// Trend5h and Trend7d are recent utilizations, oldest first.
	Trend5h []float64
	Trend7d []float64
}

type layout struct {
	scale float64
	width int
	y     int
	view  View
}

func (l *layout) px(v int) int { return int(math.Round(float64(v) * l.scale)) }

func (l *layout) text(x, y int, s string, c colorful.Color, f Font) {
	l.view.Ops = append(l.view.Ops, Op{
		Kind:  OpText,
		Rect:  image.Rectangle{Min: image.Pt(l.px(x), l.px(y))},
		Color: c,
		Text:  s,
		Font:  f,
	})
}

func (l *layout) fill(x, y, w, h int, c colorful.Color) {
	l.view.Ops = append(l.view.Ops, Op{
		Kind:  OpFill,
		Rect:  image.Rect(l.px(x), l.px(y), l.px(x+w), l.px(y+h)),
		Color: c,
	})
}

func (l *layout) separator(y int) {
	l.view.Ops = append(l.view.Ops, Op{
		Kind:  OpLine,
		Rect:  image.Rect(l.px(marginX), l.px(y), l.px(l.width-marginX), l.px(y)+1),
		Color: ui.ColorSeparator,
	})
	l.view.Lines = append(l.view.Lines, Line{Separator: true, Color: ui.ColorSeparator})
}

func (l *layout) line(s string, c colorful.Color, f Font) {
	l.view.Lines = append(l.view.Lines, Line{Text: s, Color: c, Font: f})
}

// Title is the popup heading for a raw subscription tier.
func Title(tier string) string {
	if label := credentials.TierLabel(tier); label != "" {
		return "Claude " + label + " Usage"
	}
	return "Claude Usage"
}

// Render lays out the popup. A non-positive scale is treated as 1.
func Render(in Input) View {
	scale := in.Scale
	if scale <= 0 {
		scale = 1
	}
	l := &layout{scale: scale, width: BaseWidth}

	l.view.Ops = append(l.view.Ops, Op{Kind: OpFill, Color: ui.ColorBackground})

	l.y = 12
	title := Title(in.Tier)
	l.text(marginX, l.y, title, ui.ColorHeader, FontTitle)
	l.line(title, ui.ColorHeader, FontTitle)
	l.y += 28
	l.separator(l.y)
	l.y += 10

	switch r := in.Result.(type) {
	case claudeusage.Valid:
		l.usage(r.Usage, in)
	case claudeusage.Failed:
		msg := r.Message
		if msg == "" {
			msg = "Error fetching data"
		}
		red := ui.LevelColor(ui.LevelRed)
		l.text(marginX, l.y, msg, red, FontNormal)
		l.line(msg, red, FontNormal)
		l.y += 18
	default:
		l.text(marginX, l.y, "Loading...", ui.ColorMuted, FontNormal)
		l.line("Loading...", ui.ColorMuted, FontNormal)
		l.y += 18
	}

	height := BaseHeight
	if l.y+footerGap+8 > height {
		height = l.y + footerGap + 8
	}
	l.separator(height - footerGap)
	updated := "Updated: never"
	if !in.UpdatedAt.IsZero() {
		updated = fmt.Sprintf("Updated: %s (%s)",
			in.UpdatedAt.Local().Format("15:04:05"),
			humanize.RelTime(in.UpdatedAt, in.Now, "ago", "from now"))
	}
	l.text(marginX, height-22, updated, ui.ColorMuted, FontNormal)
	l.line(updated, ui.ColorMuted, FontNormal)

	l.view.Width = l.px(BaseWidth)
	l.view.Height = l.px(height)
	l.view.Ops[0].Rect = image.Rect(0, 0, l.view.Width, l.view.Height)
	return l.view
}

func (l *layout) usage(u claudeusage.Usage, in Input) {
	l.section("5-Hour Window", u.FiveHour, in)
	l.section("7-Day Window", u.SevenDay, in)

	for _, m := range []struct {
		label string
		w     claudeusage.Window
	}{{"7-Day Opus", u.SevenDayOpus}, {"7-Day Sonnet", u.SevenDaySonnet}} {
		if !m.w.Present() {
			continue
		}
		s := fmt.Sprintf("%s: %s", m.label, ui.Percent(m.w))
		l.text(marginX, l.y, s, ui.ColorLabel, FontNormal)
		l.line(s, ui.ColorLabel, FontNormal)
		l.y += 18
	}

	if u.Extra != nil && u.Extra.Enabled {
		l.separator(l.y)
		l.y += 8
		s := fmt.Sprintf("Extra Credits: %s / %s", u.Extra.UsedCredits, u.Extra.MonthlyLimit)
		if u.Extra.Utilization != nil {
			s += fmt.Sprintf(" (%.0f%%)", *u.Extra.Utilization)
		}
		l.text(marginX, l.y, s, ui.ColorLabel, FontNormal)
		l.line(s, ui.ColorLabel, FontNormal)
		l.y += 20
	}

	if len(in.Trend5h) > 1 || len(in.Trend7d) > 1 {
		for _, t := range []struct {
			label  string
			values []float64
		}{{"5h ", in.Trend5h}, {"7d ", in.Trend7d}} {
			if len(t.values) < 2 {
				continue
			}
			s := t.label + Sparkline(t.values)
			l.text(marginX, l.y, s, ui.ColorMuted, FontNormal)
			l.line(s, ui.ColorMuted, FontNormal)
			l.y += 18
		}
	}
}

func (l *layout) section(title string, w claudeusage.Window, in Input) {
	l.text(marginX, l.y, title, ui.ColorLabel, FontBold)
	l.line(title, ui.ColorLabel, FontBold)
	l.y += 20

	level := in.Thresholds.BarLevel(w)
	color := ui.LevelColor(level)
	l.fill(marginX, l.y, barWidth, barHeight, ui.ColorBarTrack)
	bar := &Bar{Absent: !w.Present(), Color: color}
	if w.Present() {
		fill := FillWidth(w.Utilization, barWidth)
		if fill > 0 {
			l.fill(marginX, l.y, fill, barHeight, color)
		}
		bar.Fill = float64(fill) / barWidth
	}
	pct := ui.Percent(w)
	l.text(marginX+pctOffset, l.y, pct, color, FontNormal)
	l.view.Lines = append(l.view.Lines, Line{Text: pct, Color: color, Bar: bar})
	l.y += 20

	if w.ResetsAt != "" {
		rem, ok := timeutil.Remaining(w.ResetsAt, in.Now)
		if !ok {
			rem = "unknown"
		}
		s := "Resets in: " + rem
		l.text(marginX, l.y, s, ui.ColorMuted, FontNormal)
		l.line(s, ui.ColorMuted, FontNormal)
		l.y += 18
	}
	l.y += 6
}

// FillWidth is the filled part of a bar of width w for a utilization in
// percent, clamped to [0, w].
func FillWidth(util float64, w int) int {
	fill := int(float64(w) * util / 100)
	if fill < 0 {
		return 0
	}
	if fill > w {
		return w
	}
	return fill
}

// Sparkline renders utilizations, oldest first, as block characters. Values
// are clamped to [0, 100].
func Sparkline(values []float64) string {
	runes := []rune(sparkChars)
	var sb strings.Builder
	for _, v := range values {
		v = math.Max(0, math.Min(100, v)) / 100
		sb.WriteRune(runes[int(v*float64(len(runes)-1))])
	}
	return sb.String()
}

// Text draws the bar with block characters, width cells wide. An absent bar
// is all track.
func (b Bar) Text(width int) string {
	filled := 0
	if !b.Absent {
		filled = int(math.Round(b.Fill * float64(width)))
		filled = max(0, min(width, filled))
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
