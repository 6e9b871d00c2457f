package ui

import "github.com/zsprackett/usagetray/internal/claudeusage"

// Level is the color bucket for a utilization value.
type Level int

const (
	LevelGreen Level = iota
	LevelYellow
	LevelRed
	// LevelMuted marks absent data or a failed fetch.
	LevelMuted
)

func (l Level) String() string {
	switch l {
	case LevelGreen:
		return "green"
	case LevelYellow:
		return "yellow"
	case LevelRed:
		return "red"
	default:
		return "muted"
	}
}

// Thresholds is a warn/critical pair in percent: below Warn is green, below
// Critical is yellow, anything else is red.
type Thresholds struct {
	Warn     float64
	Critical float64
}

var (
	DefaultIconThresholds = Thresholds{Warn: 80, Critical: 95}
	DefaultBarThresholds  = Thresholds{Warn: 60, Critical: 80}
)

// Classify never clamps: 150% is simply red.
func (t Thresholds) Classify(util float64) Level {
	switch {
	case util < t.Warn:
		return LevelGreen
	case util < t.Critical:
		return LevelYellow
	default:
		return LevelRed
	}
}

// BarLevel colors one popup bar. Absent windows are muted.
func (t Thresholds) BarLevel(w claudeusage.Window) Level {
	if !w.Present() {
		return LevelMuted
	}
	return t.Classify(w.Utilization)
}

// IconLevel colors the tray icon from the larger of the five-hour and
// seven-day windows; absent windows do not contribute. A failed fetch is
// muted.
func (t Thresholds) IconLevel(r claudeusage.Result) Level {
	v, ok := r.(claudeusage.Valid)
	if !ok {
		return LevelMuted
	}
	peak, seen := 0.0, false
	for _, w := range []claudeusage.Window{v.Usage.FiveHour, v.Usage.SevenDay} {
		if !w.Present() {
			continue
		}
		if !seen || w.Utilization > peak {
			peak, seen = w.Utilization, true
		}
	}
	if !seen {
		return LevelGreen
	}
	return t.Classify(peak)
}
