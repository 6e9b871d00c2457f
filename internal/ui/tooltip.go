package ui

import (
	"fmt"
	"time"

	"github.com/zsprackett/usagetray/internal/claudeusage"
	"github.com/zsprackett/usagetray/internal/timeutil"
)

// TooltipMaxUnits is the shell's tooltip buffer, in UTF-16 code units.
const TooltipMaxUnits = 127

const TooltipLoading = "Claude Usage: Loading..."

// Tooltip summarizes a result in one line. The reset countdown comes from
// the five-hour window and is left out when it is unknown.
func Tooltip(r claudeusage.Result, now time.Time) string {
	var s string
	switch r := r.(type) {
	case claudeusage.Valid:
		u := r.Usage
		s = fmt.Sprintf("Claude: 5h %s | 7d %s", Percent(u.FiveHour), Percent(u.SevenDay))
		if rem, ok := timeutil.Remaining(u.FiveHour.ResetsAt, now); ok {
			s += " | Resets " + rem
		}
	case claudeusage.Failed:
		msg := r.Message
		if msg == "" {
			msg = "Error"
		}
		s = "Claude: " + msg
	default:
		s = TooltipLoading
	}
	return timeutil.TruncateUTF16(s, TooltipMaxUnits)
}

// Percent renders a window's utilization rounded to a whole percent, or
// "N/A" when absent.
func Percent(w claudeusage.Window) string {
	if !w.Present() {
		return "N/A"
	}
	return fmt.Sprintf("%.0f%%", w.Utilization)
}
