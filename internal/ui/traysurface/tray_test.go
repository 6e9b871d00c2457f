package traysurface

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zsprackett/usagetray/internal/claudeusage"
	"github.com/zsprackett/usagetray/internal/ui"
	"github.com/zsprackett/usagetray/internal/ui/popup"
)

func TestMenuLines(t *testing.T) {
	now := time.Date(2026, 2, 16, 10, 46, 0, 0, time.UTC)
	u := claudeusage.NewUsage()
	u.FiveHour = claudeusage.Window{Utilization: 50}
	v := popup.Render(popup.Input{
		Result:     claudeusage.Valid{Usage: u},
		Thresholds: ui.DefaultBarThresholds,
		Tier:       "pro",
		Now:        now,
	})

	lines := menuLines(v)
	assert.Equal(t, []string{
		"5-Hour Window",
		"██████░░░░░░  50%",
		"7-Day Window",
		"░░░░░░░░░░░░  N/A",
		"Updated: never",
	}, lines)
}

func TestMenuLines_Bounded(t *testing.T) {
	v := popup.View{Lines: make([]popup.Line, detailSlots+5)}
	for i := range v.Lines {
		v.Lines[i].Text = "x"
	}
	assert.Len(t, menuLines(v), detailSlots)
}
