// Package timeutil parses API reset timestamps and formats them for display.
package timeutil

import (
	"fmt"
	"time"
	"unicode/utf16"
)

// zoneless layouts are tried after RFC3339; values without an offset are UTC.
var zoneless = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseResetsAt parses an extended ISO-8601 timestamp such as
// "2026-02-16T13:00:01.123456+00:00". An empty or unparsable string returns
// ok == false.
func ParseResetsAt(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range zoneless {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatRemaining renders the time left until reset using the two most
// significant units: "3d 12h", "2h 14m", "45m". Partial minutes are
// truncated, so anything under a minute reads "0m". A reset at or before now
// reads "now".
func FormatRemaining(reset, now time.Time) string {
	d := reset.Sub(now)
	if d <= 0 {
		return "now"
	}
	secs := int64(d / time.Second)
	days := secs / 86400
	hours := (secs % 86400) / 3600
	mins := (secs % 3600) / 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

// Remaining parses resetsAt and formats it relative to now. ok is false when
// the timestamp is empty or unparsable.
func Remaining(resetsAt string, now time.Time) (string, bool) {
	t, ok := ParseResetsAt(resetsAt)
	if !ok {
		return "", false
	}
	return FormatRemaining(t, now), true
}

// TruncateUTF16 shortens s so that its UTF-16 encoding fits in max code
// units, never splitting a surrogate pair. Native shells size tooltip and
// notification buffers in UTF-16 units.
func TruncateUTF16(s string, max int) string {
	if max <= 0 {
		return ""
	}
	n := 0
	for i, r := range s {
		w := 1
		if utf16.RuneLen(r) == 2 {
			w = 2
		}
		if n+w > max {
			return s[:i]
		}
		n += w
	}
	return s
}
