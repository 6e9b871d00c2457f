package timeutil_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsprackett/usagetray/internal/timeutil"
)

func TestParseResetsAt(t *testing.T) {
	want := time.Date(2026, 2, 16, 13, 0, 1, 0, time.UTC)

	cases := []struct {
		name string
		in   string
		ok   bool
	}{
		{"offset", "2026-02-16T13:00:01+00:00", true},
		{"zulu", "2026-02-16T13:00:01Z", true},
		{"fractional", "2026-02-16T13:00:01.000000+00:00", true},
		{"zoneless", "2026-02-16T13:00:01", true},
		{"empty", "", false},
		{"garbage", "tomorrow-ish", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := timeutil.ParseResetsAt(tc.in)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.True(t, got.Equal(want), "got %v", got)
			}
		})
	}
}

func TestParseResetsAt_HonorsOffset(t *testing.T) {
	got, ok := timeutil.ParseResetsAt("2026-02-16T15:00:01+02:00")
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2026, 2, 16, 13, 0, 1, 0, time.UTC)))
}

func TestFormatRemaining(t *testing.T) {
	now := time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   time.Duration
		want string
	}{
		{"past", -5 * time.Minute, "now"},
		{"exactly now", 0, "now"},
		{"thirty seconds", 30 * time.Second, "0m"},
		{"just under a minute", 59 * time.Second, "0m"},
		{"just over a minute", 61 * time.Second, "1m"},
		{"forty five minutes", 45 * time.Minute, "45m"},
		{"ninety minutes", 90 * time.Minute, "1h 30m"},
		{"just under a day", 24*time.Hour - time.Second, "23h 59m"},
		{"twenty five hours", 25 * time.Hour, "1d 1h"},
		{"three and a half days", 84 * time.Hour, "3d 12h"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, timeutil.FormatRemaining(now.Add(tc.in), now))
		})
	}
}

func TestRemaining(t *testing.T) {
	now := time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC)

	got, ok := timeutil.Remaining("2026-02-16T13:30:00+00:00", now)
	require.True(t, ok)
	assert.Equal(t, "1h 30m", got)

	_, ok = timeutil.Remaining("", now)
	assert.False(t, ok)
}

func TestTruncateUTF16(t *testing.T) {
	assert.Equal(t, "abc", timeutil.TruncateUTF16("abc", 10))
	assert.Equal(t, "ab", timeutil.TruncateUTF16("abc", 2))
	assert.Equal(t, "", timeutil.TruncateUTF16("abc", 0))

	// U+1F600 needs a surrogate pair and must not be split.
	s := "a\U0001F600b"
	assert.Equal(t, "a", timeutil.TruncateUTF16(s, 2))
	assert.Equal(t, "a\U0001F600", timeutil.TruncateUTF16(s, 3))

	long := strings.Repeat("x", 200)
	assert.Len(t, timeutil.TruncateUTF16(long, 127), 127)
}
