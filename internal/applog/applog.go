// Package applog writes the app's slog output to a per-day file under the
// log directory and keeps the last few days.
package applog

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

const (
	filePrefix = "usagetray-"
	fileSuffix = ".log"
	dayLayout  = "2006-01-02"

	// MaxDays is how many daily files Init keeps.
	MaxDays = 7
)

// FileName is the log file for a day.
func FileName(dir string, day time.Time) string {
	return filepath.Join(dir, filePrefix+day.Format(dayLayout)+fileSuffix)
}

// DayFile appends to FileName(dir, today). The file is opened on the first
// write of each day, and opening one trims the directory to keep files.
type DayFile struct {
	dir   string
	keep  int
	clock func() time.Time

	mu  sync.Mutex
	day string
	f   *os.File
}

// NewDayFile opens nothing until the first Write. A nil clock means
// time.Now.
func NewDayFile(dir string, keep int, clock func() time.Time) *DayFile {
	if clock == nil {
		clock = time.Now
	}
	return &DayFile{dir: dir, keep: keep, clock: clock}
}

func (d *DayFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock()
	if key := now.Format(dayLayout); key != d.day || d.f == nil {
		if err := d.switchTo(now); err != nil {
			return 0, err
		}
	}
	return d.f.Write(p)
}

func (d *DayFile) switchTo(now time.Time) error {
	if d.f != nil {
		d.f.Close()
		d.f = nil
	}
	f, err := os.OpenFile(FileName(d.dir, now), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	d.f, d.day = f, now.Format(dayLayout)
	d.trim()
	return nil
}

// trim removes the oldest day files past keep. Names that do not carry a
// valid date are left alone.
func (d *DayFile) trim() {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		return
	}
	var days []string
	for _, e := range entries {
		stamp, ok := strings.CutPrefix(e.Name(), filePrefix)
		if !ok || e.IsDir() {
			continue
		}
		stamp, ok = strings.CutSuffix(stamp, fileSuffix)
		if !ok {
			continue
		}
		if _, err := time.Parse(dayLayout, stamp); err == nil {
			days = append(days, stamp)
		}
	}
	if len(days) <= d.keep {
		return
	}
	slices.Sort(days)
	for _, stamp := range days[:len(days)-d.keep] {
		os.Remove(filepath.Join(d.dir, filePrefix+stamp+fileSuffix))
	}
}

func (d *DayFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}

type InitConfig struct {
	LogDir   string
	LogLevel string
}

// Init points slog.Default and package log at a DayFile in cfg.LogDir.
// Closing the returned Closer flushes nothing; it only releases the file.
func Init(cfg InitConfig) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(cfg.LogDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	out := NewDayFile(cfg.LogDir, MaxDays, nil)
	logger := slog.New(NewHandler(out, ParseLevel(cfg.LogLevel)))
	slog.SetDefault(logger)
	log.SetOutput(out)
	log.SetFlags(0)
	return logger, out, nil
}

// secretKeys are attribute names whose values never reach the log.
var secretKeys = map[string]bool{
	"token":         true,
	"access_token":  true,
	"authorization": true,
}

// NewHandler builds the file handler. Attributes named in secretKeys are
// masked whatever their case.
func NewHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if secretKeys[strings.ToLower(a.Key)] {
				return slog.String(a.Key, "[redacted]")
			}
			return a
		},
	})
}

// ParseLevel maps a config value to a level; anything unknown is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
