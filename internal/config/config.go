// Package config loads the tray's line-oriented key=value configuration from
// the per-user config directory and generates a commented template on first
// run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// ErrNeedsSetup means no usable credentials path could be found. A template
// has been written to the config file and the user has to edit it.
var ErrNeedsSetup = errors.New("config needs setup")

const (
	appDirName     = "claudeusage"
	configFileName = "config.ini"

	DefaultPollInterval = 60 * time.Second
)

// Surface selects the user interface.
type Surface string

const (
	SurfaceAuto     Surface = "auto"
	SurfaceTray     Surface = "tray"
	SurfaceTerminal Surface = "terminal"
)

// Thresholds is a warn/critical utilization pair in percent.
type Thresholds struct {
	Warn     float64
	Critical float64
}

type Config struct {
	CredentialsPath string
	PollInterval    time.Duration

	// Icon and popup bars use independent pairs; the icon is meant to change
	// rarely while the popup bars are more sensitive.
	IconThresholds Thresholds
	BarThresholds  Thresholds

	Surface     Surface
	PopupScale  float64
	HistorySize int

	Notifications bool
	NotifyWebhook string
	NotifyNtfy    string

	LogLevel string
	LogDir   string
}

// Paths locates the config directory and the user's home, where Claude Code
// keeps its credentials.
type Paths struct {
	Dir  string
	Home string
}

// DefaultPaths resolves <user config dir>/claudeusage and the home directory.
func DefaultPaths() Paths {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	home, _ := os.UserHomeDir()
	return Paths{Dir: filepath.Join(base, appDirName), Home: home}
}

func (p Paths) ConfigFile() string {
	return filepath.Join(p.Dir, configFileName)
}

// CredentialsCandidate is the conventional Claude Code credentials location.
func (p Paths) CredentialsCandidate() string {
	if p.Home == "" {
		return ""
	}
	return filepath.Join(p.Home, ".claude", ".credentials.json")
}

func Defaults(p Paths) Config {
	return Config{
		PollInterval:   DefaultPollInterval,
		IconThresholds: Thresholds{Warn: 80, Critical: 95},
		BarThresholds:  Thresholds{Warn: 60, Critical: 80},
		Surface:        SurfaceAuto,
		PopupScale:     1.0,
		HistorySize:    48,
		Notifications:  true,
		LogLevel:       "info",
		LogDir:         filepath.Join(p.Dir, "logs"),
	}
}

// Load reads the config file. If it is missing or has no credentials_path,
// the conventional credentials location is probed; when found, a template
// pointing at it is written and a usable config is returned. Otherwise a
// placeholder template is written and ErrNeedsSetup is returned along with
// the defaults.
func Load(p Paths) (Config, error) {
	cfg := Defaults(p)
	path := p.ConfigFile()

	if err := parseFile(path, &cfg); err == nil && cfg.CredentialsPath != "" {
		return cfg, nil
	}

	if cand := p.CredentialsCandidate(); cand != "" && fileExists(cand) {
		cfg.CredentialsPath = cand
		// The config is usable even if the template cannot be written.
		_ = WriteTemplate(path, cfg)
		return cfg, nil
	}

	if err := WriteTemplate(path, cfg); err != nil {
		return cfg, fmt.Errorf("%w: write template %s: %v", ErrNeedsSetup, path, err)
	}
	return cfg, fmt.Errorf("%w: edit %s", ErrNeedsSetup, path)
}

func parseFile(path string, cfg *Config) error {
	f, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters:      "=",
		SkipUnrecognizableLines: true,
		IgnoreInlineComment:     true,
		IgnoreContinuation:      true,
	}, path)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	apply(f.Section(ini.DefaultSection), cfg)
	return nil
}

// apply copies recognized keys onto cfg. Unknown keys are ignored and
// invalid values leave the default in place.
func apply(sec *ini.Section, cfg *Config) {
	if v := strings.TrimSpace(sec.Key("credentials_path").String()); v != "" {
		cfg.CredentialsPath = v
	}
	if n, err := sec.Key("poll_interval").Int(); err == nil && n > 0 {
		cfg.PollInterval = time.Duration(n) * time.Second
	}
	cfg.IconThresholds = thresholds(sec, "icon", cfg.IconThresholds)
	cfg.BarThresholds = thresholds(sec, "bar", cfg.BarThresholds)

	switch s := Surface(strings.ToLower(sec.Key("surface").String())); s {
	case SurfaceAuto, SurfaceTray, SurfaceTerminal:
		cfg.Surface = s
	}
	if v, err := sec.Key("popup_scale").Float64(); err == nil && v > 0 {
		cfg.PopupScale = v
	}
	if n, err := sec.Key("history_size").Int(); err == nil && n >= 0 {
		cfg.HistorySize = n
	}
	if sec.HasKey("notifications") {
		if b, err := sec.Key("notifications").Bool(); err == nil {
			cfg.Notifications = b
		}
	}
	cfg.NotifyWebhook = sec.Key("notify_webhook").MustString(cfg.NotifyWebhook)
	cfg.NotifyNtfy = sec.Key("notify_ntfy").MustString(cfg.NotifyNtfy)
	cfg.LogLevel = sec.Key("log_level").MustString(cfg.LogLevel)
	cfg.LogDir = sec.Key("log_dir").MustString(cfg.LogDir)
}

// thresholds reads <prefix>_warn_threshold and <prefix>_critical_threshold.
// The pair is only replaced when both values are valid and ordered.
func thresholds(sec *ini.Section, prefix string, def Thresholds) Thresholds {
	t := def
	if v, err := sec.Key(prefix + "_warn_threshold").Float64(); err == nil {
		t.Warn = v
	}
	if v, err := sec.Key(prefix + "_critical_threshold").Float64(); err == nil {
		t.Critical = v
	}
	if t.Warn < 0 || t.Critical <= t.Warn {
		return def
	}
	return t
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
