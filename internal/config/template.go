package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// WriteTemplate writes a commented config file carrying cfg's values. An
// empty CredentialsPath is written as an empty value with an example above it.
func WriteTemplate(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, []byte(renderTemplate(cfg)), 0600)
}

func renderTemplate(cfg Config) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}
	ftoa := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

	line("# Claude Usage Tray - Configuration")
	line("#")
	line("# Path to Claude Code .credentials.json file")
	line("# Example: %s", filepath.Join(exampleHome(), ".claude", ".credentials.json"))
	line("credentials_path=%s", cfg.CredentialsPath)
	line("")
	line("# Poll interval in seconds (default: 60)")
	line("poll_interval=%d", int(cfg.PollInterval.Seconds()))
	line("")
	line("# Tray icon turns yellow/red at these utilization percentages")
	line("icon_warn_threshold=%s", ftoa(cfg.IconThresholds.Warn))
	line("icon_critical_threshold=%s", ftoa(cfg.IconThresholds.Critical))
	line("")
	line("# Popup progress bars turn yellow/red at these percentages")
	line("bar_warn_threshold=%s", ftoa(cfg.BarThresholds.Warn))
	line("bar_critical_threshold=%s", ftoa(cfg.BarThresholds.Critical))
	line("")
	line("# Interface: auto, tray or terminal")
	line("surface=%s", cfg.Surface)
	line("")
	line("# Popup scale factor for high-DPI displays")
	line("popup_scale=%s", ftoa(cfg.PopupScale))
	line("")
	line("# Recent samples kept in memory for popup sparklines (0 disables)")
	line("history_size=%d", cfg.HistorySize)
	line("")
	line("# Desktop alert on the first failure of a failure episode")
	line("notifications=%t", cfg.Notifications)
	line("# Optional webhook / ntfy topic URL receiving the same alert")
	line("notify_webhook=%s", cfg.NotifyWebhook)
	line("notify_ntfy=%s", cfg.NotifyNtfy)
	line("")
	line("# Logging: debug, info, warn or error")
	line("log_level=%s", cfg.LogLevel)
	line("log_dir=%s", cfg.LogDir)
	return b.String()
}

func exampleHome() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(filepath.Dir(home), "<user>")
	}
	return filepath.Join("home", "<user>")
}
