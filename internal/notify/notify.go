package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Config holds notification settings.
type Config struct {
	Enabled bool
	Webhook string
	NtfyURL string
}

// Notifier shows desktop alerts and mirrors them to an optional webhook and
// ntfy topic. Every delivery is best effort; failures are logged.
type Notifier struct {
	cfg    Config
	logger *slog.Logger
	client *http.Client
	goos   string
	run    func(name string, args ...string) error
}

// New returns a Notifier with the given config.
func New(cfg Config, logger *slog.Logger) *Notifier {
	n := &Notifier{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{Timeout: 5 * time.Second},
		goos:   runtime.GOOS,
	}
	n.run = n.start
	return n
}

// start launches the command and reaps it in the background. The Windows
// balloon script sleeps until the tip expires, so waiting here would hold
// the caller for its whole lifetime.
func (n *Notifier) start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			n.logger.Warn("desktop notification exited", "cmd", name, "err", err)
		}
	}()
	return nil
}

// Alert delivers one alert on every configured channel. It returns once the
// desktop command is started and both posts are done; callers on a hot path
// should run it on its own goroutine.
func (n *Notifier) Alert(title, msg string) {
	if !n.cfg.Enabled {
		return
	}

	n.sendSystemNotification(title, msg)

	if n.cfg.Webhook != "" {
		n.sendWebhook(title, msg)
	}
	if n.cfg.NtfyURL != "" {
		n.sendNtfy(title, msg)
	}
}

// desktopCommand returns the per-platform notification command.
func desktopCommand(goos, title, msg string) (string, []string) {
	switch goos {
	case "darwin":
		script := fmt.Sprintf(`display notification %q with title %q`, msg, title)
		return "osascript", []string{"-e", script}
	case "windows":
		script := fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms; `+
			`$n = New-Object System.Windows.Forms.NotifyIcon; `+
			`$n.Icon = [System.Drawing.SystemIcons]::Error; $n.Visible = $true; `+
			`$n.ShowBalloonTip(10000, %s, %s, 'Error'); Start-Sleep -Seconds 10; $n.Dispose()`,
			psQuote(title), psQuote(msg))
		return "powershell", []string{"-NoProfile", "-NonInteractive", "-Command", script}
	default:
		return "notify-send", []string{"--urgency=critical", "--app-name=usagetray", title, msg}
	}
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (n *Notifier) sendSystemNotification(title, msg string) {
	name, args := desktopCommand(n.goos, title, msg)
	if err := n.run(name, args...); err != nil {
		n.logger.Warn("desktop notification failed", "cmd", name, "err", err)
	}
}

type webhookPayload struct {
	Title     string `json:"title"`
	Message   string `json:"message"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
}

func (n *Notifier) sendWebhook(title, msg string) {
	payload := webhookPayload{
		Title:     title,
		Message:   msg,
		Source:    "usagetray",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	n.post("webhook", n.cfg.Webhook, payload)
}

type ntfyPayload struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Priority int      `json:"priority"`
	Tags     []string `json:"tags"`
}

func (n *Notifier) sendNtfy(title, msg string) {
	payload := ntfyPayload{
		Title:    title,
		Message:  msg,
		Priority: 4,
		Tags:     []string{"warning"},
	}
	n.post("ntfy", n.cfg.NtfyURL, payload)
}

func (n *Notifier) post(channel, url string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	resp, err := n.client.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		n.logger.Warn(channel+" notification failed", "err", err)
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		n.logger.Warn(channel+" notification rejected", "status", resp.StatusCode)
	}
}
