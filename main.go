package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/zsprackett/usagetray/internal/applog"
	"github.com/zsprackett/usagetray/internal/claudeusage"
	"github.com/zsprackett/usagetray/internal/config"
	"github.com/zsprackett/usagetray/internal/credentials"
	"github.com/zsprackett/usagetray/internal/history"
	"github.com/zsprackett/usagetray/internal/httpclient"
	"github.com/zsprackett/usagetray/internal/notify"
	"github.com/zsprackett/usagetray/internal/opener"
	"github.com/zsprackett/usagetray/internal/ui"
	"github.com/zsprackett/usagetray/internal/ui/termsurface"
	"github.com/zsprackett/usagetray/internal/ui/traysurface"
	"github.com/zsprackett/usagetray/internal/usagepoller"
)

// surface is a usagepoller.Surface that also owns the UI loop.
type surface interface {
	usagepoller.Surface
	Run(ctx context.Context, onReady func()) error
}

func newNotifier(cfg config.Config, logger *slog.Logger) *notify.Notifier {
	return notify.New(notify.Config{
		Enabled: cfg.Notifications,
		Webhook: cfg.NotifyWebhook,
		NtfyURL: cfg.NotifyNtfy,
	}, logger)
}

func main() {
	os.Exit(run())
}

func run() int {
	paths := config.DefaultPaths()
	cfg, err := config.Load(paths)

	notifier := newNotifier(cfg, slog.Default())

	if errors.Is(err, config.ErrNeedsSetup) {
		msg := fmt.Sprintf("Claude Usage Tray needs your Claude Code credentials. "+
			"Set credentials_path in %s to your .credentials.json file.", paths.ConfigFile())
		fmt.Fprintln(os.Stderr, "error: "+msg)
		notifier.Alert("Claude Usage - First Run Setup", msg)
		if oerr := opener.Open(paths.ConfigFile()); oerr != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", oerr)
		}
		return 1
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load config: %v\n", err)
	}

	logger, logCloser, err := applog.Init(applog.InitConfig{
		LogDir:   cfg.LogDir,
		LogLevel: cfg.LogLevel,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not init log file: %v\n", err)
		logger = slog.Default() // falls back to default (stderr)
	} else {
		defer logCloser.Close()
	}
	notifier = newNotifier(cfg, logger)

	creds := credentials.File{Path: cfg.CredentialsPath}
	if _, ok := creds.AccessToken(); !ok {
		msg := fmt.Sprintf("Could not read access token from credentials file %s. "+
			"Make sure Claude Code is logged in and the path is correct.", cfg.CredentialsPath)
		logger.Error("initial token read failed", "path", cfg.CredentialsPath)
		fmt.Fprintln(os.Stderr, "error: "+msg)
		notifier.Alert("Claude Usage", msg)
		return 1
	}

	hc, err := httpclient.New(httpclient.Options{})
	if err != nil {
		logger.Error("http init failed", "err", err)
		fmt.Fprintf(os.Stderr, "error: failed to initialize HTTP: %v\n", err)
		notifier.Alert("Claude Usage", "Failed to initialize HTTP.")
		return 1
	}
	defer hc.Close()

	var hist usagepoller.History
	if cfg.HistorySize > 0 {
		store, err := history.Open(cfg.HistorySize)
		if err != nil {
			logger.Error("history init failed", "err", err)
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		defer store.Close()
		hist = store
	}

	kind := chooseSurface(cfg.Surface, envProbe())
	var s surface
	switch kind {
	case config.SurfaceTerminal:
		s = termsurface.New(logger)
	default:
		s = traysurface.New(logger)
	}
	logger.Info("starting", "surface", string(kind), "interval", cfg.PollInterval,
		"credentials", cfg.CredentialsPath, "config", paths.ConfigFile())

	poller := usagepoller.New(usagepoller.Config{
		Interval:       cfg.PollInterval,
		IconThresholds: ui.Thresholds(cfg.IconThresholds),
		BarThresholds:  ui.Thresholds(cfg.BarThresholds),
		PopupScale:     cfg.PopupScale,
		ConfigPath:     paths.ConfigFile(),
		OpenConfig:     opener.Open,
	}, creds, claudeusage.New(hc, logger), s, notifier, hist, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = s.Run(ctx, func() {
		go func() {
			defer cancel()
			if err := poller.Run(ctx); err != nil {
				logger.Error("poller stopped", "err", err)
			}
		}()
	})
	if err != nil {
		logger.Error("surface stopped", "err", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
