// Package usagepoller runs the poll-and-render cycle: it owns the timer,
// fetches usage, updates the surface and decides when to alert.
package usagepoller

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zsprackett/usagetray/internal/claudeusage"
	"github.com/zsprackett/usagetray/internal/history"
	"github.com/zsprackett/usagetray/internal/ui"
	"github.com/zsprackett/usagetray/internal/ui/popup"
)

// AlertTitle heads every failure alert.
const AlertTitle = "Claude Usage Error"

// Credentials is re-read on every cycle; tokens are never cached.
type Credentials interface {
	AccessToken() (string, bool)
	SubscriptionTier() (string, bool)
}

type Fetcher interface {
	FetchUsage(ctx context.Context, accessToken string) claudeusage.Result
}

// Surface is where results are shown and user gestures come from.
type Surface interface {
	SetIcon(ui.Level)
	SetTooltip(string)
	ShowPopup(popup.View)
	HidePopup()
	Reregister()
	Events() <-chan ui.Event
}

type Notifier interface {
	Alert(title, msg string)
}

type History interface {
	Insert(history.Snapshot) error
	Trends() (fiveHour, sevenDay []float64, err error)
}

type Config struct {
	Interval       time.Duration
	IconThresholds ui.Thresholds
	BarThresholds  ui.Thresholds
	PopupScale     float64
	ConfigPath     string
	// OpenConfig opens ConfigPath for editing.
	OpenConfig func(path string) error
}

type Poller struct {
	cfg     Config
	creds   Credentials
	fetcher Fetcher
	surface Surface
	alerts  *AlertPolicy
	notify  *alertQueue
	history History
	logger  *slog.Logger
	now     func() time.Time

	// Owned by the Run goroutine.
	last         claudeusage.Result
	fetchedAt    time.Time
	tier         string
	popupVisible bool
}

func New(cfg Config, creds Credentials, fetcher Fetcher, surface Surface, notify Notifier, hist History, logger *slog.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 60 * time.Second
	}
	return &Poller{
		cfg:     cfg,
		creds:   creds,
		fetcher: fetcher,
		surface: surface,
		alerts:  &AlertPolicy{},
		notify:  &alertQueue{n: notify},
		history: hist,
		logger:  logger,
		now:     time.Now,
	}
}

// SetNow replaces the clock. Used in tests only.
func (p *Poller) SetNow(fn func() time.Time) { p.now = fn }

// Run fetches immediately, then on every tick, and handles surface events
// until ctx is done or the user exits. All state changes happen on this
// goroutine.
func (p *Poller) Run(ctx context.Context) error {
	p.surface.SetIcon(ui.LevelMuted)
	p.surface.SetTooltip(ui.TooltipLoading)
	p.Poll(ctx)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	events := p.surface.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Poll(ctx)
		case ev := <-events:
			p.logger.Debug("surface event", "event", ev.Kind.String())
			switch ev.Kind {
			case ui.EventOpenPopup:
				p.popupVisible = true
				p.showPopup()
			case ui.EventDismissPopup:
				p.popupVisible = false
				p.surface.HidePopup()
			case ui.EventRefresh:
				// Cancel the pending tick and restart the interval from now.
				ticker.Stop()
				p.Poll(ctx)
				ticker.Reset(p.cfg.Interval)
			case ui.EventOpenConfig:
				p.openConfig()
			case ui.EventShellRestart:
				p.surface.Reregister()
			case ui.EventExit:
				p.logger.Info("exit requested")
				return nil
			}
		}
	}
}

// Poll runs one fetch cycle and applies the result.
func (p *Poller) Poll(ctx context.Context) claudeusage.Result {
	cycle := uuid.NewString()
	tier, _ := p.creds.SubscriptionTier()
	p.tier = tier

	var r claudeusage.Result
	if token, ok := p.creds.AccessToken(); ok && token != "" {
		r = claudeusage.WithTier(p.fetcher.FetchUsage(ctx, token), tier)
	} else {
		r = claudeusage.Failed{Kind: claudeusage.KindNoToken, Message: "No access token found"}
	}
	p.apply(cycle, r)
	return r
}

func (p *Poller) apply(cycle string, r claudeusage.Result) {
	now := p.now()
	p.last = r
	p.fetchedAt = now

	level := p.cfg.IconThresholds.IconLevel(r)
	p.surface.SetIcon(level)
	p.surface.SetTooltip(ui.Tooltip(r, now))

	switch r := r.(type) {
	case claudeusage.Valid:
		p.logger.Info("usage poll", "cycle", cycle, "outcome", "ok",
			"five_hour", r.Usage.FiveHour.Utilization, "seven_day", r.Usage.SevenDay.Utilization,
			"icon", level.String())
		p.record(now, r.Usage)
	case claudeusage.Failed:
		p.logger.Warn("usage poll", "cycle", cycle, "outcome", r.Kind.String(), "err", r.Message)
	}

	if p.alerts.Observe(r) {
		p.notify.send(r.(claudeusage.Failed).Message)
	}

	if p.popupVisible {
		p.showPopup()
	}
}

func (p *Poller) record(now time.Time, u claudeusage.Usage) {
	if p.history == nil {
		return
	}
	snap := history.Snapshot{
		Ts:           now,
		FiveHourUtil: u.FiveHour.Utilization,
		SevenDayUtil: u.SevenDay.Utilization,
	}
	if err := p.history.Insert(snap); err != nil {
		p.logger.Debug("usage snapshot insert failed", "err", err)
	}
}

// View lays out the popup from the cached result without fetching.
func (p *Poller) View() popup.View {
	in := popup.Input{
		Result:     p.last,
		Thresholds: p.cfg.BarThresholds,
		Tier:       p.tier,
		Scale:      p.cfg.PopupScale,
		UpdatedAt:  p.fetchedAt,
		Now:        p.now(),
	}
	if p.history != nil {
		five, seven, err := p.history.Trends()
		if err != nil {
			p.logger.Debug("usage history read failed", "err", err)
		}
		in.Trend5h, in.Trend7d = five, seven
	}
	return popup.Render(in)
}

func (p *Poller) showPopup() {
	p.surface.ShowPopup(p.View())
}

func (p *Poller) openConfig() {
	if p.cfg.OpenConfig == nil || p.cfg.ConfigPath == "" {
		return
	}
	if err := p.cfg.OpenConfig(p.cfg.ConfigPath); err != nil {
		p.logger.Warn("open config failed", "path", p.cfg.ConfigPath, "err", err)
	}
}
