package usagepoller

import (
	"sync"

	"github.com/zsprackett/usagetray/internal/claudeusage"
)

// AlertPolicy alerts once per failure episode. The first Failed after a
// Valid result (or at startup) alerts; later failures stay quiet until a
// Valid result ends the episode. Recovery itself is silent.
type AlertPolicy struct {
	suppressed bool
}

// Observe records r and reports whether it should raise an alert.
func (a *AlertPolicy) Observe(r claudeusage.Result) bool {
	switch r.(type) {
	case claudeusage.Failed:
		if a.suppressed {
			return false
		}
		a.suppressed = true
		return true
	case claudeusage.Valid:
		a.suppressed = false
	}
	return false
}

// Suppressed reports whether a failure episode is in progress.
func (a *AlertPolicy) Suppressed() bool { return a.suppressed }

// alertQueue hands alerts to a Notifier off the poll loop. Delivery keeps
// submission order; at most one drain goroutine is alive at a time.
type alertQueue struct {
	n Notifier

	mu      sync.Mutex
	pending []string
	running bool
}

func (q *alertQueue) send(msg string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, msg)
	if !q.running {
		q.running = true
		go q.drain()
	}
}

func (q *alertQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		msg := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.n.Alert(AlertTitle, msg)
	}
}
