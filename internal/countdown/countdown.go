// Package countdown derives a presentation-only expiry countdown from a
// session's authoritative expiry timestamp. The remaining time is recomputed
// from expiresAt on every tick, never decremented locally, so a paused or
// drifting consumer cannot accumulate error. The countdown never decides
// whether a scan is accepted.
package countdown

import (
	"context"
	"time"
)

// Tick is one countdown sample. After the terminal tick with Expired set the
// channel is closed.
type Tick struct {
	Minutes int  `json:"minutes"`
	Seconds int  `json:"seconds"`
	Expired bool `json:"expired"`
}

type Watcher struct {
	interval time.Duration
	now      func() time.Time
}

func NewWatcher() *Watcher {
	return &Watcher{interval: time.Second, now: time.Now}
}

// WithInterval shortens the tick interval. Tests use it to keep runtimes sane.
func (w *Watcher) WithInterval(d time.Duration) *Watcher {
	w.interval = d
	return w
}

func (w *Watcher) WithClock(now func() time.Time) *Watcher {
	w.now = now
	return w
}

// Watch emits one Tick per interval until expiresAt passes, then a terminal
// Expired tick, and closes the channel. Cancelling the context stops the
// ticker immediately; a watcher must not outlive the view that started it.
func (w *Watcher) Watch(ctx context.Context, expiresAt time.Time) <-chan Tick {
	out := make(chan Tick, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		// First sample straight away, the rest on ticker cadence.
		if done := w.emit(ctx, out, expiresAt); done {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if done := w.emit(ctx, out, expiresAt); done {
					return
				}
			}
		}
	}()

	return out
}

func (w *Watcher) emit(ctx context.Context, out chan<- Tick, expiresAt time.Time) bool {
	remaining := expiresAt.Sub(w.now())
	if remaining <= 0 {
		select {
		case out <- Tick{Expired: true}:
		case <-ctx.Done():
		}
		return true
	}

	// Round up so the display never shows 0:00 while the window is open.
	totalSeconds := int((remaining + time.Second - 1) / time.Second)
	tick := Tick{
		Minutes: totalSeconds / 60,
		Seconds: totalSeconds % 60,
	}

	select {
	case out <- tick:
	case <-ctx.Done():
		return true
	}
	return false
}
