package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Stopwatch produces a live elapsed-time value anchored to a fixed start
// instant. Elapsed is always recomputed from the anchor rather than
// accumulated, so periodic sampling introduces no drift, and a stopwatch
// restored from a persisted start time resumes at the correct value.
type Stopwatch struct {
	mu      sync.Mutex
	start   time.Time
	frozen  time.Duration
	running bool
}

// StartAt anchors the stopwatch to the given instant and starts it.
// Anchoring to a past instant resumes a previously started session.
func (sw *Stopwatch) StartAt(start time.Time) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.start = start
	sw.frozen = 0
	sw.running = true
}

// StopAt freezes the elapsed value at end − start. Ticking consumers see
// the frozen value from then on.
func (sw *Stopwatch) StopAt(end time.Time) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.running {
		sw.frozen = end.Sub(sw.start)
		sw.running = false
	}
}

// Reset returns the stopwatch to zero, stopped.
func (sw *Stopwatch) Reset() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.start = time.Time{}
	sw.frozen = 0
	sw.running = false
}

// Running reports whether the stopwatch is ticking.
func (sw *Stopwatch) Running() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.running
}

// Elapsed returns the current elapsed time: live while running, frozen
// after StopAt, zero before StartAt.
func (sw *Stopwatch) Elapsed() time.Duration {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.running {
		return time.Since(sw.start)
	}
	return sw.frozen
}

// Tick invokes fn with the current elapsed value at the given interval
// until ctx is cancelled or the stopwatch stops running. It blocks, so run
// it on its own goroutine; cancelling ctx is the teardown path that keeps
// the ticker from outliving its view.
func (sw *Stopwatch) Tick(ctx context.Context, interval time.Duration, fn func(time.Duration)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !sw.Running() {
				return
			}
			fn(sw.Elapsed())
		}
	}
}

// FormatElapsed renders a duration as HH:MM:SS.mmm with no upper bound on
// the hour field.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d:%02d.%03d",
		ms/3_600_000, ms%3_600_000/60_000, ms%60_000/1_000, ms%1_000)
}
