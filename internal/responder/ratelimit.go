// Package responder composes the stylized replies the bot sends back at
// detected sell offers, and owns the rate limiting and statistics around
// them.
package responder

import (
	"sync"
	"time"
)

const windowSpan = time.Minute

// Availability is a point-in-time snapshot of the limiter for the stats
// query.
type Availability struct {
	CanSend bool
	// Wait is how long until the next send would be accepted: the later of
	// the minimum-interval gate opening and the oldest window entry aging
	// out. Zero when CanSend is true.
	Wait time.Duration
}

// Limiter is a sliding-window plus minimum-interval gate. Two accepted sends
// are never closer than the minimum interval, and no trailing sixty-second
// window ever holds more than the per-minute maximum. It carries its own
// mutex because the monitor TUI reads Availability from another goroutine;
// acceptance decisions themselves happen on the controller's single
// processing path.
type Limiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	maxPerMin   int
	lastSend    time.Time
	window      []time.Time
}

// NewLimiter creates a Limiter with the given minimum interval between sends
// and maximum sends per trailing minute.
func NewLimiter(minInterval time.Duration, maxPerMinute int) *Limiter {
	return &Limiter{
		minInterval: minInterval,
		maxPerMin:   maxPerMinute,
	}
}

// TryAcquire reports whether a send at the given instant is allowed, and if
// so records it. Pruning of window entries older than sixty seconds happens
// on every call before counting.
func (l *Limiter) TryAcquire(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(now)

	if !l.lastSend.IsZero() && now.Sub(l.lastSend) < l.minInterval {
		return false
	}
	if len(l.window) >= l.maxPerMin {
		return false
	}

	l.window = append(l.window, now)
	l.lastSend = now
	return true
}

// Availability reports whether a send would currently be accepted and how
// long until one would be.
func (l *Limiter) Availability(now time.Time) Availability {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(now)

	var wait time.Duration
	if !l.lastSend.IsZero() {
		if d := l.minInterval - now.Sub(l.lastSend); d > 0 {
			wait = d
		}
	}
	if len(l.window) > 0 && len(l.window) >= l.maxPerMin {
		// A full window opens when its oldest entry ages out.
		if d := l.window[0].Add(windowSpan).Sub(now); d > wait {
			wait = d
		}
	}
	return Availability{
		CanSend: wait == 0,
		Wait:    wait,
	}
}

// SentLastMinute returns the number of accepted sends in the trailing window.
func (l *Limiter) SentLastMinute(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(now)
	return len(l.window)
}

// Reset clears all limiter state. Operator action only.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastSend = time.Time{}
	l.window = l.window[:0]
}

// prune drops window entries older than sixty seconds. Caller holds the lock.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-windowSpan)
	i := 0
	for i < len(l.window) && !l.window[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.window = append(l.window[:0], l.window[i:]...)
	}
}
