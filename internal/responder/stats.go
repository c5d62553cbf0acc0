package responder

import (
	"sync"
	"time"
)

// latencyHistorySize bounds the reply-latency history used for the rolling
// average.
const latencyHistorySize = 100

// Snapshot is the synchronous statistics view exposed to the orchestrator,
// the monitor TUI and the final report.
type Snapshot struct {
	StartedAt          time.Time
	MessagesProcessed  uint64
	OffersDetected     uint64
	ResponsesSent      uint64
	Errors             uint64
	AvgResponseLatency time.Duration
	Limiter            Availability
	SentLastMinute     int
}

// Uptime returns how long the engine has been running at the given instant.
func (s Snapshot) Uptime(now time.Time) time.Duration {
	return now.Sub(s.StartedAt)
}

// Stats tracks monotonically increasing counters and a bounded history of
// reply latencies. Created at process start, reset only by explicit operator
// action, never persisted across restarts.
type Stats struct {
	mu        sync.Mutex
	startedAt time.Time
	messages  uint64
	offers    uint64
	responses uint64
	errors    uint64
	latencies []time.Duration

	limiter *Limiter
}

// NewStats creates a Stats bound to the limiter whose availability shows up
// in snapshots.
func NewStats(limiter *Limiter) *Stats {
	return &Stats{
		startedAt: time.Now(),
		limiter:   limiter,
	}
}

// MessageProcessed counts one inbound message that reached the classifier.
func (s *Stats) MessageProcessed() {
	s.mu.Lock()
	s.messages++
	s.mu.Unlock()
}

// OfferDetected counts one positive classification.
func (s *Stats) OfferDetected() {
	s.mu.Lock()
	s.offers++
	s.mu.Unlock()
}

// ResponseSent counts one delivered reply and records its latency in the
// bounded history.
func (s *Stats) ResponseSent(latency time.Duration) {
	s.mu.Lock()
	s.responses++
	s.latencies = append(s.latencies, latency)
	if len(s.latencies) > latencyHistorySize {
		s.latencies = s.latencies[len(s.latencies)-latencyHistorySize:]
	}
	s.mu.Unlock()
}

// Error counts one failure anywhere on the processing path.
func (s *Stats) Error() {
	s.mu.Lock()
	s.errors++
	s.mu.Unlock()
}

// Reset zeroes all counters and the latency history. Operator action only.
func (s *Stats) Reset() {
	s.mu.Lock()
	s.messages, s.offers, s.responses, s.errors = 0, 0, 0, 0
	s.latencies = s.latencies[:0]
	s.startedAt = time.Now()
	s.mu.Unlock()
}

// Snapshot returns a consistent copy of all counters plus the limiter's
// current availability.
func (s *Stats) Snapshot(now time.Time) Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		StartedAt:         s.startedAt,
		MessagesProcessed: s.messages,
		OffersDetected:    s.offers,
		ResponsesSent:     s.responses,
		Errors:            s.errors,
	}
	if n := len(s.latencies); n > 0 {
		var total time.Duration
		for _, d := range s.latencies {
			total += d
		}
		snap.AvgResponseLatency = total / time.Duration(n)
	}
	s.mu.Unlock()

	if s.limiter != nil {
		snap.Limiter = s.limiter.Availability(now)
		snap.SentLastMinute = s.limiter.SentLastMinute(now)
	}
	return snap
}
