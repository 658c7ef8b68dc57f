package monitor

import "time"

// windowSize is the rolling window the live monitor reports rates over.
const windowSize = 30 * time.Second

// Session tracks xrun activity for one interactive monitoring run. It
// lives only for the duration of the live loop and is owned exclusively
// by it; nothing is persisted.
type Session struct {
	start    time.Time
	baseline uint

	// timestamps of ticks that observed new xruns, pruned to the
	// rolling window on every observation.
	timestamps []time.Time

	total       uint
	maxInterval uint
}

// NewSession starts a session at now with the given baseline count.
// The baseline is subtracted from later absolute counts so the session
// reports only what happened while it was watching.
func NewSession(now time.Time, baseline uint) *Session {
	return &Session{start: now, baseline: baseline}
}

// Observe records one tick. current is the absolute xrun count at the
// tick; the return value is the number of new xruns in this interval.
func (s *Session) Observe(now time.Time, current uint) uint {
	// Clamp at zero: a restarted engine can reset its counter below
	// the session baseline.
	var sessionTotal uint
	if current > s.baseline {
		sessionTotal = current - s.baseline
	}

	var delta uint
	if sessionTotal > s.total {
		delta = sessionTotal - s.total
	}
	s.total = sessionTotal

	if delta > 0 {
		s.timestamps = append(s.timestamps, now)
		if delta > s.maxInterval {
			s.maxInterval = delta
		}
	}
	s.prune(now)
	return delta
}

// prune drops window entries older than now minus the window.
func (s *Session) prune(now time.Time) {
	cutoff := now.Add(-windowSize)
	idx := 0
	for idx < len(s.timestamps) && s.timestamps[idx].Before(cutoff) {
		idx++
	}
	if idx > 0 {
		s.timestamps = append(s.timestamps[:0], s.timestamps[idx:]...)
	}
}

// Rate returns the number of ticks with new xruns inside the rolling
// window ending at now.
func (s *Session) Rate(now time.Time) uint {
	s.prune(now)
	return uint(len(s.timestamps))
}

// Total returns the xruns observed since the session started.
func (s *Session) Total() uint {
	return s.total
}

// MaxInterval returns the largest number of new xruns seen in any
// single tick interval.
func (s *Session) MaxInterval() uint {
	return s.maxInterval
}

// Elapsed returns the session duration at now.
func (s *Session) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.start)
}
