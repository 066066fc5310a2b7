package stats

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Session collects run durations and outcomes for one watch session.
// It is used from the single watch loop goroutine and needs no locking.
type Session struct {
	histogram *hdrhistogram.Histogram
	runs      int
	failures  int
	start     time.Time
}

// Summary is a point-in-time view of the session statistics.
type Summary struct {
	Runs     int
	Failures int
	P50      time.Duration
	P95      time.Duration
	Max      time.Duration
	Elapsed  time.Duration
}

// NewSession creates an empty session starting now. Durations are
// recorded in microseconds, covering runs from 1ms up to an hour.
func NewSession() *Session {
	return &Session{
		histogram: hdrhistogram.New(1000, time.Hour.Microseconds(), 3),
		start:     time.Now(),
	}
}

// Record adds one completed test run.
func (s *Session) Record(duration time.Duration, failed bool) {
	s.runs++
	if failed {
		s.failures++
	}
	_ = s.histogram.RecordValue(duration.Microseconds())
}

// Summary returns the aggregated session statistics.
func (s *Session) Summary() Summary {
	return Summary{
		Runs:     s.runs,
		Failures: s.failures,
		P50:      time.Duration(s.histogram.ValueAtQuantile(50)) * time.Microsecond,
		P95:      time.Duration(s.histogram.ValueAtQuantile(95)) * time.Microsecond,
		Max:      time.Duration(s.histogram.Max()) * time.Microsecond,
		Elapsed:  time.Since(s.start),
	}
}
