package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionSummary(t *testing.T) {
	s := NewSession()

	s.Record(100*time.Millisecond, false)
	s.Record(200*time.Millisecond, false)
	s.Record(2*time.Second, true)

	sum := s.Summary()

	assert.Equal(t, 3, sum.Runs)
	assert.Equal(t, 1, sum.Failures)
	assert.GreaterOrEqual(t, sum.P95, sum.P50)
	assert.GreaterOrEqual(t, sum.Max, sum.P95)
	// histogram precision is 3 significant digits
	assert.InDelta(t, (2 * time.Second).Microseconds(), sum.Max.Microseconds(), float64(2*time.Millisecond.Microseconds()))
}

func TestEmptySession(t *testing.T) {
	s := NewSession()
	sum := s.Summary()

	assert.Zero(t, sum.Runs)
	assert.Zero(t, sum.Failures)
	assert.Zero(t, sum.Max)
}
