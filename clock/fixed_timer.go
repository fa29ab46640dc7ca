package clock

import "math"

// DefaultMaxSteps bounds how many intervals a single Fire reports.
const DefaultMaxSteps = 8

// fireSlack absorbs rounding when the host feeds exact multiples of the interval.
const fireSlack = 1e-9

// FixedTimer accumulates elapsed time and reports it in whole fixed intervals.
type FixedTimer struct {
	interval    float64
	accumulator float64
	maxSteps    int
	dropped     int
}

// NewFixedTimer creates a timer firing every interval seconds.
func NewFixedTimer(interval float64) *FixedTimer {
	return &FixedTimer{interval: interval, maxSteps: DefaultMaxSteps}
}

// Advance adds elapsed seconds to the accumulator.
func (t *FixedTimer) Advance(seconds float64) {
	if seconds > 0 && !math.IsInf(seconds, 1) {
		t.accumulator += seconds
	}
}

// Fire reports how many whole intervals have elapsed and removes them from the accumulator.
// At most maxSteps are reported; the excess is discarded so a stalled host cannot
// snowball into ever longer catch-up loops.
func (t *FixedTimer) Fire() int {
	if t.interval <= 0 {
		return 0
	}
	steps := math.Floor(t.accumulator/t.interval + fireSlack)
	if steps <= 0 {
		return 0
	}
	t.accumulator = math.Max(t.accumulator-steps*t.interval, 0)
	if t.maxSteps > 0 && steps > float64(t.maxSteps) {
		t.dropped += int(math.Min(steps, 1<<52)) - t.maxSteps
		return t.maxSteps
	}
	return int(steps)
}

// Alpha is the fraction of an interval left in the accumulator, for render interpolation.
func (t *FixedTimer) Alpha() float64 {
	if t.interval <= 0 {
		return 0
	}
	return t.accumulator / t.interval
}

func (t *FixedTimer) Interval() float64 {
	return t.interval
}

// SetInterval changes the interval; the accumulator is kept.
func (t *FixedTimer) SetInterval(interval float64) {
	t.interval = interval
}

// SetMaxSteps caps Fire. Zero or less removes the cap.
func (t *FixedTimer) SetMaxSteps(n int) {
	t.maxSteps = n
}

// Dropped is the number of intervals discarded by the Fire cap so far.
func (t *FixedTimer) Dropped() int {
	return t.dropped
}

// Reset clears the accumulator.
func (t *FixedTimer) Reset() {
	t.accumulator = 0
}
