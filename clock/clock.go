// Package clock paces the fixed-step simulation independently of the host frame rate.
package clock

import "time"

// TimeSource supplies wall-clock readings.
type TimeSource interface {
	Now() time.Time
}

// MonotonicSource reads time.Now, which carries a monotonic clock reading.
type MonotonicSource struct{}

func (MonotonicSource) Now() time.Time {
	return time.Now()
}

// ManualSource is a controllable TimeSource for tests and deterministic hosts.
type ManualSource struct {
	current time.Time
}

// NewManualSource creates a source frozen at start.
func NewManualSource(start time.Time) *ManualSource {
	return &ManualSource{current: start}
}

func (m *ManualSource) Now() time.Time {
	return m.current
}

// Advance moves the source forward by d.
func (m *ManualSource) Advance(d time.Duration) {
	m.current = m.current.Add(d)
}

// Clock measures scaled, pausable simulation time between ticks.
type Clock struct {
	source TimeSource
	last   time.Time
	scale  float64
	paused bool

	// scaled seconds handed out by Tick
	elapsed float64
}

// New creates a running clock with scale 1. A nil source uses MonotonicSource.
func New(source TimeSource) *Clock {
	if source == nil {
		source = MonotonicSource{}
	}
	return &Clock{
		source: source,
		last:   source.Now(),
		scale:  1,
	}
}

// Tick returns the scaled seconds since the previous Tick. It is zero while paused.
func (c *Clock) Tick() float64 {
	now := c.source.Now()
	real := now.Sub(c.last).Seconds()
	c.last = now
	if c.paused || real <= 0 {
		return 0
	}
	dt := real * c.scale
	c.elapsed += dt
	return dt
}

// Pause stops time from accumulating.
func (c *Clock) Pause() {
	c.paused = true
}

// Resume restarts accumulation; the paused interval is never reported.
func (c *Clock) Resume() {
	if !c.paused {
		return
	}
	c.paused = false
	c.last = c.source.Now()
}

func (c *Clock) IsPaused() bool {
	return c.paused
}

// SetScale sets the time multiplier. Negative scales are treated as zero.
func (c *Clock) SetScale(scale float64) {
	if scale < 0 {
		scale = 0
	}
	c.scale = scale
}

func (c *Clock) Scale() float64 {
	return c.scale
}

// Elapsed returns the total scaled seconds reported by Tick.
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}
