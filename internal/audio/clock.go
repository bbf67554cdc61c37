package audio

import (
	"sync"
	"time"
)

// Clock is a Transport without sound, advanced by wall time while started.
// It backs silent runs and tests.
type Clock struct {
	mu       sync.Mutex
	duration float64
	elapsed  float64
	started  time.Time
	running  bool
	now      func() time.Time
}

func NewClock(duration float64) *Clock {
	return &Clock{duration: duration, now: time.Now}
}

// NewClockAt uses now as the time source.
func NewClockAt(duration float64, now func() time.Time) *Clock {
	return &Clock{duration: duration, now: now}
}

func (c *Clock) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		c.running = true
		c.started = c.now()
	}
	return nil
}

func (c *Clock) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		c.elapsed += c.now().Sub(c.started).Seconds()
		c.running = false
	}
	return nil
}

func (c *Clock) Dispose() error {
	return c.Stop()
}

func (c *Clock) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return c.elapsed + c.now().Sub(c.started).Seconds()
	}
	return c.elapsed
}

func (c *Clock) BufferDuration() float64 {
	return c.duration
}

// Seek moves the clock to t seconds.
func (c *Clock) Seek(t float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elapsed = t
	if c.running {
		c.started = c.now()
	}
	return nil
}
