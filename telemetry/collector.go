// Package telemetry provides windowed ecosystem statistics and CSV output.
package telemetry

// Collector accumulates discrete events within tick windows.
type Collector struct {
	windowTicks int64
	windowStart int64

	births     int
	deaths     int
	consumed   int
	predations int
	evolutions int
}

// NewCollector creates a collector flushing every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: int64(windowTicks)}
}

// RecordBirth records a reproduction.
func (c *Collector) RecordBirth() { c.births++ }

// RecordDeath records a starvation death.
func (c *Collector) RecordDeath() { c.deaths++ }

// RecordConsumed records an agent eaten by a predator.
func (c *Collector) RecordConsumed() { c.consumed++ }

// RecordPredation records a successful predation strike.
func (c *Collector) RecordPredation() { c.predations++ }

// RecordEvolution records a prey-to-predator transition.
func (c *Collector) RecordEvolution() { c.evolutions++ }

// ShouldFlush reports whether the current window is complete.
func (c *Collector) ShouldFlush(tick int64) bool {
	return tick-c.windowStart >= c.windowTicks
}

// Drain returns the window counters and starts a new window at tick.
func (c *Collector) Drain(tick int64) (births, deaths, consumed, predations, evolutions int) {
	births, deaths, consumed = c.births, c.deaths, c.consumed
	predations, evolutions = c.predations, c.evolutions
	c.births, c.deaths, c.consumed = 0, 0, 0
	c.predations, c.evolutions = 0, 0
	c.windowStart = tick
	return
}

// WindowStart returns the first tick of the current window.
func (c *Collector) WindowStart() int64 {
	return c.windowStart
}
