package pipeline

import (
	"sync"
	"time"

	"github.com/backmassage/sdrnorm/internal/classify"
)

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int

	// Profiles counts classified files per profile, including files whose
	// encode later failed.
	Profiles map[classify.Profile]int

	TotalInputBytes  int64
	TotalOutputBytes int64
	Elapsed          time.Duration
}

// Processed returns how many jobs reached a terminal outcome.
func (s RunStats) Processed() int {
	return s.Succeeded + s.Failed + s.Skipped
}

// SpaceSaved returns the aggregate byte difference between inputs and outputs.
// Positive means outputs are smaller; negative means they grew.
func (s RunStats) SpaceSaved() int64 {
	return s.TotalInputBytes - s.TotalOutputBytes
}

// statsCollector guards RunStats for concurrent completion.
type statsCollector struct {
	mu sync.Mutex
	s  RunStats
}

func newStatsCollector(total int) *statsCollector {
	return &statsCollector{s: RunStats{Total: total, Profiles: make(map[classify.Profile]int)}}
}

func (c *statsCollector) record(res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if res.Classified {
		c.s.Profiles[res.Profile]++
	}
	switch res.Outcome {
	case OutcomeSucceeded:
		c.s.Succeeded++
		c.s.TotalInputBytes += res.InputBytes
		c.s.TotalOutputBytes += res.OutputBytes
	case OutcomeFailed:
		c.s.Failed++
	default:
		c.s.Skipped++
	}
}

func (c *statsCollector) snapshot() RunStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.s
	out.Profiles = make(map[classify.Profile]int, len(c.s.Profiles))
	for k, v := range c.s.Profiles {
		out.Profiles[k] = v
	}
	return out
}
