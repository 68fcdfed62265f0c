package adaptivesampler

import (
	"sync/atomic"
	"time"

	"github.com/sampler-go/sampler-go/internal/util"
)

// A samplerWindow admits events during a fixed interval under a single
// probability and sample budget. The two counters are updated lock-free on
// the hot path; everything else is fixed at construction. The enclosing
// sampler never mutates a live window, it installs a replacement at rotation.
type samplerWindow struct {
	sampleAll     bool
	probability   float64
	budget        uint64
	startTicks    int64
	durationTicks int64
	clock         util.Clock
	random        util.Random

	runningCount atomic.Uint64
	sampleCount  atomic.Uint64
}

func newSamplerWindow(probability float64, budget float64, duration time.Duration, clock util.Clock, random util.Random) *samplerWindow {
	return &samplerWindow{
		sampleAll:     probability == 1,
		probability:   probability,
		budget:        uint64(budget),
		startTicks:    clock.CurrentUnixNano(),
		durationTicks: duration.Nanoseconds(),
		clock:         clock,
		random:        random,
	}
}

// shouldSample counts the event and returns whether it passes the window's
// probability gate and fits the remaining budget. When the probability is 1
// the random draw is skipped entirely.
func (w *samplerWindow) shouldSample() bool {
	w.runningCount.Add(1)
	if !w.sampleAll && w.random.Float64() >= w.probability {
		return false
	}
	return w.sampleCount.Add(1) <= w.budget
}

func (w *samplerWindow) isExpired() bool {
	return w.clock.CurrentUnixNano()-w.startTicks > w.durationTicks
}

// adjustmentFactor is the ratio between the requested and the measured window
// duration. It normalizes the window's counts to a nominal-duration basis
// when the wall clock overshot, and is meant to be read after the window
// expired. A non-positive elapsed time reads as no adjustment.
func (w *samplerWindow) adjustmentFactor() float64 {
	elapsed := w.clock.CurrentUnixNano() - w.startTicks
	if elapsed <= 0 {
		return 1
	}
	return float64(w.durationTicks) / float64(elapsed)
}

// samples returns the admitted count, clamped to the budget since the raw
// counter can briefly overshoot it under contention.
func (w *samplerWindow) samples() uint64 {
	return min(w.sampleCount.Load(), w.budget)
}

func (w *samplerWindow) total() uint64 {
	return w.runningCount.Load()
}
