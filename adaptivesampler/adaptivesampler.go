package adaptivesampler

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sampler-go/sampler-go"
	"github.com/sampler-go/sampler-go/internal/util"
)

// The probability used for the first window, before anything has been
// learned about the event rate.
const initialProbability = .1

/*
AdaptiveSampler is a Sampler that keeps the number of admitted events close
to a configured per-window target while staying representative of the
offered event stream. The target is a soft limit: in extreme bursts the
overshoot typically stays within 15-20% of the requested rate.

Admission is governed by fixed-duration windows. Each window gates events
through a Bernoulli trial and a hard per-window sample budget, and when a
window expires the sampler picks the next window's probability and budget
from exponentially weighted averages of what past windows observed. The
budget acts as a spike damper, letting a busy window make up samples that
earlier quiet windows failed to deliver without blowing the overall rate.

ShouldSample is lock-free unless the current window has expired, in which
case the callers that observe the expiry serialize on a mutex: one of them
rotates the window and the others proceed against the window it installed.

This type is concurrency safe.
*/
type AdaptiveSampler interface {
	sampler.Sampler
	Metrics
}

// Metrics provides info about an AdaptiveSampler.
//
// This type is concurrency safe.
type Metrics interface {
	// Probability returns the gate probability of the current window, from 0 to 1.
	Probability() float64

	// Budget returns the carried sample budget that the current window was granted.
	Budget() float64

	// AverageSamples returns the exponentially weighted average of admitted
	// samples per window, normalized to the nominal window duration.
	AverageSamples() float64

	// AverageCount returns the exponentially weighted average of observed
	// events per window, normalized to the nominal window duration.
	AverageCount() float64

	// SaturationRate returns the ratio of recently closed windows that
	// exhausted their sample budget, from 0 to 1.
	SaturationRate() float64

	// SampledCount returns the total number of admitted events, including the
	// current window.
	SampledCount() uint64

	// ObservedCount returns the total number of events offered to the
	// sampler, including the current window.
	ObservedCount() uint64
}

/*
Builder builds AdaptiveSampler instances.

This type is not concurrency safe.
*/
type Builder interface {
	// WithLogger configures a logger which logs window rotations at debug
	// level. No logging is performed by default.
	WithLogger(logger *slog.Logger) Builder

	// Build returns a new AdaptiveSampler using the builder's configuration.
	Build() AdaptiveSampler
}

type config struct {
	windowDuration   time.Duration
	samplesPerWindow uint
	windowLookback   uint
	budgetLookback   uint
	logger           *slog.Logger
	clock            util.Clock
	random           util.Random
}

var _ Builder = &config{}

/*
NewBuilder returns an AdaptiveSampler Builder for the windowDuration,
samplesPerWindow target, and two lookbacks. The windowLookback controls how
many windows the average event rate effectively remembers, which is how
quickly the probability tracks the underlying stream. The budgetLookback
controls how many windows the average sample rate remembers, which is how
quickly missed samples are paid back through the budget.

Panics if windowDuration is not positive or any of the remaining arguments
is zero.
*/
func NewBuilder(windowDuration time.Duration, samplesPerWindow uint, windowLookback uint, budgetLookback uint) Builder {
	if windowDuration <= 0 {
		panic("windowDuration must be positive")
	}
	if samplesPerWindow == 0 {
		panic("samplesPerWindow must be positive")
	}
	if windowLookback == 0 {
		panic("windowLookback must be positive")
	}
	if budgetLookback == 0 {
		panic("budgetLookback must be positive")
	}
	return &config{
		windowDuration:   windowDuration,
		samplesPerWindow: samplesPerWindow,
		windowLookback:   windowLookback,
		budgetLookback:   budgetLookback,
		clock:            util.WallClock,
		random:           util.NewRandom(),
	}
}

// New returns a new AdaptiveSampler for the windowDuration, samplesPerWindow
// target, and lookbacks. To configure additional options on an
// AdaptiveSampler, use NewBuilder instead.
func New(windowDuration time.Duration, samplesPerWindow uint, windowLookback uint, budgetLookback uint) AdaptiveSampler {
	return NewBuilder(windowDuration, samplesPerWindow, windowLookback, budgetLookback).Build()
}

func (c *config) WithLogger(logger *slog.Logger) Builder {
	c.logger = logger
	return c
}

func (c *config) Build() AdaptiveSampler {
	s := &adaptiveSampler{
		config:        c, // TODO copy base fields
		avgSamples:    util.NewEwma(util.LookbackSmoothing(c.budgetLookback)),
		avgCount:      util.NewEwma(util.LookbackSmoothing(c.windowLookback)),
		samplesBudget: float64(c.samplesPerWindow) * (1 + float64(c.budgetLookback)),
		probability:   initialProbability,
		recentWindows: newWindowStats(defaultWindowStatsSize),
	}
	s.window.Store(newSamplerWindow(s.probability, s.samplesBudget, c.windowDuration, c.clock, c.random))
	return s
}

type adaptiveSampler struct {
	*config

	// The current window, read lock-free on the hot path and replaced under mtx.
	window atomic.Pointer[samplerWindow]

	sampledTotal  atomic.Uint64
	observedTotal atomic.Uint64

	mtx sync.Mutex
	// Guarded by mtx
	avgSamples    *util.Ewma
	avgCount      *util.Ewma
	samplesBudget float64
	probability   float64
	recentWindows *windowStats
}

func (s *adaptiveSampler) ShouldSample() bool {
	window := s.window.Load()
	if window.isExpired() {
		window = s.rotateWindow()
	}
	return window.shouldSample()
}

// rotateWindow folds the expired window's counts into the averages, derives
// the next probability and budget from them, and installs a fresh window.
// Concurrent callers that observed the expiry converge here; the re-check
// under the mutex leaves a single rotator.
func (s *adaptiveSampler) rotateWindow() *samplerWindow {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	window := s.window.Load()
	if !window.isExpired() {
		return window
	}

	samples := window.samples()
	total := window.total()
	adjustment := window.adjustmentFactor()
	s.sampledTotal.Add(samples)
	s.observedTotal.Add(total)
	s.recentWindows.record(samples >= window.budget)

	avgSamples := s.avgSamples.Add(float64(samples) * adjustment)
	// The budget is recomputed before the probability: a shortfall against the
	// target accumulates across the budget lookback so a later busy window can
	// catch up, while an excess collapses the budget to zero.
	s.samplesBudget = max(float64(s.samplesPerWindow)-avgSamples, 0) * float64(s.budgetLookback)

	avgCount := s.avgCount.Add(float64(total) * adjustment)
	if avgCount == 0 {
		// An effectively empty stream, admit whatever arrives.
		s.probability = 1
	} else {
		s.probability = min((float64(s.samplesPerWindow)+s.samplesBudget)/avgCount, 1)
	}

	if s.logger != nil {
		s.logger.Debug("rotated sampling window",
			"probability", s.probability,
			"budget", s.samplesBudget,
			"avgSamples", avgSamples,
			"avgCount", avgCount)
	}

	next := newSamplerWindow(s.probability, s.samplesBudget, s.windowDuration, s.clock, s.random)
	s.window.Store(next)
	return next
}

func (s *adaptiveSampler) Probability() float64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.probability
}

func (s *adaptiveSampler) Budget() float64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.samplesBudget
}

func (s *adaptiveSampler) AverageSamples() float64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.avgSamples.Value()
}

func (s *adaptiveSampler) AverageCount() float64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.avgCount.Value()
}

func (s *adaptiveSampler) SaturationRate() float64 {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.recentWindows.saturationRate()
}

func (s *adaptiveSampler) SampledCount() uint64 {
	return s.sampledTotal.Load() + s.window.Load().samples()
}

func (s *adaptiveSampler) ObservedCount() uint64 {
	return s.observedTotal.Load() + s.window.Load().total()
}
