package adaptivesampler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"

	"github.com/sampler-go/sampler-go/internal/testutil"
)

func TestWindowShouldSampleWithinBudget(t *testing.T) {
	clock := &testutil.TestClock{}
	// A probability of 1 must not consult the random source
	window := newSamplerWindow(1, 5, 100*time.Millisecond, clock, testutil.PanicRandom{})

	admitted := 0
	for i := 0; i < 10; i++ {
		if window.shouldSample() {
			admitted++
		}
	}

	assert.Equal(t, 5, admitted)
	assert.Equal(t, uint64(5), window.samples())
	assert.Equal(t, uint64(10), window.total())
}

func TestWindowProbabilityGate(t *testing.T) {
	clock := &testutil.TestClock{}
	random := &testutil.ScriptedRandom{Values: []float64{.4, .6, .49999, .5}}
	window := newSamplerWindow(.5, 100, 100*time.Millisecond, clock, random)

	assert.True(t, window.shouldSample())
	assert.False(t, window.shouldSample())
	assert.True(t, window.shouldSample())
	assert.False(t, window.shouldSample())
	assert.Equal(t, uint64(2), window.samples())
	assert.Equal(t, uint64(4), window.total())
}

func TestWindowZeroProbability(t *testing.T) {
	clock := &testutil.TestClock{}
	random := &testutil.ScriptedRandom{Values: []float64{0}}
	window := newSamplerWindow(0, 100, 100*time.Millisecond, clock, random)

	for i := 0; i < 10; i++ {
		assert.False(t, window.shouldSample())
	}
	assert.Equal(t, uint64(0), window.samples())
	assert.Equal(t, uint64(10), window.total())
}

func TestWindowExpiry(t *testing.T) {
	clock := &testutil.TestClock{CurrentTime: testutil.MillisToNanos(5000)}
	window := newSamplerWindow(1, 5, 100*time.Millisecond, clock, testutil.PanicRandom{})

	assert.False(t, window.isExpired())
	clock.Advance(testutil.MillisToNanos(100))
	assert.False(t, window.isExpired(), "a window should outlive exactly its duration")
	clock.Advance(1)
	assert.True(t, window.isExpired())
}

func TestWindowAdjustmentFactor(t *testing.T) {
	clock := &testutil.TestClock{}
	window := newSamplerWindow(1, 5, 100*time.Millisecond, clock, testutil.PanicRandom{})

	clock.Advance(testutil.MillisToNanos(200))
	assert.Equal(t, .5, window.adjustmentFactor())

	clock.CurrentTime = 0
	assert.Equal(t, 1.0, window.adjustmentFactor(), "zero elapsed time should read as no adjustment")

	clock.CurrentTime = -testutil.MillisToNanos(1)
	assert.Equal(t, 1.0, window.adjustmentFactor(), "a backwards clock should read as no adjustment")
}

func TestWindowSampleCountClamp(t *testing.T) {
	clock := &testutil.TestClock{}
	window := newSamplerWindow(1, 3, 100*time.Millisecond, clock, testutil.PanicRandom{})

	for i := 0; i < 10; i++ {
		window.shouldSample()
	}

	// The raw counter keeps running past the budget, the accessor clamps
	assert.Equal(t, uint64(10), window.sampleCount.Load())
	assert.Equal(t, uint64(3), window.samples())
}

func TestWindowConcurrentBudget(t *testing.T) {
	clock := &testutil.TestClock{}
	window := newSamplerWindow(1, 50, 100*time.Millisecond, clock, testutil.PanicRandom{})

	var admitted [8]uint64
	var group errgroup.Group
	for g := 0; g < len(admitted); g++ {
		g := g
		group.Go(func() error {
			for i := 0; i < 1000; i++ {
				if window.shouldSample() {
					admitted[g]++
				}
			}
			return nil
		})
	}
	assert.NoError(t, group.Wait())

	var total uint64
	for _, count := range admitted {
		total += count
	}
	assert.Equal(t, uint64(50), total)
	assert.Equal(t, uint64(50), window.samples())
	assert.Equal(t, uint64(8000), window.total())
}
