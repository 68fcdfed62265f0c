package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEwma(t *testing.T) {
	ewma := NewEwma(.5)
	assert.Equal(t, float64(0), ewma.Value())

	// The first value overwrites rather than blends
	assert.Equal(t, float64(10), ewma.Add(10))
	assert.Equal(t, float64(15), ewma.Add(20))
	assert.Equal(t, float64(10), ewma.Add(5))

	ewma.Reset()
	assert.Equal(t, float64(0), ewma.Value())
	assert.Equal(t, float64(4), ewma.Add(4))
}

func TestEwmaZeroIsAnObservation(t *testing.T) {
	ewma := NewEwma(.5)
	assert.Equal(t, float64(0), ewma.Add(0))
	// Zero was recorded, so the next value blends instead of overwriting
	assert.Equal(t, float64(5), ewma.Add(10))
}

func TestLookbackSmoothing(t *testing.T) {
	assert.InDelta(t, .2057, LookbackSmoothing(10), .001)
	assert.InDelta(t, .1208, LookbackSmoothing(25), .001)
	// A lookback of 1 never decays past the first observation
	assert.Equal(t, float64(0), LookbackSmoothing(1))
}

func TestSmooth(t *testing.T) {
	assert.Equal(t, float64(5), Smooth(0, 10, .5))
	assert.Equal(t, float64(10), Smooth(10, 10, .3))
	assert.Equal(t, float64(7), Smooth(10, 0, .3))
}
