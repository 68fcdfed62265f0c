package util

import "math"

// Ewma is an exponentially weighted moving average.
//
// This type is not concurrency safe.
type Ewma struct {
	smoothingFactor float64

	// Mutable state
	set   bool
	value float64
}

// NewEwma creates a new Ewma with the smoothingFactor. The first added value
// overwrites the average rather than blending, so a series that starts far
// from zero does not pay a warmup transient.
func NewEwma(smoothingFactor float64) *Ewma {
	return &Ewma{
		smoothingFactor: smoothingFactor,
	}
}

// Add adds a value to the series and updates the moving average. After the
// first value, Add decays the Ewma value via (oldValue * (1 -
// smoothingFactor)) + (newValue * smoothingFactor).
func (e *Ewma) Add(newValue float64) float64 {
	if !e.set {
		e.set = true
		e.value = newValue
	} else {
		e.value = Smooth(e.value, newValue, e.smoothingFactor)
	}
	return e.value
}

// Value gets the current value of the moving average.
func (e *Ewma) Value() float64 {
	return e.value
}

// Reset resets the value of the moving average. The next Add overwrites.
func (e *Ewma) Reset() {
	e.set = false
	e.value = 0
}

// LookbackSmoothing returns a smoothing factor that spreads an Ewma's weight
// roughly evenly across the last lookback observations, decaying
// geometrically beyond them: 1 - n^(-1/n).
func LookbackSmoothing(lookback uint) float64 {
	n := float64(lookback)
	return 1 - math.Pow(n, -1/n)
}
