package util

// Smooth returns the oldValue decayed towards the newValue by the
// smoothingFactor.
func Smooth(oldValue, newValue, smoothingFactor float64) float64 {
	return oldValue + smoothingFactor*(newValue-oldValue)
}
