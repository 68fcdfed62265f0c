package util

import "math/rand"

// A Random provides uniformly distributed random values. Implementations
// must be safe for concurrent use unless stated otherwise.
type Random interface {
	// Float64 returns a uniform random value in [0, 1).
	Float64() float64
}

// NewRandom returns a Random backed by the shared math/rand source.
func NewRandom() Random {
	return &sharedRandom{}
}

type sharedRandom struct{}

func (r *sharedRandom) Float64() float64 {
	return rand.Float64()
}
