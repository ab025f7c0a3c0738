package scheduler

import "math/rand/v2"

// RandomSource picks activities from the candidate pool. IntN returns a value
// in [0, n) for n > 0.
type RandomSource interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

// DefaultRandom returns a RandomSource backed by the runtime's global generator.
func DefaultRandom() RandomSource {
	return globalRandom{}
}
