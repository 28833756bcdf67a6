package games

import "math/rand/v2"

// Bounds of the secret, both inclusive.
const (
	MinSecret = 1
	MaxSecret = 100
)

// Intner is the subset of *rand.Rand used to draw a secret.
type Intner interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// NewSecret draws a secret uniformly from [MinSecret, MaxSecret].
func NewSecret(r Intner) uint32 {
	return uint32(MinSecret + r.IntN(MaxSecret-MinSecret+1))
}

// RandomSecret draws a secret from the auto-seeded global source.
func RandomSecret() uint32 {
	return NewSecret(globalRand{})
}
