package feed

// Linear congruential generator parameters.
const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

// Generator is the seeded pseudo-random sequence shared by every draw of one
// ranking pass: each call to Next advances the same seed, including the draws
// made by the final shuffle. A Generator is not safe for concurrent use and
// is never shared between passes.
type Generator struct {
	seed int64
}

// NewGenerator returns a generator seeded with seed, typically the current
// time in milliseconds.
func NewGenerator(seed int64) *Generator {
	// Reducing up front keeps seed*lcgMultiplier inside int64 for any input
	// without changing the sequence.
	seed %= lcgModulus
	if seed < 0 {
		seed += lcgModulus
	}
	return &Generator{seed: seed}
}

// Next advances the seed and returns a value in [0, 1).
func (g *Generator) Next() float64 {
	g.seed = (g.seed*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(g.seed) / lcgModulus
}
