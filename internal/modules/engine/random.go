package engine

import "math/rand/v2"

// RandomSource produces uniform values in [0,1).
type RandomSource interface {
	Float64() float64
}

// RandomFunc adapts a plain function to RandomSource.
type RandomFunc func() float64

// Float64 implements RandomSource
func (f RandomFunc) Float64() float64 {
	return f()
}

// DefaultSource returns the process-wide, entropy-seeded generator.
// It is safe for concurrent use.
func DefaultSource() RandomSource {
	return RandomFunc(rand.Float64)
}

// NewSeededSource returns a deterministic PCG generator. The returned source
// is not safe for concurrent use; give each simulation its own.
func NewSeededSource(seed uint64) RandomSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
