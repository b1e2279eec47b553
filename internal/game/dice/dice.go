// Package dice provides the randomness abstraction used by every game formula.
//
// Nothing in the game reads ambient entropy: turn-order jitter, damage variance and
// encounter rolls all draw from an injected Source so they are reproducible under test.
package dice

// Source is the randomness provider for game formulas.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0.0, 1.0).
	Float64() float64
}

// Uniform returns a value drawn uniformly from [lo, hi).
//
// Precondition: lo <= hi; src must be non-nil.
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// IntBetween returns an int drawn uniformly from the closed range [lo, hi].
//
// Precondition: lo <= hi; src must be non-nil.
func IntBetween(src Source, lo, hi int) int {
	return lo + src.Intn(hi-lo+1)
}

// Pick returns an index drawn uniformly from [0, n).
//
// Precondition: n > 0.
func Pick(src Source, n int) int {
	return src.Intn(n)
}
