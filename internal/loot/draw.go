package loot

import "math"

const (
	// decayLow is the lower bound of the per-branch decay factor.
	decayLow = 0.0001
	// decayHigh is the (exclusive) upper bound of the per-branch decay factor.
	decayHigh = 1.0
)

// Draw under p, return if it is hit.
// Always consumes exactly one Float64 so the sequence of draws does not depend
// on p. p <= 0 never hits, p >= 1 always hits.
func Draw(p float64, rng RandomSource) bool {
	return rng.Float64() < p
}

// drawDecay draws a decay factor uniformly from [decayLow, decayHigh).
func drawDecay(rng RandomSource) float64 {
	return decayLow + rng.Float64()*(decayHigh-decayLow)
}

// decayThreshold applies a decay factor to a threshold, clamps it to [0,1]
// and rounds it to two decimals.
func decayThreshold(threshold, decay float64) float64 {
	t := threshold * decay
	if t < 0 || math.IsNaN(t) {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return math.Round(t*100) / 100
}

// drawStack returns a stack count in [s.Min, s.Max].
// A single-valued range does not consume a draw.
func drawStack(s Stack, rng RandomSource) int {
	if s.Max <= s.Min {
		return s.Min
	}
	return s.Min + rng.IntN(s.Max-s.Min+1)
}
