package generator

import (
	"math"
	"math/rand"
)

// weightedChoice draws one value from choices with the given probabilities.
// Weights must sum to 1; any residual mass falls on the last choice.
func weightedChoice(rng *rand.Rand, choices []string, weights []float64) string {
	r := rng.Float64()
	var cum float64
	for i, w := range weights {
		cum += w
		if r < cum {
			return choices[i]
		}
	}
	return choices[len(choices)-1]
}

// logNormal draws from a log-normal distribution with the given parameters
// of the underlying normal.
func logNormal(rng *rand.Rand, mu, sigma float64) float64 {
	return math.Exp(mu + sigma*rng.NormFloat64())
}

// gammaInt draws from a Gamma(shape, scale) distribution with integer shape,
// using the sum-of-exponentials construction.
func gammaInt(rng *rand.Rand, shape int, scale float64) float64 {
	var sum float64
	for i := 0; i < shape; i++ {
		sum += rng.ExpFloat64()
	}
	return sum * scale
}

// beta draws from a Beta(a, b) distribution with integer shape parameters
// via the ratio of two gamma variates.
func beta(rng *rand.Rand, a, b int) float64 {
	x := gammaInt(rng, a, 1)
	y := gammaInt(rng, b, 1)
	return x / (x + y)
}

// poisson draws from a Poisson distribution with mean lambda using Knuth's
// method; lambda is small here (at most 2), so this is fast enough.
func poisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}
