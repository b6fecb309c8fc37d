package truncnorm

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// sampleIndependent fills an n×d matrix one column at a time, drawing each
// dimension from its own univariate truncated normal. It is only reachable
// through Sample, which has already verified the shapes and the diagonality
// of sigma, so the per-dimension standard deviation is just the square root
// of the corresponding diagonal entry.
//
// Every draw is accepted, so the cost is O(n·d) for any d >= 1. This is the
// preferred path whenever the covariance matrix is diagonal.
func sampleIndependent(rng *rand.Rand, n int, mu []float64, sigma *mat.SymDense, lower, upper []float64) (*mat.Dense, error) {
	d := len(mu)
	out := mat.NewDense(n, d, nil)
	for j := 0; j < d; j++ {
		col, err := Univariate(rng, n, mu[j], math.Sqrt(sigma.At(j, j)), lower[j], upper[j])
		if err != nil {
			return nil, err
		}
		out.SetCol(j, col)
	}
	return out, nil
}
