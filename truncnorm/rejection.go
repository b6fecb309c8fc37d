package truncnorm

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// RejectionDim is the only dimensionality the rejection sampler supports.
// The batch-sizing heuristics below were tuned for the four-parameter
// incidence use case (two prevalences, MDRI, FRR) and have not been
// validated at other dimensions, so the boundary is enforced rather than
// silently generalized.
const RejectionDim = 4

// pilotDraws is the size of the initial batch used to estimate the
// rejection rate of the untruncated normal against the truncation box.
const pilotDraws = 1000

// sampleRejection draws from the full multivariate normal N(mu, sigma) and
// keeps only the vectors inside the truncation box, topping up until exactly
// n rows have been accepted.
//
// A pilot batch estimates the rejection rate rr; the first real batch is
// sized round(n + n·rr) and each top-up round adds round(n·rr + 1) draws.
// When the box carries almost no probability mass, rr approaches 1 and the
// top-up loop can run for a very long time: termination is only guaranteed
// with probability 1 for rr strictly below 1. Callers that need bounded
// latency can set maxRounds > 0, in which case the sampler fails with
// ErrMaxRounds instead of looping.
func sampleRejection(rng *rand.Rand, n int, mu []float64, sigma *mat.SymDense, lower, upper []float64, maxRounds int) (*mat.Dense, error) {
	d := len(mu)
	if d != RejectionDim {
		return nil, fmt.Errorf("%w: got dimension %d, rejection sampling supports exactly %d; set the covariances to zero to sample each dimension independently",
			ErrUnsupportedDimension, d, RejectionDim)
	}

	norm, ok := distmv.NewNormal(mu, sigma, rng)
	if !ok {
		return nil, fmt.Errorf("%w: covariance matrix is not positive definite", ErrInvalidArgument)
	}

	inBox := func(x []float64) bool {
		for i, v := range x {
			if v < lower[i] || v > upper[i] {
				return false
			}
		}
		return true
	}

	// Pilot batch: estimate the rejection rate.
	x := make([]float64, d)
	inside := 0
	for i := 0; i < pilotDraws; i++ {
		norm.Rand(x)
		if inBox(x) {
			inside++
		}
	}
	rr := 1 - float64(inside)/float64(pilotDraws)

	rows := make([]float64, 0, n*d)
	kept := 0
	draw := func(batch int) {
		for i := 0; i < batch && kept < n; i++ {
			norm.Rand(x)
			if inBox(x) {
				rows = append(rows, x...)
				kept++
			}
		}
	}

	draw(int(math.Round(float64(n) + float64(n)*rr)))

	rounds := 0
	for kept < n {
		rounds++
		if maxRounds > 0 && rounds > maxRounds {
			return nil, fmt.Errorf("%w: %d of %d samples accepted after %d rounds (estimated acceptance rate %.3g); the truncation box may carry near-zero probability mass",
				ErrMaxRounds, kept, n, maxRounds, 1-rr)
		}
		draw(int(math.Round(float64(n)*rr + 1)))
	}

	return mat.NewDense(n, d, rows), nil
}
