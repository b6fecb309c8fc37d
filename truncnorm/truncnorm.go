package truncnorm

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Univariate draws n values from a normal distribution with mean mu and
// standard deviation sigma, truncated to [lower, upper], via the inverse-CDF
// transform: a uniform draw on (CDF(lower), CDF(upper)) is mapped back through
// the normal quantile function. Bounds may be -Inf or +Inf.
//
// Every returned value lies in [lower, upper]; for finite bounds a rounding
// overshoot at the boundary is clamped back onto it.
func Univariate(rng *rand.Rand, n int, mu, sigma, lower, upper float64) ([]float64, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: n = %d, must be >= 0", ErrInvalidArgument, n)
	}
	if sigma <= 0 {
		return nil, fmt.Errorf("%w: sigma = %g, must be > 0", ErrInvalidArgument, sigma)
	}
	if lower > upper {
		return nil, fmt.Errorf("%w: lower bound %g exceeds upper bound %g", ErrInvalidArgument, lower, upper)
	}

	norm := distuv.Normal{Mu: mu, Sigma: sigma}
	cdfLo := norm.CDF(lower)
	cdfHi := norm.CDF(upper)

	out := make([]float64, n)
	for i := range out {
		u := cdfLo + rng.Float64()*(cdfHi-cdfLo)
		x := norm.Quantile(u)
		out[i] = math.Min(math.Max(x, lower), upper)
	}
	return out, nil
}
