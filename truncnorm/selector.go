package truncnorm

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// Method selects the algorithm used by Sample.
type Method int

const (
	// MethodAuto classifies the covariance matrix and routes diagonal
	// matrices to the independent sampler and everything else to the
	// rejection sampler.
	MethodAuto Method = iota

	// MethodIndependent forces per-dimension inverse-CDF sampling. The
	// covariance matrix must be diagonal.
	MethodIndependent

	// MethodCorrelated forces rejection sampling. The dimensionality must
	// equal RejectionDim.
	MethodCorrelated
)

// String returns the method name used in error messages.
func (m Method) String() string {
	switch m {
	case MethodAuto:
		return "auto"
	case MethodIndependent:
		return "independent"
	case MethodCorrelated:
		return "correlated"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// DiagonalTol is the absolute tolerance below which an off-diagonal
// covariance entry is treated as zero when classifying the matrix.
const DiagonalTol = 1e-10

// IsDiagonal reports whether every off-diagonal entry of sigma lies within
// DiagonalTol of zero. The classification is recomputed on every call; it is
// a pure function of sigma and is never cached.
func IsDiagonal(sigma *mat.SymDense) bool {
	d := sigma.SymmetricDim()
	for i := 0; i < d; i++ {
		for j := i + 1; j < d; j++ {
			if math.Abs(sigma.At(i, j)) > DiagonalTol {
				return false
			}
		}
	}
	return true
}

// Options configures Sample. The zero value requests automatic method
// selection with no limit on rejection top-up rounds.
type Options struct {
	// Method picks the sampling algorithm. Default: MethodAuto.
	Method Method

	// MaxRounds, when > 0, bounds the number of top-up rounds the
	// rejection sampler may run before failing with ErrMaxRounds.
	// Default 0: no limit.
	MaxRounds int
}

// Sample draws n rows from the multivariate normal N(mu, sigma) truncated
// componentwise to [lower, upper], choosing the algorithm per method.
// It is equivalent to SampleOptions with only the Method field set.
func Sample(rng *rand.Rand, n int, mu []float64, sigma *mat.SymDense, lower, upper []float64, method Method) (*mat.Dense, error) {
	return SampleOptions(rng, n, mu, sigma, lower, upper, Options{Method: method})
}

// SampleOptions draws n rows from the truncated multivariate normal
// N(mu, sigma) restricted to the box [lower, upper]. Every row of the
// returned n×d matrix lies componentwise inside the box.
//
// Dispatch:
//   - MethodAuto with a diagonal sigma uses the independent sampler, which
//     works at any dimension with no discarded draws.
//   - MethodAuto with a non-diagonal sigma uses the rejection sampler, which
//     requires the dimension to equal RejectionDim.
//   - MethodIndependent fails with ErrNonDiagonal unless sigma is diagonal.
//   - MethodCorrelated fails with ErrUnsupportedDimension unless the
//     dimension equals RejectionDim.
//
// This is the only place the diagonality test and the capability boundary
// live; the samplers themselves trust the dispatch.
func SampleOptions(rng *rand.Rand, n int, mu []float64, sigma *mat.SymDense, lower, upper []float64, opts Options) (*mat.Dense, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n = %d, must be >= 1", ErrInvalidArgument, n)
	}
	d := len(mu)
	if err := checkShapes(d, sigma, lower, upper); err != nil {
		return nil, err
	}

	switch opts.Method {
	case MethodAuto:
		if IsDiagonal(sigma) {
			return sampleIndependent(rng, n, mu, sigma, lower, upper)
		}
		return sampleRejection(rng, n, mu, sigma, lower, upper, opts.MaxRounds)
	case MethodIndependent:
		if !IsDiagonal(sigma) {
			return nil, fmt.Errorf("%w: independent sampling was requested but an off-diagonal entry exceeds %g", ErrNonDiagonal, DiagonalTol)
		}
		return sampleIndependent(rng, n, mu, sigma, lower, upper)
	case MethodCorrelated:
		return sampleRejection(rng, n, mu, sigma, lower, upper, opts.MaxRounds)
	default:
		return nil, fmt.Errorf("%w: unknown method %s", ErrInvalidArgument, opts.Method)
	}
}

// checkShapes verifies that sigma and the bounds agree with the mean vector
// and that every bound pair is ordered.
func checkShapes(d int, sigma *mat.SymDense, lower, upper []float64) error {
	if d == 0 {
		return fmt.Errorf("%w: empty mean vector", ErrDimensionMismatch)
	}
	if r := sigma.SymmetricDim(); r != d {
		return fmt.Errorf("%w: covariance matrix is %dx%d but the mean vector has length %d", ErrDimensionMismatch, r, r, d)
	}
	if len(lower) != d || len(upper) != d {
		return fmt.Errorf("%w: bounds have lengths %d and %d but the mean vector has length %d", ErrDimensionMismatch, len(lower), len(upper), d)
	}
	for i := range lower {
		if lower[i] > upper[i] {
			return fmt.Errorf("%w: lower[%d] = %g exceeds upper[%d] = %g", ErrInvalidArgument, i, lower[i], i, upper[i])
		}
	}
	return nil
}
