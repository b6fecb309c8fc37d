package truncnorm

import "errors"

// Sentinel errors returned by the sampling functions. Callers should test
// them with errors.Is; the returned errors carry additional context.
var (
	// ErrDimensionMismatch indicates that the covariance matrix or the
	// truncation bounds disagree in shape with the mean vector.
	ErrDimensionMismatch = errors.New("truncnorm: dimension mismatch")

	// ErrNonDiagonal indicates that independent sampling was requested for
	// a covariance matrix with off-diagonal entries above DiagonalTol.
	ErrNonDiagonal = errors.New("truncnorm: covariance matrix is not diagonal")

	// ErrUnsupportedDimension indicates that correlated (rejection)
	// sampling was requested at a dimensionality other than RejectionDim.
	ErrUnsupportedDimension = errors.New("truncnorm: unsupported dimension for correlated sampling")

	// ErrInvalidArgument indicates an invalid scalar input, an unknown
	// method, or an inverted bound pair.
	ErrInvalidArgument = errors.New("truncnorm: invalid argument")

	// ErrMaxRounds indicates that the rejection sampler hit the optional
	// round limit before accepting the requested number of samples.
	ErrMaxRounds = errors.New("truncnorm: rejection sampling exceeded maximum rounds")
)
