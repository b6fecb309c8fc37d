package incidence

import "errors"

// Sentinel errors returned by the estimation functions. Callers should test
// them with errors.Is; the returned errors carry additional context.
var (
	// ErrInvalidInput indicates an out-of-range parameter: a proportion
	// outside [0,1], a negative standard error, a non-positive MDRI or
	// time window, or a negative draw count.
	ErrInvalidInput = errors.New("incidence: invalid input")

	// ErrInvalidAlpha indicates a significance level outside (0, 1).
	ErrInvalidAlpha = errors.New("incidence: alpha must lie strictly between 0 and 1")

	// ErrInvalidBonferroni indicates a Bonferroni correction factor below 1.
	ErrInvalidBonferroni = errors.New("incidence: bonferroni factor must be >= 1")

	// ErrCapability indicates that a correlated bootstrap was requested at
	// a dimensionality the rejection sampler does not support.
	ErrCapability = errors.New("incidence: correlated bootstrap unsupported at this dimensionality")
)

// WarningCode classifies the non-fatal conditions an estimation call may
// recover from. A computation never substitutes or clamps a value silently:
// every such recovery is reported on the result.
type WarningCode int

const (
	// WarnDegenerateInput reports a zero standard error that was replaced
	// by a small positive epsilon before bootstrap sampling.
	WarnDegenerateInput WarningCode = iota + 1

	// WarnClampedValue reports a negative covariance or a negative point
	// estimate that was clamped to zero before use.
	WarnClampedValue

	// WarnUnreliableVariance reports a zero standard error accepted under
	// delta-method mode; the resulting variance estimate is likely invalid.
	WarnUnreliableVariance
)

// String returns the code name.
func (c WarningCode) String() string {
	switch c {
	case WarnDegenerateInput:
		return "degenerate input"
	case WarnClampedValue:
		return "clamped value"
	case WarnUnreliableVariance:
		return "unreliable variance"
	default:
		return "unknown warning"
	}
}

// Warning describes a recovered, non-fatal condition.
type Warning struct {
	Code    WarningCode
	Message string
}

func (w Warning) String() string { return w.Code.String() + ": " + w.Message }

// hasWarning reports whether any warning in the slice carries the code.
func hasWarning(ws []Warning, code WarningCode) bool {
	for _, w := range ws {
		if w.Code == code {
			return true
		}
	}
	return false
}
