package incidence

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/goincidence/truncnorm"
)

// DifferenceOptions configures EstimateDifference. The zero value selects
// the delta method at a 95% level with no Bonferroni correction.
type DifferenceOptions struct {
	// Covar holds the within-group covariance between PrevH and PrevR for
	// each survey. Negative entries are clamped to zero with a warning.
	// Any strictly positive entry makes the bootstrap mode fail with
	// ErrCapability: the joint parameter vector of a two-survey difference
	// is 6-dimensional, beyond what the rejection sampler supports.
	Covar [2]float64

	// BigT, TimeUnit, Alpha, Scale: as in Options.
	BigT     float64
	TimeUnit float64
	Alpha    float64
	Scale    float64

	// Bonferroni divides Alpha for simultaneous comparisons. Default 1;
	// values below 1 are rejected.
	Bonferroni float64

	// BootstrapDraws selects bootstrap variance estimation when > 0.
	BootstrapDraws int

	// KeepDraws retains the bootstrap difference series on the result.
	KeepDraws bool

	// RNG is the generator for all bootstrap randomness; a time-seeded one
	// is created when nil.
	RNG *rand.Rand
}

func (o DifferenceOptions) withDefaults() DifferenceOptions {
	if o.BigT == 0 {
		o.BigT = 730.5
	}
	if o.TimeUnit == 0 {
		o.TimeUnit = 365.25
	}
	if o.Alpha == 0 {
		o.Alpha = 0.05
	}
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.Bonferroni == 0 {
		o.Bonferroni = 1
	}
	if o.RNG == nil {
		o.RNG = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	return o
}

// DifferenceResult is the outcome of a two-survey incidence comparison.
type DifferenceResult struct {
	Difference float64  // Incidence1 - Incidence2, after clamping
	CI         Interval // at the Bonferroni-adjusted level
	SE         float64
	RSE        float64
	PValue     float64 // two-sided, against a zero difference
	Alpha      float64 // after the Bonferroni adjustment

	// Per-group point estimates, clamped at zero. A negative group
	// estimate is noise around a near-zero incidence; clamping before
	// differencing mirrors the single-survey reporting convention, at the
	// cost of discarding the sign of that noise.
	Incidence1 float64
	Incidence2 float64

	Draws    []float64 // bootstrap difference series, when requested
	Warnings []Warning
}

// EstimateDifference compares the incidence of two surveys that share the
// same recency assay. The MDRI and FRR are common to both groups, so their
// uncertainty enters the difference through the gap between the two groups'
// sensitivities rather than twice in full.
func EstimateDifference(s1, s2 Survey, assay Assay, opts DifferenceOptions) (*DifferenceResult, error) {
	opts = opts.withDefaults()
	if opts.Alpha <= 0 || opts.Alpha >= 1 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidAlpha, opts.Alpha)
	}
	if opts.Bonferroni < 1 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidBonferroni, opts.Bonferroni)
	}
	if opts.BootstrapDraws < 0 {
		return nil, fmt.Errorf("%w: bootstrap draws = %d", ErrInvalidInput, opts.BootstrapDraws)
	}
	for _, s := range []Survey{s1, s2} {
		if err := validateSurvey(s); err != nil {
			return nil, err
		}
	}
	singleOpts := Options{BigT: opts.BigT, TimeUnit: opts.TimeUnit}
	if err := validateAssay(assay, singleOpts); err != nil {
		return nil, err
	}

	alpha := opts.Alpha / opts.Bonferroni
	m := assay.MDRI / opts.TimeUnit
	sm := assay.SEMDRI / opts.TimeUnit
	bigT := opts.BigT / opts.TimeUnit

	res := &DifferenceResult{Alpha: alpha}

	covar := opts.Covar
	for i, c := range covar {
		if c < 0 {
			res.Warnings = append(res.Warnings, Warning{
				Code:    WarnClampedValue,
				Message: fmt.Sprintf("negative prevalence covariance %g for survey %d clamped to 0", c, i+1),
			})
			covar[i] = 0
		}
	}

	i1 := ratio(s1.PrevH, s1.PrevR, m, assay.FRR, bigT, opts.Scale)
	i2 := ratio(s2.PrevH, s2.PrevR, m, assay.FRR, bigT, opts.Scale)
	res.Incidence1 = clampNonNegative(i1, "incidence estimate for survey 1", &res.Warnings)
	res.Incidence2 = clampNonNegative(i2, "incidence estimate for survey 2", &res.Warnings)
	res.Difference = res.Incidence1 - res.Incidence2

	if opts.BootstrapDraws == 0 {
		if err := differenceDelta(res, s1, s2, m, sm, assay.FRR, assay.SEFRR, bigT, covar, opts, alpha); err != nil {
			return nil, err
		}
		return res, nil
	}

	if covar[0] > 0 || covar[1] > 0 {
		return nil, fmt.Errorf("%w: a correlated two-survey bootstrap needs a 6-dimensional rejection sampler, but only %d dimensions are supported; set both covariances to zero to draw the parameters independently",
			ErrCapability, truncnorm.RejectionDim)
	}
	if err := differenceBootstrap(res, s1, s2, m, sm, assay.FRR, assay.SEFRR, bigT, opts, alpha); err != nil {
		return nil, err
	}
	return res, nil
}

// differenceDelta fills the variance fields from the closed-form
// delta-method combination of both groups' partial derivatives. The shared
// MDRI and FRR contribute through the difference of the two groups'
// partials, since the same draw of each would perturb both estimates.
func differenceDelta(res *DifferenceResult, s1, s2 Survey, m, sm, f, sf, bigT float64, covar [2]float64, opts DifferenceOptions, alpha float64) error {
	dp11, dp21, dm1, df1 := gradient(s1.PrevH, s1.PrevR, m, f, bigT, opts.Scale)
	dp12, dp22, dm2, df2 := gradient(s2.PrevH, s2.PrevR, m, f, bigT, opts.Scale)

	variance := dp11*dp11*s1.SEPrevH*s1.SEPrevH + dp21*dp21*s1.SEPrevR*s1.SEPrevR + 2*dp11*dp21*covar[0] +
		dp12*dp12*s2.SEPrevH*s2.SEPrevH + dp22*dp22*s2.SEPrevR*s2.SEPrevR + 2*dp12*dp22*covar[1] +
		(dm1-dm2)*(dm1-dm2)*sm*sm +
		(df1-df2)*(df1-df2)*sf*sf

	if s1.SEPrevH == 0 || s1.SEPrevR == 0 || s2.SEPrevH == 0 || s2.SEPrevR == 0 || sm == 0 || sf == 0 {
		res.Warnings = append(res.Warnings, Warning{
			Code:    WarnUnreliableVariance,
			Message: "a standard error of exactly 0 was supplied; the delta-method variance is likely invalid",
		})
	}

	res.SE = math.Sqrt(variance)
	z := distuv.UnitNormal.Quantile(1 - alpha/2)
	res.CI = Interval{Lower: res.Difference - z*res.SE, Upper: res.Difference + z*res.SE}
	res.RSE = res.SE / math.Abs(res.Difference)
	res.PValue = pTwoSided(res.Difference, res.SE)
	return nil
}

// differenceBootstrap draws the six parameters independently, each group's
// prevalences plus one shared MDRI and FRR series, and differences the
// per-draw incidence estimates, clamping each at zero to match the point
// estimate policy.
func differenceBootstrap(res *DifferenceResult, s1, s2 Survey, m, sm, f, sf, bigT float64, opts DifferenceOptions, alpha float64) error {
	n := opts.BootstrapDraws
	rng := opts.RNG

	specs := []struct {
		mu, se       float64
		lower, upper float64
		name         string
	}{
		{s1.PrevH, s1.SEPrevH, 0, 1, "survey 1 PrevH"},
		{s1.PrevR, s1.SEPrevR, 0, 1, "survey 1 PrevR"},
		{s2.PrevH, s2.SEPrevH, 0, 1, "survey 2 PrevH"},
		{s2.PrevR, s2.SEPrevR, 0, 1, "survey 2 PrevR"},
		{m, sm, 0, math.Inf(1), "MDRI"},
		{f, sf, 0, 1, "FRR"},
	}

	cols := make([][]float64, len(specs))
	for j, sp := range specs {
		se := positiveSE(sp.se, sp.name, &res.Warnings)
		col, err := truncnorm.Univariate(rng, n, sp.mu, se, sp.lower, sp.upper)
		if err != nil {
			return err
		}
		cols[j] = col
	}

	series := make([]float64, n)
	clamped := 0
	for i := 0; i < n; i++ {
		i1 := ratio(cols[0][i], cols[1][i], cols[4][i], cols[5][i], bigT, opts.Scale)
		i2 := ratio(cols[2][i], cols[3][i], cols[4][i], cols[5][i], bigT, opts.Scale)
		if i1 < 0 {
			i1 = 0
			clamped++
		}
		if i2 < 0 {
			i2 = 0
			clamped++
		}
		series[i] = i1 - i2
	}
	if clamped > 0 {
		res.Warnings = append(res.Warnings, Warning{
			Code:    WarnClampedValue,
			Message: fmt.Sprintf("%d negative per-draw incidence estimates (of %d draws per survey) clamped to 0", clamped, n),
		})
	}

	res.SE, res.CI = summarize(series, alpha)
	res.RSE = res.SE / math.Abs(res.Difference)
	res.PValue = pTwoSided(res.Difference, res.SE)
	if opts.KeepDraws {
		res.Draws = series
	}
	return nil
}

// pTwoSided is the two-sided normal-approximation p-value for a difference
// with standard error se: 2·Phi(-|d|/se).
func pTwoSided(d, se float64) float64 {
	if se == 0 {
		if d == 0 {
			return 1
		}
		return 0
	}
	return 2 * distuv.UnitNormal.CDF(-math.Abs(d)/se)
}

// clampNonNegative returns v, clamping negative values to zero and recording
// the clamp.
func clampNonNegative(v float64, what string, warns *[]Warning) float64 {
	if v < 0 {
		*warns = append(*warns, Warning{
			Code:    WarnClampedValue,
			Message: fmt.Sprintf("negative %s (%g) clamped to 0", what, v),
		})
		return 0
	}
	return v
}
