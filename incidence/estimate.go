package incidence

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Survey holds the two prevalence estimates from one cross-sectional survey.
type Survey struct {
	PrevH   float64 // prevalence of infection
	SEPrevH float64 // its standard error
	PrevR   float64 // prevalence of recent infection among the infected
	SEPrevR float64 // its standard error
}

// Assay holds the recency-test calibration constants. MDRI, its standard
// error, and the BigT window are expressed in the unit selected by
// Options.TimeUnit (days by default); FRR is a probability.
type Assay struct {
	MDRI   float64 // mean duration of recent infection
	SEMDRI float64
	FRR    float64 // false-recent rate
	SEFRR  float64
}

// Options configures Estimate and EstimateFromCounts. The zero value selects
// the delta method at a 95% confidence level with MDRI and BigT in days.
// Defaults are resolved inside the estimation call, never against other
// fields at construction time.
type Options struct {
	// Covar is the covariance between the PrevH and PrevR estimates.
	// Negative values are clamped to zero with a warning: under this model
	// a prevalence cannot covary negatively with its own recency
	// prevalence.
	Covar float64

	// BigT is the recency cut-off time in the same unit as MDRI.
	// Default 730.5.
	BigT float64

	// TimeUnit is the number of MDRI/BigT units per year; incidence is
	// reported per person-year. Default 365.25 (MDRI given in days).
	// Use 1 when MDRI and BigT are already in years.
	TimeUnit float64

	// BootstrapDraws selects bootstrap variance estimation when > 0;
	// 0 selects the delta method. The point estimate is identical either
	// way.
	BootstrapDraws int

	// Alpha is the two-sided significance level. Default 0.05.
	Alpha float64

	// Scale multiplies the reported incidence, e.g. 100 for percent.
	// Default 1.
	Scale float64

	// UseGibbs routes zero-covariance bootstrap draws through the
	// truncnorm selector instead of drawing each parameter directly. The
	// two are numerically identical; the flag exists to exercise the
	// dispatch path.
	UseGibbs bool

	// MaxRounds bounds the rejection sampler's top-up rounds when the
	// correlated bootstrap path is taken. 0 means no limit.
	MaxRounds int

	// KeepDraws retains the bootstrap incidence series on the Result.
	KeepDraws bool

	// RNG is the generator used for all bootstrap randomness. Supplying a
	// seeded generator makes the run reproducible; when nil a time-seeded
	// generator is created for the call.
	RNG *rand.Rand
}

// withDefaults resolves zero-value fields. Called once per estimation; the
// returned copy is the only Options value the computation reads.
func (o Options) withDefaults() Options {
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
	if o.RNG == nil {
		o.RNG = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	return o
}

// Interval is a two-sided confidence interval, Lower <= Upper.
type Interval struct {
	Lower float64
	Upper float64
}

// Result is the outcome of a single-survey incidence estimation.
type Result struct {
	Incidence float64  // point estimate, per person-year times Options.Scale
	CI        Interval // two-sided confidence interval at level 1 - Alpha
	SE        float64  // standard error of the estimate
	RSE       float64  // relative standard error, SE / |Incidence|
	RSEInfSS  float64  // RSE contribution of MDRI and FRR alone (infinite survey size)
	Alpha     float64

	// Bootstrap-mode extras: the empirical covariance and correlation
	// between the prevalence draws and the incidence series, and, when
	// Options.KeepDraws is set, the raw series itself.
	CovPrevIncidence  float64
	CorrPrevIncidence float64
	Draws             []float64

	Warnings []Warning
}

// ratio evaluates the Kassanjee incidence estimator at one parameter point.
// m and t must be in years.
func ratio(p1, p2, m, f, t, scale float64) float64 {
	return scale * p1 * (p2 - f) / ((1 - p1) * (m - f*t))
}

// gradient returns the partial derivatives of the estimator with respect to
// (p1, p2, m, f) at the given point, for the delta-method variance.
func gradient(p1, p2, m, f, t, scale float64) (dp1, dp2, dm, df float64) {
	a := p2 - f
	b := m - f*t
	q := p1 / (1 - p1)
	dp1 = scale * a / (b * (1 - p1) * (1 - p1))
	dp2 = scale * q / b
	dm = -scale * q * a / (b * b)
	df = scale * q * (a*t - b) / (b * b)
	return dp1, dp2, dm, df
}

// Estimate computes incidence from one survey's prevalence estimates and the
// recency-assay constants, with either a delta-method (BootstrapDraws == 0)
// or bootstrap variance. The point estimate is the same in both modes.
func Estimate(survey Survey, assay Assay, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if opts.Alpha <= 0 || opts.Alpha >= 1 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidAlpha, opts.Alpha)
	}
	if opts.BootstrapDraws < 0 {
		return nil, fmt.Errorf("%w: bootstrap draws = %d", ErrInvalidInput, opts.BootstrapDraws)
	}
	if err := validateSurvey(survey); err != nil {
		return nil, err
	}
	if err := validateAssay(assay, opts); err != nil {
		return nil, err
	}

	m := assay.MDRI / opts.TimeUnit
	sm := assay.SEMDRI / opts.TimeUnit
	bigT := opts.BigT / opts.TimeUnit

	res := &Result{
		Incidence: ratio(survey.PrevH, survey.PrevR, m, assay.FRR, bigT, opts.Scale),
		Alpha:     opts.Alpha,
	}

	covar := opts.Covar
	if covar < 0 {
		res.Warnings = append(res.Warnings, Warning{
			Code:    WarnClampedValue,
			Message: fmt.Sprintf("negative prevalence covariance %g clamped to 0", covar),
		})
		covar = 0
	}

	// The MDRI/FRR variance share is a delta-method quantity regardless of
	// the variance mode: it answers how small the RSE could get with an
	// infinitely large survey.
	dp1, dp2, dm, df := gradient(survey.PrevH, survey.PrevR, m, assay.FRR, bigT, opts.Scale)
	varInfSS := dm*dm*sm*sm + df*df*assay.SEFRR*assay.SEFRR
	res.RSEInfSS = math.Sqrt(varInfSS) / math.Abs(res.Incidence)

	if opts.BootstrapDraws == 0 {
		variance := dp1*dp1*survey.SEPrevH*survey.SEPrevH +
			dp2*dp2*survey.SEPrevR*survey.SEPrevR +
			varInfSS +
			2*dp1*dp2*covar
		if survey.SEPrevH == 0 || survey.SEPrevR == 0 || assay.SEMDRI == 0 || assay.SEFRR == 0 {
			res.Warnings = append(res.Warnings, Warning{
				Code:    WarnUnreliableVariance,
				Message: "a standard error of exactly 0 was supplied; the delta-method variance is likely invalid",
			})
		}
		res.SE = math.Sqrt(variance)
		z := distuv.UnitNormal.Quantile(1 - opts.Alpha/2)
		res.CI = Interval{Lower: res.Incidence - z*res.SE, Upper: res.Incidence + z*res.SE}
		res.RSE = res.SE / math.Abs(res.Incidence)
		return res, nil
	}

	if err := bootstrapSingle(res, survey, m, sm, assay.FRR, assay.SEFRR, bigT, covar, opts); err != nil {
		return nil, err
	}
	return res, nil
}

// validateSurvey checks that the prevalences are proportions (PrevH strictly
// below 1 so the estimator's denominator is defined) and that the standard
// errors are non-negative.
func validateSurvey(s Survey) error {
	if s.PrevH < 0 || s.PrevH >= 1 {
		return fmt.Errorf("%w: PrevH = %g, must lie in [0, 1)", ErrInvalidInput, s.PrevH)
	}
	if s.PrevR < 0 || s.PrevR > 1 {
		return fmt.Errorf("%w: PrevR = %g, must lie in [0, 1]", ErrInvalidInput, s.PrevR)
	}
	if s.SEPrevH < 0 || s.SEPrevR < 0 {
		return fmt.Errorf("%w: negative standard error", ErrInvalidInput)
	}
	return nil
}

func validateAssay(a Assay, opts Options) error {
	if a.MDRI <= 0 {
		return fmt.Errorf("%w: MDRI = %g, must be > 0", ErrInvalidInput, a.MDRI)
	}
	if a.FRR < 0 || a.FRR > 1 {
		return fmt.Errorf("%w: FRR = %g, must lie in [0, 1]", ErrInvalidInput, a.FRR)
	}
	if a.SEMDRI < 0 || a.SEFRR < 0 {
		return fmt.Errorf("%w: negative standard error", ErrInvalidInput)
	}
	if opts.BigT <= 0 || opts.TimeUnit <= 0 {
		return fmt.Errorf("%w: BigT and TimeUnit must be > 0", ErrInvalidInput)
	}
	return nil
}
