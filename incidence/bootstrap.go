package incidence

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/goincidence/truncnorm"
)

// degenerateSE replaces a standard error of exactly zero before bootstrap
// sampling; a truncated normal with zero width cannot be drawn from.
const degenerateSE = 1e-10

// positiveSE returns se, substituting degenerateSE when it is zero and
// recording the substitution.
func positiveSE(se float64, name string, warns *[]Warning) float64 {
	if se == 0 {
		*warns = append(*warns, Warning{
			Code:    WarnDegenerateInput,
			Message: fmt.Sprintf("zero standard error for %s replaced by %g for bootstrap sampling", name, degenerateSE),
		})
		return degenerateSE
	}
	return se
}

// drawJoint draws n joint (PrevH, PrevR, MDRI, FRR) vectors. Proportions are
// truncated to [0, 1] and the MDRI to [0, +Inf). With a zero covariance and
// useGibbs unset the four parameters are drawn directly, one univariate
// series each, which consumes the generator in the same order as the
// independent multivariate path and therefore produces identical draws.
func drawJoint(rng *rand.Rand, n int, mu, se [4]float64, covar float64, useGibbs bool, maxRounds int) (*mat.Dense, error) {
	lower := []float64{0, 0, 0, 0}
	upper := []float64{1, 1, math.Inf(1), 1}

	if covar > 0 || useGibbs {
		sigma := mat.NewSymDense(4, nil)
		for i, s := range se {
			sigma.SetSym(i, i, s*s)
		}
		sigma.SetSym(0, 1, covar)
		return truncnorm.SampleOptions(rng, n, mu[:], sigma, lower, upper, truncnorm.Options{
			Method:    truncnorm.MethodAuto,
			MaxRounds: maxRounds,
		})
	}

	out := mat.NewDense(n, 4, nil)
	for j := 0; j < 4; j++ {
		col, err := truncnorm.Univariate(rng, n, mu[j], se[j], lower[j], upper[j])
		if err != nil {
			return nil, err
		}
		out.SetCol(j, col)
	}
	return out, nil
}

// summarize computes the empirical standard deviation and the two-sided
// [alpha/2, 1-alpha/2] quantile interval of a bootstrap series.
func summarize(series []float64, alpha float64) (sd float64, ci Interval) {
	sd = stat.StdDev(series, nil)
	sorted := make([]float64, len(series))
	copy(sorted, series)
	sort.Float64s(sorted)
	ci = Interval{
		Lower: stat.Quantile(alpha/2, stat.LinInterp, sorted, nil),
		Upper: stat.Quantile(1-alpha/2, stat.LinInterp, sorted, nil),
	}
	return sd, ci
}

// bootstrapSingle fills the variance fields of res by resampling the four
// parameters jointly and mapping every draw through the estimator formula.
// The point estimate on res is left untouched.
func bootstrapSingle(res *Result, survey Survey, m, sm, f, sf, bigT, covar float64, opts Options) error {
	n := opts.BootstrapDraws

	mu := [4]float64{survey.PrevH, survey.PrevR, m, f}
	se := [4]float64{
		positiveSE(survey.SEPrevH, "PrevH", &res.Warnings),
		positiveSE(survey.SEPrevR, "PrevR", &res.Warnings),
		positiveSE(sm, "MDRI", &res.Warnings),
		positiveSE(sf, "FRR", &res.Warnings),
	}

	draws, err := drawJoint(opts.RNG, n, mu, se, covar, opts.UseGibbs, opts.MaxRounds)
	if err != nil {
		return err
	}

	series := make([]float64, n)
	prev := mat.Col(nil, 0, draws)
	for i := 0; i < n; i++ {
		series[i] = ratio(draws.At(i, 0), draws.At(i, 1), draws.At(i, 2), draws.At(i, 3), bigT, opts.Scale)
	}

	res.SE, res.CI = summarize(series, opts.Alpha)
	res.RSE = res.SE / math.Abs(res.Incidence)
	res.CovPrevIncidence = stat.Covariance(prev, series, nil)
	res.CorrPrevIncidence = stat.Correlation(prev, series, nil)
	if opts.KeepDraws {
		res.Draws = series
	}
	return nil
}

// Counts holds the raw survey counts for the counts-mode bootstrap.
type Counts struct {
	NTested  int // respondents tested for infection
	NPos     int // of those, found infected
	NTestedR int // infected respondents tested for recency
	NRecent  int // of those, classified recent
}

// defaultCountDraws is the bootstrap size used by EstimateFromCounts when
// Options.BootstrapDraws is zero; counts mode has no delta-method fallback.
const defaultCountDraws = 10000

// EstimateFromCounts computes incidence from raw survey counts. The two
// prevalences are resampled from Binomial distributions parameterized by the
// counts, while the MDRI and FRR remain independent truncated normals. Any
// covariance between the two binomial draws is assumed to be zero in this
// mode; that is a documented limitation, not a defect.
func EstimateFromCounts(counts Counts, assay Assay, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	if opts.BootstrapDraws == 0 {
		opts.BootstrapDraws = defaultCountDraws
	}
	if opts.Alpha <= 0 || opts.Alpha >= 1 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidAlpha, opts.Alpha)
	}
	if opts.BootstrapDraws < 0 {
		return nil, fmt.Errorf("%w: bootstrap draws = %d", ErrInvalidInput, opts.BootstrapDraws)
	}
	if counts.NTested <= 0 || counts.NTestedR <= 0 {
		return nil, fmt.Errorf("%w: trial counts must be > 0", ErrInvalidInput)
	}
	if counts.NPos < 0 || counts.NPos > counts.NTested || counts.NRecent < 0 || counts.NRecent > counts.NTestedR {
		return nil, fmt.Errorf("%w: success counts must lie within their trial counts", ErrInvalidInput)
	}
	if err := validateAssay(assay, opts); err != nil {
		return nil, err
	}

	p1 := float64(counts.NPos) / float64(counts.NTested)
	p2 := float64(counts.NRecent) / float64(counts.NTestedR)
	if p1 >= 1 {
		return nil, fmt.Errorf("%w: every respondent tested positive; the estimator denominator vanishes", ErrInvalidInput)
	}

	m := assay.MDRI / opts.TimeUnit
	sm := assay.SEMDRI / opts.TimeUnit
	bigT := opts.BigT / opts.TimeUnit

	res := &Result{
		Incidence: ratio(p1, p2, m, assay.FRR, bigT, opts.Scale),
		Alpha:     opts.Alpha,
	}

	_, _, dm, df := gradient(p1, p2, m, assay.FRR, bigT, opts.Scale)
	res.RSEInfSS = math.Sqrt(dm*dm*sm*sm+df*df*assay.SEFRR*assay.SEFRR) / math.Abs(res.Incidence)

	n := opts.BootstrapDraws
	rng := opts.RNG
	binPos := distuv.Binomial{N: float64(counts.NTested), P: p1, Src: rng}
	binRec := distuv.Binomial{N: float64(counts.NTestedR), P: p2, Src: rng}

	smEff := positiveSE(sm, "MDRI", &res.Warnings)
	sfEff := positiveSE(assay.SEFRR, "FRR", &res.Warnings)
	mDraws, err := truncnorm.Univariate(rng, n, m, smEff, 0, math.Inf(1))
	if err != nil {
		return nil, err
	}
	fDraws, err := truncnorm.Univariate(rng, n, assay.FRR, sfEff, 0, 1)
	if err != nil {
		return nil, err
	}

	series := make([]float64, n)
	prev := make([]float64, n)
	for i := 0; i < n; i++ {
		prev[i] = binPos.Rand() / float64(counts.NTested)
		p2i := binRec.Rand() / float64(counts.NTestedR)
		series[i] = ratio(prev[i], p2i, mDraws[i], fDraws[i], bigT, opts.Scale)
	}

	res.SE, res.CI = summarize(series, opts.Alpha)
	res.RSE = res.SE / math.Abs(res.Incidence)
	res.CovPrevIncidence = stat.Covariance(prev, series, nil)
	res.CorrPrevIncidence = stat.Correlation(prev, series, nil)
	if opts.KeepDraws {
		res.Draws = series
	}
	return res, nil
}
