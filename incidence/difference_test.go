package incidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestDifferenceNullDelta(t *testing.T) {
	res, err := EstimateDifference(refSurvey, refSurvey, refAssay, DifferenceOptions{})
	require.NoError(t, err)

	assert.Zero(t, res.Difference)
	assert.InDelta(t, 1.0, res.PValue, 1e-12)
	assert.LessOrEqual(t, res.CI.Lower, 0.0)
	assert.GreaterOrEqual(t, res.CI.Upper, 0.0)

	// With a shared assay the MDRI/FRR partials cancel exactly, so the
	// difference SE comes from the prevalence terms alone.
	assert.Greater(t, res.SE, 0.0)
}

func TestDifferenceNullBootstrap(t *testing.T) {
	res, err := EstimateDifference(refSurvey, refSurvey, refAssay, DifferenceOptions{
		BootstrapDraws: 4000,
		RNG:            rand.New(rand.NewSource(41)),
	})
	require.NoError(t, err)

	assert.Zero(t, res.Difference)
	assert.InDelta(t, 1.0, res.PValue, 1e-12)
	assert.Less(t, res.CI.Lower, 0.0)
	assert.Greater(t, res.CI.Upper, 0.0)
}

func TestDifferenceAgainstSingleSurveyEstimates(t *testing.T) {
	s1 := Survey{PrevH: 0.25, SEPrevH: 0.012, PrevR: 0.12, SEPrevR: 0.018}
	s2 := Survey{PrevH: 0.15, SEPrevH: 0.010, PrevR: 0.08, SEPrevR: 0.015}

	diff, err := EstimateDifference(s1, s2, refAssay, DifferenceOptions{})
	require.NoError(t, err)

	r1, err := Estimate(s1, refAssay, Options{})
	require.NoError(t, err)
	r2, err := Estimate(s2, refAssay, Options{})
	require.NoError(t, err)

	assert.InDelta(t, r1.Incidence-r2.Incidence, diff.Difference, 1e-12)
	assert.Greater(t, diff.Difference, 0.0)
	assert.Less(t, diff.PValue, 0.05, "clearly separated groups should reject the null")

	// Sharing the assay must shrink the variance relative to treating the
	// two estimates as fully independent.
	independent := r1.SE*r1.SE + r2.SE*r2.SE
	assert.Less(t, diff.SE*diff.SE, independent)
}

func TestDifferenceCorrelatedBootstrapUnsupported(t *testing.T) {
	_, err := EstimateDifference(refSurvey, refSurvey, refAssay, DifferenceOptions{
		Covar:          [2]float64{0.0002, 0.0001},
		BootstrapDraws: 1000,
		RNG:            rand.New(rand.NewSource(1)),
	})
	require.ErrorIs(t, err, ErrCapability)
	assert.Contains(t, err.Error(), "6-dimensional")
	assert.Contains(t, err.Error(), "set both covariances to zero")
}

func TestDifferenceCorrelatedDeltaStillWorks(t *testing.T) {
	// The capability boundary applies to the bootstrap only; the delta
	// method handles within-group covariances in closed form.
	res, err := EstimateDifference(refSurvey, refSurvey, refAssay, DifferenceOptions{
		Covar: [2]float64{0.0002, 0.0001},
	})
	require.NoError(t, err)
	assert.Greater(t, res.SE, 0.0)
}

func TestDifferenceBonferroni(t *testing.T) {
	plain, err := EstimateDifference(refSurvey, refSurvey, refAssay, DifferenceOptions{})
	require.NoError(t, err)

	adjusted, err := EstimateDifference(refSurvey, refSurvey, refAssay, DifferenceOptions{
		Bonferroni: 3,
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.05/3, adjusted.Alpha, 1e-12)
	assert.Less(t, adjusted.CI.Lower, plain.CI.Lower, "a corrected interval must be wider")
	assert.Greater(t, adjusted.CI.Upper, plain.CI.Upper)

	_, err = EstimateDifference(refSurvey, refSurvey, refAssay, DifferenceOptions{
		Bonferroni: 0.5,
	})
	require.ErrorIs(t, err, ErrInvalidBonferroni)
}

func TestDifferenceNegativeEstimateClamped(t *testing.T) {
	// A recency prevalence below the FRR drives the group estimate
	// negative; it must be clamped to zero before differencing.
	low := Survey{PrevH: 0.20, SEPrevH: 0.015, PrevR: 0.005, SEPrevR: 0.002}

	res, err := EstimateDifference(refSurvey, low, refAssay, DifferenceOptions{})
	require.NoError(t, err)

	assert.Zero(t, res.Incidence2)
	assert.True(t, hasWarning(res.Warnings, WarnClampedValue))
	assert.Equal(t, res.Incidence1, res.Difference)
}

func TestDifferenceBootstrapDeterministic(t *testing.T) {
	s2 := Survey{PrevH: 0.15, SEPrevH: 0.010, PrevR: 0.08, SEPrevR: 0.015}
	opts := func() DifferenceOptions {
		return DifferenceOptions{
			BootstrapDraws: 1500,
			KeepDraws:      true,
			RNG:            rand.New(rand.NewSource(77)),
		}
	}

	a, err := EstimateDifference(refSurvey, s2, refAssay, opts())
	require.NoError(t, err)
	b, err := EstimateDifference(refSurvey, s2, refAssay, opts())
	require.NoError(t, err)

	assert.Equal(t, a.Draws, b.Draws)
	assert.Equal(t, a.SE, b.SE)
	assert.Len(t, a.Draws, 1500)
}

func TestDifferenceNegativeCovarianceClamped(t *testing.T) {
	res, err := EstimateDifference(refSurvey, refSurvey, refAssay, DifferenceOptions{
		Covar: [2]float64{-1e-4, 0},
	})
	require.NoError(t, err)
	assert.True(t, hasWarning(res.Warnings, WarnClampedValue))

	baseline, err := EstimateDifference(refSurvey, refSurvey, refAssay, DifferenceOptions{})
	require.NoError(t, err)
	assert.Equal(t, baseline.SE, res.SE)
}
