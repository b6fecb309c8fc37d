package truncnorm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestUnivariateBoundsContainment(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name         string
		mu, sigma    float64
		lower, upper float64
	}{
		{"interior box", 0.5, 0.2, 0.0, 1.0},
		{"box in far tail", 0.0, 1.0, 3.0, 4.0},
		{"tight box", 10.0, 5.0, 9.9, 10.1},
		{"lower open", 2.0, 1.0, math.Inf(-1), 2.5},
		{"upper open", 2.0, 1.0, 1.5, math.Inf(1)},
		{"unbounded", 0.0, 1.0, math.Inf(-1), math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xs, err := Univariate(rng, 2000, tt.mu, tt.sigma, tt.lower, tt.upper)
			require.NoError(t, err)
			require.Len(t, xs, 2000)
			for _, x := range xs {
				if x < tt.lower || x > tt.upper {
					t.Fatalf("draw %g outside [%g, %g]", x, tt.lower, tt.upper)
				}
			}
		})
	}
}

func TestUnivariateInvalidArguments(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name         string
		n            int
		sigma        float64
		lower, upper float64
	}{
		{"zero sigma", 10, 0, 0, 1},
		{"negative sigma", 10, -0.5, 0, 1},
		{"inverted bounds", 10, 1, 2, 1},
		{"negative count", -1, 1, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Univariate(rng, tt.n, 0, tt.sigma, tt.lower, tt.upper)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestUnivariateZeroCount(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	xs, err := Univariate(rng, 0, 0, 1, -1, 1)
	require.NoError(t, err)
	assert.Empty(t, xs)
}

func TestUnivariateDeterministic(t *testing.T) {
	a, err := Univariate(rand.New(rand.NewSource(42)), 100, 0.2, 0.05, 0, 1)
	require.NoError(t, err)
	b, err := Univariate(rand.New(rand.NewSource(42)), 100, 0.2, 0.05, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, a, b, "same seed must reproduce the same draws")
}

func TestUnivariateMoments(t *testing.T) {
	// With bounds far away from the mean, truncation is negligible and the
	// empirical moments should match the untruncated normal.
	rng := rand.New(rand.NewSource(7))
	xs, err := Univariate(rng, 20000, 5.0, 0.5, 0.0, 10.0)
	require.NoError(t, err)

	mean, sd := meanStdDev(xs)
	assert.InDelta(t, 5.0, mean, 0.02)
	assert.InDelta(t, 0.5, sd, 0.02)
}

func meanStdDev(xs []float64) (mean, sd float64) {
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	for _, x := range xs {
		d := x - mean
		sd += d * d
	}
	sd = math.Sqrt(sd / float64(len(xs)-1))
	return mean, sd
}
