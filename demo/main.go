// Package main demonstrates incidence estimation from biomarker survey data.
package main

import (
	"fmt"
	"strings"

	"golang.org/x/exp/rand"

	"github.com/sartorproj/goincidence/incidence"
)

func main() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("GoIncidence Demonstration - Kassanjee Ratio Estimation")
	fmt.Println(strings.Repeat("=", 80))

	// A hypothetical cross-sectional survey: 20% prevalence, 10% of the
	// infected classified recent, with a 130-day MDRI assay calibrated at
	// a 1% false-recent rate and a 730.5-day recency cut-off.
	survey := incidence.Survey{PrevH: 0.20, SEPrevH: 0.015, PrevR: 0.10, SEPrevR: 0.02}
	assay := incidence.Assay{MDRI: 130, SEMDRI: 15, FRR: 0.01, SEFRR: 0.005}

	rng := rand.New(rand.NewSource(2026))

	fmt.Println("\n--- Single survey, delta-method variance ---")
	delta, err := incidence.Estimate(survey, assay, incidence.Options{})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	printResult(delta)

	fmt.Println("\n--- Single survey, bootstrap variance (10,000 draws) ---")
	boot, err := incidence.Estimate(survey, assay, incidence.Options{
		BootstrapDraws: 10000,
		RNG:            rng,
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	printResult(boot)
	fmt.Printf("  Corr(prevalence, incidence): %.3f\n", boot.CorrPrevIncidence)

	fmt.Println("\n--- Single survey, correlated prevalence estimates ---")
	corr, err := incidence.Estimate(survey, assay, incidence.Options{
		Covar:          2e-4,
		BootstrapDraws: 10000,
		RNG:            rng,
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	printResult(corr)

	fmt.Println("\n--- Bootstrap from raw counts ---")
	counts := incidence.Counts{NTested: 5000, NPos: 1000, NTestedR: 1000, NRecent: 100}
	fromCounts, err := incidence.EstimateFromCounts(counts, assay, incidence.Options{RNG: rng})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	printResult(fromCounts)

	fmt.Println("\n--- Two-survey difference, shared assay ---")
	survey2 := incidence.Survey{PrevH: 0.15, SEPrevH: 0.012, PrevR: 0.08, SEPrevR: 0.018}
	diff, err := incidence.EstimateDifference(survey, survey2, assay, incidence.DifferenceOptions{
		BootstrapDraws: 10000,
		RNG:            rng,
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("  Incidence 1:  %.4f per person-year\n", diff.Incidence1)
	fmt.Printf("  Incidence 2:  %.4f per person-year\n", diff.Incidence2)
	fmt.Printf("  Difference:   %.4f  (95%% CI %.4f to %.4f)\n", diff.Difference, diff.CI.Lower, diff.CI.Upper)
	fmt.Printf("  Std. error:   %.4f\n", diff.SE)
	fmt.Printf("  P-value:      %.4f\n", diff.PValue)
	for _, w := range diff.Warnings {
		fmt.Println("  warning:", w)
	}
}

func printResult(r *incidence.Result) {
	fmt.Printf("  Incidence:    %.4f per person-year\n", r.Incidence)
	fmt.Printf("  95%% CI:       %.4f to %.4f\n", r.CI.Lower, r.CI.Upper)
	fmt.Printf("  Std. error:   %.4f  (RSE %.1f%%)\n", r.SE, 100*r.RSE)
	fmt.Printf("  RSE at infinite survey size: %.1f%%\n", 100*r.RSEInfSS)
	for _, w := range r.Warnings {
		fmt.Println("  warning:", w)
	}
}
