// Package goincidence provides incidence estimation from cross-sectional
// biomarker surveys.
//
// GoIncidence implements the Kassanjee ratio estimator, which combines a
// survey's prevalence and recency-test prevalence with the recency assay's
// calibration constants (mean duration of recent infection and false-recent
// rate) into an instantaneous incidence estimate, together with two
// interchangeable uncertainty methods: an analytic delta-method variance and
// a Monte Carlo bootstrap over truncated normal parameter draws.
//
// # Features
//
//   - Kassanjee ratio point estimates with delta-method or bootstrap
//     confidence intervals
//   - Truncated multivariate normal sampling with automatic selection
//     between independent inverse-CDF sampling and rejection sampling
//   - Two-survey incidence differences with shared assay calibration and a
//     two-sided hypothesis test
//   - Bootstrap from raw survey counts via Binomial resampling
//   - Fully deterministic runs given a seeded generator
//
// # Quick Start
//
// Estimate incidence with a bootstrap confidence interval:
//
//	survey := incidence.Survey{PrevH: 0.20, SEPrevH: 0.015, PrevR: 0.10, SEPrevR: 0.02}
//	assay := incidence.Assay{MDRI: 130, SEMDRI: 15, FRR: 0.01, SEFRR: 0.005}
//	res, _ := incidence.Estimate(survey, assay, incidence.Options{BootstrapDraws: 10000})
//
// Compare two surveys sharing the same assay:
//
//	diff, _ := incidence.EstimateDifference(survey1, survey2, assay, incidence.DifferenceOptions{})
//
// # Packages
//
// The library is organized into the following packages:
//
//   - incidence: ratio estimation, bootstrap uncertainty, survey differences
//   - truncnorm: truncated multivariate normal sampling
//
// # References
//
//   - Kassanjee, R., McWalter, T.A., Bärnighausen, T., & Welte, A. (2012).
//     A new general biomarker-based incidence estimator. Epidemiology 23(5)
//   - UNAIDS/WHO Working Group on Global HIV/AIDS and STI Surveillance (2011).
//     When and how to use assays for recent infection to estimate HIV incidence
package goincidence
