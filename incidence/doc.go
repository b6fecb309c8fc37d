// Package incidence estimates disease incidence from cross-sectional
// biomarker survey data.
//
// The estimator is the Kassanjee ratio: with prevalence p, recency
// prevalence r, mean duration of recent infection m (in years), false-recent
// rate f, and recency cut-off T,
//
//	incidence = p·(r − f) / ((1 − p)·(m − f·T))
//
// per person-year. Two variance modes are available and yield the same point
// estimate:
//
//   - Delta method: first-order Taylor combination of the four input
//     variances, with an optional covariance term between the two
//     prevalence estimates.
//   - Bootstrap: the four parameters are redrawn jointly from truncated
//     normals (see package truncnorm), the estimator is applied to every
//     draw, and the standard error, the quantile confidence interval, and
//     the prevalence-incidence correlation are read off the resulting
//     series. EstimateFromCounts instead resamples the two prevalences from
//     Binomial distributions parameterized by the raw survey counts.
//
// EstimateDifference compares two surveys that share a recency assay. The
// MDRI and FRR are common to both groups, so their uncertainty enters
// through the difference of the two groups' sensitivities. Correlated
// bootstrap comparison is not available: the joint parameter vector is
// 6-dimensional, beyond the rejection sampler's capability, and the call
// fails with ErrCapability rather than degrading silently.
//
// Recovered conditions (zero standard errors, negative covariances, negative
// point estimates) never pass silently: each is reported as a Warning on the
// result.
package incidence
