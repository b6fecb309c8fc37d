// Package truncnorm samples from boundary-truncated multivariate normal
// distributions.
//
// Two algorithms are provided behind a single entry point:
//
//   - Independent sampling: when the covariance matrix is diagonal (every
//     off-diagonal entry within DiagonalTol of zero) each dimension is drawn
//     from its own univariate truncated normal via the inverse-CDF
//     transform. No draw is ever rejected, the cost is O(n·d), and any
//     dimension d >= 1 is supported.
//
//   - Rejection sampling: for a full covariance matrix, draws from the
//     untruncated normal are filtered to the truncation box. A pilot batch
//     estimates the acceptance rate, which sizes the follow-up batches. This
//     path is restricted to RejectionDim dimensions; when the box carries
//     near-zero probability mass the top-up loop becomes a performance
//     cliff, so an optional round limit is available.
//
// Sample routes between the two per the requested Method; MethodAuto picks
// the independent path whenever the covariance matrix classifies as
// diagonal. All randomness comes from the generator passed into each call,
// so the same seed reproduces the same sample matrix exactly.
package truncnorm
