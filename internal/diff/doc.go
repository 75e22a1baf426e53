// Package diff infers traded volume from successive order-book snapshots.
//
// Trade execution is never observed directly: the upstream API exposes only
// full order-book dumps. Diffing two generations of the same (type, side)
// book yields two kinds of evidence:
//
//   - a still-present order whose remaining volume shrank is a confirmed
//     trade of that magnitude at its previous price;
//   - a disappeared order may have been filled, cancelled, or expired. If
//     its natural expiry falls inside the observation interval (padded by a
//     jitter window) the disappearance is attributed to expiry and ignored;
//     otherwise its full remaining volume is counted, but only toward the
//     generous upper-bound bucket.
//
// The result is a deliberate interval estimate: confirmed trades feed both
// the lower-bound and upper-bound aggregates, unexplained disappearances
// feed the upper bound only.
package diff
