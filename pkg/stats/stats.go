// Package stats implements the small numeric kernel the forecasting
// pipeline is built on: means, autocorrelation, and integer-order
// differencing. Each function owns no state and does not modify its
// inputs.
package stats

import "math"

// Mean returns the arithmetic mean of x, or 0 for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// Variance returns the mean squared deviation from mean(x), or 0 for an
// empty slice.
func Variance(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	m := Mean(x)
	var sum float64
	for _, v := range x {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(x))
}

// Autocorrelation returns r[0..maxLag], the centered autocorrelation
// sequence of x up to maxLag.
//
// The series is centered by its own mean; when the resulting variance is
// below 1e-10 (a constant or near-constant series), the degenerate sequence
// [1, 0, 0, ...] is returned rather than dividing by a near-zero variance.
//
// Each r[k] divides by n*variance, not (n-k)*variance: this biased form is
// deliberate and must not be "corrected" to the unbiased estimator — it is
// pinned by the forecasting fixtures this package feeds.
func Autocorrelation(x []float64, maxLag int) []float64 {
	r := make([]float64, maxLag+1)
	r[0] = 1

	n := len(x)
	if n == 0 {
		return r
	}

	m := Mean(x)
	centered := make([]float64, n)
	for i, v := range x {
		centered[i] = v - m
	}

	variance := Variance(x)
	if variance < 1e-10 {
		return r
	}

	denom := float64(n) * variance
	for k := 1; k <= maxLag; k++ {
		var sum float64
		for i := k; i < n; i++ {
			sum += centered[i] * centered[i-k]
		}
		r[k] = sum / denom
	}
	return r
}

// Difference applies the first-difference operator d times. Each pass
// shortens the series by one element. Differencing an empty or
// already-exhausted series returns an empty slice.
func Difference(x []float64, d int) []float64 {
	cur := x
	for pass := 0; pass < d; pass++ {
		if len(cur) < 2 {
			return []float64{}
		}
		next := make([]float64, len(cur)-1)
		for i := 1; i < len(cur); i++ {
			next[i-1] = cur[i] - cur[i-1]
		}
		cur = next
	}
	out := make([]float64, len(cur))
	copy(out, cur)
	return out
}

// InverseDifference reconstructs a length len(dx)+d sequence from a
// d-times-differenced series dx, seeded from the leading values of the
// original (pre-differencing) series original.
//
// Pass p (0-indexed, 0..d-1) undoes one order of differencing by prefixing
// the first element of the (d-1-p)-times-differenced original series and
// taking a cumulative sum; this is the same order Difference applied the
// passes, run in reverse. When original carries the true pre-differencing
// values (as in the round-trip invariant difference/InverseDifference is
// required to satisfy), the result reproduces original exactly from index d
// onward.
func InverseDifference(dx []float64, original []float64, d int) []float64 {
	cur := make([]float64, len(dx))
	copy(cur, dx)

	for pass := 0; pass < d; pass++ {
		level := Difference(original, d-1-pass)
		var seed float64
		if len(level) > 0 {
			seed = level[0]
		}

		next := make([]float64, len(cur)+1)
		next[0] = seed
		for i, v := range cur {
			next[i+1] = next[i] + v
		}
		cur = next
	}
	return cur
}

// ExtendDifference extends a series forward by applying d future
// differenced values on top of the tail of an already-undifferenced
// series. Unlike InverseDifference (which reconstructs an existing
// series from its leading values), ExtendDifference anchors on the
// trailing value of tail and walks forward — the operation the forecast
// pipeline needs to turn future ARMA predictions in differenced space
// back into levels continuing on from history.
//
// It returns exactly len(futureDx) new values; tail is not itself part
// of the returned slice.
func ExtendDifference(futureDx []float64, tail []float64) []float64 {
	out := make([]float64, len(futureDx))
	level := 0.0
	if len(tail) > 0 {
		level = tail[len(tail)-1]
	}
	for i, d := range futureDx {
		level += d
		out[i] = level
	}
	return out
}

// WeightedAverage returns the weighted mean of values weighted by weights
// element-wise. It returns 0 if the slices are empty, of mismatched length,
// or the weights sum to (near) zero.
func WeightedAverage(values, weights []float64) float64 {
	if len(values) == 0 || len(values) != len(weights) {
		return 0
	}
	var num, den float64
	for i, v := range values {
		num += v * weights[i]
		den += weights[i]
	}
	if math.Abs(den) < 1e-10 {
		return 0
	}
	return num / den
}
