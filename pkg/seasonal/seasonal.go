// Package seasonal implements multiplicative seasonal decomposition with a
// fixed period of twelve (the monthly calendar): computing per-month
// factors from positive observations, removing them to produce a
// deseasonalized series, and restoring them with an optional phase offset.
package seasonal

const Period = 12

// Factors returns twelve multiplicative seasonal factors for x, one per
// calendar month (index i corresponds to x[j] for every j ≡ i mod 12).
//
// The overall mean and each month's mean are computed from positive
// entries only — zero and negative values are treated as "no data" and
// excluded from both accumulators, per the asymmetry this series'
// business semantics requires (zero means missing, not "no sales").
// A month with no positive observations defaults to a factor of 1.0.
func Factors(x []float64) [Period]float64 {
	var sums [Period]float64
	var counts [Period]int
	var overallSum float64
	var overallCount int

	for i, v := range x {
		if v <= 0 {
			continue
		}
		m := i % Period
		sums[m] += v
		counts[m]++
		overallSum += v
		overallCount++
	}

	var f [Period]float64
	if overallCount == 0 {
		for m := range f {
			f[m] = 1.0
		}
		return f
	}
	overall := overallSum / float64(overallCount)

	for m := 0; m < Period; m++ {
		if counts[m] > 0 {
			f[m] = (sums[m] / float64(counts[m])) / overall
		} else {
			f[m] = 1.0
		}
	}
	return f
}

// Deseasonalize divides each entry of x by its month's factor. An entry
// whose factor is non-positive passes through unchanged rather than
// dividing by it.
func Deseasonalize(x []float64, f [Period]float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		factor := f[i%Period]
		if factor <= 0 {
			out[i] = v
			continue
		}
		out[i] = v / factor
	}
	return out
}

// Reseasonalize multiplies each entry of x by the factor for month
// (phase+i) mod 12, restoring seasonality removed by Deseasonalize at a
// chosen phase offset (typically N mod 12, so the first forecast month
// lines up with the calendar month following the fitted series).
func Reseasonalize(x []float64, f [Period]float64, phase int) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		m := ((phase + i) % Period + Period) % Period
		out[i] = v * f[m]
	}
	return out
}
