// Package regression estimates and removes the additive effect of a
// sparse binary exogenous indicator (the Easter invoice-month flag) by
// mean-difference — numerically stable for sparse regressors and
// equivalent to ordinary least squares in that case, avoiding the
// confounding that OLS-inside-ARIMAX suffers when convolved with
// differencing.
package regression

// RegressOut partitions x by the binary indicator g (g[i] > 0.5 selects
// the "affected" group A, the rest form B), estimates the additive
// effect as coef = mean(A) - mean(B), and subtracts it from the affected
// entries. If either group is empty, coef is 0 and x is returned
// unchanged.
//
// len(g) must equal len(x); callers are responsible for that invariant.
func RegressOut(x []float64, g []float64) (adjusted []float64, coef float64) {
	var sumA, sumB float64
	var nA, nB int
	for i, v := range x {
		if g[i] > 0.5 {
			sumA += v
			nA++
		} else {
			sumB += v
			nB++
		}
	}

	if nA > 0 && nB > 0 {
		coef = sumA/float64(nA) - sumB/float64(nB)
	}

	adjusted = make([]float64, len(x))
	for i, v := range x {
		if g[i] > 0.5 {
			adjusted[i] = v - coef
		} else {
			adjusted[i] = v
		}
	}
	return adjusted, coef
}
