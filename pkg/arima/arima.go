// Package arima implements the AR solver, MA estimator, and forecast
// generator of the ARIMAX(2,1,1) pipeline: Levinson-Durbin recursion on
// the autocorrelation sequence, a moment-matching MA estimator, and the
// conditional-expectation ARMA recursion run forward through a horizon.
package arima

import "github.com/lindqvist-sales/forecastd/pkg/stats"

// LevinsonDurbin solves the Yule-Walker equations for AR coefficients of
// order p given the autocorrelation sequence r[0..p] (r[0] must be 1).
//
// p=0 returns an empty vector. The recursion breaks early and returns φ
// in its current, partially-updated state when the prediction-error
// variance v drops below 1e-10 — it does not error and does not re-zero
// the coefficients the recursion has already written. φ_prev is copied
// before φ[i] is computed, since the symmetric update of φ[j] below
// references the unaltered previous-order coefficients.
func LevinsonDurbin(r []float64, p int) []float64 {
	if p == 0 {
		return []float64{}
	}

	phi := make([]float64, p)
	phi[0] = r[1]
	v := 1 - phi[0]*phi[0]
	if v < 1e-10 {
		return phi
	}

	for i := 1; i < p; i++ {
		phiPrev := make([]float64, p)
		copy(phiPrev, phi)

		var num float64 = r[i+1]
		for j := 0; j < i; j++ {
			num -= phiPrev[j] * r[i-j]
		}
		phi[i] = num / v

		for j := 0; j < i; j++ {
			phi[j] = phiPrev[j] - phi[i]*phiPrev[i-1-j]
		}

		v = v * (1 - phi[i]*phi[i])
		if v < 1e-10 {
			break
		}
	}
	return phi
}

// FitMA estimates q MA coefficients from the autocorrelation of the AR
// residuals by the moment-matching shortcut ma[k-1] = 0.5 * ρ[k]. This is
// not MLE; it trades accuracy for stability and is the specified
// behavior, unclipped.
func FitMA(residuals []float64, q int) []float64 {
	if q == 0 {
		return []float64{}
	}
	rho := stats.Autocorrelation(residuals, q)
	ma := make([]float64, q)
	for k := 1; k <= q; k++ {
		ma[k-1] = 0.5 * rho[k]
	}
	return ma
}

// Forecast runs the ARMA recursion forward through horizon steps in the
// centered, differenced space, assuming zero future innovations (a
// conditional-expectation point forecast). differenced and residuals are
// the fit-time series; neither is mutated. It returns exactly horizon
// new values — the extension past the end of differenced, not the
// differenced series itself.
func Forecast(ar, ma []float64, intercept float64, differenced, residuals []float64, horizon int) []float64 {
	extended := make([]float64, len(differenced))
	copy(extended, differenced)
	resid := make([]float64, len(residuals))
	copy(resid, residuals)

	for step := 0; step < horizon; step++ {
		pred := intercept
		for i := 0; i < len(ar); i++ {
			idx := len(extended) - 1 - i
			if idx < 0 {
				continue
			}
			pred += ar[i] * (extended[idx] - intercept)
		}
		for i := 0; i < len(ma); i++ {
			idx := len(resid) - 1 - i
			if idx < 0 {
				continue
			}
			pred += ma[i] * resid[idx]
		}
		extended = append(extended, pred)
		resid = append(resid, 0)
	}

	return extended[len(extended)-horizon:]
}
