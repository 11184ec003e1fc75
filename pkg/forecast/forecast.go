// Package forecast composes the calendar, stats, seasonal, regression,
// and arima packages into the ARIMAX(2,1,1) pipeline: fit consumes a
// monthly series and an optional Easter indicator, producing a
// FittedModel; forecast runs the fitted model forward through a horizon,
// inverting every transform fit applied, and confidence bands the
// result.
package forecast

import (
	"errors"
	"fmt"
	"math"

	"github.com/lindqvist-sales/forecastd/pkg/arima"
	"github.com/lindqvist-sales/forecastd/pkg/regression"
	"github.com/lindqvist-sales/forecastd/pkg/seasonal"
	"github.com/lindqvist-sales/forecastd/pkg/stats"
)

// Fixed model order: AR(2), integrated order 1, MA(1), seasonal period 12.
const (
	arOrder    = 2
	diffOrder  = 1
	maOrder    = 1
	seasonalS  = seasonal.Period
	minSeriesN = arOrder + diffOrder + maOrder + seasonalS
)

var (
	ErrSeriesTooShort          = errors.New("series shorter than the model minimum")
	ErrNonFiniteInput          = errors.New("non-finite value in series or regressor")
	ErrRegressorLengthMismatch = errors.New("regressor length does not match series or horizon")
	ErrNotFitted               = errors.New("forecast or confidence called before fit")
)

// ErrHorizonMismatch is ErrRegressorLengthMismatch: the future regressor
// length not matching the forecast horizon is the same class of error as
// the fit-time regressor/series mismatch.
var ErrHorizonMismatch = ErrRegressorLengthMismatch

// FittedModel is the tuple of state produced by Fit and consumed by
// Forecast and Confidence. It carries no behavior of its own and is safe
// to pass by value between calls, but is returned as a pointer to avoid
// copying its slices.
type FittedModel struct {
	AR              []float64
	MA              []float64
	Intercept       float64
	SeasonalFactors [seasonal.Period]float64
	EasterCoef      float64
	Residuals       []float64
	Differenced     []float64
	Deseasonalized  []float64
	N               int
}

// Result is the output of Forecast: a point forecast with a symmetric
// confidence band, plus the fitted model's diagnostic scalars and
// vectors for inspection.
type Result struct {
	Point           []float64
	Lower           []float64
	Upper           []float64
	SeasonalFactors [seasonal.Period]float64
	EasterCoef      float64
	AR              []float64
	MA              []float64
	Intercept       float64
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Fit estimates a FittedModel from a monthly series. easterRegressor, if
// non-nil, must have the same length as series; its effect is regressed
// out before seasonal decomposition.
func Fit(series []float64, easterRegressor []float64) (*FittedModel, error) {
	if len(series) < minSeriesN {
		return nil, fmt.Errorf("fit: %d points, need at least %d: %w", len(series), minSeriesN, ErrSeriesTooShort)
	}
	if !allFinite(series) {
		return nil, fmt.Errorf("fit: %w", ErrNonFiniteInput)
	}
	if easterRegressor != nil {
		if len(easterRegressor) != len(series) {
			return nil, fmt.Errorf("fit: regressor length %d, series length %d: %w", len(easterRegressor), len(series), ErrRegressorLengthMismatch)
		}
		if !allFinite(easterRegressor) {
			return nil, fmt.Errorf("fit: %w", ErrNonFiniteInput)
		}
	}

	adjusted := series
	var easterCoef float64
	if easterRegressor != nil {
		adjusted, easterCoef = regression.RegressOut(series, easterRegressor)
	}

	factors := seasonal.Factors(adjusted)
	ds := seasonal.Deseasonalize(adjusted, factors)

	dd := stats.Difference(ds, diffOrder)
	intercept := stats.Mean(dd)
	dc := make([]float64, len(dd))
	for i, v := range dd {
		dc[i] = v - intercept
	}

	autocorr := stats.Autocorrelation(dc, arOrder)
	ar := arima.LevinsonDurbin(autocorr, arOrder)

	residuals := make([]float64, len(dc))
	for i := range dc {
		var pred float64
		for j := 0; j < len(ar); j++ {
			k := i - j - 1
			if k < 0 {
				continue
			}
			pred += ar[j] * dc[k]
		}
		residuals[i] = dc[i] - pred
	}

	ma := arima.FitMA(residuals, maOrder)

	return &FittedModel{
		AR:              ar,
		MA:              ma,
		Intercept:       intercept,
		SeasonalFactors: factors,
		EasterCoef:      easterCoef,
		Residuals:       residuals,
		Differenced:     dd,
		Deseasonalized:  ds,
		N:               len(series),
	}, nil
}

// Forecast runs model forward through horizon months, inverting the
// differencing and seasonal transforms fit applied, adding back the
// Easter effect where futureEasterRegressor marks an invoice month, and
// clamping every point at zero. futureEasterRegressor may be nil when
// model.EasterCoef is zero or no future indicator is available; if
// supplied, it must have length horizon.
func Forecast(model *FittedModel, horizon int, futureEasterRegressor []float64, level float64) (*Result, error) {
	if model == nil {
		return nil, ErrNotFitted
	}
	if futureEasterRegressor != nil && len(futureEasterRegressor) != horizon {
		return nil, fmt.Errorf("forecast: regressor length %d, horizon %d: %w", len(futureEasterRegressor), horizon, ErrHorizonMismatch)
	}

	futureDiffs := arima.Forecast(model.AR, model.MA, model.Intercept, model.Differenced, model.Residuals, horizon)
	futureLevels := stats.ExtendDifference(futureDiffs, model.Deseasonalized)

	phase := model.N % seasonalS
	point := seasonal.Reseasonalize(futureLevels, model.SeasonalFactors, phase)

	if model.EasterCoef != 0 && futureEasterRegressor != nil {
		for i := range point {
			point[i] += model.EasterCoef * futureEasterRegressor[i]
		}
	}

	for i := range point {
		if point[i] < 0 {
			point[i] = 0
		}
	}

	lower, upper := confidence(model, point, level)

	return &Result{
		Point:           point,
		Lower:           lower,
		Upper:           upper,
		SeasonalFactors: model.SeasonalFactors,
		EasterCoef:      model.EasterCoef,
		AR:              model.AR,
		MA:              model.MA,
		Intercept:       model.Intercept,
	}, nil
}

func zForLevel(level float64) float64 {
	switch {
	case math.Abs(level-0.80) < 1e-9:
		return 1.28
	case math.Abs(level-0.90) < 1e-9:
		return 1.645
	case math.Abs(level-0.95) < 1e-9:
		return 1.96
	case math.Abs(level-0.99) < 1e-9:
		return 2.576
	default:
		return 1.96
	}
}

// confidence computes the horizon-widening symmetric band around point.
// sigma is the root-mean-square residual from the fit; it widens by
// sqrt(1+0.1*i) per step and is scaled by the seasonal factor at each
// future month, then floored at zero on the lower side.
func confidence(model *FittedModel, point []float64, level float64) (lower, upper []float64) {
	var sumSq float64
	for _, r := range model.Residuals {
		sumSq += r * r
	}
	sigma := 0.0
	if len(model.Residuals) > 0 {
		sigma = math.Sqrt(sumSq / float64(len(model.Residuals)))
	}

	z := zForLevel(level)
	lower = make([]float64, len(point))
	upper = make([]float64, len(point))
	for i := range point {
		sigmaH := sigma * math.Sqrt(1+0.1*float64(i))
		scale := model.SeasonalFactors[(model.N+i)%seasonalS]
		delta := z * sigmaH * scale

		lower[i] = point[i] - delta
		if lower[i] < 0 {
			lower[i] = 0
		}
		upper[i] = point[i] + delta
	}
	return lower, upper
}
