// Package router configures HTTP routes for forecastd's HTTP API.
//
// forecastd exposes an HTTP server on port 8081 (configurable) that
// provides the fit/forecast boundary, scenario CRUD, an Easter-calendar
// diagnostic lookup, health checks, and Prometheus metrics. This
// package sets up the routes for that HTTP server.
//
// Routes configured:
//   - POST /v1/forecast              - fit and forecast a series
//   - POST /v1/scenarios             - create a scenario
//   - GET  /v1/scenarios             - list scenarios
//   - GET  /v1/scenarios/{id}        - fetch a scenario
//   - DELETE /v1/scenarios/{id}      - delete a scenario
//   - GET  /v1/easter/{year}         - Easter Sunday and invoice month for year
//   - GET  /healthz                  - health check (returns 200 OK)
//   - GET  /metrics                  - Prometheus metrics endpoint
//
// POST /v1/forecast accepts an inline series in its body, matching the
// core engine's unchanged wire shape. When the body omits series, the
// handler falls back to the stored baseline, optionally transformed by
// a named scenario's adjustments (scenario_id in the body), and marks the
// response stale via X-Forecastd-Stale when the baseline is older than
// staleAfter.
//
// Handlers record fit/forecast duration, the baseline age, the fitted
// Easter coefficient, the scenario count, and labeled errors via the
// *metrics.Metrics passed to SetupRoutes.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lindqvist-sales/forecastd/cmd/forecastd/metrics"
	"github.com/lindqvist-sales/forecastd/pkg/calendar"
	"github.com/lindqvist-sales/forecastd/pkg/forecast"
	"github.com/lindqvist-sales/forecastd/pkg/httpx"
	"github.com/lindqvist-sales/forecastd/pkg/scenario"
	"github.com/lindqvist-sales/forecastd/pkg/seasonal"
	"github.com/lindqvist-sales/forecastd/pkg/storage"
)

// SetupRoutes configures HTTP endpoints for forecastd. confidenceLevel is
// the band level used for every forecast request (requests carry no
// level of their own); scaleApprox is the coefficient scenario.Apply uses for
// scale/remove adjustments; staleAfter marks how old a baseline can get
// before responses built from it carry X-Forecastd-Stale. m may be nil,
// in which case no metrics are recorded.
func SetupRoutes(store storage.Store, confidenceLevel, scaleApprox float64, staleAfter time.Duration, m *metrics.Metrics, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/healthz", httpx.HealthHandler())
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("POST /v1/forecast", handleForecast(store, confidenceLevel, scaleApprox, staleAfter, m, logger))

	mux.HandleFunc("POST /v1/scenarios", handleCreateScenario(store, m, logger))
	mux.HandleFunc("GET /v1/scenarios", handleListScenarios(store, m, logger))
	mux.HandleFunc("GET /v1/scenarios/{id}", handleGetScenario(store, m, logger))
	mux.HandleFunc("DELETE /v1/scenarios/{id}", handleDeleteScenario(store, m, logger))

	mux.HandleFunc("GET /v1/easter/{year}", handleEaster())

	return mux
}

// forecastRequest is the core engine's unchanged wire shape, plus an
// optional scenario reference used only by the baseline-fallback path.
type forecastRequest struct {
	Series         []float64 `json:"series"`
	StartYear      int       `json:"start_year"`
	StartMonth     int       `json:"start_month"`
	ForecastMonths int       `json:"forecast_months"`
	UseEaster      bool      `json:"use_easter"`
	ScenarioID     string    `json:"scenario_id,omitempty"`
}

type forecastResponse struct {
	Forecast          []float64                `json:"forecast"`
	Lower             []float64                `json:"lower"`
	Upper             []float64                `json:"upper"`
	SeasonalFactors   [seasonal.Period]float64 `json:"seasonal_factors"`
	EasterCoefficient float64                  `json:"easter_coefficient"`
	ARCoefficients    []float64                `json:"ar_coefficients"`
	MACoefficients    []float64                `json:"ma_coefficients"`
	Intercept         float64                  `json:"intercept"`
}

func handleForecast(store storage.Store, confidenceLevel, scaleApprox float64, staleAfter time.Duration, m *metrics.Metrics, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req forecastRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "malformed JSON body")
			return
		}

		if req.ForecastMonths <= 0 {
			req.ForecastMonths = 12
		}

		series := req.Series
		startYear, startMonth := req.StartYear, req.StartMonth

		if len(series) == 0 {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			baseline, found, err := store.GetBaseline(ctx)
			if err != nil {
				logger.Error("failed to get baseline", "error", err)
				recordError(m, "store", "get_baseline_failed")
				httpx.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
				return
			}
			if !found {
				httpx.WriteErrorMessage(w, http.StatusNotFound, "no series in request and no baseline stored")
				return
			}

			series, startYear, startMonth = baseline.Series, baseline.StartYear, baseline.StartMonth

			if req.ScenarioID != "" {
				record, found, err := store.GetScenario(ctx, req.ScenarioID)
				if err != nil {
					logger.Error("failed to get scenario", "id", req.ScenarioID, "error", err)
					recordError(m, "store", "get_scenario_failed")
					httpx.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
					return
				}
				if !found {
					httpx.WriteErrorMessage(w, http.StatusNotFound, "scenario not found")
					return
				}

				pattern := seasonal.Factors(series)
				series, err = scenario.Apply(series, record.Adjustments, scaleApprox, pattern)
				if err != nil {
					recordError(m, "scenario", "apply_failed")
					httpx.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
					return
				}
			}

			if m != nil {
				m.SetBaselineAge(time.Since(baseline.FetchedAt).Seconds())
			}
			if time.Since(baseline.FetchedAt) > staleAfter {
				w.Header().Set("X-Forecastd-Stale", "true")
			}
		}

		var easterRegressor, futureRegressor []float64
		if req.UseEaster {
			var err error
			easterRegressor, err = calendar.Regressor(startYear, startMonth, len(series))
			if err != nil {
				httpx.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
				return
			}
			futureYear, futureMonth := addMonths(startYear, startMonth, len(series))
			futureRegressor, err = calendar.Regressor(futureYear, futureMonth, req.ForecastMonths)
			if err != nil {
				httpx.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		fitStart := time.Now()
		model, err := forecast.Fit(series, easterRegressor)
		if err != nil {
			writeForecastError(w, m, err)
			return
		}
		if m != nil {
			m.RecordFit(time.Since(fitStart).Seconds())
		}

		level := confidenceLevel
		forecastStart := time.Now()
		result, err := forecast.Forecast(model, req.ForecastMonths, futureRegressor, level)
		if err != nil {
			writeForecastError(w, m, err)
			return
		}
		if m != nil {
			m.RecordForecast(time.Since(forecastStart).Seconds())
			m.SetEasterCoefficient(result.EasterCoef)
		}

		resp := forecastResponse{
			Forecast:          result.Point,
			Lower:             result.Lower,
			Upper:             result.Upper,
			SeasonalFactors:   result.SeasonalFactors,
			EasterCoefficient: result.EasterCoef,
			ARCoefficients:    result.AR,
			MACoefficients:    result.MA,
			Intercept:         result.Intercept,
		}

		if err := httpx.WriteJSON(w, http.StatusOK, resp); err != nil {
			logger.Error("failed to write JSON response", "error", err)
		}
	}
}

// writeForecastError maps the core engine's sentinel errors to 4xx
// responses; anything unrecognized is a 500. Either way it's recorded as
// a forecast-component error.
func writeForecastError(w http.ResponseWriter, m *metrics.Metrics, err error) {
	switch {
	case errors.Is(err, forecast.ErrSeriesTooShort),
		errors.Is(err, forecast.ErrNonFiniteInput),
		errors.Is(err, forecast.ErrRegressorLengthMismatch):
		recordError(m, "forecast", "bad_request")
		httpx.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
	default:
		recordError(m, "forecast", "internal_error")
		httpx.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// recordError increments the error counter when m is non-nil.
func recordError(m *metrics.Metrics, component, reason string) {
	if m != nil {
		m.RecordError(component, reason)
	}
}

// addMonths advances (year, month) forward by n calendar months.
func addMonths(year, month, n int) (int, int) {
	total := (year*12 + (month - 1)) + n
	return total / 12, total%12 + 1
}

type createScenarioRequest struct {
	Name        string                `json:"name"`
	Adjustments []scenario.Adjustment `json:"adjustments"`
}

func handleCreateScenario(store storage.Store, m *metrics.Metrics, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createScenarioRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "malformed JSON body")
			return
		}

		record := scenario.NewRecord(req.Name, req.Adjustments)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.PutScenario(ctx, *record); err != nil {
			logger.Error("failed to put scenario", "error", err)
			recordError(m, "store", "put_scenario_failed")
			httpx.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
			return
		}

		updateScenariosTotal(ctx, store, m, logger)

		if err := httpx.WriteJSON(w, http.StatusCreated, record); err != nil {
			logger.Error("failed to write JSON response", "error", err)
		}
	}
}

// updateScenariosTotal refreshes the scenario-count gauge after a
// mutation. Counting errors are logged, not surfaced to the caller: the
// mutation itself already succeeded.
func updateScenariosTotal(ctx context.Context, store storage.Store, m *metrics.Metrics, logger *slog.Logger) {
	if m == nil {
		return
	}
	records, err := store.ListScenarios(ctx)
	if err != nil {
		logger.Error("failed to count scenarios for metrics", "error", err)
		return
	}
	m.SetScenariosTotal(len(records))
}

func handleListScenarios(store storage.Store, m *metrics.Metrics, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		records, err := store.ListScenarios(ctx)
		if err != nil {
			logger.Error("failed to list scenarios", "error", err)
			recordError(m, "store", "list_scenarios_failed")
			httpx.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if m != nil {
			m.SetScenariosTotal(len(records))
		}

		if err := httpx.WriteJSON(w, http.StatusOK, records); err != nil {
			logger.Error("failed to write JSON response", "error", err)
		}
	}
}

func handleGetScenario(store storage.Store, m *metrics.Metrics, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		record, found, err := store.GetScenario(ctx, id)
		if err != nil {
			logger.Error("failed to get scenario", "id", id, "error", err)
			recordError(m, "store", "get_scenario_failed")
			httpx.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if !found {
			httpx.WriteErrorMessage(w, http.StatusNotFound, "scenario not found")
			return
		}

		if err := httpx.WriteJSON(w, http.StatusOK, record); err != nil {
			logger.Error("failed to write JSON response", "error", err)
		}
	}
}

func handleDeleteScenario(store storage.Store, m *metrics.Metrics, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		deleted, err := store.DeleteScenario(ctx, id)
		if err != nil {
			logger.Error("failed to delete scenario", "id", id, "error", err)
			recordError(m, "store", "delete_scenario_failed")
			httpx.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if !deleted {
			httpx.WriteErrorMessage(w, http.StatusNotFound, "scenario not found")
			return
		}

		updateScenariosTotal(ctx, store, m, logger)

		w.WriteHeader(http.StatusNoContent)
	}
}

type easterResponse struct {
	Year         int `json:"year"`
	EasterMonth  int `json:"easter_month"`
	EasterDay    int `json:"easter_day"`
	InvoiceYear  int `json:"invoice_year"`
	InvoiceMonth int `json:"invoice_month"`
}

func handleEaster() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		yearStr := r.PathValue("year")
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "year must be an integer")
			return
		}

		month, day, err := calendar.EasterSunday(year)
		if err != nil {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
			return
		}

		invoiceYear, invoiceMonth, err := calendar.InvoiceMonth(year)
		if err != nil {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, err.Error())
			return
		}

		resp := easterResponse{
			Year:         year,
			EasterMonth:  month,
			EasterDay:    day,
			InvoiceYear:  invoiceYear,
			InvoiceMonth: invoiceMonth,
		}

		if err := httpx.WriteJSON(w, http.StatusOK, resp); err != nil {
			slog.Error("failed to write JSON response", "error", err)
		}
	}
}
