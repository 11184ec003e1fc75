// Command forecastctl is an operator tool for calibrating and
// exercising the forecasting pipeline from the command line, without
// going through the HTTP service.
//
// Usage:
//
//	forecastctl easter-table FROM TO
//	forecastctl forecast BASELINE.json [--scenario SCENARIO.json] [--horizon N] [--easter] [--confidence LEVEL]
//
// easter-table prints Easter Sunday and the derived invoice month for
// every year in [FROM, TO].
//
// forecast loads a baseline series from BASELINE.json (and an optional
// scenario file), runs the fit/forecast/confidence pipeline, and prints
// a table of point/lower/upper values plus the fitted model's
// diagnostics.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/lindqvist-sales/forecastd/pkg/calendar"
	"github.com/lindqvist-sales/forecastd/pkg/forecast"
	"github.com/lindqvist-sales/forecastd/pkg/scenario"
	"github.com/lindqvist-sales/forecastd/pkg/seasonal"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "easter-table":
		err = runEasterTable(os.Args[2:])
	case "forecast":
		err = runForecast(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "forecastctl:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: forecastctl easter-table FROM TO")
	fmt.Fprintln(os.Stderr, "       forecastctl forecast BASELINE.json [--scenario SCENARIO.json] [--horizon N] [--easter] [--confidence LEVEL]")
}

func runEasterTable(args []string) error {
	fs := flag.NewFlagSet("easter-table", flag.ExitOnError)
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) != 2 {
		return fmt.Errorf("easter-table requires FROM and TO years")
	}

	var from, to int
	if _, err := fmt.Sscanf(rest[0], "%d", &from); err != nil {
		return fmt.Errorf("invalid FROM year %q: %w", rest[0], err)
	}
	if _, err := fmt.Sscanf(rest[1], "%d", &to); err != nil {
		return fmt.Errorf("invalid TO year %q: %w", rest[1], err)
	}

	fmt.Printf("%-6s %-14s %-18s\n", "year", "easter", "invoice month")
	for year := from; year <= to; year++ {
		month, day, err := calendar.EasterSunday(year)
		if err != nil {
			return err
		}
		invoiceYear, invoiceMonth, err := calendar.InvoiceMonth(year)
		if err != nil {
			return err
		}
		fmt.Printf("%-6d %04d-%02d-%02d     %04d-%02d\n", year, year, month, day, invoiceYear, invoiceMonth)
	}
	return nil
}

// baselineFile is the on-disk shape forecastctl reads for BASELINE.json.
type baselineFile struct {
	Series     []float64 `json:"series"`
	StartYear  int       `json:"start_year"`
	StartMonth int       `json:"start_month"`
}

// scenarioFile is the on-disk shape forecastctl reads for SCENARIO.json.
type scenarioFile struct {
	Name        string                `json:"name"`
	Adjustments []scenario.Adjustment `json:"adjustments"`
}

func runForecast(args []string) error {
	fs := flag.NewFlagSet("forecast", flag.ExitOnError)
	scenarioPath := fs.String("scenario", "", "optional scenario JSON file")
	horizon := fs.Int("horizon", 12, "number of months to forecast")
	useEaster := fs.Bool("easter", false, "regress out the Easter invoice-month effect")
	confidence := fs.Float64("confidence", 0.80, "confidence level for the forecast band")
	fs.Parse(args)

	// Flag parsing stops at the first positional argument; parse again
	// after it so flags may follow BASELINE.json as in the usage line.
	rest := fs.Args()
	if len(rest) > 0 {
		fs.Parse(rest[1:])
		rest = append([]string{rest[0]}, fs.Args()...)
	}
	if len(rest) != 1 {
		return fmt.Errorf("forecast requires a BASELINE.json path")
	}

	raw, err := os.ReadFile(rest[0])
	if err != nil {
		return fmt.Errorf("read baseline file: %w", err)
	}

	var baseline baselineFile
	if err := json.Unmarshal(raw, &baseline); err != nil {
		return fmt.Errorf("parse baseline file: %w", err)
	}

	series := baseline.Series

	if *scenarioPath != "" {
		raw, err := os.ReadFile(*scenarioPath)
		if err != nil {
			return fmt.Errorf("read scenario file: %w", err)
		}
		var sc scenarioFile
		if err := json.Unmarshal(raw, &sc); err != nil {
			return fmt.Errorf("parse scenario file: %w", err)
		}

		pattern := seasonal.Factors(series)
		series, err = scenario.Apply(series, sc.Adjustments, scenario.DefaultScaleApprox, pattern)
		if err != nil {
			return fmt.Errorf("apply scenario: %w", err)
		}
	}

	var easterRegressor, futureRegressor []float64
	if *useEaster {
		easterRegressor, err = calendar.Regressor(baseline.StartYear, baseline.StartMonth, len(series))
		if err != nil {
			return fmt.Errorf("build easter regressor: %w", err)
		}
		futureYear, futureMonth := addMonths(baseline.StartYear, baseline.StartMonth, len(series))
		futureRegressor, err = calendar.Regressor(futureYear, futureMonth, *horizon)
		if err != nil {
			return fmt.Errorf("build future easter regressor: %w", err)
		}
	}

	model, err := forecast.Fit(series, easterRegressor)
	if err != nil {
		return fmt.Errorf("fit: %w", err)
	}

	result, err := forecast.Forecast(model, *horizon, futureRegressor, *confidence)
	if err != nil {
		return fmt.Errorf("forecast: %w", err)
	}

	fmt.Printf("%-6s %12s %12s %12s\n", "month", "point", "lower", "upper")
	year, month := addMonths(baseline.StartYear, baseline.StartMonth, len(series))
	for i := range result.Point {
		fmt.Printf("%04d-%02d %12.2f %12.2f %12.2f\n", year, month, result.Point[i], result.Lower[i], result.Upper[i])
		month++
		if month > 12 {
			month = 1
			year++
		}
	}

	fmt.Println()
	fmt.Printf("ar=%v ma=%v intercept=%.4f easter_coefficient=%.4f\n", result.AR, result.MA, result.Intercept, result.EasterCoef)

	return nil
}

// addMonths advances (year, month) forward by n calendar months.
func addMonths(year, month, n int) (int, int) {
	total := (year*12 + (month - 1)) + n
	return total / 12, total%12 + 1
}
