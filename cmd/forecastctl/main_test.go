package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/lindqvist-sales/forecastd/pkg/scenario"
)

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name                string
		year, month, n      int
		wantYear, wantMonth int
	}{
		{"same year", 2024, 1, 3, 2024, 4},
		{"wraps to next year", 2024, 11, 3, 2025, 2},
		{"spans several years", 2022, 1, 30, 2024, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotYear, gotMonth := addMonths(tt.year, tt.month, tt.n)
			if gotYear != tt.wantYear || gotMonth != tt.wantMonth {
				t.Errorf("addMonths(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.year, tt.month, tt.n, gotYear, gotMonth, tt.wantYear, tt.wantMonth)
			}
		})
	}
}

func TestRunEasterTable(t *testing.T) {
	if err := runEasterTable([]string{"2023", "2024"}); err != nil {
		t.Fatalf("runEasterTable error: %v", err)
	}
}

func TestRunEasterTable_MissingArgs(t *testing.T) {
	if err := runEasterTable([]string{"2023"}); err == nil {
		t.Fatal("expected error for missing TO year, got nil")
	}
}

func TestRunEasterTable_InvalidYear(t *testing.T) {
	if err := runEasterTable([]string{"not-a-year", "2024"}); err == nil {
		t.Fatal("expected error for invalid FROM year, got nil")
	}
}

func monthlySeries(n int, base float64) []float64 {
	series := make([]float64, n)
	for i := range series {
		series[i] = base + float64(i%12)*5
	}
	return series
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestRunForecast_BasicFile(t *testing.T) {
	dir := t.TempDir()
	baselinePath := filepath.Join(dir, "baseline.json")
	writeJSON(t, baselinePath, baselineFile{
		Series:     monthlySeries(30, 100),
		StartYear:  2022,
		StartMonth: 1,
	})

	if err := runForecast([]string{baselinePath, "--horizon", "3"}); err != nil {
		t.Fatalf("runForecast error: %v", err)
	}
}

func TestRunForecast_WithScenario(t *testing.T) {
	dir := t.TempDir()
	baselinePath := filepath.Join(dir, "baseline.json")
	writeJSON(t, baselinePath, baselineFile{
		Series:     monthlySeries(30, 100),
		StartYear:  2022,
		StartMonth: 1,
	})

	scenarioPath := filepath.Join(dir, "scenario.json")
	writeJSON(t, scenarioPath, scenarioFile{
		Name: "growth",
		Adjustments: []scenario.Adjustment{
			{Type: scenario.TypeScale, Factor: 1.15},
		},
	})

	if err := runForecast([]string{baselinePath, "--scenario", scenarioPath, "--horizon", "4"}); err != nil {
		t.Fatalf("runForecast error: %v", err)
	}
}

func TestRunForecast_MissingFile(t *testing.T) {
	if err := runForecast([]string{"/nonexistent/baseline.json"}); err == nil {
		t.Fatal("expected error for missing baseline file, got nil")
	}
}

func TestRunForecast_NoArgs(t *testing.T) {
	if err := runForecast(nil); err == nil {
		t.Fatal("expected error for missing BASELINE.json argument, got nil")
	}
}
