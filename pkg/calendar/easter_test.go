package calendar

import (
	"errors"
	"testing"
)

func TestEasterSunday(t *testing.T) {
	tests := []struct {
		year      int
		wantMonth int
		wantDay   int
	}{
		{2024, 3, 31},
		{2025, 4, 20},
		{2026, 4, 5},
		{2027, 3, 28},
	}

	for _, tt := range tests {
		month, day, err := EasterSunday(tt.year)
		if err != nil {
			t.Fatalf("EasterSunday(%d): unexpected error: %v", tt.year, err)
		}
		if month != tt.wantMonth || day != tt.wantDay {
			t.Errorf("EasterSunday(%d) = (%d,%d), want (%d,%d)", tt.year, month, day, tt.wantMonth, tt.wantDay)
		}
	}
}

func TestEasterSunday_OutOfRange(t *testing.T) {
	for _, year := range []int{1582, 4100} {
		if _, _, err := EasterSunday(year); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("EasterSunday(%d): want ErrOutOfRange, got %v", year, err)
		}
	}
}

func TestInvoiceMonth(t *testing.T) {
	tests := []struct {
		year          int
		wantYear      int
		wantMonth     int
	}{
		{2024, 2023, 12},
		{2025, 2025, 1},
		{2026, 2026, 1},
		{2027, 2026, 12},
	}

	for _, tt := range tests {
		y, m, err := InvoiceMonth(tt.year)
		if err != nil {
			t.Fatalf("InvoiceMonth(%d): unexpected error: %v", tt.year, err)
		}
		if y != tt.wantYear || m != tt.wantMonth {
			t.Errorf("InvoiceMonth(%d) = (%d,%d), want (%d,%d)", tt.year, y, m, tt.wantYear, tt.wantMonth)
		}
	}
}

func TestRegressor_AtMostOnePerYear(t *testing.T) {
	vec, err := Regressor(2020, 1, 120)
	if err != nil {
		t.Fatalf("Regressor: unexpected error: %v", err)
	}
	if len(vec) != 120 {
		t.Fatalf("Regressor: want length 120, got %d", len(vec))
	}

	for start := 0; start+12 <= len(vec); start++ {
		count := 0
		for _, v := range vec[start : start+12] {
			if v == 1 {
				count++
			}
		}
		if count > 1 {
			t.Errorf("window [%d:%d): found %d invoice months, want at most 1", start, start+12, count)
		}
	}
}

func TestRegressor_MatchesInvoiceMonth(t *testing.T) {
	vec, err := Regressor(2025, 1, 12)
	if err != nil {
		t.Fatalf("Regressor: unexpected error: %v", err)
	}
	// InvoiceMonth(2025) = (2025, 1), so index 0 (Jan 2025) should be marked.
	if vec[0] != 1 {
		t.Errorf("Regressor(2025,1,12)[0] = %v, want 1", vec[0])
	}
	for i := 1; i < 12; i++ {
		if vec[i] != 0 {
			t.Errorf("Regressor(2025,1,12)[%d] = %v, want 0", i, vec[i])
		}
	}
}

func TestRegressor_OutOfRange(t *testing.T) {
	if _, err := Regressor(4100, 1, 12); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Regressor(4100,...): want ErrOutOfRange, got %v", err)
	}
}
