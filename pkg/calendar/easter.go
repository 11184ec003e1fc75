// Package calendar computes Gregorian Easter Sunday and derives the monthly
// invoice indicator used to regress out the pre-Easter order spike in the
// forecasting pipeline.
package calendar

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when a year falls outside the validity window of
// the Anonymous Gregorian computus implemented here.
var ErrOutOfRange = errors.New("year out of range for easter computus")

const (
	minComputusYear = 1583
	maxComputusYear = 4099
)

// EasterSunday computes the Gregorian date of Easter Sunday for year using
// the Anonymous Gregorian algorithm (the "computus"). It returns the month
// (1-12) and day of month.
func EasterSunday(year int) (month, day int, err error) {
	if year < minComputusYear || year > maxComputusYear {
		return 0, 0, fmt.Errorf("easter sunday %d: %w", year, ErrOutOfRange)
	}

	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month = (h + l - 7*m + 114) / 31
	day = ((h + l - 7*m + 114) % 31) + 1

	return month, day, nil
}

// InvoiceMonth returns the calendar year and month three months before
// Easter Sunday of the given year, i.e. the month in which pre-holiday
// orders are typically booked. It carries across a year boundary when
// Easter falls in January, February, or March.
func InvoiceMonth(year int) (invoiceYear, invoiceMonth int, err error) {
	easterMonth, _, err := EasterSunday(year)
	if err != nil {
		return 0, 0, err
	}

	invoiceMonth = easterMonth - 3
	invoiceYear = year
	if invoiceMonth <= 0 {
		invoiceMonth += 12
		invoiceYear--
	}
	return invoiceYear, invoiceMonth, nil
}

// Regressor builds a binary indicator of length months, aligned to a window
// that starts at (startYear, startMonth) and advances one calendar month per
// entry. Entry i is 1 exactly when month i of the window is an Easter
// invoice month.
//
// The computus validity window bounds which years can be queried; Regressor
// fails with ErrOutOfRange if any year touched by the window falls outside
// [1583, 4099].
func Regressor(startYear, startMonth, months int) ([]float64, error) {
	if months <= 0 {
		return []float64{}, nil
	}

	endYear := startYear + (startMonth-1+months-1)/12
	if startYear < minComputusYear || endYear > maxComputusYear {
		return nil, fmt.Errorf("easter regressor %d-%d: %w", startYear, endYear, ErrOutOfRange)
	}

	// An invoice month derived from Easter(y) can fall in the previous
	// calendar year, so one year before the window's start through one
	// after its end must all be considered. That padding may itself sit
	// outside the computus validity window; skip it rather than fail,
	// since the window's own years have already been validated above.
	invoiceSet := make(map[[2]int]bool, endYear-startYear+3)
	for y := startYear - 1; y <= endYear+1; y++ {
		iy, im, err := InvoiceMonth(y)
		if err != nil {
			continue
		}
		invoiceSet[[2]int{iy, im}] = true
	}

	out := make([]float64, months)
	year, month := startYear, startMonth
	for i := 0; i < months; i++ {
		if invoiceSet[[2]int{year, month}] {
			out[i] = 1
		}
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return out, nil
}
