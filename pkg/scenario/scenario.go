// Package scenario applies a user-authored list of typed adjustments
// (scale, remove, new-business ramp) to a baseline monthly series before
// it reaches the forecasting pipeline. Each adjustment is a pure
// series-to-series transform; a scenario's adjustments compose as a left
// fold in list order.
package scenario

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lindqvist-sales/forecastd/pkg/seasonal"
)

// ErrInvalidAdjustment covers an unknown adjustment kind, a negative
// scale factor, a non-positive annual target, or a malformed start
// month.
var ErrInvalidAdjustment = errors.New("invalid adjustment")

// Type identifies an adjustment variant, matching the wire encoding.
type Type string

const (
	TypeScale       Type = "scale"
	TypeRemove      Type = "remove"
	TypeNewBusiness Type = "new_business"
)

// Adjustment is one step in a scenario's ordered transform list. Only
// the fields relevant to Type are meaningful; the rest are left zero.
type Adjustment struct {
	Type Type   `json:"type"`
	Note string `json:"note,omitempty"`

	// Scale / Remove
	TargetType string  `json:"target_type,omitempty"`
	TargetKey  string  `json:"target_key,omitempty"`
	Factor     float64 `json:"factor,omitempty"`

	// New-business
	ProductGroup string  `json:"product_group,omitempty"`
	Geography    string  `json:"geography,omitempty"`
	StartMonth   int     `json:"start_month,omitempty"`
	Year1Value   float64 `json:"year1_value,omitempty"`
	Year2Value   float64 `json:"year2_value,omitempty"`
	Year3Value   float64 `json:"year3_value,omitempty"`
}

// Record is a named, time-stamped, uniquely identified scenario: an
// ordered adjustment list owned by the presentation layer's persistence
// collaborator and passed immutably into Apply.
type Record struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Created     time.Time    `json:"created"`
	Modified    time.Time    `json:"modified"`
	Adjustments []Adjustment `json:"adjustments"`
}

// NewRecord creates a Record with a fresh identifier and created/modified
// timestamps set to now.
func NewRecord(name string, adjustments []Adjustment) *Record {
	now := time.Now()
	return &Record{
		ID:          uuid.NewString(),
		Name:        name,
		Created:     now,
		Modified:    now,
		Adjustments: adjustments,
	}
}

// DefaultScaleApprox is the fraction of the total series a scale/remove
// adjustment's target is assumed to contribute, absent per-entity
// disaggregation in the baseline.
const DefaultScaleApprox = 0.10

// Apply runs adjustments over series in order, returning the resulting
// series. scaleApprox is the ρ used by Scale/Remove (DefaultScaleApprox
// if the caller has no override); seasonalPattern is the multiplicative
// pattern applied to new-business ramps — pass an all-ones array when no
// comparable existing data is available. The result remains a contiguous
// monthly sequence; series itself is not mutated.
func Apply(series []float64, adjustments []Adjustment, scaleApprox float64, seasonalPattern [seasonal.Period]float64) ([]float64, error) {
	out := make([]float64, len(series))
	copy(out, series)

	for _, adj := range adjustments {
		var err error
		switch adj.Type {
		case TypeScale:
			out, err = applyScale(out, adj.Factor, scaleApprox)
		case TypeRemove:
			out, err = applyScale(out, 0, scaleApprox)
		case TypeNewBusiness:
			out, err = applyNewBusiness(out, adj, seasonalPattern)
		default:
			err = fmt.Errorf("adjustment type %q: %w", adj.Type, ErrInvalidAdjustment)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func applyScale(series []float64, factor, rho float64) ([]float64, error) {
	if factor < 0 {
		return nil, fmt.Errorf("scale factor %v: %w", factor, ErrInvalidAdjustment)
	}
	overall := 1 + rho*(factor-1)
	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = v * overall
	}
	return out, nil
}

// applyNewBusiness extends series with a ramp: the partial remainder of
// the start year climbs linearly from 0.5x to 1.0x the year-1 monthly
// average, years 2 and 3 are flat at their own monthly averages, and the
// whole appended block is multiplied by seasonalPattern. Months beyond
// year 3 are not generated here — callers asking for a longer horizon
// than this adjustment covers get flat year-3 behavior by construction,
// since the caller is expected to request only as many months as the
// forecast horizon needs.
func applyNewBusiness(series []float64, adj Adjustment, seasonalPattern [seasonal.Period]float64) ([]float64, error) {
	if adj.StartMonth < 1 || adj.StartMonth > 12 {
		return nil, fmt.Errorf("start month %d: %w", adj.StartMonth, ErrInvalidAdjustment)
	}
	if adj.Year1Value <= 0 || adj.Year2Value <= 0 || adj.Year3Value <= 0 {
		return nil, fmt.Errorf("non-positive annual target: %w", ErrInvalidAdjustment)
	}

	remaining := 13 - adj.StartMonth // months from StartMonth through December, inclusive
	total := remaining + 24

	values := make([]float64, total)
	monthlyAvg1 := adj.Year1Value / 12
	for i := 0; i < remaining; i++ {
		frac := 0.5
		if remaining > 1 {
			frac = 0.5 + 0.5*float64(i)/float64(remaining-1)
		}
		values[i] = monthlyAvg1 * frac
	}
	monthlyAvg2 := adj.Year2Value / 12
	for i := remaining; i < remaining+12; i++ {
		values[i] = monthlyAvg2
	}
	monthlyAvg3 := adj.Year3Value / 12
	for i := remaining + 12; i < total; i++ {
		values[i] = monthlyAvg3
	}

	base := len(series)
	for i := range values {
		values[i] *= seasonalPattern[(base+i)%seasonal.Period]
	}

	return append(series, values...), nil
}
