package domain

import (
	"math"
	"strings"
	"time"
)

// ============================================================
// Scenario
// ============================================================

// ScenarioConfig is the set of assumptions a projection runs under.
type ScenarioConfig struct {
	CxcDays int     `json:"cxcDays" yaml:"cxc_days"` // days between service and collection
	CxpFreq int     `json:"cxpFreq" yaml:"cxp_freq"` // payroll cycle length in days
	Growth  float64 `json:"growth" yaml:"growth"`    // demand multiplier
}

// DefaultScenario mirrors the panel's initial sliders.
func DefaultScenario() ScenarioConfig {
	return ScenarioConfig{CxcDays: 30, CxpFreq: 15, Growth: 1.0}
}

// Validate rejects scenarios that would silently produce a wrong projection.
func (s ScenarioConfig) Validate() error {
	if s.CxcDays < 0 {
		return &ErrInvalidScenario{Field: "cxcDays", Reason: "must be zero or positive"}
	}
	if s.CxpFreq <= 0 {
		return &ErrInvalidScenario{Field: "cxpFreq", Reason: "must be at least 1"}
	}
	if math.IsNaN(s.Growth) || math.IsInf(s.Growth, 0) || s.Growth <= 0 {
		return &ErrInvalidScenario{Field: "growth", Reason: "must be a positive number"}
	}
	return nil
}

// ============================================================
// Time filter
// ============================================================

// TimeFilter selects the slice of records the panel is looking at.
type TimeFilter string

const (
	FilterToday TimeFilter = "TODAY"
	Filter7D    TimeFilter = "7D"
	Filter30D   TimeFilter = "30D"
	Filter90D   TimeFilter = "90D"
	Filter180D  TimeFilter = "180D"
	Filter360D  TimeFilter = "360D"
	FilterAll   TimeFilter = "ALL"
)

var filterDays = map[TimeFilter]int{
	FilterToday: 1,
	Filter7D:    7,
	Filter30D:   30,
	Filter90D:   90,
	Filter180D:  180,
	Filter360D:  360,
}

// ParseTimeFilter is case-insensitive; an empty value means ALL.
func ParseTimeFilter(s string) (TimeFilter, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return FilterAll, nil
	}
	f := TimeFilter(s)
	if f == FilterAll {
		return f, nil
	}
	if _, ok := filterDays[f]; ok {
		return f, nil
	}
	return "", &ErrValidation{Field: "timeFilter", Message: "unknown filter " + s}
}

// Cutoff returns the earliest date kept by the filter. ok is false for ALL.
func (f TimeFilter) Cutoff(now time.Time) (cutoff time.Time, ok bool) {
	days, found := filterDays[f]
	if !found {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -days), true
}
