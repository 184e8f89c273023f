package eval

import (
	"fmt"
	"math"
	"strings"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

// Budget scoring modes.
const (
	BudgetModeRatio         = "ratio"
	BudgetModePartialCredit = "partial_credit"
)

// Preference matching modes.
const (
	PreferenceModeText     = "text"
	PreferenceModeCategory = "category"
)

// Policy is read with the EVAL prefix.
type Policy struct {
	BudgetMode string `split_words:"true" default:"ratio"`
	// OverageTolerance is the fraction over budget that still earns
	// PartialCredit in partial_credit mode.
	OverageTolerance    float64 `split_words:"true" default:"0.05"`
	PartialCredit       float64 `split_words:"true" default:"0.7"`
	DensityTarget       float64 `split_words:"true" default:"4"`
	MinActivitiesPerDay int     `split_words:"true" default:"3"`
	PreferenceMode      string  `split_words:"true" default:"text"`
	PreferenceThreshold float64 `split_words:"true" default:"0.3"`
	// MaxIterations is used when an itinerary does not carry its own bound.
	MaxIterations int `split_words:"true" default:"3"`
}

func DefaultPolicy() Policy {
	return Policy{
		BudgetMode:          BudgetModeRatio,
		OverageTolerance:    0.05,
		PartialCredit:       0.7,
		DensityTarget:       4,
		MinActivitiesPerDay: 3,
		PreferenceMode:      PreferenceModeText,
		PreferenceThreshold: 0.3,
		MaxIterations:       3,
	}
}

func (p Policy) Validate() error {
	switch p.budgetMode() {
	case BudgetModeRatio, BudgetModePartialCredit:
	default:
		return fmt.Errorf("%w: unknown budget mode %q", contractx.ErrValidation, p.BudgetMode)
	}
	switch p.preferenceMode() {
	case PreferenceModeText, PreferenceModeCategory:
	default:
		return fmt.Errorf("%w: unknown preference mode %q", contractx.ErrValidation, p.PreferenceMode)
	}
	if !finiteNonNegative(p.OverageTolerance) {
		return fmt.Errorf("%w: overage tolerance must be >= 0", contractx.ErrValidation)
	}
	if !finiteNonNegative(p.PartialCredit) || p.PartialCredit > 1 {
		return fmt.Errorf("%w: partial credit must be within [0, 1]", contractx.ErrValidation)
	}
	if !finiteNonNegative(p.DensityTarget) || p.DensityTarget == 0 {
		return fmt.Errorf("%w: density target must be > 0", contractx.ErrValidation)
	}
	if p.MinActivitiesPerDay < 0 {
		return fmt.Errorf("%w: min activities per day must be >= 0", contractx.ErrValidation)
	}
	if !finiteNonNegative(p.PreferenceThreshold) || p.PreferenceThreshold > 1 {
		return fmt.Errorf("%w: preference threshold must be within [0, 1]", contractx.ErrValidation)
	}
	if p.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations must be positive", contractx.ErrValidation)
	}
	return nil
}

func (p Policy) budgetMode() string {
	m := strings.ToLower(strings.TrimSpace(p.BudgetMode))
	if m == "" {
		return BudgetModeRatio
	}
	return m
}

func (p Policy) preferenceMode() string {
	m := strings.ToLower(strings.TrimSpace(p.PreferenceMode))
	if m == "" {
		return PreferenceModeText
	}
	return m
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
