package coordinator

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
	statex "github.com/tanpawarit/trip-planner-agent/agent/state"
)

const DefaultMaxIterations = 3

// Refinement strategies applied between failed iterations.
const (
	RefinementNone            = "none"
	RefinementCheapestLodging = "cheapest_lodging"
)

// Policy is read with the COORDINATOR prefix.
type Policy struct {
	MaxIterations int `split_words:"true" default:"3"`
	// RequireDayCoverage additionally demands one day plan per requested day.
	RequireDayCoverage bool `split_words:"true" default:"false"`
	// RetryOnIncomplete retries when a specialist returns nothing; when false
	// the request fails on the first incomplete iteration.
	RetryOnIncomplete bool   `split_words:"true" default:"true"`
	Refinement        string `default:"none"`
	// MaxConsecutiveToolFailures aborts the loop after that many iterations in
	// a row with a failing specialist call. Zero never aborts.
	MaxConsecutiveToolFailures int `split_words:"true" default:"0"`
	HistoryLimit               int `split_words:"true" default:"10"`
}

func DefaultPolicy() Policy {
	return Policy{
		MaxIterations:     DefaultMaxIterations,
		RetryOnIncomplete: true,
		Refinement:        RefinementNone,
		HistoryLimit:      statex.DefaultHistoryLimit,
	}
}

func (p Policy) Validate() error {
	if p.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations must be positive", contractx.ErrValidation)
	}
	if p.MaxConsecutiveToolFailures < 0 {
		return fmt.Errorf("%w: max consecutive tool failures must be >= 0", contractx.ErrValidation)
	}
	switch p.refinement() {
	case RefinementNone, RefinementCheapestLodging:
	default:
		return fmt.Errorf("%w: unknown refinement %q", contractx.ErrValidation, p.Refinement)
	}
	return nil
}

func (p Policy) refinement() string {
	r := strings.ToLower(strings.TrimSpace(p.Refinement))
	if r == "" {
		return RefinementNone
	}
	return r
}

// preferCheapest reports whether iteration k should ask for the cheapest
// lodging.
func (p Policy) preferCheapest(k int) bool {
	return k > 1 && p.refinement() == RefinementCheapestLodging
}

func (p Policy) historyLimit() int {
	if p.HistoryLimit <= 0 {
		return statex.DefaultHistoryLimit
	}
	return p.HistoryLimit
}
