package eval

import (
	"fmt"
	"math"
	"strings"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

// Metric names.
const (
	MetricBudgetAdherence     = "Budget Adherence"
	MetricDayCoverage         = "Day Coverage"
	MetricActivityDensity     = "Activity Density"
	MetricPreferenceMatching  = "Preference Matching"
	MetricIterationEfficiency = "Iteration Efficiency"
)

// criticalMetrics decide whether a scenario passes. The rest only move the
// overall score.
var criticalMetrics = map[string]bool{
	MetricBudgetAdherence: true,
	MetricDayCoverage:     true,
}

type Metric struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Passed   bool    `json:"passed"`
	Critical bool    `json:"critical,omitempty"`
	Details  string  `json:"details"`
}

type Report struct {
	Metrics []Metric `json:"metrics"`
	Overall float64  `json:"overall_score"`
	Passed  bool     `json:"passed"`
}

// Metric returns the named metric, if present.
func (r Report) Metric(name string) (Metric, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}

// Evaluator scores finished itineraries. It holds no state besides its
// policy and is safe for concurrent use.
type Evaluator struct {
	policy Policy
}

func NewEvaluator(policy Policy) (*Evaluator, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{policy: policy}, nil
}

func (e *Evaluator) Policy() Policy {
	return e.policy
}

// Evaluate scores it against req. When req has no destination the
// itinerary's own requirements are used.
func (e *Evaluator) Evaluate(it *contractx.Itinerary, req contractx.Requirements) (Report, error) {
	if it == nil {
		return Report{}, fmt.Errorf("%w: itinerary is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(req.Destination) == "" {
		req = it.Requirements
	}
	req = req.Normalize()

	metrics := []Metric{
		e.budgetAdherence(it, req),
		e.dayCoverage(it, req),
		e.activityDensity(it, req),
		e.preferenceMatching(it, req),
		e.iterationEfficiency(it),
	}

	sum := 0.0
	passed := true
	for i := range metrics {
		metrics[i].Score = clamp01(metrics[i].Score)
		metrics[i].Critical = criticalMetrics[metrics[i].Name]
		sum += metrics[i].Score
		if metrics[i].Critical && !metrics[i].Passed {
			passed = false
		}
	}

	return Report{
		Metrics: metrics,
		Overall: sum / float64(len(metrics)),
		Passed:  passed,
	}, nil
}

func (e *Evaluator) budgetAdherence(it *contractx.Itinerary, req contractx.Requirements) Metric {
	budget := req.Budget
	actual := it.Budget.Total
	m := Metric{Name: MetricBudgetAdherence}

	if actual <= budget {
		m.Score = 1
		m.Passed = true
		m.Details = fmt.Sprintf("Within budget: $%.2f <= $%.2f", actual, budget)
		return m
	}

	overagePct := math.Inf(1)
	if budget > 0 {
		overagePct = (actual - budget) / budget * 100
	}
	m.Details = fmt.Sprintf("Over budget by $%.2f (%.1f%%)", actual-budget, overagePct)

	switch e.policy.budgetMode() {
	case BudgetModePartialCredit:
		if overagePct <= e.policy.OverageTolerance*100 {
			m.Score = e.policy.PartialCredit
			m.Passed = true
			return m
		}
		m.Score = math.Max(0, 1-overagePct/100)
	default:
		if actual > 0 {
			m.Score = budget / actual
		}
	}
	return m
}

func (e *Evaluator) dayCoverage(it *contractx.Itinerary, req contractx.Requirements) Metric {
	expected := req.DurationDays
	if expected <= 0 {
		expected = contractx.DefaultDurationDays
	}
	covered := contractx.CoveredDays(it.Days, expected)
	return Metric{
		Name:    MetricDayCoverage,
		Score:   float64(covered) / float64(expected),
		Passed:  covered == expected,
		Details: fmt.Sprintf("%d/%d days planned", covered, expected),
	}
}

func (e *Evaluator) activityDensity(it *contractx.Itinerary, req contractx.Requirements) Metric {
	perDay := make(map[int]int, req.DurationDays)
	total := 0
	for _, d := range it.Days {
		perDay[d.Day] += len(d.Activities)
		total += len(d.Activities)
	}

	avg := 0.0
	if len(it.Days) > 0 {
		avg = float64(total) / float64(len(it.Days))
	}

	passed := len(it.Days) > 0
	for day := 1; day <= req.DurationDays; day++ {
		if perDay[day] < e.policy.MinActivitiesPerDay {
			passed = false
			break
		}
	}

	return Metric{
		Name:    MetricActivityDensity,
		Score:   math.Min(1, avg/e.policy.DensityTarget),
		Passed:  passed,
		Details: fmt.Sprintf("Average %.1f activities/day (target %.0f, min %d)", avg, e.policy.DensityTarget, e.policy.MinActivitiesPerDay),
	}
}

func (e *Evaluator) preferenceMatching(it *contractx.Itinerary, req contractx.Requirements) Metric {
	interests := make([]string, 0, len(req.Interests))
	for _, in := range req.Interests {
		if s := strings.ToLower(strings.TrimSpace(in)); s != "" {
			interests = append(interests, s)
		}
	}
	m := Metric{Name: MetricPreferenceMatching}
	if len(interests) == 0 {
		m.Score = 1
		m.Passed = true
		m.Details = "No specific interests to match"
		return m
	}

	activities := it.Activities()
	matched := 0
	for _, interest := range interests {
		if e.interestRepresented(interest, activities) {
			matched++
		}
	}
	rate := float64(matched) / float64(len(interests))

	m.Score = rate
	if e.policy.preferenceMode() == PreferenceModeCategory {
		m.Passed = matched == len(interests)
	} else {
		m.Passed = rate >= e.policy.PreferenceThreshold
	}
	m.Details = fmt.Sprintf("%d/%d interests represented (%.0f%%)", matched, len(interests), rate*100)
	return m
}

func (e *Evaluator) interestRepresented(interest string, activities []contractx.Activity) bool {
	for _, a := range activities {
		if e.policy.preferenceMode() == PreferenceModeCategory {
			if strings.EqualFold(strings.TrimSpace(a.Category), interest) {
				return true
			}
			continue
		}
		text := strings.ToLower(a.Name + " " + a.Description)
		if strings.Contains(text, interest) {
			return true
		}
	}
	return false
}

func (e *Evaluator) iterationEfficiency(it *contractx.Itinerary) Metric {
	limit := it.MaxIterations
	if limit <= 0 {
		limit = e.policy.MaxIterations
	}
	k := it.IterationCount
	return Metric{
		Name:    MetricIterationEfficiency,
		Score:   math.Max(0, 1-float64(k-1)/float64(limit)),
		Passed:  k <= limit,
		Details: fmt.Sprintf("Completed in %d/%d iterations", k, limit),
	}
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
