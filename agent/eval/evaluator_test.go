package eval

import (
	"errors"
	"fmt"
	"math"
	"testing"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

func buildItinerary(req contractx.Requirements, days, perDay int, total float64, iterations int) *contractx.Itinerary {
	plans := make([]contractx.DayPlan, 0, days)
	for d := 1; d <= days; d++ {
		acts := make([]contractx.Activity, 0, perDay)
		for i := 0; i < perDay; i++ {
			acts = append(acts, contractx.Activity{
				Day:      d,
				Name:     fmt.Sprintf("Stop %d", i+1),
				Category: "sightseeing",
				Cost:     10,
			})
		}
		plans = append(plans, contractx.DayPlan{Day: d, Activities: acts})
	}
	return &contractx.Itinerary{
		ID:             "it-1",
		Requirements:   req,
		Days:           plans,
		Budget:         contractx.BudgetBreakdown{Total: total, WithinBudget: total <= req.Budget},
		IterationCount: iterations,
		MaxIterations:  3,
	}
}

func threeDayTrip(budget float64, interests ...string) contractx.Requirements {
	return contractx.Requirements{
		Destination:  "Barcelona, Spain",
		Budget:       budget,
		Travelers:    1,
		DurationDays: 3,
		Interests:    interests,
	}
}

func mustEvaluator(t *testing.T, p Policy) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(p)
	if err != nil {
		t.Fatalf("NewEvaluator() error = %v", err)
	}
	return e
}

func metric(t *testing.T, r Report, name string) Metric {
	t.Helper()
	m, ok := r.Metric(name)
	if !ok {
		t.Fatalf("metric %q missing", name)
	}
	return m
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBudgetAdherence(t *testing.T) {
	t.Parallel()

	partial := DefaultPolicy()
	partial.BudgetMode = BudgetModePartialCredit

	tests := []struct {
		name   string
		policy Policy
		budget float64
		total  float64
		score  float64
		passed bool
	}{
		{name: "within budget", policy: DefaultPolicy(), budget: 800, total: 685, score: 1, passed: true},
		{name: "exactly on budget", policy: DefaultPolicy(), budget: 685, total: 685, score: 1, passed: true},
		{name: "ratio over budget", policy: DefaultPolicy(), budget: 100, total: 400, score: 0.25, passed: false},
		{name: "ratio zero budget", policy: DefaultPolicy(), budget: 0, total: 400, score: 0, passed: false},
		{name: "partial credit within tolerance", policy: partial, budget: 1000, total: 1040, score: 0.7, passed: true},
		{name: "partial credit beyond tolerance", policy: partial, budget: 1000, total: 1200, score: 0.8, passed: false},
		{name: "partial credit far beyond", policy: partial, budget: 100, total: 400, score: 0, passed: false},
		{name: "partial credit zero budget", policy: partial, budget: 0, total: 10, score: 0, passed: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := mustEvaluator(t, tc.policy)
			req := threeDayTrip(tc.budget)
			report, err := e.Evaluate(buildItinerary(req, 3, 4, tc.total, 1), req)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			m := metric(t, report, MetricBudgetAdherence)
			if !almostEqual(m.Score, tc.score) || m.Passed != tc.passed {
				t.Fatalf("got score=%v passed=%v, want %v/%v (%s)", m.Score, m.Passed, tc.score, tc.passed, m.Details)
			}
			if !m.Critical {
				t.Fatal("budget adherence is critical")
			}
		})
	}
}

func TestDayCoverageAndDensity(t *testing.T) {
	t.Parallel()

	e := mustEvaluator(t, DefaultPolicy())
	req := threeDayTrip(800)

	report, err := e.Evaluate(buildItinerary(req, 2, 2, 100, 1), req)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	cov := metric(t, report, MetricDayCoverage)
	if !almostEqual(cov.Score, 2.0/3.0) || cov.Passed {
		t.Fatalf("unexpected coverage: %+v", cov)
	}
	dens := metric(t, report, MetricActivityDensity)
	if !almostEqual(dens.Score, 0.5) || dens.Passed {
		t.Fatalf("unexpected density: %+v", dens)
	}
	if report.Passed {
		t.Fatal("uncovered days must fail the scenario")
	}

	report, err = e.Evaluate(buildItinerary(req, 3, 6, 100, 1), req)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if m := metric(t, report, MetricActivityDensity); m.Score != 1 || !m.Passed {
		t.Fatalf("density should saturate at 1: %+v", m)
	}
	if m := metric(t, report, MetricDayCoverage); m.Score != 1 || !m.Passed {
		t.Fatalf("unexpected coverage: %+v", m)
	}
}

func TestDensityTargetIsConfigurable(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	p.DensityTarget = 2
	p.MinActivitiesPerDay = 2
	e := mustEvaluator(t, p)
	req := threeDayTrip(800)

	report, err := e.Evaluate(buildItinerary(req, 3, 2, 100, 1), req)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if m := metric(t, report, MetricActivityDensity); m.Score != 1 || !m.Passed {
		t.Fatalf("unexpected density: %+v", m)
	}
}

func TestPreferenceMatching(t *testing.T) {
	t.Parallel()

	activities := []contractx.Activity{
		{Day: 1, Name: "Morning: Architecture Highlights", Category: "architecture"},
		{Day: 1, Name: "Lunch at Food Market", Category: "meal", Description: "near the beach"},
		{Day: 2, Name: "Local Park", Category: "nature"},
	}
	it := &contractx.Itinerary{
		Days:           contractx.GroupByDay(activities, 3, nil),
		IterationCount: 1,
		MaxIterations:  3,
	}

	category := DefaultPolicy()
	category.PreferenceMode = PreferenceModeCategory

	tests := []struct {
		name      string
		policy    Policy
		interests []string
		score     float64
		passed    bool
	}{
		{name: "no interests", policy: DefaultPolicy(), interests: nil, score: 1, passed: true},
		{name: "blank interests", policy: DefaultPolicy(), interests: []string{" "}, score: 1, passed: true},
		{name: "text matches name and description", policy: DefaultPolicy(), interests: []string{"Architecture", "beach"}, score: 1, passed: true},
		{name: "text partial above threshold", policy: DefaultPolicy(), interests: []string{"architecture", "opera"}, score: 0.5, passed: true},
		{name: "text below threshold", policy: DefaultPolicy(), interests: []string{"architecture", "opera", "jazz", "surf"}, score: 0.25, passed: false},
		{name: "category requires every tag", policy: category, interests: []string{"architecture", "beach"}, score: 0.5, passed: false},
		{name: "category all represented", policy: category, interests: []string{"architecture", "nature"}, score: 1, passed: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e := mustEvaluator(t, tc.policy)
			req := threeDayTrip(800, tc.interests...)
			report, err := e.Evaluate(it, req)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			m := metric(t, report, MetricPreferenceMatching)
			if !almostEqual(m.Score, tc.score) || m.Passed != tc.passed {
				t.Fatalf("got %v/%v, want %v/%v (%s)", m.Score, m.Passed, tc.score, tc.passed, m.Details)
			}
			if m.Critical {
				t.Fatal("preference matching is not critical")
			}
		})
	}
}

func TestIterationEfficiency(t *testing.T) {
	t.Parallel()

	e := mustEvaluator(t, DefaultPolicy())
	req := threeDayTrip(800)

	tests := []struct {
		k, max int
		score  float64
		passed bool
	}{
		{k: 1, max: 3, score: 1, passed: true},
		{k: 2, max: 3, score: 2.0 / 3.0, passed: true},
		{k: 3, max: 3, score: 1.0 / 3.0, passed: true},
		{k: 5, max: 3, score: 0, passed: false},
		{k: 2, max: 0, score: 2.0 / 3.0, passed: true},
	}
	for _, tc := range tests {
		it := buildItinerary(req, 3, 4, 100, tc.k)
		it.MaxIterations = tc.max
		report, err := e.Evaluate(it, req)
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		m := metric(t, report, MetricIterationEfficiency)
		if !almostEqual(m.Score, tc.score) || m.Passed != tc.passed {
			t.Fatalf("k=%d max=%d: got %v/%v, want %v/%v", tc.k, tc.max, m.Score, m.Passed, tc.score, tc.passed)
		}
	}
}

func TestOverallIsUnweightedMean(t *testing.T) {
	t.Parallel()

	e := mustEvaluator(t, DefaultPolicy())
	req := threeDayTrip(100, "architecture")
	report, err := e.Evaluate(buildItinerary(req, 3, 2, 400, 2), req)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(report.Metrics) != 5 {
		t.Fatalf("metrics = %d, want 5", len(report.Metrics))
	}
	sum := 0.0
	for _, m := range report.Metrics {
		if m.Score < 0 || m.Score > 1 {
			t.Fatalf("metric %s out of range: %v", m.Name, m.Score)
		}
		sum += m.Score
	}
	if !almostEqual(report.Overall, sum/5) {
		t.Fatalf("overall = %v, want %v", report.Overall, sum/5)
	}
	if report.Passed {
		t.Fatal("over budget must fail the scenario")
	}
}

func TestNonCriticalFailuresStillPass(t *testing.T) {
	t.Parallel()

	e := mustEvaluator(t, DefaultPolicy())
	req := threeDayTrip(800, "opera")
	report, err := e.Evaluate(buildItinerary(req, 3, 1, 300, 3), req)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if metric(t, report, MetricPreferenceMatching).Passed || metric(t, report, MetricActivityDensity).Passed {
		t.Fatal("expected non-critical metrics to fail")
	}
	if !report.Passed {
		t.Fatal("scenario should pass on critical metrics alone")
	}
}

func TestEvaluateFallsBackToItineraryRequirements(t *testing.T) {
	t.Parallel()

	e := mustEvaluator(t, DefaultPolicy())
	req := threeDayTrip(50)
	report, err := e.Evaluate(buildItinerary(req, 3, 4, 100, 1), contractx.Requirements{})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if metric(t, report, MetricBudgetAdherence).Passed {
		t.Fatal("expected the itinerary's own budget to be used")
	}
}

func TestEvaluateRejectsNilItinerary(t *testing.T) {
	t.Parallel()

	e := mustEvaluator(t, DefaultPolicy())
	if _, err := e.Evaluate(nil, threeDayTrip(1)); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestPolicyValidate(t *testing.T) {
	t.Parallel()

	mutate := []func(*Policy){
		func(p *Policy) { p.BudgetMode = "strict" },
		func(p *Policy) { p.PreferenceMode = "vibes" },
		func(p *Policy) { p.DensityTarget = 0 },
		func(p *Policy) { p.PartialCredit = 1.5 },
		func(p *Policy) { p.PreferenceThreshold = -0.1 },
		func(p *Policy) { p.OverageTolerance = math.NaN() },
		func(p *Policy) { p.MaxIterations = 0 },
		func(p *Policy) { p.MinActivitiesPerDay = -1 },
	}
	for i, m := range mutate {
		p := DefaultPolicy()
		m(&p)
		if err := p.Validate(); !errors.Is(err, contractx.ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
	if err := (Policy{DensityTarget: 4, MaxIterations: 1}).Validate(); err != nil {
		t.Fatalf("empty modes should default: %v", err)
	}
}
