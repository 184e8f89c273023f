package eval

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

// Planner is the part of the coordinator the suite drives.
type Planner interface {
	ProcessRequest(ctx context.Context, req contractx.Requirements, maxIterations int) (*contractx.Itinerary, error)
}

type Scenario struct {
	Name         string                 `json:"name"`
	Requirements contractx.Requirements `json:"requirements"`
}

// DefaultScenarios are the built-in budget, luxury and family trips.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{
			Name: "Budget-Conscious Trip",
			Requirements: contractx.Requirements{
				Destination:             "Barcelona, Spain",
				StartDate:               "2025-07-01",
				EndDate:                 "2025-07-03",
				Budget:                  800,
				Travelers:               1,
				DurationDays:            3,
				Interests:               []string{"architecture", "beach"},
				AccommodationPreference: "hostel",
			},
		},
		{
			Name: "Luxury Experience",
			Requirements: contractx.Requirements{
				Destination:             "Tokyo, Japan",
				StartDate:               "2025-08-15",
				EndDate:                 "2025-08-17",
				Budget:                  3000,
				Travelers:               2,
				DurationDays:            3,
				Interests:               []string{"food", "culture", "shopping"},
				DietaryRestrictions:     []string{"no shellfish"},
				AccommodationPreference: "luxury hotel",
			},
		},
		{
			Name: "Family Vacation",
			Requirements: contractx.Requirements{
				Destination:             "Orlando, Florida",
				StartDate:               "2025-09-10",
				EndDate:                 "2025-09-12",
				Budget:                  1500,
				Travelers:               4,
				DurationDays:            3,
				Interests:               []string{"theme parks", "entertainment"},
				AccommodationPreference: "family hotel",
			},
		},
	}
}

// ScenarioResult is one scenario's outcome. Itinerary is nil and Error set
// when the coordinator failed.
type ScenarioResult struct {
	Name         string               `json:"name"`
	Passed       bool                 `json:"passed"`
	OverallScore float64              `json:"overall_score"`
	Metrics      []Metric             `json:"metrics,omitempty"`
	Destination  string               `json:"destination"`
	Budget       float64              `json:"budget"`
	ActualCost   float64              `json:"actual_cost"`
	Iterations   int                  `json:"iterations"`
	Error        string               `json:"error,omitempty"`
	Itinerary    *contractx.Itinerary `json:"-"`
}

type SuiteSummary struct {
	EvaluationDate string           `json:"evaluation_date"`
	TotalScenarios int              `json:"total_scenarios"`
	Passed         int              `json:"passed"`
	AverageScore   float64          `json:"average_score"`
	Scenarios      []ScenarioResult `json:"scenarios"`
}

// AllPassed reports whether every scenario passed.
func (s SuiteSummary) AllPassed() bool {
	return s.TotalScenarios > 0 && s.Passed == s.TotalScenarios
}

type SuiteOption func(*Suite)

func WithSuiteLogger(l zerolog.Logger) SuiteOption {
	return func(s *Suite) {
		s.log = l
	}
}

func WithSuiteClock(now func() time.Time) SuiteOption {
	return func(s *Suite) {
		if now != nil {
			s.now = now
		}
	}
}

// Suite runs scenarios through a planner and scores each result.
type Suite struct {
	planner   Planner
	evaluator *Evaluator
	log       zerolog.Logger
	now       func() time.Time
}

func NewSuite(planner Planner, evaluator *Evaluator, opts ...SuiteOption) (*Suite, error) {
	if planner == nil {
		return nil, errors.New("planner is required")
	}
	if evaluator == nil {
		return nil, errors.New("evaluator is required")
	}
	s := &Suite{
		planner:   planner,
		evaluator: evaluator,
		log:       zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Run evaluates scenarios in order. A failing coordinator call is recorded as
// a failed scenario with a zero score. Run stops early only when ctx is done.
func (s *Suite) Run(ctx context.Context, scenarios []Scenario) (SuiteSummary, error) {
	summary := SuiteSummary{
		EvaluationDate: s.now().UTC().Format(time.DateOnly),
		Scenarios:      make([]ScenarioResult, 0, len(scenarios)),
	}

	for _, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			return s.finalize(summary), err
		}
		result := s.runScenario(ctx, sc)
		summary.Scenarios = append(summary.Scenarios, result)
	}

	return s.finalize(summary), nil
}

func (s *Suite) runScenario(ctx context.Context, sc Scenario) ScenarioResult {
	req := sc.Requirements.Normalize()
	log := s.log.With().Str("scenario", sc.Name).Logger()
	log.Info().Str("destination", req.Destination).Msg("evaluator.scenario_started")

	result := ScenarioResult{
		Name:        sc.Name,
		Destination: req.Destination,
		Budget:      req.Budget,
	}

	it, err := s.planner.ProcessRequest(ctx, req, s.evaluator.policy.MaxIterations)
	if err != nil {
		result.Error = err.Error()
		log.Warn().Err(err).Msg("evaluator.scenario_failed")
		return result
	}

	report, err := s.evaluator.Evaluate(it, req)
	if err != nil {
		result.Error = err.Error()
		log.Warn().Err(err).Msg("evaluator.scenario_failed")
		return result
	}

	result.Passed = report.Passed
	result.OverallScore = report.Overall
	result.Metrics = report.Metrics
	result.ActualCost = it.Budget.Total
	result.Iterations = it.IterationCount
	result.Itinerary = it

	log.Info().
		Float64("score", report.Overall).
		Bool("passed", report.Passed).
		Msg("evaluator.scenario_completed")
	return result
}

func (s *Suite) finalize(summary SuiteSummary) SuiteSummary {
	summary.TotalScenarios = len(summary.Scenarios)
	total := 0.0
	for _, r := range summary.Scenarios {
		if r.Passed {
			summary.Passed++
		}
		total += r.OverallScore
	}
	if summary.TotalScenarios > 0 {
		summary.AverageScore = total / float64(summary.TotalScenarios)
	}
	return summary
}
