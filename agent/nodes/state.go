package iterationnode

import (
	"errors"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

const (
	StagePlan    = "plan_activities"
	StageBooking = "find_bookings"
	StageBudget  = "analyze_budget"
)

var ErrNilState = errors.New("iteration state is nil")

// GraphInput is everything one iteration needs.
type GraphInput struct {
	Requirements   contractx.Requirements
	Iteration      int
	PreferCheapest bool
	SimilarTrips   []contractx.TripRecord
}

// StageFailure records a specialist error that was absorbed as an empty result.
type StageFailure struct {
	Stage string
	Err   error
}

type GraphState struct {
	Input      GraphInput
	Activities []contractx.Activity
	Options    []contractx.Accommodation
	Failures   []StageFailure
}

func (s *GraphState) fail(stage string, err error) {
	s.Failures = append(s.Failures, StageFailure{Stage: stage, Err: err})
}

// GraphOutput is the outcome of one iteration. Budget is only meaningful when
// Analyzed is true.
type GraphOutput struct {
	Iteration  int
	Activities []contractx.Activity
	Options    []contractx.Accommodation
	Budget     contractx.BudgetBreakdown
	Analyzed   bool
	Incomplete bool
	Missing    []string
	Failures   []StageFailure
}
