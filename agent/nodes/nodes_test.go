package iterationnode

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

type plannerFunc func(context.Context, contractx.PlanRequest) ([]contractx.Activity, error)

func (f plannerFunc) Plan(ctx context.Context, req contractx.PlanRequest) ([]contractx.Activity, error) {
	return f(ctx, req)
}

type bookingFunc func(context.Context, contractx.BookingRequest) ([]contractx.Accommodation, error)

func (f bookingFunc) FindOptions(ctx context.Context, req contractx.BookingRequest) ([]contractx.Accommodation, error) {
	return f(ctx, req)
}

type analyzerFunc func(context.Context, contractx.BudgetInput) (contractx.BudgetBreakdown, error)

func (f analyzerFunc) Analyze(ctx context.Context, in contractx.BudgetInput) (contractx.BudgetBreakdown, error) {
	return f(ctx, in)
}

func TestPlanActivitiesAbsorbsSpecialistError(t *testing.T) {
	t.Parallel()

	planner := plannerFunc(func(context.Context, contractx.PlanRequest) ([]contractx.Activity, error) {
		return nil, contractx.ErrToolFailure
	})
	state, err := PlanActivities(context.Background(), GraphInput{Iteration: 2}, planner)
	if err != nil {
		t.Fatalf("PlanActivities() error = %v", err)
	}
	if len(state.Failures) != 1 || state.Failures[0].Stage != StagePlan {
		t.Fatalf("unexpected failures: %#v", state.Failures)
	}
}

func TestPlanActivitiesPropagatesCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	planner := plannerFunc(func(ctx context.Context, _ contractx.PlanRequest) ([]contractx.Activity, error) {
		return nil, ctx.Err()
	})
	if _, err := PlanActivities(ctx, GraphInput{}, planner); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFindBookingsPassesRefinementFlag(t *testing.T) {
	t.Parallel()

	var got contractx.BookingRequest
	booking := bookingFunc(func(_ context.Context, req contractx.BookingRequest) ([]contractx.Accommodation, error) {
		got = req
		return []contractx.Accommodation{{Name: "Inn", Price: 50}}, nil
	})
	state, err := FindBookings(context.Background(), &GraphState{Input: GraphInput{Iteration: 2, PreferCheapest: true}}, booking)
	if err != nil {
		t.Fatalf("FindBookings() error = %v", err)
	}
	if !got.PreferCheapest || got.Iteration != 2 {
		t.Fatalf("unexpected request: %+v", got)
	}
	if len(state.Options) != 1 {
		t.Fatalf("unexpected options: %#v", state.Options)
	}

	if _, err := FindBookings(context.Background(), nil, booking); !errors.Is(err, ErrNilState) {
		t.Fatalf("expected ErrNilState, got %v", err)
	}
}

func TestRouteAfterBookings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		state *GraphState
		want  string
	}{
		{name: "both present", state: &GraphState{Activities: []contractx.Activity{{}}, Options: []contractx.Accommodation{{}}}, want: NodeAnalyzeBudget},
		{name: "no activities", state: &GraphState{Options: []contractx.Accommodation{{}}}, want: NodeMarkIncomplete},
		{name: "no options", state: &GraphState{Activities: []contractx.Activity{{}}}, want: NodeMarkIncomplete},
	}
	for _, tc := range tests {
		got, err := RouteAfterBookings(context.Background(), tc.state)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: route = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestMarkIncompleteListsMissingParts(t *testing.T) {
	t.Parallel()

	out, err := MarkIncomplete(&GraphState{Input: GraphInput{Iteration: 3}})
	if err != nil {
		t.Fatalf("MarkIncomplete() error = %v", err)
	}
	if !out.Incomplete || out.Analyzed || out.Iteration != 3 {
		t.Fatalf("unexpected output: %+v", out)
	}
	if len(out.Missing) != 2 || out.Missing[0] != "activities" || out.Missing[1] != "bookings" {
		t.Fatalf("unexpected missing: %#v", out.Missing)
	}
}

func TestAnalyzeBudget(t *testing.T) {
	t.Parallel()

	state := &GraphState{
		Input:      GraphInput{Iteration: 1, Requirements: contractx.Requirements{Budget: 500}},
		Activities: []contractx.Activity{{Name: "a", Cost: 10}},
		Options:    []contractx.Accommodation{{Name: "Inn", Price: 50}},
	}

	ok := analyzerFunc(func(_ context.Context, in contractx.BudgetInput) (contractx.BudgetBreakdown, error) {
		if in.Requirements.Budget != 500 || len(in.Activities) != 1 || len(in.Accommodations) != 1 {
			t.Errorf("unexpected budget input: %+v", in)
		}
		return contractx.BudgetBreakdown{Total: 260, WithinBudget: true}, nil
	})
	out, err := AnalyzeBudget(context.Background(), state, ok)
	if err != nil {
		t.Fatalf("AnalyzeBudget() error = %v", err)
	}
	if !out.Analyzed || out.Incomplete || out.Budget.Total != 260 {
		t.Fatalf("unexpected output: %+v", out)
	}

	failing := analyzerFunc(func(context.Context, contractx.BudgetInput) (contractx.BudgetBreakdown, error) {
		return contractx.BudgetBreakdown{}, contractx.ErrToolFailure
	})
	out, err = AnalyzeBudget(context.Background(), state, failing)
	if err != nil {
		t.Fatalf("AnalyzeBudget() error = %v", err)
	}
	if out.Analyzed || !out.Incomplete || len(out.Failures) != 1 {
		t.Fatalf("unexpected output on failure: %+v", out)
	}
}
