package iterationnode

import (
	"context"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

func PlanActivities(
	ctx context.Context,
	in GraphInput,
	planner contractx.ItineraryPlanner,
) (*GraphState, error) {
	state := &GraphState{Input: in}

	activities, err := planner.Plan(ctx, contractx.PlanRequest{
		Requirements: in.Requirements,
		Iteration:    in.Iteration,
		SimilarTrips: in.SimilarTrips,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		state.fail(StagePlan, err)
		return state, nil
	}

	state.Activities = activities
	return state, nil
}
