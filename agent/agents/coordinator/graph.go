package coordinator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/trip-planner-agent/agent/nodes"
)

func (c *Coordinator) compileIterationGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("plan_activities",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.PlanActivities(ctx, in, c.models.Planner())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node plan_activities: %w", err)
	}

	if err := graph.AddLambdaNode("find_bookings",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.FindBookings(ctx, in, c.models.Booking())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node find_bookings: %w", err)
	}

	if err := graph.AddLambdaNode(nodex.NodeAnalyzeBudget,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.AnalyzeBudget(ctx, in, c.models.Budget())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node analyze_budget: %w", err)
	}

	if err := graph.AddLambdaNode(nodex.NodeMarkIncomplete,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.MarkIncomplete(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node mark_incomplete: %w", err)
	}

	edges := [][2]string{
		{compose.START, "plan_activities"},
		{"plan_activities", "find_bookings"},
		{nodex.NodeAnalyzeBudget, compose.END},
		{nodex.NodeMarkIncomplete, compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	branch := compose.NewGraphBranch(nodex.RouteAfterBookings, map[string]bool{
		nodex.NodeAnalyzeBudget:  true,
		nodex.NodeMarkIncomplete: true,
	})
	if err := graph.AddBranch("find_bookings", branch); err != nil {
		return nil, fmt.Errorf("add branch after find_bookings: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("coordinator.iteration"))
	if err != nil {
		return nil, fmt.Errorf("compile iteration graph: %w", err)
	}
	return runner, nil
}
