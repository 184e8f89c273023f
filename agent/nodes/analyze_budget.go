package iterationnode

import (
	"context"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

func AnalyzeBudget(
	ctx context.Context,
	in *GraphState,
	analyzer contractx.BudgetAnalyzer,
) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, ErrNilState
	}

	out := GraphOutput{
		Iteration:  in.Input.Iteration,
		Activities: in.Activities,
		Options:    in.Options,
		Failures:   in.Failures,
	}

	budget, err := analyzer.Analyze(ctx, contractx.BudgetInput{
		Requirements:   in.Input.Requirements,
		Activities:     in.Activities,
		Accommodations: in.Options,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return GraphOutput{}, ctxErr
		}
		out.Failures = append(out.Failures, StageFailure{Stage: StageBudget, Err: err})
		out.Incomplete = true
		out.Missing = []string{"budget"}
		return out, nil
	}

	out.Budget = budget
	out.Analyzed = true
	return out, nil
}
