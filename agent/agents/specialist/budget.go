package specialist

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

var _ contractx.BudgetAnalyzer = (*budgetAnalyzer)(nil)

type budgetAnalyzer struct {
	provider contractx.ToolProvider
}

func newBudgetAnalyzer(provider contractx.ToolProvider) *budgetAnalyzer {
	return &budgetAnalyzer{provider: provider}
}

// Analyze returns a breakdown whose total is the sum of its four components
// and whose WithinBudget flag agrees with the total, whatever the provider
// reported.
func (a *budgetAnalyzer) Analyze(ctx context.Context, in contractx.BudgetInput) (contractx.BudgetBreakdown, error) {
	out, err := a.provider.CalculateBudget(ctx, in)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return contractx.BudgetBreakdown{}, ctxErr
		}
		if errors.Is(err, contractx.ErrToolFailure) {
			return contractx.BudgetBreakdown{}, err
		}
		return contractx.BudgetBreakdown{}, fmt.Errorf("%w: calculate budget: %v", contractx.ErrToolFailure, err)
	}

	out.Total = out.Accommodation + out.Activities + out.Meals + out.Transportation
	out.WithinBudget = out.Total <= in.Requirements.Budget
	return out, nil
}
