package iterationnode

import "context"

const (
	NodeAnalyzeBudget  = "analyze_budget"
	NodeMarkIncomplete = "mark_incomplete"
)

// RouteAfterBookings skips budget analysis when either specialist came back
// empty.
func RouteAfterBookings(_ context.Context, in *GraphState) (string, error) {
	if in == nil {
		return "", ErrNilState
	}
	if len(in.Activities) == 0 || len(in.Options) == 0 {
		return NodeMarkIncomplete, nil
	}
	return NodeAnalyzeBudget, nil
}
