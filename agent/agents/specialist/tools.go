package specialist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

// search calls the provider and drops results carrying an error marker.
// Provider errors other than cancellation come back wrapped in ErrToolFailure.
func search(ctx context.Context, provider contractx.ToolProvider, q contractx.SearchQuery) ([]contractx.SearchResult, error) {
	results, err := provider.Search(ctx, q)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, contractx.ErrToolFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: search %q: %v", contractx.ErrToolFailure, q.Query, err)
	}

	out := make([]contractx.SearchResult, 0, len(results))
	for _, r := range results {
		if strings.TrimSpace(r.Error) != "" || strings.TrimSpace(r.Title) == "" {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
