package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

// Generator produces a JSON document from a system and a user prompt.
type Generator interface {
	GenerateJSON(ctx context.Context, system, user string) (string, error)
}

var _ contractx.ToolProvider = (*ModelSearchProvider)(nil)

// ModelSearchProvider answers searches with a language model and computes
// budgets with the typed calculator.
type ModelSearchProvider struct {
	gen    Generator
	prompt string
	calc   BudgetCalculator
}

func NewModelSearchProvider(gen Generator, systemPrompt string, calc BudgetCalculator) (*ModelSearchProvider, error) {
	if gen == nil {
		return nil, fmt.Errorf("%w: search generator is nil", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: search prompt", contractx.ErrPromptMissing)
	}
	return &ModelSearchProvider{gen: gen, prompt: systemPrompt, calc: calc}, nil
}

type searchOutput struct {
	Results []contractx.SearchResult `json:"results"`
}

func (p *ModelSearchProvider) Search(ctx context.Context, q contractx.SearchQuery) ([]contractx.SearchResult, error) {
	limit := q.MaxResults
	if limit <= 0 {
		limit = defaultMaxResults
	}
	payload, err := json.Marshal(map[string]any{
		"query":       q.Query,
		"interests":   q.Interests,
		"max_results": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal search payload: %v", contractx.ErrValidation, err)
	}

	raw, err := p.gen.GenerateJSON(ctx, p.prompt, string(payload))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: search %q: %v", contractx.ErrToolFailure, q.Query, err)
	}

	var out searchOutput
	if err := json.Unmarshal([]byte(CleanJSON(raw)), &out); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", contractx.ErrToolFailure, err)
	}

	results := make([]contractx.SearchResult, 0, len(out.Results))
	for _, r := range out.Results {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		if r.Cost < 0 {
			r.Cost = 0
		}
		results = append(results, r)
		if len(results) == limit {
			break
		}
	}
	return results, nil
}

func (p *ModelSearchProvider) CalculateBudget(ctx context.Context, in contractx.BudgetInput) (contractx.BudgetBreakdown, error) {
	if err := ctx.Err(); err != nil {
		return contractx.BudgetBreakdown{}, err
	}
	return p.calc.Calculate(in), nil
}

// CleanJSON strips markdown code fences and any prose around the outermost
// JSON object.
func CleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
