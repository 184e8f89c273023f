package tool

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

type failingProvider struct{}

func (failingProvider) Search(context.Context, contractx.SearchQuery) ([]contractx.SearchResult, error) {
	return nil, errors.New("upstream down")
}

func (failingProvider) CalculateBudget(context.Context, contractx.BudgetInput) (contractx.BudgetBreakdown, error) {
	return contractx.BudgetBreakdown{}, errors.New("upstream down")
}

func TestBuildForAgentItinerary(t *testing.T) {
	t.Parallel()

	infos, executor := BuildForAgent(contractx.AgentTypeItinerary, NewMockProvider(NewBudgetCalculator(DefaultTransportCost)))
	if len(infos) != 1 || infos[0].Name != ToolSearch {
		t.Fatalf("unexpected infos: %#v", infos)
	}
	if executor == nil {
		t.Fatal("executor must not be nil")
	}

	out, err := executor(context.Background(), Call{Tool: ToolSearch, Args: map[string]any{
		"query":       "things to do in Rome",
		"max_results": float64(2),
		"interests":   []any{"food"},
	}})
	if err != nil {
		t.Fatalf("executor error = %v", err)
	}
	results, ok := out.Output.([]contractx.SearchResult)
	if !ok || len(results) != 2 {
		t.Fatalf("unexpected output: %#v", out.Output)
	}
	if results[0].Category != "food" {
		t.Fatalf("interest not applied: %#v", results[0])
	}
}

func TestExecutorRejectsToolOutsideCatalog(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(contractx.AgentTypeBooking, NewMockProvider(NewBudgetCalculator(DefaultTransportCost)))
	out, err := executor(context.Background(), Call{Tool: ToolCalculateBudget})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error == "" {
		t.Fatal("expected unavailable tool error")
	}
}

func TestExecutorCalculateBudget(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(contractx.AgentTypeBudget, NewMockProvider(NewBudgetCalculator(DefaultTransportCost)))
	out, err := executor(context.Background(), Call{Tool: ToolCalculateBudget, Args: map[string]any{
		"requirements":   map[string]any{"destination": "Rome", "budget": 1000.0, "duration_days": 2.0},
		"accommodations": []any{map[string]any{"name": "Inn", "type": "hotel", "price": 50.0}},
	}})
	if err != nil {
		t.Fatalf("executor error = %v", err)
	}
	bd, ok := out.Output.(contractx.BudgetBreakdown)
	if !ok {
		t.Fatalf("unexpected output type %T", out.Output)
	}
	if bd.Total != 200 || !bd.WithinBudget {
		t.Fatalf("unexpected breakdown: %#v", bd)
	}
}

func TestExecutorWrapsProviderFailure(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(contractx.AgentTypeItinerary, failingProvider{})
	_, err := executor(context.Background(), Call{Tool: ToolSearch, Args: map[string]any{"query": "x"}})
	if !errors.Is(err, contractx.ErrToolFailure) {
		t.Fatalf("expected ErrToolFailure, got %v", err)
	}

	out, err := executor(context.Background(), Call{Tool: ToolSearch})
	if err != nil {
		t.Fatalf("missing query should not be a Go error: %v", err)
	}
	if out.Error == "" {
		t.Fatal("expected missing query error")
	}
}
