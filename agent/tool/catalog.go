package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

const (
	ToolSearch          = "search"
	ToolCalculateBudget = "calculate_budget"
)

// Call is a tool invocation requested by a model.
type Call struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// Result carries either Output or Error, never both.
type Result struct {
	Tool   string `json:"tool"`
	Output any    `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

type Executor func(ctx context.Context, call Call) (Result, error)

// BuildForAgent returns the tool descriptions an LLM-backed specialist may
// call and the executor that serves them from provider.
func BuildForAgent(agentType contractx.AgentType, provider contractx.ToolProvider) ([]*schema.ToolInfo, Executor) {
	return Catalog(agentType), NewExecutor(agentType, provider)
}

func NewExecutor(agentType contractx.AgentType, provider contractx.ToolProvider) Executor {
	allowed := map[string]bool{}
	for _, info := range Catalog(agentType) {
		allowed[info.Name] = true
	}

	return func(ctx context.Context, call Call) (Result, error) {
		if !allowed[call.Tool] {
			return Result{
				Tool:  call.Tool,
				Error: fmt.Sprintf("tool=%s is unavailable for agent=%s", call.Tool, agentType),
			}, nil
		}

		switch call.Tool {
		case ToolSearch:
			q := contractx.SearchQuery{
				Query:      stringArg(call.Args, "query"),
				Interests:  stringsArg(call.Args, "interests"),
				MaxResults: intArg(call.Args, "max_results"),
			}
			if strings.TrimSpace(q.Query) == "" {
				return Result{Tool: call.Tool, Error: "query is required"}, nil
			}
			results, err := provider.Search(ctx, q)
			if err != nil {
				return Result{}, fmt.Errorf("%w: search %q: %v", contractx.ErrToolFailure, q.Query, err)
			}
			return Result{Tool: call.Tool, Output: results}, nil

		case ToolCalculateBudget:
			var in contractx.BudgetInput
			if err := decodeArgs(call.Args, &in); err != nil {
				return Result{Tool: call.Tool, Error: err.Error()}, nil
			}
			out, err := provider.CalculateBudget(ctx, in)
			if err != nil {
				return Result{}, fmt.Errorf("%w: calculate budget: %v", contractx.ErrToolFailure, err)
			}
			return Result{Tool: call.Tool, Output: out}, nil

		default:
			return Result{Tool: call.Tool, Error: "unknown tool"}, nil
		}
	}
}

func Catalog(agentType contractx.AgentType) []*schema.ToolInfo {
	search := &schema.ToolInfo{
		Name: ToolSearch,
		Desc: "Search the web for attractions, restaurants, hotels, and travel information.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query":       {Type: schema.String, Desc: "Search query, for example: things to do in Lisbon", Required: true},
			"max_results": {Type: schema.Integer, Desc: "Maximum number of results"},
			"interests": {
				Type:     schema.Array,
				Desc:     "Traveller interests used to bias attraction results",
				ElemInfo: &schema.ParameterInfo{Type: schema.String},
			},
		}),
	}

	switch agentType {
	case contractx.AgentTypeItinerary, contractx.AgentTypeBooking:
		return []*schema.ToolInfo{search}
	case contractx.AgentTypeBudget:
		return []*schema.ToolInfo{
			{
				Name: ToolCalculateBudget,
				Desc: "Compute a budget breakdown from requirements, activities, and accommodations.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"requirements":   {Type: schema.Object, Desc: "Trip requirements", Required: true},
					"activities":     {Type: schema.Array, Desc: "Planned activities", ElemInfo: &schema.ParameterInfo{Type: schema.Object}},
					"accommodations": {Type: schema.Array, Desc: "Booking options, first lodging is used", ElemInfo: &schema.ParameterInfo{Type: schema.Object}},
				}),
			},
		}
	default:
		return nil
	}
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func stringsArg(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func decodeArgs(args map[string]any, out any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode args: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode args: %w", err)
	}
	return nil
}
