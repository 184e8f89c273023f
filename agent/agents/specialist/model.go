package specialist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
	toolx "github.com/tanpawarit/trip-planner-agent/agent/tool"
)

// modelSpecialist runs one tool round followed by a structured answer.
type modelSpecialist[T any] struct {
	agentType        contractx.AgentType
	toolRunner       compose.Runnable[map[string]any, *schema.Message]
	structuredRunner compose.Runnable[map[string]any, T]
	runtimeRunner    compose.Runnable[map[string]any, T]
	executor         toolx.Executor
	allowedTools     map[string]struct{}
}

func newModelSpecialist[T any](
	ctx context.Context,
	agentType contractx.AgentType,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	provider contractx.ToolProvider,
) (*modelSpecialist[T], error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: %s prompt", contractx.ErrPromptMissing, agentType)
	}
	name := string(agentType)

	structuredRunner, err := compileStructuredLLMGraph[T](ctx, chatModel, systemPrompt, name+".structured_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile structured graph for %s: %v", contractx.ErrModelInvoke, agentType, err)
	}

	tools, executor := toolx.BuildForAgent(agentType, provider)
	toolModel, err := chatModel.WithTools(tools)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for specialist=%s: %v", contractx.ErrModelInvoke, agentType, err)
	}
	toolRunner, err := compileToolPlanningGraph(ctx, toolModel, systemPrompt, name+".tool_planning_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile tool planning graph for %s: %v", contractx.ErrModelInvoke, agentType, err)
	}

	allowed := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		if t == nil || strings.TrimSpace(t.Name) == "" {
			continue
		}
		allowed[t.Name] = struct{}{}
	}

	s := &modelSpecialist[T]{
		agentType:        agentType,
		toolRunner:       toolRunner,
		structuredRunner: structuredRunner,
		executor:         executor,
		allowedTools:     allowed,
	}

	runtimeRunner, err := compileModelRuntimeGraph[T](ctx, name, s.gatherTools, s.finalize)
	if err != nil {
		return nil, fmt.Errorf("%w: compile runtime graph for %s: %v", contractx.ErrModelInvoke, agentType, err)
	}
	s.runtimeRunner = runtimeRunner
	return s, nil
}

func (s *modelSpecialist[T]) run(ctx context.Context, payload map[string]any) (T, error) {
	return s.runtimeRunner.Invoke(ctx, payload)
}

func (s *modelSpecialist[T]) gatherTools(ctx context.Context, payload map[string]any) ([]toolx.Result, error) {
	input, err := encodePayload("act", payload, nil)
	if err != nil {
		return nil, err
	}

	msg, err := s.toolRunner.Invoke(ctx, map[string]any{"input": input})
	if err != nil {
		return nil, fmt.Errorf("%w: tool planning invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: empty tool planning response", contractx.ErrSchemaViolation)
	}

	calls, err := toToolCalls(msg.ToolCalls)
	if err != nil {
		return nil, err
	}

	results := make([]toolx.Result, 0, len(calls))
	for _, call := range calls {
		if _, ok := s.allowedTools[call.Tool]; !ok {
			return nil, fmt.Errorf("%w: tool=%s is not allowed for agent=%s", contractx.ErrSchemaViolation, call.Tool, s.agentType)
		}
		res, err := s.executor(ctx, call)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !errors.Is(err, contractx.ErrToolFailure) {
				return nil, err
			}
			res = toolx.Result{Tool: call.Tool, Error: err.Error()}
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *modelSpecialist[T]) finalize(ctx context.Context, payload map[string]any, results []toolx.Result) (T, error) {
	var zero T
	input, err := encodePayload("finalize", payload, results)
	if err != nil {
		return zero, err
	}
	out, err := s.structuredRunner.Invoke(ctx, map[string]any{"input": input})
	if err != nil {
		return zero, fmt.Errorf("%w: %s invoke: %v", contractx.ErrSchemaViolation, s.agentType, err)
	}
	return out, nil
}

func encodePayload(mode string, payload map[string]any, results []toolx.Result) (string, error) {
	doc := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		doc[k] = v
	}
	doc["mode"] = mode
	if results != nil {
		doc["tool_results"] = results
	} else {
		delete(doc, "tool_results")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: marshal specialist payload: %v", contractx.ErrValidation, err)
	}
	return string(raw), nil
}

func toToolCalls(calls []schema.ToolCall) ([]toolx.Call, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	out := make([]toolx.Call, 0, len(calls))
	for _, call := range calls {
		name := strings.TrimSpace(call.Function.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}

		args := map[string]any{}
		rawArgs := strings.TrimSpace(call.Function.Arguments)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for %s: %v", contractx.ErrSchemaViolation, name, err)
			}
		}
		out = append(out, toolx.Call{Tool: name, Args: args})
	}
	return out, nil
}

type itineraryLLMOutput struct {
	Activities []contractx.Activity `json:"activities"`
}

type bookingLLMOutput struct {
	Options []contractx.Accommodation `json:"options"`
}

var _ contractx.ItineraryPlanner = (*modelPlanner)(nil)

type modelPlanner struct {
	inner *modelSpecialist[itineraryLLMOutput]
}

func newModelPlanner(ctx context.Context, chatModel einomodel.ToolCallingChatModel, systemPrompt string, provider contractx.ToolProvider) (*modelPlanner, error) {
	inner, err := newModelSpecialist[itineraryLLMOutput](ctx, contractx.AgentTypeItinerary, chatModel, systemPrompt, provider)
	if err != nil {
		return nil, err
	}
	return &modelPlanner{inner: inner}, nil
}

// Plan drops activities outside the trip's days or without a name. When what
// is left does not cover every day it returns no activities.
func (p *modelPlanner) Plan(ctx context.Context, req contractx.PlanRequest) ([]contractx.Activity, error) {
	out, err := p.inner.run(ctx, map[string]any{
		"requirements":  req.Requirements,
		"iteration":     req.Iteration,
		"similar_trips": req.SimilarTrips,
	})
	if err != nil {
		return nil, err
	}

	days := req.Requirements.DurationDays
	if days <= 0 {
		days = contractx.DefaultDurationDays
	}
	activities := make([]contractx.Activity, 0, len(out.Activities))
	for _, a := range out.Activities {
		if strings.TrimSpace(a.Name) == "" || a.Day < 1 || a.Day > days {
			continue
		}
		if a.Cost < 0 {
			a.Cost = 0
		}
		activities = append(activities, a)
	}
	if !contractx.CoversEveryDay(activities, days) {
		return nil, nil
	}
	return activities, nil
}

var _ contractx.BookingHelper = (*modelBooking)(nil)

type modelBooking struct {
	inner *modelSpecialist[bookingLLMOutput]
}

func newModelBooking(ctx context.Context, chatModel einomodel.ToolCallingChatModel, systemPrompt string, provider contractx.ToolProvider) (*modelBooking, error) {
	inner, err := newModelSpecialist[bookingLLMOutput](ctx, contractx.AgentTypeBooking, chatModel, systemPrompt, provider)
	if err != nil {
		return nil, err
	}
	return &modelBooking{inner: inner}, nil
}

func (b *modelBooking) FindOptions(ctx context.Context, req contractx.BookingRequest) ([]contractx.Accommodation, error) {
	out, err := b.inner.run(ctx, map[string]any{
		"requirements":    req.Requirements,
		"iteration":       req.Iteration,
		"prefer_cheapest": req.PreferCheapest,
	})
	if err != nil {
		return nil, err
	}

	options := make([]contractx.Accommodation, 0, len(out.Options))
	for _, o := range out.Options {
		if strings.TrimSpace(o.Name) == "" || o.Price < 0 {
			continue
		}
		o.Rating = clampRating(o.Rating)
		options = append(options, o)
	}
	RankOptions(options, req.Requirements.AccommodationPreference, req.PreferCheapest)
	return options, nil
}
