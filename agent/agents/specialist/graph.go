package specialist

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
	toolx "github.com/tanpawarit/trip-planner-agent/agent/tool"
)

func compileToolPlanningGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	graphName string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add tool planning prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add tool planning model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add tool planning edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add tool planning edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add tool planning edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile tool planning graph: %w", err)
	}
	return runner, nil
}

func compileStructuredLLMGraph[T any](
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	graphName string,
) (compose.Runnable[map[string]any, T], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	parser := schema.NewMessageJSONParser[T](&schema.MessageJSONParseConfig{
		ParseFrom: schema.MessageParseFromContent,
	})

	graph := compose.NewGraph[map[string]any, T]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add structured prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add structured model node: %w", err)
	}
	if err := graph.AddLambdaNode("parse_json", compose.MessageParser(parser)); err != nil {
		return nil, fmt.Errorf("add structured parser node: %w", err)
	}

	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add structured edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add structured edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", "parse_json"); err != nil {
		return nil, fmt.Errorf("add structured edge model->parse: %w", err)
	}
	if err := graph.AddEdge("parse_json", compose.END); err != nil {
		return nil, fmt.Errorf("add structured edge parse->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile structured graph: %w", err)
	}
	return runner, nil
}

type modelGraphState struct {
	Payload     map[string]any
	ToolResults []toolx.Result
}

// compileModelRuntimeGraph wires validate -> {gather_tools ->} finalize. The
// tool round is skipped when the caller already supplied tool results.
func compileModelRuntimeGraph[T any](
	ctx context.Context,
	name string,
	gather func(context.Context, map[string]any) ([]toolx.Result, error),
	finalize func(context.Context, map[string]any, []toolx.Result) (T, error),
) (compose.Runnable[map[string]any, T], error) {
	graph := compose.NewGraph[map[string]any, T]()

	if err := graph.AddLambdaNode("validate_and_prepare",
		compose.InvokableLambda(func(ctx context.Context, payload map[string]any) (*modelGraphState, error) {
			if _, ok := payload["requirements"]; !ok {
				return nil, fmt.Errorf("%w: requirements are required", contractx.ErrValidation)
			}
			state := &modelGraphState{Payload: payload}
			if prior, ok := payload["tool_results"].([]toolx.Result); ok {
				state.ToolResults = prior
			}
			return state, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add %s validate node: %w", name, err)
	}

	if err := graph.AddLambdaNode("gather_tools",
		compose.InvokableLambda(func(ctx context.Context, in *modelGraphState) (*modelGraphState, error) {
			results, err := gather(ctx, in.Payload)
			if err != nil {
				return nil, err
			}
			in.ToolResults = results
			return in, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add %s gather node: %w", name, err)
	}

	if err := graph.AddLambdaNode("finalize",
		compose.InvokableLambda(func(ctx context.Context, in *modelGraphState) (T, error) {
			return finalize(ctx, in.Payload, in.ToolResults)
		}),
	); err != nil {
		return nil, fmt.Errorf("add %s finalize node: %w", name, err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *modelGraphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: %s graph state is nil", contractx.ErrValidation, name)
			}
			if len(in.ToolResults) == 0 {
				return "gather_tools", nil
			}
			return "finalize", nil
		},
		map[string]bool{
			"gather_tools": true,
			"finalize":     true,
		},
	)

	if err := graph.AddEdge(compose.START, "validate_and_prepare"); err != nil {
		return nil, fmt.Errorf("add %s edge start->validate: %w", name, err)
	}
	if err := graph.AddBranch("validate_and_prepare", branch); err != nil {
		return nil, fmt.Errorf("add %s branch: %w", name, err)
	}
	if err := graph.AddEdge("gather_tools", "finalize"); err != nil {
		return nil, fmt.Errorf("add %s edge gather->finalize: %w", name, err)
	}
	if err := graph.AddEdge("finalize", compose.END); err != nil {
		return nil, fmt.Errorf("add %s edge finalize->end: %w", name, err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(name+".runtime_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile %s runtime graph: %w", name, err)
	}
	return runner, nil
}
