package tool

import (
	"context"
	"errors"
	"strings"

	openaisdk "github.com/openai/openai-go"
)

// OpenRouterGenerator runs chat completions through an OpenAI-compatible
// endpoint.
type OpenRouterGenerator struct {
	client *openaisdk.Client
	model  string
}

func NewOpenRouterGenerator(client *openaisdk.Client, model string) (*OpenRouterGenerator, error) {
	if client == nil {
		return nil, errors.New("openrouter search: client is nil")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("openrouter search: model is required")
	}
	return &OpenRouterGenerator{client: client, model: strings.TrimSpace(model)}, nil
}

func (g *OpenRouterGenerator) GenerateJSON(ctx context.Context, system, user string) (string, error) {
	resp, err := g.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(g.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(system),
			openaisdk.UserMessage(user),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openrouter search: no choices returned")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openrouter search: empty content")
	}
	return content, nil
}
