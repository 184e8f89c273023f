package tool

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
	openrouterx "github.com/tanpawarit/trip-planner-agent/pkg/openrouter"
)

const (
	ProviderMock       = "mock"
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

type Config struct {
	Provider      string  `envconfig:"PROVIDER" default:"mock"`
	TransportCost float64 `split_words:"true" default:"100"`
	SearchModel   string  `split_words:"true"`
	GeminiAPIKey  string  `envconfig:"GEMINI_API_KEY"`
	GeminiModel   string  `split_words:"true" default:"gemini-1.5-flash"`
}

// NewProvider builds the configured provider. The returned close function is
// never nil.
func NewProvider(ctx context.Context, cfg Config, llm openrouterx.Config, searchPrompt string) (contractx.ToolProvider, func() error, error) {
	noop := func() error { return nil }
	calc := NewBudgetCalculator(cfg.TransportCost)

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderMock:
		return NewMockProvider(calc), noop, nil

	case ProviderOpenRouter:
		client := openrouterx.NewClient(llm)
		if client == nil {
			return nil, noop, fmt.Errorf("%w: openrouter api key is required for search", contractx.ErrValidation)
		}
		model := strings.TrimSpace(cfg.SearchModel)
		if model == "" {
			model = llm.Model
		}
		gen, err := NewOpenRouterGenerator(client, model)
		if err != nil {
			return nil, noop, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
		}
		p, err := NewModelSearchProvider(gen, searchPrompt, calc)
		return p, noop, err

	case ProviderGemini:
		gen, err := NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, noop, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
		}
		p, err := NewModelSearchProvider(gen, searchPrompt, calc)
		if err != nil {
			_ = gen.Close()
			return nil, noop, err
		}
		return p, gen.Close, nil

	default:
		return nil, noop, fmt.Errorf("%w: unknown tool provider %q", contractx.ErrValidation, cfg.Provider)
	}
}
