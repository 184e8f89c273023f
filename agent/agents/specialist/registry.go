package specialist

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
	llmx "github.com/tanpawarit/trip-planner-agent/agent/llm"
	promptx "github.com/tanpawarit/trip-planner-agent/agent/prompt"
	openrouterx "github.com/tanpawarit/trip-planner-agent/pkg/openrouter"
)

type registryImpl struct {
	planner contractx.ItineraryPlanner
	booking contractx.BookingHelper
	budget  contractx.BudgetAnalyzer
}

func (r *registryImpl) Planner() contractx.ItineraryPlanner {
	return r.planner
}

func (r *registryImpl) Booking() contractx.BookingHelper {
	return r.booking
}

func (r *registryImpl) Budget() contractx.BudgetAnalyzer {
	return r.budget
}

// NewToolRegistry builds specialists that work directly off the provider.
func NewToolRegistry(provider contractx.ToolProvider) (contractx.Registry, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: tool provider is required", contractx.ErrValidation)
	}
	return &registryImpl{
		planner: newToolPlanner(provider),
		booking: newToolBooking(provider),
		budget:  newBudgetAnalyzer(provider),
	}, nil
}

// NewLLMRegistry builds model-backed itinerary and booking specialists. The
// budget analyzer stays on the typed calculator.
func NewLLMRegistry(ctx context.Context, cfg llmx.Config, provider contractx.ToolProvider) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	itineraryCfg := cfg.OpenRouterFor(contractx.AgentTypeItinerary)
	bookingCfg := cfg.OpenRouterFor(contractx.AgentTypeBooking)
	return newLLMRegistry(ctx, &itineraryCfg, &bookingCfg, provider)
}

func newLLMRegistry(
	ctx context.Context,
	itineraryBuilder openrouterx.ChatModelBuilder,
	bookingBuilder openrouterx.ChatModelBuilder,
	provider contractx.ToolProvider,
) (contractx.Registry, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: tool provider is required", contractx.ErrValidation)
	}
	prompts := promptx.LoadPromptSet()

	itineraryModel, err := itineraryBuilder.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create itinerary model: %v", contractx.ErrModelInvoke, err)
	}
	bookingModel, err := bookingBuilder.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create booking model: %v", contractx.ErrModelInvoke, err)
	}

	planner, err := newModelPlanner(ctx, itineraryModel, prompts.Itinerary, provider)
	if err != nil {
		return nil, err
	}
	booking, err := newModelBooking(ctx, bookingModel, prompts.Booking, provider)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		planner: planner,
		booking: booking,
		budget:  newBudgetAnalyzer(provider),
	}, nil
}
