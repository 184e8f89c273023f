package tool

import (
	"fmt"
	"math"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

const (
	DefaultTransportCost = 100.0
	// Share of the overage suggested as a dining cut.
	diningTrimRatio = 0.3
)

// BudgetCalculator is the typed replacement for evaluating arithmetic snippets.
// It is a pure function of its input.
type BudgetCalculator struct {
	TransportCost float64
}

func NewBudgetCalculator(transportCost float64) BudgetCalculator {
	if transportCost < 0 || math.IsNaN(transportCost) {
		transportCost = DefaultTransportCost
	}
	return BudgetCalculator{TransportCost: transportCost}
}

func (c BudgetCalculator) Calculate(in contractx.BudgetInput) contractx.BudgetBreakdown {
	req := in.Requirements
	nights := req.DurationDays
	if nights <= 0 {
		nights = contractx.DefaultDurationDays
	}

	chosen, hasLodging := firstLodging(in.Accommodations)
	accommodation := 0.0
	if hasLodging {
		accommodation = chosen.Price * float64(nights)
	}

	activities, meals := 0.0, 0.0
	for _, a := range in.Activities {
		if a.IsMeal() {
			meals += a.Cost
		} else {
			activities += a.Cost
		}
	}

	transport := c.TransportCost
	total := accommodation + activities + meals + transport
	within := total <= req.Budget

	var suggestions []string
	if !within {
		overage := total - req.Budget
		if cheapest, ok := cheapestLodging(in.Accommodations); ok && hasLodging && cheapest.Price < chosen.Price {
			saving := (chosen.Price - cheapest.Price) * float64(nights)
			suggestions = append(suggestions, fmt.Sprintf("Consider %s to save $%.2f on accommodation", cheapest.Name, saving))
		}
		if meals > 0 {
			suggestions = append(suggestions, fmt.Sprintf("Reduce dining expenses by $%.2f", overage*diningTrimRatio))
		}
		suggestions = append(suggestions, fmt.Sprintf("Plan is $%.2f over the $%.2f budget", overage, req.Budget))
	}

	return contractx.BudgetBreakdown{
		Accommodation:      accommodation,
		Activities:         activities,
		Meals:              meals,
		Transportation:     transport,
		Total:              total,
		WithinBudget:       within,
		SavingsSuggestions: suggestions,
	}
}

func firstLodging(options []contractx.Accommodation) (contractx.Accommodation, bool) {
	for _, o := range options {
		if o.IsLodging() {
			return o, true
		}
	}
	return contractx.Accommodation{}, false
}

func cheapestLodging(options []contractx.Accommodation) (contractx.Accommodation, bool) {
	var best contractx.Accommodation
	found := false
	for _, o := range options {
		if !o.IsLodging() {
			continue
		}
		if !found || o.Price < best.Price {
			best = o
			found = true
		}
	}
	return best, found
}
