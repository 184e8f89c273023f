package specialist

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

const planSearchResults = 10

type daySlot struct {
	time     string
	label    string
	category string
	cost     float64
	hours    float64
	meal     bool
}

// Four slots per day. Costs are for the whole party and do not scale with
// the number of travelers.
var dayTemplate = []daySlot{
	{time: "morning", label: "Morning", category: "sightseeing", cost: 25, hours: 3},
	{time: "lunch", label: "Lunch", category: "meal", cost: 30, hours: 1.5, meal: true},
	{time: "afternoon", label: "Afternoon", category: "culture", cost: 20, hours: 3},
	{time: "dinner", label: "Dinner", category: "meal", cost: 45, hours: 2, meal: true},
}

var _ contractx.ItineraryPlanner = (*toolPlanner)(nil)

type toolPlanner struct {
	provider contractx.ToolProvider
}

func newToolPlanner(provider contractx.ToolProvider) *toolPlanner {
	return &toolPlanner{provider: provider}
}

// Plan fills every day with the four-slot template. It returns no activities
// when either search comes back empty.
func (p *toolPlanner) Plan(ctx context.Context, req contractx.PlanRequest) ([]contractx.Activity, error) {
	r := req.Requirements
	if strings.TrimSpace(r.Destination) == "" {
		return nil, fmt.Errorf("%w: destination is required", contractx.ErrValidation)
	}

	attractions, err := search(ctx, p.provider, contractx.SearchQuery{
		Query:      "things to do in " + r.Destination,
		Interests:  r.Interests,
		MaxResults: planSearchResults,
	})
	if err != nil {
		return nil, err
	}
	restaurants, err := search(ctx, p.provider, contractx.SearchQuery{
		Query:      "restaurants in " + r.Destination,
		MaxResults: planSearchResults,
	})
	if err != nil {
		return nil, err
	}
	if len(attractions) == 0 || len(restaurants) == 0 {
		return nil, nil
	}

	days := r.DurationDays
	if days <= 0 {
		days = contractx.DefaultDurationDays
	}

	out := make([]contractx.Activity, 0, days*len(dayTemplate))
	for day := 1; day <= days; day++ {
		sightIdx, mealIdx := 0, 0
		for _, slot := range dayTemplate {
			var src contractx.SearchResult
			if slot.meal {
				src = restaurants[(2*(day-1)+mealIdx)%len(restaurants)]
				mealIdx++
			} else {
				src = attractions[(2*(day-1)+sightIdx)%len(attractions)]
				sightIdx++
			}
			out = append(out, slotActivity(day, slot, src))
		}
	}
	return out, nil
}

func slotActivity(day int, slot daySlot, src contractx.SearchResult) contractx.Activity {
	a := contractx.Activity{
		Day:           day,
		Time:          slot.time,
		Category:      slot.category,
		Cost:          slot.cost,
		DurationHours: slot.hours,
		Description:   src.Snippet,
	}
	if slot.meal {
		a.Name = fmt.Sprintf("%s at %s", slot.label, src.Title)
		return a
	}
	if c := strings.TrimSpace(src.Category); c != "" {
		a.Category = strings.ToLower(c)
	}
	a.Name = fmt.Sprintf("%s: %s", slot.label, src.Title)
	return a
}
