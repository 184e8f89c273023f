package tool

import (
	"context"
	"strings"
	"unicode"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

const defaultMaxResults = 5

var _ contractx.ToolProvider = (*MockProvider)(nil)

// MockProvider answers searches from a fixed catalog. Any of the three lists
// can be overridden; a nil list falls back to the built-in catalog and an
// empty non-nil list yields no results.
type MockProvider struct {
	Attractions []contractx.SearchResult
	Restaurants []contractx.SearchResult
	Hotels      []contractx.SearchResult

	calc BudgetCalculator
}

func NewMockProvider(calc BudgetCalculator) *MockProvider {
	return &MockProvider{calc: calc}
}

func (m *MockProvider) Search(ctx context.Context, q contractx.SearchQuery) ([]contractx.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := q.MaxResults
	if limit <= 0 {
		limit = defaultMaxResults
	}

	var results []contractx.SearchResult
	switch ClassifyQuery(q.Query) {
	case QueryRestaurants:
		results = pick(m.Restaurants, defaultRestaurants)
	case QueryHotels:
		results = pick(m.Hotels, defaultHotels)
	case QueryAttractions:
		base := pick(m.Attractions, defaultAttractions)
		results = make([]contractx.SearchResult, 0, len(base)+len(q.Interests))
		for _, interest := range q.Interests {
			if r, ok := interestAttraction(interest); ok {
				results = append(results, r)
			}
		}
		results = append(results, base...)
	default:
		results = []contractx.SearchResult{
			{Title: "Generic Search Result", Snippet: "Details about your query."},
		}
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return append([]contractx.SearchResult(nil), results...), nil
}

func (m *MockProvider) CalculateBudget(ctx context.Context, in contractx.BudgetInput) (contractx.BudgetBreakdown, error) {
	if err := ctx.Err(); err != nil {
		return contractx.BudgetBreakdown{}, err
	}
	return m.calc.Calculate(in), nil
}

type QueryKind int

const (
	QueryGeneric QueryKind = iota
	QueryAttractions
	QueryRestaurants
	QueryHotels
)

func ClassifyQuery(query string) QueryKind {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "restaurant"), strings.Contains(q, "food"), strings.Contains(q, "dining"):
		return QueryRestaurants
	case strings.Contains(q, "hotel"), strings.Contains(q, "hostel"), strings.Contains(q, "accommodation"), strings.Contains(q, "lodging"):
		return QueryHotels
	case strings.Contains(q, "things to do"), strings.Contains(q, "activities"), strings.Contains(q, "attraction"):
		return QueryAttractions
	default:
		return QueryGeneric
	}
}

func pick(override, fallback []contractx.SearchResult) []contractx.SearchResult {
	if override != nil {
		return override
	}
	return fallback
}

func interestAttraction(interest string) (contractx.SearchResult, bool) {
	tag := strings.TrimSpace(interest)
	if tag == "" {
		return contractx.SearchResult{}, false
	}
	runes := []rune(tag)
	runes[0] = unicode.ToUpper(runes[0])
	return contractx.SearchResult{
		Title:    string(runes) + " Highlights",
		Snippet:  "Curated " + strings.ToLower(tag) + " experience, $25 entry",
		Cost:     25,
		Category: strings.ToLower(tag),
	}, true
}

var defaultAttractions = []contractx.SearchResult{
	{Title: "Main Museum", Snippet: "Popular attraction, $25 entry", Cost: 25, Category: "sightseeing"},
	{Title: "Historic District Walking Tour", Snippet: "Free self-guided tour", Cost: 0, Category: "culture"},
	{Title: "Local Park", Snippet: "Beautiful gardens, free entry", Cost: 0, Category: "nature"},
}

var defaultRestaurants = []contractx.SearchResult{
	{Title: "Top Local Restaurant", Snippet: "Highly rated local cuisine, $30-50 per person", Cost: 40, Category: "meal"},
	{Title: "Casual Dining Spot", Snippet: "Family-friendly, $15-25 per person", Cost: 20, Category: "meal"},
	{Title: "Food Market", Snippet: "Local specialties, $10-20 per person", Cost: 15, Category: "meal"},
}

var defaultHotels = []contractx.SearchResult{
	{Title: "Downtown Hotel", Snippet: "$120/night, 4.5 stars", Cost: 120, Rating: 4.5, Category: "hotel"},
	{Title: "Budget Inn", Snippet: "$75/night, 3.5 stars", Cost: 75, Rating: 3.5, Category: "hotel"},
	{Title: "Luxury Resort", Snippet: "$250/night, 5 stars", Cost: 250, Rating: 5, Category: "resort"},
}
