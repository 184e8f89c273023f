package contract

import "context"

// ToolProvider is the capability set every specialist draws from. Mock and
// model-backed providers are interchangeable behind it.
type ToolProvider interface {
	Search(ctx context.Context, q SearchQuery) ([]SearchResult, error)
	CalculateBudget(ctx context.Context, in BudgetInput) (BudgetBreakdown, error)
}

// ItineraryPlanner returns activities that cover every day in
// 1..DurationDays, or none at all. A partial plan is never returned.
type ItineraryPlanner interface {
	Plan(ctx context.Context, req PlanRequest) ([]Activity, error)
}

type BookingHelper interface {
	FindOptions(ctx context.Context, req BookingRequest) ([]Accommodation, error)
}

type BudgetAnalyzer interface {
	Analyze(ctx context.Context, in BudgetInput) (BudgetBreakdown, error)
}

type Registry interface {
	Planner() ItineraryPlanner
	Booking() BookingHelper
	Budget() BudgetAnalyzer
}

// MemoryStore is the coordinator's long-term memory. Implementations must be
// safe for concurrent use.
type MemoryStore interface {
	RecordTrip(ctx context.Context, it *Itinerary) error
	SimilarTrips(ctx context.Context, destination string) ([]TripRecord, error)
	SetPreference(ctx context.Context, key string, value string) error
	Preference(ctx context.Context, key string) (string, bool, error)
}
