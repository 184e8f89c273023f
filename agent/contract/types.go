package contract

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

type AgentType string

const (
	AgentTypeCoordinator AgentType = "coordinator"
	AgentTypeItinerary   AgentType = "itinerary_planner"
	AgentTypeBooking     AgentType = "booking_helper"
	AgentTypeBudget      AgentType = "budget_analyzer"
)

const (
	DefaultDurationDays            = 3
	DefaultTravelers               = 1
	DefaultAccommodationPreference = "hotel"
)

// Requirements is the traveller's request. It is treated as immutable for the
// lifetime of one ProcessRequest call.
type Requirements struct {
	Destination             string   `json:"destination"`
	Budget                  float64  `json:"budget"`
	Travelers               int      `json:"num_travelers"`
	DurationDays            int      `json:"duration_days"`
	Interests               []string `json:"interests"`
	AccommodationPreference string   `json:"accommodation_preference"`
	StartDate               string   `json:"start_date,omitempty"`
	EndDate                 string   `json:"end_date,omitempty"`
	DietaryRestrictions     []string `json:"dietary_restrictions,omitempty"`
}

// Normalize returns a copy with defaults applied and owned slices.
func (r Requirements) Normalize() Requirements {
	out := r
	out.Destination = strings.TrimSpace(r.Destination)
	if out.Travelers == 0 {
		out.Travelers = DefaultTravelers
	}
	if out.DurationDays == 0 {
		out.DurationDays = DefaultDurationDays
	}
	if strings.TrimSpace(out.AccommodationPreference) == "" {
		out.AccommodationPreference = DefaultAccommodationPreference
	}
	out.Interests = append([]string{}, r.Interests...)
	out.DietaryRestrictions = append([]string(nil), r.DietaryRestrictions...)
	return out
}

func (r Requirements) Validate() error {
	if strings.TrimSpace(r.Destination) == "" {
		return fmt.Errorf("%w: destination is required", ErrValidation)
	}
	if math.IsNaN(r.Budget) || math.IsInf(r.Budget, 0) {
		return fmt.Errorf("%w: budget must be a finite number", ErrValidation)
	}
	if r.Budget < 0 {
		return fmt.Errorf("%w: budget must be >= 0", ErrValidation)
	}
	if r.Travelers <= 0 {
		return fmt.Errorf("%w: num_travelers must be > 0", ErrValidation)
	}
	if r.DurationDays <= 0 {
		return fmt.Errorf("%w: duration_days must be > 0", ErrValidation)
	}
	return nil
}

type Activity struct {
	Day           int     `json:"day"`
	Time          string  `json:"time"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Cost          float64 `json:"estimated_cost"`
	DurationHours float64 `json:"duration_hours"`
	Description   string  `json:"description,omitempty"`
}

func (a Activity) IsMeal() bool {
	switch strings.ToLower(strings.TrimSpace(a.Category)) {
	case "meal", "food", "dining":
		return true
	}
	return false
}

// Accommodation is one booking option. Price is nightly for lodging and flat
// for everything else.
type Accommodation struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Price    float64  `json:"price"`
	Rating   float64  `json:"rating"`
	URL      string   `json:"url,omitempty"`
	Features []string `json:"features,omitempty"`
}

func (a Accommodation) IsLodging() bool {
	switch strings.ToLower(strings.TrimSpace(a.Type)) {
	case "flight", "train", "transfer":
		return false
	}
	return true
}

type BudgetBreakdown struct {
	Accommodation      float64  `json:"accommodation"`
	Activities         float64  `json:"activities"`
	Meals              float64  `json:"meals"`
	Transportation     float64  `json:"transportation"`
	Total              float64  `json:"total"`
	WithinBudget       bool     `json:"within_budget"`
	SavingsSuggestions []string `json:"savings_suggestions,omitempty"`
}

type DayPlan struct {
	Day        int        `json:"day_number"`
	Date       string     `json:"date"`
	Activities []Activity `json:"activities"`
	TotalCost  float64    `json:"total_cost"`
	Notes      string     `json:"notes,omitempty"`
}

type Itinerary struct {
	ID             string          `json:"id"`
	Requirements   Requirements    `json:"requirements"`
	Days           []DayPlan       `json:"days"`
	Budget         BudgetBreakdown `json:"budget"`
	Bookings       []Accommodation `json:"bookings"`
	CreatedAt      time.Time       `json:"created_at"`
	IterationCount int             `json:"iteration_count"`
	MaxIterations  int             `json:"max_iterations"`
}

// Activities flattens the day plans in day order.
func (it *Itinerary) Activities() []Activity {
	if it == nil {
		return nil
	}
	out := make([]Activity, 0, len(it.Days)*4)
	for _, d := range it.Days {
		out = append(out, d.Activities...)
	}
	return out
}

// GroupByDay buckets activities into day plans for days 1..days. Activities
// outside that range are kept in trailing plans so nothing is dropped.
func GroupByDay(activities []Activity, days int, interests []string) []DayPlan {
	byDay := make(map[int][]Activity, days)
	for _, a := range activities {
		byDay[a.Day] = append(byDay[a.Day], a)
	}

	keys := make([]int, 0, len(byDay))
	for d := range byDay {
		keys = append(keys, d)
	}
	sort.Ints(keys)

	focus := "exploration"
	if len(interests) > 0 {
		focus = interests[0]
	}

	plans := make([]DayPlan, 0, len(keys))
	for _, d := range keys {
		acts := byDay[d]
		total := 0.0
		for _, a := range acts {
			total += a.Cost
		}
		plans = append(plans, DayPlan{
			Day:        d,
			Date:       fmt.Sprintf("Day %d", d),
			Activities: acts,
			TotalCost:  total,
			Notes:      "Focus on " + focus,
		})
	}
	return plans
}

// CoveredDays counts distinct days in 1..duration that have at least one
// activity.
func CoveredDays(plans []DayPlan, duration int) int {
	seen := make(map[int]bool, len(plans))
	for _, p := range plans {
		if p.Day >= 1 && p.Day <= duration && len(p.Activities) > 0 {
			seen[p.Day] = true
		}
	}
	return len(seen)
}

// CoversEveryDay reports whether each day in 1..days has at least one
// activity.
func CoversEveryDay(activities []Activity, days int) bool {
	if days <= 0 {
		return false
	}
	seen := make(map[int]bool, days)
	for _, a := range activities {
		if a.Day >= 1 && a.Day <= days {
			seen[a.Day] = true
		}
	}
	return len(seen) == days
}

type SearchQuery struct {
	Query      string   `json:"query"`
	Interests  []string `json:"interests,omitempty"`
	MaxResults int      `json:"max_results,omitempty"`
}

// SearchResult is one hit. A non-empty Error marks a failed lookup carried
// through the result list instead of a Go error. Rating is on a 0-5 scale and
// zero when unknown.
type SearchResult struct {
	Title    string  `json:"title"`
	Snippet  string  `json:"snippet,omitempty"`
	Cost     float64 `json:"cost,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
	Category string  `json:"category,omitempty"`
	Error    string  `json:"error,omitempty"`
}

type PlanRequest struct {
	Requirements Requirements `json:"requirements"`
	Iteration    int          `json:"iteration"`
	SimilarTrips []TripRecord `json:"similar_trips,omitempty"`
}

type BookingRequest struct {
	Requirements   Requirements `json:"requirements"`
	Iteration      int          `json:"iteration"`
	PreferCheapest bool         `json:"prefer_cheapest,omitempty"`
}

type BudgetInput struct {
	Requirements   Requirements    `json:"requirements"`
	Activities     []Activity      `json:"activities"`
	Accommodations []Accommodation `json:"accommodations"`
}

// TripRecord is what the memory bank keeps about a completed trip.
type TripRecord struct {
	ItineraryID    string    `json:"itinerary_id"`
	Destination    string    `json:"destination"`
	Budget         float64   `json:"budget"`
	TotalCost      float64   `json:"total_cost"`
	Interests      []string  `json:"interests,omitempty"`
	IterationCount int       `json:"iteration_count"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewTripRecord(it *Itinerary) TripRecord {
	return TripRecord{
		ItineraryID:    it.ID,
		Destination:    it.Requirements.Destination,
		Budget:         it.Requirements.Budget,
		TotalCost:      it.Budget.Total,
		Interests:      append([]string(nil), it.Requirements.Interests...),
		IterationCount: it.IterationCount,
		CreatedAt:      it.CreatedAt,
	}
}

// MatchesDestination reports whether query is a case-insensitive substring of
// the recorded destination.
func (t TripRecord) MatchesDestination(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(t.Destination), q)
}
