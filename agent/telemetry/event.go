package telemetry

import (
	"context"
	"sync"
	"time"
)

type Kind string

const (
	KindIterationStarted   Kind = "coordinator.iteration_started"
	KindIterationCompleted Kind = "coordinator.iteration_completed"
	KindRequestSucceeded   Kind = "coordinator.request_succeeded"
	KindRequestFailed      Kind = "coordinator.request_failed"
)

// Iteration outcomes.
const (
	OutcomeWithinBudget = "within_budget"
	OutcomeOverBudget   = "over_budget"
	OutcomeIncomplete   = "incomplete"
	OutcomeUncovered    = "days_uncovered"
)

type Event struct {
	Kind          Kind      `json:"kind"`
	RequestID     string    `json:"request_id"`
	Destination   string    `json:"destination"`
	Budget        float64   `json:"budget"`
	Iteration     int       `json:"iteration"`
	MaxIterations int       `json:"max_iterations"`
	Outcome       string    `json:"outcome,omitempty"`
	TotalCost     float64   `json:"total_cost,omitempty"`
	Missing       []string  `json:"missing,omitempty"`
	ToolFailures  int       `json:"tool_failures,omitempty"`
	ItineraryID   string    `json:"itinerary_id,omitempty"`
	Error         string    `json:"error,omitempty"`
	Time          time.Time `json:"time"`
}

// Terminal reports whether the event closes a request.
func (e Event) Terminal() bool {
	return e.Kind == KindRequestSucceeded || e.Kind == KindRequestFailed
}

// Sink receives coordinator events. Emit must not block the loop for long and
// never fails the request.
type Sink interface {
	Emit(ctx context.Context, e Event)
}

type Nop struct{}

func (Nop) Emit(context.Context, Event) {}

type multi []Sink

// Multi fans an event out to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multi) Emit(ctx context.Context, e Event) {
	for _, s := range m {
		s.Emit(ctx, e)
	}
}

// Recorder keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Emit(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) ByKind(kind Kind) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
