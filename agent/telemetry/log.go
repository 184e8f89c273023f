package telemetry

import (
	"context"

	"github.com/rs/zerolog"
)

type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(l zerolog.Logger) *LogSink {
	return &LogSink{log: l}
}

func (s *LogSink) Emit(_ context.Context, e Event) {
	var ev *zerolog.Event
	switch e.Kind {
	case KindRequestFailed:
		ev = s.log.Warn()
	case KindIterationStarted:
		ev = s.log.Debug()
	default:
		ev = s.log.Info()
	}

	ev = ev.
		Str("request_id", e.RequestID).
		Str("destination", e.Destination).
		Float64("budget", e.Budget).
		Int("iteration", e.Iteration).
		Int("max_iterations", e.MaxIterations)
	if e.Outcome != "" {
		ev = ev.Str("outcome", e.Outcome)
	}
	if e.Kind != KindIterationStarted {
		ev = ev.Float64("total_cost", e.TotalCost)
	}
	if len(e.Missing) > 0 {
		ev = ev.Strs("missing", e.Missing)
	}
	if e.ToolFailures > 0 {
		ev = ev.Int("tool_failures", e.ToolFailures)
	}
	if e.ItineraryID != "" {
		ev = ev.Str("itinerary_id", e.ItineraryID)
	}
	if e.Error != "" {
		ev = ev.Str("error", e.Error)
	}
	ev.Msg(string(e.Kind))
}
