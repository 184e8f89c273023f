package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	qstashx "github.com/tanpawarit/trip-planner-agent/pkg/qstash"
)

func TestMultiSkipsNilAndFansOut(t *testing.T) {
	t.Parallel()

	a, b := &Recorder{}, &Recorder{}
	sink := Multi(a, nil, b, Nop{})
	sink.Emit(context.Background(), Event{Kind: KindIterationStarted, Iteration: 1})

	if len(a.Events()) != 1 || len(b.Events()) != 1 {
		t.Fatalf("fan out failed: %d %d", len(a.Events()), len(b.Events()))
	}
	if len(a.ByKind(KindRequestFailed)) != 0 {
		t.Fatal("unexpected events of kind request_failed")
	}
}

func TestLogSinkWritesStructuredFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sink := NewLogSink(zerolog.New(&buf))
	sink.Emit(context.Background(), Event{
		Kind:        KindIterationCompleted,
		RequestID:   "r1",
		Destination: "Barcelona",
		Budget:      800,
		Iteration:   2,
		Outcome:     OutcomeOverBudget,
		TotalCost:   820,
	})

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if line["message"] != string(KindIterationCompleted) {
		t.Fatalf("unexpected message: %v", line["message"])
	}
	if line["iteration"] != float64(2) || line["outcome"] != OutcomeOverBudget || line["total_cost"] != float64(820) {
		t.Fatalf("unexpected fields: %v", line)
	}
}

func TestMetricsSinkAndHandler(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	ctx := context.Background()
	m.Emit(ctx, Event{Kind: KindIterationCompleted, Outcome: OutcomeIncomplete})
	m.Emit(ctx, Event{Kind: KindIterationCompleted, Outcome: OutcomeWithinBudget, TotalCost: 685})
	m.Emit(ctx, Event{Kind: KindRequestSucceeded, Iteration: 2})

	rr := httptest.NewRecorder()
	MetricsHandler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, want := range []string{
		`trip_planner_iterations_total{outcome="incomplete"} 1`,
		`trip_planner_iterations_total{outcome="within_budget"} 1`,
		`trip_planner_requests_total{result="succeeded"} 1`,
		"trip_planner_plan_total_cost_count 1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in metrics output:\n%s", want, out)
		}
	}

	if _, err := NewMetrics(reg); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

type fakePublisher struct {
	calls []any
	err   error
}

func (f *fakePublisher) PublishJSON(_ context.Context, _ string, payload any) (qstashx.PublishResponse, error) {
	f.calls = append(f.calls, payload)
	return qstashx.PublishResponse{MessageID: "msg-1"}, f.err
}

func TestPublishSinkOnlyForwardsTerminalEvents(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	sink := NewPublishSink(pub, "https://hooks.example.com/trips", zerolog.Nop())
	ctx := context.Background()

	sink.Emit(ctx, Event{Kind: KindIterationStarted})
	sink.Emit(ctx, Event{Kind: KindIterationCompleted})
	sink.Emit(ctx, Event{Kind: KindRequestFailed, Error: "budget unsatisfiable"})
	if len(pub.calls) != 1 {
		t.Fatalf("expected one publish, got %d", len(pub.calls))
	}

	pub.err = errors.New("qstash down")
	sink.Emit(ctx, Event{Kind: KindRequestSucceeded})
	if len(pub.calls) != 2 {
		t.Fatalf("expected publish attempt despite error, got %d", len(pub.calls))
	}

	NewPublishSink(pub, "", zerolog.Nop()).Emit(ctx, Event{Kind: KindRequestSucceeded})
	if len(pub.calls) != 2 {
		t.Fatal("sink without destination must not publish")
	}
}
