package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
	nodex "github.com/tanpawarit/trip-planner-agent/agent/nodes"
	statex "github.com/tanpawarit/trip-planner-agent/agent/state"
	"github.com/tanpawarit/trip-planner-agent/agent/telemetry"
)

type Option func(*Coordinator)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Coordinator) {
		c.log = l
	}
}

func WithSink(s telemetry.Sink) Option {
	return func(c *Coordinator) {
		if s != nil {
			c.sink = s
		}
	}
}

// WithSessionStore snapshots the session after every iteration.
func WithSessionStore(s statex.SessionStore) Option {
	return func(c *Coordinator) {
		c.sessions = s
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(c *Coordinator) {
		if newID != nil {
			c.newID = newID
		}
	}
}

// Coordinator runs the bounded plan, book, analyze loop over a registry of
// specialists.
type Coordinator struct {
	models   contractx.Registry
	memory   contractx.MemoryStore
	policy   Policy
	sink     telemetry.Sink
	sessions statex.SessionStore
	log      zerolog.Logger

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now   func() time.Time
	newID func() string
}

func New(
	models contractx.Registry,
	memory contractx.MemoryStore,
	policy Policy,
	opts ...Option,
) (*Coordinator, error) {
	if models == nil {
		return nil, errors.New("specialist registry is required")
	}
	if models.Planner() == nil || models.Booking() == nil || models.Budget() == nil {
		return nil, errors.New("specialist registry is incomplete")
	}
	if memory == nil {
		memory = statex.NewMemoryBank()
	}
	if policy.HistoryLimit == 0 {
		policy.HistoryLimit = statex.DefaultHistoryLimit
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	c := &Coordinator{
		models: models,
		memory: memory,
		policy: policy,
		sink:   telemetry.Nop{},
		log:    zerolog.Nop(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	graphRunner, err := c.compileIterationGraph(context.Background())
	if err != nil {
		return nil, err
	}
	c.graphRunner = graphRunner

	return c, nil
}

func (c *Coordinator) Policy() Policy {
	return c.policy
}

func (c *Coordinator) Memory() contractx.MemoryStore {
	return c.memory
}

// ProcessRequest runs up to maxIterations attempts and returns the first
// itinerary that satisfies the success predicate. A non-positive
// maxIterations falls back to the policy bound. On exhaustion the error is a
// *BudgetUnsatisfiableError.
func (c *Coordinator) ProcessRequest(ctx context.Context, req contractx.Requirements, maxIterations int) (*contractx.Itinerary, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	n := maxIterations
	if n <= 0 {
		n = c.policy.MaxIterations
	}

	run := &requestRun{
		c:       c,
		req:     req,
		n:       n,
		id:      c.newID(),
		log:     c.log.With().Str("destination", req.Destination).Float64("budget", req.Budget).Logger(),
		started: c.now(),
	}
	run.session = statex.NewSession(run.id, req, n, run.started)
	return run.execute(ctx)
}

// requestRun is the mutable state of one ProcessRequest call.
type requestRun struct {
	c       *Coordinator
	req     contractx.Requirements
	n       int
	id      string
	log     zerolog.Logger
	session *statex.Session
	started time.Time

	lastIncomplete      bool
	lastTotal           float64
	consecutiveFailures int
}

func (r *requestRun) execute(ctx context.Context) (*contractx.Itinerary, error) {
	r.log.Info().Str("request_id", r.id).Int("max_iterations", r.n).Msg("coordinator.request_started")

	similar, err := r.c.memory.SimilarTrips(ctx, r.req.Destination)
	if err != nil {
		if ctx.Err() != nil {
			return nil, r.fail(ctx, 0, ctx.Err())
		}
		r.log.Warn().Err(err).Msg("coordinator.similar_trips_failed")
	}

	for k := 1; k <= r.n; k++ {
		if err := ctx.Err(); err != nil {
			return nil, r.fail(ctx, k-1, err)
		}
		r.emit(ctx, telemetry.Event{Kind: telemetry.KindIterationStarted, Iteration: k})

		out, err := r.c.graphRunner.Invoke(ctx, nodex.GraphInput{
			Requirements:   r.req,
			Iteration:      k,
			PreferCheapest: r.c.policy.preferCheapest(k),
			SimilarTrips:   similar,
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			return nil, r.fail(ctx, k, fmt.Errorf("iteration %d: %w", k, err))
		}

		if it, done, err := r.conclude(ctx, k, out); done {
			return it, err
		}
	}

	exhausted := &BudgetUnsatisfiableError{
		Destination:   r.req.Destination,
		Budget:        r.req.Budget,
		MaxIterations: r.n,
		Incomplete:    r.lastIncomplete,
		LastTotal:     r.lastTotal,
	}
	return nil, r.fail(ctx, r.n, exhausted)
}

// conclude records one iteration's outcome. done is true when the request
// has finished, successfully or not.
func (r *requestRun) conclude(ctx context.Context, k int, out nodex.GraphOutput) (*contractx.Itinerary, bool, error) {
	failures := r.logFailures(k, out.Failures)
	if failures > 0 {
		r.consecutiveFailures++
	} else {
		r.consecutiveFailures = 0
	}

	attempt := statex.Attempt{
		Iteration:  k,
		Activities: len(out.Activities),
		Options:    len(out.Options),
		Missing:    out.Missing,
	}
	for _, f := range out.Failures {
		attempt.Failures = append(attempt.Failures, f.Stage+": "+f.Err.Error())
	}

	var days []contractx.DayPlan
	switch {
	case out.Incomplete:
		attempt.Outcome = telemetry.OutcomeIncomplete
		r.lastIncomplete = true
	default:
		r.lastIncomplete = false
		r.lastTotal = out.Budget.Total
		attempt.TotalCost = out.Budget.Total
		days = contractx.GroupByDay(out.Activities, r.req.DurationDays, r.req.Interests)
		switch {
		case !out.Budget.WithinBudget:
			attempt.Outcome = telemetry.OutcomeOverBudget
		case r.c.policy.RequireDayCoverage && contractx.CoveredDays(days, r.req.DurationDays) != r.req.DurationDays:
			attempt.Outcome = telemetry.OutcomeUncovered
		default:
			attempt.Outcome = telemetry.OutcomeWithinBudget
		}
	}

	now := r.c.now()
	r.session.RecordAttempt(attempt, now)
	r.session.AddMessage(statex.RoleAssistant, string(contractx.AgentTypeCoordinator), describeAttempt(attempt), now)
	r.emit(ctx, telemetry.Event{
		Kind:         telemetry.KindIterationCompleted,
		Iteration:    k,
		Outcome:      attempt.Outcome,
		TotalCost:    attempt.TotalCost,
		Missing:      attempt.Missing,
		ToolFailures: failures,
	})

	if attempt.Outcome == telemetry.OutcomeWithinBudget {
		it := r.assemble(k, days, out)
		r.succeed(ctx, it)
		return it, true, nil
	}

	r.session.CompactHistory(r.c.policy.historyLimit())
	r.saveSession(ctx)

	if limit := r.c.policy.MaxConsecutiveToolFailures; limit > 0 && r.consecutiveFailures >= limit {
		err := fmt.Errorf("%w: %d consecutive iterations with failing specialist calls", contractx.ErrToolFailure, r.consecutiveFailures)
		return nil, true, r.fail(ctx, k, err)
	}
	if out.Incomplete && !r.c.policy.RetryOnIncomplete {
		err := fmt.Errorf("%w: missing %s in iteration %d", contractx.ErrIncompleteSpecialistResult, strings.Join(out.Missing, ", "), k)
		return nil, true, r.fail(ctx, k, err)
	}
	return nil, false, nil
}

func (r *requestRun) assemble(k int, days []contractx.DayPlan, out nodex.GraphOutput) *contractx.Itinerary {
	return &contractx.Itinerary{
		ID:             r.id,
		Requirements:   r.req,
		Days:           days,
		Budget:         out.Budget,
		Bookings:       append([]contractx.Accommodation(nil), out.Options...),
		CreatedAt:      r.c.now().UTC(),
		IterationCount: k,
		MaxIterations:  r.n,
	}
}

func (r *requestRun) succeed(ctx context.Context, it *contractx.Itinerary) {
	if err := r.c.memory.RecordTrip(ctx, it); err != nil {
		r.log.Warn().Err(err).Str("itinerary_id", it.ID).Msg("coordinator.record_trip_failed")
	}
	r.session.Finish(statex.SessionSucceeded, it.ID, r.c.now())
	r.saveSession(ctx)
	r.emit(ctx, telemetry.Event{
		Kind:        telemetry.KindRequestSucceeded,
		Iteration:   it.IterationCount,
		Outcome:     telemetry.OutcomeWithinBudget,
		TotalCost:   it.Budget.Total,
		ItineraryID: it.ID,
	})
}

func (r *requestRun) fail(ctx context.Context, k int, err error) error {
	r.session.Finish(statex.SessionFailed, "", r.c.now())
	r.saveSession(context.WithoutCancel(ctx))
	r.emit(context.WithoutCancel(ctx), telemetry.Event{
		Kind:      telemetry.KindRequestFailed,
		Iteration: k,
		TotalCost: r.lastTotal,
		Error:     err.Error(),
	})
	return err
}

func (r *requestRun) emit(ctx context.Context, e telemetry.Event) {
	e.RequestID = r.id
	e.Destination = r.req.Destination
	e.Budget = r.req.Budget
	e.MaxIterations = r.n
	e.Time = r.c.now().UTC()
	r.c.sink.Emit(ctx, e)
}

func (r *requestRun) saveSession(ctx context.Context) {
	if r.c.sessions == nil {
		return
	}
	if err := r.c.sessions.Save(ctx, r.session); err != nil {
		r.log.Warn().Err(err).Str("request_id", r.id).Msg("coordinator.save_session_failed")
	}
}

func (r *requestRun) logFailures(k int, failures []nodex.StageFailure) int {
	for _, f := range failures {
		r.log.Warn().
			Err(f.Err).
			Int("iteration", k).
			Str("stage", f.Stage).
			Msg("coordinator.specialist_failed")
	}
	return len(failures)
}

func describeAttempt(a statex.Attempt) string {
	switch a.Outcome {
	case telemetry.OutcomeIncomplete:
		return fmt.Sprintf("Iteration %d incomplete: missing %s", a.Iteration, strings.Join(a.Missing, ", "))
	case telemetry.OutcomeOverBudget:
		return fmt.Sprintf("Iteration %d over budget at $%.2f", a.Iteration, a.TotalCost)
	case telemetry.OutcomeUncovered:
		return fmt.Sprintf("Iteration %d within budget at $%.2f but days are uncovered", a.Iteration, a.TotalCost)
	default:
		return fmt.Sprintf("Iteration %d within budget at $%.2f", a.Iteration, a.TotalCost)
	}
}
