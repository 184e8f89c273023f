package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/tanpawarit/trip-planner-agent/agent/agents/coordinator"
	specialistx "github.com/tanpawarit/trip-planner-agent/agent/agents/specialist"
	"github.com/tanpawarit/trip-planner-agent/agent/archive"
	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
	"github.com/tanpawarit/trip-planner-agent/agent/eval"
	llmx "github.com/tanpawarit/trip-planner-agent/agent/llm"
	promptx "github.com/tanpawarit/trip-planner-agent/agent/prompt"
	"github.com/tanpawarit/trip-planner-agent/agent/report"
	statex "github.com/tanpawarit/trip-planner-agent/agent/state"
	"github.com/tanpawarit/trip-planner-agent/agent/telemetry"
	toolx "github.com/tanpawarit/trip-planner-agent/agent/tool"
	configx "github.com/tanpawarit/trip-planner-agent/pkg/config"
	logx "github.com/tanpawarit/trip-planner-agent/pkg/logger"
	qstashx "github.com/tanpawarit/trip-planner-agent/pkg/qstash"
)

const (
	modePlan = "plan"
	modeEval = "eval"
)

type cliFlags struct {
	envFile       string
	mode          string
	destination   string
	budget        float64
	days          int
	travelers     int
	interests     string
	preference    string
	maxIterations int
	out           string
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.envFile, "env", "", "path to .env file")
	flag.StringVar(&f.mode, "mode", modePlan, "plan or eval")
	flag.StringVar(&f.destination, "destination", "Barcelona, Spain", "trip destination")
	flag.Float64Var(&f.budget, "budget", 800, "total budget in USD")
	flag.IntVar(&f.days, "days", contractx.DefaultDurationDays, "trip length in days")
	flag.IntVar(&f.travelers, "travelers", contractx.DefaultTravelers, "number of travelers")
	flag.StringVar(&f.interests, "interests", "architecture,beach", "comma separated interests")
	flag.StringVar(&f.preference, "accommodation", "hostel", "accommodation preference")
	flag.IntVar(&f.maxIterations, "max-iterations", 0, "iteration bound, 0 uses COORDINATOR_MAX_ITERATIONS")
	flag.StringVar(&f.out, "out", "", "output directory, overrides ARCHIVE_DIR")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, f)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	log         zerolog.Logger
	coordinator *coordinator.Coordinator
	evaluator   *eval.Evaluator
	files       *archive.FileArchive
	archives    archive.Multi
	closers     []func() error
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn().Err(err).Msg("shutdown: close failed")
		}
	}
}

func run(ctx context.Context, f cliFlags) error {
	a, err := build(ctx, f)
	if err != nil {
		return err
	}
	defer a.close()

	switch strings.ToLower(strings.TrimSpace(f.mode)) {
	case modePlan:
		return a.plan(ctx, f)
	case modeEval:
		return a.evaluate(ctx)
	default:
		return fmt.Errorf("unknown mode %q", f.mode)
	}
}

func build(ctx context.Context, f cliFlags) (*app, error) {
	logCfg, err := configx.New[logx.Config]("LOG", f.envFile)
	if err != nil {
		return nil, err
	}
	log := logx.New(*logCfg)
	a := &app{log: log}

	policy, err := configx.New[coordinator.Policy]("COORDINATOR", f.envFile)
	if err != nil {
		return nil, err
	}
	evalPolicy, err := configx.New[eval.Policy]("EVAL", f.envFile)
	if err != nil {
		return nil, err
	}
	toolCfg, err := configx.New[toolx.Config]("TOOLS", f.envFile)
	if err != nil {
		return nil, err
	}
	llmCfg, err := configx.New[llmx.Config]("LLM", f.envFile)
	if err != nil {
		return nil, err
	}
	qstashCfg, err := configx.New[qstashx.Config]("QSTASH", f.envFile)
	if err != nil {
		return nil, err
	}
	upstashCfg, err := configx.New[statex.UpstashConfig]("UPSTASH", f.envFile)
	if err != nil {
		return nil, err
	}
	archiveCfg, err := configx.New[archive.Config]("ARCHIVE", f.envFile)
	if err != nil {
		return nil, err
	}
	metricsCfg, err := configx.New[telemetry.MetricsConfig]("METRICS", f.envFile)
	if err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()
	provider, closeProvider, err := toolx.NewProvider(ctx, *toolCfg, llmCfg.OpenRouterFor(contractx.AgentTypeCoordinator), prompts.Search)
	if err != nil {
		return nil, fmt.Errorf("tool provider: %w", err)
	}
	a.closers = append(a.closers, closeProvider)

	var models contractx.Registry
	if llmCfg.Enabled() {
		models, err = specialistx.NewLLMRegistry(ctx, *llmCfg, provider)
	} else {
		models, err = specialistx.NewToolRegistry(provider)
	}
	if err != nil {
		a.close()
		return nil, fmt.Errorf("specialists: %w", err)
	}
	log.Info().
		Str("provider", toolCfg.Provider).
		Bool("llm_specialists", llmCfg.Enabled()).
		Msg("specialists ready")

	var (
		memory   contractx.MemoryStore
		sessions statex.SessionStore
	)
	if upstashCfg.Enabled() {
		client, err := statex.NewUpstashClient(*upstashCfg)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("upstash: %w", err)
		}
		memory = statex.NewUpstashMemoryBank(client)
		sessions = statex.NewUpstashSessionStore(client)
	} else {
		memory = statex.NewMemoryBank()
	}

	registry := prometheus.NewRegistry()
	metrics, err := telemetry.NewMetrics(registry)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("metrics: %w", err)
	}
	telemetry.Serve(ctx, metricsCfg.Addr, registry, logx.Component(log, "metrics"))

	sinks := []telemetry.Sink{
		telemetry.NewLogSink(logx.Component(log, "telemetry")),
		metrics,
	}
	if qstashCfg.Enabled() {
		client, err := qstashx.NewClient(*qstashCfg)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("qstash: %w", err)
		}
		sinks = append(sinks, telemetry.NewPublishSink(client, qstashCfg.Destination, logx.Component(log, "publish")))
	}

	dir := archiveCfg.Dir
	if strings.TrimSpace(f.out) != "" {
		dir = f.out
	}
	a.files, err = archive.NewFileArchive(dir)
	if err != nil {
		a.close()
		return nil, err
	}
	a.archives = archive.Multi{a.files}

	if dsn := strings.TrimSpace(archiveCfg.PostgresDSN); dsn != "" {
		db, err := archive.OpenPostgres(dsn)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		pg, err := archive.NewPostgresArchive(db)
		if err != nil {
			a.close()
			return nil, err
		}
		if err := pg.CreateSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("postgres archive disabled")
		} else {
			a.archives = append(a.archives, pg)
			memory, err = archive.NewHistoryMemory(memory, pg, archiveCfg.HistoryLimit)
			if err != nil {
				a.close()
				return nil, err
			}
		}
	}

	a.coordinator, err = coordinator.New(models, memory, *policy,
		coordinator.WithLogger(logx.Component(log, "coordinator")),
		coordinator.WithSink(telemetry.Multi(sinks...)),
		coordinator.WithSessionStore(sessions),
	)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("coordinator: %w", err)
	}

	a.evaluator, err = eval.NewEvaluator(*evalPolicy)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("evaluator: %w", err)
	}

	return a, nil
}

func (a *app) plan(ctx context.Context, f cliFlags) error {
	req := contractx.Requirements{
		Destination:             f.destination,
		Budget:                  f.budget,
		Travelers:               f.travelers,
		DurationDays:            f.days,
		Interests:               splitList(f.interests),
		AccommodationPreference: f.preference,
	}

	it, err := a.coordinator.ProcessRequest(ctx, req, f.maxIterations)
	if err != nil {
		var bu *coordinator.BudgetUnsatisfiableError
		if errors.As(err, &bu) {
			a.log.Warn().
				Str("destination", bu.Destination).
				Float64("budget", bu.Budget).
				Float64("last_total", bu.LastTotal).
				Msg("no plan fits the budget")
		}
		return err
	}

	fmt.Println(report.FormatItinerary(it))

	if rep, err := a.evaluator.Evaluate(it, req); err == nil {
		fmt.Println(report.FormatScenario(eval.ScenarioResult{
			Name:         "Requested Trip",
			Passed:       rep.Passed,
			OverallScore: rep.Overall,
			Metrics:      rep.Metrics,
			Destination:  it.Requirements.Destination,
			Budget:       it.Requirements.Budget,
			ActualCost:   it.Budget.Total,
			Iterations:   it.IterationCount,
			Itinerary:    it,
		}))
	}

	if err := a.archives.SaveItinerary(ctx, it); err != nil {
		return fmt.Errorf("archive itinerary: %w", err)
	}
	a.log.Info().Str("path", a.files.ItineraryPath(it.ID)).Msg("itinerary saved")
	return nil
}

func (a *app) evaluate(ctx context.Context) error {
	suite, err := eval.NewSuite(a.coordinator, a.evaluator, eval.WithSuiteLogger(logx.Component(a.log, "evaluator")))
	if err != nil {
		return err
	}

	summary, err := suite.Run(ctx, eval.DefaultScenarios())
	if err != nil {
		return err
	}
	fmt.Println(report.FormatSummary(summary))

	for _, r := range summary.Scenarios {
		if r.Itinerary == nil {
			continue
		}
		if err := a.archives.SaveItinerary(ctx, r.Itinerary); err != nil {
			a.log.Warn().Err(err).Str("scenario", r.Name).Msg("archive itinerary failed")
		}
	}

	path, err := a.files.SaveEvaluation(ctx, summary)
	if err != nil {
		return fmt.Errorf("save evaluation: %w", err)
	}
	a.log.Info().Str("path", path).Int("passed", summary.Passed).Int("total", summary.TotalScenarios).Msg("evaluation saved")
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
