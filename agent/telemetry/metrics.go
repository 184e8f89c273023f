package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const namespace = "trip_planner"

type MetricsConfig struct {
	Addr string `envconfig:"ADDR"`
}

// Metrics counts iterations and requests. Collectors belong to the instance so
// several coordinators can live in one process.
type Metrics struct {
	iterations *prometheus.CounterVec
	requests   *prometheus.CounterVec
	attempts   prometheus.Histogram
	totalCost  prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		iterations: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "iterations_total", Help: "Coordinator iterations by outcome."},
			[]string{"outcome"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "requests_total", Help: "Planning requests by result."},
			[]string{"result"},
		),
		attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "request_iterations",
			Help:    "Iterations consumed per finished request.",
			Buckets: []float64{1, 2, 3, 4, 5, 10},
		}),
		totalCost: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "plan_total_cost",
			Help:    "Total cost of analyzed plans in USD.",
			Buckets: prometheus.ExponentialBuckets(100, 2, 8),
		}),
	}
	for _, c := range []prometheus.Collector{m.iterations, m.requests, m.attempts, m.totalCost} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Emit(_ context.Context, e Event) {
	switch e.Kind {
	case KindIterationCompleted:
		m.iterations.WithLabelValues(e.Outcome).Inc()
		if e.Outcome == OutcomeWithinBudget || e.Outcome == OutcomeOverBudget || e.Outcome == OutcomeUncovered {
			m.totalCost.Observe(e.TotalCost)
		}
	case KindRequestSucceeded:
		m.requests.WithLabelValues("succeeded").Inc()
		m.attempts.Observe(float64(e.Iteration))
	case KindRequestFailed:
		m.requests.WithLabelValues("failed").Inc()
		m.attempts.Observe(float64(e.Iteration))
	}
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done. An empty addr disables it.
func Serve(ctx context.Context, addr string, reg *prometheus.Registry, log zerolog.Logger) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}
