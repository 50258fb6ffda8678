// Package metrics holds the prometheus collectors of the planning service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wayfarer"

// Search query statuses.
const (
	SearchOK    = "ok"
	SearchEmpty = "empty"
	SearchError = "error"
)

// Run outcomes.
const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeFailure = "failure"
)

// Metrics is safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	rounds        prometheus.Histogram
	searchQueries *prometheus.CounterVec
	llmTokens     *prometheus.CounterVec
	llmCost       *prometheus.CounterVec
	jsonRecovery  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_runs_total",
			Help:      "Planning runs by outcome (success, fallback, partial, error).",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_run_duration_seconds",
			Help:      "Wall time of one planning run.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		}),
		rounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_rounds",
			Help:      "Search and extract rounds per run.",
			Buckets:   []float64{1, 2, 3, 4, 5, 6},
		}),
		searchQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_queries_total",
			Help:      "Search queries by status (ok, empty, failed).",
		}, []string{"status"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "LLM tokens by stage and model.",
		}, []string{"stage", "model"}),
		llmCost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_cost_usd_total",
			Help:      "Estimated LLM spend in USD by stage.",
		}, []string{"stage"}),
		jsonRecovery: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "json_recovery_total",
			Help:      "Structured output recoveries by winning strategy.",
		}, []string{"strategy"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.runs, m.runDuration, m.rounds, m.searchQueries, m.llmTokens, m.llmCost, m.jsonRecovery,
	)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRun(outcome string, rounds int, took time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	m.rounds.Observe(float64(rounds))
	m.runDuration.Observe(took.Seconds())
}

func (m *Metrics) SearchQuery(status string) {
	if m == nil {
		return
	}
	m.searchQueries.WithLabelValues(status).Inc()
}

func (m *Metrics) LLMUsage(stage, model string, tokens int, costUSD float64) {
	if m == nil {
		return
	}
	m.llmTokens.WithLabelValues(stage, model).Add(float64(tokens))
	if costUSD > 0 {
		m.llmCost.WithLabelValues(stage).Add(costUSD)
	}
}

func (m *Metrics) JSONRecovery(strategy string) {
	if m == nil {
		return
	}
	m.jsonRecovery.WithLabelValues(strategy).Inc()
}
