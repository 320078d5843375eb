package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every FitMate collector plus the Go runtime collectors.
var Registry = prometheus.NewRegistry()

var (
	planGenerations = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "fitmate_plan_generations_total",
		Help: "Plan generation requests by result.",
	}, []string{"result"})

	planGenerationSeconds = promauto.With(Registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "fitmate_plan_generation_seconds",
		Help:    "Time spent generating and storing a plan.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	mealStatusUpdates = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "fitmate_meal_status_updates_total",
		Help: "Planned meals marked done, skipped or swapped.",
	}, []string{"status"})

	llmTokens = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "fitmate_llm_tokens_total",
		Help: "Tokens consumed by catalog tagging and recipe import.",
	}, []string{"model"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveGeneration counts one generation and its latency.
func ObserveGeneration(success bool, latency time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	planGenerations.WithLabelValues(result).Inc()
	planGenerationSeconds.Observe(latency.Seconds())
}

// ObserveStatusUpdate counts a change to a planned meal.
func ObserveStatusUpdate(status string) {
	mealStatusUpdates.WithLabelValues(status).Inc()
}

// ObserveLLMTokens adds the tokens of one model call.
func ObserveLLMTokens(model string, tokens int) {
	if tokens <= 0 {
		return
	}
	if model == "" {
		model = "unknown"
	}
	llmTokens.WithLabelValues(model).Add(float64(tokens))
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
