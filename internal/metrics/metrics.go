package metrics

import (
	"net/http"
	"sync"
	"time"

	"alpha-signal/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysisRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alpha_signal_analysis_runs_total",
			Help: "Total number of analysis runs",
		},
		[]string{"status"}, // status: success|error|empty
	)

	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alpha_signal_analysis_duration_seconds",
			Help:    "Analysis run duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)

	SymbolsScored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alpha_signal_symbols_scored_total",
			Help: "Scored symbols by primary signal",
		},
		[]string{"signal"},
	)

	SymbolErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "alpha_signal_symbol_errors_total",
			Help: "Symbols that failed or timed out during analysis",
		},
	)

	SourceFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alpha_signal_source_fallbacks_total",
			Help: "Live source failures answered with a neutral snapshot",
		},
		[]string{"source"},
	)

	SourceLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alpha_signal_source_latency_seconds",
			Help:    "Live source fetch latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"source"},
	)

	PublishedMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alpha_signal_published_messages_total",
			Help: "Result messages written to Kafka",
		},
		[]string{"status"},
	)
)

var registerOnce sync.Once

// Init registers all collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(AnalysisRuns)
		prometheus.MustRegister(AnalysisDuration)
		prometheus.MustRegister(SymbolsScored)
		prometheus.MustRegister(SymbolErrors)
		prometheus.MustRegister(SourceFallbacks)
		prometheus.MustRegister(SourceLatency)
		prometheus.MustRegister(PublishedMessages)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordRun(duration time.Duration, results []domain.ScoringResult, symbolErrors int, err error) {
	AnalysisDuration.Observe(duration.Seconds())
	status := "success"
	switch {
	case err != nil && len(results) == 0:
		status = "empty"
		if symbolErrors > 0 {
			status = "error"
		}
	case err != nil:
		status = "error"
	}
	AnalysisRuns.WithLabelValues(status).Inc()
	for _, r := range results {
		SymbolsScored.WithLabelValues(string(r.Signal)).Inc()
	}
	SymbolErrors.Add(float64(symbolErrors))
}

func RecordFallback(source string) {
	SourceFallbacks.WithLabelValues(source).Inc()
}

func RecordSourceLatency(source string, d time.Duration) {
	SourceLatency.WithLabelValues(source).Observe(d.Seconds())
}

func RecordPublish(count int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	PublishedMessages.WithLabelValues(status).Add(float64(count))
}
