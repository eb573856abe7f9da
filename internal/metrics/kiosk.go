package metrics

import "github.com/prometheus/client_golang/prometheus"

// Kiosk pipeline Prometheus metrics.
var (
	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kidprint",
			Name:      "decisions_total",
			Help:      "Pipeline decisions by outcome",
		},
		[]string{"decision"},
	)

	ListenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kidprint",
			Name:      "listen_total",
			Help:      "Listen cycles by result",
		},
		[]string{"result"}, // utterance / no_speech / failed
	)

	PrintsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kidprint",
			Name:      "prints_total",
			Help:      "Print jobs submitted to the print sink",
		},
		[]string{"status"},
	)

	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "kidprint",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of one listen-to-feedback cycle",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
	)

	QuotaRemaining = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "kidprint",
			Name:      "quota_remaining",
			Help:      "Prints remaining today",
		},
	)

	QuotaStoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kidprint",
			Name:      "quota_store_errors_total",
			Help:      "Quota persistence failures",
		},
		[]string{"op"}, // load / save
	)

	ContentBlockedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kidprint",
			Name:      "content_blocked_total",
			Help:      "Texts rejected by the content gate",
		},
		[]string{"reason"},
	)

	FeedbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kidprint",
			Name:      "feedback_total",
			Help:      "Feedback events by kind and delivery status",
		},
		[]string{"kind", "status"},
	)

	OpenAIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kidprint",
			Name:      "openai_requests_total",
			Help:      "Speech API requests by endpoint and status",
		},
		[]string{"endpoint", "status"}, // transcription / speech
	)

	OpenAIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kidprint",
			Name:      "openai_request_duration_seconds",
			Help:      "Speech API request latency",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16},
		},
		[]string{"endpoint"},
	)
)

var kioskMetricsRegistered bool

// RegisterKioskMetrics registers the pipeline metrics. Must be called once from main.
func RegisterKioskMetrics() {
	if kioskMetricsRegistered {
		return
	}
	prometheus.MustRegister(DecisionsTotal)
	prometheus.MustRegister(ListenTotal)
	prometheus.MustRegister(PrintsTotal)
	prometheus.MustRegister(CycleDuration)
	prometheus.MustRegister(QuotaRemaining)
	prometheus.MustRegister(QuotaStoreErrorsTotal)
	prometheus.MustRegister(ContentBlockedTotal)
	prometheus.MustRegister(FeedbackTotal)
	prometheus.MustRegister(OpenAIRequestsTotal)
	prometheus.MustRegister(OpenAIRequestDuration)
	kioskMetricsRegistered = true
}
