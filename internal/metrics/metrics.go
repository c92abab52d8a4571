package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for monitoring
var (
	RequestAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teesniper_http_attempts_total",
		Help: "HTTP attempts issued against the booking API by path and outcome",
	}, []string{"path", "outcome"})

	RequestRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teesniper_http_retries_total",
		Help: "Retries scheduled after a transient failure by path",
	}, []string{"path"})

	RetryDelay = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "teesniper_http_retry_delay_seconds",
		Help:    "Backoff delay applied before a retry",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 6), // 250ms .. 8s
	}, []string{"path"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "teesniper_http_request_seconds",
		Help:    "Latency of a single HTTP attempt",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"path"})

	PhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "teesniper_phase_seconds",
		Help:    "Time spent in each acquisition phase",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"phase", "status"})

	State = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "teesniper_state",
		Help: "Current acquisition state (0 idle, 1 awaiting token, 2 token ready, 3 booking, 4 succeeded, 5 failed)",
	})

	Runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "teesniper_runs_total",
		Help: "Finished acquisition runs by terminal state",
	}, []string{"state"})
)
