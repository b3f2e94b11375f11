package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stashctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stashctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	cycleSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stashctl",
			Subsystem: "saveload",
			Name:      "cycle_steps_total",
			Help:      "Cycle starts handled, by the step they ran.",
		},
		[]string{"key", "step"},
	)
	sessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stashctl",
			Subsystem: "saveload",
			Name:      "sessions_total",
			Help:      "Finished save/load sessions.",
		},
		[]string{"key", "kind", "outcome"},
	)
	units = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stashctl",
			Subsystem: "saveload",
			Name:      "units_total",
			Help:      "Packed units moved through the channel pair.",
		},
		[]string{"key", "direction"},
	)
	hostErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stashctl",
			Subsystem: "saveload",
			Name:      "host_errors_total",
			Help:      "Host operations that failed and were absorbed.",
		},
		[]string{"key", "op"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, cycleSteps, sessions, units, hostErrors)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordCycleStep(key, step string) {
	RegisterMetrics()
	cycleSteps.WithLabelValues(key, step).Inc()
}

func RecordSession(key, kind, outcome string) {
	RegisterMetrics()
	sessions.WithLabelValues(key, kind, outcome).Inc()
}

func RecordUnits(key, direction string, n int) {
	RegisterMetrics()
	units.WithLabelValues(key, direction).Add(float64(n))
}

func RecordHostError(key, op string) {
	RegisterMetrics()
	hostErrors.WithLabelValues(key, op).Inc()
}
