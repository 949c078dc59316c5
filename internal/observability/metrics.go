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
			Namespace: "padctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "padctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	adminCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "padctl",
			Subsystem: "admin",
			Name:      "commands_total",
			Help:      "Admin tool invocations by subcommand and outcome.",
		},
		[]string{"subcommand", "outcome", "code"},
	)
	adminDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "padctl",
			Subsystem: "admin",
			Name:      "command_duration_seconds",
			Help:      "Admin tool invocation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"subcommand", "outcome"},
	)
	padRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "padctl",
			Subsystem: "pad",
			Name:      "rejected_total",
			Help:      "Pad operations answered locally without invoking the admin tool.",
		},
		[]string{"operation", "reason"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, adminCommands, adminDuration, padRejections)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordAdminCommand counts one finished admin tool invocation.
func RecordAdminCommand(subcommand, outcome string, code int, duration time.Duration) {
	RegisterMetrics()
	adminCommands.WithLabelValues(subcommand, outcome, strconv.Itoa(code)).Inc()
	adminDuration.WithLabelValues(subcommand, outcome).Observe(duration.Seconds())
}

// RecordPadRejection counts a pad operation short-circuited before invocation.
func RecordPadRejection(operation, reason string) {
	RegisterMetrics()
	padRejections.WithLabelValues(operation, reason).Inc()
}
