// Package metrics provides Prometheus metrics for NetWatch.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/good-yellow-bee/netwatch/internal/models"
)

const (
	namespace = "netwatch"
)

// HTTP metrics
var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInFlight tracks concurrent HTTP requests.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)
)

// Alert metrics
var (
	// SamplesTotal counts classified samples by resulting severity.
	SamplesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "samples_total",
			Help:      "Total metric samples classified",
		},
		[]string{"severity"},
	)

	// AlertsRaisedTotal counts raised alerts.
	AlertsRaisedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "raised_total",
			Help:      "Total alerts raised",
		},
		[]string{"severity"},
	)

	// AlertsSuppressedTotal counts raises skipped by the duplicate policy.
	AlertsSuppressedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "suppressed_total",
			Help:      "Total alert raises suppressed by the duplicate policy",
		},
		[]string{"mode"},
	)

	// AlertsResolvedTotal counts resolved alerts.
	AlertsResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "resolved_total",
			Help:      "Total alerts resolved",
		},
		[]string{"via"}, // single, bulk
	)

	// AlertsActive tracks currently active alerts per severity.
	AlertsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "active",
			Help:      "Number of active alerts",
		},
		[]string{"severity"},
	)
)

// Threshold metrics
var (
	// ThresholdsConfigured tracks the number of configured metric types.
	ThresholdsConfigured = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "thresholds",
			Name:      "configured",
			Help:      "Number of configured metric thresholds",
		},
	)

	// ThresholdReloadsTotal counts threshold file reloads.
	ThresholdReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "thresholds",
			Name:      "reloads_total",
			Help:      "Total threshold file reloads",
		},
		[]string{"result"}, // success, failure
	)
)

// Access metrics
var (
	// AccessDeniedTotal counts authorization denials by action.
	AccessDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "access",
			Name:      "denied_total",
			Help:      "Total denied authorization checks",
		},
		[]string{"action", "role"},
	)
)

// Auth metrics
var (
	// AuthAttemptsTotal counts authentication attempts.
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Total authentication attempts",
		},
		[]string{"result"}, // success, failure, rate_limited
	)

	// AuthTokensIssued counts issued tokens.
	AuthTokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "tokens_issued_total",
			Help:      "Total access tokens issued",
		},
	)
)

// Notification metrics
var (
	// NotificationsTotal counts notification deliveries per channel.
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "total",
			Help:      "Total notification attempts",
		},
		[]string{"channel", "result"}, // sent, failed, rate_limited, dropped
	)

	// NotificationQueueDepth is the number of alerts waiting for delivery.
	NotificationQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "queue_depth",
			Help:      "Alerts waiting for notification delivery",
		},
	)
)

// Info metric
var (
	// BuildInfo exposes build information.
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information",
		},
		[]string{"version", "commit", "build_time"},
	)
)

// SetBuildInfo sets the build info metric.
func SetBuildInfo(version, commit, buildTime string) {
	BuildInfo.WithLabelValues(version, commit, buildTime).Set(1)
}

// SetActiveAlerts publishes active counts for every severity.
func SetActiveAlerts(counts map[models.Severity]int) {
	for _, severity := range models.Severities {
		AlertsActive.WithLabelValues(string(severity)).Set(float64(counts[severity]))
	}
}
