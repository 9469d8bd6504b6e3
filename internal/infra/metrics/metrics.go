package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Notification fan-out
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "administration_notifications_total",
			Help: "Federation notifications pushed to member platforms by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	NotificationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "administration_notification_duration_seconds",
			Help:    "Latency of a single push to a member federation manager",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	NotificationQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "administration_notification_queue_depth",
			Help: "Fan-outs waiting in the async dispatcher",
		},
	)

	// API
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "administration_api_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "administration_api_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Authority
	OwnershipChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "administration_ownership_checks_total",
			Help: "Ownership gate decisions by outcome",
		},
		[]string{"outcome"},
	)

	RateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "administration_rate_limited_total",
			Help: "Requests rejected by the rate limiter by route",
		},
		[]string{"route"},
	)
)

func init() {
	prometheus.MustRegister(NotificationsTotal)
	prometheus.MustRegister(NotificationDuration)
	prometheus.MustRegister(NotificationQueueDepth)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(OwnershipChecksTotal)
	prometheus.MustRegister(RateLimitedTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Ownership adapts the ownership counter to the gate's observer hook.
type Ownership struct{}

func (Ownership) ObserveOwnershipCheck(outcome string) {
	OwnershipChecksTotal.WithLabelValues(outcome).Inc()
}

// Timer measures one operation.
type Timer struct {
	start time.Time
}

func NewTimer() Timer {
	return Timer{start: time.Now()}
}

func (t Timer) ObserveDurationVec(h *prometheus.HistogramVec, labels ...string) {
	h.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}
