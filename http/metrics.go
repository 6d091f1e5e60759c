package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Domain events counted by warbler_events_total.
const (
	eventSignup         = "signup"
	eventLogin          = "login"
	eventLoginFailed    = "login_failed"
	eventLogout         = "logout"
	eventAccountDeleted = "account_deleted"
	eventFollow         = "follow"
	eventUnfollow       = "unfollow"
	eventMessagePosted  = "message_posted"
	eventMessageDeleted = "message_deleted"
	eventLike           = "like"
	eventUnlike         = "unlike"
)

// metrics owns its registry, so every Server exposes only its own collectors.
type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	events   *prometheus.CounterVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)
	return &metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warbler_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "warbler_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warbler_events_total",
			Help: "Total number of domain events by type",
		}, []string{"event"}),
	}
}

func (m *metrics) observeRequest(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *metrics) event(name string) {
	m.events.WithLabelValues(name).Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
