// Package metrics defines the Prometheus series exported by mega-user-proxy:
// inbound traffic on the proxy's own routes and outbound calls to the Mega
// user endpoint.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "mega_user_proxy"

// FailureReason labels an upstream lookup that produced no payload.
type FailureReason string

const (
	FailureTransport   FailureReason = "transport"
	FailureTooLarge    FailureReason = "too_large"
	FailureInvalidJSON FailureReason = "invalid_json"
	FailureRead        FailureReason = "read"
)

var failureReasons = []FailureReason{FailureTransport, FailureTooLarge, FailureInvalidJSON, FailureRead}

var (
	inboundBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	// 10ms to ~41s.
	upstreamBuckets = prometheus.ExponentialBuckets(0.01, 2, 13)
)

// Metrics is the collector set for one proxy process. Every collector is
// registered on Registry rather than the global default registry.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	UpstreamDuration  *prometheus.HistogramVec
	UpstreamResponses *prometheus.CounterVec
	UpstreamFailures  *prometheus.CounterVec
}

// New builds the collectors, registers them with the Go runtime and process
// collectors, and seeds every failure reason at zero.
func New() *Metrics {
	inbound := []string{"method", "status_code", "path_prefix"}

	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Requests served by the proxy, by route.",
		}, inbound),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "Time to answer a request, upstream call included.",
			Buckets: inboundBuckets,
		}, inbound),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_in_flight",
			Help: "Requests currently being answered.",
		}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "upstream", Name: "request_duration_seconds",
			Help:    "Round trip to the Mega user endpoint, headers only.",
			Buckets: upstreamBuckets,
		}, []string{"method"}),
		UpstreamResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "upstream", Name: "responses_total",
			Help: "Responses from the Mega user endpoint, by status code.",
		}, []string{"method", "status_code"}),
		UpstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "upstream", Name: "failures_total",
			Help: "User lookups that yielded no payload, by reason.",
		}, []string{"reason"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestsTotal,
		m.RequestDuration,
		m.RequestsInFlight,
		m.UpstreamDuration,
		m.UpstreamResponses,
		m.UpstreamFailures,
	)

	for _, r := range failureReasons {
		m.UpstreamFailures.WithLabelValues(string(r))
	}

	return m
}

// UpstreamFailed counts one failed lookup. It is a no-op on a nil receiver.
func (m *Metrics) UpstreamFailed(reason FailureReason) {
	if m == nil {
		return
	}
	m.UpstreamFailures.WithLabelValues(string(reason)).Inc()
}

// NormalizeMethod keeps the standard methods as-is and folds anything else
// into "other".
func NormalizeMethod(method string) string {
	switch method {
	case "GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS":
		return method
	}
	return "other"
}

var routes = map[string]bool{
	"/api/user":     true,
	"/healthz":      true,
	"/proxy/status": true,
	"/metrics":      true,
}

// NormalizePath maps a request path to the route it hit, or "other".
// A single trailing slash is ignored.
func NormalizePath(path string) string {
	if p := strings.TrimSuffix(path, "/"); routes[p] {
		return p
	}
	return "other"
}
