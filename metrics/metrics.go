package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orderconfirm"

// ServerMetrics instruments the dispatcher HTTP surface and its channels
type ServerMetrics struct {
	Requests       *prometheus.CounterVec
	LatencyMS      *prometheus.HistogramVec
	ChannelResults *prometheus.CounterVec
}

// NewServerMetrics registers the collectors on reg. service becomes the
// metric subsystem, so it must be a valid identifier such as "dispatcher".
func NewServerMetrics(reg prometheus.Registerer, service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	channelResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "channel_results_total",
		Help:      "Notification channel outcomes.",
	}, []string{"channel", "outcome"})

	reg.MustRegister(requests, latency, channelResults)
	return &ServerMetrics{Requests: requests, LatencyMS: latency, ChannelResults: channelResults}
}

// ObserveChannel counts one channel outcome
func (m *ServerMetrics) ObserveChannel(channel string, success bool, skipped bool) {
	if m == nil {
		return
	}
	outcome := "failed"
	switch {
	case skipped:
		outcome = "skipped"
	case success:
		outcome = "sent"
	}
	m.ChannelResults.WithLabelValues(channel, outcome).Inc()
}

// Handler exposes the collectors gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
