package observer

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kroma-labs/grest/grest"
)

// PrometheusObserver counts lifecycle messages by endpoint, method and status.
type PrometheusObserver struct {
	transitions *prometheus.CounterVec
}

// NewPrometheusObserver registers the grest_request_transitions_total counter
// with reg. A nil reg uses prometheus.DefaultRegisterer.
//
//	obs, err := observer.NewPrometheusObserver(nil, "billing")
//	if err != nil { ... }
//	api.Subscribe("prometheus", obs.Observe)
func NewPrometheusObserver(reg prometheus.Registerer, namespace string) (*PrometheusObserver, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "grest",
		Name:      "request_transitions_total",
		Help:      "Total number of request lifecycle transitions",
	}, []string{"endpoint", "method", "status"})

	if err := reg.Register(transitions); err != nil {
		return nil, err
	}

	return &PrometheusObserver{transitions: transitions}, nil
}

// Observe records msg. Pass it to grest.Client.Subscribe.
func (o *PrometheusObserver) Observe(msg grest.Message) {
	o.transitions.WithLabelValues(endpointLabel(msg.Endpoint), msg.Method, string(msg.Status)).Inc()
}

// MetricsHandler returns an http.Handler exposing g in the Prometheus text
// format. A nil g uses prometheus.DefaultGatherer.
//
//	mux.Handle("/metrics", observer.MetricsHandler(nil))
func MetricsHandler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
