package grest

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const scope = "github.com/kroma-labs/grest/grest"

// metrics holds the lifecycle instruments of a Client.
type metrics struct {
	// lifecycle counts Request transitions by endpoint, method and status.
	lifecycle metric.Int64Counter

	// callbackPanics counts recovered panics in OK/Fail callbacks.
	callbackPanics metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	m := &metrics{}
	var err error

	m.lifecycle, err = meter.Int64Counter(
		"grest.request.lifecycle",
		metric.WithDescription("Number of request lifecycle transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	m.callbackPanics, err = meter.Int64Counter(
		"grest.callback.panics",
		metric.WithDescription("Number of recovered panics in request callbacks"),
		metric.WithUnit("{panic}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *metrics) recordTransition(ctx context.Context, msg Message) {
	if m == nil || m.lifecycle == nil {
		return
	}
	m.lifecycle.Add(ctx, 1, metric.WithAttributes(
		attribute.String("grest.endpoint", msg.Endpoint),
		attribute.String("http.request.method", msg.Method),
		attribute.String("grest.status", string(msg.Status)),
	))
}

func (m *metrics) recordCallbackPanic(ctx context.Context, endpoint string, kind Status) {
	if m == nil || m.callbackPanics == nil {
		return
	}
	m.callbackPanics.Add(ctx, 1, metric.WithAttributes(
		attribute.String("grest.endpoint", endpoint),
		attribute.String("grest.callback", string(kind)),
	))
}
