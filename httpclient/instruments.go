package httpclient

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// phase is one timed step of a round trip observed through httptrace.
type phase int

const (
	phaseDNS phase = iota
	phaseConnect
	phaseTLS
	phaseTTFB
	phaseCount
)

var phaseNames = [phaseCount]string{"dns", "connect", "tls", "ttfb"}

func (p phase) String() string { return phaseNames[p] }

// phaseMetrics describes the histogram recorded for each phase.
var phaseMetrics = [phaseCount]struct {
	name, description string
	bounds            []float64
}{
	phaseDNS:     {"http.client.dns.duration", "DNS lookup duration in seconds", fastBounds},
	phaseConnect: {"http.client.connect.duration", "TCP connect duration in seconds", fastBounds},
	phaseTLS:     {"http.client.tls.duration", "TLS handshake duration in seconds", fastBounds},
	phaseTTFB:    {"http.client.ttfb", "Time from request written to first response byte in seconds", callBounds},
}

var (
	callBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.075, 0.1, 0.25, 0.5, 0.75, 1, 2.5, 5, 7.5, 10}
	fastBounds = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}
	sizeBounds = []float64{0, 100, 1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024}
)

// direction selects the request or response body histogram.
type direction int

const (
	outbound direction = iota
	inbound
)

// instruments are the OpenTelemetry instruments of one Client.
// A nil *instruments records nothing.
type instruments struct {
	duration metric.Float64Histogram
	bodySize [2]metric.Int64Histogram
	phases   [phaseCount]metric.Float64Histogram
	inflight metric.Int64UpDownCounter
	failures metric.Int64Counter
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	inst := &instruments{}
	var errs []error

	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	inst.duration, err = meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("Duration of HTTP client requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(callBounds...),
	)
	collect(err)

	for dir, name := range map[direction]string{
		outbound: "http.client.request.body.size",
		inbound:  "http.client.response.body.size",
	} {
		inst.bodySize[dir], err = meter.Int64Histogram(name,
			metric.WithDescription("Size of HTTP client message bodies in bytes"),
			metric.WithUnit("By"),
			metric.WithExplicitBucketBoundaries(sizeBounds...),
		)
		collect(err)
	}

	for p, pm := range phaseMetrics {
		inst.phases[p], err = meter.Float64Histogram(pm.name,
			metric.WithDescription(pm.description),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(pm.bounds...),
		)
		collect(err)
	}

	inst.inflight, err = meter.Int64UpDownCounter(
		"http.client.active_requests",
		metric.WithDescription("Number of in-flight HTTP client requests"),
		metric.WithUnit("{request}"),
	)
	collect(err)

	inst.failures, err = meter.Int64Counter(
		"http.client.request.error",
		metric.WithDescription("Number of HTTP client requests that got no response"),
		metric.WithUnit("{error}"),
	)
	collect(err)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return inst, nil
}

func (inst *instruments) call(ctx context.Context, d time.Duration, attrs []attribute.KeyValue) {
	if inst == nil {
		return
	}
	inst.duration.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

func (inst *instruments) body(ctx context.Context, dir direction, size int64, attrs []attribute.KeyValue) {
	if inst == nil || size <= 0 {
		return
	}
	inst.bodySize[dir].Record(ctx, size, metric.WithAttributes(attrs...))
}

func (inst *instruments) phase(ctx context.Context, p phase, d time.Duration, attrs []attribute.KeyValue) {
	if inst == nil {
		return
	}
	inst.phases[p].Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

// track adds delta to the in-flight gauge.
func (inst *instruments) track(ctx context.Context, delta int64, attrs []attribute.KeyValue) {
	if inst == nil {
		return
	}
	inst.inflight.Add(ctx, delta, metric.WithAttributes(attrs...))
}

func (inst *instruments) failure(ctx context.Context, errorType string, attrs []attribute.KeyValue) {
	if inst == nil {
		return
	}
	all := make([]attribute.KeyValue, 0, len(attrs)+1)
	all = append(all, attribute.String("error.type", errorType))
	all = append(all, attrs...)
	inst.failures.Add(ctx, 1, metric.WithAttributes(all...))
}
