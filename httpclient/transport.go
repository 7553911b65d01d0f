package httpclient

import (
	"net/http"
	"net/http/httptrace"
	"net/url"
	"slices"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var _ http.RoundTripper = (*instrumentedTransport)(nil)

// telemetry is the tracing and metrics state shared by every round trip of
// a Client.
type telemetry struct {
	tracer      trace.Tracer
	propagators propagation.TextMapPropagator
	spanName    SpanNameFormatter
	filters     []Filter
	netTrace    bool
	attrs       []attribute.KeyValue
	inst        *instruments
}

func newTelemetry(cfg *internalConfig) *telemetry {
	tel := &telemetry{
		tracer:      cfg.tracerProvider.Tracer(scope),
		propagators: cfg.propagators,
		spanName:    cfg.spanName,
		filters:     cfg.filters,
		netTrace:    cfg.netTrace,
	}
	if cfg.name != "" {
		tel.attrs = []attribute.KeyValue{attribute.String("http.client.name", cfg.name)}
	}
	// inst stays nil when the meter rejects an instrument.
	tel.inst, _ = newInstruments(cfg.meterProvider.Meter(scope))
	return tel
}

func (tel *telemetry) accepts(r *http.Request) bool {
	for _, f := range tel.filters {
		if !f(r) {
			return false
		}
	}
	return true
}

// instrumentedTransport opens a client span per request, injects trace
// context and records the http.client.* metrics.
type instrumentedTransport struct {
	next http.RoundTripper
	tel  *telemetry
}

func instrument(next http.RoundTripper, tel *telemetry) *instrumentedTransport {
	return &instrumentedTransport{next: next, tel: tel}
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tel := t.tel
	if !tel.accepts(req) {
		return t.next.RoundTrip(req)
	}

	start := time.Now()
	ctx, span := tel.tracer.Start(req.Context(), tel.spanName(req.Method, req),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(tel.requestAttrs(req)...),
	)
	defer span.End()

	// RoundTrippers must not modify the caller's request.
	req = req.Clone(ctx)
	tel.propagators.Inject(ctx, propagation.HeaderCarrier(req.Header))

	tel.inst.track(ctx, 1, tel.attrs)
	defer tel.inst.track(ctx, -1, tel.attrs)
	tel.inst.body(ctx, outbound, req.ContentLength, tel.attrs)

	var nt *netTrace
	if tel.netTrace {
		nt = &netTrace{}
		req = req.WithContext(httptrace.WithClientTrace(ctx, nt.hooks()))
	}

	resp, err := t.next.RoundTrip(req)
	elapsed := time.Since(start)

	if nt != nil {
		nt.annotate(span)
		nt.record(ctx, tel.inst, tel.attrs)
	}

	if err != nil {
		kind := classifyError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.type", kind))
		tel.inst.failure(ctx, kind, tel.attrs)
		tel.inst.call(ctx, elapsed, tel.durationAttrs(req, 0, kind))
		return nil, err
	}

	span.SetAttributes(responseAttrs(resp)...)
	kind := statusErrorType(resp.StatusCode)
	if kind != "" {
		span.SetStatus(codes.Error, "HTTP "+kind)
		span.SetAttributes(attribute.String("error.type", kind))
	}

	tel.inst.body(ctx, inbound, resp.ContentLength, tel.attrs)
	tel.inst.call(ctx, elapsed, tel.durationAttrs(req, resp.StatusCode, kind))

	return resp, nil
}

func (tel *telemetry) requestAttrs(req *http.Request) []attribute.KeyValue {
	attrs := append(slices.Clone(tel.attrs), attribute.String("http.request.method", req.Method))
	if req.URL != nil {
		attrs = append(attrs,
			attribute.String("url.full", req.URL.Redacted()),
			attribute.String("url.scheme", req.URL.Scheme),
		)
		attrs = appendServer(attrs, req.URL)
	}
	if req.ContentLength > 0 {
		attrs = append(attrs, attribute.Int64("http.request.body.size", req.ContentLength))
	}
	if ua := req.UserAgent(); ua != "" {
		attrs = append(attrs, attribute.String("user_agent.original", ua))
	}
	return attrs
}

// durationAttrs are the attributes of http.client.request.duration. status
// is zero and kind is set when no response arrived.
func (tel *telemetry) durationAttrs(req *http.Request, status int, kind string) []attribute.KeyValue {
	attrs := append(slices.Clone(tel.attrs), attribute.String("http.request.method", req.Method))
	if req.URL != nil {
		attrs = appendServer(attrs, req.URL)
	}
	if status > 0 {
		attrs = append(attrs, attribute.Int("http.response.status_code", status))
	}
	if kind != "" {
		attrs = append(attrs, attribute.String("error.type", kind))
	}
	return attrs
}

func responseAttrs(resp *http.Response) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.Int("http.response.status_code", resp.StatusCode)}
	if resp.ContentLength > 0 {
		attrs = append(attrs, attribute.Int64("http.response.body.size", resp.ContentLength))
	}
	if v := protocolVersion(resp); v != "" {
		attrs = append(attrs, attribute.String("network.protocol.version", v))
	}
	return attrs
}

// protocolVersion renders HTTP/1.1 as "1.1" and HTTP/2.0 as "2".
func protocolVersion(resp *http.Response) string {
	switch {
	case resp.ProtoMajor == 0:
		return ""
	case resp.ProtoMajor >= 2 && resp.ProtoMinor == 0:
		return strconv.Itoa(resp.ProtoMajor)
	default:
		return strconv.Itoa(resp.ProtoMajor) + "." + strconv.Itoa(resp.ProtoMinor)
	}
}

var defaultPorts = map[string]string{"http": "80", "https": "443"}

func appendServer(attrs []attribute.KeyValue, u *url.URL) []attribute.KeyValue {
	if host := u.Hostname(); host != "" {
		attrs = append(attrs, attribute.String("server.address", host))
	}
	port := u.Port()
	if port == "" {
		port = defaultPorts[u.Scheme]
	}
	if p, err := strconv.Atoi(port); err == nil {
		attrs = append(attrs, attribute.Int("server.port", p))
	}
	return attrs
}
