package httpclient

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// scope is the OpenTelemetry instrumentation scope of this package.
const scope = "github.com/kroma-labs/grest/httpclient"

// internalConfig is what the Options of New build up.
type internalConfig struct {
	// name is reported as http.client.name on spans and metrics.
	name string

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	propagators    propagation.TextMapPropagator
	spanName       SpanNameFormatter
	filters        []Filter
	netTrace       bool

	// base is wrapped by instrumentation; mock replaces it.
	base      http.RoundTripper
	mock      *MockTransport
	tlsConfig *tls.Config
	proxy     func(*http.Request) (*url.URL, error)

	interceptors InterceptorChain

	debug  bool
	curl   bool
	logger zerolog.Logger
}

func newConfig(opts ...Option) *internalConfig {
	cfg := &internalConfig{
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
		propagators: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
		spanName: defaultSpanName,
		netTrace: true,
		proxy:    http.ProxyFromEnvironment,
		logger:   zerolog.New(os.Stdout).With().Timestamp().Logger(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// roundTripper returns the innermost RoundTripper: the mock, the caller's
// base transport or a clone of http.DefaultTransport.
func (cfg *internalConfig) roundTripper() http.RoundTripper {
	switch {
	case cfg.mock != nil:
		return cfg.mock
	case cfg.base != nil:
		return cfg.base
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = cfg.tlsConfig
	transport.Proxy = cfg.proxy
	return transport
}

func defaultSpanName(method string, _ *http.Request) string {
	return "HTTP " + method
}

// Filter reports whether a request should be traced. Every filter must
// accept a request for it to get a span and metrics.
type Filter func(r *http.Request) bool

// SpanNameFormatter names the client span of a request.
// Default: "HTTP {METHOD}".
type SpanNameFormatter func(method string, r *http.Request) string

// Option configures a Client.
type Option func(*internalConfig)

// WithServiceName sets the http.client.name attribute of spans and metrics.
//
//	client := httpclient.New(httpclient.WithServiceName("billing-api"))
func WithServiceName(name string) Option {
	return func(cfg *internalConfig) {
		cfg.name = name
	}
}

// WithTracerProvider overrides otel.GetTracerProvider().
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cfg *internalConfig) {
		cfg.tracerProvider = tp
	}
}

// WithMeterProvider overrides otel.GetMeterProvider().
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *internalConfig) {
		cfg.meterProvider = mp
	}
}

// WithPropagators replaces the W3C TraceContext and Baggage propagators.
func WithPropagators(p propagation.TextMapPropagator) Option {
	return func(cfg *internalConfig) {
		cfg.propagators = p
	}
}

// WithSpanNameFormatter sets how client spans are named.
//
//	httpclient.WithSpanNameFormatter(func(method string, r *http.Request) string {
//	    return method + " " + r.URL.Path
//	})
func WithSpanNameFormatter(f SpanNameFormatter) Option {
	return func(cfg *internalConfig) {
		if f != nil {
			cfg.spanName = f
		}
	}
}

// WithFilter adds a tracing filter. Requests rejected by any filter are
// sent without a span or metrics.
//
//	httpclient.WithFilter(func(r *http.Request) bool {
//	    return !strings.HasPrefix(r.URL.Path, "/health")
//	})
func WithFilter(f Filter) Option {
	return func(cfg *internalConfig) {
		cfg.filters = append(cfg.filters, f)
	}
}

// WithDisableNetworkTrace turns off DNS, connect, TLS and first-byte timings.
func WithDisableNetworkTrace() Option {
	return func(cfg *internalConfig) {
		cfg.netTrace = false
	}
}

// WithBaseTransport sets the RoundTripper that instrumentation wraps.
// TLS and proxy options do not apply to it.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(cfg *internalConfig) {
		cfg.base = rt
	}
}

// WithMockTransport routes every request to mock. It wins over
// WithBaseTransport.
func WithMockTransport(mock *MockTransport) Option {
	return func(cfg *internalConfig) {
		cfg.mock = mock
	}
}

// WithTLSConfig sets the TLS configuration of the default transport.
//
//	cert, _ := tls.LoadX509KeyPair("client.crt", "client.key")
//	httpclient.WithTLSConfig(&tls.Config{Certificates: []tls.Certificate{cert}})
func WithTLSConfig(tlsCfg *tls.Config) Option {
	return func(cfg *internalConfig) {
		cfg.tlsConfig = tlsCfg
	}
}

// WithProxyURL sends every request through proxyURL.
func WithProxyURL(proxyURL *url.URL) Option {
	return func(cfg *internalConfig) {
		cfg.proxy = http.ProxyURL(proxyURL)
	}
}

// WithProxyFromEnvironment toggles HTTP_PROXY, HTTPS_PROXY and NO_PROXY
// handling. Enabled by default.
func WithProxyFromEnvironment(enabled bool) Option {
	return func(cfg *internalConfig) {
		if enabled {
			cfg.proxy = http.ProxyFromEnvironment
			return
		}
		cfg.proxy = nil
	}
}

// WithRequestInterceptor appends i. Request interceptors run in order after
// the request is built.
func WithRequestInterceptor(i RequestInterceptor) Option {
	return func(cfg *internalConfig) {
		cfg.interceptors.OnRequest(i)
	}
}

// WithResponseInterceptor appends i. Response interceptors run in order
// before the body is read.
func WithResponseInterceptor(i ResponseInterceptor) Option {
	return func(cfg *internalConfig) {
		cfg.interceptors.OnResponse(i)
	}
}

// WithDebug logs every request and response at debug level.
func WithDebug(enabled bool) Option {
	return func(cfg *internalConfig) {
		cfg.debug = enabled
	}
}

// WithGenerateCurl fills Response.CurlCommand.
func WithGenerateCurl(enabled bool) Option {
	return func(cfg *internalConfig) {
		cfg.curl = enabled
	}
}

// WithLogger sets the debug logger. Default: JSON lines on stdout.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *internalConfig) {
		cfg.logger = logger
	}
}
