package grest

import (
	"os"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/kroma-labs/grest/httpclient"
)

// clientConfig holds the construction-time settings of a Client.
type clientConfig struct {
	authorization string
	headers       map[string]string
	endpoints     []string
	transport     Transport
	httpOptions   []httpclient.Option
	logger        zerolog.Logger
	meterProvider metric.MeterProvider
}

func newClientConfig(opts ...Option) *clientConfig {
	cfg := &clientConfig{
		logger:        zerolog.New(os.Stderr).With().Timestamp().Logger(),
		meterProvider: otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.transport == nil {
		// Explicit httpclient options win over the inherited logger and meter.
		inherited := []httpclient.Option{
			httpclient.WithLogger(cfg.logger),
			httpclient.WithMeterProvider(cfg.meterProvider),
		}
		cfg.transport = httpclient.New(append(inherited, cfg.httpOptions...)...)
	}
	return cfg
}

// Option configures a Client.
type Option func(*clientConfig)

// WithAuthorization sets the Authorization value injected into calls that
// carry none of their own.
func WithAuthorization(value string) Option {
	return func(cfg *clientConfig) {
		cfg.authorization = value
	}
}

// WithHeaders sets the initial global headers. Empty values are ignored.
func WithHeaders(headers map[string]string) Option {
	return func(cfg *clientConfig) {
		if cfg.headers == nil {
			cfg.headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			cfg.headers[k] = v
		}
	}
}

// WithEndpoints registers endpoint names at construction.
// Accessor conflicts are logged and the conflicting names skipped;
// call Register directly to receive them as an error.
func WithEndpoints(names ...string) Option {
	return func(cfg *clientConfig) {
		cfg.endpoints = append(cfg.endpoints, names...)
	}
}

// WithTransport replaces the HTTP transport. WithHTTPClientOptions is
// ignored when a transport is set.
func WithTransport(t Transport) Option {
	return func(cfg *clientConfig) {
		cfg.transport = t
	}
}

// WithHTTPClientOptions forwards options to the default httpclient.Client.
//
//	client := grest.New("https://api.example.com",
//	    grest.WithHTTPClientOptions(
//	        httpclient.WithServiceName("billing"),
//	        httpclient.WithDebug(true),
//	    ),
//	)
func WithHTTPClientOptions(opts ...httpclient.Option) Option {
	return func(cfg *clientConfig) {
		cfg.httpOptions = append(cfg.httpOptions, opts...)
	}
}

// WithLogger sets the logger used for recovered panics and registration
// conflicts. Default: JSON lines on stderr with timestamps.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *clientConfig) {
		cfg.logger = logger
	}
}

// WithMeterProvider sets the MeterProvider for lifecycle metrics.
// Default: otel.GetMeterProvider().
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cfg *clientConfig) {
		if mp != nil {
			cfg.meterProvider = mp
		}
	}
}
