package grest

import (
	"context"

	"github.com/kroma-labs/grest/httpclient"
)

// Transport executes one request configuration.
//
// A non-2xx answer must be reported as an error wrapping *httpclient.StatusError;
// any other error is treated as a network failure. *httpclient.Client
// implements Transport.
type Transport interface {
	Do(ctx context.Context, cfg httpclient.RequestConfig) (*httpclient.Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, cfg httpclient.RequestConfig) (*httpclient.Response, error)

// Do calls f.
func (f TransportFunc) Do(ctx context.Context, cfg httpclient.RequestConfig) (*httpclient.Response, error) {
	return f(ctx, cfg)
}

var _ Transport = (*httpclient.Client)(nil)
