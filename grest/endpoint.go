package grest

import (
	"context"
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/kroma-labs/grest/httpclient"
)

// Endpoint is a named resource path under the Client base URL.
//
// Every call resolves the URL as base + name + "/" and merges the Client's
// headers and authorization at dispatch time, so later Client changes are
// picked up by later calls.
type Endpoint struct {
	name   string
	key    string
	client atomic.Pointer[Client]
}

func newEndpoint(c *Client, name, key string) *Endpoint {
	e := &Endpoint{name: name, key: key}
	e.client.Store(c)
	return e
}

// Name returns the endpoint name as registered.
func (e *Endpoint) Name() string {
	return e.name
}

// Key returns the accessor key the endpoint is registered under.
func (e *Endpoint) Key() string {
	return e.key
}

// URL returns the resolved endpoint URL, or "" once the Client is released.
func (e *Endpoint) URL() string {
	c := e.client.Load()
	if c == nil {
		return ""
	}
	return c.baseURL + e.name + "/"
}

// HTTP dispatches cfg against the endpoint URL. cfg.URL is ignored.
func (e *Endpoint) HTTP(ctx context.Context, cfg httpclient.RequestConfig, targets ...Target) *Request {
	c := e.client.Load()
	if c == nil {
		cfg = cfg.Clone()
		cfg.Method = normalizeMethod(cfg.Method)
		return failedRequest(e.name, cfg, &Error{
			Message: "endpoint " + e.name + " released",
			Err:     ErrReleased,
		})
	}
	return c.dispatch(ctx, e.name, c.baseURL+e.name+"/", cfg, targets)
}

// Get issues GET on the endpoint.
func (e *Endpoint) Get(ctx context.Context, targets ...Target) *Request {
	return e.HTTP(ctx, httpclient.RequestConfig{Method: "get"}, targets...)
}

// Delete issues DELETE on the endpoint.
func (e *Endpoint) Delete(ctx context.Context, targets ...Target) *Request {
	return e.HTTP(ctx, httpclient.RequestConfig{Method: "delete"}, targets...)
}

// Post issues POST on the endpoint with data as the body.
func (e *Endpoint) Post(ctx context.Context, data any, targets ...Target) *Request {
	return e.HTTP(ctx, httpclient.RequestConfig{Method: "post", Data: data}, targets...)
}

// Put issues PUT on the endpoint with data as the body.
func (e *Endpoint) Put(ctx context.Context, data any, targets ...Target) *Request {
	return e.HTTP(ctx, httpclient.RequestConfig{Method: "put", Data: data}, targets...)
}

// Patch issues PATCH on the endpoint with data as the body.
func (e *Endpoint) Patch(ctx context.Context, data any, targets ...Target) *Request {
	return e.HTTP(ctx, httpclient.RequestConfig{Method: "patch", Data: data}, targets...)
}

func normalizeMethod(method string) string {
	if method == "" {
		return "get"
	}
	return strings.ToLower(method)
}

// canonicalHeaders rewrites keys to their canonical form. When several keys
// collapse onto one, the key already in canonical form wins, otherwise the
// first key in byte order.
func canonicalHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for _, k := range slices.Sorted(maps.Keys(headers)) {
		key := http.CanonicalHeaderKey(k)
		if _, seen := out[key]; seen && k != key {
			continue
		}
		out[key] = headers[k]
	}
	return out
}
