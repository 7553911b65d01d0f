package grest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kroma-labs/grest/httpclient"
	"github.com/kroma-labs/grest/observable"
)

const (
	// RequestedWithHeader is forced on every call.
	RequestedWithHeader = "X-Requested-With"
	// RequestedWithValue is the value of RequestedWithHeader.
	RequestedWithValue = "XMLHttpRequest"

	authorizationHeader = "Authorization"
)

// Client is the entry point: a base URL, shared headers and authorization,
// a table of named endpoints and a feed of request lifecycle messages.
//
//	api := grest.New("https://api.example.com",
//	    grest.WithAuthorization("Bearer "+token),
//	    grest.WithEndpoints("users", "auth/login"),
//	)
//
//	api.MustEndpoint("users").Get(ctx, grest.ID(42)).
//	    OK(func(res *grest.Result) { ... }).
//	    Fail(func(err *grest.Error) { ... })
//
// A Client is safe for concurrent use.
type Client struct {
	baseURL   string
	transport Transport
	events    *observable.Observable[Message]
	metrics   *metrics
	logger    zerolog.Logger

	mu            sync.RWMutex
	authorization string
	headers       map[string]string
	names         []string
	accessors     map[string]*Endpoint
}

// New creates a Client rooted at baseURL. Trailing slashes are collapsed to one.
func New(baseURL string, opts ...Option) *Client {
	cfg := newClientConfig(opts...)

	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/") + "/",
		transport:     cfg.transport,
		events:        observable.New[Message](observable.WithLogger(cfg.logger)),
		logger:        cfg.logger,
		authorization: cfg.authorization,
		headers:       make(map[string]string),
		accessors:     make(map[string]*Endpoint),
	}

	m, err := newMetrics(cfg.meterProvider.Meter(scope))
	if err != nil {
		c.logger.Warn().Err(err).Msg("grest lifecycle metrics disabled")
	}
	c.metrics = m

	c.SetHeaders(cfg.headers)

	if err := c.Register(cfg.endpoints...); err != nil {
		c.logger.Warn().Err(err).Msg("grest endpoint registration")
	}

	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Endpoints returns the registered names in registration order.
func (c *Client) Endpoints() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.names)
}

// Register adds endpoint names. Names already registered are skipped.
//
// A name whose accessor key is already bound to another name is not
// registered; the returned error wraps ErrAccessorConflict for each such
// name. Names yielding an empty key are reported with ErrInvalidName.
// Every other name in the call is still registered.
func (c *Client) Register(names ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, name := range names {
		if slices.Contains(c.names, name) {
			continue
		}

		key := AccessorKey(name)
		if key == "" {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidName, name))
			continue
		}

		if existing, ok := c.accessors[key]; ok {
			errs = append(errs, fmt.Errorf("%w: %q and %q both map to %q",
				ErrAccessorConflict, existing.name, name, key))
			continue
		}

		c.accessors[key] = newEndpoint(c, name, key)
		c.names = append(c.names, name)
	}

	return errors.Join(errs...)
}

// Endpoint returns the Endpoint registered under the accessor key.
func (c *Client) Endpoint(key string) (*Endpoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.accessors[key]
	return e, ok
}

// MustEndpoint is like Endpoint but panics when the key is unknown.
func (c *Client) MustEndpoint(key string) *Endpoint {
	e, ok := c.Endpoint(key)
	if !ok {
		panic(fmt.Sprintf("grest: no endpoint registered under %q", key))
	}
	return e
}

// Headers returns a copy of the global headers.
func (c *Client) Headers() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.headers)
}

// SetHeaders merges headers into the global headers. An empty value removes
// the header, which is the only way to unset one.
func (c *Client) SetHeaders(headers map[string]string) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, v := range canonicalHeaders(headers) {
		if v == "" {
			delete(c.headers, k)
			continue
		}
		c.headers[k] = v
	}
	return c
}

// Authorization returns the current authorization value.
func (c *Client) Authorization() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authorization
}

// SetAuthorization replaces the authorization value. Empty disables injection.
func (c *Client) SetAuthorization(value string) *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authorization = value
	return c
}

// Subscribe registers fn for every lifecycle message and returns its id.
// An empty id is replaced with a generated one.
func (c *Client) Subscribe(id string, fn func(Message)) string {
	return c.events.Subscribe(id, fn)
}

// Unsubscribe removes a subscriber and reports whether it existed.
func (c *Client) Unsubscribe(id string) bool {
	return c.events.Unsubscribe(id)
}

// Do dispatches cfg without an endpoint. A relative cfg.URL is resolved
// against the base URL. Lifecycle messages carry an empty endpoint.
func (c *Client) Do(ctx context.Context, cfg httpclient.RequestConfig, targets ...Target) *Request {
	target := cfg.URL
	if !strings.Contains(target, "://") {
		target = c.baseURL + strings.TrimLeft(target, "/")
	}
	return c.dispatch(ctx, "", target, cfg, targets)
}

// Release detaches every Endpoint and drops every subscriber. Endpoints kept
// by callers fail their later calls with ErrReleased. In-flight requests
// still settle but nobody is notified.
func (c *Client) Release() {
	c.mu.Lock()
	for _, e := range c.accessors {
		e.client.Store(nil)
	}
	c.accessors = make(map[string]*Endpoint)
	c.names = nil
	c.mu.Unlock()

	c.events.Clear()
}

func (c *Client) dispatch(
	ctx context.Context,
	endpoint, target string,
	cfg httpclient.RequestConfig,
	targets []Target,
) *Request {
	merged, err := c.mergeConfig(target, cfg)
	if err != nil {
		return failedRequest(endpoint, cfg, &Error{Message: NetworkErrorMessage, Err: err})
	}
	for _, t := range targets {
		if t != nil {
			t.apply(&merged)
		}
	}

	return newRequest(ctx, endpoint, merged, requestDeps{
		transport: c.transport,
		events:    c.events,
		metrics:   c.metrics,
		logger:    c.logger,
	})
}

// mergeConfig layers cfg over the global headers. Neither cfg nor the
// Client's maps are mutated. An io.Reader Data is drained into a []byte so
// Again replays the same body.
func (c *Client) mergeConfig(target string, cfg httpclient.RequestConfig) (httpclient.RequestConfig, error) {
	out := cfg.Clone()
	if r, ok := out.Data.(io.Reader); ok {
		body, err := io.ReadAll(r)
		if err != nil {
			return out, fmt.Errorf("grest: read request body: %w", err)
		}
		out.Data = body
	}

	c.mu.RLock()
	headers := maps.Clone(c.headers)
	auth := c.authorization
	c.mu.RUnlock()

	if headers == nil {
		headers = make(map[string]string, len(cfg.Headers)+2)
	}
	maps.Copy(headers, canonicalHeaders(cfg.Headers))
	headers[RequestedWithHeader] = RequestedWithValue
	if _, ok := headers[authorizationHeader]; !ok && auth != "" {
		headers[authorizationHeader] = auth
	}

	out.Headers = headers
	out.Method = normalizeMethod(cfg.Method)
	out.URL = target
	return out, nil
}
