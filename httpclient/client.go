package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client executes RequestConfigs over an instrumented *http.Client.
//
//	client := httpclient.New(httpclient.WithServiceName("billing-api"))
//	resp, err := client.Do(ctx, httpclient.RequestConfig{
//	    Method: "get",
//	    URL:    "https://api.example.com/invoices/",
//	})
type Client struct {
	http *http.Client
	cfg  *internalConfig
	log  debugLog
}

// New builds a Client. It never sets a timeout and never retries: a call
// lasts as long as its context, the server and the network allow.
func New(opts ...Option) *Client {
	cfg := newConfig(opts...)
	return &Client{
		http: &http.Client{Transport: instrument(cfg.roundTripper(), newTelemetry(cfg))},
		cfg:  cfg,
		log:  debugLog{logger: cfg.logger},
	}
}

// HTTP returns the instrumented *http.Client for libraries that want one.
func (c *Client) HTTP() *http.Client {
	return c.http
}

// Do executes cfg and reads the whole response.
//
// A 2xx answer returns a *Response. Any other status returns a *StatusError
// carrying the decoded body. When no response arrived the error wraps the
// transport error.
//
//	resp, err := client.Do(ctx, httpclient.RequestConfig{
//	    Method: "post",
//	    URL:    "https://api.example.com/users/",
//	    Data:   map[string]string{"name": "ada"},
//	})
//	var statusErr *httpclient.StatusError
//	if errors.As(err, &statusErr) {
//	    log.Printf("rejected: %d %v", statusErr.Status, statusErr.Data)
//	}
func (c *Client) Do(ctx context.Context, cfg RequestConfig) (*Response, error) {
	req, sent, err := newHTTPRequest(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("httpclient: build request: %w", err)
	}

	if err := c.cfg.interceptors.before(req); err != nil {
		return nil, fmt.Errorf("httpclient: request interceptor: %w", err)
	}

	var curl string
	if c.cfg.curl {
		curl = curlCommand(req, sent)
	}

	httpResp, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %w", err)
	}
	defer httpResp.Body.Close()

	if err := c.cfg.interceptors.after(httpResp, req); err != nil {
		return nil, fmt.Errorf("httpclient: response interceptor: %w", err)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	resp := &Response{
		Status:      httpResp.StatusCode,
		StatusText:  statusText(httpResp),
		Headers:     httpResp.Header,
		Data:        decodeData(body, httpResp.Header.Get("Content-Type")),
		Body:        body,
		CurlCommand: curl,
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{
			Status:     resp.Status,
			StatusText: resp.StatusText,
			Headers:    resp.Headers,
			Data:       resp.Data,
			Body:       resp.Body,
		}
	}
	return resp, nil
}

// send runs req, logging both ends when debug is on.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	if !c.cfg.debug {
		return c.http.Do(req)
	}

	start := time.Now()
	c.log.request(req)
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.failure(req, err, time.Since(start))
		return nil, err
	}
	c.log.response(req, resp, time.Since(start))
	return resp, nil
}
