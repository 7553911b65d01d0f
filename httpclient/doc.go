// Package httpclient executes single HTTP calls described by a RequestConfig,
// with OpenTelemetry instrumentation and zerolog debug output.
//
// It is the transport underneath package grest, but can be used on its own.
//
// # Quick Start
//
//	client := httpclient.New(
//	    httpclient.WithServiceName("my-service"),
//	)
//
//	resp, err := client.Do(ctx, httpclient.RequestConfig{
//	    Method:  "get",
//	    URL:     "https://api.example.com/users/",
//	    Headers: map[string]string{"Accept": "application/json"},
//	    Params:  url.Values{"page": {"2"}},
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.Status, resp.Data)
//
// # Outcomes
//
// Do reads and closes every response body. A 2xx status yields a *Response
// whose Data holds the decoded JSON (or the body text). Any other status yields
// a *StatusError with the same fields. A call that received no response returns
// the wrapped transport error.
//
// # Observability
//
// Every call is metered:
//
//   - http.client.request.duration (histogram)
//   - http.client.request.body.size / http.client.response.body.size (histogram)
//   - http.client.active_requests (up-down counter)
//   - http.client.request.error (counter)
//   - http.client.dns.duration, http.client.connect.duration,
//     http.client.tls.duration, http.client.ttfb (histogram)
//
// and traced:
//
//   - One client span per request with method, URL, status code
//   - Span events per network phase (dns.done, connect.done, tls.done,
//     ttfb.done) and conn.acquired
//
// # Debug Utilities
//
//	client := httpclient.New(
//	    httpclient.WithDebug(true),        // Logs requests/responses with zerolog
//	    httpclient.WithGenerateCurl(true), // Fills Response.CurlCommand
//	)
//
// # Testing
//
// MockTransport replaces the network:
//
//	mock := httpclient.NewMockTransport().StubJSON(http.StatusOK, `{"id":1}`)
//	client := httpclient.New(httpclient.WithMockTransport(mock))
package httpclient
