package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sync"
)

// MockTransport is an http.RoundTripper serving canned replies, for tests.
// Routes are tried in registration order; the fallback set by StubResponse,
// StubJSON or StubError answers everything else.
//
//	mock := httpclient.NewMockTransport().
//	    StubPath("/users/", http.StatusOK, `[{"id":1}]`)
//	client := httpclient.New(httpclient.WithMockTransport(mock))
type MockTransport struct {
	mu       sync.Mutex
	routes   []route
	fallback *canned
	calls    []call
	hook     func(*http.Request)
}

type route struct {
	match func(*http.Request) bool
	reply canned
}

// canned is either an error or a response whose body can be served any
// number of times.
type canned struct {
	status int
	body   []byte
	header http.Header
	err    error
}

type call struct {
	req  *http.Request
	body []byte
}

// NewMockTransport returns a transport with no routes.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

func reply(status int, body string, header http.Header) canned {
	if header == nil {
		header = http.Header{}
	}
	return canned{status: status, body: []byte(body), header: header}
}

func (m *MockTransport) setFallback(c canned) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = &c
	return m
}

func (m *MockTransport) addRoute(match func(*http.Request) bool, c canned) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, route{match: match, reply: c})
	return m
}

// StubResponse answers unmatched requests with status and body.
func (m *MockTransport) StubResponse(status int, body string) *MockTransport {
	return m.setFallback(reply(status, body, nil))
}

// StubJSON is StubResponse with a JSON Content-Type.
func (m *MockTransport) StubJSON(status int, body string) *MockTransport {
	return m.setFallback(reply(status, body, http.Header{"Content-Type": {"application/json"}}))
}

// StubError fails unmatched requests with err.
func (m *MockTransport) StubError(err error) *MockTransport {
	return m.setFallback(canned{err: err})
}

// StubPath answers requests for exactly path.
func (m *MockTransport) StubPath(path string, status int, body string) *MockTransport {
	return m.StubFunc(func(req *http.Request) bool { return req.URL.Path == path }, status, body)
}

// StubPathRegex answers requests whose path matches pattern. It panics on
// an invalid pattern.
func (m *MockTransport) StubPathRegex(pattern string, status int, body string) *MockTransport {
	re := regexp.MustCompile(pattern)
	return m.StubFunc(func(req *http.Request) bool { return re.MatchString(req.URL.Path) }, status, body)
}

// StubMethod answers requests with the given uppercase method.
func (m *MockTransport) StubMethod(method string, status int, body string) *MockTransport {
	return m.StubFunc(func(req *http.Request) bool { return req.Method == method }, status, body)
}

// StubFunc answers requests accepted by match.
func (m *MockTransport) StubFunc(match func(*http.Request) bool, status int, body string) *MockTransport {
	return m.addRoute(match, reply(status, body, nil))
}

// StubFuncError fails requests accepted by match with err.
func (m *MockTransport) StubFuncError(match func(*http.Request) bool, err error) *MockTransport {
	return m.addRoute(match, canned{err: err})
}

// OnRequest calls fn with every request before it is answered.
func (m *MockTransport) OnRequest(fn func(*http.Request)) *MockTransport {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook = fn
	return m
}

// RoundTrip records req and serves the first matching route.
func (m *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	m.mu.Lock()
	m.calls = append(m.calls, call{req: req, body: body})
	hook := m.hook
	m.mu.Unlock()

	if hook != nil {
		hook(req)
	}

	c, ok := m.lookup(req)
	if !ok {
		return nil, fmt.Errorf("no stub found for request: %s %s", req.Method, req.URL)
	}
	return c.serve(req)
}

func (m *MockTransport) lookup(req *http.Request) (canned, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.routes {
		if r.match(req) {
			return r.reply, true
		}
	}
	if m.fallback != nil {
		return *m.fallback, true
	}
	return canned{}, false
}

func (c canned) serve(req *http.Request) (*http.Response, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", c.status, http.StatusText(c.status)),
		StatusCode:    c.status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        c.header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(c.body)),
		ContentLength: int64(len(c.body)),
		Request:       req,
	}, nil
}

// Requests returns every recorded request in arrival order.
func (m *MockTransport) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*http.Request, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.req
	}
	return out
}

// RequestCount returns the number of recorded requests.
func (m *MockTransport) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *MockTransport) last() (call, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return call{}, false
	}
	return m.calls[len(m.calls)-1], true
}

// LastRequest returns the latest request, or nil.
func (m *MockTransport) LastRequest() *http.Request {
	c, _ := m.last()
	return c.req
}

// LastBody returns the latest request body, or nil.
func (m *MockTransport) LastBody() []byte {
	c, _ := m.last()
	return c.body
}

// Reset forgets recorded requests, routes, the fallback and the hook.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes, m.fallback, m.calls, m.hook = nil, nil, nil, nil
}
