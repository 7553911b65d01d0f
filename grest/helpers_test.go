package grest

import (
	"context"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kroma-labs/grest/httpclient"
)

// fakeTransport records every config and answers through respond.
// When respond is nil every call succeeds with {"ok":true}.
type fakeTransport struct {
	mu      sync.Mutex
	calls   []httpclient.RequestConfig
	respond func(n int, cfg httpclient.RequestConfig) (*httpclient.Response, error)
}

func (f *fakeTransport) Do(_ context.Context, cfg httpclient.RequestConfig) (*httpclient.Response, error) {
	f.mu.Lock()
	n := len(f.calls)
	f.calls = append(f.calls, cfg)
	respond := f.respond
	f.mu.Unlock()

	if respond != nil {
		return respond(n, cfg)
	}
	return okResponse(`{"ok":true}`, map[string]any{"ok": true}), nil
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTransport) last() httpclient.RequestConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func okResponse(body string, data any) *httpclient.Response {
	return &httpclient.Response{
		Status:     http.StatusOK,
		StatusText: "OK",
		Headers:    http.Header{"Content-Type": {"application/json"}},
		Data:       data,
		Body:       []byte(body),
	}
}

// messageLog collects lifecycle messages.
type messageLog struct {
	mu   sync.Mutex
	msgs []Message
}

func (l *messageLog) record(m Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, m)
}

func (l *messageLog) all() []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Message(nil), l.msgs...)
}

func newTestClient(transport Transport, opts ...Option) *Client {
	base := []Option{
		WithTransport(transport),
		WithLogger(zerolog.Nop()),
	}
	return New("https://api.net", append(base, opts...)...)
}
