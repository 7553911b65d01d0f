package grest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kroma-labs/grest/httpclient"
)

func TestClient_WithHTTPClient(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	type received struct {
		method string
		path   string
		query  string
		header http.Header
		body   []byte
	}
	got := make(chan received, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- received{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			header: r.Header.Clone(),
			body:   body,
		}

		if r.URL.Path == "/users/404" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"user not found"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Request-Id", "req-1")
		_, _ = w.Write([]byte(`{"id":1,"name":"ada"}`))
	}))
	defer server.Close()

	api := New(server.URL,
		WithLogger(zerolog.Nop()),
		WithAuthorization("Bearer token"),
		WithHeaders(map[string]string{"X-Tenant": "acme"}),
		WithEndpoints("users"),
		WithHTTPClientOptions(httpclient.WithServiceName("grest-test")),
	)

	t.Run("given a post, then headers and body reach the server", func(t *testing.T) {
		res, err := api.MustEndpoint("users").
			Post(ctx, map[string]string{"name": "ada"}, Params(map[string]string{"notify": "true"})).
			Wait(ctx)
		require.NoError(t, err)

		r := <-got
		assert.Equal(t, http.MethodPost, r.method)
		assert.Equal(t, "/users/", r.path)
		assert.Equal(t, "notify=true", r.query)
		assert.Equal(t, "Bearer token", r.header.Get("Authorization"))
		assert.Equal(t, "acme", r.header.Get("X-Tenant"))
		assert.Equal(t, "XMLHttpRequest", r.header.Get("X-Requested-With"))
		assert.Equal(t, "application/json", r.header.Get("Content-Type"))
		assert.JSONEq(t, `{"name":"ada"}`, string(r.body))

		assert.Equal(t, http.StatusOK, res.Status)
		assert.Equal(t, "req-1", res.Headers.Get("X-Request-Id"))
		assert.Equal(t, map[string]any{"id": float64(1), "name": "ada"}, res.Data)
	})

	t.Run("given a 404, then the error carries status text and body", func(t *testing.T) {
		_, err := api.MustEndpoint("users").Get(ctx, ID(404)).Wait(ctx)
		<-got

		var gErr *Error
		require.ErrorAs(t, err, &gErr)
		assert.Equal(t, "Not Found", gErr.Message)
		assert.Equal(t, http.StatusNotFound, gErr.Status)
		assert.Equal(t, map[string]any{"error": "user not found"}, gErr.Data)
		assert.Equal(t, "application/json", gErr.Headers.Get("Content-Type"))
	})
}

func TestClient_WithMockTransport(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mock := httpclient.NewMockTransport().
		StubPath("/v1/support-tickets/", http.StatusOK, `[{"id":1}]`).
		StubError(io.ErrUnexpectedEOF)

	api := New("https://api.example.com/v1",
		WithLogger(zerolog.Nop()),
		WithEndpoints("support-tickets", "users"),
		WithHTTPClientOptions(httpclient.WithMockTransport(mock)),
	)

	res, err := api.MustEndpoint("supportTickets").Get(ctx).Wait(ctx)
	require.NoError(t, err)

	var tickets []struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(res.Body(), &tickets))
	require.Len(t, tickets, 1)
	assert.Equal(t, 1, tickets[0].ID)

	_, err = api.MustEndpoint("users").Get(ctx).Wait(ctx)
	var gErr *Error
	require.ErrorAs(t, err, &gErr)
	assert.Equal(t, NetworkErrorMessage, gErr.Message)
	assert.Zero(t, gErr.Status)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	assert.Equal(t, 2, mock.RequestCount())
	assert.Equal(t, "XMLHttpRequest", mock.LastRequest().Header.Get("X-Requested-With"))
}

func TestRequest_AgainReplaysReaderBody(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	var (
		mu     sync.Mutex
		bodies []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(body))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	api := New(server.URL, WithLogger(zerolog.Nop()), WithEndpoints("events"))

	req := api.MustEndpoint("events").Post(ctx, strings.NewReader("payload"))
	_, err := req.Wait(ctx)
	require.NoError(t, err)

	_, err = req.Again().Wait(ctx)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"payload", "payload"}, bodies)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestClient_UnreadableBody(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	transport := &fakeTransport{}
	api := newTestClient(transport, WithEndpoints("events"))

	_, err := api.MustEndpoint("events").Post(ctx, failingReader{}).Wait(ctx)

	var gErr *Error
	require.ErrorAs(t, err, &gErr)
	assert.Equal(t, NetworkErrorMessage, gErr.Message)
	assert.ErrorIs(t, err, io.ErrClosedPipe)
	assert.Zero(t, transport.count())
}
