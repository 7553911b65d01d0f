package httpclient

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockTransport_Stubs(t *testing.T) {
	t.Parallel()

	errDown := errors.New("network down")

	tests := []struct {
		name       string
		mock       func() *MockTransport
		method     string
		url        string
		wantStatus int
		wantData   any
		wantErr    error
	}{
		{
			name:       "given a default response, then every request gets it",
			mock:       func() *MockTransport { return NewMockTransport().StubResponse(http.StatusOK, `{"status":"ok"}`) },
			method:     "get",
			url:        "https://api.example.com/anything",
			wantStatus: http.StatusOK,
			wantData:   map[string]any{"status": "ok"},
		},
		{
			name: "given a path stub, then it wins over the default",
			mock: func() *MockTransport {
				return NewMockTransport().
					StubResponse(http.StatusOK, `"default"`).
					StubPath("/users/", http.StatusOK, `[{"id":1}]`)
			},
			method:     "get",
			url:        "https://api.example.com/users/",
			wantStatus: http.StatusOK,
			wantData:   []any{map[string]any{"id": float64(1)}},
		},
		{
			name: "given a path regex stub, then matching ids share it",
			mock: func() *MockTransport {
				return NewMockTransport().StubPathRegex(`^/users/\d+$`, http.StatusOK, `{"id":123}`)
			},
			method:     "get",
			url:        "https://api.example.com/users/456",
			wantStatus: http.StatusOK,
			wantData:   map[string]any{"id": float64(123)},
		},
		{
			name: "given a method stub, then only that verb matches",
			mock: func() *MockTransport {
				return NewMockTransport().
					StubResponse(http.StatusOK, `"default"`).
					StubMethod(http.MethodPost, http.StatusCreated, `"created"`)
			},
			method:     "post",
			url:        "https://api.example.com/users/",
			wantStatus: http.StatusCreated,
			wantData:   "created",
		},
		{
			name:    "given an error stub, then the call fails",
			mock:    func() *MockTransport { return NewMockTransport().StubError(errDown) },
			method:  "get",
			url:     "https://api.example.com/users/",
			wantErr: errDown,
		},
		{
			name: "given a predicate error stub, then it applies only to matches",
			mock: func() *MockTransport {
				return NewMockTransport().
					StubResponse(http.StatusOK, `{}`).
					StubFuncError(func(r *http.Request) bool { return r.Method == http.MethodDelete }, errDown)
			},
			method:  "delete",
			url:     "https://api.example.com/users/1",
			wantErr: errDown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := New(WithMockTransport(tt.mock()))
			resp, err := client.Do(context.Background(), RequestConfig{Method: tt.method, URL: tt.url})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantData, resp.Data)
		})
	}
}

func TestMockTransport_NoStub(t *testing.T) {
	t.Parallel()

	client := New(WithMockTransport(NewMockTransport()))
	_, err := client.Do(context.Background(), RequestConfig{URL: "https://api.example.com/"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stub found")
}

func TestMockTransport_StubJSON(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport().StubJSON(http.StatusOK, `{"a":1}`)
	client := New(WithMockTransport(mock))

	resp, err := client.Do(context.Background(), RequestConfig{URL: "https://api.example.com/"})
	require.NoError(t, err)

	assert.Equal(t, "application/json", resp.Headers.Get("Content-Type"))
}

func TestMockTransport_RequestTracking(t *testing.T) {
	t.Parallel()

	var hooked []string
	mock := NewMockTransport().
		StubResponse(http.StatusOK, `{}`).
		OnRequest(func(r *http.Request) { hooked = append(hooked, r.URL.Path) })
	client := New(WithMockTransport(mock))

	ctx := context.Background()
	_, err := client.Do(ctx, RequestConfig{Method: "get", URL: "https://api.example.com/users/"})
	require.NoError(t, err)
	_, err = client.Do(ctx, RequestConfig{
		Method: "post",
		URL:    "https://api.example.com/posts/",
		Data:   map[string]string{"title": "hello"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, mock.RequestCount())
	assert.Len(t, mock.Requests(), 2)
	assert.Equal(t, "/posts/", mock.LastRequest().URL.Path)
	assert.JSONEq(t, `{"title":"hello"}`, string(mock.LastBody()))
	assert.Equal(t, []string{"/users/", "/posts/"}, hooked)

	mock.Reset()
	assert.Zero(t, mock.RequestCount())
	assert.Nil(t, mock.LastRequest())
	assert.Nil(t, mock.LastBody())
}

func TestMockTransport_ServesStubRepeatedly(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport().StubResponse(http.StatusOK, `"same"`)
	client := New(WithMockTransport(mock))

	for range 3 {
		resp, err := client.Do(context.Background(), RequestConfig{URL: "https://api.example.com/"})
		require.NoError(t, err)
		assert.Equal(t, "same", resp.Data)
	}
}
