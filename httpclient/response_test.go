package httpclient

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_IsSuccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{name: "given 200, then success", status: http.StatusOK, want: true},
		{name: "given 204, then success", status: http.StatusNoContent, want: true},
		{name: "given 301, then not success", status: http.StatusMovedPermanently, want: false},
		{name: "given 404, then not success", status: http.StatusNotFound, want: false},
		{name: "given 500, then not success", status: http.StatusInternalServerError, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, (&Response{Status: tt.status}).IsSuccess())
		})
	}
}

func TestStatusText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp *http.Response
		want string
	}{
		{
			name: "given a standard status line, then the reason phrase",
			resp: &http.Response{StatusCode: 404, Status: "404 Not Found"},
			want: "Not Found",
		},
		{
			name: "given a custom reason phrase, then it is kept",
			resp: &http.Response{StatusCode: 422, Status: "422 Validation Failed"},
			want: "Validation Failed",
		},
		{
			name: "given an empty status line, then the standard text",
			resp: &http.Response{StatusCode: 503},
			want: "Service Unavailable",
		},
		{
			name: "given a bare code, then the standard text",
			resp: &http.Response{StatusCode: 500, Status: "500"},
			want: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, statusText(tt.resp))
		})
	}
}

func TestDecodeData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        string
		contentType string
		want        any
	}{
		{
			name: "given an empty body, then nil",
			body: "  ",
			want: nil,
		},
		{
			name:        "given a JSON object, then a map",
			body:        `{"id":1}`,
			contentType: "application/json",
			want:        map[string]any{"id": float64(1)},
		},
		{
			name: "given JSON without content type, then still decoded",
			body: `[1,"a"]`,
			want: []any{float64(1), "a"},
		},
		{
			name:        "given plain text, then the string",
			body:        "hello",
			contentType: "text/plain",
			want:        "hello",
		},
		{
			name:        "given XML, then the raw string",
			body:        `<a>1</a>`,
			contentType: "application/xml",
			want:        `<a>1</a>`,
		},
		{
			name:        "given a numeric XML body, then it is not parsed as JSON",
			body:        `42`,
			contentType: "text/xml",
			want:        "42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, decodeData([]byte(tt.body), tt.contentType))
		})
	}
}

func TestResponse_Decode(t *testing.T) {
	t.Parallel()

	type user struct {
		ID   int    `json:"id" xml:"id"`
		Name string `json:"name" xml:"name"`
	}

	tests := []struct {
		name        string
		body        string
		contentType string
		want        user
		wantErr     assert.ErrorAssertionFunc
	}{
		{
			name:        "given JSON, then decodes",
			body:        `{"id":1,"name":"ada"}`,
			contentType: "application/json; charset=utf-8",
			want:        user{ID: 1, Name: "ada"},
			wantErr:     assert.NoError,
		},
		{
			name:        "given XML, then decodes",
			body:        `<user><id>2</id><name>bob</name></user>`,
			contentType: "application/xml",
			want:        user{ID: 2, Name: "bob"},
			wantErr:     assert.NoError,
		},
		{
			name:    "given no content type, then defaults to JSON",
			body:    `{"id":3}`,
			want:    user{ID: 3},
			wantErr: assert.NoError,
		},
		{
			name:        "given invalid JSON, then returns error",
			body:        `{`,
			contentType: "application/json",
			wantErr:     assert.Error,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := &Response{
				Body:    []byte(tt.body),
				Headers: http.Header{"Content-Type": {tt.contentType}},
			}

			var got user
			err := resp.Decode(&got)
			tt.wantErr(t, err)
			if err == nil {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestStatusError_Error(t *testing.T) {
	t.Parallel()

	err := &StatusError{Status: http.StatusTeapot, StatusText: "I'm a teapot"}

	require.Error(t, err)
	assert.Equal(t, "httpclient: HTTP 418 I'm a teapot", err.Error())
}
