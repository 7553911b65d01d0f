package httpclient

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

// Response is the fully read outcome of a call.
//
// The body has already been drained and closed; Data holds the decoded value:
//   - JSON bodies (by Content-Type, or any body that parses as JSON): the decoded value
//     (map[string]any, []any, string, float64, bool or nil)
//   - every other body: the body as a string
//   - empty bodies: nil
type Response struct {
	// Status is the HTTP status code.
	Status int

	// StatusText is the reason phrase, e.g. "Not Found".
	StatusText string

	// Headers are the response headers.
	Headers http.Header

	// Data is the decoded body.
	Data any

	// Body is the raw body.
	Body []byte

	// CurlCommand is the equivalent cURL command for the request.
	// Only populated if WithGenerateCurl(true) was set on the client.
	CurlCommand string
}

// IsSuccess returns true if the response status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

// Decode unmarshals the raw body into v based on the Content-Type.
func (r *Response) Decode(v any) error {
	return decodeBody(r.Body, r.Headers.Get("Content-Type"), v)
}

// StatusError is returned by Client.Do when the server answered with a non-2xx status.
//
// The response has been read in full; its fields mirror Response.
type StatusError struct {
	Status     int
	StatusText string
	Headers    http.Header
	Data       any
	Body       []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("httpclient: HTTP %d %s", e.Status, e.StatusText)
}

// statusText extracts the reason phrase from an http.Response status line.
// "404 Not Found" -> "Not Found".
func statusText(resp *http.Response) string {
	if text, ok := strings.CutPrefix(resp.Status, fmt.Sprintf("%d ", resp.StatusCode)); ok {
		return text
	}
	if resp.Status != "" && !strings.HasPrefix(resp.Status, fmt.Sprint(resp.StatusCode)) {
		return resp.Status
	}
	return http.StatusText(resp.StatusCode)
}

// decodeData converts a raw body into the Response.Data representation.
func decodeData(body []byte, contentType string) any {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	isXML := strings.Contains(contentType, "application/xml") ||
		strings.Contains(contentType, "text/xml")
	if !isXML {
		var v any
		if err := json.Unmarshal(body, &v); err == nil {
			return v
		}
	}
	return string(body)
}

// decodeBody decodes the body based on content type.
func decodeBody(body []byte, contentType string, target any) error {
	if strings.Contains(contentType, "application/json") {
		return json.Unmarshal(body, target)
	}
	isXML := strings.Contains(contentType, "application/xml") ||
		strings.Contains(contentType, "text/xml")
	if isXML {
		return xml.Unmarshal(body, target)
	}
	// Default to JSON
	return json.Unmarshal(body, target)
}
