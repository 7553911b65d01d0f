package httpclient

import (
	"bytes"
	"context"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
)

// RequestConfig describes one HTTP call.
//
// It is a plain value: Clone it before handing it to code that may keep it,
// so later changes on either side stay invisible to the other.
//
//	cfg := httpclient.RequestConfig{
//	    Method:  "post",
//	    URL:     "https://api.example.com/users/",
//	    Headers: map[string]string{"Authorization": "Bearer " + token},
//	    Data:    newUser,
//	}
type RequestConfig struct {
	// Method is the HTTP verb. Case-insensitive; sent uppercased.
	Method string

	// URL is the absolute request URL, possibly carrying its own query string.
	URL string

	// Headers are sent as-is, one value per name.
	Headers map[string]string

	// Params are merged into the URL query.
	// nil means no query parameters; an empty non-nil value is kept as
	// "present but empty" and leaves the URL untouched.
	Params url.Values

	// Data is the request body.
	//
	// Encoding rules:
	//   - nil: no body
	//   - string: raw text (Content-Type: text/plain)
	//   - []byte: raw bytes (Content-Type: application/octet-stream)
	//   - io.Reader: passthrough, sent once
	//   - url.Values: form encoded (Content-Type: application/x-www-form-urlencoded)
	//   - anything else: JSON (Content-Type: application/json)
	Data any
}

// Clone returns a deep copy of the headers and params. Data is shared.
func (c RequestConfig) Clone() RequestConfig {
	out := c
	if c.Headers != nil {
		out.Headers = maps.Clone(c.Headers)
	}
	if c.Params != nil {
		out.Params = make(url.Values, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = append([]string(nil), v...)
		}
	}
	return out
}

// Header returns the value of the named header using a case-insensitive match.
func (c RequestConfig) Header(name string) (string, bool) {
	if v, ok := c.Headers[name]; ok {
		return v, true
	}
	for k, v := range c.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// fullURL merges Params into URL.
func (c RequestConfig) fullURL() (string, error) {
	if len(c.Params) == 0 {
		return c.URL, nil
	}

	u, err := url.Parse(c.URL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range c.Params {
		for _, vv := range v {
			q.Add(k, vv)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// encodeBody encodes Data and returns the body bytes (nil for readers),
// the reader to send and the implied content type.
func encodeBody(v any) ([]byte, io.Reader, string, error) {
	switch body := v.(type) {
	case nil:
		return nil, nil, "", nil
	case string:
		return []byte(body), strings.NewReader(body), "text/plain; charset=utf-8", nil
	case []byte:
		return body, bytes.NewReader(body), "application/octet-stream", nil
	case io.Reader:
		return nil, body, "", nil
	case url.Values:
		encoded := body.Encode()
		return []byte(encoded), strings.NewReader(encoded), "application/x-www-form-urlencoded", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, nil, "", err
		}
		return data, bytes.NewReader(data), "application/json", nil
	}
}

// newHTTPRequest builds the *http.Request for cfg and returns the encoded body
// bytes for cURL generation.
func newHTTPRequest(ctx context.Context, cfg RequestConfig) (*http.Request, []byte, error) {
	target, err := cfg.fullURL()
	if err != nil {
		return nil, nil, err
	}

	bodyBytes, body, contentType, err := encodeBody(cfg.Data)
	if err != nil {
		return nil, nil, err
	}

	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, nil, err
	}

	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}

	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}

	return req, bodyBytes, nil
}
