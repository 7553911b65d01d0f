package grest

import (
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/kroma-labs/grest/httpclient"
)

// Result is the cached outcome of a successful Request.
type Result struct {
	// Data is the decoded response body (see httpclient.Response).
	Data any

	// Status is the HTTP status code.
	Status int

	// Headers are the response headers.
	Headers http.Header

	body []byte
}

func newResult(resp *httpclient.Response) *Result {
	return &Result{
		Data:    resp.Data,
		Status:  resp.Status,
		Headers: resp.Headers,
		body:    resp.Body,
	}
}

// Body returns the raw response body.
func (r *Result) Body() []byte {
	return r.body
}

// Decode unmarshals the raw JSON body into v.
//
//	var user User
//	req.OK(func(res *grest.Result) {
//	    if err := res.Decode(&user); err != nil { ... }
//	})
func (r *Result) Decode(v any) error {
	return json.Unmarshal(r.body, v)
}
