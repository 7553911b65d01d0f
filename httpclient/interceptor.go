package httpclient

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestInterceptor may modify a built request before it is sent.
// An error aborts the call and is returned from Client.Do.
type RequestInterceptor func(req *http.Request) error

// ResponseInterceptor inspects a response before its body is read.
// An error aborts the call and is returned from Client.Do.
type ResponseInterceptor func(resp *http.Response, req *http.Request) error

// InterceptorChain runs interceptors in registration order. The zero value
// is an empty chain.
type InterceptorChain struct {
	request  []RequestInterceptor
	response []ResponseInterceptor
}

// OnRequest appends i. Nil interceptors are ignored.
func (c *InterceptorChain) OnRequest(i RequestInterceptor) {
	if i != nil {
		c.request = append(c.request, i)
	}
}

// OnResponse appends i. Nil interceptors are ignored.
func (c *InterceptorChain) OnResponse(i ResponseInterceptor) {
	if i != nil {
		c.response = append(c.response, i)
	}
}

func (c *InterceptorChain) before(req *http.Request) error {
	for _, i := range c.request {
		if err := i(req); err != nil {
			return err
		}
	}
	return nil
}

func (c *InterceptorChain) after(resp *http.Response, req *http.Request) error {
	for _, i := range c.response {
		if err := i(resp, req); err != nil {
			return err
		}
	}
	return nil
}

// BearerToken sets "Authorization: Bearer <token>" on requests that carry
// no Authorization header, asking token for a fresh value each time.
func BearerToken(token func() (string, error)) RequestInterceptor {
	return func(req *http.Request) error {
		if req.Header.Get("Authorization") != "" {
			return nil
		}
		tok, err := token()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+tok)
		return nil
	}
}

// StaticHeader overwrites name with value on every request.
func StaticHeader(name, value string) RequestInterceptor {
	return func(req *http.Request) error {
		req.Header.Set(name, value)
		return nil
	}
}

// CorrelationID sets name to newID() unless the request already has it.
// A nil newID generates UUIDs.
func CorrelationID(name string, newID func() string) RequestInterceptor {
	if newID == nil {
		newID = uuid.NewString
	}
	return func(req *http.Request) error {
		if req.Header.Get(name) == "" {
			req.Header.Set(name, newID())
		}
		return nil
	}
}
