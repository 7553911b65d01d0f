package grest

import (
	"fmt"
	"net/url"

	"github.com/kroma-labs/grest/httpclient"
)

// Target narrows a verb call on an Endpoint.
//
// Targets are applied in order after the endpoint URL and headers are merged:
//
//	users.Get(ctx, grest.ID(42))                         // GET  {base}users/42
//	users.Get(ctx, grest.Query(url.Values{"page": {"2"}})) // GET  {base}users/?page=2
//	users.Post(ctx, body, grest.Suffix("bulk"))          // POST {base}users/bulk
type Target interface {
	apply(cfg *httpclient.RequestConfig)
}

type targetFunc func(cfg *httpclient.RequestConfig)

func (f targetFunc) apply(cfg *httpclient.RequestConfig) { f(cfg) }

// Query sets query parameters. A nil value sets nothing; an empty non-nil
// value marks the call as querying with no parameters and leaves the URL
// unchanged.
func Query(values url.Values) Target {
	return targetFunc(func(cfg *httpclient.RequestConfig) {
		if values == nil {
			return
		}
		if cfg.Params == nil {
			cfg.Params = url.Values{}
		}
		for k, v := range values {
			cfg.Params[k] = append(cfg.Params[k], v...)
		}
	})
}

// Params is Query for single-valued parameters.
func Params(params map[string]string) Target {
	return targetFunc(func(cfg *httpclient.RequestConfig) {
		if cfg.Params == nil {
			cfg.Params = url.Values{}
		}
		for k, v := range params {
			cfg.Params.Add(k, v)
		}
	})
}

// Suffix appends s verbatim to the endpoint URL.
func Suffix(s string) Target {
	return targetFunc(func(cfg *httpclient.RequestConfig) {
		cfg.URL += s
	})
}

// ID appends an escaped resource identifier to the endpoint URL.
func ID(id any) Target {
	return Suffix(url.PathEscape(fmt.Sprint(id)))
}
