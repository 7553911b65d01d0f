// Package grest provides a small REST layer on top of httpclient.
//
// A Client owns a base URL, global headers, an authorization value and a
// set of named endpoints. Each endpoint name is reachable under its
// camelCase accessor key ("auth/login" becomes "authLogin"). Calls on an
// Endpoint return a *Request whose outcome is cached: callbacks registered
// before the call settles are queued, callbacks registered after run
// immediately with the cached outcome.
//
// # Quick Start
//
//	api := grest.New("https://api.example.com",
//	    grest.WithAuthorization("Bearer "+token),
//	    grest.WithEndpoints("users", "auth/login"),
//	)
//
//	api.MustEndpoint("authLogin").
//	    Post(ctx, credentials).
//	    OK(func(res *grest.Result) { log.Println(res.Data) }).
//	    Fail(func(err *grest.Error) { log.Println(err.Message) })
//
// # Header Merge
//
// Every call starts from a copy of the global headers, overlays the
// per-call headers, forces X-Requested-With: XMLHttpRequest and adds the
// Client authorization only when no Authorization header is present yet.
// SetHeaders with an empty value deletes a global header.
//
// # Lifecycle Messages
//
// Subscribers receive a Message on every transition:
//
//	api.Subscribe("spinner", func(m grest.Message) {
//	    if m.Status == grest.StatusPending { ... }
//	})
//
// The pending message is emitted before the transport is called. The ok or
// fail message is emitted after the queued callbacks have run.
//
// # Errors
//
// Failures are normalized into *Error. Network failures carry the message
// "Network Error"; HTTP failures carry the status text, status code,
// decoded body and response headers.
package grest
