package grest

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kroma-labs/grest/httpclient"
	"github.com/kroma-labs/grest/observable"
)

// Request is one dispatched call whose outcome is cached.
//
// A Request starts pending. When the transport answers it moves to
// StatusOK (Result cached) or StatusFail (Error cached), runs the matching
// queued callbacks in registration order and then notifies the Client's
// subscribers. Callbacks registered after the outcome is known run
// immediately on the caller's goroutine.
//
// Again re-issues the identical configuration. The outcome of a superseded
// call is discarded.
type Request struct {
	endpoint  string
	config    httpclient.RequestConfig
	ctx       context.Context
	transport Transport
	events    *observable.Observable[Message]
	metrics   *metrics
	logger    zerolog.Logger

	mu        sync.Mutex
	status    Status
	cycle     uint64
	done      chan struct{}
	result    *Result
	err       *Error
	okQueue   []func(*Result)
	failQueue []func(*Error)
}

type requestDeps struct {
	transport Transport
	events    *observable.Observable[Message]
	metrics   *metrics
	logger    zerolog.Logger
}

func newRequest(ctx context.Context, endpoint string, cfg httpclient.RequestConfig, deps requestDeps) *Request {
	if ctx == nil {
		ctx = context.Background()
	}
	r := &Request{
		endpoint:  endpoint,
		config:    cfg,
		ctx:       context.WithoutCancel(ctx),
		transport: deps.transport,
		events:    deps.events,
		metrics:   deps.metrics,
		logger:    deps.logger,
	}
	r.start()
	return r
}

// failedRequest returns a Request that is already settled with err.
// No transport call is made and no subscriber is notified.
func failedRequest(endpoint string, cfg httpclient.RequestConfig, err *Error) *Request {
	done := make(chan struct{})
	close(done)
	return &Request{
		endpoint: endpoint,
		config:   cfg,
		ctx:      context.Background(),
		logger:   zerolog.Nop(),
		status:   StatusFail,
		done:     done,
		err:      err,
	}
}

// OK registers cb for the success outcome. If a Result is already cached cb
// runs immediately, otherwise it is queued until the call succeeds.
func (r *Request) OK(cb func(*Result)) *Request {
	if cb == nil {
		return r
	}

	r.mu.Lock()
	if res := r.result; res != nil {
		r.mu.Unlock()
		r.invoke(StatusOK, func() { cb(res) })
		return r
	}
	r.okQueue = append(r.okQueue, cb)
	r.mu.Unlock()

	return r
}

// Fail registers cb for the failure outcome. If an Error is already cached cb
// runs immediately, otherwise it is queued until the call fails.
func (r *Request) Fail(cb func(*Error)) *Request {
	if cb == nil {
		return r
	}

	r.mu.Lock()
	if e := r.err; e != nil {
		r.mu.Unlock()
		r.invoke(StatusFail, func() { cb(e) })
		return r
	}
	r.failQueue = append(r.failQueue, cb)
	r.mu.Unlock()

	return r
}

// Again clears the cached outcome and every queued callback, then issues the
// same configuration again, body included. A Request that failed before
// dispatch, through a released Endpoint or an unreadable body, stays failed.
func (r *Request) Again() *Request {
	if r.transport == nil {
		return r
	}
	r.start()
	return r
}

// Wait blocks until the current call has settled and its callbacks and
// notifications have run. If Again is called meanwhile Wait follows the new call.
func (r *Request) Wait(ctx context.Context) (*Result, error) {
	for {
		r.mu.Lock()
		done := r.done
		r.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		r.mu.Lock()
		if r.done != done {
			r.mu.Unlock()
			continue
		}
		res, err := r.result, r.err
		r.mu.Unlock()

		if err != nil {
			return nil, err
		}
		return res, nil
	}
}

// Status returns the current lifecycle state.
func (r *Request) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// LastResult returns the cached Result, or nil.
func (r *Request) LastResult() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

// LastError returns the cached Error, or nil.
func (r *Request) LastError() *Error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Endpoint returns the endpoint name, empty for Client.Do requests.
func (r *Request) Endpoint() string {
	return r.endpoint
}

// Method returns the lowercase method.
func (r *Request) Method() string {
	return r.config.Method
}

// Config returns a copy of the merged configuration sent to the transport.
func (r *Request) Config() httpclient.RequestConfig {
	return r.config.Clone()
}

func (r *Request) start() {
	r.mu.Lock()
	r.cycle++
	cycle := r.cycle
	done := make(chan struct{})
	r.done = done
	r.status = StatusPending
	r.result = nil
	r.err = nil
	r.okQueue = nil
	r.failQueue = nil
	r.mu.Unlock()

	r.notify(StatusPending)

	go r.run(cycle, done)
}

func (r *Request) run(cycle uint64, done chan struct{}) {
	defer close(done)

	resp, err := r.transport.Do(r.ctx, r.config.Clone())
	if err != nil {
		r.settleFail(cycle, normalizeError(err))
		return
	}
	r.settleOK(cycle, newResult(resp))
}

func (r *Request) settleOK(cycle uint64, res *Result) {
	r.mu.Lock()
	if cycle != r.cycle {
		r.mu.Unlock()
		return
	}
	r.status = StatusOK
	r.result = res
	queue := r.okQueue
	r.okQueue = nil
	r.mu.Unlock()

	for _, cb := range queue {
		r.invoke(StatusOK, func() { cb(res) })
	}
	r.notify(StatusOK)
}

func (r *Request) settleFail(cycle uint64, e *Error) {
	r.mu.Lock()
	if cycle != r.cycle {
		r.mu.Unlock()
		return
	}
	r.status = StatusFail
	r.err = e
	queue := r.failQueue
	r.failQueue = nil
	r.mu.Unlock()

	r.logger.Debug().
		Str("endpoint", r.endpoint).
		Str("method", r.config.Method).
		Int("status", e.Status).
		Err(e.Err).
		Msg("grest request failed")

	for _, cb := range queue {
		r.invoke(StatusFail, func() { cb(e) })
	}
	r.notify(StatusFail)
}

func (r *Request) notify(status Status) {
	msg := Message{Endpoint: r.endpoint, Method: r.config.Method, Status: status}
	r.metrics.recordTransition(r.ctx, msg)
	if r.events != nil {
		r.events.Notify(msg)
	}
}

// invoke runs a user callback and keeps a panic from escaping into the
// transport goroutine.
func (r *Request) invoke(kind Status, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.metrics.recordCallbackPanic(r.ctx, r.endpoint, kind)
			r.logger.Error().
				Str("endpoint", r.endpoint).
				Str("callback", string(kind)).
				Str("panic", fmt.Sprint(rec)).
				Msg("grest callback panicked")
		}
	}()
	fn()
}
