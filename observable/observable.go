// Package observable provides a small generic publish/subscribe primitive.
//
// An Observable fans every notified message out to its subscribers synchronously,
// in the order they subscribed:
//
//	events := observable.New[string]()
//	id := events.Subscribe("", func(msg string) {
//	    fmt.Println("got", msg)
//	})
//	events.Notify("hello")
//	events.Unsubscribe(id)
package observable

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Observable delivers messages of type T to registered subscribers.
//
// The zero value is not usable; create one with New.
type Observable[T any] struct {
	mu          sync.RWMutex
	order       []string
	subscribers map[string]func(T)
	logger      zerolog.Logger
}

// Option configures an Observable.
type Option func(*options)

type options struct {
	logger zerolog.Logger
}

// WithLogger sets the logger used to report recovered subscriber panics.
// Default: zerolog.Nop().
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates an empty Observable.
func New[T any](opts ...Option) *Observable[T] {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Observable[T]{
		subscribers: make(map[string]func(T)),
		logger:      o.logger,
	}
}

// Subscribe registers fn under id and returns the id.
//
// An empty id is replaced with a generated UUID. Subscribing again with an
// existing id replaces its callback but keeps its position in the delivery order.
func (o *Observable[T]) Subscribe(id string, fn func(T)) string {
	if id == "" {
		id = uuid.NewString()
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.subscribers[id]; !exists {
		o.order = append(o.order, id)
	}
	o.subscribers[id] = fn
	return id
}

// Unsubscribe removes the subscriber registered under id.
// It reports whether a subscriber was removed.
func (o *Observable[T]) Unsubscribe(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.subscribers[id]; !exists {
		return false
	}
	delete(o.subscribers, id)
	for i, v := range o.order {
		if v == id {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
	return true
}

// Notify delivers msg to every subscriber before returning.
//
// Subscribers are snapshotted first, so a subscriber may subscribe or
// unsubscribe during delivery. A panicking subscriber is recovered and
// logged; the remaining subscribers still receive the message.
func (o *Observable[T]) Notify(msg T) {
	o.mu.RLock()
	ids := make([]string, len(o.order))
	copy(ids, o.order)
	fns := make([]func(T), len(ids))
	for i, id := range ids {
		fns[i] = o.subscribers[id]
	}
	o.mu.RUnlock()

	for i, fn := range fns {
		o.deliver(ids[i], fn, msg)
	}
}

func (o *Observable[T]) deliver(id string, fn func(T), msg T) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().
				Str("subscriber", id).
				Interface("panic", r).
				Msg("observable subscriber panicked")
		}
	}()
	fn(msg)
}

// Len returns the number of subscribers.
func (o *Observable[T]) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.order)
}

// Clear removes every subscriber.
func (o *Observable[T]) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.order = nil
	o.subscribers = make(map[string]func(T))
}
