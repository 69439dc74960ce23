// Package call turns an asynchronous message stream into synchronous
// request/response calls.
//
// A Table records outstanding expectations ("waiters") keyed by the
// identifier of the response they are blocking on. The receive goroutine
// delivers each inbound message to at most one matching waiter; callers
// block on the returned channel with a timeout. Multiple calls may be
// outstanding at once as long as they expect different identifiers.
package call

import (
	"context"
	"sync"
)

// Table tracks pending calls keyed by expected response identifier K,
// delivering messages of type M. The zero value is not usable; use NewTable.
type Table[K comparable, M any] struct {
	mu      sync.Mutex
	waiters map[K]chan M
}

// NewTable creates an empty pending-call table.
func NewTable[K comparable, M any]() *Table[K, M] {
	return &Table[K, M]{waiters: make(map[K]chan M)}
}

// Register records an expectation for a response identified by key and
// returns the delivery channel plus a cancel func. Cancel must be called
// once the caller is done waiting (delivered or not); it is idempotent.
// Registering a key that is already pending replaces the previous waiter,
// which will then never be delivered.
func (t *Table[K, M]) Register(key K) (<-chan M, func()) {
	ch := make(chan M, 1)

	t.mu.Lock()
	t.waiters[key] = ch
	t.mu.Unlock()

	cancel := func() {
		t.mu.Lock()
		if t.waiters[key] == ch {
			delete(t.waiters, key)
		}
		t.mu.Unlock()
	}
	return ch, cancel
}

// Deliver hands msg to the waiter registered for key, if any, clearing the
// registration. It reports whether a waiter consumed the message.
func (t *Table[K, M]) Deliver(key K, msg M) bool {
	t.mu.Lock()
	ch, ok := t.waiters[key]
	if ok {
		delete(t.waiters, key)
	}
	t.mu.Unlock()

	if !ok {
		return false
	}
	ch <- msg
	return true
}

// dispatchKey marks a context as belonging to a receive goroutine's
// dispatch path.
type dispatchKey struct{}

// WithDispatch marks ctx as running inside a client's dispatch context.
// Clients wrap the context they hand to internal handlers and subscriber
// callbacks so that blocking entry points can refuse reentrant calls.
func WithDispatch(ctx context.Context) context.Context {
	return context.WithValue(ctx, dispatchKey{}, true)
}

// InDispatch reports whether ctx is a dispatch context. A blocking call
// issued under such a context can never complete, because the goroutine
// that would satisfy it is the caller itself.
func InDispatch(ctx context.Context) bool {
	v, _ := ctx.Value(dispatchKey{}).(bool)
	return v
}
