// FilePath: internal/loader/loader.go

// Package loader provides a request-scoped batching loader. Lookups issued
// while a batch window is open are collapsed into a single upstream fetch and
// memoized for the lifetime of the loader, which is one inbound GraphQL
// request.
package loader

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	defaultWait     = 2 * time.Millisecond
	defaultMaxBatch = 100
)

// Result is one positional slot of a batch fetch. A slot may fail without
// failing its siblings.
type Result[V any] struct {
	Value V
	Err   error
}

// BatchFunc fetches values for a set of distinct keys. The returned slice
// must align positionally with keys.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) []Result[V]

// Thunk blocks until its batch has been dispatched and returns the value or
// error at the key's position
type Thunk[V any] func() (V, error)

// Loader batches and memoizes lookups against a BatchFunc. Not meant to be
// shared across requests.
type Loader[K comparable, V any] struct {
	fetch    BatchFunc[K, V]
	wait     time.Duration
	maxBatch int

	mu     sync.Mutex
	thunks map[K]*thunk[V]
	batch  *batch[K, V]
}

type thunk[V any] struct {
	done  chan struct{}
	value V
	err   error
}

type batch[K comparable, V any] struct {
	keys       []K
	thunks     []*thunk[V]
	dispatched bool
}

// Option configures a Loader
type Option func(*loaderOptions)

type loaderOptions struct {
	wait     time.Duration
	maxBatch int
}

// WithWait sets the batch collection window
func WithWait(wait time.Duration) Option {
	return func(o *loaderOptions) { o.wait = wait }
}

// WithMaxBatch caps the number of distinct keys per upstream call; a full
// batch dispatches immediately
func WithMaxBatch(max int) Option {
	return func(o *loaderOptions) { o.maxBatch = max }
}

// New creates a Loader around fetch
func New[K comparable, V any](fetch BatchFunc[K, V], opts ...Option) *Loader[K, V] {
	options := loaderOptions{wait: defaultWait, maxBatch: defaultMaxBatch}
	for _, opt := range opts {
		opt(&options)
	}
	return &Loader[K, V]{
		fetch:    fetch,
		wait:     options.wait,
		maxBatch: options.maxBatch,
		thunks:   make(map[K]*thunk[V]),
	}
}

// Load fetches the value for key, waiting for the current batch to dispatch
func (l *Loader[K, V]) Load(ctx context.Context, key K) (V, error) {
	return l.LoadThunk(ctx, key)()
}

// LoadThunk enqueues key on the current batch and returns a Thunk for its
// slot. Repeated calls for the same key share one slot regardless of which
// batch resolved it.
func (l *Loader[K, V]) LoadThunk(ctx context.Context, key K) Thunk[V] {
	l.mu.Lock()

	if t, ok := l.thunks[key]; ok {
		l.mu.Unlock()
		return t.resolve
	}

	t := &thunk[V]{done: make(chan struct{})}
	l.thunks[key] = t

	if l.batch == nil {
		b := &batch[K, V]{}
		l.batch = b
		time.AfterFunc(l.wait, func() {
			l.dispatch(ctx, b)
		})
	}

	b := l.batch
	b.keys = append(b.keys, key)
	b.thunks = append(b.thunks, t)

	full := len(b.keys) >= l.maxBatch
	if full {
		l.batch = nil
	}
	l.mu.Unlock()

	if full {
		l.dispatch(ctx, b)
	}
	return t.resolve
}

// LoadAll loads every key, batching them together, and returns positional
// results
func (l *Loader[K, V]) LoadAll(ctx context.Context, keys []K) ([]V, error) {
	thunks := make([]Thunk[V], len(keys))
	for i, key := range keys {
		thunks[i] = l.LoadThunk(ctx, key)
	}
	values := make([]V, len(keys))
	for i, t := range thunks {
		value, err := t()
		if err != nil {
			return nil, err
		}
		values[i] = value
	}
	return values, nil
}

func (l *Loader[K, V]) dispatch(ctx context.Context, b *batch[K, V]) {
	l.mu.Lock()
	if b.dispatched {
		l.mu.Unlock()
		return
	}
	b.dispatched = true
	if l.batch == b {
		l.batch = nil
	}
	l.mu.Unlock()

	if len(b.keys) == 0 {
		return
	}

	results := l.fetch(ctx, b.keys)
	if len(results) != len(b.keys) {
		err := fmt.Errorf("batch function returned %d results for %d keys", len(results), len(b.keys))
		for _, t := range b.thunks {
			t.err = err
			close(t.done)
		}
		return
	}

	for i, t := range b.thunks {
		t.value = results[i].Value
		t.err = results[i].Err
		close(t.done)
	}
}

func (t *thunk[V]) resolve() (V, error) {
	<-t.done
	return t.value, t.err
}
