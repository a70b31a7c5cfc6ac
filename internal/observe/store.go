// ABOUTME: Keyed observable cache of last-known values.
// ABOUTME: Publish-on-write, subscribe-on-read, deduplicated revalidation.
package observe

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Store holds the last published value for each key.
type Store struct {
	mu     sync.RWMutex
	values map[string]any
	subs   map[string]map[int]func(any)
	nextID int
	group  singleflight.Group
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		values: make(map[string]any),
		subs:   make(map[string]map[int]func(any)),
	}
}

// Get returns the last value published for key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Publish stores v under key and notifies the key's subscribers.
func (s *Store) Publish(key string, v any) {
	s.mu.Lock()
	s.values[key] = v
	fns := s.subscribers(key)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Invalidate forgets the value for key. If one was held, subscribers are
// called with nil so they drop what they show.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	_, had := s.values[key]
	delete(s.values, key)
	fns := s.subscribers(key)
	s.mu.Unlock()

	if !had {
		return
	}
	for _, fn := range fns {
		fn(nil)
	}
}

// subscribers snapshots the callbacks for key. Callers hold s.mu.
func (s *Store) subscribers(key string) []func(any) {
	fns := make([]func(any), 0, len(s.subs[key]))
	for _, fn := range s.subs[key] {
		fns = append(fns, fn)
	}
	return fns
}

// Subscribe registers fn for key. If a value is already known fn is called
// with it immediately. The returned func unsubscribes.
func (s *Store) Subscribe(key string, fn func(any)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	if s.subs[key] == nil {
		s.subs[key] = make(map[int]func(any))
	}
	s.subs[key][id] = fn
	v, ok := s.values[key]
	s.mu.Unlock()

	if ok {
		fn(v)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs[key], id)
			if len(s.subs[key]) == 0 {
				delete(s.subs, key)
			}
			s.mu.Unlock()
		})
	}
}

// Revalidate runs fetch and publishes its result. Concurrent revalidations
// of the same key share one fetch. On error the last value is kept.
func (s *Store) Revalidate(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	v, err, _ := s.group.Do(key, func() (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	s.Publish(key, v)
	return v, nil
}

// Value returns the value for key typed as T.
func Value[T any](s *Store, key string) (T, bool) {
	var zero T
	v, ok := s.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
