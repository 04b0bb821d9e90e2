package state

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Listener receives every snapshot published by a Store.
type Listener[S any] func(S)

type subscription[S any] struct {
	fn      Listener[S]
	removed atomic.Bool
}

// Store holds a single snapshot value and republishes each transition to its
// listeners. Snapshots are replaced wholesale, never mutated in place.
type Store[S any] struct {
	mu         sync.Mutex
	state      S
	version    uint64
	subs       []*subscription[S]
	pending    []S
	delivering bool
}

// NewStore constructs a store seeded with initial.
func NewStore[S any](initial S) *Store[S] {
	return &Store[S]{state: initial}
}

// Snapshot returns the current snapshot.
func (s *Store[S]) Snapshot() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Version returns the number of transitions applied so far.
func (s *Store[S]) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Subscribe registers fn and returns a function that removes it. The returned
// function is idempotent and safe to call from inside a listener.
func (s *Store[S]) Subscribe(fn Listener[S]) func() {
	if fn == nil {
		return func() {}
	}
	sub := &subscription[S]{fn: fn}
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.removed.Store(true)
			s.mu.Lock()
			s.subs = slices.DeleteFunc(s.subs, func(candidate *subscription[S]) bool {
				return candidate == sub
			})
			s.mu.Unlock()
		})
	}
}

// Update runs fn against the current snapshot while holding the store lock.
// When fn reports ok the returned value becomes the new snapshot and listeners
// are notified. fn must not call back into the store.
func (s *Store[S]) Update(fn func(prev S) (next S, ok bool)) bool {
	if fn == nil {
		return false
	}
	s.mu.Lock()
	next, ok := fn(s.state)
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.state = next
	s.version++
	s.pending = append(s.pending, next)
	if s.delivering {
		// Another caller (or an outer listener round) drains the queue in order.
		s.mu.Unlock()
		return true
	}
	s.delivering = true
	s.mu.Unlock()

	s.drain()
	return true
}

// Set applies an unconditional transition.
func (s *Store[S]) Set(fn func(prev S) S) {
	if fn == nil {
		return
	}
	s.Update(func(prev S) (S, bool) {
		return fn(prev), true
	})
}

// Close drops every listener. The snapshot stays readable and writable.
func (s *Store[S]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		sub.removed.Store(true)
	}
	s.subs = nil
}

// Listeners reports how many listeners are registered.
func (s *Store[S]) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Store[S]) drain() {
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.pending = nil
			s.delivering = false
			s.mu.Unlock()
			panic(r)
		}
	}()

	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.delivering = false
			s.mu.Unlock()
			return
		}
		next := s.pending[0]
		var zero S
		s.pending[0] = zero
		s.pending = s.pending[1:]
		subs := slices.Clone(s.subs)
		s.mu.Unlock()

		for _, sub := range subs {
			if sub.removed.Load() {
				continue
			}
			sub.fn(next)
		}
	}
}
