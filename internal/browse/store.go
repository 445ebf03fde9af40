// Package browse keeps the search, filter and paging state of a browsing
// session in memory and tells subscribers when it changes.
package browse

import "sync"

// Observers are called in update order and must not update the store they
// are subscribed to.
type store[T any] struct {
	mu      sync.RWMutex
	state   T
	initial T
	clone   func(T) T
	seq     uint64

	deliverMu sync.Mutex
	delivered uint64

	obsMu     sync.Mutex
	observers map[int]func(T)
	nextID    int
}

func newStore[T any](initial T, clone func(T) T) *store[T] {
	return &store[T]{
		state:     clone(initial),
		initial:   clone(initial),
		clone:     clone,
		observers: make(map[int]func(T)),
	}
}

func (s *store[T]) get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clone(s.state)
}

func (s *store[T]) update(fn func(*T)) {
	s.mu.Lock()
	fn(&s.state)
	s.seq++
	seq, next := s.seq, s.clone(s.state)
	s.mu.Unlock()
	s.notify(seq, next)
}

func (s *store[T]) reset() {
	s.update(func(st *T) { *st = s.clone(s.initial) })
}

// subscribe registers fn and returns a function removing it.
func (s *store[T]) subscribe(fn func(T)) func() {
	s.obsMu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

// notify drops a state that a later update already delivered.
func (s *store[T]) notify(seq uint64, state T) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if seq <= s.delivered {
		return
	}
	s.delivered = seq

	s.obsMu.Lock()
	fns := make([]func(T), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.obsMu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
