// Package cache provides a small in-process key/value store with TTL
// expiry and size-bounded eviction. It backs the bearer-token session
// store, which is why it favors predictable memory over hit rate.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Store holds up to capacity entries for at most ttl each. When full,
// writing a new key evicts the entry that has gone longest untouched.
type Store[V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time

	// order keeps the most recently touched entry at the front.
	order *list.List
	index map[string]*list.Element
}

type entry[V any] struct {
	key      string
	val      V
	deadline time.Time
}

func New[V any](capacity int, ttl time.Duration) *Store[V] {
	return &Store[V]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		order:    list.New(),
		index:    make(map[string]*list.Element),
	}
}

// Put stores val under key, resetting its TTL. Writing an existing key
// refreshes it in place.
func (s *Store[V]) Put(key string, val V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entry[V]{key: key, val: val, deadline: s.now().Add(s.ttl)}
	if el, ok := s.index[key]; ok {
		el.Value = e
		s.order.MoveToFront(el)
		return
	}

	s.index[key] = s.order.PushFront(e)
	if s.order.Len() > s.capacity {
		s.drop(s.order.Back())
	}
}

// Get returns the live value for key. Expired entries are dropped on
// access, so a hit also counts as a touch.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	el, ok := s.index[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[V])
	if !e.deadline.After(s.now()) {
		s.drop(el)
		return zero, false
	}
	s.order.MoveToFront(el)
	return e.val, true
}

// Drop removes key if present.
func (s *Store[V]) Drop(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.index[key]; ok {
		s.drop(el)
	}
}

// Len reports the number of stored entries, expired or not.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Sweep drops every expired entry and reports how many were dropped.
func (s *Store[V]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now()
	dropped := 0
	for el := s.order.Back(); el != nil; {
		prev := el.Prev()
		if e := el.Value.(*entry[V]); !e.deadline.After(cutoff) {
			s.drop(el)
			dropped++
		}
		el = prev
	}
	return dropped
}

// Janitor sweeps the store every interval until the returned stop
// function is called. Stop blocks until the goroutine exits and is safe
// to call more than once.
func (s *Store[V]) Janitor(interval time.Duration) (stop func()) {
	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				s.Sweep()
			case <-quit:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(quit)
			<-done
		})
	}
}

// drop removes el from both the list and the index. Caller holds mu.
func (s *Store[V]) drop(el *list.Element) {
	delete(s.index, el.Value.(*entry[V]).key)
	s.order.Remove(el)
}
