// Package cache is a parameter-keyed cache of server-owned resources with
// explicit staleness, prefix invalidation, and cancelable in-flight fetches.
// It is the reconciliation point between optimistic local edits and server
// truth: mutations snapshot and rewrite entries atomically, settles mark
// prefixes stale, and the next read refetches.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Key identifies one cached resource, e.g. "meals/today" or
// "meals/history/7". Keys form a hierarchy on "/" for prefix invalidation.
type Key string

// HasPrefix reports whether k equals prefix or sits under it.
func (k Key) HasPrefix(prefix Key) bool {
	return k == prefix || strings.HasPrefix(string(k), string(prefix)+"/")
}

type inflight struct {
	cancel context.CancelFunc
	done   chan struct{}
}

type entry struct {
	value     any
	hasValue  bool
	stale     bool
	fetchedAt time.Time
	inflight  *inflight
}

// Store holds the entries. One mutex guards every entry, so no read can
// observe a half-applied optimistic edit.
type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry

	now func() time.Time
}

func New() *Store {
	return &Store{
		entries: make(map[Key]*entry),
		now:     time.Now,
	}
}

func (s *Store) ensure(key Key) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	return e
}

// Put overwrites the entry's value exactly. Used for rollback restoration,
// so it does not touch freshness bookkeeping.
func (s *Store) Put(key Key, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.ensure(key)
	e.value = value
	e.hasValue = true
}

// Drop removes the entry entirely (restores "never fetched").
func (s *Store) Drop(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// MarkStale flags every entry at or under prefix so the next read refetches.
func (s *Store) MarkStale(prefix Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if k.HasPrefix(prefix) {
			e.stale = true
		}
	}
}

// CancelInflight cancels any fetch currently running for key and waits for
// it to finish, guaranteeing a stale response can no longer clobber a value
// written after this call returns.
func (s *Store) CancelInflight(key Key) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok || e.inflight == nil {
		s.mu.Unlock()
		return
	}
	inf := e.inflight
	e.inflight = nil
	s.mu.Unlock()

	inf.cancel()
	<-inf.done
}

// Swap atomically reads the current value and replaces it with whatever fn
// returns. fn runs under the store lock; it must not block. The previous
// value (the rollback snapshot) is returned. If fn's second result is false
// the entry is left untouched.
func (s *Store) Swap(key Key, fn func(old any, ok bool) (any, bool)) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var old any
	ok := false
	if e, exists := s.entries[key]; exists && e.hasValue {
		old = e.value
		ok = true
	}
	next, store := fn(old, ok)
	if store {
		e := s.ensure(key)
		e.value = next
		e.hasValue = true
	}
	return old, ok
}

// fetch returns the cached value when it is present, not stale, and younger
// than ttl; otherwise it runs fn with a cancelable context. A fetch that was
// canceled or superseded never writes its result back.
func (s *Store) fetch(ctx context.Context, key Key, ttl time.Duration, fn func(context.Context) (any, error)) (any, error) {
	s.mu.Lock()
	e := s.ensure(key)
	if e.hasValue && !e.stale && (ttl <= 0 || s.now().Sub(e.fetchedAt) < ttl) {
		v := e.value
		s.mu.Unlock()
		return v, nil
	}
	fctx, cancel := context.WithCancel(ctx)
	inf := &inflight{cancel: cancel, done: make(chan struct{})}
	if e.inflight != nil {
		e.inflight.cancel()
	}
	e.inflight = inf
	s.mu.Unlock()

	v, err := fn(fctx)
	close(inf.done)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	e = s.ensure(key)
	superseded := e.inflight != inf
	if !superseded {
		e.inflight = nil
	}
	if err != nil {
		return nil, err
	}
	if !superseded {
		e.value = v
		e.hasValue = true
		e.stale = false
		e.fetchedAt = s.now()
	}
	return v, nil
}

// Peek returns the current snapshot for key without triggering a fetch.
func Peek[T any](s *Store, key Key) (T, bool) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || !e.hasValue {
		return zero, false
	}
	v, ok := e.value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Fetch is the typed read-through entry point.
func Fetch[T any](ctx context.Context, s *Store, key Key, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := s.fetch(ctx, key, ttl, func(fctx context.Context) (any, error) {
		return fn(fctx)
	})
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, nil
	}
	return out, nil
}
