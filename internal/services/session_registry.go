package services

import (
	"sync"
	"time"

	"surveyor/pkg/utils"
)

type sessionEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// SessionRegistry holds the live, authoritative state of open sessions. Entries
// idle for longer than ttl are dropped; their drafts stay in the cache.
type SessionRegistry[T any] struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  utils.Clock
	data map[string]*sessionEntry[T]
}

func NewSessionRegistry[T any](ttl time.Duration, now utils.Clock) *SessionRegistry[T] {
	if now == nil {
		now = utils.SystemClock
	}
	return &SessionRegistry[T]{
		ttl:  ttl,
		now:  now,
		data: make(map[string]*sessionEntry[T]),
	}
}

// Get returns a live entry and extends its lease.
func (r *SessionRegistry[T]) Get(key string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	e, ok := r.data[key]
	if !ok {
		return zero, false
	}
	now := r.now()
	if now.After(e.expiresAt) {
		delete(r.data, key)
		return zero, false
	}
	e.expiresAt = now.Add(r.ttl)
	return e.value, true
}

// PutIfAbsent stores v unless a live entry exists, and returns whichever is kept.
func (r *SessionRegistry[T]) PutIfAbsent(key string, v T) T {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if e, ok := r.data[key]; ok && !now.After(e.expiresAt) {
		e.expiresAt = now.Add(r.ttl)
		return e.value
	}
	r.data[key] = &sessionEntry[T]{value: v, expiresAt: now.Add(r.ttl)}
	return v
}

func (r *SessionRegistry[T]) Delete(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
}

// Sweep drops expired entries and reports how many were removed.
func (r *SessionRegistry[T]) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for k, e := range r.data {
		if now.After(e.expiresAt) {
			delete(r.data, k)
			removed++
		}
	}
	return removed
}

func (r *SessionRegistry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}
