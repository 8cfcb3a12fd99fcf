package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionRegistryLease(t *testing.T) {
	clock := newFixedClock()
	r := NewSessionRegistry[string](time.Minute, clock.Now)

	assert.Equal(t, "first", r.PutIfAbsent("k", "first"))
	assert.Equal(t, "first", r.PutIfAbsent("k", "second"))

	clock.Advance(50 * time.Second)
	v, ok := r.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "first", v)

	// Get extended the lease
	clock.Advance(50 * time.Second)
	_, ok = r.Get("k")
	assert.True(t, ok)

	clock.Advance(61 * time.Second)
	_, ok = r.Get("k")
	assert.False(t, ok)
	assert.Equal(t, "third", r.PutIfAbsent("k", "third"))
}

func TestSessionRegistrySweep(t *testing.T) {
	clock := newFixedClock()
	r := NewSessionRegistry[int](time.Minute, clock.Now)

	r.PutIfAbsent("a", 1)
	clock.Advance(40 * time.Second)
	r.PutIfAbsent("b", 2)
	clock.Advance(30 * time.Second)

	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 1, r.Len())

	r.Delete("b")
	assert.Zero(t, r.Len())
	assert.Zero(t, r.Sweep())
}
