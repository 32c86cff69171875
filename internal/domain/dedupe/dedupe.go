// Package dedupe tracks claims on pending work so identical jobs are not
// queued twice.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records which owner holds each key until it is released.
type Deduper interface {
	// Claim atomically assigns key to owner if it is free. It returns the
	// current holder and whether this call made the claim. When the deduper
	// is full, the claim fails with an empty holder.
	Claim(ctx context.Context, key, owner string) (holder string, claimed bool)

	// Release frees key if owner still holds it. It reports whether the
	// claim was removed.
	Release(ctx context.Context, key, owner string) bool

	// Holder returns the owner of key, if any.
	Holder(ctx context.Context, key string) (string, bool)

	Size() int64
}

// inMemoryDeduper keeps claims in a map guarded by a mutex.
// For bounded mode (maxSize > 0) new claims are refused once full; held
// claims are never evicted, since evicting one would admit a duplicate.
type inMemoryDeduper struct {
	mu      sync.RWMutex
	claims  map[string]string // key -> owner
	maxSize int               // 0 or negative = unbounded
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 1024,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.claims = make(map[string]string)
	return d
}

func (d *inMemoryDeduper) Claim(ctx context.Context, key, owner string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if holder, exists := d.claims[key]; exists {
		return holder, false
	}
	if d.maxSize > 0 && len(d.claims) >= d.maxSize {
		return "", false
	}
	d.claims[key] = owner
	d.size.Add(1)
	return owner, true
}

func (d *inMemoryDeduper) Release(ctx context.Context, key, owner string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	holder, exists := d.claims[key]
	if !exists || holder != owner {
		return false
	}
	delete(d.claims, key)
	d.size.Add(-1)
	return true
}

func (d *inMemoryDeduper) Holder(ctx context.Context, key string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	holder, exists := d.claims[key]
	return holder, exists
}

// Size returns the number of held claims.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
