package storage

import (
	"errors"
	"sync/atomic"
)

// Fallback wraps a primary store with an in-memory shadow. Every write lands
// in the shadow first, then in the primary; primary failures are swallowed so
// callers never handle storage errors. Reads prefer the primary and fall back
// to the shadow, which covers the case where an earlier write silently failed
// to persist.
type Fallback struct {
	primary Store
	shadow  *MemoryStore

	writeFailures atomic.Uint64
	readFailures  atomic.Uint64
}

// NewFallback wraps primary. A nil primary degrades to memory-only.
func NewFallback(primary Store) *Fallback {
	if primary == nil {
		primary = NewMemoryStore()
	}
	return &Fallback{
		primary: primary,
		shadow:  NewMemoryStore(),
	}
}

// Get implements Store. It returns ErrNotFound only when neither the primary
// nor the shadow holds the key.
func (f *Fallback) Get(key string, scope Scope) (string, error) {
	value, err := f.primary.Get(key, scope)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, ErrNotFound) {
		f.readFailures.Add(1)
	}
	return f.shadow.Get(key, scope)
}

// Set implements Store. Never returns an error.
func (f *Fallback) Set(key, value string, scope Scope) error {
	_ = f.shadow.Set(key, value, scope)
	if err := f.primary.Set(key, value, scope); err != nil {
		f.writeFailures.Add(1)
	}
	return nil
}

// Delete implements Store. Never returns an error.
func (f *Fallback) Delete(key string, scope Scope) error {
	_ = f.shadow.Delete(key, scope)
	if err := f.primary.Delete(key, scope); err != nil {
		f.writeFailures.Add(1)
	}
	return nil
}

// WriteFailures reports how many primary writes were absorbed by the shadow.
func (f *Fallback) WriteFailures() uint64 {
	return f.writeFailures.Load()
}
