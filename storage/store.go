// Package storage provides the key/value persistence layer for tokens, the
// cached user record, and the region preference. Backends cover a single
// process (memory), a workstation (file), and multi-replica server hosts
// (redis). The Fallback wrapper shields callers from backend failures by
// shadowing every write in memory.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Scope selects the lifetime of an entry.
type Scope int

const (
	// ScopeLocal entries survive process restarts.
	ScopeLocal Scope = iota
	// ScopeSession entries live only as long as the process.
	ScopeSession
)

func (s Scope) String() string {
	if s == ScopeSession {
		return "session"
	}
	return "local"
}

// ErrNotFound is returned when a key has no value in the requested scope.
var ErrNotFound = errors.New("storage: key not found")

// Store is the persistence contract. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(key string, scope Scope) (string, error)
	Set(key, value string, scope Scope) error
	Delete(key string, scope Scope) error
}

// GetJSON reads key and unmarshals its value into out.
func GetJSON(s Store, key string, scope Scope, out any) error {
	raw, err := s.Get(key, scope)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

// SetJSON marshals v and stores it under key.
func SetJSON(s Store, key string, scope Scope, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.Set(key, string(raw), scope)
}
