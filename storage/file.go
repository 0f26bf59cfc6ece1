package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists ScopeLocal entries as a JSON object in a single file,
// created with 0600 permissions. ScopeSession entries stay in memory.
type FileStore struct {
	path string

	mu      sync.Mutex
	local   map[string]string
	session map[string]string
}

// NewFileStore loads (or initializes) the store at path. The parent
// directory is created when missing.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	f := &FileStore{
		path:    path,
		local:   map[string]string{},
		session: map[string]string{},
	}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return f, nil
	case err != nil:
		return nil, fmt.Errorf("read storage file: %w", err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &f.local); err != nil {
			return nil, fmt.Errorf("parse storage file %s: %w", path, err)
		}
	}
	return f, nil
}

// Get implements Store.
func (f *FileStore) Get(key string, scope Scope) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	value, ok := f.scoped(scope)[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set implements Store.
func (f *FileStore) Set(key, value string, scope Scope) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.scoped(scope)[key] = value
	if scope == ScopeLocal {
		return f.flush()
	}
	return nil
}

// Delete implements Store.
func (f *FileStore) Delete(key string, scope Scope) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.scoped(scope), key)
	if scope == ScopeLocal {
		return f.flush()
	}
	return nil
}

func (f *FileStore) scoped(scope Scope) map[string]string {
	if scope == ScopeSession {
		return f.session
	}
	return f.local
}

// flush writes the local map atomically: temp file then rename.
func (f *FileStore) flush() error {
	data, err := json.MarshalIndent(f.local, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write storage file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}
