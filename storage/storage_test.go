package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.Get("missing", ScopeLocal); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set("k", "v", ScopeLocal); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, err := store.Get("k", ScopeLocal)
	if err != nil || value != "v" {
		t.Fatalf("Get = %q, %v", value, err)
	}

	// Scopes are isolated.
	if _, err := store.Get("k", ScopeSession); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected scope isolation, got %v", err)
	}

	if err := store.Delete("k", ScopeLocal); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get("k", ScopeLocal); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFileStorePersistsLocalScope(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	store, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := store.Set("accessToken", "abc", ScopeLocal); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set("transient", "x", ScopeSession); err != nil {
		t.Fatalf("Set session failed: %v", err)
	}

	// A fresh store over the same file sees local entries only.
	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	value, err := reopened.Get("accessToken", ScopeLocal)
	if err != nil || value != "abc" {
		t.Fatalf("Get after reopen = %q, %v", value, err)
	}
	if _, err := reopened.Get("transient", ScopeSession); !errors.Is(err, ErrNotFound) {
		t.Fatalf("session entry survived restart: %v", err)
	}
}

// failingStore rejects every operation, simulating denied storage access.
type failingStore struct{}

func (failingStore) Get(string, Scope) (string, error)  { return "", errors.New("storage disabled") }
func (failingStore) Set(string, string, Scope) error    { return errors.New("storage disabled") }
func (failingStore) Delete(string, Scope) error         { return errors.New("storage disabled") }

func TestFallbackShadowsFailedWrites(t *testing.T) {
	fb := NewFallback(failingStore{})

	if err := fb.Set("k", "v", ScopeLocal); err != nil {
		t.Fatalf("Set must swallow primary failures, got %v", err)
	}
	value, err := fb.Get("k", ScopeLocal)
	if err != nil || value != "v" {
		t.Fatalf("Get = %q, %v; want shadow value", value, err)
	}
	if fb.WriteFailures() == 0 {
		t.Fatal("expected write failure to be counted")
	}

	if err := fb.Delete("k", ScopeLocal); err != nil {
		t.Fatalf("Delete must swallow primary failures, got %v", err)
	}
	if _, err := fb.Get("k", ScopeLocal); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFallbackPrefersPrimary(t *testing.T) {
	primary := NewMemoryStore()
	fb := NewFallback(primary)

	if err := fb.Set("k", "shadowed", ScopeLocal); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	// A concurrent writer (another tab, another replica) updates the
	// primary behind the fallback's back; reads must see it.
	if err := primary.Set("k", "primary", ScopeLocal); err != nil {
		t.Fatalf("primary Set failed: %v", err)
	}
	value, err := fb.Get("k", ScopeLocal)
	if err != nil || value != "primary" {
		t.Fatalf("Get = %q, %v; want primary value", value, err)
	}
}

func TestJSONHelpers(t *testing.T) {
	store := NewMemoryStore()

	type record struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}
	if err := SetJSON(store, "rec", ScopeLocal, record{Name: "qahwa", N: 3}); err != nil {
		t.Fatalf("SetJSON failed: %v", err)
	}

	var out record
	if err := GetJSON(store, "rec", ScopeLocal, &out); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if out.Name != "qahwa" || out.N != 3 {
		t.Fatalf("GetJSON = %+v", out)
	}

	if err := GetJSON(store, "absent", ScopeLocal, &out); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
