// Package token manages the persisted credential pair and the cached user
// record. The access token's expiry is checked client-side before it is
// trusted; server-side validation remains the ultimate authority.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bunhouse/storefront-go/pkg/model"
	"github.com/bunhouse/storefront-go/storage"
)

// Fixed storage keys. They must survive a restart, so both tokens live in
// ScopeLocal.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// Manager reads and writes the token pair and cached user through a
// storage.Store. It performs no network calls.
type Manager struct {
	store storage.Store
	now   func() time.Time
}

// NewManager returns a Manager over store.
func NewManager(store storage.Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// WithNow overrides the time source used by IsExpired. Intended for tests.
func (m *Manager) WithNow(now func() time.Time) *Manager {
	m.now = now
	return m
}

// SetTokens persists both tokens.
func (m *Manager) SetTokens(access, refresh string) error {
	if err := m.store.Set(KeyAccessToken, access, storage.ScopeLocal); err != nil {
		return err
	}
	return m.store.Set(KeyRefreshToken, refresh, storage.ScopeLocal)
}

// AccessToken returns the stored access token, empty when absent.
func (m *Manager) AccessToken() string {
	value, err := m.store.Get(KeyAccessToken, storage.ScopeLocal)
	if err != nil {
		return ""
	}
	return value
}

// RefreshToken returns the stored refresh token, empty when absent.
func (m *Manager) RefreshToken() string {
	value, err := m.store.Get(KeyRefreshToken, storage.ScopeLocal)
	if err != nil {
		return ""
	}
	return value
}

// Clear removes both tokens and the cached user record.
func (m *Manager) Clear() {
	_ = m.store.Delete(KeyAccessToken, storage.ScopeLocal)
	_ = m.store.Delete(KeyRefreshToken, storage.ScopeLocal)
	_ = m.store.Delete(KeyUser, storage.ScopeLocal)
}

// SaveUser caches the user record next to the tokens.
func (m *Manager) SaveUser(user model.UserInfo) error {
	return storage.SetJSON(m.store, KeyUser, storage.ScopeLocal, user)
}

// User returns the cached user record, if any.
func (m *Manager) User() (model.UserInfo, bool) {
	var user model.UserInfo
	if err := storage.GetJSON(m.store, KeyUser, storage.ScopeLocal, &user); err != nil {
		return model.UserInfo{}, false
	}
	return user, true
}

// IsExpired decodes tok's exp claim without verifying the signature and
// compares it against the current time. Any decode failure, missing claim
// included, counts as expired.
func (m *Manager) IsExpired(tok string) bool {
	if tok == "" {
		return true
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tok, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return !m.now().Before(exp.Time)
}
