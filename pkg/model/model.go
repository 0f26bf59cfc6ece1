// Package model holds the wire and domain types shared by the storefront SDK
// packages: user records, token pairs, regions, and the response envelope.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Built-in role names used by the backend's claim set.
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// UserInfo is the cached user record. It mirrors the GetUserInfo payload and
// is persisted next to the token pair so a restart can restore the session
// without a network round-trip.
type UserInfo struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"displayName,omitempty"`
	Roles        []string  `json:"roles"`
	IsActive     bool      `json:"isActive"`
	LastLoggedIn time.Time `json:"lastLoggedIn,omitzero"`
}

// HasRole reports whether the user carries the given role claim.
func (u UserInfo) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the user carries at least one of the given roles.
func (u UserInfo) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user carries the Admin role.
func (u UserInfo) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// TokenPair is the credential pair issued by login, OTP verification, and
// refresh. AccessToken is a JWT; RefreshToken is opaque and single-use.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Envelope is the backend response wrapper. Data stays raw so callers decode
// into their own payload types.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// APIError is the normalized shape of every non-2xx backend response.
// Callers never branch on transport-specific error formats.
type APIError struct {
	Message    string              `json:"message"`
	StatusCode int                 `json:"statusCode"`
	Errors     map[string][]string `json:"errors,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}
