// Package storefront is the Go client SDK for the bunhouse storefront API.
// It owns the authentication and session lifecycle (OTP phone login, token
// storage, refresh-then-retry transport, boot-time session restore) and
// exposes typed services for the surrounding storefront surface: catalog,
// orders, wholesale ordering, notification settings.
//
// The package is the public surface. It exposes [Client], [Builder],
// [Config], sentinel errors, and value types; internal coordination (audit
// dispatch, metric counters) lives under internal/ and is never exported.
//
// # Architecture boundaries
//
//   - storage is the only persistence layer; no other package touches disk
//     or Redis directly.
//   - token performs no network I/O; transport performs no storage I/O
//     except through the token manager.
//   - The session manager is the single writer of session state. Producers
//     (the OTP flow, background verification) hand it users through explicit
//     NotifyLogin/NotifyLogout calls rather than ambient events.
//
// # Session expiry contract
//
// The authenticated transport attempts exactly one token refresh per
// request on 401. Concurrent 401s share one in-flight refresh. A second 401
// after refresh, a rejected refresh, or a missing refresh token all clear
// the stored tokens, fire Config-provided hooks, and surface
// [ErrSessionExpired]. The public transport never refreshes and never
// terminates the session, so guest flows (OTP login, wholesale ordering,
// catalog browsing) stay reachable with an expired session.
package storefront
