// Package session holds the process-wide answer to "is someone logged in and
// who". The manager restores state from persisted storage at boot, keeps it
// in sync through explicit NotifyLogin/NotifyLogout calls from producers like
// the OTP flow, and fans state changes out to subscribed observers.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bunhouse/storefront-go/internal/audit"
	"github.com/bunhouse/storefront-go/internal/telemetry"
	"github.com/bunhouse/storefront-go/pkg/model"
	"github.com/bunhouse/storefront-go/token"
	"github.com/bunhouse/storefront-go/transport"
)

// State is the session snapshot handed to observers. The invariant
// IsAuthenticated => User != nil always holds; a violation is treated as a
// corrupt session and forces logout.
type State struct {
	IsAuthenticated bool
	User            *model.UserInfo
	// IsLoading is true only before the boot-time restore has run.
	IsLoading bool
}

// Listener observes session state changes.
type Listener func(State)

// LoginResult is returned by Login. Bad credentials are a result, not an
// error; only transport-level faults surface as errors.
type LoginResult struct {
	Success bool
	Message string
	User    *model.UserInfo
}

// Config assembles a Manager.
type Config struct {
	// Transport must be the authenticated transport.
	Transport *transport.Transport
	// Public must be the public transport. Login runs on it: the caller is
	// anonymous by definition, and a 401 for bad credentials must surface
	// as a result, never enter the refresh pipeline.
	Public *transport.Transport
	Tokens *token.Manager

	Logger   zerolog.Logger
	Recorder *telemetry.Recorder
	Audit    *audit.Dispatcher
}

// Manager is the single process-wide source of session truth.
type Manager struct {
	cfg Config

	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int

	initOnce sync.Once
}

// NewManager returns an uninitialized Manager (IsLoading until Initialize).
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Transport == nil {
		return nil, errors.New("session: transport required")
	}
	if cfg.Public == nil {
		return nil, errors.New("session: public transport required")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("session: token manager required")
	}
	return &Manager{
		cfg:       cfg,
		state:     State{IsLoading: true},
		listeners: map[int]Listener{},
	}, nil
}

// Initialize runs the boot-time restore exactly once. When a non-expired
// access token and a cached user exist, the session is marked authenticated
// immediately so callers never see a logged-out flash, and the token is then
// verified with the server in the background. An invalid or absent local
// session just lands unauthenticated; boot never fails.
func (m *Manager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() {
		access := m.cfg.Tokens.AccessToken()
		user, hasUser := m.cfg.Tokens.User()

		if access == "" || m.cfg.Tokens.IsExpired(access) {
			m.cfg.Tokens.Clear()
			m.setState(State{})
			return
		}
		if !hasUser {
			// Valid token but no user record: corrupt session.
			m.cfg.Tokens.Clear()
			m.setState(State{})
			return
		}

		m.setState(State{IsAuthenticated: true, User: &user})
		m.cfg.Logger.Debug().Int64("user_id", user.ID).Msg("session restored from storage")

		go m.verifyRestored(ctx)
	})
}

// verifyRestored confirms the restored token with the server. Rejection
// forces logout; acceptance keeps the locally cached user record as-is, so a
// sparse whoami response can never clobber cached role claims. Transient
// faults are ignored; boot verification is deliberately lenient.
func (m *Manager) verifyRestored(ctx context.Context) {
	err := m.cfg.Transport.Get(ctx, "/api/Account/IsAuthenticated", nil)
	switch {
	case err == nil:
		m.cfg.Recorder.Inc(telemetry.MetricSessionRestored)
	case errors.Is(err, transport.ErrSessionExpired):
		// Transport already cleared tokens and fired its hook.
		m.NotifyLogout()
	default:
		m.cfg.Logger.Debug().Err(err).Msg("background session verification skipped")
	}
}

// Login performs the password grant. Rejected credentials return an
// unsuccessful result with the server's message.
func (m *Manager) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var pair model.TokenPair
	err := m.cfg.Public.Post(ctx, "/api/Account/Login", map[string]string{
		"username": username,
		"password": password,
	}, &pair)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			m.cfg.Recorder.Inc(telemetry.MetricLoginFailure)
			return LoginResult{Success: false, Message: apiErr.Message}, nil
		}
		return LoginResult{}, err
	}
	if pair.AccessToken == "" {
		m.cfg.Recorder.Inc(telemetry.MetricLoginFailure)
		return LoginResult{Success: false, Message: "login failed"}, nil
	}

	if err := m.cfg.Tokens.SetTokens(pair.AccessToken, pair.RefreshToken); err != nil {
		return LoginResult{}, err
	}

	var user model.UserInfo
	if err := m.cfg.Transport.Get(ctx, "/api/Account/GetUserInfo", &user); err != nil {
		// Never leave a persisted pair without a user record.
		m.cfg.Tokens.Clear()
		return LoginResult{}, err
	}
	if err := m.cfg.Tokens.SaveUser(user); err != nil {
		m.cfg.Tokens.Clear()
		return LoginResult{}, err
	}

	m.NotifyLogin(user)
	return LoginResult{Success: true, User: &user}, nil
}

// Logout notifies the server best-effort, then unconditionally clears local
// state. Safe to call repeatedly; a failed server call never leaves the
// session authenticated.
func (m *Manager) Logout(ctx context.Context) {
	if m.cfg.Tokens.AccessToken() != "" {
		if err := m.cfg.Transport.Get(ctx, "/api/Account/Logout", nil); err != nil {
			m.cfg.Logger.Debug().Err(err).Msg("server logout failed, clearing locally")
		}
	}

	m.cfg.Tokens.Clear()
	m.cfg.Recorder.Inc(telemetry.MetricLogout)
	m.NotifyLogout()
}

// RefreshUser re-fetches the user record. Unlike boot-time verification,
// any failure here is treated as an invalid session and forces logout.
func (m *Manager) RefreshUser(ctx context.Context) error {
	var fresh model.UserInfo
	if err := m.cfg.Transport.Get(ctx, "/api/Account/GetUserInfo", &fresh); err != nil {
		m.cfg.Tokens.Clear()
		m.NotifyLogout()
		return err
	}

	// Empty fresh roles never clobber non-empty cached roles.
	if len(fresh.Roles) == 0 {
		if cached, ok := m.cfg.Tokens.User(); ok && len(cached.Roles) > 0 {
			fresh.Roles = cached.Roles
		}
	}

	if err := m.cfg.Tokens.SaveUser(fresh); err != nil {
		return err
	}
	m.setState(State{IsAuthenticated: true, User: &fresh})
	return nil
}

// NotifyLogin marks the session authenticated as user. Producers (the OTP
// flow, a background refresh) call this instead of broadcasting ambient
// events.
func (m *Manager) NotifyLogin(user model.UserInfo) {
	m.setState(State{IsAuthenticated: true, User: &user})
	m.cfg.Recorder.Inc(telemetry.MetricLoginSuccess)
	m.cfg.Audit.Emit(context.Background(), audit.Event{
		Timestamp: time.Now(),
		Type:      audit.EventLogin,
		UserID:    user.ID,
	})
	m.cfg.Logger.Info().Int64("user_id", user.ID).Msg("session authenticated")
}

// NotifyLogout resets the session to unauthenticated.
func (m *Manager) NotifyLogout() {
	m.setState(State{})
	m.cfg.Audit.Emit(context.Background(), audit.Event{
		Timestamp: time.Now(),
		Type:      audit.EventLogout,
	})
}

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneState(m.state)
}

// IsAuthenticated reports whether a user is logged in.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.IsAuthenticated
}

// HasRole reports whether the current user carries role.
func (m *Manager) HasRole(role string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.User != nil && m.state.User.HasRole(role)
}

// HasAnyRole reports whether the current user carries any of roles.
func (m *Manager) HasAnyRole(roles ...string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.User != nil && m.state.User.HasAnyRole(roles...)
}

// IsAdmin reports whether the current user carries the Admin role.
func (m *Manager) IsAdmin() bool {
	return m.HasRole(model.RoleAdmin)
}

// Subscribe registers a listener for state changes and returns its removal
// func. Listeners run synchronously on the mutating goroutine.
func (m *Manager) Subscribe(l Listener) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) setState(next State) {
	// Corrupt session guard: authenticated without a user forces logout.
	if next.IsAuthenticated && next.User == nil {
		m.cfg.Tokens.Clear()
		next = State{}
	}

	m.mu.Lock()
	m.state = next
	observers := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		observers = append(observers, l)
	}
	snapshot := cloneState(next)
	m.mu.Unlock()

	for _, l := range observers {
		l(snapshot)
	}
}

func cloneState(s State) State {
	if s.User != nil {
		user := *s.User
		s.User = &user
	}
	return s
}
