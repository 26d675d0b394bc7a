// Package auth owns the client-side session lifecycle: login, logout,
// refresh and the derived authentication and role queries. The Manager is
// the only writer of the session store.
package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jrsteele09/go-billing-console/authmodel"
	errs "github.com/jrsteele09/go-billing-console/internal/errors"
	"github.com/jrsteele09/go-billing-console/sessions"
	"github.com/jrsteele09/go-billing-console/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// Backend is the /auth surface the Manager talks to. apiclient.AuthAPI
// implements it.
type Backend interface {
	Login(ctx context.Context, req authmodel.LoginRequest) (*authmodel.AuthResponse, error)
	LoginMobile(ctx context.Context, req authmodel.MobileLoginRequest) (*authmodel.AuthResponse, error)

	// Logout must not attempt a session renewal.
	Logout(ctx context.Context) error

	Refresh(ctx context.Context, req authmodel.RefreshRequest) (*authmodel.RefreshResponse, error)
	Me(ctx context.Context) (*users.User, error)

	// Profile fetches /auth/me with an explicit access token, bypassing the
	// held session.
	Profile(ctx context.Context, accessToken string) (*users.User, error)
}

// LoginMode selects the login endpoint.
type LoginMode int

const (
	LoginModeUsername LoginMode = iota // POST /auth/login
	LoginModeMobile                    // POST /auth/login/mobile
)

func (m LoginMode) String() string {
	switch m {
	case LoginModeUsername:
		return "username"
	case LoginModeMobile:
		return "mobile"
	default:
		return fmt.Sprintf("LoginMode(%d)", int(m))
	}
}

// ParseLoginMode converts "username" or "mobile" to a LoginMode.
func ParseLoginMode(s string) (LoginMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "username":
		return LoginModeUsername, nil
	case "mobile":
		return LoginModeMobile, nil
	default:
		return 0, errs.Wrapf(errs.ErrInvalidRequest, "unknown login mode %q", s)
	}
}

var _ oauth2.TokenSource = (*Manager)(nil)

// Manager holds the current session in memory and mirrors every change to
// the store. The lock is never held across a backend call.
type Manager struct {
	store   sessions.Store
	backend Backend
	logger  zerolog.Logger

	mu         sync.RWMutex
	session    sessions.Session
	generation uint64 // bumped on every install or clear

	refreshes singleflight.Group
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger, the global zerolog logger by default.
func WithLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = l
	}
}

// NewManager creates a Manager and restores the persisted session. A
// persisted session holding a token without a profile (or the reverse) keeps
// only its refresh token. An unreadable store is cleared.
func NewManager(store sessions.Store, backend Backend, options ...ManagerOption) (*Manager, error) {
	if store == nil || backend == nil {
		return nil, errs.Wrapf(errs.ErrInvalidRequest, "session store and backend are required")
	}

	m := &Manager{
		store:   store,
		backend: backend,
		logger:  log.Logger,
	}
	for _, option := range options {
		option(m)
	}

	persisted, err := store.Load()
	if err != nil {
		m.logger.Warn().Err(err).Msg("stored session unreadable, discarding")
		if err := store.Clear(); err != nil {
			return nil, errs.Wrapf(err, "clear unreadable session")
		}
		return m, nil
	}

	normalized := persisted.Normalized()
	if normalized != persisted {
		if err := store.Save(normalized); err != nil {
			return nil, errs.Wrapf(err, "save normalized session")
		}
	}
	m.session = normalized
	return m, nil
}

// Login authenticates with the backend and installs the returned session.
// On failure the stored session is untouched and the backend's message is
// available through errors.Message.
func (m *Manager) Login(ctx context.Context, identifier, password string, mode LoginMode) (*users.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, errs.ErrMissingCredentials
	}

	var (
		resp *authmodel.AuthResponse
		err  error
	)
	switch mode {
	case LoginModeUsername:
		resp, err = m.backend.Login(ctx, authmodel.LoginRequest{Username: identifier, Password: password})
	case LoginModeMobile:
		resp, err = m.backend.LoginMobile(ctx, authmodel.MobileLoginRequest{MobileNumber: identifier, Password: password})
	default:
		return nil, errs.Wrapf(errs.ErrInvalidRequest, "unknown login mode %s", mode)
	}
	if err != nil {
		return nil, classify(err, errs.ErrInvalidCredentials)
	}

	token, user := resp.BearerToken(), resp.Profile()
	if token == "" || user == nil {
		return nil, errs.Wrapf(errs.ErrAuthRequestFailed, "login response carried no token or profile")
	}

	next := sessions.Session{AccessToken: token, RefreshToken: resp.RefreshToken, User: user}
	if err := m.install(next); err != nil {
		return nil, err
	}
	m.logger.Info().Str("user", user.Username).Strs("roles", user.Roles).Str("mode", mode.String()).Msg("logged in")
	return user, nil
}

// Logout notifies the backend when a token is held, then clears the local
// session whatever the outcome. Only a failure to clear the store is
// returned.
func (m *Manager) Logout(ctx context.Context) error {
	if m.IsAuthenticated() {
		if err := m.backend.Logout(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("backend logout failed, clearing local session anyway")
		}
	}
	return m.clear()
}

// Refresh exchanges the refresh token for a new access token, keeping the
// profile. Concurrent callers share one exchange, which runs detached from
// any single caller's cancellation; a caller whose ctx ends stops waiting
// and gets ctx.Err() while the exchange completes for the others. On a
// backend rejection the session is logged out and the error is returned.
func (m *Manager) Refresh(ctx context.Context) error {
	result := m.refreshes.DoChan("refresh", func() (any, error) {
		return nil, m.refresh(context.WithoutCancel(ctx))
	})
	select {
	case r := <-result:
		return r.Err
	case <-ctx.Done():
		return errs.Wrapf(ctx.Err(), "refresh abandoned")
	}
}

func (m *Manager) refresh(ctx context.Context) error {
	m.mu.RLock()
	current, gen := m.session, m.generation
	m.mu.RUnlock()

	if current.RefreshToken == "" {
		return m.failRefresh(ctx, gen, errs.ErrNoRefreshToken)
	}

	resp, err := m.backend.Refresh(ctx, authmodel.RefreshRequest{RefreshToken: current.RefreshToken})
	if err != nil {
		return m.failRefresh(ctx, gen, classify(err, errs.ErrSessionExpired))
	}
	token := resp.BearerToken()
	if token == "" {
		return m.failRefresh(ctx, gen, errs.Wrapf(errs.ErrAuthRequestFailed, "refresh response carried no access token"))
	}

	user := current.User
	if user == nil {
		// Restored from a session that kept only its refresh token.
		if user, err = m.backend.Profile(ctx, token); err != nil {
			return m.failRefresh(ctx, gen, classify(err, errs.ErrSessionExpired))
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		return errs.ErrSessionChanged
	}

	next := sessions.Session{AccessToken: token, RefreshToken: current.RefreshToken, User: user}
	if resp.RefreshToken != "" {
		next.RefreshToken = resp.RefreshToken
	}
	if err := m.store.Save(next); err != nil {
		return errs.Wrapf(err, "save refreshed session")
	}
	m.session = next
	m.generation++
	m.logger.Debug().Bool("rotated", resp.RefreshToken != "").Msg("session refreshed")
	return nil
}

func (m *Manager) failRefresh(ctx context.Context, gen uint64, cause error) error {
	m.mu.RLock()
	changed := m.generation != gen
	m.mu.RUnlock()
	if changed {
		return errs.Join(errs.ErrSessionChanged, cause)
	}

	if errs.Is(cause, context.Canceled) || errs.Is(cause, context.DeadlineExceeded) {
		// Not a rejection; the session stays for the next attempt.
		m.logger.Warn().Err(cause).Msg("session refresh did not complete")
		return cause
	}

	m.logger.Warn().Err(cause).Msg("session refresh failed, logging out")
	if err := m.Logout(ctx); err != nil {
		m.logger.Err(err).Msg("failed to clear session after refresh failure")
	}
	return cause
}

// Invalidate clears the local session without contacting the backend.
func (m *Manager) Invalidate() {
	if err := m.clear(); err != nil {
		m.logger.Err(err).Msg("failed to clear invalidated session")
	}
}

// Me fetches the profile of the current session from the backend.
func (m *Manager) Me(ctx context.Context) (*users.User, error) {
	if !m.IsAuthenticated() {
		return nil, errs.ErrNotAuthenticated
	}
	return m.backend.Me(ctx)
}

// IsAuthenticated reports whether an access token is held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.AccessToken != ""
}

// HasRole reports whether the current user holds role, using the substring
// rule of users.User.HasRole.
func (m *Manager) HasRole(role string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.User.HasRole(role)
}

// User returns the current profile, nil when logged out. The profile is
// shared and must not be modified.
func (m *Manager) User() *users.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.User
}

// Session returns a snapshot of the current session.
func (m *Manager) Session() sessions.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Token implements oauth2.TokenSource.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session.AccessToken == "" {
		return nil, errs.ErrNotAuthenticated
	}
	return m.session.OAuth2Token(), nil
}

// install writes next to the store and, only if that succeeds, to memory.
func (m *Manager) install(next sessions.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Save(next); err != nil {
		return errs.Wrapf(err, "save session")
	}
	m.session = next
	m.generation++
	return nil
}

func (m *Manager) clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = sessions.Session{}
	m.generation++
	if err := m.store.Clear(); err != nil {
		return errs.Wrapf(err, "clear session")
	}
	return nil
}

// classify maps a backend failure onto the auth error taxonomy: a 401 is
// joined with unauthorized, other API errors pass through with the
// backend's message, anything else is a transport failure.
func classify(err error, unauthorized error) error {
	var apiErr *errs.APIError
	if errs.As(err, &apiErr) {
		if apiErr.Unauthorized() {
			return errs.Join(unauthorized, apiErr)
		}
		return apiErr
	}
	return errs.Join(errs.ErrAuthRequestFailed, err)
}
