// Package auth owns the session lifecycle against the wallet API.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/walletctl/internal/domain"
	"github.com/vadiminshakov/walletctl/internal/storage/session"
	"github.com/vadiminshakov/walletctl/internal/transport"
)

const (
	loginPath  = "/auth/login"
	signupPath = "/auth/signup"
	mePath     = "/auth/me"
)

// Dispatcher is the subset of the transport layer the manager needs.
type Dispatcher interface {
	Do(ctx context.Context, req transport.Request) (json.RawMessage, error)
}

// UserInfo response of the identity endpoint.
type UserInfo struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Manager owns the session: at most one authenticated session exists at a
// time, and no other component mutates it.
type Manager struct {
	dispatcher Dispatcher
	store      session.Store
	logger     *zap.Logger

	mu           sync.Mutex
	session      domain.Session
	state        domain.SessionState
	generation   uint64
	expiryNotice bool
}

// NewManager creates the manager and restores any persisted session.
func NewManager(dispatcher Dispatcher, store session.Store, logger *zap.Logger) (*Manager, error) {
	m := &Manager{
		dispatcher: dispatcher,
		store:      store,
		logger:     logger,
		state:      domain.SessionAnonymous,
	}

	persisted, err := store.Load()
	if err != nil {
		return nil, errors.Wrap(err, "restore session")
	}
	if persisted.Authenticated() {
		m.generation++
		persisted.Generation = m.generation
		m.session = persisted
		m.state = domain.SessionAuthenticated
		logger.Info("session restored", zap.String("identity", persisted.Identity))
	}

	return m, nil
}

// Login authenticates with the backend. The login endpoint is form-encoded
// and never carries a bearer token, even if a stale one exists.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.mu.Lock()
	if m.state == domain.SessionAuthenticating {
		m.mu.Unlock()
		return errors.New("login already in progress")
	}
	m.state = domain.SessionAuthenticating
	m.mu.Unlock()

	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	raw, err := m.dispatcher.Do(ctx, transport.Request{
		Method:       http.MethodPost,
		Path:         loginPath,
		Form:         form,
		RequiresAuth: false,
	})
	if err != nil {
		m.failLogin()
		return err
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		m.failLogin()
		return errors.Wrap(err, "decode login response")
	}
	if payload.AccessToken == "" {
		m.failLogin()
		return errors.New("login response carries no token")
	}

	m.mu.Lock()
	m.generation++
	m.session = domain.Session{
		Token:      payload.AccessToken,
		Identity:   email,
		Generation: m.generation,
	}
	m.state = domain.SessionAuthenticated
	m.expiryNotice = false
	persisted := m.session
	m.mu.Unlock()

	if err := m.store.Save(persisted); err != nil {
		m.logger.Warn("failed to persist session", zap.Error(err))
	}

	m.logger.Info("logged in", zap.String("identity", email))

	return nil
}

// failLogin resets the manager after a rejected login attempt. Any previous
// session is discarded: the old token must not stay reachable through
// SessionSnapshot once the state reports anonymous.
func (m *Manager) failLogin() {
	m.mu.Lock()
	hadSession := m.session.Authenticated()
	m.session = domain.Session{}
	m.state = domain.SessionAnonymous
	m.mu.Unlock()

	if hadSession {
		if err := m.store.Clear(); err != nil {
			m.logger.Warn("failed to clear persisted session", zap.Error(err))
		}
	}
}

// Signup registers a new account. Does not open a session; callers log in
// afterwards.
func (m *Manager) Signup(ctx context.Context, email, password string) error {
	_, err := m.dispatcher.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   signupPath,
		Body: map[string]string{
			"email":    email,
			"password": password,
		},
		RequiresAuth: false,
	})
	return err
}

// Logout clears the session unconditionally. Idempotent.
func (m *Manager) Logout() error {
	m.mu.Lock()
	wasAuthenticated := m.session.Authenticated()
	m.session = domain.Session{}
	m.state = domain.SessionAnonymous
	m.expiryNotice = false
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		return errors.Wrap(err, "clear persisted session")
	}

	if wasAuthenticated {
		m.logger.Info("logged out")
	}

	return nil
}

// CurrentUser fetches the identity behind the session.
func (m *Manager) CurrentUser(ctx context.Context) (UserInfo, error) {
	raw, err := m.dispatcher.Do(ctx, transport.Request{
		Method:       http.MethodGet,
		Path:         mePath,
		RequiresAuth: true,
	})
	if err != nil {
		return UserInfo{}, err
	}

	var info UserInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return UserInfo{}, errors.Wrap(err, "decode identity response")
	}
	return info, nil
}

// Session returns a copy of the current session.
func (m *Manager) Session() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// State returns the lifecycle state.
func (m *Manager) State() domain.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SessionSnapshot implements transport.TokenSource.
func (m *Manager) SessionSnapshot() (string, uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.session.Authenticated() {
		return "", 0, false
	}
	return m.session.Token, m.session.Generation, true
}

// HandleUnauthorized implements transport.UnauthorizedSink. Concurrent 401s
// from requests sent under the same session collapse into a single teardown:
// only the notification matching the live generation clears the session.
func (m *Manager) HandleUnauthorized(generation uint64) {
	m.mu.Lock()
	if generation == 0 || !m.session.Authenticated() || generation != m.session.Generation {
		m.mu.Unlock()
		return
	}
	m.session = domain.Session{}
	m.state = domain.SessionExpired
	m.expiryNotice = true
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to clear persisted session", zap.Error(err))
	}

	m.logger.Info("session expired", zap.Uint64("generation", generation))
}

// ConsumeExpiryNotice returns true at most once per expiry event. The
// presentation layer uses it to prompt re-authentication; consuming it
// settles the state back to anonymous.
func (m *Manager) ConsumeExpiryNotice() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.expiryNotice {
		return false
	}
	m.expiryNotice = false
	if m.state == domain.SessionExpired {
		m.state = domain.SessionAnonymous
	}
	return true
}
