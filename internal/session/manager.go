// Package session owns the bearer token and the signed-in user, persists them, and
// renews the token when the server rejects it.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/storage"
)

// RecordKey is the durable key of the session record
const RecordKey = "auth-storage"

var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrForbidden        = errors.New("insufficient role")
	ErrSessionExpired   = errors.New("session expired")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

const expiredMessage = "Session expired. Please login again."

// State of the session
type State int

const (
	StateGuest State = iota
	StateAuthenticated
	StateRefreshing
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateGuest:
		return "guest"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	case StateExpired:
		return "expired"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Level is the access a route or command requires
type Level int

const (
	LevelGuest Level = iota
	LevelAuthenticated
	LevelAdmin
)

// Authenticator is the server side of the session
type Authenticator interface {
	Login(ctx context.Context, c domain.Credentials) (*domain.AuthResult, error)
	Register(ctx context.Context, r domain.Registration) (*domain.AuthResult, error)
	Refresh(ctx context.Context, token string) (*domain.AuthResult, error)
	Validate(ctx context.Context, token string) (bool, error)
	Logout(ctx context.Context, token string) error
}

type persisted struct {
	User            *domain.User `json:"user"`
	Token           string       `json:"token"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// Manager is the session state machine
type Manager struct {
	auth     Authenticator
	record   *storage.Record[persisted]
	notifier notify.Notifier
	log      logrus.FieldLogger

	mu        sync.RWMutex
	state     State
	token     string
	user      *domain.User
	onExpired func()

	renewals singleflight.Group
}

func NewManager(auth Authenticator, s storage.Storage, n notify.Notifier, log logrus.FieldLogger) *Manager {
	if n == nil {
		n = notify.Nop{}
	}
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = l
	}
	return &Manager{
		auth:     auth,
		record:   storage.NewRecord[persisted](s, RecordKey, 0),
		notifier: n,
		log:      log.WithField("component", "session"),
	}
}

// OnExpired registers the hook fired after a failed renewal, typically a redirect to login
func (m *Manager) OnExpired(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpired = fn
}

// Initialize restores the persisted session and checks the token with the server.
// A token the server reports invalid ends the session; an unreachable server keeps it.
func (m *Manager) Initialize(ctx context.Context) error {
	p, err := m.record.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil
	case err != nil:
		m.log.WithError(err).Warn("discarding unreadable session record")
		return m.record.Clear(ctx)
	}
	if p.Token == "" || p.User == nil {
		return nil
	}

	m.mu.Lock()
	m.token, m.user, m.state = p.Token, p.User, StateAuthenticated
	m.mu.Unlock()

	valid, err := m.auth.Validate(ctx, p.Token)
	if err != nil {
		m.log.WithError(err).Warn("could not validate stored token, keeping session")
		return nil
	}
	if !valid {
		m.log.Info("stored token rejected")
		m.expire(ctx)
	}
	return nil
}

// Login signs in and persists the session
func (m *Manager) Login(ctx context.Context, c domain.Credentials) (domain.User, error) {
	res, err := m.auth.Login(ctx, c)
	if err != nil {
		m.reset(ctx)
		m.notifier.Error(serverMessage(err, "Login failed"))
		return domain.User{}, fmt.Errorf("login: %w", err)
	}
	u := m.establish(ctx, res)
	m.notifier.Success("Login successful!")
	return u, nil
}

// Register creates a customer account and signs it in
func (m *Manager) Register(ctx context.Context, r domain.Registration) (domain.User, error) {
	if r.ConfirmPassword != "" && r.ConfirmPassword != r.Password {
		return domain.User{}, ErrPasswordMismatch
	}
	res, err := m.auth.Register(ctx, r)
	if err != nil {
		m.reset(ctx)
		m.notifier.Error(serverMessage(err, "Registration failed"))
		return domain.User{}, fmt.Errorf("register: %w", err)
	}
	u := m.establish(ctx, res)
	m.notifier.Success("Registration successful!")
	return u, nil
}

// Logout tells the server (best effort) and forgets the session locally
func (m *Manager) Logout(ctx context.Context) {
	m.mu.RLock()
	token := m.token
	m.mu.RUnlock()
	if token != "" {
		if err := m.auth.Logout(ctx, token); err != nil {
			m.log.WithError(err).Warn("server logout failed")
		}
	}
	m.reset(ctx)
	m.notifier.Success("Logged out successfully!")
}

func (m *Manager) establish(ctx context.Context, res *domain.AuthResult) domain.User {
	u := res.User()
	m.mu.Lock()
	m.token, m.user, m.state = res.Token, &u, StateAuthenticated
	m.mu.Unlock()
	m.persist(ctx)
	m.log.WithField("user_id", u.ID).WithField("role", u.Role).Info("session established")
	return u
}

func (m *Manager) persist(ctx context.Context) {
	m.mu.RLock()
	p := persisted{User: m.user, Token: m.token, IsAuthenticated: m.token != ""}
	m.mu.RUnlock()
	if err := m.record.Save(ctx, p); err != nil {
		m.log.WithError(err).Warn("session not persisted")
	}
}

// reset clears memory and storage and returns to Guest
func (m *Manager) reset(ctx context.Context) {
	m.mu.Lock()
	m.token, m.user, m.state = "", nil, StateGuest
	m.mu.Unlock()
	if err := m.record.Clear(ctx); err != nil {
		m.log.WithError(err).Warn("session record not cleared")
	}
}

func (m *Manager) expire(ctx context.Context) {
	m.mu.Lock()
	m.token, m.user, m.state = "", nil, StateExpired
	hook := m.onExpired
	m.mu.Unlock()
	if err := m.record.Clear(ctx); err != nil {
		m.log.WithError(err).Warn("session record not cleared")
	}
	m.notifier.Error(expiredMessage)
	if hook != nil {
		hook()
	}
}

// Renew exchanges staleToken for a fresh one. Concurrent callers share a single refresh
// call, and a caller whose token was already replaced gets the current one back without
// contacting the server. A failed refresh expires the session. The refresh is detached
// from ctx: a caller that gives up gets ctx.Err() and the others keep waiting.
func (m *Manager) Renew(ctx context.Context, staleToken string) (string, error) {
	if tok, done := m.renewed(staleToken); done {
		if tok == "" {
			return "", ErrUnauthenticated
		}
		return tok, nil
	}

	ch := m.renewals.DoChan("renew", func() (interface{}, error) {
		return m.refresh(context.WithoutCancel(ctx), staleToken)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return "", r.Err
		}
		return r.Val.(string), nil
	}
}

func (m *Manager) refresh(ctx context.Context, staleToken string) (string, error) {
	m.mu.Lock()
	if m.token != staleToken {
		tok := m.token
		m.mu.Unlock()
		if tok == "" {
			return "", ErrUnauthenticated
		}
		return tok, nil
	}
	m.state = StateRefreshing
	m.mu.Unlock()

	res, err := m.auth.Refresh(ctx, staleToken)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		// not an answer from the server, keep the session for the next attempt
		m.mu.Lock()
		if m.state == StateRefreshing {
			m.state = StateAuthenticated
		}
		m.mu.Unlock()
		m.log.WithError(err).Warn("token refresh interrupted")
		return "", err
	}
	if err != nil {
		m.log.WithError(err).Warn("token refresh failed")
		m.expire(ctx)
		return "", fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	m.mu.Lock()
	if m.state != StateRefreshing {
		// logged out while the refresh was in flight
		m.mu.Unlock()
		return "", ErrUnauthenticated
	}
	u := res.User()
	m.token, m.user, m.state = res.Token, &u, StateAuthenticated
	m.mu.Unlock()
	m.persist(ctx)
	m.log.Debug("token renewed")
	return res.Token, nil
}

// renewed reports whether no refresh is needed for staleToken, with the token to use
func (m *Manager) renewed(staleToken string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == "" {
		return "", true
	}
	return m.token, m.token != staleToken
}

// Token is the current bearer token, empty for guests
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) User() (domain.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return domain.User{}, false
	}
	return *m.user, true
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) IsAuthenticated() bool {
	return m.Token() != ""
}

func (m *Manager) HasRole(r domain.Role) bool {
	u, ok := m.User()
	return ok && u.Role == r
}

func (m *Manager) IsAdmin() bool    { return m.HasRole(domain.RoleAdmin) }
func (m *Manager) IsCustomer() bool { return m.HasRole(domain.RoleCustomer) }

// Authorize gates an action at the given level
func (m *Manager) Authorize(level Level) error {
	switch level {
	case LevelGuest:
		return nil
	case LevelAuthenticated:
		if !m.IsAuthenticated() {
			return ErrUnauthenticated
		}
		return nil
	case LevelAdmin:
		if !m.IsAuthenticated() {
			return ErrUnauthenticated
		}
		if !m.IsAdmin() {
			return ErrForbidden
		}
		return nil
	default:
		return fmt.Errorf("unknown access level %d", level)
	}
}

type messenger interface {
	ServerMessage() string
}

func serverMessage(err error, fallback string) string {
	var sm messenger
	if errors.As(err, &sm) && sm.ServerMessage() != "" {
		return sm.ServerMessage()
	}
	return fallback
}
