// Package session is the single source of truth for who is logged in.
//
// A Manager is created once per running application and handed to the
// components that need it. It resolves a stored token at startup, persists
// tokens obtained by login or registration, and drops the identity whenever
// the backend rejects the token.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ecocycle/connect/internal/credentials"
	"github.com/ecocycle/connect/types"
)

// Gateway is the part of the API client a Manager depends on.
type Gateway interface {
	Login(ctx context.Context, email, password string) (types.AuthResult, error)
	Register(ctx context.Context, data types.RegisterData) (types.AuthResult, error)
	CurrentIdentity(ctx context.Context) (types.Identity, error)
	OnUnauthorized(fn func()) func()
}

// Credentials is the token persistence a Manager writes through.
type Credentials interface {
	Save(token string, tier credentials.Tier) error
	Read() (string, bool)
	Discard(tier credentials.Tier)
	Clear()
}

// Manager owns the session state.
type Manager struct {
	gateway Gateway
	creds   Credentials
	logger  *slog.Logger

	initOnce   sync.Once
	unregister func()

	mu        sync.RWMutex
	identity  *types.Identity
	loading   bool
	status    Status
	listeners map[int]func(State)
	nextID    int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger for session lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New constructs a Manager in the resolving state and subscribes it to the
// gateway's unauthorized events. Call Initialize once at startup and Close
// at shutdown.
func New(gateway Gateway, creds Credentials, opts ...Option) *Manager {
	m := &Manager{
		gateway:   gateway,
		creds:     creds,
		logger:    slog.Default(),
		loading:   true,
		status:    StatusResolving,
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.unregister = gateway.OnUnauthorized(m.expire)
	return m
}

// Close detaches the Manager from the gateway.
func (m *Manager) Close() {
	if m.unregister != nil {
		m.unregister()
	}
}

// Initialize resolves a persisted token into an identity. Failures are not
// returned: the token is discarded and the session stays unauthenticated.
// Only the first call has any effect.
func (m *Manager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() {
		m.initialize(ctx)
	})
}

func (m *Manager) initialize(ctx context.Context) {
	m.begin(StatusResolving)
	defer m.finish()

	if _, ok := m.creds.Read(); !ok {
		m.logger.Debug("no stored session")
		return
	}

	identity, err := m.gateway.CurrentIdentity(ctx)
	if err != nil {
		m.logger.Warn("failed to initialize session", "error", err)
		m.creds.Clear()
		m.setIdentity(nil)
		return
	}
	m.setIdentity(&identity)
	m.logger.Debug("session restored", "user_id", identity.ID, "role", string(identity.Role))
}

// Login exchanges credentials for a session. The token is kept durably when
// rememberMe is set and only for the current session otherwise. Errors from
// the gateway are returned unmodified and leave the prior session in place.
func (m *Manager) Login(ctx context.Context, email, password string, rememberMe bool) error {
	m.begin(StatusAuthenticating)
	defer m.finish()

	result, err := m.gateway.Login(ctx, email, password)
	if err != nil {
		return err
	}

	tier := credentials.Ephemeral
	if rememberMe {
		tier = credentials.Durable
	}
	return m.establish(result, tier)
}

// Register creates an account and logs into it. Registration tokens are
// always kept durably.
func (m *Manager) Register(ctx context.Context, data types.RegisterData) error {
	m.begin(StatusAuthenticating)
	defer m.finish()

	result, err := m.gateway.Register(ctx, data)
	if err != nil {
		return err
	}
	return m.establish(result, credentials.Durable)
}

// Logout clears both credential tiers and the identity.
func (m *Manager) Logout() {
	m.creds.Clear()
	m.setIdentity(nil)
	m.logger.Debug("logged out")
}

// State returns a snapshot of the session.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

// Identity returns a copy of the current identity.
func (m *Manager) Identity() (types.Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.identity == nil {
		return types.Identity{}, false
	}
	return *m.identity, true
}

// Loading reports whether an initialize, login or register call is in flight.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// IsAuthenticated reports whether an identity is set.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.identity != nil
}

// Subscribe registers fn to receive every state change. Listeners run
// outside the Manager's lock, in no particular order. The returned function
// unsubscribes.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) establish(result types.AuthResult, tier credentials.Tier) error {
	if err := m.creds.Save(result.Token, tier); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	// A token left in the other tier belongs to an earlier session.
	m.creds.Discard(tier.Other())
	identity := result.User
	m.setIdentity(&identity)
	m.logger.Debug("session established", "user_id", identity.ID, "tier", tier.String())
	return nil
}

// expire runs after the gateway has cleared the stored token on a 401.
func (m *Manager) expire() {
	m.mu.RLock()
	had := m.identity != nil
	m.mu.RUnlock()

	m.setIdentity(nil)
	if had {
		m.logger.Info("session expired")
	}
}

func (m *Manager) begin(status Status) {
	m.mu.Lock()
	m.loading = true
	m.status = status
	state := m.snapshotLocked()
	listeners := m.listenersLocked()
	m.mu.Unlock()

	notify(listeners, state)
}

func (m *Manager) finish() {
	m.mu.Lock()
	m.loading = false
	m.status = m.settledStatusLocked()
	state := m.snapshotLocked()
	listeners := m.listenersLocked()
	m.mu.Unlock()

	notify(listeners, state)
}

func (m *Manager) setIdentity(identity *types.Identity) {
	m.mu.Lock()
	if identity == nil {
		m.identity = nil
	} else {
		cp := *identity
		m.identity = &cp
	}
	if !m.loading {
		m.status = m.settledStatusLocked()
	}
	state := m.snapshotLocked()
	listeners := m.listenersLocked()
	m.mu.Unlock()

	notify(listeners, state)
}

func (m *Manager) settledStatusLocked() Status {
	if m.identity != nil {
		return StatusAuthenticated
	}
	return StatusUnauthenticated
}

func (m *Manager) snapshotLocked() State {
	state := State{Loading: m.loading, Status: m.status}
	if m.identity != nil {
		cp := *m.identity
		state.Identity = &cp
	}
	return state
}

func (m *Manager) listenersLocked() []func(State) {
	out := make([]func(State), 0, len(m.listeners))
	for _, fn := range m.listeners {
		out = append(out, fn)
	}
	return out
}

func notify(listeners []func(State), state State) {
	for _, fn := range listeners {
		fn(state)
	}
}
