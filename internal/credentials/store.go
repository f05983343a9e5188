// Package credentials persists the bearer token in one of two tiers.
package credentials

import (
	"errors"
	"fmt"
	"log/slog"
)

// Tier selects where a token is persisted.
type Tier int

const (
	// Durable survives restarts of the application.
	Durable Tier = iota
	// Ephemeral lives only as long as the current session.
	Ephemeral
)

func (t Tier) String() string {
	switch t {
	case Durable:
		return "durable"
	case Ephemeral:
		return "ephemeral"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Other returns the opposite tier.
func (t Tier) Other() Tier {
	if t == Durable {
		return Ephemeral
	}
	return Durable
}

// ErrNoToken is returned by a Backend that holds no token.
var ErrNoToken = errors.New("no token stored")

// Backend stores at most one token.
type Backend interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Store holds one Backend per tier. A token is written to exactly one tier;
// the other tier is left as is.
type Store struct {
	durable   Backend
	ephemeral Backend
	logger    *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report backend failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore constructs a Store over the given tier backends.
func NewStore(durable, ephemeral Backend, opts ...Option) *Store {
	s := &Store{
		durable:   durable,
		ephemeral: ephemeral,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewMemoryStore constructs a Store whose tiers both live in memory.
func NewMemoryStore(opts ...Option) *Store {
	return NewStore(NewMemoryBackend(), NewMemoryBackend(), opts...)
}

// Save writes token to the selected tier.
func (s *Store) Save(token string, tier Tier) error {
	backend, err := s.backend(tier)
	if err != nil {
		return err
	}
	if err := backend.Save(token); err != nil {
		return fmt.Errorf("save %s token: %w", tier, err)
	}
	return nil
}

// Read returns the durable token if present, else the ephemeral one.
func (s *Store) Read() (string, bool) {
	for _, tier := range []Tier{Durable, Ephemeral} {
		token, ok := s.Peek(tier)
		if ok {
			return token, true
		}
	}
	return "", false
}

// Peek returns the token stored in a single tier.
func (s *Store) Peek(tier Tier) (string, bool) {
	backend, err := s.backend(tier)
	if err != nil {
		return "", false
	}
	token, err := backend.Load()
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			s.logger.Warn("failed to read token", "tier", tier.String(), "error", err)
		}
		return "", false
	}
	if token == "" {
		return "", false
	}
	return token, true
}

// Discard removes the token of a single tier. Errors are logged.
func (s *Store) Discard(tier Tier) {
	backend, err := s.backend(tier)
	if err != nil {
		return
	}
	if err := backend.Clear(); err != nil {
		s.logger.Warn("failed to clear token", "tier", tier.String(), "error", err)
	}
}

// Clear removes the token from both tiers. It is idempotent and never fails;
// backend errors are logged.
func (s *Store) Clear() {
	for _, tier := range []Tier{Durable, Ephemeral} {
		s.Discard(tier)
	}
}

func (s *Store) backend(tier Tier) (Backend, error) {
	var backend Backend
	switch tier {
	case Durable:
		backend = s.durable
	case Ephemeral:
		backend = s.ephemeral
	default:
		return nil, fmt.Errorf("unknown credential tier %d", int(tier))
	}
	if backend == nil {
		return nil, fmt.Errorf("%s tier is not configured", tier)
	}
	return backend, nil
}
