package session

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/naveenspark/nksadmin/pkg/domain"
)

// Persisted keys. Both are removed together on Clear.
const (
	TokenKey = "nks_auth_token"
	UserKey  = "nks_user_data"
)

// Store is the single source of truth for who is logged in.
//
// Every mutation writes through to the backend synchronously. When the
// backend fails the store switches to an in-memory copy for the rest of the
// process and never reports the failure to the caller.
type Store struct {
	mu       sync.Mutex
	backend  Storage
	memory   *MemoryStorage
	degraded bool
	log      zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for storage degradation warnings.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore returns a store persisting to backend. A nil backend keeps the
// session in memory only.
func NewStore(backend Storage, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		memory:  NewMemoryStorage(),
		log:     zerolog.Nop(),
	}
	if backend == nil {
		s.backend = s.memory
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetToken stores token, replacing any previous value. The token is opaque
// and not validated.
func (s *Store) SetToken(token string) {
	s.set(TokenKey, token)
}

// Token returns the current token, if any.
func (s *Store) Token() (string, bool) {
	v, ok := s.get(TokenKey)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// SetUser stores the profile as JSON.
func (s *Store) SetUser(p domain.Profile) {
	data, err := json.Marshal(p)
	if err != nil {
		s.log.Warn().Err(err).Msg("session: marshal profile")
		return
	}
	s.set(UserKey, string(data))
}

// User returns the stored profile. A missing or undecodable payload is
// reported as absent.
func (s *Store) User() (*domain.Profile, bool) {
	raw, ok := s.get(UserKey)
	if !ok || raw == "" {
		return nil, false
	}
	var p domain.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.log.Debug().Err(err).Msg("session: stored profile is corrupt")
		return nil, false
	}
	return &p, true
}

// IsAuthenticated reports whether a token is present. Expiry and signature
// are the server's concern.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.Token()
	return ok
}

// Clear removes both the token and the profile. Clearing an empty store is
// a no-op.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory.Delete(TokenKey, UserKey) //nolint:errcheck // memory never fails
	if s.backend == Storage(s.memory) {
		return
	}
	if err := s.backend.Delete(TokenKey, UserKey); err != nil {
		s.degradeLocked(err)
	}
}

// Degraded reports whether the store has fallen back to memory.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

func (s *Store) set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory.Set(key, value) //nolint:errcheck // memory never fails
	if s.degraded || s.backend == Storage(s.memory) {
		return
	}
	if err := s.backend.Set(key, value); err != nil {
		s.degradeLocked(err)
	}
}

func (s *Store) get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.degraded {
		v, ok, err := s.backend.Get(key)
		if err == nil {
			return v, ok
		}
		s.degradeLocked(err)
	}
	v, ok, _ := s.memory.Get(key)
	return v, ok
}

func (s *Store) degradeLocked(err error) {
	if !s.degraded {
		s.log.Warn().Err(err).Msg("session: storage unavailable, keeping session in memory")
	}
	s.degraded = true
}
