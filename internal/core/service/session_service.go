package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/LotusZhao0521/Library/internal/core/domain"
	"github.com/LotusZhao0521/Library/internal/core/ports"
)

var errBackendNotBound = errors.New("session: backend not bound")

// SessionService implements ports.Session. It owns the credential token
// and the lazily resolved identity; everything else only reads them.
// The token survives restarts through the TokenStore, the identity is
// re-fetched on demand.
type SessionService struct {
	store ports.TokenStore
	log   zerolog.Logger

	auth  ports.AuthAPI
	users ports.UserAPI

	// refreshMu serialises identity fetches so a missing-identity
	// window triggers at most one backend call.
	refreshMu sync.Mutex

	mu       sync.RWMutex
	token    string
	identity *domain.User
}

// NewSessionService builds a session over the given durable store. The
// backend clients are attached afterwards with BindBackend because they
// dispatch through a gateway that itself reads this session's token.
func NewSessionService(store ports.TokenStore, log zerolog.Logger) *SessionService {
	return &SessionService{store: store, log: log}
}

// BindBackend attaches the API clients used for login and identity
// resolution. Must be called once during wiring, before any operation.
func (s *SessionService) BindBackend(auth ports.AuthAPI, users ports.UserAPI) {
	s.auth = auth
	s.users = users
}

// Init loads a persisted token, if any. The identity stays empty until
// the first RefreshIdentity; privilege is never assumed from the token.
func (s *SessionService) Init(ctx context.Context) error {
	token, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("session init: %w", err)
	}
	s.mu.Lock()
	s.token = token
	s.identity = nil
	s.mu.Unlock()
	if token != "" {
		s.log.Debug().Msg("session restored from durable storage")
	}
	return nil
}

// Login exchanges credentials for a token, persists it, and refreshes
// the identity. A rejected login propagates and leaves the session
// untouched.
func (s *SessionService) Login(ctx context.Context, username, password string) error {
	if s.auth == nil {
		return errBackendNotBound
	}

	tok, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = tok.AccessToken
	s.identity = nil
	s.mu.Unlock()

	if err := s.store.Save(ctx, tok.AccessToken); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}

	s.log.Info().Str("username", username).Msg("logged in")
	return s.RefreshIdentity(ctx)
}

// RefreshIdentity resolves the identity behind the held token. Without
// a token it is a no-op. A token that cannot resolve an identity is
// never left dangling: any failure collapses the whole session to
// logged out, and is not surfaced to the caller.
func (s *SessionService) RefreshIdentity(ctx context.Context) error {
	if s.users == nil {
		return errBackendNotBound
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	s.mu.RLock()
	token, identity := s.token, s.identity
	s.mu.RUnlock()
	if token == "" || identity != nil {
		return nil
	}

	user, err := s.users.Me(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("identity fetch failed, discarding session")
		return s.Logout(ctx)
	}

	s.mu.Lock()
	// Logout may have raced the fetch (e.g. the gateway's 401 handler);
	// never resurrect an identity over an empty token.
	if s.token != "" {
		s.identity = user
	}
	s.mu.Unlock()
	return nil
}

// Logout clears token, identity, and the durable entry. Idempotent and
// purely local: no network call is involved.
func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	wasLoggedIn := s.token != ""
	s.token = ""
	s.identity = nil
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear token store: %w", err)
	}
	if wasLoggedIn {
		s.log.Info().Msg("logged out")
	}
	return nil
}

// Token implements ports.TokenSource for the gateway.
func (s *SessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Identity returns the resolved identity, or nil while unresolved.
func (s *SessionService) Identity() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// IsLoggedIn reports whether a token is held.
func (s *SessionService) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// IsAdmin reports whether the resolved identity has the admin role. It
// is false while the identity is unresolved, even if a token is held.
func (s *SessionService) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil && s.identity.Role == domain.RoleAdmin
}
