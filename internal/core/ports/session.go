package ports

import (
	"context"

	"github.com/LotusZhao0521/Library/internal/core/domain"
)

// TokenSource exposes the current credential token to the request
// pipeline. An empty string means unauthenticated.
type TokenSource interface {
	Token() string
}

// Session is the single source of truth for "who is logged in and with
// what privilege". All mutation goes through Init/Login/RefreshIdentity/
// Logout; other components only read.
type Session interface {
	TokenSource

	// Init loads a previously persisted token. Identity stays empty
	// until the first RefreshIdentity.
	Init(ctx context.Context) error
	// Login exchanges credentials for a token, persists it, and
	// refreshes the identity. On rejection the session is unchanged.
	Login(ctx context.Context, username, password string) error
	// RefreshIdentity resolves the identity behind the held token.
	// No-op without a token; any failure collapses to Logout.
	RefreshIdentity(ctx context.Context) error
	// Logout clears token, identity, and the persisted entry. Idempotent.
	Logout(ctx context.Context) error

	Identity() *domain.User
	IsLoggedIn() bool
	IsAdmin() bool
}
