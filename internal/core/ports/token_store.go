package ports

import "context"

// TokenStore persists the raw credential token across process restarts.
// One key, one string: an empty Load result means logged out.
type TokenStore interface {
	// Load returns the stored token, or "" when none is stored.
	Load(ctx context.Context) (string, error)
	// Save overwrites the stored token.
	Save(ctx context.Context, token string) error
	// Clear removes the stored token. Safe to call when nothing is stored.
	Clear(ctx context.Context) error
}
