package domain

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the identity record returned by the backend for an
// authenticated session. The client never fabricates one; it is only
// ever populated from a successful identity fetch.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Token is the credential issued at login. AccessToken is opaque to the
// client; only the backend interprets it.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
