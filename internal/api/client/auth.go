// Package client provides the typed endpoint wrappers over the Gateway.
// Each wrapper is thin request/response plumbing: payload validation,
// path construction, and error shaping. Business semantics live behind
// the backend.
package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/LotusZhao0521/Library/internal/api"
	"github.com/LotusZhao0521/Library/internal/core/domain"
)

// Auth implements ports.AuthAPI.
type Auth struct {
	gw *api.Gateway
}

func NewAuth(gw *api.Gateway) *Auth {
	return &Auth{gw: gw}
}

// Login posts form-encoded credentials. A 401 from this endpoint means
// rejected credentials, not an expired session, so it is remapped here.
func (c *Auth) Login(ctx context.Context, username, password string) (domain.Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var tok domain.Token
	if err := c.gw.PostForm(ctx, "/auth/login", form, &tok); err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return domain.Token{}, domain.ErrInvalidCredentials
		}
		return domain.Token{}, err
	}
	return tok, nil
}
