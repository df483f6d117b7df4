package client

import (
	"context"
	"fmt"

	"github.com/LotusZhao0521/Library/internal/api"
	"github.com/LotusZhao0521/Library/internal/core/domain"
	"github.com/LotusZhao0521/Library/internal/core/ports"
)

// Users implements ports.UserAPI.
type Users struct {
	gw *api.Gateway
}

func NewUsers(gw *api.Gateway) *Users {
	return &Users{gw: gw}
}

// Me fetches the identity behind the current token.
func (c *Users) Me(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.gw.Get(ctx, "/users/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Users) ChangePassword(ctx context.Context, in ports.ChangePasswordInput) (*domain.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var u domain.User
	if err := c.gw.Put(ctx, "/users/me/password", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Users) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var u domain.User
	if err := c.gw.Post(ctx, "/users/", in, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Users) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.gw.Get(ctx, "/users/", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Users) UpdateRole(ctx context.Context, userID int64, role string) (*domain.User, error) {
	if role != domain.RoleAdmin && role != domain.RoleUser {
		return nil, fmt.Errorf("%w: role must be admin or user", domain.ErrBadRequest)
	}
	var u domain.User
	body := map[string]string{"role": role}
	if err := c.gw.Put(ctx, fmt.Sprintf("/users/%d/role", userID), body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
