package api

import (
	"context"
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/session"
)

const authPath = "/api/auth"

var _ session.Authenticator = (*Client)(nil)

func (c *Client) authResult(ctx context.Context, cl call) (*domain.AuthResult, error) {
	var res domain.AuthResult
	if err := c.do(ctx, cl, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Login(ctx context.Context, cr domain.Credentials) (*domain.AuthResult, error) {
	return c.authResult(ctx, call{kind: Mutation, method: http.MethodPost, path: authPath + "/login", body: cr, anonymous: true})
}

func (c *Client) Register(ctx context.Context, r domain.Registration) (*domain.AuthResult, error) {
	return c.authResult(ctx, call{kind: Mutation, method: http.MethodPost, path: authPath + "/register", body: r, anonymous: true})
}

// Refresh exchanges token for a new one. It never triggers renewal itself.
func (c *Client) Refresh(ctx context.Context, token string) (*domain.AuthResult, error) {
	return c.authResult(ctx, call{kind: Mutation, method: http.MethodPost, path: authPath + "/refresh", bearer: token, anonymous: true})
}

// Validate asks the server whether token is still accepted
func (c *Client) Validate(ctx context.Context, token string) (bool, error) {
	var ok bool
	err := c.do(ctx, call{kind: Query, method: http.MethodPost, path: authPath + "/validate", bearer: token, anonymous: true}, &ok)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, call{kind: Mutation, method: http.MethodPost, path: authPath + "/logout", bearer: token, anonymous: true}, nil)
}
