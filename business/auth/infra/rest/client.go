// Package rest maps account and Telegram linking operations to backend
// endpoints.
package rest

import (
	"context"
	"net/http"

	"github.com/fd1az/naijatrade/business/auth/app"
	"github.com/fd1az/naijatrade/business/auth/domain"
	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/apperror"
)

// Client implements app.AuthAPI.
type Client struct {
	api api.Requester
}

// NewClient creates an auth client.
func NewClient(r api.Requester) *Client {
	return &Client{api: r}
}

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.Tokens, error) {
	var out domain.Tokens
	if err := creds.Validate(); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodPost, "/auth/login", api.RequestOptions{Body: creds}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, form *domain.RegisterForm) (domain.User, error) {
	var out domain.User
	if err := form.Validate(); err != nil {
		return out, err
	}
	err := c.api.Do(ctx, http.MethodPost, "/auth/register", api.RequestOptions{Body: form}, &out)
	return out, err
}

func (c *Client) CurrentUser(ctx context.Context, token string) (domain.User, error) {
	var out domain.User
	err := c.api.Do(ctx, http.MethodGet, "/auth/me", api.RequestOptions{AuthToken: token}, &out)
	return out, err
}

func (c *Client) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) (domain.User, error) {
	var out domain.User
	err := c.api.Do(ctx, http.MethodPut, "/auth/me", api.RequestOptions{Body: patch}, &out)
	return out, err
}

// Refresh sends the refresh token as a query parameter, which is where the
// server reads it.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (domain.Tokens, error) {
	var out domain.Tokens
	if refreshToken == "" {
		return out, apperror.New(apperror.CodeSessionExpired, apperror.WithMessage("no refresh token"))
	}
	params := api.NewParams().String("refresh_token", refreshToken).Values()
	err := c.api.Do(ctx, http.MethodPost, "/auth/refresh", api.RequestOptions{Params: params}, &out)
	return out, err
}

func (c *Client) GoogleLogin(ctx context.Context, idToken string) (domain.Tokens, error) {
	var out domain.Tokens
	if idToken == "" {
		return out, apperror.RequiredField("token")
	}
	body := map[string]string{"token": idToken}
	err := c.api.Do(ctx, http.MethodPost, "/auth/google", api.RequestOptions{Body: body}, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.api.Do(ctx, http.MethodPost, "/auth/logout", api.RequestOptions{}, nil)
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return apperror.RequiredField("email")
	}
	body := map[string]string{"email": email}
	return c.api.Do(ctx, http.MethodPost, "/auth/password-reset/request", api.RequestOptions{Body: body}, nil)
}

func (c *Client) TelegramStatus(ctx context.Context) (domain.TelegramStatus, error) {
	var out domain.TelegramStatus
	err := c.api.Do(ctx, http.MethodGet, "/telegram/status", api.RequestOptions{}, &out)
	return out, err
}

// TelegramLinkToken issues a new token on every call, so it is a GET the
// cache never stores.
func (c *Client) TelegramLinkToken(ctx context.Context) (domain.TelegramLink, error) {
	var out domain.TelegramLink
	err := c.api.Do(ctx, http.MethodGet, "/telegram/link-token", api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) UnlinkTelegram(ctx context.Context) (domain.Notice, error) {
	var out domain.Notice
	err := c.api.Do(ctx, http.MethodDelete, "/telegram/unlink", api.RequestOptions{}, &out)
	return out, err
}

func (c *Client) SendTelegramTest(ctx context.Context) (domain.Notice, error) {
	var out domain.Notice
	err := c.api.Do(ctx, http.MethodPost, "/telegram/test", api.RequestOptions{}, &out)
	return out, err
}

var _ app.AuthAPI = (*Client)(nil)
