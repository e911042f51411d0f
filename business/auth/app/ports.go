// Package app contains the auth application service and its ports.
package app

import (
	"context"

	"github.com/fd1az/naijatrade/business/auth/domain"
)

// AuthAPI is the REST surface for accounts.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.Tokens, error)
	Register(ctx context.Context, form *domain.RegisterForm) (domain.User, error)
	// CurrentUser reads /auth/me. A non-empty token is used instead of the
	// session's, which lets login read the profile before storing anything.
	CurrentUser(ctx context.Context, token string) (domain.User, error)
	UpdateProfile(ctx context.Context, patch domain.ProfilePatch) (domain.User, error)
	Refresh(ctx context.Context, refreshToken string) (domain.Tokens, error)
	GoogleLogin(ctx context.Context, idToken string) (domain.Tokens, error)
	Logout(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) error

	TelegramStatus(ctx context.Context) (domain.TelegramStatus, error)
	TelegramLinkToken(ctx context.Context) (domain.TelegramLink, error)
	UnlinkTelegram(ctx context.Context) (domain.Notice, error)
	SendTelegramTest(ctx context.Context) (domain.Notice, error)
}
