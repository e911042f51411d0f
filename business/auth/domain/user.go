// Package domain contains accounts, credentials and tokens.
package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/fd1az/naijatrade/internal/store"
	"github.com/fd1az/naijatrade/internal/validate"
)

// MinPasswordLength matches the server's registration rule.
const MinPasswordLength = 8

// User is an account as returned by /auth/me.
type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	IsActive       bool       `json:"is_active"`
	IsVerified     bool       `json:"is_verified"`
	IsAdmin        bool       `json:"is_admin"`
	TelegramChatID *int64     `json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

// Profile is the part of the user the session keeps.
func (u User) Profile() store.Profile {
	return store.Profile{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsAdmin:   u.IsAdmin,
	}
}

// Tokens is a bearer pair.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
}

// Session converts t to the session's representation.
func (t Tokens) Session() store.Tokens {
	return store.Tokens{AccessToken: t.AccessToken, RefreshToken: t.RefreshToken}
}

// Credentials sign a user in with email and password.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that both fields are present and the email parses.
func (c Credentials) Validate() error {
	v := validate.New("login")
	v.NotBlank("email", c.Email)
	v.Required("password", c.Password != "")
	if strings.TrimSpace(c.Email) != "" {
		v.Check("email", validEmail(c.Email), "is not a valid address")
	}
	return v.Err()
}

// RegisterForm creates an account.
type RegisterForm struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// NewRegisterForm starts a registration.
func NewRegisterForm(email, password string) *RegisterForm {
	return &RegisterForm{Email: strings.TrimSpace(email), Password: password}
}

func (f *RegisterForm) SetName(first, last string) *RegisterForm {
	f.FirstName, f.LastName = strings.TrimSpace(first), strings.TrimSpace(last)
	return f
}

func (f *RegisterForm) SetPhone(phone string) *RegisterForm {
	f.Phone = strings.TrimSpace(phone)
	return f
}

// Validate mirrors the server's registration rules.
func (f *RegisterForm) Validate() error {
	v := validate.New("register")
	v.NotBlank("email", f.Email)
	v.Required("password", f.Password != "")
	if f.Email != "" {
		v.Check("email", validEmail(f.Email), "is not a valid address")
	}
	if f.Password != "" {
		v.Check("password", len(f.Password) >= MinPasswordLength, "must be at least 8 characters")
	}
	return v.Err()
}

// ProfilePatch updates the editable profile fields. Nil fields are untouched.
type ProfilePatch struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

func (p *ProfilePatch) SetFirstName(s string) *ProfilePatch {
	p.FirstName = &s
	return p
}

func (p *ProfilePatch) SetLastName(s string) *ProfilePatch {
	p.LastName = &s
	return p
}

func (p *ProfilePatch) SetPhone(s string) *ProfilePatch {
	p.Phone = &s
	return p
}

// Empty reports whether the patch changes nothing.
func (p ProfilePatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == strings.TrimSpace(s)
}
