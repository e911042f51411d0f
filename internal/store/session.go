// Package store holds client-side state shared across views: the session
// identity and the UI selections that are not server state.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/fd1az/naijatrade/internal/apperror"
	"github.com/fd1az/naijatrade/internal/logger"
)

// Profile is the signed-in user as the views need it.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
}

// DisplayName returns "First Last", falling back to the email.
func (p Profile) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	default:
		return p.Email
	}
}

// Tokens is the bearer pair issued at login.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Snapshot is an immutable copy of the session.
type Snapshot struct {
	Profile   *Profile
	Tokens    Tokens
	UpdatedAt time.Time
}

// Authenticated reports whether a token is held.
func (s Snapshot) Authenticated() bool {
	return s.Tokens.AccessToken != ""
}

// IsAdmin reports whether the user carries the admin flag.
func (s Snapshot) IsAdmin() bool {
	return s.Authenticated() && s.Profile != nil && s.Profile.IsAdmin
}

// Session is the single writer of identity state. It is safe for
// concurrent use.
type Session struct {
	mu        sync.RWMutex
	state     Snapshot
	persister Persister
	observers []func(Snapshot)
	log       logger.LoggerInterface
	now       func() time.Time
}

// NewSession creates an empty session. A nil persister keeps tokens in memory.
func NewSession(p Persister, log logger.LoggerInterface) *Session {
	if p == nil {
		p = NewMemoryPersister()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Session{persister: p, log: log, now: time.Now}
}

// Restore loads a persisted session, if any.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	saved, ok, err := s.persister.Load(ctx)
	if err != nil {
		return false, apperror.New(apperror.CodeSessionStoreError, apperror.WithCause(err), apperror.WithContext("restore"))
	}
	if !ok || saved.Tokens.AccessToken == "" {
		return false, nil
	}

	s.mu.Lock()
	s.state = Snapshot{Profile: saved.Profile, Tokens: saved.Tokens, UpdatedAt: saved.SavedAt}
	snap := s.state
	s.mu.Unlock()

	s.notify(snap)
	return true, nil
}

// SetAuth stores a fresh login.
func (s *Session) SetAuth(ctx context.Context, profile Profile, tokens Tokens) error {
	p := profile
	return s.update(ctx, func(st *Snapshot) {
		st.Profile = &p
		st.Tokens = tokens
	})
}

// SetTokens replaces the token pair after a refresh, keeping the profile.
func (s *Session) SetTokens(ctx context.Context, tokens Tokens) error {
	return s.update(ctx, func(st *Snapshot) {
		st.Tokens = tokens
	})
}

// SetProfile replaces the profile after /auth/me.
func (s *Session) SetProfile(ctx context.Context, profile Profile) error {
	p := profile
	return s.update(ctx, func(st *Snapshot) {
		st.Profile = &p
	})
}

func (s *Session) update(ctx context.Context, fn func(*Snapshot)) error {
	s.mu.Lock()
	fn(&s.state)
	s.state.UpdatedAt = s.now()
	snap := s.state
	s.mu.Unlock()

	err := s.persister.Save(ctx, Persisted{Tokens: snap.Tokens, Profile: snap.Profile, SavedAt: snap.UpdatedAt})
	if err != nil {
		s.log.Warn(ctx, "session not persisted", "error", err)
		err = apperror.New(apperror.CodeSessionStoreError, apperror.WithCause(err), apperror.WithContext("save"))
	}
	s.notify(snap)
	return err
}

// Logout clears identity and the persisted tokens. It is idempotent.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	was := s.state.Authenticated()
	s.state = Snapshot{UpdatedAt: s.now()}
	snap := s.state
	s.mu.Unlock()

	if err := s.persister.Clear(ctx); err != nil {
		s.log.Warn(ctx, "persisted session not cleared", "error", err)
	}
	if was {
		s.notify(snap)
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// AccessToken returns the bearer token while a session exists.
func (s *Session) AccessToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Tokens.AccessToken, s.state.Tokens.AccessToken != ""
}

// RefreshToken returns the refresh token while a session exists.
func (s *Session) RefreshToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Tokens.RefreshToken, s.state.Tokens.RefreshToken != ""
}

// OnChange registers fn to run after every change. Observers run on the
// goroutine that made the change.
func (s *Session) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

func (s *Session) notify(snap Snapshot) {
	s.mu.RLock()
	obs := append([]func(Snapshot){}, s.observers...)
	s.mu.RUnlock()
	for _, fn := range obs {
		fn(snap)
	}
}
