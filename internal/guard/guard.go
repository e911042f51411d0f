// Package guard decides whether a view may be shown for the current session.
package guard

import "github.com/fd1az/naijatrade/internal/store"

// Decision is the outcome of a guard check.
type Decision int

const (
	// Allow renders the view.
	Allow Decision = iota
	// RedirectLogin sends the user to the login view.
	RedirectLogin
	// AccessDenied renders an access denied panel in place of the view.
	AccessDenied
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case AccessDenied:
		return "access_denied"
	default:
		return "unknown"
	}
}

// Check is a guard function.
type Check func(store.Snapshot) Decision

// Public allows everyone.
func Public(store.Snapshot) Decision { return Allow }

// RequireAuth allows any signed-in user.
func RequireAuth(s store.Snapshot) Decision {
	if !s.Authenticated() {
		return RedirectLogin
	}
	return Allow
}

// RequireAdmin allows signed-in admins. Signed-in users without the flag
// are denied in place rather than redirected.
func RequireAdmin(s store.Snapshot) Decision {
	if !s.Authenticated() {
		return RedirectLogin
	}
	if !s.IsAdmin() {
		return AccessDenied
	}
	return Allow
}
