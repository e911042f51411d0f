package ui

import (
	"github.com/fd1az/naijatrade/internal/query"
	"github.com/fd1az/naijatrade/internal/store"
)

// stateMsg carries one subscription update. Screens match it by the
// subscription pointer so two screens on the same type never mix.
type stateMsg[T any] struct {
	sub   *query.Subscription[T]
	state query.State[T]
}

// SessionMsg is sent when the session changes.
type SessionMsg struct {
	Snapshot store.Snapshot
}

// UIStateMsg is sent when the shared UI state changes.
type UIStateMsg struct {
	View store.UIView
}

// NavigateMsg asks the router to show a route.
type NavigateMsg struct {
	Route string
}

// LoggedInMsg is sent by the login screen after a successful sign in.
type LoggedInMsg struct{}

// ErrorMsg is sent when a background action fails.
type ErrorMsg struct {
	Err error
}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string
	Message string
}

// InstallResultMsg reports the outcome of the install prompt.
type InstallResultMsg struct {
	Accepted bool
	Err      error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string
	Status  string // "pending", "connecting", "done", "failed"
	Message string
}
