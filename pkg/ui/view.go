package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fd1az/naijatrade/internal/apperror"
	"github.com/fd1az/naijatrade/internal/query"
)

// ViewState is what a resource view shows for one query state.
type ViewState int

const (
	ViewLoading ViewState = iota
	ViewError
	ViewEmpty
	ViewSuccess
	ViewUpgrade
	ViewDenied
	ViewNotFound
	ViewSignIn
)

func (v ViewState) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewError:
		return "error"
	case ViewEmpty:
		return "empty"
	case ViewSuccess:
		return "success"
	case ViewUpgrade:
		return "upgrade"
	case ViewDenied:
		return "denied"
	case ViewNotFound:
		return "not_found"
	case ViewSignIn:
		return "sign_in"
	default:
		return "unknown"
	}
}

// Classify picks the view state. Data already loaded wins over a later
// error so a failed revalidation keeps the last good render.
func Classify[T any](st query.State[T], empty func(T) bool) ViewState {
	if st.HasData {
		if empty != nil && empty(st.Data) {
			return ViewEmpty
		}
		return ViewSuccess
	}
	if st.Err == nil {
		return ViewLoading
	}
	switch apperror.KindOf(st.Err) {
	case apperror.KindEntitlement:
		return ViewUpgrade
	case apperror.KindForbidden:
		return ViewDenied
	case apperror.KindNotFound:
		return ViewNotFound
	case apperror.KindAuth:
		return ViewSignIn
	default:
		return ViewError
	}
}

// Resource describes how to render one keyed read.
type Resource[T any] struct {
	// Noun names the data in placeholder text, e.g. "signals".
	Noun   string
	Empty  func(T) bool
	Render func(data T, width int) string

	// OnKey receives keys the screen does not handle itself.
	OnKey func(tea.KeyMsg)
}

// ResourceView renders st through r. Every screen goes through it so the
// loading, error, empty and success states look the same everywhere.
func ResourceView[T any](st query.State[T], r Resource[T], width int) string {
	switch Classify(st, r.Empty) {
	case ViewLoading:
		return MutedValue.Render(fmt.Sprintf("Loading %s...", r.Noun))
	case ViewUpgrade:
		ent, _ := apperror.EntitlementOf(st.Err)
		return UpgradePrompt(ent)
	case ViewDenied:
		return AccessDenied()
	case ViewNotFound:
		return MutedValue.Render(fmt.Sprintf("No %s found.", r.Noun))
	case ViewSignIn:
		return WarningValue.Render("Your session has ended. Sign in to continue.")
	case ViewError:
		return ErrorStyle.Render(fmt.Sprintf("Failed to load %s. %s", r.Noun, errorMessage(st.Err))) +
			"\n" + HelpStyle.Render("r: retry")
	case ViewEmpty:
		return MutedValue.Render(fmt.Sprintf("No %s yet.", r.Noun))
	}

	out := r.Render(st.Data, width)
	if st.Err != nil {
		out += "\n" + WarningValue.Render("Showing last loaded data. "+errorMessage(st.Err))
	}
	return out
}

// UpgradePrompt asks the user to move to the plan a gated action requires.
func UpgradePrompt(ent apperror.Entitlement) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Upgrade required"))
	b.WriteString("\n")
	msg := ent.Message
	if msg == "" {
		msg = apperror.DefaultMessage(ent.Code)
	}
	b.WriteString(msg)
	if ent.RequiredPlan != "" {
		b.WriteString("\n" + fmt.Sprintf("Upgrade to %s to continue.", strings.ToUpper(ent.RequiredPlan[:1])+ent.RequiredPlan[1:]))
	}
	if ent.CurrentPlan != "" {
		b.WriteString("\n" + MutedValue.Render("Current plan: "+ent.CurrentPlan))
	}
	if ent.Limit != "" {
		b.WriteString(MutedValue.Render(" (limit " + ent.Limit + ")"))
	}
	return UpgradeStyle.Render(b.String())
}

// AccessDenied is shown in place of a view the user may not open.
func AccessDenied() string {
	return ErrorHeaderStyle.Render("Access denied") + "\n" +
		MutedValue.Render("You don't have permission to view this page.")
}

func errorMessage(err error) string {
	return apperror.MessageOf(err)
}
