package ui

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fd1az/naijatrade/internal/guard"
	"github.com/fd1az/naijatrade/internal/store"
)

// SessionSource exposes the session snapshot guards run against.
type SessionSource interface {
	Snapshot() store.Snapshot
}

// Route is a named screen behind a guard.
type Route struct {
	Name  string
	Title string
	Guard guard.Check

	// Tab lists the route in the tab bar.
	Tab bool
	New func() Screen
}

// Router mounts at most one screen. Guards run before a screen is built,
// so a denied route never subscribes to anything.
type Router struct {
	session SessionSource
	routes  []Route
	login   string
	home    string
	onCrash func(error)

	active  string
	current *Boundary
	denied  bool
	pending string
}

// NewRouter creates a router. login names the route shown on a redirect
// and home the route shown after sign in when nothing was pending.
func NewRouter(session SessionSource, login, home string, routes ...Route) *Router {
	return &Router{session: session, routes: routes, login: login, home: home}
}

// OnCrash sets the hook called when a mounted screen panics.
func (r *Router) OnCrash(fn func(error)) {
	r.onCrash = fn
}

func (r *Router) route(name string) (Route, bool) {
	i := slices.IndexFunc(r.routes, func(rt Route) bool { return rt.Name == name })
	if i < 0 {
		return Route{}, false
	}
	return r.routes[i], true
}

// Navigate shows route name, applying its guard.
func (r *Router) Navigate(name string) tea.Cmd {
	rt, ok := r.route(name)
	if !ok {
		return nil
	}
	check := rt.Guard
	if check == nil {
		check = guard.Public
	}

	switch check(r.session.Snapshot()) {
	case guard.RedirectLogin:
		r.pending = name
		if name == r.login {
			return nil
		}
		return r.Navigate(r.login)
	case guard.AccessDenied:
		r.unmount()
		r.active = name
		r.denied = true
		return nil
	}
	return r.mount(rt)
}

func (r *Router) mount(rt Route) tea.Cmd {
	r.unmount()
	r.active = rt.Name
	r.denied = false
	r.current = NewBoundary(rt.New, r.onCrash)
	return r.current.Init()
}

func (r *Router) unmount() {
	if r.current != nil {
		r.current.Close()
		r.current = nil
	}
}

// Resume leaves the login route for the route that redirected there, or
// home.
func (r *Router) Resume() tea.Cmd {
	next := r.pending
	r.pending = ""
	if next == "" || next == r.login {
		next = r.home
	}
	return r.Navigate(next)
}

// Recheck reapplies the active route's guard after a session change.
func (r *Router) Recheck() tea.Cmd {
	if r.active == "" || r.active == r.login {
		return nil
	}
	rt, ok := r.route(r.active)
	if !ok || rt.Guard == nil {
		return nil
	}
	decision := rt.Guard(r.session.Snapshot())
	if decision == guard.Allow && !r.denied {
		return nil
	}
	return r.Navigate(r.active)
}

// Cycle moves delta tabs from the active route, wrapping around.
func (r *Router) Cycle(delta int) tea.Cmd {
	tabs := r.Tabs()
	if len(tabs) == 0 {
		return nil
	}
	i := slices.IndexFunc(tabs, func(rt Route) bool { return rt.Name == r.active })
	if i < 0 {
		i = 0
	} else {
		i = ((i+delta)%len(tabs) + len(tabs)) % len(tabs)
	}
	return r.Navigate(tabs[i].Name)
}

// Tabs returns the routes shown in the tab bar.
func (r *Router) Tabs() []Route {
	var out []Route
	for _, rt := range r.routes {
		if rt.Tab {
			out = append(out, rt)
		}
	}
	return out
}

// Active returns the shown route name.
func (r *Router) Active() string {
	return r.active
}

// Denied reports whether the active route is showing the access denied
// panel.
func (r *Router) Denied() bool {
	return r.denied
}

// CapturesInput reports whether the mounted screen takes typed text.
func (r *Router) CapturesInput() bool {
	return r.current != nil && r.current.CapturesInput()
}

func (r *Router) Update(msg tea.Msg) tea.Cmd {
	if r.current == nil {
		return nil
	}
	return r.current.Update(msg)
}

func (r *Router) View(width int) string {
	if r.denied {
		return AccessDenied()
	}
	if r.current == nil {
		return ""
	}
	return r.current.View(width)
}

// TabBar renders the tab strip. Routes the session may not open are dimmed.
func (r *Router) TabBar() string {
	snap := r.session.Snapshot()
	tabs := r.Tabs()
	parts := make([]string, 0, len(tabs))
	for _, rt := range tabs {
		style := TabStyle
		switch {
		case rt.Name == r.active:
			style = ActiveTabStyle
		case rt.Guard != nil && rt.Guard(snap) != guard.Allow:
			style = LockedTabStyle
		}
		parts = append(parts, style.Render(rt.Title))
	}
	return strings.Join(parts, " ")
}

// Close unmounts the active screen.
func (r *Router) Close() {
	r.unmount()
}
