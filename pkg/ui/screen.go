package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/key"

	"github.com/fd1az/naijatrade/internal/query"
)

// Screen is one routed view. Init mounts its subscriptions and Close
// unmounts them; constructing a Screen must not touch the cache.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width int) string
	Close()
}

// InputCapturer is implemented by screens that take typed text, so global
// single-letter keys reach them instead.
type InputCapturer interface {
	CapturesInput() bool
}

// ResourceScreen renders one subscription through ResourceView.
type ResourceScreen[T any] struct {
	title string
	open  func() *query.Subscription[T]
	res   Resource[T]
	keys  KeyMap

	sub   *query.Subscription[T]
	state query.State[T]
}

// NewResourceScreen returns a screen that subscribes with open on Init.
func NewResourceScreen[T any](title string, open func() *query.Subscription[T], res Resource[T]) *ResourceScreen[T] {
	return &ResourceScreen[T]{title: title, open: open, res: res, keys: DefaultKeyMap()}
}

func (s *ResourceScreen[T]) Init() tea.Cmd {
	s.sub = s.open()
	s.state = s.sub.Current()
	return waitFor(s.sub)
}

func (s *ResourceScreen[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case stateMsg[T]:
		if msg.sub != s.sub {
			return nil
		}
		s.state = msg.state
		return waitFor(s.sub)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keys.Refresh) && s.sub != nil:
			s.sub.Refetch()
		case s.res.OnKey != nil:
			s.res.OnKey(msg)
		}
	}
	return nil
}

func (s *ResourceScreen[T]) View(width int) string {
	var b strings.Builder
	if s.title != "" {
		b.WriteString(HeaderStyle.Render(s.title))
		if s.state.Fetching && s.state.HasData {
			b.WriteString(MutedValue.Render("  ⟳"))
		}
		b.WriteString("\n\n")
	}
	b.WriteString(ResourceView(s.state, s.res, width))
	return b.String()
}

func (s *ResourceScreen[T]) Close() {
	if s.sub != nil {
		s.sub.Close()
	}
}

// State returns the last received state.
func (s *ResourceScreen[T]) State() query.State[T] {
	return s.state
}

// waitFor blocks on the next update of sub. A closed subscription yields no
// message, which ends the chain.
func waitFor[T any](sub *query.Subscription[T]) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-sub.Updates()
		if !ok {
			return nil
		}
		return stateMsg[T]{sub: sub, state: st}
	}
}

// Stack shows several screens one above the other and forwards every
// message to each of them.
type Stack struct {
	screens []Screen
}

// NewStack stacks screens top to bottom.
func NewStack(screens ...Screen) *Stack {
	return &Stack{screens: screens}
}

func (s *Stack) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(s.screens))
	for _, sc := range s.screens {
		cmds = append(cmds, sc.Init())
	}
	return tea.Batch(cmds...)
}

func (s *Stack) Update(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(s.screens))
	for _, sc := range s.screens {
		cmds = append(cmds, sc.Update(msg))
	}
	return tea.Batch(cmds...)
}

func (s *Stack) View(width int) string {
	parts := make([]string, 0, len(s.screens))
	for _, sc := range s.screens {
		parts = append(parts, sc.View(width))
	}
	return strings.Join(parts, "\n\n")
}

func (s *Stack) Close() {
	for _, sc := range s.screens {
		sc.Close()
	}
}
