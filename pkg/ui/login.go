package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fd1az/naijatrade/internal/apperror"
	"github.com/fd1az/naijatrade/internal/validate"
)

// LoginFunc signs in with email and password.
type LoginFunc func(ctx context.Context, email, password string) error

const loginTimeout = 15 * time.Second

type loginResultMsg struct {
	err error
}

// LoginScreen is the email and password form.
type LoginScreen struct {
	login   LoginFunc
	inputs  []textinput.Model
	focus   int
	busy    bool
	err     error
	invalid map[string]bool
	google  bool
}

// NewLoginScreen creates the form. google adds a hint that Google sign-in
// is available through the CLI.
func NewLoginScreen(login LoginFunc, google bool) *LoginScreen {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email     "
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "Password  "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &LoginScreen{login: login, inputs: []textinput.Model{email, password}, google: google}
}

func (s *LoginScreen) CapturesInput() bool { return true }

func (s *LoginScreen) Init() tea.Cmd {
	return s.setFocus(0)
}

func (s *LoginScreen) setFocus(i int) tea.Cmd {
	s.focus = i
	var cmd tea.Cmd
	for j := range s.inputs {
		if j == i {
			cmd = s.inputs[j].Focus()
		} else {
			s.inputs[j].Blur()
		}
	}
	return cmd
}

func (s *LoginScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loginResultMsg:
		s.busy = false
		s.err = msg.err
		if msg.err == nil {
			s.inputs[1].SetValue("")
			return func() tea.Msg { return LoggedInMsg{} }
		}
		return nil
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			return s.setFocus((s.focus + 1) % len(s.inputs))
		case "shift+tab", "up":
			return s.setFocus((s.focus + len(s.inputs) - 1) % len(s.inputs))
		case "enter":
			if s.focus < len(s.inputs)-1 {
				return s.setFocus(s.focus + 1)
			}
			return s.submit()
		}
	}

	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return cmd
}

func (s *LoginScreen) submit() tea.Cmd {
	if s.busy {
		return nil
	}
	email := strings.TrimSpace(s.inputs[0].Value())
	password := s.inputs[1].Value()

	s.invalid = nil
	err := validate.New("login").
		NotBlank("email", email).
		NotBlank("password", password).
		Check("email", email == "" || strings.Contains(email, "@"), "must be a valid address").
		Err()
	if err != nil {
		s.err = err
		s.invalid = fieldsOf(err)
		return nil
	}

	s.busy = true
	s.err = nil
	login := s.login
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
		defer cancel()
		return loginResultMsg{err: login(ctx, email, password)}
	}
}

func fieldsOf(err error) map[string]bool {
	appErr, ok := apperror.As(err)
	if !ok {
		return nil
	}
	out := map[string]bool{}
	for _, f := range strings.Split(appErr.Field(validate.FieldNames), ",") {
		if f != "" {
			out[f] = true
		}
	}
	return out
}

func (s *LoginScreen) View(int) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Sign in to NaijaTrade"))
	b.WriteString("\n\n")
	for i, in := range s.inputs {
		b.WriteString(in.View())
		name := "email"
		if i == 1 {
			name = "password"
		}
		if s.invalid[name] {
			b.WriteString(ErrorStyle.Render("  !"))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case s.busy:
		b.WriteString(MutedValue.Render("Signing in..."))
	case s.err != nil:
		b.WriteString(ErrorStyle.Render(loginError(s.err)))
	default:
		b.WriteString(HelpStyle.Render("enter: sign in • tab: next field"))
	}
	if s.google {
		b.WriteString("\n" + MutedValue.Render("Google sign-in: naijatrade login --google <id-token>"))
	}
	return b.String()
}

func loginError(err error) string {
	switch apperror.KindOf(err) {
	case apperror.KindAuth:
		return "Invalid email or password."
	case apperror.KindNetwork:
		return "Could not reach the server. Check your connection and try again."
	}
	return errorMessage(err)
}

func (s *LoginScreen) Close() {}
