package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/naijatrade/internal/capability"
	"github.com/fd1az/naijatrade/internal/logger"
	"github.com/fd1az/naijatrade/internal/store"
	"github.com/fd1az/naijatrade/pkg/ui/components"
)

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"
	PhaseStartup   Phase = "startup"
	PhaseDashboard Phase = "dashboard"
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

const (
	pingInterval = 30 * time.Second
	pingTimeout  = 5 * time.Second
	maxErrors    = 3
	maxLogs      = 5
)

// Startup steps reported through StartupMsg.
const (
	StepConfig    = "config"
	StepSession   = "session"
	StepPush      = "push"
	StepReference = "reference"
)

var stepOrder = []string{StepConfig, StepSession, StepPush, StepReference}

// StartupStep represents a step in the startup process.
type StartupStep struct {
	Name   string
	Status string
}

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Deps is everything the dashboard needs from the running app.
type Deps struct {
	Services

	// Cryptos is the selection cycled by the crypto key.
	Cryptos []string
	Home    string
	Log     logger.LoggerInterface

	Ping          func(ctx context.Context) error
	PushConnected func() bool
	// Start is called once the welcome screen is done.
	Start func()
}

type connectionMsg struct {
	name      string
	connected bool
	latency   time.Duration
}

type pingTickMsg struct{}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	deps   Deps
	router *Router
	keys   KeyMap
	help   help.Model
	status *components.StatusComponent

	phase        Phase
	welcomeStart time.Time
	startupSteps map[string]*StartupStep
	startupTime  time.Time
	started      bool

	ready    bool
	quitting bool
	showHelp bool
	width    int
	height   int

	session     store.Snapshot
	view        store.UIView
	errors      []ErrorEntry
	logs        []string
	installNote string
}

// New creates a new TUI model.
func New(deps Deps) Model {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Home == "" {
		deps.Home = RouteArb
	}
	if deps.Ads == nil {
		deps.Ads = capability.NoopAdSlot{}
	}
	if deps.Install == nil {
		deps.Install = capability.NoopInstallPrompt{}
	}

	router := NewRouter(deps.Session, RouteLogin, deps.Home, Routes(deps.Services)...)
	log := deps.Log
	router.OnCrash(func(err error) {
		log.Error(context.Background(), "view crashed", "error", err)
	})

	now := time.Now()
	m := Model{
		deps:         deps,
		router:       router,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		status:       components.NewStatusComponent(),
		phase:        PhaseWelcome,
		welcomeStart: now,
		startupTime:  now,
		startupSteps: map[string]*StartupStep{
			StepConfig:    {Name: "Loading configuration", Status: "pending"},
			StepSession:   {Name: "Restoring session", Status: "pending"},
			StepPush:      {Name: "Connecting to live updates", Status: "pending"},
			StepReference: {Name: "Loading market data", Status: "pending"},
		},
		session: deps.Session.Snapshot(),
		view:    deps.UI.View(),
		logs:    make([]string, 0, maxLogs),
		errors:  make([]ErrorEntry, 0, maxErrors),
	}
	m.status.Update(components.ConnectionStatus{Name: "API"})
	m.status.Update(components.ConnectionStatus{Name: "Live"})
	return m
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.pingCmd())
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m Model) pingCmd() tea.Cmd {
	ping := m.deps.Ping
	if ping == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		start := time.Now()
		err := ping(ctx)
		return connectionMsg{name: "API", connected: err == nil, latency: time.Since(start)}
	}
}

func installCmd(p capability.InstallPrompt) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		accepted, err := p.Prompt(ctx)
		return InstallResultMsg{Accepted: accepted, Err: err}
	}
}

func (m *Model) startModules() {
	if m.started {
		return
	}
	m.started = true
	m.phase = PhaseStartup
	m.startupTime = time.Now()
	if m.deps.Start != nil {
		go m.deps.Start()
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			m.router.Close()
			return m, tea.Quit
		}
		if m.phase == PhaseWelcome {
			m.startModules()
			return m, nil
		}
		if m.phase != PhaseDashboard {
			return m, nil
		}
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case TickMsg:
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m.startModules()
		}
		if m.deps.PushConnected != nil {
			m.status.Update(components.ConnectionStatus{Name: "Live", Connected: m.deps.PushConnected(), LastUpdate: time.Now()})
		}
		if m.phase == PhaseStartup && m.startupDone() {
			m.phase = PhaseDashboard
			return m, tea.Batch(tickCmd(), m.router.Navigate(m.deps.Home))
		}
		return m, tickCmd()

	case pingTickMsg:
		return m, m.pingCmd()

	case connectionMsg:
		m.status.Update(components.ConnectionStatus{Name: msg.name, Connected: msg.connected, Latency: msg.latency, LastUpdate: time.Now()})
		return m, tea.Tick(pingInterval, func(time.Time) tea.Msg { return pingTickMsg{} })

	case StartupMsg:
		if step, ok := m.startupSteps[msg.Step]; ok {
			step.Status = msg.Status
		}
		if msg.Status == "failed" && msg.Message != "" {
			m.logs = addLog(m.logs, "error", msg.Message)
		}
		if m.phase == PhaseStartup && m.startupDone() {
			m.phase = PhaseDashboard
			return m, m.router.Navigate(m.deps.Home)
		}
		return m, nil

	case SessionMsg:
		m.session = msg.Snapshot
		if m.phase != PhaseDashboard {
			return m, nil
		}
		return m, m.router.Recheck()

	case LoggedInMsg:
		if p := m.deps.Session.Snapshot().Profile; p != nil {
			m.logs = addLog(m.logs, "info", "signed in as "+p.DisplayName())
		}
		return m, m.router.Resume()

	case NavigateMsg:
		return m, m.router.Navigate(msg.Route)

	case UIStateMsg:
		changed := msg.View.SelectedCrypto != m.view.SelectedCrypto
		m.view = msg.View
		if changed && (m.router.Active() == RouteArb || m.router.Active() == RouteP2P) {
			return m, m.router.Navigate(m.router.Active())
		}
		return m, nil

	case InstallResultMsg:
		switch {
		case msg.Err != nil:
			m.installNote = ""
			m = m.addError(msg.Err)
		case msg.Accepted:
			m.installNote = "Installed. Launch naijatrade from your applications menu."
		default:
			m.installNote = ""
		}
		return m, nil

	case ErrorMsg:
		return m.addError(msg.Err), nil

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)
		return m, nil
	}

	return m, m.router.Update(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.router.CapturesInput() {
		if msg.String() == "esc" {
			return m.router.Navigate(m.deps.Home)
		}
		return m.router.Update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.NextTab):
		return m.router.Cycle(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m.router.Cycle(-1)
	case key.Matches(msg, m.keys.Crypto):
		return m.cycleCrypto()
	case key.Matches(msg, m.keys.Install):
		if !m.deps.Install.Available() {
			return nil
		}
		m.installNote = "Waiting for install confirmation..."
		return installCmd(m.deps.Install)
	case key.Matches(msg, m.keys.Logout):
		if !m.session.Authenticated() {
			return m.router.Navigate(RouteLogin)
		}
		auth := m.deps.Auth
		return func() tea.Msg {
			auth.Logout(context.Background())
			return LogMsg{Level: "info", Message: "signed out"}
		}
	case key.Matches(msg, m.keys.Clear):
		m.errors = m.errors[:0]
		return nil
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return nil
	}
	return m.router.Update(msg)
}

// cycleCrypto selects the next crypto. Observers send back into the
// program, so the change runs as a command rather than inside Update.
func (m *Model) cycleCrypto() tea.Cmd {
	if len(m.deps.Cryptos) == 0 {
		return nil
	}
	i := slices.Index(m.deps.Cryptos, m.view.SelectedCrypto)
	next := m.deps.Cryptos[(i+1)%len(m.deps.Cryptos)]
	ui := m.deps.UI
	return func() tea.Msg {
		ui.SelectCrypto(context.Background(), next)
		return nil
	}
}

func (m Model) startupDone() bool {
	for _, step := range m.startupSteps {
		if step.Status != "done" && step.Status != "failed" {
			return false
		}
	}
	return true
}

func (m Model) addError(err error) Model {
	if err == nil {
		return m
	}
	m.logs = addLog(m.logs, "error", err.Error())
	m.errors = append(m.errors, ErrorEntry{Message: errorMessage(err), Timestamp: time.Now()})
	if len(m.errors) > maxErrors {
		m.errors = m.errors[len(m.errors)-maxErrors:]
	}
	return m
}

// addLog adds a log message and returns the updated slice (keeps last 5).
func addLog(logs []string, level, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	logs = append(logs, fmt.Sprintf("[%s] %s: %s", timestamp, level, message))
	if len(logs) > maxLogs {
		logs = logs[len(logs)-maxLogs:]
	}
	return logs
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	switch m.phase {
	case PhaseWelcome:
		return m.renderWelcomeScreen()
	case PhaseStartup:
		return m.renderStartupScreen()
	}

	width := max(m.width-4, 40)
	var b strings.Builder

	b.WriteString(TitleStyle.Render(" ₦ NaijaTrade "))
	b.WriteString("  ")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")
	b.WriteString(m.router.TabBar())
	b.WriteString("\n\n")
	b.WriteString(BoxStyle.Width(width).Render(m.router.View(width - 4)))
	b.WriteString("\n")

	if ad := m.footerAd(width); ad != "" {
		b.WriteString(ad + "\n")
	}
	if m.installNote != "" {
		b.WriteString(MutedValue.Render(m.installNote) + "\n")
	}

	if len(m.errors) > 0 {
		b.WriteString("\n")
		b.WriteString(ErrorHeaderStyle.Render("ERRORS"))
		b.WriteString(MutedValue.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(ErrorStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(MutedValue.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	if m.deps.Install.Available() {
		b.WriteString(HelpStyle.Render(" • i: install app"))
	}
	return b.String()
}

func (m Model) footerAd(width int) string {
	if !m.deps.Ads.Enabled() {
		return ""
	}
	return m.deps.Ads.Render(context.Background(), capability.PlacementFooter, width)
}

func (m Model) renderStatusBar() string {
	parts := []string{m.status.View()}

	if m.session.Authenticated() {
		who := m.session.Profile.DisplayName()
		if m.session.IsAdmin() {
			who += " (admin)"
		}
		parts = append(parts, PositiveValue.Render("● "+who))
	} else {
		parts = append(parts, MutedValue.Render("○ guest"))
	}
	parts = append(parts, "Crypto: "+HeaderStyle.Render(m.view.SelectedCrypto))

	if !m.view.LastUpdate.IsZero() {
		ago := time.Since(m.view.LastUpdate).Round(time.Second)
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Prices: %s ago", ago)))
	}
	return strings.Join(parts, "  │  ")
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	goldStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorWarning)

	dots := strings.Repeat(".", int(time.Since(m.welcomeStart).Milliseconds()/300)%4)

	var sb strings.Builder
	sb.WriteString("\n\n\n\n")
	logo := `
   ███╗   ██╗ █████╗ ██╗     ██╗ █████╗ ████████╗██████╗  █████╗ ██████╗ ███████╗
   ████╗  ██║██╔══██╗██║     ██║██╔══██╗╚══██╔══╝██╔══██╗██╔══██╗██╔══██╗██╔════╝
   ██╔██╗ ██║███████║██║     ██║███████║   ██║   ██████╔╝███████║██║  ██║█████╗
   ██║╚██╗██║██╔══██║██║██   ██║██╔══██║   ██║   ██╔══██╗██╔══██║██║  ██║██╔══╝
   ██║ ╚████║██║  ██║██║╚█████╔╝██║  ██║   ██║   ██║  ██║██║  ██║██████╔╝███████╗
   ╚═╝  ╚═══╝╚═╝  ╚═╝╚═╝ ╚════╝ ╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝ ╚══════╝
`
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")
	sb.WriteString(MutedValue.Render("          Crypto arbitrage • NGX stocks • signals • savings"))
	sb.WriteString("\n\n\n")
	sb.WriteString(goldStyle.Render("                     Trade smarter in naira"))
	sb.WriteString("\n\n\n")
	sb.WriteString(PositiveValue.Render("                        Initializing" + dots))
	sb.WriteString("\n\n")
	sb.WriteString(MutedValue.Render("                Press any key to skip, or wait..."))
	sb.WriteString("\n")
	return sb.String()
}

// renderStartupScreen renders the loading/startup screen.
func (m Model) renderStartupScreen() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	connectingStyle := lipgloss.NewStyle().Foreground(ColorWarning)

	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(HeaderStyle.Render("  ₦ NaijaTrade"))
	sb.WriteString("\n\n")
	sb.WriteString(headerStyle.Render("  Starting up..."))
	sb.WriteString("\n\n")

	for _, k := range stepOrder {
		step := m.startupSteps[k]

		var icon, statusText string
		var style lipgloss.Style
		switch step.Status {
		case "done":
			icon, statusText, style = "✓", "Ready", PositiveValue
		case "connecting":
			spinners := []string{"◐", "◓", "◑", "◒"}
			icon = spinners[int(time.Since(m.startupTime).Milliseconds()/200)%len(spinners)]
			statusText, style = "Working...", connectingStyle
		case "failed":
			icon, statusText, style = "✗", "Skipped", NegativeValue
		default:
			icon, statusText, style = "○", "Pending", MutedValue
		}
		fmt.Fprintf(&sb, "  %s %s %s\n", style.Render(icon), MutedValue.Render(step.Name), style.Render(statusText))
	}

	sb.WriteString("\n")
	sb.WriteString(MutedValue.Render(fmt.Sprintf("  Elapsed: %s", time.Since(m.startupTime).Round(time.Second))))
	sb.WriteString("\n")
	for _, l := range m.logs {
		sb.WriteString(MutedValue.Render("  "+l) + "\n")
	}
	return sb.String()
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// Run starts the dashboard and blocks until it exits. Session and UI state
// changes are forwarded to the program.
func Run(ctx context.Context, deps Deps) error {
	Program = tea.NewProgram(New(deps), tea.WithAltScreen(), tea.WithContext(ctx))
	deps.Session.OnChange(func(s store.Snapshot) { Send(SessionMsg{Snapshot: s}) })
	deps.UI.OnChange(func(v store.UIView) { Send(UIStateMsg{View: v}) })
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
