package ui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	auth "github.com/fd1az/naijatrade/business/auth/domain"
	"github.com/fd1az/naijatrade/internal/query"
)

const telegramTimeout = 15 * time.Second

// TelegramLinker is the part of the auth service the Telegram panel uses.
type TelegramLinker interface {
	WatchTelegramStatus() *query.Subscription[auth.TelegramStatus]
	LinkTelegram(ctx context.Context) (auth.TelegramLink, error)
	UnlinkTelegram(ctx context.Context) (auth.Notice, error)
	SendTelegramTest(ctx context.Context) (auth.Notice, error)
	RefreshTelegramStatus()
}

type telegramResultMsg struct {
	link   *auth.TelegramLink
	notice string
	err    error
}

// TelegramPanel shows the link status and runs link, unlink and test.
type TelegramPanel struct {
	*ResourceScreen[auth.TelegramStatus]
	svc TelegramLinker

	busy   bool
	link   *auth.TelegramLink
	issued time.Time
	notice string
	err    error
}

// NewTelegramPanel returns the Telegram section of the account screen.
func NewTelegramPanel(svc TelegramLinker) *TelegramPanel {
	p := &TelegramPanel{svc: svc}
	p.ResourceScreen = NewResourceScreen("Telegram alerts", svc.WatchTelegramStatus, Resource[auth.TelegramStatus]{
		Noun:   "Telegram status",
		Render: p.render,
	})
	return p
}

func (p *TelegramPanel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case telegramResultMsg:
		p.busy = false
		p.notice, p.err = msg.notice, msg.err
		if msg.link != nil {
			p.link = msg.link
			p.issued = time.Now()
		}
		return nil
	case tea.KeyMsg:
		if cmd := p.action(msg.String()); cmd != nil {
			return cmd
		}
	}
	return p.ResourceScreen.Update(msg)
}

// action maps a key to a request. Keys that do not apply to the current
// status are ignored.
func (p *TelegramPanel) action(k string) tea.Cmd {
	st := p.State()
	if p.busy || !st.HasData {
		return nil
	}
	linked := st.Data.Linked

	var run func(ctx context.Context) telegramResultMsg
	switch {
	case k == "l" && !linked && p.link != nil:
		// Back from the bot.
		p.link = nil
		p.svc.RefreshTelegramStatus()
		return func() tea.Msg { return telegramResultMsg{notice: "Checking link status..."} }
	case k == "l" && !linked:
		run = func(ctx context.Context) telegramResultMsg {
			link, err := p.svc.LinkTelegram(ctx)
			if err != nil {
				return telegramResultMsg{err: err}
			}
			return telegramResultMsg{link: &link}
		}
	case k == "u" && linked:
		run = func(ctx context.Context) telegramResultMsg {
			n, err := p.svc.UnlinkTelegram(ctx)
			return telegramResultMsg{notice: n.Message, err: err}
		}
	case k == "t" && linked:
		run = func(ctx context.Context) telegramResultMsg {
			n, err := p.svc.SendTelegramTest(ctx)
			return telegramResultMsg{notice: n.Message, err: err}
		}
	default:
		return nil
	}

	p.busy = true
	p.notice, p.err = "", nil
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), telegramTimeout)
		defer cancel()
		return run(ctx)
	}
}

func (p *TelegramPanel) render(st auth.TelegramStatus, _ int) string {
	var b strings.Builder
	if st.Linked {
		b.WriteString(PositiveValue.Render("Linked"))
		if id := st.ChatLabel(); id != "" {
			b.WriteString(MutedValue.Render("  chat " + id))
		}
	} else {
		b.WriteString(MutedValue.Render("Not linked"))
	}

	if p.link != nil && !st.Linked {
		left := time.Until(p.link.Expiry(p.issued)).Round(time.Minute)
		b.WriteString("\n\nOpen " + p.link.BotURL)
		if p.link.Instructions != "" {
			b.WriteString("\n" + p.link.Instructions)
		}
		if left > 0 {
			b.WriteString("\n" + MutedValue.Render("Token "+p.link.Token+" expires in "+left.String()))
		}
	}

	switch {
	case p.busy:
		b.WriteString("\n\n" + MutedValue.Render("Working..."))
	case p.err != nil:
		b.WriteString("\n\n" + ErrorStyle.Render(errorMessage(p.err)))
	case p.notice != "":
		b.WriteString("\n\n" + PositiveValue.Render(p.notice))
	}

	help := "l: link"
	switch {
	case st.Linked:
		help = "t: send test • u: unlink"
	case p.link != nil:
		help = "l: I've linked it"
	}
	b.WriteString("\n" + HelpStyle.Render(help))
	return b.String()
}
