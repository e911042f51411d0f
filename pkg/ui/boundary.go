package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/key"

	"github.com/fd1az/naijatrade/internal/apperror"
)

const (
	crashTitle   = "Something went wrong"
	crashMessage = "An unexpected error occurred. Please try again."
)

// Boundary contains panics raised by the screen it wraps. A crashed screen
// is closed and replaced by a notice until the reset key rebuilds it.
type Boundary struct {
	build   func() Screen
	screen  Screen
	err     error
	onCrash func(error)
	keys    KeyMap
}

// NewBoundary wraps the screen returned by build. onCrash may be nil.
func NewBoundary(build func() Screen, onCrash func(error)) *Boundary {
	return &Boundary{build: build, onCrash: onCrash, keys: DefaultKeyMap()}
}

// Crashed returns the error that took the screen down, if any.
func (b *Boundary) Crashed() error {
	return b.err
}

func (b *Boundary) Init() (cmd tea.Cmd) {
	defer b.contain()
	b.screen = b.build()
	return b.screen.Init()
}

func (b *Boundary) Update(msg tea.Msg) (cmd tea.Cmd) {
	if b.err != nil {
		if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, b.keys.Reset) {
			b.err = nil
			return b.Init()
		}
		return nil
	}
	if b.screen == nil {
		return nil
	}
	defer b.contain()
	return b.screen.Update(msg)
}

func (b *Boundary) View(width int) (out string) {
	if b.err == nil && b.screen != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.crash(r)
				}
			}()
			out = b.screen.View(width)
		}()
	}
	if b.err != nil {
		return ErrorHeaderStyle.Render(crashTitle) + "\n" +
			crashMessage + "\n\n" +
			HelpStyle.Render("enter: reset view")
	}
	return out
}

func (b *Boundary) Close() {
	if b.screen == nil {
		return
	}
	defer func() { _ = recover() }()
	b.screen.Close()
	b.screen = nil
}

// CapturesInput defers to the wrapped screen.
func (b *Boundary) CapturesInput() bool {
	c, ok := b.screen.(InputCapturer)
	return ok && b.err == nil && c.CapturesInput()
}

func (b *Boundary) contain() {
	if r := recover(); r != nil {
		b.crash(r)
	}
}

func (b *Boundary) crash(r any) {
	b.err = apperror.New(apperror.CodeViewCrashed,
		apperror.WithMessage(crashMessage),
		apperror.WithCause(fmt.Errorf("%v", r)),
	)
	b.Close()
	if b.onCrash != nil {
		b.onCrash(b.err)
	}
}
