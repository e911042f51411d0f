// Package capability holds optional integrations that views call through
// interfaces so the data flow never depends on them.
package capability

import (
	"context"
	"strings"
	"sync"

	"github.com/fd1az/naijatrade/internal/config"
)

// Placement names where an ad may render.
type Placement string

const (
	PlacementDashboard Placement = "dashboard"
	PlacementSidebar   Placement = "sidebar"
	PlacementFooter    Placement = "footer"
)

// AdSlot renders a sponsored unit for a placement. An empty string means
// nothing is shown.
type AdSlot interface {
	Render(ctx context.Context, placement Placement, width int) string
	Enabled() bool
}

// InstallPrompt offers installing the dashboard as a standalone app.
type InstallPrompt interface {
	Available() bool
	Prompt(ctx context.Context) (accepted bool, err error)
	Dismiss()
}

// NoopAdSlot never renders.
type NoopAdSlot struct{}

func (NoopAdSlot) Render(context.Context, Placement, int) string { return "" }
func (NoopAdSlot) Enabled() bool                                { return false }

// NoopInstallPrompt is never available.
type NoopInstallPrompt struct{}

func (NoopInstallPrompt) Available() bool                       { return false }
func (NoopInstallPrompt) Prompt(context.Context) (bool, error) { return false, nil }
func (NoopInstallPrompt) Dismiss()                              {}

// BannerAdSlot renders a one-line text banner tagged with the publisher id.
type BannerAdSlot struct {
	publisherID string
	messages    map[Placement]string
}

// NewBannerAdSlot creates a text banner slot for publisherID.
func NewBannerAdSlot(publisherID string) *BannerAdSlot {
	return &BannerAdSlot{
		publisherID: publisherID,
		messages: map[Placement]string{
			PlacementDashboard: "Sponsored: trade smarter with NaijaTrade Pro",
			PlacementSidebar:   "Sponsored",
			PlacementFooter:    "Ads help keep NaijaTrade free",
		},
	}
}

func (b *BannerAdSlot) Enabled() bool { return b.publisherID != "" }

func (b *BannerAdSlot) Render(_ context.Context, placement Placement, width int) string {
	msg, ok := b.messages[placement]
	if !ok || !b.Enabled() || width <= 0 {
		return ""
	}
	if len([]rune(msg)) > width {
		msg = string([]rune(msg)[:width])
	}
	return msg
}

// OnceInstallPrompt is available until it is accepted or dismissed.
type OnceInstallPrompt struct {
	mu      sync.Mutex
	done    bool
	install func(ctx context.Context) error
}

// NewOnceInstallPrompt calls install when accepted.
func NewOnceInstallPrompt(install func(ctx context.Context) error) *OnceInstallPrompt {
	return &OnceInstallPrompt{install: install}
}

func (p *OnceInstallPrompt) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.done && p.install != nil
}

func (p *OnceInstallPrompt) Prompt(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.done || p.install == nil {
		p.mu.Unlock()
		return false, nil
	}
	p.done = true
	p.mu.Unlock()

	if err := p.install(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (p *OnceInstallPrompt) Dismiss() {
	p.mu.Lock()
	p.done = true
	p.mu.Unlock()
}

// AdSlotFromConfig returns a banner when a publisher id is configured.
func AdSlotFromConfig(cfg config.FeaturesConfig) AdSlot {
	if !cfg.AdsEnabled() {
		return NoopAdSlot{}
	}
	return NewBannerAdSlot(strings.TrimSpace(cfg.AdPublisherID))
}

var (
	_ AdSlot        = NoopAdSlot{}
	_ AdSlot        = (*BannerAdSlot)(nil)
	_ InstallPrompt = NoopInstallPrompt{}
	_ InstallPrompt = (*OnceInstallPrompt)(nil)
)
