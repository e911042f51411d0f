package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Tone colours a stat value.
type Tone int

const (
	ToneNeutral Tone = iota
	TonePositive
	ToneNegative
)

// Stat is one labelled figure.
type Stat struct {
	Label string
	Value string
	Tone  Tone
}

// StatsComponent renders a row of figures under a heading.
type StatsComponent struct {
	title string
	stats []Stat
}

// NewStatsComponent creates a new stats component.
func NewStatsComponent(title string) *StatsComponent {
	return &StatsComponent{title: title}
}

// Update updates the statistics.
func (s *StatsComponent) Update(stats ...Stat) {
	s.stats = stats
}

// View renders the stats component.
func (s *StatsComponent) View() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	positiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	negativeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

	parts := make([]string, 0, len(s.stats))
	for _, st := range s.stats {
		vs := valueStyle
		switch st.Tone {
		case TonePositive:
			vs = positiveStyle
		case ToneNegative:
			vs = negativeStyle
		}
		parts = append(parts, st.Label+": "+vs.Render(st.Value))
	}

	out := strings.Join(parts, "  │  ")
	if s.title != "" {
		out = style.Render(strings.ToUpper(s.title)) + "\n" + out
	}
	return out
}

// ToneOf picks the tone for a signed figure.
func ToneOf(sign int) Tone {
	switch {
	case sign > 0:
		return TonePositive
	case sign < 0:
		return ToneNegative
	default:
		return ToneNeutral
	}
}
