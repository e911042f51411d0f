// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/internal/format"
)

// PriceRow is one exchange's quote in the board.
type PriceRow struct {
	Exchange      string
	Buy           decimal.Decimal
	Sell          decimal.Decimal
	SpreadPercent decimal.Decimal
	BestBuy       bool
	BestSell      bool
}

// PricesComponent renders the exchange price board for one crypto.
type PricesComponent struct {
	rows   []PriceRow
	crypto string
}

// NewPricesComponent creates a new prices component.
func NewPricesComponent(crypto string) *PricesComponent {
	return &PricesComponent{crypto: crypto}
}

// Update replaces the board.
func (p *PricesComponent) Update(rows []PriceRow) {
	p.rows = rows
}

// View renders the prices component.
func (p *PricesComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#008751"))
	positiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("PRICES (%s/NGN)", p.crypto)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "  %-16s  %16s  %16s  %9s\n", "Exchange", "Buy", "Sell", "Spread")
	b.WriteString(dimStyle.Render("  "+strings.Repeat("─", 63)) + "\n")

	for _, row := range p.rows {
		buy := fmt.Sprintf("%16s", format.Naira(row.Buy))
		if row.BestBuy {
			buy = positiveStyle.Render(buy)
		}
		sell := fmt.Sprintf("%16s", format.Naira(row.Sell))
		if row.BestSell {
			sell = positiveStyle.Render(sell)
		}
		fmt.Fprintf(&b, "  %-16s  %s  %s  %9s\n",
			format.ExchangeName(row.Exchange), buy, sell, row.SpreadPercent.StringFixed(2)+"%")
	}

	return b.String()
}
