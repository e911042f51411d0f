package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/internal/format"
)

// OpportunityRow represents an opportunity in the list.
type OpportunityRow struct {
	Route         string
	Crypto        string
	SpreadPercent decimal.Decimal
	NetProfit     decimal.Decimal
	Profitable    bool
}

// CostBreakdown is a fee estimate for the best route. Values arrive
// computed; the component only lays them out.
type CostBreakdown struct {
	Route        string
	TradeAmount  decimal.Decimal
	GrossProfit  decimal.Decimal
	TotalFees    decimal.Decimal
	NetProfit    decimal.Decimal
	NetPercent   decimal.Decimal
	IsProfitable bool
}

// OpportunitiesComponent renders a scrollable opportunity list.
type OpportunitiesComponent struct {
	rows    []OpportunityRow
	maxRows int
	offset  int
	best    *CostBreakdown
}

// NewOpportunitiesComponent shows at most maxRows rows at a time.
func NewOpportunitiesComponent(maxRows int) *OpportunitiesComponent {
	return &OpportunitiesComponent{maxRows: maxRows}
}

// Update replaces the list, keeping the scroll position when it still fits.
func (o *OpportunitiesComponent) Update(rows []OpportunityRow) {
	o.rows = rows
	if o.offset > max(len(rows)-o.maxRows, 0) {
		o.offset = 0
	}
}

// SetBest sets the estimate shown under the table.
func (o *OpportunitiesComponent) SetBest(breakdown CostBreakdown) {
	o.best = &breakdown
}

func (o *OpportunitiesComponent) ScrollUp() {
	if o.offset > 0 {
		o.offset--
	}
}

func (o *OpportunitiesComponent) ScrollDown() {
	if o.offset+o.maxRows < len(o.rows) {
		o.offset++
	}
}

// View renders the opportunities component.
func (o *OpportunitiesComponent) View() string {
	if len(o.rows) == 0 {
		return "No opportunities right now."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#008751"))
	profitableStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	unprofitableStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("OPPORTUNITIES (%d)", len(o.rows))))
	b.WriteString("\n")
	b.WriteString("┌──────────────────────────────┬────────┬──────────┬────────────────┐\n")
	b.WriteString("│ Route                        │ Crypto │  Spread  │   Net profit   │\n")
	b.WriteString("├──────────────────────────────┼────────┼──────────┼────────────────┤\n")

	end := min(o.offset+o.maxRows, len(o.rows))
	for _, row := range o.rows[o.offset:end] {
		style := profitableStyle
		icon := "✓"
		if !row.Profitable {
			style = unprofitableStyle
			icon = "✗"
		}
		fmt.Fprintf(&b, "│ %-28s │ %-6s │ %8s │ %s │\n",
			truncate(row.Route, 28),
			row.Crypto,
			row.SpreadPercent.StringFixed(2)+"%",
			style.Render(fmt.Sprintf("%s %12s", icon, format.Naira(row.NetProfit))),
		)
	}
	b.WriteString("└──────────────────────────────┴────────┴──────────┴────────────────┘")

	if len(o.rows) > o.maxRows {
		b.WriteString("\n" + dimStyle.Render(fmt.Sprintf("%d-%d of %d • ↑↓: scroll", o.offset+1, end, len(o.rows))))
	}

	if cb := o.best; cb != nil {
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render("  "+strings.Repeat("─", 63)) + "\n")
		if cb.IsProfitable {
			b.WriteString(headerStyle.Render("  OPPORTUNITY FOUND") + "\n\n")
		} else {
			b.WriteString(headerStyle.Render("  NO PROFITABLE ROUTE") + "\n\n")
		}
		fmt.Fprintf(&b, "  Best route: %s\n", dimStyle.Render(cb.Route))
		fmt.Fprintf(&b, "  Trade size: %s\n", dimStyle.Render(format.Naira(cb.TradeAmount)))
		fmt.Fprintf(&b, "  Gross profit: %s\n", format.Naira(cb.GrossProfit))
		fmt.Fprintf(&b, "  Fees: %s\n", unprofitableStyle.Render("-"+format.Naira(cb.TotalFees)))

		net := format.Naira(cb.NetProfit) + " (" + format.Percent(cb.NetPercent, 2) + ")"
		if cb.IsProfitable {
			fmt.Fprintf(&b, "  Net profit: %s\n", profitableStyle.Render(net))
		} else {
			fmt.Fprintf(&b, "  Net profit: %s\n", unprofitableStyle.Render(net))
		}
	}

	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
