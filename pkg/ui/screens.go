package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	airdropsapp "github.com/fd1az/naijatrade/business/airdrops/app"
	airdrops "github.com/fd1az/naijatrade/business/airdrops/domain"
	arbapp "github.com/fd1az/naijatrade/business/arbscanner/app"
	arb "github.com/fd1az/naijatrade/business/arbscanner/domain"
	authapp "github.com/fd1az/naijatrade/business/auth/app"
	billingapp "github.com/fd1az/naijatrade/business/billing/app"
	billing "github.com/fd1az/naijatrade/business/billing/domain"
	insightsapp "github.com/fd1az/naijatrade/business/insights/app"
	insights "github.com/fd1az/naijatrade/business/insights/domain"
	ngxapp "github.com/fd1az/naijatrade/business/ngxradar/app"
	ngx "github.com/fd1az/naijatrade/business/ngxradar/domain"
	portfolioapp "github.com/fd1az/naijatrade/business/portfolio/app"
	portfolio "github.com/fd1az/naijatrade/business/portfolio/domain"
	signalsapp "github.com/fd1az/naijatrade/business/signals/app"
	signals "github.com/fd1az/naijatrade/business/signals/domain"
	"github.com/fd1az/naijatrade/internal/capability"
	"github.com/fd1az/naijatrade/internal/format"
	"github.com/fd1az/naijatrade/internal/guard"
	"github.com/fd1az/naijatrade/internal/query"
	"github.com/fd1az/naijatrade/internal/store"
	"github.com/fd1az/naijatrade/pkg/ui/components"
)

// Route names.
const (
	RouteLogin      = "login"
	RouteArb        = "arb"
	RouteArbAlerts  = "arb-alerts"
	RouteNGX        = "ngx"
	RouteP2P        = "p2p"
	RouteNews       = "news"
	RouteDefi       = "defi"
	RouteCalculator = "calculator"
	RouteRates      = "rates"
	RouteSignals    = "signals"
	RouteAirdrops   = "airdrops"
	RoutePortfolio  = "portfolio"
	RouteDca        = "dca"
	RouteAccount    = "account"
	RouteAdmin      = "admin"
)

// CalculatorAmount is the amount the savings screen projects.
var CalculatorAmount = decimal.NewFromInt(100000)

const opportunityRows = 8

// Services are the resource services the screens read from.
type Services struct {
	Session   *store.Session
	UI        *store.UIState
	Auth      *authapp.Service
	Scanner   *arbapp.Service
	NGX       *ngxapp.Service
	Insights  *insightsapp.Service
	Signals   *signalsapp.Service
	Airdrops  *airdropsapp.Service
	Portfolio *portfolioapp.Service
	Billing   *billingapp.Service

	Ads     capability.AdSlot
	Install capability.InstallPrompt
}

// Routes builds the dashboard routes over svc.
func Routes(svc Services) []Route {
	return []Route{
		{Name: RouteLogin, Title: "Sign in", New: func() Screen {
			return NewLoginScreen(func(ctx context.Context, email, password string) error {
				_, err := svc.Auth.Login(ctx, email, password)
				return err
			}, svc.Auth.GoogleEnabled())
		}},
		{Name: RouteArb, Title: "Arbitrage", Tab: true, New: func() Screen { return arbScreen(svc) }},
		{Name: RouteP2P, Title: "P2P", Tab: true, New: func() Screen { return p2pScreen(svc) }},
		{Name: RouteNGX, Title: "NGX", Tab: true, New: func() Screen { return ngxScreen(svc) }},
		{Name: RouteNews, Title: "News", Tab: true, New: func() Screen { return newsScreen(svc) }},
		{Name: RouteDefi, Title: "DeFi", Tab: true, New: func() Screen { return defiScreen(svc) }},
		{Name: RouteRates, Title: "Naira", Tab: true, New: func() Screen { return ratesScreen(svc) }},
		{Name: RouteCalculator, Title: "Savings", Tab: true, New: func() Screen { return calculatorScreen(svc) }},
		{Name: RouteSignals, Title: "Signals", Tab: true, New: func() Screen { return signalsScreen(svc) }},
		{Name: RouteAirdrops, Title: "Airdrops", Tab: true, New: func() Screen { return airdropsScreen(svc) }},
		{Name: RouteArbAlerts, Title: "Alerts", Tab: true, Guard: guard.RequireAuth, New: func() Screen { return arbAlertsScreen(svc) }},
		{Name: RoutePortfolio, Title: "Portfolio", Tab: true, Guard: guard.RequireAuth, New: func() Screen { return portfolioScreen(svc) }},
		{Name: RouteDca, Title: "DCA", Tab: true, Guard: guard.RequireAuth, New: func() Screen { return dcaScreen(svc) }},
		{Name: RouteAccount, Title: "Account", Tab: true, Guard: guard.RequireAuth, New: func() Screen { return accountScreen(svc) }},
		{Name: RouteAdmin, Title: "Admin", Tab: true, Guard: guard.RequireAdmin, New: func() Screen { return adminScreen(svc) }},
	}
}

func grid(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorBorder)).
		Headers(headers...).
		Rows(rows...).
		String()
}

func nullNaira(v decimal.NullDecimal) string {
	if !v.Valid {
		return "-"
	}
	return format.Naira(v.Decimal)
}

func nullPercent(v decimal.NullDecimal) string {
	if !v.Valid {
		return "-"
	}
	return colorSigned(v.Decimal, format.Percent(v.Decimal, 2))
}

func colorSigned(v decimal.Decimal, s string) string {
	switch v.Sign() {
	case 1:
		return PositiveValue.Render(s)
	case -1:
		return NegativeValue.Render(s)
	}
	return s
}

func arbScreen(svc Services) Screen {
	crypto := svc.UI.SelectedCrypto()
	prices := components.NewPricesComponent(crypto)
	opps := components.NewOpportunitiesComponent(opportunityRows)
	scan := arb.NewScan(crypto)

	board := NewResourceScreen(fmt.Sprintf("%s price board", crypto),
		func() *query.Subscription[arb.PriceBoard] { return svc.Scanner.WatchPrices(crypto) },
		Resource[arb.PriceBoard]{
			Noun:  "prices",
			Empty: func(b arb.PriceBoard) bool { return len(b.Exchanges) == 0 },
			Render: func(b arb.PriceBoard, _ int) string {
				prices.Update(priceRows(b))
				return prices.View()
			},
		})

	list := NewResourceScreen("",
		func() *query.Subscription[arb.OpportunityList] { return svc.Scanner.WatchOpportunities(scan) },
		Resource[arb.OpportunityList]{
			Noun: "opportunities",
			Render: func(l arb.OpportunityList, _ int) string {
				opps.Update(opportunityRowsOf(l))
				if len(l.Opportunities) > 0 {
					opps.SetBest(breakdownOf(l.Opportunities[0], scan.TradeAmount))
				}
				return opps.View()
			},
			OnKey: func(msg tea.KeyMsg) {
				switch msg.String() {
				case "up", "k":
					opps.ScrollUp()
				case "down", "j":
					opps.ScrollDown()
				}
			},
		})

	return NewStack(board, list)
}

func priceRows(b arb.PriceBoard) []components.PriceRow {
	rows := make([]components.PriceRow, 0, len(b.Exchanges))
	for _, e := range b.Exchanges {
		rows = append(rows, components.PriceRow{
			Exchange:      e.Exchange,
			Buy:           e.BuyPrice,
			Sell:          e.SellPrice,
			SpreadPercent: e.SpreadPercent,
			BestBuy:       b.BestBuy != nil && b.BestBuy.Exchange == e.Exchange,
			BestSell:      b.BestSell != nil && b.BestSell.Exchange == e.Exchange,
		})
	}
	return rows
}

func opportunityRowsOf(l arb.OpportunityList) []components.OpportunityRow {
	rows := make([]components.OpportunityRow, 0, len(l.Opportunities))
	for _, o := range l.Opportunities {
		rows = append(rows, components.OpportunityRow{
			Route:         format.ExchangeName(o.BuyExchange) + " → " + format.ExchangeName(o.SellExchange),
			Crypto:        o.Crypto,
			SpreadPercent: o.GrossSpreadPercent,
			NetProfit:     o.NetProfit,
			Profitable:    o.IsProfitable,
		})
	}
	return rows
}

func breakdownOf(o arb.Opportunity, amount decimal.Decimal) components.CostBreakdown {
	return components.CostBreakdown{
		Route:        o.Route(),
		TradeAmount:  amount,
		GrossProfit:  o.NetProfit.Add(o.Fees.Total),
		TotalFees:    o.Fees.Total,
		NetProfit:    o.NetProfit,
		NetPercent:   o.NetProfitPercent,
		IsProfitable: o.IsProfitable,
	}
}

func arbAlertsScreen(svc Services) Screen {
	return NewResourceScreen("Spread alerts", svc.Scanner.WatchAlerts, Resource[[]arb.Alert]{
		Noun:  "alerts",
		Empty: func(a []arb.Alert) bool { return len(a) == 0 },
		Render: func(alerts []arb.Alert, _ int) string {
			rows := make([][]string, 0, len(alerts))
			for _, a := range alerts {
				state := MutedValue.Render("paused")
				if a.IsActive {
					state = PositiveValue.Render("active")
				}
				crypto := a.Crypto
				if crypto == "" {
					crypto = "any"
				}
				rows = append(rows, []string{crypto, "≥ " + a.MinSpreadPercent.StringFixed(2) + "%", state})
			}
			return grid([]string{"Crypto", "Min spread", "State"}, rows)
		},
	})
}

func p2pScreen(svc Services) Screen {
	crypto := svc.UI.SelectedCrypto()
	return NewResourceScreen(fmt.Sprintf("P2P comparison (%s)", crypto),
		func() *query.Subscription[insights.Comparison] { return svc.Insights.WatchCompare(crypto) },
		Resource[insights.Comparison]{
			Noun:  "exchange quotes",
			Empty: func(c insights.Comparison) bool { return len(c.AllExchanges) == 0 },
			Render: func(c insights.Comparison, _ int) string {
				rows := make([][]string, 0, len(c.AllExchanges))
				for _, q := range c.AllExchanges {
					rows = append(rows, []string{q.Name(), format.Naira(q.BuyPrice), format.Naira(q.SellPrice), q.SpreadPercent.StringFixed(2) + "%"})
				}
				out := grid([]string{"Exchange", "Buy", "Sell", "Spread"}, rows)
				if c.CheapestBuy != nil && c.BestSell != nil {
					line := fmt.Sprintf("Buy on %s, sell on %s: %s (%s)",
						c.CheapestBuy.Name(), c.BestSell.Name(), format.Naira(c.MaxSpread), format.Percent(c.MaxSpreadPercent, 2))
					if c.Profitable() {
						line = PositiveValue.Render(line)
					} else {
						line = MutedValue.Render(line)
					}
					out += "\n" + line
				}
				return out
			},
		})
}

func ngxScreen(svc Services) Screen {
	stats := components.NewStatsComponent("market")
	return NewResourceScreen("NGX market", svc.NGX.WatchSummary, Resource[ngx.MarketSummary]{
		Noun: "market summary",
		Render: func(m ngx.MarketSummary, _ int) string {
			stats.Update(
				components.Stat{Label: "ASI", Value: format.Number(m.ASI, 2)},
				components.Stat{Label: "Change", Value: format.Percent(m.ASIChangePercent, 2), Tone: components.ToneOf(m.ASIChangePercent.Sign())},
				components.Stat{Label: "Cap", Value: "₦" + format.Compact(m.MarketCap)},
				components.Stat{Label: "Deals", Value: fmt.Sprint(m.Deals)},
			)
			var b strings.Builder
			b.WriteString(stats.View())
			b.WriteString("\n\n" + lipgloss.JoinHorizontal(lipgloss.Top,
				moversTable("Top gainers", m.TopGainers), "  ", moversTable("Top losers", m.TopLosers)))
			return b.String()
		},
	})
}

func moversTable(title string, stocks []ngx.Stock) string {
	rows := make([][]string, 0, len(stocks))
	for _, s := range stocks {
		rows = append(rows, []string{s.Symbol, nullNaira(s.CurrentPrice), nullPercent(s.ChangePercent)})
	}
	return MutedValue.Render(title) + "\n" + grid([]string{"Symbol", "Price", "Change"}, rows)
}

func newsScreen(svc Services) Screen {
	filter := insights.NewNewsFilter()
	return NewResourceScreen("Market news",
		func() *query.Subscription[insights.NewsFeed] { return svc.Insights.WatchNews(filter) },
		Resource[insights.NewsFeed]{
			Noun:  "news",
			Empty: func(f insights.NewsFeed) bool { return len(f.Items) == 0 },
			Render: func(f insights.NewsFeed, width int) string {
				now := time.Now()
				var b strings.Builder
				for _, it := range f.Items {
					when := ""
					if it.PublishedAt != nil {
						when = format.RelativeTime(it.PublishedAt.Time, now)
					}
					b.WriteString(lipgloss.NewStyle().Bold(true).MaxWidth(width).Render(it.Title) + "\n")
					b.WriteString(MutedValue.Render(strings.TrimSpace(it.Source+" • "+when)) + "\n\n")
				}
				if f.HasMore(filter) {
					b.WriteString(MutedValue.Render(fmt.Sprintf("Showing %d of %d", len(f.Items), f.Total)))
				}
				return strings.TrimRight(b.String(), "\n")
			},
		})
}

func defiScreen(svc Services) Screen {
	filter := insights.NewYieldFilter()
	return NewResourceScreen("DeFi yields",
		func() *query.Subscription[insights.Yields] { return svc.Insights.WatchYields(filter) },
		Resource[insights.Yields]{
			Noun:  "pools",
			Empty: func(y insights.Yields) bool { return len(y.Pools) == 0 },
			Render: func(y insights.Yields, _ int) string {
				rows := make([][]string, 0, len(y.Pools))
				for _, p := range y.Pools {
					apy := p.APY.StringFixed(2) + "%"
					switch p.Tier() {
					case 2:
						apy = PositiveValue.Render(apy)
					case 1:
						apy = WarningValue.Render(apy)
					}
					rows = append(rows, []string{p.Project, p.Symbol, p.Chain, "$" + format.Compact(p.TVLUSD), apy})
				}
				return grid([]string{"Project", "Pool", "Chain", "TVL", "APY"}, rows)
			},
		})
}

func calculatorScreen(svc Services) Screen {
	form := insights.NewCompareForm(CalculatorAmount)
	return NewResourceScreen(fmt.Sprintf("Savings over %s on %s", form.Duration, format.Naira(form.AmountNGN)),
		svc.Insights.WatchRates,
		Resource[insights.Rates]{
			Noun:  "rates",
			Empty: func(r insights.Rates) bool { return len(r.Rates) == 0 },
			Render: func(r insights.Rates, _ int) string {
				cmp := insights.Project(r, form)
				rows := make([][]string, 0, len(cmp.Results))
				for _, p := range cmp.Results {
					name := p.Name
					if cmp.Winner != nil && cmp.Winner.Key == p.Key {
						name = PositiveValue.Render(name + " ★")
					}
					rows = append(rows, []string{name, p.AnnualRate.StringFixed(2) + "%", format.Naira(p.FinalValue), colorSigned(p.ReturnPercent, format.Percent(p.ReturnPercent, 2)), p.Risk})
				}
				return grid([]string{"Instrument", "Rate", "Final value", "Return", "Risk"}, rows)
			},
		})
}

func signalsScreen(svc Services) Screen {
	stats := components.NewStatsComponent("")
	summary := NewResourceScreen("Trading signals", svc.Signals.WatchStats, Resource[signals.Stats]{
		Noun: "signal stats",
		Render: func(s signals.Stats, _ int) string {
			stats.Update(
				components.Stat{Label: "Open", Value: fmt.Sprint(s.OpenSignals)},
				components.Stat{Label: "Closed", Value: fmt.Sprint(s.ClosedSignals)},
				components.Stat{Label: "Win rate", Value: s.WinRate.StringFixed(1) + "%"},
				components.Stat{Label: "Avg return", Value: format.Percent(s.AvgReturn, 2), Tone: components.ToneOf(s.AvgReturn.Sign())},
			)
			return stats.View()
		},
	})
	open := signals.Filter{Status: signals.StatusOpen}
	list := NewResourceScreen("",
		func() *query.Subscription[signals.SignalList] { return svc.Signals.WatchSignals(open) },
		Resource[signals.SignalList]{Noun: "open signals", Empty: signalsEmpty, Render: renderSignals})
	return NewStack(summary, list)
}

func signalsEmpty(l signals.SignalList) bool { return len(l.Signals) == 0 }

func renderSignals(l signals.SignalList, _ int) string {
	rows := make([][]string, 0, len(l.Signals))
	for _, s := range l.Signals {
		target := "-"
		if s.TargetPrice != nil {
			target = format.Number(*s.TargetPrice, 2)
		}
		symbol := s.AssetSymbol
		if s.IsPremium {
			symbol += " ◆"
		}
		rows = append(rows, []string{symbol, strings.ToUpper(string(s.Direction)), format.Number(s.EntryPrice, 2), target, string(s.Status)})
	}
	return grid([]string{"Asset", "Side", "Entry", "Target", "Status"}, rows)
}

func airdropsScreen(svc Services) Screen {
	active := airdrops.Filter{Status: airdrops.StatusActive}
	return NewResourceScreen("Active airdrops",
		func() *query.Subscription[airdrops.AirdropList] { return svc.Airdrops.WatchAirdrops(active) },
		Resource[airdrops.AirdropList]{Noun: "airdrops", Empty: airdropsEmpty, Render: renderAirdrops})
}

func airdropsEmpty(l airdrops.AirdropList) bool { return len(l.Airdrops) == 0 }

func renderAirdrops(l airdrops.AirdropList, _ int) string {
	now := time.Now()
	rows := make([][]string, 0, len(l.Airdrops))
	for _, a := range l.Airdrops {
		left := "-"
		if a.Deadline != nil {
			left = fmt.Sprintf("%dd", a.DaysLeft(now))
		}
		name := a.Name
		if a.IsVerified {
			name += " ✓"
		}
		rows = append(rows, []string{name, a.Project, string(a.Difficulty), a.RewardEstimate, left})
	}
	return grid([]string{"Airdrop", "Project", "Difficulty", "Reward", "Left"}, rows)
}

func portfolioScreen(svc Services) Screen {
	stats := components.NewStatsComponent("")
	return NewResourceScreen("Portfolio", svc.Portfolio.WatchPortfolio, Resource[portfolio.Summary]{
		Noun:  "holdings",
		Empty: func(s portfolio.Summary) bool { return len(s.Portfolio.Holdings) == 0 },
		Render: func(s portfolio.Summary, _ int) string {
			stats.Update(
				components.Stat{Label: "Value", Value: format.Naira(s.TotalValueNGN)},
				components.Stat{Label: "Cost", Value: format.Naira(s.TotalCostNGN)},
				components.Stat{Label: "P&L", Value: format.Naira(s.TotalPnLNGN) + " (" + format.Percent(s.TotalPnLPercent, 2) + ")", Tone: components.ToneOf(s.TotalPnLNGN.Sign())},
			)
			rows := make([][]string, 0, len(s.Portfolio.Holdings))
			for _, h := range s.Portfolio.Holdings {
				rows = append(rows, []string{h.Crypto, format.Number(h.Amount, 6), format.Naira(h.BuyPriceNGN), nullNaira(h.CurrentValueNGN), nullPercent(h.PnLPercent)})
			}
			return stats.View() + "\n\n" + grid([]string{"Crypto", "Amount", "Bought at", "Value", "P&L"}, rows)
		},
	})
}

func dcaScreen(svc Services) Screen {
	return NewResourceScreen("DCA plans", svc.Portfolio.WatchDcaPlans, Resource[[]portfolio.Plan]{
		Noun:  "DCA plans",
		Empty: func(p []portfolio.Plan) bool { return len(p) == 0 },
		Render: func(plans []portfolio.Plan, _ int) string {
			rows := make([][]string, 0, len(plans))
			for _, p := range plans {
				name := p.Name
				if !p.IsActive {
					name += MutedValue.Render(" (paused)")
				}
				rows = append(rows, []string{name, p.Crypto, string(p.Frequency), nullNaira(p.TotalInvestedNGN), nullPercent(p.PnLPercent)})
			}
			return grid([]string{"Plan", "Crypto", "Every", "Invested", "P&L"}, rows)
		},
	})
}

func ratesScreen(svc Services) Screen {
	return NewResourceScreen("Naira exchange rates", svc.Insights.WatchNairaRates, Resource[insights.NairaRates]{
		Noun:  "naira rates",
		Empty: func(n insights.NairaRates) bool { return len(n.Currencies) == 0 },
		Render: func(n insights.NairaRates, _ int) string {
			rates := n.Ordered()
			rows := make([][]string, 0, len(rates))
			for _, r := range rates {
				gap := format.Percent(r.SpreadPercent, 1)
				if r.WideGap() {
					gap = WarningValue.Render(gap)
				}
				name := strings.TrimSpace(r.Flag + " " + r.Code)
				rows = append(rows, []string{name, format.Naira(r.Official), format.Naira(r.BuyRate()), format.Naira(r.SellRate()), gap})
			}
			out := grid([]string{"Currency", "Official (CBN)", "Buy", "Sell", "Gap"}, rows)
			var foot []string
			if n.Source != "" {
				foot = append(foot, "Source: "+n.Source)
			}
			if n.UpdatedAt != nil {
				foot = append(foot, "updated "+format.RelativeTime(n.UpdatedAt.Time, time.Now()))
			}
			if len(foot) > 0 {
				out += "\n" + MutedValue.Render(strings.Join(foot, " • "))
			}
			return out
		},
	})
}

func accountScreen(svc Services) Screen {
	return NewStack(subscriptionsScreen(svc), NewTelegramPanel(svc.Auth))
}

func subscriptionsScreen(svc Services) Screen {
	return NewResourceScreen("Subscriptions", svc.Billing.WatchSubscriptions, Resource[[]billing.Subscription]{
		Noun:  "subscriptions",
		Empty: func(s []billing.Subscription) bool { return len(s) == 0 },
		Render: func(subs []billing.Subscription, _ int) string {
			rows := make([][]string, 0, len(subs))
			for _, s := range subs {
				expires := "-"
				if s.ExpiresAt != nil {
					expires = s.ExpiresAt.Format("2 Jan 2006")
				}
				rows = append(rows, []string{string(s.Product), string(s.Plan), string(s.Status), expires})
			}
			return grid([]string{"Product", "Plan", "Status", "Renews"}, rows)
		},
	})
}

func adminScreen(svc Services) Screen {
	return NewStack(
		NewResourceScreen("All signals", svc.Signals.WatchAdminSignals,
			Resource[signals.SignalList]{Noun: "signals", Empty: signalsEmpty, Render: renderSignals}),
		NewResourceScreen("All airdrops", svc.Airdrops.WatchAdminAirdrops,
			Resource[airdrops.AirdropList]{Noun: "airdrops", Empty: airdropsEmpty, Render: renderAirdrops}),
	)
}
