package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	arbDI "github.com/fd1az/naijatrade/business/arbscanner/di"
	arbDomain "github.com/fd1az/naijatrade/business/arbscanner/domain"
	insightsDI "github.com/fd1az/naijatrade/business/insights/di"
	insightsDomain "github.com/fd1az/naijatrade/business/insights/domain"
	ngxDI "github.com/fd1az/naijatrade/business/ngxradar/di"
	ngxDomain "github.com/fd1az/naijatrade/business/ngxradar/domain"
	"github.com/fd1az/naijatrade/internal/apperror"
	"github.com/fd1az/naijatrade/internal/config"
	"github.com/fd1az/naijatrade/internal/format"
	"github.com/fd1az/naijatrade/internal/logger"
	"github.com/fd1az/naijatrade/internal/monolith"
)

const (
	reportInterval      = time.Minute
	reportOpportunities = 5
)

var (
	heading = color.New(color.Bold, color.FgHiGreen)
	dim     = color.New(color.FgHiBlack)
	green   = color.New(color.FgGreen).SprintFunc()
	red     = color.New(color.FgRed).SprintFunc()
)

// marketReport is one snapshot of the public boards. Each section fails
// on its own.
type marketReport struct {
	Crypto        string
	Prices        arbDomain.PriceBoard
	PricesErr     error
	Opportunities arbDomain.OpportunityList
	OppsErr       error
	P2P           insightsDomain.ComparisonOverview
	P2PErr        error
	NGX           ngxDomain.MarketSummary
	NGXErr        error
	TakenAt       time.Time
}

func runCLI(ctx context.Context, cfg *config.Config, mono *monolith.App, log logger.LoggerInterface, once bool) error {
	interval := cfg.Cache.RefetchInterval
	if interval <= 0 {
		interval = reportInterval
	}
	log.Info(ctx, "all modules started, printing market report", "interval", interval.String())

	for {
		r := collectReport(ctx, mono)
		printReport(os.Stdout, r)
		if once {
			return nil
		}

		select {
		case <-ctx.Done():
			log.Info(ctx, "shutting down")
			return nil
		case <-time.After(interval):
		}
	}
}

func collectReport(ctx context.Context, mono *monolith.App) marketReport {
	sr := mono.Services()
	scanner := arbDI.GetScannerService(sr)
	insights := insightsDI.GetInsightsService(sr)
	radar := ngxDI.GetRadarService(sr)

	r := marketReport{Crypto: mono.UI().SelectedCrypto(), TakenAt: time.Now()}

	var g errgroup.Group
	g.Go(func() error {
		r.Prices, r.PricesErr = scanner.Prices(ctx, r.Crypto)
		return nil
	})
	g.Go(func() error {
		r.Opportunities, r.OppsErr = scanner.Opportunities(ctx, arbDomain.NewScan(r.Crypto))
		return nil
	})
	g.Go(func() error {
		r.P2P, r.P2PErr = insights.CompareAll(ctx)
		return nil
	})
	g.Go(func() error {
		r.NGX, r.NGXErr = radar.Summary(ctx)
		return nil
	})
	_ = g.Wait()
	return r
}

func printReport(w io.Writer, r marketReport) {
	heading.Fprintf(w, "\nNaijaTrade market report  %s\n", r.TakenAt.Format("2006-01-02 15:04:05"))
	dim.Fprintln(w, "────────────────────────────────────────────────────────────")

	section(w, fmt.Sprintf("PRICES (%s/NGN)", r.Crypto), r.PricesErr, func() {
		printPrices(w, r.Prices)
	})
	section(w, "OPPORTUNITIES", r.OppsErr, func() {
		printOpportunities(w, r.Opportunities)
	})
	section(w, "P2P SPREADS", r.P2PErr, func() {
		printP2P(w, r.P2P)
	})
	section(w, "NGX", r.NGXErr, func() {
		printNGX(w, r.NGX)
	})
}

func section(w io.Writer, title string, err error, body func()) {
	fmt.Fprintln(w)
	heading.Fprintln(w, title)
	if err != nil {
		fmt.Fprintln(w, red(apperror.MessageOf(err)))
		return
	}
	body()
}

func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(headers)
	t.SetBorder(false)
	t.SetAutoWrapText(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_RIGHT)
	return t
}

func printPrices(w io.Writer, b arbDomain.PriceBoard) {
	if len(b.Exchanges) == 0 {
		dim.Fprintln(w, "No exchange prices yet.")
		return
	}
	t := newTable(w, "Exchange", "Buy", "Sell", "Spread")
	for _, p := range b.Exchanges {
		buy, sell := format.Naira(p.BuyPrice), format.Naira(p.SellPrice)
		if b.BestBuy != nil && b.BestBuy.Exchange == p.Exchange {
			buy = green(buy)
		}
		if b.BestSell != nil && b.BestSell.Exchange == p.Exchange {
			sell = green(sell)
		}
		t.Append([]string{format.ExchangeName(p.Exchange), buy, sell, p.SpreadPercent.StringFixed(2) + "%"})
	}
	t.Render()
}

func printOpportunities(w io.Writer, l arbDomain.OpportunityList) {
	if len(l.Opportunities) == 0 {
		dim.Fprintln(w, "No opportunities right now.")
		return
	}
	t := newTable(w, "Route", "Spread", "Net profit")
	for i, o := range l.Opportunities {
		if i == reportOpportunities {
			break
		}
		net := format.Naira(o.NetProfit)
		if o.IsProfitable {
			net = green(net)
		} else {
			net = red(net)
		}
		route := format.ExchangeName(o.BuyExchange) + " → " + format.ExchangeName(o.SellExchange)
		t.Append([]string{route, o.GrossSpreadPercent.StringFixed(2) + "%", net})
	}
	t.Render()
	if n := len(l.Profitable()); n > 0 {
		fmt.Fprintf(w, "%s of %d routes clear fees.\n", green(n), len(l.Opportunities))
	}
}

func printP2P(w io.Writer, o insightsDomain.ComparisonOverview) {
	if len(o.Cryptos) == 0 {
		dim.Fprintln(w, "No P2P data yet.")
		return
	}
	t := newTable(w, "Crypto", "Cheapest buy", "Best sell", "Spread")
	for _, c := range o.Cryptos {
		s, ok := o.Comparisons[c]
		if !ok {
			continue
		}
		t.Append([]string{c, quoteCell(s.CheapestBuy, true), quoteCell(s.BestSell, false), signedPercent(s.MaxSpreadPercent)})
	}
	t.Render()
	if c, s, ok := o.Widest(); ok {
		fmt.Fprintf(w, "Widest spread: %s at %s\n", c, format.Percent(s.MaxSpreadPercent, 2))
	}
}

func quoteCell(q *insightsDomain.Quote, buy bool) string {
	if q == nil {
		return "—"
	}
	price := q.SellPrice
	if buy {
		price = q.BuyPrice
	}
	return format.Naira(price) + " " + dim.Sprint(format.ExchangeName(q.Exchange))
}

func printNGX(w io.Writer, s ngxDomain.MarketSummary) {
	fmt.Fprintf(w, "ASI %s  %s  Deals %d  Value %s\n",
		format.Number(s.ASI, 2),
		signedPercent(s.ASIChangePercent),
		s.Deals,
		format.Compact(s.Value),
	)
	t := newTable(w, "Gainer", "Change", "Loser", "Change")
	for i := 0; i < max(len(s.TopGainers), len(s.TopLosers)); i++ {
		row := make([]string, 0, 4)
		row = append(row, moverCells(s.TopGainers, i)...)
		row = append(row, moverCells(s.TopLosers, i)...)
		t.Append(row)
	}
	t.Render()
}

func moverCells(stocks []ngxDomain.Stock, i int) []string {
	if i >= len(stocks) {
		return []string{"", ""}
	}
	st := stocks[i]
	if !st.ChangePercent.Valid {
		return []string{st.Symbol, "—"}
	}
	return []string{st.Symbol, signedPercent(st.ChangePercent.Decimal)}
}

func signedPercent(v decimal.Decimal) string {
	s := format.Percent(v, 2)
	switch v.Sign() {
	case 1:
		return green(s)
	case -1:
		return red(s)
	default:
		return s
	}
}
