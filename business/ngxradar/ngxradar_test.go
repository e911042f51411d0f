package ngxradar_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/naijatrade/business/ngxradar/app"
	"github.com/fd1az/naijatrade/business/ngxradar/domain"
	"github.com/fd1az/naijatrade/business/ngxradar/infra/rest"
	"github.com/fd1az/naijatrade/internal/apitest"
	"github.com/fd1az/naijatrade/internal/apperror"
	"github.com/fd1az/naijatrade/internal/query"
)

type radarBackend struct {
	*apitest.Backend
	mu         sync.Mutex
	watchlists []domain.Watchlist
	alerts     []domain.StockAlert
	seq        int
	lastQuery  map[string]string
}

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

var listed = map[string]domain.Stock{
	"DANGCEM": {ID: "s-1", Symbol: "DANGCEM", Name: "Dangote Cement", Sector: "Industrial Goods", CurrentPrice: price("480"), ChangePercent: price("2.5"), High52w: price("600"), Low52w: price("400")},
	"GTCO":    {ID: "s-2", Symbol: "GTCO", Name: "Guaranty Trust Holding", Sector: "Financial Services", CurrentPrice: price("52"), ChangePercent: price("-1.2")},
	"MTNN":    {ID: "s-3", Symbol: "MTNN", Name: "MTN Nigeria", Sector: "ICT", CurrentPrice: price("230")},
}

func newRadarBackend() *radarBackend {
	b := &radarBackend{Backend: apitest.NewBackend(), lastQuery: map[string]string{}}
	b.Handle(http.MethodGet, "/ngx/summary", b.summary)
	b.Handle(http.MethodGet, "/ngx/sectors", b.sectors)
	b.Handle(http.MethodGet, "/ngx/stocks/{symbol}", b.stock)
	b.Handle(http.MethodGet, "/ngx/{kind}", b.movers)
	b.Handle(http.MethodGet, "/ngx/screener", b.screener)
	b.Handle(http.MethodGet, "/ngx/watchlists", b.listWatchlists)
	b.Handle(http.MethodPost, "/ngx/watchlists", b.createWatchlist)
	b.Handle(http.MethodDelete, "/ngx/watchlists/{id}", b.deleteWatchlist)
	b.Handle(http.MethodPost, "/ngx/watchlists/{id}/stocks", b.addStock)
	b.Handle(http.MethodDelete, "/ngx/watchlists/{id}/stocks/{symbol}", b.removeStock)
	b.Handle(http.MethodGet, "/ngx/alerts", b.listAlerts)
	b.Handle(http.MethodPost, "/ngx/alerts", b.createAlert)
	b.Handle(http.MethodPost, "/ngx/alerts/{id}/toggle", b.toggleAlert)
	b.Handle(http.MethodDelete, "/ngx/alerts/{id}", b.deleteAlert)
	b.Handle(http.MethodGet, "/ngx/dividends/calendar", b.calendar)
	return b
}

func (b *radarBackend) record(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for k := range r.URL.Query() {
		b.lastQuery[k] = r.URL.Query().Get(k)
	}
}

func (b *radarBackend) query(k string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastQuery[k]
}

func (b *radarBackend) summary(w http.ResponseWriter, r *http.Request) {
	// Python serializes calendar dates without a time part.
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"asi": 98765.43, "asi_change": 120.5, "asi_change_percent": 0.12, "market_cap": 55000000000000,
		"volume": 412000000, "value": 8100000000, "deals": 9120, "date": "2026-10-16",
		"top_gainers": [], "top_losers": [], "most_active": []}`))
}

func (b *radarBackend) sectors(w http.ResponseWriter, r *http.Request) {
	apitest.JSON(w, http.StatusOK, []string{"Financial Services", "ICT", "Industrial Goods"})
}

func (b *radarBackend) stock(w http.ResponseWriter, r *http.Request) {
	s, ok := listed[chi.URLParam(r, "symbol")]
	if !ok {
		apitest.Detail(w, http.StatusNotFound, "Stock not found")
		return
	}
	apitest.JSON(w, http.StatusOK, domain.StockDetail{Stock: s})
}

func (b *radarBackend) movers(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	switch chi.URLParam(r, "kind") {
	case "gainers":
		apitest.JSON(w, http.StatusOK, []domain.Stock{listed["DANGCEM"]})
	case "losers":
		apitest.JSON(w, http.StatusOK, []domain.Stock{listed["GTCO"]})
	case "active":
		apitest.JSON(w, http.StatusOK, []domain.Stock{listed["MTNN"], listed["GTCO"]})
	default:
		apitest.Detail(w, http.StatusNotFound, "Not Found")
	}
}

func (b *radarBackend) screener(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	var out []domain.Stock
	for _, sym := range []string{"DANGCEM", "GTCO", "MTNN"} {
		s := listed[sym]
		if sector := q.Get("sector"); sector != "" && s.Sector != sector {
			continue
		}
		out = append(out, s)
	}
	applied := domain.NewScreenerFilters()
	applied.Sector = q.Get("sector")
	applied.Limit = limit
	apitest.JSON(w, http.StatusOK, domain.ScreenerResult{Stocks: out, Total: 120, FiltersApplied: applied})
}

func (b *radarBackend) listWatchlists(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	apitest.JSON(w, http.StatusOK, append([]domain.Watchlist{}, b.watchlists...))
}

func (b *radarBackend) createWatchlist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := apitest.Decode(r, &body); err != nil {
		apitest.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	wl := domain.Watchlist{ID: "wl-" + strconv.Itoa(b.seq), Name: body.Name, Stocks: []domain.Stock{}, CreatedAt: time.Now().UTC()}
	b.watchlists = append(b.watchlists, wl)
	apitest.JSON(w, http.StatusOK, wl)
}

func (b *radarBackend) watchlist(id string) int {
	for i, wl := range b.watchlists {
		if wl.ID == id {
			return i
		}
	}
	return -1
}

func (b *radarBackend) deleteWatchlist(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.watchlist(chi.URLParam(r, "id"))
	if i < 0 {
		apitest.Detail(w, http.StatusNotFound, "Watchlist not found")
		return
	}
	b.watchlists = append(b.watchlists[:i], b.watchlists[i+1:]...)
	apitest.JSON(w, http.StatusOK, map[string]string{"message": "Watchlist deleted"})
}

func (b *radarBackend) addStock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Symbol string `json:"symbol"`
	}
	if err := apitest.Decode(r, &body); err != nil {
		apitest.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.watchlist(chi.URLParam(r, "id"))
	s, ok := listed[body.Symbol]
	if i < 0 || !ok {
		apitest.Detail(w, http.StatusBadRequest, "Could not add stock. Check watchlist and symbol.")
		return
	}
	b.watchlists[i].Stocks = append(b.watchlists[i].Stocks, s)
	apitest.JSON(w, http.StatusOK, map[string]string{"message": "Stock added"})
}

func (b *radarBackend) removeStock(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.watchlist(chi.URLParam(r, "id"))
	if i < 0 {
		apitest.Detail(w, http.StatusNotFound, "Stock not found in watchlist")
		return
	}
	sym := chi.URLParam(r, "symbol")
	kept := b.watchlists[i].Stocks[:0]
	for _, s := range b.watchlists[i].Stocks {
		if s.Symbol != sym {
			kept = append(kept, s)
		}
	}
	b.watchlists[i].Stocks = kept
	apitest.JSON(w, http.StatusOK, map[string]string{"message": "Stock removed"})
}

func (b *radarBackend) listAlerts(w http.ResponseWriter, r *http.Request) {
	b.record(r)
	activeOnly := r.URL.Query().Get("active_only") != "false"
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []domain.StockAlert{}
	for _, a := range b.alerts {
		if a.IsActive || !activeOnly {
			out = append(out, a)
		}
	}
	apitest.JSON(w, http.StatusOK, out)
}

func (b *radarBackend) createAlert(w http.ResponseWriter, r *http.Request) {
	var form domain.StockAlertForm
	if err := apitest.Decode(r, &form); err != nil {
		apitest.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s, ok := listed[form.Symbol]
	if !ok {
		apitest.Detail(w, http.StatusBadRequest, "Could not create alert. Check symbol and alert type.")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	a := domain.StockAlert{
		ID: "sa-" + strconv.Itoa(b.seq), StockSymbol: s.Symbol, StockName: s.Name,
		AlertType: form.AlertType, TargetValue: form.TargetValue, CurrentPrice: s.CurrentPrice,
		IsActive: true, NotifyTelegram: form.NotifyTelegram, CreatedAt: time.Now().UTC(),
	}
	b.alerts = append(b.alerts, a)
	apitest.JSON(w, http.StatusOK, a)
}

func (b *radarBackend) alert(id string) int {
	for i, a := range b.alerts {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (b *radarBackend) toggleAlert(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.alert(chi.URLParam(r, "id"))
	if i < 0 {
		apitest.Detail(w, http.StatusNotFound, "Alert not found")
		return
	}
	b.alerts[i].IsActive = !b.alerts[i].IsActive
	apitest.JSON(w, http.StatusOK, b.alerts[i])
}

func (b *radarBackend) deleteAlert(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.alert(chi.URLParam(r, "id"))
	if i < 0 {
		apitest.Detail(w, http.StatusNotFound, "Alert not found")
		return
	}
	b.alerts = append(b.alerts[:i], b.alerts[i+1:]...)
	apitest.JSON(w, http.StatusOK, map[string]string{"message": "Alert deleted"})
}

func (b *radarBackend) calendar(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"upcoming": [{"id": "d-1", "stock_symbol": "MTNN", "stock_name": "MTN Nigeria",
		"dividend_type": "final", "amount_per_share": 5.6, "qualification_date": "2026-11-02",
		"payment_date": "2026-11-20", "year": 2026}], "recent": []}`))
}

func newService(t *testing.T, b *radarBackend) (*app.Service, *query.Client) {
	t.Helper()
	qc := query.NewClient(query.WithDefaults(query.StaleTime(time.Minute), query.RefetchInterval(0)))
	t.Cleanup(qc.Close)
	return app.NewService(rest.NewClient(b.Start(t)), qc), qc
}

func TestDashboardPrefetch(t *testing.T) {
	b := newRadarBackend()
	svc, qc := newService(t, b)
	ctx := context.Background()

	require.NoError(t, svc.Dashboard(ctx))
	assert.Equal(t, query.StatusFresh, qc.Status(app.KeySummary))
	assert.Equal(t, query.StatusFresh, qc.Status(app.MoversKey(domain.MoverActive, domain.DefaultMoverLimit)))

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.True(t, summary.ASI.Equal(decimal.RequireFromString("98765.43")))
	assert.Equal(t, "2026-10-16", summary.Date.String())

	active, err := svc.Movers(ctx, domain.MoverActive, 0)
	require.NoError(t, err)
	assert.Len(t, active, 2)
	assert.Equal(t, "10", b.query("limit"))

	sectors, err := svc.Sectors(ctx)
	require.NoError(t, err)
	assert.Contains(t, sectors, "ICT")

	assert.Equal(t, 1, b.Calls(http.MethodGet, "/ngx/summary"))
	assert.Equal(t, 3, b.Calls(http.MethodGet, "/ngx/{kind}"))
	assert.Equal(t, 1, b.Calls(http.MethodGet, "/ngx/sectors"))
}

func TestStockLookup(t *testing.T) {
	b := newRadarBackend()
	svc, _ := newService(t, b)
	ctx := context.Background()

	s, err := svc.Stock(ctx, " dangcem ")
	require.NoError(t, err)
	assert.Equal(t, "Dangote Cement", s.Name)
	assert.Equal(t, 1, s.Direction())
	pos, ok := s.RangePosition()
	require.True(t, ok)
	assert.True(t, pos.Equal(decimal.NewFromInt(40)))

	_, err = svc.Stock(ctx, "DANGCEM")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Calls(http.MethodGet, "/ngx/stocks/{symbol}"))

	_, err = svc.Stock(ctx, "NOPE")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = svc.Stock(ctx, "  ")
	assert.True(t, apperror.HasCode(err, apperror.CodeRequiredField))
}

func TestScreener(t *testing.T) {
	b := newRadarBackend()
	svc, qc := newService(t, b)
	ctx := context.Background()

	lo := decimal.NewFromInt(50)
	f := domain.NewScreenerFilters().PriceRange(&lo, nil).Sorted("change_percent", "DESC")
	f.Sector = "ICT"

	res, err := svc.Screen(ctx, f)
	require.NoError(t, err)
	require.Len(t, res.Stocks, 1)
	assert.Equal(t, 3, res.Pages())
	assert.Equal(t, "50", b.query("min_price"))
	assert.Equal(t, "desc", b.query("sort_order"))
	assert.Equal(t, "change_percent", b.query("sort_by"))

	assert.Equal(t, query.StatusEmpty, qc.Status(app.ScreenerKey(f.Page(1))))

	hi := decimal.NewFromInt(10)
	_, err = svc.Screen(ctx, f.PriceRange(&lo, &hi))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))

	bad := domain.NewScreenerFilters()
	bad.Limit = 500
	_, err = svc.Screen(ctx, bad)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
	assert.Equal(t, 1, b.Calls(http.MethodGet, "/ngx/screener"))
}

func TestWatchlistLifecycle(t *testing.T) {
	b := newRadarBackend()
	svc, qc := newService(t, b)
	ctx := context.Background()

	wl, err := svc.CreateWatchlist(ctx, "  ")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultWatchlistName, wl.Name)

	require.NoError(t, svc.AddToWatchlist(ctx, wl.ID, "gtco"))
	lists, err := svc.Watchlists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.True(t, lists[0].Has("GTCO"))

	err = svc.AddToWatchlist(ctx, wl.ID, "ZZZZ")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, query.StatusFresh, qc.Status(app.KeyWatchlists), "a failed write invalidates nothing")

	require.NoError(t, svc.RemoveFromWatchlist(ctx, wl.ID, "GTCO"))
	lists, err = svc.Watchlists(ctx)
	require.NoError(t, err)
	assert.False(t, lists[0].Has("GTCO"))

	require.NoError(t, svc.DeleteWatchlist(ctx, wl.ID))
	err = svc.DeleteWatchlist(ctx, wl.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	err = svc.AddToWatchlist(ctx, "", "GTCO")
	assert.True(t, apperror.HasCode(err, apperror.CodeRequiredField))
}

func TestStockAlerts(t *testing.T) {
	b := newRadarBackend()
	svc, qc := newService(t, b)
	ctx := context.Background()

	a, err := svc.CreateAlert(ctx, domain.NewStockAlertForm("mtnn", domain.AlertPriceAbove, decimal.NewFromInt(250)))
	require.NoError(t, err)
	assert.Equal(t, "MTNN", a.StockSymbol)
	assert.False(t, a.Met(a.CurrentPrice.Decimal, decimal.Zero))

	active, err := svc.Alerts(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "true", b.query("active_only"))

	toggled, err := svc.ToggleAlert(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)
	assert.Equal(t, query.StatusEmpty, qc.Status(app.AlertsKey(true)))

	active, err = svc.Alerts(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.Alerts(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, "false", b.query("active_only"))

	require.NoError(t, svc.DeleteAlert(ctx, a.ID))
	_, err = svc.ToggleAlert(ctx, a.ID)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestStockAlertValidation(t *testing.T) {
	tests := []struct {
		name string
		form *domain.StockAlertForm
		code apperror.Code
	}{
		{"missing_symbol", domain.NewStockAlertForm("", domain.AlertPriceBelow, decimal.NewFromInt(10)), apperror.CodeRequiredField},
		{"missing_type", domain.NewStockAlertForm("GTCO", "", decimal.NewFromInt(10)), apperror.CodeRequiredField},
		{"unknown_type", domain.NewStockAlertForm("GTCO", "volume_spike", decimal.NewFromInt(10)), apperror.CodeInvalidInput},
		{"negative_price", domain.NewStockAlertForm("GTCO", domain.AlertPriceBelow, decimal.NewFromInt(-1)), apperror.CodeInvalidInput},
		{"zero_change", domain.NewStockAlertForm("GTCO", domain.AlertPercentChange, decimal.Zero), apperror.CodeInvalidInput},
	}

	b := newRadarBackend()
	svc, _ := newService(t, b)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAlert(context.Background(), tt.form)
			assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
		})
	}
	assert.Zero(t, b.Calls(http.MethodPost, "/ngx/alerts"))

	assert.NoError(t, domain.NewStockAlertForm("GTCO", domain.AlertPercentChange, decimal.NewFromInt(-5)).Validate())
}

func TestDividendCalendar(t *testing.T) {
	b := newRadarBackend()
	svc, _ := newService(t, b)

	cal, err := svc.DividendCalendar(context.Background())
	require.NoError(t, err)
	require.Len(t, cal.Upcoming, 1)
	d := cal.Upcoming[0]
	assert.Equal(t, "2026-11-20", d.PaymentDate.String())
	assert.Equal(t, 2026, *d.Year)
	assert.True(t, d.Yield(decimal.NewFromInt(230)).Equal(decimal.RequireFromString("2.43")))

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"qualification_date":"2026-11-02"`)
}

func TestAlertConditions(t *testing.T) {
	tests := []struct {
		name   string
		alert  domain.StockAlert
		price  string
		change string
		want   bool
	}{
		{"above_hit", domain.StockAlert{AlertType: domain.AlertPriceAbove, TargetValue: decimal.NewFromInt(100)}, "100", "0", true},
		{"above_miss", domain.StockAlert{AlertType: domain.AlertPriceAbove, TargetValue: decimal.NewFromInt(100)}, "99.5", "0", false},
		{"below_hit", domain.StockAlert{AlertType: domain.AlertPriceBelow, TargetValue: decimal.NewFromInt(50)}, "49", "0", true},
		{"change_down", domain.StockAlert{AlertType: domain.AlertPercentChange, TargetValue: decimal.NewFromInt(5)}, "10", "-6", true},
		{"change_small", domain.StockAlert{AlertType: domain.AlertPercentChange, TargetValue: decimal.NewFromInt(5)}, "10", "4.9", false},
		{"unknown", domain.StockAlert{AlertType: "volume"}, "10", "10", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.alert.Met(decimal.RequireFromString(tt.price), decimal.RequireFromString(tt.change))
			assert.Equal(t, tt.want, got)
		})
	}
}
