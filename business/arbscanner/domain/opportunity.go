package domain

import (
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/asset"
	"github.com/fd1az/naijatrade/internal/validate"
)

// Defaults used by the opportunity scanner.
var (
	DefaultMinSpread   = decimal.RequireFromString("0.5")
	DefaultTradeAmount = decimal.NewFromInt(100000)
)

// Fees is the naira fee breakdown of one route.
type Fees struct {
	BuyFee        decimal.Decimal `json:"buy_fee"`
	SellFee       decimal.Decimal `json:"sell_fee"`
	WithdrawalFee decimal.Decimal `json:"withdrawal_fee"`
	Total         decimal.Decimal `json:"total"`
}

// Opportunity is a route that buys on one exchange and sells on another.
type Opportunity struct {
	ID                 string              `json:"id,omitempty"`
	Crypto             string              `json:"crypto"`
	BuyExchange        string              `json:"buy_exchange"`
	SellExchange       string              `json:"sell_exchange"`
	BuyPrice           decimal.Decimal     `json:"buy_price"`
	SellPrice          decimal.Decimal     `json:"sell_price"`
	GrossSpread        decimal.Decimal     `json:"gross_spread"`
	GrossSpreadPercent decimal.Decimal     `json:"gross_spread_percent"`
	Fees               Fees                `json:"fees"`
	NetProfit          decimal.Decimal     `json:"net_profit"`
	NetProfitPercent   decimal.Decimal     `json:"net_profit_percent"`
	IsProfitable       bool                `json:"is_profitable"`
	MinTradeAmount     decimal.NullDecimal `json:"min_trade_amount"`
	MaxTradeAmount     decimal.NullDecimal `json:"max_trade_amount"`
	DetectedAt         *time.Time          `json:"detected_at,omitempty"`
}

// Route names the opportunity as "buy -> sell".
func (o Opportunity) Route() string {
	return o.BuyExchange + " -> " + o.SellExchange
}

// OpportunityList is one scan result.
type OpportunityList struct {
	Opportunities []Opportunity `json:"opportunities"`
	Total         int           `json:"total"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Profitable returns the opportunities with positive net profit.
func (l OpportunityList) Profitable() []Opportunity {
	var out []Opportunity
	for _, o := range l.Opportunities {
		if o.IsProfitable {
			out = append(out, o)
		}
	}
	return out
}

// Scan selects which opportunities to load.
type Scan struct {
	Crypto      string
	MinSpread   decimal.Decimal
	TradeAmount decimal.Decimal
}

// NewScan uses the default spread threshold and trade amount.
func NewScan(crypto string) Scan {
	return Scan{Crypto: strings.ToUpper(crypto), MinSpread: DefaultMinSpread, TradeAmount: DefaultTradeAmount}
}

// Values encodes the scan as query parameters.
func (s Scan) Values() url.Values {
	return api.NewParams().
		String("crypto", s.Crypto).
		Decimal("min_spread", &s.MinSpread).
		Decimal("trade_amount", &s.TradeAmount).
		Values()
}

// Calculation is the outcome of running a route for a given naira amount.
type Calculation struct {
	Opportunity
	TradeAmountNGN decimal.Decimal `json:"trade_amount_ngn"`
	CryptoAmount   decimal.Decimal `json:"crypto_amount"`
	ROI            decimal.Decimal `json:"roi"`
}

// CalculateForm asks the server to price a specific route.
type CalculateForm struct {
	BuyExchange    string          `json:"buy_exchange"`
	SellExchange   string          `json:"sell_exchange"`
	Crypto         string          `json:"crypto"`
	TradeAmountNGN decimal.Decimal `json:"trade_amount_ngn"`
}

// NewCalculateForm prices the default trade amount in USDT.
func NewCalculateForm(buy, sell string) *CalculateForm {
	return &CalculateForm{BuyExchange: buy, SellExchange: sell, Crypto: "USDT", TradeAmountNGN: DefaultTradeAmount}
}

func (f *CalculateForm) SetCrypto(c string) *CalculateForm {
	f.Crypto = strings.ToUpper(c)
	return f
}

func (f *CalculateForm) SetTradeAmount(v decimal.Decimal) *CalculateForm {
	f.TradeAmountNGN = v
	return f
}

// Validate requires two distinct exchanges and a positive amount.
func (f *CalculateForm) Validate() error {
	v := validate.New("calculate")
	v.NotBlank("buy_exchange", f.BuyExchange)
	v.NotBlank("sell_exchange", f.SellExchange)
	v.Positive("trade_amount_ngn", f.TradeAmountNGN)
	if f.BuyExchange != "" {
		v.Check("sell_exchange", f.BuyExchange != f.SellExchange, "must differ from buy_exchange")
	}
	return v.Err()
}

// ProfitCalculator prices a route locally from a fee table, the same way the
// server does, so the calculator can update while a request is in flight.
type ProfitCalculator struct {
	fees FeeTable
}

// NewProfitCalculator creates a ProfitCalculator over fees.
func NewProfitCalculator(fees FeeTable) *ProfitCalculator {
	return &ProfitCalculator{fees: fees}
}

var hundred = decimal.NewFromInt(100)

// Calculate prices buying amount naira of crypto on buy and selling it on sell.
func (c *ProfitCalculator) Calculate(crypto string, buy, sell ExchangePrice, amount decimal.Decimal) Calculation {
	spread := CalculateSpread(buy.BuyPrice, sell.SellPrice)

	cryptoAmount := decimal.Zero
	if buy.BuyPrice.IsPositive() && amount.IsPositive() {
		cryptoAmount = amount.Div(buy.BuyPrice)
	}
	revenue := sellValue(crypto, cryptoAmount, sell)
	fees := Fees{
		BuyFee:        c.fees.TradingFee(buy.Exchange, amount).Round(2),
		SellFee:       c.fees.TradingFee(sell.Exchange, revenue).Round(2),
		WithdrawalFee: c.fees.WithdrawalFee(buy.Exchange, crypto, sell.SellPrice).Round(2),
	}
	fees.Total = fees.BuyFee.Add(fees.SellFee).Add(fees.WithdrawalFee)

	net := revenue.Sub(amount).Sub(fees.Total)
	netPct := decimal.Zero
	if !amount.IsZero() {
		netPct = net.Div(amount).Mul(hundred)
	}

	return Calculation{
		Opportunity: Opportunity{
			Crypto:             strings.ToUpper(crypto),
			BuyExchange:        buy.Exchange,
			SellExchange:       sell.Exchange,
			BuyPrice:           buy.BuyPrice,
			SellPrice:          sell.SellPrice,
			GrossSpread:        spread.Absolute,
			GrossSpreadPercent: spread.Percent.Round(2),
			Fees:               fees,
			NetProfit:          net.Round(2),
			NetProfitPercent:   netPct.Round(2),
			IsProfitable:       net.IsPositive(),
		},
		TradeAmountNGN: amount,
		CryptoAmount:   cryptoAmount,
		ROI:            netPct.Round(2),
	}
}

var assets = asset.DefaultRegistry()

// sellValue is the naira received for selling qty of crypto at sell's bid.
func sellValue(crypto string, qty decimal.Decimal, sell ExchangePrice) decimal.Decimal {
	if sell.SellPrice.IsNegative() {
		return decimal.Zero
	}
	base, ok := assets.Get(crypto)
	switch {
	case ok:
	case strings.TrimSpace(crypto) == "":
		base = asset.USDT
	default:
		base = asset.NewAsset(crypto, asset.KindCrypto, 8)
	}
	bid := asset.NewPrice(base, asset.NGN, sell.SellPrice, sell.UpdatedAt)
	out, err := bid.Convert(asset.NewAmount(base, qty))
	if err != nil {
		return decimal.Zero
	}
	return out.Decimal()
}
