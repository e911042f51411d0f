package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Exchange is a supported venue.
type Exchange struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
}

// Catalog lists supported exchanges and cryptos.
type Catalog struct {
	Exchanges []Exchange `json:"exchanges"`
	Cryptos   []string   `json:"cryptos"`
}

// Has reports whether name is a supported exchange.
func (c Catalog) Has(name string) bool {
	for _, e := range c.Exchanges {
		if e.Name == name {
			return true
		}
	}
	return false
}

// ExchangeFees is one exchange's fee schedule. trading_fee_percent is a
// fraction of the traded naira; withdrawal_<crypto>[_<network>] entries are
// in crypto units.
type ExchangeFees map[string]decimal.Decimal

// FeeTable is the fee schedule of every exchange.
type FeeTable struct {
	Fees map[string]ExchangeFees `json:"fees"`
}

// Conservative fallbacks for exchanges missing from the table.
var (
	defaultTradingFee     = decimal.RequireFromString("0.005")
	defaultWithdrawalFees = map[string]decimal.Decimal{
		"usdt": decimal.NewFromInt(2),
		"btc":  decimal.RequireFromString("0.0005"),
		"eth":  decimal.RequireFromString("0.005"),
	}
)

// DefaultNetwork is the withdrawal network assumed for stablecoins.
const DefaultNetwork = "trc20"

// TradingFee is the naira fee for trading amount on exchange.
func (t FeeTable) TradingFee(exchange string, amount decimal.Decimal) decimal.Decimal {
	fees, ok := t.Fees[exchange]
	if !ok {
		return amount.Mul(defaultTradingFee)
	}
	return amount.Mul(fees["trading_fee_percent"])
}

// WithdrawalFee is the naira cost of moving crypto off exchange, valued at
// priceNGN per unit.
func (t FeeTable) WithdrawalFee(exchange, crypto string, priceNGN decimal.Decimal) decimal.Decimal {
	c := strings.ToLower(crypto)
	fees, ok := t.Fees[exchange]
	if !ok {
		units, known := defaultWithdrawalFees[c]
		if !known {
			units = defaultWithdrawalFees["usdt"]
		}
		return units.Mul(priceNGN)
	}
	units, ok := fees["withdrawal_"+c+"_"+DefaultNetwork]
	if !ok {
		units = fees["withdrawal_"+c]
	}
	return units.Mul(priceNGN)
}
