package asset

import "strings"

// Kind separates tradable crypto from fiat.
type Kind int

const (
	KindCrypto Kind = iota
	KindFiat
)

// Asset is the metadata of a crypto or fiat currency. The symbol is its identity.
type Asset struct {
	symbol   string
	name     string
	decimals uint8
	kind     Kind
}

// NewAsset creates a new Asset. Symbols are stored upper case.
func NewAsset(symbol string, kind Kind, decimals uint8) *Asset {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		panic("asset: empty symbol")
	}
	if decimals > 18 {
		panic("asset: suspicious decimals (>18)")
	}

	return &Asset{
		symbol:   symbol,
		decimals: decimals,
		kind:     kind,
	}
}

// NewAssetWithName creates a new Asset with a human-readable name.
func NewAssetWithName(symbol, name string, kind Kind, decimals uint8) *Asset {
	a := NewAsset(symbol, kind, decimals)
	a.name = name
	return a
}

// Symbol returns the ticker symbol (e.g., "USDT", "NGN").
func (a *Asset) Symbol() string {
	return a.symbol
}

// Name returns the human-readable name (e.g., "Tether").
func (a *Asset) Name() string {
	if a.name == "" {
		return a.symbol
	}
	return a.name
}

// Decimals returns the display precision.
func (a *Asset) Decimals() uint8 {
	return a.decimals
}

// IsFiat returns true if this is a fiat currency.
func (a *Asset) IsFiat() bool {
	return a.kind == KindFiat
}

// String returns the symbol.
func (a *Asset) String() string {
	return a.symbol
}

// Equals compares two Assets by symbol.
func (a *Asset) Equals(other *Asset) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.symbol == other.symbol
}
