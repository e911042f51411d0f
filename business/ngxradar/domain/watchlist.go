package domain

import (
	"strings"
	"time"

	"github.com/fd1az/naijatrade/internal/validate"
)

// DefaultWatchlistName names a watchlist created without one.
const DefaultWatchlistName = "My Watchlist"

// Watchlist is a named set of stocks.
type Watchlist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Stocks    []Stock   `json:"stocks"`
	CreatedAt time.Time `json:"created_at"`
}

// Has reports whether symbol is on the list.
func (w Watchlist) Has(symbol string) bool {
	for _, s := range w.Stocks {
		if strings.EqualFold(s.Symbol, symbol) {
			return true
		}
	}
	return false
}

// NormalizeSymbol upper-cases and trims a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidateSymbol rejects a blank ticker.
func ValidateSymbol(form, symbol string) error {
	return validate.New(form).NotBlank("symbol", symbol).Err()
}
