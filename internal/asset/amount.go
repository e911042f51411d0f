package asset

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNilAsset        = errors.New("asset: nil asset")
	ErrNegativeAmount  = errors.New("asset: negative amount")
	ErrAssetMismatch   = errors.New("asset: cannot operate on different assets")
	ErrNegativeResult  = errors.New("asset: operation would result in negative amount")
	ErrTooManyDecimals = errors.New("asset: too many decimal places for asset")
	ErrDivisionByZero  = errors.New("asset: division by zero")
)

// Amount is an immutable quantity of an asset.
type Amount struct {
	value decimal.Decimal
	asset *Asset
}

// NewAmount creates an Amount. Panics on a nil asset or negative value.
func NewAmount(asset *Asset, value decimal.Decimal) Amount {
	if asset == nil {
		panic(ErrNilAsset)
	}
	if value.IsNegative() {
		panic(ErrNegativeAmount)
	}
	return Amount{value: value, asset: asset}
}

// Zero creates a zero Amount for the given asset.
func Zero(asset *Asset) Amount {
	return NewAmount(asset, decimal.Zero)
}

// Naira is shorthand for an NGN amount.
func Naira(value decimal.Decimal) Amount {
	return NewAmount(NGN, value)
}

// Decimal returns the value.
func (a Amount) Decimal() decimal.Decimal {
	return a.value
}

// Asset returns the asset.
func (a Amount) Asset() *Asset {
	return a.asset
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.value.IsZero()
}

// IsPositive returns true if the amount is greater than zero.
func (a Amount) IsPositive() bool {
	return a.value.IsPositive()
}

// Add returns a + b. Both must be the same asset.
func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.checkSameAsset(b); err != nil {
		return Amount{}, err
	}
	return Amount{value: a.value.Add(b.value), asset: a.asset}, nil
}

// Sub returns a - b. Both must be the same asset and the result non-negative.
func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.checkSameAsset(b); err != nil {
		return Amount{}, err
	}
	v := a.value.Sub(b.value)
	if v.IsNegative() {
		return Amount{}, ErrNegativeResult
	}
	return Amount{value: v, asset: a.asset}, nil
}

// Mul scales the amount by a non-negative factor.
func (a Amount) Mul(factor decimal.Decimal) Amount {
	return NewAmount(a.asset, a.value.Mul(factor))
}

// Div divides the amount.
func (a Amount) Div(divisor decimal.Decimal) (Amount, error) {
	if divisor.IsZero() {
		return Amount{}, ErrDivisionByZero
	}
	return NewAmount(a.asset, a.value.Div(divisor)), nil
}

// Cmp compares two amounts of the same asset.
func (a Amount) Cmp(b Amount) (int, error) {
	if err := a.checkSameAsset(b); err != nil {
		return 0, err
	}
	return a.value.Cmp(b.value), nil
}

// Equals returns true for the same asset and value.
func (a Amount) Equals(b Amount) bool {
	return a.asset.Equals(b.asset) && a.value.Equal(b.value)
}

// ParseDecimal validates user input against the asset precision.
func ParseDecimal(asset *Asset, d decimal.Decimal) (Amount, error) {
	if asset == nil {
		return Amount{}, ErrNilAsset
	}
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}
	if !d.Equal(d.Truncate(int32(asset.Decimals()))) {
		return Amount{}, ErrTooManyDecimals
	}
	return NewAmount(asset, d), nil
}

// ParseString creates an Amount from a decimal string.
func ParseString(asset *Asset, s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("asset: invalid decimal string: %w", err)
	}
	return ParseDecimal(asset, d)
}

// String returns e.g. "1.5 BTC".
func (a Amount) String() string {
	if a.asset == nil {
		return "0 ???"
	}
	return fmt.Sprintf("%s %s", a.value.String(), a.asset.Symbol())
}

// StringFixed returns a string with fixed decimal places.
func (a Amount) StringFixed(places int32) string {
	if a.asset == nil {
		return "0 ???"
	}
	return fmt.Sprintf("%s %s", a.value.StringFixed(places), a.asset.Symbol())
}

func (a Amount) checkSameAsset(b Amount) error {
	if a.asset == nil || b.asset == nil {
		return ErrNilAsset
	}
	if !a.asset.Equals(b.asset) {
		return fmt.Errorf("%w: %s vs %s", ErrAssetMismatch, a.asset.Symbol(), b.asset.Symbol())
	}
	return nil
}
