package api

import (
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// Params builds a query string. Zero values are left out so equal filters
// encode identically.
type Params struct {
	v url.Values
}

// NewParams returns an empty builder.
func NewParams() *Params {
	return &Params{v: url.Values{}}
}

func (p *Params) String(key, value string) *Params {
	if value != "" {
		p.v.Set(key, value)
	}
	return p
}

func (p *Params) Int(key string, value int) *Params {
	if value != 0 {
		p.v.Set(key, strconv.Itoa(value))
	}
	return p
}

// Decimal sets key when value is non-nil.
func (p *Params) Decimal(key string, value *decimal.Decimal) *Params {
	if value != nil {
		p.v.Set(key, value.String())
	}
	return p
}

// Bool sets key only when value is true.
func (p *Params) Bool(key string, value bool) *Params {
	if value {
		p.v.Set(key, "true")
	}
	return p
}

// Values returns the built values.
func (p *Params) Values() url.Values {
	return p.v
}
