package domain

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/validate"
)

const (
	YieldsPageSize = 20
	MaxYieldsLimit = 200
	HighAPY        = 10
	ModerateAPY    = 5
)

// Stablecoins the yields screen filters on.
var Stablecoins = []string{"USDT", "USDC", "DAI"}

// Pool is one DeFi lending or liquidity pool.
type Pool struct {
	Pool      string              `json:"pool"`
	Chain     string              `json:"chain"`
	Project   string              `json:"project"`
	Symbol    string              `json:"symbol"`
	TVLUSD    decimal.Decimal     `json:"tvl_usd"`
	APY       decimal.Decimal     `json:"apy"`
	APYBase   decimal.NullDecimal `json:"apy_base"`
	APYReward decimal.NullDecimal `json:"apy_reward"`
	ILRisk    string              `json:"il_risk,omitempty"`
	PoolURL   string              `json:"pool_url,omitempty"`
}

// Tier buckets the APY: 2 above 10%, 1 from 5%, 0 below.
func (p Pool) Tier() int {
	switch {
	case p.APY.GreaterThan(decimal.NewFromInt(HighAPY)):
		return 2
	case p.APY.GreaterThanOrEqual(decimal.NewFromInt(ModerateAPY)):
		return 1
	default:
		return 0
	}
}

// YieldFilter selects one page of pools.
type YieldFilter struct {
	Chain  string
	Symbol string
	MinTVL *decimal.Decimal
	MinAPY *decimal.Decimal
	Limit  int
	Offset int
}

// NewYieldFilter returns the first page across every chain.
func NewYieldFilter() YieldFilter {
	return YieldFilter{Limit: YieldsPageSize}
}

func (f YieldFilter) SetMinTVL(v decimal.Decimal) YieldFilter { f.MinTVL = &v; return f }
func (f YieldFilter) SetMinAPY(v decimal.Decimal) YieldFilter { f.MinAPY = &v; return f }

// Page moves the filter to page n, counting from 1.
func (f YieldFilter) Page(n int) YieldFilter {
	if f.Limit <= 0 {
		f.Limit = YieldsPageSize
	}
	f.Offset = max(n-1, 0) * f.Limit
	return f
}

func (f YieldFilter) Validate() error {
	v := validate.New("yields").
		Check("limit", f.Limit <= MaxYieldsLimit, "must be at most "+strconv.Itoa(MaxYieldsLimit)).
		Check("offset", f.Offset >= 0, "must not be negative")
	if f.MinTVL != nil {
		v.Check("min_tvl", !f.MinTVL.IsNegative(), "must not be negative")
	}
	if f.MinAPY != nil {
		v.Check("min_apy", !f.MinAPY.IsNegative(), "must not be negative")
	}
	return v.Err()
}

func (f YieldFilter) Values() url.Values {
	limit := f.Limit
	if limit <= 0 {
		limit = YieldsPageSize
	}
	v := api.NewParams().
		String("chain", f.Chain).
		String("symbol", strings.ToUpper(f.Symbol)).
		Decimal("min_tvl", f.MinTVL).
		Decimal("min_apy", f.MinAPY).
		Int("limit", limit).
		Values()
	v.Set("offset", strconv.Itoa(f.Offset))
	return v
}

// Yields is one page of pools.
type Yields struct {
	Pools     []Pool   `json:"pools"`
	Total     int      `json:"total"`
	Chains    []string `json:"chains"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

// Pages returns how many pages of size limit cover the result.
func (y Yields) Pages(limit int) int {
	if limit <= 0 {
		limit = YieldsPageSize
	}
	return (y.Total + limit - 1) / limit
}
