package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNaira(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "₦0"},
		{"1580", "₦1,580"},
		{"1234567.5", "₦1,234,567.5"},
		{"1234567.456", "₦1,234,567.46"},
		{"99.999", "₦100"},
		{"-2500.1", "-₦2,500.1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Naira(d(tt.in)))
		})
	}
	assert.Equal(t, "₦155,000,000", NairaFloat(155_000_000))
}

func TestNumberAndPercent(t *testing.T) {
	assert.Equal(t, "12,345.68", Number(d("12345.6789"), 2))
	assert.Equal(t, "12,346", Number(d("12345.6789"), 0))
	assert.Equal(t, "+2.50%", Percent(d("2.5"), 2))
	assert.Equal(t, "+0.00%", Percent(decimal.Zero, 2))
	assert.Equal(t, "-1.3%", Percent(d("-1.25"), 1))
	assert.Equal(t, "+3.1%", PercentFloat(3.14159, 1))
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "Just now"},
		{59 * time.Second, "Just now"},
		{time.Minute, "1m ago"},
		{59 * time.Minute, "59m ago"},
		{2 * time.Hour, "2h ago"},
		{23 * time.Hour, "23h ago"},
		{49 * time.Hour, "13/06/2025"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelativeTime(now.Add(-tt.ago), now), tt.ago.String())
	}
}

func TestExchangeName(t *testing.T) {
	assert.Equal(t, "Binance P2P", ExchangeName("binance_p2p"))
	assert.Equal(t, "Patricia", ExchangeName("patricia"))
	assert.Equal(t, "Some New Venue", ExchangeName("some_new_venue"))
}

func TestCompact(t *testing.T) {
	assert.Equal(t, "₦950", Compact(d("950")))
	assert.Equal(t, "₦1.2M", Compact(d("1200000")))
	assert.Equal(t, "₦155M", Compact(d("155000000")))
	assert.Equal(t, "-₦3.5K", Compact(d("-3500")))
}
