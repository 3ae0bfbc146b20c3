package exchange_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cambix/cambix_backend/internal/utils/exchange"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTargetAmount(t *testing.T) {
	tests := []struct {
		name         string
		sourceAmount string
		sellRate     string
		want         string
	}{
		{"exact product", "100", "3.75", "375.00"},
		{"rounds half up", "33.33", "3.333", "111.09"},
		{"small amount", "0.01", "3.75", "0.04"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exchange.TargetAmount(dec(tt.sourceAmount), dec(tt.sellRate))
			assert.True(t, got.Equal(dec(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestProfit(t *testing.T) {
	got := exchange.Profit(dec("100"), dec("3.70"), dec("3.75"))
	assert.True(t, got.Equal(dec("5.00")), "got %s", got)
}

func TestProfit_RoundsOnceAtTheEnd(t *testing.T) {
	// 33.33 * 0.005 = 0.166650, rounded once to 0.17. Rounding the
	// intermediate margin first would give zero.
	got := exchange.Profit(dec("33.33"), dec("3.330"), dec("3.335"))
	assert.True(t, got.Equal(dec("0.17")), "got %s", got)
}

func TestSpreadPercent(t *testing.T) {
	got := exchange.SpreadPercent(dec("3.70"), dec("3.75"))
	assert.True(t, got.Round(2).Equal(dec("1.35")), "got %s", got)
}

func TestDiscrepancyPercent(t *testing.T) {
	got := exchange.DiscrepancyPercent(dec("-15"), dec("1625"))
	assert.True(t, got.Round(2).Equal(dec("0.92")), "got %s", got)

	assert.True(t, exchange.DiscrepancyPercent(dec("-15"), decimal.Zero).IsZero())
}

func TestFormatTransactionNumber(t *testing.T) {
	day := time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "TX2506100001", exchange.FormatTransactionNumber(day, 1))
	assert.Equal(t, "TX2506100042", exchange.FormatTransactionNumber(day, 42))
	// The sequence widens past four digits rather than wrapping.
	assert.Equal(t, "TX25061012345", exchange.FormatTransactionNumber(day, 12345))
}
