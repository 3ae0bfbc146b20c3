package exchange

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Round2 rounds a monetary amount half-up to 2 decimal places. Rounding is
// applied once at the end of each formula, never mid-calculation.
func Round2(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// TargetAmount computes the amount paid out to the customer:
// round2(sourceAmount * sellRate).
func TargetAmount(sourceAmount, sellRate decimal.Decimal) decimal.Decimal {
	return Round2(sourceAmount.Mul(sellRate))
}

// Profit computes the house margin on an exchange:
// round2(sourceAmount * (sellRate - buyRate)).
func Profit(sourceAmount, buyRate, sellRate decimal.Decimal) decimal.Decimal {
	return Round2(sourceAmount.Mul(sellRate.Sub(buyRate)))
}

// SpreadPercent computes the relative spread (sell-buy)/buy * 100.
// Callers must ensure buy is non-zero.
func SpreadPercent(buyRate, sellRate decimal.Decimal) decimal.Decimal {
	return sellRate.Sub(buyRate).Div(buyRate).Mul(decimal.NewFromInt(100))
}

// DiscrepancyPercent computes |discrepancy / expected| * 100, or zero when the
// expected amount is zero.
func DiscrepancyPercent(discrepancy, expected decimal.Decimal) decimal.Decimal {
	if expected.IsZero() {
		return decimal.Zero
	}
	return discrepancy.Div(expected).Abs().Mul(decimal.NewFromInt(100))
}

// FormatTransactionNumber builds the transaction number for a given day and
// daily sequence: "TX" + yymmdd + zero-padded 4-digit sequence.
func FormatTransactionNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("TX%s%04d", day.Format("060102"), seq)
}
