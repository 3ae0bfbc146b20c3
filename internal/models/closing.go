package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Closing is the persisted form of a window closing reconciliation.
type Closing struct {
	ClosingID   int64           `db:"closing_id"`
	OpeningID   int64           `db:"opening_id"`
	WindowID    int64           `db:"window_id"`
	OperatorID  int64           `db:"operator_id"`
	ClosedAt    time.Time       `db:"closed_at"`
	TotalProfit decimal.Decimal `db:"total_profit"`
	Notes       string          `db:"notes"`
	AuditFields
}

// ClosingEntry is the persisted per-currency result of a closing.
type ClosingEntry struct {
	EntryID            int64           `db:"entry_id"`
	ClosingID          int64           `db:"closing_id"`
	CurrencyID         int64           `db:"currency_id"`
	ExpectedAmount     decimal.Decimal `db:"expected_amount"`
	PhysicalAmount     decimal.Decimal `db:"physical_amount"`
	DiscrepancyAmount  decimal.Decimal `db:"discrepancy_amount"`
	DiscrepancyPercent decimal.Decimal `db:"discrepancy_percent"`
	Confirmed          bool            `db:"confirmed"`
	Note               string          `db:"note"`
}
