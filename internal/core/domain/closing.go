package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Closing records the end of an opening: the reconciliation of expected
// against physically counted amounts plus the total profit accrued.
// Exactly one Closing exists per Opening.
type Closing struct {
	ClosingID   int64           `json:"closingID"` // Primary Key
	OpeningID   int64           `json:"openingID"` // FK -> Opening (unique)
	WindowID    int64           `json:"windowID"`
	OperatorID  int64           `json:"operatorID"`
	ClosedAt    time.Time       `json:"closedAt"`
	TotalProfit decimal.Decimal `json:"totalProfit"`
	Notes       string          `json:"notes"`
	Entries     []ClosingEntry  `json:"entries,omitempty"`
	AuditFields
}

// ClosingEntry is the per-currency reconciliation result of a closing.
// DiscrepancyAmount = PhysicalAmount - ExpectedAmount.
type ClosingEntry struct {
	EntryID            int64           `json:"entryID"` // Primary Key
	ClosingID          int64           `json:"closingID"`
	CurrencyID         int64           `json:"currencyID"`
	ExpectedAmount     decimal.Decimal `json:"expectedAmount"`
	PhysicalAmount     decimal.Decimal `json:"physicalAmount"`
	DiscrepancyAmount  decimal.Decimal `json:"discrepancyAmount"`
	DiscrepancyPercent decimal.Decimal `json:"discrepancyPercent"`
	Confirmed          bool            `json:"confirmed"`
	Note               string          `json:"note"`
}
