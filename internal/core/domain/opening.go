package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Opening represents one operational cycle of a teller window, from open to
// close, with its own seeded cash float.
//
// At most one Opening with Active=true exists per window, and at most one per
// operator, at any time.
type Opening struct {
	OpeningID    int64        `json:"openingID"` // Primary Key
	WindowID     int64        `json:"windowID"`  // FK -> TellerWindow
	OperatorID   int64        `json:"operatorID"`
	OpenedAt     time.Time    `json:"openedAt"`
	Notes        string       `json:"notes"`
	Active       bool         `json:"active"` // true until the matching Closing is recorded
	FloatEntries []FloatEntry `json:"floatEntries,omitempty"`
	AuditFields
}

// FloatEntry is the live cash amount an opening holds in one currency.
// Amount is mutated only by the transaction processor while the opening is
// active; SeedAmount keeps the declared opening amount for reconciliation.
type FloatEntry struct {
	EntryID    int64           `json:"entryID"` // Primary Key
	OpeningID  int64           `json:"openingID"`
	CurrencyID int64           `json:"currencyID"`
	Amount     decimal.Decimal `json:"amount"`
	SeedAmount decimal.Decimal `json:"seedAmount"`
}

// ExpectedAmount pairs a currency with the amount derived from the opening
// seed plus all completed transactions. Reconciliation output.
type ExpectedAmount struct {
	CurrencyID int64           `json:"currencyID"`
	Amount     decimal.Decimal `json:"amount"`
}
