package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Opening is the persisted form of one operational cycle of a window.
type Opening struct {
	OpeningID  int64     `db:"opening_id"`
	WindowID   int64     `db:"window_id"`
	OperatorID int64     `db:"operator_id"`
	OpenedAt   time.Time `db:"opened_at"`
	Notes      string    `db:"notes"`
	Active     bool      `db:"active"`
	AuditFields
}

// FloatEntry is the persisted per-currency float balance of an opening.
type FloatEntry struct {
	EntryID    int64           `db:"entry_id"`
	OpeningID  int64           `db:"opening_id"`
	CurrencyID int64           `db:"currency_id"`
	Amount     decimal.Decimal `db:"amount"`
	SeedAmount decimal.Decimal `db:"seed_amount"`
}
