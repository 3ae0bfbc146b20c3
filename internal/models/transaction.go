package models

import (
	"github.com/shopspring/decimal"
)

// Transaction is the persisted form of an exchange transaction. Temporary
// customer fields are flattened into nullable columns.
type Transaction struct {
	TransactionID    int64           `db:"transaction_id"`
	Number           string          `db:"number"`
	WindowID         int64           `db:"window_id"`
	OpeningID        int64           `db:"opening_id"`
	SourceCurrencyID int64           `db:"source_currency_id"`
	TargetCurrencyID int64           `db:"target_currency_id"`
	SourceAmount     decimal.Decimal `db:"source_amount"`
	TargetAmount     decimal.Decimal `db:"target_amount"`
	AppliedRate      decimal.Decimal `db:"applied_rate"`
	Profit           decimal.Decimal `db:"profit"`
	RateID           int64           `db:"rate_id"`
	State            string          `db:"state"`
	CustomerID       *int64          `db:"customer_id"`
	TempNames        *string         `db:"temp_names"`
	TempSurnames     *string         `db:"temp_surnames"`
	TempDocument     *string         `db:"temp_document"`
	TempDescription  *string         `db:"temp_description"`
	Notes            string          `db:"notes"`
	AuditFields
}
