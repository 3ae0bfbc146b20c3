package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is the persisted form of a buy/sell rate for a currency pair.
type ExchangeRate struct {
	RateID           int64           `db:"rate_id"`
	HouseID          int64           `db:"house_id"`
	SourceCurrencyID int64           `db:"source_currency_id"`
	TargetCurrencyID int64           `db:"target_currency_id"`
	BuyRate          decimal.Decimal `db:"buy_rate"`
	SellRate         decimal.Decimal `db:"sell_rate"`
	Active           bool            `db:"active"`
	KeepDaily        bool            `db:"keep_daily"`
	EffectiveAt      time.Time       `db:"effective_at"`
	AuditFields
}

// RateAuditEntry is the persisted form of one rate audit record. Before and
// After are stored as JSONB snapshots.
type RateAuditEntry struct {
	AuditID    string         `db:"audit_id"`
	RateID     int64          `db:"rate_id"`
	OperatorID int64          `db:"operator_id"`
	Action     string         `db:"action"`
	Before     map[string]any `db:"before_state"`
	After      map[string]any `db:"after_state"`
	Reason     string         `db:"reason"`
	CreatedAt  time.Time      `db:"created_at"`
}
