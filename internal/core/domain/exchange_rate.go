package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate holds the buy and sell rates an exchange house applies for one
// ordered currency pair. At most one rate per (house, source, target) tuple is
// active at any instant.
type ExchangeRate struct {
	RateID           int64           `json:"rateID"` // Primary Key
	HouseID          int64           `json:"houseID"`
	SourceCurrencyID int64           `json:"sourceCurrencyID"`
	TargetCurrencyID int64           `json:"targetCurrencyID"`
	BuyRate          decimal.Decimal `json:"buyRate"`  // price the house pays for source currency
	SellRate         decimal.Decimal `json:"sellRate"` // price the house charges; sell > buy
	Active           bool            `json:"active"`
	KeepDaily        bool            `json:"keepDaily"` // auto-renew each calendar day
	EffectiveAt      time.Time       `json:"effectiveAt"`
	AuditFields
}

// RateAuditAction identifies the kind of change recorded in a rate audit entry.
type RateAuditAction string

const (
	RateAuditCreate     RateAuditAction = "CREATE"
	RateAuditUpdate     RateAuditAction = "UPDATE"
	RateAuditActivate   RateAuditAction = "ACTIVATE"
	RateAuditDeactivate RateAuditAction = "DEACTIVATE"
	RateAuditDelete     RateAuditAction = "DELETE"
)

// RateAuditEntry is an append-only record of a rate change. Entries are never
// mutated or deleted.
type RateAuditEntry struct {
	AuditID    string          `json:"auditID"` // UUID
	RateID     int64           `json:"rateID"`
	OperatorID int64           `json:"operatorID"`
	Action     RateAuditAction `json:"action"`
	Before     map[string]any  `json:"before,omitempty"`
	After      map[string]any  `json:"after,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Snapshot captures the auditable fields of a rate for before/after records.
func (r ExchangeRate) Snapshot() map[string]any {
	return map[string]any{
		"houseID":          r.HouseID,
		"sourceCurrencyID": r.SourceCurrencyID,
		"targetCurrencyID": r.TargetCurrencyID,
		"buyRate":          r.BuyRate.String(),
		"sellRate":         r.SellRate.String(),
		"active":           r.Active,
		"keepDaily":        r.KeepDaily,
		"effectiveAt":      r.EffectiveAt,
	}
}
