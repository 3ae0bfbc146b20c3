package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cambix/cambix_backend/internal/core/domain"
)

// CreateRateRequest defines the payload for registering an exchange rate.
type CreateRateRequest struct {
	HouseID            int64           `json:"houseId" binding:"required,gt=0"`
	SourceCurrencyCode string          `json:"sourceCurrencyCode" binding:"required,currency_code"`
	TargetCurrencyCode string          `json:"targetCurrencyCode" binding:"required,currency_code"`
	BuyRate            decimal.Decimal `json:"buyRate" binding:"required"`
	SellRate           decimal.Decimal `json:"sellRate" binding:"required"`
	KeepDaily          bool            `json:"keepDaily"`
	Active             *bool           `json:"active"`
}

// UpdateRateRequest defines the payload for adjusting an existing rate.
type UpdateRateRequest struct {
	BuyRate   *decimal.Decimal `json:"buyRate"`
	SellRate  *decimal.Decimal `json:"sellRate"`
	KeepDaily *bool            `json:"keepDaily"`
	Reason    string           `json:"reason"`
}

// RateStatusRequest defines the payload for activating or deactivating a
// rate.
type RateStatusRequest struct {
	Reason string `json:"reason"`
}

// RateResponse defines the API representation of an exchange rate.
type RateResponse struct {
	RateID             int64           `json:"rateId"`
	HouseID            int64           `json:"houseId"`
	SourceCurrencyCode string          `json:"sourceCurrencyCode"`
	TargetCurrencyCode string          `json:"targetCurrencyCode"`
	BuyRate            decimal.Decimal `json:"buyRate"`
	SellRate           decimal.Decimal `json:"sellRate"`
	SpreadPercent      decimal.Decimal `json:"spreadPercent"`
	Active             bool            `json:"active"`
	KeepDaily          bool            `json:"keepDaily"`
	EffectiveAt        time.Time       `json:"effectiveAt"`
	CreatedAt          time.Time       `json:"createdAt"`
	LastUpdatedAt      time.Time       `json:"lastUpdatedAt"`
}

// RateAuditResponse defines the API representation of a rate audit entry.
type RateAuditResponse struct {
	AuditID    string         `json:"auditId"`
	RateID     int64          `json:"rateId"`
	OperatorID int64          `json:"operatorId"`
	Action     string         `json:"action"`
	Before     map[string]any `json:"before,omitempty"`
	After      map[string]any `json:"after,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// ToRateResponse maps a domain rate to its API representation. codes maps
// currency ids to codes.
func ToRateResponse(rate domain.ExchangeRate, codes map[int64]string, spread decimal.Decimal) RateResponse {
	return RateResponse{
		RateID:             rate.RateID,
		HouseID:            rate.HouseID,
		SourceCurrencyCode: codes[rate.SourceCurrencyID],
		TargetCurrencyCode: codes[rate.TargetCurrencyID],
		BuyRate:            rate.BuyRate,
		SellRate:           rate.SellRate,
		SpreadPercent:      spread,
		Active:             rate.Active,
		KeepDaily:          rate.KeepDaily,
		EffectiveAt:        rate.EffectiveAt,
		CreatedAt:          rate.CreatedAt,
		LastUpdatedAt:      rate.LastUpdatedAt,
	}
}

// ToRateAuditResponse maps a domain audit entry to its API representation.
func ToRateAuditResponse(entry domain.RateAuditEntry) RateAuditResponse {
	return RateAuditResponse{
		AuditID:    entry.AuditID,
		RateID:     entry.RateID,
		OperatorID: entry.OperatorID,
		Action:     string(entry.Action),
		Before:     entry.Before,
		After:      entry.After,
		Reason:     entry.Reason,
		CreatedAt:  entry.CreatedAt,
	}
}
