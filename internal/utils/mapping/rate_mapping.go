package mapping

import (
	"github.com/cambix/cambix_backend/internal/core/domain"
	"github.com/cambix/cambix_backend/internal/models"
)

// ToModelRate converts a domain ExchangeRate to a model ExchangeRate
func ToModelRate(d domain.ExchangeRate) models.ExchangeRate {
	return models.ExchangeRate{
		RateID:           d.RateID,
		HouseID:          d.HouseID,
		SourceCurrencyID: d.SourceCurrencyID,
		TargetCurrencyID: d.TargetCurrencyID,
		BuyRate:          d.BuyRate,
		SellRate:         d.SellRate,
		Active:           d.Active,
		KeepDaily:        d.KeepDaily,
		EffectiveAt:      d.EffectiveAt,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

// ToDomainRate converts a model ExchangeRate to a domain ExchangeRate
func ToDomainRate(m models.ExchangeRate) domain.ExchangeRate {
	return domain.ExchangeRate{
		RateID:           m.RateID,
		HouseID:          m.HouseID,
		SourceCurrencyID: m.SourceCurrencyID,
		TargetCurrencyID: m.TargetCurrencyID,
		BuyRate:          m.BuyRate,
		SellRate:         m.SellRate,
		Active:           m.Active,
		KeepDaily:        m.KeepDaily,
		EffectiveAt:      m.EffectiveAt,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// ToDomainRateSlice converts a slice of model ExchangeRates to domain form
func ToDomainRateSlice(ms []models.ExchangeRate) []domain.ExchangeRate {
	ds := make([]domain.ExchangeRate, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainRate(m)
	}
	return ds
}

// ToModelRateAudit converts a domain RateAuditEntry to a model RateAuditEntry
func ToModelRateAudit(d domain.RateAuditEntry) models.RateAuditEntry {
	return models.RateAuditEntry{
		AuditID:    d.AuditID,
		RateID:     d.RateID,
		OperatorID: d.OperatorID,
		Action:     string(d.Action),
		Before:     d.Before,
		After:      d.After,
		Reason:     d.Reason,
		CreatedAt:  d.CreatedAt,
	}
}

// ToDomainRateAudit converts a model RateAuditEntry to a domain RateAuditEntry
func ToDomainRateAudit(m models.RateAuditEntry) domain.RateAuditEntry {
	return domain.RateAuditEntry{
		AuditID:    m.AuditID,
		RateID:     m.RateID,
		OperatorID: m.OperatorID,
		Action:     domain.RateAuditAction(m.Action),
		Before:     m.Before,
		After:      m.After,
		Reason:     m.Reason,
		CreatedAt:  m.CreatedAt,
	}
}

// ToDomainRateAuditSlice converts a slice of model RateAuditEntries to domain form
func ToDomainRateAuditSlice(ms []models.RateAuditEntry) []domain.RateAuditEntry {
	ds := make([]domain.RateAuditEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainRateAudit(m)
	}
	return ds
}
