package mapping

import (
	"github.com/cambix/cambix_backend/internal/core/domain"
	"github.com/cambix/cambix_backend/internal/models"
)

// ToModelClosing converts a domain Closing to a model Closing
func ToModelClosing(d domain.Closing) models.Closing {
	return models.Closing{
		ClosingID:   d.ClosingID,
		OpeningID:   d.OpeningID,
		WindowID:    d.WindowID,
		OperatorID:  d.OperatorID,
		ClosedAt:    d.ClosedAt,
		TotalProfit: d.TotalProfit,
		Notes:       d.Notes,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

// ToDomainClosing converts a model Closing to a domain Closing. Entries are
// attached separately by the repository.
func ToDomainClosing(m models.Closing) domain.Closing {
	return domain.Closing{
		ClosingID:   m.ClosingID,
		OpeningID:   m.OpeningID,
		WindowID:    m.WindowID,
		OperatorID:  m.OperatorID,
		ClosedAt:    m.ClosedAt,
		TotalProfit: m.TotalProfit,
		Notes:       m.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// ToDomainClosingSlice converts a slice of model Closings to domain form
func ToDomainClosingSlice(ms []models.Closing) []domain.Closing {
	ds := make([]domain.Closing, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainClosing(m)
	}
	return ds
}

// ToDomainClosingEntry converts a model ClosingEntry to a domain ClosingEntry
func ToDomainClosingEntry(m models.ClosingEntry) domain.ClosingEntry {
	return domain.ClosingEntry{
		EntryID:            m.EntryID,
		ClosingID:          m.ClosingID,
		CurrencyID:         m.CurrencyID,
		ExpectedAmount:     m.ExpectedAmount,
		PhysicalAmount:     m.PhysicalAmount,
		DiscrepancyAmount:  m.DiscrepancyAmount,
		DiscrepancyPercent: m.DiscrepancyPercent,
		Confirmed:          m.Confirmed,
		Note:               m.Note,
	}
}

// ToDomainClosingEntrySlice converts a slice of model ClosingEntries to domain form
func ToDomainClosingEntrySlice(ms []models.ClosingEntry) []domain.ClosingEntry {
	ds := make([]domain.ClosingEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainClosingEntry(m)
	}
	return ds
}
