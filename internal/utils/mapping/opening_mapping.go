package mapping

import (
	"github.com/cambix/cambix_backend/internal/core/domain"
	"github.com/cambix/cambix_backend/internal/models"
)

// ToModelOpening converts a domain Opening to a model Opening
func ToModelOpening(d domain.Opening) models.Opening {
	return models.Opening{
		OpeningID:  d.OpeningID,
		WindowID:   d.WindowID,
		OperatorID: d.OperatorID,
		OpenedAt:   d.OpenedAt,
		Notes:      d.Notes,
		Active:     d.Active,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

// ToDomainOpening converts a model Opening to a domain Opening. Float
// entries are attached separately by the repository.
func ToDomainOpening(m models.Opening) domain.Opening {
	return domain.Opening{
		OpeningID:  m.OpeningID,
		WindowID:   m.WindowID,
		OperatorID: m.OperatorID,
		OpenedAt:   m.OpenedAt,
		Notes:      m.Notes,
		Active:     m.Active,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// ToDomainOpeningSlice converts a slice of model Openings to domain form
func ToDomainOpeningSlice(ms []models.Opening) []domain.Opening {
	ds := make([]domain.Opening, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainOpening(m)
	}
	return ds
}

// ToDomainFloatEntry converts a model FloatEntry to a domain FloatEntry
func ToDomainFloatEntry(m models.FloatEntry) domain.FloatEntry {
	return domain.FloatEntry{
		EntryID:    m.EntryID,
		OpeningID:  m.OpeningID,
		CurrencyID: m.CurrencyID,
		Amount:     m.Amount,
		SeedAmount: m.SeedAmount,
	}
}

// ToDomainFloatEntrySlice converts a slice of model FloatEntries to domain form
func ToDomainFloatEntrySlice(ms []models.FloatEntry) []domain.FloatEntry {
	ds := make([]domain.FloatEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainFloatEntry(m)
	}
	return ds
}
