package mapping

import (
	"github.com/cambix/cambix_backend/internal/core/domain"
	"github.com/cambix/cambix_backend/internal/models"
)

// ToModelWindow converts a domain TellerWindow to a model TellerWindow
func ToModelWindow(d domain.TellerWindow) models.TellerWindow {
	return models.TellerWindow{
		WindowID:   d.WindowID,
		HouseID:    d.HouseID,
		Identifier: d.Identifier,
		Name:       d.Name,
		State:      string(d.State),
		IsActive:   d.IsActive,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

// ToDomainWindow converts a model TellerWindow to a domain TellerWindow
func ToDomainWindow(m models.TellerWindow) domain.TellerWindow {
	return domain.TellerWindow{
		WindowID:   m.WindowID,
		HouseID:    m.HouseID,
		Identifier: m.Identifier,
		Name:       m.Name,
		State:      domain.WindowState(m.State),
		IsActive:   m.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// ToDomainWindowSlice converts a slice of model TellerWindows to domain form
func ToDomainWindowSlice(ms []models.TellerWindow) []domain.TellerWindow {
	ds := make([]domain.TellerWindow, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainWindow(m)
	}
	return ds
}
