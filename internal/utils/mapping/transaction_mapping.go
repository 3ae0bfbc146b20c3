package mapping

import (
	"github.com/cambix/cambix_backend/internal/core/domain"
	"github.com/cambix/cambix_backend/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction,
// flattening the optional temporary customer into nullable columns.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	m := models.Transaction{
		TransactionID:    d.TransactionID,
		Number:           d.Number,
		WindowID:         d.WindowID,
		OpeningID:        d.OpeningID,
		SourceCurrencyID: d.SourceCurrencyID,
		TargetCurrencyID: d.TargetCurrencyID,
		SourceAmount:     d.SourceAmount,
		TargetAmount:     d.TargetAmount,
		AppliedRate:      d.AppliedRate,
		Profit:           d.Profit,
		RateID:           d.RateID,
		State:            string(d.State),
		CustomerID:       d.CustomerID,
		Notes:            d.Notes,
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
	if tc := d.TemporaryCustomer; tc != nil {
		m.TempNames = &tc.Names
		m.TempSurnames = &tc.Surnames
		m.TempDocument = &tc.Document
		m.TempDescription = &tc.Description
	}
	return m
}

// ToDomainTransaction converts a model Transaction to a domain Transaction.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	d := domain.Transaction{
		TransactionID:    m.TransactionID,
		Number:           m.Number,
		WindowID:         m.WindowID,
		OpeningID:        m.OpeningID,
		SourceCurrencyID: m.SourceCurrencyID,
		TargetCurrencyID: m.TargetCurrencyID,
		SourceAmount:     m.SourceAmount,
		TargetAmount:     m.TargetAmount,
		AppliedRate:      m.AppliedRate,
		Profit:           m.Profit,
		RateID:           m.RateID,
		State:            domain.TransactionState(m.State),
		CustomerID:       m.CustomerID,
		Notes:            m.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
	if m.TempNames != nil || m.TempSurnames != nil {
		d.TemporaryCustomer = &domain.TemporaryCustomer{}
		if m.TempNames != nil {
			d.TemporaryCustomer.Names = *m.TempNames
		}
		if m.TempSurnames != nil {
			d.TemporaryCustomer.Surnames = *m.TempSurnames
		}
		if m.TempDocument != nil {
			d.TemporaryCustomer.Document = *m.TempDocument
		}
		if m.TempDescription != nil {
			d.TemporaryCustomer.Description = *m.TempDescription
		}
	}
	return d
}

// ToDomainTransactionSlice converts a slice of model Transactions to domain form
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}
