package mapping

import (
	"github.com/stoktakip/erp_backend/internal/core/domain"
	"github.com/stoktakip/erp_backend/internal/models"
)

// ToModelCounterparty converts a domain Counterparty to a model Counterparty.
func ToModelCounterparty(d domain.Counterparty) models.Counterparty {
	return models.Counterparty{
		CounterpartyID: d.CounterpartyID,
		Name:           d.Name,
		Title:          d.Title,
		TaxNo:          d.TaxNo,
		Phone:          d.Phone,
		Email:          d.Email,
		Address:        d.Address,
		City:           d.City,
		Kind:           models.CounterpartyKind(d.Kind),
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCounterparty converts a model Counterparty to a domain Counterparty.
func ToDomainCounterparty(m models.Counterparty) domain.Counterparty {
	return domain.Counterparty{
		CounterpartyID: m.CounterpartyID,
		Name:           m.Name,
		Title:          m.Title,
		TaxNo:          m.TaxNo,
		Phone:          m.Phone,
		Email:          m.Email,
		Address:        m.Address,
		City:           m.City,
		Kind:           domain.CounterpartyKind(m.Kind),
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLedgerEntry converts a domain LedgerEntry to a model LedgerEntry.
func ToModelLedgerEntry(d domain.LedgerEntry) models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:         d.EntryID,
		CounterpartyID:  d.CounterpartyID,
		MovementType:    models.LedgerMovementType(d.MovementType),
		Amount:          d.Amount,
		Description:     d.Description,
		DocumentNo:      d.DocumentNo,
		SourceInvoiceID: d.SourceInvoiceID,
		EntryDate:       d.EntryDate,
		PaymentMethod:   d.PaymentMethod,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLedgerEntry converts a model LedgerEntry to a domain LedgerEntry.
func ToDomainLedgerEntry(m models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:         m.EntryID,
		CounterpartyID:  m.CounterpartyID,
		MovementType:    domain.LedgerMovementType(m.MovementType),
		Amount:          m.Amount,
		Description:     m.Description,
		DocumentNo:      m.DocumentNo,
		SourceInvoiceID: m.SourceInvoiceID,
		EntryDate:       m.EntryDate,
		PaymentMethod:   m.PaymentMethod,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLedgerEntrySlice converts model ledger entries to domain entries.
func ToDomainLedgerEntrySlice(ms []models.LedgerEntry) []domain.LedgerEntry {
	ds := make([]domain.LedgerEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLedgerEntry(m)
	}
	return ds
}
