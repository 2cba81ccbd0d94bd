package mapping

import (
	"github.com/stoktakip/erp_backend/internal/core/domain"
	"github.com/stoktakip/erp_backend/internal/models"
)

// ToModelInvoice converts a domain Invoice to a model Invoice.
func ToModelInvoice(d domain.Invoice) models.Invoice {
	return models.Invoice{
		InvoiceID:      d.InvoiceID,
		InvoiceNo:      d.InvoiceNo,
		CounterpartyID: d.CounterpartyID,
		InvoiceDate:    d.InvoiceDate,
		DueDate:        d.DueDate,
		Type:           models.InvoiceType(d.Type),
		Status:         models.InvoiceStatus(d.Status),
		DiscountPct:    d.DiscountPct,
		Subtotal:       d.Subtotal,
		TaxTotal:       d.TaxTotal,
		DiscountAmount: d.DiscountAmount,
		GrandTotal:     d.GrandTotal,
		Note:           d.Note,
		Version:        d.Version,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInvoice converts a model Invoice to a domain Invoice.
func ToDomainInvoice(m models.Invoice) domain.Invoice {
	return domain.Invoice{
		InvoiceID:      m.InvoiceID,
		InvoiceNo:      m.InvoiceNo,
		CounterpartyID: m.CounterpartyID,
		InvoiceDate:    m.InvoiceDate,
		DueDate:        m.DueDate,
		Type:           domain.InvoiceType(m.Type),
		Status:         domain.InvoiceStatus(m.Status),
		DiscountPct:    m.DiscountPct,
		Subtotal:       m.Subtotal,
		TaxTotal:       m.TaxTotal,
		DiscountAmount: m.DiscountAmount,
		GrandTotal:     m.GrandTotal,
		Note:           m.Note,
		Version:        m.Version,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelInvoiceLine converts a domain InvoiceLine to a model InvoiceLine.
func ToModelInvoiceLine(d domain.InvoiceLine) models.InvoiceLine {
	return models.InvoiceLine{
		LineID:      d.LineID,
		InvoiceID:   d.InvoiceID,
		ProductID:   d.ProductID,
		ProductName: d.ProductName,
		Quantity:    d.Quantity,
		UnitPrice:   d.UnitPrice,
		TaxRatePct:  d.TaxRatePct,
		TaxAmount:   d.TaxAmount,
		LineTotal:   d.LineTotal,
		SeqNo:       d.SeqNo,
	}
}

// ToDomainInvoiceLine converts a model InvoiceLine to a domain InvoiceLine.
func ToDomainInvoiceLine(m models.InvoiceLine) domain.InvoiceLine {
	return domain.InvoiceLine{
		LineID:      m.LineID,
		InvoiceID:   m.InvoiceID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TaxRatePct:  m.TaxRatePct,
		TaxAmount:   m.TaxAmount,
		LineTotal:   m.LineTotal,
		SeqNo:       m.SeqNo,
	}
}

// ToDomainInvoiceLineSlice converts model lines to domain lines.
func ToDomainInvoiceLineSlice(ms []models.InvoiceLine) []domain.InvoiceLine {
	ds := make([]domain.InvoiceLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainInvoiceLine(m)
	}
	return ds
}
