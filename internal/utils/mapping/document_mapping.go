package mapping

import (
	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	"github.com/SubledgerHQ/cari_backend/internal/models"
)

// ToModelDocument converts a domain Document to a model Document
func ToModelDocument(d domain.Document) models.Document {
	return models.Document{
		DocumentID:               d.DocumentID,
		TenantID:                 d.TenantID,
		LegalEntityID:            d.LegalEntityID,
		CounterpartyID:           d.CounterpartyID,
		Direction:                string(d.Direction),
		DocumentType:             string(d.DocumentType),
		DocumentDate:             d.DocumentDate,
		DueDate:                  d.DueDate,
		AmountTxn:                d.AmountTxn,
		AmountBase:               d.AmountBase,
		CurrencyCode:             d.CurrencyCode,
		FxRate:                   d.FxRate,
		PaymentTermID:            d.PaymentTermID,
		Status:                   string(d.Status),
		SequenceNamespace:        d.SequenceNamespace,
		DocumentNumber:           d.DocumentNumber,
		PostedJournalEntryID:     d.PostedJournalEntryID,
		ReversalOfDocumentID:     d.ReversalOfDocumentID,
		CounterpartyNameSnapshot: d.CounterpartyNameSnapshot,
		Description:              d.Description,
		AuditFields:              ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDocument converts a model Document to a domain Document
func ToDomainDocument(m models.Document) domain.Document {
	return domain.Document{
		DocumentID:               m.DocumentID,
		TenantID:                 m.TenantID,
		LegalEntityID:            m.LegalEntityID,
		CounterpartyID:           m.CounterpartyID,
		Direction:                domain.Direction(m.Direction),
		DocumentType:             domain.DocumentType(m.DocumentType),
		DocumentDate:             m.DocumentDate,
		DueDate:                  m.DueDate,
		AmountTxn:                m.AmountTxn,
		AmountBase:               m.AmountBase,
		CurrencyCode:             m.CurrencyCode,
		FxRate:                   m.FxRate,
		PaymentTermID:            m.PaymentTermID,
		Status:                   domain.DocumentStatus(m.Status),
		SequenceNamespace:        m.SequenceNamespace,
		DocumentNumber:           m.DocumentNumber,
		PostedJournalEntryID:     m.PostedJournalEntryID,
		ReversalOfDocumentID:     m.ReversalOfDocumentID,
		CounterpartyNameSnapshot: m.CounterpartyNameSnapshot,
		Description:              m.Description,
		AuditFields:              ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainDocumentSlice converts a slice of model Documents to domain Documents
func ToDomainDocumentSlice(ms []models.Document) []domain.Document {
	ds := make([]domain.Document, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainDocument(m)
	}
	return ds
}

// ToModelOpenItem converts a domain OpenItem to a model OpenItem
func ToModelOpenItem(d domain.OpenItem) models.OpenItem {
	return models.OpenItem{
		OpenItemID:     d.OpenItemID,
		TenantID:       d.TenantID,
		LegalEntityID:  d.LegalEntityID,
		DocumentID:     d.DocumentID,
		CounterpartyID: d.CounterpartyID,
		Direction:      string(d.Direction),
		CurrencyCode:   d.CurrencyCode,
		AmountOrigTxn:  d.AmountOrigTxn,
		AmountOrigBase: d.AmountOrigBase,
		ResidualTxn:    d.ResidualTxn,
		ResidualBase:   d.ResidualBase,
		Status:         string(d.Status),
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainOpenItem converts a model OpenItem to a domain OpenItem
func ToDomainOpenItem(m models.OpenItem) domain.OpenItem {
	return domain.OpenItem{
		OpenItemID:     m.OpenItemID,
		TenantID:       m.TenantID,
		LegalEntityID:  m.LegalEntityID,
		DocumentID:     m.DocumentID,
		CounterpartyID: m.CounterpartyID,
		Direction:      domain.Direction(m.Direction),
		CurrencyCode:   m.CurrencyCode,
		AmountOrigTxn:  m.AmountOrigTxn,
		AmountOrigBase: m.AmountOrigBase,
		ResidualTxn:    m.ResidualTxn,
		ResidualBase:   m.ResidualBase,
		Status:         domain.OpenItemStatus(m.Status),
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainOpenItemSlice converts a slice of model OpenItems to domain OpenItems
func ToDomainOpenItemSlice(ms []models.OpenItem) []domain.OpenItem {
	ds := make([]domain.OpenItem, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainOpenItem(m)
	}
	return ds
}
