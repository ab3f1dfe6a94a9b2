package mapping

import (
	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	"github.com/SubledgerHQ/cari_backend/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to its model
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		JournalEntryID:          d.JournalEntryID,
		TenantID:                d.TenantID,
		LegalEntityID:           d.LegalEntityID,
		JournalDate:             d.JournalDate,
		Description:             d.Description,
		CurrencyCode:            d.CurrencyCode,
		SourceType:              string(d.SourceType),
		DocType:                 d.DocType,
		Status:                  string(d.Status),
		OriginalJournalEntryID:  d.OriginalJournalEntryID,
		ReversingJournalEntryID: d.ReversingJournalEntryID,
		AuditFields:             ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to its domain form
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		JournalEntryID:          m.JournalEntryID,
		TenantID:                m.TenantID,
		LegalEntityID:           m.LegalEntityID,
		JournalDate:             m.JournalDate,
		Description:             m.Description,
		CurrencyCode:            m.CurrencyCode,
		SourceType:              domain.JournalSourceType(m.SourceType),
		DocType:                 m.DocType,
		Status:                  domain.JournalStatus(m.Status),
		OriginalJournalEntryID:  m.OriginalJournalEntryID,
		ReversingJournalEntryID: m.ReversingJournalEntryID,
		AuditFields:             ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalLine converts a domain JournalLine to its model
func ToModelJournalLine(d domain.JournalLine) models.JournalLine {
	return models.JournalLine{
		JournalLineID:  d.JournalLineID,
		JournalEntryID: d.JournalEntryID,
		AccountID:      d.AccountID,
		Amount:         d.Amount,
		Side:           string(d.Side),
		SourceRef:      d.SourceRef,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalLine converts a model JournalLine to its domain form
func ToDomainJournalLine(m models.JournalLine) domain.JournalLine {
	return domain.JournalLine{
		JournalLineID:  m.JournalLineID,
		JournalEntryID: m.JournalEntryID,
		AccountID:      m.AccountID,
		Amount:         m.Amount,
		Side:           domain.JournalSide(m.Side),
		SourceRef:      m.SourceRef,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalLineSlice converts model lines to domain form
func ToDomainJournalLineSlice(ms []models.JournalLine) []domain.JournalLine {
	ds := make([]domain.JournalLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalLine(m)
	}
	return ds
}
