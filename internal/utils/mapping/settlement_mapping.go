package mapping

import (
	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	"github.com/SubledgerHQ/cari_backend/internal/models"
)

// ToModelSettlementBatch converts a domain SettlementBatch to its model
func ToModelSettlementBatch(d domain.SettlementBatch) models.SettlementBatch {
	return models.SettlementBatch{
		SettlementID:      d.SettlementID,
		TenantID:          d.TenantID,
		LegalEntityID:     d.LegalEntityID,
		CounterpartyID:    d.CounterpartyID,
		SettlementDate:    d.SettlementDate,
		CurrencyCode:      d.CurrencyCode,
		AmountIncomingTxn: d.AmountIncomingTxn,
		PaymentChannel:    string(d.PaymentChannel),
		IdempotencyKey:    d.IdempotencyKey,
		CashTransactionID: d.CashTransactionID,
		JournalEntryID:    d.JournalEntryID,
		FxRate:            d.FxRate,
		FxRateDate:        d.FxRateDate,
		FxSource:          string(d.FxSource),
		Status:            string(d.Status),
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSettlementBatch converts a model SettlementBatch to its domain form
func ToDomainSettlementBatch(m models.SettlementBatch) domain.SettlementBatch {
	return domain.SettlementBatch{
		SettlementID:      m.SettlementID,
		TenantID:          m.TenantID,
		LegalEntityID:     m.LegalEntityID,
		CounterpartyID:    m.CounterpartyID,
		SettlementDate:    m.SettlementDate,
		CurrencyCode:      m.CurrencyCode,
		AmountIncomingTxn: m.AmountIncomingTxn,
		PaymentChannel:    domain.PaymentChannel(m.PaymentChannel),
		IdempotencyKey:    m.IdempotencyKey,
		CashTransactionID: m.CashTransactionID,
		JournalEntryID:    m.JournalEntryID,
		FxRate:            m.FxRate,
		FxRateDate:        m.FxRateDate,
		FxSource:          domain.FxSource(m.FxSource),
		Status:            domain.SettlementStatus(m.Status),
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

func ToDomainSettlementBatchSlice(ms []models.SettlementBatch) []domain.SettlementBatch {
	batches := make([]domain.SettlementBatch, len(ms))
	for i, m := range ms {
		batches[i] = ToDomainSettlementBatch(m)
	}
	return batches
}

// ToModelSettlementAllocation converts a domain allocation to its model
func ToModelSettlementAllocation(d domain.SettlementAllocation) models.SettlementAllocation {
	return models.SettlementAllocation{
		AllocationID: d.AllocationID,
		SettlementID: d.SettlementID,
		OpenItemID:   d.OpenItemID,
		AmountTxn:    d.AmountTxn,
		AmountBase:   d.AmountBase,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainSettlementAllocation converts a model allocation to its domain form
func ToDomainSettlementAllocation(m models.SettlementAllocation) domain.SettlementAllocation {
	return domain.SettlementAllocation{
		AllocationID: m.AllocationID,
		SettlementID: m.SettlementID,
		OpenItemID:   m.OpenItemID,
		AmountTxn:    m.AmountTxn,
		AmountBase:   m.AmountBase,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainSettlementAllocationSlice converts model allocations to domain form
func ToDomainSettlementAllocationSlice(ms []models.SettlementAllocation) []domain.SettlementAllocation {
	ds := make([]domain.SettlementAllocation, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainSettlementAllocation(m)
	}
	return ds
}

// ToModelUnappliedCash converts a domain UnappliedCash to its model
func ToModelUnappliedCash(d domain.UnappliedCash) models.UnappliedCash {
	return models.UnappliedCash{
		UnappliedCashID:    d.UnappliedCashID,
		TenantID:           d.TenantID,
		LegalEntityID:      d.LegalEntityID,
		CounterpartyID:     d.CounterpartyID,
		SourceSettlementID: d.SourceSettlementID,
		CashTransactionID:  d.CashTransactionID,
		CurrencyCode:       d.CurrencyCode,
		AmountOriginal:     d.AmountOriginal,
		AmountResidual:     d.AmountResidual,
		Status:             string(d.Status),
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainUnappliedCash converts a model UnappliedCash to its domain form
func ToDomainUnappliedCash(m models.UnappliedCash) domain.UnappliedCash {
	return domain.UnappliedCash{
		UnappliedCashID:    m.UnappliedCashID,
		TenantID:           m.TenantID,
		LegalEntityID:      m.LegalEntityID,
		CounterpartyID:     m.CounterpartyID,
		SourceSettlementID: m.SourceSettlementID,
		CashTransactionID:  m.CashTransactionID,
		CurrencyCode:       m.CurrencyCode,
		AmountOriginal:     m.AmountOriginal,
		AmountResidual:     m.AmountResidual,
		Status:             domain.UnappliedCashStatus(m.Status),
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainUnappliedCashSlice converts model rows to domain form
func ToDomainUnappliedCashSlice(ms []models.UnappliedCash) []domain.UnappliedCash {
	ds := make([]domain.UnappliedCash, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainUnappliedCash(m)
	}
	return ds
}
