package mapping

import (
	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	"github.com/SubledgerHQ/cari_backend/internal/models"
)

// ToModelFxRate converts a domain FxRate to its model
func ToModelFxRate(d domain.FxRate) models.FxRate {
	return models.FxRate{
		FxRateID:     d.FxRateID,
		TenantID:     d.TenantID,
		RateDate:     d.RateDate,
		FromCurrency: d.FromCurrency,
		ToCurrency:   d.ToCurrency,
		RateType:     string(d.RateType),
		Rate:         d.Rate,
		IsLocked:     d.IsLocked,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainFxRate converts a model FxRate to its domain form
func ToDomainFxRate(m models.FxRate) domain.FxRate {
	return domain.FxRate{
		FxRateID:     m.FxRateID,
		TenantID:     m.TenantID,
		RateDate:     m.RateDate,
		FromCurrency: m.FromCurrency,
		ToCurrency:   m.ToCurrency,
		RateType:     domain.FxRateType(m.RateType),
		Rate:         m.Rate,
		IsLocked:     m.IsLocked,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainFxRateSlice converts model rates to domain form
func ToDomainFxRateSlice(ms []models.FxRate) []domain.FxRate {
	ds := make([]domain.FxRate, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainFxRate(m)
	}
	return ds
}

// ToModelPurposeAccountMapping converts a domain mapping row to its model
func ToModelPurposeAccountMapping(d domain.PurposeAccountMapping) models.PurposeAccountMapping {
	return models.PurposeAccountMapping{
		MappingID:     d.MappingID,
		TenantID:      d.TenantID,
		LegalEntityID: d.LegalEntityID,
		MappingKey:    d.MappingKey,
		AccountID:     d.AccountID,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPurposeAccountMapping converts a model mapping row to its domain form
func ToDomainPurposeAccountMapping(m models.PurposeAccountMapping) domain.PurposeAccountMapping {
	return domain.PurposeAccountMapping{
		MappingID:     m.MappingID,
		TenantID:      m.TenantID,
		LegalEntityID: m.LegalEntityID,
		MappingKey:    m.MappingKey,
		AccountID:     m.AccountID,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPurposeAccountMappingSlice converts model mapping rows to domain form
func ToDomainPurposeAccountMappingSlice(ms []models.PurposeAccountMapping) []domain.PurposeAccountMapping {
	ds := make([]domain.PurposeAccountMapping, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPurposeAccountMapping(m)
	}
	return ds
}

// ToDomainLegalEntity converts a model LegalEntity to its domain form
func ToDomainLegalEntity(m models.LegalEntity) domain.LegalEntity {
	return domain.LegalEntity{
		LegalEntityID:      m.LegalEntityID,
		TenantID:           m.TenantID,
		Name:               m.Name,
		FunctionalCurrency: m.FunctionalCurrency,
		IsActive:           m.IsActive,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainCounterparty converts a model Counterparty to its domain form
func ToDomainCounterparty(m models.Counterparty) domain.Counterparty {
	return domain.Counterparty{
		CounterpartyID: m.CounterpartyID,
		TenantID:       m.TenantID,
		DisplayName:    m.DisplayName,
		IsActive:       m.IsActive,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}
