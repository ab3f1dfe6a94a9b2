package dto

import "github.com/SubledgerHQ/cari_backend/internal/core/domain"

// UpsertPurposeMappingRequest configures one (mapping key) -> account row.
type UpsertPurposeMappingRequest struct {
	LegalEntityID string `json:"legalEntityID" binding:"required"`
	MappingKey    string `json:"mappingKey" binding:"required"`
	AccountID     string `json:"accountID" binding:"required"`
}

// PurposeMappingResponse is the external representation of a mapping row.
type PurposeMappingResponse struct {
	MappingID     string `json:"mappingID"`
	LegalEntityID string `json:"legalEntityID"`
	MappingKey    string `json:"mappingKey"`
	AccountID     string `json:"accountID"`
}

// ToPurposeMappingResponse converts a domain mapping to its DTO.
func ToPurposeMappingResponse(m *domain.PurposeAccountMapping) PurposeMappingResponse {
	return PurposeMappingResponse{
		MappingID:     m.MappingID,
		LegalEntityID: m.LegalEntityID,
		MappingKey:    m.MappingKey,
		AccountID:     m.AccountID,
	}
}
