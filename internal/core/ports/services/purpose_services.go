package services

import (
	"context"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	"github.com/SubledgerHQ/cari_backend/internal/dto"
)

// PurposeResolverFacade maps (purpose code, context) to a GL account with
// fallback from the context-qualified key to the bare purpose code.
type PurposeResolverFacade interface {
	ResolveAccount(ctx context.Context, tenantID, legalEntityID string, code domain.PurposeCode, pctx domain.PurposeContext) (string, error)
}

// PurposeMappingSvcFacade is the configuration surface for mappings.
type PurposeMappingSvcFacade interface {
	UpsertMapping(ctx context.Context, tenantID string, req dto.UpsertPurposeMappingRequest, updatingUserID string) (*domain.PurposeAccountMapping, error)
	ListMappings(ctx context.Context, tenantID, legalEntityID string) ([]domain.PurposeAccountMapping, error)
}
