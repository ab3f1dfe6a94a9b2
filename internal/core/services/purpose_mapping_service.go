package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	portsrepo "github.com/SubledgerHQ/cari_backend/internal/core/ports/repositories"
	portssvc "github.com/SubledgerHQ/cari_backend/internal/core/ports/services"
	"github.com/SubledgerHQ/cari_backend/internal/dto"
	"github.com/google/uuid"
)

// purposeMappingService is the configuration surface for purpose-account
// mappings.
type purposeMappingService struct {
	mappingRepo portsrepo.PurposeAccountRepositoryFacade
	authz       portssvc.ScopeAuthorizer
}

// NewPurposeMappingService creates a new PurposeMappingSvcFacade.
func NewPurposeMappingService(mappingRepo portsrepo.PurposeAccountRepositoryFacade, authz portssvc.ScopeAuthorizer) portssvc.PurposeMappingSvcFacade {
	return &purposeMappingService{mappingRepo: mappingRepo, authz: authz}
}

var _ portssvc.PurposeMappingSvcFacade = (*purposeMappingService)(nil)

func (s *purposeMappingService) UpsertMapping(ctx context.Context, tenantID string, req dto.UpsertPurposeMappingRequest, updatingUserID string) (*domain.PurposeAccountMapping, error) {
	if err := s.authz.AssertScopeAccess(ctx, updatingUserID, tenantID, req.LegalEntityID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	now := time.Now()
	mapping := domain.PurposeAccountMapping{
		MappingID:     uuid.NewString(),
		TenantID:      tenantID,
		LegalEntityID: req.LegalEntityID,
		MappingKey:    req.MappingKey,
		AccountID:     req.AccountID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     updatingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: updatingUserID,
		},
	}

	if err := s.mappingRepo.UpsertMapping(ctx, mapping); err != nil {
		return nil, fmt.Errorf("failed to upsert purpose mapping: %w", err)
	}
	return &mapping, nil
}

func (s *purposeMappingService) ListMappings(ctx context.Context, tenantID, legalEntityID string) ([]domain.PurposeAccountMapping, error) {
	return s.mappingRepo.ListMappings(ctx, tenantID, legalEntityID)
}
