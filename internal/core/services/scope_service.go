package services

import (
	"context"
	"fmt"

	"github.com/SubledgerHQ/cari_backend/internal/apperrors"
	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	portsrepo "github.com/SubledgerHQ/cari_backend/internal/core/ports/repositories"
	portssvc "github.com/SubledgerHQ/cari_backend/internal/core/ports/services"
	"github.com/SubledgerHQ/cari_backend/internal/middleware"
)

// roleRank orders scope roles for minimum-role checks.
var roleRank = map[domain.ScopeRole]int{
	domain.RoleReadOnly: 1,
	domain.RoleMember:   2,
	domain.RoleAdmin:    3,
}

// scopeService answers authorization questions from stored scope grants.
type scopeService struct {
	scopeRepo portsrepo.ScopeReader
}

// NewScopeService creates a new ScopeAuthorizer backed by grant rows.
func NewScopeService(scopeRepo portsrepo.ScopeReader) portssvc.ScopeAuthorizer {
	return &scopeService{scopeRepo: scopeRepo}
}

var _ portssvc.ScopeAuthorizer = (*scopeService)(nil)

func (s *scopeService) AssertScopeAccess(ctx context.Context, userID, tenantID, legalEntityID string, required domain.ScopeRole) error {
	grant, err := s.scopeRepo.FindScopeGrant(ctx, userID, tenantID, legalEntityID)
	if err != nil {
		// A missing grant is indistinguishable from a foreign legal entity;
		// both surface as forbidden without confirming existence.
		middleware.GetLoggerFromCtx(ctx).Warn("Scope access denied", "legalEntityID", legalEntityID, "error", err)
		return fmt.Errorf("%w: no access to legal entity %s", apperrors.ErrForbidden, legalEntityID)
	}
	if roleRank[grant.Role] < roleRank[required] {
		return fmt.Errorf("%w: role %s required on legal entity %s", apperrors.ErrForbidden, required, legalEntityID)
	}
	return nil
}

func (s *scopeService) AssertFxOverrideAccess(ctx context.Context, userID, tenantID, legalEntityID string) error {
	grant, err := s.scopeRepo.FindScopeGrant(ctx, userID, tenantID, legalEntityID)
	if err != nil {
		return fmt.Errorf("%w: no access to legal entity %s", apperrors.ErrForbidden, legalEntityID)
	}
	if !grant.CanOverrideFx {
		return fmt.Errorf("%w: locked-rate override requires the fx-override permission", apperrors.ErrForbidden)
	}
	return nil
}
