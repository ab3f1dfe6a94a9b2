package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/SubledgerHQ/cari_backend/internal/apperrors"
	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	portsrepo "github.com/SubledgerHQ/cari_backend/internal/core/ports/repositories"
	portssvc "github.com/SubledgerHQ/cari_backend/internal/core/ports/services"
	"github.com/SubledgerHQ/cari_backend/internal/middleware"
)

// purposeResolver maps (purpose code, context) to GL accounts through the
// tenant's mapping table. The context-qualified key wins; the bare purpose
// code is the fallback.
type purposeResolver struct {
	mappingRepo portsrepo.PurposeAccountReader
}

// NewPurposeResolver creates a new PurposeResolverFacade.
func NewPurposeResolver(mappingRepo portsrepo.PurposeAccountReader) portssvc.PurposeResolverFacade {
	return &purposeResolver{mappingRepo: mappingRepo}
}

var _ portssvc.PurposeResolverFacade = (*purposeResolver)(nil)

func (r *purposeResolver) ResolveAccount(ctx context.Context, tenantID, legalEntityID string, code domain.PurposeCode, pctx domain.PurposeContext) (string, error) {
	qualified := code.Qualified(pctx)

	accountID, err := r.mappingRepo.FindAccountID(ctx, tenantID, legalEntityID, qualified)
	if err == nil {
		return accountID, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return "", fmt.Errorf("failed to resolve purpose account %s: %w", qualified, err)
	}

	// No context-specific mapping; fall back to the unqualified purpose code.
	accountID, err = r.mappingRepo.FindAccountID(ctx, tenantID, legalEntityID, string(code))
	if err == nil {
		return accountID, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return "", fmt.Errorf("failed to resolve purpose account %s: %w", code, err)
	}

	middleware.GetLoggerFromCtx(ctx).Error("Purpose code has no account mapping",
		"legalEntityID", legalEntityID, "purposeCode", code, "context", pctx)
	return "", fmt.Errorf("%w: no account mapped for purpose %s (context %s) on legal entity %s",
		apperrors.ErrConfiguration, code, pctx, legalEntityID)
}
