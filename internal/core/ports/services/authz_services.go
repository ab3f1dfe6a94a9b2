package services

import (
	"context"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
)

// ScopeAuthorizer is the external authorization decision the core consumes.
// The core performs no role logic beyond asking these questions.
type ScopeAuthorizer interface {
	// AssertScopeAccess fails with ErrForbidden (or ErrNotFound for unknown
	// scope) unless the actor holds at least the required role on the legal
	// entity.
	AssertScopeAccess(ctx context.Context, userID, tenantID, legalEntityID string, required domain.ScopeRole) error

	// AssertFxOverrideAccess gates locked-rate override postings; it is a
	// distinct permission from ordinary posting.
	AssertFxOverrideAccess(ctx context.Context, userID, tenantID, legalEntityID string) error
}
