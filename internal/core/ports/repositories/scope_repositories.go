package repositories

import (
	"context"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
)

// ScopeGrant is one actor's access row for a legal entity.
type ScopeGrant struct {
	UserID        string
	TenantID      string
	LegalEntityID string
	Role          domain.ScopeRole
	CanOverrideFx bool
}

// ScopeReader defines read access to legal-entity access grants.
type ScopeReader interface {
	// FindScopeGrant returns ErrNotFound when the actor has no grant for the
	// legal entity.
	FindScopeGrant(ctx context.Context, userID, tenantID, legalEntityID string) (*ScopeGrant, error)
}
