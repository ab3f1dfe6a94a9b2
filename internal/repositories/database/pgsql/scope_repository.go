package pgsql

import (
	"context"
	"errors"

	"github.com/SubledgerHQ/cari_backend/internal/apperrors"
	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	portsrepo "github.com/SubledgerHQ/cari_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxScopeRepository reads legal-entity access grants.
type PgxScopeRepository struct {
	BaseRepository
}

// newPgxScopeRepository creates a repository for scope grants.
func newPgxScopeRepository(pool *pgxpool.Pool) portsrepo.ScopeReader {
	return &PgxScopeRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ScopeReader = (*PgxScopeRepository)(nil)

func (r *PgxScopeRepository) FindScopeGrant(ctx context.Context, userID, tenantID, legalEntityID string) (*portsrepo.ScopeGrant, error) {
	query := `
		SELECT user_id, tenant_id, legal_entity_id, role, can_override_fx
		FROM scope_grants
		WHERE user_id = $1 AND tenant_id = $2 AND legal_entity_id = $3;
	`
	var grant portsrepo.ScopeGrant
	var role string
	err := r.Pool.QueryRow(ctx, query, userID, tenantID, legalEntityID).Scan(
		&grant.UserID, &grant.TenantID, &grant.LegalEntityID, &role, &grant.CanOverrideFx,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("no scope grant for legal entity " + legalEntityID)
		}
		return nil, apperrors.NewAppError(500, "failed to query scope grant", err)
	}
	grant.Role = domain.ScopeRole(role)
	return &grant, nil
}
