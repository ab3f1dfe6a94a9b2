package pgsql

import (
	"context"
	"errors"

	"github.com/SubledgerHQ/cari_backend/internal/apperrors"
	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	portsrepo "github.com/SubledgerHQ/cari_backend/internal/core/ports/repositories"
	"github.com/SubledgerHQ/cari_backend/internal/models"
	"github.com/SubledgerHQ/cari_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPartyRepository reads legal entity and counterparty reference data.
type PgxPartyRepository struct {
	BaseRepository
}

// newPgxPartyRepository creates a repository for party reference data.
func newPgxPartyRepository(pool *pgxpool.Pool) portsrepo.PartyRepositoryFacade {
	return &PgxPartyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PartyRepositoryFacade = (*PgxPartyRepository)(nil)

func (r *PgxPartyRepository) FindLegalEntityByID(ctx context.Context, tenantID, legalEntityID string) (*domain.LegalEntity, error) {
	query := `
		SELECT legal_entity_id, tenant_id, name, functional_currency, is_active,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM legal_entities
		WHERE tenant_id = $1 AND legal_entity_id = $2;
	`
	var m models.LegalEntity
	err := r.Pool.QueryRow(ctx, query, tenantID, legalEntityID).Scan(
		&m.LegalEntityID, &m.TenantID, &m.Name, &m.FunctionalCurrency, &m.IsActive,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("legal entity not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query legal entity", err)
	}
	le := mapping.ToDomainLegalEntity(m)
	return &le, nil
}

func (r *PgxPartyRepository) FindCounterpartyByID(ctx context.Context, tenantID, counterpartyID string) (*domain.Counterparty, error) {
	query := `
		SELECT counterparty_id, tenant_id, display_name, is_active,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM counterparties
		WHERE tenant_id = $1 AND counterparty_id = $2;
	`
	var m models.Counterparty
	err := r.Pool.QueryRow(ctx, query, tenantID, counterpartyID).Scan(
		&m.CounterpartyID, &m.TenantID, &m.DisplayName, &m.IsActive,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("counterparty not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query counterparty", err)
	}
	cp := mapping.ToDomainCounterparty(m)
	return &cp, nil
}
