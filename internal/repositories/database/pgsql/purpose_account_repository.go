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

// PgxPurposeAccountRepository implements purpose-account configuration access.
type PgxPurposeAccountRepository struct {
	BaseRepository
}

// newPgxPurposeAccountRepository creates a repository for mapping rows.
func newPgxPurposeAccountRepository(pool *pgxpool.Pool) portsrepo.PurposeAccountRepositoryFacade {
	return &PgxPurposeAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PurposeAccountRepositoryFacade = (*PgxPurposeAccountRepository)(nil)

func (r *PgxPurposeAccountRepository) FindAccountID(ctx context.Context, tenantID, legalEntityID, mappingKey string) (string, error) {
	query := `
		SELECT account_id FROM purpose_account_mappings
		WHERE tenant_id = $1 AND legal_entity_id = $2 AND mapping_key = $3;
	`
	var accountID string
	err := r.Pool.QueryRow(ctx, query, tenantID, legalEntityID, mappingKey).Scan(&accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFoundError("no account mapped for key " + mappingKey)
		}
		return "", apperrors.NewAppError(500, "failed to query purpose account mapping", err)
	}
	return accountID, nil
}

func (r *PgxPurposeAccountRepository) ListMappings(ctx context.Context, tenantID, legalEntityID string) ([]domain.PurposeAccountMapping, error) {
	query := `
		SELECT mapping_id, tenant_id, legal_entity_id, mapping_key, account_id,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM purpose_account_mappings
		WHERE tenant_id = $1 AND legal_entity_id = $2
		ORDER BY mapping_key;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, legalEntityID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query purpose account mappings", err)
	}
	defer rows.Close()

	var result []models.PurposeAccountMapping
	for rows.Next() {
		var m models.PurposeAccountMapping
		if err := rows.Scan(
			&m.MappingID, &m.TenantID, &m.LegalEntityID, &m.MappingKey, &m.AccountID,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan purpose account mapping", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read purpose account mappings", err)
	}
	return mapping.ToDomainPurposeAccountMappingSlice(result), nil
}

func (r *PgxPurposeAccountRepository) UpsertMapping(ctx context.Context, row domain.PurposeAccountMapping) error {
	m := mapping.ToModelPurposeAccountMapping(row)
	query := `
		INSERT INTO purpose_account_mappings (
			mapping_id, tenant_id, legal_entity_id, mapping_key, account_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, legal_entity_id, mapping_key)
		DO UPDATE SET account_id = EXCLUDED.account_id,
		              last_updated_at = EXCLUDED.last_updated_at,
		              last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		m.MappingID, m.TenantID, m.LegalEntityID, m.MappingKey, m.AccountID,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to upsert purpose account mapping "+m.MappingKey, err)
	}
	return nil
}
