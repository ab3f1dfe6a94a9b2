package pgsql

import (
	"context"

	"github.com/SubledgerHQ/cari_backend/internal/apperrors"
	portsrepo "github.com/SubledgerHQ/cari_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxSequenceRepository struct {
	BaseRepository
}

// newPgxSequenceRepository creates a repository for document number sequences.
func newPgxSequenceRepository(pool *pgxpool.Pool) portsrepo.SequenceRepositoryFacade {
	return &PgxSequenceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SequenceRepositoryFacade = (*PgxSequenceRepository)(nil)

// The counter row is upserted and incremented in one statement; concurrent
// callers serialize on the row and each sees a distinct value.
const nextNumberQuery = `
	INSERT INTO document_sequences (tenant_id, legal_entity_id, namespace, last_value)
	VALUES ($1, $2, $3, 1)
	ON CONFLICT (tenant_id, legal_entity_id, namespace)
	DO UPDATE SET last_value = document_sequences.last_value + 1
	RETURNING last_value;
`

func (r *PgxSequenceRepository) NextNumber(ctx context.Context, tenantID, legalEntityID, namespace string) (int64, error) {
	var value int64
	err := r.Pool.QueryRow(ctx, nextNumberQuery, tenantID, legalEntityID, namespace).Scan(&value)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to advance sequence "+namespace, err)
	}
	return value, nil
}

func (r *PgxSequenceRepository) NextNumberInTx(ctx context.Context, tx pgx.Tx, tenantID, legalEntityID, namespace string) (int64, error) {
	var value int64
	err := tx.QueryRow(ctx, nextNumberQuery, tenantID, legalEntityID, namespace).Scan(&value)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to advance sequence "+namespace, err)
	}
	return value, nil
}
