package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// SequenceRepositoryFacade hands out document numbers per (tenant, legal
// entity, namespace) via upsert-returning increments.
type SequenceRepositoryFacade interface {
	// NextNumber increments and returns the counter in its own transaction
	// (used for draft numbering).
	NextNumber(ctx context.Context, tenantID, legalEntityID, namespace string) (int64, error)

	// NextNumberInTx increments and returns the counter inside an existing
	// transaction (used when posting assigns the permanent number).
	NextNumberInTx(ctx context.Context, tx pgx.Tx, tenantID, legalEntityID, namespace string) (int64, error)
}
