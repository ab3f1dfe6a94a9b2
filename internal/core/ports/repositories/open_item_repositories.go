package repositories

import (
	"context"
	"time"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ResidualChange is the amount by which one allocation reduces an open item's
// residual, in both currencies.
type ResidualChange struct {
	DeltaTxn  decimal.Decimal
	DeltaBase decimal.Decimal
}

// OpenItemReader defines read operations for open items.
type OpenItemReader interface {
	FindOpenItemByID(ctx context.Context, tenantID, openItemID string) (*domain.OpenItem, error)

	// FindOpenItemsByIDs retrieves multiple open items keyed by id. Ids from
	// other tenants are simply absent from the result map.
	FindOpenItemsByIDs(ctx context.Context, tenantID string, openItemIDs []string) (map[string]domain.OpenItem, error)

	FindOpenItemsByDocumentID(ctx context.Context, tenantID, documentID string) ([]domain.OpenItem, error)

	// ListOpenItemsByCounterparty retrieves open items for a counterparty,
	// optionally only those still carrying a residual, with token pagination.
	ListOpenItemsByCounterparty(ctx context.Context, tenantID, legalEntityID, counterpartyID string, onlyOpen bool, limit int, nextToken *string) ([]domain.OpenItem, *string, error)
}

// OpenItemWriter defines write operations. The in-tx variants are used by the
// posting and settlement repositories to compose one atomic unit of work.
type OpenItemWriter interface {
	InsertOpenItemInTx(ctx context.Context, tx pgx.Tx, item domain.OpenItem) error

	// FindOpenItemsByIDsForUpdate locks the open item rows for the duration
	// of the transaction and returns their current state.
	FindOpenItemsByIDsForUpdate(ctx context.Context, tx pgx.Tx, tenantID string, openItemIDs []string) (map[string]domain.OpenItem, error)

	// ApplyResidualChangesInTx reduces residuals and flips status to SETTLED
	// where the residual reaches zero. Callers must hold the row locks.
	ApplyResidualChangesInTx(ctx context.Context, tx pgx.Tx, tenantID string, changes map[string]ResidualChange, updatedBy string, updatedAt time.Time) error
}

// OpenItemRepositoryFacade combines all open item repository interfaces.
type OpenItemRepositoryFacade interface {
	OpenItemReader
	OpenItemWriter
}
