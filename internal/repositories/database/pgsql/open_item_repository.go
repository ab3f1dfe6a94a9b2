package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/SubledgerHQ/cari_backend/internal/apperrors"
	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	portsrepo "github.com/SubledgerHQ/cari_backend/internal/core/ports/repositories"
	"github.com/SubledgerHQ/cari_backend/internal/models"
	"github.com/SubledgerHQ/cari_backend/internal/utils/accounting"
	"github.com/SubledgerHQ/cari_backend/internal/utils/mapping"
	"github.com/SubledgerHQ/cari_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const openItemColumns = `
	open_item_id, tenant_id, legal_entity_id, document_id, counterparty_id,
	direction, currency_code, amount_orig_txn, amount_orig_base,
	residual_txn, residual_base, status,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxOpenItemRepository struct {
	BaseRepository
}

// newPgxOpenItemRepository creates a repository for open item data.
func newPgxOpenItemRepository(pool *pgxpool.Pool) portsrepo.OpenItemRepositoryFacade {
	return &PgxOpenItemRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.OpenItemRepositoryFacade = (*PgxOpenItemRepository)(nil)

func scanOpenItem(row pgx.Row) (models.OpenItem, error) {
	var m models.OpenItem
	err := row.Scan(
		&m.OpenItemID, &m.TenantID, &m.LegalEntityID, &m.DocumentID, &m.CounterpartyID,
		&m.Direction, &m.CurrencyCode, &m.AmountOrigTxn, &m.AmountOrigBase,
		&m.ResidualTxn, &m.ResidualBase, &m.Status,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxOpenItemRepository) FindOpenItemByID(ctx context.Context, tenantID, openItemID string) (*domain.OpenItem, error) {
	query := `SELECT ` + openItemColumns + ` FROM open_items WHERE tenant_id = $1 AND open_item_id = $2;`
	m, err := scanOpenItem(r.Pool.QueryRow(ctx, query, tenantID, openItemID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("open item " + openItemID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query open item", err)
	}
	item := mapping.ToDomainOpenItem(m)
	return &item, nil
}

func (r *PgxOpenItemRepository) FindOpenItemsByIDs(ctx context.Context, tenantID string, openItemIDs []string) (map[string]domain.OpenItem, error) {
	if len(openItemIDs) == 0 {
		return map[string]domain.OpenItem{}, nil
	}
	query := `SELECT ` + openItemColumns + ` FROM open_items WHERE tenant_id = $1 AND open_item_id = ANY($2);`
	return r.queryOpenItemMap(ctx, r.Pool, query, tenantID, openItemIDs)
}

// FindOpenItemsByIDsForUpdate locks the open item rows for the duration of
// the transaction.
func (r *PgxOpenItemRepository) FindOpenItemsByIDsForUpdate(ctx context.Context, tx pgx.Tx, tenantID string, openItemIDs []string) (map[string]domain.OpenItem, error) {
	if len(openItemIDs) == 0 {
		return map[string]domain.OpenItem{}, nil
	}
	query := `SELECT ` + openItemColumns + ` FROM open_items WHERE tenant_id = $1 AND open_item_id = ANY($2) ORDER BY open_item_id FOR UPDATE;`
	return r.queryOpenItemMap(ctx, tx, query, tenantID, openItemIDs)
}

// querier covers both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *PgxOpenItemRepository) queryOpenItemMap(ctx context.Context, q querier, query, tenantID string, openItemIDs []string) (map[string]domain.OpenItem, error) {
	rows, err := q.Query(ctx, query, tenantID, openItemIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query open items", err)
	}
	defer rows.Close()

	result := make(map[string]domain.OpenItem, len(openItemIDs))
	for rows.Next() {
		m, err := scanOpenItem(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan open item", err)
		}
		result[m.OpenItemID] = mapping.ToDomainOpenItem(m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read open items", err)
	}
	return result, nil
}

func (r *PgxOpenItemRepository) FindOpenItemsByDocumentID(ctx context.Context, tenantID, documentID string) ([]domain.OpenItem, error) {
	query := `SELECT ` + openItemColumns + ` FROM open_items WHERE tenant_id = $1 AND document_id = $2 ORDER BY created_at;`
	rows, err := r.Pool.Query(ctx, query, tenantID, documentID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query open items for document", err)
	}
	defer rows.Close()

	var items []models.OpenItem
	for rows.Next() {
		m, err := scanOpenItem(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan open item", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read open items", err)
	}
	return mapping.ToDomainOpenItemSlice(items), nil
}

// ListOpenItemsByCounterparty pages oldest-first so auto-allocation settles
// the longest-outstanding claims first.
func (r *PgxOpenItemRepository) ListOpenItemsByCounterparty(ctx context.Context, tenantID, legalEntityID, counterpartyID string, onlyOpen bool, limit int, nextToken *string) ([]domain.OpenItem, *string, error) {
	args := []any{tenantID, legalEntityID, counterpartyID}
	query := `SELECT ` + openItemColumns + `
		FROM open_items
		WHERE tenant_id = $1 AND legal_entity_id = $2 AND counterparty_id = $3`
	if onlyOpen {
		query += ` AND status = 'OPEN'`
	}
	if nextToken != nil {
		createdAt, id, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid pagination token", err)
		}
		query += ` AND (created_at, open_item_id) > ($4, $5)`
		args = append(args, createdAt, id)
	}
	query += ` ORDER BY created_at, open_item_id LIMIT ` + itoa(limit+1) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list open items", err)
	}
	defer rows.Close()

	var items []models.OpenItem
	for rows.Next() {
		m, err := scanOpenItem(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan open item", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to read open items", err)
	}

	var token *string
	if len(items) > limit {
		items = items[:limit]
		last := items[limit-1]
		t := pagination.EncodeCursor(last.CreatedAt, last.OpenItemID)
		token = &t
	}
	return mapping.ToDomainOpenItemSlice(items), token, nil
}

func (r *PgxOpenItemRepository) InsertOpenItemInTx(ctx context.Context, tx pgx.Tx, item domain.OpenItem) error {
	m := mapping.ToModelOpenItem(item)
	query := `
		INSERT INTO open_items (` + openItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := tx.Exec(ctx, query,
		m.OpenItemID, m.TenantID, m.LegalEntityID, m.DocumentID, m.CounterpartyID,
		m.Direction, m.CurrencyCode, m.AmountOrigTxn, m.AmountOrigBase,
		m.ResidualTxn, m.ResidualBase, m.Status,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert open item "+m.OpenItemID, err)
	}
	return nil
}

// ApplyResidualChangesInTx reduces residuals under row locks the caller must
// already hold. A residual within the rounding epsilon of zero snaps to zero
// and the item flips to SETTLED. Rows whose residual cannot cover the delta
// reject the whole unit of work.
func (r *PgxOpenItemRepository) ApplyResidualChangesInTx(ctx context.Context, tx pgx.Tx, tenantID string, changes map[string]portsrepo.ResidualChange, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE open_items
		SET residual_txn  = CASE WHEN residual_txn - $1 <= $7 THEN 0 ELSE residual_txn - $1 END,
		    residual_base = CASE WHEN residual_txn - $1 <= $7 THEN 0 ELSE GREATEST(residual_base - $2, 0) END,
		    status        = CASE WHEN residual_txn - $1 <= $7 THEN 'SETTLED' ELSE status END,
		    last_updated_at = $3,
		    last_updated_by = $4
		WHERE tenant_id = $5 AND open_item_id = $6 AND status = 'OPEN' AND residual_txn >= $1 - $7;
	`
	for openItemID, change := range changes {
		tag, err := tx.Exec(ctx, query,
			change.DeltaTxn, change.DeltaBase, updatedAt, updatedBy,
			tenantID, openItemID, accounting.RoundingEpsilon,
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to apply residual change to "+openItemID, err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NewAppError(400, "open item "+openItemID+" cannot absorb the allocation", apperrors.ErrValidation)
		}
	}
	return nil
}
