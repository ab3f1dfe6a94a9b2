package pgsql

import (
	"context"
	"errors"

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

const settlementColumns = `
	settlement_id, tenant_id, legal_entity_id, counterparty_id, settlement_date,
	currency_code, amount_incoming_txn, payment_channel, idempotency_key,
	cash_transaction_id, journal_entry_id, fx_rate, fx_rate_date, fx_source, status,
	created_at, created_by, last_updated_at, last_updated_by`

const unappliedCashColumns = `
	unapplied_cash_id, tenant_id, legal_entity_id, counterparty_id,
	source_settlement_id, cash_transaction_id, currency_code,
	amount_original, amount_residual, status,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxSettlementRepository persists settlement plans atomically and owns the
// idempotent-replay decision under an advisory lock.
type PgxSettlementRepository struct {
	BaseRepository
	openItemRepo portsrepo.OpenItemRepositoryFacade
	journalRepo  portsrepo.JournalRepositoryFacade
}

// newPgxSettlementRepository creates a repository for settlement data.
func newPgxSettlementRepository(pool *pgxpool.Pool, openItemRepo portsrepo.OpenItemRepositoryFacade, journalRepo portsrepo.JournalRepositoryFacade) portsrepo.SettlementRepositoryFacade {
	return &PgxSettlementRepository{
		BaseRepository: BaseRepository{Pool: pool},
		openItemRepo:   openItemRepo,
		journalRepo:    journalRepo,
	}
}

var _ portsrepo.SettlementRepositoryFacade = (*PgxSettlementRepository)(nil)

func scanSettlementBatch(row pgx.Row) (models.SettlementBatch, error) {
	var m models.SettlementBatch
	err := row.Scan(
		&m.SettlementID, &m.TenantID, &m.LegalEntityID, &m.CounterpartyID, &m.SettlementDate,
		&m.CurrencyCode, &m.AmountIncomingTxn, &m.PaymentChannel, &m.IdempotencyKey,
		&m.CashTransactionID, &m.JournalEntryID, &m.FxRate, &m.FxRateDate, &m.FxSource, &m.Status,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

func scanUnappliedCash(row pgx.Row) (models.UnappliedCash, error) {
	var m models.UnappliedCash
	err := row.Scan(
		&m.UnappliedCashID, &m.TenantID, &m.LegalEntityID, &m.CounterpartyID,
		&m.SourceSettlementID, &m.CashTransactionID, &m.CurrencyCode,
		&m.AmountOriginal, &m.AmountResidual, &m.Status,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxSettlementRepository) FindBatchByID(ctx context.Context, tenantID, settlementID string) (*domain.SettlementBatch, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlement_batches WHERE tenant_id = $1 AND settlement_id = $2;`
	return r.findBatch(ctx, r.Pool, query, tenantID, settlementID)
}

func (r *PgxSettlementRepository) FindBatchByIdempotencyKey(ctx context.Context, tenantID, idempotencyKey string) (*domain.SettlementBatch, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlement_batches WHERE tenant_id = $1 AND idempotency_key = $2;`
	return r.findBatch(ctx, r.Pool, query, tenantID, idempotencyKey)
}

func (r *PgxSettlementRepository) FindBatchByCashTransactionID(ctx context.Context, tenantID, cashTransactionID string) (*domain.SettlementBatch, error) {
	query := `SELECT ` + settlementColumns + ` FROM settlement_batches WHERE tenant_id = $1 AND cash_transaction_id = $2;`
	return r.findBatch(ctx, r.Pool, query, tenantID, cashTransactionID)
}

// rowQuerier covers both the pool and a transaction for single-row lookups.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *PgxSettlementRepository) findBatch(ctx context.Context, q rowQuerier, query string, args ...any) (*domain.SettlementBatch, error) {
	m, err := scanSettlementBatch(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("settlement batch not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query settlement batch", err)
	}
	batch := mapping.ToDomainSettlementBatch(m)
	return &batch, nil
}

func (r *PgxSettlementRepository) FindAllocationsBySettlementID(ctx context.Context, tenantID, settlementID string) ([]domain.SettlementAllocation, error) {
	query := `
		SELECT a.allocation_id, a.settlement_id, a.open_item_id, a.amount_txn, a.amount_base,
		       a.created_at, a.created_by, a.last_updated_at, a.last_updated_by
		FROM settlement_allocations a
		JOIN settlement_batches b ON b.settlement_id = a.settlement_id
		WHERE b.tenant_id = $1 AND a.settlement_id = $2
		ORDER BY a.created_at, a.allocation_id;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, settlementID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query allocations", err)
	}
	defer rows.Close()

	var allocs []models.SettlementAllocation
	for rows.Next() {
		var m models.SettlementAllocation
		if err := rows.Scan(
			&m.AllocationID, &m.SettlementID, &m.OpenItemID, &m.AmountTxn, &m.AmountBase,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan allocation", err)
		}
		allocs = append(allocs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read allocations", err)
	}
	return mapping.ToDomainSettlementAllocationSlice(allocs), nil
}

func (r *PgxSettlementRepository) ListBatchesByCounterparty(ctx context.Context, tenantID, legalEntityID, counterpartyID string, limit int, nextToken *string) ([]domain.SettlementBatch, *string, error) {
	args := []any{tenantID, legalEntityID, counterpartyID}
	query := `SELECT ` + settlementColumns + ` FROM settlement_batches WHERE tenant_id = $1 AND legal_entity_id = $2 AND counterparty_id = $3`
	if nextToken != nil {
		createdAt, id, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid pagination token", err)
		}
		query += ` AND (created_at, settlement_id) < ($4, $5)`
		args = append(args, createdAt, id)
	}
	query += ` ORDER BY created_at DESC, settlement_id DESC LIMIT ` + itoa(limit+1) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list settlement batches", err)
	}
	defer rows.Close()

	var batches []models.SettlementBatch
	for rows.Next() {
		m, err := scanSettlementBatch(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan settlement batch", err)
		}
		batches = append(batches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to read settlement batches", err)
	}

	var token *string
	if len(batches) > limit {
		batches = batches[:limit]
		last := batches[limit-1]
		t := pagination.EncodeCursor(last.CreatedAt, last.SettlementID)
		token = &t
	}
	return mapping.ToDomainSettlementBatchSlice(batches), token, nil
}

// FindOpenUnappliedCash returns the counterparty's consumable rows oldest
// first, matching the consumption order.
func (r *PgxSettlementRepository) FindOpenUnappliedCash(ctx context.Context, tenantID, legalEntityID, counterpartyID, currencyCode string) ([]domain.UnappliedCash, error) {
	query := `SELECT ` + unappliedCashColumns + `
		FROM unapplied_cash
		WHERE tenant_id = $1 AND legal_entity_id = $2 AND counterparty_id = $3
		  AND currency_code = $4 AND status = 'OPEN'
		ORDER BY created_at, unapplied_cash_id;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, legalEntityID, counterpartyID, currencyCode)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query unapplied cash", err)
	}
	defer rows.Close()

	var result []models.UnappliedCash
	for rows.Next() {
		m, err := scanUnappliedCash(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan unapplied cash", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read unapplied cash", err)
	}
	return mapping.ToDomainUnappliedCashSlice(result), nil
}

func (r *PgxSettlementRepository) FindUnappliedCashBySettlementID(ctx context.Context, tenantID, settlementID string) (*domain.UnappliedCash, error) {
	query := `SELECT ` + unappliedCashColumns + ` FROM unapplied_cash WHERE tenant_id = $1 AND source_settlement_id = $2;`
	m, err := scanUnappliedCash(r.Pool.QueryRow(ctx, query, tenantID, settlementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("no unapplied cash for settlement " + settlementID)
		}
		return nil, apperrors.NewAppError(500, "failed to query unapplied cash", err)
	}
	row := mapping.ToDomainUnappliedCash(m)
	return &row, nil
}

func (r *PgxSettlementRepository) InsertUnappliedCash(ctx context.Context, row domain.UnappliedCash) error {
	m := mapping.ToModelUnappliedCash(row)
	query := `
		INSERT INTO unapplied_cash (` + unappliedCashColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.UnappliedCashID, m.TenantID, m.LegalEntityID, m.CounterpartyID,
		m.SourceSettlementID, m.CashTransactionID, m.CurrencyCode,
		m.AmountOriginal, m.AmountResidual, m.Status,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert unapplied cash "+m.UnappliedCashID, err)
	}
	return nil
}

// ApplySettlement persists the plan in one transaction. Concurrent calls with
// the same idempotency key serialize on a transaction-scoped advisory lock;
// whichever caller finds a stored batch after taking the lock gets the replay
// path and writes nothing.
func (r *PgxSettlementRepository) ApplySettlement(ctx context.Context, plan portsrepo.SettlementPlan) (*portsrepo.SettlementResult, error) {
	batch := plan.Batch

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	_, err = tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, batch.TenantID+"|"+batch.IdempotencyKey)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to take settlement advisory lock", err)
	}

	// Re-check under the lock: a concurrent winner may have committed between
	// the service's pre-check and here.
	existing, err := r.findBatch(ctx, tx,
		`SELECT `+settlementColumns+` FROM settlement_batches WHERE tenant_id = $1 AND idempotency_key = $2;`,
		batch.TenantID, batch.IdempotencyKey)
	if err == nil {
		return &portsrepo.SettlementResult{Batch: existing, IdempotentReplay: true}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if batch.CashTransactionID != nil {
		existing, err = r.findBatch(ctx, tx,
			`SELECT `+settlementColumns+` FROM settlement_batches WHERE tenant_id = $1 AND cash_transaction_id = $2;`,
			batch.TenantID, *batch.CashTransactionID)
		if err == nil {
			return &portsrepo.SettlementResult{Batch: existing, IdempotentReplay: true}, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}

	// Lock the targeted open items and re-validate residuals; the service's
	// plan was computed without locks and may be stale.
	itemIDs := make([]string, 0, len(plan.ResidualChanges))
	for id := range plan.ResidualChanges {
		itemIDs = append(itemIDs, id)
	}
	locked, err := r.openItemRepo.FindOpenItemsByIDsForUpdate(ctx, tx, batch.TenantID, itemIDs)
	if err != nil {
		return nil, err
	}
	for id, change := range plan.ResidualChanges {
		item, ok := locked[id]
		if !ok {
			return nil, apperrors.NewAppError(400, "open item "+id+" not found", apperrors.ErrValidation)
		}
		if item.Status != domain.OpenItemOpen || change.DeltaTxn.GreaterThan(item.ResidualTxn.Add(accounting.RoundingEpsilon)) {
			return nil, apperrors.NewAppError(400, "open item "+id+" residual cannot absorb the allocation", apperrors.ErrValidation)
		}
	}

	if plan.Entry != nil {
		if _, err := r.journalRepo.InsertJournalEntryInTx(ctx, tx, *plan.Entry, plan.Lines); err != nil {
			return nil, err
		}
	}

	m := mapping.ToModelSettlementBatch(batch)
	_, err = tx.Exec(ctx, `
		INSERT INTO settlement_batches (`+settlementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`,
		m.SettlementID, m.TenantID, m.LegalEntityID, m.CounterpartyID, m.SettlementDate,
		m.CurrencyCode, m.AmountIncomingTxn, m.PaymentChannel, m.IdempotencyKey,
		m.CashTransactionID, m.JournalEntryID, m.FxRate, m.FxRateDate, m.FxSource, m.Status,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to insert settlement batch "+m.SettlementID, err)
	}

	allocBatch := &pgx.Batch{}
	allocQuery := `
		INSERT INTO settlement_allocations (
			allocation_id, settlement_id, open_item_id, amount_txn, amount_base,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	for _, alloc := range plan.Allocations {
		am := mapping.ToModelSettlementAllocation(alloc)
		allocBatch.Queue(allocQuery,
			am.AllocationID, am.SettlementID, am.OpenItemID, am.AmountTxn, am.AmountBase,
			am.CreatedAt, am.CreatedBy, am.LastUpdatedAt, am.LastUpdatedBy,
		)
	}
	results := tx.SendBatch(ctx, allocBatch)
	for range plan.Allocations {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return nil, apperrors.NewAppError(500, "failed to insert settlement allocations", err)
		}
	}
	if err := results.Close(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to flush allocation batch", err)
	}

	if err := r.openItemRepo.ApplyResidualChangesInTx(ctx, tx, batch.TenantID, plan.ResidualChanges, batch.CreatedBy, batch.CreatedAt); err != nil {
		return nil, err
	}

	// Roll document statuses up from their open items: fully settled items
	// flip the document to SETTLED, anything remaining to PARTIALLY_SETTLED.
	docIDs := make([]string, 0, len(locked))
	seenDocs := make(map[string]bool, len(locked))
	for _, item := range locked {
		if !seenDocs[item.DocumentID] {
			seenDocs[item.DocumentID] = true
			docIDs = append(docIDs, item.DocumentID)
		}
	}
	_, err = tx.Exec(ctx, `
		UPDATE documents d
		SET status = CASE
		        WHEN NOT EXISTS (
		            SELECT 1 FROM open_items oi
		            WHERE oi.tenant_id = d.tenant_id AND oi.document_id = d.document_id AND oi.status = 'OPEN'
		        ) THEN 'SETTLED'
		        ELSE 'PARTIALLY_SETTLED'
		    END,
		    last_updated_at = $1, last_updated_by = $2
		WHERE d.tenant_id = $3 AND d.document_id = ANY($4) AND d.status IN ('POSTED', 'PARTIALLY_SETTLED');
	`, batch.CreatedAt, batch.CreatedBy, batch.TenantID, docIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to roll up document statuses", err)
	}

	for _, consume := range plan.ConsumeUnapplied {
		tag, err := tx.Exec(ctx, `
			UPDATE unapplied_cash
			SET amount_residual = CASE WHEN amount_residual - $1 <= $2 THEN 0 ELSE amount_residual - $1 END,
			    status = CASE WHEN amount_residual - $1 <= $2 THEN 'CONSUMED' ELSE status END,
			    last_updated_at = $3, last_updated_by = $4
			WHERE tenant_id = $5 AND unapplied_cash_id = $6 AND status = 'OPEN' AND amount_residual >= $1 - $2;
		`, consume.Amount, accounting.RoundingEpsilon, batch.CreatedAt, batch.CreatedBy, batch.TenantID, consume.UnappliedCashID)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to consume unapplied cash "+consume.UnappliedCashID, err)
		}
		if tag.RowsAffected() == 0 {
			return nil, apperrors.NewAppError(400, "unapplied cash "+consume.UnappliedCashID+" cannot cover the consumption", apperrors.ErrValidation)
		}
	}

	if plan.UnappliedCash != nil {
		um := mapping.ToModelUnappliedCash(*plan.UnappliedCash)
		_, err = tx.Exec(ctx, `
			INSERT INTO unapplied_cash (`+unappliedCashColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
		`,
			um.UnappliedCashID, um.TenantID, um.LegalEntityID, um.CounterpartyID,
			um.SourceSettlementID, um.CashTransactionID, um.CurrencyCode,
			um.AmountOriginal, um.AmountResidual, um.Status,
			um.CreatedAt, um.CreatedBy, um.LastUpdatedAt, um.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to insert unapplied cash "+um.UnappliedCashID, err)
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return &portsrepo.SettlementResult{Batch: &batch}, nil
}
