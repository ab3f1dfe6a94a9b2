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
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxJournalRepository is the append-only ledger store. Entries are created
// POSTED and never deleted; reversal cross-links pairs of entries.
type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a repository for journal entries and lines.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

// InsertJournalEntryInTx creates a journal entry with its lines inside an
// existing transaction. The balance check runs here again as a second line of
// defense; callers cannot persist an unbalanced entry regardless of what they
// validated upstream.
func (r *PgxJournalRepository) InsertJournalEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine) (string, error) {
	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return "", apperrors.NewAppError(400, "journal entry rejected by balance check", err)
	}

	modelEntry := mapping.ToModelJournalEntry(entry)
	entryQuery := `
		INSERT INTO journal_entries (
			journal_entry_id, tenant_id, legal_entity_id, journal_date, description,
			currency_code, source_type, doc_type, status,
			original_journal_entry_id, reversing_journal_entry_id,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := tx.Exec(ctx, entryQuery,
		modelEntry.JournalEntryID,
		modelEntry.TenantID,
		modelEntry.LegalEntityID,
		modelEntry.JournalDate,
		modelEntry.Description,
		modelEntry.CurrencyCode,
		modelEntry.SourceType,
		modelEntry.DocType,
		modelEntry.Status,
		modelEntry.OriginalJournalEntryID,
		modelEntry.ReversingJournalEntryID,
		modelEntry.CreatedAt,
		modelEntry.CreatedBy,
		modelEntry.LastUpdatedAt,
		modelEntry.LastUpdatedBy,
	)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to insert journal entry "+modelEntry.JournalEntryID, err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (
			journal_line_id, journal_entry_id, account_id, amount, side, source_ref,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, line := range lines {
		modelLine := mapping.ToModelJournalLine(line)
		batch.Queue(lineQuery,
			modelLine.JournalLineID,
			modelLine.JournalEntryID,
			modelLine.AccountID,
			modelLine.Amount,
			modelLine.Side,
			modelLine.SourceRef,
			modelLine.CreatedAt,
			modelLine.CreatedBy,
			modelLine.LastUpdatedAt,
			modelLine.LastUpdatedBy,
		)
	}
	results := tx.SendBatch(ctx, batch)
	for range lines {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return "", apperrors.NewAppError(500, "failed to insert journal lines for "+modelEntry.JournalEntryID, err)
		}
	}
	if err := results.Close(); err != nil {
		return "", apperrors.NewAppError(500, "failed to flush journal line batch", err)
	}

	return entry.JournalEntryID, nil
}

// MarkJournalReversedInTx marks the original entry REVERSED and cross-links
// the pair in both directions.
func (r *PgxJournalRepository) MarkJournalReversedInTx(ctx context.Context, tx pgx.Tx, originalEntryID, reversingEntryID, updatedBy string, updatedAt time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE journal_entries
		SET status = $1, reversing_journal_entry_id = $2, last_updated_at = $3, last_updated_by = $4
		WHERE journal_entry_id = $5 AND status = $6;
	`, string(domain.JournalReversed), reversingEntryID, updatedAt, updatedBy, originalEntryID, string(domain.JournalPosted))
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark journal entry reversed", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAppError(409, "journal entry "+originalEntryID+" is not in POSTED status", apperrors.ErrConflict)
	}

	_, err = tx.Exec(ctx, `
		UPDATE journal_entries
		SET original_journal_entry_id = $1, last_updated_at = $2, last_updated_by = $3
		WHERE journal_entry_id = $4;
	`, originalEntryID, updatedAt, updatedBy, reversingEntryID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to back-link reversing journal entry", err)
	}
	return nil
}

func (r *PgxJournalRepository) FindJournalEntryByID(ctx context.Context, tenantID, journalEntryID string) (*domain.JournalEntry, error) {
	query := `
		SELECT journal_entry_id, tenant_id, legal_entity_id, journal_date, description,
		       currency_code, source_type, doc_type, status,
		       original_journal_entry_id, reversing_journal_entry_id,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM journal_entries
		WHERE tenant_id = $1 AND journal_entry_id = $2;
	`
	var m models.JournalEntry
	err := r.Pool.QueryRow(ctx, query, tenantID, journalEntryID).Scan(
		&m.JournalEntryID, &m.TenantID, &m.LegalEntityID, &m.JournalDate, &m.Description,
		&m.CurrencyCode, &m.SourceType, &m.DocType, &m.Status,
		&m.OriginalJournalEntryID, &m.ReversingJournalEntryID,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("journal entry " + journalEntryID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query journal entry", err)
	}
	entry := mapping.ToDomainJournalEntry(m)
	return &entry, nil
}

func (r *PgxJournalRepository) FindJournalLinesByEntryID(ctx context.Context, journalEntryID string) ([]domain.JournalLine, error) {
	query := `
		SELECT journal_line_id, journal_entry_id, account_id, amount, side, source_ref,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM journal_lines
		WHERE journal_entry_id = $1
		ORDER BY journal_line_id;
	`
	rows, err := r.Pool.Query(ctx, query, journalEntryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query journal lines", err)
	}
	defer rows.Close()

	var lines []models.JournalLine
	for rows.Next() {
		var m models.JournalLine
		if err := rows.Scan(
			&m.JournalLineID, &m.JournalEntryID, &m.AccountID, &m.Amount, &m.Side, &m.SourceRef,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan journal line", err)
		}
		lines = append(lines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to read journal lines", err)
	}
	return mapping.ToDomainJournalLineSlice(lines), nil
}
