package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/SubledgerHQ/cari_backend/internal/apperrors"
	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	portsrepo "github.com/SubledgerHQ/cari_backend/internal/core/ports/repositories"
	"github.com/SubledgerHQ/cari_backend/internal/models"
	"github.com/SubledgerHQ/cari_backend/internal/utils/mapping"
	"github.com/SubledgerHQ/cari_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentColumns = `
	document_id, tenant_id, legal_entity_id, counterparty_id, direction,
	document_type, document_date, due_date, amount_txn, amount_base,
	currency_code, fx_rate, payment_term_id, status, sequence_namespace,
	document_number, posted_journal_entry_id, reversal_of_document_id,
	counterparty_name_snapshot, description,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxDocumentRepository persists documents and composes the atomic posting
// and reversal units of work from the sequence, journal and open item
// repositories' in-tx operations.
type PgxDocumentRepository struct {
	BaseRepository
	seqRepo      portsrepo.SequenceRepositoryFacade
	journalRepo  portsrepo.JournalRepositoryFacade
	openItemRepo portsrepo.OpenItemRepositoryFacade
}

// newPgxDocumentRepository creates a repository for document data.
func newPgxDocumentRepository(pool *pgxpool.Pool, seqRepo portsrepo.SequenceRepositoryFacade, journalRepo portsrepo.JournalRepositoryFacade, openItemRepo portsrepo.OpenItemRepositoryFacade) portsrepo.DocumentRepositoryWithTx {
	return &PgxDocumentRepository{
		BaseRepository: BaseRepository{Pool: pool},
		seqRepo:        seqRepo,
		journalRepo:    journalRepo,
		openItemRepo:   openItemRepo,
	}
}

var _ portsrepo.DocumentRepositoryWithTx = (*PgxDocumentRepository)(nil)

func scanDocument(row pgx.Row) (models.Document, error) {
	var m models.Document
	err := row.Scan(
		&m.DocumentID, &m.TenantID, &m.LegalEntityID, &m.CounterpartyID, &m.Direction,
		&m.DocumentType, &m.DocumentDate, &m.DueDate, &m.AmountTxn, &m.AmountBase,
		&m.CurrencyCode, &m.FxRate, &m.PaymentTermID, &m.Status, &m.SequenceNamespace,
		&m.DocumentNumber, &m.PostedJournalEntryID, &m.ReversalOfDocumentID,
		&m.CounterpartyNameSnapshot, &m.Description,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxDocumentRepository) FindDocumentByID(ctx context.Context, tenantID, documentID string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE tenant_id = $1 AND document_id = $2;`
	m, err := scanDocument(r.Pool.QueryRow(ctx, query, tenantID, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("document " + documentID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to query document", err)
	}
	doc := mapping.ToDomainDocument(m)
	return &doc, nil
}

func (r *PgxDocumentRepository) ListDocumentsByLegalEntity(ctx context.Context, tenantID, legalEntityID string, limit int, nextToken *string) ([]domain.Document, *string, error) {
	args := []any{tenantID, legalEntityID}
	query := `SELECT ` + documentColumns + ` FROM documents WHERE tenant_id = $1 AND legal_entity_id = $2`
	if nextToken != nil {
		createdAt, id, err := pagination.DecodeCursor(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid pagination token", err)
		}
		query += ` AND (created_at, document_id) < ($3, $4)`
		args = append(args, createdAt, id)
	}
	query += ` ORDER BY created_at DESC, document_id DESC LIMIT ` + itoa(limit+1) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to list documents", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		m, err := scanDocument(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan document", err)
		}
		docs = append(docs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to read documents", err)
	}

	var token *string
	if len(docs) > limit {
		docs = docs[:limit]
		last := docs[limit-1]
		t := pagination.EncodeCursor(last.CreatedAt, last.DocumentID)
		token = &t
	}
	return mapping.ToDomainDocumentSlice(docs), token, nil
}

func (r *PgxDocumentRepository) SaveDraft(ctx context.Context, doc domain.Document) error {
	m := mapping.ToModelDocument(doc)
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.DocumentID, m.TenantID, m.LegalEntityID, m.CounterpartyID, m.Direction,
		m.DocumentType, m.DocumentDate, m.DueDate, m.AmountTxn, m.AmountBase,
		m.CurrencyCode, m.FxRate, m.PaymentTermID, m.Status, m.SequenceNamespace,
		m.DocumentNumber, m.PostedJournalEntryID, m.ReversalOfDocumentID,
		m.CounterpartyNameSnapshot, m.Description,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert draft "+m.DocumentID, err)
	}
	return nil
}

// UpdateDraft rewrites the mutable draft columns. The status predicate makes
// the edit race-safe: a concurrently posted or cancelled document yields zero
// rows and a conflict.
func (r *PgxDocumentRepository) UpdateDraft(ctx context.Context, doc domain.Document) error {
	m := mapping.ToModelDocument(doc)
	query := `
		UPDATE documents
		SET counterparty_id = $1, document_date = $2, due_date = $3, amount_txn = $4,
		    amount_base = $5, currency_code = $6, fx_rate = $7, payment_term_id = $8,
		    description = $9, last_updated_at = $10, last_updated_by = $11
		WHERE tenant_id = $12 AND document_id = $13 AND status = $14;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.CounterpartyID, m.DocumentDate, m.DueDate, m.AmountTxn,
		m.AmountBase, m.CurrencyCode, m.FxRate, m.PaymentTermID,
		m.Description, m.LastUpdatedAt, m.LastUpdatedBy,
		m.TenantID, m.DocumentID, string(domain.DocStatusDraft),
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update draft "+m.DocumentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAppError(409, "document "+m.DocumentID+" is not in DRAFT status", apperrors.ErrConflict)
	}
	return nil
}

func (r *PgxDocumentRepository) CancelDraft(ctx context.Context, tenantID, documentID, updatedBy string, updatedAt time.Time) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE documents
		SET status = $1, last_updated_at = $2, last_updated_by = $3
		WHERE tenant_id = $4 AND document_id = $5 AND status = $6;
	`, string(domain.DocStatusCancelled), updatedAt, updatedBy, tenantID, documentID, string(domain.DocStatusDraft))
	if err != nil {
		return apperrors.NewAppError(500, "failed to cancel draft "+documentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAppError(409, "document "+documentID+" is not in DRAFT status", apperrors.ErrConflict)
	}
	return nil
}

// PostDocument is the atomic posting unit of work: the document row is locked,
// re-verified as DRAFT, renumbered into its type namespace, the journal entry
// and open item are created, and the document is rewritten as POSTED. If any
// step fails the document stays DRAFT and nothing else persists.
func (r *PgxDocumentRepository) PostDocument(ctx context.Context, doc domain.Document, entry domain.JournalEntry, lines []domain.JournalLine, item domain.OpenItem) (string, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer r.Rollback(ctx, tx)

	status, err := r.lockDocumentStatus(ctx, tx, doc.TenantID, doc.DocumentID)
	if err != nil {
		return "", err
	}
	if status != string(domain.DocStatusDraft) {
		return "", apperrors.NewAppError(409, "document "+doc.DocumentID+" is not in DRAFT status", apperrors.ErrConflict)
	}

	seq, err := r.seqRepo.NextNumberInTx(ctx, tx, doc.TenantID, doc.LegalEntityID, doc.SequenceNamespace)
	if err != nil {
		return "", err
	}
	number := domain.FormatDocumentNumber(doc.SequenceNamespace, seq)

	if _, err := r.journalRepo.InsertJournalEntryInTx(ctx, tx, entry, lines); err != nil {
		return "", err
	}

	m := mapping.ToModelDocument(doc)
	tag, err := tx.Exec(ctx, `
		UPDATE documents
		SET status = $1, sequence_namespace = $2, document_number = $3, fx_rate = $4,
		    amount_base = $5, counterparty_name_snapshot = $6, posted_journal_entry_id = $7,
		    last_updated_at = $8, last_updated_by = $9
		WHERE tenant_id = $10 AND document_id = $11;
	`, m.Status, m.SequenceNamespace, number, m.FxRate,
		m.AmountBase, m.CounterpartyNameSnapshot, m.PostedJournalEntryID,
		m.LastUpdatedAt, m.LastUpdatedBy, m.TenantID, m.DocumentID,
	)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to mark document posted", err)
	}
	if tag.RowsAffected() == 0 {
		return "", apperrors.NewAppError(500, "document "+doc.DocumentID+" vanished during posting", apperrors.ErrInternal)
	}

	if err := r.openItemRepo.InsertOpenItemInTx(ctx, tx, item); err != nil {
		return "", err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return "", err
	}
	return number, nil
}

// ReverseDocument is the atomic reversal unit of work: the original row is
// locked and re-verified, the reversal document gets its number and row, the
// mirror journal entry is inserted and cross-linked, and the original flips
// to REVERSED.
func (r *PgxDocumentRepository) ReverseDocument(ctx context.Context, original domain.Document, reversal domain.Document, entry domain.JournalEntry, lines []domain.JournalLine) (string, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer r.Rollback(ctx, tx)

	status, err := r.lockDocumentStatus(ctx, tx, original.TenantID, original.DocumentID)
	if err != nil {
		return "", err
	}
	if _, err := domain.NextDocumentStatus(domain.DocumentStatus(status), domain.EventReverse); err != nil {
		return "", apperrors.NewAppError(409, "document "+original.DocumentID+" cannot be reversed: "+err.Error(), apperrors.ErrConflict)
	}

	seq, err := r.seqRepo.NextNumberInTx(ctx, tx, reversal.TenantID, reversal.LegalEntityID, reversal.SequenceNamespace)
	if err != nil {
		return "", err
	}
	number := domain.FormatDocumentNumber(reversal.SequenceNamespace, seq)
	reversal.DocumentNumber = number

	m := mapping.ToModelDocument(reversal)
	_, err = tx.Exec(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24);
	`,
		m.DocumentID, m.TenantID, m.LegalEntityID, m.CounterpartyID, m.Direction,
		m.DocumentType, m.DocumentDate, m.DueDate, m.AmountTxn, m.AmountBase,
		m.CurrencyCode, m.FxRate, m.PaymentTermID, m.Status, m.SequenceNamespace,
		m.DocumentNumber, m.PostedJournalEntryID, m.ReversalOfDocumentID,
		m.CounterpartyNameSnapshot, m.Description,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to insert reversal document "+m.DocumentID, err)
	}

	if _, err := r.journalRepo.InsertJournalEntryInTx(ctx, tx, entry, lines); err != nil {
		return "", err
	}
	if entry.OriginalJournalEntryID != nil {
		if err := r.journalRepo.MarkJournalReversedInTx(ctx, tx, *entry.OriginalJournalEntryID, entry.JournalEntryID, reversal.CreatedBy, reversal.CreatedAt); err != nil {
			return "", err
		}
	}

	tag, err := tx.Exec(ctx, `
		UPDATE documents
		SET status = $1, last_updated_at = $2, last_updated_by = $3
		WHERE tenant_id = $4 AND document_id = $5;
	`, string(domain.DocStatusReversed), reversal.CreatedAt, reversal.CreatedBy, original.TenantID, original.DocumentID)
	if err != nil {
		return "", apperrors.NewAppError(500, "failed to mark original document reversed", err)
	}
	if tag.RowsAffected() == 0 {
		return "", apperrors.NewAppError(500, "document "+original.DocumentID+" vanished during reversal", apperrors.ErrInternal)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return "", err
	}
	return number, nil
}

// lockDocumentStatus takes the row lock and returns the current status.
func (r *PgxDocumentRepository) lockDocumentStatus(ctx context.Context, tx pgx.Tx, tenantID, documentID string) (string, error) {
	var status string
	err := tx.QueryRow(ctx, `
		SELECT status FROM documents WHERE tenant_id = $1 AND document_id = $2 FOR UPDATE;
	`, tenantID, documentID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFoundError("document " + documentID + " not found")
		}
		return "", apperrors.NewAppError(500, "failed to lock document", err)
	}
	return status, nil
}
