package repositories

import (
	"context"
	"time"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
)

// DocumentReader defines read operations for subledger documents.
type DocumentReader interface {
	// FindDocumentByID retrieves a document scoped to a tenant. Foreign-tenant
	// ids surface as ErrNotFound.
	FindDocumentByID(ctx context.Context, tenantID, documentID string) (*domain.Document, error)

	// ListDocumentsByLegalEntity retrieves a paginated list of documents using
	// token-based pagination.
	ListDocumentsByLegalEntity(ctx context.Context, tenantID, legalEntityID string, limit int, nextToken *string) ([]domain.Document, *string, error)
}

// DocumentWriter defines write operations for subledger documents.
type DocumentWriter interface {
	// SaveDraft persists a new draft document.
	SaveDraft(ctx context.Context, doc domain.Document) error

	// UpdateDraft updates a draft in place. Returns ErrConflict when the row
	// is no longer in DRAFT status.
	UpdateDraft(ctx context.Context, doc domain.Document) error

	// CancelDraft transitions DRAFT -> CANCELLED under a row lock. Returns
	// ErrConflict when the row is no longer in DRAFT status.
	CancelDraft(ctx context.Context, tenantID, documentID, updatedBy string, updatedAt time.Time) error

	// PostDocument atomically posts a draft: locks the document row, verifies
	// it is still DRAFT, assigns the permanent number from the document-type
	// namespace, creates the journal entry with its lines, updates the
	// document and inserts the open item. Returns the assigned document
	// number. Concurrent posts of the same document serialize on the row
	// lock; the loser observes ErrConflict.
	PostDocument(ctx context.Context, doc domain.Document, entry domain.JournalEntry, lines []domain.JournalLine, item domain.OpenItem) (string, error)

	// ReverseDocument atomically reverses a posted document: locks the
	// original row, re-verifies reversibility, numbers and inserts the
	// reversal document and its mirror journal entry, marks the original
	// REVERSED and cross-links both journal entries. Returns the reversal
	// document number.
	ReverseDocument(ctx context.Context, original domain.Document, reversal domain.Document, entry domain.JournalEntry, lines []domain.JournalLine) (string, error)
}

// DocumentRepositoryFacade combines all document repository interfaces.
type DocumentRepositoryFacade interface {
	DocumentReader
	DocumentWriter
}

// DocumentRepositoryWithTx extends the facade with transaction capabilities.
type DocumentRepositoryWithTx interface {
	DocumentRepositoryFacade
	TransactionManager
}
