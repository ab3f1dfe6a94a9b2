package repositories

import (
	"context"
	"time"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// JournalEntryReader defines read access to the ledger store.
type JournalEntryReader interface {
	FindJournalEntryByID(ctx context.Context, tenantID, journalEntryID string) (*domain.JournalEntry, error)
	FindJournalLinesByEntryID(ctx context.Context, journalEntryID string) ([]domain.JournalLine, error)
}

// JournalEntryWriter is the ledger-posting primitive. The store is append-only
// and enforces its own double-entry balance check as a second line of defense;
// unbalanced line sets are rejected regardless of what the caller validated.
type JournalEntryWriter interface {
	// InsertJournalEntryInTx creates a POSTED entry with its lines inside an
	// existing transaction and returns the journal entry id.
	InsertJournalEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine) (string, error)

	// MarkJournalReversedInTx marks the original entry REVERSED and
	// cross-links it with the reversing entry in both directions.
	MarkJournalReversedInTx(ctx context.Context, tx pgx.Tx, originalEntryID, reversingEntryID, updatedBy string, updatedAt time.Time) error
}

// JournalRepositoryFacade combines ledger store access.
type JournalRepositoryFacade interface {
	JournalEntryReader
	JournalEntryWriter
}
