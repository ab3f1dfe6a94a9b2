package pgsql

import (
	portsrepo "github.com/SubledgerHQ/cari_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every pgx-backed repository over one pool. The
// document and settlement writers receive their sibling repositories so they
// can compose one transaction per unit of work.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	sequenceRepo := newPgxSequenceRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool)
	openItemRepo := newPgxOpenItemRepository(dbPool)

	return portsrepo.RepositoryProvider{
		DocumentRepo:   newPgxDocumentRepository(dbPool, sequenceRepo, journalRepo, openItemRepo),
		OpenItemRepo:   openItemRepo,
		SettlementRepo: newPgxSettlementRepository(dbPool, openItemRepo, journalRepo),
		JournalRepo:    journalRepo,
		FxRateRepo:     newPgxFxRateRepository(dbPool),
		PurposeRepo:    newPgxPurposeAccountRepository(dbPool),
		SequenceRepo:   sequenceRepo,
		ScopeRepo:      newPgxScopeRepository(dbPool),
		PartyRepo:      newPgxPartyRepository(dbPool),
	}
}
