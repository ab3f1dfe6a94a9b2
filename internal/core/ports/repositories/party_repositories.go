package repositories

import (
	"context"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
)

// LegalEntityReader defines read access to legal entity reference data.
type LegalEntityReader interface {
	FindLegalEntityByID(ctx context.Context, tenantID, legalEntityID string) (*domain.LegalEntity, error)
}

// CounterpartyReader defines read access to counterparty reference data.
type CounterpartyReader interface {
	FindCounterpartyByID(ctx context.Context, tenantID, counterpartyID string) (*domain.Counterparty, error)
}

// PartyRepositoryFacade combines the reference data readers.
type PartyRepositoryFacade interface {
	LegalEntityReader
	CounterpartyReader
}
