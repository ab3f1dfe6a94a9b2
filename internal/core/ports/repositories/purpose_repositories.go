package repositories

import (
	"context"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
)

// PurposeAccountReader defines read access to purpose-account configuration.
type PurposeAccountReader interface {
	// FindAccountID resolves a mapping key to a GL account id, ErrNotFound
	// when the key is unmapped.
	FindAccountID(ctx context.Context, tenantID, legalEntityID, mappingKey string) (string, error)

	ListMappings(ctx context.Context, tenantID, legalEntityID string) ([]domain.PurposeAccountMapping, error)
}

// PurposeAccountWriter covers the configuration surface.
type PurposeAccountWriter interface {
	UpsertMapping(ctx context.Context, mapping domain.PurposeAccountMapping) error
}

// PurposeAccountRepositoryFacade combines purpose-account access.
type PurposeAccountRepositoryFacade interface {
	PurposeAccountReader
	PurposeAccountWriter
}
