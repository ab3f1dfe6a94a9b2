package repositories

import (
	"context"
	"time"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
)

// FxRateReader defines read access to the tenant-scoped rate table.
type FxRateReader interface {
	// FindRate looks up the rate for an exact date and pair, ErrNotFound when
	// no row exists for that date.
	FindRate(ctx context.Context, tenantID string, rateDate time.Time, fromCurrency, toCurrency string, rateType domain.FxRateType) (*domain.FxRate, error)

	// ListRates returns the most recent rates for a pair, newest first.
	ListRates(ctx context.Context, tenantID, fromCurrency, toCurrency string, limit int) ([]domain.FxRate, error)
}

// FxRateWriter covers the rate ingestion surface.
type FxRateWriter interface {
	SaveRate(ctx context.Context, rate domain.FxRate) error
}

// FxRateRepositoryFacade combines rate table access.
type FxRateRepositoryFacade interface {
	FxRateReader
	FxRateWriter
}
