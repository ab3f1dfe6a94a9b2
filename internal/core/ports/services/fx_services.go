package services

import (
	"context"
	"time"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	"github.com/SubledgerHQ/cari_backend/internal/dto"
)

// FxLookup describes one rate resolution request.
type FxLookup struct {
	TenantID        string
	LegalEntityID   string
	Date            time.Time
	FromCurrency    string
	ToCurrency      string // functional currency
	FallbackMode    domain.FxFallbackMode
	FallbackMaxDays int
	UseOverride     bool
	OverrideReason  string
	ActorUserID     string
}

// FxResolverFacade resolves posting/settlement rates. It is a pure decision
// function over the rate table; it never writes.
type FxResolverFacade interface {
	Resolve(ctx context.Context, lookup FxLookup) (*domain.FxResolution, error)
}

// FxRateSvcFacade is the rate ingestion/read surface.
type FxRateSvcFacade interface {
	CreateRate(ctx context.Context, tenantID string, req dto.CreateFxRateRequest, creatorUserID string) (*domain.FxRate, error)
	ListRates(ctx context.Context, tenantID string, params dto.ListFxRatesParams) ([]domain.FxRate, error)
}
