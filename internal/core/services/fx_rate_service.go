package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SubledgerHQ/cari_backend/internal/apperrors"
	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	portsrepo "github.com/SubledgerHQ/cari_backend/internal/core/ports/repositories"
	portssvc "github.com/SubledgerHQ/cari_backend/internal/core/ports/services"
	"github.com/SubledgerHQ/cari_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fxRateService is the rate table ingestion/read surface.
type fxRateService struct {
	rateRepo portsrepo.FxRateRepositoryFacade
}

// NewFxRateService creates a new FxRateSvcFacade.
func NewFxRateService(rateRepo portsrepo.FxRateRepositoryFacade) portssvc.FxRateSvcFacade {
	return &fxRateService{rateRepo: rateRepo}
}

var _ portssvc.FxRateSvcFacade = (*fxRateService)(nil)

func (s *fxRateService) CreateRate(ctx context.Context, tenantID string, req dto.CreateFxRateRequest, creatorUserID string) (*domain.FxRate, error) {
	from := strings.ToUpper(req.FromCurrency)
	to := strings.ToUpper(req.ToCurrency)
	if from == to {
		return nil, fmt.Errorf("%w: fromCurrency and toCurrency must differ", apperrors.ErrValidation)
	}
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: rate must be positive", apperrors.ErrValidation)
	}

	now := time.Now()
	rate := domain.FxRate{
		FxRateID:     uuid.NewString(),
		TenantID:     tenantID,
		RateDate:     req.RateDate.Truncate(24 * time.Hour),
		FromCurrency: from,
		ToCurrency:   to,
		RateType:     domain.RateTypeSpot,
		Rate:         req.Rate,
		IsLocked:     req.IsLocked,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.rateRepo.SaveRate(ctx, rate); err != nil {
		return nil, fmt.Errorf("failed to save fx rate: %w", err)
	}
	return &rate, nil
}

func (s *fxRateService) ListRates(ctx context.Context, tenantID string, params dto.ListFxRatesParams) ([]domain.FxRate, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.rateRepo.ListRates(ctx, tenantID, strings.ToUpper(params.FromCurrency), strings.ToUpper(params.ToCurrency), limit)
}
