package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SubledgerHQ/cari_backend/internal/apperrors"
	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	portsrepo "github.com/SubledgerHQ/cari_backend/internal/core/ports/repositories"
	portssvc "github.com/SubledgerHQ/cari_backend/internal/core/ports/services"
	"github.com/SubledgerHQ/cari_backend/internal/middleware"
	"github.com/shopspring/decimal"
)

// fxResolver resolves posting/settlement exchange rates against the tenant's
// rate table. Precedence: parity, exact-date spot (locked rates need an
// explicit, separately-permissioned override), then day-by-day prior-date
// fallback when enabled.
type fxResolver struct {
	rateRepo portsrepo.FxRateReader
	authz    portssvc.ScopeAuthorizer

	// tenant-wide defaults, overridable per request
	defaultFallbackMode    domain.FxFallbackMode
	defaultFallbackMaxDays int
}

// NewFxResolver creates a new FxResolverFacade with the given fallback defaults.
func NewFxResolver(rateRepo portsrepo.FxRateReader, authz portssvc.ScopeAuthorizer, defaultMode domain.FxFallbackMode, defaultMaxDays int) portssvc.FxResolverFacade {
	return &fxResolver{
		rateRepo:               rateRepo,
		authz:                  authz,
		defaultFallbackMode:    defaultMode,
		defaultFallbackMaxDays: defaultMaxDays,
	}
}

var _ portssvc.FxResolverFacade = (*fxResolver)(nil)

func (r *fxResolver) Resolve(ctx context.Context, lookup portssvc.FxLookup) (*domain.FxResolution, error) {
	from := strings.ToUpper(lookup.FromCurrency)
	to := strings.ToUpper(lookup.ToCurrency)

	if from == to {
		return &domain.FxResolution{
			Rate:     decimal.NewFromInt(1),
			RateDate: lookup.Date,
			Source:   domain.FxSourceParity,
		}, nil
	}

	mode := lookup.FallbackMode
	if mode == "" {
		mode = r.defaultFallbackMode
	}
	maxDays := lookup.FallbackMaxDays
	if maxDays <= 0 {
		maxDays = r.defaultFallbackMaxDays
	}

	rate, err := r.rateRepo.FindRate(ctx, lookup.TenantID, lookup.Date, from, to, domain.RateTypeSpot)
	if err == nil {
		return r.useRate(ctx, lookup, rate, domain.FxSourceExactSpot)
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up rate %s/%s: %w", from, to, err)
	}

	if mode != domain.FxFallbackPriorDate {
		return nil, fmt.Errorf("%w: no SPOT rate for %s/%s on %s and prior-date fallback is disabled",
			apperrors.ErrValidation, from, to, lookup.Date.Format("2006-01-02"))
	}

	for day := 1; day <= maxDays; day++ {
		priorDate := lookup.Date.AddDate(0, 0, -day)
		rate, err = r.rateRepo.FindRate(ctx, lookup.TenantID, priorDate, from, to, domain.RateTypeSpot)
		if err == nil {
			return r.useRate(ctx, lookup, rate, domain.FxSourcePriorSpot)
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up rate %s/%s: %w", from, to, err)
		}
	}

	// Name the exhausted parameter so the caller knows which knob to widen.
	return nil, fmt.Errorf("%w: no SPOT rate for %s/%s on or within fxFallbackMaxDays=%d before %s",
		apperrors.ErrValidation, from, to, maxDays, lookup.Date.Format("2006-01-02"))
}

// useRate applies the locked-rate override rules to a found rate row.
func (r *fxResolver) useRate(ctx context.Context, lookup portssvc.FxLookup, rate *domain.FxRate, source domain.FxSource) (*domain.FxResolution, error) {
	if !rate.IsLocked {
		return &domain.FxResolution{Rate: rate.Rate, RateDate: rate.RateDate, Source: source}, nil
	}

	if !lookup.UseOverride {
		return nil, fmt.Errorf("%w: rate for %s/%s on %s is locked; set useFxOverride with a reason to post against it",
			apperrors.ErrValidation, rate.FromCurrency, rate.ToCurrency, rate.RateDate.Format("2006-01-02"))
	}
	if strings.TrimSpace(lookup.OverrideReason) == "" {
		return nil, fmt.Errorf("%w: fxOverrideReason is required when useFxOverride is set", apperrors.ErrValidation)
	}
	if err := r.authz.AssertFxOverrideAccess(ctx, lookup.ActorUserID, lookup.TenantID, lookup.LegalEntityID); err != nil {
		return nil, err
	}

	// Every override posting gets its own audit trail entry.
	middleware.GetLoggerFromCtx(ctx).Warn("Locked FX rate used via override",
		"userID", lookup.ActorUserID,
		"legalEntityID", lookup.LegalEntityID,
		"rateDate", rate.RateDate.Format("2006-01-02"),
		"pair", rate.FromCurrency+"/"+rate.ToCurrency,
		"rate", rate.Rate.String(),
		"reason", lookup.OverrideReason,
	)

	return &domain.FxResolution{Rate: rate.Rate, RateDate: rate.RateDate, Source: source, Overridden: true}, nil
}
