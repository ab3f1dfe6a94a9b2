package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SubledgerHQ/cari_backend/internal/apperrors"
	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	portssvc "github.com/SubledgerHQ/cari_backend/internal/core/ports/services"
	"github.com/SubledgerHQ/cari_backend/internal/core/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type FxResolverTestSuite struct {
	suite.Suite
	mockRateRepo *MockFxRateReader
	mockAuthz    *MockAuthorizer
	resolver     portssvc.FxResolverFacade

	tenantID      string
	legalEntityID string
	userID        string
	lookupDate    time.Time
}

func (suite *FxResolverTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockFxRateReader)
	suite.mockAuthz = new(MockAuthorizer)
	suite.resolver = services.NewFxResolver(suite.mockRateRepo, suite.mockAuthz, domain.FxFallbackNone, 7)

	suite.tenantID = uuid.NewString()
	suite.legalEntityID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.lookupDate = time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
}

func (suite *FxResolverTestSuite) lookup() portssvc.FxLookup {
	return portssvc.FxLookup{
		TenantID:      suite.tenantID,
		LegalEntityID: suite.legalEntityID,
		Date:          suite.lookupDate,
		FromCurrency:  "EUR",
		ToCurrency:    "TRY",
		ActorUserID:   suite.userID,
	}
}

func (suite *FxResolverTestSuite) spotRate(date time.Time, locked bool) *domain.FxRate {
	return &domain.FxRate{
		FxRateID:     uuid.NewString(),
		TenantID:     suite.tenantID,
		RateDate:     date,
		FromCurrency: "EUR",
		ToCurrency:   "TRY",
		RateType:     domain.RateTypeSpot,
		Rate:         decimal.RequireFromString("35.25"),
		IsLocked:     locked,
	}
}

func (suite *FxResolverTestSuite) TestResolve_SameCurrencyIsParity() {
	ctx := context.Background()
	lookup := suite.lookup()
	lookup.ToCurrency = "eur" // case-insensitive

	res, err := suite.resolver.Resolve(ctx, lookup)

	suite.Require().NoError(err)
	suite.True(res.Rate.Equal(decimal.NewFromInt(1)))
	suite.Equal(domain.FxSourceParity, res.Source)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindRate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *FxResolverTestSuite) TestResolve_ExactSpot() {
	ctx := context.Background()
	rate := suite.spotRate(suite.lookupDate, false)

	suite.mockRateRepo.On("FindRate", ctx, suite.tenantID, suite.lookupDate, "EUR", "TRY", domain.RateTypeSpot).Return(rate, nil).Once()

	res, err := suite.resolver.Resolve(ctx, suite.lookup())

	suite.Require().NoError(err)
	suite.True(res.Rate.Equal(rate.Rate))
	suite.Equal(domain.FxSourceExactSpot, res.Source)
	suite.False(res.Overridden)
}

func (suite *FxResolverTestSuite) TestResolve_NoRateAndFallbackDisabled() {
	ctx := context.Background()

	suite.mockRateRepo.On("FindRate", ctx, suite.tenantID, suite.lookupDate, "EUR", "TRY", domain.RateTypeSpot).
		Return(nil, apperrors.ErrNotFound).Once()

	res, err := suite.resolver.Resolve(ctx, suite.lookup())

	suite.Require().Error(err)
	suite.Nil(res)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "fallback is disabled")
}

func (suite *FxResolverTestSuite) TestResolve_PriorDateFallback() {
	ctx := context.Background()
	priorDate := suite.lookupDate.AddDate(0, 0, -3)
	rate := suite.spotRate(priorDate, false)

	suite.mockRateRepo.On("FindRate", ctx, suite.tenantID, suite.lookupDate, "EUR", "TRY", domain.RateTypeSpot).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindRate", ctx, suite.tenantID, suite.lookupDate.AddDate(0, 0, -1), "EUR", "TRY", domain.RateTypeSpot).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindRate", ctx, suite.tenantID, suite.lookupDate.AddDate(0, 0, -2), "EUR", "TRY", domain.RateTypeSpot).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRateRepo.On("FindRate", ctx, suite.tenantID, priorDate, "EUR", "TRY", domain.RateTypeSpot).
		Return(rate, nil).Once()

	lookup := suite.lookup()
	lookup.FallbackMode = domain.FxFallbackPriorDate

	res, err := suite.resolver.Resolve(ctx, lookup)

	suite.Require().NoError(err)
	suite.Equal(domain.FxSourcePriorSpot, res.Source)
	suite.Equal(priorDate, res.RateDate)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *FxResolverTestSuite) TestResolve_FallbackExhausted() {
	ctx := context.Background()

	suite.mockRateRepo.On("FindRate", ctx, suite.tenantID, mock.AnythingOfType("time.Time"), "EUR", "TRY", domain.RateTypeSpot).
		Return(nil, apperrors.ErrNotFound)

	lookup := suite.lookup()
	lookup.FallbackMode = domain.FxFallbackPriorDate
	lookup.FallbackMaxDays = 2

	res, err := suite.resolver.Resolve(ctx, lookup)

	suite.Require().Error(err)
	suite.Nil(res)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "fxFallbackMaxDays=2")
	// exact date plus 2 fallback days
	suite.mockRateRepo.AssertNumberOfCalls(suite.T(), "FindRate", 3)
}

func (suite *FxResolverTestSuite) TestResolve_LockedRateWithoutOverride() {
	ctx := context.Background()
	rate := suite.spotRate(suite.lookupDate, true)

	suite.mockRateRepo.On("FindRate", ctx, suite.tenantID, suite.lookupDate, "EUR", "TRY", domain.RateTypeSpot).Return(rate, nil).Once()

	res, err := suite.resolver.Resolve(ctx, suite.lookup())

	suite.Require().Error(err)
	suite.Nil(res)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), "useFxOverride")
}

func (suite *FxResolverTestSuite) TestResolve_LockedOverrideNeedsReason() {
	ctx := context.Background()
	rate := suite.spotRate(suite.lookupDate, true)

	suite.mockRateRepo.On("FindRate", ctx, suite.tenantID, suite.lookupDate, "EUR", "TRY", domain.RateTypeSpot).Return(rate, nil).Once()

	lookup := suite.lookup()
	lookup.UseOverride = true
	lookup.OverrideReason = "   "

	res, err := suite.resolver.Resolve(ctx, lookup)

	suite.Require().Error(err)
	suite.Nil(res)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *FxResolverTestSuite) TestResolve_LockedOverrideNeedsPermission() {
	ctx := context.Background()
	rate := suite.spotRate(suite.lookupDate, true)

	suite.mockRateRepo.On("FindRate", ctx, suite.tenantID, suite.lookupDate, "EUR", "TRY", domain.RateTypeSpot).Return(rate, nil).Once()
	suite.mockAuthz.On("AssertFxOverrideAccess", ctx, suite.userID, suite.tenantID, suite.legalEntityID).
		Return(apperrors.ErrForbidden).Once()

	lookup := suite.lookup()
	lookup.UseOverride = true
	lookup.OverrideReason = "month-end close with frozen rates"

	res, err := suite.resolver.Resolve(ctx, lookup)

	suite.Require().Error(err)
	suite.Nil(res)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *FxResolverTestSuite) TestResolve_LockedOverrideSucceeds() {
	ctx := context.Background()
	rate := suite.spotRate(suite.lookupDate, true)

	suite.mockRateRepo.On("FindRate", ctx, suite.tenantID, suite.lookupDate, "EUR", "TRY", domain.RateTypeSpot).Return(rate, nil).Once()
	suite.mockAuthz.On("AssertFxOverrideAccess", ctx, suite.userID, suite.tenantID, suite.legalEntityID).Return(nil).Once()

	lookup := suite.lookup()
	lookup.UseOverride = true
	lookup.OverrideReason = "month-end close with frozen rates"

	res, err := suite.resolver.Resolve(ctx, lookup)

	suite.Require().NoError(err)
	suite.True(res.Overridden)
	suite.Equal(domain.FxSourceExactSpot, res.Source)
	suite.mockAuthz.AssertExpectations(suite.T())
}

func TestFxResolverTestSuite(t *testing.T) {
	suite.Run(t, new(FxResolverTestSuite))
}
