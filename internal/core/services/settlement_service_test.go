package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SubledgerHQ/cari_backend/internal/apperrors"
	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	portsrepo "github.com/SubledgerHQ/cari_backend/internal/core/ports/repositories"
	portssvc "github.com/SubledgerHQ/cari_backend/internal/core/ports/services"
	"github.com/SubledgerHQ/cari_backend/internal/core/services"
	"github.com/SubledgerHQ/cari_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type SettlementServiceTestSuite struct {
	suite.Suite
	mockSettlementRepo *MockSettlementRepository
	mockOpenItemRepo   *MockOpenItemRepository
	mockPartyRepo      *MockPartyRepository
	mockPurposes       *MockPurposeResolver
	mockFxResolver     *MockFxResolver
	mockAuthz          *MockAuthorizer
	service            portssvc.SettlementSvcFacade

	tenantID       string
	legalEntityID  string
	counterpartyID string
	userID         string
	legalEntity    domain.LegalEntity
	settleDate     time.Time
}

func (suite *SettlementServiceTestSuite) SetupTest() {
	suite.mockSettlementRepo = new(MockSettlementRepository)
	suite.mockOpenItemRepo = new(MockOpenItemRepository)
	suite.mockPartyRepo = new(MockPartyRepository)
	suite.mockPurposes = new(MockPurposeResolver)
	suite.mockFxResolver = new(MockFxResolver)
	suite.mockAuthz = new(MockAuthorizer)
	suite.service = services.NewSettlementService(
		suite.mockSettlementRepo, suite.mockOpenItemRepo, suite.mockPartyRepo,
		suite.mockPurposes, suite.mockFxResolver, suite.mockAuthz,
	)

	suite.tenantID = uuid.NewString()
	suite.legalEntityID = uuid.NewString()
	suite.counterpartyID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.legalEntity = domain.LegalEntity{
		LegalEntityID:      suite.legalEntityID,
		TenantID:           suite.tenantID,
		FunctionalCurrency: "USD",
		IsActive:           true,
	}
	suite.settleDate = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	suite.mockAuthz.On("AssertScopeAccess", mock.Anything, suite.userID, suite.tenantID, suite.legalEntityID, domain.RoleMember).Return(nil).Maybe()
}

func (suite *SettlementServiceTestSuite) openItem(residual int64) domain.OpenItem {
	amount := decimal.NewFromInt(residual)
	return domain.OpenItem{
		OpenItemID:     uuid.NewString(),
		TenantID:       suite.tenantID,
		LegalEntityID:  suite.legalEntityID,
		DocumentID:     uuid.NewString(),
		CounterpartyID: suite.counterpartyID,
		Direction:      domain.Receivable,
		CurrencyCode:   "USD",
		AmountOrigTxn:  amount,
		AmountOrigBase: amount,
		ResidualTxn:    amount,
		ResidualBase:   amount,
		Status:         domain.OpenItemOpen,
	}
}

func (suite *SettlementServiceTestSuite) baseRequest() dto.ApplySettlementRequest {
	return dto.ApplySettlementRequest{
		LegalEntityID:     suite.legalEntityID,
		CounterpartyID:    suite.counterpartyID,
		SettlementDate:    suite.settleDate,
		CurrencyCode:      "USD",
		PaymentChannel:    domain.ChannelManual,
		IdempotencyKey:    uuid.NewString(),
		AmountIncomingTxn: decimal.NewFromInt(100),
	}
}

func (suite *SettlementServiceTestSuite) expectNoStoredBatch(key string) {
	suite.mockSettlementRepo.On("FindBatchByIdempotencyKey", mock.Anything, suite.tenantID, key).
		Return(nil, apperrors.ErrNotFound).Once()
}

func (suite *SettlementServiceTestSuite) expectResolutionChain(pctx domain.PurposeContext) {
	suite.mockPartyRepo.On("FindLegalEntityByID", mock.Anything, suite.tenantID, suite.legalEntityID).Return(&suite.legalEntity, nil).Once()
	suite.mockFxResolver.On("Resolve", mock.Anything, mock.AnythingOfType("services.FxLookup")).Return(parityResolution(suite.settleDate), nil).Once()
	suite.mockPurposes.On("ResolveAccount", mock.Anything, suite.tenantID, suite.legalEntityID, domain.PurposeARControl, pctx).Return("acct-control", nil).Once()
	suite.mockPurposes.On("ResolveAccount", mock.Anything, suite.tenantID, suite.legalEntityID, domain.PurposeAROffset, pctx).Return("acct-offset", nil).Once()
}

func (suite *SettlementServiceTestSuite) TestApply_FullSettle() {
	ctx := context.Background()
	item := suite.openItem(100)
	req := suite.baseRequest()
	req.Allocations = []dto.AllocationInput{{OpenItemID: item.OpenItemID, AmountTxn: decimal.NewFromInt(100)}}

	suite.expectNoStoredBatch(req.IdempotencyKey)
	suite.mockPartyRepo.On("FindLegalEntityByID", ctx, suite.tenantID, suite.legalEntityID).Return(&suite.legalEntity, nil).Once()
	suite.mockOpenItemRepo.On("FindOpenItemsByIDs", ctx, suite.tenantID, []string{item.OpenItemID}).
		Return(map[string]domain.OpenItem{item.OpenItemID: item}, nil).Once()
	suite.mockFxResolver.On("Resolve", ctx, mock.AnythingOfType("services.FxLookup")).Return(parityResolution(suite.settleDate), nil).Once()
	suite.mockPurposes.On("ResolveAccount", ctx, suite.tenantID, suite.legalEntityID, domain.PurposeARControl, domain.ContextManual).Return("acct-control", nil).Once()
	suite.mockPurposes.On("ResolveAccount", ctx, suite.tenantID, suite.legalEntityID, domain.PurposeAROffset, domain.ContextManual).Return("acct-offset", nil).Once()

	var capturedPlan portsrepo.SettlementPlan
	suite.mockSettlementRepo.On("ApplySettlement", ctx, mock.AnythingOfType("repositories.SettlementPlan")).
		Run(func(args mock.Arguments) {
			capturedPlan = args.Get(1).(portsrepo.SettlementPlan)
		}).
		Return(&portsrepo.SettlementResult{Batch: &domain.SettlementBatch{
			SettlementID: "stub", TenantID: suite.tenantID, LegalEntityID: suite.legalEntityID,
		}}, nil).Once()

	result, err := suite.service.ApplySettlement(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(result.Row)
	suite.False(result.IdempotentReplay)

	suite.Require().Len(capturedPlan.Allocations, 1)
	alloc := capturedPlan.Allocations[0]
	suite.True(alloc.AmountTxn.Equal(decimal.NewFromInt(100)))
	// Full settle snaps the base reduction to the item's residual base.
	suite.True(alloc.AmountBase.Equal(item.ResidualBase))
	suite.Nil(capturedPlan.UnappliedCash)
	suite.Empty(capturedPlan.ConsumeUnapplied)
	suite.True(capturedPlan.Batch.FxRateDate.Equal(suite.settleDate))

	// Cash in for a receivable: debit offset, credit control.
	suite.Require().NotNil(capturedPlan.Entry)
	suite.Equal(domain.SourceCariSettlement, capturedPlan.Entry.SourceType)
	suite.Require().Len(capturedPlan.Lines, 2)
	suite.Equal("acct-offset", capturedPlan.Lines[0].AccountID)
	suite.Equal(domain.Debit, capturedPlan.Lines[0].Side)
	suite.Equal("acct-control", capturedPlan.Lines[1].AccountID)
	suite.Equal(domain.Credit, capturedPlan.Lines[1].Side)
}

func (suite *SettlementServiceTestSuite) TestApply_OverCollectionParksRemainder() {
	ctx := context.Background()
	item := suite.openItem(100)
	req := suite.baseRequest()
	req.AmountIncomingTxn = decimal.NewFromInt(150)
	req.Allocations = []dto.AllocationInput{{OpenItemID: item.OpenItemID, AmountTxn: decimal.NewFromInt(100)}}

	suite.expectNoStoredBatch(req.IdempotencyKey)
	suite.mockOpenItemRepo.On("FindOpenItemsByIDs", ctx, suite.tenantID, []string{item.OpenItemID}).
		Return(map[string]domain.OpenItem{item.OpenItemID: item}, nil).Once()
	suite.expectResolutionChain(domain.ContextManual)

	var capturedPlan portsrepo.SettlementPlan
	suite.mockSettlementRepo.On("ApplySettlement", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			capturedPlan = args.Get(1).(portsrepo.SettlementPlan)
		}).
		Return(&portsrepo.SettlementResult{Batch: &domain.SettlementBatch{SettlementID: "stub", TenantID: suite.tenantID}}, nil).Once()

	result, err := suite.service.ApplySettlement(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(capturedPlan.UnappliedCash)
	suite.True(capturedPlan.UnappliedCash.AmountOriginal.Equal(decimal.NewFromInt(50)))
	suite.True(capturedPlan.UnappliedCash.AmountResidual.Equal(decimal.NewFromInt(50)))
	suite.Equal(domain.UnappliedOpen, capturedPlan.UnappliedCash.Status)
	suite.Require().NotNil(result.UnappliedCash)
	suite.True(result.UnappliedCash.AmountResidual.Equal(decimal.NewFromInt(50)))
}

func (suite *SettlementServiceTestSuite) TestApply_IdempotentReplayByKey() {
	ctx := context.Background()
	req := suite.baseRequest()
	priorRateDate := suite.settleDate.AddDate(0, 0, -2)
	stored := &domain.SettlementBatch{
		SettlementID:   uuid.NewString(),
		TenantID:       suite.tenantID,
		LegalEntityID:  suite.legalEntityID,
		SettlementDate: suite.settleDate,
		IdempotencyKey: req.IdempotencyKey,
		FxRate:         decimal.RequireFromString("35.25"),
		FxRateDate:     priorRateDate,
		FxSource:       domain.FxSourcePriorSpot,
	}

	suite.mockSettlementRepo.On("FindBatchByIdempotencyKey", ctx, suite.tenantID, req.IdempotencyKey).Return(stored, nil).Once()
	suite.mockSettlementRepo.On("FindAllocationsBySettlementID", ctx, suite.tenantID, stored.SettlementID).
		Return([]domain.SettlementAllocation{}, nil).Once()
	suite.mockSettlementRepo.On("FindUnappliedCashBySettlementID", ctx, suite.tenantID, stored.SettlementID).
		Return(nil, apperrors.ErrNotFound).Once()

	result, err := suite.service.ApplySettlement(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(result.IdempotentReplay)
	suite.Equal(stored.SettlementID, result.Row.SettlementID)
	// The replayed resolution reports the rate's own date, not the settlement date.
	suite.Require().NotNil(result.Fx)
	suite.Equal(priorRateDate, result.Fx.RateDate)
	suite.Equal(domain.FxSourcePriorSpot, result.Fx.Source)
	suite.mockSettlementRepo.AssertNotCalled(suite.T(), "ApplySettlement", mock.Anything, mock.Anything)
}

func (suite *SettlementServiceTestSuite) TestApply_IdempotentReplayByCashTransaction() {
	ctx := context.Background()
	req := suite.baseRequest()
	cashTxn := "bank-stmt-42"
	req.CashTransactionID = &cashTxn
	stored := &domain.SettlementBatch{
		SettlementID:      uuid.NewString(),
		TenantID:          suite.tenantID,
		LegalEntityID:     suite.legalEntityID,
		CashTransactionID: &cashTxn,
	}

	suite.expectNoStoredBatch(req.IdempotencyKey)
	suite.mockSettlementRepo.On("FindBatchByCashTransactionID", ctx, suite.tenantID, cashTxn).Return(stored, nil).Once()
	suite.mockSettlementRepo.On("FindAllocationsBySettlementID", ctx, suite.tenantID, stored.SettlementID).
		Return([]domain.SettlementAllocation{}, nil).Once()
	suite.mockSettlementRepo.On("FindUnappliedCashBySettlementID", ctx, suite.tenantID, stored.SettlementID).
		Return(nil, apperrors.ErrNotFound).Once()

	result, err := suite.service.ApplySettlement(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(result.IdempotentReplay)
	suite.mockSettlementRepo.AssertNotCalled(suite.T(), "ApplySettlement", mock.Anything, mock.Anything)
}

func (suite *SettlementServiceTestSuite) TestApply_ResidualExceeded() {
	ctx := context.Background()
	item := suite.openItem(100)
	req := suite.baseRequest()
	req.AmountIncomingTxn = decimal.NewFromInt(150)
	req.Allocations = []dto.AllocationInput{{OpenItemID: item.OpenItemID, AmountTxn: decimal.NewFromInt(150)}}

	suite.expectNoStoredBatch(req.IdempotencyKey)
	suite.mockPartyRepo.On("FindLegalEntityByID", ctx, suite.tenantID, suite.legalEntityID).Return(&suite.legalEntity, nil).Once()
	suite.mockOpenItemRepo.On("FindOpenItemsByIDs", ctx, suite.tenantID, []string{item.OpenItemID}).
		Return(map[string]domain.OpenItem{item.OpenItemID: item}, nil).Once()

	result, err := suite.service.ApplySettlement(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), services.ErrResidualExceeded.Error())
}

func (suite *SettlementServiceTestSuite) TestApply_DuplicateAllocationTarget() {
	ctx := context.Background()
	item := suite.openItem(100)
	req := suite.baseRequest()
	req.Allocations = []dto.AllocationInput{
		{OpenItemID: item.OpenItemID, AmountTxn: decimal.NewFromInt(40)},
		{OpenItemID: item.OpenItemID, AmountTxn: decimal.NewFromInt(60)},
	}

	suite.expectNoStoredBatch(req.IdempotencyKey)
	suite.mockPartyRepo.On("FindLegalEntityByID", ctx, suite.tenantID, suite.legalEntityID).Return(&suite.legalEntity, nil).Once()

	result, err := suite.service.ApplySettlement(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), services.ErrDuplicateAllocation.Error())
}

func (suite *SettlementServiceTestSuite) TestApply_NoTargetParksAsUnapplied() {
	ctx := context.Background()
	req := suite.baseRequest()

	suite.expectNoStoredBatch(req.IdempotencyKey)
	suite.mockPartyRepo.On("FindLegalEntityByID", ctx, suite.tenantID, suite.legalEntityID).Return(&suite.legalEntity, nil).Once()

	var capturedRow domain.UnappliedCash
	suite.mockSettlementRepo.On("InsertUnappliedCash", ctx, mock.AnythingOfType("domain.UnappliedCash")).
		Run(func(args mock.Arguments) {
			capturedRow = args.Get(1).(domain.UnappliedCash)
		}).Return(nil).Once()

	result, err := suite.service.ApplySettlement(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Nil(result.Row)
	suite.Empty(result.Allocations)
	suite.Require().NotNil(result.UnappliedCash)
	suite.True(capturedRow.AmountOriginal.Equal(decimal.NewFromInt(100)))
	suite.mockSettlementRepo.AssertNotCalled(suite.T(), "ApplySettlement", mock.Anything, mock.Anything)
	suite.mockFxResolver.AssertNotCalled(suite.T(), "Resolve", mock.Anything, mock.Anything)
}

func (suite *SettlementServiceTestSuite) TestApply_ZeroAmountOnAccountWithoutTargetsIsNoOp() {
	ctx := context.Background()
	req := suite.baseRequest()
	req.AmountIncomingTxn = decimal.Zero
	req.UseUnappliedCash = true

	suite.expectNoStoredBatch(req.IdempotencyKey)
	suite.mockPartyRepo.On("FindLegalEntityByID", ctx, suite.tenantID, suite.legalEntityID).Return(&suite.legalEntity, nil).Once()
	suite.mockSettlementRepo.On("FindOpenUnappliedCash", ctx, suite.tenantID, suite.legalEntityID, suite.counterpartyID, "USD").
		Return([]domain.UnappliedCash{}, nil).Once()

	result, err := suite.service.ApplySettlement(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Nil(result.Row)
	suite.Nil(result.UnappliedCash)
	suite.Empty(result.Allocations)
	suite.mockSettlementRepo.AssertNotCalled(suite.T(), "InsertUnappliedCash", mock.Anything, mock.Anything)
	suite.mockSettlementRepo.AssertNotCalled(suite.T(), "ApplySettlement", mock.Anything, mock.Anything)
}

func (suite *SettlementServiceTestSuite) TestApply_PartialAllocationBaseCappedAtResidualBase() {
	ctx := context.Background()
	item := suite.openItem(100)
	item.AmountOrigTxn = decimal.NewFromInt(300)
	item.AmountOrigBase = decimal.NewFromInt(100)
	item.ResidualTxn = decimal.NewFromInt(100)
	// Earlier rounded-up partial allocations left less base than proration asks for.
	item.ResidualBase = decimal.RequireFromString("32.90")
	req := suite.baseRequest()
	req.AmountIncomingTxn = decimal.NewFromInt(99)
	req.Allocations = []dto.AllocationInput{{OpenItemID: item.OpenItemID, AmountTxn: decimal.NewFromInt(99)}}

	suite.expectNoStoredBatch(req.IdempotencyKey)
	suite.mockOpenItemRepo.On("FindOpenItemsByIDs", ctx, suite.tenantID, []string{item.OpenItemID}).
		Return(map[string]domain.OpenItem{item.OpenItemID: item}, nil).Once()
	suite.expectResolutionChain(domain.ContextManual)

	var capturedPlan portsrepo.SettlementPlan
	suite.mockSettlementRepo.On("ApplySettlement", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			capturedPlan = args.Get(1).(portsrepo.SettlementPlan)
		}).
		Return(&portsrepo.SettlementResult{Batch: &domain.SettlementBatch{SettlementID: "stub", TenantID: suite.tenantID}}, nil).Once()

	_, err := suite.service.ApplySettlement(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(capturedPlan.Allocations, 1)
	// Proration would take 33.00; the cap holds the delta to the remaining base.
	suite.True(capturedPlan.Allocations[0].AmountBase.Equal(item.ResidualBase))
}

func (suite *SettlementServiceTestSuite) TestApply_ZeroAmountWithoutUnappliedFails() {
	ctx := context.Background()
	req := suite.baseRequest()
	req.AmountIncomingTxn = decimal.Zero

	result, err := suite.service.ApplySettlement(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), services.ErrNothingToApply.Error())
}

func (suite *SettlementServiceTestSuite) TestApply_OnAccountConsumesOldestFirst() {
	ctx := context.Background()
	item := suite.openItem(80)
	req := suite.baseRequest()
	req.AmountIncomingTxn = decimal.Zero
	req.UseUnappliedCash = true
	req.Allocations = []dto.AllocationInput{{OpenItemID: item.OpenItemID, AmountTxn: decimal.NewFromInt(80)}}

	older := domain.UnappliedCash{
		UnappliedCashID: uuid.NewString(),
		TenantID:        suite.tenantID,
		CurrencyCode:    "USD",
		AmountOriginal:  decimal.NewFromInt(50),
		AmountResidual:  decimal.NewFromInt(50),
		Status:          domain.UnappliedOpen,
	}
	newer := domain.UnappliedCash{
		UnappliedCashID: uuid.NewString(),
		TenantID:        suite.tenantID,
		CurrencyCode:    "USD",
		AmountOriginal:  decimal.NewFromInt(50),
		AmountResidual:  decimal.NewFromInt(50),
		Status:          domain.UnappliedOpen,
	}

	suite.expectNoStoredBatch(req.IdempotencyKey)
	suite.mockPartyRepo.On("FindLegalEntityByID", ctx, suite.tenantID, suite.legalEntityID).Return(&suite.legalEntity, nil).Once()
	suite.mockSettlementRepo.On("FindOpenUnappliedCash", ctx, suite.tenantID, suite.legalEntityID, suite.counterpartyID, "USD").
		Return([]domain.UnappliedCash{older, newer}, nil).Once()
	suite.mockOpenItemRepo.On("FindOpenItemsByIDs", ctx, suite.tenantID, []string{item.OpenItemID}).
		Return(map[string]domain.OpenItem{item.OpenItemID: item}, nil).Once()
	suite.mockFxResolver.On("Resolve", ctx, mock.AnythingOfType("services.FxLookup")).Return(parityResolution(suite.settleDate), nil).Once()
	suite.mockPurposes.On("ResolveAccount", ctx, suite.tenantID, suite.legalEntityID, domain.PurposeARControl, domain.ContextOnAccount).Return("acct-control", nil).Once()
	suite.mockPurposes.On("ResolveAccount", ctx, suite.tenantID, suite.legalEntityID, domain.PurposeAROffset, domain.ContextOnAccount).Return("acct-liability", nil).Once()

	var capturedPlan portsrepo.SettlementPlan
	suite.mockSettlementRepo.On("ApplySettlement", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			capturedPlan = args.Get(1).(portsrepo.SettlementPlan)
		}).
		Return(&portsrepo.SettlementResult{Batch: &domain.SettlementBatch{SettlementID: "stub", TenantID: suite.tenantID}}, nil).Once()

	_, err := suite.service.ApplySettlement(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(capturedPlan.ConsumeUnapplied, 2)
	suite.Equal(older.UnappliedCashID, capturedPlan.ConsumeUnapplied[0].UnappliedCashID)
	suite.True(capturedPlan.ConsumeUnapplied[0].Amount.Equal(decimal.NewFromInt(50)))
	suite.Equal(newer.UnappliedCashID, capturedPlan.ConsumeUnapplied[1].UnappliedCashID)
	suite.True(capturedPlan.ConsumeUnapplied[1].Amount.Equal(decimal.NewFromInt(30)))
	suite.Nil(capturedPlan.UnappliedCash)
}

func (suite *SettlementServiceTestSuite) TestApply_OnAccountInsufficientFunds() {
	ctx := context.Background()
	item := suite.openItem(120)
	req := suite.baseRequest()
	req.AmountIncomingTxn = decimal.Zero
	req.UseUnappliedCash = true
	req.Allocations = []dto.AllocationInput{{OpenItemID: item.OpenItemID, AmountTxn: decimal.NewFromInt(120)}}

	row := domain.UnappliedCash{
		UnappliedCashID: uuid.NewString(),
		TenantID:        suite.tenantID,
		CurrencyCode:    "USD",
		AmountOriginal:  decimal.NewFromInt(100),
		AmountResidual:  decimal.NewFromInt(100),
		Status:          domain.UnappliedOpen,
	}

	suite.expectNoStoredBatch(req.IdempotencyKey)
	suite.mockPartyRepo.On("FindLegalEntityByID", ctx, suite.tenantID, suite.legalEntityID).Return(&suite.legalEntity, nil).Once()
	suite.mockSettlementRepo.On("FindOpenUnappliedCash", ctx, suite.tenantID, suite.legalEntityID, suite.counterpartyID, "USD").
		Return([]domain.UnappliedCash{row}, nil).Once()
	suite.mockOpenItemRepo.On("FindOpenItemsByIDs", ctx, suite.tenantID, []string{item.OpenItemID}).
		Return(map[string]domain.OpenItem{item.OpenItemID: item}, nil).Once()

	result, err := suite.service.ApplySettlement(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Contains(err.Error(), services.ErrInsufficientUnapplied.Error())
}

func (suite *SettlementServiceTestSuite) TestApply_AutoAllocateOldestFirst() {
	ctx := context.Background()
	first := suite.openItem(100)
	second := suite.openItem(100)
	req := suite.baseRequest()
	req.AmountIncomingTxn = decimal.NewFromInt(150)
	req.AutoAllocate = true

	suite.expectNoStoredBatch(req.IdempotencyKey)
	suite.mockOpenItemRepo.On("ListOpenItemsByCounterparty", ctx, suite.tenantID, suite.legalEntityID, suite.counterpartyID, true, 100, (*string)(nil)).
		Return([]domain.OpenItem{first, second}, nil, nil).Once()
	suite.expectResolutionChain(domain.ContextManual)

	var capturedPlan portsrepo.SettlementPlan
	suite.mockSettlementRepo.On("ApplySettlement", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			capturedPlan = args.Get(1).(portsrepo.SettlementPlan)
		}).
		Return(&portsrepo.SettlementResult{Batch: &domain.SettlementBatch{SettlementID: "stub", TenantID: suite.tenantID}}, nil).Once()

	_, err := suite.service.ApplySettlement(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(capturedPlan.Allocations, 2)
	suite.Equal(first.OpenItemID, capturedPlan.Allocations[0].OpenItemID)
	suite.True(capturedPlan.Allocations[0].AmountTxn.Equal(decimal.NewFromInt(100)))
	suite.Equal(second.OpenItemID, capturedPlan.Allocations[1].OpenItemID)
	suite.True(capturedPlan.Allocations[1].AmountTxn.Equal(decimal.NewFromInt(50)))
	suite.Nil(capturedPlan.UnappliedCash)
}

func TestSettlementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SettlementServiceTestSuite))
}
