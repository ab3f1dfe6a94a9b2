package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SubledgerHQ/cari_backend/internal/apperrors"
	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	portssvc "github.com/SubledgerHQ/cari_backend/internal/core/ports/services"
	"github.com/SubledgerHQ/cari_backend/internal/core/services"
	"github.com/SubledgerHQ/cari_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type DocumentServiceTestSuite struct {
	suite.Suite
	mockDocRepo     *MockDocumentRepository
	mockSeqRepo     *MockSequenceRepository
	mockJournalRepo *MockJournalReader
	mockPartyRepo   *MockPartyRepository
	mockPurposes    *MockPurposeResolver
	mockFxResolver  *MockFxResolver
	mockAuthz       *MockAuthorizer
	service         portssvc.DocumentSvcFacade

	tenantID      string
	legalEntityID string
	userID        string
	counterparty  domain.Counterparty
	legalEntity   domain.LegalEntity
}

func (suite *DocumentServiceTestSuite) SetupTest() {
	suite.mockDocRepo = new(MockDocumentRepository)
	suite.mockSeqRepo = new(MockSequenceRepository)
	suite.mockJournalRepo = new(MockJournalReader)
	suite.mockPartyRepo = new(MockPartyRepository)
	suite.mockPurposes = new(MockPurposeResolver)
	suite.mockFxResolver = new(MockFxResolver)
	suite.mockAuthz = new(MockAuthorizer)
	suite.service = services.NewDocumentService(
		suite.mockDocRepo, suite.mockSeqRepo, suite.mockJournalRepo, suite.mockPartyRepo,
		suite.mockPurposes, suite.mockFxResolver, suite.mockAuthz,
	)

	suite.tenantID = uuid.NewString()
	suite.legalEntityID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.counterparty = domain.Counterparty{
		CounterpartyID: uuid.NewString(),
		TenantID:       suite.tenantID,
		DisplayName:    "Acme Ltd",
		IsActive:       true,
	}
	suite.legalEntity = domain.LegalEntity{
		LegalEntityID:      suite.legalEntityID,
		TenantID:           suite.tenantID,
		Name:               "Main Entity",
		FunctionalCurrency: "USD",
		IsActive:           true,
	}
}

func (suite *DocumentServiceTestSuite) draftDocument() *domain.Document {
	return &domain.Document{
		DocumentID:        uuid.NewString(),
		TenantID:          suite.tenantID,
		LegalEntityID:     suite.legalEntityID,
		CounterpartyID:    suite.counterparty.CounterpartyID,
		Direction:         domain.Receivable,
		DocumentType:      domain.DocTypeInvoice,
		DocumentDate:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		AmountTxn:         decimal.NewFromInt(1200),
		CurrencyCode:      "USD",
		Status:            domain.DocStatusDraft,
		SequenceNamespace: domain.SequenceNamespaceDraft,
		DocumentNumber:    "DRAFT-000007",
	}
}

func (suite *DocumentServiceTestSuite) TestCreateDraft_Success() {
	ctx := context.Background()
	req := dto.CreateDocumentRequest{
		LegalEntityID:  suite.legalEntityID,
		CounterpartyID: suite.counterparty.CounterpartyID,
		Direction:      domain.Receivable,
		DocumentType:   "INVOICE",
		DocumentDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		AmountTxn:      decimal.NewFromInt(1200),
		CurrencyCode:   "usd",
	}

	suite.mockAuthz.On("AssertScopeAccess", ctx, suite.userID, suite.tenantID, suite.legalEntityID, domain.RoleMember).Return(nil).Once()
	suite.mockPartyRepo.On("FindCounterpartyByID", ctx, suite.tenantID, suite.counterparty.CounterpartyID).Return(&suite.counterparty, nil).Once()
	suite.mockSeqRepo.On("NextNumber", ctx, suite.tenantID, suite.legalEntityID, domain.SequenceNamespaceDraft).Return(int64(7), nil).Once()
	suite.mockDocRepo.On("SaveDraft", ctx, mock.AnythingOfType("domain.Document")).Return(nil).Once()

	doc, err := suite.service.CreateDraft(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(doc)
	suite.Equal(domain.DocStatusDraft, doc.Status)
	suite.Equal("DRAFT-000007", doc.DocumentNumber)
	suite.Equal(domain.SequenceNamespaceDraft, doc.SequenceNamespace)
	suite.Equal("USD", doc.CurrencyCode)
	suite.True(doc.AmountBase.IsZero())
	suite.Equal(suite.userID, doc.CreatedBy)

	suite.mockDocRepo.AssertExpectations(suite.T())
	suite.mockSeqRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestCreateDraft_RejectsOpeningBalance() {
	ctx := context.Background()
	req := dto.CreateDocumentRequest{
		LegalEntityID:  suite.legalEntityID,
		CounterpartyID: suite.counterparty.CounterpartyID,
		Direction:      domain.Receivable,
		DocumentType:   "OPENING_BALANCE",
		DocumentDate:   time.Now(),
		AmountTxn:      decimal.NewFromInt(50),
		CurrencyCode:   "USD",
	}

	suite.mockAuthz.On("AssertScopeAccess", ctx, suite.userID, suite.tenantID, suite.legalEntityID, domain.RoleMember).Return(nil).Once()

	doc, err := suite.service.CreateDraft(ctx, suite.tenantID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(doc)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockDocRepo.AssertNotCalled(suite.T(), "SaveDraft", mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestCreateDraft_FixedRateComputesBase() {
	ctx := context.Background()
	rate := decimal.RequireFromString("32.5")
	req := dto.CreateDocumentRequest{
		LegalEntityID:  suite.legalEntityID,
		CounterpartyID: suite.counterparty.CounterpartyID,
		Direction:      domain.Payable,
		DocumentType:   "INVOICE",
		DocumentDate:   time.Now(),
		AmountTxn:      decimal.NewFromInt(100),
		CurrencyCode:   "EUR",
		FxRate:         &rate,
	}

	suite.mockAuthz.On("AssertScopeAccess", ctx, suite.userID, suite.tenantID, suite.legalEntityID, domain.RoleMember).Return(nil).Once()
	suite.mockPartyRepo.On("FindCounterpartyByID", ctx, suite.tenantID, suite.counterparty.CounterpartyID).Return(&suite.counterparty, nil).Once()
	suite.mockSeqRepo.On("NextNumber", ctx, suite.tenantID, suite.legalEntityID, domain.SequenceNamespaceDraft).Return(int64(1), nil).Once()
	suite.mockDocRepo.On("SaveDraft", ctx, mock.AnythingOfType("domain.Document")).Return(nil).Once()

	doc, err := suite.service.CreateDraft(ctx, suite.tenantID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(doc.AmountBase.Equal(decimal.NewFromInt(3250)), "expected 3250, got %s", doc.AmountBase)
}

func (suite *DocumentServiceTestSuite) TestUpdateDraft_PostedConflicts() {
	ctx := context.Background()
	doc := suite.draftDocument()
	doc.Status = domain.DocStatusPosted

	suite.mockDocRepo.On("FindDocumentByID", ctx, suite.tenantID, doc.DocumentID).Return(doc, nil).Once()
	suite.mockAuthz.On("AssertScopeAccess", ctx, suite.userID, suite.tenantID, suite.legalEntityID, domain.RoleMember).Return(nil).Once()

	desc := "changed"
	updated, err := suite.service.UpdateDraft(ctx, suite.tenantID, doc.DocumentID, dto.UpdateDocumentRequest{Description: &desc}, suite.userID)

	suite.Require().Error(err)
	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockDocRepo.AssertNotCalled(suite.T(), "UpdateDraft", mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestCancelDraft_Success() {
	ctx := context.Background()
	doc := suite.draftDocument()

	suite.mockDocRepo.On("FindDocumentByID", ctx, suite.tenantID, doc.DocumentID).Return(doc, nil).Once()
	suite.mockAuthz.On("AssertScopeAccess", ctx, suite.userID, suite.tenantID, suite.legalEntityID, domain.RoleMember).Return(nil).Once()
	suite.mockDocRepo.On("CancelDraft", ctx, suite.tenantID, doc.DocumentID, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	cancelled, err := suite.service.CancelDraft(ctx, suite.tenantID, doc.DocumentID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.DocStatusCancelled, cancelled.Status)
}

func (suite *DocumentServiceTestSuite) TestPostDocument_Success() {
	ctx := context.Background()
	doc := suite.draftDocument()

	suite.mockDocRepo.On("FindDocumentByID", ctx, suite.tenantID, doc.DocumentID).Return(doc, nil).Once()
	suite.mockAuthz.On("AssertScopeAccess", ctx, suite.userID, suite.tenantID, suite.legalEntityID, domain.RoleMember).Return(nil).Once()
	suite.mockPartyRepo.On("FindLegalEntityByID", ctx, suite.tenantID, suite.legalEntityID).Return(&suite.legalEntity, nil).Once()
	suite.mockPartyRepo.On("FindCounterpartyByID", ctx, suite.tenantID, suite.counterparty.CounterpartyID).Return(&suite.counterparty, nil).Once()
	suite.mockFxResolver.On("Resolve", ctx, mock.AnythingOfType("services.FxLookup")).Return(parityResolution(doc.DocumentDate), nil).Once()
	suite.mockPurposes.On("ResolveAccount", ctx, suite.tenantID, suite.legalEntityID, domain.PurposeARControl, domain.ContextManual).Return("acct-control", nil).Once()
	suite.mockPurposes.On("ResolveAccount", ctx, suite.tenantID, suite.legalEntityID, domain.PurposeAROffset, domain.ContextManual).Return("acct-offset", nil).Once()

	var capturedLines []domain.JournalLine
	var capturedItem domain.OpenItem
	suite.mockDocRepo.On("PostDocument", ctx,
		mock.AnythingOfType("domain.Document"),
		mock.AnythingOfType("domain.JournalEntry"),
		mock.AnythingOfType("[]domain.JournalLine"),
		mock.AnythingOfType("domain.OpenItem"),
	).Run(func(args mock.Arguments) {
		capturedLines = args.Get(3).([]domain.JournalLine)
		capturedItem = args.Get(4).(domain.OpenItem)
	}).Return("INVOICE-000001", nil).Once()

	result, err := suite.service.PostDocument(ctx, suite.tenantID, doc.DocumentID, dto.PostDocumentRequest{}, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(result)
	suite.Equal(domain.DocStatusPosted, result.Document.Status)
	suite.Equal("INVOICE-000001", result.Document.DocumentNumber)
	suite.Equal("Acme Ltd", result.Document.CounterpartyNameSnapshot)
	suite.Require().NotNil(result.Fx)
	suite.Equal(domain.FxSourceParity, result.Fx.Source)

	// AR invoice raises a debit on the control account, credit on the offset.
	suite.Require().Len(capturedLines, 2)
	suite.Equal("acct-control", capturedLines[0].AccountID)
	suite.Equal(domain.Debit, capturedLines[0].Side)
	suite.Equal("acct-offset", capturedLines[1].AccountID)
	suite.Equal(domain.Credit, capturedLines[1].Side)
	suite.True(capturedLines[0].Amount.Equal(decimal.NewFromInt(1200)))

	suite.True(capturedItem.ResidualTxn.Equal(doc.AmountTxn))
	suite.Equal(domain.OpenItemOpen, capturedItem.Status)
	suite.mockDocRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestPostDocument_AlreadyPostedConflicts() {
	ctx := context.Background()
	doc := suite.draftDocument()
	doc.Status = domain.DocStatusPosted

	suite.mockDocRepo.On("FindDocumentByID", ctx, suite.tenantID, doc.DocumentID).Return(doc, nil).Once()
	suite.mockAuthz.On("AssertScopeAccess", ctx, suite.userID, suite.tenantID, suite.legalEntityID, domain.RoleMember).Return(nil).Once()

	result, err := suite.service.PostDocument(ctx, suite.tenantID, doc.DocumentID, dto.PostDocumentRequest{}, suite.userID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func (suite *DocumentServiceTestSuite) TestPostDocument_CreditNoteMirrorsSides() {
	ctx := context.Background()
	doc := suite.draftDocument()
	doc.DocumentType = domain.DocTypeCreditNote
	doc.FxRate = decimal.NewFromInt(1) // fixed at draft time, resolver untouched

	suite.mockDocRepo.On("FindDocumentByID", ctx, suite.tenantID, doc.DocumentID).Return(doc, nil).Once()
	suite.mockAuthz.On("AssertScopeAccess", ctx, suite.userID, suite.tenantID, suite.legalEntityID, domain.RoleMember).Return(nil).Once()
	suite.mockPartyRepo.On("FindLegalEntityByID", ctx, suite.tenantID, suite.legalEntityID).Return(&suite.legalEntity, nil).Once()
	suite.mockPartyRepo.On("FindCounterpartyByID", ctx, suite.tenantID, suite.counterparty.CounterpartyID).Return(&suite.counterparty, nil).Once()
	suite.mockPurposes.On("ResolveAccount", ctx, suite.tenantID, suite.legalEntityID, domain.PurposeARControl, domain.ContextManual).Return("acct-control", nil).Once()
	suite.mockPurposes.On("ResolveAccount", ctx, suite.tenantID, suite.legalEntityID, domain.PurposeAROffset, domain.ContextManual).Return("acct-offset", nil).Once()

	var capturedLines []domain.JournalLine
	suite.mockDocRepo.On("PostDocument", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			capturedLines = args.Get(3).([]domain.JournalLine)
		}).Return("CREDIT_NOTE-000001", nil).Once()

	_, err := suite.service.PostDocument(ctx, suite.tenantID, doc.DocumentID, dto.PostDocumentRequest{}, suite.userID)

	suite.Require().NoError(err)
	// An AR credit note reduces the claim: credit control, debit offset.
	suite.Require().Len(capturedLines, 2)
	suite.Equal(domain.Credit, capturedLines[0].Side)
	suite.Equal(domain.Debit, capturedLines[1].Side)
	suite.mockFxResolver.AssertNotCalled(suite.T(), "Resolve", mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestReverseDocument_Success() {
	ctx := context.Background()
	doc := suite.draftDocument()
	entryID := uuid.NewString()
	doc.Status = domain.DocStatusPosted
	doc.DocumentNumber = "INVOICE-000001"
	doc.PostedJournalEntryID = &entryID

	originalEntry := &domain.JournalEntry{
		JournalEntryID: entryID,
		TenantID:       suite.tenantID,
		LegalEntityID:  suite.legalEntityID,
		CurrencyCode:   "USD",
		Status:         domain.JournalPosted,
	}
	originalLines := []domain.JournalLine{
		{JournalLineID: uuid.NewString(), JournalEntryID: entryID, AccountID: "acct-control", Amount: decimal.NewFromInt(1200), Side: domain.Debit},
		{JournalLineID: uuid.NewString(), JournalEntryID: entryID, AccountID: "acct-offset", Amount: decimal.NewFromInt(1200), Side: domain.Credit},
	}

	suite.mockDocRepo.On("FindDocumentByID", ctx, suite.tenantID, doc.DocumentID).Return(doc, nil).Once()
	suite.mockAuthz.On("AssertScopeAccess", ctx, suite.userID, suite.tenantID, suite.legalEntityID, domain.RoleMember).Return(nil).Once()
	suite.mockJournalRepo.On("FindJournalLinesByEntryID", ctx, entryID).Return(originalLines, nil).Once()
	suite.mockJournalRepo.On("FindJournalEntryByID", ctx, suite.tenantID, entryID).Return(originalEntry, nil).Once()

	var capturedLines []domain.JournalLine
	var capturedEntry domain.JournalEntry
	suite.mockDocRepo.On("ReverseDocument", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			capturedEntry = args.Get(3).(domain.JournalEntry)
			capturedLines = args.Get(4).([]domain.JournalLine)
		}).Return("INVOICE-000002", nil).Once()

	result, err := suite.service.ReverseDocument(ctx, suite.tenantID, doc.DocumentID, dto.ReverseDocumentRequest{Reason: "entered twice"}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.DocStatusReversed, result.OriginalDocument.Status)
	suite.Equal(domain.DocStatusReversed, result.ReversalDocument.Status)
	suite.Equal("INVOICE-000002", result.ReversalDocument.DocumentNumber)
	suite.Require().NotNil(result.ReversalDocument.ReversalOfDocumentID)
	suite.Equal(doc.DocumentID, *result.ReversalDocument.ReversalOfDocumentID)

	suite.Equal(domain.SourceCariReversal, capturedEntry.SourceType)
	suite.Require().NotNil(capturedEntry.OriginalJournalEntryID)
	suite.Equal(entryID, *capturedEntry.OriginalJournalEntryID)

	// Reversal lines mirror sides on the same accounts and amounts.
	suite.Require().Len(capturedLines, 2)
	suite.Equal(domain.Credit, capturedLines[0].Side)
	suite.Equal("acct-control", capturedLines[0].AccountID)
	suite.Equal(domain.Debit, capturedLines[1].Side)
	suite.Equal("acct-offset", capturedLines[1].AccountID)
}

func (suite *DocumentServiceTestSuite) TestReverseDocument_AlreadyReversedConflicts() {
	ctx := context.Background()
	doc := suite.draftDocument()
	entryID := uuid.NewString()
	doc.Status = domain.DocStatusReversed
	doc.PostedJournalEntryID = &entryID

	suite.mockDocRepo.On("FindDocumentByID", ctx, suite.tenantID, doc.DocumentID).Return(doc, nil).Once()
	suite.mockAuthz.On("AssertScopeAccess", ctx, suite.userID, suite.tenantID, suite.legalEntityID, domain.RoleMember).Return(nil).Once()

	result, err := suite.service.ReverseDocument(ctx, suite.tenantID, doc.DocumentID, dto.ReverseDocumentRequest{Reason: "again"}, suite.userID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockDocRepo.AssertNotCalled(suite.T(), "ReverseDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentServiceTestSuite))
}
