package services_test

import (
	"context"
	"time"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	portsrepo "github.com/SubledgerHQ/cari_backend/internal/core/ports/repositories"
	portssvc "github.com/SubledgerHQ/cari_backend/internal/core/ports/services"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock DocumentRepository ---
type MockDocumentRepository struct {
	mock.Mock
}

var _ portsrepo.DocumentRepositoryFacade = (*MockDocumentRepository)(nil)

func (m *MockDocumentRepository) FindDocumentByID(ctx context.Context, tenantID, documentID string) (*domain.Document, error) {
	args := m.Called(ctx, tenantID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListDocumentsByLegalEntity(ctx context.Context, tenantID, legalEntityID string, limit int, nextToken *string) ([]domain.Document, *string, error) {
	args := m.Called(ctx, tenantID, legalEntityID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Document), returnedNextToken, args.Error(2)
}

func (m *MockDocumentRepository) SaveDraft(ctx context.Context, doc domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateDraft(ctx context.Context, doc domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) CancelDraft(ctx context.Context, tenantID, documentID, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, tenantID, documentID, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockDocumentRepository) PostDocument(ctx context.Context, doc domain.Document, entry domain.JournalEntry, lines []domain.JournalLine, item domain.OpenItem) (string, error) {
	args := m.Called(ctx, doc, entry, lines, item)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentRepository) ReverseDocument(ctx context.Context, original domain.Document, reversal domain.Document, entry domain.JournalEntry, lines []domain.JournalLine) (string, error) {
	args := m.Called(ctx, original, reversal, entry, lines)
	return args.String(0), args.Error(1)
}

// --- Mock SequenceRepository ---
type MockSequenceRepository struct {
	mock.Mock
}

var _ portsrepo.SequenceRepositoryFacade = (*MockSequenceRepository)(nil)

func (m *MockSequenceRepository) NextNumber(ctx context.Context, tenantID, legalEntityID, namespace string) (int64, error) {
	args := m.Called(ctx, tenantID, legalEntityID, namespace)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSequenceRepository) NextNumberInTx(ctx context.Context, tx pgx.Tx, tenantID, legalEntityID, namespace string) (int64, error) {
	args := m.Called(ctx, tx, tenantID, legalEntityID, namespace)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock JournalEntryReader ---
type MockJournalReader struct {
	mock.Mock
}

var _ portsrepo.JournalEntryReader = (*MockJournalReader)(nil)

func (m *MockJournalReader) FindJournalEntryByID(ctx context.Context, tenantID, journalEntryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tenantID, journalEntryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalReader) FindJournalLinesByEntryID(ctx context.Context, journalEntryID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, journalEntryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

// --- Mock PartyRepository ---
type MockPartyRepository struct {
	mock.Mock
}

var _ portsrepo.PartyRepositoryFacade = (*MockPartyRepository)(nil)

func (m *MockPartyRepository) FindLegalEntityByID(ctx context.Context, tenantID, legalEntityID string) (*domain.LegalEntity, error) {
	args := m.Called(ctx, tenantID, legalEntityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LegalEntity), args.Error(1)
}

func (m *MockPartyRepository) FindCounterpartyByID(ctx context.Context, tenantID, counterpartyID string) (*domain.Counterparty, error) {
	args := m.Called(ctx, tenantID, counterpartyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Counterparty), args.Error(1)
}

// --- Mock OpenItemRepository ---
type MockOpenItemRepository struct {
	mock.Mock
}

var _ portsrepo.OpenItemRepositoryFacade = (*MockOpenItemRepository)(nil)

func (m *MockOpenItemRepository) FindOpenItemByID(ctx context.Context, tenantID, openItemID string) (*domain.OpenItem, error) {
	args := m.Called(ctx, tenantID, openItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OpenItem), args.Error(1)
}

func (m *MockOpenItemRepository) FindOpenItemsByIDs(ctx context.Context, tenantID string, openItemIDs []string) (map[string]domain.OpenItem, error) {
	args := m.Called(ctx, tenantID, openItemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.OpenItem), args.Error(1)
}

func (m *MockOpenItemRepository) FindOpenItemsByDocumentID(ctx context.Context, tenantID, documentID string) ([]domain.OpenItem, error) {
	args := m.Called(ctx, tenantID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OpenItem), args.Error(1)
}

func (m *MockOpenItemRepository) ListOpenItemsByCounterparty(ctx context.Context, tenantID, legalEntityID, counterpartyID string, onlyOpen bool, limit int, nextToken *string) ([]domain.OpenItem, *string, error) {
	args := m.Called(ctx, tenantID, legalEntityID, counterpartyID, onlyOpen, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.OpenItem), returnedNextToken, args.Error(2)
}

func (m *MockOpenItemRepository) InsertOpenItemInTx(ctx context.Context, tx pgx.Tx, item domain.OpenItem) error {
	args := m.Called(ctx, tx, item)
	return args.Error(0)
}

func (m *MockOpenItemRepository) FindOpenItemsByIDsForUpdate(ctx context.Context, tx pgx.Tx, tenantID string, openItemIDs []string) (map[string]domain.OpenItem, error) {
	args := m.Called(ctx, tx, tenantID, openItemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.OpenItem), args.Error(1)
}

func (m *MockOpenItemRepository) ApplyResidualChangesInTx(ctx context.Context, tx pgx.Tx, tenantID string, changes map[string]portsrepo.ResidualChange, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, tx, tenantID, changes, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock SettlementRepository ---
type MockSettlementRepository struct {
	mock.Mock
}

var _ portsrepo.SettlementRepositoryFacade = (*MockSettlementRepository)(nil)

func (m *MockSettlementRepository) FindBatchByID(ctx context.Context, tenantID, settlementID string) (*domain.SettlementBatch, error) {
	args := m.Called(ctx, tenantID, settlementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementBatch), args.Error(1)
}

func (m *MockSettlementRepository) FindBatchByIdempotencyKey(ctx context.Context, tenantID, idempotencyKey string) (*domain.SettlementBatch, error) {
	args := m.Called(ctx, tenantID, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementBatch), args.Error(1)
}

func (m *MockSettlementRepository) FindBatchByCashTransactionID(ctx context.Context, tenantID, cashTransactionID string) (*domain.SettlementBatch, error) {
	args := m.Called(ctx, tenantID, cashTransactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementBatch), args.Error(1)
}

func (m *MockSettlementRepository) FindAllocationsBySettlementID(ctx context.Context, tenantID, settlementID string) ([]domain.SettlementAllocation, error) {
	args := m.Called(ctx, tenantID, settlementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SettlementAllocation), args.Error(1)
}

func (m *MockSettlementRepository) ListBatchesByCounterparty(ctx context.Context, tenantID, legalEntityID, counterpartyID string, limit int, nextToken *string) ([]domain.SettlementBatch, *string, error) {
	args := m.Called(ctx, tenantID, legalEntityID, counterpartyID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.SettlementBatch), returnedNextToken, args.Error(2)
}

func (m *MockSettlementRepository) FindOpenUnappliedCash(ctx context.Context, tenantID, legalEntityID, counterpartyID, currencyCode string) ([]domain.UnappliedCash, error) {
	args := m.Called(ctx, tenantID, legalEntityID, counterpartyID, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UnappliedCash), args.Error(1)
}

func (m *MockSettlementRepository) FindUnappliedCashBySettlementID(ctx context.Context, tenantID, settlementID string) (*domain.UnappliedCash, error) {
	args := m.Called(ctx, tenantID, settlementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnappliedCash), args.Error(1)
}

func (m *MockSettlementRepository) ApplySettlement(ctx context.Context, plan portsrepo.SettlementPlan) (*portsrepo.SettlementResult, error) {
	args := m.Called(ctx, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portsrepo.SettlementResult), args.Error(1)
}

func (m *MockSettlementRepository) InsertUnappliedCash(ctx context.Context, row domain.UnappliedCash) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

// --- Mock FxRateReader ---
type MockFxRateReader struct {
	mock.Mock
}

var _ portsrepo.FxRateReader = (*MockFxRateReader)(nil)

func (m *MockFxRateReader) FindRate(ctx context.Context, tenantID string, rateDate time.Time, fromCurrency, toCurrency string, rateType domain.FxRateType) (*domain.FxRate, error) {
	args := m.Called(ctx, tenantID, rateDate, fromCurrency, toCurrency, rateType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FxRate), args.Error(1)
}

func (m *MockFxRateReader) ListRates(ctx context.Context, tenantID, fromCurrency, toCurrency string, limit int) ([]domain.FxRate, error) {
	args := m.Called(ctx, tenantID, fromCurrency, toCurrency, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FxRate), args.Error(1)
}

// --- Mock PurposeAccountReader ---
type MockPurposeAccountReader struct {
	mock.Mock
}

var _ portsrepo.PurposeAccountReader = (*MockPurposeAccountReader)(nil)

func (m *MockPurposeAccountReader) FindAccountID(ctx context.Context, tenantID, legalEntityID, mappingKey string) (string, error) {
	args := m.Called(ctx, tenantID, legalEntityID, mappingKey)
	return args.String(0), args.Error(1)
}

func (m *MockPurposeAccountReader) ListMappings(ctx context.Context, tenantID, legalEntityID string) ([]domain.PurposeAccountMapping, error) {
	args := m.Called(ctx, tenantID, legalEntityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PurposeAccountMapping), args.Error(1)
}

// --- Mock ScopeReader ---
type MockScopeReader struct {
	mock.Mock
}

var _ portsrepo.ScopeReader = (*MockScopeReader)(nil)

func (m *MockScopeReader) FindScopeGrant(ctx context.Context, userID, tenantID, legalEntityID string) (*portsrepo.ScopeGrant, error) {
	args := m.Called(ctx, userID, tenantID, legalEntityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portsrepo.ScopeGrant), args.Error(1)
}

// --- Mock ScopeAuthorizer ---
type MockAuthorizer struct {
	mock.Mock
}

var _ portssvc.ScopeAuthorizer = (*MockAuthorizer)(nil)

func (m *MockAuthorizer) AssertScopeAccess(ctx context.Context, userID, tenantID, legalEntityID string, required domain.ScopeRole) error {
	args := m.Called(ctx, userID, tenantID, legalEntityID, required)
	return args.Error(0)
}

func (m *MockAuthorizer) AssertFxOverrideAccess(ctx context.Context, userID, tenantID, legalEntityID string) error {
	args := m.Called(ctx, userID, tenantID, legalEntityID)
	return args.Error(0)
}

// --- Mock PurposeResolver ---
type MockPurposeResolver struct {
	mock.Mock
}

var _ portssvc.PurposeResolverFacade = (*MockPurposeResolver)(nil)

func (m *MockPurposeResolver) ResolveAccount(ctx context.Context, tenantID, legalEntityID string, code domain.PurposeCode, pctx domain.PurposeContext) (string, error) {
	args := m.Called(ctx, tenantID, legalEntityID, code, pctx)
	return args.String(0), args.Error(1)
}

// --- Mock FxResolver ---
type MockFxResolver struct {
	mock.Mock
}

var _ portssvc.FxResolverFacade = (*MockFxResolver)(nil)

func (m *MockFxResolver) Resolve(ctx context.Context, lookup portssvc.FxLookup) (*domain.FxResolution, error) {
	args := m.Called(ctx, lookup)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FxResolution), args.Error(1)
}

// parityResolution is a test helper for same-currency settlements.
func parityResolution(date time.Time) *domain.FxResolution {
	return &domain.FxResolution{
		Rate:     decimal.NewFromInt(1),
		RateDate: date,
		Source:   domain.FxSourceParity,
	}
}
