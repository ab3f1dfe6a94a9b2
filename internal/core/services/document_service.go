package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SubledgerHQ/cari_backend/internal/apperrors"
	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	portsrepo "github.com/SubledgerHQ/cari_backend/internal/core/ports/repositories"
	portssvc "github.com/SubledgerHQ/cari_backend/internal/core/ports/services"
	"github.com/SubledgerHQ/cari_backend/internal/dto"
	"github.com/SubledgerHQ/cari_backend/internal/middleware"
	"github.com/SubledgerHQ/cari_backend/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrDocTypeNotAllowed = errors.New("document type not allowed through normal intake")
	ErrNotDraft          = errors.New("document is not in DRAFT status")
	ErrNotReversible     = errors.New("document cannot be reversed from its current status")
)

// documentService owns the document lifecycle: draft CRUD, posting into the
// ledger, and reversal.
type documentService struct {
	docRepo     portsrepo.DocumentRepositoryFacade
	seqRepo     portsrepo.SequenceRepositoryFacade
	journalRepo portsrepo.JournalEntryReader
	partyRepo   portsrepo.PartyRepositoryFacade
	purposes    portssvc.PurposeResolverFacade
	fxResolver  portssvc.FxResolverFacade
	authz       portssvc.ScopeAuthorizer
}

// NewDocumentService creates a new DocumentSvcFacade.
func NewDocumentService(
	docRepo portsrepo.DocumentRepositoryFacade,
	seqRepo portsrepo.SequenceRepositoryFacade,
	journalRepo portsrepo.JournalEntryReader,
	partyRepo portsrepo.PartyRepositoryFacade,
	purposes portssvc.PurposeResolverFacade,
	fxResolver portssvc.FxResolverFacade,
	authz portssvc.ScopeAuthorizer,
) portssvc.DocumentSvcFacade {
	return &documentService{
		docRepo:     docRepo,
		seqRepo:     seqRepo,
		journalRepo: journalRepo,
		partyRepo:   partyRepo,
		purposes:    purposes,
		fxResolver:  fxResolver,
		authz:       authz,
	}
}

var _ portssvc.DocumentSvcFacade = (*documentService)(nil)

// creatableDocumentTypes are the types accepted through normal intake.
// OPENING_BALANCE is reserved for migration tooling writing rows directly.
var creatableDocumentTypes = map[domain.DocumentType]bool{
	domain.DocTypeInvoice:    true,
	domain.DocTypePayment:    true,
	domain.DocTypeCreditNote: true,
	domain.DocTypeAdjustment: true,
}

func (s *documentService) CreateDraft(ctx context.Context, tenantID string, req dto.CreateDocumentRequest, creatorUserID string) (*domain.Document, error) {
	if err := s.authz.AssertScopeAccess(ctx, creatorUserID, tenantID, req.LegalEntityID, domain.RoleMember); err != nil {
		return nil, err
	}

	docType := domain.DocumentType(strings.ToUpper(req.DocumentType))
	if !creatableDocumentTypes[docType] {
		return nil, fmt.Errorf("%w: %s (%s)", apperrors.ErrValidation, ErrDocTypeNotAllowed, req.DocumentType)
	}
	if req.AmountTxn.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amountTxn must be positive", apperrors.ErrValidation)
	}
	if req.FxRate != nil && req.FxRate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: fxRate must be positive when supplied", apperrors.ErrValidation)
	}

	counterparty, err := s.partyRepo.FindCounterpartyByID(ctx, tenantID, req.CounterpartyID)
	if err != nil {
		return nil, fmt.Errorf("%w: counterparty %s", apperrors.ErrNotFound, req.CounterpartyID)
	}
	if !counterparty.IsActive {
		return nil, fmt.Errorf("%w: counterparty %s is inactive", apperrors.ErrValidation, req.CounterpartyID)
	}

	seq, err := s.seqRepo.NextNumber(ctx, tenantID, req.LegalEntityID, domain.SequenceNamespaceDraft)
	if err != nil {
		return nil, fmt.Errorf("failed to assign draft number: %w", err)
	}

	now := time.Now()
	doc := domain.Document{
		DocumentID:        uuid.NewString(),
		TenantID:          tenantID,
		LegalEntityID:     req.LegalEntityID,
		CounterpartyID:    req.CounterpartyID,
		Direction:         req.Direction,
		DocumentType:      docType,
		DocumentDate:      req.DocumentDate,
		DueDate:           req.DueDate,
		AmountTxn:         req.AmountTxn,
		CurrencyCode:      strings.ToUpper(req.CurrencyCode),
		PaymentTermID:     req.PaymentTermID,
		Status:            domain.DocStatusDraft,
		SequenceNamespace: domain.SequenceNamespaceDraft,
		DocumentNumber:    domain.FormatDocumentNumber(domain.SequenceNamespaceDraft, seq),
		Description:       req.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if req.FxRate != nil {
		// Rate fixed at draft time; posting will keep it instead of resolving.
		doc.FxRate = *req.FxRate
		doc.AmountBase = accounting.BaseAmount(doc.AmountTxn, doc.FxRate)
	}

	if err := s.docRepo.SaveDraft(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	middleware.GetLoggerFromCtx(ctx).Info("Draft document created",
		"documentID", doc.DocumentID, "documentNumber", doc.DocumentNumber, "type", doc.DocumentType)
	return &doc, nil
}

func (s *documentService) GetDocumentByID(ctx context.Context, tenantID, documentID, requestingUserID string) (*domain.Document, error) {
	doc, err := s.docRepo.FindDocumentByID(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AssertScopeAccess(ctx, requestingUserID, tenantID, doc.LegalEntityID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *documentService) ListDocuments(ctx context.Context, tenantID string, params dto.ListDocumentsParams, requestingUserID string) (*dto.ListDocumentsResponse, error) {
	if err := s.authz.AssertScopeAccess(ctx, requestingUserID, tenantID, params.LegalEntityID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	docs, nextToken, err := s.docRepo.ListDocumentsByLegalEntity(ctx, tenantID, params.LegalEntityID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return &dto.ListDocumentsResponse{
		Documents: dto.ToDocumentResponses(docs),
		NextToken: nextToken,
	}, nil
}

func (s *documentService) UpdateDraft(ctx context.Context, tenantID, documentID string, req dto.UpdateDocumentRequest, requestingUserID string) (*domain.Document, error) {
	doc, err := s.docRepo.FindDocumentByID(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AssertScopeAccess(ctx, requestingUserID, tenantID, doc.LegalEntityID, domain.RoleMember); err != nil {
		return nil, err
	}
	if !doc.IsDraft() {
		return nil, fmt.Errorf("%w: %s (status %s)", apperrors.ErrConflict, ErrNotDraft, doc.Status)
	}

	if req.CounterpartyID != nil {
		if _, err := s.partyRepo.FindCounterpartyByID(ctx, tenantID, *req.CounterpartyID); err != nil {
			return nil, fmt.Errorf("%w: counterparty %s", apperrors.ErrNotFound, *req.CounterpartyID)
		}
		doc.CounterpartyID = *req.CounterpartyID
	}
	if req.DocumentDate != nil {
		doc.DocumentDate = *req.DocumentDate
	}
	if req.DueDate != nil {
		doc.DueDate = req.DueDate
	}
	if req.AmountTxn != nil {
		if req.AmountTxn.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: amountTxn must be positive", apperrors.ErrValidation)
		}
		doc.AmountTxn = *req.AmountTxn
	}
	if req.CurrencyCode != nil {
		doc.CurrencyCode = strings.ToUpper(*req.CurrencyCode)
	}
	if req.FxRate != nil {
		if req.FxRate.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: fxRate must be positive", apperrors.ErrValidation)
		}
		doc.FxRate = *req.FxRate
	}
	if req.PaymentTermID != nil {
		doc.PaymentTermID = req.PaymentTermID
	}
	if req.Description != nil {
		doc.Description = *req.Description
	}

	if doc.FxRate.IsPositive() {
		doc.AmountBase = accounting.BaseAmount(doc.AmountTxn, doc.FxRate)
	}
	doc.LastUpdatedAt = time.Now()
	doc.LastUpdatedBy = requestingUserID

	if err := s.docRepo.UpdateDraft(ctx, *doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *documentService) CancelDraft(ctx context.Context, tenantID, documentID, requestingUserID string) (*domain.Document, error) {
	doc, err := s.docRepo.FindDocumentByID(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AssertScopeAccess(ctx, requestingUserID, tenantID, doc.LegalEntityID, domain.RoleMember); err != nil {
		return nil, err
	}

	next, err := domain.NextDocumentStatus(doc.Status, domain.EventCancel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConflict, err)
	}

	now := time.Now()
	if err := s.docRepo.CancelDraft(ctx, tenantID, documentID, requestingUserID, now); err != nil {
		return nil, err
	}

	doc.Status = next
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = requestingUserID
	return doc, nil
}

func (s *documentService) PostDocument(ctx context.Context, tenantID, documentID string, req dto.PostDocumentRequest, requestingUserID string) (*dto.PostDocumentResult, error) {
	doc, err := s.docRepo.FindDocumentByID(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AssertScopeAccess(ctx, requestingUserID, tenantID, doc.LegalEntityID, domain.RoleMember); err != nil {
		return nil, err
	}
	if _, err := domain.NextDocumentStatus(doc.Status, domain.EventPost); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConflict, err)
	}

	legalEntity, err := s.partyRepo.FindLegalEntityByID(ctx, tenantID, doc.LegalEntityID)
	if err != nil {
		return nil, fmt.Errorf("%w: legal entity %s", apperrors.ErrNotFound, doc.LegalEntityID)
	}
	counterparty, err := s.partyRepo.FindCounterpartyByID(ctx, tenantID, doc.CounterpartyID)
	if err != nil {
		return nil, fmt.Errorf("%w: counterparty %s", apperrors.ErrNotFound, doc.CounterpartyID)
	}

	// Resolve the rate unless the draft fixed one.
	var fxRes *domain.FxResolution
	rate := doc.FxRate
	if !rate.IsPositive() {
		mode := domain.FxFallbackMode("")
		if req.FxFallbackMode != nil {
			mode = *req.FxFallbackMode
		}
		maxDays := 0
		if req.FxFallbackMaxDays != nil {
			maxDays = *req.FxFallbackMaxDays
		}
		fxRes, err = s.fxResolver.Resolve(ctx, portssvc.FxLookup{
			TenantID:        tenantID,
			LegalEntityID:   doc.LegalEntityID,
			Date:            doc.DocumentDate,
			FromCurrency:    doc.CurrencyCode,
			ToCurrency:      legalEntity.FunctionalCurrency,
			FallbackMode:    mode,
			FallbackMaxDays: maxDays,
			UseOverride:     req.UseFxOverride,
			OverrideReason:  req.FxOverrideReason,
			ActorUserID:     requestingUserID,
		})
		if err != nil {
			return nil, err
		}
		rate = fxRes.Rate
	}

	amountBase := accounting.BaseAmount(doc.AmountTxn, rate)

	controlAccount, err := s.purposes.ResolveAccount(ctx, tenantID, doc.LegalEntityID, domain.ControlPurpose(doc.Direction), domain.ContextManual)
	if err != nil {
		return nil, err
	}
	offsetAccount, err := s.purposes.ResolveAccount(ctx, tenantID, doc.LegalEntityID, domain.OffsetPurpose(doc.Direction), domain.ContextManual)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entryID := uuid.NewString()
	entry := domain.JournalEntry{
		JournalEntryID: entryID,
		TenantID:       tenantID,
		LegalEntityID:  doc.LegalEntityID,
		JournalDate:    doc.DocumentDate,
		Description:    doc.Description,
		CurrencyCode:   legalEntity.FunctionalCurrency,
		SourceType:     domain.SourceCariDocument,
		DocType:        string(doc.DocumentType),
		Status:         domain.JournalPosted,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}
	lines := buildDocumentLines(doc, entryID, controlAccount, offsetAccount, amountBase, requestingUserID, now)
	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
	}

	item := domain.OpenItem{
		OpenItemID:     uuid.NewString(),
		TenantID:       tenantID,
		LegalEntityID:  doc.LegalEntityID,
		DocumentID:     doc.DocumentID,
		CounterpartyID: doc.CounterpartyID,
		Direction:      doc.Direction,
		CurrencyCode:   doc.CurrencyCode,
		AmountOrigTxn:  doc.AmountTxn,
		AmountOrigBase: amountBase,
		ResidualTxn:    doc.AmountTxn,
		ResidualBase:   amountBase,
		Status:         domain.OpenItemOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     requestingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: requestingUserID,
		},
	}

	posted := *doc
	posted.Status = domain.DocStatusPosted
	posted.SequenceNamespace = string(doc.DocumentType)
	posted.FxRate = rate
	posted.AmountBase = amountBase
	posted.CounterpartyNameSnapshot = counterparty.DisplayName
	posted.PostedJournalEntryID = &entryID
	posted.LastUpdatedAt = now
	posted.LastUpdatedBy = requestingUserID

	number, err := s.docRepo.PostDocument(ctx, posted, entry, lines, item)
	if err != nil {
		return nil, err
	}
	posted.DocumentNumber = number

	middleware.GetLoggerFromCtx(ctx).Info("Document posted",
		"documentID", posted.DocumentID, "documentNumber", number, "journalEntryID", entryID)

	return &dto.PostDocumentResult{
		Document: dto.ToDocumentResponse(&posted),
		OpenItem: dto.ToOpenItemResponse(&item),
		Fx:       dto.ToFxResolutionResponse(fxRes),
	}, nil
}

func (s *documentService) ReverseDocument(ctx context.Context, tenantID, documentID string, req dto.ReverseDocumentRequest, requestingUserID string) (*dto.ReversalResult, error) {
	original, err := s.docRepo.FindDocumentByID(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AssertScopeAccess(ctx, requestingUserID, tenantID, original.LegalEntityID, domain.RoleMember); err != nil {
		return nil, err
	}
	if _, err := domain.NextDocumentStatus(original.Status, domain.EventReverse); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrConflict, ErrNotReversible, err)
	}
	if original.PostedJournalEntryID == nil {
		return nil, fmt.Errorf("%w: document %s has no posted journal entry", apperrors.ErrConflict, documentID)
	}

	originalLines, err := s.journalRepo.FindJournalLinesByEntryID(ctx, *original.PostedJournalEntryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load original journal lines: %w", err)
	}

	now := time.Now()
	reversalDate := now
	if req.ReversalDate != nil {
		reversalDate = *req.ReversalDate
	}

	reversalID := uuid.NewString()
	entryID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     requestingUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: requestingUserID,
	}

	reversal := domain.Document{
		DocumentID:               reversalID,
		TenantID:                 tenantID,
		LegalEntityID:            original.LegalEntityID,
		CounterpartyID:           original.CounterpartyID,
		Direction:                original.Direction,
		DocumentType:             original.DocumentType,
		DocumentDate:             reversalDate,
		AmountTxn:                original.AmountTxn,
		AmountBase:               original.AmountBase,
		CurrencyCode:             original.CurrencyCode,
		FxRate:                   original.FxRate,
		Status:                   domain.DocStatusReversed,
		SequenceNamespace:        string(original.DocumentType),
		PostedJournalEntryID:     &entryID,
		ReversalOfDocumentID:     &original.DocumentID,
		CounterpartyNameSnapshot: original.CounterpartyNameSnapshot,
		Description:              fmt.Sprintf("Reversal of %s: %s", original.DocumentNumber, req.Reason),
		AuditFields:              audit,
	}

	entry := domain.JournalEntry{
		JournalEntryID:         entryID,
		TenantID:               tenantID,
		LegalEntityID:          original.LegalEntityID,
		JournalDate:            reversalDate,
		Description:            reversal.Description,
		CurrencyCode:           "", // filled from the original entry by the repository
		SourceType:             domain.SourceCariReversal,
		DocType:                string(original.DocumentType),
		Status:                 domain.JournalPosted,
		OriginalJournalEntryID: original.PostedJournalEntryID,
		AuditFields:            audit,
	}
	if originalEntry, err := s.journalRepo.FindJournalEntryByID(ctx, tenantID, *original.PostedJournalEntryID); err == nil {
		entry.CurrencyCode = originalEntry.CurrencyCode
	} else {
		return nil, fmt.Errorf("failed to load original journal entry: %w", err)
	}

	lines := make([]domain.JournalLine, len(originalLines))
	for i, line := range originalLines {
		lines[i] = domain.JournalLine{
			JournalLineID:  uuid.NewString(),
			JournalEntryID: entryID,
			AccountID:      line.AccountID,
			Amount:         line.Amount,
			Side:           line.Side.Mirror(),
			SourceRef:      "CARI_DOC:" + reversalID,
			AuditFields:    audit,
		}
	}
	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
	}

	reversedOriginal := *original
	reversedOriginal.Status = domain.DocStatusReversed
	reversedOriginal.LastUpdatedAt = now
	reversedOriginal.LastUpdatedBy = requestingUserID

	number, err := s.docRepo.ReverseDocument(ctx, reversedOriginal, reversal, entry, lines)
	if err != nil {
		return nil, err
	}
	reversal.DocumentNumber = number

	middleware.GetLoggerFromCtx(ctx).Info("Document reversed",
		"documentID", original.DocumentID, "reversalDocumentID", reversalID, "reversalJournalEntryID", entryID)

	return &dto.ReversalResult{
		OriginalDocument: dto.ToDocumentResponse(&reversedOriginal),
		ReversalDocument: dto.ToDocumentResponse(&reversal),
	}, nil
}

// buildDocumentLines produces the two-line control/offset posting for a
// document. AR raises a debit on the control account; AP a credit. Credit
// notes mirror their direction's sides since they reduce the claim.
func buildDocumentLines(doc *domain.Document, entryID, controlAccount, offsetAccount string, amountBase decimal.Decimal, userID string, now time.Time) []domain.JournalLine {
	controlSide := domain.Debit
	if doc.Direction == domain.Payable {
		controlSide = domain.Credit
	}
	if doc.DocumentType == domain.DocTypeCreditNote {
		controlSide = controlSide.Mirror()
	}

	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
	sourceRef := "CARI_DOC:" + doc.DocumentID

	return []domain.JournalLine{
		{
			JournalLineID:  uuid.NewString(),
			JournalEntryID: entryID,
			AccountID:      controlAccount,
			Amount:         amountBase,
			Side:           controlSide,
			SourceRef:      sourceRef,
			AuditFields:    audit,
		},
		{
			JournalLineID:  uuid.NewString(),
			JournalEntryID: entryID,
			AccountID:      offsetAccount,
			Amount:         amountBase,
			Side:           controlSide.Mirror(),
			SourceRef:      sourceRef,
			AuditFields:    audit,
		},
	}
}
