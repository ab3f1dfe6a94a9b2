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
	ErrResidualExceeded      = errors.New("allocation amount exceeds open item residual")
	ErrDuplicateAllocation   = errors.New("open item targeted more than once")
	ErrNothingToApply        = errors.New("no incoming amount and no unapplied cash usage requested")
	ErrInsufficientUnapplied = errors.New("unapplied cash does not cover the requested allocations")
)

// settlementService is the cash-application engine: allocation planning,
// over-collection, on-account consumption and idempotent replay.
type settlementService struct {
	settlementRepo portsrepo.SettlementRepositoryFacade
	openItemRepo   portsrepo.OpenItemRepositoryFacade
	partyRepo      portsrepo.PartyRepositoryFacade
	purposes       portssvc.PurposeResolverFacade
	fxResolver     portssvc.FxResolverFacade
	authz          portssvc.ScopeAuthorizer
}

// NewSettlementService creates a new SettlementSvcFacade.
func NewSettlementService(
	settlementRepo portsrepo.SettlementRepositoryFacade,
	openItemRepo portsrepo.OpenItemRepositoryFacade,
	partyRepo portsrepo.PartyRepositoryFacade,
	purposes portssvc.PurposeResolverFacade,
	fxResolver portssvc.FxResolverFacade,
	authz portssvc.ScopeAuthorizer,
) portssvc.SettlementSvcFacade {
	return &settlementService{
		settlementRepo: settlementRepo,
		openItemRepo:   openItemRepo,
		partyRepo:      partyRepo,
		purposes:       purposes,
		fxResolver:     fxResolver,
		authz:          authz,
	}
}

var _ portssvc.SettlementSvcFacade = (*settlementService)(nil)

// plannedAllocation pairs a target open item with the amounts an apply call
// will take from it.
type plannedAllocation struct {
	item      domain.OpenItem
	amountTxn decimal.Decimal
	amountBase decimal.Decimal
}

func (s *settlementService) ApplySettlement(ctx context.Context, tenantID string, req dto.ApplySettlementRequest, requestingUserID string) (*dto.ApplySettlementResult, error) {
	if err := s.authz.AssertScopeAccess(ctx, requestingUserID, tenantID, req.LegalEntityID, domain.RoleMember); err != nil {
		return nil, err
	}
	if req.AmountIncomingTxn.IsNegative() {
		return nil, fmt.Errorf("%w: amountIncomingTxn must not be negative", apperrors.ErrValidation)
	}
	currency := strings.ToUpper(req.CurrencyCode)
	onAccount := req.UseUnappliedCash && req.AmountIncomingTxn.IsZero()
	if req.AmountIncomingTxn.IsZero() && !onAccount {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNothingToApply)
	}

	// Idempotency pre-check by key, then by linked cash transaction. A retry
	// from a payment callback may carry a fresh key but the same cash
	// transaction; both routes replay the stored batch.
	if stored, err := s.settlementRepo.FindBatchByIdempotencyKey(ctx, tenantID, req.IdempotencyKey); err == nil {
		return s.buildStoredResult(ctx, stored, true)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}
	if req.CashTransactionID != nil {
		if stored, err := s.settlementRepo.FindBatchByCashTransactionID(ctx, tenantID, *req.CashTransactionID); err == nil {
			return s.buildStoredResult(ctx, stored, true)
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to check cash transaction linkage: %w", err)
		}
	}

	legalEntity, err := s.partyRepo.FindLegalEntityByID(ctx, tenantID, req.LegalEntityID)
	if err != nil {
		return nil, fmt.Errorf("%w: legal entity %s", apperrors.ErrNotFound, req.LegalEntityID)
	}

	// On-account applies draw their funds from existing unapplied cash.
	var unappliedRows []domain.UnappliedCash
	funds := req.AmountIncomingTxn
	if onAccount {
		unappliedRows, err = s.settlementRepo.FindOpenUnappliedCash(ctx, tenantID, req.LegalEntityID, req.CounterpartyID, currency)
		if err != nil {
			return nil, fmt.Errorf("failed to load unapplied cash: %w", err)
		}
		funds = decimal.Zero
		for _, row := range unappliedRows {
			funds = funds.Add(row.AmountResidual)
		}
	}

	planned, err := s.planAllocations(ctx, tenantID, req, currency, funds)
	if err != nil {
		return nil, err
	}

	allocatedTxn := decimal.Zero
	allocatedBase := decimal.Zero
	for _, p := range planned {
		allocatedTxn = allocatedTxn.Add(p.amountTxn)
		allocatedBase = allocatedBase.Add(p.amountBase)
	}
	if allocatedTxn.GreaterThan(funds) {
		if onAccount {
			return nil, fmt.Errorf("%w: %s (available %s, requested %s)",
				apperrors.ErrValidation, ErrInsufficientUnapplied, funds.String(), allocatedTxn.String())
		}
		return nil, fmt.Errorf("%w: allocations total %s exceeds incoming amount %s",
			apperrors.ErrValidation, allocatedTxn.String(), req.AmountIncomingTxn.String())
	}

	now := time.Now()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     requestingUserID,
		LastUpdatedAt: now,
		LastUpdatedBy: requestingUserID,
	}

	// No-target apply: park the incoming amount as unapplied cash; no batch
	// row and no journal are produced.
	if len(planned) == 0 {
		// Nothing incoming and nothing allocated is a no-op; never park a
		// zero-amount row.
		if req.AmountIncomingTxn.IsZero() {
			return &dto.ApplySettlementResult{}, nil
		}
		row := domain.UnappliedCash{
			UnappliedCashID:   uuid.NewString(),
			TenantID:          tenantID,
			LegalEntityID:     req.LegalEntityID,
			CounterpartyID:    req.CounterpartyID,
			CashTransactionID: req.CashTransactionID,
			CurrencyCode:      currency,
			AmountOriginal:    req.AmountIncomingTxn,
			AmountResidual:    req.AmountIncomingTxn,
			Status:            domain.UnappliedOpen,
			AuditFields:       audit,
		}
		if err := s.settlementRepo.InsertUnappliedCash(ctx, row); err != nil {
			return nil, fmt.Errorf("failed to record unapplied cash: %w", err)
		}
		middleware.GetLoggerFromCtx(ctx).Info("No-target apply parked as unapplied cash",
			"unappliedCashID", row.UnappliedCashID, "amount", row.AmountOriginal.String())
		return &dto.ApplySettlementResult{UnappliedCash: dto.ToUnappliedCashResponse(&row)}, nil
	}

	fxRes, err := s.fxResolver.Resolve(ctx, portssvc.FxLookup{
		TenantID:        tenantID,
		LegalEntityID:   req.LegalEntityID,
		Date:            req.SettlementDate,
		FromCurrency:    currency,
		ToCurrency:      legalEntity.FunctionalCurrency,
		FallbackMode:    valueOrZero(req.FxFallbackMode),
		FallbackMaxDays: intOrZero(req.FxFallbackMaxDays),
		ActorUserID:     requestingUserID,
	})
	if err != nil {
		return nil, err
	}

	pctx := purposeContextFor(req.PaymentChannel, onAccount)
	direction := planned[0].item.Direction
	controlAccount, err := s.purposes.ResolveAccount(ctx, tenantID, req.LegalEntityID, domain.ControlPurpose(direction), pctx)
	if err != nil {
		return nil, err
	}
	offsetAccount, err := s.purposes.ResolveAccount(ctx, tenantID, req.LegalEntityID, domain.OffsetPurpose(direction), pctx)
	if err != nil {
		return nil, err
	}

	settlementID := uuid.NewString()
	entryID := uuid.NewString()
	batch := domain.SettlementBatch{
		SettlementID:      settlementID,
		TenantID:          tenantID,
		LegalEntityID:     req.LegalEntityID,
		CounterpartyID:    req.CounterpartyID,
		SettlementDate:    req.SettlementDate,
		CurrencyCode:      currency,
		AmountIncomingTxn: req.AmountIncomingTxn,
		PaymentChannel:    req.PaymentChannel,
		IdempotencyKey:    req.IdempotencyKey,
		CashTransactionID: req.CashTransactionID,
		JournalEntryID:    &entryID,
		FxRate:            fxRes.Rate,
		FxRateDate:        fxRes.RateDate,
		FxSource:          fxRes.Source,
		Status:            domain.SettlementPosted,
		AuditFields:       audit,
	}

	allocations := make([]domain.SettlementAllocation, len(planned))
	residualChanges := make(map[string]portsrepo.ResidualChange, len(planned))
	for i, p := range planned {
		allocations[i] = domain.SettlementAllocation{
			AllocationID: uuid.NewString(),
			SettlementID: settlementID,
			OpenItemID:   p.item.OpenItemID,
			AmountTxn:    p.amountTxn,
			AmountBase:   p.amountBase,
			AuditFields:  audit,
		}
		residualChanges[p.item.OpenItemID] = portsrepo.ResidualChange{
			DeltaTxn:  p.amountTxn,
			DeltaBase: p.amountBase,
		}
	}

	// Settling a receivable moves cash in (debit offset, credit control);
	// settling a payable mirrors that.
	offsetSide := domain.Debit
	if direction == domain.Payable {
		offsetSide = domain.Credit
	}
	sourceRef := "CARI_SETTLEMENT:" + settlementID
	entry := domain.JournalEntry{
		JournalEntryID: entryID,
		TenantID:       tenantID,
		LegalEntityID:  req.LegalEntityID,
		JournalDate:    req.SettlementDate,
		Description:    fmt.Sprintf("Settlement %s (%s)", settlementID, req.PaymentChannel),
		CurrencyCode:   legalEntity.FunctionalCurrency,
		SourceType:     domain.SourceCariSettlement,
		DocType:        "SETTLEMENT",
		Status:         domain.JournalPosted,
		AuditFields:    audit,
	}
	lines := []domain.JournalLine{
		{
			JournalLineID:  uuid.NewString(),
			JournalEntryID: entryID,
			AccountID:      offsetAccount,
			Amount:         allocatedBase,
			Side:           offsetSide,
			SourceRef:      sourceRef,
			AuditFields:    audit,
		},
		{
			JournalLineID:  uuid.NewString(),
			JournalEntryID: entryID,
			AccountID:      controlAccount,
			Amount:         allocatedBase,
			Side:           offsetSide.Mirror(),
			SourceRef:      sourceRef,
			AuditFields:    audit,
		},
	}
	if err := accounting.ValidateEntryBalance(lines); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInternal, err)
	}

	plan := portsrepo.SettlementPlan{
		Batch:           batch,
		Allocations:     allocations,
		ResidualChanges: residualChanges,
		Entry:           &entry,
		Lines:           lines,
	}

	if onAccount {
		plan.ConsumeUnapplied = planUnappliedConsumption(unappliedRows, allocatedTxn)
	} else if remainder := req.AmountIncomingTxn.Sub(allocatedTxn); remainder.IsPositive() {
		// Over-collection parks the remainder as unapplied cash.
		plan.UnappliedCash = &domain.UnappliedCash{
			UnappliedCashID:    uuid.NewString(),
			TenantID:           tenantID,
			LegalEntityID:      req.LegalEntityID,
			CounterpartyID:     req.CounterpartyID,
			SourceSettlementID: &settlementID,
			CashTransactionID:  req.CashTransactionID,
			CurrencyCode:       currency,
			AmountOriginal:     remainder,
			AmountResidual:     remainder,
			Status:             domain.UnappliedOpen,
			AuditFields:        audit,
		}
	}

	result, err := s.settlementRepo.ApplySettlement(ctx, plan)
	if err != nil {
		return nil, err
	}
	if result.IdempotentReplay {
		// A concurrent call with the same key won the race; replay its batch.
		return s.buildStoredResult(ctx, result.Batch, true)
	}

	middleware.GetLoggerFromCtx(ctx).Info("Settlement applied",
		"settlementID", settlementID, "allocations", len(allocations),
		"allocatedTxn", allocatedTxn.String(), "fxSource", string(fxRes.Source))

	row := dto.ToSettlementResponse(result.Batch)
	return &dto.ApplySettlementResult{
		Row:           &row,
		Allocations:   dto.ToAllocationResponses(allocations),
		UnappliedCash: dto.ToUnappliedCashResponse(plan.UnappliedCash),
		Fx:            dto.ToFxResolutionResponse(fxRes),
	}, nil
}

// planAllocations turns explicit targets or the auto-allocate flag into a
// validated allocation list. An empty list with auto-allocate off signals the
// no-target path.
func (s *settlementService) planAllocations(ctx context.Context, tenantID string, req dto.ApplySettlementRequest, currency string, funds decimal.Decimal) ([]plannedAllocation, error) {
	if len(req.Allocations) > 0 {
		ids := make([]string, 0, len(req.Allocations))
		seen := make(map[string]bool, len(req.Allocations))
		for _, input := range req.Allocations {
			if seen[input.OpenItemID] {
				return nil, fmt.Errorf("%w: %s (%s)", apperrors.ErrValidation, ErrDuplicateAllocation, input.OpenItemID)
			}
			seen[input.OpenItemID] = true
			ids = append(ids, input.OpenItemID)
		}

		items, err := s.openItemRepo.FindOpenItemsByIDs(ctx, tenantID, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load open items: %w", err)
		}

		planned := make([]plannedAllocation, 0, len(req.Allocations))
		for _, input := range req.Allocations {
			item, ok := items[input.OpenItemID]
			if !ok {
				return nil, fmt.Errorf("%w: unknown open item %s", apperrors.ErrValidation, input.OpenItemID)
			}
			if err := validateAllocationTarget(&item, req, currency); err != nil {
				return nil, err
			}
			if input.AmountTxn.LessThanOrEqual(decimal.Zero) {
				return nil, fmt.Errorf("%w: allocation amount must be positive for open item %s", apperrors.ErrValidation, input.OpenItemID)
			}
			if input.AmountTxn.GreaterThan(item.ResidualTxn) {
				return nil, fmt.Errorf("%w: %s (open item %s, residual %s, requested %s)",
					apperrors.ErrValidation, ErrResidualExceeded, input.OpenItemID, item.ResidualTxn.String(), input.AmountTxn.String())
			}
			planned = append(planned, plannedAllocation{
				item:       item,
				amountTxn:  input.AmountTxn,
				amountBase: allocationBase(&item, input.AmountTxn),
			})
		}
		return planned, nil
	}

	if !req.AutoAllocate {
		return nil, nil
	}

	// Auto-allocate walks the counterparty's open items oldest first until the
	// funds run out.
	remaining := funds
	var planned []plannedAllocation
	nextToken := (*string)(nil)
	for remaining.IsPositive() {
		items, token, err := s.openItemRepo.ListOpenItemsByCounterparty(ctx, tenantID, req.LegalEntityID, req.CounterpartyID, true, 100, nextToken)
		if err != nil {
			return nil, fmt.Errorf("failed to list open items: %w", err)
		}
		for _, item := range items {
			if !remaining.IsPositive() {
				break
			}
			if item.CurrencyCode != currency {
				continue
			}
			take := decimal.Min(remaining, item.ResidualTxn)
			if !take.IsPositive() {
				continue
			}
			planned = append(planned, plannedAllocation{
				item:       item,
				amountTxn:  take,
				amountBase: allocationBase(&item, take),
			})
			remaining = remaining.Sub(take)
		}
		if token == nil {
			break
		}
		nextToken = token
	}
	return planned, nil
}

// validateAllocationTarget rejects open items outside the request's scope.
func validateAllocationTarget(item *domain.OpenItem, req dto.ApplySettlementRequest, currency string) error {
	if item.LegalEntityID != req.LegalEntityID || item.CounterpartyID != req.CounterpartyID {
		return fmt.Errorf("%w: open item %s does not belong to the settlement's counterparty", apperrors.ErrValidation, item.OpenItemID)
	}
	if item.CurrencyCode != currency {
		return fmt.Errorf("%w: open item %s currency %s does not match settlement currency %s",
			apperrors.ErrValidation, item.OpenItemID, item.CurrencyCode, currency)
	}
	if item.Status != domain.OpenItemOpen {
		return fmt.Errorf("%w: open item %s is already settled", apperrors.ErrValidation, item.OpenItemID)
	}
	return nil
}

// allocationBase prorates the base-currency reduction from the item's own
// original rate so that a full settle lands the base residual exactly on zero.
// The prorated delta is capped at the remaining base residual: rounding on
// earlier partial allocations must never push residual_base below zero while
// residual_txn is still positive.
func allocationBase(item *domain.OpenItem, amountTxn decimal.Decimal) decimal.Decimal {
	if accounting.WithinEpsilon(amountTxn, item.ResidualTxn) {
		return item.ResidualBase
	}
	base := item.AmountOrigBase.Mul(amountTxn).Div(item.AmountOrigTxn).Round(2)
	return decimal.Min(base, item.ResidualBase)
}

// planUnappliedConsumption drains unapplied cash rows oldest first to cover
// the allocated total.
func planUnappliedConsumption(rows []domain.UnappliedCash, total decimal.Decimal) []portsrepo.UnappliedConsumption {
	remaining := total
	var consumptions []portsrepo.UnappliedConsumption
	for _, row := range rows {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(remaining, row.AmountResidual)
		if !take.IsPositive() {
			continue
		}
		consumptions = append(consumptions, portsrepo.UnappliedConsumption{
			UnappliedCashID: row.UnappliedCashID,
			Amount:          take,
		})
		remaining = remaining.Sub(take)
	}
	return consumptions
}

// purposeContextFor picks the account-resolution context: on-account applies
// use ON_ACCOUNT, cash-based channels use CASH, everything else MANUAL.
func purposeContextFor(channel domain.PaymentChannel, onAccount bool) domain.PurposeContext {
	if onAccount {
		return domain.ContextOnAccount
	}
	switch channel {
	case domain.ChannelCash, domain.ChannelBank:
		return domain.ContextCash
	default:
		return domain.ContextManual
	}
}

// buildStoredResult assembles the response for an existing batch, used for
// both idempotent replays and reads.
func (s *settlementService) buildStoredResult(ctx context.Context, batch *domain.SettlementBatch, replay bool) (*dto.ApplySettlementResult, error) {
	allocations, err := s.settlementRepo.FindAllocationsBySettlementID(ctx, batch.TenantID, batch.SettlementID)
	if err != nil {
		return nil, fmt.Errorf("failed to load allocations: %w", err)
	}
	unapplied, err := s.settlementRepo.FindUnappliedCashBySettlementID(ctx, batch.TenantID, batch.SettlementID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to load unapplied cash: %w", err)
	}

	if replay {
		middleware.GetLoggerFromCtx(ctx).Info("Settlement replayed idempotently",
			"settlementID", batch.SettlementID, "idempotencyKey", batch.IdempotencyKey)
	}

	row := dto.ToSettlementResponse(batch)
	return &dto.ApplySettlementResult{
		Row:              &row,
		Allocations:      dto.ToAllocationResponses(allocations),
		UnappliedCash:    dto.ToUnappliedCashResponse(unapplied),
		Fx: &dto.FxResolutionResponse{
			Rate:     batch.FxRate,
			RateDate: batch.FxRateDate,
			Source:   batch.FxSource,
		},
		IdempotentReplay: replay,
	}, nil
}

func (s *settlementService) GetSettlementByID(ctx context.Context, tenantID, settlementID, requestingUserID string) (*dto.ApplySettlementResult, error) {
	batch, err := s.settlementRepo.FindBatchByID(ctx, tenantID, settlementID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AssertScopeAccess(ctx, requestingUserID, tenantID, batch.LegalEntityID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.buildStoredResult(ctx, batch, false)
}

func (s *settlementService) ListSettlements(ctx context.Context, tenantID string, params dto.ListSettlementsParams, requestingUserID string) (*dto.ListSettlementsResponse, error) {
	if err := s.authz.AssertScopeAccess(ctx, requestingUserID, tenantID, params.LegalEntityID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	batches, nextToken, err := s.settlementRepo.ListBatchesByCounterparty(ctx, tenantID, params.LegalEntityID, params.CounterpartyID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	return &dto.ListSettlementsResponse{
		Settlements: dto.ToSettlementResponses(batches),
		NextToken:   nextToken,
	}, nil
}

// ListOpenItemsByDocument returns the document's open items (one today, kept
// as a list for future line-level splits).
func (s *settlementService) ListOpenItemsByDocument(ctx context.Context, tenantID, documentID, requestingUserID string) (*dto.ListOpenItemsResponse, error) {
	items, err := s.openItemRepo.FindOpenItemsByDocumentID(ctx, tenantID, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load open items: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no open items for document %s", apperrors.ErrNotFound, documentID)
	}
	if err := s.authz.AssertScopeAccess(ctx, requestingUserID, tenantID, items[0].LegalEntityID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return &dto.ListOpenItemsResponse{OpenItems: dto.ToOpenItemResponses(items)}, nil
}

func (s *settlementService) ListOpenItems(ctx context.Context, tenantID string, params dto.ListOpenItemsParams, requestingUserID string) (*dto.ListOpenItemsResponse, error) {
	if err := s.authz.AssertScopeAccess(ctx, requestingUserID, tenantID, params.LegalEntityID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	items, nextToken, err := s.openItemRepo.ListOpenItemsByCounterparty(ctx, tenantID, params.LegalEntityID, params.CounterpartyID, params.OnlyOpen, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list open items: %w", err)
	}
	return &dto.ListOpenItemsResponse{
		OpenItems: dto.ToOpenItemResponses(items),
		NextToken: nextToken,
	}, nil
}

func valueOrZero(mode *domain.FxFallbackMode) domain.FxFallbackMode {
	if mode == nil {
		return ""
	}
	return *mode
}

func intOrZero(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
