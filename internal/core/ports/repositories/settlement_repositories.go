package repositories

import (
	"context"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UnappliedConsumption instructs the settlement writer to consume part of an
// existing unapplied cash row.
type UnappliedConsumption struct {
	UnappliedCashID string
	Amount          decimal.Decimal
}

// SettlementPlan is the fully computed write set for one apply call. The
// writer persists it atomically, re-validating residuals under row locks.
type SettlementPlan struct {
	Batch            domain.SettlementBatch
	Allocations      []domain.SettlementAllocation
	ResidualChanges  map[string]ResidualChange
	Entry            *domain.JournalEntry
	Lines            []domain.JournalLine
	UnappliedCash    *domain.UnappliedCash
	ConsumeUnapplied []UnappliedConsumption
}

// SettlementResult is the outcome of persisting (or replaying) a plan.
type SettlementResult struct {
	Batch            *domain.SettlementBatch
	IdempotentReplay bool
}

// SettlementReader defines read operations for settlement batches.
type SettlementReader interface {
	FindBatchByID(ctx context.Context, tenantID, settlementID string) (*domain.SettlementBatch, error)

	// FindBatchByIdempotencyKey returns ErrNotFound when no batch carries the key.
	FindBatchByIdempotencyKey(ctx context.Context, tenantID, idempotencyKey string) (*domain.SettlementBatch, error)

	// FindBatchByCashTransactionID returns ErrNotFound when no batch links the
	// cash transaction.
	FindBatchByCashTransactionID(ctx context.Context, tenantID, cashTransactionID string) (*domain.SettlementBatch, error)

	FindAllocationsBySettlementID(ctx context.Context, tenantID, settlementID string) ([]domain.SettlementAllocation, error)

	// ListBatchesByCounterparty returns batches newest first with token
	// pagination.
	ListBatchesByCounterparty(ctx context.Context, tenantID, legalEntityID, counterpartyID string, limit int, nextToken *string) ([]domain.SettlementBatch, *string, error)

	// FindOpenUnappliedCash returns the counterparty's consumable unapplied
	// cash rows, oldest first.
	FindOpenUnappliedCash(ctx context.Context, tenantID, legalEntityID, counterpartyID, currencyCode string) ([]domain.UnappliedCash, error)

	FindUnappliedCashBySettlementID(ctx context.Context, tenantID, settlementID string) (*domain.UnappliedCash, error)
}

// SettlementWriter persists settlement plans.
type SettlementWriter interface {
	// ApplySettlement persists the plan in one transaction, serialized per
	// idempotency key. When a batch with the same (tenant, idempotency key)
	// or (tenant, cash transaction id) already exists, the stored batch is
	// returned with IdempotentReplay set and nothing is written.
	ApplySettlement(ctx context.Context, plan SettlementPlan) (*SettlementResult, error)

	// InsertUnappliedCash records an unapplied cash row outside any batch
	// (no-target apply path).
	InsertUnappliedCash(ctx context.Context, row domain.UnappliedCash) error
}

// SettlementRepositoryFacade combines all settlement repository interfaces.
type SettlementRepositoryFacade interface {
	SettlementReader
	SettlementWriter
}
