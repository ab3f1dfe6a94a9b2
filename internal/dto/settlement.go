package dto

import (
	"time"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AllocationInput targets one open item with an explicit amount.
type AllocationInput struct {
	OpenItemID string          `json:"openItemID" binding:"required"`
	AmountTxn  decimal.Decimal `json:"amountTxn" binding:"required"`
}

// ApplySettlementRequest is the payload for one cash-application event.
// Either explicit Allocations or AutoAllocate steer matching; with neither,
// the incoming amount lands as unapplied cash.
type ApplySettlementRequest struct {
	LegalEntityID     string                 `json:"legalEntityID" binding:"required"`
	CounterpartyID    string                 `json:"counterpartyID" binding:"required"`
	SettlementDate    time.Time              `json:"settlementDate" binding:"required"`
	CurrencyCode      string                 `json:"currencyCode" binding:"required,len=3"`
	AmountIncomingTxn decimal.Decimal        `json:"amountIncomingTxn"`
	PaymentChannel    domain.PaymentChannel  `json:"paymentChannel" binding:"required,oneof=MANUAL CASH BANK"`
	IdempotencyKey    string                 `json:"idempotencyKey" binding:"required"`
	CashTransactionID *string                `json:"cashTransactionID"`
	Allocations       []AllocationInput      `json:"allocations"`
	AutoAllocate      bool                   `json:"autoAllocate"`
	UseUnappliedCash  bool                   `json:"useUnappliedCash"`
	FxFallbackMode    *domain.FxFallbackMode `json:"fxFallbackMode"`
	FxFallbackMaxDays *int                   `json:"fxFallbackMaxDays"`
}

// SettlementResponse is the external representation of a settlement batch.
type SettlementResponse struct {
	SettlementID      string                `json:"settlementID"`
	LegalEntityID     string                `json:"legalEntityID"`
	CounterpartyID    string                `json:"counterpartyID"`
	SettlementDate    time.Time             `json:"settlementDate"`
	CurrencyCode      string                `json:"currencyCode"`
	AmountIncomingTxn decimal.Decimal       `json:"amountIncomingTxn"`
	PaymentChannel    domain.PaymentChannel `json:"paymentChannel"`
	IdempotencyKey    string                `json:"idempotencyKey"`
	CashTransactionID *string               `json:"cashTransactionID,omitempty"`
	JournalEntryID    *string               `json:"journalEntryID,omitempty"`
	CreatedAt         time.Time             `json:"createdAt"`
}

// AllocationResponse is one allocation row.
type AllocationResponse struct {
	AllocationID string          `json:"allocationID"`
	OpenItemID   string          `json:"openItemID"`
	AmountTxn    decimal.Decimal `json:"amountTxn"`
	AmountBase   decimal.Decimal `json:"amountBase"`
}

// UnappliedCashResponse is one unapplied cash row.
type UnappliedCashResponse struct {
	UnappliedCashID string                     `json:"unappliedCashID"`
	CounterpartyID  string                     `json:"counterpartyID"`
	CurrencyCode    string                     `json:"currencyCode"`
	AmountOriginal  decimal.Decimal            `json:"amountOriginal"`
	AmountResidual  decimal.Decimal            `json:"amountResidual"`
	Status          domain.UnappliedCashStatus `json:"status"`
}

// ListSettlementsParams filters the settlement list endpoint.
type ListSettlementsParams struct {
	LegalEntityID  string  `form:"legalEntityID" binding:"required"`
	CounterpartyID string  `form:"counterpartyID" binding:"required"`
	Limit          int     `form:"limit"`
	NextToken      *string `form:"nextToken"`
}

// ListSettlementsResponse is a page of settlement batches.
type ListSettlementsResponse struct {
	Settlements []SettlementResponse `json:"settlements"`
	NextToken   *string              `json:"nextToken,omitempty"`
}

// ApplySettlementResult is returned by apply. Row is nil for a no-target
// apply, where only the unapplied cash reference is populated.
type ApplySettlementResult struct {
	Row              *SettlementResponse   `json:"row"`
	Allocations      []AllocationResponse  `json:"allocations,omitempty"`
	UnappliedCash    *UnappliedCashResponse `json:"unappliedCash,omitempty"`
	Fx               *FxResolutionResponse `json:"fx,omitempty"`
	IdempotentReplay bool                  `json:"idempotentReplay"`
}

// ToSettlementResponse converts a domain batch to its DTO.
func ToSettlementResponse(b *domain.SettlementBatch) SettlementResponse {
	return SettlementResponse{
		SettlementID:      b.SettlementID,
		LegalEntityID:     b.LegalEntityID,
		CounterpartyID:    b.CounterpartyID,
		SettlementDate:    b.SettlementDate,
		CurrencyCode:      b.CurrencyCode,
		AmountIncomingTxn: b.AmountIncomingTxn,
		PaymentChannel:    b.PaymentChannel,
		IdempotencyKey:    b.IdempotencyKey,
		CashTransactionID: b.CashTransactionID,
		JournalEntryID:    b.JournalEntryID,
		CreatedAt:         b.CreatedAt,
	}
}

// ToSettlementResponses converts a slice of batches.
func ToSettlementResponses(batches []domain.SettlementBatch) []SettlementResponse {
	responses := make([]SettlementResponse, len(batches))
	for i := range batches {
		responses[i] = ToSettlementResponse(&batches[i])
	}
	return responses
}

// ToAllocationResponses converts allocation rows.
func ToAllocationResponses(allocs []domain.SettlementAllocation) []AllocationResponse {
	responses := make([]AllocationResponse, len(allocs))
	for i, a := range allocs {
		responses[i] = AllocationResponse{
			AllocationID: a.AllocationID,
			OpenItemID:   a.OpenItemID,
			AmountTxn:    a.AmountTxn,
			AmountBase:   a.AmountBase,
		}
	}
	return responses
}

// ToUnappliedCashResponse converts a domain row, nil-safe.
func ToUnappliedCashResponse(u *domain.UnappliedCash) *UnappliedCashResponse {
	if u == nil {
		return nil
	}
	return &UnappliedCashResponse{
		UnappliedCashID: u.UnappliedCashID,
		CounterpartyID:  u.CounterpartyID,
		CurrencyCode:    u.CurrencyCode,
		AmountOriginal:  u.AmountOriginal,
		AmountResidual:  u.AmountResidual,
		Status:          u.Status,
	}
}
