package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentChannel identifies how settlement cash arrived.
type PaymentChannel string

const (
	ChannelManual PaymentChannel = "MANUAL"
	ChannelCash   PaymentChannel = "CASH"
	ChannelBank   PaymentChannel = "BANK"
)

// SettlementStatus is the state of a settlement batch. Batches are immutable
// after creation apart from cash-transaction linkage back-fill.
type SettlementStatus string

const (
	SettlementPosted SettlementStatus = "POSTED"
)

// SettlementBatch records one cash-application event.
type SettlementBatch struct {
	SettlementID      string           `json:"settlementID"`
	TenantID          string           `json:"tenantID"`
	LegalEntityID     string           `json:"legalEntityID"`
	CounterpartyID    string           `json:"counterpartyID"`
	SettlementDate    time.Time        `json:"settlementDate"`
	CurrencyCode      string           `json:"currencyCode"`
	AmountIncomingTxn decimal.Decimal  `json:"amountIncomingTxn"`
	PaymentChannel    PaymentChannel   `json:"paymentChannel"`
	IdempotencyKey    string           `json:"idempotencyKey"`
	CashTransactionID *string          `json:"cashTransactionID"`
	JournalEntryID    *string          `json:"journalEntryID"`
	FxRate            decimal.Decimal  `json:"fxRate"`
	FxRateDate        time.Time        `json:"fxRateDate"`
	FxSource          FxSource         `json:"fxSource"`
	Status            SettlementStatus `json:"status"`
	AuditFields
}

// SettlementAllocation records how much of a batch's incoming cash reduced
// which open item's residual. Allocations are created alongside their batch
// and never mutated.
type SettlementAllocation struct {
	AllocationID string          `json:"allocationID"`
	SettlementID string          `json:"settlementID"`
	OpenItemID   string          `json:"openItemID"`
	AmountTxn    decimal.Decimal `json:"amountTxn"`
	AmountBase   decimal.Decimal `json:"amountBase"`
	AuditFields
}

// UnappliedCashStatus is the consumption state of an unapplied cash row.
type UnappliedCashStatus string

const (
	UnappliedOpen     UnappliedCashStatus = "OPEN"
	UnappliedConsumed UnappliedCashStatus = "CONSUMED"
)

// UnappliedCash is cash received but not matched to any open item
// (over-collection), consumable by a later on-account settlement.
type UnappliedCash struct {
	UnappliedCashID    string              `json:"unappliedCashID"`
	TenantID           string              `json:"tenantID"`
	LegalEntityID      string              `json:"legalEntityID"`
	CounterpartyID     string              `json:"counterpartyID"`
	SourceSettlementID *string             `json:"sourceSettlementID"`
	CashTransactionID  *string             `json:"cashTransactionID"`
	CurrencyCode       string              `json:"currencyCode"`
	AmountOriginal     decimal.Decimal     `json:"amountOriginal"`
	AmountResidual     decimal.Decimal     `json:"amountResidual"`
	Status             UnappliedCashStatus `json:"status"`
	AuditFields
}
