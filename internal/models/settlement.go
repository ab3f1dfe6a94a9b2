package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementBatch is the database representation of a settlement batch.
type SettlementBatch struct {
	SettlementID      string          `json:"settlementID" db:"settlement_id"`
	TenantID          string          `json:"tenantID" db:"tenant_id"`
	LegalEntityID     string          `json:"legalEntityID" db:"legal_entity_id"`
	CounterpartyID    string          `json:"counterpartyID" db:"counterparty_id"`
	SettlementDate    time.Time       `json:"settlementDate" db:"settlement_date"`
	CurrencyCode      string          `json:"currencyCode" db:"currency_code"`
	AmountIncomingTxn decimal.Decimal `json:"amountIncomingTxn" db:"amount_incoming_txn"`
	PaymentChannel    string          `json:"paymentChannel" db:"payment_channel"`
	IdempotencyKey    string          `json:"idempotencyKey" db:"idempotency_key"`
	CashTransactionID *string         `json:"cashTransactionID" db:"cash_transaction_id"`
	JournalEntryID    *string         `json:"journalEntryID" db:"journal_entry_id"`
	FxRate            decimal.Decimal `json:"fxRate" db:"fx_rate"`
	FxRateDate        time.Time       `json:"fxRateDate" db:"fx_rate_date"`
	FxSource          string          `json:"fxSource" db:"fx_source"`
	Status            string          `json:"status" db:"status"`
	AuditFields
}

// SettlementAllocation is the database representation of one allocation row.
type SettlementAllocation struct {
	AllocationID string          `json:"allocationID" db:"allocation_id"`
	SettlementID string          `json:"settlementID" db:"settlement_id"`
	OpenItemID   string          `json:"openItemID" db:"open_item_id"`
	AmountTxn    decimal.Decimal `json:"amountTxn" db:"amount_txn"`
	AmountBase   decimal.Decimal `json:"amountBase" db:"amount_base"`
	AuditFields
}

// UnappliedCash is the database representation of an unapplied cash row.
type UnappliedCash struct {
	UnappliedCashID    string          `json:"unappliedCashID" db:"unapplied_cash_id"`
	TenantID           string          `json:"tenantID" db:"tenant_id"`
	LegalEntityID      string          `json:"legalEntityID" db:"legal_entity_id"`
	CounterpartyID     string          `json:"counterpartyID" db:"counterparty_id"`
	SourceSettlementID *string         `json:"sourceSettlementID" db:"source_settlement_id"`
	CashTransactionID  *string         `json:"cashTransactionID" db:"cash_transaction_id"`
	CurrencyCode       string          `json:"currencyCode" db:"currency_code"`
	AmountOriginal     decimal.Decimal `json:"amountOriginal" db:"amount_original"`
	AmountResidual     decimal.Decimal `json:"amountResidual" db:"amount_residual"`
	Status             string          `json:"status" db:"status"`
	AuditFields
}
