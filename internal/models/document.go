package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document is the database representation of a subledger document.
type Document struct {
	DocumentID               string          `json:"documentID" db:"document_id"`
	TenantID                 string          `json:"tenantID" db:"tenant_id"`
	LegalEntityID            string          `json:"legalEntityID" db:"legal_entity_id"`
	CounterpartyID           string          `json:"counterpartyID" db:"counterparty_id"`
	Direction                string          `json:"direction" db:"direction"`
	DocumentType             string          `json:"documentType" db:"document_type"`
	DocumentDate             time.Time       `json:"documentDate" db:"document_date"`
	DueDate                  *time.Time      `json:"dueDate" db:"due_date"`
	AmountTxn                decimal.Decimal `json:"amountTxn" db:"amount_txn"`
	AmountBase               decimal.Decimal `json:"amountBase" db:"amount_base"`
	CurrencyCode             string          `json:"currencyCode" db:"currency_code"`
	FxRate                   decimal.Decimal `json:"fxRate" db:"fx_rate"`
	PaymentTermID            *string         `json:"paymentTermID" db:"payment_term_id"`
	Status                   string          `json:"status" db:"status"`
	SequenceNamespace        string          `json:"sequenceNamespace" db:"sequence_namespace"`
	DocumentNumber           string          `json:"documentNumber" db:"document_number"`
	PostedJournalEntryID     *string         `json:"postedJournalEntryID" db:"posted_journal_entry_id"`
	ReversalOfDocumentID     *string         `json:"reversalOfDocumentID" db:"reversal_of_document_id"`
	CounterpartyNameSnapshot string          `json:"counterpartyNameSnapshot" db:"counterparty_name_snapshot"`
	Description              string          `json:"description" db:"description"`
	AuditFields
}

// OpenItem is the database representation of an open item.
type OpenItem struct {
	OpenItemID     string          `json:"openItemID" db:"open_item_id"`
	TenantID       string          `json:"tenantID" db:"tenant_id"`
	LegalEntityID  string          `json:"legalEntityID" db:"legal_entity_id"`
	DocumentID     string          `json:"documentID" db:"document_id"`
	CounterpartyID string          `json:"counterpartyID" db:"counterparty_id"`
	Direction      string          `json:"direction" db:"direction"`
	CurrencyCode   string          `json:"currencyCode" db:"currency_code"`
	AmountOrigTxn  decimal.Decimal `json:"amountOrigTxn" db:"amount_orig_txn"`
	AmountOrigBase decimal.Decimal `json:"amountOrigBase" db:"amount_orig_base"`
	ResidualTxn    decimal.Decimal `json:"residualTxn" db:"residual_txn"`
	ResidualBase   decimal.Decimal `json:"residualBase" db:"residual_base"`
	Status         string          `json:"status" db:"status"`
	AuditFields
}
