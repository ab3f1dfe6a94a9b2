package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is the database representation of a ledger journal entry.
// The table is append-only; rows are never deleted.
type JournalEntry struct {
	JournalEntryID          string    `json:"journalEntryID" db:"journal_entry_id"`
	TenantID                string    `json:"tenantID" db:"tenant_id"`
	LegalEntityID           string    `json:"legalEntityID" db:"legal_entity_id"`
	JournalDate             time.Time `json:"journalDate" db:"journal_date"`
	Description             string    `json:"description" db:"description"`
	CurrencyCode            string    `json:"currencyCode" db:"currency_code"`
	SourceType              string    `json:"sourceType" db:"source_type"`
	DocType                 string    `json:"docType" db:"doc_type"`
	Status                  string    `json:"status" db:"status"`
	OriginalJournalEntryID  *string   `json:"originalJournalEntryID" db:"original_journal_entry_id"`
	ReversingJournalEntryID *string   `json:"reversingJournalEntryID" db:"reversing_journal_entry_id"`
	AuditFields
}

// JournalLine is the database representation of one journal line.
type JournalLine struct {
	JournalLineID  string          `json:"journalLineID" db:"journal_line_id"`
	JournalEntryID string          `json:"journalEntryID" db:"journal_entry_id"`
	AccountID      string          `json:"accountID" db:"account_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	Side           string          `json:"side" db:"side"`
	SourceRef      string          `json:"sourceRef" db:"source_ref"`
	AuditFields
}
