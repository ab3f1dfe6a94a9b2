package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a general-ledger journal entry.
type JournalStatus string

const (
	JournalPosted   JournalStatus = "POSTED"
	JournalReversed JournalStatus = "REVERSED"
)

// JournalSourceType records which subledger engine produced an entry.
type JournalSourceType string

const (
	SourceCariDocument   JournalSourceType = "CARI_DOCUMENT"
	SourceCariSettlement JournalSourceType = "CARI_SETTLEMENT"
	SourceCariReversal   JournalSourceType = "CARI_REVERSAL"
)

// JournalSide marks a line as debit or credit.
type JournalSide string

const (
	Debit  JournalSide = "DEBIT"
	Credit JournalSide = "CREDIT"
)

// JournalEntry is a balanced general-ledger posting. The journal store is
// append-only: entries are never deleted, only cross-linked to a reversing
// entry and marked REVERSED.
type JournalEntry struct {
	JournalEntryID           string            `json:"journalEntryID"`
	TenantID                 string            `json:"tenantID"`
	LegalEntityID            string            `json:"legalEntityID"`
	JournalDate              time.Time         `json:"journalDate"`
	Description              string            `json:"description"`
	CurrencyCode             string            `json:"currencyCode"` // base currency
	SourceType               JournalSourceType `json:"sourceType"`
	DocType                  string            `json:"docType"`
	Status                   JournalStatus     `json:"status"`
	OriginalJournalEntryID   *string           `json:"originalJournalEntryID"`
	ReversingJournalEntryID  *string           `json:"reversingJournalEntryID"`
	AuditFields
}

// JournalLine is one side of a journal entry in base currency. Amounts are
// always positive; the side carries the sign.
type JournalLine struct {
	JournalLineID  string          `json:"journalLineID"`
	JournalEntryID string          `json:"journalEntryID"`
	AccountID      string          `json:"accountID"`
	Amount         decimal.Decimal `json:"amount"`
	Side           JournalSide     `json:"side"`
	SourceRef      string          `json:"sourceRef"` // e.g. CARI_DOC:<documentId>
	AuditFields
}

// Mirror returns the opposite side, used when building reversal lines.
func (s JournalSide) Mirror() JournalSide {
	if s == Debit {
		return Credit
	}
	return Debit
}
