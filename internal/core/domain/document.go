package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Direction indicates which side of the subledger a document lives on.
type Direction string

const (
	Receivable Direction = "AR"
	Payable    Direction = "AP"
)

// DocumentType classifies a subledger document.
type DocumentType string

const (
	DocTypeInvoice    DocumentType = "INVOICE"
	DocTypePayment    DocumentType = "PAYMENT"
	DocTypeCreditNote DocumentType = "CREDIT_NOTE"
	DocTypeAdjustment DocumentType = "ADJUSTMENT"
	// DocTypeOpeningBalance is reserved for migration tooling writing rows
	// directly; normal intake rejects it.
	DocTypeOpeningBalance DocumentType = "OPENING_BALANCE"
)

// DocumentStatus is the lifecycle state of a document.
type DocumentStatus string

const (
	DocStatusDraft            DocumentStatus = "DRAFT"
	DocStatusPosted           DocumentStatus = "POSTED"
	DocStatusPartiallySettled DocumentStatus = "PARTIALLY_SETTLED"
	DocStatusSettled          DocumentStatus = "SETTLED"
	DocStatusCancelled        DocumentStatus = "CANCELLED"
	DocStatusReversed         DocumentStatus = "REVERSED"
)

// DocumentEvent names a lifecycle transition trigger.
type DocumentEvent string

const (
	EventPost            DocumentEvent = "POST"
	EventCancel          DocumentEvent = "CANCEL"
	EventPartiallySettle DocumentEvent = "PARTIALLY_SETTLE"
	EventSettle          DocumentEvent = "SETTLE"
	EventReverse         DocumentEvent = "REVERSE"
)

// SequenceNamespaceDraft is the numbering namespace drafts draw from until
// posting assigns the permanent, type-keyed namespace.
const SequenceNamespaceDraft = "DRAFT"

// FormatDocumentNumber renders a sequence counter into the user-visible
// number, e.g. INVOICE-000042.
func FormatDocumentNumber(namespace string, n int64) string {
	return fmt.Sprintf("%s-%06d", namespace, n)
}

// documentTransitions is the single source of truth for legal lifecycle moves.
var documentTransitions = map[DocumentStatus]map[DocumentEvent]DocumentStatus{
	DocStatusDraft: {
		EventPost:   DocStatusPosted,
		EventCancel: DocStatusCancelled,
	},
	DocStatusPosted: {
		EventPartiallySettle: DocStatusPartiallySettled,
		EventSettle:          DocStatusSettled,
		EventReverse:         DocStatusReversed,
	},
	DocStatusPartiallySettled: {
		EventPartiallySettle: DocStatusPartiallySettled,
		EventSettle:          DocStatusSettled,
		EventReverse:         DocStatusReversed,
	},
	DocStatusSettled: {
		EventReverse: DocStatusReversed,
	},
}

// NextDocumentStatus resolves the target status for an event, or an error when
// the transition is illegal from the current status.
func NextDocumentStatus(from DocumentStatus, event DocumentEvent) (DocumentStatus, error) {
	events, ok := documentTransitions[from]
	if !ok {
		return "", fmt.Errorf("document status %s is terminal", from)
	}
	to, ok := events[event]
	if !ok {
		return "", fmt.Errorf("event %s is not allowed from status %s", event, from)
	}
	return to, nil
}

// Document represents a single AR/AP subledger event (invoice, payment, adjustment).
type Document struct {
	DocumentID               string          `json:"documentID"`
	TenantID                 string          `json:"tenantID"`
	LegalEntityID            string          `json:"legalEntityID"`
	CounterpartyID           string          `json:"counterpartyID"`
	Direction                Direction       `json:"direction"`
	DocumentType             DocumentType    `json:"documentType"`
	DocumentDate             time.Time       `json:"documentDate"`
	DueDate                  *time.Time      `json:"dueDate"`
	AmountTxn                decimal.Decimal `json:"amountTxn"`
	AmountBase               decimal.Decimal `json:"amountBase"`
	CurrencyCode             string          `json:"currencyCode"`
	FxRate                   decimal.Decimal `json:"fxRate"`
	PaymentTermID            *string         `json:"paymentTermID"`
	Status                   DocumentStatus  `json:"status"`
	SequenceNamespace        string          `json:"sequenceNamespace"`
	DocumentNumber           string          `json:"documentNumber"`
	PostedJournalEntryID     *string         `json:"postedJournalEntryID"`
	ReversalOfDocumentID     *string         `json:"reversalOfDocumentID"`
	CounterpartyNameSnapshot string          `json:"counterpartyNameSnapshot"` // frozen at posting
	Description              string          `json:"description"`
	AuditFields
}

// IsDraft reports whether the document is still editable.
func (d *Document) IsDraft() bool {
	return d.Status == DocStatusDraft
}
