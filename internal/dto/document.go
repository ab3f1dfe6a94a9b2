package dto

import (
	"time"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateDocumentRequest is the intake payload for a new draft document.
// OPENING_BALANCE is rejected here; it is reserved for migration tooling.
type CreateDocumentRequest struct {
	LegalEntityID  string           `json:"legalEntityID" binding:"required"`
	CounterpartyID string           `json:"counterpartyID" binding:"required"`
	Direction      domain.Direction `json:"direction" binding:"required,oneof=AR AP"`
	DocumentType   string           `json:"documentType" binding:"required"`
	DocumentDate   time.Time        `json:"documentDate" binding:"required"`
	DueDate        *time.Time       `json:"dueDate"`
	AmountTxn      decimal.Decimal  `json:"amountTxn" binding:"required"`
	CurrencyCode   string           `json:"currencyCode" binding:"required,len=3"`
	FxRate         *decimal.Decimal `json:"fxRate"` // fixed rate, optional; resolved at posting otherwise
	PaymentTermID  *string          `json:"paymentTermID"`
	Description    string           `json:"description"`
}

// UpdateDocumentRequest patches a draft. Only drafts are editable.
type UpdateDocumentRequest struct {
	CounterpartyID *string          `json:"counterpartyID"`
	DocumentDate   *time.Time       `json:"documentDate"`
	DueDate        *time.Time       `json:"dueDate"`
	AmountTxn      *decimal.Decimal `json:"amountTxn"`
	CurrencyCode   *string          `json:"currencyCode"`
	FxRate         *decimal.Decimal `json:"fxRate"`
	PaymentTermID  *string          `json:"paymentTermID"`
	Description    *string          `json:"description"`
}

// PostDocumentRequest carries the posting options, including the FX fallback
// and locked-rate override knobs.
type PostDocumentRequest struct {
	FxFallbackMode    *domain.FxFallbackMode `json:"fxFallbackMode"`
	FxFallbackMaxDays *int                   `json:"fxFallbackMaxDays"`
	UseFxOverride     bool                   `json:"useFxOverride"`
	FxOverrideReason  string                 `json:"fxOverrideReason"`
}

// ReverseDocumentRequest carries the reversal parameters.
type ReverseDocumentRequest struct {
	Reason       string     `json:"reason" binding:"required"`
	ReversalDate *time.Time `json:"reversalDate"`
}

// DocumentResponse is the external representation of a document.
type DocumentResponse struct {
	DocumentID               string                `json:"documentID"`
	LegalEntityID            string                `json:"legalEntityID"`
	CounterpartyID           string                `json:"counterpartyID"`
	Direction                domain.Direction      `json:"direction"`
	DocumentType             domain.DocumentType   `json:"documentType"`
	DocumentDate             time.Time             `json:"documentDate"`
	DueDate                  *time.Time            `json:"dueDate,omitempty"`
	AmountTxn                decimal.Decimal       `json:"amountTxn"`
	AmountBase               decimal.Decimal       `json:"amountBase"`
	CurrencyCode             string                `json:"currencyCode"`
	FxRate                   decimal.Decimal       `json:"fxRate"`
	Status                   domain.DocumentStatus `json:"status"`
	DocumentNumber           string                `json:"documentNumber"`
	PostedJournalEntryID     *string               `json:"postedJournalEntryID,omitempty"`
	ReversalOfDocumentID     *string               `json:"reversalOfDocumentID,omitempty"`
	CounterpartyNameSnapshot string                `json:"counterpartyNameSnapshot,omitempty"`
	Description              string                `json:"description,omitempty"`
	CreatedAt                time.Time             `json:"createdAt"`
}

// FxResolutionResponse reports how a rate was resolved.
type FxResolutionResponse struct {
	Rate       decimal.Decimal `json:"rate"`
	RateDate   time.Time       `json:"rateDate"`
	Source     domain.FxSource `json:"source"`
	Overridden bool            `json:"overridden,omitempty"`
}

// PostDocumentResult is returned by the post operation.
type PostDocumentResult struct {
	Document DocumentResponse      `json:"document"`
	OpenItem OpenItemResponse      `json:"openItem"`
	Fx       *FxResolutionResponse `json:"fx,omitempty"`
}

// ReversalResult links the reversal pair.
type ReversalResult struct {
	OriginalDocument DocumentResponse `json:"originalDocument"`
	ReversalDocument DocumentResponse `json:"reversalDocument"`
}

// ListDocumentsParams selects a page of documents.
type ListDocumentsParams struct {
	LegalEntityID string  `form:"legalEntityID" binding:"required"`
	Limit         int     `form:"limit"`
	NextToken     *string `form:"nextToken"`
}

// ListDocumentsResponse is a page of documents.
type ListDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// ToDocumentResponse converts a domain.Document to its DTO.
func ToDocumentResponse(d *domain.Document) DocumentResponse {
	return DocumentResponse{
		DocumentID:               d.DocumentID,
		LegalEntityID:            d.LegalEntityID,
		CounterpartyID:           d.CounterpartyID,
		Direction:                d.Direction,
		DocumentType:             d.DocumentType,
		DocumentDate:             d.DocumentDate,
		DueDate:                  d.DueDate,
		AmountTxn:                d.AmountTxn,
		AmountBase:               d.AmountBase,
		CurrencyCode:             d.CurrencyCode,
		FxRate:                   d.FxRate,
		Status:                   d.Status,
		DocumentNumber:           d.DocumentNumber,
		PostedJournalEntryID:     d.PostedJournalEntryID,
		ReversalOfDocumentID:     d.ReversalOfDocumentID,
		CounterpartyNameSnapshot: d.CounterpartyNameSnapshot,
		Description:              d.Description,
		CreatedAt:                d.CreatedAt,
	}
}

// ToDocumentResponses converts a slice of documents.
func ToDocumentResponses(docs []domain.Document) []DocumentResponse {
	responses := make([]DocumentResponse, len(docs))
	for i := range docs {
		responses[i] = ToDocumentResponse(&docs[i])
	}
	return responses
}

// ToFxResolutionResponse converts a domain resolution, nil-safe.
func ToFxResolutionResponse(r *domain.FxResolution) *FxResolutionResponse {
	if r == nil {
		return nil
	}
	return &FxResolutionResponse{
		Rate:       r.Rate,
		RateDate:   r.RateDate,
		Source:     r.Source,
		Overridden: r.Overridden,
	}
}
