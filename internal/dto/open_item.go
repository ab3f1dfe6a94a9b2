package dto

import (
	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// OpenItemResponse is the external representation of an open item.
type OpenItemResponse struct {
	OpenItemID     string                `json:"openItemID"`
	DocumentID     string                `json:"documentID"`
	LegalEntityID  string                `json:"legalEntityID"`
	CounterpartyID string                `json:"counterpartyID"`
	Direction      domain.Direction      `json:"direction"`
	CurrencyCode   string                `json:"currencyCode"`
	AmountOrigTxn  decimal.Decimal       `json:"amountOrigTxn"`
	AmountOrigBase decimal.Decimal       `json:"amountOrigBase"`
	ResidualTxn    decimal.Decimal       `json:"residualTxn"`
	ResidualBase   decimal.Decimal       `json:"residualBase"`
	Status         domain.OpenItemStatus `json:"status"`
}

// ListOpenItemsParams selects a page of open items for a counterparty.
type ListOpenItemsParams struct {
	LegalEntityID  string  `form:"legalEntityID" binding:"required"`
	CounterpartyID string  `form:"counterpartyID" binding:"required"`
	OnlyOpen       bool    `form:"onlyOpen"`
	Limit          int     `form:"limit"`
	NextToken      *string `form:"nextToken"`
}

// ListOpenItemsResponse is a page of open items.
type ListOpenItemsResponse struct {
	OpenItems []OpenItemResponse `json:"openItems"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// ToOpenItemResponse converts a domain.OpenItem to its DTO.
func ToOpenItemResponse(item *domain.OpenItem) OpenItemResponse {
	return OpenItemResponse{
		OpenItemID:     item.OpenItemID,
		DocumentID:     item.DocumentID,
		LegalEntityID:  item.LegalEntityID,
		CounterpartyID: item.CounterpartyID,
		Direction:      item.Direction,
		CurrencyCode:   item.CurrencyCode,
		AmountOrigTxn:  item.AmountOrigTxn,
		AmountOrigBase: item.AmountOrigBase,
		ResidualTxn:    item.ResidualTxn,
		ResidualBase:   item.ResidualBase,
		Status:         item.Status,
	}
}

// ToOpenItemResponses converts a slice of open items.
func ToOpenItemResponses(items []domain.OpenItem) []OpenItemResponse {
	responses := make([]OpenItemResponse, len(items))
	for i := range items {
		responses[i] = ToOpenItemResponse(&items[i])
	}
	return responses
}
