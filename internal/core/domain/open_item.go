package domain

import "github.com/shopspring/decimal"

// OpenItemStatus is the settlement state of an open item.
type OpenItemStatus string

const (
	OpenItemOpen    OpenItemStatus = "OPEN"
	OpenItemSettled OpenItemStatus = "SETTLED"
)

// OpenItem is the residual-claim projection of a posted document. It is
// created exactly once at posting time and only the settlement engine mutates
// its residuals; it is never deleted.
type OpenItem struct {
	OpenItemID       string          `json:"openItemID"`
	TenantID         string          `json:"tenantID"`
	LegalEntityID    string          `json:"legalEntityID"`
	DocumentID       string          `json:"documentID"`
	CounterpartyID   string          `json:"counterpartyID"`
	Direction        Direction       `json:"direction"`
	CurrencyCode     string          `json:"currencyCode"`
	AmountOrigTxn    decimal.Decimal `json:"amountOrigTxn"`
	AmountOrigBase   decimal.Decimal `json:"amountOrigBase"`
	ResidualTxn      decimal.Decimal `json:"residualTxn"`
	ResidualBase     decimal.Decimal `json:"residualBase"`
	Status           OpenItemStatus  `json:"status"`
	AuditFields
}
