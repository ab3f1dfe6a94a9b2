package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FxRate is the database representation of a rate table row.
type FxRate struct {
	FxRateID     string          `json:"fxRateID" db:"fx_rate_id"`
	TenantID     string          `json:"tenantID" db:"tenant_id"`
	RateDate     time.Time       `json:"rateDate" db:"rate_date"`
	FromCurrency string          `json:"fromCurrency" db:"from_currency"`
	ToCurrency   string          `json:"toCurrency" db:"to_currency"`
	RateType     string          `json:"rateType" db:"rate_type"`
	Rate         decimal.Decimal `json:"rate" db:"rate"`
	IsLocked     bool            `json:"isLocked" db:"is_locked"`
	AuditFields
}

// PurposeAccountMapping is the database representation of a mapping row.
type PurposeAccountMapping struct {
	MappingID     string `json:"mappingID" db:"mapping_id"`
	TenantID      string `json:"tenantID" db:"tenant_id"`
	LegalEntityID string `json:"legalEntityID" db:"legal_entity_id"`
	MappingKey    string `json:"mappingKey" db:"mapping_key"`
	AccountID     string `json:"accountID" db:"account_id"`
	AuditFields
}

// LegalEntity is the database representation of a legal entity.
type LegalEntity struct {
	LegalEntityID      string `json:"legalEntityID" db:"legal_entity_id"`
	TenantID           string `json:"tenantID" db:"tenant_id"`
	Name               string `json:"name" db:"name"`
	FunctionalCurrency string `json:"functionalCurrency" db:"functional_currency"`
	IsActive           bool   `json:"isActive" db:"is_active"`
	AuditFields
}

// Counterparty is the database representation of a counterparty.
type Counterparty struct {
	CounterpartyID string `json:"counterpartyID" db:"counterparty_id"`
	TenantID       string `json:"tenantID" db:"tenant_id"`
	DisplayName    string `json:"displayName" db:"display_name"`
	IsActive       bool   `json:"isActive" db:"is_active"`
	AuditFields
}

// ScopeGrant is the database representation of an access grant row.
type ScopeGrant struct {
	UserID        string `json:"userID" db:"user_id"`
	TenantID      string `json:"tenantID" db:"tenant_id"`
	LegalEntityID string `json:"legalEntityID" db:"legal_entity_id"`
	Role          string `json:"role" db:"role"`
	CanOverrideFx bool   `json:"canOverrideFx" db:"can_override_fx"`
	AuditFields
}
