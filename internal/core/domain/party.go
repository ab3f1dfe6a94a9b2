package domain

// LegalEntity is the organizational unit documents belong to. Provisioning is
// external; the core only reads it for the functional currency.
type LegalEntity struct {
	LegalEntityID      string `json:"legalEntityID"`
	TenantID           string `json:"tenantID"`
	Name               string `json:"name"`
	FunctionalCurrency string `json:"functionalCurrency"`
	IsActive           bool   `json:"isActive"`
	AuditFields
}

// Counterparty is the customer/vendor a document is addressed to. The display
// name is snapshotted onto documents at posting time.
type Counterparty struct {
	CounterpartyID string `json:"counterpartyID"`
	TenantID       string `json:"tenantID"`
	DisplayName    string `json:"displayName"`
	IsActive       bool   `json:"isActive"`
	AuditFields
}
