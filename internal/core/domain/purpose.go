package domain

// PurposeCode identifies which GL account role a posting line should use.
type PurposeCode string

const (
	PurposeARControl PurposeCode = "CARI_AR_CONTROL"
	PurposeAROffset  PurposeCode = "CARI_AR_OFFSET"
	PurposeAPControl PurposeCode = "CARI_AP_CONTROL"
	PurposeAPOffset  PurposeCode = "CARI_AP_OFFSET"
)

// PurposeContext selects a channel-specific account override.
type PurposeContext string

const (
	ContextManual    PurposeContext = "MANUAL"
	ContextCash      PurposeContext = "CASH"
	ContextOnAccount PurposeContext = "ON_ACCOUNT"
)

// Qualified returns the context-qualified mapping key, e.g.
// CARI_AR_OFFSET + CASH -> "CARI_AR_OFFSET_CASH".
func (p PurposeCode) Qualified(ctx PurposeContext) string {
	if ctx == "" {
		return string(p)
	}
	return string(p) + "_" + string(ctx)
}

// ControlPurpose returns the control-account purpose for a direction.
func ControlPurpose(dir Direction) PurposeCode {
	if dir == Payable {
		return PurposeAPControl
	}
	return PurposeARControl
}

// OffsetPurpose returns the offset-account purpose for a direction.
func OffsetPurpose(dir Direction) PurposeCode {
	if dir == Payable {
		return PurposeAPOffset
	}
	return PurposeAROffset
}

// PurposeAccountMapping maps a (tenant, legal entity, mapping key) to a GL
// account. Configuration data, read-only to the core engines.
type PurposeAccountMapping struct {
	MappingID     string `json:"mappingID"`
	TenantID      string `json:"tenantID"`
	LegalEntityID string `json:"legalEntityID"`
	MappingKey    string `json:"mappingKey"` // purpose code, optionally context-qualified
	AccountID     string `json:"accountID"`
	AuditFields
}
