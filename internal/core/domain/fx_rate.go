package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FxRateType classifies a rate row; only SPOT is used by resolution today.
type FxRateType string

const (
	RateTypeSpot FxRateType = "SPOT"
)

// FxSource tags where a resolved rate came from.
type FxSource string

const (
	FxSourceParity    FxSource = "PARITY"
	FxSourceExactSpot FxSource = "FX_TABLE_EXACT_SPOT"
	FxSourcePriorSpot FxSource = "FX_TABLE_PRIOR_SPOT"
)

// FxFallbackMode controls prior-date rate fallback.
type FxFallbackMode string

const (
	FxFallbackNone      FxFallbackMode = "NONE"
	FxFallbackPriorDate FxFallbackMode = "PRIOR_DATE"
)

// FxRate is tenant-scoped external reference data, read-only to the core.
type FxRate struct {
	FxRateID     string          `json:"fxRateID"`
	TenantID     string          `json:"tenantID"`
	RateDate     time.Time       `json:"rateDate"`
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
	RateType     FxRateType      `json:"rateType"`
	Rate         decimal.Decimal `json:"rate"`
	IsLocked     bool            `json:"isLocked"`
	AuditFields
}

// FxResolution is the outcome of resolving a rate for a posting or settlement.
type FxResolution struct {
	Rate       decimal.Decimal `json:"rate"`
	RateDate   time.Time       `json:"rateDate"`
	Source     FxSource        `json:"source"`
	Overridden bool            `json:"overridden"` // locked rate used via explicit override
}
