package dto

import (
	"time"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateFxRateRequest ingests one rate row.
type CreateFxRateRequest struct {
	RateDate     time.Time       `json:"rateDate" binding:"required"`
	FromCurrency string          `json:"fromCurrency" binding:"required,len=3"`
	ToCurrency   string          `json:"toCurrency" binding:"required,len=3"`
	Rate         decimal.Decimal `json:"rate" binding:"required"`
	IsLocked     bool            `json:"isLocked"`
}

// FxRateResponse is the external representation of a rate row.
type FxRateResponse struct {
	FxRateID     string            `json:"fxRateID"`
	RateDate     time.Time         `json:"rateDate"`
	FromCurrency string            `json:"fromCurrency"`
	ToCurrency   string            `json:"toCurrency"`
	RateType     domain.FxRateType `json:"rateType"`
	Rate         decimal.Decimal   `json:"rate"`
	IsLocked     bool              `json:"isLocked"`
}

// ListFxRatesParams selects recent rates for a pair.
type ListFxRatesParams struct {
	FromCurrency string `form:"fromCurrency" binding:"required,len=3"`
	ToCurrency   string `form:"toCurrency" binding:"required,len=3"`
	Limit        int    `form:"limit"`
}

// ToFxRateResponse converts a domain rate to its DTO.
func ToFxRateResponse(r *domain.FxRate) FxRateResponse {
	return FxRateResponse{
		FxRateID:     r.FxRateID,
		RateDate:     r.RateDate,
		FromCurrency: r.FromCurrency,
		ToCurrency:   r.ToCurrency,
		RateType:     r.RateType,
		Rate:         r.Rate,
		IsLocked:     r.IsLocked,
	}
}
