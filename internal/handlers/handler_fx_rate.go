package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SubledgerHQ/cari_backend/internal/core/ports/services"
	"github.com/SubledgerHQ/cari_backend/internal/dto"
	"github.com/SubledgerHQ/cari_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// fxRateHandler handles HTTP requests for the rate table.
type fxRateHandler struct {
	fxRateService portssvc.FxRateSvcFacade
}

// newFxRateHandler creates a new fxRateHandler.
func newFxRateHandler(fxRateService portssvc.FxRateSvcFacade) *fxRateHandler {
	return &fxRateHandler{fxRateService: fxRateService}
}

// registerFxRateRoutes registers the rate ingestion and read routes.
func registerFxRateRoutes(group *gin.RouterGroup, fxRateService portssvc.FxRateSvcFacade) {
	h := newFxRateHandler(fxRateService)
	rates := group.Group("/fx-rates")
	{
		rates.POST("", h.createRate)
		rates.GET("", h.listRates)
	}
}

// createRate godoc
// @Summary Ingest an FX rate
// @Description Upserts a SPOT rate row for a date and currency pair
// @Tags fx-rates
// @Accept json
// @Produce json
// @Param rate body dto.CreateFxRateRequest true "Rate"
// @Success 201 {object} dto.FxRateResponse
// @Failure 400 {object} map[string]string "Invalid rate"
// @Router /fx-rates [post]
func (h *fxRateHandler) createRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateFxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, tenantID, ok := requestIdentity(c)
	if !ok {
		return
	}

	rate, err := h.fxRateService.CreateRate(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to save fx rate")
		return
	}

	logger.Info("FX rate saved",
		slog.String("pair", rate.FromCurrency+"/"+rate.ToCurrency),
		slog.Time("rate_date", rate.RateDate))
	c.JSON(http.StatusCreated, dto.ToFxRateResponse(rate))
}

// listRates godoc
// @Summary List recent FX rates for a pair
// @Tags fx-rates
// @Produce json
// @Param fromCurrency query string true "From currency"
// @Param toCurrency query string true "To currency"
// @Param limit query int false "Page size"
// @Success 200 {array} dto.FxRateResponse
// @Router /fx-rates [get]
func (h *fxRateHandler) listRates(c *gin.Context) {
	var params dto.ListFxRatesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	_, tenantID, ok := requestIdentity(c)
	if !ok {
		return
	}

	rates, err := h.fxRateService.ListRates(c.Request.Context(), tenantID, params)
	if err != nil {
		respondServiceError(c, err, "Failed to list fx rates")
		return
	}

	responses := make([]dto.FxRateResponse, len(rates))
	for i := range rates {
		responses[i] = dto.ToFxRateResponse(&rates[i])
	}
	c.JSON(http.StatusOK, responses)
}
