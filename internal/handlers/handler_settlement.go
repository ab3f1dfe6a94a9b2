package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SubledgerHQ/cari_backend/internal/core/ports/services"
	"github.com/SubledgerHQ/cari_backend/internal/dto"
	"github.com/SubledgerHQ/cari_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// settlementHandler handles HTTP requests for cash application and open items.
type settlementHandler struct {
	settlementService portssvc.SettlementSvcFacade
}

// newSettlementHandler creates a new settlementHandler.
func newSettlementHandler(settlementService portssvc.SettlementSvcFacade) *settlementHandler {
	return &settlementHandler{settlementService: settlementService}
}

// registerSettlementRoutes registers settlement and open item routes.
func registerSettlementRoutes(group *gin.RouterGroup, settlementService portssvc.SettlementSvcFacade) {
	h := newSettlementHandler(settlementService)
	settlements := group.Group("/settlements")
	{
		settlements.POST("", h.applySettlement)
		settlements.GET("", h.listSettlements)
		settlements.GET("/:settlementID", h.getSettlement)
	}
	group.GET("/open-items", h.listOpenItems)
	group.GET("/documents/:documentID/open-items", h.listOpenItemsByDocument)
}

// applySettlement godoc
// @Summary Apply a settlement
// @Description Applies incoming cash against open items. Replays with the same idempotency key or cash transaction id return the stored result.
// @Tags settlements
// @Accept json
// @Produce json
// @Param settlement body dto.ApplySettlementRequest true "Settlement"
// @Success 200 {object} dto.ApplySettlementResult
// @Failure 400 {object} map[string]string "Allocation exceeds residual or invalid amounts"
// @Failure 403 {object} map[string]string "No scope on the legal entity"
// @Router /settlements [post]
func (h *settlementHandler) applySettlement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ApplySettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for applySettlement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, tenantID, ok := requestIdentity(c)
	if !ok {
		return
	}

	result, err := h.settlementService.ApplySettlement(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to apply settlement")
		return
	}

	if result.IdempotentReplay {
		logger.Info("Settlement replayed", slog.String("idempotency_key", req.IdempotencyKey))
	} else {
		logger.Info("Settlement applied",
			slog.String("idempotency_key", req.IdempotencyKey),
			slog.Int("allocations", len(result.Allocations)))
	}
	c.JSON(http.StatusOK, result)
}

// getSettlement godoc
// @Summary Get a settlement batch
// @Description Retrieves a settlement with its allocations and any unapplied cash remainder
// @Tags settlements
// @Produce json
// @Param settlementID path string true "Settlement ID"
// @Success 200 {object} dto.ApplySettlementResult
// @Failure 404 {object} map[string]string "Settlement not found"
// @Router /settlements/{settlementID} [get]
func (h *settlementHandler) getSettlement(c *gin.Context) {
	userID, tenantID, ok := requestIdentity(c)
	if !ok {
		return
	}

	result, err := h.settlementService.GetSettlementByID(c.Request.Context(), tenantID, c.Param("settlementID"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve settlement")
		return
	}
	c.JSON(http.StatusOK, result)
}

// listSettlements godoc
// @Summary List settlement batches for a counterparty
// @Description Retrieves settlement batches newest first with token pagination
// @Tags settlements
// @Produce json
// @Param legalEntityID query string true "Legal entity ID"
// @Param counterpartyID query string true "Counterparty ID"
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListSettlementsResponse
// @Failure 400 {object} map[string]string "Missing required query parameters"
// @Router /settlements [get]
func (h *settlementHandler) listSettlements(c *gin.Context) {
	var params dto.ListSettlementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	userID, tenantID, ok := requestIdentity(c)
	if !ok {
		return
	}

	resp, err := h.settlementService.ListSettlements(c.Request.Context(), tenantID, params, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list settlements")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listOpenItemsByDocument godoc
// @Summary List a document's open items
// @Description Retrieves the open items created when the document was posted
// @Tags settlements
// @Produce json
// @Param documentID path string true "Document ID"
// @Success 200 {object} dto.ListOpenItemsResponse
// @Failure 404 {object} map[string]string "Document has no open items"
// @Router /documents/{documentID}/open-items [get]
func (h *settlementHandler) listOpenItemsByDocument(c *gin.Context) {
	userID, tenantID, ok := requestIdentity(c)
	if !ok {
		return
	}

	resp, err := h.settlementService.ListOpenItemsByDocument(c.Request.Context(), tenantID, c.Param("documentID"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list open items")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listOpenItems godoc
// @Summary List open items for a counterparty
// @Description Retrieves open items oldest first, optionally only those still carrying a residual
// @Tags settlements
// @Produce json
// @Param legalEntityID query string true "Legal entity ID"
// @Param counterpartyID query string true "Counterparty ID"
// @Param onlyOpen query bool false "Only items with a residual"
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListOpenItemsResponse
// @Failure 400 {object} map[string]string "Missing required query parameters"
// @Router /open-items [get]
func (h *settlementHandler) listOpenItems(c *gin.Context) {
	var params dto.ListOpenItemsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	userID, tenantID, ok := requestIdentity(c)
	if !ok {
		return
	}

	resp, err := h.settlementService.ListOpenItems(c.Request.Context(), tenantID, params, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list open items")
		return
	}
	c.JSON(http.StatusOK, resp)
}
