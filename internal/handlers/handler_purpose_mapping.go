package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SubledgerHQ/cari_backend/internal/core/ports/services"
	"github.com/SubledgerHQ/cari_backend/internal/dto"
	"github.com/SubledgerHQ/cari_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// purposeMappingHandler handles HTTP requests for purpose-account configuration.
type purposeMappingHandler struct {
	purposeService portssvc.PurposeMappingSvcFacade
}

// newPurposeMappingHandler creates a new purposeMappingHandler.
func newPurposeMappingHandler(purposeService portssvc.PurposeMappingSvcFacade) *purposeMappingHandler {
	return &purposeMappingHandler{purposeService: purposeService}
}

// registerPurposeMappingRoutes registers the configuration routes.
func registerPurposeMappingRoutes(group *gin.RouterGroup, purposeService portssvc.PurposeMappingSvcFacade) {
	h := newPurposeMappingHandler(purposeService)
	mappings := group.Group("/purpose-mappings")
	{
		mappings.PUT("", h.upsertMapping)
		mappings.GET("", h.listMappings)
	}
}

// upsertMapping godoc
// @Summary Upsert a purpose-account mapping
// @Description Maps a purpose key (bare or context-qualified) to a GL account for a legal entity. Requires the ADMIN role.
// @Tags purpose-mappings
// @Accept json
// @Produce json
// @Param mapping body dto.UpsertPurposeMappingRequest true "Mapping"
// @Success 200 {object} dto.PurposeMappingResponse
// @Failure 403 {object} map[string]string "Actor is not an admin of the legal entity"
// @Router /purpose-mappings [put]
func (h *purposeMappingHandler) upsertMapping(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpsertPurposeMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for upsertMapping", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, tenantID, ok := requestIdentity(c)
	if !ok {
		return
	}

	mapping, err := h.purposeService.UpsertMapping(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to upsert purpose mapping")
		return
	}

	logger.Info("Purpose mapping upserted", slog.String("mapping_key", mapping.MappingKey))
	c.JSON(http.StatusOK, dto.ToPurposeMappingResponse(mapping))
}

// listMappings godoc
// @Summary List purpose-account mappings for a legal entity
// @Tags purpose-mappings
// @Produce json
// @Param legalEntityID query string true "Legal entity ID"
// @Success 200 {array} dto.PurposeMappingResponse
// @Router /purpose-mappings [get]
func (h *purposeMappingHandler) listMappings(c *gin.Context) {
	legalEntityID := c.Query("legalEntityID")
	if legalEntityID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "legalEntityID is required"})
		return
	}

	_, tenantID, ok := requestIdentity(c)
	if !ok {
		return
	}

	mappings, err := h.purposeService.ListMappings(c.Request.Context(), tenantID, legalEntityID)
	if err != nil {
		respondServiceError(c, err, "Failed to list purpose mappings")
		return
	}

	responses := make([]dto.PurposeMappingResponse, len(mappings))
	for i := range mappings {
		responses[i] = dto.ToPurposeMappingResponse(&mappings[i])
	}
	c.JSON(http.StatusOK, responses)
}
