package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SubledgerHQ/cari_backend/internal/core/ports/services"
	"github.com/SubledgerHQ/cari_backend/internal/dto"
	"github.com/SubledgerHQ/cari_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// documentHandler handles HTTP requests for the document lifecycle.
type documentHandler struct {
	documentService portssvc.DocumentSvcFacade
}

// newDocumentHandler creates a new documentHandler.
func newDocumentHandler(documentService portssvc.DocumentSvcFacade) *documentHandler {
	return &documentHandler{documentService: documentService}
}

// registerDocumentRoutes registers the document lifecycle routes.
func registerDocumentRoutes(group *gin.RouterGroup, documentService portssvc.DocumentSvcFacade) {
	h := newDocumentHandler(documentService)
	docs := group.Group("/documents")
	{
		docs.POST("", h.createDraft)
		docs.GET("", h.listDocuments)
		docs.GET("/:documentID", h.getDocument)
		docs.PUT("/:documentID", h.updateDraft)
		docs.POST("/:documentID/cancel", h.cancelDraft)
		docs.POST("/:documentID/post", h.postDocument)
		docs.POST("/:documentID/reverse", h.reverseDocument)
	}
}

// createDraft godoc
// @Summary Create a draft document
// @Description Creates a new AR/AP document in DRAFT status with a draft-namespace number
// @Tags documents
// @Accept json
// @Produce json
// @Param document body dto.CreateDocumentRequest true "Draft document"
// @Success 201 {object} dto.DocumentResponse
// @Failure 400 {object} map[string]string "Invalid request format or rejected document type"
// @Failure 403 {object} map[string]string "No scope on the legal entity"
// @Router /documents [post]
func (h *documentHandler) createDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createDraft", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, tenantID, ok := requestIdentity(c)
	if !ok {
		return
	}

	doc, err := h.documentService.CreateDraft(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to create document")
		return
	}

	logger.Info("Draft document created", slog.String("document_id", doc.DocumentID))
	c.JSON(http.StatusCreated, dto.ToDocumentResponse(doc))
}

// getDocument godoc
// @Summary Get a document
// @Description Retrieves one document by id, tenant scoped
// @Tags documents
// @Produce json
// @Param documentID path string true "Document ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 404 {object} map[string]string "Document not found"
// @Router /documents/{documentID} [get]
func (h *documentHandler) getDocument(c *gin.Context) {
	userID, tenantID, ok := requestIdentity(c)
	if !ok {
		return
	}

	doc, err := h.documentService.GetDocumentByID(c.Request.Context(), tenantID, c.Param("documentID"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve document")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// listDocuments godoc
// @Summary List documents for a legal entity
// @Description Retrieves a page of documents, newest first, with token pagination
// @Tags documents
// @Produce json
// @Param legalEntityID query string true "Legal entity ID"
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListDocumentsResponse
// @Failure 400 {object} map[string]string "Missing legalEntityID"
// @Router /documents [get]
func (h *documentHandler) listDocuments(c *gin.Context) {
	var params dto.ListDocumentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	userID, tenantID, ok := requestIdentity(c)
	if !ok {
		return
	}

	resp, err := h.documentService.ListDocuments(c.Request.Context(), tenantID, params, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list documents")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// updateDraft godoc
// @Summary Update a draft document
// @Description Patches an editable DRAFT document; posted documents are immutable
// @Tags documents
// @Accept json
// @Produce json
// @Param documentID path string true "Document ID"
// @Param document body dto.UpdateDocumentRequest true "Fields to update"
// @Success 200 {object} dto.DocumentResponse
// @Failure 409 {object} map[string]string "Document is no longer a draft"
// @Router /documents/{documentID} [put]
func (h *documentHandler) updateDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for updateDraft", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, tenantID, ok := requestIdentity(c)
	if !ok {
		return
	}

	doc, err := h.documentService.UpdateDraft(c.Request.Context(), tenantID, c.Param("documentID"), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to update document")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// cancelDraft godoc
// @Summary Cancel a draft document
// @Description Transitions DRAFT to CANCELLED; any other status conflicts
// @Tags documents
// @Produce json
// @Param documentID path string true "Document ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 409 {object} map[string]string "Document is no longer a draft"
// @Router /documents/{documentID}/cancel [post]
func (h *documentHandler) cancelDraft(c *gin.Context) {
	userID, tenantID, ok := requestIdentity(c)
	if !ok {
		return
	}

	doc, err := h.documentService.CancelDraft(c.Request.Context(), tenantID, c.Param("documentID"), userID)
	if err != nil {
		respondServiceError(c, err, "Failed to cancel document")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// postDocument godoc
// @Summary Post a draft document
// @Description Assigns the permanent number, resolves FX, writes the balanced journal entry and opens the item
// @Tags documents
// @Accept json
// @Produce json
// @Param documentID path string true "Document ID"
// @Param options body dto.PostDocumentRequest false "Posting options"
// @Success 200 {object} dto.PostDocumentResult
// @Failure 400 {object} map[string]string "No usable FX rate or invalid options"
// @Failure 409 {object} map[string]string "Document is not postable"
// @Failure 422 {object} map[string]string "Purpose account not configured"
// @Router /documents/{documentID}/post [post]
func (h *documentHandler) postDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PostDocumentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Error("Failed to bind JSON for postDocument", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}
	}

	userID, tenantID, ok := requestIdentity(c)
	if !ok {
		return
	}

	result, err := h.documentService.PostDocument(c.Request.Context(), tenantID, c.Param("documentID"), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to post document")
		return
	}

	logger.Info("Document posted",
		slog.String("document_id", result.Document.DocumentID),
		slog.String("document_number", result.Document.DocumentNumber))
	c.JSON(http.StatusOK, result)
}

// reverseDocument godoc
// @Summary Reverse a posted document
// @Description Creates a mirror journal entry and a reversal document, marking the original REVERSED
// @Tags documents
// @Accept json
// @Produce json
// @Param documentID path string true "Document ID"
// @Param reversal body dto.ReverseDocumentRequest true "Reversal parameters"
// @Success 200 {object} dto.ReversalResult
// @Failure 409 {object} map[string]string "Document is not reversible"
// @Router /documents/{documentID}/reverse [post]
func (h *documentHandler) reverseDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ReverseDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for reverseDocument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, tenantID, ok := requestIdentity(c)
	if !ok {
		return
	}

	result, err := h.documentService.ReverseDocument(c.Request.Context(), tenantID, c.Param("documentID"), req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to reverse document")
		return
	}

	logger.Info("Document reversed",
		slog.String("document_id", result.OriginalDocument.DocumentID),
		slog.String("reversal_document_id", result.ReversalDocument.DocumentID))
	c.JSON(http.StatusOK, result)
}
