package services

import (
	"context"

	"github.com/SubledgerHQ/cari_backend/internal/core/domain"
	"github.com/SubledgerHQ/cari_backend/internal/dto"
)

// DocumentSvcFacade covers the document lifecycle: draft CRUD, posting and
// reversal.
type DocumentSvcFacade interface {
	CreateDraft(ctx context.Context, tenantID string, req dto.CreateDocumentRequest, creatorUserID string) (*domain.Document, error)
	GetDocumentByID(ctx context.Context, tenantID, documentID, requestingUserID string) (*domain.Document, error)
	ListDocuments(ctx context.Context, tenantID string, params dto.ListDocumentsParams, requestingUserID string) (*dto.ListDocumentsResponse, error)
	UpdateDraft(ctx context.Context, tenantID, documentID string, req dto.UpdateDocumentRequest, requestingUserID string) (*domain.Document, error)
	CancelDraft(ctx context.Context, tenantID, documentID, requestingUserID string) (*domain.Document, error)
	PostDocument(ctx context.Context, tenantID, documentID string, req dto.PostDocumentRequest, requestingUserID string) (*dto.PostDocumentResult, error)
	ReverseDocument(ctx context.Context, tenantID, documentID string, req dto.ReverseDocumentRequest, requestingUserID string) (*dto.ReversalResult, error)
}
