package services

import (
	"context"

	"github.com/SubledgerHQ/cari_backend/internal/dto"
)

// SettlementSvcFacade covers cash application and the read surfaces built on
// open items.
type SettlementSvcFacade interface {
	ApplySettlement(ctx context.Context, tenantID string, req dto.ApplySettlementRequest, requestingUserID string) (*dto.ApplySettlementResult, error)
	GetSettlementByID(ctx context.Context, tenantID, settlementID, requestingUserID string) (*dto.ApplySettlementResult, error)
	ListSettlements(ctx context.Context, tenantID string, params dto.ListSettlementsParams, requestingUserID string) (*dto.ListSettlementsResponse, error)
	ListOpenItems(ctx context.Context, tenantID string, params dto.ListOpenItemsParams, requestingUserID string) (*dto.ListOpenItemsResponse, error)
	ListOpenItemsByDocument(ctx context.Context, tenantID, documentID, requestingUserID string) (*dto.ListOpenItemsResponse, error)
}
