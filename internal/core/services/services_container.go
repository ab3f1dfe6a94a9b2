package services

import (
	portsrepo "github.com/SubledgerHQ/cari_backend/internal/core/ports/repositories"
	portssvc "github.com/SubledgerHQ/cari_backend/internal/core/ports/services"
	"github.com/SubledgerHQ/cari_backend/pkg/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Authorizer first since the other services depend on it
	container.Authorizer = NewScopeService(repos.ScopeRepo)

	purposeResolver := NewPurposeResolver(repos.PurposeRepo)
	container.FxResolver = NewFxResolver(repos.FxRateRepo, container.Authorizer, cfg.FxFallbackMode, cfg.FxFallbackMaxDays)

	container.Document = NewDocumentService(
		repos.DocumentRepo,
		repos.SequenceRepo,
		repos.JournalRepo,
		repos.PartyRepo,
		purposeResolver,
		container.FxResolver,
		container.Authorizer,
	)
	container.Settlement = NewSettlementService(
		repos.SettlementRepo,
		repos.OpenItemRepo,
		repos.PartyRepo,
		purposeResolver,
		container.FxResolver,
		container.Authorizer,
	)
	container.FxRate = NewFxRateService(repos.FxRateRepo)
	container.PurposeMapping = NewPurposeMappingService(repos.PurposeRepo, container.Authorizer)

	return container
}

// Compile-time interface checks for the service implementations.
var (
	_ portssvc.DocumentSvcFacade       = (*documentService)(nil)
	_ portssvc.SettlementSvcFacade     = (*settlementService)(nil)
	_ portssvc.FxRateSvcFacade         = (*fxRateService)(nil)
	_ portssvc.PurposeMappingSvcFacade = (*purposeMappingService)(nil)
	_ portssvc.ScopeAuthorizer         = (*scopeService)(nil)
)
