package services

import (
	portsrepo "github.com/stoktakip/erp_backend/internal/core/ports/repositories"
	portssvc "github.com/stoktakip/erp_backend/internal/core/ports/services"
	"github.com/stoktakip/erp_backend/internal/platform/cache"
	"github.com/stoktakip/erp_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, cacheClient *cache.Cache) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Sync services first since the invoice service depends on both
	container.Stock = NewStockService(repos.StockRepo)
	container.Counterparty = NewCounterpartyService(repos.CounterpartyRepo, cacheClient)
	container.Audit = NewAuditService(repos.AuditRepo)

	container.Invoice = NewInvoiceService(
		repos.InvoiceRepo,
		container.Stock,
		container.Counterparty,
		container.Audit,
	)

	container.User = NewUserService(repos.UserRepo, cfg)

	return container
}
