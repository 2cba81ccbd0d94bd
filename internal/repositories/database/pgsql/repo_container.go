package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/stoktakip/erp_backend/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every pgx-backed repository onto a shared pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		InvoiceRepo:      newPgxInvoiceRepository(pool),
		StockRepo:        newPgxStockRepository(pool),
		CounterpartyRepo: newPgxCounterpartyRepository(pool),
		UserRepo:         newPgxUserRepository(pool),
		AuditRepo:        newPgxAuditRepository(pool),
	}
}
