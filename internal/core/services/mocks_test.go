package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/stoktakip/erp_backend/internal/core/domain"
	portsrepo "github.com/stoktakip/erp_backend/internal/core/ports/repositories"
	portssvc "github.com/stoktakip/erp_backend/internal/core/ports/services"
	"github.com/stoktakip/erp_backend/internal/dto"
)

// stubTx stands in for a live transaction. Services only pass the handle
// through to mocked repository methods, so none of its methods are ever
// invoked beyond what is overridden here.
type stubTx struct {
	pgx.Tx
}

func (stubTx) Commit(ctx context.Context) error   { return nil }
func (stubTx) Rollback(ctx context.Context) error { return nil }

// --- Mock InvoiceRepository ---

type MockInvoiceRepository struct {
	mock.Mock
}

var _ portsrepo.InvoiceRepositoryWithTx = (*MockInvoiceRepository)(nil)

func (m *MockInvoiceRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockInvoiceRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindInvoiceByNo(ctx context.Context, invoiceNo string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ListInvoices(ctx context.Context, limit int, nextToken *string, filter portsrepo.InvoiceFilter) ([]domain.Invoice, *string, error) {
	args := m.Called(ctx, limit, nextToken, filter)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedToken = &tokenVal
	}
	return args.Get(0).([]domain.Invoice), returnedToken, args.Error(2)
}

func (m *MockInvoiceRepository) SaveInvoiceInTx(ctx context.Context, tx pgx.Tx, invoice domain.Invoice) error {
	args := m.Called(ctx, tx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateInvoiceInTx(ctx context.Context, tx pgx.Tx, invoice domain.Invoice) error {
	args := m.Called(ctx, tx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) DeleteInvoiceInTx(ctx context.Context, tx pgx.Tx, invoiceID string) error {
	args := m.Called(ctx, tx, invoiceID)
	return args.Error(0)
}

func (m *MockInvoiceRepository) FindInvoiceByIDForUpdate(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, tx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) AllocateInvoiceSeq(ctx context.Context, tx pgx.Tx, prefix string, dateKey string) (int, error) {
	args := m.Called(ctx, tx, prefix, dateKey)
	return args.Int(0), args.Error(1)
}

func (m *MockInvoiceRepository) FindLineByID(ctx context.Context, lineID string) (*domain.InvoiceLine, error) {
	args := m.Called(ctx, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvoiceLine), args.Error(1)
}

func (m *MockInvoiceRepository) FindLinesByInvoiceID(ctx context.Context, invoiceID string) ([]domain.InvoiceLine, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvoiceLine), args.Error(1)
}

func (m *MockInvoiceRepository) FindLinesByInvoiceIDInTx(ctx context.Context, tx pgx.Tx, invoiceID string) ([]domain.InvoiceLine, error) {
	args := m.Called(ctx, tx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvoiceLine), args.Error(1)
}

func (m *MockInvoiceRepository) CountLinesByInvoiceID(ctx context.Context, invoiceID string) (int, error) {
	args := m.Called(ctx, invoiceID)
	return args.Int(0), args.Error(1)
}

func (m *MockInvoiceRepository) SaveLinesInTx(ctx context.Context, tx pgx.Tx, lines []domain.InvoiceLine) error {
	args := m.Called(ctx, tx, lines)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateLineInTx(ctx context.Context, tx pgx.Tx, line domain.InvoiceLine) error {
	args := m.Called(ctx, tx, line)
	return args.Error(0)
}

func (m *MockInvoiceRepository) DeleteLineInTx(ctx context.Context, tx pgx.Tx, lineID string) error {
	args := m.Called(ctx, tx, lineID)
	return args.Error(0)
}

// --- Mock StockRepository ---

type MockStockRepository struct {
	mock.Mock
}

var _ portsrepo.StockRepositoryWithTx = (*MockStockRepository)(nil)

func (m *MockStockRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockStockRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockStockRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockStockRepository) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockStockRepository) FindProductsByIDs(ctx context.Context, productIDs []string) (map[string]domain.Product, error) {
	args := m.Called(ctx, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Product), args.Error(1)
}

func (m *MockStockRepository) ListProducts(ctx context.Context, limit int, nextToken *string, search string) ([]domain.Product, *string, error) {
	args := m.Called(ctx, limit, nextToken, search)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedToken = &tokenVal
	}
	return args.Get(0).([]domain.Product), returnedToken, args.Error(2)
}

func (m *MockStockRepository) SaveProduct(ctx context.Context, product domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockStockRepository) UpdateProduct(ctx context.Context, product domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockStockRepository) DeleteProduct(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockStockRepository) FindProductsByIDsForUpdate(ctx context.Context, tx pgx.Tx, productIDs []string) (map[string]domain.Product, error) {
	args := m.Called(ctx, tx, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Product), args.Error(1)
}

func (m *MockStockRepository) AdjustStockQtyInTx(ctx context.Context, tx pgx.Tx, qtyChanges map[string]int64, userID string, now time.Time) error {
	args := m.Called(ctx, tx, qtyChanges, userID, now)
	return args.Error(0)
}

func (m *MockStockRepository) FindMovementsByInvoiceID(ctx context.Context, invoiceID string) ([]domain.StockMovement, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}

func (m *MockStockRepository) ListMovementsByProduct(ctx context.Context, productID string, limit int, nextToken *string) ([]domain.StockMovement, *string, error) {
	args := m.Called(ctx, productID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedToken = &tokenVal
	}
	return args.Get(0).([]domain.StockMovement), returnedToken, args.Error(2)
}

func (m *MockStockRepository) SaveMovement(ctx context.Context, movement domain.StockMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockStockRepository) SaveMovementsInTx(ctx context.Context, tx pgx.Tx, movements []domain.StockMovement) error {
	args := m.Called(ctx, tx, movements)
	return args.Error(0)
}

func (m *MockStockRepository) DeleteMovementsForInvoiceInTx(ctx context.Context, tx pgx.Tx, invoiceID string) ([]domain.StockMovement, error) {
	args := m.Called(ctx, tx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}

// --- Mock CounterpartyRepository ---

type MockCounterpartyRepository struct {
	mock.Mock
}

var _ portsrepo.CounterpartyRepositoryFacade = (*MockCounterpartyRepository)(nil)

func (m *MockCounterpartyRepository) FindCounterpartyByID(ctx context.Context, counterpartyID string) (*domain.Counterparty, error) {
	args := m.Called(ctx, counterpartyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Counterparty), args.Error(1)
}

func (m *MockCounterpartyRepository) ListCounterparties(ctx context.Context, limit int, nextToken *string, search string, kind string) ([]domain.Counterparty, *string, error) {
	args := m.Called(ctx, limit, nextToken, search, kind)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedToken = &tokenVal
	}
	return args.Get(0).([]domain.Counterparty), returnedToken, args.Error(2)
}

func (m *MockCounterpartyRepository) SaveCounterparty(ctx context.Context, counterparty domain.Counterparty) error {
	args := m.Called(ctx, counterparty)
	return args.Error(0)
}

func (m *MockCounterpartyRepository) UpdateCounterparty(ctx context.Context, counterparty domain.Counterparty) error {
	args := m.Called(ctx, counterparty)
	return args.Error(0)
}

func (m *MockCounterpartyRepository) DeleteCounterparty(ctx context.Context, counterpartyID string) error {
	args := m.Called(ctx, counterpartyID)
	return args.Error(0)
}

func (m *MockCounterpartyRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockCounterpartyRepository) FindEntryByInvoiceIDInTx(ctx context.Context, tx pgx.Tx, invoiceID string) (*domain.LedgerEntry, error) {
	args := m.Called(ctx, tx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerEntry), args.Error(1)
}

func (m *MockCounterpartyRepository) ListEntriesByCounterparty(ctx context.Context, counterpartyID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	args := m.Called(ctx, counterpartyID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedToken = &tokenVal
	}
	return args.Get(0).([]domain.LedgerEntry), returnedToken, args.Error(2)
}

func (m *MockCounterpartyRepository) FindAllEntriesByCounterparty(ctx context.Context, counterpartyID string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, counterpartyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockCounterpartyRepository) SaveEntry(ctx context.Context, entry domain.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCounterpartyRepository) SaveEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

func (m *MockCounterpartyRepository) UpdateEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.LedgerEntry) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

func (m *MockCounterpartyRepository) DeleteEntry(ctx context.Context, entryID string) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

func (m *MockCounterpartyRepository) DeleteEntriesForInvoiceInTx(ctx context.Context, tx pgx.Tx, invoiceID string) error {
	args := m.Called(ctx, tx, invoiceID)
	return args.Error(0)
}

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	args := m.Called(ctx, userID, deletedAt, deletedBy)
	return args.Error(0)
}

// --- Mock AuditRepository ---

type MockAuditRepository struct {
	mock.Mock
}

var _ portsrepo.AuditRepositoryFacade = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) SaveAuditLog(ctx context.Context, log domain.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditRepository) SaveAuditLogInTx(ctx context.Context, tx pgx.Tx, log domain.AuditLog) error {
	args := m.Called(ctx, tx, log)
	return args.Error(0)
}

func (m *MockAuditRepository) ListAuditLogs(ctx context.Context, limit int, nextToken *string, entity string, userID string) ([]domain.AuditLog, *string, error) {
	args := m.Called(ctx, limit, nextToken, entity, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedToken = &tokenVal
	}
	return args.Get(0).([]domain.AuditLog), returnedToken, args.Error(2)
}

// --- Mock sync services (as used by the invoice service) ---

type MockStockSyncSvc struct {
	mock.Mock
}

var _ portssvc.StockSyncSvc = (*MockStockSyncSvc)(nil)

func (m *MockStockSyncSvc) SyncMovementsForInvoice(ctx context.Context, tx pgx.Tx, invoice *domain.Invoice, lines []domain.InvoiceLine, actorUserID string) error {
	args := m.Called(ctx, tx, invoice, lines, actorUserID)
	return args.Error(0)
}

type MockLedgerSyncSvc struct {
	mock.Mock
}

var _ portssvc.LedgerSyncSvc = (*MockLedgerSyncSvc)(nil)

func (m *MockLedgerSyncSvc) SyncLedgerForInvoice(ctx context.Context, tx pgx.Tx, invoice *domain.Invoice, actorUserID string) ([]string, error) {
	args := m.Called(ctx, tx, invoice, actorUserID)
	var stale []string
	if args.Get(0) != nil {
		stale = args.Get(0).([]string)
	}
	return stale, args.Error(1)
}

func (m *MockLedgerSyncSvc) RemoveLedgerForInvoice(ctx context.Context, tx pgx.Tx, invoice *domain.Invoice) ([]string, error) {
	args := m.Called(ctx, tx, invoice)
	var stale []string
	if args.Get(0) != nil {
		stale = args.Get(0).([]string)
	}
	return stale, args.Error(1)
}

func (m *MockLedgerSyncSvc) InvalidateBalances(ctx context.Context, counterpartyIDs []string) {
	m.Called(ctx, counterpartyIDs)
}

// --- Mock AuditSvc ---

type MockAuditSvc struct {
	mock.Mock
}

var _ portssvc.AuditSvcFacade = (*MockAuditSvc)(nil)

func (m *MockAuditSvc) RecordAction(ctx context.Context, userID string, action domain.AuditAction, entity string, entityID *string, description string) {
	m.Called(ctx, userID, action, entity, entityID, description)
}

func (m *MockAuditSvc) ListLogs(ctx context.Context, params dto.ListAuditLogsParams) (*dto.ListAuditLogsResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListAuditLogsResponse), args.Error(1)
}
