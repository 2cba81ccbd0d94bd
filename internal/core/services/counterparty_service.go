package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/stoktakip/erp_backend/internal/apperrors"
	"github.com/stoktakip/erp_backend/internal/core/domain"
	portsrepo "github.com/stoktakip/erp_backend/internal/core/ports/repositories"
	portssvc "github.com/stoktakip/erp_backend/internal/core/ports/services"
	"github.com/stoktakip/erp_backend/internal/dto"
	"github.com/stoktakip/erp_backend/internal/middleware"
	"github.com/stoktakip/erp_backend/internal/platform/cache"
	"github.com/stoktakip/erp_backend/internal/utils/billing"
)

// counterpartyService provides counterparty CRUD, manual receipts, balance
// reporting and the ledger leg of the invoice reconciliation cascade.
type counterpartyService struct {
	counterpartyRepo portsrepo.CounterpartyRepositoryFacade
	cache            *cache.Cache
}

// NewCounterpartyService creates a new CounterpartyService. The cache may be
// nil, in which case balances are always computed from the ledger.
func NewCounterpartyService(counterpartyRepo portsrepo.CounterpartyRepositoryFacade, cacheClient *cache.Cache) portssvc.CounterpartySvcFacade {
	return &counterpartyService{
		counterpartyRepo: counterpartyRepo,
		cache:            cacheClient,
	}
}

// Ensure counterpartyService implements the portssvc.CounterpartySvcFacade interface
var _ portssvc.CounterpartySvcFacade = (*counterpartyService)(nil)

func balanceCacheKey(counterpartyID string) string {
	return "counterparty:balance:" + counterpartyID
}

func statementCacheKey(counterpartyID string) string {
	return "counterparty:statement:" + counterpartyID
}

// invalidateBalance drops the cached balance and statement of a counterparty.
// Cache failures are logged and swallowed; the ledger is the source of truth.
func (s *counterpartyService) invalidateBalance(ctx context.Context, counterpartyID string) {
	if err := s.cache.Delete(ctx, balanceCacheKey(counterpartyID), statementCacheKey(counterpartyID)); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to invalidate counterparty cache",
			slog.String("counterparty_id", counterpartyID), slog.String("error", err.Error()))
	}
}

// InvalidateBalances drops the cached balance and statement of each listed
// counterparty. The sync methods return the IDs instead of invalidating
// inline so callers can wait for their transaction to commit first.
func (s *counterpartyService) InvalidateBalances(ctx context.Context, counterpartyIDs []string) {
	for _, id := range counterpartyIDs {
		s.invalidateBalance(ctx, id)
	}
}

func (s *counterpartyService) CreateCounterparty(ctx context.Context, req dto.CreateCounterpartyRequest, creatorUserID string) (*domain.Counterparty, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	counterparty := domain.Counterparty{
		CounterpartyID: uuid.NewString(),
		Name:           req.Name,
		Title:          req.Title,
		TaxNo:          req.TaxNo,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		City:           req.City,
		Kind:           req.Kind,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.counterpartyRepo.SaveCounterparty(ctx, counterparty); err != nil {
		logger.Error("Failed to save counterparty", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save counterparty: %w", err)
	}

	logger.Info("Counterparty created successfully", slog.String("counterparty_id", counterparty.CounterpartyID))
	return &counterparty, nil
}

func (s *counterpartyService) GetCounterpartyByID(ctx context.Context, counterpartyID string) (*domain.Counterparty, error) {
	counterparty, err := s.counterpartyRepo.FindCounterpartyByID(ctx, counterpartyID)
	if err != nil {
		return nil, fmt.Errorf("failed to find counterparty %s: %w", counterpartyID, err)
	}
	return counterparty, nil
}

func (s *counterpartyService) ListCounterparties(ctx context.Context, params dto.ListCounterpartiesParams) (*dto.ListCounterpartiesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	counterparties, nextToken, err := s.counterpartyRepo.ListCounterparties(ctx, limit, params.NextToken, params.Search, params.Kind)
	if err != nil {
		logger.Error("Failed to list counterparties", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve counterparties: %w", err)
	}

	responses := make([]dto.CounterpartyResponse, len(counterparties))
	for i := range counterparties {
		responses[i] = dto.ToCounterpartyResponse(&counterparties[i])
	}
	return &dto.ListCounterpartiesResponse{Counterparties: responses, NextToken: nextToken}, nil
}

func (s *counterpartyService) UpdateCounterparty(ctx context.Context, counterpartyID string, req dto.UpdateCounterpartyRequest, requestingUserID string) (*domain.Counterparty, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	counterparty, err := s.counterpartyRepo.FindCounterpartyByID(ctx, counterpartyID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		counterparty.Name = *req.Name
		updated = true
	}
	if req.Title != nil {
		counterparty.Title = *req.Title
		updated = true
	}
	if req.Kind != nil {
		counterparty.Kind = *req.Kind
		updated = true
	}
	if req.TaxNo != nil {
		counterparty.TaxNo = *req.TaxNo
		updated = true
	}
	if req.Phone != nil {
		counterparty.Phone = *req.Phone
		updated = true
	}
	if req.Email != nil {
		counterparty.Email = *req.Email
		updated = true
	}
	if req.Address != nil {
		counterparty.Address = *req.Address
		updated = true
	}
	if req.City != nil {
		counterparty.City = *req.City
		updated = true
	}
	if !updated {
		return counterparty, nil
	}

	counterparty.LastUpdatedAt = time.Now().UTC()
	counterparty.LastUpdatedBy = requestingUserID

	if err := s.counterpartyRepo.UpdateCounterparty(ctx, *counterparty); err != nil {
		logger.Error("Failed to update counterparty", slog.String("error", err.Error()), slog.String("counterparty_id", counterpartyID))
		return nil, fmt.Errorf("failed to update counterparty: %w", err)
	}
	return counterparty, nil
}

func (s *counterpartyService) DeleteCounterparty(ctx context.Context, counterpartyID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.counterpartyRepo.FindCounterpartyByID(ctx, counterpartyID); err != nil {
		return err
	}
	if err := s.counterpartyRepo.DeleteCounterparty(ctx, counterpartyID); err != nil {
		logger.Error("Failed to delete counterparty", slog.String("error", err.Error()), slog.String("counterparty_id", counterpartyID))
		return fmt.Errorf("failed to delete counterparty: %w", err)
	}

	s.invalidateBalance(ctx, counterpartyID)
	logger.Info("Counterparty deleted", slog.String("counterparty_id", counterpartyID), slog.String("user_id", requestingUserID))
	return nil
}

// RecordReceipt persists a manual collection, payment or refund entry.
// Invoice-derived movement types are rejected; those rows belong to the sync.
func (s *counterpartyService) RecordReceipt(ctx context.Context, counterpartyID string, req dto.ReceiptRequest, creatorUserID string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	switch req.MovementType {
	case domain.Collection, domain.Payment, domain.Refund:
	default:
		return nil, fmt.Errorf("%w: movement type '%s' cannot be recorded manually", apperrors.ErrValidation, req.MovementType)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: receipt amount must be positive", apperrors.ErrValidation)
	}

	if _, err := s.counterpartyRepo.FindCounterpartyByID(ctx, counterpartyID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := domain.LedgerEntry{
		EntryID:        uuid.NewString(),
		CounterpartyID: counterpartyID,
		MovementType:   req.MovementType,
		Amount:         req.Amount,
		Description:    req.Description,
		DocumentNo:     req.DocumentNo,
		EntryDate:      req.EntryDate,
		PaymentMethod:  req.PaymentMethod,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.counterpartyRepo.SaveEntry(ctx, entry); err != nil {
		logger.Error("Failed to save ledger entry", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save ledger entry: %w", err)
	}

	s.invalidateBalance(ctx, counterpartyID)
	logger.Info("Receipt recorded", slog.String("entry_id", entry.EntryID), slog.String("counterparty_id", counterpartyID))
	return &entry, nil
}

// DeleteReceipt removes a manual ledger entry. Entries bound to an invoice
// are owned by the reconciliation cascade and cannot be deleted directly.
func (s *counterpartyService) DeleteReceipt(ctx context.Context, entryID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.counterpartyRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.SourceInvoiceID != nil {
		return fmt.Errorf("%w: entry %s belongs to invoice %s and cannot be deleted directly", apperrors.ErrValidation, entryID, *entry.SourceInvoiceID)
	}

	if err := s.counterpartyRepo.DeleteEntry(ctx, entryID); err != nil {
		logger.Error("Failed to delete ledger entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return fmt.Errorf("failed to delete ledger entry: %w", err)
	}

	s.invalidateBalance(ctx, entry.CounterpartyID)
	logger.Info("Receipt deleted", slog.String("entry_id", entryID), slog.String("user_id", requestingUserID))
	return nil
}

// GetBalance returns the signed open balance of a counterparty, positive when
// the counterparty owes the business.
func (s *counterpartyService) GetBalance(ctx context.Context, counterpartyID string) (decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var cached string
	if hit, err := s.cache.Get(ctx, balanceCacheKey(counterpartyID), &cached); err == nil && hit {
		if balance, err := decimal.NewFromString(cached); err == nil {
			return balance, nil
		}
	}

	if _, err := s.counterpartyRepo.FindCounterpartyByID(ctx, counterpartyID); err != nil {
		return decimal.Zero, err
	}

	entries, err := s.counterpartyRepo.FindAllEntriesByCounterparty(ctx, counterpartyID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load ledger entries for %s: %w", counterpartyID, err)
	}

	balance := decimal.Zero
	for _, entry := range entries {
		signed, err := billing.SignedLedgerAmount(entry)
		if err != nil {
			return decimal.Zero, err
		}
		balance = balance.Add(signed)
	}

	if err := s.cache.Set(ctx, balanceCacheKey(counterpartyID), balance.String()); err != nil {
		logger.Warn("Failed to cache counterparty balance", slog.String("counterparty_id", counterpartyID), slog.String("error", err.Error()))
	}
	return balance, nil
}

// GetStatement returns every movement of a counterparty in chronological
// order with the debit/credit split and running balance after each row.
func (s *counterpartyService) GetStatement(ctx context.Context, counterpartyID string) ([]domain.StatementLine, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	var cachedLines []domain.StatementLine
	if hit, err := s.cache.Get(ctx, statementCacheKey(counterpartyID), &cachedLines); err == nil && hit {
		return cachedLines, nil
	}

	if _, err := s.counterpartyRepo.FindCounterpartyByID(ctx, counterpartyID); err != nil {
		return nil, err
	}

	entries, err := s.counterpartyRepo.FindAllEntriesByCounterparty(ctx, counterpartyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger entries for %s: %w", counterpartyID, err)
	}

	lines := make([]domain.StatementLine, len(entries))
	running := decimal.Zero
	for i, entry := range entries {
		signed, err := billing.SignedLedgerAmount(entry)
		if err != nil {
			return nil, err
		}
		running = running.Add(signed)
		line := domain.StatementLine{
			Entry:   entry,
			Debit:   decimal.Zero,
			Credit:  decimal.Zero,
			Balance: running,
		}
		if signed.IsPositive() {
			line.Debit = entry.Amount
		} else if signed.IsNegative() {
			line.Credit = entry.Amount
		}
		lines[i] = line
	}

	if err := s.cache.Set(ctx, statementCacheKey(counterpartyID), lines); err != nil {
		logger.Warn("Failed to cache counterparty statement", slog.String("counterparty_id", counterpartyID), slog.String("error", err.Error()))
	}
	return lines, nil
}

func (s *counterpartyService) ListEntries(ctx context.Context, counterpartyID string, limit int, nextToken *string) ([]domain.LedgerEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.counterpartyRepo.ListEntriesByCounterparty(ctx, counterpartyID, limit, nextToken)
}

// ledgerMovementTypeFor maps an invoice type to the entry type its ledger row
// carries.
func ledgerMovementTypeFor(invoiceType domain.InvoiceType) (domain.LedgerMovementType, error) {
	switch invoiceType {
	case domain.Sale:
		return domain.SaleInvoice, nil
	case domain.Purchase:
		return domain.PurchaseInvoice, nil
	default:
		return "", fmt.Errorf("unknown invoice type '%s'", invoiceType)
	}
}

// ledgerEntryDate normalizes an invoice date to midnight UTC. The request DTO
// binds a full timestamp; ledger entries carry only the day.
func ledgerEntryDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SyncLedgerForInvoice keeps the single ledger entry of an invoice consistent
// with its header: an open-account invoice with a counterparty has exactly
// one entry mirroring its grand total, any other state has none. Running the
// sync twice with an unchanged header is a no-op. The returned IDs are the
// counterparties whose cached balances the caller must invalidate once its
// transaction has committed.
func (s *counterpartyService) SyncLedgerForInvoice(ctx context.Context, tx pgx.Tx, invoice *domain.Invoice, actorUserID string) ([]string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Invoices without a counterparty produce no ledger trace at all.
	if invoice.CounterpartyID == nil {
		return nil, nil
	}
	if invoice.InvoiceNo == "" {
		return nil, fmt.Errorf("%w: invoice %s has no number assigned, cannot sync ledger", apperrors.ErrConfiguration, invoice.InvoiceID)
	}

	existing, err := s.counterpartyRepo.FindEntryByInvoiceIDInTx(ctx, tx, invoice.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up ledger entry for invoice %s: %w", invoice.InvoiceID, err)
	}

	if invoice.Status != domain.OpenAccount {
		if existing == nil {
			return nil, nil
		}
		if err := s.counterpartyRepo.DeleteEntriesForInvoiceInTx(ctx, tx, invoice.InvoiceID); err != nil {
			return nil, fmt.Errorf("failed to delete ledger entry for invoice %s: %w", invoice.InvoiceID, err)
		}
		logger.Debug("Ledger entry removed for settled invoice", slog.String("invoice_id", invoice.InvoiceID))
		return []string{existing.CounterpartyID}, nil
	}

	movementType, err := ledgerMovementTypeFor(invoice.Type)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if existing == nil {
		entry := domain.LedgerEntry{
			EntryID:         uuid.NewString(),
			CounterpartyID:  *invoice.CounterpartyID,
			MovementType:    movementType,
			Amount:          invoice.GrandTotal,
			Description:     fmt.Sprintf("Fatura: %s", invoice.InvoiceNo),
			DocumentNo:      invoice.InvoiceNo,
			SourceInvoiceID: &invoice.InvoiceID,
			EntryDate:       ledgerEntryDate(invoice.InvoiceDate),
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorUserID,
			},
		}
		if err := s.counterpartyRepo.SaveEntryInTx(ctx, tx, entry); err != nil {
			return nil, fmt.Errorf("failed to save ledger entry for invoice %s: %w", invoice.InvoiceID, err)
		}
		logger.Debug("Ledger entry created for invoice", slog.String("invoice_id", invoice.InvoiceID), slog.String("entry_id", entry.EntryID))
		return []string{entry.CounterpartyID}, nil
	}

	// The counterparty on the header may have changed; both sides go stale.
	previousCounterpartyID := existing.CounterpartyID

	existing.CounterpartyID = *invoice.CounterpartyID
	existing.MovementType = movementType
	existing.Amount = invoice.GrandTotal
	existing.Description = fmt.Sprintf("Fatura: %s", invoice.InvoiceNo)
	existing.DocumentNo = invoice.InvoiceNo
	existing.EntryDate = ledgerEntryDate(invoice.InvoiceDate)
	existing.LastUpdatedAt = now
	existing.LastUpdatedBy = actorUserID

	if err := s.counterpartyRepo.UpdateEntryInTx(ctx, tx, *existing); err != nil {
		return nil, fmt.Errorf("failed to update ledger entry for invoice %s: %w", invoice.InvoiceID, err)
	}

	stale := []string{existing.CounterpartyID}
	if previousCounterpartyID != existing.CounterpartyID {
		stale = append(stale, previousCounterpartyID)
	}
	logger.Debug("Ledger entry updated for invoice", slog.String("invoice_id", invoice.InvoiceID), slog.String("entry_id", existing.EntryID))
	return stale, nil
}

// RemoveLedgerForInvoice deletes the invoice's ledger entry unconditionally
// and returns the counterparty whose cached balance went stale.
func (s *counterpartyService) RemoveLedgerForInvoice(ctx context.Context, tx pgx.Tx, invoice *domain.Invoice) ([]string, error) {
	existing, err := s.counterpartyRepo.FindEntryByInvoiceIDInTx(ctx, tx, invoice.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up ledger entry for invoice %s: %w", invoice.InvoiceID, err)
	}
	if existing == nil {
		return nil, nil
	}
	if err := s.counterpartyRepo.DeleteEntriesForInvoiceInTx(ctx, tx, invoice.InvoiceID); err != nil {
		return nil, fmt.Errorf("failed to delete ledger entry for invoice %s: %w", invoice.InvoiceID, err)
	}
	return []string{existing.CounterpartyID}, nil
}
