package services

import (
	"context"
	"errors"
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
	"github.com/stoktakip/erp_backend/internal/utils/billing"
)

const (
	saleInvoicePrefix     = "SATIS"
	purchaseInvoicePrefix = "ALIS"
)

// invoiceService orchestrates the invoice reconciliation cascade: every write
// to an invoice or its lines recomputes the header totals and re-syncs stock
// movements and the ledger entry inside one database transaction.
type invoiceService struct {
	invoiceRepo portsrepo.InvoiceRepositoryWithTx
	stockSvc    portssvc.StockSyncSvc
	ledgerSvc   portssvc.LedgerSyncSvc
	auditSvc    portssvc.AuditSvcFacade
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(invoiceRepo portsrepo.InvoiceRepositoryWithTx, stockSvc portssvc.StockSyncSvc, ledgerSvc portssvc.LedgerSyncSvc, auditSvc portssvc.AuditSvcFacade) portssvc.InvoiceSvcFacade {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		stockSvc:    stockSvc,
		ledgerSvc:   ledgerSvc,
		auditSvc:    auditSvc,
	}
}

// Ensure invoiceService implements the portssvc.InvoiceSvcFacade interface
var _ portssvc.InvoiceSvcFacade = (*invoiceService)(nil)

// invoicePrefixFor returns the number prefix for an invoice type.
func invoicePrefixFor(invoiceType domain.InvoiceType) (string, error) {
	switch invoiceType {
	case domain.Sale:
		return saleInvoicePrefix, nil
	case domain.Purchase:
		return purchaseInvoicePrefix, nil
	default:
		return "", fmt.Errorf("%w: unknown invoice type '%s'", apperrors.ErrValidation, invoiceType)
	}
}

// FormatInvoiceNo renders a number from its parts, e.g. SATIS-20260115-003.
func FormatInvoiceNo(prefix string, date time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, date.Format("20060102"), seq)
}

// allocateInvoiceNo claims the next number for the type and date within tx.
// The per-prefix-per-day counter survives deletions, so numbers are never
// reused even when the latest invoice of the day is removed.
func (s *invoiceService) allocateInvoiceNo(ctx context.Context, tx pgx.Tx, invoiceType domain.InvoiceType, date time.Time) (string, error) {
	prefix, err := invoicePrefixFor(invoiceType)
	if err != nil {
		return "", err
	}
	seq, err := s.invoiceRepo.AllocateInvoiceSeq(ctx, tx, prefix, date.Format("20060102"))
	if err != nil {
		return "", fmt.Errorf("failed to allocate invoice sequence: %w", err)
	}
	return FormatInvoiceNo(prefix, date, seq), nil
}

// rollback is a deferred-rollback helper shared by all cascade entry points.
func (s *invoiceService) rollback(ctx context.Context, tx pgx.Tx) {
	if err := s.invoiceRepo.Rollback(ctx, tx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to rollback transaction", slog.String("error", err.Error()))
	}
}

// runCascade recomputes the invoice's derived state from its stored lines and
// re-syncs the dependent rows, all within tx. The order is fixed: totals
// first, then stock movements, then the ledger entry, so each step sees the
// state the previous one produced. The returned counterparty IDs carry stale
// cached balances; the caller invalidates them after committing.
func (s *invoiceService) runCascade(ctx context.Context, tx pgx.Tx, invoice *domain.Invoice, actorUserID string) ([]string, error) {
	lines, err := s.invoiceRepo.FindLinesByInvoiceIDInTx(ctx, tx, invoice.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for invoice %s: %w", invoice.InvoiceID, err)
	}

	totals, err := billing.CalculateInvoiceTotals(lines, invoice.DiscountPct)
	if err != nil {
		return nil, err
	}
	invoice.Subtotal = totals.Subtotal
	invoice.TaxTotal = totals.TaxTotal
	invoice.DiscountAmount = totals.DiscountAmount
	invoice.GrandTotal = totals.GrandTotal

	now := time.Now().UTC()
	invoice.LastUpdatedAt = now
	invoice.LastUpdatedBy = actorUserID

	if err := s.invoiceRepo.UpdateInvoiceInTx(ctx, tx, *invoice); err != nil {
		return nil, fmt.Errorf("failed to persist totals for invoice %s: %w", invoice.InvoiceID, err)
	}
	invoice.Version++

	if err := s.stockSvc.SyncMovementsForInvoice(ctx, tx, invoice, lines, actorUserID); err != nil {
		return nil, err
	}
	stale, err := s.ledgerSvc.SyncLedgerForInvoice(ctx, tx, invoice, actorUserID)
	if err != nil {
		return nil, err
	}

	invoice.Lines = lines
	return stale, nil
}

// buildLine derives a full invoice line from its request.
func buildLine(invoiceID string, req dto.LineItemRequest, seqNo int) (domain.InvoiceLine, error) {
	amounts, err := billing.CalculateLineAmounts(req.Quantity, req.UnitPrice, req.TaxRatePct)
	if err != nil {
		return domain.InvoiceLine{}, err
	}
	if req.ProductID == nil && req.ProductName == "" {
		return domain.InvoiceLine{}, fmt.Errorf("%w: a line needs a product or a product name", apperrors.ErrValidation)
	}
	if req.SeqNo != nil {
		seqNo = *req.SeqNo
	}
	return domain.InvoiceLine{
		LineID:      uuid.NewString(),
		InvoiceID:   invoiceID,
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		TaxRatePct:  amounts.TaxRatePct,
		TaxAmount:   amounts.TaxAmount,
		LineTotal:   amounts.LineTotal,
		SeqNo:       seqNo,
	}, nil
}

// nextSeqNo returns the sequence number for a freshly appended line. Using
// the max keeps numbers unique after a middle line was removed.
func nextSeqNo(existing []domain.InvoiceLine) int {
	maxSeq := 0
	for _, line := range existing {
		if line.SeqNo > maxSeq {
			maxSeq = line.SeqNo
		}
	}
	return maxSeq + 1
}

// newInvoiceFromRequest builds the header domain object minus its number.
func newInvoiceFromRequest(req dto.CreateInvoiceRequest, creatorUserID string, now time.Time) domain.Invoice {
	status := req.Status
	if status == "" {
		status = domain.OpenAccount
	}
	return domain.Invoice{
		InvoiceID:      uuid.NewString(),
		CounterpartyID: req.CounterpartyID,
		InvoiceDate:    req.Date,
		DueDate:        req.DueDate,
		Type:           req.Type,
		Status:         status,
		DiscountPct:    req.DiscountPct,
		Subtotal:       decimal.Zero,
		TaxTotal:       decimal.Zero,
		DiscountAmount: decimal.Zero,
		GrandTotal:     decimal.Zero,
		Note:           req.Note,
		Version:        1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
}

// CreateInvoice persists a new empty invoice header and assigns its number.
// No stock movements or ledger entry exist yet; the first line added through
// the cascade creates them once the invoice carries an amount.
func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, creatorUserID string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.DiscountPct.IsNegative() || req.DiscountPct.GreaterThan(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("%w: discount must be within [0,100]", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	invoice := newInvoiceFromRequest(req, creatorUserID, now)

	tx, err := s.invoiceRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	invoice.InvoiceNo, err = s.allocateInvoiceNo(ctx, tx, invoice.Type, invoice.InvoiceDate)
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveInvoiceInTx(ctx, tx, invoice); err != nil {
		logger.Error("Failed to save invoice", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}
	if err := s.invoiceRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.auditSvc.RecordAction(ctx, creatorUserID, domain.ActionCreate, "invoice", &invoice.InvoiceID, fmt.Sprintf("Fatura oluşturuldu: %s", invoice.InvoiceNo))
	logger.Info("Invoice created successfully", slog.String("invoice_id", invoice.InvoiceID), slog.String("invoice_no", invoice.InvoiceNo))
	return &invoice, nil
}

// CreateInvoiceWithLines persists a header and all its lines atomically and
// runs the full cascade once over the result.
func (s *invoiceService) CreateInvoiceWithLines(ctx context.Context, req dto.CreateInvoiceWithLinesRequest, creatorUserID string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: at least one line is required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	invoice := newInvoiceFromRequest(req.CreateInvoiceRequest, creatorUserID, now)

	lines := make([]domain.InvoiceLine, len(req.Lines))
	for i, lineReq := range req.Lines {
		line, err := buildLine(invoice.InvoiceID, lineReq, i+1)
		if err != nil {
			return nil, err
		}
		lines[i] = line
	}

	tx, err := s.invoiceRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	invoice.InvoiceNo, err = s.allocateInvoiceNo(ctx, tx, invoice.Type, invoice.InvoiceDate)
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveInvoiceInTx(ctx, tx, invoice); err != nil {
		logger.Error("Failed to save invoice", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}
	if err := s.invoiceRepo.SaveLinesInTx(ctx, tx, lines); err != nil {
		return nil, fmt.Errorf("failed to save invoice lines: %w", err)
	}
	stale, err := s.runCascade(ctx, tx, &invoice, creatorUserID)
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.ledgerSvc.InvalidateBalances(ctx, stale)

	s.auditSvc.RecordAction(ctx, creatorUserID, domain.ActionCreate, "invoice", &invoice.InvoiceID, fmt.Sprintf("Fatura oluşturuldu: %s (%d kalem)", invoice.InvoiceNo, len(lines)))
	logger.Info("Invoice with lines created successfully", slog.String("invoice_id", invoice.InvoiceID), slog.String("invoice_no", invoice.InvoiceNo), slog.Int("line_count", len(lines)))
	return &invoice, nil
}

// GetInvoiceByID retrieves an invoice header together with its lines.
func (s *invoiceService) GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to find invoice %s: %w", invoiceID, err)
	}
	lines, err := s.invoiceRepo.FindLinesByInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for invoice %s: %w", invoiceID, err)
	}
	invoice.Lines = lines
	return invoice, nil
}

// ListInvoices retrieves a paginated list of invoice headers.
func (s *invoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams) (*dto.ListInvoicesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	filter := portsrepo.InvoiceFilter{
		Type:   params.Type,
		Status: params.Status,
		Search: params.Search,
	}
	invoices, nextToken, err := s.invoiceRepo.ListInvoices(ctx, limit, params.NextToken, filter)
	if err != nil {
		logger.Error("Failed to list invoices", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve invoices: %w", err)
	}

	responses := make([]dto.InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = dto.ToInvoiceResponse(&invoices[i])
	}
	return &dto.ListInvoicesResponse{Invoices: responses, NextToken: nextToken}, nil
}

// UpdateInvoice applies header changes and re-runs the cascade. The stored
// version must match req.Version or the update is rejected with ErrConflict.
func (s *invoiceService) UpdateInvoice(ctx context.Context, invoiceID string, req dto.UpdateInvoiceRequest, requestingUserID string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.invoiceRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	invoice, err := s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Version != req.Version {
		return nil, fmt.Errorf("%w: invoice %s is at version %d, request carried %d", apperrors.ErrConflict, invoiceID, invoice.Version, req.Version)
	}

	if req.CounterpartyID != nil {
		invoice.CounterpartyID = req.CounterpartyID
	}
	if req.Date != nil {
		invoice.InvoiceDate = *req.Date
	}
	if req.DueDate != nil {
		invoice.DueDate = req.DueDate
	}
	if req.Status != nil {
		invoice.Status = *req.Status
	}
	if req.DiscountPct != nil {
		invoice.DiscountPct = *req.DiscountPct
	}
	if req.Note != nil {
		invoice.Note = *req.Note
	}

	stale, err := s.runCascade(ctx, tx, invoice, requestingUserID)
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.ledgerSvc.InvalidateBalances(ctx, stale)

	s.auditSvc.RecordAction(ctx, requestingUserID, domain.ActionUpdate, "invoice", &invoice.InvoiceID, fmt.Sprintf("Fatura güncellendi: %s", invoice.InvoiceNo))
	logger.Info("Invoice updated successfully", slog.String("invoice_id", invoiceID))
	return invoice, nil
}

// DeleteInvoice removes an invoice that has no lines left, along with its
// stock movements and ledger entry. Invoices that still carry lines are
// rejected; lines must be removed one by one first so their stock and ledger
// effects unwind through the cascade.
func (s *invoiceService) DeleteInvoice(ctx context.Context, invoiceID string, requestingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.invoiceRepo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	invoice, err := s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, tx, invoiceID)
	if err != nil {
		return err
	}
	lines, err := s.invoiceRepo.FindLinesByInvoiceIDInTx(ctx, tx, invoiceID)
	if err != nil {
		return fmt.Errorf("failed to load lines for invoice %s: %w", invoiceID, err)
	}
	if len(lines) > 0 {
		return fmt.Errorf("%w: invoice %s still has %d line(s), remove them first", apperrors.ErrValidation, invoice.InvoiceNo, len(lines))
	}

	// Reverse any leftover derived rows before the header goes away.
	if err := s.stockSvc.SyncMovementsForInvoice(ctx, tx, invoice, nil, requestingUserID); err != nil {
		return err
	}
	stale, err := s.ledgerSvc.RemoveLedgerForInvoice(ctx, tx, invoice)
	if err != nil {
		return err
	}
	if err := s.invoiceRepo.DeleteInvoiceInTx(ctx, tx, invoiceID); err != nil {
		return fmt.Errorf("failed to delete invoice %s: %w", invoiceID, err)
	}

	if err := s.invoiceRepo.Commit(ctx, tx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.ledgerSvc.InvalidateBalances(ctx, stale)

	s.auditSvc.RecordAction(ctx, requestingUserID, domain.ActionDelete, "invoice", nil, fmt.Sprintf("Fatura silindi: %s", invoice.InvoiceNo))
	logger.Info("Invoice deleted", slog.String("invoice_id", invoiceID), slog.String("invoice_no", invoice.InvoiceNo))
	return nil
}

// CopyInvoice duplicates an invoice and its lines under a freshly allocated
// number. The copy always starts as an open-account invoice dated today, and
// amounts are recomputed rather than copied.
func (s *invoiceService) CopyInvoice(ctx context.Context, invoiceID string, creatorUserID string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	source, err := s.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	copyInvoice := domain.Invoice{
		InvoiceID:      uuid.NewString(),
		CounterpartyID: source.CounterpartyID,
		InvoiceDate:    now,
		DueDate:        source.DueDate,
		Type:           source.Type,
		Status:         domain.OpenAccount,
		DiscountPct:    source.DiscountPct,
		Subtotal:       decimal.Zero,
		TaxTotal:       decimal.Zero,
		DiscountAmount: decimal.Zero,
		GrandTotal:     decimal.Zero,
		Note:           fmt.Sprintf("Kopya: %s", source.InvoiceNo),
		Version:        1,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	lines := make([]domain.InvoiceLine, len(source.Lines))
	for i, srcLine := range source.Lines {
		amounts, err := billing.CalculateLineAmounts(srcLine.Quantity, srcLine.UnitPrice, srcLine.TaxRatePct)
		if err != nil {
			return nil, err
		}
		lines[i] = domain.InvoiceLine{
			LineID:      uuid.NewString(),
			InvoiceID:   copyInvoice.InvoiceID,
			ProductID:   srcLine.ProductID,
			ProductName: srcLine.ProductName,
			Quantity:    srcLine.Quantity,
			UnitPrice:   srcLine.UnitPrice,
			TaxRatePct:  amounts.TaxRatePct,
			TaxAmount:   amounts.TaxAmount,
			LineTotal:   amounts.LineTotal,
			SeqNo:       srcLine.SeqNo,
		}
	}

	tx, err := s.invoiceRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	copyInvoice.InvoiceNo, err = s.allocateInvoiceNo(ctx, tx, copyInvoice.Type, copyInvoice.InvoiceDate)
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveInvoiceInTx(ctx, tx, copyInvoice); err != nil {
		return nil, fmt.Errorf("failed to save invoice copy: %w", err)
	}
	if len(lines) > 0 {
		if err := s.invoiceRepo.SaveLinesInTx(ctx, tx, lines); err != nil {
			return nil, fmt.Errorf("failed to save copied lines: %w", err)
		}
	}
	stale, err := s.runCascade(ctx, tx, &copyInvoice, creatorUserID)
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.ledgerSvc.InvalidateBalances(ctx, stale)

	s.auditSvc.RecordAction(ctx, creatorUserID, domain.ActionCreate, "invoice", &copyInvoice.InvoiceID, fmt.Sprintf("Fatura kopyalandı: %s -> %s", source.InvoiceNo, copyInvoice.InvoiceNo))
	logger.Info("Invoice copied", slog.String("source_invoice_id", invoiceID), slog.String("copy_invoice_id", copyInvoice.InvoiceID))
	return &copyInvoice, nil
}

// AddLineItem appends a line to an invoice and re-runs the cascade.
func (s *invoiceService) AddLineItem(ctx context.Context, invoiceID string, req dto.LineItemRequest, requestingUserID string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.invoiceRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	invoice, err := s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	existing, err := s.invoiceRepo.FindLinesByInvoiceIDInTx(ctx, tx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lines for invoice %s: %w", invoiceID, err)
	}

	line, err := buildLine(invoiceID, req, nextSeqNo(existing))
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveLinesInTx(ctx, tx, []domain.InvoiceLine{line}); err != nil {
		return nil, fmt.Errorf("failed to save invoice line: %w", err)
	}
	stale, err := s.runCascade(ctx, tx, invoice, requestingUserID)
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.ledgerSvc.InvalidateBalances(ctx, stale)

	s.auditSvc.RecordAction(ctx, requestingUserID, domain.ActionUpdate, "invoice", &invoice.InvoiceID, fmt.Sprintf("Faturaya kalem eklendi: %s", invoice.InvoiceNo))
	logger.Info("Line item added", slog.String("invoice_id", invoiceID), slog.String("line_id", line.LineID))
	return invoice, nil
}

// UpdateLineItem replaces the editable fields of a line and re-runs the cascade.
func (s *invoiceService) UpdateLineItem(ctx context.Context, invoiceID string, lineID string, req dto.LineItemRequest, requestingUserID string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.invoiceRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	invoice, err := s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	line, err := s.invoiceRepo.FindLineByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if line.InvoiceID != invoiceID {
		return nil, fmt.Errorf("%w: line %s does not belong to invoice %s", apperrors.ErrNotFound, lineID, invoiceID)
	}

	amounts, err := billing.CalculateLineAmounts(req.Quantity, req.UnitPrice, req.TaxRatePct)
	if err != nil {
		return nil, err
	}
	line.ProductID = req.ProductID
	if req.ProductName != "" {
		line.ProductName = req.ProductName
	}
	line.Quantity = req.Quantity
	line.UnitPrice = req.UnitPrice
	line.TaxRatePct = amounts.TaxRatePct
	line.TaxAmount = amounts.TaxAmount
	line.LineTotal = amounts.LineTotal
	if req.SeqNo != nil {
		line.SeqNo = *req.SeqNo
	}

	if err := s.invoiceRepo.UpdateLineInTx(ctx, tx, *line); err != nil {
		return nil, fmt.Errorf("failed to update invoice line %s: %w", lineID, err)
	}
	stale, err := s.runCascade(ctx, tx, invoice, requestingUserID)
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.ledgerSvc.InvalidateBalances(ctx, stale)

	s.auditSvc.RecordAction(ctx, requestingUserID, domain.ActionUpdate, "invoice", &invoice.InvoiceID, fmt.Sprintf("Fatura kalemi güncellendi: %s", invoice.InvoiceNo))
	logger.Info("Line item updated", slog.String("invoice_id", invoiceID), slog.String("line_id", lineID))
	return invoice, nil
}

// RemoveLineItem deletes a line from an invoice and re-runs the cascade.
func (s *invoiceService) RemoveLineItem(ctx context.Context, invoiceID string, lineID string, requestingUserID string) (*domain.Invoice, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.invoiceRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	invoice, err := s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	line, err := s.invoiceRepo.FindLineByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if line.InvoiceID != invoiceID {
		return nil, fmt.Errorf("%w: line %s does not belong to invoice %s", apperrors.ErrNotFound, lineID, invoiceID)
	}

	if err := s.invoiceRepo.DeleteLineInTx(ctx, tx, lineID); err != nil {
		return nil, fmt.Errorf("failed to delete invoice line %s: %w", lineID, err)
	}
	stale, err := s.runCascade(ctx, tx, invoice, requestingUserID)
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.ledgerSvc.InvalidateBalances(ctx, stale)

	s.auditSvc.RecordAction(ctx, requestingUserID, domain.ActionUpdate, "invoice", &invoice.InvoiceID, fmt.Sprintf("Fatura kalemi silindi: %s", invoice.InvoiceNo))
	logger.Info("Line item removed", slog.String("invoice_id", invoiceID), slog.String("line_id", lineID))
	return invoice, nil
}

// setStatus is the shared body of SettleInvoice and ReopenInvoice.
func (s *invoiceService) setStatus(ctx context.Context, invoiceID string, status domain.InvoiceStatus, requestingUserID string) (*domain.Invoice, error) {
	tx, err := s.invoiceRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer s.rollback(ctx, tx)

	invoice, err := s.invoiceRepo.FindInvoiceByIDForUpdate(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == status {
		// Already in the requested state; commit nothing.
		return invoice, nil
	}
	invoice.Status = status

	stale, err := s.runCascade(ctx, tx, invoice, requestingUserID)
	if err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.ledgerSvc.InvalidateBalances(ctx, stale)
	return invoice, nil
}

// SettleInvoice switches an invoice to cash settlement. The cascade removes
// its ledger entry; stock movements are unaffected.
func (s *invoiceService) SettleInvoice(ctx context.Context, invoiceID string, requestingUserID string) (*domain.Invoice, error) {
	invoice, err := s.setStatus(ctx, invoiceID, domain.SettledFromCash, requestingUserID)
	if err != nil {
		return nil, err
	}
	s.auditSvc.RecordAction(ctx, requestingUserID, domain.ActionUpdate, "invoice", &invoice.InvoiceID, fmt.Sprintf("Fatura kapatıldı: %s", invoice.InvoiceNo))
	return invoice, nil
}

// ReopenInvoice switches an invoice back to open account. The cascade
// recreates its ledger entry from the current header.
func (s *invoiceService) ReopenInvoice(ctx context.Context, invoiceID string, requestingUserID string) (*domain.Invoice, error) {
	invoice, err := s.setStatus(ctx, invoiceID, domain.OpenAccount, requestingUserID)
	if err != nil {
		return nil, err
	}
	s.auditSvc.RecordAction(ctx, requestingUserID, domain.ActionUpdate, "invoice", &invoice.InvoiceID, fmt.Sprintf("Fatura açık hesaba alındı: %s", invoice.InvoiceNo))
	return invoice, nil
}
