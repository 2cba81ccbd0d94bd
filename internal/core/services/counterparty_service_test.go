package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/stoktakip/erp_backend/internal/apperrors"
	"github.com/stoktakip/erp_backend/internal/core/domain"
	portssvc "github.com/stoktakip/erp_backend/internal/core/ports/services"
	"github.com/stoktakip/erp_backend/internal/core/services"
	"github.com/stoktakip/erp_backend/internal/dto"
)

type CounterpartyServiceTestSuite struct {
	suite.Suite
	repo    *MockCounterpartyRepository
	service portssvc.CounterpartySvcFacade
	ctx     context.Context
	tx      stubTx
}

func (s *CounterpartyServiceTestSuite) SetupTest() {
	s.repo = new(MockCounterpartyRepository)
	// nil cache: balances always computed from the ledger.
	s.service = services.NewCounterpartyService(s.repo, nil)
	s.ctx = context.Background()
	s.tx = stubTx{}
}

func TestCounterpartyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CounterpartyServiceTestSuite))
}

func (s *CounterpartyServiceTestSuite) TestCreateCounterparty_Success() {
	req := dto.CreateCounterpartyRequest{Name: "Yılmaz Hırdavat", Kind: domain.Corporate}

	s.repo.On("SaveCounterparty", s.ctx, mock.MatchedBy(func(c domain.Counterparty) bool {
		return c.Name == "Yılmaz Hırdavat" && c.Kind == domain.Corporate && c.CounterpartyID != ""
	})).Return(nil).Once()

	counterparty, err := s.service.CreateCounterparty(s.ctx, req, "user-1")

	s.Require().NoError(err)
	s.Equal("Yılmaz Hırdavat", counterparty.Name)
	s.Equal("user-1", counterparty.CreatedBy)
	s.repo.AssertExpectations(s.T())
}

func (s *CounterpartyServiceTestSuite) TestRecordReceipt_RejectsInvoiceMovementType() {
	req := dto.ReceiptRequest{
		MovementType: domain.SaleInvoice,
		Amount:       decimal.NewFromInt(100),
		EntryDate:    time.Now().UTC(),
	}

	entry, err := s.service.RecordReceipt(s.ctx, "cp-1", req, "user-1")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Nil(entry)
	s.repo.AssertNotCalled(s.T(), "SaveEntry", mock.Anything, mock.Anything)
}

func (s *CounterpartyServiceTestSuite) TestRecordReceipt_RejectsNonPositiveAmount() {
	req := dto.ReceiptRequest{
		MovementType: domain.Collection,
		Amount:       decimal.Zero,
		EntryDate:    time.Now().UTC(),
	}

	entry, err := s.service.RecordReceipt(s.ctx, "cp-1", req, "user-1")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Nil(entry)
}

func (s *CounterpartyServiceTestSuite) TestRecordReceipt_Success() {
	entryDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	req := dto.ReceiptRequest{
		MovementType:  domain.Collection,
		Amount:        decimal.NewFromInt(750),
		EntryDate:     entryDate,
		Description:   "Nakit tahsilat",
		PaymentMethod: "nakit",
	}

	s.repo.On("FindCounterpartyByID", s.ctx, "cp-1").Return(&domain.Counterparty{CounterpartyID: "cp-1"}, nil).Once()
	s.repo.On("SaveEntry", s.ctx, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.CounterpartyID == "cp-1" &&
			e.MovementType == domain.Collection &&
			e.Amount.Equal(decimal.NewFromInt(750)) &&
			e.SourceInvoiceID == nil
	})).Return(nil).Once()

	entry, err := s.service.RecordReceipt(s.ctx, "cp-1", req, "user-1")

	s.Require().NoError(err)
	s.Equal(entryDate, entry.EntryDate)
	s.Equal("user-1", entry.CreatedBy)
	s.repo.AssertExpectations(s.T())
}

func (s *CounterpartyServiceTestSuite) TestDeleteReceipt_RejectsInvoiceBoundEntry() {
	invoiceID := "inv-1"
	stored := &domain.LedgerEntry{EntryID: "entry-1", CounterpartyID: "cp-1", SourceInvoiceID: &invoiceID}

	s.repo.On("FindEntryByID", s.ctx, "entry-1").Return(stored, nil).Once()

	err := s.service.DeleteReceipt(s.ctx, "entry-1", "user-1")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.repo.AssertNotCalled(s.T(), "DeleteEntry", mock.Anything, mock.Anything)
}

func (s *CounterpartyServiceTestSuite) TestDeleteReceipt_Success() {
	stored := &domain.LedgerEntry{EntryID: "entry-1", CounterpartyID: "cp-1"}

	s.repo.On("FindEntryByID", s.ctx, "entry-1").Return(stored, nil).Once()
	s.repo.On("DeleteEntry", s.ctx, "entry-1").Return(nil).Once()

	err := s.service.DeleteReceipt(s.ctx, "entry-1", "user-1")

	s.Require().NoError(err)
	s.repo.AssertExpectations(s.T())
}

func (s *CounterpartyServiceTestSuite) TestGetBalance_SignConvention() {
	entries := []domain.LedgerEntry{
		{EntryID: "e1", MovementType: domain.SaleInvoice, Amount: decimal.NewFromInt(100)},
		{EntryID: "e2", MovementType: domain.Collection, Amount: decimal.NewFromInt(40)},
		{EntryID: "e3", MovementType: domain.PurchaseInvoice, Amount: decimal.NewFromInt(25)},
	}

	s.repo.On("FindCounterpartyByID", s.ctx, "cp-1").Return(&domain.Counterparty{CounterpartyID: "cp-1"}, nil).Once()
	s.repo.On("FindAllEntriesByCounterparty", s.ctx, "cp-1").Return(entries, nil).Once()

	balance, err := s.service.GetBalance(s.ctx, "cp-1")

	s.Require().NoError(err)
	s.True(balance.Equal(decimal.NewFromInt(35)), "expected 100 - 40 - 25 = 35, got %s", balance)
	s.repo.AssertExpectations(s.T())
}

func (s *CounterpartyServiceTestSuite) TestGetStatement_RunningBalance() {
	entries := []domain.LedgerEntry{
		{EntryID: "e1", MovementType: domain.SaleInvoice, Amount: decimal.NewFromInt(200)},
		{EntryID: "e2", MovementType: domain.Collection, Amount: decimal.NewFromInt(150)},
	}

	s.repo.On("FindCounterpartyByID", s.ctx, "cp-1").Return(&domain.Counterparty{CounterpartyID: "cp-1"}, nil).Once()
	s.repo.On("FindAllEntriesByCounterparty", s.ctx, "cp-1").Return(entries, nil).Once()

	lines, err := s.service.GetStatement(s.ctx, "cp-1")

	s.Require().NoError(err)
	s.Require().Len(lines, 2)

	s.True(lines[0].Debit.Equal(decimal.NewFromInt(200)))
	s.True(lines[0].Credit.IsZero())
	s.True(lines[0].Balance.Equal(decimal.NewFromInt(200)))

	s.True(lines[1].Debit.IsZero())
	s.True(lines[1].Credit.Equal(decimal.NewFromInt(150)))
	s.True(lines[1].Balance.Equal(decimal.NewFromInt(50)))
}

func (s *CounterpartyServiceTestSuite) TestSyncLedgerForInvoice_NoCounterpartyIsNoOp() {
	invoice := &domain.Invoice{InvoiceID: "inv-1", InvoiceNo: "SATIS-20260115-001", Type: domain.Sale, Status: domain.OpenAccount}

	stale, err := s.service.SyncLedgerForInvoice(s.ctx, s.tx, invoice, "user-1")

	s.Require().NoError(err)
	s.Empty(stale)
	s.repo.AssertNotCalled(s.T(), "FindEntryByInvoiceIDInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CounterpartyServiceTestSuite) TestSyncLedgerForInvoice_RejectsMissingInvoiceNo() {
	counterpartyID := "cp-1"
	invoice := &domain.Invoice{InvoiceID: "inv-1", CounterpartyID: &counterpartyID, Type: domain.Sale, Status: domain.OpenAccount}

	_, err := s.service.SyncLedgerForInvoice(s.ctx, s.tx, invoice, "user-1")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConfiguration)
}

func (s *CounterpartyServiceTestSuite) TestSyncLedgerForInvoice_CreatesEntry() {
	counterpartyID := "cp-1"
	invoice := &domain.Invoice{
		InvoiceID:      "inv-1",
		InvoiceNo:      "SATIS-20260115-001",
		CounterpartyID: &counterpartyID,
		InvoiceDate:    time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Type:           domain.Sale,
		Status:         domain.OpenAccount,
		GrandTotal:     decimal.NewFromInt(240),
	}

	s.repo.On("FindEntryByInvoiceIDInTx", s.ctx, s.tx, "inv-1").Return(nil, nil).Once()
	s.repo.On("SaveEntryInTx", s.ctx, s.tx, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.CounterpartyID == "cp-1" &&
			e.MovementType == domain.SaleInvoice &&
			e.Amount.Equal(decimal.NewFromInt(240)) &&
			e.SourceInvoiceID != nil && *e.SourceInvoiceID == "inv-1" &&
			e.DocumentNo == "SATIS-20260115-001"
	})).Return(nil).Once()

	stale, err := s.service.SyncLedgerForInvoice(s.ctx, s.tx, invoice, "user-1")

	s.Require().NoError(err)
	s.Equal([]string{"cp-1"}, stale)
	s.repo.AssertExpectations(s.T())
}

func (s *CounterpartyServiceTestSuite) TestSyncLedgerForInvoice_EntryDateIsMidnight() {
	// The invoice date arrives as a full timestamp; the ledger keeps the day.
	counterpartyID := "cp-1"
	invoice := &domain.Invoice{
		InvoiceID:      "inv-1",
		InvoiceNo:      "SATIS-20260115-001",
		CounterpartyID: &counterpartyID,
		InvoiceDate:    time.Date(2026, 1, 15, 14, 37, 22, 0, time.UTC),
		Type:           domain.Sale,
		Status:         domain.OpenAccount,
		GrandTotal:     decimal.NewFromInt(120),
	}

	s.repo.On("FindEntryByInvoiceIDInTx", s.ctx, s.tx, "inv-1").Return(nil, nil).Once()
	s.repo.On("SaveEntryInTx", s.ctx, s.tx, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.EntryDate.Equal(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	})).Return(nil).Once()

	_, err := s.service.SyncLedgerForInvoice(s.ctx, s.tx, invoice, "user-1")

	s.Require().NoError(err)
	s.repo.AssertExpectations(s.T())
}

func (s *CounterpartyServiceTestSuite) TestSyncLedgerForInvoice_UpdatesExistingEntry() {
	counterpartyID := "cp-2"
	invoiceID := "inv-1"
	invoice := &domain.Invoice{
		InvoiceID:      invoiceID,
		InvoiceNo:      "ALIS-20260115-002",
		CounterpartyID: &counterpartyID,
		InvoiceDate:    time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Type:           domain.Purchase,
		Status:         domain.OpenAccount,
		GrandTotal:     decimal.NewFromInt(500),
	}
	existing := &domain.LedgerEntry{
		EntryID:         "entry-1",
		CounterpartyID:  "cp-1",
		MovementType:    domain.PurchaseInvoice,
		Amount:          decimal.NewFromInt(300),
		SourceInvoiceID: &invoiceID,
	}

	s.repo.On("FindEntryByInvoiceIDInTx", s.ctx, s.tx, "inv-1").Return(existing, nil).Once()
	s.repo.On("UpdateEntryInTx", s.ctx, s.tx, mock.MatchedBy(func(e domain.LedgerEntry) bool {
		return e.EntryID == "entry-1" &&
			e.CounterpartyID == "cp-2" &&
			e.Amount.Equal(decimal.NewFromInt(500))
	})).Return(nil).Once()

	stale, err := s.service.SyncLedgerForInvoice(s.ctx, s.tx, invoice, "user-1")

	s.Require().NoError(err)
	// Both the new and the previous counterparty balances went stale.
	s.ElementsMatch([]string{"cp-1", "cp-2"}, stale)
	s.repo.AssertExpectations(s.T())
}

func (s *CounterpartyServiceTestSuite) TestSyncLedgerForInvoice_RemovesEntryWhenSettled() {
	counterpartyID := "cp-1"
	invoiceID := "inv-1"
	invoice := &domain.Invoice{
		InvoiceID:      invoiceID,
		InvoiceNo:      "SATIS-20260115-001",
		CounterpartyID: &counterpartyID,
		Type:           domain.Sale,
		Status:         domain.SettledFromCash,
	}
	existing := &domain.LedgerEntry{EntryID: "entry-1", CounterpartyID: "cp-1", SourceInvoiceID: &invoiceID}

	s.repo.On("FindEntryByInvoiceIDInTx", s.ctx, s.tx, "inv-1").Return(existing, nil).Once()
	s.repo.On("DeleteEntriesForInvoiceInTx", s.ctx, s.tx, "inv-1").Return(nil).Once()

	stale, err := s.service.SyncLedgerForInvoice(s.ctx, s.tx, invoice, "user-1")

	s.Require().NoError(err)
	s.Equal([]string{"cp-1"}, stale)
	s.repo.AssertExpectations(s.T())
}

func (s *CounterpartyServiceTestSuite) TestSyncLedgerForInvoice_SettledWithoutEntryIsNoOp() {
	counterpartyID := "cp-1"
	invoice := &domain.Invoice{
		InvoiceID:      "inv-1",
		InvoiceNo:      "SATIS-20260115-001",
		CounterpartyID: &counterpartyID,
		Type:           domain.Sale,
		Status:         domain.SettledFromCash,
	}

	s.repo.On("FindEntryByInvoiceIDInTx", s.ctx, s.tx, "inv-1").Return(nil, nil).Once()

	stale, err := s.service.SyncLedgerForInvoice(s.ctx, s.tx, invoice, "user-1")

	s.Require().NoError(err)
	s.Empty(stale)
	s.repo.AssertNotCalled(s.T(), "DeleteEntriesForInvoiceInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CounterpartyServiceTestSuite) TestRemoveLedgerForInvoice_DeletesExistingEntry() {
	invoiceID := "inv-1"
	invoice := &domain.Invoice{InvoiceID: invoiceID, InvoiceNo: "SATIS-20260115-001"}
	existing := &domain.LedgerEntry{EntryID: "entry-1", CounterpartyID: "cp-1", SourceInvoiceID: &invoiceID}

	s.repo.On("FindEntryByInvoiceIDInTx", s.ctx, s.tx, "inv-1").Return(existing, nil).Once()
	s.repo.On("DeleteEntriesForInvoiceInTx", s.ctx, s.tx, "inv-1").Return(nil).Once()

	stale, err := s.service.RemoveLedgerForInvoice(s.ctx, s.tx, invoice)

	s.Require().NoError(err)
	s.Equal([]string{"cp-1"}, stale)
	s.repo.AssertExpectations(s.T())
}
