package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/stoktakip/erp_backend/internal/apperrors"
	"github.com/stoktakip/erp_backend/internal/core/domain"
	portssvc "github.com/stoktakip/erp_backend/internal/core/ports/services"
	"github.com/stoktakip/erp_backend/internal/core/services"
	"github.com/stoktakip/erp_backend/internal/dto"
)

type StockServiceTestSuite struct {
	suite.Suite
	repo    *MockStockRepository
	service portssvc.StockSvcFacade
	ctx     context.Context
	tx      stubTx
}

func (s *StockServiceTestSuite) SetupTest() {
	s.repo = new(MockStockRepository)
	s.service = services.NewStockService(s.repo)
	s.ctx = context.Background()
	s.tx = stubTx{}
}

func TestStockServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StockServiceTestSuite))
}

func (s *StockServiceTestSuite) TestCreateProduct_RejectsNegativePrice() {
	req := dto.CreateProductRequest{Name: "Vida 5x40", Price: decimal.NewFromInt(-1)}

	product, err := s.service.CreateProduct(s.ctx, req, "user-1")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Nil(product)
	s.repo.AssertNotCalled(s.T(), "SaveProduct", mock.Anything, mock.Anything)
}

func (s *StockServiceTestSuite) TestCreateProduct_Success() {
	req := dto.CreateProductRequest{Name: "Vida 5x40", Price: decimal.NewFromInt(12), Unit: "adet"}

	s.repo.On("SaveProduct", s.ctx, mock.MatchedBy(func(p domain.Product) bool {
		return p.Name == "Vida 5x40" && p.ProductID != "" && p.StockQty == 0
	})).Return(nil).Once()

	product, err := s.service.CreateProduct(s.ctx, req, "user-1")

	s.Require().NoError(err)
	s.Equal("Vida 5x40", product.Name)
	s.Equal("user-1", product.CreatedBy)
	s.repo.AssertExpectations(s.T())
}

func (s *StockServiceTestSuite) TestRecordMovement_RejectsUnknownDirection() {
	req := dto.CreateStockMovementRequest{ProductID: "prod-1", Direction: "yukarı", Quantity: 5}

	movement, err := s.service.RecordMovement(s.ctx, req, "user-1")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.Nil(movement)
	s.repo.AssertNotCalled(s.T(), "Begin", mock.Anything)
}

func (s *StockServiceTestSuite) TestRecordMovement_ProductNotFound() {
	req := dto.CreateStockMovementRequest{ProductID: "prod-missing", Direction: domain.StockIn, Quantity: 5}

	s.repo.On("Begin", s.ctx).Return(s.tx, nil).Once()
	s.repo.On("Rollback", s.ctx, s.tx).Return(nil).Once()
	s.repo.On("FindProductsByIDsForUpdate", s.ctx, s.tx, []string{"prod-missing"}).Return(map[string]domain.Product{}, nil).Once()

	movement, err := s.service.RecordMovement(s.ctx, req, "user-1")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrNotFound)
	s.Nil(movement)
	s.repo.AssertNotCalled(s.T(), "SaveMovementsInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (s *StockServiceTestSuite) TestRecordMovement_Success() {
	req := dto.CreateStockMovementRequest{ProductID: "prod-1", Direction: domain.StockOut, Quantity: 4, Description: "Fire"}

	s.repo.On("Begin", s.ctx).Return(s.tx, nil).Once()
	s.repo.On("Rollback", s.ctx, s.tx).Return(nil).Once()
	s.repo.On("FindProductsByIDsForUpdate", s.ctx, s.tx, []string{"prod-1"}).
		Return(map[string]domain.Product{"prod-1": {ProductID: "prod-1", StockQty: 10}}, nil).Once()
	s.repo.On("SaveMovementsInTx", s.ctx, s.tx, mock.MatchedBy(func(movements []domain.StockMovement) bool {
		return len(movements) == 1 &&
			movements[0].Direction == domain.StockOut &&
			movements[0].Quantity == 4 &&
			movements[0].SourceInvoiceID == nil
	})).Return(nil).Once()
	s.repo.On("AdjustStockQtyInTx", s.ctx, s.tx, map[string]int64{"prod-1": -4}, "user-1", mock.Anything).Return(nil).Once()
	s.repo.On("Commit", s.ctx, s.tx).Return(nil).Once()

	movement, err := s.service.RecordMovement(s.ctx, req, "user-1")

	s.Require().NoError(err)
	s.Equal(domain.StockOut, movement.Direction)
	s.Require().NotNil(movement.ProductID)
	s.Equal("prod-1", *movement.ProductID)
	s.repo.AssertExpectations(s.T())
}

func (s *StockServiceTestSuite) TestSyncMovementsForInvoice_RejectsMissingInvoiceNo() {
	counterpartyID := "cp-1"
	invoice := &domain.Invoice{InvoiceID: "inv-1", CounterpartyID: &counterpartyID, Type: domain.Sale}

	err := s.service.SyncMovementsForInvoice(s.ctx, s.tx, invoice, nil, "user-1")

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConfiguration)
	s.repo.AssertNotCalled(s.T(), "DeleteMovementsForInvoiceInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (s *StockServiceTestSuite) TestSyncMovementsForInvoice_CreatesMovementsPerProductLine() {
	productID := "prod-1"
	invoice := &domain.Invoice{InvoiceID: "inv-1", InvoiceNo: "SATIS-20260115-001", Type: domain.Sale}
	lines := []domain.InvoiceLine{
		{LineID: "line-1", ProductID: &productID, Quantity: 5},
		{LineID: "line-2", ProductName: "Montaj hizmeti", Quantity: 1}, // no product, no movement
	}

	s.repo.On("DeleteMovementsForInvoiceInTx", s.ctx, s.tx, "inv-1").Return([]domain.StockMovement{}, nil).Once()
	s.repo.On("FindProductsByIDsForUpdate", s.ctx, s.tx, []string{"prod-1"}).
		Return(map[string]domain.Product{"prod-1": {ProductID: "prod-1"}}, nil).Once()
	s.repo.On("SaveMovementsInTx", s.ctx, s.tx, mock.MatchedBy(func(movements []domain.StockMovement) bool {
		return len(movements) == 1 &&
			movements[0].Direction == domain.StockOut &&
			movements[0].Quantity == 5 &&
			movements[0].SourceInvoiceID != nil && *movements[0].SourceInvoiceID == "inv-1"
	})).Return(nil).Once()
	s.repo.On("AdjustStockQtyInTx", s.ctx, s.tx, map[string]int64{"prod-1": -5}, "user-1", mock.Anything).Return(nil).Once()

	err := s.service.SyncMovementsForInvoice(s.ctx, s.tx, invoice, lines, "user-1")

	s.Require().NoError(err)
	s.repo.AssertExpectations(s.T())
}

func (s *StockServiceTestSuite) TestSyncMovementsForInvoice_PurchaseBringsStockIn() {
	productID := "prod-1"
	invoice := &domain.Invoice{InvoiceID: "inv-1", InvoiceNo: "ALIS-20260115-001", Type: domain.Purchase}
	lines := []domain.InvoiceLine{{LineID: "line-1", ProductID: &productID, Quantity: 8}}

	s.repo.On("DeleteMovementsForInvoiceInTx", s.ctx, s.tx, "inv-1").Return([]domain.StockMovement{}, nil).Once()
	s.repo.On("FindProductsByIDsForUpdate", s.ctx, s.tx, []string{"prod-1"}).
		Return(map[string]domain.Product{"prod-1": {ProductID: "prod-1"}}, nil).Once()
	s.repo.On("SaveMovementsInTx", s.ctx, s.tx, mock.MatchedBy(func(movements []domain.StockMovement) bool {
		return len(movements) == 1 && movements[0].Direction == domain.StockIn
	})).Return(nil).Once()
	s.repo.On("AdjustStockQtyInTx", s.ctx, s.tx, map[string]int64{"prod-1": 8}, "user-1", mock.Anything).Return(nil).Once()

	err := s.service.SyncMovementsForInvoice(s.ctx, s.tx, invoice, lines, "user-1")

	s.Require().NoError(err)
	s.repo.AssertExpectations(s.T())
}

func (s *StockServiceTestSuite) TestSyncMovementsForInvoice_ReversesRemovedMovements() {
	productID := "prod-1"
	invoice := &domain.Invoice{InvoiceID: "inv-1", InvoiceNo: "SATIS-20260115-001", Type: domain.Sale}
	lines := []domain.InvoiceLine{{LineID: "line-1", ProductID: &productID, Quantity: 7}}
	invoiceID := "inv-1"
	removed := []domain.StockMovement{
		{MovementID: "mv-1", ProductID: &productID, Direction: domain.StockOut, Quantity: 2, SourceInvoiceID: &invoiceID},
	}

	s.repo.On("DeleteMovementsForInvoiceInTx", s.ctx, s.tx, "inv-1").Return(removed, nil).Once()
	s.repo.On("FindProductsByIDsForUpdate", s.ctx, s.tx, []string{"prod-1"}).
		Return(map[string]domain.Product{"prod-1": {ProductID: "prod-1"}}, nil).Once()
	s.repo.On("SaveMovementsInTx", s.ctx, s.tx, mock.Anything).Return(nil).Once()
	// Old movement of 2 reversed (+2), new movement of 7 applied (-7): net -5.
	s.repo.On("AdjustStockQtyInTx", s.ctx, s.tx, map[string]int64{"prod-1": -5}, "user-1", mock.Anything).Return(nil).Once()

	err := s.service.SyncMovementsForInvoice(s.ctx, s.tx, invoice, lines, "user-1")

	s.Require().NoError(err)
	s.repo.AssertExpectations(s.T())
}

func (s *StockServiceTestSuite) TestSyncMovementsForInvoice_UnchangedLinesLeaveQuantitiesAlone() {
	productID := "prod-1"
	invoice := &domain.Invoice{InvoiceID: "inv-1", InvoiceNo: "SATIS-20260115-001", Type: domain.Sale}
	lines := []domain.InvoiceLine{{LineID: "line-1", ProductID: &productID, Quantity: 5}}
	invoiceID := "inv-1"
	removed := []domain.StockMovement{
		{MovementID: "mv-1", ProductID: &productID, Direction: domain.StockOut, Quantity: 5, SourceInvoiceID: &invoiceID},
	}

	s.repo.On("DeleteMovementsForInvoiceInTx", s.ctx, s.tx, "inv-1").Return(removed, nil).Once()
	s.repo.On("FindProductsByIDsForUpdate", s.ctx, s.tx, []string{"prod-1"}).
		Return(map[string]domain.Product{"prod-1": {ProductID: "prod-1"}}, nil).Once()
	s.repo.On("SaveMovementsInTx", s.ctx, s.tx, mock.Anything).Return(nil).Once()

	err := s.service.SyncMovementsForInvoice(s.ctx, s.tx, invoice, lines, "user-1")

	s.Require().NoError(err)
	s.repo.AssertNotCalled(s.T(), "AdjustStockQtyInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *StockServiceTestSuite) TestSyncMovementsForInvoice_DeletionOnlyReverses() {
	productID := "prod-1"
	invoice := &domain.Invoice{InvoiceID: "inv-1", InvoiceNo: "SATIS-20260115-001", Type: domain.Sale}
	invoiceID := "inv-1"
	removed := []domain.StockMovement{
		{MovementID: "mv-1", ProductID: &productID, Direction: domain.StockOut, Quantity: 3, SourceInvoiceID: &invoiceID},
	}

	s.repo.On("DeleteMovementsForInvoiceInTx", s.ctx, s.tx, "inv-1").Return(removed, nil).Once()
	s.repo.On("AdjustStockQtyInTx", s.ctx, s.tx, map[string]int64{"prod-1": 3}, "user-1", mock.Anything).Return(nil).Once()

	err := s.service.SyncMovementsForInvoice(s.ctx, s.tx, invoice, nil, "user-1")

	s.Require().NoError(err)
	s.repo.AssertNotCalled(s.T(), "SaveMovementsInTx", mock.Anything, mock.Anything, mock.Anything)
	s.repo.AssertExpectations(s.T())
}
