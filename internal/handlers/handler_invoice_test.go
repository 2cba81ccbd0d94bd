package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/stoktakip/erp_backend/internal/apperrors"
	"github.com/stoktakip/erp_backend/internal/core/domain"
	portssvc "github.com/stoktakip/erp_backend/internal/core/ports/services"
	"github.com/stoktakip/erp_backend/internal/dto"
	"github.com/stoktakip/erp_backend/internal/handlers"
	"github.com/stoktakip/erp_backend/internal/platform/config"
)

// --- Mock InvoiceService ---
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) GetInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) ListInvoices(ctx context.Context, params dto.ListInvoicesParams) (*dto.ListInvoicesResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListInvoicesResponse), args.Error(1)
}
func (m *MockInvoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest, creatorUserID string) (*domain.Invoice, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) CreateInvoiceWithLines(ctx context.Context, req dto.CreateInvoiceWithLinesRequest, creatorUserID string) (*domain.Invoice, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) UpdateInvoice(ctx context.Context, invoiceID string, req dto.UpdateInvoiceRequest, requestingUserID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) DeleteInvoice(ctx context.Context, invoiceID string, requestingUserID string) error {
	args := m.Called(ctx, invoiceID, requestingUserID)
	return args.Error(0)
}
func (m *MockInvoiceService) CopyInvoice(ctx context.Context, invoiceID string, creatorUserID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) AddLineItem(ctx context.Context, invoiceID string, req dto.LineItemRequest, requestingUserID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) UpdateLineItem(ctx context.Context, invoiceID string, lineID string, req dto.LineItemRequest, requestingUserID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, lineID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) RemoveLineItem(ctx context.Context, invoiceID string, lineID string, requestingUserID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, lineID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) SettleInvoice(ctx context.Context, invoiceID string, requestingUserID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
func (m *MockInvoiceService) ReopenInvoice(ctx context.Context, invoiceID string, requestingUserID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.InvoiceSvcFacade = (*MockInvoiceService)(nil)

// --- Test Suite ---
type InvoiceHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockInvoiceService *MockInvoiceService
	jwtSecret          string
}

func (suite *InvoiceHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "stoktakip-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *InvoiceHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.mockInvoiceService = new(MockInvoiceService)

	cfg := &config.Config{JWTSecret: suite.jwtSecret}
	svcs := &portssvc.ServiceContainer{Invoice: suite.mockInvoiceService}
	handlers.RegisterRoutes(suite.router, cfg, svcs)
}

func TestInvoiceHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceHandlerTestSuite))
}

func (suite *InvoiceHandlerTestSuite) doRequest(method, url, userID string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *InvoiceHandlerTestSuite) TestGetInvoice_Success() {
	invoice := &domain.Invoice{
		InvoiceID:  "inv-1",
		InvoiceNo:  "SATIS-20260115-001",
		Type:       domain.Sale,
		Status:     domain.OpenAccount,
		GrandTotal: decimal.NewFromInt(240),
		Version:    2,
	}
	suite.mockInvoiceService.On("GetInvoiceByID", mock.Anything, "inv-1").Return(invoice, nil).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/invoices/inv-1", "user-1", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.InvoiceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("SATIS-20260115-001", resp.InvoiceNo)
	suite.Equal(int64(2), resp.Version)
	suite.mockInvoiceService.AssertExpectations(suite.T())
}

func (suite *InvoiceHandlerTestSuite) TestGetInvoice_NotFound() {
	suite.mockInvoiceService.On("GetInvoiceByID", mock.Anything, "inv-missing").
		Return(nil, fmt.Errorf("lookup: %w", apperrors.ErrNotFound)).Once()

	w := suite.doRequest(http.MethodGet, "/api/v1/invoices/inv-missing", "user-1", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *InvoiceHandlerTestSuite) TestGetInvoice_RejectsMissingToken() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/invoices/inv-1", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockInvoiceService.AssertNotCalled(suite.T(), "GetInvoiceByID", mock.Anything, mock.Anything)
}

func (suite *InvoiceHandlerTestSuite) TestCreateInvoiceWithLines_Success() {
	body := dto.CreateInvoiceWithLinesRequest{
		CreateInvoiceRequest: dto.CreateInvoiceRequest{
			Type: domain.Sale,
			Date: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		Lines: []dto.LineItemRequest{
			{ProductName: "Vida 5x40", Quantity: 2, UnitPrice: decimal.NewFromInt(100), TaxRatePct: 20},
		},
	}
	created := &domain.Invoice{
		InvoiceID:  "inv-1",
		InvoiceNo:  "SATIS-20260115-001",
		Type:       domain.Sale,
		Status:     domain.OpenAccount,
		GrandTotal: decimal.NewFromInt(240),
		Version:    2,
	}
	suite.mockInvoiceService.On("CreateInvoiceWithLines", mock.Anything, mock.MatchedBy(func(r dto.CreateInvoiceWithLinesRequest) bool {
		return r.Type == domain.Sale && len(r.Lines) == 1 && r.Lines[0].Quantity == 2
	}), "user-1").Return(created, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/invoices/with-lines", "user-1", body)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.InvoiceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("SATIS-20260115-001", resp.InvoiceNo)
	suite.mockInvoiceService.AssertExpectations(suite.T())
}

func (suite *InvoiceHandlerTestSuite) TestCreateInvoiceWithLines_RejectsEmptyLines() {
	body := dto.CreateInvoiceWithLinesRequest{
		CreateInvoiceRequest: dto.CreateInvoiceRequest{
			Type: domain.Sale,
			Date: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	w := suite.doRequest(http.MethodPost, "/api/v1/invoices/with-lines", "user-1", body)

	// Binding rejects the missing lines before the service is reached.
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockInvoiceService.AssertNotCalled(suite.T(), "CreateInvoiceWithLines", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *InvoiceHandlerTestSuite) TestUpdateInvoice_VersionConflict() {
	note := "Güncel"
	body := dto.UpdateInvoiceRequest{Note: &note, Version: 2}

	suite.mockInvoiceService.On("UpdateInvoice", mock.Anything, "inv-1", mock.Anything, "user-1").
		Return(nil, fmt.Errorf("stale: %w", apperrors.ErrConflict)).Once()

	w := suite.doRequest(http.MethodPut, "/api/v1/invoices/inv-1", "user-1", body)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockInvoiceService.AssertExpectations(suite.T())
}

func (suite *InvoiceHandlerTestSuite) TestDeleteInvoice_RejectedWhileLinesRemain() {
	suite.mockInvoiceService.On("DeleteInvoice", mock.Anything, "inv-1", "user-1").
		Return(fmt.Errorf("invoice still has lines: %w", apperrors.ErrValidation)).Once()

	w := suite.doRequest(http.MethodDelete, "/api/v1/invoices/inv-1", "user-1", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockInvoiceService.AssertExpectations(suite.T())
}

func (suite *InvoiceHandlerTestSuite) TestDeleteInvoice_Success() {
	suite.mockInvoiceService.On("DeleteInvoice", mock.Anything, "inv-1", "user-1").Return(nil).Once()

	w := suite.doRequest(http.MethodDelete, "/api/v1/invoices/inv-1", "user-1", nil)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockInvoiceService.AssertExpectations(suite.T())
}

func (suite *InvoiceHandlerTestSuite) TestSettleInvoice_Success() {
	settled := &domain.Invoice{
		InvoiceID: "inv-1",
		InvoiceNo: "SATIS-20260115-001",
		Type:      domain.Sale,
		Status:    domain.SettledFromCash,
		Version:   3,
	}
	suite.mockInvoiceService.On("SettleInvoice", mock.Anything, "inv-1", "user-1").Return(settled, nil).Once()

	w := suite.doRequest(http.MethodPost, "/api/v1/invoices/inv-1/settle", "user-1", nil)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.InvoiceResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(string(domain.SettledFromCash), resp.Status)
	suite.mockInvoiceService.AssertExpectations(suite.T())
}
