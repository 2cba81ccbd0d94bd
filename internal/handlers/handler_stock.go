package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/stoktakip/erp_backend/internal/core/ports/services"
	"github.com/stoktakip/erp_backend/internal/dto"
	"github.com/stoktakip/erp_backend/internal/middleware"
)

// stockHandler handles HTTP requests related to products and stock movements.
type stockHandler struct {
	stockService portssvc.StockSvcFacade
}

// newStockHandler creates a new stockHandler.
func newStockHandler(ss portssvc.StockSvcFacade) *stockHandler {
	return &stockHandler{stockService: ss}
}

// registerStockRoutes registers all product and movement routes.
func registerStockRoutes(rg *gin.RouterGroup, stockService portssvc.StockSvcFacade) {
	h := newStockHandler(stockService)

	products := rg.Group("/products")
	{
		products.POST("", h.createProduct)
		products.GET("", h.listProducts)
		products.GET("/:id", h.getProduct)
		products.PUT("/:id", h.updateProduct)
		products.DELETE("/:id", h.deleteProduct)
		products.GET("/:id/movements", h.listMovements)
	}

	movements := rg.Group("/stock-movements")
	{
		movements.POST("", h.recordMovement)
	}
}

// createProduct godoc
// @Summary Create a product
// @Description Creates a new product with zero stock
// @Tags products
// @Accept json
// @Produce json
// @Param product body dto.CreateProductRequest true "Product details"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /products [post]
func (h *stockHandler) createProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	product, err := h.stockService.CreateProduct(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to create product")
		return
	}

	logger.Info("Product created", slog.String("product_id", product.ProductID))
	c.JSON(http.StatusCreated, dto.ToProductResponse(product))
}

// getProduct godoc
// @Summary Get a product
// @Description Retrieves a product with its current stock quantity
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /products/{id} [get]
func (h *stockHandler) getProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	product, err := h.stockService.GetProductByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to retrieve product")
		return
	}

	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}

// listProducts godoc
// @Summary List products
// @Description Retrieves a paginated list of products, optionally filtered by a search term
// @Tags products
// @Produce json
// @Param limit query int false "Limit number of results" default(20)
// @Param nextToken query string false "Pagination token from a previous page"
// @Param search query string false "Matches product name or barcode"
// @Success 200 {object} dto.ListProductsResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /products [get]
func (h *stockHandler) listProducts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListProductsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.stockService.ListProducts(c.Request.Context(), params)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to list products")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateProduct godoc
// @Summary Update a product
// @Description Updates product details. Stock quantity only moves through movements.
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body dto.UpdateProductRequest true "Fields to update"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /products/{id} [put]
func (h *stockHandler) updateProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	product, err := h.stockService.UpdateProduct(c.Request.Context(), c.Param("id"), req, requestingUserID)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}

// deleteProduct godoc
// @Summary Delete a product
// @Description Removes a product. Historical invoice lines and movements keep their snapshot data.
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /products/{id} [delete]
func (h *stockHandler) deleteProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requestingUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.stockService.DeleteProduct(c.Request.Context(), c.Param("id"), requestingUserID); err != nil {
		respondWithServiceError(c, logger, err, "Failed to delete product")
		return
	}

	c.Status(http.StatusNoContent)
}

// recordMovement godoc
// @Summary Record a manual stock movement
// @Description Records a manual stock in or out and adjusts the product quantity
// @Tags stock-movements
// @Accept json
// @Produce json
// @Param movement body dto.CreateStockMovementRequest true "Movement details"
// @Success 201 {object} dto.StockMovementResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /stock-movements [post]
func (h *stockHandler) recordMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateStockMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	movement, err := h.stockService.RecordMovement(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to record stock movement")
		return
	}

	logger.Info("Stock movement recorded", slog.String("movement_id", movement.MovementID))
	c.JSON(http.StatusCreated, dto.ToStockMovementResponse(movement))
}

// listMovements godoc
// @Summary List movements of a product
// @Description Retrieves a paginated list of stock movements for a product, newest first
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Param limit query int false "Limit number of results" default(20)
// @Param nextToken query string false "Pagination token from a previous page"
// @Success 200 {array} dto.StockMovementResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /products/{id}/movements [get]
func (h *stockHandler) listMovements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	var nextToken *string
	if token := c.Query("nextToken"); token != "" {
		nextToken = &token
	}

	movements, newToken, err := h.stockService.ListMovementsByProduct(c.Request.Context(), c.Param("id"), limit, nextToken)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to list stock movements")
		return
	}

	responses := make([]dto.StockMovementResponse, len(movements))
	for i := range movements {
		responses[i] = dto.ToStockMovementResponse(&movements[i])
	}
	c.JSON(http.StatusOK, gin.H{"movements": responses, "nextToken": newToken})
}
