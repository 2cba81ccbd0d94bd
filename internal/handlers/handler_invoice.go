package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/stoktakip/erp_backend/internal/core/ports/services"
	"github.com/stoktakip/erp_backend/internal/dto"
	"github.com/stoktakip/erp_backend/internal/middleware"
)

// invoiceHandler handles HTTP requests related to invoices and their lines.
type invoiceHandler struct {
	invoiceService portssvc.InvoiceSvcFacade
}

// newInvoiceHandler creates a new invoiceHandler.
func newInvoiceHandler(is portssvc.InvoiceSvcFacade) *invoiceHandler {
	return &invoiceHandler{invoiceService: is}
}

// registerInvoiceRoutes registers all invoice-related routes.
func registerInvoiceRoutes(rg *gin.RouterGroup, invoiceService portssvc.InvoiceSvcFacade) {
	h := newInvoiceHandler(invoiceService)

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.createInvoice)
		invoices.POST("/with-lines", h.createInvoiceWithLines)
		invoices.GET("", h.listInvoices)
		invoices.GET("/:id", h.getInvoice)
		invoices.PUT("/:id", h.updateInvoice)
		invoices.DELETE("/:id", h.deleteInvoice)
		invoices.POST("/:id/copy", h.copyInvoice)
		invoices.POST("/:id/settle", h.settleInvoice)
		invoices.POST("/:id/reopen", h.reopenInvoice)

		invoices.POST("/:id/lines", h.addLineItem)
		invoices.PUT("/:id/lines/:lineID", h.updateLineItem)
		invoices.DELETE("/:id/lines/:lineID", h.removeLineItem)
	}
}

// requireUserID pulls the authenticated user from the request context.
func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return "", false
	}
	return userID, true
}

// createInvoice godoc
// @Summary Create an invoice header
// @Description Creates an empty invoice header and assigns its number. Lines are added separately.
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoice body dto.CreateInvoiceRequest true "Invoice header"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices [post]
func (h *invoiceHandler) createInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to create invoice")
		return
	}

	logger.Info("Invoice created", slog.String("invoice_id", invoice.InvoiceID), slog.String("invoice_no", invoice.InvoiceNo))
	c.JSON(http.StatusCreated, dto.ToInvoiceResponse(invoice))
}

// createInvoiceWithLines godoc
// @Summary Create an invoice with lines
// @Description Creates a header and all its lines atomically, running the full stock and ledger reconciliation once.
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoice body dto.CreateInvoiceWithLinesRequest true "Invoice with lines"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/with-lines [post]
func (h *invoiceHandler) createInvoiceWithLines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateInvoiceWithLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.CreateInvoiceWithLines(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to create invoice")
		return
	}

	logger.Info("Invoice created with lines",
		slog.String("invoice_id", invoice.InvoiceID),
		slog.String("invoice_no", invoice.InvoiceNo),
		slog.Int("line_count", len(invoice.Lines)))
	c.JSON(http.StatusCreated, dto.ToInvoiceResponse(invoice))
}

// getInvoice godoc
// @Summary Get an invoice
// @Description Retrieves an invoice header with its lines
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	invoice, err := h.invoiceService.GetInvoiceByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to retrieve invoice")
		return
	}

	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// listInvoices godoc
// @Summary List invoices
// @Description Retrieves a paginated list of invoices, optionally filtered by type, status and a search term
// @Tags invoices
// @Produce json
// @Param limit query int false "Limit number of results" default(20)
// @Param nextToken query string false "Pagination token from a previous page"
// @Param search query string false "Matches invoice number or counterparty name"
// @Param type query string false "Invoice type filter (Satis or Alis)"
// @Param status query string false "Invoice status filter"
// @Success 200 {object} dto.ListInvoicesResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices [get]
func (h *invoiceHandler) listInvoices(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListInvoicesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.invoiceService.ListInvoices(c.Request.Context(), params)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to list invoices")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateInvoice godoc
// @Summary Update an invoice header
// @Description Updates header fields and re-runs the reconciliation cascade. The request must carry the version the caller last read.
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param invoice body dto.UpdateInvoiceRequest true "Fields to update"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Version conflict"
// @Security BearerAuth
// @Router /invoices/{id} [put]
func (h *invoiceHandler) updateInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), c.Param("id"), req, requestingUserID)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to update invoice")
		return
	}

	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// deleteInvoice godoc
// @Summary Delete an invoice
// @Description Deletes an invoice that has no lines, together with its stock and ledger rows
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse "Invoice still has lines"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id} [delete]
func (h *invoiceHandler) deleteInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requestingUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), c.Param("id"), requestingUserID); err != nil {
		respondWithServiceError(c, logger, err, "Failed to delete invoice")
		return
	}

	c.Status(http.StatusNoContent)
}

// copyInvoice godoc
// @Summary Copy an invoice
// @Description Duplicates an invoice and its lines under a fresh number dated today
// @Tags invoices
// @Produce json
// @Param id path string true "Source invoice ID"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id}/copy [post]
func (h *invoiceHandler) copyInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	creatorUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.CopyInvoice(c.Request.Context(), c.Param("id"), creatorUserID)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to copy invoice")
		return
	}

	logger.Info("Invoice copied", slog.String("new_invoice_id", invoice.InvoiceID), slog.String("new_invoice_no", invoice.InvoiceNo))
	c.JSON(http.StatusCreated, dto.ToInvoiceResponse(invoice))
}

// settleInvoice godoc
// @Summary Settle an invoice from cash
// @Description Switches the invoice to cash settlement and removes its open-account ledger entry
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id}/settle [post]
func (h *invoiceHandler) settleInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requestingUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.SettleInvoice(c.Request.Context(), c.Param("id"), requestingUserID)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to settle invoice")
		return
	}

	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// reopenInvoice godoc
// @Summary Reopen an invoice to open account
// @Description Switches the invoice back to open account and recreates its ledger entry
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id}/reopen [post]
func (h *invoiceHandler) reopenInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requestingUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.ReopenInvoice(c.Request.Context(), c.Param("id"), requestingUserID)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to reopen invoice")
		return
	}

	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// addLineItem godoc
// @Summary Add a line to an invoice
// @Description Appends a line and re-runs the reconciliation cascade
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param line body dto.LineItemRequest true "Line item"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id}/lines [post]
func (h *invoiceHandler) addLineItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.AddLineItem(c.Request.Context(), c.Param("id"), req, requestingUserID)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to add line item")
		return
	}

	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// updateLineItem godoc
// @Summary Update an invoice line
// @Description Replaces the editable fields of a line and re-runs the reconciliation cascade
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param lineID path string true "Line ID"
// @Param line body dto.LineItemRequest true "Line item"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id}/lines/{lineID} [put]
func (h *invoiceHandler) updateLineItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.UpdateLineItem(c.Request.Context(), c.Param("id"), c.Param("lineID"), req, requestingUserID)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to update line item")
		return
	}

	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}

// removeLineItem godoc
// @Summary Remove an invoice line
// @Description Deletes a line and re-runs the reconciliation cascade
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Param lineID path string true "Line ID"
// @Success 200 {object} dto.InvoiceResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id}/lines/{lineID} [delete]
func (h *invoiceHandler) removeLineItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requestingUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.RemoveLineItem(c.Request.Context(), c.Param("id"), c.Param("lineID"), requestingUserID)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to remove line item")
		return
	}

	c.JSON(http.StatusOK, dto.ToInvoiceResponse(invoice))
}
