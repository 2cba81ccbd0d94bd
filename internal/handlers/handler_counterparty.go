package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/stoktakip/erp_backend/internal/core/ports/services"
	"github.com/stoktakip/erp_backend/internal/dto"
	"github.com/stoktakip/erp_backend/internal/middleware"
)

// counterpartyHandler handles HTTP requests related to counterparties and
// their ledger.
type counterpartyHandler struct {
	counterpartyService portssvc.CounterpartySvcFacade
}

// newCounterpartyHandler creates a new counterpartyHandler.
func newCounterpartyHandler(cs portssvc.CounterpartySvcFacade) *counterpartyHandler {
	return &counterpartyHandler{counterpartyService: cs}
}

// registerCounterpartyRoutes registers all counterparty and ledger routes.
func registerCounterpartyRoutes(rg *gin.RouterGroup, counterpartyService portssvc.CounterpartySvcFacade) {
	h := newCounterpartyHandler(counterpartyService)

	counterparties := rg.Group("/counterparties")
	{
		counterparties.POST("", h.createCounterparty)
		counterparties.GET("", h.listCounterparties)
		counterparties.GET("/:id", h.getCounterparty)
		counterparties.PUT("/:id", h.updateCounterparty)
		counterparties.DELETE("/:id", h.deleteCounterparty)

		counterparties.POST("/:id/receipts", h.recordReceipt)
		counterparties.GET("/:id/entries", h.listEntries)
		counterparties.GET("/:id/balance", h.getBalance)
		counterparties.GET("/:id/statement", h.getStatement)
	}

	entries := rg.Group("/ledger-entries")
	{
		entries.DELETE("/:id", h.deleteReceipt)
	}
}

// createCounterparty godoc
// @Summary Create a counterparty
// @Description Creates a new customer or supplier record
// @Tags counterparties
// @Accept json
// @Produce json
// @Param counterparty body dto.CreateCounterpartyRequest true "Counterparty details"
// @Success 201 {object} dto.CounterpartyResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /counterparties [post]
func (h *counterpartyHandler) createCounterparty(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateCounterpartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	counterparty, err := h.counterpartyService.CreateCounterparty(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to create counterparty")
		return
	}

	logger.Info("Counterparty created", slog.String("counterparty_id", counterparty.CounterpartyID))
	c.JSON(http.StatusCreated, dto.ToCounterpartyResponse(counterparty))
}

// getCounterparty godoc
// @Summary Get a counterparty
// @Description Retrieves a counterparty by ID
// @Tags counterparties
// @Produce json
// @Param id path string true "Counterparty ID"
// @Success 200 {object} dto.CounterpartyResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /counterparties/{id} [get]
func (h *counterpartyHandler) getCounterparty(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	counterparty, err := h.counterpartyService.GetCounterpartyByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to retrieve counterparty")
		return
	}

	c.JSON(http.StatusOK, dto.ToCounterpartyResponse(counterparty))
}

// listCounterparties godoc
// @Summary List counterparties
// @Description Retrieves a paginated list of counterparties, optionally filtered by kind and a search term
// @Tags counterparties
// @Produce json
// @Param limit query int false "Limit number of results" default(20)
// @Param nextToken query string false "Pagination token from a previous page"
// @Param search query string false "Matches name, title or tax number"
// @Param kind query string false "Kind filter (Bireysel or Kurumsal)"
// @Success 200 {object} dto.ListCounterpartiesResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /counterparties [get]
func (h *counterpartyHandler) listCounterparties(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListCounterpartiesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.counterpartyService.ListCounterparties(c.Request.Context(), params)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to list counterparties")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateCounterparty godoc
// @Summary Update a counterparty
// @Description Updates a counterparty's details
// @Tags counterparties
// @Accept json
// @Produce json
// @Param id path string true "Counterparty ID"
// @Param counterparty body dto.UpdateCounterpartyRequest true "Fields to update"
// @Success 200 {object} dto.CounterpartyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /counterparties/{id} [put]
func (h *counterpartyHandler) updateCounterparty(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.UpdateCounterpartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	requestingUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	counterparty, err := h.counterpartyService.UpdateCounterparty(c.Request.Context(), c.Param("id"), req, requestingUserID)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to update counterparty")
		return
	}

	c.JSON(http.StatusOK, dto.ToCounterpartyResponse(counterparty))
}

// deleteCounterparty godoc
// @Summary Delete a counterparty
// @Description Removes a counterparty together with its ledger history
// @Tags counterparties
// @Produce json
// @Param id path string true "Counterparty ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /counterparties/{id} [delete]
func (h *counterpartyHandler) deleteCounterparty(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requestingUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.counterpartyService.DeleteCounterparty(c.Request.Context(), c.Param("id"), requestingUserID); err != nil {
		respondWithServiceError(c, logger, err, "Failed to delete counterparty")
		return
	}

	c.Status(http.StatusNoContent)
}

// recordReceipt godoc
// @Summary Record a manual ledger entry
// @Description Records a collection, payment or refund against a counterparty
// @Tags counterparties
// @Accept json
// @Produce json
// @Param id path string true "Counterparty ID"
// @Param receipt body dto.ReceiptRequest true "Receipt details"
// @Success 201 {object} dto.LedgerEntryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /counterparties/{id}/receipts [post]
func (h *counterpartyHandler) recordReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	entry, err := h.counterpartyService.RecordReceipt(c.Request.Context(), c.Param("id"), req, creatorUserID)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to record receipt")
		return
	}

	logger.Info("Receipt recorded", slog.String("entry_id", entry.EntryID))
	c.JSON(http.StatusCreated, dto.ToLedgerEntryResponse(entry))
}

// deleteReceipt godoc
// @Summary Delete a manual ledger entry
// @Description Removes a manual entry. Entries produced by an invoice are rejected.
// @Tags counterparties
// @Produce json
// @Param id path string true "Ledger entry ID"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse "Entry belongs to an invoice"
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /ledger-entries/{id} [delete]
func (h *counterpartyHandler) deleteReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	requestingUserID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.counterpartyService.DeleteReceipt(c.Request.Context(), c.Param("id"), requestingUserID); err != nil {
		respondWithServiceError(c, logger, err, "Failed to delete receipt")
		return
	}

	c.Status(http.StatusNoContent)
}

// listEntries godoc
// @Summary List ledger entries of a counterparty
// @Description Retrieves a paginated list of ledger entries, newest first
// @Tags counterparties
// @Produce json
// @Param id path string true "Counterparty ID"
// @Param limit query int false "Limit number of results" default(20)
// @Param nextToken query string false "Pagination token from a previous page"
// @Success 200 {array} dto.LedgerEntryResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /counterparties/{id}/entries [get]
func (h *counterpartyHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	var nextToken *string
	if token := c.Query("nextToken"); token != "" {
		nextToken = &token
	}

	entries, newToken, err := h.counterpartyService.ListEntries(c.Request.Context(), c.Param("id"), limit, nextToken)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to list ledger entries")
		return
	}

	responses := make([]dto.LedgerEntryResponse, len(entries))
	for i := range entries {
		responses[i] = dto.ToLedgerEntryResponse(&entries[i])
	}
	c.JSON(http.StatusOK, gin.H{"entries": responses, "nextToken": newToken})
}

// getBalance godoc
// @Summary Get the balance of a counterparty
// @Description Returns the signed net open balance. Positive means the counterparty owes us.
// @Tags counterparties
// @Produce json
// @Param id path string true "Counterparty ID"
// @Success 200 {object} dto.BalanceResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /counterparties/{id}/balance [get]
func (h *counterpartyHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	counterpartyID := c.Param("id")

	balance, err := h.counterpartyService.GetBalance(c.Request.Context(), counterpartyID)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to compute balance")
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		CounterpartyID: counterpartyID,
		Balance:        balance,
		AsOf:           time.Now().UTC(),
	})
}

// getStatement godoc
// @Summary Get the statement of a counterparty
// @Description Returns the chronological statement with running balances
// @Tags counterparties
// @Produce json
// @Param id path string true "Counterparty ID"
// @Success 200 {object} dto.StatementResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /counterparties/{id}/statement [get]
func (h *counterpartyHandler) getStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	counterpartyID := c.Param("id")

	statement, err := h.counterpartyService.GetStatement(c.Request.Context(), counterpartyID)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to build statement")
		return
	}

	resp := dto.StatementResponse{CounterpartyID: counterpartyID}
	resp.Lines = make([]dto.StatementLineResponse, len(statement))
	for i := range statement {
		resp.Lines[i] = dto.ToStatementLineResponse(&statement[i])
	}
	if len(statement) > 0 {
		resp.ClosingBalance = statement[len(statement)-1].Balance
	}
	c.JSON(http.StatusOK, resp)
}
