package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/stoktakip/erp_backend/internal/core/ports/services"
	"github.com/stoktakip/erp_backend/internal/dto"
	"github.com/stoktakip/erp_backend/internal/middleware"
)

// auditHandler exposes the change history.
type auditHandler struct {
	auditService portssvc.AuditSvcFacade
}

func newAuditHandler(as portssvc.AuditSvcFacade) *auditHandler {
	return &auditHandler{auditService: as}
}

// registerAuditRoutes registers the audit log routes.
func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvcFacade) {
	h := newAuditHandler(auditService)

	rg.GET("/audit-logs", h.listAuditLogs)
}

// listAuditLogs godoc
// @Summary List audit logs
// @Description Retrieves a paginated list of audit log rows, newest first, optionally filtered by entity and user
// @Tags audit
// @Produce json
// @Param limit query int false "Limit number of results" default(20)
// @Param nextToken query string false "Pagination token from a previous page"
// @Param entity query string false "Entity filter (invoice, product, counterparty, user)"
// @Param userID query string false "Acting user filter"
// @Success 200 {object} dto.ListAuditLogsResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /audit-logs [get]
func (h *auditHandler) listAuditLogs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAuditLogsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.auditService.ListLogs(c.Request.Context(), params)
	if err != nil {
		respondWithServiceError(c, logger, err, "Failed to list audit logs")
		return
	}

	c.JSON(http.StatusOK, resp)
}
