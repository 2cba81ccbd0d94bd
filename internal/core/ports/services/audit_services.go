package services

import (
	"context"

	"github.com/stoktakip/erp_backend/internal/core/domain"
	"github.com/stoktakip/erp_backend/internal/dto"
)

// AuditSvcFacade records and lists user-visible change history.
type AuditSvcFacade interface {
	// RecordAction persists an audit log row. Failures are logged and
	// swallowed so auditing never fails the underlying operation.
	RecordAction(ctx context.Context, userID string, action domain.AuditAction, entity string, entityID *string, description string)

	// ListLogs retrieves a paginated list of audit log rows.
	ListLogs(ctx context.Context, params dto.ListAuditLogsParams) (*dto.ListAuditLogsResponse, error)
}
