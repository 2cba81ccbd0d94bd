package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/stoktakip/erp_backend/internal/core/domain"
)

// AuditLogWriter defines write operations for audit log rows
type AuditLogWriter interface {
	// SaveAuditLog persists a new audit log row.
	SaveAuditLog(ctx context.Context, log domain.AuditLog) error

	// SaveAuditLogInTx persists a new audit log row within a transaction.
	SaveAuditLogInTx(ctx context.Context, tx pgx.Tx, log domain.AuditLog) error
}

// AuditLogReader defines read operations for audit log rows
type AuditLogReader interface {
	// ListAuditLogs retrieves a paginated list of audit log rows, newest first.
	ListAuditLogs(ctx context.Context, limit int, nextToken *string, entity string, userID string) ([]domain.AuditLog, *string, error)
}

// AuditRepositoryFacade combines all audit-log repository interfaces
type AuditRepositoryFacade interface {
	AuditLogReader
	AuditLogWriter
}
