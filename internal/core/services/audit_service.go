package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stoktakip/erp_backend/internal/core/domain"
	portsrepo "github.com/stoktakip/erp_backend/internal/core/ports/repositories"
	portssvc "github.com/stoktakip/erp_backend/internal/core/ports/services"
	"github.com/stoktakip/erp_backend/internal/dto"
	"github.com/stoktakip/erp_backend/internal/middleware"
)

// auditService records the user-visible change trail.
type auditService struct {
	auditRepo portsrepo.AuditRepositoryFacade
}

// NewAuditService creates a new AuditService.
func NewAuditService(auditRepo portsrepo.AuditRepositoryFacade) portssvc.AuditSvcFacade {
	return &auditService{auditRepo: auditRepo}
}

// Ensure auditService implements the portssvc.AuditSvcFacade interface
var _ portssvc.AuditSvcFacade = (*auditService)(nil)

// RecordAction writes an audit row. Failures are logged and swallowed so
// auditing never fails the operation it describes.
func (s *auditService) RecordAction(ctx context.Context, userID string, action domain.AuditAction, entity string, entityID *string, description string) {
	log := domain.AuditLog{
		LogID:       uuid.NewString(),
		UserID:      userID,
		Action:      action,
		Entity:      entity,
		EntityID:    entityID,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.auditRepo.SaveAuditLog(ctx, log); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to write audit log",
			slog.String("entity", entity),
			slog.String("action", string(action)),
			slog.String("error", err.Error()),
		)
	}
}

func (s *auditService) ListLogs(ctx context.Context, params dto.ListAuditLogsParams) (*dto.ListAuditLogsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	logs, nextToken, err := s.auditRepo.ListAuditLogs(ctx, limit, params.NextToken, params.Entity, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve audit logs: %w", err)
	}

	responses := make([]dto.AuditLogResponse, len(logs))
	for i := range logs {
		responses[i] = dto.ToAuditLogResponse(&logs[i])
	}
	return &dto.ListAuditLogsResponse{Logs: responses, NextToken: nextToken}, nil
}
