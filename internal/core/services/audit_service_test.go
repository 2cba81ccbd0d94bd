package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stoktakip/erp_backend/internal/core/domain"
	"github.com/stoktakip/erp_backend/internal/core/services"
	"github.com/stoktakip/erp_backend/internal/dto"
)

func TestRecordAction_PersistsRow(t *testing.T) {
	repo := new(MockAuditRepository)
	svc := services.NewAuditService(repo)
	entityID := "inv-1"

	repo.On("SaveAuditLog", mock.Anything, mock.MatchedBy(func(l domain.AuditLog) bool {
		return l.UserID == "user-1" &&
			l.Action == domain.ActionCreate &&
			l.Entity == "invoice" &&
			l.EntityID != nil && *l.EntityID == "inv-1" &&
			l.LogID != ""
	})).Return(nil).Once()

	svc.RecordAction(context.Background(), "user-1", domain.ActionCreate, "invoice", &entityID, "Fatura oluşturuldu")

	repo.AssertExpectations(t)
}

func TestRecordAction_SwallowsRepositoryError(t *testing.T) {
	repo := new(MockAuditRepository)
	svc := services.NewAuditService(repo)

	repo.On("SaveAuditLog", mock.Anything, mock.Anything).Return(errors.New("connection lost")).Once()

	// Must not panic or surface the error.
	svc.RecordAction(context.Background(), "user-1", domain.ActionDelete, "product", nil, "Ürün silindi")

	repo.AssertExpectations(t)
}

func TestListLogs_AppliesDefaultLimit(t *testing.T) {
	repo := new(MockAuditRepository)
	svc := services.NewAuditService(repo)

	logs := []domain.AuditLog{{LogID: "log-1", UserID: "user-1", Action: domain.ActionUpdate, Entity: "invoice"}}
	repo.On("ListAuditLogs", mock.Anything, 20, (*string)(nil), "invoice", "").Return(logs, nil, nil).Once()

	resp, err := svc.ListLogs(context.Background(), dto.ListAuditLogsParams{Entity: "invoice"})

	require.NoError(t, err)
	require.Len(t, resp.Logs, 1)
	require.Equal(t, "log-1", resp.Logs[0].LogID)
	repo.AssertExpectations(t)
}
