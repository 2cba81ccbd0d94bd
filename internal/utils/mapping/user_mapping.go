package mapping

import (
	"github.com/stoktakip/erp_backend/internal/core/domain"
	"github.com/stoktakip/erp_backend/internal/models"
)

// ToModelUser converts a domain User to a model User.
func ToModelUser(d domain.User) models.User {
	return models.User{
		UserID:       d.UserID,
		Username:     d.Username,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		IsActive:     d.IsActive,
		AuditFields:  ToModelAuditFields(d.AuditFields),
		DeletedAt:    d.DeletedAt,
	}
}

// ToDomainUser converts a model User to a domain User.
func ToDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:       m.UserID,
		Username:     m.Username,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		IsActive:     m.IsActive,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
		DeletedAt:    m.DeletedAt,
	}
}

// ToModelAuditLog converts a domain AuditLog to a model AuditLog.
func ToModelAuditLog(d domain.AuditLog) models.AuditLog {
	return models.AuditLog{
		LogID:       d.LogID,
		UserID:      d.UserID,
		Action:      string(d.Action),
		Entity:      d.Entity,
		EntityID:    d.EntityID,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
}

// ToDomainAuditLog converts a model AuditLog to a domain AuditLog.
func ToDomainAuditLog(m models.AuditLog) domain.AuditLog {
	return domain.AuditLog{
		LogID:       m.LogID,
		UserID:      m.UserID,
		Action:      domain.AuditAction(m.Action),
		Entity:      m.Entity,
		EntityID:    m.EntityID,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}
