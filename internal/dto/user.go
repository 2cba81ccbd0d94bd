package dto

import (
	"time"

	"github.com/stoktakip/erp_backend/internal/core/domain"
)

// CreateUserRequest carries the fields of a new user account.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// UpdateUserRequest carries user updates. Nil fields stay unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password" binding:"omitempty,min=8"`
	IsActive *bool   `json:"isActive"`
}

// UserResponse is the API shape of a user. The password hash never leaves
// the service layer.
type UserResponse struct {
	UserID    string    `json:"userID"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuditLogResponse is the API shape of one audit log row.
type AuditLogResponse struct {
	LogID       string    `json:"logID"`
	UserID      string    `json:"userID"`
	Action      string    `json:"action"`
	Entity      string    `json:"entity"`
	EntityID    *string   `json:"entityID,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ListAuditLogsParams holds filters for the audit log list endpoint.
type ListAuditLogsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
	Entity    string  `form:"entity"`
	UserID    string  `form:"userID"`
}

// ListAuditLogsResponse is a page of audit log rows plus the next cursor.
type ListAuditLogsResponse struct {
	Logs      []AuditLogResponse `json:"logs"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// ToUserResponse converts a domain user to its API shape.
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Username:  u.Username,
		Name:      u.Name,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// ToAuditLogResponse converts a domain audit log row to its API shape.
func ToAuditLogResponse(l *domain.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		LogID:       l.LogID,
		UserID:      l.UserID,
		Action:      string(l.Action),
		Entity:      l.Entity,
		EntityID:    l.EntityID,
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
	}
}
