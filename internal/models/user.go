package models

import "time"

// User is the users table row.
type User struct {
	UserID       string `json:"userID"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	IsActive     bool   `json:"isActive"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// AuditLog is the audit_logs table row.
type AuditLog struct {
	LogID       string    `json:"logID"`
	UserID      string    `json:"userID"`
	Action      string    `json:"action"`
	Entity      string    `json:"entity"`
	EntityID    *string   `json:"entityID"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
