package domain

import "time"

// AuditAction is the verb recorded on an audit log row.
type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionUpdate AuditAction = "update"
	ActionDelete AuditAction = "delete"
)

// AuditLog is one row of the operation trail. Rows are written best-effort
// after the change they describe commits; a failed write never fails the
// underlying operation.
type AuditLog struct {
	LogID       string      `json:"logID"`
	UserID      string      `json:"userID"`
	Action      AuditAction `json:"action"`
	Entity      string      `json:"entity"`   // e.g. "invoice", "invoice_line"
	EntityID    *string     `json:"entityID"` // nil after deletes
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"createdAt"`
}
