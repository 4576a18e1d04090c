package models

import "time"

// AuditLog is the tenant-scoped, append-only record of every mutating action,
// kept independently of the per-application event log. One row per use case.
type AuditLog struct {
	AuditID    int       `gorm:"primaryKey;column:audit_id" json:"audit_id"`
	TenantID   int       `gorm:"column:tenant_id;index" json:"tenant_id"`
	ActorID    *int      `gorm:"column:actor_id" json:"actor_id,omitempty"`
	Action     string    `gorm:"column:action" json:"action"`
	EntityType string    `gorm:"column:entity_type" json:"entity_type"`
	EntityID   int       `gorm:"column:entity_id" json:"entity_id"`
	Detail     string    `gorm:"column:detail;type:text" json:"detail"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides
func (AuditLog) TableName() string {
	return "audit_logs"
}
