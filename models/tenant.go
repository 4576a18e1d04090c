package models

import "time"

// Tenant represents one lender operating on the platform. Every scoped row
// carries its tenant_id and every query must filter by it.
type Tenant struct {
	TenantID int        `gorm:"primaryKey;column:tenant_id" json:"tenant_id"`
	Name     string     `gorm:"column:name" json:"name"`
	Code     string     `gorm:"column:code;unique" json:"code"`
	IsActive bool       `gorm:"column:is_active" json:"is_active"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (Tenant) TableName() string {
	return "tenants"
}
