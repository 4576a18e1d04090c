package models

import "time"

// Staff roles. Permission capabilities per role live in services/permission_service.go.
const (
	RoleAgent   = "agent"
	RoleAnalyst = "analyst"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

type User struct {
	UserID    int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	TenantID  int        `gorm:"column:tenant_id" json:"tenant_id"`
	UserFname string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname string     `gorm:"column:user_lname" json:"user_lname"`
	Email     string     `gorm:"column:email;unique" json:"email"`
	Password  string     `gorm:"column:password" json:"-"`
	Role      string     `gorm:"column:role" json:"role"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Tenant Tenant `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}

// DisplayName returns the name shown in timelines and audit trails.
func (u *User) DisplayName() string {
	if u.UserFname == "" && u.UserLname == "" {
		return u.Email
	}
	if u.UserLname == "" {
		return u.UserFname
	}
	return u.UserFname + " " + u.UserLname
}

// TableName overrides
func (User) TableName() string {
	return "users"
}
