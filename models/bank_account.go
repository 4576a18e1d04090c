package models

import "time"

// BankAccount is an applicant-supplied disbursement account. CLABE is the
// 18-digit Mexican standardized bank account number.
type BankAccount struct {
	AccountID          int        `gorm:"primaryKey;column:account_id" json:"account_id"`
	TenantID           int        `gorm:"column:tenant_id" json:"tenant_id"`
	ApplicantID        int        `gorm:"column:applicant_id;index" json:"applicant_id"`
	BankName           string     `gorm:"column:bank_name" json:"bank_name"`
	CLABE              string     `gorm:"column:clabe" json:"clabe"`
	HolderName         string     `gorm:"column:holder_name" json:"holder_name"`
	Verified           bool       `gorm:"column:verified" json:"verified"`
	VerificationMethod *string    `gorm:"column:verification_method" json:"verification_method,omitempty"`
	VerifiedBy         *int       `gorm:"column:verified_by" json:"verified_by,omitempty"`
	VerifiedAt         *time.Time `gorm:"column:verified_at" json:"verified_at,omitempty"`
	UnverifiedAt       *time.Time `gorm:"column:unverified_at" json:"unverified_at,omitempty"`
	CreateAt           *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt           *time.Time `gorm:"column:update_at" json:"update_at"`

	// Relations
	Applicant Applicant `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
}

// TableName overrides
func (BankAccount) TableName() string {
	return "bank_accounts"
}
