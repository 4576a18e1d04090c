package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Applicant is the individual requesting credit. Identity fields (CURP, RFC,
// INE key, ...) are the subjects of the verification ledger; phone_verified_at
// and email_verified_at are derived mirrors of the ledger, kept for cheap
// filtering, never the source of truth.
type Applicant struct {
	ApplicantID     int              `gorm:"primaryKey;column:applicant_id" json:"applicant_id"`
	TenantID        int              `gorm:"column:tenant_id" json:"tenant_id"`
	FirstName       string           `gorm:"column:first_name" json:"first_name"`
	PaternalSurname string           `gorm:"column:paternal_surname" json:"paternal_surname"`
	MaternalSurname string           `gorm:"column:maternal_surname" json:"maternal_surname"`
	CURP            string           `gorm:"column:curp" json:"curp"`
	RFC             string           `gorm:"column:rfc" json:"rfc"`
	INEKey          string           `gorm:"column:ine_key" json:"ine_key"`
	BirthDate       *time.Time       `gorm:"column:birth_date" json:"birth_date,omitempty"`
	Phone           string           `gorm:"column:phone" json:"phone"`
	Email           string           `gorm:"column:email" json:"email"`
	Address         string           `gorm:"column:address" json:"address"`
	Employer        string           `gorm:"column:employer" json:"employer"`
	MonthlyIncome   *decimal.Decimal `gorm:"column:monthly_income;type:decimal(14,2)" json:"monthly_income,omitempty"`
	PhoneVerifiedAt *time.Time       `gorm:"column:phone_verified_at" json:"phone_verified_at,omitempty"`
	EmailVerifiedAt *time.Time       `gorm:"column:email_verified_at" json:"email_verified_at,omitempty"`
	CreateAt        *time.Time       `gorm:"column:create_at" json:"create_at"`
	UpdateAt        *time.Time       `gorm:"column:update_at" json:"update_at"`

	// Relations
	Tenant Tenant `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}

// FullName joins the Mexican-style name parts, skipping empty ones.
func (a *Applicant) FullName() string {
	name := a.FirstName
	if a.PaternalSurname != "" {
		name += " " + a.PaternalSurname
	}
	if a.MaternalSurname != "" {
		name += " " + a.MaternalSurname
	}
	return name
}

// TableName overrides
func (Applicant) TableName() string {
	return "applicants"
}
