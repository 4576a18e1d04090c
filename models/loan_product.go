package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment frequencies offered across products and counter-offers.
const (
	FrequencyWeekly   = "WEEKLY"
	FrequencyBiweekly = "BIWEEKLY"
	FrequencyMonthly  = "MONTHLY"
)

// ValidFrequency reports whether f is one of the supported payment frequencies.
func ValidFrequency(f string) bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

type LoanProduct struct {
	ProductID        int             `gorm:"primaryKey;column:product_id" json:"product_id"`
	TenantID         int             `gorm:"column:tenant_id" json:"tenant_id"`
	ProductName      string          `gorm:"column:product_name" json:"product_name"`
	MinAmount        decimal.Decimal `gorm:"column:min_amount;type:decimal(14,2)" json:"min_amount"`
	MaxAmount        decimal.Decimal `gorm:"column:max_amount;type:decimal(14,2)" json:"max_amount"`
	MinTermMonths    int             `gorm:"column:min_term_months" json:"min_term_months"`
	MaxTermMonths    int             `gorm:"column:max_term_months" json:"max_term_months"`
	AnnualRate       decimal.Decimal `gorm:"column:annual_rate;type:decimal(7,4)" json:"annual_rate"`
	PaymentFrequency string          `gorm:"column:payment_frequency" json:"payment_frequency"`
	IsActive         bool            `gorm:"column:is_active" json:"is_active"`
	CreateAt         *time.Time      `gorm:"column:create_at" json:"create_at"`
	UpdateAt         *time.Time      `gorm:"column:update_at" json:"update_at"`
	DeleteAt         *time.Time      `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (LoanProduct) TableName() string {
	return "loan_products"
}
