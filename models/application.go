package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationStatus is the canonical status type. Handlers and services must
// compare against these constants, never against loose strings.
type ApplicationStatus string

const (
	StatusSubmitted          ApplicationStatus = "SUBMITTED"
	StatusInReview           ApplicationStatus = "IN_REVIEW"
	StatusDocsPending        ApplicationStatus = "DOCS_PENDING"
	StatusCorrectionsPending ApplicationStatus = "CORRECTIONS_PENDING"
	StatusCounterOffered     ApplicationStatus = "COUNTER_OFFERED"
	StatusApproved           ApplicationStatus = "APPROVED"
	StatusRejected           ApplicationStatus = "REJECTED"
	StatusCancelled          ApplicationStatus = "CANCELLED"
	StatusDisbursed          ApplicationStatus = "DISBURSED"
	StatusActive             ApplicationStatus = "ACTIVE"
	StatusCompleted          ApplicationStatus = "COMPLETED"
	StatusDefault            ApplicationStatus = "DEFAULT"
)

// AllStatuses lists every status the machine knows, in lifecycle order.
var AllStatuses = []ApplicationStatus{
	StatusSubmitted, StatusInReview, StatusDocsPending, StatusCorrectionsPending,
	StatusCounterOffered, StatusApproved, StatusRejected, StatusCancelled,
	StatusDisbursed, StatusActive, StatusCompleted, StatusDefault,
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusDefault
}

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Application is one loan request. Version is an optimistic lock counter: every
// mutating operation writes WHERE version = ? and bumps it, so two concurrent
// staff actions on the same application cannot interleave silently.
type Application struct {
	ApplicationID     int               `gorm:"primaryKey;column:application_id" json:"application_id"`
	TenantID          int               `gorm:"column:tenant_id" json:"tenant_id"`
	ApplicantID       int               `gorm:"column:applicant_id" json:"applicant_id"`
	ProductID         int               `gorm:"column:product_id" json:"product_id"`
	ApplicationNumber string            `gorm:"column:application_number;unique" json:"application_number"`
	Status            ApplicationStatus `gorm:"column:status" json:"status"`
	RequestedAmount   decimal.Decimal   `gorm:"column:requested_amount;type:decimal(14,2)" json:"requested_amount"`
	ApprovedAmount    *decimal.Decimal  `gorm:"column:approved_amount;type:decimal(14,2)" json:"approved_amount,omitempty"`
	TermMonths        int               `gorm:"column:term_months" json:"term_months"`
	AnnualRate        decimal.Decimal   `gorm:"column:annual_rate;type:decimal(7,4)" json:"annual_rate"`
	PaymentFrequency  string            `gorm:"column:payment_frequency" json:"payment_frequency"`

	// Counter-offer terms, set only by the counter-offer operation.
	OfferedAmount     *decimal.Decimal `gorm:"column:offered_amount;type:decimal(14,2)" json:"offered_amount,omitempty"`
	OfferedTermMonths *int             `gorm:"column:offered_term_months" json:"offered_term_months,omitempty"`
	OfferedRate       *decimal.Decimal `gorm:"column:offered_rate;type:decimal(7,4)" json:"offered_rate,omitempty"`
	OfferedFrequency  *string          `gorm:"column:offered_frequency" json:"offered_frequency,omitempty"`

	AssignedTo            *int       `gorm:"column:assigned_to" json:"assigned_to,omitempty"`
	AssignedAt            *time.Time `gorm:"column:assigned_at" json:"assigned_at,omitempty"`
	DisbursementReference *string    `gorm:"column:disbursement_reference" json:"disbursement_reference,omitempty"`
	RejectionReason       *string    `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	Version               int        `gorm:"column:version" json:"version"`
	CreateAt              *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt              *time.Time `gorm:"column:update_at" json:"update_at"`

	// Relations
	Tenant    Tenant      `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Applicant Applicant   `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
	Product   LoanProduct `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Assignee  *User       `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
}

// TableName overrides
func (Application) TableName() string {
	return "applications"
}
