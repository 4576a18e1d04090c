package models

import "time"

// Verification statuses. The current status of a field is defined as the most
// recent record for that (applicant, field) pair, never a mutable column.
type VerificationStatus string

const (
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationRejected VerificationStatus = "REJECTED"
	VerificationPending  VerificationStatus = "PENDING"
)

// Verification methods.
const (
	MethodManual   = "MANUAL"
	MethodOTP      = "OTP"
	MethodAPI      = "API"
	MethodDocument = "DOCUMENT"
	MethodBureau   = "BUREAU"
)

// ValidVerificationMethod reports whether m is a supported method.
func ValidVerificationMethod(m string) bool {
	switch m {
	case MethodManual, MethodOTP, MethodAPI, MethodDocument, MethodBureau:
		return true
	}
	return false
}

// VerificationRecord is one attempt to verify a single applicant field. Rows
// are insert-only: verify, reject and unverify each create a new record with a
// snapshot of the field's value at that moment. Locked records come from
// automated KYC checks and forbid manual reversal of the matching document.
type VerificationRecord struct {
	RecordID        int                `gorm:"primaryKey;column:record_id" json:"record_id"`
	TenantID        int                `gorm:"column:tenant_id" json:"tenant_id"`
	ApplicantID     int                `gorm:"column:applicant_id;index:idx_verification_applicant_field" json:"applicant_id"`
	Field           string             `gorm:"column:field;index:idx_verification_applicant_field" json:"field"`
	ValueSnapshot   string             `gorm:"column:value_snapshot" json:"value_snapshot"`
	Status          VerificationStatus `gorm:"column:status" json:"status"`
	Method          string             `gorm:"column:method" json:"method"`
	Notes           *string            `gorm:"column:notes" json:"notes,omitempty"`
	RejectionReason *string            `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	ActorID         *int               `gorm:"column:actor_id" json:"actor_id,omitempty"`
	Locked          bool               `gorm:"column:locked" json:"locked"`
	CreatedAt       time.Time          `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides
func (VerificationRecord) TableName() string {
	return "verification_records"
}
