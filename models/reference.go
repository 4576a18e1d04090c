package models

import "time"

// Outcomes of a reference call.
const (
	ReferenceRecommends       = "RECOMMENDS"
	ReferenceDoesNotRecommend = "DOES_NOT_RECOMMEND"
	ReferenceNoAnswer         = "NO_ANSWER"
	ReferenceInvalidNumber    = "INVALID_NUMBER"
)

// ValidReferenceResult reports whether r is a supported call outcome.
func ValidReferenceResult(r string) bool {
	switch r {
	case ReferenceRecommends, ReferenceDoesNotRecommend, ReferenceNoAnswer, ReferenceInvalidNumber:
		return true
	}
	return false
}

// Reference is an applicant-supplied personal reference. Created during
// onboarding; mutated only by the verify operation.
type Reference struct {
	ReferenceID int        `gorm:"primaryKey;column:reference_id" json:"reference_id"`
	TenantID    int        `gorm:"column:tenant_id" json:"tenant_id"`
	ApplicantID int        `gorm:"column:applicant_id;index" json:"applicant_id"`
	Name        string     `gorm:"column:name" json:"name"`
	Relation    string     `gorm:"column:relation" json:"relation"`
	Phone       string     `gorm:"column:phone" json:"phone"`
	Result      *string    `gorm:"column:result" json:"result,omitempty"`
	Notes       *string    `gorm:"column:notes" json:"notes,omitempty"`
	VerifiedBy  *int       `gorm:"column:verified_by" json:"verified_by,omitempty"`
	VerifiedAt  *time.Time `gorm:"column:verified_at" json:"verified_at,omitempty"`
	CreateAt    *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at"`

	// Relations
	Applicant Applicant `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
}

// TableName overrides
func (Reference) TableName() string {
	return "references"
}
