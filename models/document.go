package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Document types required during origination.
const (
	DocINEFront       = "ine_front"
	DocINEBack        = "ine_back"
	DocSelfie         = "selfie"
	DocProofOfAddress = "proof_of_address"
	DocProofOfIncome  = "proof_of_income"
	DocBankStatement  = "bank_statement"
)

// DocumentTypeLabels maps document types to display labels.
var DocumentTypeLabels = map[string]string{
	DocINEFront:       "INE (front)",
	DocINEBack:        "INE (back)",
	DocSelfie:         "Selfie",
	DocProofOfAddress: "Proof of address",
	DocProofOfIncome:  "Proof of income",
	DocBankStatement:  "Bank statement",
}

// ValidDocumentType reports whether t is a known document type.
func ValidDocumentType(t string) bool {
	_, ok := DocumentTypeLabels[t]
	return ok
}

// Document review statuses.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "PENDING"
	DocumentApproved DocumentStatus = "APPROVED"
	DocumentRejected DocumentStatus = "REJECTED"
)

// Document is an uploaded file tied to an application. KYCLocked plus the
// typed provenance columns are computed once at write time from the uploader's
// KYC callback metadata; the raw Metadata JSON is retained because documents
// ingested before provenance existed carry legacy indicator keys instead.
type Document struct {
	DocumentID      int              `gorm:"primaryKey;column:document_id" json:"document_id"`
	TenantID        int              `gorm:"column:tenant_id" json:"tenant_id"`
	ApplicationID   int              `gorm:"column:application_id;index" json:"application_id"`
	DocumentType    string           `gorm:"column:document_type" json:"document_type"`
	Status          DocumentStatus   `gorm:"column:status" json:"status"`
	OriginalName    string           `gorm:"column:original_name" json:"original_name"`
	StoredPath      string           `gorm:"column:stored_path" json:"stored_path"`
	FileSize        int64            `gorm:"column:file_size" json:"file_size"`
	MimeType        string           `gorm:"column:mime_type" json:"mime_type"`
	Metadata        string           `gorm:"column:metadata;type:text" json:"metadata"`
	KYCLocked       bool             `gorm:"column:kyc_locked" json:"kyc_locked"`
	KYCSource       *string          `gorm:"column:kyc_source" json:"kyc_source,omitempty"`
	KYCMethod       *string          `gorm:"column:kyc_method" json:"kyc_method,omitempty"`
	KYCConfidence   *decimal.Decimal `gorm:"column:kyc_confidence;type:decimal(5,4)" json:"kyc_confidence,omitempty"`
	RejectionReason *string          `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	ReviewComment   *string          `gorm:"column:review_comment" json:"review_comment,omitempty"`
	ReviewedBy      *int             `gorm:"column:reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time       `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	UploadedBy      *int             `gorm:"column:uploaded_by" json:"uploaded_by,omitempty"`
	CreateAt        *time.Time       `gorm:"column:create_at" json:"create_at"`
	UpdateAt        *time.Time       `gorm:"column:update_at" json:"update_at"`

	// Relations
	Application Application `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
	Reviewer    *User       `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
}

// MetadataMap decodes the free-form metadata JSON; malformed or empty
// metadata decodes to an empty map.
func (d *Document) MetadataMap() map[string]interface{} {
	out := map[string]interface{}{}
	if d.Metadata == "" {
		return out
	}
	if err := json.Unmarshal([]byte(d.Metadata), &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}

// TypeLabel returns the display label for the document's type.
func (d *Document) TypeLabel() string {
	if label, ok := DocumentTypeLabels[d.DocumentType]; ok {
		return label
	}
	return d.DocumentType
}

// TableName overrides
func (Document) TableName() string {
	return "documents"
}
