package services

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"loan-origination-api/models"
)

// Legacy boolean indicator keys left in document metadata by earlier KYC
// integrations. Any of them being truthy locks the document.
var legacyLockKeys = []string{
	"kyc_validated",
	"nubarium_validated",
	"ine_valid",
	"face_match_passed",
	"face_match",
	"validated_by_kyc",
}

var kycSources = map[string]bool{"kyc": true, "nubarium": true}

var kycValidationMethods = map[string]bool{
	"KYC_INE_OCR":    true,
	"KYC_FACE_MATCH": true,
}

// identityDocumentFields maps identity-class document types to the ledger
// field their automated check verifies: a locked verified record for that
// field also locks the document.
var identityDocumentFields = map[string]string{
	models.DocSelfie:   "curp",
	models.DocINEFront: "ine_key",
	models.DocINEBack:  "ine_key",
}

// ApproveDocument marks a pending document as approved.
func ApproveDocument(tx *gorm.DB, doc *models.Document, actor *models.User) error {
	if doc.Status != models.DocumentPending {
		return ErrInvalidState("only pending documents can be approved, document is %s", doc.Status)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      models.DocumentApproved,
		"reviewed_by": actor.UserID,
		"reviewed_at": now,
		"update_at":   now,
	}
	// The WHERE pins the status this reviewer decided on; zero rows means
	// another reviewer got there first.
	res := tx.Model(&models.Document{}).
		Where("document_id = ? AND status = ?", doc.DocumentID, models.DocumentPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentModification("document %d was reviewed concurrently", doc.DocumentID)
	}
	doc.Status = models.DocumentApproved
	doc.ReviewedBy = &actor.UserID
	doc.ReviewedAt = &now

	return appendEvent(tx, doc.ApplicationID, models.EventDocApproved, actor, map[string]interface{}{
		"document_type": doc.DocumentType,
		"label":         doc.TypeLabel(),
	})
}

// RejectDocument marks a pending document as rejected. When the owning
// application is IN_REVIEW it is routed back to DOCS_PENDING so the applicant
// is asked for a replacement.
func RejectDocument(tx *gorm.DB, doc *models.Document, app *models.Application, reason, comment string, actor *models.User) error {
	if doc.Status != models.DocumentPending {
		return ErrInvalidState("only pending documents can be rejected, document is %s", doc.Status)
	}
	if reason == "" {
		return ErrValidation("a rejection reason is required")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":           models.DocumentRejected,
		"rejection_reason": reason,
		"reviewed_by":      actor.UserID,
		"reviewed_at":      now,
		"update_at":        now,
	}
	if comment != "" {
		updates["review_comment"] = comment
	}
	res := tx.Model(&models.Document{}).
		Where("document_id = ? AND status = ?", doc.DocumentID, models.DocumentPending).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentModification("document %d was reviewed concurrently", doc.DocumentID)
	}
	doc.Status = models.DocumentRejected
	doc.RejectionReason = &reason
	doc.ReviewedBy = &actor.UserID
	doc.ReviewedAt = &now

	detail := map[string]interface{}{
		"document_type": doc.DocumentType,
		"label":         doc.TypeLabel(),
		"reason":        reason,
	}
	if comment != "" {
		detail["comment"] = comment
	}
	if err := appendEvent(tx, doc.ApplicationID, models.EventDocRejected, actor, detail); err != nil {
		return err
	}

	if app.Status == models.StatusInReview {
		return Transition(tx, app, models.StatusDocsPending, "Document rejected: "+doc.TypeLabel(), "", actor)
	}
	return nil
}

// UnapproveDocument resets a reviewed document to pending. Forbidden for
// KYC-locked documents regardless of the actor's role: automated identity
// checks cannot be reversed by hand.
func UnapproveDocument(tx *gorm.DB, doc *models.Document, actor *models.User) error {
	if doc.Status == models.DocumentPending {
		return ErrInvalidState("document is already pending review")
	}
	locked, err := IsKYCLocked(tx, doc)
	if err != nil {
		return err
	}
	if locked {
		return ErrPermissionDenied("document %s was validated by an automated KYC check and cannot be unapproved", doc.TypeLabel())
	}

	previous := doc.Status
	now := time.Now()
	updates := map[string]interface{}{
		"status":           models.DocumentPending,
		"rejection_reason": nil,
		"review_comment":   nil,
		"reviewed_by":      nil,
		"reviewed_at":      nil,
		"update_at":        now,
	}
	res := tx.Model(&models.Document{}).
		Where("document_id = ? AND status = ?", doc.DocumentID, previous).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentModification("document %d was reviewed concurrently", doc.DocumentID)
	}
	doc.Status = models.DocumentPending
	doc.RejectionReason = nil
	doc.ReviewComment = nil
	doc.ReviewedBy = nil
	doc.ReviewedAt = nil

	return appendEvent(tx, doc.ApplicationID, models.EventDocUnapproved, actor, map[string]interface{}{
		"document_type":   doc.DocumentType,
		"label":           doc.TypeLabel(),
		"previous_status": string(previous),
	})
}

// IsKYCLocked evaluates the lock predicate: the provenance flag stored at
// write time, any legacy metadata indicator, or, for identity-class document
// types, a locked verified ledger record for the corresponding field.
func IsKYCLocked(db *gorm.DB, doc *models.Document) (bool, error) {
	if doc.KYCLocked {
		return true, nil
	}
	if metadataIndicatesKYC(doc.MetadataMap()) {
		return true, nil
	}

	field, identity := identityDocumentFields[doc.DocumentType]
	if !identity {
		return false, nil
	}
	var app models.Application
	if err := db.Select("applicant_id").
		Where("application_id = ?", doc.ApplicationID).
		First(&app).Error; err != nil {
		return false, err
	}
	var count int64
	err := db.Model(&models.VerificationRecord{}).
		Where("applicant_id = ? AND field = ? AND status = ? AND locked = ?",
			app.ApplicantID, field, models.VerificationVerified, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func metadataIndicatesKYC(meta map[string]interface{}) bool {
	for _, key := range legacyLockKeys {
		if truthy(meta[key]) {
			return true
		}
	}
	if source, ok := meta["source"].(string); ok && kycSources[strings.ToLower(source)] {
		return true
	}
	if method, ok := meta["validation_method"].(string); ok && kycValidationMethods[method] {
		return true
	}
	return false
}

// truthy tolerates the loose typing of legacy metadata: booleans, "true",
// "1", numeric 1.
func truthy(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(val)
		return lower == "true" || lower == "1" || lower == "yes"
	case float64:
		return val == 1
	}
	return false
}

// Provenance is the typed origin of an automated document validation.
type Provenance struct {
	Source     string
	Method     string
	Confidence *decimal.Decimal
}

// ProvenanceFromMetadata derives the typed provenance at write time. Returns
// nil when the metadata carries no KYC indicators, in which case the document
// stays unlocked.
func ProvenanceFromMetadata(meta map[string]interface{}) *Provenance {
	if !metadataIndicatesKYC(meta) {
		return nil
	}
	prov := &Provenance{Source: "kyc", Method: "KYC_INE_OCR"}
	if source, ok := meta["source"].(string); ok && source != "" {
		prov.Source = strings.ToLower(source)
	}
	if method, ok := meta["validation_method"].(string); ok && method != "" {
		prov.Method = method
	} else if truthy(meta["face_match_passed"]) || truthy(meta["face_match"]) {
		prov.Method = "KYC_FACE_MATCH"
	}
	if conf, ok := meta["confidence"].(float64); ok {
		d := decimal.NewFromFloat(conf)
		prov.Confidence = &d
	}
	return prov
}

// CreateDocument stores a newly uploaded file's row, computing provenance
// once from the upload metadata. A replacement upload (same type already
// present) records the prior file in the DOC_UPLOADED event payload.
func CreateDocument(tx *gorm.DB, app *models.Application, docType, originalName, storedPath, mimeType string, fileSize int64, metadata map[string]interface{}, actor *models.User) (*models.Document, error) {
	if !models.ValidDocumentType(docType) {
		return nil, ErrValidation("unknown document type %q", docType)
	}

	var prior models.Document
	priorErr := tx.Where("application_id = ? AND document_type = ?", app.ApplicationID, docType).
		Order("document_id DESC").
		First(&prior).Error
	hasPrior := priorErr == nil
	if priorErr != nil && !errors.Is(priorErr, gorm.ErrRecordNotFound) {
		return nil, priorErr
	}

	metaJSON := "{}"
	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return nil, err
		}
		metaJSON = string(raw)
	}

	now := time.Now()
	doc := models.Document{
		TenantID:      app.TenantID,
		ApplicationID: app.ApplicationID,
		DocumentType:  docType,
		Status:        models.DocumentPending,
		OriginalName:  originalName,
		StoredPath:    storedPath,
		FileSize:      fileSize,
		MimeType:      mimeType,
		Metadata:      metaJSON,
		CreateAt:      &now,
		UpdateAt:      &now,
	}
	if actor != nil {
		doc.UploadedBy = &actor.UserID
	}
	if prov := ProvenanceFromMetadata(metadata); prov != nil {
		doc.KYCLocked = true
		doc.KYCSource = &prov.Source
		doc.KYCMethod = &prov.Method
		doc.KYCConfidence = prov.Confidence
	}
	if err := tx.Create(&doc).Error; err != nil {
		return nil, err
	}

	detail := map[string]interface{}{
		"document_type": docType,
		"label":         doc.TypeLabel(),
		"file_name":     originalName,
		"file_size":     fileSize,
	}
	if hasPrior {
		detail["replaces"] = map[string]interface{}{
			"document_id": prior.DocumentID,
			"file_name":   prior.OriginalName,
		}
	}
	if err := appendEvent(tx, app.ApplicationID, models.EventDocUploaded, actor, detail); err != nil {
		return nil, err
	}
	return &doc, nil
}

// documentAccessTTL is how long a signed document URL stays valid.
const documentAccessTTL = 15 * time.Minute

type documentAccessClaims struct {
	DocumentID int `json:"document_id"`
	TenantID   int `json:"tenant_id"`
	jwt.RegisteredClaims
}

// DocumentAccessToken issues a short-lived signed token for fetching one
// document. Documents are never exposed via static paths.
func DocumentAccessToken(doc *models.Document) (string, time.Time, error) {
	expiry := time.Now().Add(documentAccessTTL)
	claims := documentAccessClaims{
		DocumentID: doc.DocumentID,
		TenantID:   doc.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiry, nil
}

// ParseDocumentAccessToken validates a signed document token and returns the
// document and tenant ids it grants access to.
func ParseDocumentAccessToken(tokenString string) (int, int, error) {
	claims := &documentAccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return 0, 0, ErrPermissionDenied("document link is invalid or expired")
	}
	return claims.DocumentID, claims.TenantID, nil
}
