package services

import (
	"time"

	"gorm.io/gorm"

	"loan-origination-api/models"
	"loan-origination-api/utils"
)

// Ledger actions.
const (
	ActionVerify   = "verify"
	ActionReject   = "reject"
	ActionUnverify = "unverify"
)

// VerifiableFields whitelists the applicant fields the ledger accepts, with
// display labels for timelines.
var VerifiableFields = map[string]string{
	"first_name":       "First name",
	"paternal_surname": "Paternal surname",
	"maternal_surname": "Maternal surname",
	"curp":             "CURP",
	"rfc":              "RFC",
	"ine_key":          "INE key",
	"birth_date":       "Birth date",
	"phone":            "Phone",
	"email":            "Email",
	"address":          "Address",
	"employment":       "Employment",
}

// FieldLabel returns the display label for a verifiable field.
func FieldLabel(field string) string {
	if label, ok := VerifiableFields[field]; ok {
		return label
	}
	return field
}

var actionStatus = map[string]models.VerificationStatus{
	ActionVerify:   models.VerificationVerified,
	ActionReject:   models.VerificationRejected,
	ActionUnverify: models.VerificationPending,
}

// RecordVerification appends one record to the verification ledger. The
// ledger is insert-only: verify, reject and unverify each create a new row
// snapshotting the field's current value; nothing is ever updated in place.
// Rejecting a field routes the applicant's open application back to the
// applicant for correction.
func RecordVerification(tx *gorm.DB, applicant *models.Applicant, field, action, method, notes, rejectionReason string, actor *models.User) (*models.VerificationRecord, error) {
	if _, ok := VerifiableFields[field]; !ok {
		return nil, ErrValidation("field %q is not verifiable", field)
	}
	status, ok := actionStatus[action]
	if !ok {
		return nil, ErrValidation("unknown verification action %q", action)
	}
	if !models.ValidVerificationMethod(method) {
		return nil, ErrValidation("unknown verification method %q", method)
	}
	if action == ActionReject && rejectionReason == "" {
		return nil, ErrValidation("a rejection reason is required to reject a field")
	}

	snapshot := applicantFieldValue(applicant, field)
	if action == ActionVerify {
		if err := checkFieldFormat(field, snapshot); err != nil {
			return nil, err
		}
	}

	record := models.VerificationRecord{
		TenantID:      applicant.TenantID,
		ApplicantID:   applicant.ApplicantID,
		Field:         field,
		ValueSnapshot: snapshot,
		Status:        status,
		Method:        method,
		CreatedAt:     time.Now(),
	}
	if notes != "" {
		record.Notes = &notes
	}
	if rejectionReason != "" {
		record.RejectionReason = &rejectionReason
	}
	if actor != nil {
		record.ActorID = &actor.UserID
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, err
	}

	if err := mirrorContactFlags(tx, applicant, field, status); err != nil {
		return nil, err
	}

	app, err := openApplicationFor(tx, applicant)
	if err != nil {
		return nil, err
	}
	if app != nil {
		detail := map[string]interface{}{
			"field":  field,
			"label":  FieldLabel(field),
			"action": action,
			"status": string(status),
			"method": method,
		}
		if rejectionReason != "" {
			detail["reason"] = rejectionReason
		}
		if err := appendEvent(tx, app.ApplicationID, models.EventDataVerified, actor, detail); err != nil {
			return nil, err
		}
		if action == ActionReject {
			if err := routeForCorrection(tx, app, field, actor); err != nil {
				return nil, err
			}
		}
	}

	return &record, nil
}

// checkFieldFormat refuses to mark malformed identifiers as verified; the
// value should be corrected first.
func checkFieldFormat(field, value string) error {
	switch field {
	case "curp":
		if !utils.ValidateCURP(value) {
			return ErrValidation("CURP %q is not a valid CURP", value)
		}
	case "rfc":
		if !utils.ValidateRFC(value) {
			return ErrValidation("RFC %q is not a valid RFC", value)
		}
	case "email":
		if !utils.ValidateEmail(value) {
			return ErrValidation("email %q is not a valid address", value)
		}
	}
	return nil
}

// routeForCorrection is the single seam coupling the ledger to the status
// machine: a rejected field sends the application back to the applicant,
// unless it is already awaiting corrections.
func routeForCorrection(tx *gorm.DB, app *models.Application, field string, actor *models.User) error {
	if app.Status == models.StatusCorrectionsPending {
		return nil
	}
	reason := "Field rejected: " + FieldLabel(field)
	return Transition(tx, app, models.StatusCorrectionsPending, reason, "", actor)
}

// openApplicationFor returns the applicant's most recently created
// non-terminal application, or nil when none exists.
func openApplicationFor(tx *gorm.DB, applicant *models.Applicant) (*models.Application, error) {
	var apps []models.Application
	err := tx.Where("applicant_id = ? AND tenant_id = ?", applicant.ApplicantID, applicant.TenantID).
		Order("application_id DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	for i := range apps {
		if !apps[i].Status.IsTerminal() {
			return &apps[i], nil
		}
	}
	return nil, nil
}

// mirrorContactFlags keeps the applicant's phone/email verified timestamps in
// step with the ledger. Derived data only; the ledger stays authoritative.
func mirrorContactFlags(tx *gorm.DB, applicant *models.Applicant, field string, status models.VerificationStatus) error {
	var column string
	switch field {
	case "phone":
		column = "phone_verified_at"
	case "email":
		column = "email_verified_at"
	default:
		return nil
	}

	var stamp interface{}
	if status == models.VerificationVerified {
		stamp = time.Now()
	}
	return tx.Model(&models.Applicant{}).
		Where("applicant_id = ?", applicant.ApplicantID).
		Update(column, stamp).Error
}

// applicantFieldValue snapshots the current value of a verifiable field.
func applicantFieldValue(applicant *models.Applicant, field string) string {
	switch field {
	case "first_name":
		return applicant.FirstName
	case "paternal_surname":
		return applicant.PaternalSurname
	case "maternal_surname":
		return applicant.MaternalSurname
	case "curp":
		return applicant.CURP
	case "rfc":
		return applicant.RFC
	case "ine_key":
		return applicant.INEKey
	case "birth_date":
		if applicant.BirthDate == nil {
			return ""
		}
		return applicant.BirthDate.Format("2006-01-02")
	case "phone":
		return applicant.Phone
	case "email":
		return applicant.Email
	case "address":
		return applicant.Address
	case "employment":
		return applicant.Employer
	}
	return ""
}

// FieldState is the derived current state of one verifiable field.
type FieldState struct {
	Field  string                     `json:"field"`
	Label  string                     `json:"label"`
	Record *models.VerificationRecord `json:"record,omitempty"`
}

// CurrentVerificationState projects the ledger into per-field current state:
// the latest record per field wins, independent of insertion order. Fields
// with no records are reported with a nil record so callers see the full
// checklist. Always computed from the ledger, never cached.
func CurrentVerificationState(db *gorm.DB, tenantID, applicantID int) ([]FieldState, error) {
	var records []models.VerificationRecord
	err := db.Where("applicant_id = ? AND tenant_id = ?", applicantID, tenantID).
		Order("created_at ASC").
		Order("record_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	latest := make(map[string]*models.VerificationRecord, len(VerifiableFields))
	for i := range records {
		latest[records[i].Field] = &records[i]
	}

	fields := []string{
		"first_name", "paternal_surname", "maternal_surname", "curp", "rfc",
		"ine_key", "birth_date", "phone", "email", "address", "employment",
	}
	states := make([]FieldState, 0, len(fields))
	for _, field := range fields {
		states = append(states, FieldState{
			Field:  field,
			Label:  FieldLabel(field),
			Record: latest[field],
		})
	}
	return states, nil
}
