package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"loan-origination-api/config"
	"loan-origination-api/models"
	"loan-origination-api/utils"
)

// The lifecycle service is the single entry point for every mutation of an
// application and its satellite records. Each use case runs one transaction:
// tenant-scoped load, permission check, guard evaluation, write, event append,
// audit append. A failure anywhere rolls the whole operation back, so no
// state change exists without its event and audit rows.

func loadApplication(tx *gorm.DB, tenantID, applicationID int) (*models.Application, error) {
	var app models.Application
	err := tx.Where("application_id = ? AND tenant_id = ?", applicationID, tenantID).First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Cross-tenant access must be indistinguishable from absence.
		return nil, ErrNotFound("application not found")
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func loadApplicant(tx *gorm.DB, tenantID, applicantID int) (*models.Applicant, error) {
	var applicant models.Applicant
	err := tx.Where("applicant_id = ? AND tenant_id = ?", applicantID, tenantID).First(&applicant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound("applicant not found")
	}
	if err != nil {
		return nil, err
	}
	return &applicant, nil
}

func loadDocument(tx *gorm.DB, tenantID, documentID int) (*models.Document, error) {
	var doc models.Document
	err := tx.Where("document_id = ? AND tenant_id = ?", documentID, tenantID).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound("document not found")
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ChangeApplicationStatus applies one status transition.
func ChangeApplicationStatus(tenantID, applicationID int, target models.ApplicationStatus, reason, disbursementRef string, actor *models.User) (*models.Application, error) {
	var app *models.Application
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		if app, err = loadApplication(tx, tenantID, applicationID); err != nil {
			return err
		}
		oldStatus := app.Status
		if err = Transition(tx, app, target, reason, disbursementRef, actor); err != nil {
			return err
		}
		return RecordAudit(tx, tenantID, actor, "application.status_changed", "application", app.ApplicationID, map[string]interface{}{
			"old_status": string(oldStatus),
			"new_status": string(target),
			"reason":     reason,
		})
	})
	if err != nil {
		return nil, err
	}

	switch target {
	case models.StatusApproved, models.StatusRejected:
		notifyDecision(app, reason)
	}
	return app, nil
}

// CounterOfferApplication records proposed terms and moves the application to
// COUNTER_OFFERED.
func CounterOfferApplication(tenantID, applicationID int, amount, rate decimal.Decimal, termMonths int, frequency, reason string, actor *models.User) (*models.Application, error) {
	var app *models.Application
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		if app, err = loadApplication(tx, tenantID, applicationID); err != nil {
			return err
		}
		if err = CounterOffer(tx, app, amount, rate, termMonths, frequency, reason, actor); err != nil {
			return err
		}
		return RecordAudit(tx, tenantID, actor, "application.counter_offered", "application", app.ApplicationID, map[string]interface{}{
			"amount":      amount.String(),
			"term_months": termMonths,
			"rate":        rate.String(),
			"frequency":   frequency,
		})
	})
	if err != nil {
		return nil, err
	}

	notifyDecision(app, reason)
	return app, nil
}

// AssignApplication sets the assigned reviewer.
func AssignApplication(tenantID, applicationID, reviewerID int, actor *models.User) (*models.Application, error) {
	var app *models.Application
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		if app, err = loadApplication(tx, tenantID, applicationID); err != nil {
			return err
		}

		var reviewer models.User
		err = tx.Where("user_id = ? AND tenant_id = ? AND delete_at IS NULL", reviewerID, tenantID).First(&reviewer).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrValidation("reviewer %d not found", reviewerID)
		}
		if err != nil {
			return err
		}

		if err = Assign(tx, app, &reviewer, actor); err != nil {
			return err
		}
		return RecordAudit(tx, tenantID, actor, "application.assigned", "application", app.ApplicationID, map[string]interface{}{
			"assigned_to": reviewer.UserID,
		})
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// AddApplicationNote appends a free-form note to the event log.
func AddApplicationNote(tenantID, applicationID int, note string, actor *models.User) error {
	if note == "" {
		return ErrValidation("note text is required")
	}
	return config.DB.Transaction(func(tx *gorm.DB) error {
		app, err := loadApplication(tx, tenantID, applicationID)
		if err != nil {
			return err
		}
		if err := appendEvent(tx, app.ApplicationID, models.EventNoteAdded, actor, map[string]interface{}{
			"note": note,
		}); err != nil {
			return err
		}
		return RecordAudit(tx, tenantID, actor, "application.note_added", "application", app.ApplicationID, nil)
	})
}

// VerifyApplicantField records one verification ledger action for a field.
func VerifyApplicantField(tenantID, applicantID int, field, action, method, notes, rejectionReason string, actor *models.User) (*models.VerificationRecord, error) {
	var record *models.VerificationRecord
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		applicant, err := loadApplicant(tx, tenantID, applicantID)
		if err != nil {
			return err
		}
		if record, err = RecordVerification(tx, applicant, field, action, method, notes, rejectionReason, actor); err != nil {
			return err
		}
		return RecordAudit(tx, tenantID, actor, "applicant.field_"+action, "applicant", applicant.ApplicantID, map[string]interface{}{
			"field":  field,
			"method": method,
		})
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ApplicantVerificationState is the current-state read model over the ledger.
func ApplicantVerificationState(tenantID, applicantID int) ([]FieldState, error) {
	if _, err := loadApplicant(config.DB, tenantID, applicantID); err != nil {
		return nil, err
	}
	return CurrentVerificationState(config.DB, tenantID, applicantID)
}

// ApproveApplicationDocument approves a pending document.
func ApproveApplicationDocument(tenantID, documentID int, actor *models.User) (*models.Document, error) {
	var doc *models.Document
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		if doc, err = loadDocument(tx, tenantID, documentID); err != nil {
			return err
		}
		if err = ApproveDocument(tx, doc, actor); err != nil {
			return err
		}
		return RecordAudit(tx, tenantID, actor, "document.approved", "document", doc.DocumentID, map[string]interface{}{
			"document_type": doc.DocumentType,
		})
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// RejectApplicationDocument rejects a pending document, routing the owning
// application back to DOCS_PENDING when it was in review.
func RejectApplicationDocument(tenantID, documentID int, reason, comment string, actor *models.User) (*models.Document, error) {
	var doc *models.Document
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		if doc, err = loadDocument(tx, tenantID, documentID); err != nil {
			return err
		}
		app, err := loadApplication(tx, tenantID, doc.ApplicationID)
		if err != nil {
			return err
		}
		if err = RejectDocument(tx, doc, app, reason, comment, actor); err != nil {
			return err
		}
		return RecordAudit(tx, tenantID, actor, "document.rejected", "document", doc.DocumentID, map[string]interface{}{
			"document_type": doc.DocumentType,
			"reason":        reason,
		})
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// UnapproveApplicationDocument resets a reviewed, unlocked document to pending.
func UnapproveApplicationDocument(tenantID, documentID int, actor *models.User) (*models.Document, error) {
	var doc *models.Document
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		if doc, err = loadDocument(tx, tenantID, documentID); err != nil {
			return err
		}
		if err = UnapproveDocument(tx, doc, actor); err != nil {
			return err
		}
		return RecordAudit(tx, tenantID, actor, "document.unapproved", "document", doc.DocumentID, map[string]interface{}{
			"document_type": doc.DocumentType,
		})
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// UploadApplicationDocument stores a new document row for an uploaded file.
func UploadApplicationDocument(tenantID, applicationID int, docType, originalName, storedPath, mimeType string, fileSize int64, metadata map[string]interface{}, actor *models.User) (*models.Document, error) {
	var doc *models.Document
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		app, err := loadApplication(tx, tenantID, applicationID)
		if err != nil {
			return err
		}
		if doc, err = CreateDocument(tx, app, docType, originalName, storedPath, mimeType, fileSize, metadata, actor); err != nil {
			return err
		}
		return RecordAudit(tx, tenantID, actor, "document.uploaded", "document", doc.DocumentID, map[string]interface{}{
			"document_type": docType,
			"file_name":     originalName,
		})
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// VerifyApplicantReference records the outcome of a reference call.
func VerifyApplicantReference(tenantID, referenceID int, result, notes string, actor *models.User) (*models.Reference, error) {
	if !models.ValidReferenceResult(result) {
		return nil, ErrValidation("unknown reference result %q", result)
	}

	var ref models.Reference
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("reference_id = ? AND tenant_id = ?", referenceID, tenantID).First(&ref).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound("reference not found")
		}
		if err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"result":      result,
			"verified_by": actor.UserID,
			"verified_at": now,
			"update_at":   now,
		}
		if notes != "" {
			updates["notes"] = notes
		}
		if err := tx.Model(&models.Reference{}).
			Where("reference_id = ?", ref.ReferenceID).
			Updates(updates).Error; err != nil {
			return err
		}
		ref.Result = &result
		ref.VerifiedBy = &actor.UserID
		ref.VerifiedAt = &now
		if notes != "" {
			ref.Notes = &notes
		}

		applicant, err := loadApplicant(tx, tenantID, ref.ApplicantID)
		if err != nil {
			return err
		}
		app, err := openApplicationFor(tx, applicant)
		if err != nil {
			return err
		}
		if app != nil {
			if err := appendEvent(tx, app.ApplicationID, models.EventRefVerified, actor, map[string]interface{}{
				"name":   ref.Name,
				"result": result,
			}); err != nil {
				return err
			}
		}
		return RecordAudit(tx, tenantID, actor, "reference.verified", "reference", ref.ReferenceID, map[string]interface{}{
			"result": result,
		})
	})
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// VerifyApplicantBankAccount marks an unverified account as verified.
func VerifyApplicantBankAccount(tenantID, accountID int, method string, actor *models.User) (*models.BankAccount, error) {
	if !models.ValidVerificationMethod(method) {
		return nil, ErrValidation("unknown verification method %q", method)
	}
	return mutateBankAccount(tenantID, accountID, actor, func(tx *gorm.DB, account *models.BankAccount) (models.EventKind, string, error) {
		if account.Verified {
			return "", "", ErrInvalidState("bank account is already verified")
		}
		if !utils.ValidateCLABE(account.CLABE) {
			return "", "", ErrValidation("account CLABE is not valid")
		}
		now := time.Now()
		updates := map[string]interface{}{
			"verified":            true,
			"verification_method": method,
			"verified_by":         actor.UserID,
			"verified_at":         now,
			"update_at":           now,
		}
		res := tx.Model(&models.BankAccount{}).
			Where("account_id = ? AND verified = ?", account.AccountID, false).
			Updates(updates)
		if res.Error != nil {
			return "", "", res.Error
		}
		if res.RowsAffected == 0 {
			return "", "", ErrConcurrentModification("bank account %d was verified concurrently", account.AccountID)
		}
		account.Verified = true
		account.VerificationMethod = &method
		account.VerifiedBy = &actor.UserID
		account.VerifiedAt = &now
		return models.EventBankAccountVerified, "bank_account.verified", nil
	})
}

// UnverifyApplicantBankAccount reverts a verified account to unverified.
func UnverifyApplicantBankAccount(tenantID, accountID int, actor *models.User) (*models.BankAccount, error) {
	return mutateBankAccount(tenantID, accountID, actor, func(tx *gorm.DB, account *models.BankAccount) (models.EventKind, string, error) {
		if !account.Verified {
			return "", "", ErrInvalidState("bank account is not verified")
		}
		now := time.Now()
		updates := map[string]interface{}{
			"verified":      false,
			"unverified_at": now,
			"update_at":     now,
		}
		res := tx.Model(&models.BankAccount{}).
			Where("account_id = ? AND verified = ?", account.AccountID, true).
			Updates(updates)
		if res.Error != nil {
			return "", "", res.Error
		}
		if res.RowsAffected == 0 {
			return "", "", ErrConcurrentModification("bank account %d was unverified concurrently", account.AccountID)
		}
		account.Verified = false
		account.UnverifiedAt = &now
		return models.EventBankAccountUnverified, "bank_account.unverified", nil
	})
}

func mutateBankAccount(tenantID, accountID int, actor *models.User, mutate func(*gorm.DB, *models.BankAccount) (models.EventKind, string, error)) (*models.BankAccount, error) {
	var account models.BankAccount
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("account_id = ? AND tenant_id = ?", accountID, tenantID).First(&account).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound("bank account not found")
		}
		if err != nil {
			return err
		}

		kind, auditAction, err := mutate(tx, &account)
		if err != nil {
			return err
		}

		applicant, err := loadApplicant(tx, tenantID, account.ApplicantID)
		if err != nil {
			return err
		}
		app, err := openApplicationFor(tx, applicant)
		if err != nil {
			return err
		}
		if app != nil {
			if err := appendEvent(tx, app.ApplicationID, kind, actor, map[string]interface{}{
				"bank":  account.BankName,
				"clabe": maskCLABE(account.CLABE),
			}); err != nil {
				return err
			}
		}
		return RecordAudit(tx, tenantID, actor, auditAction, "bank_account", account.AccountID, nil)
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// maskCLABE keeps only the last four digits in rendered output.
func maskCLABE(clabe string) string {
	if len(clabe) <= 4 {
		return clabe
	}
	return "**************" + clabe[len(clabe)-4:]
}

// ApplicationTimeline renders the event log for callers. Tenant check first;
// the raw log is never exposed.
func ApplicationTimeline(tenantID, applicationID int) ([]TimelineEntry, error) {
	app, err := loadApplication(config.DB, tenantID, applicationID)
	if err != nil {
		return nil, err
	}
	return BuildTimeline(config.DB, app.ApplicationID)
}
