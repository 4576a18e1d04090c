package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-origination-api/models"
)

func TestApproveDocument(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db)
	agent := seedUser(t, db, tenant.TenantID, models.RoleAgent)
	applicant := seedApplicant(t, db, tenant.TenantID)
	app := seedApplication(t, db, tenant.TenantID, applicant.ApplicantID, models.StatusInReview)
	doc := seedDocument(t, db, tenant.TenantID, app.ApplicationID, models.DocProofOfIncome, models.DocumentPending, "{}")

	require.NoError(t, ApproveDocument(db, doc, agent))
	assert.Equal(t, models.DocumentApproved, doc.Status)
	require.NotNil(t, doc.ReviewedBy)
	assert.Equal(t, agent.UserID, *doc.ReviewedBy)

	event := lastEvent(t, db, app.ApplicationID)
	assert.Equal(t, models.EventDocApproved, event.Kind)

	// Approving twice is an invalid state, not an error swallow.
	err := ApproveDocument(db, doc, agent)
	require.Error(t, err)
	assert.Equal(t, KindInvalidState, KindOf(err))
}

func TestApproveDocumentConcurrentReview(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db)
	agent := seedUser(t, db, tenant.TenantID, models.RoleAgent)
	applicant := seedApplicant(t, db, tenant.TenantID)
	app := seedApplication(t, db, tenant.TenantID, applicant.ApplicantID, models.StatusInReview)
	doc := seedDocument(t, db, tenant.TenantID, app.ApplicationID, models.DocProofOfIncome, models.DocumentPending, "{}")

	// Two reviewers loaded the same pending document; the first decision wins.
	stale := *doc
	require.NoError(t, ApproveDocument(db, doc, agent))

	err := ApproveDocument(db, &stale, agent)
	require.Error(t, err)
	assert.Equal(t, KindConcurrentModification, KindOf(err))

	// The loser left no second approval event.
	assert.Equal(t, 1, countEvents(t, db, app.ApplicationID))
}

func TestUnapproveDocumentConcurrentReview(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db)
	agent := seedUser(t, db, tenant.TenantID, models.RoleAgent)
	applicant := seedApplicant(t, db, tenant.TenantID)
	app := seedApplication(t, db, tenant.TenantID, applicant.ApplicantID, models.StatusInReview)
	doc := seedDocument(t, db, tenant.TenantID, app.ApplicationID, models.DocProofOfIncome, models.DocumentPending, "{}")

	require.NoError(t, ApproveDocument(db, doc, agent))

	stale := *doc
	require.NoError(t, UnapproveDocument(db, doc, agent))

	err := UnapproveDocument(db, &stale, agent)
	require.Error(t, err)
	assert.Equal(t, KindConcurrentModification, KindOf(err))
}

func TestRejectDocumentRequiresReason(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db)
	agent := seedUser(t, db, tenant.TenantID, models.RoleAgent)
	applicant := seedApplicant(t, db, tenant.TenantID)
	app := seedApplication(t, db, tenant.TenantID, applicant.ApplicantID, models.StatusInReview)
	doc := seedDocument(t, db, tenant.TenantID, app.ApplicationID, models.DocProofOfAddress, models.DocumentPending, "{}")

	err := RejectDocument(db, doc, app, "", "", agent)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, 0, countEvents(t, db, app.ApplicationID))
}

func TestRejectDocumentRoutesApplication(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db)
	agent := seedUser(t, db, tenant.TenantID, models.RoleAgent)
	applicant := seedApplicant(t, db, tenant.TenantID)
	app := seedApplication(t, db, tenant.TenantID, applicant.ApplicantID, models.StatusInReview)
	doc := seedDocument(t, db, tenant.TenantID, app.ApplicationID, models.DocINEFront, models.DocumentPending, "{}")

	require.NoError(t, RejectDocument(db, doc, app, "Image is blurry", "Photo unreadable in the corner", agent))
	assert.Equal(t, models.DocumentRejected, doc.Status)
	assert.Equal(t, models.StatusDocsPending, app.Status)

	// DOC_REJECTED followed by the routing STATUS_CHANGE.
	assert.Equal(t, 2, countEvents(t, db, app.ApplicationID))
	event := lastEvent(t, db, app.ApplicationID)
	assert.Equal(t, models.EventStatusChange, event.Kind)
	assert.Equal(t, "DOCS_PENDING", event.DetailMap()["new_status"])
}

func TestRejectDocumentLeavesOtherStatusesAlone(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db)
	agent := seedUser(t, db, tenant.TenantID, models.RoleAgent)
	applicant := seedApplicant(t, db, tenant.TenantID)
	app := seedApplication(t, db, tenant.TenantID, applicant.ApplicantID, models.StatusDocsPending)
	doc := seedDocument(t, db, tenant.TenantID, app.ApplicationID, models.DocBankStatement, models.DocumentPending, "{}")

	require.NoError(t, RejectDocument(db, doc, app, "Statement is older than 3 months", "", agent))
	assert.Equal(t, models.StatusDocsPending, app.Status)
	assert.Equal(t, 1, countEvents(t, db, app.ApplicationID))
}

func TestUnapproveDocument(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db)
	agent := seedUser(t, db, tenant.TenantID, models.RoleAgent)
	applicant := seedApplicant(t, db, tenant.TenantID)
	app := seedApplication(t, db, tenant.TenantID, applicant.ApplicantID, models.StatusInReview)
	doc := seedDocument(t, db, tenant.TenantID, app.ApplicationID, models.DocProofOfIncome, models.DocumentPending, "{}")

	require.NoError(t, ApproveDocument(db, doc, agent))
	require.NoError(t, UnapproveDocument(db, doc, agent))

	assert.Equal(t, models.DocumentPending, doc.Status)
	assert.Nil(t, doc.ReviewedBy)
	assert.Nil(t, doc.ReviewedAt)

	event := lastEvent(t, db, app.ApplicationID)
	assert.Equal(t, models.EventDocUnapproved, event.Kind)
	assert.Equal(t, "APPROVED", event.DetailMap()["previous_status"])
}

func TestKYCLockFromLegacyMetadata(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db)
	manager := seedUser(t, db, tenant.TenantID, models.RoleManager)
	applicant := seedApplicant(t, db, tenant.TenantID)
	app := seedApplication(t, db, tenant.TenantID, applicant.ApplicantID, models.StatusInReview)

	cases := []string{
		`{"face_match_passed": true}`,
		`{"kyc_validated": "true"}`,
		`{"ine_valid": 1}`,
		`{"source": "Nubarium"}`,
		`{"validation_method": "KYC_INE_OCR"}`,
	}
	for _, metadata := range cases {
		doc := seedDocument(t, db, tenant.TenantID, app.ApplicationID, models.DocSelfie, models.DocumentApproved, metadata)
		err := UnapproveDocument(db, doc, manager)
		require.Error(t, err, "metadata %s", metadata)
		assert.Equal(t, KindPermissionDenied, KindOf(err), "metadata %s", metadata)
	}

	// Unrelated metadata does not lock.
	doc := seedDocument(t, db, tenant.TenantID, app.ApplicationID, models.DocSelfie, models.DocumentApproved, `{"camera": "front"}`)
	require.NoError(t, UnapproveDocument(db, doc, manager))
}

func TestKYCLockFromStoredFlag(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db)
	manager := seedUser(t, db, tenant.TenantID, models.RoleManager)
	applicant := seedApplicant(t, db, tenant.TenantID)
	app := seedApplication(t, db, tenant.TenantID, applicant.ApplicantID, models.StatusInReview)

	doc := seedDocument(t, db, tenant.TenantID, app.ApplicationID, models.DocINEBack, models.DocumentApproved, "{}")
	require.NoError(t, db.Model(doc).Update("kyc_locked", true).Error)
	doc.KYCLocked = true

	err := UnapproveDocument(db, doc, manager)
	require.Error(t, err)
	assert.Equal(t, KindPermissionDenied, KindOf(err))
}

func TestKYCLockFromLedgerCrossCheck(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db)
	manager := seedUser(t, db, tenant.TenantID, models.RoleManager)
	applicant := seedApplicant(t, db, tenant.TenantID)
	app := seedApplication(t, db, tenant.TenantID, applicant.ApplicantID, models.StatusInReview)

	// An automated, locked INE verification also locks the INE scans.
	record := models.VerificationRecord{
		TenantID:      tenant.TenantID,
		ApplicantID:   applicant.ApplicantID,
		Field:         "ine_key",
		ValueSnapshot: applicant.INEKey,
		Status:        models.VerificationVerified,
		Method:        models.MethodAPI,
		Locked:        true,
	}
	require.NoError(t, db.Create(&record).Error)

	front := seedDocument(t, db, tenant.TenantID, app.ApplicationID, models.DocINEFront, models.DocumentApproved, "{}")
	err := UnapproveDocument(db, front, manager)
	require.Error(t, err)
	assert.Equal(t, KindPermissionDenied, KindOf(err))

	// A non-identity document type is untouched by the ledger.
	income := seedDocument(t, db, tenant.TenantID, app.ApplicationID, models.DocProofOfIncome, models.DocumentApproved, "{}")
	require.NoError(t, UnapproveDocument(db, income, manager))
}

func TestCreateDocumentComputesProvenance(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db)
	agent := seedUser(t, db, tenant.TenantID, models.RoleAgent)
	applicant := seedApplicant(t, db, tenant.TenantID)
	app := seedApplication(t, db, tenant.TenantID, applicant.ApplicantID, models.StatusDocsPending)

	meta := map[string]interface{}{
		"source":            "nubarium",
		"validation_method": "KYC_FACE_MATCH",
		"confidence":        0.97,
		"face_match_passed": true,
	}
	doc, err := CreateDocument(db, app, models.DocSelfie, "selfie.jpg", "/uploads/abc.jpg", "image/jpeg", 2048, meta, agent)
	require.NoError(t, err)

	assert.True(t, doc.KYCLocked)
	require.NotNil(t, doc.KYCSource)
	assert.Equal(t, "nubarium", *doc.KYCSource)
	require.NotNil(t, doc.KYCMethod)
	assert.Equal(t, "KYC_FACE_MATCH", *doc.KYCMethod)
	require.NotNil(t, doc.KYCConfidence)

	event := lastEvent(t, db, app.ApplicationID)
	assert.Equal(t, models.EventDocUploaded, event.Kind)
	assert.Equal(t, "selfie.jpg", event.DetailMap()["file_name"])
}

func TestCreateDocumentReplacementDetection(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db)
	agent := seedUser(t, db, tenant.TenantID, models.RoleAgent)
	applicant := seedApplicant(t, db, tenant.TenantID)
	app := seedApplication(t, db, tenant.TenantID, applicant.ApplicantID, models.StatusDocsPending)

	first, err := CreateDocument(db, app, models.DocBankStatement, "march.pdf", "/uploads/1.pdf", "application/pdf", 4096, nil, agent)
	require.NoError(t, err)
	assert.False(t, first.KYCLocked)

	// First upload of a type is not a replacement.
	_, replaced := lastEvent(t, db, app.ApplicationID).DetailMap()["replaces"]
	assert.False(t, replaced)

	_, err = CreateDocument(db, app, models.DocBankStatement, "april.pdf", "/uploads/2.pdf", "application/pdf", 4096, nil, agent)
	require.NoError(t, err)

	event := lastEvent(t, db, app.ApplicationID)
	replaces, ok := event.DetailMap()["replaces"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "march.pdf", replaces["file_name"])
}

func TestDocumentAccessTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	doc := &models.Document{DocumentID: 42, TenantID: 7}
	token, expiry, err := DocumentAccessToken(doc)
	require.NoError(t, err)
	assert.True(t, expiry.After(time.Now()))

	docID, tenantID, err := ParseDocumentAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, docID)
	assert.Equal(t, 7, tenantID)

	_, _, err = ParseDocumentAccessToken(token + "tampered")
	require.Error(t, err)
	assert.Equal(t, KindPermissionDenied, KindOf(err))
}
