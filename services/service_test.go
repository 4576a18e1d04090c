package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"loan-origination-api/config"
	"loan-origination-api/models"
)

var appNumberSeq int

// setupTestDB points config.DB at a fresh in-memory sqlite database with the
// full schema migrated. Single connection so transactions see one database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Applicant{},
		&models.LoanProduct{},
		&models.Application{},
		&models.LifecycleEvent{},
		&models.VerificationRecord{},
		&models.Document{},
		&models.Reference{},
		&models.BankAccount{},
		&models.AuditLog{},
	))

	config.DB = db
	ClearProductCache()
	return db
}

func seedTenant(t *testing.T, db *gorm.DB) *models.Tenant {
	t.Helper()
	now := time.Now()
	tenant := &models.Tenant{Name: "Creditos del Norte", Code: fmt.Sprintf("cdn-%d", time.Now().UnixNano()), IsActive: true, CreateAt: &now}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

func seedUser(t *testing.T, db *gorm.DB, tenantID int, role string) *models.User {
	t.Helper()
	now := time.Now()
	user := &models.User{
		TenantID:  tenantID,
		UserFname: "Laura",
		UserLname: "Mendez",
		Email:     fmt.Sprintf("%s-%d@example.com", role, time.Now().UnixNano()),
		Password:  "x",
		Role:      role,
		CreateAt:  &now,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedApplicant(t *testing.T, db *gorm.DB, tenantID int) *models.Applicant {
	t.Helper()
	now := time.Now()
	birth := time.Date(1990, 5, 14, 0, 0, 0, 0, time.UTC)
	applicant := &models.Applicant{
		TenantID:        tenantID,
		FirstName:       "Carlos",
		PaternalSurname: "Gomez",
		MaternalSurname: "Ruiz",
		CURP:            "GOMC900514HDFRRL09",
		RFC:             "GOMC900514AB1",
		INEKey:          "GMRZCR90051409H100",
		BirthDate:       &birth,
		Phone:           "+525512345678",
		Email:           "carlos@example.com",
		Address:         "Av. Reforma 100, CDMX",
		Employer:        "Acme SA de CV",
		CreateAt:        &now,
	}
	require.NoError(t, db.Create(applicant).Error)
	return applicant
}

func seedApplication(t *testing.T, db *gorm.DB, tenantID, applicantID int, status models.ApplicationStatus) *models.Application {
	t.Helper()
	now := time.Now()
	appNumberSeq++
	app := &models.Application{
		TenantID:          tenantID,
		ApplicantID:       applicantID,
		ProductID:         1,
		ApplicationNumber: fmt.Sprintf("APP-%d-%d", time.Now().UnixNano(), appNumberSeq),
		Status:            status,
		RequestedAmount:   decimal.NewFromInt(25000),
		TermMonths:        12,
		AnnualRate:        decimal.RequireFromString("0.4500"),
		PaymentFrequency:  models.FrequencyBiweekly,
		Version:           1,
		CreateAt:          &now,
	}
	require.NoError(t, db.Create(app).Error)
	return app
}

func seedDocument(t *testing.T, db *gorm.DB, tenantID, applicationID int, docType string, status models.DocumentStatus, metadata string) *models.Document {
	t.Helper()
	now := time.Now()
	doc := &models.Document{
		TenantID:      tenantID,
		ApplicationID: applicationID,
		DocumentType:  docType,
		Status:        status,
		OriginalName:  "scan.jpg",
		StoredPath:    "/uploads/scan.jpg",
		FileSize:      1024,
		MimeType:      "image/jpeg",
		Metadata:      metadata,
		CreateAt:      &now,
	}
	require.NoError(t, db.Create(doc).Error)
	return doc
}

func countEvents(t *testing.T, db *gorm.DB, applicationID int) int {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.LifecycleEvent{}).
		Where("application_id = ?", applicationID).
		Count(&count).Error)
	return int(count)
}

func lastEvent(t *testing.T, db *gorm.DB, applicationID int) *models.LifecycleEvent {
	t.Helper()
	var event models.LifecycleEvent
	require.NoError(t, db.Where("application_id = ?", applicationID).
		Order("sequence DESC").
		First(&event).Error)
	return &event
}

func countAudits(t *testing.T, db *gorm.DB, tenantID int) int {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error)
	return int(count)
}
