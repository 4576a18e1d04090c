package services

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"loan-origination-api/models"
)

// RecordAudit appends one tenant-scoped audit row. It runs inside the calling
// use case's transaction: if the audit write fails the whole mutation rolls
// back, so no action is ever applied without its audit trail.
func RecordAudit(tx *gorm.DB, tenantID int, actor *models.User, action, entityType string, entityID int, detail map[string]interface{}) error {
	payload := "{}"
	if len(detail) > 0 {
		raw, err := json.Marshal(detail)
		if err != nil {
			return err
		}
		payload = string(raw)
	}

	entry := models.AuditLog{
		TenantID:   tenantID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     payload,
		CreatedAt:  time.Now(),
	}
	if actor != nil {
		entry.ActorID = &actor.UserID
	}

	return tx.Create(&entry).Error
}
