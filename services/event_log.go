package services

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"loan-origination-api/models"
)

// appendEvent inserts the next row of an application's event log. Sequence
// numbers are assigned inside the caller's transaction, so together with the
// optimistic version check on the application row two concurrent writers can
// never produce the same (application_id, sequence) pair.
func appendEvent(tx *gorm.DB, applicationID int, kind models.EventKind, actor *models.User, detail map[string]interface{}) error {
	var last int
	err := tx.Model(&models.LifecycleEvent{}).
		Where("application_id = ?", applicationID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&last).Error
	if err != nil {
		return err
	}

	payload := "{}"
	if len(detail) > 0 {
		raw, err := json.Marshal(detail)
		if err != nil {
			return err
		}
		payload = string(raw)
	}

	event := models.LifecycleEvent{
		ApplicationID: applicationID,
		Sequence:      last + 1,
		Kind:          kind,
		Detail:        payload,
		CreatedAt:     time.Now(),
	}
	if actor != nil {
		event.ActorID = &actor.UserID
	}

	return insertEvent(tx, &event)
}

// insertEvent writes one log row. A duplicate (application_id, sequence) pair
// means another writer appended between our sequence read and this insert;
// surfaced as ConcurrentModification so the caller's transaction rolls back
// and can be retried.
func insertEvent(tx *gorm.DB, event *models.LifecycleEvent) error {
	err := tx.Create(event).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConcurrentModification("event log for application %d advanced concurrently", event.ApplicationID)
	}
	return err
}

// applyApplicationWrite performs the optimistic-locked update of an
// application row. The WHERE clause pins the version the caller read; zero
// affected rows means another staff member won the race and the caller's
// transaction must roll back with ConcurrentModification.
func applyApplicationWrite(tx *gorm.DB, app *models.Application, updates map[string]interface{}) error {
	now := time.Now()
	updates["version"] = app.Version + 1
	updates["update_at"] = now

	res := tx.Model(&models.Application{}).
		Where("application_id = ? AND version = ?", app.ApplicationID, app.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentModification("application %d was modified concurrently", app.ApplicationID)
	}

	app.Version++
	app.UpdateAt = &now
	return nil
}
