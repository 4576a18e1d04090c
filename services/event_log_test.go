package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-origination-api/models"
)

func TestAppendEventAssignsSequence(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db)
	agent := seedUser(t, db, tenant.TenantID, models.RoleAgent)
	applicant := seedApplicant(t, db, tenant.TenantID)
	app := seedApplication(t, db, tenant.TenantID, applicant.ApplicantID, models.StatusInReview)

	require.NoError(t, appendEvent(db, app.ApplicationID, models.EventNoteAdded, agent, nil))
	require.NoError(t, appendEvent(db, app.ApplicationID, models.EventNoteAdded, agent, nil))

	var events []models.LifecycleEvent
	require.NoError(t, db.Where("application_id = ?", app.ApplicationID).
		Order("sequence ASC").Find(&events).Error)
	require.Len(t, events, 2)
	assert.Equal(t, 1, events[0].Sequence)
	assert.Equal(t, 2, events[1].Sequence)
}

func TestEventSequenceConflictIsConcurrentModification(t *testing.T) {
	db := setupTestDB(t)
	tenant := seedTenant(t, db)
	applicant := seedApplicant(t, db, tenant.TenantID)
	app := seedApplication(t, db, tenant.TenantID, applicant.ApplicantID, models.StatusInReview)

	require.NoError(t, insertEvent(db, &models.LifecycleEvent{
		ApplicationID: app.ApplicationID,
		Sequence:      1,
		Kind:          models.EventNoteAdded,
		Detail:        "{}",
	}))

	// A second writer that read the same MAX(sequence) collides on the unique
	// (application_id, sequence) index and must surface as a conflict, not as
	// an unclassified storage error.
	err := insertEvent(db, &models.LifecycleEvent{
		ApplicationID: app.ApplicationID,
		Sequence:      1,
		Kind:          models.EventNoteAdded,
		Detail:        "{}",
	})
	require.Error(t, err)
	assert.Equal(t, KindConcurrentModification, KindOf(err))

	var count int64
	require.NoError(t, db.Model(&models.LifecycleEvent{}).
		Where("application_id = ?", app.ApplicationID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
