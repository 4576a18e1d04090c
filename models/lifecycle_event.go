package models

import (
	"encoding/json"
	"time"
)

// EventKind tags one entry in an application's event log.
type EventKind string

const (
	EventStatusChange          EventKind = "STATUS_CHANGE"
	EventNoteAdded             EventKind = "NOTE_ADDED"
	EventDocUploaded           EventKind = "DOC_UPLOADED"
	EventDocApproved           EventKind = "DOC_APPROVED"
	EventDocRejected           EventKind = "DOC_REJECTED"
	EventDocUnapproved         EventKind = "DOC_UNAPPROVED"
	EventRefVerified           EventKind = "REF_VERIFIED"
	EventDataVerified          EventKind = "DATA_VERIFIED"
	EventDataCorrected         EventKind = "DATA_CORRECTED"
	EventBankAccountVerified   EventKind = "BANK_ACCOUNT_VERIFIED"
	EventBankAccountUnverified EventKind = "BANK_ACCOUNT_UNVERIFIED"
)

// LifecycleEvent is one row of an application's append-only event log, keyed
// (application_id, sequence). Rows are inserted once and never updated or
// deleted; the rendered timeline is a pure projection of them. ActorID is nil
// for system-generated entries.
type LifecycleEvent struct {
	EventID       int       `gorm:"primaryKey;column:event_id" json:"event_id"`
	ApplicationID int       `gorm:"column:application_id;index:idx_event_app_seq,unique" json:"application_id"`
	Sequence      int       `gorm:"column:sequence;index:idx_event_app_seq,unique" json:"sequence"`
	Kind          EventKind `gorm:"column:kind" json:"kind"`
	ActorID       *int      `gorm:"column:actor_id" json:"actor_id,omitempty"`
	Detail        string    `gorm:"column:detail;type:text" json:"detail"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
}

// DetailMap decodes the kind-specific JSON payload. A missing or malformed
// payload decodes to an empty map so timeline rendering never fails on one row.
func (e *LifecycleEvent) DetailMap() map[string]interface{} {
	out := map[string]interface{}{}
	if e.Detail == "" {
		return out
	}
	if err := json.Unmarshal([]byte(e.Detail), &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}

// TableName overrides
func (LifecycleEvent) TableName() string {
	return "lifecycle_events"
}
