package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"loan-origination-api/models"
	"loan-origination-api/utils"
)

// systemActorName labels entries whose actor is nil.
const systemActorName = "Sistema"

// TimelineEntry is one rendered line of an application's history.
type TimelineEntry struct {
	Sequence    int                    `json:"sequence"`
	Kind        models.EventKind       `json:"kind"`
	Description string                 `json:"description"`
	Actor       string                 `json:"actor"`
	Timestamp   time.Time              `json:"timestamp"`
	Detail      map[string]interface{} `json:"detail,omitempty"`
}

// BuildTimeline projects the application's event log into a reverse
// chronological narrative. Pure read: same log in, same entries out. Actor
// names are resolved with one batch query over the distinct ids referenced by
// the log, never one lookup per entry.
func BuildTimeline(db *gorm.DB, applicationID int) ([]TimelineEntry, error) {
	var events []models.LifecycleEvent
	err := db.Where("application_id = ?", applicationID).
		Order("sequence DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	actorNames, err := resolveActorNames(db, events)
	if err != nil {
		return nil, err
	}

	entries := make([]TimelineEntry, 0, len(events))
	for i := range events {
		event := &events[i]
		detail := event.DetailMap()
		actor := systemActorName
		if event.ActorID != nil {
			if name, ok := actorNames[*event.ActorID]; ok {
				actor = name
			} else {
				actor = fmt.Sprintf("User #%d", *event.ActorID)
			}
		}
		entries = append(entries, TimelineEntry{
			Sequence:    event.Sequence,
			Kind:        event.Kind,
			Description: describeEvent(event.Kind, detail),
			Actor:       actor,
			Timestamp:   event.CreatedAt,
			Detail:      detail,
		})
	}
	return entries, nil
}

func resolveActorNames(db *gorm.DB, events []models.LifecycleEvent) (map[int]string, error) {
	seen := map[int]bool{}
	ids := make([]int, 0)
	for i := range events {
		if events[i].ActorID == nil || seen[*events[i].ActorID] {
			continue
		}
		seen[*events[i].ActorID] = true
		ids = append(ids, *events[i].ActorID)
	}
	names := make(map[int]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	var users []models.User
	if err := db.Where("user_id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		names[users[i].UserID] = users[i].DisplayName()
	}
	return names, nil
}

func describeEvent(kind models.EventKind, detail map[string]interface{}) string {
	switch kind {
	case models.EventStatusChange:
		if truthy(detail["reassigned"]) {
			return detailString(detail, "reason", "Application reassigned")
		}
		to := detailString(detail, "new_status", "")
		if to == string(models.StatusCounterOffered) {
			if amount := detailString(detail, "amount", ""); amount != "" {
				return fmt.Sprintf("Counter-offer made: %s", utils.FormatAmount(amount))
			}
		}
		if reason := detailString(detail, "reason", ""); reason != "" {
			return fmt.Sprintf("Status changed to %s: %s", to, reason)
		}
		return fmt.Sprintf("Status changed to %s", to)
	case models.EventNoteAdded:
		return detailString(detail, "note", "Note added")
	case models.EventDocUploaded:
		label := detailString(detail, "label", "document")
		if _, replaced := detail["replaces"]; replaced {
			return fmt.Sprintf("Document replaced: %s", label)
		}
		return fmt.Sprintf("Document uploaded: %s", label)
	case models.EventDocApproved:
		return fmt.Sprintf("Document approved: %s", detailString(detail, "label", "document"))
	case models.EventDocRejected:
		label := detailString(detail, "label", "document")
		if reason := detailString(detail, "reason", ""); reason != "" {
			return fmt.Sprintf("Document rejected: %s (%s)", label, reason)
		}
		return fmt.Sprintf("Document rejected: %s", label)
	case models.EventDocUnapproved:
		return fmt.Sprintf("Document approval reverted: %s", detailString(detail, "label", "document"))
	case models.EventRefVerified:
		return fmt.Sprintf("Reference verified: %s (%s)",
			detailString(detail, "name", "reference"), detailString(detail, "result", ""))
	case models.EventDataVerified:
		label := detailString(detail, "label", "field")
		switch detailString(detail, "action", "") {
		case ActionReject:
			if reason := detailString(detail, "reason", ""); reason != "" {
				return fmt.Sprintf("Field rejected: %s (%s)", label, reason)
			}
			return fmt.Sprintf("Field rejected: %s", label)
		case ActionUnverify:
			return fmt.Sprintf("Field verification reset: %s", label)
		}
		return fmt.Sprintf("Field verified: %s", label)
	case models.EventDataCorrected:
		return fmt.Sprintf("Field corrected: %s (%s → %s)",
			detailString(detail, "label", "field"),
			detailString(detail, "old_value", ""),
			detailString(detail, "new_value", ""))
	case models.EventBankAccountVerified:
		return fmt.Sprintf("Bank account verified: %s", detailString(detail, "bank", "account"))
	case models.EventBankAccountUnverified:
		return fmt.Sprintf("Bank account verification reverted: %s", detailString(detail, "bank", "account"))
	}
	return string(kind)
}

func detailString(detail map[string]interface{}, key, fallback string) string {
	if value, ok := detail[key].(string); ok && value != "" {
		return value
	}
	return fallback
}
