package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"loan-origination-api/models"
)

// Statuses only a decision-capable actor may apply.
var restrictedStatuses = map[models.ApplicationStatus]bool{
	models.StatusApproved:  true,
	models.StatusRejected:  true,
	models.StatusCancelled: true,
	models.StatusDisbursed: true,
	models.StatusActive:    true,
	models.StatusCompleted: true,
	models.StatusDefault:   true,
}

// RestrictedStatus reports whether applying the status requires the
// decide capability.
func RestrictedStatus(s models.ApplicationStatus) bool {
	return restrictedStatuses[s]
}

// CanTransition implements the transition graph. The post-approval chain is
// strictly ordered (APPROVED → DISBURSED → ACTIVE → COMPLETED/DEFAULT); the
// review-stage statuses are deliberately unordered so staff can move an
// application back to DOCS_PENDING or CORRECTIONS_PENDING at will. SUBMITTED
// is initial-only and terminal statuses have no outgoing edges.
func CanTransition(from, to models.ApplicationStatus) bool {
	if !to.Valid() || from.IsTerminal() || to == from || to == models.StatusSubmitted {
		return false
	}
	switch to {
	case models.StatusDisbursed:
		return from == models.StatusApproved
	case models.StatusActive:
		return from == models.StatusDisbursed
	case models.StatusCompleted, models.StatusDefault:
		return from == models.StatusActive
	}
	return true
}

// AllowedTargets lists every status reachable from the current one.
func AllowedTargets(from models.ApplicationStatus) []models.ApplicationStatus {
	targets := make([]models.ApplicationStatus, 0, len(models.AllStatuses))
	for _, to := range models.AllStatuses {
		if CanTransition(from, to) {
			targets = append(targets, to)
		}
	}
	return targets
}

// Transition moves the application to target under the machine's guards,
// bumps the optimistic version and appends the STATUS_CHANGE event. It must
// run inside the use case's transaction.
func Transition(tx *gorm.DB, app *models.Application, target models.ApplicationStatus, reason, disbursementRef string, actor *models.User) error {
	if !CanTransition(app.Status, target) {
		return ErrInvalidTransition("cannot change status from %s to %s", app.Status, target)
	}
	if RestrictedStatus(target) && !ActorCan(actor, CapabilityDecide) {
		return ErrPermissionDenied("changing status to %s requires decision permission", target)
	}

	updates := map[string]interface{}{"status": target}
	switch target {
	case models.StatusDisbursed:
		if disbursementRef == "" {
			return ErrInvalidTransition("a disbursement reference is required to disburse")
		}
		updates["disbursement_reference"] = disbursementRef
	case models.StatusRejected:
		if reason != "" {
			updates["rejection_reason"] = reason
		}
	}

	oldStatus := app.Status
	if err := applyApplicationWrite(tx, app, updates); err != nil {
		return err
	}
	app.Status = target
	if target == models.StatusDisbursed {
		app.DisbursementReference = &disbursementRef
	}
	if target == models.StatusRejected && reason != "" {
		app.RejectionReason = &reason
	}

	return appendEvent(tx, app.ApplicationID, models.EventStatusChange, actor, map[string]interface{}{
		"old_status": string(oldStatus),
		"new_status": string(target),
		"reason":     reason,
	})
}

// CounterOffer records proposed terms and moves the application to
// COUNTER_OFFERED. Only legal while the application is under review.
func CounterOffer(tx *gorm.DB, app *models.Application, offerAmount, offerRate decimal.Decimal, termMonths int, frequency, reason string, actor *models.User) error {
	if app.Status != models.StatusInReview && app.Status != models.StatusDocsPending {
		return ErrInvalidState("counter-offer is only allowed while in review, current status is %s", app.Status)
	}
	if !models.ValidFrequency(frequency) {
		return ErrValidation("unknown payment frequency %q", frequency)
	}
	if offerAmount.LessThanOrEqual(decimal.Zero) {
		return ErrValidation("offer amount must be greater than zero")
	}
	if termMonths <= 0 {
		return ErrValidation("offer term must be a positive number of months")
	}

	oldStatus := app.Status
	updates := map[string]interface{}{
		"status":              models.StatusCounterOffered,
		"offered_amount":      offerAmount,
		"offered_term_months": termMonths,
		"offered_rate":        offerRate,
		"offered_frequency":   frequency,
	}
	if err := applyApplicationWrite(tx, app, updates); err != nil {
		return err
	}
	app.Status = models.StatusCounterOffered
	app.OfferedAmount = &offerAmount
	app.OfferedTermMonths = &termMonths
	app.OfferedRate = &offerRate
	app.OfferedFrequency = &frequency

	return appendEvent(tx, app.ApplicationID, models.EventStatusChange, actor, map[string]interface{}{
		"old_status":  string(oldStatus),
		"new_status":  string(models.StatusCounterOffered),
		"amount":      offerAmount.String(),
		"term_months": termMonths,
		"rate":        offerRate.String(),
		"frequency":   frequency,
		"reason":      reason,
	})
}

// Assign sets the assigned reviewer. Allowed for any non-terminal status; the
// change is surfaced in the timeline as a same-status STATUS_CHANGE entry
// carrying a reassigned marker.
func Assign(tx *gorm.DB, app *models.Application, reviewer *models.User, actor *models.User) error {
	if app.Status.IsTerminal() {
		return ErrInvalidState("cannot assign a %s application", app.Status)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"assigned_to": reviewer.UserID,
		"assigned_at": now,
	}
	if err := applyApplicationWrite(tx, app, updates); err != nil {
		return err
	}
	app.AssignedTo = &reviewer.UserID
	app.AssignedAt = &now

	return appendEvent(tx, app.ApplicationID, models.EventStatusChange, actor, map[string]interface{}{
		"old_status": string(app.Status),
		"new_status": string(app.Status),
		"reassigned": true,
		"reason":     "Reassigned to " + reviewer.DisplayName(),
	})
}
