package services

import (
	"fmt"
	"log"

	"loan-origination-api/config"
	"loan-origination-api/models"
)

// notifyDecision emails the applicant about a decision status. Fire and
// forget: delivery failures are logged and never fail the operation that
// triggered them.
func notifyDecision(app *models.Application, reason string) {
	var applicant models.Applicant
	if err := config.DB.Where("applicant_id = ?", app.ApplicantID).First(&applicant).Error; err != nil {
		log.Printf("notification skipped for application %d: %v", app.ApplicationID, err)
		return
	}
	if applicant.Email == "" {
		return
	}

	var subject, body string
	switch app.Status {
	case models.StatusApproved:
		subject = fmt.Sprintf("Your application %s was approved", app.ApplicationNumber)
		body = fmt.Sprintf("<p>Hello %s,</p><p>Your loan application <b>%s</b> has been approved.</p>",
			applicant.FullName(), app.ApplicationNumber)
	case models.StatusRejected:
		subject = fmt.Sprintf("Update on your application %s", app.ApplicationNumber)
		body = fmt.Sprintf("<p>Hello %s,</p><p>Your loan application <b>%s</b> was not approved.</p>",
			applicant.FullName(), app.ApplicationNumber)
		if reason != "" {
			body += fmt.Sprintf("<p>Reason: %s</p>", reason)
		}
	case models.StatusCounterOffered:
		subject = fmt.Sprintf("New offer on your application %s", app.ApplicationNumber)
		body = fmt.Sprintf("<p>Hello %s,</p><p>We have a new offer on your loan application <b>%s</b>. Please review it in the app.</p>",
			applicant.FullName(), app.ApplicationNumber)
	default:
		return
	}

	go func() {
		if err := config.SendMail([]string{applicant.Email}, subject, body); err != nil {
			log.Printf("Warning: failed to send decision mail for application %d: %v", app.ApplicationID, err)
		}
	}()
}
