// Package notify sends outbound email to clients. The only message today
// is the appointment-request confirmation; the sender behind it is
// pluggable.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/harborvet/portal-api/pkg/logging"
)

// Service sends client-facing notifications for a practice.
type Service struct {
	email        EmailSender
	practiceName string
	logger       *logging.Logger
}

// NewService creates a notification service. A nil email sender disables
// sending without the callers having to care.
func NewService(email EmailSender, practiceName string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if practiceName == "" {
		practiceName = "HarborVet"
	}
	return &Service{
		email:        email,
		practiceName: practiceName,
		logger:       logger,
	}
}

// SendRequestConfirmation emails the client that their appointment request
// reached the practice. The wording differs between a regular visit and a
// euthanasia request; the latter stays deliberately plain.
func (s *Service) SendRequestConfirmation(ctx context.Context, toEmail, firstName, appointmentType string) error {
	if s.email == nil {
		s.logger.Debug("notify: email sender not configured, skipping confirmation")
		return nil
	}
	if toEmail == "" {
		return fmt.Errorf("notify: recipient email required")
	}

	greeting := "Hello"
	if name := strings.TrimSpace(firstName); name != "" {
		greeting = "Hello " + name
	}

	var subject, body string
	switch appointmentType {
	case "euthanasia":
		subject = fmt.Sprintf("We received your request — %s", s.practiceName)
		body = fmt.Sprintf(
			"%s,\n\nWe have received your request and understand this is a difficult time. "+
				"A member of our team will reach out shortly to arrange the details with you.\n\n"+
				"With care,\n%s",
			greeting, s.practiceName,
		)
	default:
		subject = fmt.Sprintf("Your visit request — %s", s.practiceName)
		body = fmt.Sprintf(
			"%s,\n\nThanks for requesting a visit. Our team will review your request and "+
				"confirm a time with you soon. If anything changes in the meantime, just reply "+
				"to this email.\n\n%s",
			greeting, s.practiceName,
		)
	}

	if err := s.email.Send(ctx, EmailMessage{
		To:      toEmail,
		ToName:  firstName,
		Subject: subject,
		Body:    body,
	}); err != nil {
		return fmt.Errorf("notify: send confirmation: %w", err)
	}

	s.logger.Info("confirmation email sent", "to", toEmail, "appointment_type", appointmentType)
	return nil
}
