package intake

import (
	"context"
	"encoding/json"

	"github.com/harborvet/portal-api/internal/wizard"
	"github.com/harborvet/portal-api/pkg/logging"
)

// SubmissionClient delivers an assembled payload to the practice.
type SubmissionClient interface {
	Submit(ctx context.Context, payload map[string]any) error
}

// Notifier sends the post-submission confirmation email.
type Notifier interface {
	SendRequestConfirmation(ctx context.Context, toEmail, firstName, appointmentType string) error
}

// Service finalizes completed wizard sessions: it assembles and delivers
// the request, then archives it and emails a confirmation. Delivery
// failure is the caller's problem; archive and email failures are logged
// and swallowed, the practice already has the request.
type Service struct {
	practiceID string
	submitter  SubmissionClient
	repo       Repository
	notifier   Notifier
	logger     *logging.Logger
}

// NewService wires the finalizer. repo and notifier may be nil when the
// deployment runs without an archive database or outbound email.
func NewService(practiceID string, submitter SubmissionClient, repo Repository, notifier Notifier, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		practiceID: practiceID,
		submitter:  submitter,
		repo:       repo,
		notifier:   notifier,
		logger:     logger,
	}
}

var _ wizard.Finalizer = (*Service)(nil)

// Finalize implements wizard.Finalizer.
func (s *Service) Finalize(ctx context.Context, snap wizard.Snapshot) error {
	payload := BuildPayload(s.practiceID, snap)

	if err := s.submitter.Submit(ctx, payload); err != nil {
		return err
	}

	appointmentType, _ := payload["appointmentType"].(string)
	email := snap.Form.Email

	if s.repo != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			raw = []byte("{}")
		}
		if _, err := s.repo.Create(ctx, &Request{
			PracticeID:      s.practiceID,
			AppointmentType: appointmentType,
			ClientEmail:     email,
			Payload:         raw,
		}); err != nil {
			s.logger.Error("request archive failed", "session_id", snap.ID, "error", err)
		}
	}

	if s.notifier != nil && email != "" {
		firstName := snap.Form.FirstName
		if firstName == "" && snap.Profile != nil {
			firstName = snap.Profile.FirstName
		}
		if err := s.notifier.SendRequestConfirmation(ctx, email, firstName, appointmentType); err != nil {
			s.logger.Warn("confirmation email failed", "session_id", snap.ID, "error", err)
		}
	}

	s.logger.Info("appointment request finalized",
		"session_id", snap.ID,
		"appointment_type", appointmentType,
		"authenticated", snap.Authenticated,
	)
	return nil
}
