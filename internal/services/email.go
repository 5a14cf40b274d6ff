package services

import (
	"context"
	"fmt"
	"log"

	"eventify/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendWelcomeMessage sends a welcome email using the "welcome" template and the given data.
func (s *emailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	if data == nil {
		return fmt.Errorf("welcome message data is nil")
	}
	if err := s.send(ctx, "welcome", data.Email, data); err != nil {
		return err
	}
	log.Printf("[EMAIL] Welcome email sent to %s", data.Email)
	return nil
}

// SendRegistrationConfirmation tells a team member that their team is registered.
func (s *emailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationEmailData) error {
	if data == nil || data.Event == nil {
		return fmt.Errorf("registration email data is incomplete")
	}
	if err := s.send(ctx, "registration_confirmation", data.Email, data); err != nil {
		return err
	}
	log.Printf("[EMAIL] Registration confirmation for %q sent to %s", data.Event.Title, data.Email)
	return nil
}

// SendEventReminder sends the day-before reminder using the "event_reminder" template.
func (s *emailService) SendEventReminder(ctx context.Context, data *domain.ReminderEmailData) error {
	if data == nil || data.Event == nil {
		return fmt.Errorf("reminder email data is incomplete")
	}
	if err := s.send(ctx, "event_reminder", data.Email, data); err != nil {
		return err
	}
	log.Printf("[EMAIL] Reminder for %q sent to %s", data.Event.Title, data.Email)
	return nil
}

func (s *emailService) send(ctx context.Context, template, to string, data any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s email to %s not sent: %w", template, to, err)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	return nil
}
