package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeMessageEmailData holds data for the welcome email.
type WelcomeMessageEmailData struct {
	Email string
	Name  string
	Role  Role
}

// RegistrationEmailData holds data for the registration confirmation sent to a team member.
type RegistrationEmailData struct {
	Email      string
	MemberName string
	TeamName   string
	Event      *Event
}

// ReminderEmailData holds data for the day-before event reminder.
type ReminderEmailData struct {
	Email      string
	MemberName string
	TeamName   string
	Event      *Event
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcomeMessage(ctx context.Context, data *WelcomeMessageEmailData) error
	SendRegistrationConfirmation(ctx context.Context, data *RegistrationEmailData) error
	SendEventReminder(ctx context.Context, data *ReminderEmailData) error
}

// ReminderResult counts the outcome of a reminder run.
type ReminderResult struct {
	Events int `json:"events"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// ReminderService sends day-before reminders to every team member of upcoming events.
type ReminderService interface {
	SendTomorrow(ctx context.Context, now time.Time) (*ReminderResult, error)
}
