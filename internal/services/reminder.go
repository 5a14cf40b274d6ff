package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventify/internal/domain"
)

type reminderService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	emailService     domain.EmailService
	location         *time.Location
	logger           *slog.Logger
}

// NewReminderService creates a ReminderService that decides what "tomorrow" means in loc.
func NewReminderService(eventRepo domain.EventRepository, registrationRepo domain.RegistrationRepository, emailService domain.EmailService, loc *time.Location, logger *slog.Logger) domain.ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	return &reminderService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		emailService:     emailService,
		location:         loc,
		logger:           logger,
	}
}

// TomorrowRange returns the [start, end) bounds of the calendar day after now in loc.
func TomorrowRange(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

func (s *reminderService) SendTomorrow(ctx context.Context, now time.Time) (*domain.ReminderResult, error) {
	from, to := TomorrowRange(now, s.location)
	events, err := s.eventRepo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list tomorrow's events: %w", err)
	}

	result := &domain.ReminderResult{Events: len(events)}
	for _, event := range events {
		regs, err := s.registrationRepo.ListByEventID(ctx, event.ID)
		if err != nil {
			s.logger.ErrorContext(ctx, "list registrations for reminder", "event_id", event.ID, "err", err)
			continue
		}
		for _, reg := range regs {
			for _, m := range reg.TeamMembers {
				data := &domain.ReminderEmailData{
					Email:      m.Email,
					MemberName: m.Name,
					TeamName:   reg.TeamName,
					Event:      event,
				}
				if err := s.emailService.SendEventReminder(ctx, data); err != nil {
					result.Failed++
					s.logger.WarnContext(ctx, "reminder failed", "event_id", event.ID, "email", m.Email, "err", err)
					continue
				}
				result.Sent++
			}
		}
	}
	s.logger.InfoContext(ctx, "reminders sent", "events", result.Events, "sent", result.Sent, "failed", result.Failed)
	return result, nil
}
