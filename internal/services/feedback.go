package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"eventify/internal/domain"
)

type feedbackFields struct {
	OverallRating      int    `validate:"min=1,max=5"`
	OrganizationRating string `validate:"required,oneof=Excellent Good Average Poor"`
	AdditionalComments string `validate:"max=2000"`
}

type feedbackService struct {
	feedbackRepo     domain.FeedbackRepository
	registrationRepo domain.RegistrationRepository
	eventRepo        domain.EventRepository
	validate         *validator.Validate
	contextTimeout   time.Duration
}

func NewFeedbackService(feedbackRepo domain.FeedbackRepository, registrationRepo domain.RegistrationRepository, eventRepo domain.EventRepository, timeout time.Duration) domain.FeedbackService {
	return &feedbackService{
		feedbackRepo:     feedbackRepo,
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		validate:         validator.New(),
		contextTimeout:   timeout,
	}
}

func (s *feedbackService) Submit(ctx context.Context, eventID, userID string, input domain.FeedbackInput) (*domain.Feedback, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	comments := trimmedOrNil(input.AdditionalComments)
	fields := feedbackFields{OverallRating: input.OverallRating, OrganizationRating: string(input.OrganizationRating)}
	if comments != nil {
		fields.AdditionalComments = *comments
	}
	if err := s.validate.Struct(fields); err != nil {
		return nil, fmt.Errorf("feedback: %s: %w", describeValidation(err), domain.ErrInvalidInput)
	}

	if _, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("only registered participants can leave feedback: %w", domain.ErrForbidden)
		}
		return nil, fmt.Errorf("check registration: %w", err)
	}

	f := &domain.Feedback{
		EventID:            eventID,
		UserID:             userID,
		OverallRating:      input.OverallRating,
		WasInformative:     input.WasInformative,
		OrganizationRating: input.OrganizationRating,
		AdditionalComments: comments,
		CreatedAt:          time.Now(),
	}
	if err := s.feedbackRepo.Upsert(ctx, f); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, domain.ErrInvalidInput
		}
		return nil, fmt.Errorf("save feedback: %w", err)
	}
	return f, nil
}

func (s *feedbackService) Mine(ctx context.Context, eventID, userID string) (*domain.Feedback, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	f, err := s.feedbackRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get feedback: %w", err)
	}
	return f, nil
}

func (s *feedbackService) ListForEvent(ctx context.Context, eventID string) ([]*domain.Feedback, *domain.FeedbackSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}
	entries, err := s.feedbackRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, nil, fmt.Errorf("list feedback: %w", err)
	}
	if entries == nil {
		entries = []*domain.Feedback{}
	}
	return entries, domain.SummarizeFeedback(entries), nil
}

func (s *feedbackService) ListAll(ctx context.Context, eventID string) ([]*domain.Feedback, *domain.FeedbackSummary, error) {
	if strings.TrimSpace(eventID) != "" {
		return s.ListForEvent(ctx, eventID)
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	entries, err := s.feedbackRepo.ListAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list feedback: %w", err)
	}
	if entries == nil {
		entries = []*domain.Feedback{}
	}
	return entries, domain.SummarizeFeedback(entries), nil
}
