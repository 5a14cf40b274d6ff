package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventify/internal/domain"
)

type dashboardService struct {
	userRepo           domain.UserRepository
	eventRepo          domain.EventRepository
	registrationRepo   domain.RegistrationRepository
	achievementService domain.AchievementService
	contextTimeout     time.Duration
}

func NewDashboardService(userRepo domain.UserRepository, eventRepo domain.EventRepository, registrationRepo domain.RegistrationRepository, achievementService domain.AchievementService, timeout time.Duration) domain.DashboardService {
	return &dashboardService{
		userRepo:           userRepo,
		eventRepo:          eventRepo,
		registrationRepo:   registrationRepo,
		achievementService: achievementService,
		contextTimeout:     timeout,
	}
}

func (s *dashboardService) ForUser(ctx context.Context, userID string) (*domain.Dashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if user.IsAdmin() {
		admin, err := s.adminView(ctx)
		if err != nil {
			return nil, err
		}
		return &domain.Dashboard{User: user, Admin: admin}, nil
	}

	regs, err := s.registrationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.RegistrationWithEvent{}
	}
	report, err := s.achievementService.ForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("achievements: %w", err)
	}
	return &domain.Dashboard{
		User:    user,
		Student: &domain.StudentDashboard{Registrations: regs, Achievements: report},
	}, nil
}

func (s *dashboardService) adminView(ctx context.Context) (*domain.AdminDashboard, error) {
	events, err := s.eventRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	counts, err := s.registrationRepo.CountByEvent(ctx)
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	view := &domain.AdminDashboard{Events: make([]*domain.EventWithStats, 0, len(events))}
	for _, e := range events {
		n := counts[e.ID]
		view.TotalRegistrations += n
		view.Events = append(view.Events, &domain.EventWithStats{Event: e, RegistrationCount: n})
	}
	return view, nil
}
