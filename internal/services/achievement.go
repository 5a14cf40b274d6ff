package services

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"eventify/internal/domain"
)

//go:embed achievements.yaml
var defaultAchievementsYAML []byte

// LoadAchievementCatalog parses a YAML list of badge definitions.
func LoadAchievementCatalog(data []byte) ([]domain.Achievement, error) {
	var catalog []domain.Achievement
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse achievement catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(catalog))
	for _, a := range catalog {
		if a.ID == "" {
			return nil, fmt.Errorf("achievement without id: %w", domain.ErrInvalidInput)
		}
		if _, dup := seen[a.ID]; dup {
			return nil, fmt.Errorf("duplicate achievement %q: %w", a.ID, domain.ErrInvalidInput)
		}
		seen[a.ID] = struct{}{}
	}
	return catalog, nil
}

// DefaultAchievementCatalog returns the built-in badges.
func DefaultAchievementCatalog() []domain.Achievement {
	catalog, err := LoadAchievementCatalog(defaultAchievementsYAML)
	if err != nil {
		panic(err)
	}
	return catalog
}

type achievementService struct {
	userRepo         domain.UserRepository
	registrationRepo domain.RegistrationRepository
	feedbackRepo     domain.FeedbackRepository
	catalog          []domain.Achievement
	logger           *slog.Logger
	contextTimeout   time.Duration
}

// NewAchievementService creates an AchievementService. A nil catalog uses the built-in badges.
func NewAchievementService(userRepo domain.UserRepository, registrationRepo domain.RegistrationRepository, feedbackRepo domain.FeedbackRepository, catalog []domain.Achievement, logger *slog.Logger, timeout time.Duration) domain.AchievementService {
	if catalog == nil {
		catalog = DefaultAchievementCatalog()
	}
	return &achievementService{
		userRepo:         userRepo,
		registrationRepo: registrationRepo,
		feedbackRepo:     feedbackRepo,
		catalog:          catalog,
		logger:           logger,
		contextTimeout:   timeout,
	}
}

func (s *achievementService) ForUser(ctx context.Context, userID string) (*domain.AchievementReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	regs, err := s.registrationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	feedbackCount, err := s.feedbackRepo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count feedback: %w", err)
	}

	stats := activityStats(user, regs, feedbackCount)
	report := &domain.AchievementReport{Achievements: make([]domain.Achievement, 0, len(s.catalog))}
	total := 0
	for _, a := range s.catalog {
		a.Earned = a.EarnedBy(stats)
		if a.Earned {
			report.EarnedCount++
			total += a.Points
		}
		report.Achievements = append(report.Achievements, a)
	}
	report.Points = domain.NewUserPoints(total)

	prev, err := s.userRepo.SwapAchievementCount(ctx, userID, report.EarnedCount)
	if err != nil {
		s.logger.WarnContext(ctx, "store achievement count", "user_id", userID, "err", err)
	} else if prev != nil && *prev < report.EarnedCount {
		report.NewAchievement = true
	}
	return report, nil
}

func activityStats(user *domain.User, regs []*domain.RegistrationWithEvent, feedbackCount int) domain.ActivityStats {
	stats := domain.ActivityStats{
		Registrations: len(regs),
		Feedback:      feedbackCount,
		IsAdmin:       user.IsAdmin(),
	}
	for _, rw := range regs {
		if rw.Registration != nil && len(rw.Registration.TeamMembers) > stats.LargestTeam {
			stats.LargestTeam = len(rw.Registration.TeamMembers)
		}
		if rw.RegisteredEarly() {
			stats.EarlyRegistrations++
		}
	}
	return stats
}
