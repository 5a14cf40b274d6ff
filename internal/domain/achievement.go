package domain

import (
	"context"
	"time"
)

const (
	// PointsPerLevel is the number of points between two levels.
	PointsPerLevel = 100
	// EarlyBirdLead is how far ahead of an event a registration must be to count as early.
	EarlyBirdLead = 7 * 24 * time.Hour
)

// AchievementRule names the activity counter an achievement is evaluated against.
type AchievementRule string

const (
	RuleRegistrations      AchievementRule = "registrations"
	RuleFeedback           AchievementRule = "feedback"
	RuleTeamSize           AchievementRule = "team_size"
	RuleEarlyRegistrations AchievementRule = "early_registrations"
	RuleAdmin              AchievementRule = "admin"
)

// Achievement is a badge definition together with whether the user earned it.
// swagger:model Achievement
type Achievement struct {
	ID          string          `json:"id" yaml:"id"`
	Title       string          `json:"title" yaml:"title"`
	Description string          `json:"description" yaml:"description"`
	Icon        string          `json:"icon" yaml:"icon"`
	Points      int             `json:"points" yaml:"points"`
	Rule        AchievementRule `json:"rule" yaml:"rule"`
	Threshold   int             `json:"threshold" yaml:"threshold"`
	Earned      bool            `json:"earned" yaml:"-"`
}

// ActivityStats are the counters achievements are derived from.
type ActivityStats struct {
	Registrations      int
	Feedback           int
	LargestTeam        int
	EarlyRegistrations int
	IsAdmin            bool
}

// EarnedBy reports whether the stats satisfy the achievement's rule.
func (a Achievement) EarnedBy(s ActivityStats) bool {
	switch a.Rule {
	case RuleRegistrations:
		return s.Registrations >= a.Threshold
	case RuleFeedback:
		return s.Feedback >= a.Threshold
	case RuleTeamSize:
		return s.LargestTeam >= a.Threshold
	case RuleEarlyRegistrations:
		return s.EarlyRegistrations >= a.Threshold
	case RuleAdmin:
		return s.IsAdmin
	}
	return false
}

// UserPoints is the point total and level progress of a user.
// swagger:model UserPoints
type UserPoints struct {
	TotalPoints     int `json:"total_points"`
	Level           int `json:"level"`
	NextLevelPoints int `json:"next_level_points"`
	LevelProgress   int `json:"level_progress"`
}

// NewUserPoints derives the level and the percentage progress toward the next one.
func NewUserPoints(total int) UserPoints {
	level := total/PointsPerLevel + 1
	prev := (level - 1) * PointsPerLevel
	return UserPoints{
		TotalPoints:     total,
		Level:           level,
		NextLevelPoints: level * PointsPerLevel,
		LevelProgress:   (total - prev) * 100 / PointsPerLevel,
	}
}

// AchievementReport is the derived achievement view of one user.
// swagger:model AchievementReport
type AchievementReport struct {
	Achievements   []Achievement `json:"achievements"`
	EarnedCount    int           `json:"earned_count"`
	Points         UserPoints    `json:"points"`
	NewAchievement bool          `json:"new_achievement"`
}

// AchievementService computes achievements on read.
type AchievementService interface {
	ForUser(ctx context.Context, userID string) (*AchievementReport, error)
}
