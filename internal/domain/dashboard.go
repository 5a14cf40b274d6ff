package domain

import "context"

// StudentDashboard is the landing view of a student.
type StudentDashboard struct {
	Registrations []*RegistrationWithEvent `json:"registrations"`
	Achievements  *AchievementReport       `json:"achievements"`
}

// AdminDashboard is the landing view of an admin.
type AdminDashboard struct {
	Events             []*EventWithStats `json:"events"`
	TotalRegistrations int               `json:"total_registrations"`
}

// Dashboard is the role-specific landing view. Exactly one of Student or Admin is set.
// swagger:model Dashboard
type Dashboard struct {
	User    *User             `json:"user"`
	Student *StudentDashboard `json:"student,omitempty"`
	Admin   *AdminDashboard   `json:"admin,omitempty"`
}

// DashboardService builds the dashboard for the authenticated user.
type DashboardService interface {
	ForUser(ctx context.Context, userID string) (*Dashboard, error)
}
