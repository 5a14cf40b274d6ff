package domain

import (
	"context"
	"strings"
	"time"
)

// TeamMember is one participant listed on a registration.
// swagger:model TeamMember
type TeamMember struct {
	ID             string  `json:"id"`
	RegistrationID string  `json:"registration_id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Department     string  `json:"department"`
	RollNumber     *string `json:"roll_number,omitempty"`
}

// Registration is a user's team registration for an event.
// swagger:model Registration
type Registration struct {
	ID                   string        `json:"id"`
	EventID              string        `json:"event_id"`
	UserID               string        `json:"user_id"`
	TeamName             string        `json:"team_name"`
	RegistrationDate     time.Time     `json:"registration_date"`
	Attended             bool          `json:"attended"`
	CertificateGenerated bool          `json:"certificate_generated"`
	ODLetterGenerated    bool          `json:"od_letter_generated"`
	TeamMembers          []*TeamMember `json:"team_members"`
}

// NewRegistration returns a Registration with its flags cleared. ID is set by the repository on create.
func NewRegistration(eventID, userID, teamName string, members []*TeamMember, registeredAt time.Time) *Registration {
	if members == nil {
		members = []*TeamMember{}
	}
	return &Registration{
		EventID:          eventID,
		UserID:           userID,
		TeamName:         teamName,
		RegistrationDate: registeredAt,
		TeamMembers:      members,
	}
}

// ApplyUpdate copies the mutable flags from a change notification for the same registration.
func (r *Registration) ApplyUpdate(u *Registration) {
	if u == nil || u.ID != r.ID {
		return
	}
	r.Attended = u.Attended
	r.CertificateGenerated = u.CertificateGenerated
	r.ODLetterGenerated = u.ODLetterGenerated
}

// Matches reports whether the team name or any member's name, email, department or roll
// number contains query, ignoring case. An empty query matches everything.
func (r *Registration) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.TeamName), q) {
		return true
	}
	for _, m := range r.TeamMembers {
		fields := []string{m.Name, m.Email, m.Department}
		if m.RollNumber != nil {
			fields = append(fields, *m.RollNumber)
		}
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), q) {
				return true
			}
		}
	}
	return false
}

// RegistrationWithEvent bundles a registration with its event.
type RegistrationWithEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}

// RegisteredEarly reports whether the registration happened at least EarlyBirdLead before the event.
func (rw *RegistrationWithEvent) RegisteredEarly() bool {
	if rw.Registration == nil || rw.Event == nil {
		return false
	}
	return rw.Event.Date.Sub(rw.Registration.RegistrationDate) >= EarlyBirdLead
}

// DocumentKind identifies a generated document tracked on a registration.
type DocumentKind string

const (
	DocumentCertificate DocumentKind = "certificate"
	DocumentODLetter    DocumentKind = "od_letter"
)

// RegistrationRepository defines storage operations for registrations and their team members.
type RegistrationRepository interface {
	// Register atomically consumes one slot of the event and stores the registration with
	// its team members. It returns ErrNoSlots, ErrAlreadyRegistered or ErrNotFound without
	// changing any state.
	Register(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	ListByUserID(ctx context.Context, userID string) ([]*RegistrationWithEvent, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Registration, error)
	CountByEvent(ctx context.Context) (map[string]int, error)
	SetAttended(ctx context.Context, id string, attended bool) (*Registration, error)
	MarkGenerated(ctx context.Context, id string, kind DocumentKind) error
}

// RegistrationInput is the team payload submitted with a registration.
type RegistrationInput struct {
	TeamName string
	Members  []*TeamMember
}

// RegistrationService defines registration workflows for students and admins.
type RegistrationService interface {
	Register(ctx context.Context, eventID, userID string, input RegistrationInput) (*Registration, error)
	ListMine(ctx context.Context, userID string) ([]*RegistrationWithEvent, error)
	ListForEvent(ctx context.Context, eventID, query string) ([]*Registration, error)
	SetAttendance(ctx context.Context, registrationID string, attended bool) (*Registration, error)
}
