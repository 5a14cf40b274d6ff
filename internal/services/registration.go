package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"eventify/internal/domain"
)

// memberFields carries the validation rules of a team member.
type memberFields struct {
	Name       string `validate:"required,max=120"`
	Email      string `validate:"required,email"`
	Department string `validate:"required,max=120"`
	RollNumber string `validate:"omitempty,max=40"`
}

type registrationService struct {
	registrationRepo domain.RegistrationRepository
	eventRepo        domain.EventRepository
	userRepo         domain.UserRepository
	emailService     domain.EmailService
	validate         *validator.Validate
	logger           *slog.Logger
	contextTimeout   time.Duration
	mailTimeout      time.Duration
}

// NewRegistrationService creates a RegistrationService. emailService may be nil. Each confirmation
// email gets its own mailTimeout, independent of the request deadline.
func NewRegistrationService(registrationRepo domain.RegistrationRepository, eventRepo domain.EventRepository, userRepo domain.UserRepository, emailService domain.EmailService, logger *slog.Logger, timeout, mailTimeout time.Duration) domain.RegistrationService {
	return &registrationService{
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		userRepo:         userRepo,
		emailService:     emailService,
		validate:         validator.New(),
		logger:           logger,
		contextTimeout:   timeout,
		mailTimeout:      mailTimeout,
	}
}

func (s *registrationService) Register(ctx context.Context, eventID, userID string, input domain.RegistrationInput) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	// Pre-checks only save a round trip; Register below is authoritative.
	existing, err := s.registrationRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check registration: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrAlreadyRegistered
	}
	if event.AvailableSlots <= 0 {
		return nil, domain.ErrNoSlots
	}

	members, err := s.buildTeam(user, input.Members)
	if err != nil {
		return nil, err
	}
	teamName := strings.TrimSpace(input.TeamName)
	if teamName == "" {
		teamName = user.Name + "'s Team"
	}

	reg := domain.NewRegistration(eventID, userID, teamName, members, time.Now())
	if err := s.registrationRepo.Register(ctx, reg); err != nil {
		switch {
		case errors.Is(err, domain.ErrNoSlots):
			return nil, domain.ErrNoSlots
		case errors.Is(err, domain.ErrAlreadyRegistered):
			return nil, domain.ErrAlreadyRegistered
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.sendConfirmations(ctx, event, reg)
	return reg, nil
}

// buildTeam puts the registering user first and appends the other submitted members. A
// submitted entry with the user's own email fills in the leader's missing details instead.
func (s *registrationService) buildTeam(user *domain.User, submitted []*domain.TeamMember) ([]*domain.TeamMember, error) {
	leader := &domain.TeamMember{Name: user.Name, Email: user.Email}
	if user.Department != nil {
		leader.Department = *user.Department
	}
	team := []*domain.TeamMember{leader}
	for _, m := range submitted {
		if m == nil {
			continue
		}
		member := &domain.TeamMember{
			Name:       strings.TrimSpace(m.Name),
			Email:      strings.TrimSpace(strings.ToLower(m.Email)),
			Department: strings.TrimSpace(m.Department),
			RollNumber: trimmedOrNil(m.RollNumber),
		}
		if strings.EqualFold(member.Email, leader.Email) {
			if leader.Department == "" {
				leader.Department = member.Department
			}
			if leader.RollNumber == nil {
				leader.RollNumber = member.RollNumber
			}
			continue
		}
		team = append(team, member)
	}

	for i, m := range team {
		f := memberFields{Name: m.Name, Email: m.Email, Department: m.Department}
		if m.RollNumber != nil {
			f.RollNumber = *m.RollNumber
		}
		if err := s.validate.Struct(f); err != nil {
			return nil, fmt.Errorf("team member %d: %s: %w", i+1, describeValidation(err), domain.ErrInvalidInput)
		}
	}
	return team, nil
}

// sendConfirmations runs after the registration is committed, so it must not inherit the request
// deadline.
func (s *registrationService) sendConfirmations(ctx context.Context, event *domain.Event, reg *domain.Registration) {
	if s.emailService == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, m := range reg.TeamMembers {
		data := &domain.RegistrationEmailData{
			Email:      m.Email,
			MemberName: m.Name,
			TeamName:   reg.TeamName,
			Event:      event,
		}
		sendCtx, cancel := context.WithTimeout(ctx, s.mailTimeout)
		err := s.emailService.SendRegistrationConfirmation(sendCtx, data)
		cancel()
		if err != nil {
			s.logger.WarnContext(ctx, "registration confirmation failed",
				"registration_id", reg.ID, "email", m.Email, "err", err)
		}
	}
}

func (s *registrationService) ListMine(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	regs, err := s.registrationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.RegistrationWithEvent{}
	}
	return regs, nil
}

func (s *registrationService) ListForEvent(ctx context.Context, eventID, query string) ([]*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	regs, err := s.registrationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event registrations: %w", err)
	}
	out := make([]*domain.Registration, 0, len(regs))
	for _, r := range regs {
		if r.Matches(query) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *registrationService) SetAttendance(ctx context.Context, registrationID string, attended bool) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.registrationRepo.SetAttended(ctx, registrationID, attended)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("set attendance: %w", err)
	}
	return reg, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// describeValidation turns validator errors into "field rule" pairs.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+" "+fe.Tag())
	}
	return strings.Join(parts, ", ")
}
