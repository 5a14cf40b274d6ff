package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"eventify/internal/domain"
)

const minPasswordLen = 8

// DefaultCampusEmailPattern accepts addresses of the form name.123456@dept.ritchennai.edu.in.
const DefaultCampusEmailPattern = `^[a-zA-Z]+\.[0-9]{6}@[a-zA-Z]+\.ritchennai\.edu\.in$`

// AuthConfig holds the sign-up policy.
type AuthConfig struct {
	EmailPattern *regexp.Regexp
	AdminCode    string
	TokenExpiry  time.Duration
}

type authService struct {
	userRepo       domain.UserRepository
	hasher         domain.PasswordHasher
	tokenIssuer    domain.TokenIssuer
	emailService   domain.EmailService
	cfg            AuthConfig
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewAuthService creates an AuthService. emailService may be nil.
func NewAuthService(userRepo domain.UserRepository, hasher domain.PasswordHasher, tokenIssuer domain.TokenIssuer, emailService domain.EmailService, cfg AuthConfig, logger *slog.Logger, timeout time.Duration) domain.AuthService {
	if cfg.EmailPattern == nil {
		cfg.EmailPattern = regexp.MustCompile(DefaultCampusEmailPattern)
	}
	return &authService{
		userRepo:       userRepo,
		hasher:         hasher,
		tokenIssuer:    tokenIssuer,
		emailService:   emailService,
		cfg:            cfg,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *authService) SignUp(ctx context.Context, input domain.SignUpInput) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	email := strings.TrimSpace(strings.ToLower(input.Email))
	if !s.cfg.EmailPattern.MatchString(email) {
		return nil, fmt.Errorf("email must be a campus address: %w", domain.ErrInvalidInput)
	}
	if len(input.Password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, domain.ErrInvalidInput)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", domain.ErrInvalidInput)
	}

	role := input.Role
	switch role {
	case "":
		role = domain.RoleStudent
	case domain.RoleStudent:
	case domain.RoleAdmin:
		if s.cfg.AdminCode == "" || subtle.ConstantTimeCompare([]byte(input.AdminCode), []byte(s.cfg.AdminCode)) != 1 {
			return nil, domain.ErrInvalidAdminCode
		}
	default:
		return nil, fmt.Errorf("unknown role %q: %w", role, domain.ErrInvalidInput)
	}

	var department *string
	if input.Department != nil {
		if d := strings.TrimSpace(*input.Department); d != "" {
			department = &d
		}
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := domain.NewUser(email, name, role, department, now, now)
	user.PasswordHash = hash
	user.Salt = salt
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.emailService != nil {
		data := &domain.WelcomeMessageEmailData{Email: user.Email, Name: user.Name, Role: user.Role}
		if err := s.emailService.SendWelcomeMessage(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "welcome email failed", "user_id", user.ID, "err", err)
		}
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	token, err := s.tokenIssuer.Issue(user.ID, user.Email, user.Role, s.cfg.TokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, user, nil
}

func (s *authService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}
