package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	_ "github.com/lib/pq"

	"eventify/config"
	"eventify/internal/adapters/auth"
	"eventify/internal/adapters/documents"
	"eventify/internal/adapters/email"
	"eventify/internal/adapters/storage"
	"eventify/internal/domain"
	"eventify/internal/repository/postgres"
	"eventify/internal/services"
)

// app holds the dependencies shared by every command.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	loc    *time.Location

	users         domain.UserRepository
	events        domain.EventRepository
	registrations domain.RegistrationRepository
	feedback      domain.FeedbackRepository

	verifier     domain.TokenVerifier
	email        domain.EmailService
	auth         domain.AuthService
	eventService domain.EventService
	registration domain.RegistrationService
	feedbackSvc  domain.FeedbackService
	achievements domain.AchievementService
	documents    domain.DocumentService
	dashboard    domain.DashboardService
	reminders    domain.ReminderService
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, config.NewLogger(), nil
}

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// newApp connects to the database and builds repositories, adapters and services.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	var emailPattern *regexp.Regexp
	if cfg.EmailPattern != "" {
		emailPattern, err = regexp.Compile(cfg.EmailPattern)
		if err != nil {
			return nil, fmt.Errorf("compile CAMPUS_EMAIL_PATTERN: %w", err)
		}
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SendTimeout: cfg.Mail.SendTimeout,
		SES: email.SESConfig{
			Region:             cfg.Mail.SES.Region,
			AccessKeyID:        cfg.Mail.SES.AccessKeyID,
			SecretAccessKey:    cfg.Mail.SES.SecretAccessKey,
			Endpoint:           cfg.Mail.SES.Endpoint,
			InsecureSkipVerify: cfg.Mail.SES.InsecureSkipVerify,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create mailer: %w", err)
	}
	store, err := storage.New(storageConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("create document store: %w", err)
	}
	renderer, err := documents.NewRenderer(loc)
	if err != nil {
		return nil, err
	}

	db, err := openDB(ctx, cfg.DBUrl)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:           cfg,
		logger:        logger,
		db:            db,
		loc:           loc,
		users:         postgres.NewUserRepository(db),
		events:        postgres.NewEventRepository(db),
		registrations: postgres.NewRegistrationRepository(db),
		feedback:      postgres.NewFeedbackRepository(db),
		verifier:      auth.NewJWTVerifier(cfg.JWTSecret),
	}
	timeout := cfg.RequestTimeout

	a.email = services.NewEmailService(mailer, email.NewTemplateRenderer(loc))
	a.auth = services.NewAuthService(a.users, auth.NewBcryptHasher(cfg.BcryptCost), auth.NewJWTIssuer(cfg.JWTSecret), a.email, services.AuthConfig{
		EmailPattern: emailPattern,
		AdminCode:    cfg.AdminCode,
		TokenExpiry:  cfg.TokenExpiry,
	}, logger, timeout)
	a.eventService = services.NewEventService(a.events, timeout)
	a.registration = services.NewRegistrationService(a.registrations, a.events, a.users, a.email, logger, timeout, cfg.Mail.SendTimeout)
	a.feedbackSvc = services.NewFeedbackService(a.feedback, a.registrations, a.events, timeout)
	a.achievements = services.NewAchievementService(a.users, a.registrations, a.feedback, nil, logger, timeout)
	a.documents = services.NewDocumentService(a.registrations, a.events, renderer, store, timeout)
	a.dashboard = services.NewDashboardService(a.users, a.events, a.registrations, a.achievements, timeout)
	a.reminders = services.NewReminderService(a.events, a.registrations, a.email, loc, logger)
	return a, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func storageConfig(cfg *config.Config) storage.Config {
	return storage.Config{
		Provider:     cfg.Storage.Provider,
		LocalDir:     cfg.Storage.LocalDir,
		LocalBaseURL: cfg.Storage.LocalBaseURL,
		S3: storage.S3Config{
			Bucket:             cfg.Storage.Bucket,
			Region:             cfg.Storage.S3.Region,
			AccessKeyID:        cfg.Storage.S3.AccessKeyID,
			SecretAccessKey:    cfg.Storage.S3.SecretAccessKey,
			Endpoint:           cfg.Storage.S3.Endpoint,
			UsePathStyle:       cfg.Storage.UsePathStyle,
			InsecureSkipVerify: cfg.Storage.S3.InsecureSkipVerify,
			PublicBaseURL:      cfg.Storage.PublicBaseURL,
			PresignExpiry:      cfg.Storage.PresignExpiry,
		},
	}
}
