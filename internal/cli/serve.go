package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	_ "eventify/docs"
	httpdelivery "eventify/internal/delivery/http"
	"eventify/internal/delivery/http/controllers"
	"eventify/internal/delivery/http/middleware"
	"eventify/internal/delivery/ws"
	"eventify/internal/realtime"
	"eventify/internal/repository/postgres"
	"eventify/internal/services"
)

// NewServeCommand runs the HTTP API, the realtime feed and the reminder schedule.
func NewServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply migrations before serving")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if migrate {
		applied, err := postgres.Migrate(ctx, a.db)
		if err != nil {
			return err
		}
		logger.Info("migrations applied", "count", len(applied))
	}

	hub := realtime.NewHub(cfg.HubBuffer)
	catalog := realtime.NewCatalog(a.events)
	if err := catalog.Load(ctx); err != nil {
		return fmt.Errorf("load event catalog: %w", err)
	}
	dispatcher := realtime.NewDispatcher(catalog, a.events, hub, logger)
	listener := postgres.NewChangeListener(cfg.DBUrl, logger, dispatcher.Handle, dispatcher.Resync)
	reactions := services.NewReactionService(hub)

	handlers := httpdelivery.Handlers{
		Auth:          controllers.NewAuthController(logger, a.auth),
		Events:        controllers.NewEventController(logger, a.eventService),
		Registrations: controllers.NewRegistrationController(logger, a.registration),
		Feedback:      controllers.NewFeedbackController(logger, a.feedbackSvc),
		Reactions:     controllers.NewReactionController(logger, reactions),
		Achievements:  controllers.NewAchievementController(logger, a.achievements),
		Documents:     controllers.NewDocumentController(logger, a.documents),
		Dashboard:     controllers.NewDashboardController(logger, a.dashboard),
		Realtime:      ws.NewHandler(logger, a.verifier, hub, catalog, reactions),
	}
	mux := httpdelivery.NewRouter(handlers, a.verifier, logger)

	scheduler := cron.New(
		cron.WithLocation(a.loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := scheduler.AddFunc(cfg.ReminderCron, func() {
		runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()
		res, err := a.reminders.SendTomorrow(runCtx, time.Now())
		if err != nil {
			logger.Error("reminder run failed", "err", err)
			return
		}
		logger.Info("reminder run finished", "events", res.Events, "sent", res.Sent, "failed", res.Failed)
	}); err != nil {
		return fmt.Errorf("schedule reminders %q: %w", cfg.ReminderCron, err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	listenCtx, cancelListener := context.WithCancel(ctx)
	defer cancelListener()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := listener.Run(listenCtx); err != nil {
			logger.Error("change listener stopped", "err", err)
		}
	}()

	scheduler.Start()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			stopBackground(scheduler, cancelListener, &wg)
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	stopBackground(scheduler, cancelListener, &wg)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func stopBackground(scheduler *cron.Cron, cancelListener context.CancelFunc, wg *sync.WaitGroup) {
	<-scheduler.Stop().Done()
	cancelListener()
	wg.Wait()
}
