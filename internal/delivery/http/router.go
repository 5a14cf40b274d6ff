package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventify/internal/delivery/http/controllers"
	"eventify/internal/delivery/http/helpers"
	"eventify/internal/delivery/http/middleware"
	"eventify/internal/domain"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth          *controllers.AuthController
	Events        *controllers.EventController
	Registrations *controllers.RegistrationController
	Feedback      *controllers.FeedbackController
	Reactions     *controllers.ReactionController
	Achievements  *controllers.AchievementController
	Documents     *controllers.DocumentController
	Dashboard     *controllers.DashboardController
	// Realtime serves the WebSocket endpoint; it authenticates on its own.
	Realtime http.Handler
}

// ServiceInfo is returned from the root path.
type ServiceInfo struct {
	Name    string `json:"name"`
	Docs    string `json:"docs"`
	Version string `json:"version"`
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(h Handlers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)
	admin := func(next http.HandlerFunc) http.HandlerFunc { return auth(middleware.RequireAdmin(next)) }

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, ServiceInfo{Name: "eventify", Docs: "/swagger/index.html", Version: "1.0"})
	})

	// Auth
	mux.HandleFunc("POST /api/auth/register", h.Auth.Register)
	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("GET /api/users/me", auth(h.Auth.Me))

	// Events
	mux.HandleFunc("GET /api/events", auth(h.Events.ListEvents))
	mux.HandleFunc("POST /api/events", admin(h.Events.CreateEvent))
	mux.HandleFunc("GET /api/events/{eventID}", auth(h.Events.GetEvent))
	mux.HandleFunc("PATCH /api/events/{eventID}", admin(h.Events.UpdateEvent))
	mux.HandleFunc("DELETE /api/events/{eventID}", admin(h.Events.DeleteEvent))
	mux.HandleFunc("POST /api/events/{eventID}/slots", admin(h.Events.AddSlots))

	// Registrations
	mux.HandleFunc("POST /api/events/{eventID}/registrations", auth(h.Registrations.Register))
	mux.HandleFunc("GET /api/events/{eventID}/registrations", admin(h.Registrations.ListForEvent))
	mux.HandleFunc("GET /api/registrations", auth(h.Registrations.ListMine))
	mux.HandleFunc("PATCH /api/registrations/{registrationID}/attendance", admin(h.Registrations.SetAttendance))
	mux.HandleFunc("POST /api/registrations/{registrationID}/certificate", auth(h.Documents.Certificate))
	mux.HandleFunc("POST /api/registrations/{registrationID}/od-letter", auth(h.Documents.ODLetter))
	mux.HandleFunc("GET /api/documents/{folder}/{file}", auth(h.Documents.Download))

	// Feedback
	mux.HandleFunc("PUT /api/events/{eventID}/feedback", auth(h.Feedback.Submit))
	mux.HandleFunc("GET /api/events/{eventID}/feedback/mine", auth(h.Feedback.Mine))
	mux.HandleFunc("GET /api/events/{eventID}/feedback", admin(h.Feedback.ListForEvent))
	mux.HandleFunc("GET /api/feedback", admin(h.Feedback.ListAll))

	// Reactions
	mux.HandleFunc("POST /api/events/{eventID}/reactions", auth(h.Reactions.Toggle))
	mux.HandleFunc("GET /api/events/{eventID}/reactions", auth(h.Reactions.List))

	mux.HandleFunc("GET /api/achievements", auth(h.Achievements.Get))
	mux.HandleFunc("GET /api/dashboard", auth(h.Dashboard.Get))

	if h.Realtime != nil {
		mux.Handle("GET /ws", h.Realtime)
	}

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "route not found")
	})

	return mux
}
