package controllers

import (
	"log/slog"
	"net/http"

	"eventify/internal/delivery/http/helpers"
	"eventify/internal/domain"
)

// TeamMemberRequest is one member of a team registration.
type TeamMemberRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Department string  `json:"department"`
	RollNumber *string `json:"roll_number"`
}

// RegisterForEventRequest is the request body for POST /api/events/{eventID}/registrations.
// The authenticated user is always listed first; a member with the user's email is merged into that entry.
type RegisterForEventRequest struct {
	TeamName string              `json:"team_name"`
	Members  []TeamMemberRequest `json:"members"`
}

// AttendanceRequest is the request body for PATCH /api/registrations/{registrationID}/attendance.
type AttendanceRequest struct {
	Attended *bool `json:"attended"`
}

// Validate implements Validator.
func (a AttendanceRequest) Validate() []string {
	if a.Attended == nil {
		return []string{"attended is required"}
	}
	return nil
}

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// Register godoc
// @Summary Register a team for an event
// @Description Consumes one slot. Fails with already_registered or no_slots without changing any state.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body RegisterForEventRequest true "Team"
// @Success 201 {object} helpers.APIResponse "data contains the registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: already_registered or no_slots"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/events/{eventID}/registrations [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	var req RegisterForEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	members := make([]*domain.TeamMember, 0, len(req.Members))
	for _, m := range req.Members {
		members = append(members, &domain.TeamMember{
			Name:       m.Name,
			Email:      m.Email,
			Department: m.Department,
			RollNumber: m.RollNumber,
		})
	}
	reg, err := c.Service.Register(r.Context(), eventID, p.UserID, domain.RegistrationInput{
		TeamName: req.TeamName,
		Members:  members,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// ListMine godoc
// @Summary List my registrations
// @Description Registrations of the authenticated user with their events, newest first.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains registrations with events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/registrations [get]
func (c *RegistrationController) ListMine(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	regs, err := c.Service.ListMine(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}

// ListForEvent godoc
// @Summary List the registrations of an event
// @Description Admin only. q filters by team name or member name, email, department or roll number.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param q query string false "Search text"
// @Success 200 {object} helpers.APIResponse "data contains registrations"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{eventID}/registrations [get]
func (c *RegistrationController) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	regs, err := c.Service.ListForEvent(r.Context(), eventID, r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}

// SetAttendance godoc
// @Summary Mark attendance
// @Description Admin only.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param registrationID path string true "Registration ID (UUID)"
// @Param body body AttendanceRequest true "Attendance"
// @Success 200 {object} helpers.APIResponse "data contains the registration"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/registrations/{registrationID}/attendance [patch]
func (c *RegistrationController) SetAttendance(w http.ResponseWriter, r *http.Request) {
	regID, ok := helpers.PathID(w, r, "registrationID")
	if !ok {
		return
	}
	var req AttendanceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reg, err := c.Service.SetAttendance(r.Context(), regID, *req.Attended)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}
