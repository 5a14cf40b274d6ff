package controllers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"eventify/internal/delivery/http/helpers"
	"eventify/internal/domain"
)

// SubmitFeedbackRequest is the request body for PUT /api/events/{eventID}/feedback.
type SubmitFeedbackRequest struct {
	OverallRating      int     `json:"overall_rating"`
	WasInformative     bool    `json:"was_informative"`
	OrganizationRating string  `json:"organization_rating"`
	AdditionalComments *string `json:"additional_comments"`
}

// FeedbackListResponse is the data payload of feedback listings.
type FeedbackListResponse struct {
	Entries []*domain.Feedback      `json:"entries"`
	Summary *domain.FeedbackSummary `json:"summary"`
}

type FeedbackController struct {
	Logger  *slog.Logger
	Service domain.FeedbackService
}

func NewFeedbackController(logger *slog.Logger, svc domain.FeedbackService) *FeedbackController {
	return &FeedbackController{
		Logger:  logger,
		Service: svc,
	}
}

// Submit godoc
// @Summary Submit feedback for an event
// @Description Creates or replaces the caller's single feedback entry. Only registered participants may submit.
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body SubmitFeedbackRequest true "Feedback"
// @Success 200 {object} helpers.APIResponse "data contains the stored feedback"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{eventID}/feedback [put]
func (c *FeedbackController) Submit(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	var req SubmitFeedbackRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	fb, err := c.Service.Submit(r.Context(), eventID, p.UserID, domain.FeedbackInput{
		OverallRating:      req.OverallRating,
		WasInformative:     req.WasInformative,
		OrganizationRating: domain.OrganizationRating(req.OrganizationRating),
		AdditionalComments: req.AdditionalComments,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, fb)
}

// Mine godoc
// @Summary Get my feedback for an event
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the feedback"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{eventID}/feedback/mine [get]
func (c *FeedbackController) Mine(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	fb, err := c.Service.Mine(r.Context(), eventID, p.UserID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, fb)
}

// ListForEvent godoc
// @Summary List the feedback of an event
// @Description Admin only. Includes the aggregate summary.
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains entries and summary"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{eventID}/feedback [get]
func (c *FeedbackController) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	entries, summary, err := c.Service.ListForEvent(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, FeedbackListResponse{Entries: entries, Summary: summary})
}

// ListAll godoc
// @Summary List all feedback
// @Description Admin only. event_id narrows the listing to one event.
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Param event_id query string false "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains entries and summary"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /api/feedback [get]
func (c *FeedbackController) ListAll(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("event_id")
	if eventID != "" {
		id, err := uuid.Parse(eventID)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "event_id must be a UUID")
			return
		}
		eventID = id.String()
	}
	entries, summary, err := c.Service.ListAll(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, FeedbackListResponse{Entries: entries, Summary: summary})
}
