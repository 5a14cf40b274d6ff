package controllers

import (
	"log/slog"
	"net/http"

	"eventify/internal/delivery/http/helpers"
	"eventify/internal/domain"
)

// ToggleReactionRequest is the request body for POST /api/events/{eventID}/reactions.
type ToggleReactionRequest struct {
	Reaction string `json:"reaction"`
}

// Validate implements Validator.
func (t ToggleReactionRequest) Validate() []string {
	if !domain.ReactionType(t.Reaction).Valid() {
		return []string{"reaction must be one of 👍 👏 ❤️ 🔥 🎉 🤔"}
	}
	return nil
}

type ReactionController struct {
	Logger  *slog.Logger
	Service domain.ReactionService
}

func NewReactionController(logger *slog.Logger, svc domain.ReactionService) *ReactionController {
	return &ReactionController{
		Logger:  logger,
		Service: svc,
	}
}

// Toggle godoc
// @Summary Toggle a reaction
// @Description Adds or removes the caller from the reaction and broadcasts the change to subscribers of reactions:{eventID}. Reactions are not persisted.
// @Tags reactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body ToggleReactionRequest true "Reaction"
// @Success 200 {object} helpers.APIResponse "data contains the toggle result"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /api/events/{eventID}/reactions [post]
func (c *ReactionController) Toggle(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	var req ToggleReactionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	toggle, err := c.Service.Toggle(r.Context(), eventID, p.UserID, domain.ReactionType(req.Reaction))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toggle)
}

// List godoc
// @Summary Get the reactions of an event
// @Tags reactions
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains every reaction with count and users"
// @Router /api/events/{eventID}/reactions [get]
func (c *ReactionController) List(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	reactions, err := c.Service.Get(r.Context(), eventID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reactions)
}
