package controllers

import (
	"log/slog"
	"net/http"

	"eventify/internal/delivery/http/helpers"
	"eventify/internal/domain"
)

type AchievementController struct {
	Logger  *slog.Logger
	Service domain.AchievementService
}

func NewAchievementController(logger *slog.Logger, svc domain.AchievementService) *AchievementController {
	return &AchievementController{Logger: logger, Service: svc}
}

// Get godoc
// @Summary Get my achievements
// @Description Badges, points and level. new_achievement is true when more badges are earned than at the previous check.
// @Tags achievements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the achievement report"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/achievements [get]
func (c *AchievementController) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	report, err := c.Service.ForUser(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}
