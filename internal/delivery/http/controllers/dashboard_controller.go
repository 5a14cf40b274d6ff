package controllers

import (
	"log/slog"
	"net/http"

	"eventify/internal/delivery/http/helpers"
	"eventify/internal/domain"
)

type DashboardController struct {
	Logger  *slog.Logger
	Service domain.DashboardService
}

func NewDashboardController(logger *slog.Logger, svc domain.DashboardService) *DashboardController {
	return &DashboardController{Logger: logger, Service: svc}
}

// Get godoc
// @Summary Get my dashboard
// @Description Students get their registrations and achievements; admins get every event with its registration count.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the dashboard"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/dashboard [get]
func (c *DashboardController) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	dash, err := c.Service.ForUser(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, dash)
}
