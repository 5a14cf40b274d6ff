package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventify/internal/delivery/http/helpers"
	"eventify/internal/domain"
)

func TestRegistrationController_Register(t *testing.T) {
	body := RegisterForEventRequest{
		TeamName: "Gearheads",
		Members: []TeamMemberRequest{
			{Name: "Vikram", Email: "vikram.654321@ece.ritchennai.edu.in", Department: "ECE"},
		},
	}
	target := "/api/events/" + testEventID + "/registrations"

	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{name: "created", wantStatus: http.StatusCreated},
		{name: "already registered", svcErr: domain.ErrAlreadyRegistered, wantStatus: http.StatusConflict, wantCode: helpers.ErrCodeAlreadyRegistered},
		{name: "no slots", svcErr: domain.ErrNoSlots, wantStatus: http.StatusConflict, wantCode: helpers.ErrCodeNoSlots},
		{name: "event gone", svcErr: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: helpers.ErrCodeNotFound},
		{name: "member invalid", svcErr: fmt.Errorf("member 2: email is invalid: %w", domain.ErrInvalidInput), wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeRegistrationService{reg: &domain.Registration{ID: testRegID, EventID: testEventID}, err: tt.svcErr}
			c := NewRegistrationController(testLogger, svc)

			rr := serve(t, "POST /api/events/{eventID}/registrations", c.Register, http.MethodPost, target, body, student)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, testUserID, svc.lastUser)
			assert.Equal(t, "Gearheads", svc.lastInput.TeamName)
			require.Len(t, svc.lastInput.Members, 1)
			assert.Equal(t, "ECE", svc.lastInput.Members[0].Department)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeEnvelope(t, rr, nil).Code)
			}
		})
	}
}

func TestRegistrationController_ListMine(t *testing.T) {
	svc := &fakeRegistrationService{mine: []*domain.RegistrationWithEvent{
		{Registration: &domain.Registration{ID: testRegID}, Event: &domain.Event{ID: testEventID}},
	}}
	c := NewRegistrationController(testLogger, svc)

	rr := serve(t, "GET /api/registrations", c.ListMine, http.MethodGet, "/api/registrations", nil, student)

	require.Equal(t, http.StatusOK, rr.Code)
	var got []domain.RegistrationWithEvent
	require.Nil(t, decodeEnvelope(t, rr, &got))
	require.Len(t, got, 1)
	assert.Equal(t, testRegID, got[0].Registration.ID)
	assert.Equal(t, testUserID, svc.lastUser)
}

func TestRegistrationController_ListForEvent(t *testing.T) {
	svc := &fakeRegistrationService{regs: []*domain.Registration{{ID: testRegID, TeamName: "Gearheads"}}}
	c := NewRegistrationController(testLogger, svc)

	rr := serve(t, "GET /api/events/{eventID}/registrations", c.ListForEvent, http.MethodGet,
		"/api/events/"+testEventID+"/registrations?q=gear", nil, admin)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "gear", svc.lastQuery)
}

func TestRegistrationController_SetAttendance(t *testing.T) {
	target := "/api/registrations/" + testRegID + "/attendance"

	t.Run("marks attended", func(t *testing.T) {
		svc := &fakeRegistrationService{reg: &domain.Registration{ID: testRegID, Attended: true}}
		c := NewRegistrationController(testLogger, svc)
		rr := serve(t, "PATCH /api/registrations/{registrationID}/attendance", c.SetAttendance, http.MethodPatch, target, `{"attended":true}`, admin)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, svc.attended)
	})

	t.Run("attended required", func(t *testing.T) {
		c := NewRegistrationController(testLogger, &fakeRegistrationService{})
		rr := serve(t, "PATCH /api/registrations/{registrationID}/attendance", c.SetAttendance, http.MethodPatch, target, `{}`, admin)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "attended is required", decodeEnvelope(t, rr, nil).Message)
	})
}
