package controllers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventify/internal/delivery/http/helpers"
	"eventify/internal/domain"
)

func TestReactionController_Toggle(t *testing.T) {
	target := "/api/events/" + testEventID + "/reactions"

	t.Run("toggles", func(t *testing.T) {
		svc := &fakeReactionService{toggle: &domain.ReactionToggle{EventID: testEventID, Reaction: domain.ReactionFire, UserID: testUserID, Active: true, Count: 1}}
		c := NewReactionController(testLogger, svc)
		rr := serve(t, "POST /api/events/{eventID}/reactions", c.Toggle, http.MethodPost, target, ToggleReactionRequest{Reaction: "🔥"}, student)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, domain.ReactionFire, svc.lastType)
		var got domain.ReactionToggle
		require.Nil(t, decodeEnvelope(t, rr, &got))
		assert.True(t, got.Active)
	})

	t.Run("unknown reaction", func(t *testing.T) {
		c := NewReactionController(testLogger, &fakeReactionService{})
		rr := serve(t, "POST /api/events/{eventID}/reactions", c.Toggle, http.MethodPost, target, ToggleReactionRequest{Reaction: "💩"}, student)
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestReactionController_List(t *testing.T) {
	board := domain.NewReactionBoard()
	board.Toggle(domain.ReactionHeart, testUserID)
	c := NewReactionController(testLogger, &fakeReactionService{reactions: board.Snapshot()})

	rr := serve(t, "GET /api/events/{eventID}/reactions", c.List, http.MethodGet, "/api/events/"+testEventID+"/reactions", nil, student)

	require.Equal(t, http.StatusOK, rr.Code)
	var got []domain.Reaction
	require.Nil(t, decodeEnvelope(t, rr, &got))
	require.Len(t, got, len(domain.ReactionTypes))
	assert.Equal(t, domain.ReactionHeart, got[2].Type)
	assert.Equal(t, 1, got[2].Count)
}

func TestDocumentController(t *testing.T) {
	doc := &domain.Document{Kind: domain.DocumentCertificate, RegistrationID: testRegID, URL: "/api/documents/certificates/" + testRegID + ".html"}

	tests := []struct {
		name       string
		pattern    string
		target     string
		pick       func(c *DocumentController) http.HandlerFunc
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{
			name: "certificate", pattern: "POST /api/registrations/{registrationID}/certificate",
			target: "/api/registrations/" + testRegID + "/certificate",
			pick:   func(c *DocumentController) http.HandlerFunc { return c.Certificate }, wantStatus: http.StatusCreated,
		},
		{
			name: "certificate before attendance", pattern: "POST /api/registrations/{registrationID}/certificate",
			target: "/api/registrations/" + testRegID + "/certificate",
			pick:   func(c *DocumentController) http.HandlerFunc { return c.Certificate },
			svcErr: domain.ErrNotAttended, wantStatus: http.StatusConflict, wantCode: helpers.ErrCodeNotAttended,
		},
		{
			name: "od letter of someone else", pattern: "POST /api/registrations/{registrationID}/od-letter",
			target: "/api/registrations/" + testRegID + "/od-letter",
			pick:   func(c *DocumentController) http.HandlerFunc { return c.ODLetter },
			svcErr: domain.ErrForbidden, wantStatus: http.StatusForbidden, wantCode: helpers.ErrCodeForbidden,
		},
		{
			name: "storage failure", pattern: "POST /api/registrations/{registrationID}/od-letter",
			target: "/api/registrations/" + testRegID + "/od-letter",
			pick:   func(c *DocumentController) http.HandlerFunc { return c.ODLetter },
			svcErr: errors.New("bucket unreachable"), wantStatus: http.StatusInternalServerError, wantCode: helpers.ErrCodeInternalError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeDocumentService{doc: doc, err: tt.svcErr}
			c := NewDocumentController(testLogger, svc)

			rr := serve(t, tt.pattern, tt.pick(c), http.MethodPost, tt.target, nil, student)

			require.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, testUserID, svc.lastUser)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeEnvelope(t, rr, nil).Code)
			}
		})
	}
}

func TestDocumentController_Download(t *testing.T) {
	const pattern = "GET /api/documents/{folder}/{file}"
	letter := &domain.Document{
		Kind:           domain.DocumentODLetter,
		RegistrationID: testRegID,
		ContentType:    "text/plain; charset=utf-8",
		Content:        "To the HOD, CSE",
	}

	t.Run("owner gets the body", func(t *testing.T) {
		svc := &fakeDocumentService{doc: letter}
		c := NewDocumentController(testLogger, svc)
		rr := serve(t, pattern, c.Download, http.MethodGet, "/api/documents/od-letters/"+testRegID+".txt", nil, student)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "To the HOD, CSE", rr.Body.String())
		assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
		assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, testUserID, svc.lastUser)
		assert.Equal(t, testRegID, svc.lastReg)
		assert.Equal(t, domain.DocumentODLetter, svc.lastKind)
	})

	t.Run("someone else's document", func(t *testing.T) {
		c := NewDocumentController(testLogger, &fakeDocumentService{err: domain.ErrForbidden})
		rr := serve(t, pattern, c.Download, http.MethodGet, "/api/documents/certificates/"+testRegID+".html", nil, student)

		require.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, helpers.ErrCodeForbidden, decodeEnvelope(t, rr, nil).Code)
	})

	for _, target := range []string{
		"/api/documents/uploads/" + testRegID + ".txt",
		"/api/documents/od-letters/" + testRegID + ".html",
		"/api/documents/od-letters/not-a-uuid.txt",
	} {
		t.Run("unknown "+target, func(t *testing.T) {
			svc := &fakeDocumentService{doc: letter}
			c := NewDocumentController(testLogger, svc)
			rr := serve(t, pattern, c.Download, http.MethodGet, target, nil, student)

			require.Equal(t, http.StatusNotFound, rr.Code)
			assert.Equal(t, helpers.ErrCodeNotFound, decodeEnvelope(t, rr, nil).Code)
			assert.Empty(t, svc.lastUser)
		})
	}
}

func TestAchievementController_Get(t *testing.T) {
	report := &domain.AchievementReport{EarnedCount: 1, Points: domain.NewUserPoints(50), NewAchievement: true}
	c := NewAchievementController(testLogger, &fakeAchievementService{report: report})

	rr := serve(t, "GET /api/achievements", c.Get, http.MethodGet, "/api/achievements", nil, student)

	require.Equal(t, http.StatusOK, rr.Code)
	var got domain.AchievementReport
	require.Nil(t, decodeEnvelope(t, rr, &got))
	assert.True(t, got.NewAchievement)
	assert.Equal(t, 1, got.Points.Level)
	assert.Equal(t, 50, got.Points.LevelProgress)
}

func TestDashboardController_Get(t *testing.T) {
	dash := &domain.Dashboard{
		User:  &domain.User{ID: "admin-1", Role: domain.RoleAdmin},
		Admin: &domain.AdminDashboard{TotalRegistrations: 3},
	}
	c := NewDashboardController(testLogger, &fakeDashboardService{dash: dash})

	rr := serve(t, "GET /api/dashboard", c.Get, http.MethodGet, "/api/dashboard", nil, admin)

	require.Equal(t, http.StatusOK, rr.Code)
	var got domain.Dashboard
	require.Nil(t, decodeEnvelope(t, rr, &got))
	require.NotNil(t, got.Admin)
	assert.Nil(t, got.Student)
	assert.Equal(t, 3, got.Admin.TotalRegistrations)

	rr = serve(t, "GET /api/dashboard", c.Get, http.MethodGet, "/api/dashboard", nil, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
