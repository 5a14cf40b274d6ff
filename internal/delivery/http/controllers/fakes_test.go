package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"eventify/internal/delivery/http/helpers"
	"eventify/internal/delivery/http/middleware"
	"eventify/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testEventID = "6f1c2b1e-3d4a-4b5c-8d9e-0f1a2b3c4d5e"
	testRegID   = "0b4a8f0c-9e2d-4c1a-a7b3-5d6e7f8091a2"
	testUserID  = "user-1"
)

var (
	student = &domain.Principal{UserID: testUserID, Email: "asha.123456@cse.ritchennai.edu.in", Role: domain.RoleStudent}
	admin   = &domain.Principal{UserID: "admin-1", Email: "ravi.654321@cse.ritchennai.edu.in", Role: domain.RoleAdmin}
)

// serve routes a request through a mux registered with pattern so path values are populated.
func serve(t *testing.T, pattern string, handler http.HandlerFunc, method, target string, body any, p *domain.Principal) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if p != nil {
		req = req.WithContext(middleware.SetPrincipal(req.Context(), p))
	}
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

// decodeEnvelope decodes the response envelope, unmarshalling data into dest when non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) *helpers.APIError {
	t.Helper()
	var env struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	if dest != nil && env.Error == nil {
		require.NoError(t, json.Unmarshal(env.Data, dest))
	}
	return env.Error
}

type fakeAuthService struct {
	signUpUser *domain.User
	signUpErr  error
	lastSignUp domain.SignUpInput
	token      string
	loginUser  *domain.User
	loginErr   error
	user       *domain.User
	getErr     error
}

func (f *fakeAuthService) SignUp(ctx context.Context, input domain.SignUpInput) (*domain.User, error) {
	f.lastSignUp = input
	return f.signUpUser, f.signUpErr
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.token, f.loginUser, nil
}

func (f *fakeAuthService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return f.user, f.getErr
}

type fakeEventService struct {
	created   *domain.Event
	createErr error
	event     *domain.Event
	err       error
	events    []*domain.Event
	total     int
	params    domain.PaginationParams
	patch     domain.EventPatch
	slotsN    int
	deletedID string
}

func (f *fakeEventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	event.ID = testEventID
	f.created = event
	return nil
}

func (f *fakeEventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	return f.event, f.err
}

func (f *fakeEventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.params = params
	return f.events, f.total, f.err
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	f.patch = patch
	return f.event, f.err
}

func (f *fakeEventService) AddSlots(ctx context.Context, id string, n int) (*domain.Event, error) {
	f.slotsN = n
	return f.event, f.err
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, id string) error {
	f.deletedID = id
	return f.err
}

type fakeRegistrationService struct {
	reg       *domain.Registration
	regs      []*domain.Registration
	mine      []*domain.RegistrationWithEvent
	err       error
	lastInput domain.RegistrationInput
	lastUser  string
	lastQuery string
	attended  bool
}

func (f *fakeRegistrationService) Register(ctx context.Context, eventID, userID string, input domain.RegistrationInput) (*domain.Registration, error) {
	f.lastInput = input
	f.lastUser = userID
	return f.reg, f.err
}

func (f *fakeRegistrationService) ListMine(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	f.lastUser = userID
	return f.mine, f.err
}

func (f *fakeRegistrationService) ListForEvent(ctx context.Context, eventID, query string) ([]*domain.Registration, error) {
	f.lastQuery = query
	return f.regs, f.err
}

func (f *fakeRegistrationService) SetAttendance(ctx context.Context, registrationID string, attended bool) (*domain.Registration, error) {
	f.attended = attended
	return f.reg, f.err
}

type fakeFeedbackService struct {
	fb        *domain.Feedback
	entries   []*domain.Feedback
	summary   *domain.FeedbackSummary
	err       error
	lastInput domain.FeedbackInput
	lastEvent string
}

func (f *fakeFeedbackService) Submit(ctx context.Context, eventID, userID string, input domain.FeedbackInput) (*domain.Feedback, error) {
	f.lastInput = input
	return f.fb, f.err
}

func (f *fakeFeedbackService) Mine(ctx context.Context, eventID, userID string) (*domain.Feedback, error) {
	return f.fb, f.err
}

func (f *fakeFeedbackService) ListForEvent(ctx context.Context, eventID string) ([]*domain.Feedback, *domain.FeedbackSummary, error) {
	f.lastEvent = eventID
	return f.entries, f.summary, f.err
}

func (f *fakeFeedbackService) ListAll(ctx context.Context, eventID string) ([]*domain.Feedback, *domain.FeedbackSummary, error) {
	f.lastEvent = eventID
	return f.entries, f.summary, f.err
}

type fakeReactionService struct {
	toggle    *domain.ReactionToggle
	reactions []domain.Reaction
	err       error
	lastType  domain.ReactionType
}

func (f *fakeReactionService) Toggle(ctx context.Context, eventID, userID string, reaction domain.ReactionType) (*domain.ReactionToggle, error) {
	f.lastType = reaction
	return f.toggle, f.err
}

func (f *fakeReactionService) Get(ctx context.Context, eventID string) ([]domain.Reaction, error) {
	return f.reactions, f.err
}

type fakeDocumentService struct {
	doc      *domain.Document
	err      error
	lastUser string
	lastReg  string
	lastKind domain.DocumentKind
}

func (f *fakeDocumentService) Download(ctx context.Context, registrationID, userID string, kind domain.DocumentKind) (*domain.Document, error) {
	f.lastUser, f.lastReg, f.lastKind = userID, registrationID, kind
	return f.doc, f.err
}

func (f *fakeDocumentService) Certificate(ctx context.Context, registrationID, userID string) (*domain.Document, error) {
	f.lastUser = userID
	return f.doc, f.err
}

func (f *fakeDocumentService) ODLetter(ctx context.Context, registrationID, userID string) (*domain.Document, error) {
	f.lastUser = userID
	return f.doc, f.err
}

type fakeAchievementService struct {
	report *domain.AchievementReport
	err    error
}

func (f *fakeAchievementService) ForUser(ctx context.Context, userID string) (*domain.AchievementReport, error) {
	return f.report, f.err
}

type fakeDashboardService struct {
	dash *domain.Dashboard
	err  error
}

func (f *fakeDashboardService) ForUser(ctx context.Context, userID string) (*domain.Dashboard, error) {
	return f.dash, f.err
}
