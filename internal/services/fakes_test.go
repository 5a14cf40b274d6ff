package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"eventify/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeDB is an in-memory store shared by the fake repositories so that registrations can
// consume event slots under one lock, the way the SQL transaction does.
type fakeDB struct {
	mu            sync.Mutex
	events        map[string]*domain.Event
	registrations map[string]*domain.Registration
	users         map[string]*domain.User
	feedback      map[string]*domain.Feedback
	achievements  map[string]*int
	nextID        int

	registerErr error
	listErr     error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		events:        make(map[string]*domain.Event),
		registrations: make(map[string]*domain.Registration),
		users:         make(map[string]*domain.User),
		feedback:      make(map[string]*domain.Feedback),
		achievements:  make(map[string]*int),
		nextID:        1,
	}
}

func (db *fakeDB) id(prefix string) string {
	id := fmt.Sprintf("%s-%d", prefix, db.nextID)
	db.nextID++
	return id
}

func (db *fakeDB) addEvent(e *domain.Event) *domain.Event {
	db.mu.Lock()
	defer db.mu.Unlock()
	if e.ID == "" {
		e.ID = db.id("ev")
	}
	db.events[e.ID] = e
	return e
}

func (db *fakeDB) addUser(u *domain.User) *domain.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	if u.ID == "" {
		u.ID = db.id("u")
	}
	db.users[u.ID] = u
	return u
}

func (db *fakeDB) addRegistration(r *domain.Registration) *domain.Registration {
	db.mu.Lock()
	defer db.mu.Unlock()
	if r.ID == "" {
		r.ID = db.id("reg")
	}
	db.registrations[r.ID] = r
	return r
}

func (db *fakeDB) event(id string) domain.Event {
	db.mu.Lock()
	defer db.mu.Unlock()
	return *db.events[id]
}

func (db *fakeDB) registrationCount(eventID string) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, r := range db.registrations {
		if r.EventID == eventID {
			n++
		}
	}
	return n
}

// fakeEventRepo implements domain.EventRepository.
type fakeEventRepo struct{ db *fakeDB }

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.db.addEvent(e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	e, ok := f.db.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) sorted() []*domain.Event {
	out := make([]*domain.Event, 0, len(f.db.events))
	for _, e := range f.db.events {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func (f *fakeEventRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	all := f.sorted()
	start := params.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + params.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (f *fakeEventRepo) ListAll(ctx context.Context) ([]*domain.Event, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.listErr != nil {
		return nil, f.db.listErr
	}
	return f.sorted(), nil
}

func (f *fakeEventRepo) ListBetween(ctx context.Context, from, to time.Time) ([]*domain.Event, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*domain.Event
	for _, e := range f.sorted() {
		if !e.Date.Before(from) && e.Date.Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	e, ok := f.db.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.TotalSlots != nil {
		taken := e.TakenSlots()
		if *patch.TotalSlots < taken {
			return nil, domain.ErrInvalidInput
		}
		e.TotalSlots = *patch.TotalSlots
		e.AvailableSlots = *patch.TotalSlots - taken
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Location != nil {
		e.Location = *patch.Location
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.ImageURL != nil {
		e.ImageURL = patch.ImageURL
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) AddSlots(ctx context.Context, id string, n int) (*domain.Event, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	e, ok := f.db.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.TotalSlots += n
	e.AvailableSlots += n
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.db.events, id)
	for rid, r := range f.db.registrations {
		if r.EventID == id {
			delete(f.db.registrations, rid)
		}
	}
	return nil
}

// fakeRegistrationRepo implements domain.RegistrationRepository.
type fakeRegistrationRepo struct{ db *fakeDB }

func (f *fakeRegistrationRepo) Register(ctx context.Context, reg *domain.Registration) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.registerErr != nil {
		return f.db.registerErr
	}
	e, ok := f.db.events[reg.EventID]
	if !ok {
		return domain.ErrNotFound
	}
	if e.AvailableSlots <= 0 {
		return domain.ErrNoSlots
	}
	for _, r := range f.db.registrations {
		if r.EventID == reg.EventID && r.UserID == reg.UserID {
			return domain.ErrAlreadyRegistered
		}
	}
	e.AvailableSlots--
	reg.ID = f.db.id("reg")
	for _, m := range reg.TeamMembers {
		m.ID = f.db.id("tm")
		m.RegistrationID = reg.ID
	}
	f.db.registrations[reg.ID] = reg
	return nil
}

func (f *fakeRegistrationRepo) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.registrations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeRegistrationRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, r := range f.db.registrations {
		if r.EventID == eventID && r.UserID == userID {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.RegistrationWithEvent, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*domain.RegistrationWithEvent
	for _, r := range f.db.registrations {
		if r.UserID != userID {
			continue
		}
		e := f.db.events[r.EventID]
		out = append(out, &domain.RegistrationWithEvent{Registration: r, Event: e})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Registration.RegistrationDate.After(out[j].Registration.RegistrationDate)
	})
	return out, nil
}

func (f *fakeRegistrationRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.db.listErr != nil {
		return nil, f.db.listErr
	}
	var out []*domain.Registration
	for _, r := range f.db.registrations {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRegistrationRepo) CountByEvent(ctx context.Context) (map[string]int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := make(map[string]int)
	for _, r := range f.db.registrations {
		out[r.EventID]++
	}
	return out, nil
}

func (f *fakeRegistrationRepo) SetAttended(ctx context.Context, id string, attended bool) (*domain.Registration, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.registrations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	r.Attended = attended
	return r, nil
}

func (f *fakeRegistrationRepo) MarkGenerated(ctx context.Context, id string, kind domain.DocumentKind) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.registrations[id]
	if !ok {
		return domain.ErrNotFound
	}
	switch kind {
	case domain.DocumentCertificate:
		r.CertificateGenerated = true
	case domain.DocumentODLetter:
		r.ODLetterGenerated = true
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

// fakeUserRepo implements domain.UserRepository.
type fakeUserRepo struct {
	db      *fakeDB
	swapErr error
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.users {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = f.db.id("u")
	f.db.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) SwapAchievementCount(ctx context.Context, id string, n int) (*int, error) {
	if f.swapErr != nil {
		return nil, f.swapErr
	}
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	prev := f.db.achievements[id]
	f.db.achievements[id] = &n
	return prev, nil
}

// fakeFeedbackRepo implements domain.FeedbackRepository.
type fakeFeedbackRepo struct{ db *fakeDB }

func feedbackKey(eventID, userID string) string { return eventID + "/" + userID }

func (f *fakeFeedbackRepo) Upsert(ctx context.Context, fb *domain.Feedback) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	key := feedbackKey(fb.EventID, fb.UserID)
	if existing, ok := f.db.feedback[key]; ok {
		fb.ID = existing.ID
	} else {
		fb.ID = f.db.id("fb")
	}
	cp := *fb
	f.db.feedback[key] = &cp
	return nil
}

func (f *fakeFeedbackRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Feedback, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	fb, ok := f.db.feedback[feedbackKey(eventID, userID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return fb, nil
}

func (f *fakeFeedbackRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Feedback, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*domain.Feedback
	for _, fb := range f.db.feedback {
		if fb.EventID == eventID {
			out = append(out, fb)
		}
	}
	return out, nil
}

func (f *fakeFeedbackRepo) ListAll(ctx context.Context) ([]*domain.Feedback, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := make([]*domain.Feedback, 0, len(f.db.feedback))
	for _, fb := range f.db.feedback {
		out = append(out, fb)
	}
	return out, nil
}

func (f *fakeFeedbackRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	n := 0
	for _, fb := range f.db.feedback {
		if fb.UserID == userID {
			n++
		}
	}
	return n, nil
}

// fakeEmailService records sent emails and can fail for selected addresses.
type fakeEmailService struct {
	mu        sync.Mutex
	welcome   []string
	confirmed []string
	reminded  []string
	failFor   map[string]bool
	// sendCtxs holds the context of every confirmation send.
	sendCtxs []context.Context
}

func (f *fakeEmailService) fail(email string) error {
	if f.failFor[email] {
		return errors.New("smtp down")
	}
	return nil
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(data.Email); err != nil {
		return err
	}
	f.welcome = append(f.welcome, data.Email)
	return nil
}

func (f *fakeEmailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCtxs = append(f.sendCtxs, ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.fail(data.Email); err != nil {
		return err
	}
	f.confirmed = append(f.confirmed, data.Email)
	return nil
}

func (f *fakeEmailService) SendEventReminder(ctx context.Context, data *domain.ReminderEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(data.Email); err != nil {
		return err
	}
	f.reminded = append(f.reminded, data.Email)
	return nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct{}

func (fakePasswordHasher) GenerateSalt() (string, error) { return "salt", nil }
func (fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + salt + "-" + password, nil
}
func (fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash-"+salt+"-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(userID, email string, role domain.Role, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + userID + "-" + string(role), nil
}

// fakeBroadcaster records published messages.
type fakeBroadcaster struct {
	mu        sync.Mutex
	published []domain.Message
	topics    []string
}

func (f *fakeBroadcaster) Publish(topic string, msg domain.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.Topic = topic
	f.topics = append(f.topics, topic)
	f.published = append(f.published, msg)
}

func (f *fakeBroadcaster) Subscribe(topic string) domain.Subscription { return nil }

func strPtr(s string) *string { return &s }
