package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventify/internal/domain"
)

func TestTomorrowRange(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC on the 14th is already 01:30 on the 15th in IST.
	now := time.Date(2025, 3, 14, 20, 0, 0, 0, time.UTC)

	from, to := TomorrowRange(now, ist)
	assert.Equal(t, time.Date(2025, 3, 16, 0, 0, 0, 0, ist), from)
	assert.Equal(t, time.Date(2025, 3, 17, 0, 0, 0, 0, ist), to)

	from, _ = TomorrowRange(now, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), from)
}

func TestReminderService_SendTomorrow(t *testing.T) {
	db := newFakeDB()
	now := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
	tomorrow := db.addEvent(&domain.Event{Title: "Hackathon", Date: time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)})
	dayAfter := db.addEvent(&domain.Event{Title: "Quiz", Date: time.Date(2025, 3, 16, 10, 0, 0, 0, time.UTC)})
	db.addRegistration(&domain.Registration{EventID: tomorrow.ID, UserID: "u-1", TeamName: "A", TeamMembers: []*domain.TeamMember{
		{Name: "Asha", Email: "asha@x.in"}, {Name: "Kiran", Email: "kiran@x.in"},
	}})
	db.addRegistration(&domain.Registration{EventID: tomorrow.ID, UserID: "u-2", TeamName: "B", TeamMembers: []*domain.TeamMember{
		{Name: "Meena", Email: "meena@x.in"},
	}})
	db.addRegistration(&domain.Registration{EventID: dayAfter.ID, UserID: "u-3", TeamMembers: []*domain.TeamMember{
		{Name: "Ravi", Email: "ravi@x.in"},
	}})

	email := &fakeEmailService{failFor: map[string]bool{"kiran@x.in": true}}
	svc := NewReminderService(&fakeEventRepo{db: db}, &fakeRegistrationRepo{db: db}, email, time.UTC, discardLogger())

	result, err := svc.SendTomorrow(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, &domain.ReminderResult{Events: 1, Sent: 2, Failed: 1}, result)
	assert.ElementsMatch(t, []string{"asha@x.in", "meena@x.in"}, email.reminded)
}

func TestReminderService_NoEvents(t *testing.T) {
	svc := NewReminderService(&fakeEventRepo{db: newFakeDB()}, &fakeRegistrationRepo{db: newFakeDB()}, &fakeEmailService{}, nil, discardLogger())
	result, err := svc.SendTomorrow(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, result.Events)
	assert.Zero(t, result.Sent)
}
