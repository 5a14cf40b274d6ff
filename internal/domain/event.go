package domain

import (
	"context"
	"time"
)

// Length limits on event text fields, in characters.
const (
	MaxTitleLength       = 200
	MaxLocationLength    = 200
	MaxDescriptionLength = 5000
)

// DefaultSlotIncrement is the number of slots added by AddSlots when no amount is given.
const DefaultSlotIncrement = 10

// Event represents a campus event with a fixed capacity.
// swagger:model Event
type Event struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Date           time.Time `json:"date"`
	Location       string    `json:"location"`
	TotalSlots     int       `json:"total_slots"`
	AvailableSlots int       `json:"available_slots"`
	CreatorID      string    `json:"creator_id"`
	ImageURL       *string   `json:"image_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with every slot available. ID is set by the repository on create.
func NewEvent(title, description, location, creatorID string, date time.Time, totalSlots int, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:          title,
		Description:    description,
		Date:           date,
		Location:       location,
		TotalSlots:     totalSlots,
		AvailableSlots: totalSlots,
		CreatorID:      creatorID,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
}

// TakenSlots returns the number of slots consumed by registrations.
func (e *Event) TakenSlots() int {
	return e.TotalSlots - e.AvailableSlots
}

// SlotsValid reports whether 0 <= AvailableSlots <= TotalSlots holds.
func (e *Event) SlotsValid() bool {
	return e.AvailableSlots >= 0 && e.AvailableSlots <= e.TotalSlots
}

// ApplyUpdate replaces the mutable slot counters with the ones carried by a change
// notification. Every other field is left untouched.
func (e *Event) ApplyUpdate(u *Event) {
	if u == nil || u.ID != e.ID {
		return
	}
	e.AvailableSlots = u.AvailableSlots
	e.TotalSlots = u.TotalSlots
}

// EventSlots is the broadcast payload of an event update: the fields clients replace.
type EventSlots struct {
	ID             string `json:"id"`
	TotalSlots     int    `json:"total_slots"`
	AvailableSlots int    `json:"available_slots"`
}

// Slots returns the slot counters of e.
func (e *Event) Slots() EventSlots {
	return EventSlots{ID: e.ID, TotalSlots: e.TotalSlots, AvailableSlots: e.AvailableSlots}
}

// EventPatch holds the optional fields of a partial event update. Nil means unchanged.
type EventPatch struct {
	Title       *string
	Description *string
	Date        *time.Time
	Location    *string
	TotalSlots  *int
	ImageURL    *string
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ListAll(ctx context.Context) ([]*Event, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]*Event, error)
	// Update applies the patch. A new total recomputes available slots from the taken count
	// and fails with ErrInvalidInput when fewer slots than already taken are requested.
	Update(ctx context.Context, id string, patch EventPatch) (*Event, error)
	AddSlots(ctx context.Context, id string, n int) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventWithStats is an event plus its registration count, used by the admin dashboard.
type EventWithStats struct {
	Event             *Event `json:"event"`
	RegistrationCount int    `json:"registration_count"`
}

// EventService defines the business logic for events.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	UpdateEvent(ctx context.Context, id string, patch EventPatch) (*Event, error)
	AddSlots(ctx context.Context, id string, n int) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
}
