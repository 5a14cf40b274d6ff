package realtime

import (
	"context"
	"log/slog"
	"time"

	"eventify/internal/domain"
)

// Message types published by the dispatcher.
const (
	TypeSnapshot      = "snapshot"
	TypeEventInserted = "event.inserted"
	TypeEventUpdated  = "event.updated"
	TypeEventDeleted  = "event.deleted"
	TypeRegistration  = "registration.updated"
)

const refetchTimeout = 5 * time.Second

// EventGetter reads one event in full. Change notifications only carry a few columns.
type EventGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Event, error)
}

// Dispatcher applies database row changes to the catalog and republishes them.
type Dispatcher struct {
	Logger  *slog.Logger
	catalog *Catalog
	events  EventGetter
	hub     domain.Broadcaster
}

// NewDispatcher builds a dispatcher. events may be nil, in which case the catalog keeps only
// what the notifications carry.
func NewDispatcher(catalog *Catalog, events EventGetter, hub domain.Broadcaster, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{Logger: logger, catalog: catalog, events: events, hub: hub}
}

// Handle processes one change. Malformed rows are logged and dropped.
func (d *Dispatcher) Handle(ctx context.Context, change domain.ChangeEvent) {
	switch change.Table {
	case domain.TableEvents:
		d.handleEvent(ctx, change)
	case domain.TableRegistrations:
		d.handleRegistration(ctx, change)
	}
}

func (d *Dispatcher) handleEvent(ctx context.Context, change domain.ChangeEvent) {
	row, err := change.Event()
	if err != nil {
		d.Logger.WarnContext(ctx, "dropping event change", "op", change.Op, "err", err)
		return
	}
	switch change.Op {
	case domain.OpInsert:
		if full, ok := d.refetch(ctx, row.ID); ok {
			row = full
		}
		if !d.catalog.Apply(domain.OpInsert, row) {
			return
		}
		d.hub.Publish(domain.TopicEvents, domain.Message{Type: TypeEventInserted, Payload: row})
	case domain.OpUpdate:
		if !d.catalog.Apply(domain.OpUpdate, row) {
			return
		}
		if full, ok := d.refetch(ctx, row.ID); ok {
			d.catalog.Replace(full)
		}
		d.hub.Publish(domain.TopicEvents, domain.Message{Type: TypeEventUpdated, Payload: row.Slots()})
	case domain.OpDelete:
		if !d.catalog.Apply(domain.OpDelete, row) {
			return
		}
		d.hub.Publish(domain.TopicEvents, domain.Message{Type: TypeEventDeleted, Payload: map[string]string{"id": row.ID}})
	}
}

// refetch reads the full row so the catalog holds current descriptive fields.
func (d *Dispatcher) refetch(ctx context.Context, id string) (*domain.Event, bool) {
	if d.events == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, refetchTimeout)
	defer cancel()
	e, err := d.events.GetByID(ctx, id)
	if err != nil {
		d.Logger.WarnContext(ctx, "event refetch failed", "event_id", id, "err", err)
		return nil, false
	}
	return e, true
}

func (d *Dispatcher) handleRegistration(ctx context.Context, change domain.ChangeEvent) {
	row, err := change.Registration()
	if err != nil {
		d.Logger.WarnContext(ctx, "dropping registration change", "op", change.Op, "err", err)
		return
	}
	if row.EventID == "" {
		return
	}
	d.hub.Publish(domain.RegistrationsTopic(row.EventID), domain.Message{
		Type: TypeRegistration,
		Payload: map[string]any{
			"id":                    row.ID,
			"event_id":              row.EventID,
			"attended":              row.Attended,
			"certificate_generated": row.CertificateGenerated,
			"od_letter_generated":   row.ODLetterGenerated,
		},
	})
}

// Resync reloads the catalog and pushes a fresh snapshot to events subscribers. It runs after
// the change listener reconnects.
func (d *Dispatcher) Resync(ctx context.Context) {
	if err := d.catalog.Load(ctx); err != nil {
		d.Logger.ErrorContext(ctx, "catalog resync failed", "err", err)
		return
	}
	d.hub.Publish(domain.TopicEvents, domain.Message{Type: TypeSnapshot, Payload: d.catalog.Snapshot()})
}
