package realtime

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"eventify/internal/domain"
)

// EventLister loads the full event list.
type EventLister interface {
	ListAll(ctx context.Context) ([]*domain.Event, error)
}

// Catalog is the in-memory mirror of the event list kept current by change notifications.
type Catalog struct {
	mu     sync.RWMutex
	source EventLister
	events map[string]*domain.Event
}

func NewCatalog(source EventLister) *Catalog {
	return &Catalog{source: source, events: make(map[string]*domain.Event)}
}

// Load replaces the mirror with a fresh read from the source.
func (c *Catalog) Load(ctx context.Context) error {
	events, err := c.source.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	next := make(map[string]*domain.Event, len(events))
	for _, e := range events {
		cp := *e
		next[e.ID] = &cp
	}
	c.mu.Lock()
	c.events = next
	c.mu.Unlock()
	return nil
}

// Apply merges a single change notification. An update only replaces the slot counters of a
// known event; updates and deletes of unknown events are ignored. Apply reports whether the
// mirror changed.
func (c *Catalog) Apply(op domain.ChangeOp, e *domain.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch op {
	case domain.OpDelete:
		if _, ok := c.events[e.ID]; !ok {
			return false
		}
		delete(c.events, e.ID)
		return true
	case domain.OpUpdate:
		cur, ok := c.events[e.ID]
		if !ok {
			return false
		}
		cur.ApplyUpdate(e)
		return true
	case domain.OpInsert:
		cp := *e
		c.events[e.ID] = &cp
		return true
	}
	return false
}

// Replace stores a full copy of a known event, as read back from the source after an update.
func (c *Catalog) Replace(e *domain.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.events[e.ID]; !ok {
		return false
	}
	cp := *e
	c.events[e.ID] = &cp
	return true
}

// Get returns a copy of one mirrored event.
func (c *Catalog) Get(id string) (*domain.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.events[id]
	if !ok {
		return nil, false
	}
	cp := *e
	return &cp, true
}

// Snapshot returns copies of all mirrored events ordered by date.
func (c *Catalog) Snapshot() []*domain.Event {
	c.mu.RLock()
	out := make([]*domain.Event, 0, len(c.events))
	for _, e := range c.events {
		cp := *e
		out = append(out, &cp)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
