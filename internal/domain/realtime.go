package domain

import (
	"encoding/json"
	"fmt"
)

// Tables that publish change notifications.
const (
	TableEvents        = "events"
	TableRegistrations = "registrations"
)

// ChangeOp is the kind of row change carried by a notification.
type ChangeOp string

const (
	OpInsert ChangeOp = "INSERT"
	OpUpdate ChangeOp = "UPDATE"
	OpDelete ChangeOp = "DELETE"
)

// ChangeEvent is a row-level change notification emitted by the database.
type ChangeEvent struct {
	Table string          `json:"table"`
	Op    ChangeOp        `json:"op"`
	Row   json.RawMessage `json:"row"`
}

// Event decodes the row as an events row.
func (c ChangeEvent) Event() (*Event, error) {
	if c.Table != TableEvents {
		return nil, fmt.Errorf("change on %q is not an event: %w", c.Table, ErrInvalidInput)
	}
	var e Event
	if err := json.Unmarshal(c.Row, &e); err != nil {
		return nil, fmt.Errorf("decode event row: %w", err)
	}
	return &e, nil
}

// Registration decodes the row as a registrations row.
func (c ChangeEvent) Registration() (*Registration, error) {
	if c.Table != TableRegistrations {
		return nil, fmt.Errorf("change on %q is not a registration: %w", c.Table, ErrInvalidInput)
	}
	var r Registration
	if err := json.Unmarshal(c.Row, &r); err != nil {
		return nil, fmt.Errorf("decode registration row: %w", err)
	}
	return &r, nil
}

// Topic names used on the broadcaster.
const TopicEvents = "events"

// RegistrationsTopic is the topic carrying registration changes of one event.
func RegistrationsTopic(eventID string) string { return "registrations:" + eventID }

// ReactionsTopic is the topic carrying reaction toggles of one event.
func ReactionsTopic(eventID string) string { return "reactions:" + eventID }

// Message is a unit delivered to topic subscribers.
type Message struct {
	Topic   string `json:"topic"`
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Subscription is a live registration on one topic.
type Subscription interface {
	C() <-chan Message
	Close()
}

// Broadcaster is a fire-and-forget publish/subscribe channel. Delivery is best effort:
// a subscriber that falls behind loses messages.
type Broadcaster interface {
	Publish(topic string, msg Message)
	Subscribe(topic string) Subscription
}
