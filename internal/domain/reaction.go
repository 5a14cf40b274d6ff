package domain

import (
	"context"
	"sort"
)

// ReactionType is one of the emoji reactions available on an event.
type ReactionType string

const (
	ReactionThumbsUp ReactionType = "👍"
	ReactionClap     ReactionType = "👏"
	ReactionHeart    ReactionType = "❤️"
	ReactionFire     ReactionType = "🔥"
	ReactionParty    ReactionType = "🎉"
	ReactionThinking ReactionType = "🤔"
)

// ReactionTypes lists the reactions in display order.
var ReactionTypes = []ReactionType{
	ReactionThumbsUp,
	ReactionClap,
	ReactionHeart,
	ReactionFire,
	ReactionParty,
	ReactionThinking,
}

// Valid reports whether r is a known reaction.
func (r ReactionType) Valid() bool {
	for _, t := range ReactionTypes {
		if r == t {
			return true
		}
	}
	return false
}

// Reaction is the aggregated state of one reaction on an event.
// swagger:model Reaction
type Reaction struct {
	Type  ReactionType `json:"type"`
	Count int          `json:"count"`
	Users []string     `json:"users"`
}

// ReactionToggle is the broadcast payload for a single toggle.
// swagger:model ReactionToggle
type ReactionToggle struct {
	EventID  string       `json:"event_id"`
	Reaction ReactionType `json:"reaction"`
	UserID   string       `json:"user_id"`
	Active   bool         `json:"active"`
	Count    int          `json:"count"`
}

// ReactionBoard holds the participant sets of every reaction of one event.
// It is not safe for concurrent use.
type ReactionBoard struct {
	sets map[ReactionType]map[string]struct{}
}

// NewReactionBoard returns a board with every reaction at zero.
func NewReactionBoard() *ReactionBoard {
	b := &ReactionBoard{sets: make(map[ReactionType]map[string]struct{}, len(ReactionTypes))}
	for _, t := range ReactionTypes {
		b.sets[t] = make(map[string]struct{})
	}
	return b
}

// Toggle flips userID's membership in the reaction's set and returns the new membership
// and count. Toggling twice restores the original state.
func (b *ReactionBoard) Toggle(r ReactionType, userID string) (active bool, count int) {
	set, ok := b.sets[r]
	if !ok {
		return false, 0
	}
	if _, ok := set[userID]; ok {
		delete(set, userID)
	} else {
		set[userID] = struct{}{}
		active = true
	}
	return active, len(set)
}

// Snapshot returns the reactions in display order with sorted participant lists.
func (b *ReactionBoard) Snapshot() []Reaction {
	out := make([]Reaction, 0, len(ReactionTypes))
	for _, t := range ReactionTypes {
		users := make([]string, 0, len(b.sets[t]))
		for u := range b.sets[t] {
			users = append(users, u)
		}
		sort.Strings(users)
		out = append(out, Reaction{Type: t, Count: len(users), Users: users})
	}
	return out
}

// ReactionService toggles and reads ephemeral event reactions.
type ReactionService interface {
	Toggle(ctx context.Context, eventID, userID string, reaction ReactionType) (*ReactionToggle, error)
	Get(ctx context.Context, eventID string) ([]Reaction, error)
}
