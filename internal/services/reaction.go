package services

import (
	"context"
	"fmt"
	"sync"

	"eventify/internal/domain"
)

// MessageReactionToggled is the broadcast type of a reaction toggle.
const MessageReactionToggled = "reaction.toggled"

// reactionService keeps reaction state in memory only. It never reads or writes the database.
type reactionService struct {
	mu          sync.Mutex
	boards      map[string]*domain.ReactionBoard
	broadcaster domain.Broadcaster
}

func NewReactionService(broadcaster domain.Broadcaster) domain.ReactionService {
	return &reactionService{
		boards:      make(map[string]*domain.ReactionBoard),
		broadcaster: broadcaster,
	}
}

func (s *reactionService) Toggle(ctx context.Context, eventID, userID string, reaction domain.ReactionType) (*domain.ReactionToggle, error) {
	if eventID == "" || userID == "" {
		return nil, fmt.Errorf("event and user are required: %w", domain.ErrInvalidInput)
	}
	if !reaction.Valid() {
		return nil, fmt.Errorf("unknown reaction %q: %w", reaction, domain.ErrInvalidInput)
	}

	s.mu.Lock()
	board, ok := s.boards[eventID]
	if !ok {
		board = domain.NewReactionBoard()
		s.boards[eventID] = board
	}
	active, count := board.Toggle(reaction, userID)
	s.mu.Unlock()

	toggle := &domain.ReactionToggle{
		EventID:  eventID,
		Reaction: reaction,
		UserID:   userID,
		Active:   active,
		Count:    count,
	}
	if s.broadcaster != nil {
		s.broadcaster.Publish(domain.ReactionsTopic(eventID), domain.Message{Type: MessageReactionToggled, Payload: toggle})
	}
	return toggle, nil
}

func (s *reactionService) Get(ctx context.Context, eventID string) ([]domain.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, ok := s.boards[eventID]
	if !ok {
		return domain.NewReactionBoard().Snapshot(), nil
	}
	return board.Snapshot(), nil
}
