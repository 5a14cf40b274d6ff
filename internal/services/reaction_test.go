package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventify/internal/domain"
)

func TestReactionService_Toggle(t *testing.T) {
	ctx := context.Background()
	b := &fakeBroadcaster{}
	svc := NewReactionService(b)

	on, err := svc.Toggle(ctx, "ev-1", "u-1", domain.ReactionFire)
	require.NoError(t, err)
	assert.True(t, on.Active)
	assert.Equal(t, 1, on.Count)

	off, err := svc.Toggle(ctx, "ev-1", "u-1", domain.ReactionFire)
	require.NoError(t, err)
	assert.False(t, off.Active)
	assert.Equal(t, 0, off.Count)

	require.Len(t, b.published, 2)
	assert.Equal(t, domain.ReactionsTopic("ev-1"), b.topics[0])
	assert.Equal(t, MessageReactionToggled, b.published[0].Type)
	payload, ok := b.published[1].Payload.(*domain.ReactionToggle)
	require.True(t, ok)
	assert.False(t, payload.Active)
}

func TestReactionService_DoubleToggleIsIdentity(t *testing.T) {
	ctx := context.Background()
	svc := NewReactionService(&fakeBroadcaster{})
	_, err := svc.Toggle(ctx, "ev-1", "u-2", domain.ReactionHeart)
	require.NoError(t, err)

	before, err := svc.Get(ctx, "ev-1")
	require.NoError(t, err)
	for _, r := range domain.ReactionTypes {
		_, err := svc.Toggle(ctx, "ev-1", "u-1", r)
		require.NoError(t, err)
		_, err = svc.Toggle(ctx, "ev-1", "u-1", r)
		require.NoError(t, err)
	}
	after, err := svc.Get(ctx, "ev-1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReactionService_Validation(t *testing.T) {
	svc := NewReactionService(nil)
	_, err := svc.Toggle(context.Background(), "ev-1", "u-1", "🙈")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = svc.Toggle(context.Background(), "", "u-1", domain.ReactionClap)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReactionService_GetUnknownEvent(t *testing.T) {
	got, err := NewReactionService(nil).Get(context.Background(), "ev-x")
	require.NoError(t, err)
	require.Len(t, got, len(domain.ReactionTypes))
	for _, r := range got {
		assert.Zero(t, r.Count)
		assert.NotNil(t, r.Users)
	}
}

func TestReactionService_ConcurrentToggles(t *testing.T) {
	svc := NewReactionService(&fakeBroadcaster{})
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = svc.Toggle(context.Background(), "ev-1", string(rune('a'+i)), domain.ReactionParty)
		}(i)
	}
	wg.Wait()

	got, err := svc.Get(context.Background(), "ev-1")
	require.NoError(t, err)
	for _, r := range got {
		if r.Type == domain.ReactionParty {
			assert.Equal(t, 20, r.Count)
		}
	}
}
