package service

import (
	"context"
	"testing"

	"studymesh/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRepoStub struct {
	getByConnectionIDFn        func(context.Context, uint) (*models.Conversation, error)
	createDirectConversationFn func(context.Context, *models.Conversation, []uint) error
	listForUserFn              func(context.Context, uint, int, int) ([]models.Conversation, error)
}

func (s *chatRepoStub) GetByConnectionID(ctx context.Context, connectionID uint) (*models.Conversation, error) {
	return s.getByConnectionIDFn(ctx, connectionID)
}
func (s *chatRepoStub) CreateDirectConversation(ctx context.Context, conv *models.Conversation, participantIDs []uint) error {
	return s.createDirectConversationFn(ctx, conv, participantIDs)
}
func (s *chatRepoStub) ListForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Conversation, error) {
	return s.listForUserFn(ctx, userID, limit, offset)
}

func TestEnsureChannelCreates(t *testing.T) {
	var createdConv *models.Conversation
	var createdParticipants []uint
	repo := &chatRepoStub{
		getByConnectionIDFn: func(context.Context, uint) (*models.Conversation, error) { return nil, nil },
		createDirectConversationFn: func(_ context.Context, conv *models.Conversation, ids []uint) error {
			conv.ID = 42
			createdConv = conv
			createdParticipants = ids
			return nil
		},
	}
	svc := NewChatService(repo)

	conn := &models.Connection{ID: 7, UserAID: 1, UserBID: 2}
	conv, err := svc.EnsureChannel(context.Background(), conn)
	require.NoError(t, err)
	assert.Equal(t, uint(42), conv.ID)
	assert.Equal(t, models.ConversationTypeDirect, createdConv.Type)
	require.NotNil(t, createdConv.ConnectionID)
	assert.Equal(t, uint(7), *createdConv.ConnectionID)
	assert.Equal(t, []uint{1, 2}, createdParticipants)
}

func TestEnsureChannelReturnsExisting(t *testing.T) {
	existing := &models.Conversation{ID: 42}
	repo := &chatRepoStub{
		getByConnectionIDFn: func(context.Context, uint) (*models.Conversation, error) { return existing, nil },
		createDirectConversationFn: func(context.Context, *models.Conversation, []uint) error {
			t.Fatal("create must not run when the channel exists")
			return nil
		},
	}
	svc := NewChatService(repo)

	conv, err := svc.EnsureChannel(context.Background(), &models.Connection{ID: 7, UserAID: 1, UserBID: 2})
	require.NoError(t, err)
	assert.Equal(t, existing, conv)
}

func TestEnsureChannelLostRaceRereads(t *testing.T) {
	winner := &models.Conversation{ID: 42}
	calls := 0
	repo := &chatRepoStub{
		getByConnectionIDFn: func(context.Context, uint) (*models.Conversation, error) {
			calls++
			if calls == 1 {
				return nil, nil
			}
			return winner, nil
		},
		createDirectConversationFn: func(context.Context, *models.Conversation, []uint) error {
			return models.NewConflictError("duplicate")
		},
	}
	svc := NewChatService(repo)

	conv, err := svc.EnsureChannel(context.Background(), &models.Connection{ID: 7, UserAID: 1, UserBID: 2})
	require.NoError(t, err)
	assert.Equal(t, winner, conv)
}
