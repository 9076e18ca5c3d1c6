package repository

import (
	"context"
	"errors"

	"studymesh/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatRepository defines persistence operations for conversations.
type ChatRepository interface {
	GetByConnectionID(ctx context.Context, connectionID uint) (*models.Conversation, error)
	CreateDirectConversation(ctx context.Context, conv *models.Conversation, participantIDs []uint) error
	ListForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Conversation, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository returns a new ChatRepository implementation.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

// GetByConnectionID returns the conversation bound to the connection, or nil
// without error when none exists.
func (r *chatRepository) GetByConnectionID(ctx context.Context, connectionID uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.WithContext(ctx).
		Where("connection_id = ?", connectionID).
		Preload("Participants").
		First(&conv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &conv, nil
}

// CreateDirectConversation inserts the conversation and its participants in
// one transaction. The unique connection_id index makes concurrent ensures
// collapse to a single row; the conflict is surfaced for the caller to
// re-read.
func (r *chatRepository) CreateDirectConversation(ctx context.Context, conv *models.Conversation, participantIDs []uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(conv)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrDuplicatedKey
		}

		for _, id := range participantIDs {
			p := &models.ConversationParticipant{
				ConversationID: conv.ID,
				UserID:         id,
			}
			if err := tx.Create(p).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Conversation for this connection already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *chatRepository) ListForUser(ctx context.Context, userID uint, limit, offset int) ([]models.Conversation, error) {
	var convs []models.Conversation
	if err := r.db.WithContext(ctx).
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ?", userID).
		Order("conversations.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&convs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return convs, nil
}
