// Package service contains the business logic for connections, discovery,
// locations, and chat-channel provisioning.
package service

import (
	"context"
	"errors"
	"fmt"

	"studymesh/internal/models"
	"studymesh/internal/repository"
)

// ChatService provisions chat channels for realized connections.
type ChatService struct {
	chatRepo repository.ChatRepository
}

// NewChatService returns a new ChatService.
func NewChatService(chatRepo repository.ChatRepository) *ChatService {
	return &ChatService{chatRepo: chatRepo}
}

// EnsureChannel gets or creates the direct conversation for a connection.
// Idempotent: the unique connection_id index collapses concurrent ensures
// onto one row, and a conflict resolves by re-reading.
func (s *ChatService) EnsureChannel(ctx context.Context, conn *models.Connection) (*models.Conversation, error) {
	existing, err := s.chatRepo.GetByConnectionID(ctx, conn.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	connID := conn.ID
	conv := &models.Conversation{
		Type:         models.ConversationTypeDirect,
		Name:         fmt.Sprintf("connection-%d", conn.ID),
		ConnectionID: &connID,
	}

	err = s.chatRepo.CreateDirectConversation(ctx, conv, []uint{conn.UserAID, conn.UserBID})
	if err == nil {
		return conv, nil
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code == "CONFLICT" {
		// Lost the race; the winner's row serves both.
		return s.chatRepo.GetByConnectionID(ctx, conn.ID)
	}
	return nil, err
}
