package services

import (
	"context"
	"errors"
	"fmt"

	"gemini-chat/models"
	"gemini-chat/repositories"
)

// ConversationService 는 사용자 소유 대화 목록/메시지 조회를 담당한다.
type ConversationService struct {
	store repositories.ConversationStore
}

func NewConversationService(store repositories.ConversationStore) *ConversationService {
	return &ConversationService{store: store}
}

func (s *ConversationService) List(ctx context.Context, userID int64) ([]models.Conversation, *ChatError) {
	conversations, err := s.store.ListConversations(ctx, userID)
	if err != nil {
		return nil, errPersistence(fmt.Errorf("list conversations: %w", err))
	}
	return conversations, nil
}

// Messages 는 대화의 메시지를 오래된 순으로 돌려준다.
// 다른 사용자의 대화는 존재하지 않는 대화와 같은 404 로 응답한다.
func (s *ConversationService) Messages(ctx context.Context, userID, conversationID int64) ([]models.Message, *ChatError) {
	if _, chatErr := s.owned(ctx, userID, conversationID); chatErr != nil {
		return nil, chatErr
	}

	messages, err := s.store.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, errPersistence(fmt.Errorf("list messages: %w", err))
	}
	return messages, nil
}

func (s *ConversationService) owned(ctx context.Context, userID, conversationID int64) (*models.Conversation, *ChatError) {
	if conversationID <= 0 {
		return nil, errConversationNotFound(nil)
	}

	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errConversationNotFound(err)
		}
		return nil, errPersistence(fmt.Errorf("get conversation %d: %w", conversationID, err))
	}
	if conv.UserID != userID {
		return nil, errConversationNotFound(fmt.Errorf("conversation %d owned by another user", conversationID))
	}
	return conv, nil
}
