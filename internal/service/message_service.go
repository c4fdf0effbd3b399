package service

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/estherpeter24/urge-backend/internal/cache"
	"github.com/estherpeter24/urge-backend/internal/models"
	"github.com/estherpeter24/urge-backend/internal/repository"
	"github.com/estherpeter24/urge-backend/internal/validation"
)

type MessageService struct {
	messageRepo      repository.MessageRepositoryInterface
	conversationRepo repository.ConversationRepositoryInterface
	deliveryRepo     repository.DeliveryRepositoryInterface
	messageCache     *cache.MessageCache
}

func NewMessageService(messageRepo repository.MessageRepositoryInterface,
	conversationRepo repository.ConversationRepositoryInterface,
	deliveryRepo repository.DeliveryRepositoryInterface,
	messageCache *cache.MessageCache) *MessageService {
	return &MessageService{
		messageRepo:      messageRepo,
		conversationRepo: conversationRepo,
		deliveryRepo:     deliveryRepo,
		messageCache:     messageCache,
	}
}

type SendMessageInput struct {
	ClientID    string             `json:"client_id"`
	Content     string             `json:"content"`
	MessageType models.MessageType `json:"message_type"`

	// ConnectionID identifies the sender's live connection so the realtime
	// broadcast can skip echoing back to the originating device.
	ConnectionID string `json:"connection_id"`
}

// SendMessage stores a message after authorizing the sender. Retransmits
// with a known client_id return the original row instead of duplicating.
func (s *MessageService) SendMessage(senderID, conversationID uint, input SendMessageInput) (*models.Message, bool, error) {
	ok, err := s.conversationRepo.IsParticipant(senderID, conversationID)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, ErrNotParticipant
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, false, ErrEmptyContent
	}
	if len(content) > validation.MaxMessageLength() {
		return nil, false, ErrContentTooLong
	}

	if input.ClientID != "" {
		existing, err := s.messageRepo.FindByClientID(input.ClientID, senderID)
		if err == nil {
			return existing, true, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}

	message := &models.Message{
		ClientID:       input.ClientID,
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		MessageType:    input.MessageType,
		Status:         models.StatusSent,
	}
	if message.MessageType == "" {
		message.MessageType = models.TextMessage
	}

	if err := s.messageRepo.Create(message); err != nil {
		return nil, false, err
	}

	now := time.Now()
	if err := s.conversationRepo.TouchLastMessage(conversationID, message.ID, now); err != nil {
		return nil, false, err
	}
	if err := s.conversationRepo.IncrementUnread(conversationID, senderID); err != nil {
		return nil, false, err
	}
	s.messageCache.InvalidateConversation(conversationID)

	stored, err := s.messageRepo.FindByID(message.ID)
	return stored, false, err
}

// GetMessages pages a conversation backwards from cursor (0 = latest). The
// latest page is served from cache when possible.
func (s *MessageService) GetMessages(userID, conversationID uint, cursor uint, limit int) ([]models.Message, error) {
	ok, err := s.conversationRepo.IsParticipant(userID, conversationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}

	if cursor == 0 {
		if cached, ok := s.messageCache.GetConversation(conversationID); ok && len(cached) >= limit {
			return cached[len(cached)-limit:], nil
		}
	}

	messages, err := s.messageRepo.FindConversationCursor(conversationID, cursor, limit)
	if err != nil {
		return nil, err
	}
	if cursor == 0 {
		s.messageCache.SetConversation(conversationID, messages)
	}
	return messages, nil
}

// UnreadMessageIDs lists messages in the conversation the user has not read
// yet, for the bulk conversation-read endpoint. Also clears the unread
// counter.
func (s *MessageService) UnreadMessageIDs(userID, conversationID uint) ([]uint, error) {
	ok, err := s.conversationRepo.IsParticipant(userID, conversationID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}

	ids, err := s.deliveryRepo.PendingForUser(conversationID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.conversationRepo.ResetUnread(conversationID, userID); err != nil {
		return nil, err
	}
	return ids, nil
}
