package repository

import (
	"time"

	"github.com/estherpeter24/urge-backend/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	FindByID(id uint) (*models.User, error)
	FindByPhone(phone string) (*models.User, error)
	Update(user *models.User) error
	UpdateOnlineStatus(userID uint, isOnline bool, lastSeen *time.Time) error
	SearchUsers(query string, limit int) ([]models.User, error)
}

// ConversationRepositoryInterface defines the contract for conversation
// repository operations. It doubles as the membership authority the realtime
// layer authorizes against.
type ConversationRepositoryInterface interface {
	Create(conversation *models.Conversation) error
	FindByID(id uint) (*models.Conversation, error)
	FindDirect(userID1, userID2 uint) (*models.Conversation, error)
	ListForUser(userID uint, limit int) ([]models.Conversation, error)
	AddParticipant(conversationID, userID uint) error
	RemoveParticipant(conversationID, userID uint) error
	IsParticipant(userID, conversationID uint) (bool, error)
	ParticipantsOf(conversationID uint) ([]uint, error)
	ConversationsOf(userID uint) ([]uint, error)
	TouchLastMessage(conversationID uint, messageID uint, at time.Time) error
	ResetUnread(conversationID, userID uint) error
	IncrementUnread(conversationID uint, exceptUserID uint) error
}

// MessageRepositoryInterface defines the contract for message repository operations
type MessageRepositoryInterface interface {
	Create(message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	FindByClientID(clientID string, senderID uint) (*models.Message, error)
	FindConversationCursor(conversationID uint, cursor uint, limit int) ([]models.Message, error)
	UpdateStatus(messageID uint, status models.MessageStatus, at time.Time) error
}

// DeliveryRepositoryInterface persists per-recipient delivery receipts for
// the realtime delivery state machine.
type DeliveryRepositoryInterface interface {
	SaveBatch(records []*models.DeliveryRecord) error
	Save(record *models.DeliveryRecord) error
	Find(messageID, recipientID uint) (*models.DeliveryRecord, error)
	PendingForUser(conversationID, recipientID uint) ([]uint, error)
}
