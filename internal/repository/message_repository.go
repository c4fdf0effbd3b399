package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/estherpeter24/urge-backend/internal/models"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").First(&message, id).Error
	return &message, err
}

func (r *MessageRepository) FindByClientID(clientID string, senderID uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Sender").
		Where("client_id = ? AND sender_id = ?", clientID, senderID).
		First(&message).Error
	return &message, err
}

// FindConversationCursor fetches messages older than cursor (0 = latest page),
// returned in chronological order.
func (r *MessageRepository) FindConversationCursor(conversationID uint, cursor uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	q := r.db.Preload("Sender").
		Where("conversation_id = ?", conversationID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	err := q.Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error

	// Reverse to get chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, err
}

// UpdateStatus advances the aggregate message status. Timestamps only move
// forward; a later duplicate write is harmless.
func (r *MessageRepository) UpdateStatus(messageID uint, status models.MessageStatus, at time.Time) error {
	updates := map[string]interface{}{"status": status}
	switch status {
	case models.StatusDelivered:
		updates["delivered_at"] = at
	case models.StatusRead:
		updates["read_at"] = at
	}
	return r.db.Model(&models.Message{}).Where("id = ?", messageID).
		Updates(updates).Error
}
