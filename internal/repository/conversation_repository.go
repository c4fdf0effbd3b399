package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/estherpeter24/urge-backend/internal/models"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(conversation *models.Conversation) error {
	return r.db.Create(conversation).Error
}

func (r *ConversationRepository) FindByID(id uint) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Preload("Participants.User").First(&conversation, id).Error
	return &conversation, err
}

// FindDirect returns the direct conversation both users participate in, if
// one exists.
func (r *ConversationRepository) FindDirect(userID1, userID2 uint) (*models.Conversation, error) {
	var conversation models.Conversation
	err := r.db.Preload("Participants.User").
		Where("type = ?", models.DirectConversation).
		Where("id IN (?)",
			r.db.Model(&models.ConversationParticipant{}).
				Select("conversation_id").
				Where("user_id IN ?", []uint{userID1, userID2}).
				Where("left_at IS NULL").
				Group("conversation_id").
				Having("COUNT(DISTINCT user_id) = 2"),
		).
		First(&conversation).Error
	return &conversation, err
}

func (r *ConversationRepository) ListForUser(userID uint, limit int) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.Preload("Participants.User").
		Where("id IN (?)",
			r.db.Model(&models.ConversationParticipant{}).
				Select("conversation_id").
				Where("user_id = ? AND left_at IS NULL", userID),
		).
		Order("last_message_at DESC NULLS LAST").
		Limit(limit).
		Find(&conversations).Error
	return conversations, err
}

func (r *ConversationRepository) AddParticipant(conversationID, userID uint) error {
	// Rejoining clears left_at instead of inserting a duplicate row.
	var existing models.ConversationParticipant
	err := r.db.Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		First(&existing).Error
	if err == nil {
		return r.db.Model(&existing).
			Updates(map[string]interface{}{"left_at": nil, "joined_at": time.Now()}).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	participant := models.ConversationParticipant{
		ConversationID: conversationID,
		UserID:         userID,
		JoinedAt:       time.Now(),
	}
	return r.db.Create(&participant).Error
}

func (r *ConversationRepository) RemoveParticipant(conversationID, userID uint) error {
	return r.db.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ? AND left_at IS NULL", conversationID, userID).
		Update("left_at", time.Now()).Error
}

func (r *ConversationRepository) IsParticipant(userID, conversationID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ? AND left_at IS NULL", conversationID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *ConversationRepository) ParticipantsOf(conversationID uint) ([]uint, error) {
	var userIDs []uint
	err := r.db.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND left_at IS NULL", conversationID).
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

func (r *ConversationRepository) ConversationsOf(userID uint) ([]uint, error) {
	var conversationIDs []uint
	err := r.db.Model(&models.ConversationParticipant{}).
		Where("user_id = ? AND left_at IS NULL", userID).
		Pluck("conversation_id", &conversationIDs).Error
	return conversationIDs, err
}

func (r *ConversationRepository) TouchLastMessage(conversationID uint, messageID uint, at time.Time) error {
	return r.db.Model(&models.Conversation{}).Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message_id": messageID,
			"last_message_at": at,
		}).Error
}

func (r *ConversationRepository) ResetUnread(conversationID, userID uint) error {
	return r.db.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("unread_count", 0).Error
}

func (r *ConversationRepository) IncrementUnread(conversationID uint, exceptUserID uint) error {
	return r.db.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id != ? AND left_at IS NULL", conversationID, exceptUserID).
		Update("unread_count", gorm.Expr("unread_count + 1")).Error
}
