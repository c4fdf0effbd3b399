package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/estherpeter24/urge-backend/internal/models"
)

type DeliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

// SaveBatch upserts a dispatch fan-out. Conflicts happen when a message is
// re-dispatched after a crash; existing receipts win.
func (r *DeliveryRepository) SaveBatch(records []*models.DeliveryRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "recipient_id"}},
		DoNothing: true,
	}).Create(&records).Error
}

func (r *DeliveryRepository) Save(record *models.DeliveryRecord) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "recipient_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "delivered_at", "read_at", "updated_at"}),
	}).Create(record).Error
}

func (r *DeliveryRepository) Find(messageID, recipientID uint) (*models.DeliveryRecord, error) {
	var record models.DeliveryRecord
	err := r.db.Where("message_id = ? AND recipient_id = ?", messageID, recipientID).
		First(&record).Error
	return &record, err
}

// PendingForUser lists message IDs in a conversation the recipient has not
// read yet, oldest first. Used by the bulk conversation-read endpoint.
func (r *DeliveryRepository) PendingForUser(conversationID, recipientID uint) ([]uint, error) {
	var messageIDs []uint
	err := r.db.Model(&models.DeliveryRecord{}).
		Where("conversation_id = ? AND recipient_id = ? AND state != ?",
			conversationID, recipientID, models.DeliveryRead).
		Order("message_id ASC").
		Pluck("message_id", &messageIDs).Error
	return messageIDs, err
}
