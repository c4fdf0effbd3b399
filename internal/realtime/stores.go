package realtime

import (
	"time"

	"github.com/estherpeter24/urge-backend/internal/models"
)

// ConversationStore is the external membership authority. Calls may be slow
// or fail; no internal lock is held across them.
type ConversationStore interface {
	IsParticipant(userID, conversationID uint) (bool, error)
	ParticipantsOf(conversationID uint) ([]uint, error)
	ConversationsOf(userID uint) ([]uint, error)
}

// DeliveryStore durably persists delivery receipts. Optional: a nil store
// keeps the state machine purely in-memory.
type DeliveryStore interface {
	SaveBatch(records []*models.DeliveryRecord) error
	Save(record *models.DeliveryRecord) error
	Find(messageID, recipientID uint) (*models.DeliveryRecord, error)
}

// MessageStatusStore advances the aggregate status column on the message row
// once every recipient has reached a state. Optional.
type MessageStatusStore interface {
	UpdateStatus(messageID uint, status models.MessageStatus, at time.Time) error
}

// PushNotifier hands an event to the out-of-process push pipeline for a user
// who is offline at dispatch time. Best-effort, fire-and-forget.
type PushNotifier interface {
	Notify(userID uint, event Event)
}
