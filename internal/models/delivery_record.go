package models

import "time"

// DeliveryState is the per-recipient receipt state. It is strictly monotonic:
// sent -> delivered -> read.
type DeliveryState string

const (
	DeliverySent      DeliveryState = "sent"
	DeliveryDelivered DeliveryState = "delivered"
	DeliveryRead      DeliveryState = "read"
)

// Rank orders delivery states so transitions can be compared.
func (s DeliveryState) Rank() int {
	switch s {
	case DeliverySent:
		return 0
	case DeliveryDelivered:
		return 1
	case DeliveryRead:
		return 2
	}
	return -1
}

// DeliveryRecord tracks one message's progress toward one recipient.
// Records are created at dispatch time and never deleted here; message
// deletion cascades from the messages table.
type DeliveryRecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	MessageID      uint `gorm:"not null;uniqueIndex:idx_message_recipient;index" json:"message_id"`
	RecipientID    uint `gorm:"not null;uniqueIndex:idx_message_recipient;index" json:"recipient_id"`
	ConversationID uint `gorm:"not null;index" json:"conversation_id"`

	State       DeliveryState `gorm:"type:varchar(20);not null;default:'sent'" json:"state"`
	DeliveredAt *time.Time    `json:"delivered_at"`
	ReadAt      *time.Time    `json:"read_at"`
}
