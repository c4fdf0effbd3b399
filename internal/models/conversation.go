package models

import (
	"time"

	"gorm.io/gorm"
)

type ConversationType string

const (
	DirectConversation ConversationType = "direct"
	GroupConversation  ConversationType = "group"
)

type Conversation struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Type   ConversationType `gorm:"type:varchar(20);not null;default:'direct'" json:"type"`
	Name   string           `json:"name"` // group conversations only
	Avatar string           `json:"avatar"`

	CreatedByID uint `gorm:"index" json:"created_by_id"`

	LastMessageID *uint      `json:"last_message_id"`
	LastMessageAt *time.Time `gorm:"index" json:"last_message_at"`

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
}

type ConversationParticipant struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ConversationID uint `gorm:"not null;uniqueIndex:idx_conversation_user;index" json:"conversation_id"`
	UserID         uint `gorm:"not null;uniqueIndex:idx_conversation_user;index" json:"user_id"`
	User           User `gorm:"foreignKey:UserID" json:"user"`

	UnreadCount int        `gorm:"default:0" json:"unread_count"`
	IsMuted     bool       `gorm:"default:false" json:"is_muted"`
	IsArchived  bool       `gorm:"default:false" json:"is_archived"`
	JoinedAt    time.Time  `json:"joined_at"`
	LeftAt      *time.Time `json:"left_at"`
}

type ConversationResponse struct {
	ID            uint             `json:"id"`
	Type          ConversationType `json:"type"`
	Name          string           `json:"name"`
	Avatar        string           `json:"avatar"`
	CreatedByID   uint             `json:"created_by_id"`
	LastMessageID *uint            `json:"last_message_id"`
	LastMessageAt *time.Time       `json:"last_message_at"`
	UnreadCount   int              `json:"unread_count"`
	Participants  []UserResponse   `json:"participants,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

func (c *Conversation) ToResponse() ConversationResponse {
	resp := ConversationResponse{
		ID:            c.ID,
		Type:          c.Type,
		Name:          c.Name,
		Avatar:        c.Avatar,
		CreatedByID:   c.CreatedByID,
		LastMessageID: c.LastMessageID,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
	}
	for _, p := range c.Participants {
		if p.LeftAt == nil {
			resp.Participants = append(resp.Participants, p.User.ToResponse())
		}
	}
	return resp
}
