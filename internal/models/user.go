package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	PhoneNumber string     `gorm:"uniqueIndex;not null" json:"phone_number"`
	DisplayName string     `gorm:"not null" json:"display_name"`
	Avatar      string     `json:"avatar"`
	Bio         string     `gorm:"type:text" json:"bio"`
	IsVerified  bool       `gorm:"default:false" json:"is_verified"`
	IsOnline    bool       `gorm:"default:false" json:"is_online"`
	LastSeen    *time.Time `json:"last_seen"`

	Messages []Message `gorm:"foreignKey:SenderID" json:"-"`
}

type UserResponse struct {
	ID          uint       `json:"id"`
	PhoneNumber string     `json:"phone_number"`
	DisplayName string     `json:"display_name"`
	Avatar      string     `json:"avatar"`
	Bio         string     `json:"bio"`
	IsVerified  bool       `json:"is_verified"`
	IsOnline    bool       `json:"is_online"`
	LastSeen    *time.Time `json:"last_seen"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		PhoneNumber: u.PhoneNumber,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		Bio:         u.Bio,
		IsVerified:  u.IsVerified,
		IsOnline:    u.IsOnline,
		LastSeen:    u.LastSeen,
	}
}
