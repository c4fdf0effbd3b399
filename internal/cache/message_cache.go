package cache

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/estherpeter24/urge-backend/internal/models"
)

// TTL constants for different cache types
const (
	ConversationTTL = 5 * time.Minute
	UserListTTL     = 2 * time.Minute
)

// MessageCache handles message-related caching
type MessageCache struct {
	redis *RedisCache
}

// NewMessageCache creates a new message cache
func NewMessageCache(redis *RedisCache) *MessageCache {
	return &MessageCache{redis: redis}
}

func conversationKey(conversationID uint) string {
	return fmt.Sprintf("conv:%d", conversationID)
}

// GetConversation retrieves the cached latest page of a conversation
func (mc *MessageCache) GetConversation(conversationID uint) ([]models.Message, bool) {
	if mc == nil || mc.redis == nil {
		return nil, false
	}
	data, err := mc.redis.Get(conversationKey(conversationID))
	if err != nil || data == nil {
		return nil, false
	}

	var messages []models.Message
	if err := msgpack.Unmarshal(data, &messages); err != nil {
		return nil, false
	}
	return messages, true
}

// SetConversation caches the latest page of a conversation
func (mc *MessageCache) SetConversation(conversationID uint, messages []models.Message) error {
	if mc == nil || mc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(messages)
	if err != nil {
		return err
	}
	return mc.redis.Set(conversationKey(conversationID), data, ConversationTTL)
}

// InvalidateConversation removes a conversation page from cache
func (mc *MessageCache) InvalidateConversation(conversationID uint) error {
	if mc == nil || mc.redis == nil {
		return nil
	}
	return mc.redis.Delete(conversationKey(conversationID))
}
