package push

import (
	"log"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/estherpeter24/urge-backend/internal/cache"
	"github.com/estherpeter24/urge-backend/internal/realtime"
)

// QueueKey is the Redis list the out-of-process FCM worker consumes.
const QueueKey = "push:queue"

// job is the payload handed to the push worker.
type job struct {
	UserID    uint        `msgpack:"user_id"`
	EventType string      `msgpack:"event_type"`
	Payload   interface{} `msgpack:"payload"`
	QueuedAt  time.Time   `msgpack:"queued_at"`
}

// RedisNotifier enqueues notification jobs for offline recipients onto a
// Redis list. Delivery to the device is the push worker's problem; this side
// is fire-and-forget.
type RedisNotifier struct {
	redis *cache.RedisCache
}

func NewRedisNotifier(redis *cache.RedisCache) *RedisNotifier {
	return &RedisNotifier{redis: redis}
}

func (n *RedisNotifier) Notify(userID uint, event realtime.Event) {
	if n == nil || n.redis == nil {
		return
	}
	data, err := msgpack.Marshal(job{
		UserID:    userID,
		EventType: event.Type,
		Payload:   event.Payload,
		QueuedAt:  time.Now(),
	})
	if err != nil {
		log.Printf("push: marshal job for user %d: %v", userID, err)
		return
	}
	if err := n.redis.ListPush(QueueKey, data); err != nil {
		log.Printf("push: enqueue for user %d: %v", userID, err)
	}
}

// Nop discards every notification. Used when Redis is not configured and in
// tests.
type Nop struct{}

func (Nop) Notify(uint, realtime.Event) {}
