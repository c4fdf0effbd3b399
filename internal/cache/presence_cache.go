package cache

import (
	"fmt"
	"strconv"
	"time"
)

// OnlineUsersTTL matches the registry idle timeout so a crashed node's
// entries age out on their own.
const OnlineUsersTTL = 90 * time.Second

// PresenceCache mirrors the in-process presence tracker into Redis so other
// services (and the REST presence endpoint on other nodes) can read it.
type PresenceCache struct {
	redis *RedisCache
}

// NewPresenceCache creates a new presence cache
func NewPresenceCache(redis *RedisCache) *PresenceCache {
	return &PresenceCache{redis: redis}
}

// SetUserOnline adds a user to the online users set
func (pc *PresenceCache) SetUserOnline(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	if err := pc.redis.SetAdd("online:users", userID); err != nil {
		return err
	}

	// Individual key with TTL for auto-expiration.
	userKey := fmt.Sprintf("online:%d", userID)
	return pc.redis.Set(userKey, []byte("1"), OnlineUsersTTL)
}

// SetUserOffline removes a user from the online users set and records when
// they were last seen.
func (pc *PresenceCache) SetUserOffline(userID uint, lastSeen time.Time) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	if err := pc.redis.SetRemove("online:users", userID); err != nil {
		return err
	}
	if err := pc.redis.Delete(fmt.Sprintf("online:%d", userID)); err != nil {
		return err
	}

	seenKey := fmt.Sprintf("lastseen:%d", userID)
	return pc.redis.Set(seenKey, []byte(strconv.FormatInt(lastSeen.Unix(), 10)), 0)
}

// IsUserOnline checks if a user is online
func (pc *PresenceCache) IsUserOnline(userID uint) bool {
	if pc == nil || pc.redis == nil {
		return false
	}
	return pc.redis.Exists(fmt.Sprintf("online:%d", userID))
}

// LastSeen returns the recorded last-seen time for a user, if any.
func (pc *PresenceCache) LastSeen(userID uint) (time.Time, bool) {
	if pc == nil || pc.redis == nil {
		return time.Time{}, false
	}
	data, err := pc.redis.Get(fmt.Sprintf("lastseen:%d", userID))
	if err != nil || data == nil {
		return time.Time{}, false
	}
	unix, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}

// GetOnlineUsers returns all online user IDs
func (pc *PresenceCache) GetOnlineUsers() ([]uint, error) {
	if pc == nil || pc.redis == nil {
		return nil, nil
	}
	members, err := pc.redis.SetMembers("online:users")
	if err != nil {
		return nil, err
	}

	userIDs := make([]uint, 0, len(members))
	for _, member := range members {
		if id, err := strconv.ParseUint(member, 10, 32); err == nil {
			userIDs = append(userIDs, uint(id))
		}
	}
	return userIDs, nil
}
