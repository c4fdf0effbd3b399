package realtime

import (
	"sync"
	"time"
)

type typingKey struct {
	conversationID uint
	userID         uint
}

type typingIndicator struct {
	expiresAt     time.Time
	lastBroadcast time.Time
}

// Typing coordinates ephemeral is-typing signals. Nothing here persists:
// every indicator self-expires, so a client that crashes mid-type cannot
// leave stale typing UI on its peers.
type Typing struct {
	mu     sync.Mutex
	active map[typingKey]*typingIndicator

	ttl           time.Duration
	coalesce      time.Duration
	sweepInterval time.Duration
	broadcaster   Broadcaster
	now           func() time.Time

	quit     chan struct{}
	stopOnce sync.Once
}

func NewTyping(cfg Config, broadcaster Broadcaster) *Typing {
	cfg = cfg.withDefaults()
	return &Typing{
		active:        make(map[typingKey]*typingIndicator),
		ttl:           cfg.TypingTTL,
		coalesce:      cfg.TypingCoalesce,
		sweepInterval: cfg.TypingSweepInterval,
		broadcaster:   broadcaster,
		now:           time.Now,
		quit:          make(chan struct{}),
	}
}

// Start creates or refreshes the user's indicator. At most one indicator
// exists per (conversation, user): repeats extend the TTL, and the
// re-broadcast is coalesced so keystroke-happy clients don't storm the room.
func (t *Typing) Start(conversationID, userID uint, originConnID string) {
	now := t.now()
	key := typingKey{conversationID, userID}

	t.mu.Lock()
	ind := t.active[key]
	broadcast := false
	if ind == nil {
		ind = &typingIndicator{lastBroadcast: now}
		t.active[key] = ind
		broadcast = true
	} else if now.Sub(ind.lastBroadcast) >= t.coalesce {
		ind.lastBroadcast = now
		broadcast = true
	}
	ind.expiresAt = now.Add(t.ttl)
	t.mu.Unlock()

	if broadcast {
		t.broadcaster.Broadcast(conversationID,
			Event{Type: EventTypingStart, Payload: TypingPayload{ConversationID: conversationID, UserID: userID}},
			originConnID)
	}
}

// Stop removes the indicator immediately. No-op when none exists.
func (t *Typing) Stop(conversationID, userID uint, originConnID string) {
	key := typingKey{conversationID, userID}

	t.mu.Lock()
	_, ok := t.active[key]
	delete(t.active, key)
	t.mu.Unlock()

	if ok {
		t.broadcaster.Broadcast(conversationID,
			Event{Type: EventTypingStop, Payload: TypingPayload{ConversationID: conversationID, UserID: userID}},
			originConnID)
	}
}

// ConnectionClosed clears the user's indicators in rooms where their last
// connection just left. stillPresent reports whether another of the user's
// connections remains subscribed.
func (t *Typing) ConnectionClosed(userID uint, conversationIDs []uint, stillPresent func(userID, conversationID uint) bool) {
	for _, conversationID := range conversationIDs {
		if stillPresent != nil && stillPresent(userID, conversationID) {
			continue
		}
		t.Stop(conversationID, userID, "")
	}
}

// StartSweeper launches the periodic expiry sweep.
func (t *Typing) StartSweeper() {
	go func() {
		ticker := time.NewTicker(t.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-t.quit:
				return
			case <-ticker.C:
				t.sweepOnce(t.now())
			}
		}
	}()
}

// Shutdown stops the sweeper.
func (t *Typing) Shutdown() {
	t.stopOnce.Do(func() { close(t.quit) })
}

// sweepOnce expires overdue indicators, synthesizing exactly one typing:stop
// per expiry.
func (t *Typing) sweepOnce(now time.Time) int {
	t.mu.Lock()
	var expired []typingKey
	for key, ind := range t.active {
		if now.After(ind.expiresAt) {
			expired = append(expired, key)
			delete(t.active, key)
		}
	}
	t.mu.Unlock()

	for _, key := range expired {
		t.broadcaster.Broadcast(key.conversationID,
			Event{Type: EventTypingStop, Payload: TypingPayload{ConversationID: key.conversationID, UserID: key.userID}},
			"")
	}
	return len(expired)
}

// IsTyping reports whether a live indicator exists. Test hook.
func (t *Typing) IsTyping(conversationID, userID uint) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	ind, ok := t.active[typingKey{conversationID, userID}]
	return ok && t.now().Before(ind.expiresAt)
}
