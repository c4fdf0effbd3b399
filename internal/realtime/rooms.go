package realtime

import (
	"fmt"
	"log"
	"sync"
)

type room struct {
	mu          sync.Mutex
	subscribers map[string]*Connection
	closed      bool
}

// Rooms multiplexes conversation-scoped broadcast groups. Each room carries
// its own lock so unrelated conversations never serialize on each other.
type Rooms struct {
	mu    sync.RWMutex
	rooms map[uint]*room

	store ConversationStore
	drop  func(*Connection)
}

func NewRooms(store ConversationStore) *Rooms {
	return &Rooms{
		rooms: make(map[uint]*room),
		store: store,
	}
}

// SetDropHandler wires the action taken against a subscriber whose outbound
// backlog overflows. Wire-up only.
func (rs *Rooms) SetDropHandler(fn func(*Connection)) {
	rs.drop = fn
}

// Subscribe authorizes the connection's user against the membership store
// and adds it to the room. Idempotent when already subscribed; fails with
// ErrNotAParticipant when unauthorized, leaving the connection untouched.
// Membership is checked here, not on every broadcast — a user removed from
// the conversation keeps receiving until ForceUnsubscribe or disconnect.
func (rs *Rooms) Subscribe(conn *Connection, conversationID uint) error {
	ok, err := rs.store.IsParticipant(conn.UserID, conversationID)
	if err != nil {
		return fmt.Errorf("authorize subscribe: %w", err)
	}
	if !ok {
		return ErrNotAParticipant
	}

	for {
		rs.mu.Lock()
		rm := rs.rooms[conversationID]
		if rm == nil {
			rm = &room{subscribers: make(map[string]*Connection)}
			rs.rooms[conversationID] = rm
		}
		rs.mu.Unlock()

		rm.mu.Lock()
		if rm.closed {
			rm.mu.Unlock()
			continue // raced with GC of an emptied room
		}
		rm.subscribers[conn.ID] = conn
		rm.mu.Unlock()
		return nil
	}
}

// Unsubscribe removes a connection from a room. Idempotent.
func (rs *Rooms) Unsubscribe(connID string, conversationID uint) {
	rs.mu.RLock()
	rm := rs.rooms[conversationID]
	rs.mu.RUnlock()
	if rm == nil {
		return
	}

	rm.mu.Lock()
	delete(rm.subscribers, connID)
	empty := len(rm.subscribers) == 0
	rm.mu.Unlock()

	if empty {
		rs.collect(conversationID, rm)
	}
}

// ForceUnsubscribe evicts every connection of a user from a room. Called by
// the membership owner when a participant is removed mid-session.
func (rs *Rooms) ForceUnsubscribe(userID, conversationID uint) {
	rs.mu.RLock()
	rm := rs.rooms[conversationID]
	rs.mu.RUnlock()
	if rm == nil {
		return
	}

	rm.mu.Lock()
	for id, conn := range rm.subscribers {
		if conn.UserID == userID {
			delete(rm.subscribers, id)
		}
	}
	empty := len(rm.subscribers) == 0
	rm.mu.Unlock()

	if empty {
		rs.collect(conversationID, rm)
	}
}

// DropConnection removes a connection from every room, returning the
// conversation IDs it was subscribed to.
func (rs *Rooms) DropConnection(connID string) []uint {
	rs.mu.RLock()
	snapshot := make(map[uint]*room, len(rs.rooms))
	for id, rm := range rs.rooms {
		snapshot[id] = rm
	}
	rs.mu.RUnlock()

	var left []uint
	for conversationID, rm := range snapshot {
		rm.mu.Lock()
		if _, ok := rm.subscribers[connID]; ok {
			delete(rm.subscribers, connID)
			left = append(left, conversationID)
		}
		empty := len(rm.subscribers) == 0
		rm.mu.Unlock()
		if empty {
			rs.collect(conversationID, rm)
		}
	}
	return left
}

// UserSubscribed reports whether any of the user's connections remain in the
// room.
func (rs *Rooms) UserSubscribed(userID, conversationID uint) bool {
	rs.mu.RLock()
	rm := rs.rooms[conversationID]
	rs.mu.RUnlock()
	if rm == nil {
		return false
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	for _, conn := range rm.subscribers {
		if conn.UserID == userID {
			return true
		}
	}
	return false
}

// Broadcast delivers an event to every subscribed connection except the
// excluded one. Fan-out is independent per subscriber: frames go onto each
// connection's bounded queue, and a subscriber that cannot keep up is
// dropped instead of blocking the room.
func (rs *Rooms) Broadcast(conversationID uint, event Event, excludeConnID string) {
	rs.mu.RLock()
	rm := rs.rooms[conversationID]
	rs.mu.RUnlock()
	if rm == nil {
		return
	}

	data, err := event.Encode()
	if err != nil {
		log.Printf("realtime: encode %s for conversation %d: %v", event.Type, conversationID, err)
		return
	}

	rm.mu.Lock()
	targets := make([]*Connection, 0, len(rm.subscribers))
	for _, conn := range rm.subscribers {
		if conn.ID != excludeConnID {
			targets = append(targets, conn)
		}
	}
	rm.mu.Unlock()

	for _, conn := range targets {
		if !conn.Enqueue(data) {
			log.Printf("realtime: conn %s backlog exceeded, dropping", conn.ID)
			if rs.drop != nil {
				rs.drop(conn)
			}
		}
	}
}

// collect garbage-collects a room once its subscriber set is empty.
func (rs *Rooms) collect(conversationID uint, rm *room) {
	rs.mu.Lock()
	rm.mu.Lock()
	if len(rm.subscribers) == 0 && rs.rooms[conversationID] == rm {
		rm.closed = true
		delete(rs.rooms, conversationID)
	}
	rm.mu.Unlock()
	rs.mu.Unlock()
}
