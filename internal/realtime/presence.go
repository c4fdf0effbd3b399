package realtime

import (
	"log"
	"sync"
	"time"
)

// Status is a point-in-time presence read.
type Status struct {
	Online     bool
	LastSeenAt time.Time
}

// PresenceEvent is delivered to registered watchers (cache mirror, user row
// updater, contact feeds) on online/offline transitions.
type PresenceEvent struct {
	UserID     uint
	Online     bool
	LastSeenAt time.Time
}

type presenceEntry struct {
	conns    int
	lastSeen time.Time
	offline  *time.Timer
	gen      int // invalidates in-flight grace timers
}

// Presence derives per-user online state from the connection registry.
// The active-connection count is the source of truth; everything else is a
// cached view. Going offline is debounced by a grace window because mobile
// clients reconnect constantly (backgrounding, network blips) and immediate
// offline emits produce flapping presence noise.
type Presence struct {
	mu      sync.Mutex
	entries map[uint]*presenceEntry

	grace       time.Duration
	store       ConversationStore
	broadcaster Broadcaster
	watchers    []func(PresenceEvent)
	now         func() time.Time
}

func NewPresence(cfg Config, store ConversationStore, broadcaster Broadcaster) *Presence {
	cfg = cfg.withDefaults()
	return &Presence{
		entries:     make(map[uint]*presenceEntry),
		grace:       cfg.GraceWindow,
		store:       store,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

// Watch registers a presence watcher. Wire-up only.
func (p *Presence) Watch(fn func(PresenceEvent)) {
	p.watchers = append(p.watchers, fn)
}

// ConnectionAdded records a new active connection. Crossing 0->1 emits
// user:online, unless the user is inside the offline grace window, in which
// case the pending offline transition is cancelled and nothing fires.
func (p *Presence) ConnectionAdded(userID uint) {
	p.mu.Lock()
	e := p.entries[userID]
	if e == nil {
		e = &presenceEntry{}
		p.entries[userID] = e
	}
	e.conns++
	wentOnline := false
	if e.conns == 1 {
		if e.offline != nil {
			// Reconnected within the grace window: peers never saw the user
			// leave, so neither transition fires.
			e.offline.Stop()
			e.offline = nil
			e.gen++
		} else {
			wentOnline = true
		}
	}
	p.mu.Unlock()

	if wentOnline {
		p.emit(PresenceEvent{UserID: userID, Online: true})
	}
}

// ConnectionRemoved records a closed connection. Crossing 1->0 arms the
// grace timer; user:offline fires only if no connection returns in time.
func (p *Presence) ConnectionRemoved(userID uint) {
	p.mu.Lock()
	e := p.entries[userID]
	if e == nil || e.conns == 0 {
		p.mu.Unlock()
		return
	}
	e.conns--
	if e.conns == 0 {
		// lastSeen is the disconnect instant, not when the grace window
		// later elapses.
		e.lastSeen = p.now()
		e.gen++
		gen := e.gen
		e.offline = time.AfterFunc(p.grace, func() { p.expireOffline(userID, gen) })
	}
	p.mu.Unlock()
}

func (p *Presence) expireOffline(userID uint, gen int) {
	p.mu.Lock()
	e := p.entries[userID]
	if e == nil || e.gen != gen || e.conns > 0 {
		p.mu.Unlock()
		return
	}
	e.offline = nil
	lastSeen := e.lastSeen
	p.mu.Unlock()

	p.emit(PresenceEvent{UserID: userID, Online: false, LastSeenAt: lastSeen})
}

// StatusOf is a pure read; it never blocks on stores or timers.
func (p *Presence) StatusOf(userID uint) Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	e := p.entries[userID]
	if e == nil {
		return Status{}
	}
	return Status{Online: e.conns > 0, LastSeenAt: e.lastSeen}
}

// emit fans the transition out to every conversation the user participates
// in, then to the watchers. Store resolution happens outside any lock.
func (p *Presence) emit(event PresenceEvent) {
	conversations, err := p.store.ConversationsOf(event.UserID)
	if err != nil {
		log.Printf("realtime: resolve conversations for user %d: %v", event.UserID, err)
	}

	var wire Event
	if event.Online {
		wire = Event{Type: EventUserOnline, Payload: UserOnlinePayload{UserID: event.UserID}}
	} else {
		wire = Event{Type: EventUserOffline, Payload: UserOfflinePayload{UserID: event.UserID, LastSeenAt: event.LastSeenAt}}
	}
	for _, conversationID := range conversations {
		p.broadcaster.Broadcast(conversationID, wire, "")
	}

	for _, fn := range p.watchers {
		fn(event)
	}
}
