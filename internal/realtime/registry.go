package realtime

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry tracks every live connection per user/device and owns their
// lifecycle. Removal cascades to the other components through hooks wired
// at construction time.
type Registry struct {
	mu     sync.RWMutex
	conns  map[string]*Connection
	byUser map[uint]map[string]*Connection

	idleTimeout   time.Duration
	sweepInterval time.Duration
	queueSize     int
	now           func() time.Time

	onAdd    []func(*Connection)
	onRemove []func(*Connection)

	quit     chan struct{}
	stopOnce sync.Once
}

func NewRegistry(cfg Config) *Registry {
	cfg = cfg.withDefaults()
	return &Registry{
		conns:         make(map[string]*Connection),
		byUser:        make(map[uint]map[string]*Connection),
		idleTimeout:   cfg.IdleTimeout,
		sweepInterval: cfg.IdleSweepInterval,
		queueSize:     cfg.SendQueueSize,
		now:           time.Now,
		quit:          make(chan struct{}),
	}
}

// OnAdd registers a hook invoked after a connection is registered.
// Wire-up only; not safe to call once connections flow.
func (r *Registry) OnAdd(fn func(*Connection)) {
	r.onAdd = append(r.onAdd, fn)
}

// OnRemove registers a hook invoked after a connection is removed.
func (r *Registry) OnRemove(fn func(*Connection)) {
	r.onRemove = append(r.onRemove, fn)
}

// Register allocates a Connection for an authenticated user and starts its
// write pump. Fails with ErrUnauthenticated when no identity was established
// upstream.
func (r *Registry) Register(userID uint, deviceID string, t Transport) (*Connection, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	conn := newConnection(uuid.NewString(), userID, deviceID, t, r.queueSize, r.now())

	r.mu.Lock()
	r.conns[conn.ID] = conn
	if _, ok := r.byUser[userID]; !ok {
		r.byUser[userID] = make(map[string]*Connection)
	}
	r.byUser[userID][conn.ID] = conn
	total := len(r.conns)
	r.mu.Unlock()

	go conn.writePump(func(c *Connection) { r.Unregister(c.ID) })

	for _, fn := range r.onAdd {
		fn(conn)
	}

	log.Printf("realtime: user %d connected (conn %s, device %s, total %d)", userID, conn.ID, deviceID, total)
	return conn, nil
}

// Unregister removes a connection. Idempotent: a duplicate close event from
// an unreliable transport is a no-op.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	conn, ok := r.conns[connID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.conns, connID)
	if userConns, ok := r.byUser[conn.UserID]; ok {
		delete(userConns, connID)
		if len(userConns) == 0 {
			delete(r.byUser, conn.UserID)
		}
	}
	total := len(r.conns)
	r.mu.Unlock()

	conn.close()

	for _, fn := range r.onRemove {
		fn(conn)
	}

	log.Printf("realtime: user %d disconnected (conn %s, total %d)", conn.UserID, connID, total)
}

// Touch updates last-activity; the idle sweep uses it to detect half-open
// transports.
func (r *Registry) Touch(connID string) {
	r.mu.RLock()
	conn, ok := r.conns[connID]
	r.mu.RUnlock()
	if ok {
		conn.touch(r.now())
	}
}

func (r *Registry) Get(connID string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[connID]
	return conn, ok
}

// ConnectionsOf returns the live connections for one user.
func (r *Registry) ConnectionsOf(userID uint) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := make([]*Connection, 0, len(r.byUser[userID]))
	for _, c := range r.byUser[userID] {
		conns = append(conns, c)
	}
	return conns
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// StartSweeper launches the periodic idle sweep.
func (r *Registry) StartSweeper() {
	go func() {
		ticker := time.NewTicker(r.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.quit:
				return
			case <-ticker.C:
				r.sweepOnce(r.now())
			}
		}
	}()
}

func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

// sweepOnce unregisters connections idle past the threshold, treating them
// as silently dropped transports.
func (r *Registry) sweepOnce(now time.Time) int {
	r.mu.RLock()
	var stale []string
	for id, conn := range r.conns {
		if now.Sub(conn.lastActive()) > r.idleTimeout {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range stale {
		log.Printf("realtime: dropping idle connection %s", id)
		r.Unregister(id)
	}
	return len(stale)
}
