package realtime

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

// Transport is the writable side of one live client socket. Satisfied by
// *websocket.Conn; tests substitute fakes.
type Transport interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Connection is one live transport session. Owned by the Registry; rooms
// hold references only.
type Connection struct {
	ID              string
	UserID          uint
	DeviceID        string
	AuthenticatedAt time.Time

	transport Transport
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu           sync.Mutex
	lastActivity time.Time
}

func newConnection(id string, userID uint, deviceID string, t Transport, queueSize int, now time.Time) *Connection {
	return &Connection{
		ID:              id,
		UserID:          userID,
		DeviceID:        deviceID,
		AuthenticatedAt: now,
		transport:       t,
		send:            make(chan []byte, queueSize),
		done:            make(chan struct{}),
		lastActivity:    now,
	}
}

// Enqueue hands a frame to the write pump without blocking. Returns false
// when the outbound backlog is full; a closed connection reports true since
// its pending deliveries are cancelled anyway.
func (c *Connection) Enqueue(data []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return true
	default:
		return false
	}
}

// EnqueueEvent encodes and enqueues a single event for this connection only.
func (c *Connection) EnqueueEvent(event Event) bool {
	data, err := event.Encode()
	if err != nil {
		log.Printf("realtime: encode %s for conn %s: %v", event.Type, c.ID, err)
		return true
	}
	return c.Enqueue(data)
}

func (c *Connection) touch(now time.Time) {
	c.mu.Lock()
	c.lastActivity = now
	c.mu.Unlock()
}

func (c *Connection) lastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}

// close tears down the transport and cancels pending outbound delivery.
// Safe to call more than once.
func (c *Connection) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if err := c.transport.Close(); err != nil {
			log.Printf("realtime: close conn %s: %v", c.ID, err)
		}
	})
}

// writePump serializes all writes to the transport. A failed write is
// retried once; a second failure drops the connection via onFail.
func (c *Connection) writePump(onFail func(*Connection)) {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			if err := c.transport.WriteMessage(websocket.TextMessage, data); err != nil {
				if err2 := c.transport.WriteMessage(websocket.TextMessage, data); err2 != nil {
					log.Printf("realtime: write to conn %s failed twice: %v", c.ID, err2)
					onFail(c)
					return
				}
			}
		}
	}
}
