package realtime

import (
	"errors"
	"log"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// TokenVerifier validates an externally-issued access token and returns the
// user it identifies.
type TokenVerifier func(token string) (userID uint, err error)

// Gateway is the public entry point of the realtime layer. It authenticates
// each websocket, wires the connection into the registry, and translates
// inbound frames into component calls. Per connection the lifecycle is
// UNAUTHENTICATED -> AUTHENTICATED -> CLOSED; CLOSED is terminal and a
// reconnect always allocates a fresh connection.
type Gateway struct {
	registry *Registry
	presence *Presence
	rooms    *Rooms
	delivery *Delivery
	typing   *Typing

	verify TokenVerifier
}

// New builds and wires the full coordinator. The stores and notifier are the
// external collaborators; repo and messages may be nil.
func New(cfg Config, store ConversationStore, repo DeliveryStore, messages MessageStatusStore,
	push PushNotifier, verify TokenVerifier) *Gateway {
	cfg = cfg.withDefaults()

	registry := NewRegistry(cfg)
	rooms := NewRooms(store)
	presence := NewPresence(cfg, store, rooms)
	delivery := NewDelivery(store, repo, messages, rooms, presence, push)
	typing := NewTyping(cfg, rooms)

	rooms.SetDropHandler(func(c *Connection) { registry.Unregister(c.ID) })
	registry.OnAdd(func(c *Connection) { presence.ConnectionAdded(c.UserID) })
	registry.OnRemove(func(c *Connection) {
		left := rooms.DropConnection(c.ID)
		typing.ConnectionClosed(c.UserID, left, rooms.UserSubscribed)
		presence.ConnectionRemoved(c.UserID)
	})

	return &Gateway{
		registry: registry,
		presence: presence,
		rooms:    rooms,
		delivery: delivery,
		typing:   typing,
		verify:   verify,
	}
}

// Start launches the background sweeps.
func (g *Gateway) Start() {
	g.registry.StartSweeper()
	g.typing.StartSweeper()
}

// Stop halts the background sweeps. Live connections are left to their own
// close paths.
func (g *Gateway) Stop() {
	g.registry.Stop()
	g.typing.Shutdown()
}

func (g *Gateway) Registry() *Registry { return g.registry }
func (g *Gateway) Presence() *Presence { return g.presence }
func (g *Gateway) Rooms() *Rooms       { return g.rooms }
func (g *Gateway) Delivery() *Delivery { return g.delivery }
func (g *Gateway) Typing() *Typing     { return g.typing }

// Handle runs one websocket session to completion. Mount behind
// websocket.New in the router.
func (g *Gateway) Handle(c *websocket.Conn) {
	token := c.Query("token")
	if token == "" {
		token = c.Headers("Authorization")
	}

	userID, err := g.verify(token)
	if err != nil {
		// Failed handshake: close the transport with no registry side
		// effects.
		resp, _ := Event{Type: EventError, Payload: ErrorPayload{Code: "authentication_failed", Message: "Invalid or expired token"}}.Encode()
		_ = c.WriteMessage(websocket.TextMessage, resp)
		_ = c.Close()
		return
	}

	deviceID := c.Query("device_id")
	if deviceID == "" {
		deviceID = uuid.NewString()
	}

	conn, err := g.registry.Register(userID, deviceID, c)
	if err != nil {
		_ = c.Close()
		return
	}
	defer g.registry.Unregister(conn.ID)

	conn.EnqueueEvent(Event{Type: EventAuthenticated, Payload: AuthenticatedPayload{UserID: userID, ConnectionID: conn.ID}})

	ctx := &EventContext{Conn: conn, Gateway: g}
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			break
		}
		g.registry.Touch(conn.ID)

		evt, err := DecodeClientEvent(data)
		if err != nil {
			log.Printf("realtime: bad frame from user %d: %v", userID, err)
			conn.EnqueueEvent(Event{Type: EventError, Payload: ErrorPayload{Code: "invalid_event", Message: "Invalid event format"}})
			continue
		}

		if err := evt.Process(ctx); err != nil {
			g.reportProcessError(conn, evt, err)
		}
	}
}

func (g *Gateway) reportProcessError(conn *Connection, evt ClientEvent, err error) {
	switch {
	case errors.Is(err, ErrUnknownRecipient):
		// Informational: ack for a message dispatched before the user
		// joined. Logged, never surfaced.
		log.Printf("realtime: %s from user %d: %v", evt.GetType(), conn.UserID, err)
	case errors.Is(err, ErrNotAParticipant):
		conn.EnqueueEvent(Event{Type: EventError, Payload: ErrorPayload{Code: "not_a_participant", Message: "Not a participant of this conversation"}})
	default:
		log.Printf("realtime: process %s from user %d: %v", evt.GetType(), conn.UserID, err)
		conn.EnqueueEvent(Event{Type: EventError, Payload: ErrorPayload{Code: "processing_failed", Message: "Failed to process event"}})
	}
}
