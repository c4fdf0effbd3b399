package realtime

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"
)

// Outbound event types
const (
	EventAuthenticated    = "authenticated"
	EventMessageReceived  = "message:received"
	EventMessageDelivered = "message:delivered"
	EventMessageRead      = "message:read"
	EventTypingStart      = "typing:start"
	EventTypingStop       = "typing:stop"
	EventUserOnline       = "user:online"
	EventUserOffline      = "user:offline"
	EventError            = "error"
	EventPong             = "pong"
)

// Event is the outbound wire envelope.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

type AuthenticatedPayload struct {
	UserID       uint   `json:"user_id"`
	ConnectionID string `json:"connection_id"`
}

type MessageDeliveredPayload struct {
	MessageID uint `json:"message_id"`
	UserID    uint `json:"user_id"`
}

type MessageReadPayload struct {
	MessageID      uint `json:"message_id"`
	UserID         uint `json:"user_id"`
	ConversationID uint `json:"conversation_id"`
}

type TypingPayload struct {
	ConversationID uint `json:"conversation_id"`
	UserID         uint `json:"user_id"`
}

type UserOnlinePayload struct {
	UserID uint `json:"user_id"`
}

type UserOfflinePayload struct {
	UserID     uint      `json:"user_id"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Broadcaster fans an event out to every subscriber of a conversation room,
// except the optionally excluded connection.
type Broadcaster interface {
	Broadcast(conversationID uint, event Event, excludeConnID string)
}

// ClientEvent is one inbound frame from a connected client.
type ClientEvent interface {
	GetType() string
	Process(ctx *EventContext) error
}

// EventContext provides everything an inbound event needs to act.
type EventContext struct {
	Conn    *Connection
	Gateway *Gateway
}

type inboundEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

var typeRegistry = map[string]reflect.Type{}

func init() {
	RegisterClientEvent(&RoomJoinEvent{})
	RegisterClientEvent(&RoomLeaveEvent{})
	RegisterClientEvent(&MessageDeliveredEvent{})
	RegisterClientEvent(&MessageReadEvent{})
	RegisterClientEvent(&TypingStartEvent{})
	RegisterClientEvent(&TypingStopEvent{})
	RegisterClientEvent(&PingEvent{})
}

func RegisterClientEvent(evt ClientEvent) {
	typeRegistry[evt.GetType()] = reflect.TypeOf(evt).Elem()
}

// DecodeClientEvent parses an inbound frame into its registered event type.
func DecodeClientEvent(data []byte) (ClientEvent, error) {
	var envelope inboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}

	t, ok := typeRegistry[envelope.Type]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", envelope.Type)
	}

	evt := reflect.New(t).Interface().(ClientEvent)
	if len(envelope.Payload) > 0 {
		if err := json.Unmarshal(envelope.Payload, evt); err != nil {
			return nil, err
		}
	}
	return evt, nil
}
