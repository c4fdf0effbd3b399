package realtime

// RoomJoinEvent subscribes the connection to a conversation's broadcasts.
type RoomJoinEvent struct {
	ConversationID uint `json:"conversation_id"`
}

func (e *RoomJoinEvent) GetType() string { return "room:join" }

func (e *RoomJoinEvent) Process(ctx *EventContext) error {
	return ctx.Gateway.rooms.Subscribe(ctx.Conn, e.ConversationID)
}

// RoomLeaveEvent unsubscribes the connection from a conversation.
type RoomLeaveEvent struct {
	ConversationID uint `json:"conversation_id"`
}

func (e *RoomLeaveEvent) GetType() string { return "room:leave" }

func (e *RoomLeaveEvent) Process(ctx *EventContext) error {
	ctx.Gateway.rooms.Unsubscribe(ctx.Conn.ID, e.ConversationID)
	return nil
}

// MessageDeliveredEvent is a recipient device acking receipt of a message.
type MessageDeliveredEvent struct {
	MessageID uint `json:"message_id"`
}

func (e *MessageDeliveredEvent) GetType() string { return "message:delivered" }

func (e *MessageDeliveredEvent) Process(ctx *EventContext) error {
	_, _, err := ctx.Gateway.delivery.MarkDelivered(e.MessageID, ctx.Conn.UserID)
	return err
}

// MessageReadEvent is a recipient device reporting the message was read.
type MessageReadEvent struct {
	MessageID      uint `json:"message_id"`
	ConversationID uint `json:"conversation_id"`
}

func (e *MessageReadEvent) GetType() string { return "message:read" }

func (e *MessageReadEvent) Process(ctx *EventContext) error {
	_, _, err := ctx.Gateway.delivery.MarkRead(e.MessageID, ctx.Conn.UserID)
	return err
}

// TypingStartEvent signals the user started typing in a conversation.
type TypingStartEvent struct {
	ConversationID uint `json:"conversation_id"`
}

func (e *TypingStartEvent) GetType() string { return "typing:start" }

func (e *TypingStartEvent) Process(ctx *EventContext) error {
	ctx.Gateway.typing.Start(e.ConversationID, ctx.Conn.UserID, ctx.Conn.ID)
	return nil
}

// TypingStopEvent signals the user stopped typing.
type TypingStopEvent struct {
	ConversationID uint `json:"conversation_id"`
}

func (e *TypingStopEvent) GetType() string { return "typing:stop" }

func (e *TypingStopEvent) Process(ctx *EventContext) error {
	ctx.Gateway.typing.Stop(e.ConversationID, ctx.Conn.UserID, ctx.Conn.ID)
	return nil
}

// PingEvent is a client keepalive; it counts as activity and gets a pong.
type PingEvent struct{}

func (e *PingEvent) GetType() string { return "ping" }

func (e *PingEvent) Process(ctx *EventContext) error {
	ctx.Conn.EnqueueEvent(Event{Type: EventPong})
	return nil
}
